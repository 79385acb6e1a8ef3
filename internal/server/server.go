// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/api"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/cleanup"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/config"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/hubservice"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/ingest"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/monitoring"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/realtime"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository/influx"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/simulator"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/transport/mqtt"
	paho "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server and every background component it owns
type Server struct {
	config     *config.Config
	srv        *http.Server
	router     *api.Router
	hubservice *hubservice.HubService
	monitoring *monitoring.Service

	db        database.DB
	redis     *redis.Client
	mqtt      paho.Client
	publisher *mqtt.CommandPublisher
	sub       atomic.Pointer[mqtt.ReadingSubscriber]
	influx    influxdb2.Client
	mirror    *influx.ReadingMirror
	writer    *ingest.DeviceWriter
	ingestor  *ingest.Ingestor
	simulator *simulator.Simulator
	cleanup   *cleanup.CleanupService
	hub       *realtime.Hub

	stopListener context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

// Start wires every component, begins listening and blocks until a signal
// arrives.
func (s *Server) Start() error {
	ctx := context.Background()
	if err := s.initialize(ctx); err != nil {
		s.shutdown(ctx)
		return err
	}

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	var err error
	if s.srv != nil {
		if shutdownErr := s.srv.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("error shutting down server: %w", shutdownErr)
		}
	}
	s.shutdown(ctx)

	if err == nil {
		nuts.L.Infof("[Server] Server shut down successfully")
	}
	return err
}

// shutdown stops producers before consumers: schedulers first, then pending
// side effects, then the device queue and finally the connections.
func (s *Server) shutdown(ctx context.Context) {
	if s.simulator != nil {
		s.simulator.Stop()
	}
	if s.cleanup != nil {
		s.cleanup.Stop()
	}
	if s.mqtt != nil {
		if sub := s.sub.Load(); sub != nil {
			sub.Unsubscribe(s.mqtt)
		}
	}
	if s.ingestor != nil {
		s.ingestor.Wait()
	}
	if s.writer != nil {
		s.writer.Stop()
	}
	if s.mirror != nil {
		s.mirror.Flush()
	}
	if s.influx != nil {
		s.influx.Close()
	}
	mqtt.Disconnect(s.mqtt)
	if s.stopListener != nil {
		s.stopListener()
	}
	if s.hub != nil {
		s.hub.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			nuts.L.Warnf("[Server] Closing redis: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			nuts.L.Warnf("[Server] Closing database: %v", err)
		}
	}
}

func (s *Server) setupCleanupHandlers() {
	s.cleanup.OnCleanup("crop.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Crop %s deleted, readings detached", id)
	})

	s.cleanup.OnCleanup("readings.pruned", func(n string) {
		nuts.L.Debugf("[Cleanup] Retention removed %s readings", n)
	})
}
