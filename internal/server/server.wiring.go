package server

import (
	"context"
	"fmt"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/api"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/cleanup"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/engine"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/hubservice"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/ingest"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/monitoring"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/realtime"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository/cache"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository/influx"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository/memory"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/repository/postgres"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/simulator"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/transport/mqtt"
	paho "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

type repositories struct {
	crops    repository.CropRepository
	devices  repository.DeviceRepository
	readings repository.ReadingRepository
	alerts   repository.AlertRepository
	active   repository.ActiveCropStore
}

// initialize builds the component graph. Anything started here is released
// by shutdown, also when a later step fails.
func (s *Server) initialize(ctx context.Context) error {
	cfg := s.config
	s.monitoring = monitoring.NewService(monitoring.Config{Namespace: cfg.Monitoring.Namespace})

	repos, err := s.initRepositories(ctx)
	if err != nil {
		return err
	}

	var writerOpts []ingest.DeviceWriterOption
	writerOpts = append(writerOpts, ingest.WithWriterMetrics(s.monitoring))
	if cfg.MQTT.Enabled {
		if err := s.initMQTT(ctx); err != nil {
			return err
		}
		writerOpts = append(writerOpts, ingest.WithPublisher(s.publisher))
	}
	s.writer = ingest.NewDeviceWriter(repos.devices, cfg.Ingest.DeviceQueueSize, cfg.Ingest.SideEffectTimeout, writerOpts...)

	policy := engine.AlertPolicyNoDedup
	if cfg.Ingest.SuppressRepeatAlerts {
		policy = engine.AlertPolicySuppressUnread
	}
	ingestOpts := []ingest.Option{ingest.WithMetrics(s.monitoring)}
	if cfg.Influx.Enabled {
		s.influx = influxdb2.NewClient(cfg.Influx.URL, cfg.Influx.Token)
		s.mirror = influx.NewReadingMirror(s.influx, cfg.Influx.Org, cfg.Influx.Bucket)
		ingestOpts = append(ingestOpts, ingest.WithMirror(s.mirror))
		nuts.L.Infof("[Server] Mirroring readings to InfluxDB bucket %s", cfg.Influx.Bucket)
	}
	s.ingestor = ingest.New(
		ingest.NewProfileResolver(repos.crops, repos.active),
		repos.readings, repos.alerts, repos.devices, s.writer,
		ingest.Config{SideEffectTimeout: cfg.Ingest.SideEffectTimeout, AlertPolicy: policy},
		ingestOpts...,
	)

	s.cleanup = cleanup.New(repos.crops, repos.readings, repos.active, s.monitoring)
	s.setupCleanupHandlers()

	s.hubservice = hubservice.New(repos.crops, repos.devices, repos.readings, repos.alerts, repos.active, s.ingestor, s.cleanup)
	if err := s.hubservice.Validate(); err != nil {
		return err
	}
	if err := s.hubservice.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed defaults: %w", err)
	}

	if s.mqtt != nil {
		sub := mqtt.NewReadingSubscriber(s.ingestor, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, mqtt.NewDeduper(cfg.MQTT.DedupTTL, 0))
		s.sub.Store(sub)
		sub.Subscribe(s.mqtt)
	}

	if cfg.Simulator.Enabled {
		s.simulator = simulator.New(s.hubservice.Profiles, cfg.Simulator.Seed, simulator.WithSink(s.ingestor))
		if err := s.simulator.Start(cfg.Simulator.TickSpec, cfg.Simulator.IngestSpec); err != nil {
			return fmt.Errorf("failed to start simulator: %w", err)
		}
	}

	if cfg.Retention.Readings > 0 {
		if err := s.cleanup.StartRetention(cfg.Retention.Schedule, cfg.Retention.Readings); err != nil {
			return err
		}
	}

	s.hub = realtime.NewHub()
	if !cfg.Database.InMemory() {
		s.startListener()
	}

	s.router = api.NewRouter(s.hubservice, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Simulator:      s.simulator,
		Health:         s.handleHealth(),
		Metrics:        s.monitoring.Handler(),
		Realtime:       s.hub,
	})
	return nil
}

func (s *Server) initRepositories(ctx context.Context) (*repositories, error) {
	cfg := s.config
	if cfg.Database.InMemory() {
		nuts.L.Warnf("[Server] Using in-memory storage; data is lost on restart and realtime events are disabled")
		store := memory.NewStore()
		return &repositories{
			crops:    store.Crops(),
			devices:  store.Devices(),
			readings: store.Readings(),
			alerts:   store.Alerts(),
			active:   store.Active(),
		}, nil
	}

	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	s.db = db

	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := postgres.InitializeSchema(schemaCtx, db, cfg.Database.ListenChannel); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := s.redis.Ping(ctx).Err(); err != nil {
		// the crop cache falls back to Postgres; the active selection is unavailable until redis is back
		nuts.L.Warnf("[Server] Redis at %s unreachable: %v", cfg.Redis.Addr(), err)
	}

	return &repositories{
		crops:    cache.NewCropRepository(postgres.NewCropRepository(db), s.redis, cfg.Redis.CropTTL),
		devices:  postgres.NewDeviceRepository(db),
		readings: postgres.NewReadingRepository(db),
		alerts:   postgres.NewAlertRepository(db),
		active:   cache.NewActiveCropStore(s.redis),
	}, nil
}

func (s *Server) initMQTT(ctx context.Context) error {
	cfg := s.config.MQTT
	client, err := mqtt.Connect(ctx, cfg, func(c paho.Client) {
		// resubscribe after reconnects; the first subscription happens once ingestion exists
		if sub := s.sub.Load(); sub != nil {
			sub.Subscribe(c)
		}
	})
	if err != nil {
		return err
	}
	s.mqtt = client
	s.publisher = mqtt.NewCommandPublisher(client, cfg.TopicPrefix, cfg.QoS, cfg.PublishTimeout)
	return nil
}

func (s *Server) startListener() {
	cfg := s.config.Database
	listener := realtime.NewListener(cfg.DSN(), cfg.ListenChannel, cfg.ListenMinWait, cfg.ListenMaxWait, s.hub)
	listener.OnChange(func(c realtime.Change) {
		s.monitoring.RecordEvent("row."+c.Table+"."+c.Type, nil)
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.stopListener = cancel
	go func() {
		if err := listener.Run(ctx); err != nil {
			nuts.L.Errorf("[Server] Realtime listener stopped: %v", err)
		}
	}()
}
