package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/dustin/go-humanize"
	nuts "github.com/vaudience/go-nuts"
)

type componentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type healthReport struct {
	Status         string                     `json:"status"`
	Version        string                     `json:"version"`
	Components     map[string]componentHealth `json:"components"`
	LastReadingAt  *time.Time                 `json:"last_reading_at,omitempty"`
	LastReadingAge string                     `json:"last_reading_age"`
	RealtimeConns  int                        `json:"realtime_clients"`
}

// handleHealth reports reachability of every configured dependency. Only the
// primary store makes the hub unhealthy; the rest only degrade it.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		report := s.health(ctx)
		code := http.StatusOK
		if report.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(report)
	}
}

func (s *Server) health(ctx context.Context) healthReport {
	report := healthReport{
		Status:         "ok",
		Version:        nuts.GetVersion(),
		Components:     map[string]componentHealth{},
		LastReadingAge: "never",
	}
	degrade := func(name string, err error, fatal bool) {
		report.Components[name] = componentHealth{Status: "down", Error: err.Error()}
		if fatal {
			report.Status = "unhealthy"
		} else if report.Status == "ok" {
			report.Status = "degraded"
		}
	}

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			degrade("database", err, true)
		} else {
			report.Components["database"] = componentHealth{Status: "up"}
		}
	} else {
		report.Components["database"] = componentHealth{Status: "memory"}
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			degrade("redis", err, false)
		} else {
			report.Components["redis"] = componentHealth{Status: "up"}
		}
	}

	if s.mqtt != nil {
		if !s.mqtt.IsConnectionOpen() {
			degrade("mqtt", errors.NewUnavailableError("broker connection lost", nil), false)
		} else {
			report.Components["mqtt"] = componentHealth{Status: "up"}
		}
		if s.publisher != nil && s.publisher.State() != "closed" {
			report.Components["mqtt_commands"] = componentHealth{Status: s.publisher.State()}
		}
	}

	if s.mirror != nil {
		if age := s.mirror.LastErrorAge(); age > 0 && age < 5*time.Minute {
			degrade("influx", errors.NewUnavailableError("write failed "+humanize.Time(time.Now().Add(-age)), nil), false)
		} else {
			report.Components["influx"] = componentHealth{
				Status: "up",
				Detail: humanize.Comma(s.mirror.Written()) + " points written",
			}
		}
	}

	if s.hubservice != nil {
		if latest, err := s.hubservice.LatestReading(ctx); err == nil {
			report.LastReadingAt = &latest.CreatedAt
			report.LastReadingAge = humanize.Time(latest.CreatedAt)
		}
	}
	if s.hub != nil {
		report.RealtimeConns = s.hub.Clients()
	}
	return report
}
