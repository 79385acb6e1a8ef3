package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("HYDRO_DATABASE__HOST", "db.internal")
	t.Setenv("HYDRO_INGEST__SUPPRESS_REPEAT_ALERTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("database host = %q, want db.internal", cfg.Database.Host)
	}
	if !cfg.Ingest.SuppressRepeatAlerts {
		t.Error("expected env override of suppress_repeat_alerts")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Ingest.SideEffectTimeout != 10*time.Second {
		t.Errorf("side effect timeout = %v, want 10s", cfg.Ingest.SideEffectTimeout)
	}
	if cfg.Retention.Readings != 720*time.Hour {
		t.Errorf("retention = %v, want 720h", cfg.Retention.Readings)
	}
	if cfg.Database.ListenChannel != "hydro_changes" {
		t.Errorf("listen channel = %q", cfg.Database.ListenChannel)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: PostgresConfig{Host: "localhost"},
			Redis:    RedisConfig{Host: "localhost"},
			Ingest:   IngestConfig{SideEffectTimeout: time.Second, DeviceQueueSize: 1},
		}
	}

	if err := validateConfig(valid()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database host", func(c *Config) { c.Database.Host = "" }},
		{"missing redis host", func(c *Config) { c.Redis.Host = "" }},
		{"mqtt without broker", func(c *Config) { c.MQTT.Enabled = true }},
		{"influx without bucket", func(c *Config) { c.Influx = InfluxConfig{Enabled: true, URL: "http://x"} }},
		{"zero side effect timeout", func(c *Config) { c.Ingest.SideEffectTimeout = 0 }},
		{"zero queue", func(c *Config) { c.Ingest.DeviceQueueSize = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }},
		{"unknown log level", func(c *Config) { c.Monitoring.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := validateConfig(c); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateMemoryDriver(t *testing.T) {
	c := &Config{
		Database: PostgresConfig{Driver: "memory"},
		Ingest:   IngestConfig{SideEffectTimeout: time.Second, DeviceQueueSize: 1},
	}
	if err := validateConfig(c); err != nil {
		t.Errorf("memory driver needs no hosts, got %v", err)
	}
	if !c.Database.InMemory() {
		t.Error("InMemory() = false")
	}
}

func TestMonitoringLevel(t *testing.T) {
	tests := map[string]string{
		"":       "INFO",
		"debug":  "DEBUG",
		" Warn ": "WARN",
		"ERROR":  "ERROR",
	}
	for in, want := range tests {
		if got := (MonitoringConfig{LogLevel: in}).Level(); got != want {
			t.Errorf("Level(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDSN(t *testing.T) {
	c := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	want := "host=h port=5432 user=u password=p dbname=d sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
