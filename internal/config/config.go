package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   PostgresConfig
	Redis      RedisConfig
	MQTT       MQTTConfig
	Influx     InfluxConfig
	Monitoring MonitoringConfig
	Ingest     IngestConfig
	Simulator  SimulatorConfig
	Retention  RetentionConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type PostgresConfig struct {
	// Driver is "postgres" or "memory"; memory runs without Postgres and Redis.
	Driver         string        `mapstructure:"driver"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"dbname"`
	SSLMode        string        `mapstructure:"sslmode"`
	MaxOpenConns   int           `mapstructure:"max_open_conns"`
	ConnectRetries uint64        `mapstructure:"connect_retries"`
	ListenChannel  string        `mapstructure:"listen_channel"`
	ListenMinWait  time.Duration `mapstructure:"listen_min_wait"`
	ListenMaxWait  time.Duration `mapstructure:"listen_max_wait"`
}

func (c PostgresConfig) InMemory() bool {
	return c.Driver == "memory"
}

// DSN renders the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CropTTL  time.Duration `mapstructure:"crop_ttl"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type MQTTConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Broker         string        `mapstructure:"broker"`
	ClientID       string        `mapstructure:"client_id"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	TopicPrefix    string        `mapstructure:"topic_prefix"`
	QoS            byte          `mapstructure:"qos"`
	ConnectRetries uint64        `mapstructure:"connect_retries"`
	DedupTTL       time.Duration `mapstructure:"dedup_ttl"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type InfluxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

type MonitoringConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	Namespace string `mapstructure:"namespace"`
}

// Level returns the log level in the form the go-nuts logger expects.
func (c MonitoringConfig) Level() string {
	if c.LogLevel == "" {
		return "INFO"
	}
	return strings.ToUpper(strings.TrimSpace(c.LogLevel))
}

type IngestConfig struct {
	SideEffectTimeout    time.Duration `mapstructure:"side_effect_timeout"`
	SuppressRepeatAlerts bool          `mapstructure:"suppress_repeat_alerts"`
	DeviceQueueSize      int           `mapstructure:"device_queue_size"`
}

type SimulatorConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Cron specs, e.g. "@every 3s".
	TickSpec   string `mapstructure:"tick_spec"`
	IngestSpec string `mapstructure:"ingest_spec"`
	Seed       int64  `mapstructure:"seed"`
}

type RetentionConfig struct {
	Readings time.Duration `mapstructure:"readings"`
	Schedule string        `mapstructure:"schedule"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	viper.SetEnvPrefix("HYDRO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "hydro")
	viper.SetDefault("database.dbname", "hydro")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 20)
	viper.SetDefault("database.connect_retries", 5)
	viper.SetDefault("database.listen_channel", "hydro_changes")
	viper.SetDefault("database.listen_min_wait", "10s")
	viper.SetDefault("database.listen_max_wait", "1m")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.crop_ttl", "5m")

	// MQTT defaults
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.client_id", "hydro-hub")
	viper.SetDefault("mqtt.topic_prefix", "hydro")
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("mqtt.connect_retries", 5)
	viper.SetDefault("mqtt.dedup_ttl", "1m")
	viper.SetDefault("mqtt.publish_timeout", "5s")

	// Influx defaults
	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.org", "hydro")
	viper.SetDefault("influx.bucket", "readings")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
	viper.SetDefault("monitoring.namespace", "hydro")

	// Ingest defaults
	viper.SetDefault("ingest.side_effect_timeout", "10s")
	viper.SetDefault("ingest.suppress_repeat_alerts", false)
	viper.SetDefault("ingest.device_queue_size", 64)

	// Simulator defaults
	viper.SetDefault("simulator.enabled", false)
	viper.SetDefault("simulator.tick_spec", "@every 3s")
	viper.SetDefault("simulator.ingest_spec", "@every 1m")
	viper.SetDefault("simulator.seed", 0)

	// Retention defaults
	viper.SetDefault("retention.readings", "720h")
	viper.SetDefault("retention.schedule", "@daily")
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "", "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Redis.Host == "" {
			return fmt.Errorf("redis host is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}
	switch config.Monitoring.Level() {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level %q", config.Monitoring.LogLevel)
	}
	if config.MQTT.Enabled && config.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker is required when mqtt is enabled")
	}
	if config.Influx.Enabled && (config.Influx.URL == "" || config.Influx.Bucket == "") {
		return fmt.Errorf("influx url and bucket are required when influx is enabled")
	}
	if config.Ingest.SideEffectTimeout <= 0 {
		return fmt.Errorf("ingest side effect timeout must be positive")
	}
	if config.Ingest.DeviceQueueSize <= 0 {
		return fmt.Errorf("ingest device queue size must be positive")
	}
	if config.Retention.Readings < 0 {
		return fmt.Errorf("retention period cannot be negative")
	}
	return nil
}
