// Package config loads the advancement server configuration from the
// environment
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// Store backends
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the process configuration. Every field has an ADVANCEMENT_*
// variable; cobra flags may override the port.
type Config struct {
	GRPCPort int `env:"ADVANCEMENT_GRPC_PORT" envDefault:"50051"`

	// Backend selects where characters, pending offers, history and
	// inventory live. The catalog and progress stay in Redis either way.
	Backend string `env:"ADVANCEMENT_STORE_BACKEND" envDefault:"redis"`

	RedisAddr         string   `env:"ADVANCEMENT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisClusterAddrs []string `env:"ADVANCEMENT_REDIS_CLUSTER_ADDRS" envSeparator:","`
	RedisPoolSize     int      `env:"ADVANCEMENT_REDIS_POOL_SIZE" envDefault:"10"`
	RedisTLS          bool     `env:"ADVANCEMENT_REDIS_TLS" envDefault:"false"`

	PostgresDSN          string        `env:"ADVANCEMENT_POSTGRES_DSN"`
	PostgresMaxOpenConns int           `env:"ADVANCEMENT_POSTGRES_MAX_OPEN_CONNS" envDefault:"10"`
	PostgresConnLifetime time.Duration `env:"ADVANCEMENT_POSTGRES_CONN_LIFETIME" envDefault:"30m"`

	// CatalogFile is seeded into Redis at startup when set
	CatalogFile string `env:"ADVANCEMENT_CATALOG_FILE"`

	KafkaBrokers           []string `env:"ADVANCEMENT_KAFKA_BROKERS" envSeparator:","`
	KafkaLevelUpTopic      string   `env:"ADVANCEMENT_KAFKA_LEVELUP_TOPIC" envDefault:"character.level_up"`
	KafkaNotificationTopic string   `env:"ADVANCEMENT_KAFKA_NOTIFICATION_TOPIC" envDefault:"advancement.events"`
	KafkaGroupID           string   `env:"ADVANCEMENT_KAFKA_GROUP_ID" envDefault:"advancement-engine"`

	SubscriberWorkers int `env:"ADVANCEMENT_SUBSCRIBER_WORKERS" envDefault:"4"`
	QueueSize         int `env:"ADVANCEMENT_QUEUE_SIZE" envDefault:"256"`

	LockTTL    time.Duration `env:"ADVANCEMENT_LOCK_TTL" envDefault:"10s"`
	LockWait   time.Duration `env:"ADVANCEMENT_LOCK_WAIT" envDefault:"5s"`
	PendingTTL time.Duration `env:"ADVANCEMENT_PENDING_TTL" envDefault:"168h"`

	LateAwakeningLevel int32 `env:"ADVANCEMENT_LATE_AWAKENING_LEVEL" envDefault:"25"`

	LogLevel string `env:"ADVANCEMENT_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field requirements
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRange("GRPCPort", c.GRPCPort, 1, 65535, vb)
	errors.ValidateEnum("Backend", c.Backend, []string{BackendRedis, BackendPostgres}, vb)
	if c.Backend == BackendPostgres {
		errors.ValidateRequired("PostgresDSN", c.PostgresDSN, vb)
	}

	if c.RedisAddr == "" && len(c.RedisClusterAddrs) == 0 {
		vb.RequiredField("RedisAddr")
	}
	if c.SubscriberWorkers <= 0 {
		vb.Field("SubscriberWorkers", "must be positive")
	}
	if c.QueueSize <= 0 {
		vb.Field("QueueSize", "must be positive")
	}
	if c.LockTTL <= 0 {
		vb.Field("LockTTL", "must be positive")
	}
	if c.LockWait < 0 {
		vb.Field("LockWait", "cannot be negative")
	}
	if c.PendingTTL < 0 {
		vb.Field("PendingTTL", "cannot be negative")
	}
	if c.LateAwakeningLevel <= 0 {
		vb.Field("LateAwakeningLevel", "must be positive")
	}
	if len(c.KafkaBrokers) > 0 {
		errors.ValidateRequired("KafkaLevelUpTopic", c.KafkaLevelUpTopic, vb)
		errors.ValidateRequired("KafkaGroupID", c.KafkaGroupID, vb)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		vb.Fieldf("LogLevel", "unknown level %q", c.LogLevel)
	}
	return vb.Build()
}

// KafkaEnabled reports whether brokers were configured
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// SlogLevel returns the configured log level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
