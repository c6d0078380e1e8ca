package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-advancement/internal/config"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := config.Load()
	s.Require().NoError(err)

	s.Equal(50051, cfg.GRPCPort)
	s.Equal(config.BackendRedis, cfg.Backend)
	s.Equal("localhost:6379", cfg.RedisAddr)
	s.Equal(4, cfg.SubscriberWorkers)
	s.Equal(256, cfg.QueueSize)
	s.Equal(10*time.Second, cfg.LockTTL)
	s.Equal(168*time.Hour, cfg.PendingTTL)
	s.Equal(int32(25), cfg.LateAwakeningLevel)
	s.False(cfg.KafkaEnabled())
	s.Equal(slog.LevelInfo, cfg.SlogLevel())
}

func (s *ConfigTestSuite) TestOverrides() {
	s.T().Setenv("ADVANCEMENT_GRPC_PORT", "6000")
	s.T().Setenv("ADVANCEMENT_STORE_BACKEND", "postgres")
	s.T().Setenv("ADVANCEMENT_POSTGRES_DSN", "postgres://localhost/advancement?sslmode=disable")
	s.T().Setenv("ADVANCEMENT_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	s.T().Setenv("ADVANCEMENT_LOCK_WAIT", "250ms")
	s.T().Setenv("ADVANCEMENT_LATE_AWAKENING_LEVEL", "30")
	s.T().Setenv("ADVANCEMENT_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	s.Require().NoError(err)

	s.Equal(6000, cfg.GRPCPort)
	s.Equal(config.BackendPostgres, cfg.Backend)
	s.Equal([]string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	s.True(cfg.KafkaEnabled())
	s.Equal(250*time.Millisecond, cfg.LockWait)
	s.Equal(int32(30), cfg.LateAwakeningLevel)
	s.Equal(slog.LevelDebug, cfg.SlogLevel())
}

func (s *ConfigTestSuite) TestInvalid() {
	testCases := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{
			name:  "postgres without dsn",
			env:   map[string]string{"ADVANCEMENT_STORE_BACKEND": "postgres"},
			field: "PostgresDSN",
		},
		{
			name:  "unknown backend",
			env:   map[string]string{"ADVANCEMENT_STORE_BACKEND": "mongo"},
			field: "Backend",
		},
		{
			name:  "port out of range",
			env:   map[string]string{"ADVANCEMENT_GRPC_PORT": "70000"},
			field: "GRPCPort",
		},
		{
			name:  "no workers",
			env:   map[string]string{"ADVANCEMENT_SUBSCRIBER_WORKERS": "0"},
			field: "SubscriberWorkers",
		},
		{
			name:  "unknown log level",
			env:   map[string]string{"ADVANCEMENT_LOG_LEVEL": "loud"},
			field: "LogLevel",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			for k, v := range tc.env {
				s.T().Setenv(k, v)
			}

			_, err := config.Load()
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tc.field)
		})
	}
}

func (s *ConfigTestSuite) TestUnparsableValue() {
	s.T().Setenv("ADVANCEMENT_LOCK_TTL", "soon")

	_, err := config.Load()
	s.True(errors.IsInvalidArgument(err))
}
