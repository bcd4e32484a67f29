package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Broker: BrokerConfig{
			Type: "kafka",
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "signal-service",
			},
		},
		Signal: SignalConfig{
			Defaults: FieldDefaults{
				Symbol:        "UNKNOWN",
				Price:         100.0,
				MovingAverage: 100.0,
			},
		},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantError bool
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:      "invalid port",
			mutate:    func(cfg *Config) { cfg.Server.Port = 0 },
			wantError: true,
		},
		{
			name:      "missing broker type",
			mutate:    func(cfg *Config) { cfg.Broker.Type = "" },
			wantError: true,
		},
		{
			name:      "unsupported broker type",
			mutate:    func(cfg *Config) { cfg.Broker.Type = "rabbitmq" },
			wantError: true,
		},
		{
			name:      "no kafka brokers",
			mutate:    func(cfg *Config) { cfg.Broker.Kafka.Brokers = nil },
			wantError: true,
		},
		{
			name:      "missing group id",
			mutate:    func(cfg *Config) { cfg.Broker.Kafka.GroupID = "" },
			wantError: true,
		},
		{
			name:      "zero default moving average",
			mutate:    func(cfg *Config) { cfg.Signal.Defaults.MovingAverage = 0 },
			wantError: true,
		},
		{
			name: "idempotency without redis host",
			mutate: func(cfg *Config) {
				cfg.Idempotency = IdempotencyConfig{
					Enabled:       true,
					HashAlgorithm: "sha256",
					TTLSeconds:    60,
					OnRedisError:  "allow",
				}
			},
			wantError: true,
		},
		{
			name: "idempotency fully configured",
			mutate: func(cfg *Config) {
				cfg.Idempotency = IdempotencyConfig{
					Enabled:       true,
					HashAlgorithm: "sha256",
					TTLSeconds:    60,
					OnRedisError:  "allow",
				}
				cfg.Database.Redis.Host = "localhost"
			},
		},
		{
			name: "bad fallback value",
			mutate: func(cfg *Config) {
				cfg.Idempotency = IdempotencyConfig{
					Enabled:       true,
					HashAlgorithm: "sha256",
					TTLSeconds:    60,
					OnRedisError:  "explode",
				}
				cfg.Database.Redis.Host = "localhost"
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
