package config

import (
	"fmt"

	"meanrev/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateIdempotency(cfg); err != nil {
		errors = append(errors, err)
	}

	if err := validateSignal(cfg.Signal); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Type == "" {
		return &ValidationError{
			Field:   "broker.type",
			Message: "broker type is required",
		}
	}

	if cfg.Type != "kafka" {
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unsupported broker type %q", cfg.Type),
		}
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one broker address is required",
		}
	}

	if cfg.Kafka.GroupID == "" {
		return &ValidationError{
			Field:   "broker.kafka.group_id",
			Message: "consumer group id is required",
		}
	}

	return nil
}

func validateIdempotency(cfg *Config) error {
	if !cfg.Idempotency.Enabled {
		return nil
	}

	switch cfg.Idempotency.HashAlgorithm {
	case "sha256", "md5":
	default:
		return &ValidationError{
			Field:   "idempotency.hash_algorithm",
			Message: fmt.Sprintf("unsupported hash algorithm %q", cfg.Idempotency.HashAlgorithm),
		}
	}

	switch cfg.Idempotency.OnRedisError {
	case constants.FallbackAllow, constants.FallbackDeny:
	default:
		return &ValidationError{
			Field:   "idempotency.on_redis_error",
			Message: fmt.Sprintf("must be %q or %q", constants.FallbackAllow, constants.FallbackDeny),
		}
	}

	if cfg.Idempotency.TTLSeconds <= 0 {
		return &ValidationError{
			Field:   "idempotency.ttl_seconds",
			Message: "ttl must be positive",
		}
	}

	if cfg.Database.Redis.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "redis host is required when the idempotency gate is enabled",
		}
	}

	return nil
}

func validateSignal(cfg SignalConfig) error {
	// A zero default would make every defaulted message fail on the
	// zero-divisor guard.
	if cfg.Defaults.MovingAverage == 0 {
		return &ValidationError{
			Field:   "signal.defaults.moving_average",
			Message: "default moving average must be non-zero",
		}
	}

	return nil
}
