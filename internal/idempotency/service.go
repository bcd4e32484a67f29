package idempotency

import (
	"context"
	"fmt"
	"time"

	"meanrev/internal/config"
	"meanrev/internal/constants"
	"meanrev/internal/logger"
	"meanrev/pkg/metrics"
	"meanrev/pkg/models"
)

// Service enforces the at-most-once lifecycle: a record that already
// passed through the pipeline is reported as a duplicate and skipped.
type Service struct {
	repo         Repository
	hasher       *Hasher
	cfg          config.IdempotencyConfig
	fieldsToHash []string
	logger       logger.Logger
	cancel       context.CancelFunc
}

func NewService(repo Repository, cfg config.IdempotencyConfig, log logger.Logger) *Service {
	fieldsToHash := cfg.FieldsToHash
	if len(fieldsToHash) == 0 {
		fieldsToHash = []string{models.FieldSymbol, models.FieldPrice, models.FieldMovingAverage}
		log.Infow("No fields_to_hash configured, using defaults", "fields", fieldsToHash)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		repo:         repo,
		hasher:       NewHasher(cfg.HashAlgorithm),
		cfg:          cfg,
		fieldsToHash: fieldsToHash,
		logger:       log,
		cancel:       cancel,
	}

	go s.updateCacheSizeMetrics(ctx)

	return s
}

// Process reports whether the record has not been seen before.
func (s *Service) Process(ctx context.Context, msg models.RawMessage) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	hash, err := s.hasher.ComputeHash(msg, s.fieldsToHash)
	if err != nil {
		return false, fmt.Errorf("failed to compute message hash: %w", err)
	}

	key := constants.CacheKeyPrefixSeen + hash
	start := time.Now()
	unique, err := s.repo.SetNX(ctx, key, time.Now().Unix(), time.Duration(s.cfg.TTLSeconds)*time.Second)
	duration := time.Since(start)

	if err != nil {
		return s.handleRedisError(ctx, err, duration)
	}

	s.recordMetrics(duration, unique)
	return unique, nil
}

func (s *Service) handleRedisError(ctx context.Context, err error, duration time.Duration) (bool, error) {
	metrics.ObserveIdempotencyDuration(duration, "error")

	switch s.cfg.OnRedisError {
	case constants.FallbackDeny:
		metrics.FallbackUsageTotal.WithLabelValues("idempotency", "deny_on_error", "redis_error").Inc()
		s.logger.WarnwCtx(ctx, "Idempotency check failed, dropping message (fallback: deny)",
			"error", err,
		)
		return false, nil
	default:
		metrics.FallbackUsageTotal.WithLabelValues("idempotency", "allow_on_error", "redis_error").Inc()
		s.logger.WarnwCtx(ctx, "Idempotency check failed, passing message through (fallback: allow)",
			"error", err,
		)
		return true, nil
	}
}

func (s *Service) recordMetrics(duration time.Duration, unique bool) {
	status := "unique"
	if !unique {
		status = "duplicate"
	}
	metrics.IdempotencyMessagesTotal.WithLabelValues(status).Inc()
	metrics.ObserveIdempotencyDuration(duration, status)
}

func (s *Service) updateCacheSizeMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			size, err := s.repo.GetCacheSize(ctx, constants.CacheKeyPrefixSeen)
			if err != nil {
				s.logger.DebugwCtx(ctx, "Failed to read seen-cache size",
					"error", err,
				)
				continue
			}
			metrics.SetSeenCacheSize(size)
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the background cache metrics updater.
func (s *Service) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
