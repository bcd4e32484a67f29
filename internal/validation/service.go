package validation

import (
	"context"
	"time"

	"meanrev/internal/config"
	"meanrev/internal/logger"
	celgo "meanrev/pkg/cel"
	"meanrev/pkg/errors"
	"meanrev/pkg/metrics"
	"meanrev/pkg/models"
)

// SchemaChecker is the boolean schema-check collaborator. The rule set
// itself lives behind this interface so it can evolve independently of
// the validation gate.
type SchemaChecker interface {
	CheckSchema(ctx context.Context, msg models.RawMessage) (bool, error)
}

type Service struct {
	checker SchemaChecker
	logger  logger.Logger
}

func NewService(checker SchemaChecker, log logger.Logger) *Service {
	return &Service{
		checker: checker,
		logger:  log,
	}
}

// NewServiceFromRules compiles the configured CEL schema rules into a
// checker. An empty rule set falls back to the compiled-in defaults.
func NewServiceFromRules(rules []config.SchemaRule, log logger.Logger) (*Service, error) {
	evaluator, err := celgo.NewEvaluator()
	if err != nil {
		return nil, err
	}

	celRules := make([]celgo.Rule, 0, len(rules))
	for _, r := range rules {
		celRules = append(celRules, celgo.Rule{Name: r.Name, Expression: r.Expression})
	}
	if len(celRules) == 0 {
		celRules = celgo.DefaultRules()
	}

	checker, err := evaluator.Compile(celRules)
	if err != nil {
		return nil, err
	}

	metrics.SetValidationActiveRules(len(celRules))
	return NewService(checker, log), nil
}

// Validate checks the raw message against the schema. It either returns
// the message unchanged, typed as validated, or fails with an
// INVALID_INPUT error. No retries, no partial success.
func (s *Service) Validate(ctx context.Context, raw models.RawMessage) (models.ValidatedMessage, error) {
	start := time.Now()

	ok, err := s.checker.CheckSchema(ctx, raw)
	if err != nil {
		s.logger.ErrorwCtx(ctx, "Schema check failed",
			"error", err,
			"message", map[string]interface{}(raw),
		)
		s.recordMetrics(time.Since(start), false)
		return nil, errors.Wrap(err, errors.ErrInvalidInput)
	}

	if !ok {
		s.logger.ErrorwCtx(ctx, "Invalid message schema",
			"message", map[string]interface{}(raw),
		)
		s.recordMetrics(time.Since(start), false)
		return nil, errors.ErrInvalidInput
	}

	s.recordMetrics(time.Since(start), true)
	return models.ValidatedMessage(raw), nil
}

func (s *Service) recordMetrics(duration time.Duration, valid bool) {
	status := "valid"
	if !valid {
		status = "invalid"
	}
	metrics.ValidationMessagesTotal.WithLabelValues(status).Inc()
	metrics.ObserveValidationDuration(duration, status)
}
