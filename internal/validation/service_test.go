package validation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meanrev/internal/config"
	"meanrev/internal/logger"
	"meanrev/pkg/errors"
	"meanrev/pkg/models"
)

type stubChecker struct {
	ok  bool
	err error
}

func (s *stubChecker) CheckSchema(ctx context.Context, msg models.RawMessage) (bool, error) {
	return s.ok, s.err
}

func TestValidatePassesMessageThroughUnchanged(t *testing.T) {
	svc := NewService(&stubChecker{ok: true}, logger.NopLogger())

	raw := models.RawMessage{
		"symbol":         "AAPL",
		"price":          101.5,
		"moving_average": 100.0,
		"extra":          "kept",
	}

	validated, err := svc.Validate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, models.ValidatedMessage(raw), validated)
}

func TestValidateRejectsOnSchemaFailure(t *testing.T) {
	svc := NewService(&stubChecker{ok: false}, logger.NopLogger())

	validated, err := svc.Validate(context.Background(), models.RawMessage{"price": "bogus"})
	require.Error(t, err)
	assert.Nil(t, validated)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	var appErr *errors.Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.IsFatal())
}

func TestValidateWrapsCheckerError(t *testing.T) {
	svc := NewService(&stubChecker{err: fmt.Errorf("evaluator blew up")}, logger.NopLogger())

	_, err := svc.Validate(context.Background(), models.RawMessage{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "evaluator blew up")
}

func TestNewServiceFromRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []config.SchemaRule
		wantError bool
	}{
		{
			name:  "empty rules use defaults",
			rules: nil,
		},
		{
			name: "custom rule",
			rules: []config.SchemaRule{
				{Name: "has_symbol", Expression: `'symbol' in message`},
			},
		},
		{
			name: "invalid expression",
			rules: []config.SchemaRule{
				{Name: "broken", Expression: `not valid cel!!!`},
			},
			wantError: true,
		},
		{
			name: "non-boolean expression",
			rules: []config.SchemaRule{
				{Name: "non_bool", Expression: `size(message)`},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewServiceFromRules(tt.rules, logger.NopLogger())
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestValidateWithCompiledDefaultRules(t *testing.T) {
	svc, err := NewServiceFromRules(nil, logger.NopLogger())
	require.NoError(t, err)

	tests := []struct {
		name  string
		msg   models.RawMessage
		valid bool
	}{
		{
			name: "well formed record",
			msg: models.RawMessage{
				"symbol":         "AAPL",
				"price":          150.25,
				"moving_average": 148.0,
			},
			valid: true,
		},
		{
			name:  "missing optional fields still valid",
			msg:   models.RawMessage{"timestamp": "2024-01-01T00:00:00Z"},
			valid: true,
		},
		{
			name:  "empty record rejected",
			msg:   models.RawMessage{},
			valid: false,
		},
		{
			name:  "non-string symbol rejected",
			msg:   models.RawMessage{"symbol": 42.0},
			valid: false,
		},
		{
			name:  "textual price rejected",
			msg:   models.RawMessage{"symbol": "AAPL", "price": "expensive"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tt.msg)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidInput))
			}
		})
	}
}
