package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meanrev/pkg/models"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid field presence check",
			expr:      `'symbol' in message`,
			wantError: false,
		},
		{
			name:      "valid type check",
			expr:      `type(message.price) == double`,
			wantError: false,
		},
		{
			name:      "invalid expression",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `undefinedVar == "test"`,
			wantError: true,
		},
		{
			name:      "non-bool expression",
			expr:      `size(message)`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompileRejectsBadRules(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.Compile([]Rule{
		{Name: "broken", Expression: `message ==`},
	})
	assert.Error(t, err)

	_, err = eval.Compile([]Rule{
		{Name: "non_bool", Expression: `message.symbol`},
	})
	assert.Error(t, err)
}

func TestCheckSchema(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	checker, err := eval.Compile([]Rule{
		{Name: "has_symbol", Expression: `'symbol' in message`},
		{Name: "price_positive", Expression: `!('price' in message) || double(message.price) > 0.0`},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		msg  models.RawMessage
		want bool
	}{
		{
			name: "satisfies all rules",
			msg:  models.RawMessage{"symbol": "AAPL", "price": 101.5},
			want: true,
		},
		{
			name: "optional field absent",
			msg:  models.RawMessage{"symbol": "AAPL"},
			want: true,
		},
		{
			name: "fails first rule",
			msg:  models.RawMessage{"price": 101.5},
			want: false,
		},
		{
			name: "fails second rule",
			msg:  models.RawMessage{"symbol": "AAPL", "price": -1.0},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.CheckSchema(context.Background(), tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultRulesCompile(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	checker, err := eval.Compile(DefaultRules())
	require.NoError(t, err)

	ok, err := checker.CheckSchema(context.Background(), models.RawMessage{
		"symbol":         "TSLA",
		"price":          180.0,
		"moving_average": 175.5,
	})
	require.NoError(t, err)
	assert.True(t, ok)
}
