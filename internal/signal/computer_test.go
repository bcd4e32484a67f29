package signal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meanrev/internal/config"
	"meanrev/internal/logger"
	"meanrev/pkg/errors"
	"meanrev/pkg/models"
)

func testComputer() *Computer {
	return NewComputer(config.FieldDefaults{
		Symbol:        "UNKNOWN",
		Price:         100.0,
		MovingAverage: 100.0,
	}, logger.NopLogger())
}

func TestComputeClassification(t *testing.T) {
	computer := testComputer()

	tests := []struct {
		name          string
		price         float64
		movingAverage float64
		wantDeviation float64
		wantSignal    string
	}{
		{
			name:          "price well above average reverts down",
			price:         110,
			movingAverage: 100,
			wantDeviation: 0.1,
			wantSignal:    SignalRevertDown,
		},
		{
			name:          "price well below average reverts up",
			price:         90,
			movingAverage: 100,
			wantDeviation: -0.1,
			wantSignal:    SignalRevertUp,
		},
		{
			name:          "price at average is neutral",
			price:         100,
			movingAverage: 100,
			wantDeviation: 0,
			wantSignal:    SignalNeutral,
		},
		{
			name:          "upper boundary is exclusive",
			price:         103,
			movingAverage: 100,
			wantDeviation: 0.03,
			wantSignal:    SignalNeutral,
		},
		{
			name:          "just above upper boundary reverts down",
			price:         103.01,
			movingAverage: 100,
			wantDeviation: 0.0301,
			wantSignal:    SignalRevertDown,
		},
		{
			name:          "lower boundary is exclusive",
			price:         97,
			movingAverage: 100,
			wantDeviation: -0.03,
			wantSignal:    SignalNeutral,
		},
		{
			name:          "just below lower boundary reverts up",
			price:         96.9,
			movingAverage: 100,
			wantDeviation: -0.031,
			wantSignal:    SignalRevertUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := models.ValidatedMessage{
				"symbol":         "AAPL",
				"price":          tt.price,
				"moving_average": tt.movingAverage,
			}

			enriched, err := computer.Compute(context.Background(), msg)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSignal, enriched[models.FieldSignal])
			assert.InDelta(t, tt.wantDeviation, enriched[models.FieldDeviation], 1e-9)
		})
	}
}

func TestComputeDefaults(t *testing.T) {
	computer := testComputer()

	enriched, err := computer.Compute(context.Background(), models.ValidatedMessage{})
	require.NoError(t, err)

	assert.Equal(t, SignalNeutral, enriched[models.FieldSignal])
	assert.Equal(t, 0.0, enriched[models.FieldDeviation])
}

func TestComputeRoundsHalfToEven(t *testing.T) {
	computer := testComputer()

	// 0.00125 rounds to 0.0012 under banker's rounding, not 0.0013.
	enriched, err := computer.Compute(context.Background(), models.ValidatedMessage{
		"symbol":         "AAPL",
		"price":          100.125,
		"moving_average": 100.0,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0012, enriched[models.FieldDeviation])
}

func TestComputePreservesOriginalFields(t *testing.T) {
	computer := testComputer()

	msg := models.ValidatedMessage{
		"symbol":         "MSFT",
		"price":          110.0,
		"moving_average": 100.0,
		"exchange":       "NASDAQ",
		"volume":         12345,
	}

	enriched, err := computer.Compute(context.Background(), msg)
	require.NoError(t, err)

	for key, value := range msg {
		assert.Equal(t, value, enriched[key], "key %q must survive enrichment", key)
	}
	assert.Len(t, enriched, len(msg)+2)

	// The input map itself is untouched.
	assert.NotContains(t, msg, models.FieldSignal)
	assert.NotContains(t, msg, models.FieldDeviation)
}

func TestComputeOverwritesCollidingKeys(t *testing.T) {
	computer := testComputer()

	msg := models.ValidatedMessage{
		"symbol":                   "MSFT",
		"price":                    110.0,
		"moving_average":           100.0,
		"mean_reversion_signal":    "stale",
		"mean_reversion_deviation": 99.0,
	}

	enriched, err := computer.Compute(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, SignalRevertDown, enriched[models.FieldSignal])
	assert.InDelta(t, 0.1, enriched[models.FieldDeviation], 1e-9)
}

func TestComputeIsDeterministic(t *testing.T) {
	computer := testComputer()

	msg := models.ValidatedMessage{
		"symbol":         "GOOG",
		"price":          104.5,
		"moving_average": 101.0,
	}

	first, err := computer.Compute(context.Background(), msg)
	require.NoError(t, err)
	second, err := computer.Compute(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeCoercesNumericStrings(t *testing.T) {
	computer := testComputer()

	enriched, err := computer.Compute(context.Background(), models.ValidatedMessage{
		"symbol":         "AAPL",
		"price":          "110",
		"moving_average": "100",
	})
	require.NoError(t, err)

	assert.Equal(t, SignalRevertDown, enriched[models.FieldSignal])
}

func TestComputeMalformedField(t *testing.T) {
	computer := testComputer()

	tests := []struct {
		name string
		msg  models.ValidatedMessage
	}{
		{
			name: "non-numeric price",
			msg:  models.ValidatedMessage{"price": "not a number"},
		},
		{
			name: "non-numeric moving average",
			msg:  models.ValidatedMessage{"moving_average": []string{"oops"}},
		},
		{
			name: "non-string symbol",
			msg:  models.ValidatedMessage{"symbol": 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := computer.Compute(context.Background(), tt.msg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMalformedField))
		})
	}
}

func TestComputeZeroMovingAverage(t *testing.T) {
	computer := testComputer()

	_, err := computer.Compute(context.Background(), models.ValidatedMessage{
		"symbol":         "AAPL",
		"price":          50.0,
		"moving_average": 0.0,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDivisionByZero))

	var appErr *errors.Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.IsFatal())
}
