package signal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"meanrev/internal/config"
	"meanrev/internal/constants"
	"meanrev/internal/logger"
	"meanrev/pkg/errors"
	"meanrev/pkg/metrics"
	"meanrev/pkg/models"
)

// Classification labels for the deviation of price from its moving
// average. REVERT_UP means the price sits well below the average and is
// expected to revert upward; REVERT_DOWN is the mirror case.
const (
	SignalRevertUp   = "REVERT_UP"
	SignalRevertDown = "REVERT_DOWN"
	SignalNeutral    = "NEUTRAL"
)

// revertThreshold is the ±3% band around the moving average. The
// boundaries are exclusive: a deviation of exactly ±0.03 is NEUTRAL.
var revertThreshold = decimal.NewFromFloat(0.03)

// deviationScale is the number of decimal places kept on the published
// deviation, rounded half to even.
const deviationScale = 4

type Computer struct {
	defaults config.FieldDefaults
	logger   logger.Logger
}

func NewComputer(defaults config.FieldDefaults, log logger.Logger) *Computer {
	if defaults.Symbol == "" {
		defaults.Symbol = constants.DefaultSymbol
	}
	if defaults.Price == 0 {
		defaults.Price = constants.DefaultPrice
	}
	if defaults.MovingAverage == 0 {
		defaults.MovingAverage = constants.DefaultMovingAverage
	}

	return &Computer{
		defaults: defaults,
		logger:   log,
	}
}

// Compute derives the mean reversion deviation and classification for a
// validated record and returns the record with the two fields merged
// in. The input is never mutated; on key collision the computed values
// win. Absent fields take the configured defaults.
func (c *Computer) Compute(ctx context.Context, validated models.ValidatedMessage) (models.EnrichedMessage, error) {
	start := time.Now()

	symbol, err := c.symbolField(validated)
	if err != nil {
		metrics.ObserveSignalComputeDuration(time.Since(start), "malformed")
		return nil, err
	}

	price, err := c.floatField(validated, models.FieldPrice, c.defaults.Price)
	if err != nil {
		metrics.ObserveSignalComputeDuration(time.Since(start), "malformed")
		return nil, err
	}

	movingAvg, err := c.floatField(validated, models.FieldMovingAverage, c.defaults.MovingAverage)
	if err != nil {
		metrics.ObserveSignalComputeDuration(time.Since(start), "malformed")
		return nil, err
	}

	c.logger.InfowCtx(ctx, "Computing mean reversion signal",
		"symbol", symbol,
	)

	if movingAvg == 0 {
		metrics.ObserveSignalComputeDuration(time.Since(start), "zero_divisor")
		return nil, errors.ErrDivisionByZero.WithDetail("symbol", symbol)
	}

	priceDec := decimal.NewFromFloat(price)
	movingAvgDec := decimal.NewFromFloat(movingAvg)
	deviation := priceDec.Sub(movingAvgDec).Div(movingAvgDec)

	sig := classify(deviation)
	rounded := deviation.RoundBank(deviationScale)

	enriched := validated.Clone()
	enriched[models.FieldDeviation] = rounded.InexactFloat64()
	enriched[models.FieldSignal] = sig

	c.logger.DebugwCtx(ctx, "Mean reversion result",
		"symbol", symbol,
		"deviation", rounded.String(),
		"signal", sig,
	)

	metrics.SignalMessagesTotal.WithLabelValues(sig).Inc()
	metrics.ObserveSignalComputeDuration(time.Since(start), "computed")
	return enriched, nil
}

func classify(deviation decimal.Decimal) string {
	switch {
	case deviation.LessThan(revertThreshold.Neg()):
		return SignalRevertUp
	case deviation.GreaterThan(revertThreshold):
		return SignalRevertDown
	default:
		return SignalNeutral
	}
}

func (c *Computer) symbolField(msg models.ValidatedMessage) (string, error) {
	value, ok := msg.GetField(models.FieldSymbol)
	if !ok {
		return c.defaults.Symbol, nil
	}

	symbol, ok := models.CoerceString(value)
	if !ok {
		return "", errors.ErrMalformedField.
			WithDetail("field", models.FieldSymbol).
			WithDetail("value", value)
	}
	return symbol, nil
}

func (c *Computer) floatField(msg models.ValidatedMessage, field string, fallback float64) (float64, error) {
	value, ok := msg.GetField(field)
	if !ok {
		return fallback, nil
	}

	f, ok := models.CoerceFloat(value)
	if !ok {
		return 0, errors.ErrMalformedField.
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return f, nil
}
