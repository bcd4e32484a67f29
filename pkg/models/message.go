package models

// RawMessage is a market-data record as received from the input topic:
// a flat string-keyed mapping with no guaranteed structure.
type RawMessage map[string]interface{}

// ValidatedMessage is a RawMessage that has passed schema validation.
// Structurally identical, but the type marks it as trustworthy.
type ValidatedMessage map[string]interface{}

// EnrichedMessage is a ValidatedMessage with the computed signal fields
// merged in.
type EnrichedMessage map[string]interface{}

const (
	FieldSymbol        = "symbol"
	FieldPrice         = "price"
	FieldMovingAverage = "moving_average"

	FieldDeviation = "mean_reversion_deviation"
	FieldSignal    = "mean_reversion_signal"
)

func (m RawMessage) GetField(name string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	value, ok := m[name]
	return value, ok
}

func (m ValidatedMessage) GetField(name string) (interface{}, bool) {
	return RawMessage(m).GetField(name)
}

// Clone returns a shallow copy so enrichment never mutates the input.
func (m ValidatedMessage) Clone() EnrichedMessage {
	out := make(EnrichedMessage, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}
