package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixSeen = "seen:"
)

const (
	DefaultInputTopic  = "validated_market_data"
	DefaultOutputTopic = "mean_reversion_signals"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultSeenTTLSeconds = 3600
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)

const (
	DefaultSymbol        = "UNKNOWN"
	DefaultPrice         = 100.0
	DefaultMovingAverage = 100.0
)
