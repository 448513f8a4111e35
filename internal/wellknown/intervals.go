package wellknown

import "time"

const (
	// ClockJumpCheckInterval is how often the wall clock is compared against the monotonic clock.
	ClockJumpCheckInterval = 30 * time.Second

	// ClockJumpThreshold is the drift between wall and monotonic time treated as a clock change.
	ClockJumpThreshold = 5 * time.Second

	// OracleRefreshInterval is how often the HTTP oracle refetches sunrise and sunset times.
	OracleRefreshInterval = 6 * time.Hour

	// OracleRetryInterval is how soon the HTTP oracle retries after a failed refresh.
	OracleRetryInterval = 5 * time.Minute

	// OracleRetryMax is how many times a failed sun times request is retried before the refresh fails.
	OracleRetryMax = 4

	// MQTTConnectTimeout bounds the initial broker connection.
	MQTTConnectTimeout = 10 * time.Second

	// MQTTPublishTimeout bounds a single publish.
	MQTTPublishTimeout = 5 * time.Second
)
