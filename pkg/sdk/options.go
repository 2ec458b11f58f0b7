package sdk

import "time"

type options struct {
	timeout      time.Duration
	maxAttempts  int
	initialDelay time.Duration
}

// The default timeout covers a full sweep of a large deck.
func defaultOptions() options {
	return options{
		timeout:      2 * time.Minute,
		maxAttempts:  3,
		initialDelay: 250 * time.Millisecond,
	}
}

// Option configures the SDK client.
type Option func(*options)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry configures retries of read-only tools. Tools that write
// (sweep, calibrate) are never retried.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(o *options) {
		o.maxAttempts = maxAttempts
		o.initialDelay = initialDelay
	}
}
