package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// Config holds retry configuration. Attempts counts total calls, not retries.
type Config struct {
	Attempts uint
	Delay    time.Duration
}

// DefaultConfig returns the posting-budget defaults.
func DefaultConfig() Config {
	return Config{
		Attempts: 3,
		Delay:    1 * time.Second,
	}
}

// Do calls fn up to cfg.Attempts times with a fixed delay between calls,
// returning the last error when the budget is exhausted.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(cfg.Attempts),
		retry.Delay(cfg.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
