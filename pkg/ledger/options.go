package ledger

import (
	"time"

	"github.com/bft-labs/epochbits/pkg/log"
	"github.com/bft-labs/epochbits/pkg/state"
)

// Option configures optional behavior of a Ledger.
type Option func(*options)

type options struct {
	repo   state.Repository
	logger log.Logger
	now    func() time.Time
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		now:    time.Now,
	}
}

// WithRepository persists every change through repo. Without it the
// ledger lives in memory only.
func WithRepository(repo state.Repository) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
