package reconcile

import (
	"time"

	"github.com/ipomoney/ipopulse/pkg/authority"
)

// defaultSourceTimeout bounds one feed fetch when the registry does
// not say otherwise.
const defaultSourceTimeout = 30 * time.Second

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithTable sets the authority table used for field conflicts.
func WithTable(table *authority.Table) Option {
	return func(r *Reconciler) {
		if table != nil {
			r.table = table
		}
	}
}

// WithSourceTimeout sets the per-feed fetch timeout.
func WithSourceTimeout(timeout time.Duration) Option {
	return func(r *Reconciler) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithActivitySink sets the activity log sink.
func WithActivitySink(sink ActivitySink) Option {
	return func(r *Reconciler) {
		if sink != nil {
			r.sink = sink
		}
	}
}
