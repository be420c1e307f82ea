// Package sources defines the contract for offering feeds and the
// YAML registry that configures them. A feed returns normalized
// records for one external source; how it retrieves and parses them
// is its own business. The registry also carries the per-source
// priority rankings, because the merge policy is configuration, not
// code.
package sources

import (
	"context"
	"time"

	"github.com/ipomoney/ipopulse/pkg/offerings"
)

// Source is one external feed of offering records.
type Source interface {
	// ID identifies this feed for priority lookup and reporting.
	ID() offerings.SourceID

	// Fetch retrieves the feed's current records. A non-nil error
	// marks the whole feed as failed for this run; it never aborts
	// the run.
	Fetch(ctx context.Context) ([]offerings.Record, error)
}

// Kind selects the adapter implementation for a configured feed.
type Kind string

// Feed kinds.
const (
	// KindHTTP fetches a JSON feed over HTTP.
	KindHTTP Kind = "http"
	// KindFile reads records from a local YAML file.
	KindFile Kind = "file"
)

// IsValid returns true if the kind is one of the defined constants.
func (k Kind) IsValid() bool {
	return k == KindHTTP || k == KindFile
}

// Priority holds one feed's rank in each field category.
type Priority struct {
	Descriptive int `yaml:"descriptive"`
	Premium     int `yaml:"premium"`
}

// Config describes one configured feed.
type Config struct {
	ID       offerings.SourceID `yaml:"id"`
	Kind     Kind               `yaml:"kind"`
	URL      string             `yaml:"url,omitempty"`
	Path     string             `yaml:"path,omitempty"`
	Priority Priority           `yaml:"priority"`

	// TimeoutSeconds bounds one Fetch call. Zero means the
	// orchestrator default applies.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// Timeout returns the configured fetch timeout, or zero when unset.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
