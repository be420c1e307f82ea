package reconcile

import (
	"fmt"
	"time"

	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/lifecycle"
	"github.com/ipomoney/ipopulse/pkg/merge"
	"github.com/ipomoney/ipopulse/pkg/offerings"
)

// Result is the outcome of one reconciliation run. It always carries
// both the write-set and the full failure list, so a caller can tell
// complete success, partial success and total failure apart without
// reading logs.
type Result struct {
	// WriteSet is the canonical records to hand to the store.
	WriteSet []offerings.Offering

	// Failures lists every feed that failed or timed out this run.
	Failures []*errors.SourceError

	// Transitions lists offerings whose derived status differs
	// from the previously persisted one.
	Transitions []lifecycle.Transition

	// Stats describes what the merge did with the input records.
	Stats merge.Stats

	// Degraded is true when zero feeds succeeded. The run is still
	// a valid (empty) result, not an error.
	Degraded bool

	// Metadata about the run itself.
	Metadata Metadata
}

// Metadata describes the run timing and participants.
type Metadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Sources   []offerings.SourceID
}

// NewResult creates an empty result stamped with the current time.
func NewResult() *Result {
	return &Result{
		Metadata: Metadata{StartTime: time.Now()},
	}
}

// Finalize computes the run duration.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// IsSuccess returns true when every feed succeeded.
func (r *Result) IsSuccess() bool {
	return len(r.Failures) == 0
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	if r.Degraded {
		return fmt.Sprintf("no sources succeeded (%d failures)", len(r.Failures))
	}
	return fmt.Sprintf("%d offerings from %d/%d sources, %d status transitions (took %v)",
		len(r.WriteSet),
		len(r.Metadata.Sources)-len(r.Failures),
		len(r.Metadata.Sources),
		len(r.Transitions),
		r.Metadata.Duration.Round(time.Millisecond))
}
