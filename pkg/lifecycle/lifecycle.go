// Package lifecycle derives an offering's status from its dates.
// Status is recomputed fresh every run against the current civil
// date; it is never copied from a feed, and never invented when the
// dates are insufficient to support one.
package lifecycle

import (
	"fmt"

	"github.com/ipomoney/ipopulse/pkg/offerings"
)

// Derive computes the lifecycle status for an offering as of today,
// and reports whether it differs from the previously persisted
// status.
//
// A listing date makes the status permanently Listed; no further date
// comparison happens. With both open and close dates present the
// status is Live inside the window (inclusive on both ends), Closed
// after it and Upcoming before it. With insufficient dates the
// previous status is retained unchanged.
func Derive(o *offerings.Offering, prev offerings.Status, today offerings.Date) (offerings.Status, bool) {
	derived := prev

	switch {
	case o.ListingDate != nil:
		derived = offerings.StatusListed
	case o.OpenDate != nil && o.CloseDate != nil:
		switch {
		case today.Before(*o.OpenDate):
			derived = offerings.StatusUpcoming
		case today.After(*o.CloseDate):
			derived = offerings.StatusClosed
		default:
			derived = offerings.StatusLive
		}
	}

	return derived, derived != prev
}

// Transition records one observed status change, for logging and the
// activity trail.
type Transition struct {
	Name string
	From offerings.Status
	To   offerings.Status
}

// String formats the transition for logs.
func (t Transition) String() string {
	from := t.From.String()
	if from == "" {
		from = "(none)"
	}
	return fmt.Sprintf("%s: %s -> %s", t.Name, from, t.To)
}
