package reconcile

import "context"

// ActivityStatus classifies an activity log entry.
type ActivityStatus string

// Activity statuses.
const (
	ActivitySuccess ActivityStatus = "success"
	ActivityWarning ActivityStatus = "warning"
	ActivityError   ActivityStatus = "error"
)

// ActivityEntry is one append-only activity log line: emitted around
// each feed invocation and around the final write phase. Write-only
// from the reconciler's point of view.
type ActivityEntry struct {
	Source  string         `json:"source"`
	Status  ActivityStatus `json:"status"`
	Message string         `json:"message"`
	Records int            `json:"records"`
}

// ActivitySink receives activity entries. Implementations must not
// fail the run; a sink that cannot write should drop the entry.
type ActivitySink interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// NopSink discards all entries. It is the default sink, keeping the
// reconciler free of I/O unless a real sink is injected.
var NopSink ActivitySink = nopSink{}

type nopSink struct{}

func (nopSink) Record(context.Context, ActivityEntry) {}
