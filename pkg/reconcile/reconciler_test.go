package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipomoney/ipopulse/pkg/authority"
	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/offerings"
	"github.com/ipomoney/ipopulse/pkg/sources"
)

// fakeFeed is a canned source for tests.
type fakeFeed struct {
	id      offerings.SourceID
	records []offerings.Record
	err     error
	// block makes Fetch wait for ctx, simulating a hung feed.
	block bool
}

func (f *fakeFeed) ID() offerings.SourceID { return f.id }

func (f *fakeFeed) Fetch(ctx context.Context) ([]offerings.Record, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// memorySink collects activity entries for assertions.
type memorySink struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

func (s *memorySink) Record(_ context.Context, entry ActivityEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *memorySink) bySource(source string) []ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ActivityEntry
	for _, e := range s.entries {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return out
}

func datePtr(y int, m time.Month, d int) *offerings.Date {
	date := offerings.NewDate(y, m, d)
	return &date
}

func testFeeds() []sources.Source {
	return []sources.Source{
		&fakeFeed{
			id: "alpha",
			records: []offerings.Record{
				{
					Name:      "Acme Industries",
					OpenDate:  datePtr(2026, 2, 10),
					CloseDate: datePtr(2026, 2, 12),
					Source:    "alpha",
				},
			},
		},
		&fakeFeed{
			id: "beta",
			records: []offerings.Record{
				{Name: "Acme Industries Ltd", ListingDate: nil, Source: "beta"},
				{Name: "Widget Works", OpenDate: datePtr(2026, 2, 1), CloseDate: datePtr(2026, 2, 3), Source: "beta"},
			},
		},
	}
}

func TestRunAllSourcesSucceed(t *testing.T) {
	r := New()

	result, err := r.Run(context.Background(), testFeeds(), nil, offerings.NewDate(2026, 2, 11))
	require.NoError(t, err)

	assert.True(t, result.IsSuccess())
	assert.False(t, result.Degraded)
	require.Len(t, result.WriteSet, 2)

	byName := make(map[string]offerings.Offering)
	for _, o := range result.WriteSet {
		byName[o.Name] = o
	}

	acme := byName["Acme Industries"]
	assert.Equal(t, offerings.StatusLive, acme.Status)

	widget := byName["Widget Works"]
	assert.Equal(t, offerings.StatusClosed, widget.Status)

	// Fresh offerings with a derived status count as transitions.
	assert.Len(t, result.Transitions, 2)
	assert.Equal(t, []offerings.SourceID{"alpha", "beta"}, result.Metadata.Sources)
}

func TestRunIsolatesSourceFailure(t *testing.T) {
	feeds := append(testFeeds(), &fakeFeed{
		id:  "gamma",
		err: errors.New("connection refused"),
	})

	result, err := New().Run(context.Background(), feeds, nil, offerings.NewDate(2026, 2, 11))
	require.NoError(t, err)

	// The failing feed is reported; the others still produce data.
	assert.False(t, result.Degraded)
	assert.False(t, result.IsSuccess())
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "gamma", result.Failures[0].Source)
	assert.Len(t, result.WriteSet, 2)
}

func TestRunAllSourcesFail(t *testing.T) {
	feeds := []sources.Source{
		&fakeFeed{id: "alpha", err: errors.New("boom")},
		&fakeFeed{id: "beta", err: errors.New("bust")},
	}

	result, err := New().Run(context.Background(), feeds, nil, offerings.Today())
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Empty(t, result.WriteSet)
	assert.Len(t, result.Failures, 2)

	// Failures come back in source order.
	assert.Equal(t, "alpha", result.Failures[0].Source)
	assert.Equal(t, "beta", result.Failures[1].Source)
}

func TestRunTimeoutCountsAsFailure(t *testing.T) {
	feeds := append(testFeeds(), &fakeFeed{id: "slow", block: true})

	r := New(WithSourceTimeout(20 * time.Millisecond))
	result, err := r.Run(context.Background(), feeds, nil, offerings.NewDate(2026, 2, 11))
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "slow", result.Failures[0].Source)
	assert.ErrorIs(t, result.Failures[0], context.DeadlineExceeded)
	assert.Len(t, result.WriteSet, 2)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().Run(ctx, testFeeds(), nil, offerings.Today())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRunDetectsTransitions(t *testing.T) {
	persisted := []offerings.Persisted{
		{Name: "Acme Industries", Status: offerings.StatusUpcoming},
		{Name: "Widget Works", Status: offerings.StatusClosed},
	}

	result, err := New().Run(context.Background(), testFeeds(), persisted, offerings.NewDate(2026, 2, 11))
	require.NoError(t, err)

	// Acme moved Upcoming -> Live; Widget Works stayed Closed.
	require.Len(t, result.Transitions, 1)
	tr := result.Transitions[0]
	assert.Equal(t, "Acme Industries", tr.Name)
	assert.Equal(t, offerings.StatusUpcoming, tr.From)
	assert.Equal(t, offerings.StatusLive, tr.To)
}

func TestRunRecordsActivity(t *testing.T) {
	sink := &memorySink{}
	feeds := append(testFeeds(), &fakeFeed{id: "gamma", err: errors.New("boom")})

	r := New(WithActivitySink(sink))
	_, err := r.Run(context.Background(), feeds, nil, offerings.NewDate(2026, 2, 11))
	require.NoError(t, err)

	alpha := sink.bySource("alpha")
	require.Len(t, alpha, 1)
	assert.Equal(t, ActivitySuccess, alpha[0].Status)
	assert.Equal(t, 1, alpha[0].Records)

	gamma := sink.bySource("gamma")
	require.Len(t, gamma, 1)
	assert.Equal(t, ActivityError, gamma[0].Status)

	run := sink.bySource("reconcile")
	require.Len(t, run, 1)
	assert.Equal(t, ActivitySuccess, run[0].Status)
	assert.Equal(t, 2, run[0].Records)
}

func TestRunCustomTable(t *testing.T) {
	table := authority.New()
	table.Set("alpha", authority.Descriptive, 5)
	table.Set("beta", authority.Descriptive, 50)

	feeds := []sources.Source{
		&fakeFeed{id: "alpha", records: []offerings.Record{
			{Name: "Acme Industries", Source: "alpha"},
		}},
		&fakeFeed{id: "beta", records: []offerings.Record{
			{Name: "Acme Industries Ltd", Source: "beta"},
		}},
	}

	result, err := New(WithTable(table)).Run(context.Background(), feeds, nil, offerings.Today())
	require.NoError(t, err)

	require.Len(t, result.WriteSet, 1)
	assert.Equal(t, "Acme Industries Ltd", result.WriteSet[0].Name)
}

func TestResultSummary(t *testing.T) {
	result := NewResult()
	result.Metadata.Sources = []offerings.SourceID{"alpha", "beta"}
	result.WriteSet = make([]offerings.Offering, 3)
	result.Finalize()

	assert.Contains(t, result.Summary(), "3 offerings from 2/2 sources")

	result.Degraded = true
	assert.Contains(t, result.Summary(), "no sources succeeded")
}
