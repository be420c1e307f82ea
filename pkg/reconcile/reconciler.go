// Package reconcile orchestrates one aggregation run: it invokes
// every configured feed concurrently, isolates per-feed failures,
// merges whatever succeeded into canonical offerings, derives
// lifecycle statuses against the previously persisted set and returns
// the final write-set. The reconciler itself performs no I/O beyond
// calling the feeds it was given; persistence belongs to the caller.
package reconcile

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ipomoney/ipopulse/pkg/authority"
	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/lifecycle"
	"github.com/ipomoney/ipopulse/pkg/logging"
	"github.com/ipomoney/ipopulse/pkg/merge"
	"github.com/ipomoney/ipopulse/pkg/offerings"
	"github.com/ipomoney/ipopulse/pkg/sources"
)

// Reconciler drives fetch, merge and status derivation for one run.
type Reconciler struct {
	table   *authority.Table
	timeout time.Duration
	sink    ActivitySink
}

// New creates a Reconciler with the given options.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		table:   authority.Default(),
		timeout: defaultSourceTimeout,
		sink:    NopSink,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// fetchResult carries one feed's outcome across the barrier.
type fetchResult struct {
	id      offerings.SourceID
	records []offerings.Record
	err     error
}

// Run executes one reconciliation pass. Feed failures are collected,
// never fatal; only cancellation of ctx ends the run early, in which
// case the context error is returned and the partial result dropped.
func (r *Reconciler) Run(ctx context.Context, srcs []sources.Source, persisted []offerings.Persisted, today offerings.Date) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := NewResult()

	for _, src := range srcs {
		result.Metadata.Sources = append(result.Metadata.Sources, src.ID())
	}
	slices.Sort(result.Metadata.Sources)

	// Fetch all feeds concurrently. The merge below is a barrier:
	// it never runs against a partial, still-arriving source set.
	bySource := r.fetch(ctx, srcs, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(bySource) == 0 {
		result.Degraded = true
		r.sink.Record(ctx, ActivityEntry{
			Source:  "reconcile",
			Status:  ActivityWarning,
			Message: "no data collected from any source",
		})
		logger.Warn().
			Int("failures", len(result.Failures)).
			Msg("Run fully degraded: no sources succeeded")
		result.Finalize()
		return result, nil
	}

	merged, stats := merge.New(r.table).Merge(bySource)
	result.Stats = stats
	logger.Info().
		Int("records", stats.Flattened).
		Int("offerings", stats.Groups).
		Int("dropped", stats.Dropped).
		Msg("Merged feed records")

	prevStatus := make(map[string]offerings.Status, len(persisted))
	for _, p := range persisted {
		prevStatus[p.Name] = p.Status
	}
	for i := range merged {
		o := &merged[i]
		prev := prevStatus[o.Name]
		status, changed := lifecycle.Derive(o, prev, today)
		o.Status = status
		if changed {
			result.Transitions = append(result.Transitions, lifecycle.Transition{
				Name: o.Name,
				From: prev,
				To:   status,
			})
		}
	}
	result.WriteSet = merged

	r.sink.Record(ctx, ActivityEntry{
		Source:  "reconcile",
		Status:  ActivitySuccess,
		Message: fmt.Sprintf("reconciled %d offerings", len(result.WriteSet)),
		Records: len(result.WriteSet),
	})

	result.Finalize()
	return result, nil
}

// fetch invokes every feed concurrently and waits for all of them to
// finish or time out. Failures land in result.Failures.
func (r *Reconciler) fetch(ctx context.Context, srcs []sources.Source, result *Result) map[offerings.SourceID][]offerings.Record {
	logger := logging.FromContext(ctx)

	var wg sync.WaitGroup
	results := make(chan fetchResult, len(srcs))

	for _, src := range srcs {
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()

			sctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			records, err := src.Fetch(sctx)
			results <- fetchResult{id: src.ID(), records: records, err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	bySource := make(map[offerings.SourceID][]offerings.Record, len(srcs))
	for res := range results {
		if res.err != nil {
			failure := errors.NewSourceError(res.id.String(), res.err)
			result.Failures = append(result.Failures, failure)
			r.sink.Record(ctx, ActivityEntry{
				Source:  res.id.String(),
				Status:  ActivityError,
				Message: res.err.Error(),
			})
			logger.Error().
				Err(res.err).
				Str("source", res.id.String()).
				Msg("Feed fetch failed")
			continue
		}

		bySource[res.id] = res.records
		r.sink.Record(ctx, ActivityEntry{
			Source:  res.id.String(),
			Status:  ActivitySuccess,
			Message: fmt.Sprintf("fetched %d records", len(res.records)),
			Records: len(res.records),
		})
		logger.Info().
			Str("source", res.id.String()).
			Int("records", len(res.records)).
			Msg("Feed fetch succeeded")
	}

	// Deterministic failure order for callers and tests.
	slices.SortFunc(result.Failures, func(a, b *errors.SourceError) int {
		if a.Source < b.Source {
			return -1
		}
		if a.Source > b.Source {
			return 1
		}
		return 0
	})

	return bySource
}
