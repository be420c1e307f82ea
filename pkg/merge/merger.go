// Package merge combines per-source offering records into one
// canonical record per entity. Conflicts are resolved field by field
// against the configured authority table; the result is independent
// of the order sources happen to be processed in, which is the
// defining correctness property of this package.
package merge

import (
	"maps"
	"reflect"
	"slices"

	"github.com/ipomoney/ipopulse/pkg/authority"
	"github.com/ipomoney/ipopulse/pkg/identity"
	"github.com/ipomoney/ipopulse/pkg/logging"
	"github.com/ipomoney/ipopulse/pkg/offerings"
)

// fieldSpec binds one mergeable field to its priority category.
type fieldSpec struct {
	name     string
	category authority.Category
}

// mergeFields lists every conflict-resolved field. Name rides the
// descriptive table so the highest-ranked descriptive source decides
// the display spelling used as the store key.
var mergeFields = []fieldSpec{
	{"Name", authority.Descriptive},
	{"Type", authority.Descriptive},
	{"OpenDate", authority.Descriptive},
	{"CloseDate", authority.Descriptive},
	{"ListingDate", authority.Descriptive},
	{"PriceBandMin", authority.Descriptive},
	{"PriceBandMax", authority.Descriptive},
	{"IssueSizeCr", authority.Descriptive},
	{"LotSize", authority.Descriptive},
	{"GMP", authority.Premium},
	{"GMPPct", authority.Premium},
}

// Stats counts what happened to the input records. Malformed records
// are excluded silently but never invisibly.
type Stats struct {
	// Flattened is the total number of input records across sources.
	Flattened int
	// Dropped counts records excluded for carrying no identity
	// (blank or whitespace-only display name).
	Dropped int
	// BandsCleared counts records whose inverted price band was
	// treated as absent.
	BandsCleared int
	// Groups is the number of distinct entities produced.
	Groups int
}

// Merger groups records by identity key and resolves field conflicts
// using per-category source priorities.
type Merger struct {
	table *authority.Table
}

// New creates a Merger using the given authority table. A nil table
// falls back to the default rankings.
func New(table *authority.Table) *Merger {
	if table == nil {
		table = authority.Default()
	}
	return &Merger{table: table}
}

// group is the working state for one entity while merging.
type group struct {
	offering offerings.Offering
	// holders records the priority of the source whose value each
	// field currently carries. A field absent from the map is
	// unset on the canonical record.
	holders map[string]int
	// rawNames tracks distinct display names seen for this key,
	// for collision monitoring.
	rawNames map[string]bool
}

// Merge flattens records from all sources and produces one canonical
// offering per distinct identity key. The same input multiset yields
// the same output regardless of map iteration or source processing
// order: sources are visited in sorted ID order and a field value is
// only replaced by one of strictly greater priority, so the winner of
// every field is fully determined by the priority table.
func (m *Merger) Merge(bySource map[offerings.SourceID][]offerings.Record) ([]offerings.Offering, Stats) {
	var stats Stats
	groups := make(map[string]*group)

	for _, src := range slices.Sorted(maps.Keys(bySource)) {
		for i := range bySource[src] {
			rec := bySource[src][i]
			stats.Flattened++

			key := identity.Key(rec.Name)
			if key == "" {
				stats.Dropped++
				continue
			}

			if rec.HasInvertedBand() {
				rec.PriceBandMin = nil
				rec.PriceBandMax = nil
				stats.BandsCleared++
			}

			g, ok := groups[key]
			if !ok {
				g = &group{
					offering: offerings.Offering{IdentityKey: key},
					holders:  make(map[string]int),
					rawNames: make(map[string]bool),
				}
				groups[key] = g
			}
			g.rawNames[rec.Name] = true
			m.mergeRecord(g, &rec)
		}
	}

	merged := make([]offerings.Offering, 0, len(groups))
	for _, g := range groups {
		if len(g.rawNames) > 1 {
			logging.Debug().
				Str("identity_key", g.offering.IdentityKey).
				Int("distinct_names", len(g.rawNames)).
				Msg("Multiple display names grouped under one identity key")
		}
		merged = append(merged, g.offering)
	}
	slices.SortFunc(merged, func(a, b offerings.Offering) int {
		if a.IdentityKey < b.IdentityKey {
			return -1
		}
		if a.IdentityKey > b.IdentityKey {
			return 1
		}
		return 0
	})
	stats.Groups = len(merged)

	return merged, stats
}

// mergeRecord folds one record into its group, field by field. An
// unset canonical field adopts any incoming value regardless of
// priority; a set field is only overwritten by a source of strictly
// greater priority for that field's category. Ties keep the holder.
func (m *Merger) mergeRecord(g *group, rec *offerings.Record) {
	accepted := false

	for _, field := range mergeFields {
		value := recordFieldValue(rec, field.name)
		if value == nil {
			continue
		}

		priority := m.table.Priority(rec.Source, field.category)
		holder, held := g.holders[field.name]

		if held && priority <= holder {
			continue
		}
		setOfferingField(&g.offering, field.name, value)
		g.holders[field.name] = priority
		accepted = true
	}

	if accepted {
		g.offering.AddSource(rec.Source)
	}
}

// recordFieldValue extracts a named field from a record, returning
// nil for unset values. Unknown offering type counts as unset: it
// asserts nothing worth defending against a real value.
func recordFieldValue(rec *offerings.Record, name string) any {
	field := reflect.ValueOf(rec).Elem().FieldByName(name)
	if !field.IsValid() || field.IsZero() {
		return nil
	}
	value := field.Interface()
	if t, ok := value.(offerings.OfferingType); ok && t == offerings.TypeUnknown {
		return nil
	}
	return value
}

// setOfferingField sets a named field on the canonical offering.
// Record and Offering deliberately share field names and types for
// everything in mergeFields.
func setOfferingField(o *offerings.Offering, name string, value any) {
	field := reflect.ValueOf(o).Elem().FieldByName(name)
	if !field.IsValid() || !field.CanSet() {
		logging.Warn().Str("field", name).Msg("Field not settable on offering")
		return
	}
	field.Set(reflect.ValueOf(value))
}
