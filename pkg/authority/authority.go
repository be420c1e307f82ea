// Package authority defines which feed wins a field-level conflict
// during merging. Two independent priority tables exist: one for
// descriptive data (dates, price band, issue size, lot size, type)
// and one for grey-market premium data. A feed can be the premium
// authority while ranking low for everything else, which is exactly
// how the upstream feeds behave.
package authority

import (
	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/offerings"
)

// Category is a group of offering fields sharing one priority table.
type Category string

// Field categories.
const (
	// Descriptive covers type, dates, price band, issue size and
	// lot size.
	Descriptive Category = "descriptive"
	// Premium covers the grey-market premium and its percentage.
	Premium Category = "premium"
)

// String returns the string representation of a category.
func (c Category) String() string {
	return string(c)
}

// Table holds per-source priorities for each field category. Higher
// is more authoritative; a source absent from a table has priority 0.
// Rankings are configuration, loaded from the source registry file,
// never hard-coded into merge logic.
type Table struct {
	Descriptive map[offerings.SourceID]int `yaml:"descriptive"`
	Premium     map[offerings.SourceID]int `yaml:"premium"`
}

// New creates an empty table.
func New() *Table {
	return &Table{
		Descriptive: make(map[offerings.SourceID]int),
		Premium:     make(map[offerings.SourceID]int),
	}
}

// Default returns the priority tables the upstream feeds converged
// on: ipopremium leads for descriptive data, investorgain for
// premium data.
func Default() *Table {
	return &Table{
		Descriptive: map[offerings.SourceID]int{
			offerings.SourceIPOPremium:   30,
			offerings.SourceChittorgarh:  20,
			offerings.SourceIPOJI:        15,
			offerings.SourceIPOWatch:     15,
			offerings.SourceMoneycontrol: 10,
			offerings.SourceInvestorgain: 10,
		},
		Premium: map[offerings.SourceID]int{
			offerings.SourceInvestorgain: 30,
			offerings.SourceIPOPremium:   20,
			offerings.SourceIPOJI:        10,
		},
	}
}

// Set assigns a source's priority for one category.
func (t *Table) Set(source offerings.SourceID, category Category, priority int) {
	switch category {
	case Descriptive:
		if t.Descriptive == nil {
			t.Descriptive = make(map[offerings.SourceID]int)
		}
		t.Descriptive[source] = priority
	case Premium:
		if t.Premium == nil {
			t.Premium = make(map[offerings.SourceID]int)
		}
		t.Premium[source] = priority
	}
}

// Priority returns the priority of a source for a field category.
// Unknown sources and categories rank 0.
func (t *Table) Priority(source offerings.SourceID, category Category) int {
	switch category {
	case Descriptive:
		return t.Descriptive[source]
	case Premium:
		return t.Premium[source]
	default:
		return 0
	}
}

// Validate rejects tables with negative priorities.
func (t *Table) Validate() error {
	for src, p := range t.Descriptive {
		if p < 0 {
			return &errors.ValidationError{
				Field:   "descriptive." + src.String(),
				Value:   p,
				Message: "priority must not be negative",
			}
		}
	}
	for src, p := range t.Premium {
		if p < 0 {
			return &errors.ValidationError{
				Field:   "premium." + src.String(),
				Value:   p,
				Message: "priority must not be negative",
			}
		}
	}
	return nil
}
