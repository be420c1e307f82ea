// Package offerings defines the core data model for public stock
// offerings: the normalized per-source record, the canonical merged
// offering, and the persisted row read back from the store.
package offerings

import "slices"

// SourceID identifies the feed that produced a record.
type SourceID string

// String returns the string representation of a source ID.
func (id SourceID) String() string {
	return string(id)
}

// Known feed IDs.
const (
	SourceChittorgarh  SourceID = "chittorgarh"
	SourceInvestorgain SourceID = "investorgain"
	SourceMoneycontrol SourceID = "moneycontrol"
	SourceIPOPremium   SourceID = "ipopremium"
	SourceIPOJI        SourceID = "ipoji"
	SourceIPOWatch     SourceID = "ipowatch"
)

// OfferingType classifies the exchange board an offering lists on.
type OfferingType string

// Offering types.
const (
	TypeMainboard OfferingType = "Mainboard"
	TypeSME       OfferingType = "SME"
	TypeUnknown   OfferingType = "Unknown"
)

// String returns the string representation of an offering type.
func (t OfferingType) String() string {
	return string(t)
}

// IsValid returns true if the type is one of the defined constants.
func (t OfferingType) IsValid() bool {
	switch t {
	case TypeMainboard, TypeSME, TypeUnknown:
		return true
	}
	return false
}

// Record is one normalized offering as reported by a single feed.
// Records are ephemeral: created fresh each run, discarded after merge.
type Record struct {
	Name         string       `json:"name" yaml:"name"`
	Type         OfferingType `json:"type,omitempty" yaml:"type,omitempty"`
	OpenDate     *Date        `json:"open_date,omitempty" yaml:"open_date,omitempty"`
	CloseDate    *Date        `json:"close_date,omitempty" yaml:"close_date,omitempty"`
	ListingDate  *Date        `json:"listing_date,omitempty" yaml:"listing_date,omitempty"`
	PriceBandMin *float64     `json:"price_band_min,omitempty" yaml:"price_band_min,omitempty"`
	PriceBandMax *float64     `json:"price_band_max,omitempty" yaml:"price_band_max,omitempty"`
	IssueSizeCr  *float64     `json:"issue_size_cr,omitempty" yaml:"issue_size_cr,omitempty"`
	LotSize      *int         `json:"lot_size,omitempty" yaml:"lot_size,omitempty"`
	GMP          *int         `json:"gmp,omitempty" yaml:"gmp,omitempty"`
	GMPPct       *float64     `json:"gmp_percentage,omitempty" yaml:"gmp_percentage,omitempty"`

	// Source is the feed that produced this record, used for
	// priority lookup during merge.
	Source SourceID `json:"source" yaml:"source"`

	// StatusHint is the status the feed asserts for this offering.
	// Advisory only: the canonical status is always derived from
	// dates, never copied from a source.
	StatusHint Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// HasInvertedBand reports whether both price band fields are present
// with min above max.
func (r *Record) HasInvertedBand() bool {
	return r.PriceBandMin != nil && r.PriceBandMax != nil && *r.PriceBandMin > *r.PriceBandMax
}

// Offering is the canonical, conflict-resolved record for one entity.
// Exactly one Offering exists per distinct identity key in a run.
type Offering struct {
	Name         string       `json:"name" yaml:"name"`
	Type         OfferingType `json:"type,omitempty" yaml:"type,omitempty"`
	OpenDate     *Date        `json:"open_date,omitempty" yaml:"open_date,omitempty"`
	CloseDate    *Date        `json:"close_date,omitempty" yaml:"close_date,omitempty"`
	ListingDate  *Date        `json:"listing_date,omitempty" yaml:"listing_date,omitempty"`
	PriceBandMin *float64     `json:"price_band_min,omitempty" yaml:"price_band_min,omitempty"`
	PriceBandMax *float64     `json:"price_band_max,omitempty" yaml:"price_band_max,omitempty"`
	IssueSizeCr  *float64     `json:"issue_size_cr,omitempty" yaml:"issue_size_cr,omitempty"`
	LotSize      *int         `json:"lot_size,omitempty" yaml:"lot_size,omitempty"`
	GMP          *int         `json:"gmp,omitempty" yaml:"gmp,omitempty"`
	GMPPct       *float64     `json:"gmp_percentage,omitempty" yaml:"gmp_percentage,omitempty"`

	// IdentityKey is the normalized dedup key the offering was
	// grouped under. Internal to the merge; not persisted as the
	// store key and not user-visible.
	IdentityKey string `json:"-" yaml:"-"`

	// Sources lists every feed that contributed at least one
	// accepted field value, sorted.
	Sources []SourceID `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Status is the derived lifecycle status.
	Status Status `json:"status,omitempty" yaml:"status,omitempty"`
}

// AddSource records a contributing feed, keeping the set sorted and
// free of duplicates.
func (o *Offering) AddSource(id SourceID) {
	if slices.Contains(o.Sources, id) {
		return
	}
	o.Sources = append(o.Sources, id)
	slices.Sort(o.Sources)
}

// Persisted is the prior state of one offering as read back from the
// store, keyed by display name. It exists only so status transitions
// can be detected; it never influences field merging.
type Persisted struct {
	Name   string `json:"name"`
	Status Status `json:"status,omitempty"`
}
