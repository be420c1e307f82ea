// Package feeds implements the concrete offering feed adapters: an
// HTTP JSON client and a local YAML file reader. Both decode the
// shared wire shape into normalized records; anything a feed reports
// outside that shape is dropped at this boundary instead of being
// smuggled through as loose key-value pairs.
package feeds

import (
	"github.com/ipomoney/ipopulse/pkg/logging"
	"github.com/ipomoney/ipopulse/pkg/offerings"
)

// wireRecord is the shape feeds publish records in. Field names
// follow the upstream JSON exactly.
type wireRecord struct {
	Name         string   `json:"name" yaml:"name"`
	Type         string   `json:"type,omitempty" yaml:"type,omitempty"`
	Status       string   `json:"status,omitempty" yaml:"status,omitempty"`
	OpenDate     string   `json:"open_date,omitempty" yaml:"open_date,omitempty"`
	CloseDate    string   `json:"close_date,omitempty" yaml:"close_date,omitempty"`
	ListingDate  string   `json:"listing_date,omitempty" yaml:"listing_date,omitempty"`
	PriceBandMin *float64 `json:"price_band_min,omitempty" yaml:"price_band_min,omitempty"`
	PriceBandMax *float64 `json:"price_band_max,omitempty" yaml:"price_band_max,omitempty"`
	IssueSizeCr  *float64 `json:"issue_size_cr,omitempty" yaml:"issue_size_cr,omitempty"`
	LotSize      *int     `json:"lot_size,omitempty" yaml:"lot_size,omitempty"`
	GMP          *int     `json:"gmp,omitempty" yaml:"gmp,omitempty"`
	GMPPct       *float64 `json:"gmp_percentage,omitempty" yaml:"gmp_percentage,omitempty"`
}

// toRecord normalizes one wire record for the given feed. Feeds
// publish zero for "no data" on every numeric field, so zeroes become
// absent values here; a genuinely negative grey-market premium is
// kept. Unparseable dates are dropped, not fatal.
func (w *wireRecord) toRecord(source offerings.SourceID) offerings.Record {
	rec := offerings.Record{
		Name:       w.Name,
		Type:       parseType(w.Type),
		Source:     source,
		StatusHint: offerings.Status(w.Status),

		OpenDate:    parseWireDate(source, "open_date", w.OpenDate),
		CloseDate:   parseWireDate(source, "close_date", w.CloseDate),
		ListingDate: parseWireDate(source, "listing_date", w.ListingDate),

		PriceBandMin: positiveFloat(w.PriceBandMin),
		PriceBandMax: positiveFloat(w.PriceBandMax),
		IssueSizeCr:  positiveFloat(w.IssueSizeCr),
		LotSize:      positiveInt(w.LotSize),
		GMPPct:       nonZeroFloat(w.GMPPct),
	}
	if w.GMP != nil && *w.GMP != 0 {
		v := *w.GMP
		rec.GMP = &v
	}
	return rec
}

// parseType maps a feed's board label onto the shared enum.
func parseType(s string) offerings.OfferingType {
	switch s {
	case "Mainboard", "mainboard", "Main Board":
		return offerings.TypeMainboard
	case "SME", "sme":
		return offerings.TypeSME
	default:
		return offerings.TypeUnknown
	}
}

func parseWireDate(source offerings.SourceID, field, s string) *offerings.Date {
	if s == "" {
		return nil
	}
	d, err := offerings.ParseDate(s)
	if err != nil {
		logging.Debug().
			Str("source", source.String()).
			Str("field", field).
			Str("value", s).
			Msg("Dropping unparseable date")
		return nil
	}
	return &d
}

func positiveFloat(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	f := *v
	return &f
}

func positiveInt(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	n := *v
	return &n
}

func nonZeroFloat(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	f := *v
	return &f
}
