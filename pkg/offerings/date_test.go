package offerings

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-10")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.February, 10), d)

	_, err = ParseDate("10-02-2026")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateOrdering(t *testing.T) {
	earlier := NewDate(2026, time.February, 10)
	later := NewDate(2026, time.February, 12)

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.Before(earlier))
	assert.False(t, earlier.After(earlier))
}

func TestDateString(t *testing.T) {
	assert.Equal(t, "2026-02-10", NewDate(2026, time.February, 10).String())
	assert.Equal(t, "2026-12-01", NewDate(2026, time.December, 1).String())
}

func TestDateIsZero(t *testing.T) {
	assert.True(t, Date{}.IsZero())
	assert.False(t, NewDate(2026, time.January, 1).IsZero())
}

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		Open *Date `json:"open_date,omitempty"`
	}

	d := NewDate(2026, 2, 10)
	data, err := json.Marshal(payload{Open: &d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"open_date":"2026-02-10"}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Open)
	assert.Equal(t, d, *decoded.Open)
}

func TestAddSource(t *testing.T) {
	var o Offering

	o.AddSource(SourceIPOPremium)
	o.AddSource(SourceChittorgarh)
	o.AddSource(SourceIPOPremium)

	assert.Equal(t, []SourceID{SourceChittorgarh, SourceIPOPremium}, o.Sources)
}

func TestHasInvertedBand(t *testing.T) {
	low, high := 95.0, 105.0

	r := Record{PriceBandMin: &high, PriceBandMax: &low}
	assert.True(t, r.HasInvertedBand())

	r = Record{PriceBandMin: &low, PriceBandMax: &high}
	assert.False(t, r.HasInvertedBand())

	r = Record{PriceBandMin: &high}
	assert.False(t, r.HasInvertedBand())

	r = Record{PriceBandMin: &low, PriceBandMax: &low}
	assert.False(t, r.HasInvertedBand())
}
