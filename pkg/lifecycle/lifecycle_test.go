package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ipomoney/ipopulse/pkg/offerings"
)

func datePtr(y int, m time.Month, d int) *offerings.Date {
	date := offerings.NewDate(y, m, d)
	return &date
}

func TestDeriveWindow(t *testing.T) {
	open := datePtr(2026, 2, 10)
	close := datePtr(2026, 2, 12)

	tests := []struct {
		name     string
		today    offerings.Date
		expected offerings.Status
	}{
		{"day before open", offerings.NewDate(2026, 2, 9), offerings.StatusUpcoming},
		{"open day is live", offerings.NewDate(2026, 2, 10), offerings.StatusLive},
		{"mid window", offerings.NewDate(2026, 2, 11), offerings.StatusLive},
		{"close day is live", offerings.NewDate(2026, 2, 12), offerings.StatusLive},
		{"day after close", offerings.NewDate(2026, 2, 13), offerings.StatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &offerings.Offering{Name: "Acme", OpenDate: open, CloseDate: close}
			status, changed := Derive(o, "", tt.today)
			assert.Equal(t, tt.expected, status)
			assert.True(t, changed)
		})
	}
}

func TestDeriveListedWinsOverWindow(t *testing.T) {
	o := &offerings.Offering{
		Name:        "Acme",
		OpenDate:    datePtr(2026, 2, 10),
		CloseDate:   datePtr(2026, 2, 12),
		ListingDate: datePtr(2026, 2, 17),
	}

	// A listing date ends the lifecycle even if today is inside the
	// subscription window.
	status, _ := Derive(o, offerings.StatusLive, offerings.NewDate(2026, 2, 11))
	assert.Equal(t, offerings.StatusListed, status)
}

func TestDeriveListedIsTerminal(t *testing.T) {
	o := &offerings.Offering{Name: "Acme", ListingDate: datePtr(2026, 1, 5)}

	status, changed := Derive(o, offerings.StatusListed, offerings.NewDate(2026, 6, 1))
	assert.Equal(t, offerings.StatusListed, status)
	assert.False(t, changed)
}

func TestDeriveInsufficientDatesRetainsPrevious(t *testing.T) {
	tests := []struct {
		name string
		o    *offerings.Offering
	}{
		{"no dates", &offerings.Offering{Name: "Acme"}},
		{"open only", &offerings.Offering{Name: "Acme", OpenDate: datePtr(2026, 2, 10)}},
		{"close only", &offerings.Offering{Name: "Acme", CloseDate: datePtr(2026, 2, 12)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, changed := Derive(tt.o, offerings.StatusUpcoming, offerings.NewDate(2026, 2, 11))
			assert.Equal(t, offerings.StatusUpcoming, status)
			assert.False(t, changed)
		})
	}
}

func TestDeriveNoPreviousNoDates(t *testing.T) {
	o := &offerings.Offering{Name: "Acme"}

	status, changed := Derive(o, "", offerings.NewDate(2026, 2, 11))
	assert.Equal(t, offerings.Status(""), status)
	assert.False(t, changed)
}

func TestDeriveReportsTransition(t *testing.T) {
	o := &offerings.Offering{
		Name:      "Acme",
		OpenDate:  datePtr(2026, 2, 10),
		CloseDate: datePtr(2026, 2, 12),
	}

	status, changed := Derive(o, offerings.StatusLive, offerings.NewDate(2026, 2, 15))
	assert.Equal(t, offerings.StatusClosed, status)
	assert.True(t, changed)

	// Same status again is not a transition.
	status, changed = Derive(o, offerings.StatusClosed, offerings.NewDate(2026, 2, 16))
	assert.Equal(t, offerings.StatusClosed, status)
	assert.False(t, changed)
}

func TestTransitionString(t *testing.T) {
	tr := Transition{Name: "Acme", From: offerings.StatusLive, To: offerings.StatusClosed}
	assert.Equal(t, "Acme: Live -> Closed", tr.String())

	first := Transition{Name: "Acme", To: offerings.StatusUpcoming}
	assert.Equal(t, "Acme: (none) -> Upcoming", first.String())
}
