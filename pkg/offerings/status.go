package offerings

// Status is the lifecycle stage of an offering. It is always derived
// from date fields; source-asserted statuses are hints at most.
type Status string

// Lifecycle statuses. The empty string means unknown: a record whose
// dates are insufficient to derive a status keeps whatever was
// previously persisted, which may be nothing at all.
const (
	StatusUpcoming Status = "Upcoming"
	StatusLive     Status = "Live"
	StatusClosed   Status = "Closed"
	StatusListed   Status = "Listed"
)

// String returns the string representation of a status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusLive, StatusClosed, StatusListed:
		return true
	}
	return false
}
