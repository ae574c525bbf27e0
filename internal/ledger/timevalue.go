package ledger

import "time"

// Kind tags a TimeValue as either an offset from "now" (the unit the MILP
// stages compute in) or an absolute wall-clock instant. The dispatch
// pathways build only MinutesFromNow values; drop-pull and internal
// queueing work with time.Time directly.
type Kind int

const (
	MinutesFromNow Kind = iota
	Wallclock
)

// TimeValue is either a floating minute offset or an absolute time,
// resolved to a concrete time.Time only once, at the point a ledger entry is
// materialized.
type TimeValue struct {
	Kind    Kind
	Minutes float64
	At      time.Time
}

// FromMinutes builds a MinutesFromNow TimeValue.
func FromMinutes(m float64) TimeValue {
	return TimeValue{Kind: MinutesFromNow, Minutes: m}
}

// FromWallclock builds a Wallclock TimeValue.
func FromWallclock(t time.Time) TimeValue {
	return TimeValue{Kind: Wallclock, At: t}
}

// Absolute resolves the TimeValue to a concrete instant given the anchor
// time "now".
func (t TimeValue) Absolute(now time.Time) time.Time {
	if t.Kind == Wallclock {
		return t.At
	}
	return now.Add(time.Duration(t.Minutes * float64(time.Minute)))
}
