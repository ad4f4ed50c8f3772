package session

import "time"

// State is the live playback session: the single source of truth the
// presentation layer consumes. It is mutated only by the Controller, in
// response to a command result or an engine status report.
type State struct {
	CurrentTrackID    string
	Playing           bool
	Position          time.Duration
	Duration          time.Duration
	Shuffle           bool
	Loading           bool
	PermissionGranted bool
	Err               string
}

// Progress returns position/duration clamped to [0,1], 0 when the duration
// is zero or unknown.
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
