package session

// TrackChange is emitted when a different track becomes current.
type TrackChange struct {
	PreviousID string
	CurrentID  string
}

// StateChange carries the session state after a mutation. Progress ticks are
// included; subscribers with full buffers simply miss intermediate states.
type StateChange struct {
	State State
}

// ErrorEvent is emitted when an operation records a user-visible error.
type ErrorEvent struct {
	Operation string // e.g. "load", "scan"
	Err       error
}
