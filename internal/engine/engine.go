// Package engine defines the audio engine surface the session controller
// drives. An Engine loads one track into a Handle; the controller guarantees
// Release is called exactly once per Load before the next Load.
package engine

import "time"

// Status is one playback report. Once a handle is loaded, the engine is
// authoritative for position, duration and the playing flag.
type Status struct {
	Loaded   bool
	Position time.Duration
	Duration time.Duration
	Playing  bool
	Finished bool // natural completion, reported once
	Err      error
}

// LoadOptions controls how a track starts.
type LoadOptions struct {
	Autoplay      bool
	StartPosition time.Duration
}

// Handle is one loaded, playable track instance.
type Handle interface {
	Play() error
	Pause() error
	Seek(pos time.Duration) error
	Status() Status

	// SetStatusFunc attaches the periodic status callback. Passing nil
	// detaches it. A report already in flight may still land after detach
	// returns, so consumers tag callbacks with the load they belong to.
	SetStatusFunc(fn func(Status))

	// Stop halts playback. Best-effort; a failed stop never blocks release.
	Stop() error

	// Release frees the handle's resources. Idempotent.
	Release()
}

// Engine loads tracks by locator.
type Engine interface {
	Load(locator string, opts LoadOptions) (Handle, error)
}
