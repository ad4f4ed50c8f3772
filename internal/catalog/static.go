package catalog

import "context"

// Static is a fixed-content catalog provider for tests.
type Static struct {
	tracks    []Track
	scanErr   error
	denied    bool
	scanCalls int
}

// NewStatic creates a static provider serving the given tracks.
func NewStatic(tracks ...Track) *Static {
	return &Static{tracks: tracks}
}

func (s *Static) Tracks(_ context.Context, _ bool) (Result, error) {
	s.scanCalls++
	if s.denied {
		return Result{}, ErrPermissionDenied
	}
	if s.scanErr != nil {
		return Result{PermissionGranted: true}, s.scanErr
	}
	out := make([]Track, len(s.tracks))
	copy(out, s.tracks)
	return Result{Tracks: out, PermissionGranted: true}, nil
}

// Test helpers

func (s *Static) SetTracks(tracks ...Track) { s.tracks = tracks }

func (s *Static) SetScanError(err error) { s.scanErr = err }

func (s *Static) SetDenied(denied bool) { s.denied = denied }

func (s *Static) ScanCalls() int { return s.scanCalls }

// Verify Static implements Provider at compile time.
var _ Provider = (*Static)(nil)
