package catalog

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned when the library sources cannot be read.
var ErrPermissionDenied = errors.New("media library permission denied")

// Result is one catalog enumeration.
type Result struct {
	Tracks            []Track
	PermissionGranted bool
}

// Provider enumerates the available tracks. Called once at startup with
// requestPermission true and again on explicit refresh with it false.
type Provider interface {
	Tracks(ctx context.Context, requestPermission bool) (Result, error)
}
