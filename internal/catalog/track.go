package catalog

import (
	"path/filepath"
	"strings"
	"time"
)

// Track is an addressable audio item. Records are immutable once produced by
// a scan: consumers reference them by ID and never mutate them.
type Track struct {
	ID       string // stable, opaque, catalog-assigned
	Locator  string // playable location (file path)
	Filename string
	Title    string
	Artist   string
	Album    string
	Artwork  string // artwork reference, empty if none
	Duration time.Duration
}

const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// ResolveTitle derives a display title: the metadata title when present,
// otherwise the filename with its extension stripped and separators
// normalized to spaces, otherwise "Unknown Title".
func ResolveTitle(title, filename string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	if filename == "" {
		return UnknownTitle
	}
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownTitle
	}
	return name
}

// ResolveArtist applies the artist fallback.
func ResolveArtist(artist string) string {
	if strings.TrimSpace(artist) == "" {
		return UnknownArtist
	}
	return artist
}
