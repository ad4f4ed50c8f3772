package catalog

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Scanner enumerates tracks from the configured library sources.
type Scanner struct {
	sources []string
	granted bool
	log     zerolog.Logger
}

// NewScanner creates a filesystem catalog provider over the given source
// directories.
func NewScanner(sources []string, log zerolog.Logger) *Scanner {
	return &Scanner{
		sources: sources,
		log:     log.With().Str("component", "catalog").Logger(),
	}
}

// Verify Scanner implements Provider at compile time.
var _ Provider = (*Scanner)(nil)

// Tracks scans the library sources. With requestPermission true it probes
// source readability first and fails with ErrPermissionDenied when no source
// is accessible. With requestPermission false it reuses the previous
// permission decision and returns an empty result if access was never
// granted.
func (s *Scanner) Tracks(ctx context.Context, requestPermission bool) (Result, error) {
	if requestPermission {
		s.granted = s.probeSources()
		if !s.granted {
			return Result{}, ErrPermissionDenied
		}
	} else if !s.granted {
		return Result{PermissionGranted: false}, nil
	}

	var tracks []Track
	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		found, err := s.scanSource(ctx, src)
		if err != nil {
			return Result{PermissionGranted: true}, err
		}
		tracks = append(tracks, found...)
	}

	sort.Slice(tracks, func(i, j int) bool {
		return strings.ToLower(tracks[i].Title) < strings.ToLower(tracks[j].Title)
	})

	s.log.Debug().Int("tracks", len(tracks)).Msg("catalog scan complete")
	return Result{Tracks: tracks, PermissionGranted: true}, nil
}

// probeSources returns true if at least one source directory is readable.
func (s *Scanner) probeSources() bool {
	for _, src := range s.sources {
		f, err := os.Open(src)
		if err != nil {
			continue
		}
		_, err = f.Readdirnames(1)
		f.Close()
		if err == nil || errors.Is(err, io.EOF) {
			return true
		}
	}
	return false
}

func (s *Scanner) scanSource(ctx context.Context, root string) ([]Track, error) {
	var tracks []Track
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectories are skipped, not fatal.
			s.log.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || !IsAudioFile(path) {
			return nil
		}
		tracks = append(tracks, s.readTrack(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

func (s *Scanner) readTrack(path string) Track {
	t := Track{
		ID:       TrackID(path),
		Locator:  path,
		Filename: filepath.Base(path),
	}

	var title, artist string
	if f, err := os.Open(path); err == nil {
		if m, err := tag.ReadFrom(f); err == nil {
			title = m.Title()
			artist = m.Artist()
			t.Album = m.Album()
			if m.Picture() != nil {
				t.Artwork = path
			}
		}
		f.Close()
	}

	t.Title = ResolveTitle(title, t.Filename)
	t.Artist = ResolveArtist(artist)
	return t
}

// TrackID derives the stable catalog id for a locator. IDs are deterministic
// so persisted favorites, playlists and the last-session snapshot stay
// resolvable across rescans and restarts.
func TrackID(locator string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("neonbeat:"+locator)).String()
}
