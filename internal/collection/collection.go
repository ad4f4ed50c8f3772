// Package collection holds the user-curated state: the favorites set and the
// named playlists. Every mutation persists the entire updated collection;
// sizes are small, and a single atomic overwrite either fully succeeds or
// leaves the prior value.
package collection

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/neonbeat/neonbeat/internal/store"
)

// LikedSongs is the distinguished playlist name rendering the favorites set
// as a collection. It is not a real mutable playlist and cannot be deleted.
const LikedSongs = "Liked Songs"

// Store is the in-memory favorites/playlists state, synchronized to the
// persistence gateway on every mutation. Single-writer, multi-reader.
type Store struct {
	mu        sync.RWMutex
	favorites map[string]struct{}
	playlists map[string][]string
	gw        *store.Gateway
	log       zerolog.Logger
}

// New creates an empty store backed by the given gateway.
func New(gw *store.Gateway, log zerolog.Logger) *Store {
	return &Store{
		favorites: make(map[string]struct{}),
		playlists: make(map[string][]string),
		gw:        gw,
		log:       log.With().Str("component", "collection").Logger(),
	}
}

// Load replaces the in-memory state with the persisted records. Called once
// at startup, before the first catalog scan.
func (s *Store) Load(ctx context.Context) {
	favs := s.gw.LoadFavorites(ctx)
	playlists := s.gw.LoadPlaylists(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = make(map[string]struct{}, len(favs))
	for _, id := range favs {
		s.favorites[id] = struct{}{}
	}
	s.playlists = playlists
}

// ToggleFavorite flips membership for id and persists the full set. The
// read-modify-write runs against the in-memory value, not the store, so
// rapid toggling never loses updates. Returns the new membership.
func (s *Store) ToggleFavorite(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, fav := s.favorites[id]
	if fav {
		delete(s.favorites, id)
	} else {
		s.favorites[id] = struct{}{}
	}
	s.gw.SaveFavorites(ctx, s.favoriteIDsLocked())
	return !fav
}

// IsFavorite reports membership for id.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favorites[id]
	return ok
}

// Favorites returns the favorite ids, sorted for stable iteration.
func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favoriteIDsLocked()
}

func (s *Store) favoriteIDsLocked() []string {
	ids := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ClearFavorites empties the set and persists it.
func (s *Store) ClearFavorites(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = make(map[string]struct{})
	s.gw.SaveFavorites(ctx, nil)
}

// CreatePlaylist creates an empty playlist. The name is trimmed; empty names
// and collisions are silent no-ops (first writer wins).
func (s *Store) CreatePlaylist(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.playlists[name]; exists {
		return
	}
	s.playlists[name] = []string{}
	s.gw.SavePlaylists(ctx, s.playlistsCopyLocked())
}

// AddToPlaylist appends id to the named playlist. No-op if the playlist does
// not exist or already contains id.
func (s *Store) AddToPlaylist(ctx context.Context, name, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, exists := s.playlists[name]
	if !exists || contains(tracks, id) {
		return
	}
	s.playlists[name] = append(tracks, id)
	s.gw.SavePlaylists(ctx, s.playlistsCopyLocked())
}

// RemoveFromPlaylist filters id out of the named playlist. No-op if the
// playlist does not exist or does not contain id.
func (s *Store) RemoveFromPlaylist(ctx context.Context, name, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, exists := s.playlists[name]
	if !exists || !contains(tracks, id) {
		return
	}
	filtered := make([]string, 0, len(tracks)-1)
	for _, t := range tracks {
		if t != id {
			filtered = append(filtered, t)
		}
	}
	s.playlists[name] = filtered
	s.gw.SavePlaylists(ctx, s.playlistsCopyLocked())
}

// DeletePlaylist removes the named playlist. Deleting the Liked Songs view
// fails silently.
func (s *Store) DeletePlaylist(ctx context.Context, name string) {
	if name == LikedSongs {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.playlists[name]; !exists {
		return
	}
	delete(s.playlists, name)
	s.gw.SavePlaylists(ctx, s.playlistsCopyLocked())
}

// Playlists returns a copy of the playlist map.
func (s *Store) Playlists() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playlistsCopyLocked()
}

// Tracks returns the ordered ids for the named playlist. The Liked Songs
// name renders the favorites set.
func (s *Store) Tracks(name string) []string {
	if name == LikedSongs {
		return s.Favorites()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tracks := s.playlists[name]
	out := make([]string, len(tracks))
	copy(out, tracks)
	return out
}

func (s *Store) playlistsCopyLocked() map[string][]string {
	out := make(map[string][]string, len(s.playlists))
	for name, tracks := range s.playlists {
		cp := make([]string, len(tracks))
		copy(cp, tracks)
		out[name] = cp
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
