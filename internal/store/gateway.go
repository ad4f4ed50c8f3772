package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Storage keys. Three independent records, each an atomic get/set/remove of a
// serialized value.
const (
	FavoritesKey = "neonbeat:favorites"
	PlaylistsKey = "neonbeat:playlists"
	LastTrackKey = "neonbeat:last-track"
)

// Snapshot is the persisted resume point: the last current track and its
// playback position.
type Snapshot struct {
	TrackID  string `json:"trackId"`
	Position int64  `json:"position"` // milliseconds
}

// PositionDuration returns the saved position as a duration.
func (s Snapshot) PositionDuration() time.Duration {
	return time.Duration(s.Position) * time.Millisecond
}

// Gateway provides typed save/load wrappers over the durable KV for the
// three records the controller persists. Reads of malformed stored data fall
// back to empty defaults: corrupt persisted state must never prevent startup.
type Gateway struct {
	kv  KV
	log zerolog.Logger
}

// NewGateway wraps a KV store.
func NewGateway(kv KV, log zerolog.Logger) *Gateway {
	return &Gateway{
		kv:  kv,
		log: log.With().Str("component", "store").Logger(),
	}
}

// SaveFavorites persists the full favorites set.
func (g *Gateway) SaveFavorites(ctx context.Context, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	g.set(ctx, FavoritesKey, ids)
}

// LoadFavorites returns the persisted favorites, or an empty set.
func (g *Gateway) LoadFavorites(ctx context.Context) []string {
	var ids []string
	if !g.get(ctx, FavoritesKey, &ids) || ids == nil {
		return []string{}
	}
	return ids
}

// SavePlaylists persists the full playlist map.
func (g *Gateway) SavePlaylists(ctx context.Context, playlists map[string][]string) {
	if playlists == nil {
		playlists = map[string][]string{}
	}
	g.set(ctx, PlaylistsKey, playlists)
}

// LoadPlaylists returns the persisted playlists, or an empty map.
func (g *Gateway) LoadPlaylists(ctx context.Context) map[string][]string {
	playlists := make(map[string][]string)
	if !g.get(ctx, PlaylistsKey, &playlists) || playlists == nil {
		return make(map[string][]string)
	}
	return playlists
}

// SaveSnapshot persists the last-session resume point.
func (g *Gateway) SaveSnapshot(ctx context.Context, snap Snapshot) {
	g.set(ctx, LastTrackKey, snap)
}

// LoadSnapshot returns the persisted resume point. ok is false when no valid
// snapshot is stored.
func (g *Gateway) LoadSnapshot(ctx context.Context) (Snapshot, bool) {
	var snap Snapshot
	if !g.get(ctx, LastTrackKey, &snap) {
		return Snapshot{}, false
	}
	return snap, snap.TrackID != ""
}

// ClearSnapshot removes the resume point.
func (g *Gateway) ClearSnapshot(ctx context.Context) {
	if err := g.kv.Remove(ctx, LastTrackKey); err != nil {
		g.log.Warn().Err(err).Str("key", LastTrackKey).Msg("remove failed")
	}
}

// set serializes and writes one record. Write failures are best-effort:
// logged, never surfaced.
func (g *Gateway) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("marshal failed")
		return
	}
	if err := g.kv.Set(ctx, key, string(data)); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("write failed")
	}
}

// get reads and deserializes one record. Returns false when the key is
// absent or the stored value is malformed; out may be partially populated on
// a malformed value, so callers return a fresh default on false.
func (g *Gateway) get(ctx context.Context, key string, out any) bool {
	raw, ok, err := g.kv.Get(ctx, key)
	if err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		g.log.Warn().Err(err).Str("key", key).Msg("stored value malformed, using default")
		return false
	}
	return true
}
