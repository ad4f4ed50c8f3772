package collection

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/neonbeat/neonbeat/internal/store"
)

func newTestStore() (*Store, *store.Memory) {
	mem := store.NewMemory()
	gw := store.NewGateway(mem, zerolog.Nop())
	return New(gw, zerolog.Nop()), mem
}

func TestStore_ToggleFavorite(t *testing.T) {
	s, mem := newTestStore()
	ctx := context.Background()

	if got := s.ToggleFavorite(ctx, "t1"); !got {
		t.Error("first toggle should return true (now favorited)")
	}
	if !s.IsFavorite("t1") {
		t.Error("t1 should be a favorite")
	}

	// Toggling again restores the original membership.
	if got := s.ToggleFavorite(ctx, "t1"); got {
		t.Error("second toggle should return false")
	}
	if s.IsFavorite("t1") {
		t.Error("t1 should no longer be a favorite")
	}

	// Each toggle persists the full set: exactly two writes.
	if got := mem.SetCount(store.FavoritesKey); got != 2 {
		t.Errorf("favorites writes = %d, want 2", got)
	}
}

func TestStore_Favorites_Sorted(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.ToggleFavorite(ctx, "zz")
	s.ToggleFavorite(ctx, "aa")

	if got := s.Favorites(); !reflect.DeepEqual(got, []string{"aa", "zz"}) {
		t.Errorf("Favorites() = %v, want [aa zz]", got)
	}
}

func TestStore_ClearFavorites(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.ToggleFavorite(ctx, "t1")
	s.ClearFavorites(ctx)

	if len(s.Favorites()) != 0 {
		t.Error("favorites should be empty after clear")
	}
}

func TestStore_CreatePlaylist(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.CreatePlaylist(ctx, "  Chill  ")

	playlists := s.Playlists()
	if _, ok := playlists["Chill"]; !ok {
		t.Errorf("playlists = %v, want trimmed name Chill", playlists)
	}
}

func TestStore_CreatePlaylist_EmptyName_NoOp(t *testing.T) {
	s, mem := newTestStore()

	s.CreatePlaylist(context.Background(), "   ")

	if len(s.Playlists()) != 0 {
		t.Error("blank playlist name should be a no-op")
	}
	if mem.SetCount(store.PlaylistsKey) != 0 {
		t.Error("no-op create should not persist")
	}
}

func TestStore_CreatePlaylist_FirstWriterWins(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.CreatePlaylist(ctx, "Chill")
	s.AddToPlaylist(ctx, "Chill", "t9")
	s.CreatePlaylist(ctx, "Chill") // collision: no overwrite, no error

	if got := s.Tracks("Chill"); !reflect.DeepEqual(got, []string{"t9"}) {
		t.Errorf("Tracks(Chill) = %v, want [t9]", got)
	}
}

func TestStore_AddToPlaylist_DuplicateSuppressed(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.CreatePlaylist(ctx, "Chill")
	s.AddToPlaylist(ctx, "Chill", "t9")
	s.AddToPlaylist(ctx, "Chill", "t9")

	if got := s.Tracks("Chill"); !reflect.DeepEqual(got, []string{"t9"}) {
		t.Errorf("Tracks(Chill) = %v, want [t9] exactly once", got)
	}
}

func TestStore_AddToPlaylist_MissingPlaylist_NoOp(t *testing.T) {
	s, mem := newTestStore()

	s.AddToPlaylist(context.Background(), "Nope", "t1")

	if mem.SetCount(store.PlaylistsKey) != 0 {
		t.Error("add to missing playlist should not persist")
	}
}

func TestStore_RemoveFromPlaylist(t *testing.T) {
	s, mem := newTestStore()
	ctx := context.Background()

	s.CreatePlaylist(ctx, "Chill")
	s.AddToPlaylist(ctx, "Chill", "t1")
	s.AddToPlaylist(ctx, "Chill", "t2")
	writes := mem.SetCount(store.PlaylistsKey)

	s.RemoveFromPlaylist(ctx, "Chill", "t1")
	if got := s.Tracks("Chill"); !reflect.DeepEqual(got, []string{"t2"}) {
		t.Errorf("Tracks(Chill) = %v, want [t2]", got)
	}

	// Removing an id that is not there is a no-op with no write.
	s.RemoveFromPlaylist(ctx, "Chill", "t1")
	if got := mem.SetCount(store.PlaylistsKey); got != writes+1 {
		t.Errorf("playlist writes = %d, want %d", got, writes+1)
	}
}

func TestStore_DeletePlaylist(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.CreatePlaylist(ctx, "Chill")
	s.DeletePlaylist(ctx, "Chill")

	if _, ok := s.Playlists()["Chill"]; ok {
		t.Error("Chill should be deleted")
	}
}

func TestStore_DeleteLikedSongs_NoOp(t *testing.T) {
	s, mem := newTestStore()

	s.DeletePlaylist(context.Background(), LikedSongs)

	if mem.SetCount(store.PlaylistsKey) != 0 {
		t.Error("deleting the Liked Songs view should be a silent no-op")
	}
}

func TestStore_Tracks_LikedSongs_RendersFavorites(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.ToggleFavorite(ctx, "b")
	s.ToggleFavorite(ctx, "a")

	if got := s.Tracks(LikedSongs); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Tracks(LikedSongs) = %v, want [a b]", got)
	}
}

func TestStore_Load_RoundTrip(t *testing.T) {
	mem := store.NewMemory()
	gw := store.NewGateway(mem, zerolog.Nop())
	ctx := context.Background()

	first := New(gw, zerolog.Nop())
	first.ToggleFavorite(ctx, "a")
	first.CreatePlaylist(ctx, "Chill")
	first.AddToPlaylist(ctx, "Chill", "t1")

	// A fresh store over the same gateway sees the persisted state.
	second := New(gw, zerolog.Nop())
	second.Load(ctx)

	if !second.IsFavorite("a") {
		t.Error("favorite did not survive the round trip")
	}
	if got := second.Tracks("Chill"); !reflect.DeepEqual(got, []string{"t1"}) {
		t.Errorf("Tracks(Chill) = %v, want [t1]", got)
	}
}
