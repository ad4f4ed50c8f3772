// Package session owns what is loaded and playing right now. The Controller
// mediates between user commands, engine status reports and the queue, and
// serializes every track transition so at most one engine handle is live at
// a time.
//
// Concurrency model: one mutex guards all session state. Public operations
// and engine callbacks both take it, so no two mutations interleave. Status
// callbacks are tagged with the load generation they belong to; a report
// from a superseded handle fails the generation check and is dropped, which
// is what keeps a stale instance from overwriting state for the new track
// and makes the auto-advance path safe against double completion reports.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/neonbeat/neonbeat/internal/catalog"
	"github.com/neonbeat/neonbeat/internal/engine"
	"github.com/neonbeat/neonbeat/internal/queue"
	"github.com/neonbeat/neonbeat/internal/store"
)

const defaultSnapshotInterval = 2 * time.Second

// Controller is the playback session state machine.
type Controller struct {
	mu sync.Mutex

	engine   engine.Engine
	provider catalog.Provider
	gw       *store.Gateway
	queue    *queue.Queue
	log      zerolog.Logger

	tracks []catalog.Track
	byID   map[string]catalog.Track

	handle engine.Handle
	gen    uint64 // bumped at the top of every load; stale callbacks are dropped

	state State

	pendingResume *store.Snapshot
	resumePaused  bool

	snapshotInterval time.Duration
	lastSnapshotAt   time.Time
	now              func() time.Time

	subs   []*Subscription
	subsMu sync.RWMutex
	closed bool
}

// New creates a controller. Call Start to load persisted state, scan the
// catalog and resume the last session.
func New(eng engine.Engine, provider catalog.Provider, gw *store.Gateway, log zerolog.Logger) *Controller {
	return &Controller{
		engine:           eng,
		provider:         provider,
		gw:               gw,
		queue:            queue.New(),
		log:              log.With().Str("component", "session").Logger(),
		byID:             make(map[string]catalog.Track),
		snapshotInterval: defaultSnapshotInterval,
		now:              time.Now,
	}
}

// SetResumePaused makes startup resume load the snapshot track paused
// instead of playing.
func (c *Controller) SetResumePaused(paused bool) {
	c.mu.Lock()
	c.resumePaused = paused
	c.mu.Unlock()
}

// SetSnapshotInterval overrides the last-session write throttle.
func (c *Controller) SetSnapshotInterval(d time.Duration) {
	c.mu.Lock()
	c.snapshotInterval = d
	c.mu.Unlock()
}

// Start loads the last-session snapshot, runs the initial catalog scan
// (requesting permission) and, if the snapshot names a track still in the
// catalog, loads it at its saved position. The favorites/playlist store is
// loaded by the caller before Start so all persisted state is in memory
// before the first scan completes.
func (c *Controller) Start(ctx context.Context) {
	if snap, ok := c.gw.LoadSnapshot(ctx); ok {
		c.mu.Lock()
		c.pendingResume = &snap
		c.mu.Unlock()
	}

	c.scan(ctx, true)

	c.mu.Lock()
	snap := c.pendingResume
	c.pendingResume = nil
	if snap != nil {
		if _, known := c.byID[snap.TrackID]; known {
			c.playTrackLocked(ctx, snap.TrackID, nil, snap.PositionDuration(), !c.resumePaused)
		}
	}
	c.mu.Unlock()
}

// Refresh re-scans the catalog without requesting permission again.
func (c *Controller) Refresh(ctx context.Context) {
	c.scan(ctx, false)
}

func (c *Controller) scan(ctx context.Context, requestPermission bool) {
	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	res, err := c.provider.Tracks(ctx, requestPermission)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	c.state.PermissionGranted = res.PermissionGranted

	if err != nil {
		if errors.Is(err, catalog.ErrPermissionDenied) {
			c.state.Err = "Permission to access the media library was denied."
		} else {
			// Library left as it was; stale is better than empty on a
			// failed refresh.
			c.state.Err = err.Error()
		}
		c.log.Warn().Err(err).Msg("catalog scan failed")
		c.emitError("scan", err)
		c.emitState()
		return
	}

	c.state.Err = ""
	c.tracks = res.Tracks
	c.byID = make(map[string]catalog.Track, len(res.Tracks))
	ids := make([]string, len(res.Tracks))
	for i, t := range res.Tracks {
		c.byID[t.ID] = t
		ids[i] = t.ID
	}
	c.queue.Set(ids)
	c.log.Info().Int("tracks", len(res.Tracks)).Msg("catalog loaded")
	c.emitState()
}

// PlayTrack starts playback of id. A non-empty newQueue replaces the active
// traversal order; otherwise an empty queue, or one not containing id,
// falls back to all known tracks. Unknown ids are a silent no-op.
func (c *Controller) PlayTrack(ctx context.Context, id string, newQueue []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playTrackLocked(ctx, id, newQueue, 0, true)
}

// PlayFromCollection sets the queue to ids and starts at startIndex
// (clamped). No-op when ids is empty.
func (c *Controller) PlayFromCollection(ctx context.Context, ids []string, startIndex int) {
	if len(ids) == 0 {
		return
	}
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex > len(ids)-1 {
		startIndex = len(ids) - 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playTrackLocked(ctx, ids[startIndex], ids, 0, true)
}

// playTrackLocked is the single serialized "stop previous, load next"
// sequence every track transition goes through. It tolerates being invoked
// for a track already transitioning: the generation bump supersedes the
// in-flight load's callbacks and its handle is released before the new load.
func (c *Controller) playTrackLocked(ctx context.Context, id string, newQueue []string, startPos time.Duration, autoplay bool) {
	track, known := c.byID[id]
	if !known {
		c.log.Debug().Str("track", id).Msg("play requested for unknown track")
		return
	}

	if len(newQueue) > 0 {
		c.queue.Set(newQueue)
	} else if c.queue.IsEmpty() {
		c.queue.Set(c.allIDsLocked())
	}
	if !c.queue.Contains(id) {
		c.queue.Set(c.allIDsLocked())
	}

	c.gen++
	gen := c.gen
	c.releaseHandleLocked()
	c.state.Loading = true

	h, err := c.engine.Load(track.Locator, engine.LoadOptions{
		Autoplay:      autoplay,
		StartPosition: startPos,
	})
	c.state.Loading = false
	if err != nil {
		// Selection is preserved so the user can retry.
		c.state.CurrentTrackID = id
		c.state.Playing = false
		c.state.Err = err.Error()
		c.log.Warn().Err(err).Str("track", id).Msg("engine load failed")
		c.emitError("load", err)
		c.emitState()
		return
	}

	prev := c.state.CurrentTrackID
	c.handle = h
	h.SetStatusFunc(func(st engine.Status) {
		c.handleStatus(gen, st)
	})

	st := h.Status()
	c.state.CurrentTrackID = id
	c.state.Playing = st.Playing
	c.state.Position = st.Position
	c.state.Duration = st.Duration
	c.state.Err = ""

	// Immediate write so a resume point always exists for the new track.
	c.saveSnapshotLocked(ctx, true)

	if prev != id {
		c.emitTrack(prev, id)
	}
	c.emitState()
}

// releaseHandleLocked detaches, stops and releases the current handle.
// Best-effort: a failed stop never blocks starting the next track.
func (c *Controller) releaseHandleLocked() {
	if c.handle == nil {
		return
	}
	c.handle.SetStatusFunc(nil)
	if err := c.handle.Stop(); err != nil {
		c.log.Debug().Err(err).Msg("engine stop failed during teardown")
	}
	c.handle.Release()
	c.handle = nil
}

// TogglePlay flips play/pause. With no handle but a current track id (for
// example after an engine release), it re-issues playback for that id. The
// playing flag is updated from the command's own success, not a later
// callback.
func (c *Controller) TogglePlay(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		if c.state.CurrentTrackID != "" {
			c.playTrackLocked(ctx, c.state.CurrentTrackID, nil, 0, true)
		}
		return
	}

	st := c.handle.Status()
	if !st.Loaded {
		return
	}
	if st.Playing {
		if err := c.handle.Pause(); err == nil {
			c.state.Playing = false
		}
	} else {
		if err := c.handle.Play(); err == nil {
			c.state.Playing = true
		}
	}
	c.emitState()
}

// PlayNext advances to the queue's next pick under the current shuffle flag.
func (c *Controller) PlayNext(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playNextLocked(ctx)
}

func (c *Controller) playNextLocked(ctx context.Context) {
	if !c.ensureQueueLocked() {
		return
	}
	id, ok := c.queue.Next(c.state.CurrentTrackID, c.state.Shuffle)
	if !ok {
		return
	}
	c.playTrackLocked(ctx, id, nil, 0, true)
}

// PlayPrevious goes to the queue's previous pick under the current shuffle
// flag.
func (c *Controller) PlayPrevious(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ensureQueueLocked() {
		return
	}
	id, ok := c.queue.Previous(c.state.CurrentTrackID, c.state.Shuffle)
	if !ok {
		return
	}
	c.playTrackLocked(ctx, id, nil, 0, true)
}

// ensureQueueLocked applies the empty-queue fallback: navigation on an empty
// queue first resets it to all known tracks. Returns false when that still
// leaves nothing to navigate.
func (c *Controller) ensureQueueLocked() bool {
	if c.queue.IsEmpty() {
		c.queue.Set(c.allIDsLocked())
	}
	return !c.queue.IsEmpty()
}

// SeekTo forwards a seek to the engine and persists an immediate snapshot at
// the new position. No-op when nothing is loaded.
func (c *Controller) SeekTo(ctx context.Context, pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return
	}
	st := c.handle.Status()
	if !st.Loaded {
		return
	}
	if err := c.handle.Seek(pos); err != nil {
		c.log.Debug().Err(err).Dur("pos", pos).Msg("seek failed")
		return
	}
	c.state.Position = pos
	c.saveSnapshotLocked(ctx, true)
	c.emitState()
}

// ToggleShuffle flips the shuffle flag. The stored queue order is untouched;
// shuffle affects future navigation decisions only. Returns the new value.
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Shuffle = !c.state.Shuffle
	c.emitState()
	return c.state.Shuffle
}

// EnterBackground forces an immediate snapshot write if a track is current.
func (c *Controller) EnterBackground(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saveSnapshotLocked(ctx, true)
}

// ClearHistory removes the persisted resume point.
func (c *Controller) ClearHistory(ctx context.Context) {
	c.mu.Lock()
	c.pendingResume = nil
	c.mu.Unlock()
	c.gw.ClearSnapshot(ctx)
}

// handleStatus is the engine callback path. Position, duration and the
// playing flag are overwritten verbatim from the report; the engine is
// authoritative for them once loaded.
func (c *Controller) handleStatus(gen uint64, st engine.Status) {
	ctx := context.Background()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// Report from a superseded load.
		return
	}

	if !st.Loaded {
		if st.Err != nil {
			// Playback stops; the track stays selected.
			c.state.Err = st.Err.Error()
			c.state.Playing = false
			c.log.Warn().Err(st.Err).Str("track", c.state.CurrentTrackID).Msg("playback error")
			c.emitError("playback", st.Err)
			c.emitState()
		}
		return
	}

	c.state.Position = st.Position
	c.state.Duration = st.Duration
	c.state.Playing = st.Playing

	if st.Finished {
		c.playNextLocked(ctx)
		return
	}

	if c.state.CurrentTrackID != "" {
		c.saveSnapshotLocked(ctx, false)
	}
	c.emitState()
}

// saveSnapshotLocked persists the resume point. Unforced writes are
// throttled to one per snapshot interval; forced writes (track change, seek,
// background) always win and reset the window.
func (c *Controller) saveSnapshotLocked(ctx context.Context, force bool) {
	if c.state.CurrentTrackID == "" {
		return
	}
	now := c.now()
	if !force && now.Sub(c.lastSnapshotAt) < c.snapshotInterval {
		return
	}
	c.lastSnapshotAt = now
	c.gw.SaveSnapshot(ctx, store.Snapshot{
		TrackID:  c.state.CurrentTrackID,
		Position: c.state.Position.Milliseconds(),
	})
}

// State returns a copy of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentTrack returns the current track record, or nil if none.
func (c *Controller) CurrentTrack() *catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.CurrentTrackID == "" {
		return nil
	}
	if t, ok := c.byID[c.state.CurrentTrackID]; ok {
		return &t
	}
	return nil
}

// Track resolves an id against the known track list.
func (c *Controller) Track(id string) (catalog.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.byID[id]
	return t, ok
}

// Tracks returns a copy of the known track list.
func (c *Controller) Tracks() []catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalog.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// QueueIDs returns a copy of the active traversal order.
func (c *Controller) QueueIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.IDs()
}

func (c *Controller) allIDsLocked() []string {
	ids := make([]string, len(c.tracks))
	for i, t := range c.tracks {
		ids[i] = t.ID
	}
	return ids
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close tears the session down: the engine handle is released and
// subscriptions are closed. The session state is not cleared; a restarted
// controller resumes from the persisted snapshot instead.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++ // orphan any in-flight callbacks
	c.releaseHandleLocked()
	c.mu.Unlock()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()
}

func (c *Controller) emitTrack(prev, current string) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendTrack(TrackChange{PreviousID: prev, CurrentID: current})
	}
}

func (c *Controller) emitState() {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendState(StateChange{State: c.state})
	}
}

func (c *Controller) emitError(op string, err error) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendError(ErrorEvent{Operation: op, Err: err})
	}
}
