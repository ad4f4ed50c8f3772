package engine

import (
	"sync"
	"time"
)

// Mock is a test double for Engine. It tracks live handles so tests can
// assert the one-loaded-instance invariant.
type Mock struct {
	mu           sync.Mutex
	handles      []*MockHandle
	loadErr      error
	nextDuration time.Duration
	live         int
	maxLive      int
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{nextDuration: 3 * time.Minute}
}

func (m *Mock) Load(locator string, opts LoadOptions) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	h := &MockHandle{
		engine:   m,
		Locator:  locator,
		Opts:     opts,
		playing:  opts.Autoplay,
		position: opts.StartPosition,
		duration: m.nextDuration,
	}
	m.handles = append(m.handles, h)
	m.live++
	if m.live > m.maxLive {
		m.maxLive = m.live
	}
	return h, nil
}

func (m *Mock) released() {
	m.mu.Lock()
	m.live--
	m.mu.Unlock()
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

func (m *Mock) SetNextDuration(d time.Duration) {
	m.mu.Lock()
	m.nextDuration = d
	m.mu.Unlock()
}

// Handles returns every handle ever loaded, in load order.
func (m *Mock) Handles() []*MockHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MockHandle, len(m.handles))
	copy(out, m.handles)
	return out
}

// LastHandle returns the most recently loaded handle, or nil.
func (m *Mock) LastHandle() *MockHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.handles) == 0 {
		return nil
	}
	return m.handles[len(m.handles)-1]
}

// LiveCount returns the number of currently loaded handles.
func (m *Mock) LiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

// MaxLive returns the peak number of simultaneously loaded handles.
func (m *Mock) MaxLive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxLive
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)

// MockHandle is the test double for one loaded track.
type MockHandle struct {
	mu sync.Mutex

	engine  *Mock
	Locator string
	Opts    LoadOptions

	playing  bool
	position time.Duration
	duration time.Duration
	released bool
	statusFn func(Status)

	playCalls  int
	pauseCalls int
	seekCalls  []time.Duration
	stopCalls  int
}

func (h *MockHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playCalls++
	h.playing = true
	return nil
}

func (h *MockHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauseCalls++
	h.playing = false
	return nil
}

func (h *MockHandle) Seek(pos time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seekCalls = append(h.seekCalls, pos)
	h.position = pos
	return nil
}

func (h *MockHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return Status{}
	}
	return Status{
		Loaded:   true,
		Position: h.position,
		Duration: h.duration,
		Playing:  h.playing,
	}
}

func (h *MockHandle) SetStatusFunc(fn func(Status)) {
	h.mu.Lock()
	h.statusFn = fn
	h.mu.Unlock()
}

func (h *MockHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopCalls++
	h.playing = false
	return nil
}

func (h *MockHandle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.statusFn = nil
	h.mu.Unlock()
	h.engine.released()
}

// Test helpers

// Emit delivers a status report through the attached callback, if any.
func (h *MockHandle) Emit(st Status) {
	h.mu.Lock()
	fn := h.statusFn
	h.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// EmitProgress delivers an ordinary progress tick.
func (h *MockHandle) EmitProgress(pos time.Duration) {
	h.mu.Lock()
	h.position = pos
	playing := h.playing
	dur := h.duration
	h.mu.Unlock()
	h.Emit(Status{Loaded: true, Position: pos, Duration: dur, Playing: playing})
}

// EmitFinished delivers a natural-completion report.
func (h *MockHandle) EmitFinished() {
	h.mu.Lock()
	dur := h.duration
	h.mu.Unlock()
	h.Emit(Status{Loaded: true, Position: dur, Duration: dur, Finished: true})
}

func (h *MockHandle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *MockHandle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *MockHandle) SeekCalls() []time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]time.Duration, len(h.seekCalls))
	copy(out, h.seekCalls)
	return out
}

func (h *MockHandle) StopCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopCalls
}

// Verify MockHandle implements Handle at compile time.
var _ Handle = (*MockHandle)(nil)
