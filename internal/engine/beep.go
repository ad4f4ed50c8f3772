package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const statusInterval = 500 * time.Millisecond

// Beep renders audio through the gopxl/beep speaker. Only one handle is
// audible at a time; the session controller's release-before-load protocol
// matches that.
type Beep struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
}

// NewBeep creates the speaker-backed engine.
func NewBeep() *Beep {
	return &Beep{}
}

// Verify Beep implements Engine at compile time.
var _ Engine = (*Beep)(nil)

func (e *Beep) Load(locator string, opts LoadOptions) (Handle, error) {
	f, err := os.Open(locator)
	if err != nil {
		return nil, err
	}

	streamer, format, err := decode(locator, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if opts.StartPosition > 0 {
		n := format.SampleRate.N(opts.StartPosition)
		if n < streamer.Len() {
			if err := streamer.Seek(n); err != nil {
				streamer.Close()
				f.Close()
				return nil, err
			}
		}
	}

	e.mu.Lock()
	if e.sampleRate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			e.mu.Unlock()
			streamer.Close()
			f.Close()
			return nil, err
		}
		e.sampleRate = format.SampleRate
	}
	e.mu.Unlock()

	h := &beepHandle{
		streamer: streamer,
		format:   format,
		file:     f,
		duration: format.SampleRate.D(streamer.Len()),
		stop:     make(chan struct{}),
	}
	h.ctrl = &beep.Ctrl{Streamer: streamer, Paused: !opts.Autoplay}

	speaker.Play(beep.Seq(h.ctrl, beep.Callback(h.markFinished)))
	go h.statusLoop()

	return h, nil
}

func decode(locator string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(locator)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", filepath.Ext(locator))
	}
}

type beepHandle struct {
	mu       sync.Mutex
	ctrl     *beep.Ctrl
	streamer beep.StreamSeekCloser
	format   beep.Format
	file     *os.File
	duration time.Duration
	statusFn func(Status)
	finished bool
	released bool
	stop     chan struct{}
}

func (h *beepHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (h *beepHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (h *beepHandle) Seek(pos time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	n := h.format.SampleRate.N(pos)
	if n >= h.streamer.Len() {
		n = h.streamer.Len() - 1
	}
	if n < 0 {
		n = 0
	}
	speaker.Lock()
	err := h.streamer.Seek(n)
	speaker.Unlock()
	return err
}

func (h *beepHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statusLocked()
}

func (h *beepHandle) statusLocked() Status {
	if h.released {
		return Status{}
	}
	speaker.Lock()
	pos := h.format.SampleRate.D(h.streamer.Position())
	paused := h.ctrl.Paused
	speaker.Unlock()

	st := Status{
		Loaded:   true,
		Position: pos,
		Duration: h.duration,
		Playing:  !paused && !h.finished,
		Finished: h.finished,
	}
	return st
}

func (h *beepHandle) SetStatusFunc(fn func(Status)) {
	h.mu.Lock()
	h.statusFn = fn
	h.mu.Unlock()
}

func (h *beepHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (h *beepHandle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.statusFn = nil
	close(h.stop)
	streamer := h.streamer
	file := h.file
	h.streamer = nil
	h.file = nil
	h.mu.Unlock()

	speaker.Clear()
	// Best-effort cleanup: a failed close must never block the next load.
	if streamer != nil {
		_ = streamer.Close()
	}
	if file != nil {
		_ = file.Close()
	}
}

func (h *beepHandle) markFinished() {
	h.mu.Lock()
	h.finished = true
	h.mu.Unlock()
}

// statusLoop delivers periodic status reports until the handle is released.
// The Finished report is delivered exactly once, as soon as the completion
// callback fires.
func (h *beepHandle) statusLoop() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	finishedSent := false
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		h.mu.Lock()
		if h.released {
			h.mu.Unlock()
			return
		}
		st := h.statusLocked()
		fn := h.statusFn
		h.mu.Unlock()

		if st.Finished {
			if finishedSent {
				continue
			}
			finishedSent = true
		}
		if fn != nil {
			fn(st)
		}
	}
}
