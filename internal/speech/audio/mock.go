package audio

import (
	"sync"
)

// MockPlayer plays nothing. It keeps every track it loaded so callers
// can inspect transport calls and drive natural end or failure.
type MockPlayer struct {
	mu        sync.Mutex
	tracks    []*MockTrack
	supported bool
	loadErr   error
}

func NewMockPlayer() *MockPlayer {
	return &MockPlayer{supported: true}
}

// NewUnsupportedPlayer returns a mock that reports no output capability.
func NewUnsupportedPlayer() *MockPlayer {
	return &MockPlayer{supported: false}
}

func (m *MockPlayer) Supported() bool {
	return m.supported
}

// FailLoads makes every later Load return err.
func (m *MockPlayer) FailLoads(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

func (m *MockPlayer) Load(clip *Clip) (Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data := clip.Bytes()
	if len(data) == 0 {
		return nil, ErrEmptyClip
	}
	t := &MockTrack{data: data}
	m.tracks = append(m.tracks, t)
	return t, nil
}

// Tracks returns every track loaded so far, oldest first.
func (m *MockPlayer) Tracks() []*MockTrack {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockTrack(nil), m.tracks...)
}

// Last returns the most recently loaded track or nil.
func (m *MockPlayer) Last() *MockTrack {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tracks) == 0 {
		return nil
	}
	return m.tracks[len(m.tracks)-1]
}

// MockTrack tracks transport calls without producing sound.
type MockTrack struct {
	emitter

	mu       sync.Mutex
	data     []byte
	playing  bool
	paused   bool
	closed   bool
	position int
	plays    int
}

func (t *MockTrack) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	t.playing = true
	t.paused = false
	t.plays++
	t.emit(Event{Kind: EventStart})
	return nil
}

func (t *MockTrack) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.playing && !t.paused {
		t.paused = true
		t.emit(Event{Kind: EventPause})
	}
	return nil
}

func (t *MockTrack) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.paused {
		t.paused = false
		t.emit(Event{Kind: EventStart})
	}
	return nil
}

func (t *MockTrack) Rewind() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	t.playing = false
	t.paused = false
	t.position = 0
	return nil
}

func (t *MockTrack) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.emitter.shutdown()
	t.closed = true
	t.playing = false
	t.paused = false
	return nil
}

// Advance moves the play head by n bytes, as if audio had been output.
func (t *MockTrack) Advance(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing && !t.paused {
		t.position = min(t.position+n, len(t.data))
	}
}

// Finish simulates the track reaching its natural end.
func (t *MockTrack) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || !t.playing {
		return
	}
	t.playing = false
	t.paused = false
	t.position = len(t.data)
	t.emit(Event{Kind: EventEnd})
}

// Fail simulates a decode or device error during playback.
func (t *MockTrack) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.playing = false
	t.paused = false
	t.emit(Event{Kind: EventError, Err: err})
}

func (t *MockTrack) IsPlaying() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing && !t.paused
}

func (t *MockTrack) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *MockTrack) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *MockTrack) Position() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Plays counts Play calls.
func (t *MockTrack) Plays() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.plays
}
