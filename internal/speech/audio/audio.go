package audio

import (
	"errors"
	"slices"
	"sync"
)

var (
	ErrClosed    = errors.New("track is closed")
	ErrEmptyClip = errors.New("audio clip is empty")
)

// EventKind identifies a transport lifecycle notification.
type EventKind int

const (
	EventStart EventKind = iota
	EventPause
	EventEnd
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventPause:
		return "pause"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is emitted by a Track. Err is set for EventError only.
type Event struct {
	Kind EventKind
	Err  error
}

// Clip is a synthesized audio payload. It is immutable once created and
// may back any number of tracks.
type Clip struct {
	mu          sync.RWMutex
	data        []byte
	contentType string
}

func NewClip(data []byte, contentType string) *Clip {
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &Clip{data: data, contentType: contentType}
}

func (c *Clip) Bytes() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

func (c *Clip) ContentType() string { return c.contentType }

// Size returns the payload size in bytes, zero once released.
func (c *Clip) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.data))
}

// Release drops the payload. Tracks already loaded from the clip keep
// their own reference and continue to play.
func (c *Clip) Release() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}

func (c *Clip) Released() bool {
	return c.Size() == 0
}

// Player turns clips into playable tracks.
type Player interface {
	Load(clip *Clip) (Track, error)
	Supported() bool
}

// Track is a single playable resource bound to the output device.
//
// Listeners registered with Subscribe are called asynchronously, in
// emission order, and never from inside a Track method.
type Track interface {
	Play() error
	Pause() error
	Resume() error
	// Rewind halts output and moves the position back to the start.
	Rewind() error
	Close() error
	Subscribe(fn func(Event)) (unsubscribe func())
}

// emitter queues events and delivers them on a separate goroutine so
// emitting never blocks the caller.
type emitter struct {
	mu      sync.Mutex
	subs    map[int]func(Event)
	nextID  int
	pending []Event
	running bool
	closed  bool
}

func (e *emitter) Subscribe(fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return func() {}
	}
	if e.subs == nil {
		e.subs = make(map[int]func(Event))
	}
	id := e.nextID
	e.nextID++
	e.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.pending = append(e.pending, ev)
	if !e.running {
		e.running = true
		go e.drain()
	}
}

func (e *emitter) drain() {
	for {
		e.mu.Lock()
		if e.closed || len(e.pending) == 0 {
			e.running = false
			e.pending = nil
			e.mu.Unlock()
			return
		}
		ev := e.pending[0]
		e.pending = e.pending[1:]
		ids := make([]int, 0, len(e.subs))
		for id := range e.subs {
			ids = append(ids, id)
		}
		fns := make([]func(Event), 0, len(ids))
		slices.Sort(ids)
		for _, id := range ids {
			fns = append(fns, e.subs[id])
		}
		e.mu.Unlock()

		for _, fn := range fns {
			fn(ev)
		}
	}
}

// shutdown drops every listener and any undelivered event.
func (e *emitter) shutdown() {
	e.mu.Lock()
	e.closed = true
	e.subs = nil
	e.pending = nil
	e.mu.Unlock()
}
