// Package controller drives text-to-speech playback: it obtains audio for
// a text once, keeps it cached, and moves a single bound track through
// play, pause, resume and stop while reporting state to listeners.
package controller

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"narrate/internal/speech/audio"
	"narrate/internal/speech/cache"
	"narrate/internal/speech/synth"
)

// ErrUnsupported is recorded when speech is requested without an output
// device.
var ErrUnsupported = errors.New("speech playback not supported")

// State is the transport state of the controller.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Synthesizer turns text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*synth.Result, error)
}

type Option func(*Controller)

// WithCache replaces the default cache.
func WithCache(c *cache.LRU) Option {
	return func(ctl *Controller) { ctl.cache = c }
}

// WithTimeout bounds each synthesis request.
func WithTimeout(d time.Duration) Option {
	return func(ctl *Controller) { ctl.timeout = d }
}

func WithLogger(l *logrus.Entry) Option {
	return func(ctl *Controller) { ctl.log = l }
}

// binding is the track currently owned by the controller. gen tags the
// lifecycle subscription so events from released tracks are dropped.
type binding struct {
	text        string
	track       audio.Track
	gen         uint64
	unsubscribe func()
}

type Controller struct {
	synth   Synthesizer
	player  audio.Player
	cache   *cache.LRU
	group   singleflight.Group
	timeout time.Duration
	log     *logrus.Entry

	mu        sync.Mutex
	state     State
	token     uint64 // latest Speak or Stop request
	gen       uint64
	bound     *binding
	lastErr   error
	listeners map[int]func(State)
	nextID    int
	closed    bool
}

func New(s Synthesizer, p audio.Player, opts ...Option) *Controller {
	c := &Controller{
		synth:     s,
		player:    p,
		timeout:   30 * time.Second,
		log:       logrus.WithField("component", "speech"),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.NewLRU(64, 64<<20)
	}
	return c
}

// Speak plays text, synthesizing it on the first request and reusing
// the cached audio afterwards. It may block on the network. Failures
// never reach the caller: they are logged, recorded for LastError and
// leave the controller idle. When calls overlap, the most recent one
// wins and earlier results are only cached.
func (c *Controller) Speak(ctx context.Context, text string) {
	if text == "" {
		c.log.Warn("ignoring empty speech request")
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.player.Supported() {
		c.lastErr = ErrUnsupported
		c.mu.Unlock()
		c.log.Error("speech synthesis not supported")
		return
	}
	c.token++
	token := c.token
	c.mu.Unlock()

	res, err := c.resolve(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if token != c.token {
		c.log.WithField("chars", len(text)).Debug("discarding superseded speech request")
		return
	}
	if err != nil {
		c.fail(err)
		return
	}
	if err := c.bind(text, res.play); err != nil {
		// The payload could not be played; do not keep it around.
		c.cache.DeleteClip(text, res.cached)
		c.fail(err)
		return
	}
	c.lastErr = nil
}

// resolved pairs the clip handed to the player with the cache entry it
// came from. play holds its own reference to the payload, so evicting
// cached does not empty it.
type resolved struct {
	play   *audio.Clip
	cached *audio.Clip
}

func pin(clip *audio.Clip) (resolved, bool) {
	data := clip.Bytes()
	if len(data) == 0 {
		return resolved{}, false
	}
	return resolved{play: audio.NewClip(data, clip.ContentType()), cached: clip}, true
}

// resolve returns the cached clip for text or synthesizes it. Concurrent
// callers for the same text share one request, which runs detached from
// any single caller's context.
func (c *Controller) resolve(ctx context.Context, text string) (resolved, error) {
	if clip, ok := c.cache.Get(text); ok {
		if res, ok := pin(clip); ok {
			return res, nil
		}
	}

	v, err, shared := c.group.Do(cache.Key(text), func() (any, error) {
		if clip, ok := c.cache.Get(text); ok {
			if res, ok := pin(clip); ok {
				return res, nil
			}
		}

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		out, err := c.synth.Synthesize(sctx, text)
		if err != nil {
			return nil, err
		}

		res := resolved{
			play:   audio.NewClip(out.Audio, out.ContentType),
			cached: audio.NewClip(out.Audio, out.ContentType),
		}

		// Close clears the cache under c.mu; nothing may be added after.
		c.mu.Lock()
		if !c.closed {
			if err := c.cache.Put(text, res.cached); err != nil {
				c.log.WithError(err).WithField("bytes", res.cached.Size()).Warn("speech not cached")
			}
		}
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return resolved{}, err
	}
	if shared {
		c.log.Debug("joined in-flight synthesis")
	}
	return v.(resolved), nil
}

// bind releases the current track and plays clip on a fresh one.
func (c *Controller) bind(text string, clip *audio.Clip) error {
	c.release()

	track, err := c.player.Load(clip)
	if err != nil {
		return err
	}

	c.gen++
	gen := c.gen
	b := &binding{text: text, track: track, gen: gen}
	b.unsubscribe = track.Subscribe(func(ev audio.Event) {
		c.onEvent(gen, ev)
	})
	c.bound = b

	if err := track.Play(); err != nil {
		c.release()
		return err
	}
	c.setState(StatePlaying)
	return nil
}

// release stops and frees the bound track. Its subscription is removed
// first so nothing it emits afterwards can change state.
func (c *Controller) release() {
	b := c.bound
	if b == nil {
		return
	}
	c.bound = nil

	b.unsubscribe()
	if err := b.track.Pause(); err != nil && !errors.Is(err, audio.ErrClosed) {
		c.log.WithError(err).Debug("pause before release failed")
	}
	if err := b.track.Close(); err != nil {
		c.log.WithError(err).Warn("failed to release audio track")
	}
}

func (c *Controller) fail(err error) {
	c.lastErr = err
	entry := c.log.WithError(err)
	if synth.IsFailure(err) {
		entry.Error("speech synthesis failed")
	} else {
		entry.Error("speech playback failed")
	}

	if c.bound != nil {
		if rerr := c.bound.track.Rewind(); rerr != nil {
			c.log.WithError(rerr).Debug("rewind after failure failed")
		}
	}
	c.setState(StateIdle)
}

func (c *Controller) onEvent(gen uint64, ev audio.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bound == nil || c.bound.gen != gen {
		return
	}

	switch ev.Kind {
	case audio.EventEnd:
		c.log.Debug("speech finished")
		c.setState(StateIdle)
	case audio.EventError:
		c.lastErr = ev.Err
		c.log.WithError(ev.Err).Warn("speech playback error")
		c.setState(StateIdle)
	default:
		// Start and pause echo transport calls that already set state.
	}
}

// Pause pauses playback. It does nothing unless playing.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying || c.bound == nil {
		return
	}
	if err := c.bound.track.Pause(); err != nil {
		c.log.WithError(err).Warn("failed to pause speech")
		return
	}
	c.setState(StatePaused)
}

// Resume continues paused playback. It does nothing unless paused.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused || c.bound == nil {
		return
	}
	if err := c.bound.track.Resume(); err != nil {
		c.log.WithError(err).Warn("failed to resume speech")
		return
	}
	c.setState(StatePlaying)
}

// Stop halts playback and rewinds the bound track. Cached audio is kept
// and any Speak still waiting on synthesis is discarded.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token++
	if c.bound == nil {
		return
	}
	if err := c.bound.track.Rewind(); err != nil {
		c.log.WithError(err).Warn("failed to stop speech")
	}
	c.setState(StateIdle)
}

// Close releases the bound track and every cached clip.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.token++
	c.release()
	c.setState(StateIdle)
	c.cache.Clear()
	c.listeners = nil
	return nil
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	prev := c.state
	c.state = s
	c.log.WithFields(logrus.Fields{"from": prev, "to": s}).Debug("speech state changed")

	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		c.listeners[id](s)
	}
}

// OnStateChange registers fn for state transitions. fn runs with the
// controller locked and must not call back into it.
func (c *Controller) OnStateChange(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPlaying reports whether audio is bound and not idle; it stays true
// while paused.
func (c *Controller) IsPlaying() bool {
	return c.State() != StateIdle
}

func (c *Controller) IsPaused() bool {
	return c.State() == StatePaused
}

// IsSupported reports whether the player can produce sound.
func (c *Controller) IsSupported() bool {
	return c.player.Supported()
}

// LastError returns the error of the latest failed Speak, cleared by
// the next successful one.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// Cached reports whether audio for text is already available.
func (c *Controller) Cached(text string) bool {
	return c.cache.Contains(text)
}
