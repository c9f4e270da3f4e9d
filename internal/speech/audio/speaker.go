package audio

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"
)

const resampleQuality = 4

var (
	speakerOnce sync.Once
	speakerErr  error
	speakerRate beep.SampleRate
)

// initSpeaker opens the output device once per process. The speaker
// package only supports a single sample rate, so every track is
// resampled to it.
func initSpeaker(rate int) error {
	speakerOnce.Do(func() {
		speakerRate = beep.SampleRate(rate)
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
		if speakerErr != nil {
			logrus.WithError(speakerErr).Warn("audio output unavailable")
		}
	})
	return speakerErr
}

// SpeakerPlayer decodes MP3 or WAV clips and plays them on the default
// output device.
type SpeakerPlayer struct{}

func NewSpeakerPlayer(sampleRate int) (*SpeakerPlayer, error) {
	if err := initSpeaker(sampleRate); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	return &SpeakerPlayer{}, nil
}

func (p *SpeakerPlayer) Supported() bool {
	return speakerErr == nil
}

func (p *SpeakerPlayer) Load(clip *Clip) (Track, error) {
	data := clip.Bytes()
	if len(data) == 0 {
		return nil, ErrEmptyClip
	}

	streamer, format, err := decode(clip.ContentType(), data)
	if err != nil {
		return nil, err
	}

	t := &speakerTrack{
		streamer: streamer,
		format:   format,
	}
	t.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	return t, nil
}

// clipReader keeps Seek visible to the decoders so tracks can rewind.
type clipReader struct {
	*bytes.Reader
}

func (clipReader) Close() error { return nil }

func decode(contentType string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := clipReader{bytes.NewReader(data)}
	switch contentType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		s, f, err := wav.Decode(r)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("failed to decode WAV: %w", err)
		}
		return s, f, nil
	default:
		s, f, err := mp3.Decode(r)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("failed to decode MP3: %w", err)
		}
		return s, f, nil
	}
}

type speakerTrack struct {
	emitter

	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	closed   bool

	// queued is cleared from the speaker goroutine, which holds the
	// speaker lock while calling back.
	queued atomic.Bool
}

func (t *speakerTrack) output() beep.Streamer {
	var s beep.Streamer = t.ctrl
	if t.format.SampleRate != speakerRate {
		s = beep.Resample(resampleQuality, t.format.SampleRate, speakerRate, t.ctrl)
	}
	return beep.Seq(s, beep.Callback(t.finished))
}

func (t *speakerTrack) finished() {
	t.queued.Store(false)
	if err := t.streamer.Err(); err != nil {
		t.emit(Event{Kind: EventError, Err: err})
		return
	}
	t.emit(Event{Kind: EventEnd})
}

func (t *speakerTrack) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	if t.queued.Load() {
		speaker.Lock()
		t.ctrl.Paused = false
		speaker.Unlock()
	} else {
		speaker.Lock()
		if t.streamer.Position() >= t.streamer.Len() {
			if err := t.streamer.Seek(0); err != nil {
				speaker.Unlock()
				return fmt.Errorf("failed to rewind track: %w", err)
			}
		}
		t.ctrl.Paused = false
		speaker.Unlock()

		t.queued.Store(true)
		speaker.Play(t.output())
	}

	t.emit(Event{Kind: EventStart})
	return nil
}

func (t *speakerTrack) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	speaker.Lock()
	wasPaused := t.ctrl.Paused
	t.ctrl.Paused = true
	speaker.Unlock()

	if !wasPaused {
		t.emit(Event{Kind: EventPause})
	}
	return nil
}

func (t *speakerTrack) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	speaker.Lock()
	wasPaused := t.ctrl.Paused
	t.ctrl.Paused = false
	speaker.Unlock()

	if wasPaused {
		t.emit(Event{Kind: EventStart})
	}
	return nil
}

func (t *speakerTrack) Rewind() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	speaker.Lock()
	defer speaker.Unlock()
	t.ctrl.Paused = true
	if err := t.streamer.Seek(0); err != nil {
		return fmt.Errorf("failed to rewind track: %w", err)
	}
	return nil
}

func (t *speakerTrack) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	// Listeners go first so draining the mixer does not report an end.
	t.emitter.shutdown()

	speaker.Lock()
	t.ctrl.Streamer = nil
	speaker.Unlock()

	return t.streamer.Close()
}
