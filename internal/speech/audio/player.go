package audio

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type PlayerType string

const (
	PlayerTypeAuto    PlayerType = "auto" // speaker when available, otherwise mock
	PlayerTypeSpeaker PlayerType = "speaker"
	PlayerTypeMock    PlayerType = "mock"
)

func (p PlayerType) String() string {
	return string(p)
}

type Config struct {
	Type       string
	SampleRate int
}

// NewPlayer creates the playback primitive named by config.
func NewPlayer(config Config) (Player, error) {
	if config.SampleRate <= 0 {
		config.SampleRate = 44100
	}

	switch config.Type {
	case PlayerTypeSpeaker.String():
		p, err := NewSpeakerPlayer(config.SampleRate)
		if err != nil {
			return nil, err
		}
		return p, nil

	case PlayerTypeMock.String():
		return NewMockPlayer(), nil

	case "", PlayerTypeAuto.String():
		p, err := NewSpeakerPlayer(config.SampleRate)
		if err != nil {
			logrus.WithError(err).Warn("no audio device, speech playback disabled")
			return NewUnsupportedPlayer(), nil
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unsupported player type: %s", config.Type)
	}
}
