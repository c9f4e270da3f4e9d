// Package backend chooses the speech engine the synthesis server runs on.
package backend

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"narrate/internal/speech/espeak"
	"narrate/internal/speech/google"
)

// Engine synthesizes text into audio of a fixed content type.
type Engine interface {
	Name() string
	ContentType() string
	Synthesize(ctx context.Context, text, voice string, speed float64) ([]byte, error)
	ListVoices(ctx context.Context, language string) ([]string, error)
	Close() error
}

type Type string

const (
	TypeAuto   Type = "auto" // Google when credentials exist, otherwise eSpeak
	TypeGoogle Type = "google"
	TypeESpeak Type = "espeak"
)

func (t Type) String() string {
	return string(t)
}

type Config struct {
	Type     string
	Language string
}

func New(ctx context.Context, config Config) (Engine, error) {
	if config.Type == "" || config.Type == TypeAuto.String() {
		config.Type = Best().String()
		logrus.WithField("engine", config.Type).Info("selected speech engine")
	}

	switch config.Type {
	case TypeGoogle.String():
		e, err := google.NewEngine(ctx, google.Config{Language: config.Language})
		if err != nil {
			return nil, err
		}
		return e, nil
	case TypeESpeak.String():
		e, err := espeak.NewEngine()
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unsupported speech engine type: %s", config.Type)
	}
}

// Best returns the engine auto selection resolves to.
func Best() Type {
	if hasGoogleCredentials() {
		return TypeGoogle
	}
	return TypeESpeak
}

func hasGoogleCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}
