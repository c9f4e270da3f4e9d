// Package server implements the synthesis backend consumed by the speech
// controller: it accepts a listener profile plus article text and answers
// with synthesized audio.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"narrate/internal/server/store"
)

// Engine synthesizes text with a named voice.
type Engine interface {
	Name() string
	ContentType() string
	Synthesize(ctx context.Context, text, voice string, speed float64) ([]byte, error)
}

type Config struct {
	Addr   string
	Rate   float64 // requests per second per client
	Burst  int
	Voices map[string]string // voice key -> engine voice name
	Speed  float64
}

type Server struct {
	cfg     Config
	handler *Handler
	limiter *RateLimiter
}

func New(cfg Config, engine Engine, st store.Store) *Server {
	if cfg.Rate <= 0 {
		cfg.Rate = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Server{
		cfg:     cfg,
		handler: NewHandler(engine, st, cfg.Voices, cfg.Speed),
		limiter: NewRateLimiter(cfg.Rate, cfg.Burst),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handler.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Limit)
		r.Post("/text-to-speech", s.handler.TextToSpeech)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", s.cfg.Addr).Info("starting synthesis server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down synthesis server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
