package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"narrate/internal/domain/profile"
	"narrate/internal/server/store"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	engine Engine
	store  store.Store
	voices map[string]string
	speed  float64
}

func NewHandler(engine Engine, st store.Store, voices map[string]string, speed float64) *Handler {
	if st == nil {
		st = store.Nop{}
	}
	if speed <= 0 {
		speed = 1.0
	}
	return &Handler{engine: engine, store: st, voices: voices, speed: speed}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TextToSpeech answers a profile.Request with audio in the engine's
// format.
func (h *Handler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req profile.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	voice := h.voiceFor(req.User)
	text := req.Content.OriginalText
	key := store.Key(h.engine.Name()+"/"+voice, h.speed, text)
	log := logrus.WithFields(logrus.Fields{
		"user":   req.User.UserID,
		"engine": h.engine.Name(),
		"voice":  voice,
		"chars":  len(text),
	})

	audio, ok, err := h.store.Get(r.Context(), key)
	if err != nil {
		log.WithError(err).Warn("audio store lookup failed")
	}
	cacheStatus := "hit"
	if !ok {
		cacheStatus = "miss"
		audio, err = h.engine.Synthesize(r.Context(), text, voice, h.speed)
		if err != nil {
			log.WithError(err).Error("synthesis failed")
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "synthesis failed"})
			return
		}
		if err := h.store.Put(r.Context(), key, audio); err != nil {
			log.WithError(err).Warn("failed to store audio")
		}
	}
	log.WithField("cache", cacheStatus).Info("serving speech")

	w.Header().Set("Content-Type", h.engine.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// voiceFor maps the profile's voice key to an engine voice, falling back
// to the default entry.
func (h *Handler) voiceFor(u profile.User) string {
	if v, ok := h.voices[string(profile.SelectVoice(u))]; ok && v != "" {
		return v
	}
	return h.voices[string(profile.VoiceDefault)]
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
