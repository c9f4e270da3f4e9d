// Package google synthesizes speech with Google Cloud Text-to-Speech.
package google

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/sirupsen/logrus"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// chunkLimit is in bytes and stays a little under the API's 5000 byte
// input limit.
const chunkLimit = 4800

type Config struct {
	Language string
}

type Engine struct {
	client   *texttospeech.Client
	language string
}

func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	return &Engine{client: client, language: cfg.Language}, nil
}

func (e *Engine) Name() string        { return "google" }
func (e *Engine) ContentType() string { return "audio/mpeg" }

// Synthesize returns MP3 audio for text spoken by voice. Long text is
// synthesized in chunks and the MP3 frames are concatenated.
func (e *Engine) Synthesize(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	audioCfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	// Chirp voices reject speakingRate.
	if speed > 0 && !strings.Contains(strings.ToLower(voice), "chirp") {
		audioCfg.SpeakingRate = speed
	}

	chunks := SplitIntoChunks(text, chunkLimit)
	var out bytes.Buffer
	for i, chunk := range chunks {
		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: languageOf(voice, e.language),
				Name:         voice,
			},
			AudioConfig: audioCfg,
		}
		resp, err := e.client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize chunk %d: %w", i, err)
		}
		out.Write(resp.AudioContent)
	}

	logrus.WithFields(logrus.Fields{
		"voice":  voice,
		"chunks": len(chunks),
		"bytes":  out.Len(),
	}).Debug("google synthesis complete")

	return out.Bytes(), nil
}

// ListVoices returns the voice names available for language, or every
// voice when language is empty.
func (e *Engine) ListVoices(ctx context.Context, language string) ([]string, error) {
	resp, err := e.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: language})
	if err != nil {
		return nil, err
	}
	voices := make([]string, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voices = append(voices, v.Name)
	}
	return voices, nil
}

func (e *Engine) Close() error {
	return e.client.Close()
}

// languageOf derives the language code from a voice name such as
// "en-GB-Neural2-A".
func languageOf(voice, fallback string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return fallback
	}
	return parts[0] + "-" + parts[1]
}

// SplitIntoChunks splits text into pieces of at most limit bytes without
// cutting a UTF-8 sequence. A rune wider than limit gets a chunk of its own.
func SplitIntoChunks(text string, limit int) []string {
	var chunks []string
	for len(text) > 0 {
		end := min(limit, len(text))
		for end > 0 && end < len(text) && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == 0 {
			_, end = utf8.DecodeRuneInString(text)
		}
		chunks = append(chunks, text[:end])
		text = text[end:]
	}
	return chunks
}
