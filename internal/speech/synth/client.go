package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"narrate/internal/domain/profile"
)

const titleLimit = 60

// Result holds synthesized audio and its content type.
type Result struct {
	Audio       []byte
	ContentType string
}

// Config configures the synthesis backend client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	Profile  profile.User
}

// Client posts text to the synthesis backend on behalf of a fixed
// listener profile.
type Client struct {
	endpoint   string
	profile    profile.User
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	// The backend requires a list, never null.
	if cfg.Profile.Interests == nil {
		cfg.Profile.Interests = []string{}
	}
	return &Client{
		endpoint: cfg.Endpoint,
		profile:  cfg.Profile,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Synthesize converts text to audio. Every failure is returned as a
// *Failure.
func (c *Client) Synthesize(ctx context.Context, text string) (*Result, error) {
	body := profile.Request{
		User: c.profile,
		Content: profile.Content{
			Title:        profile.TitleFor(text, titleLimit),
			OriginalText: text,
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &Failure{Reason: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, &Failure{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Failure{Reason: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Failure{
			Reason:     "backend error",
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(msg))),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || !isAudio(mediaType) {
			return nil, &Failure{
				Reason:     "malformed payload",
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("unexpected content type %q", contentType),
			}
		}
		contentType = mediaType
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Failure{Reason: "read audio", StatusCode: resp.StatusCode, Err: err}
	}
	if len(audio) == 0 {
		return nil, &Failure{Reason: "malformed payload", StatusCode: resp.StatusCode, Err: errors.New("empty audio body")}
	}

	logrus.WithFields(logrus.Fields{
		"bytes":    len(audio),
		"chars":    len(text),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("synthesized speech")

	return &Result{Audio: audio, ContentType: contentType}, nil
}

func isAudio(mediaType string) bool {
	return strings.HasPrefix(mediaType, "audio/") || mediaType == "application/octet-stream"
}
