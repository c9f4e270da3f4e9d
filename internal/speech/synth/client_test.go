package synth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"narrate/internal/domain/profile"
)

func demoProfile() profile.User {
	age := 30
	return profile.User{
		UserID:               "demo-user",
		Name:                 "Demo",
		Age:                  &age,
		PreferredVoiceGender: profile.GenderFemale,
		PreferredVoiceStyle:  profile.StyleNarration,
		Interests:            []string{"history"},
	}
}

func TestClient_Synthesize(t *testing.T) {
	var got profile.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-fake-mp3"))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Profile: demoProfile()})
	res, err := c.Synthesize(context.Background(), "Hello world")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if string(res.Audio) != "ID3-fake-mp3" {
		t.Errorf("audio = %q", res.Audio)
	}
	if res.ContentType != "audio/mpeg" {
		t.Errorf("content type = %q", res.ContentType)
	}
	if got.Content.OriginalText != "Hello world" || got.Content.Title != "Hello world" {
		t.Errorf("content = %+v", got.Content)
	}
	if got.User.UserID != "demo-user" || got.User.PreferredVoiceStyle != profile.StyleNarration {
		t.Errorf("user = %+v", got.User)
	}
	if got.User.Age == nil || *got.User.Age != 30 {
		t.Error("age not sent")
	}
}

func TestClient_SendsEmptyInterestsList(t *testing.T) {
	var raw map[string]map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3"))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Profile: profile.User{UserID: "narrate-cli"}})
	if _, err := c.Synthesize(context.Background(), "Hello world"); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got := string(raw["user"]["interests"]); got != "[]" {
		t.Errorf("interests = %s, want []", got)
	}
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "voice unavailable", http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "json instead of audio",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"ok":true}`))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "audio/mpeg")
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(Config{Endpoint: srv.URL, Profile: demoProfile()})
			_, err := c.Synthesize(context.Background(), "text")

			var f *Failure
			if !errors.As(err, &f) {
				t.Fatalf("err = %v, want *Failure", err)
			}
			if f.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", f.StatusCode, tt.wantStatus)
			}
			if !IsFailure(err) {
				t.Error("IsFailure returned false")
			}
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{Endpoint: url, Timeout: time.Second})
	_, err := c.Synthesize(context.Background(), "text")
	if !IsFailure(err) {
		t.Fatalf("err = %v, want *Failure", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Synthesize(context.Background(), "text")
	if !IsFailure(err) {
		t.Fatalf("err = %v, want *Failure", err)
	}
}

func TestFailure_Error(t *testing.T) {
	cause := errors.New("boom")
	f := &Failure{Reason: "backend error", StatusCode: 500, Err: cause}
	if !errors.Is(f, cause) {
		t.Error("Failure does not unwrap to its cause")
	}
	if f.Error() != "synthesis failed: backend error (status 500): boom" {
		t.Errorf("Error() = %q", f.Error())
	}
}
