package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"narrate/internal/domain/profile"
)

// newIsolated skips the home and working directory config files.
func newIsolated(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	SetDefaults(v)
	if yaml != "" {
		path := filepath.Join(t.TempDir(), "narrate.yaml")
		if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
			t.Fatal(err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(t.TempDir())
		v.SetConfigName("narrate")
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newIsolated(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Synth.Timeout != 60*time.Second {
		t.Errorf("synth.timeout = %v", cfg.Synth.Timeout)
	}
	if cfg.Cache.MaxEntries != 64 || cfg.Cache.MaxBytes != 64<<20 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Player.Type != "auto" || cfg.Player.SampleRate != 44100 {
		t.Errorf("player = %+v", cfg.Player)
	}
	if cfg.Profile.UserID != "narrate-cli" {
		t.Errorf("profile.user_id = %q", cfg.Profile.UserID)
	}
	if cfg.Profile.Interests == nil {
		t.Error("profile.interests decoded as nil, want empty list")
	}
	if cfg.TTS.Speed != 0.9 {
		t.Errorf("tts.speed = %v, want 0.9", cfg.TTS.Speed)
	}
	if len(cfg.TTS.Voices) != len(profile.VoiceKeys) {
		t.Errorf("voices = %d, want %d", len(cfg.TTS.Voices), len(profile.VoiceKeys))
	}
	if cfg.Server.RedisTTL != 7*24*time.Hour {
		t.Errorf("server.redis_ttl = %v", cfg.Server.RedisTTL)
	}
}

func TestLoad_File(t *testing.T) {
	yaml := `
log:
  level: debug
synth:
  endpoint: http://tts.internal/api/text-to-speech
  timeout: 5s
profile:
  user_id: alice
  age: 34
  preferred_voice_gender: female
  preferred_voice_style: narration
  interests: [history, science]
cache:
  max_entries: 8
player:
  type: mock
`
	cfg, err := Load(newIsolated(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Synth.Endpoint != "http://tts.internal/api/text-to-speech" || cfg.Synth.Timeout != 5*time.Second {
		t.Errorf("synth = %+v", cfg.Synth)
	}
	if cfg.Profile.UserID != "alice" || cfg.Profile.Age == nil || *cfg.Profile.Age != 34 {
		t.Errorf("profile = %+v", cfg.Profile)
	}
	if cfg.Profile.PreferredVoiceStyle != profile.StyleNarration {
		t.Errorf("style = %q", cfg.Profile.PreferredVoiceStyle)
	}
	if len(cfg.Profile.Interests) != 2 {
		t.Errorf("interests = %v", cfg.Profile.Interests)
	}
	if cfg.Cache.MaxEntries != 8 || cfg.Player.Type != "mock" {
		t.Errorf("cache/player = %+v %+v", cfg.Cache, cfg.Player)
	}

	if err := cfg.ApplyLogLevel(); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("log level = %v", logrus.GetLevel())
	}
	logrus.SetLevel(logrus.InfoLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative cache", "cache:\n  max_entries: -1\n"},
		{"speed", "tts:\n  speed: 9\n"},
		{"engine", "tts:\n  engine: sapi\n"},
		{"profile style", "profile:\n  preferred_voice_style: shouty\n"},
		{"empty endpoint", "synth:\n  endpoint: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(newIsolated(t, tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("NARRATE_PLAYER_TYPE", "mock")
	v := New()
	if got := v.GetString("player.type"); got != "mock" {
		t.Errorf("player.type = %q, want mock", got)
	}
}

func TestApplyLogLevel_Invalid(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "loud"}}
	if err := cfg.ApplyLogLevel(); err == nil {
		t.Error("expected error")
	}
}
