// Package config loads narrate settings through viper: defaults, then
// narrate.yaml, then NARRATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"narrate/internal/domain/profile"
)

type Config struct {
	Log     LogConfig    `mapstructure:"log"`
	Synth   SynthConfig  `mapstructure:"synth"`
	Profile profile.User `mapstructure:"profile"`
	Cache   CacheConfig  `mapstructure:"cache"`
	Player  PlayerConfig `mapstructure:"player"`
	Server  ServerConfig `mapstructure:"server"`
	TTS     TTSConfig    `mapstructure:"tts"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SynthConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	MaxEntries int   `mapstructure:"max_entries"`
	MaxBytes   int64 `mapstructure:"max_bytes"`
}

type PlayerConfig struct {
	Type       string `mapstructure:"type"`
	SampleRate int    `mapstructure:"sample_rate"`
}

type ServerConfig struct {
	Addr      string        `mapstructure:"addr"`
	Rate      float64       `mapstructure:"rate"`
	Burst     int           `mapstructure:"burst"`
	Store     string        `mapstructure:"store"`
	CacheDir  string        `mapstructure:"cache_dir"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisTTL  time.Duration `mapstructure:"redis_ttl"`
}

type TTSConfig struct {
	Engine   string            `mapstructure:"engine"`
	Voices   map[string]string `mapstructure:"voices"`
	Language string            `mapstructure:"language"`
	Speed    float64           `mapstructure:"speed"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("synth.endpoint", "http://localhost:8080/api/text-to-speech")
	v.SetDefault("synth.timeout", 60*time.Second)

	v.SetDefault("profile.user_id", "narrate-cli")
	v.SetDefault("profile.name", "")
	v.SetDefault("profile.preferred_voice_gender", "")
	v.SetDefault("profile.preferred_voice_style", "")
	v.SetDefault("profile.interests", []string{})

	v.SetDefault("cache.max_entries", 64)
	v.SetDefault("cache.max_bytes", 64<<20)

	v.SetDefault("player.type", "auto") // Auto-select best output
	v.SetDefault("player.sample_rate", 44100)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate", 2.0)
	v.SetDefault("server.burst", 5)
	v.SetDefault("server.store", "disk")
	v.SetDefault("server.cache_dir", "$HOME/.narrate/cache")
	v.SetDefault("server.redis_addr", "localhost:6379")
	v.SetDefault("server.redis_ttl", 7*24*time.Hour)

	v.SetDefault("tts.engine", "auto") // Auto-select best engine
	v.SetDefault("tts.language", "en-US")
	v.SetDefault("tts.speed", 0.9)
	v.SetDefault("tts.voices", map[string]string{
		string(profile.VoiceDefault):              "en-US-Neural2-C",
		string(profile.VoiceYoungFemaleEnergetic): "en-US-Neural2-G",
		string(profile.VoiceYoungMaleCalm):        "en-US-Neural2-I",
		string(profile.VoiceAdultFemaleNarration): "en-US-Neural2-F",
		string(profile.VoiceAdultMaleFormal):      "en-US-Neural2-D",
		string(profile.VoiceSeniorFemaleCalm):     "en-GB-Neural2-C",
		string(profile.VoiceSeniorMaleNarration):  "en-GB-Neural2-D",
	})
}

// New returns a viper instance with defaults, config file search paths
// and environment overrides registered.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("narrate")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.narrate")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NARRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// Load reads the config file, if any, and decodes the result. A missing
// file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		logrus.WithField("file", v.ConfigFileUsed()).Debug("loaded config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Synth.Endpoint == "" {
		return errors.New("synth.endpoint must be set")
	}
	if c.Cache.MaxEntries < 0 || c.Cache.MaxBytes < 0 {
		return errors.New("cache limits must not be negative")
	}
	switch c.TTS.Engine {
	case "auto", "google", "espeak":
	default:
		return fmt.Errorf("unknown tts.engine %q", c.TTS.Engine)
	}
	if c.TTS.Speed < 0.25 || c.TTS.Speed > 4.0 {
		return fmt.Errorf("tts.speed must be between 0.25 and 4.0, got %g", c.TTS.Speed)
	}
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// ApplyLogLevel configures logrus from log.level.
func (c *Config) ApplyLogLevel() error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	logrus.SetLevel(level)
	return nil
}
