// Package app holds the narrate CLI application: one object whose
// methods back the cobra commands.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"narrate/internal/cli/scheme/colours"
	"narrate/internal/config"
	"narrate/internal/domain/profile"
	"narrate/internal/server/store"
	"narrate/internal/speech/audio"
	"narrate/internal/speech/cache"
	"narrate/internal/speech/controller"
	"narrate/internal/speech/synth"
)

type Narrate struct {
	v      *viper.Viper
	cfg    *config.Config
	speech *controller.Controller

	ctx    context.Context
	Cancel context.CancelFunc
}

func New(v *viper.Viper) *Narrate {
	ctx, cancel := context.WithCancel(context.Background())
	return &Narrate{v: v, ctx: ctx, Cancel: cancel}
}

// LoadConfig is the root PersistentPreRunE: it decodes the configuration
// once flags are parsed.
func (n *Narrate) LoadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(n.v)
	if err != nil {
		return err
	}
	if err := cfg.ApplyLogLevel(); err != nil {
		return err
	}
	n.cfg = cfg
	return nil
}

// Shutdown stops playback and releases audio.
func (n *Narrate) Shutdown() {
	n.Cancel()
	if n.speech != nil {
		n.speech.Close()
	}
}

// controller builds the speech controller on first use.
func (n *Narrate) controller() (*controller.Controller, error) {
	if n.speech != nil {
		return n.speech, nil
	}

	player, err := audio.NewPlayer(audio.Config{
		Type:       n.cfg.Player.Type,
		SampleRate: n.cfg.Player.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player: %w", err)
	}

	client := synth.NewClient(synth.Config{
		Endpoint: n.cfg.Synth.Endpoint,
		Timeout:  n.cfg.Synth.Timeout,
		Profile:  n.cfg.Profile,
	})

	n.speech = controller.New(client, player,
		controller.WithCache(cache.NewLRU(n.cfg.Cache.MaxEntries, n.cfg.Cache.MaxBytes)),
		controller.WithTimeout(n.cfg.Synth.Timeout),
		controller.WithLogger(logrus.WithField("component", "speech")),
	)
	return n.speech, nil
}

func (n *Narrate) ShowWelcome() {
	fmt.Println()
	colours.Title.Println("🔊 Welcome to narrate! 🔊")
	fmt.Println()
	colours.Info.Println("📚 Available commands:")
	fmt.Println("  • narrate speak [text] - Read text aloud")
	fmt.Println("  • narrate serve        - Run the synthesis backend")
	fmt.Println("  • narrate voices       - List voices")
	fmt.Println("  • narrate settings     - Show current settings")
	fmt.Println()
	colours.Prompt.Println("✨ Paste an article and sit back ✨")
}

func (n *Narrate) ShowSettings(cmd *cobra.Command, args []string) {
	cfg := n.cfg

	fmt.Println()
	colours.Title.Println("⚙️ Settings ⚙️")
	fmt.Println()

	colours.Prompt.Println("🌐 Synthesis:")
	fmt.Printf("  • Endpoint: %s\n", cfg.Synth.Endpoint)
	fmt.Printf("  • Timeout: %s\n", cfg.Synth.Timeout)
	fmt.Println()

	colours.Prompt.Println("👤 Listener:")
	fmt.Printf("  • User: %s\n", cfg.Profile.UserID)
	if cfg.Profile.Age != nil {
		fmt.Printf("  • Age: %d\n", *cfg.Profile.Age)
	}
	fmt.Printf("  • Preferred voice: %s\n", describePreference(cfg.Profile))
	fmt.Printf("  • Selected voice: ")
	colours.Voice.Println(profile.SelectVoice(cfg.Profile))
	fmt.Println()

	colours.Prompt.Println("💾 Cache:")
	fmt.Printf("  • Entries: %s\n", limit(int64(cfg.Cache.MaxEntries), humanize.Comma))
	fmt.Printf("  • Size: %s\n", limit(cfg.Cache.MaxBytes, func(b int64) string { return humanize.IBytes(uint64(b)) }))
	fmt.Println()

	colours.Prompt.Println("🔈 Output:")
	fmt.Printf("  • Player: %s\n", cfg.Player.Type)
	fmt.Printf("  • Sample rate: %s Hz\n", humanize.Comma(int64(cfg.Player.SampleRate)))
	fmt.Println()

	colours.Prompt.Println("🗄️ Server store:")
	fmt.Printf("  • Type: %s\n", cfg.Server.Store)
	if store.Type(cfg.Server.Store) == store.TypeDisk {
		dir := os.ExpandEnv(cfg.Server.CacheDir)
		fmt.Printf("  • Directory: %s\n", dir)
		if _, err := os.Stat(dir); err == nil {
			ds, err := store.NewDiskStore(dir)
			if err == nil {
				var summary string
				summary, err = diskStoreSummary(ds)
				if err == nil {
					fmt.Printf("  • Contents: %s\n", summary)
				}
			}
			if err != nil {
				colours.Warning.Printf("  • %v\n", err)
			}
		}
	}
	if used := n.v.ConfigFileUsed(); used != "" {
		fmt.Println()
		colours.Muted.Printf("Loaded from %s\n", used)
	}
}

func describePreference(u profile.User) string {
	parts := []string{}
	if u.PreferredVoiceGender != "" {
		parts = append(parts, string(u.PreferredVoiceGender))
	}
	if u.PreferredVoiceStyle != "" {
		parts = append(parts, string(u.PreferredVoiceStyle))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func limit(v int64, format func(int64) string) string {
	if v <= 0 {
		return "unbounded"
	}
	return format(v)
}

// FormatStats renders cache statistics for the interactive prompt.
func FormatStats(s cache.Stats) string {
	return fmt.Sprintf("%d/%s clips, %s/%s, %.0f%% hit rate, %d evicted",
		s.Entries,
		limit(int64(s.MaxEntries), humanize.Comma),
		humanize.IBytes(uint64(s.Bytes)),
		limit(s.MaxBytes, func(b int64) string { return humanize.IBytes(uint64(b)) }),
		s.HitRate()*100,
		s.Evictions,
	)
}
