package app

import (
	"fmt"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"narrate/internal/cli/scheme/colours"
	"narrate/internal/domain/profile"
	"narrate/internal/server"
	"narrate/internal/server/store"
	"narrate/internal/speech/backend"
)

// Serve runs the synthesis backend until interrupted.
func (n *Narrate) Serve(cmd *cobra.Command, args []string) error {
	cfg := n.cfg

	engine, err := backend.New(n.ctx, backend.Config{Type: cfg.TTS.Engine, Language: cfg.TTS.Language})
	if err != nil {
		return err
	}
	defer engine.Close()

	st, err := store.New(n.ctx, store.Config{
		Type:      store.Type(cfg.Server.Store),
		Dir:       os.ExpandEnv(cfg.Server.CacheDir),
		RedisAddr: cfg.Server.RedisAddr,
		RedisTTL:  cfg.Server.RedisTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio store: %w", err)
	}
	switch s := st.(type) {
	case *store.RedisStore:
		defer s.Close()
	case *store.DiskStore:
		wipe, _ := cmd.Flags().GetBool("clear-cache")
		summary, err := prepareDiskStore(s, wipe)
		if err != nil {
			return err
		}
		colours.Info.Printf("💾 %s\n", summary)
	}
	logrus.WithField("store", cfg.Server.Store).Info("audio store ready")

	srv := server.New(server.Config{
		Addr:   cfg.Server.Addr,
		Rate:   cfg.Server.Rate,
		Burst:  cfg.Server.Burst,
		Voices: cfg.TTS.Voices,
		Speed:  cfg.TTS.Speed,
	}, engine, st)

	colours.Success.Printf("🚀 Serving %s speech on %s\n", engine.Name(), cfg.Server.Addr)
	return srv.Run(n.ctx)
}

// ListVoices prints the configured voice table and, with --remote, the
// voices the speech engine offers.
func (n *Narrate) ListVoices(cmd *cobra.Command, args []string) error {
	cfg := n.cfg
	selected := profile.SelectVoice(cfg.Profile)

	fmt.Println()
	colours.Title.Println("🎤 Voices 🎤")
	fmt.Println()
	for _, key := range profile.VoiceKeys {
		marker := "  "
		if key == selected {
			marker = "➜ "
		}
		fmt.Printf("%s%-24s ", marker, key)
		colours.Voice.Println(cfg.TTS.Voices[string(key)])
	}

	remote, _ := cmd.Flags().GetBool("remote")
	if !remote {
		return nil
	}

	language, _ := cmd.Flags().GetString("language")
	engine, err := backend.New(n.ctx, backend.Config{Type: cfg.TTS.Engine, Language: cfg.TTS.Language})
	if err != nil {
		return err
	}
	defer engine.Close()

	voices, err := engine.ListVoices(n.ctx, language)
	if err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}
	slices.Sort(voices)

	fmt.Println()
	colours.Info.Printf("🌐 %d %s voices available:\n", len(voices), engine.Name())
	for _, v := range voices {
		fmt.Printf("  • %s\n", v)
	}
	return nil
}

// prepareDiskStore optionally empties the store and describes what is
// left in it.
func prepareDiskStore(ds *store.DiskStore, wipe bool) (string, error) {
	if wipe {
		if err := ds.Clear(); err != nil {
			return "", fmt.Errorf("failed to clear audio store: %w", err)
		}
		logrus.Info("audio store cleared")
	}
	return diskStoreSummary(ds)
}

func diskStoreSummary(ds *store.DiskStore) (string, error) {
	files, size, err := ds.Stats()
	if err != nil {
		return "", fmt.Errorf("failed to read audio store: %w", err)
	}
	return fmt.Sprintf("%s clips, %s on disk", humanize.Comma(files), humanize.IBytes(uint64(size))), nil
}
