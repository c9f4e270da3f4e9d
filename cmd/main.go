package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"narrate/internal/app"
	"narrate/internal/cli/scheme/colours"
	"narrate/internal/config"
)

func main() {
	v := config.New()
	narrate := app.New(v)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n" + colours.Warning.Sprint("👋 Goodbye!"))
		narrate.Cancel()
		// A second signal skips the graceful path.
		<-sigChan
		os.Exit(1)
	}()

	rootCmd := &cobra.Command{
		Use:   "narrate",
		Short: "🔊 Listen to articles instead of reading them",
		Long: `
┌─────────────────────────────────────┐
│  🔊 Welcome to narrate!             │
│  Articles, read aloud               │
└─────────────────────────────────────┘

narrate sends text to a speech synthesis backend, caches the audio and
plays it with pause, resume and stop controls.
		`,
		PersistentPreRunE: narrate.LoadConfig,
		SilenceUsage:      true,
		Run: func(cmd *cobra.Command, args []string) {
			narrate.ShowWelcome()
		},
	}

	speakCmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "🎧 Read text aloud",
		Long:  "Synthesize text and play it, with interactive pause/resume/stop controls",
		Run:   narrate.Speak,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "🚀 Run the synthesis backend",
		Long:  "Serve POST /api/text-to-speech backed by Google Cloud Text-to-Speech or eSpeak",
		RunE:  narrate.Serve,
	}

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "🎤 List voices",
		Long:  "Show the voice chosen for each listener profile and, optionally, the backend's voices",
		RunE:  narrate.ListVoices,
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "⚙️ Show settings",
		Long:  "Display the synthesis, listener, cache and output settings in effect",
		Run:   narrate.ShowSettings,
	}

	// Add flags
	speakCmd.Flags().StringP("file", "f", "", "Read text from a file ('-' for stdin)")
	speakCmd.Flags().Bool("raw", false, "Send text as-is without stripping markup")
	speakCmd.Flags().Bool("no-input", false, "Play once and exit without interactive controls")
	voicesCmd.Flags().Bool("remote", false, "Also list voices offered by the speech engine")
	voicesCmd.Flags().StringP("language", "l", "", "Filter remote voices by language code")
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Bool("clear-cache", false, "Empty the disk audio store before serving")
	rootCmd.PersistentFlags().String("engine", "", "Speech engine: auto, google or espeak (overrides tts.engine)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides log.level)")

	v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	v.BindPFlag("tts.engine", rootCmd.PersistentFlags().Lookup("engine"))
	v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(speakCmd, serveCmd, voicesCmd, settingsCmd)

	err := rootCmd.Execute()
	narrate.Shutdown()
	if err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}
