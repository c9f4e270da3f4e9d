package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"narrate/internal/cli/scheme/colours"
	"narrate/internal/speech/controller"
	"narrate/internal/speech/text"
)

// Speak reads text aloud and then hands the transport to the user.
func (n *Narrate) Speak(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	raw, _ := cmd.Flags().GetBool("raw")
	noInput, _ := cmd.Flags().GetBool("no-input")

	input, err := readText(args, file, cmd.InOrStdin())
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	if !raw {
		input = text.Clean(input)
	}
	if input == "" {
		colours.Warning.Println("🔍 Nothing to read.")
		return
	}

	speech, err := n.controller()
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	if !speech.IsSupported() {
		colours.Error.Println("❌ No audio output available on this machine.")
		return
	}

	finished := make(chan struct{}, 1)
	unsubscribe := speech.OnStateChange(func(s controller.State) {
		colours.ForState(s.String()).Printf("%s %s\n", stateIcon(s), s)
		if s == controller.StateIdle {
			select {
			case finished <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	fmt.Println()
	colours.Success.Println("🎵 Preparing speech... 🎵")
	if !n.say(speech, input) {
		return
	}

	if noInput {
		select {
		case <-finished:
		case <-n.ctx.Done():
		}
		return
	}

	n.transport(speech, input, cmd.InOrStdin(), finished)
}

func (n *Narrate) say(speech *controller.Controller, input string) bool {
	speech.Speak(n.ctx, input)
	if err := speech.LastError(); err != nil {
		colours.Error.Printf("❌ Speech failed: %v\n", err)
		return false
	}
	return true
}

// transport runs the interactive pause/resume/stop loop until the user
// quits or the context ends. Once in is exhausted it only waits for
// playback to finish.
func (n *Narrate) transport(speech *controller.Controller, input string, in io.Reader, finished <-chan struct{}) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			if line = strings.TrimSpace(strings.ToLower(line)); line != "" || err == nil {
				select {
				case lines <- line:
				case <-n.ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	printHelp()
	for {
		select {
		case <-n.ctx.Done():
			return
		case <-finished:
			if speech.IsPlaying() {
				continue
			}
			if lines == nil {
				return
			}
			colours.Muted.Println("💡 'a' to hear it again, 'q' to quit")
		case line, ok := <-lines:
			if !ok {
				lines = nil
				if !speech.IsPlaying() {
					return
				}
				continue
			}
			switch line {
			case "p", "pause":
				speech.Pause()
			case "r", "resume":
				speech.Resume()
			case "s", "stop":
				speech.Stop()
			case "a", "again":
				n.say(speech, input)
			case "c", "cache":
				colours.Info.Printf("💾 %s\n", FormatStats(speech.CacheStats()))
			case "q", "quit":
				speech.Stop()
				colours.Warning.Println("👋 Bye!")
				return
			case "":
				continue
			default:
				printHelp()
			}
		}
	}
}

func printHelp() {
	colours.Info.Println("ℹ️  p pause · r resume · s stop · a again · c cache · q quit")
}

func stateIcon(s controller.State) string {
	switch s {
	case controller.StatePlaying:
		return "▶️ "
	case controller.StatePaused:
		return "⏸️ "
	default:
		return "⏹️ "
	}
}

// readText returns the text to speak from args, or from file when set.
// A file of "-" reads stdin.
func readText(args []string, file string, stdin io.Reader) (string, error) {
	if file != "" && len(args) > 0 {
		return "", errors.New("pass text or --file, not both")
	}
	if file == "" {
		if len(args) == 0 {
			return "", errors.New("no text given")
		}
		return strings.Join(args, " "), nil
	}

	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(data), nil
}
