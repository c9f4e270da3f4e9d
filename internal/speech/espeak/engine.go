// Package espeak synthesizes speech offline with eSpeak or eSpeak NG.
package espeak

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// baseWPM is eSpeak's default speaking rate in words per minute.
const baseWPM = 175

type Engine struct {
	path string
}

// NewEngine locates the eSpeak executable and checks that it runs.
func NewEngine() (*Engine, error) {
	path, err := findExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}
	if err := exec.Command(path, "--version").Run(); err != nil {
		return nil, fmt.Errorf("eSpeak test failed: %w", err)
	}
	return &Engine{path: path}, nil
}

func findExecutable() (string, error) {
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", errors.New("eSpeak executable not found in PATH")
}

func (e *Engine) Name() string        { return "espeak" }
func (e *Engine) ContentType() string { return "audio/wav" }

// Synthesize returns WAV audio for text. Text is passed on stdin so it
// is never parsed as flags.
func (e *Engine) Synthesize(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.path, Args(voice, speed)...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("eSpeak failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if len(out) == 0 {
		return nil, errors.New("eSpeak produced no audio")
	}

	logrus.WithFields(logrus.Fields{
		"voice": voice,
		"bytes": len(out),
	}).Debug("espeak synthesis complete")
	return out, nil
}

// Args builds the command line for a synthesis run.
func Args(voice string, speed float64) []string {
	args := []string{"--stdout"}
	if v := VoiceFor(voice); v != "" {
		args = append(args, "-v", v)
	}
	if speed <= 0 {
		speed = 1.0
	}
	wpm := int(math.Round(baseWPM * speed))
	return append(args, "-s", strconv.Itoa(wpm))
}

// VoiceFor maps a cloud voice name such as "en-GB-Neural2-C" to the
// eSpeak voice for its language. Other names pass through.
func VoiceFor(name string) string {
	if name == "" || name == "default" {
		return ""
	}
	parts := strings.SplitN(name, "-", 3)
	if len(parts) == 3 && len(parts[0]) == 2 && len(parts[1]) == 2 {
		return strings.ToLower(parts[0] + "-" + parts[1])
	}
	return name
}

// ListVoices returns installed voice names, filtered by language when
// language is set.
func (e *Engine) ListVoices(ctx context.Context, language string) ([]string, error) {
	arg := "--voices"
	if language != "" {
		arg += "=" + language
	}
	out, err := exec.CommandContext(ctx, e.path, arg).Output()
	if err != nil {
		return nil, err
	}
	return ParseVoices(string(out)), nil
}

func (e *Engine) Close() error { return nil }

// ParseVoices reads the table printed by --voices:
// Pty Language Age/Gender VoiceName File Other Languages
func ParseVoices(output string) []string {
	voices := make([]string, 0)
	for i, line := range strings.Split(output, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}
	return voices
}
