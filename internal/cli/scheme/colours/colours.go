package colours

import "github.com/fatih/color"

// Color scheme for the CLI
var (
	Title   = color.New(color.FgCyan, color.Bold)
	Voice   = color.New(color.FgMagenta)
	Prompt  = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Success = color.New(color.FgGreen)
	Info    = color.New(color.FgBlue)
	Warning = color.New(color.FgYellow)
	Muted   = color.New(color.FgHiBlack)
)

// ForState picks the colour used to report a playback state.
func ForState(state string) *color.Color {
	switch state {
	case "playing":
		return Success
	case "paused":
		return Warning
	default:
		return Info
	}
}
