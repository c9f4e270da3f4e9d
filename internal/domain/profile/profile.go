package profile

import (
	"errors"
	"fmt"
	"strings"
)

type Gender string

const (
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderNeutral Gender = "neutral"
)

type Style string

const (
	StyleCalm      Style = "calm"
	StyleEnergetic Style = "energetic"
	StyleFormal    Style = "formal"
	StyleNarration Style = "narration"
)

// User describes the listener a clip is synthesized for.
type User struct {
	UserID               string   `json:"user_id" mapstructure:"user_id"`
	Name                 string   `json:"name,omitempty" mapstructure:"name"`
	Age                  *int     `json:"age,omitempty" mapstructure:"age"`
	PreferredVoiceGender Gender   `json:"preferred_voice_gender,omitempty" mapstructure:"preferred_voice_gender"`
	PreferredVoiceStyle  Style    `json:"preferred_voice_style,omitempty" mapstructure:"preferred_voice_style"`
	Interests            []string `json:"interests" mapstructure:"interests"`
}

// Content is the text to synthesize.
type Content struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	OriginalText string `json:"original_text"`
}

// Request is the body accepted by the synthesis endpoint.
type Request struct {
	User    User    `json:"user"`
	Content Content `json:"content"`
}

func (u User) Validate() error {
	if strings.TrimSpace(u.UserID) == "" {
		return errors.New("user_id is required")
	}
	if u.Age != nil && *u.Age < 0 {
		return fmt.Errorf("age must be >= 0, got %d", *u.Age)
	}
	switch u.PreferredVoiceGender {
	case "", GenderFemale, GenderMale, GenderNeutral:
	default:
		return fmt.Errorf("unknown preferred_voice_gender %q", u.PreferredVoiceGender)
	}
	switch u.PreferredVoiceStyle {
	case "", StyleCalm, StyleEnergetic, StyleFormal, StyleNarration:
	default:
		return fmt.Errorf("unknown preferred_voice_style %q", u.PreferredVoiceStyle)
	}
	return nil
}

func (c Content) Validate() error {
	if len(c.OriginalText) == 0 {
		return errors.New("original_text must not be empty")
	}
	return nil
}

func (r Request) Validate() error {
	if err := r.User.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	if err := r.Content.Validate(); err != nil {
		return fmt.Errorf("invalid content: %w", err)
	}
	return nil
}

// TitleFor derives a short title from text: the first words, at most
// limit runes.
func TitleFor(text string, limit int) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "Untitled"
	}

	var b strings.Builder
	for _, w := range fields {
		next := len([]rune(b.String())) + len([]rune(w))
		if b.Len() > 0 {
			next++
		}
		if next > limit {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() == 0 {
		return string([]rune(fields[0])[:limit])
	}
	return b.String()
}
