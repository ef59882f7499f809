package app

import (
	"strings"

	"github.com/jpp0ca/tracemoe-telegram-bot/internal/domain"
)

// ParseOptions reads the behaviour flags from free text. Matching is a plain
// case-insensitive substring test, so "commute" also sets Mute.
func ParseOptions(text string) domain.SearchOptions {
	lower := strings.ToLower(text)
	return domain.SearchOptions{
		Mute:   strings.Contains(lower, "mute"),
		NoCrop: strings.Contains(lower, "nocrop"),
		Skip:   strings.Contains(lower, "skip"),
	}
}

// MessageOptions parses the message body, or its caption when the body is empty.
func MessageOptions(msg *domain.Message) domain.SearchOptions {
	if msg == nil {
		return domain.SearchOptions{}
	}
	if msg.Text != "" {
		return ParseOptions(msg.Text)
	}
	return ParseOptions(msg.Caption)
}
