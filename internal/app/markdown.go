package app

import "strings"

// ParseModeMarkdownV2 is the Telegram markup dialect replies are rendered in.
const ParseModeMarkdownV2 = "MarkdownV2"

var markdownV2Escaper = strings.NewReplacer(
	"_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
	"~", `\~`, ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`, "=", `\=`,
	"|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
)

// EscapeMarkdownV2 escapes the MarkdownV2 reserved characters except the
// backtick, which replies use for verbatim spans.
func EscapeMarkdownV2(text string) string {
	return markdownV2Escaper.Replace(text)
}
