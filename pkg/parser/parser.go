// Package parser classifies raw utterance text into structured lookup
// commands or free-form conversation. Parsing is pure and total: malformed
// input degrades to conversational routing, it never errors.
package parser

import (
	"strings"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

// verb maps a set of case-insensitive command prefixes to a lookup kind.
// Longer prefixes must come first within a verb so "weather in london"
// yields "london", not "in london".
type verb struct {
	kind     model.CommandKind
	prefixes []string
}

var verbs = []verb{
	{model.KindHostIntel, []string{"shodan"}},
	{model.KindIPInfo, []string{"ip info", "ipinfo"}},
	{model.KindWeather, []string{"weather in", "weather"}},
	{model.KindEncyclopedia, []string{"wikipedia", "wiki", "who is", "who's"}},
}

// Parse classifies an utterance into exactly one command. A recognized verb
// with a non-empty argument becomes a lookup; a verb with an empty argument
// and everything else is treated as conversation with the text unchanged.
func Parse(u model.Utterance) model.Command {
	text := strings.TrimSpace(u.Text)
	lower := strings.ToLower(text)

	for _, v := range verbs {
		for _, prefix := range v.prefixes {
			arg, ok := matchPrefix(text, lower, prefix)
			if !ok {
				continue
			}
			if arg == "" {
				// Verb without argument: degrade to conversation.
				return model.Conversation(u.Text)
			}
			return model.Lookup(v.kind, arg)
		}
	}

	return model.Conversation(u.Text)
}

// matchPrefix reports whether the lowered text starts with the verb prefix
// at a word boundary, returning the trimmed argument with original casing.
func matchPrefix(text, lower, prefix string) (string, bool) {
	if lower == prefix {
		return "", true
	}
	if !strings.HasPrefix(lower, prefix+" ") {
		return "", false
	}
	return strings.TrimSpace(text[len(prefix):]), true
}
