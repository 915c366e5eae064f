package model

// CommandKind discriminates the classified intent of an utterance.
type CommandKind string

const (
	KindWeather      CommandKind = "weather"
	KindHostIntel    CommandKind = "host-intel"
	KindIPInfo       CommandKind = "ip-info"
	KindEncyclopedia CommandKind = "encyclopedia"
	KindConversation CommandKind = "conversation"
)

// Command is the classified intent derived from an utterance. For lookup
// kinds Query holds the trimmed argument; for conversation Text holds the
// utterance unchanged. Commands are never persisted.
type Command struct {
	Kind  CommandKind
	Query string
	Text  string
}

// IsLookup reports whether the command targets a structured lookup handler.
func (c Command) IsLookup() bool {
	return c.Kind != KindConversation
}

// Lookup builds a lookup command.
func Lookup(kind CommandKind, query string) Command {
	return Command{Kind: kind, Query: query}
}

// Conversation builds a free-form conversation command.
func Conversation(text string) Command {
	return Command{Kind: KindConversation, Text: text}
}
