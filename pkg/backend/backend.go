// Package backend adapts conversational LLM providers to a uniform attempt
// contract consumed by the router's fallback chain: primary Groq for latency,
// secondary Gemini for capability. Backends classify provider failures into
// the shared taxonomy so the chain can decide retry and fallback uniformly.
package backend

import (
	"context"
	"strings"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

const systemPrompt = `You are Jarvis, a concise personal assistant. ` +
	`Use the relevant memories below to personalize your answer when they apply. ` +
	`Answer in a few sentences.`

// Backend generates a reply for a prompt given retrieved memory context.
type Backend interface {
	Name() string
	Reply(ctx context.Context, prompt string, memories []*model.MemoryRecord) (string, error)
}

// buildPrompt renders the retrieved memories and the user utterance into a
// single prompt body shared by all backends.
func buildPrompt(prompt string, memories []*model.MemoryRecord) string {
	var b strings.Builder

	b.WriteString("Relevant memories:\n")
	if len(memories) == 0 {
		b.WriteString("(none)\n")
	}
	for _, m := range memories {
		b.WriteString("- [")
		b.WriteString(string(m.Role))
		b.WriteString("] ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}

	b.WriteString("\nUser: ")
	b.WriteString(prompt)
	return b.String()
}
