// Package router orchestrates one assistant turn: classify the utterance,
// dispatch it to a lookup handler or the conversational path, and compose
// exactly one response. All failure is folded into the response text; the
// front-end never sees an error.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jarvis-assistant/jarvis/pkg/backend"
	"github.com/jarvis-assistant/jarvis/pkg/lookup"
	"github.com/jarvis-assistant/jarvis/pkg/memory"
	"github.com/jarvis-assistant/jarvis/pkg/model"
	"github.com/jarvis-assistant/jarvis/pkg/parser"
	"github.com/jarvis-assistant/jarvis/pkg/utils/logging"
)

// DefaultTopK is how many memory records are recalled as context per turn.
const DefaultTopK = 5

const emptyInputMessage = "I didn't catch that."

// Router is the hybrid command router. No state persists across turns except
// the memory store contents and backend health hints, so concurrent turns
// are independent.
type Router struct {
	lookups *lookup.Registry
	chain   *backend.Chain
	memory  *memory.Store
	topK    int
}

// NewInput contains the router's collaborators.
type NewInput struct {
	Lookups *lookup.Registry
	Chain   *backend.Chain
	Memory  *memory.Store
	TopK    int
}

func New(input NewInput) *Router {
	topK := input.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Router{
		lookups: input.Lookups,
		chain:   input.Chain,
		memory:  input.Memory,
		topK:    topK,
	}
}

// HandleUtterance processes one turn end to end and returns the response
// text. It is synchronous, single-valued and never panics outward; lookups
// are not remembered, only conversational turns are.
func (r *Router) HandleUtterance(ctx context.Context, text string, source model.Source) string {
	logger := logging.From(ctx)

	utterance := model.NewUtterance(text, source)
	cmd := parser.Parse(utterance)

	if cmd.Kind == model.KindConversation && strings.TrimSpace(cmd.Text) == "" {
		return emptyInputMessage
	}

	logger.Debug("dispatching", "kind", cmd.Kind, "source", source)

	if cmd.IsLookup() {
		return r.handleLookup(ctx, cmd)
	}
	return r.handleConversation(ctx, cmd.Text)
}

func (r *Router) handleLookup(ctx context.Context, cmd model.Command) string {
	handler := r.lookups.Lookup(cmd.Kind)
	if handler == nil {
		// No handler registered for a parsed kind; degrade to conversation.
		return r.handleConversation(ctx, cmd.Query)
	}

	result := handler.Resolve(ctx, cmd.Query)
	if !result.Succeeded {
		logging.From(ctx).Warn("lookup failed",
			"kind", result.Kind, "query", result.Query, "error_kind", result.ErrKind)
		return fmt.Sprintf("Sorry, the %s lookup for %q failed: %s.", result.Kind, result.Query, result.Text)
	}
	return result.Text
}

func (r *Router) handleConversation(ctx context.Context, text string) string {
	logger := logging.From(ctx)

	// Best-effort persistence: a broken memory store degrades the turn, it
	// never aborts it.
	if _, err := r.memory.Remember(ctx, model.RoleUser, text); err != nil {
		logger.Warn("failed to remember user turn", "error", err)
	}

	memories, err := r.memory.Recall(ctx, text, r.topK)
	if err != nil {
		if !errors.Is(err, model.ErrMemoryUnavailable) {
			logger.Error("unexpected recall failure", "error", err)
		}
		logger.Warn("continuing without memory context", "error", err)
		memories = nil
	}

	reply, err := r.chain.Reply(ctx, text, memories)
	if err != nil {
		logger.Warn("all backends failed, returning degraded response", "error", err)
		return backend.DegradedMessage
	}

	if _, err := r.memory.Remember(ctx, model.RoleAssistant, reply); err != nil {
		logger.Warn("failed to remember assistant turn", "error", err)
	}

	return reply
}
