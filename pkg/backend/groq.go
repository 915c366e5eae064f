package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"

	"github.com/jarvis-assistant/jarvis/pkg/adapter"
	"github.com/jarvis-assistant/jarvis/pkg/model"
)

// GroqBackend is the low-latency primary backend. A nil client means no
// credential was configured; every call then reports AuthMissing so the
// chain falls straight through to the secondary.
type GroqBackend struct {
	client adapter.Groq
}

// NewGroq wraps a Groq adapter as a Backend. client may be nil.
func NewGroq(client adapter.Groq) *GroqBackend {
	return &GroqBackend{client: client}
}

func (b *GroqBackend) Name() string {
	return "groq"
}

func (b *GroqBackend) Reply(ctx context.Context, prompt string, memories []*model.MemoryRecord) (string, error) {
	if b.client == nil {
		return "", goerr.Wrap(model.ErrAuthMissing, "GROQ_API_KEY is not set")
	}

	reply, err := b.client.ChatCompletion(ctx, systemPrompt, buildPrompt(prompt, memories))
	if err != nil {
		return "", classifyGroqError(err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", goerr.Wrap(model.ErrMalformed, "empty completion")
	}

	return reply, nil
}

func classifyGroqError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return goerr.Wrap(model.ErrAuthMissing, "Groq rejected the credential", goerr.V("status", apiErr.StatusCode))
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return goerr.Wrap(model.ErrRateLimited, "Groq rate limit exceeded")
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return goerr.Wrap(model.ErrUnreachable, "Groq server error", goerr.V("status", apiErr.StatusCode))
		default:
			return goerr.Wrap(model.ErrMalformed, "Groq request rejected", goerr.V("status", apiErr.StatusCode))
		}
	}

	// Transport-level failure or timeout.
	return goerr.Wrap(model.ErrUnreachable, "Groq call failed", goerr.V("cause", err.Error()))
}
