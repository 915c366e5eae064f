package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/jarvis-assistant/jarvis/pkg/adapter"
	"github.com/jarvis-assistant/jarvis/pkg/model"
)

// GeminiBackend is the higher-capability secondary backend.
type GeminiBackend struct {
	client adapter.Gemini
}

// NewGemini wraps a Gemini adapter as a Backend. client may be nil when no
// credential is configured.
func NewGemini(client adapter.Gemini) *GeminiBackend {
	return &GeminiBackend{client: client}
}

func (b *GeminiBackend) Name() string {
	return "gemini"
}

func (b *GeminiBackend) Reply(ctx context.Context, prompt string, memories []*model.MemoryRecord) (string, error) {
	if b.client == nil {
		return "", goerr.Wrap(model.ErrAuthMissing, "GEMINI_API_KEY is not set")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(prompt, memories), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
	}

	resp, err := b.client.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	reply := extractText(resp)
	if strings.TrimSpace(reply) == "" {
		return "", goerr.Wrap(model.ErrMalformed, "response has no text")
	}

	return reply, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return goerr.Wrap(model.ErrAuthMissing, "Gemini rejected the credential", goerr.V("status", apiErr.Code))
		case apiErr.Code == http.StatusTooManyRequests:
			return goerr.Wrap(model.ErrRateLimited, "Gemini rate limit exceeded")
		case apiErr.Code >= http.StatusInternalServerError:
			return goerr.Wrap(model.ErrUnreachable, "Gemini server error", goerr.V("status", apiErr.Code))
		default:
			return goerr.Wrap(model.ErrMalformed, "Gemini request rejected", goerr.V("status", apiErr.Code), goerr.V("message", apiErr.Message))
		}
	}

	return goerr.Wrap(model.ErrUnreachable, "Gemini call failed", goerr.V("cause", err.Error()))
}
