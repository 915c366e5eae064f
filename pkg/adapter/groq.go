package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Groq is the interface for the Groq chat completion client.
type Groq interface {
	ChatCompletion(ctx context.Context, system, prompt string) (string, error)
}

// GroqClient talks to Groq through its OpenAI-compatible endpoint.
type GroqClient struct {
	client    openai.Client
	model     string
	maxTokens int64
}

type GroqOption func(*GroqClient)

func WithGroqModel(model string) GroqOption {
	return func(g *GroqClient) {
		g.model = model
	}
}

func WithGroqMaxTokens(n int64) GroqOption {
	return func(g *GroqClient) {
		g.maxTokens = n
	}
}

// NewGroq creates a new Groq API client.
func NewGroq(apiKey string, opts ...GroqOption) *GroqClient {
	g := &GroqClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(groqBaseURL),
		),
		model:     "llama-3.3-70b-versatile",
		maxTokens: 1024,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *GroqClient) ChatCompletion(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(g.maxTokens),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", goerr.New("chat completion has no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
