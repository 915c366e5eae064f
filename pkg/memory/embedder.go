package memory

import (
	"context"

	"github.com/jarvis-assistant/jarvis/pkg/adapter"
)

// geminiEmbedder adapts the Gemini embedding model to the Embedder interface.
type geminiEmbedder struct {
	gemini     adapter.Gemini
	dimensions int
}

// NewGeminiEmbedder wraps a Gemini adapter as an Embedder producing vectors
// of the given dimensionality.
func NewGeminiEmbedder(gemini adapter.Gemini, dimensions int) Embedder {
	return &geminiEmbedder{gemini: gemini, dimensions: dimensions}
}

func (e *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.gemini.Embedding(ctx, text, e.dimensions)
}
