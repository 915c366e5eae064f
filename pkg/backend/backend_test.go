package backend_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/jarvis-assistant/jarvis/pkg/backend"
	"github.com/jarvis-assistant/jarvis/pkg/model"
)

// fakeGroq implements adapter.Groq and records what it was asked.
type fakeGroq struct {
	reply  string
	err    error
	system string
	prompt string
}

func (f *fakeGroq) ChatCompletion(ctx context.Context, system, prompt string) (string, error) {
	f.system = system
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeGemini implements adapter.Gemini.
type fakeGemini struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeGemini) Embedding(ctx context.Context, text string, dimensions int) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func TestGroqNilClientIsAuthMissing(t *testing.T) {
	b := backend.NewGroq(nil)

	_, err := b.Reply(context.Background(), "hello", nil)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrAuthMissing))
}

func TestGroqReplyIncludesMemories(t *testing.T) {
	fake := &fakeGroq{reply: "Hello, Sam."}
	b := backend.NewGroq(fake)

	memories := []*model.MemoryRecord{
		{
			ID:        model.NewRecordID(),
			Role:      model.RoleUser,
			Text:      "My name is Sam",
			CreatedAt: time.Now().UTC(),
		},
	}
	reply, err := b.Reply(context.Background(), "What's my name?", memories)
	gt.NoError(t, err)
	gt.Equal(t, reply, "Hello, Sam.")

	gt.S(t, fake.system).Contains("Jarvis")
	gt.S(t, fake.prompt).Contains("My name is Sam")
	gt.S(t, fake.prompt).Contains("What's my name?")
}

func TestGroqBlankReplyIsMalformed(t *testing.T) {
	b := backend.NewGroq(&fakeGroq{reply: "   "})

	_, err := b.Reply(context.Background(), "hello", nil)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrMalformed))
}

func TestGroqTransportFailureIsUnreachable(t *testing.T) {
	b := backend.NewGroq(&fakeGroq{err: errors.New("dial tcp: connection refused")})

	_, err := b.Reply(context.Background(), "hello", nil)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrUnreachable))
}

func TestGeminiNilClientIsAuthMissing(t *testing.T) {
	b := backend.NewGemini(nil)

	_, err := b.Reply(context.Background(), "hello", nil)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrAuthMissing))
}

func TestGeminiReply(t *testing.T) {
	fake := &fakeGemini{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "The capital of "},
				{Text: "France is Paris."},
			}},
		}},
	}}
	b := backend.NewGemini(fake)

	reply, err := b.Reply(context.Background(), "capital of France?", nil)
	gt.NoError(t, err)
	gt.Equal(t, reply, "The capital of France is Paris.")
}

func TestGeminiEmptyResponseIsMalformed(t *testing.T) {
	b := backend.NewGemini(&fakeGemini{resp: &genai.GenerateContentResponse{}})

	_, err := b.Reply(context.Background(), "hello", nil)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrMalformed))
}

func TestGeminiRateLimit(t *testing.T) {
	b := backend.NewGemini(&fakeGemini{err: genai.APIError{Code: 429, Message: "quota"}})

	_, err := b.Reply(context.Background(), "hello", nil)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrRateLimited))
}
