package script_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/jarvis-assistant/jarvis/pkg/backend"
	"github.com/jarvis-assistant/jarvis/pkg/lookup"
	"github.com/jarvis-assistant/jarvis/pkg/memory"
	"github.com/jarvis-assistant/jarvis/pkg/model"
	"github.com/jarvis-assistant/jarvis/pkg/repository"
	"github.com/jarvis-assistant/jarvis/pkg/script"
	"github.com/jarvis-assistant/jarvis/pkg/usecase/router"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeScript(t, `name: morning check
utterances:
  - weather in London
  - any news?
`)

	s, err := script.Load(path)
	gt.NoError(t, err)
	gt.Equal(t, s.Name, "morning check")
	gt.A(t, s.Utterances).Length(2)
	gt.Equal(t, s.Utterances[0], "weather in London")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := script.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	gt.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeScript(t, "utterances: [unclosed")

	_, err := script.Load(path)
	gt.Error(t, err)
}

func TestLoadEmptyScript(t *testing.T) {
	path := writeScript(t, "name: empty\nutterances: []\n")

	_, err := script.Load(path)
	gt.Error(t, err)
}

func TestLoadBlankUtterance(t *testing.T) {
	path := writeScript(t, "utterances:\n  - hello\n  - \"\"\n")

	_, err := script.Load(path)
	gt.Error(t, err)
}

type scriptedBackend struct{}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Reply(ctx context.Context, prompt string, memories []*model.MemoryRecord) (string, error) {
	return "ack: " + prompt, nil
}

type zeroEmbedder struct{}

func (zeroEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func TestRun(t *testing.T) {
	repo, err := repository.NewLocal("")
	gt.NoError(t, err)
	store := memory.New(repo, zeroEmbedder{}, 2)

	r := router.New(router.NewInput{
		Lookups: lookup.NewRegistry(),
		Chain:   backend.NewChain([]backend.Backend{&scriptedBackend{}}, backend.WithRetryBackoff(0)),
		Memory:  store,
	})

	s := &script.Script{
		Name:       "smoke",
		Utterances: []string{"hello", "how are you"},
	}
	turns := script.Run(context.Background(), r, s)

	gt.A(t, turns).Length(2)
	gt.Equal(t, turns[0].Utterance, "hello")
	gt.Equal(t, turns[0].Response, "ack: hello")
	gt.Equal(t, turns[1].Response, "ack: how are you")
}
