// Package script runs a prepared list of utterances through the router as a
// batch, for smoke-testing a deployment or replaying a canned conversation.
package script

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/jarvis-assistant/jarvis/pkg/model"
	"github.com/jarvis-assistant/jarvis/pkg/usecase/router"
)

// Script is a named sequence of utterances loaded from a YAML file.
type Script struct {
	Name       string   `yaml:"name"`
	Utterances []string `yaml:"utterances"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read script file", goerr.V("path", path))
	}

	var s Script
	if err := yaml.Unmarshal(content, &s); err != nil {
		return nil, goerr.Wrap(err, "failed to parse script file", goerr.V("path", path))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the script has at least one non-empty utterance.
func (s *Script) Validate() error {
	if len(s.Utterances) == 0 {
		return goerr.New("script has no utterances", goerr.V("name", s.Name))
	}
	for i, u := range s.Utterances {
		if u == "" {
			return goerr.New("script has an empty utterance", goerr.V("name", s.Name), goerr.V("index", i))
		}
	}
	return nil
}

// Turn is one utterance paired with the response it produced.
type Turn struct {
	Utterance string
	Response  string
}

// Run feeds every utterance through the router in order, with the scripted
// source, and collects the responses. The router never errors per-turn, so
// a script always runs to completion.
func Run(ctx context.Context, r *router.Router, s *Script) []Turn {
	turns := make([]Turn, 0, len(s.Utterances))
	for _, u := range s.Utterances {
		resp := r.HandleUtterance(ctx, u, model.SourceScripted)
		turns = append(turns, Turn{Utterance: u, Response: resp})
	}
	return turns
}
