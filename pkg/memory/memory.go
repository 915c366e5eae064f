// Package memory implements the long-term conversational memory store:
// embedding-backed remember/recall plus bulk export and import for moving
// memory between deployments. Records are append-only; the only shrink paths
// are explicit clear and import with replace semantics.
package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jarvis-assistant/jarvis/pkg/model"
	"github.com/jarvis-assistant/jarvis/pkg/repository"
	"github.com/jarvis-assistant/jarvis/pkg/utils/logging"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store wires an embedder to a repository. Embedding dimensionality is fixed
// per store instance; records that do not match are rejected at insert time.
type Store struct {
	repo       repository.Repository
	embedder   Embedder
	dimensions int
}

// New creates a memory store. dimensions <= 0 disables the dimensionality
// check (the repository still only matches equal-length vectors).
func New(repo repository.Repository, embedder Embedder, dimensions int) *Store {
	return &Store{
		repo:       repo,
		embedder:   embedder,
		dimensions: dimensions,
	}
}

// Remember embeds text and persists it as a new record. It succeeds or fails
// atomically: a record is visible to Recall only after the repository commit.
func (s *Store) Remember(ctx context.Context, role model.Role, text string) (*model.MemoryRecord, error) {
	if err := role.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid role", goerr.V("role", role))
	}
	if text == "" {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "text is empty")
	}

	vec, err := s.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	rec := &model.MemoryRecord{
		ID:        model.NewRecordID(),
		Role:      role,
		Text:      text,
		Embedding: vec,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Put(ctx, rec); err != nil {
		return nil, goerr.Wrap(model.ErrMemoryUnavailable, "failed to persist record", goerr.V("cause", err.Error()))
	}

	logging.From(ctx).Debug("remembered", "id", rec.ID, "role", rec.Role)
	return rec, nil
}

// Recall embeds the query and returns the k most similar records, most
// similar first, ties broken by newest timestamp. An empty store yields an
// empty slice, never an error.
func (s *Store) Recall(ctx context.Context, query string, k int) ([]*model.MemoryRecord, error) {
	if k <= 0 {
		return nil, nil
	}

	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Search(ctx, vec, k)
	if err != nil {
		return nil, goerr.Wrap(model.ErrMemoryUnavailable, "failed to search records", goerr.V("cause", err.Error()))
	}
	return records, nil
}

// Export returns every record ordered by creation time.
func (s *Store) Export(ctx context.Context) ([]*model.MemoryRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(model.ErrMemoryUnavailable, "failed to list records", goerr.V("cause", err.Error()))
	}
	return records, nil
}

// Import adds records to the store, deduplicating by ID only. With replace
// the store is cleared first, so the result matches the input exactly.
// Returns the number of records actually written.
func (s *Store) Import(ctx context.Context, records []*model.MemoryRecord, replace bool) (int, error) {
	for _, rec := range records {
		if rec.ID == "" {
			return 0, goerr.Wrap(model.ErrInvalidArgument, "record has no id")
		}
		if s.dimensions > 0 && len(rec.Embedding) != s.dimensions {
			return 0, goerr.Wrap(model.ErrInvalidArgument, "embedding dimensionality mismatch",
				goerr.V("id", rec.ID), goerr.V("want", s.dimensions), goerr.V("got", len(rec.Embedding)))
		}
	}

	if replace {
		if err := s.repo.Clear(ctx); err != nil {
			return 0, goerr.Wrap(model.ErrMemoryUnavailable, "failed to clear store", goerr.V("cause", err.Error()))
		}
	}

	imported := 0
	for _, rec := range records {
		exists, err := s.repo.Exists(ctx, rec.ID)
		if err != nil {
			return imported, goerr.Wrap(model.ErrMemoryUnavailable, "failed to check record", goerr.V("cause", err.Error()))
		}
		if exists {
			continue
		}
		if err := s.repo.Put(ctx, rec); err != nil {
			return imported, goerr.Wrap(model.ErrMemoryUnavailable, "failed to import record",
				goerr.V("id", rec.ID), goerr.V("cause", err.Error()))
		}
		imported++
	}

	return imported, nil
}

// Clear removes every record. This is the explicit forget operation; there
// is no per-record mutation or deletion.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return goerr.Wrap(model.ErrMemoryUnavailable, "failed to clear store", goerr.V("cause", err.Error()))
	}
	return nil
}

func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedder == nil {
		return nil, goerr.Wrap(model.ErrMemoryUnavailable, "no embedder configured")
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, goerr.Wrap(model.ErrMemoryUnavailable, "embedding failed", goerr.V("cause", err.Error()))
	}
	if s.dimensions > 0 && len(vec) != s.dimensions {
		return nil, goerr.Wrap(model.ErrInvalidArgument, "embedding dimensionality mismatch",
			goerr.V("want", s.dimensions), goerr.V("got", len(vec)))
	}
	return vec, nil
}
