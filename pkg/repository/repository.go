package repository

import (
	"context"
	"math"
	"sort"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

// Repository defines persistence for memory records. Implementations must be
// safe for concurrent use: a record is either fully visible to Search or not
// visible at all.
type Repository interface {
	// Put durably stores a record. Records are immutable; Put with an
	// existing ID overwrites the stored copy byte-for-byte equal anyway.
	Put(ctx context.Context, rec *model.MemoryRecord) error

	// Search returns up to limit records ordered by cosine similarity to the
	// embedding, most similar first, ties broken by newest CreatedAt.
	Search(ctx context.Context, embedding []float32, limit int) ([]*model.MemoryRecord, error)

	// List returns all records ordered by CreatedAt ascending.
	List(ctx context.Context) ([]*model.MemoryRecord, error)

	// Exists reports whether a record with the ID is stored.
	Exists(ctx context.Context, id model.RecordID) (bool, error)

	// Clear atomically removes all records.
	Clear(ctx context.Context) error
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankBySimilarity orders records by similarity to the query embedding and
// truncates to limit. Shared by in-process implementations.
func rankBySimilarity(records []*model.MemoryRecord, embedding []float32, limit int) []*model.MemoryRecord {
	type scored struct {
		rec   *model.MemoryRecord
		score float64
	}

	ranked := make([]scored, 0, len(records))
	for _, rec := range records {
		ranked = append(ranked, scored{rec: rec, score: cosineSimilarity(rec.Embedding, embedding)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].rec.CreatedAt.After(ranked[j].rec.CreatedAt)
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]*model.MemoryRecord, 0, limit)
	for _, s := range ranked[:limit] {
		out = append(out, s.rec)
	}
	return out
}
