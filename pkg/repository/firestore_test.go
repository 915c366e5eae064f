package repository_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/jarvis-assistant/jarvis/pkg/model"
	"github.com/jarvis-assistant/jarvis/pkg/repository"
)

func setupFirestore(t *testing.T) *repository.Firestore {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	// Each test run writes into its own collection so parallel runs never
	// see each other's records.
	collection := fmt.Sprintf("jarvis_memories_test_%d", rand.Int63())
	repo, err := repository.NewFirestore(context.Background(), projectID, databaseID,
		repository.WithCollection(collection))
	gt.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		if err := repo.Clear(ctx); err != nil {
			t.Logf("failed to clear test collection: %v", err)
		}
		repo.Close()
	})

	return repo
}

func firestoreRecord(text string, embedding []float32, at time.Time) *model.MemoryRecord {
	return &model.MemoryRecord{
		ID:        model.NewRecordID(),
		Role:      model.RoleUser,
		Text:      text,
		Embedding: embedding,
		CreatedAt: at,
	}
}

func TestFirestorePut(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	rec := firestoreRecord("hello from the test suite", testEmbedding(0), time.Now().UTC())
	gt.NoError(t, repo.Put(ctx, rec))

	exists, err := repo.Exists(ctx, rec.ID)
	gt.NoError(t, err)
	gt.True(t, exists)
}

func TestFirestoreExistsMissing(t *testing.T) {
	repo := setupFirestore(t)

	exists, err := repo.Exists(context.Background(), model.NewRecordID())
	gt.NoError(t, err)
	gt.False(t, exists)
}

func TestFirestoreSearch(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	records := []*model.MemoryRecord{
		firestoreRecord("about cats", testEmbedding(0), now.Add(-2*time.Minute)),
		firestoreRecord("about dogs", testEmbedding(1), now.Add(-time.Minute)),
		firestoreRecord("about birds", testEmbedding(2), now),
	}
	for _, rec := range records {
		gt.NoError(t, repo.Put(ctx, rec))
	}

	got, err := repo.Search(ctx, testEmbedding(0), 2)
	gt.NoError(t, err)
	gt.A(t, got).Length(2)
	gt.Equal(t, got[0].Text, "about cats")
}

func TestFirestoreList(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := firestoreRecord("first", testEmbedding(0), now.Add(-time.Minute))
	second := firestoreRecord("second", testEmbedding(1), now)
	gt.NoError(t, repo.Put(ctx, second))
	gt.NoError(t, repo.Put(ctx, first))

	got, err := repo.List(ctx)
	gt.NoError(t, err)
	gt.A(t, got).Length(2)
	gt.Equal(t, got[0].Text, "first")
	gt.Equal(t, got[1].Text, "second")
}

func TestFirestoreClear(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	rec := firestoreRecord("to be cleared", testEmbedding(0), time.Now().UTC())
	gt.NoError(t, repo.Put(ctx, rec))

	gt.NoError(t, repo.Clear(ctx))

	got, err := repo.List(ctx)
	gt.NoError(t, err)
	gt.A(t, got).Length(0)
}

// testEmbedding builds a unit vector pointing along one axis, padded to the
// store's configured dimensionality.
func testEmbedding(axis int) []float32 {
	emb := make([]float32, 8)
	emb[axis%len(emb)] = 1
	return emb
}
