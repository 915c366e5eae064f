package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

const defaultCollection = "jarvis_memories"

// Firestore persists memory records in a Firestore collection and answers
// similarity queries with native vector search. The collection needs a
// vector index on the embedding field.
type Firestore struct {
	client     *firestore.Client
	collection string
}

type FirestoreOption func(*Firestore)

func WithCollection(name string) FirestoreOption {
	return func(f *Firestore) {
		f.collection = name
	}
}

// NewFirestore creates a Firestore-backed repository.
func NewFirestore(ctx context.Context, projectID, databaseID string, opts ...FirestoreOption) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	f := &Firestore{
		client:     client,
		collection: defaultCollection,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Close releases the underlying client.
func (f *Firestore) Close() error {
	return f.client.Close()
}

// memoryDoc is the Firestore document form of a MemoryRecord. The embedding
// is stored as Vector32 so FindNearest can index it.
type memoryDoc struct {
	ID        string             `firestore:"id"`
	Role      string             `firestore:"role"`
	Text      string             `firestore:"text"`
	Embedding firestore.Vector32 `firestore:"embedding"`
	CreatedAt time.Time          `firestore:"created_at"`
	Tags      []string           `firestore:"tags,omitempty"`
}

func toDoc(rec *model.MemoryRecord) *memoryDoc {
	return &memoryDoc{
		ID:        string(rec.ID),
		Role:      string(rec.Role),
		Text:      rec.Text,
		Embedding: firestore.Vector32(rec.Embedding),
		CreatedAt: rec.CreatedAt,
		Tags:      rec.Tags,
	}
}

func (d *memoryDoc) toModel() *model.MemoryRecord {
	return &model.MemoryRecord{
		ID:        model.RecordID(d.ID),
		Role:      model.Role(d.Role),
		Text:      d.Text,
		Embedding: []float32(d.Embedding),
		CreatedAt: d.CreatedAt,
		Tags:      d.Tags,
	}
}

func (f *Firestore) Put(ctx context.Context, rec *model.MemoryRecord) error {
	_, err := f.client.Collection(f.collection).Doc(string(rec.ID)).Set(ctx, toDoc(rec))
	if err != nil {
		return goerr.Wrap(err, "failed to put memory record", goerr.V("id", rec.ID))
	}
	return nil
}

func (f *Firestore) Search(ctx context.Context, embedding []float32, limit int) ([]*model.MemoryRecord, error) {
	query := f.client.Collection(f.collection).FindNearest(
		"embedding",
		firestore.Vector32(embedding),
		limit,
		firestore.DistanceMeasureCosine,
		nil,
	)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var records []*model.MemoryRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search memory records")
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory record", goerr.V("doc", doc.Ref.ID))
		}
		records = append(records, d.toModel())
	}

	return records, nil
}

func (f *Firestore) List(ctx context.Context) ([]*model.MemoryRecord, error) {
	iter := f.client.Collection(f.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var records []*model.MemoryRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list memory records")
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory record", goerr.V("doc", doc.Ref.ID))
		}
		records = append(records, d.toModel())
	}

	return records, nil
}

func (f *Firestore) Exists(ctx context.Context, id model.RecordID) (bool, error) {
	_, err := f.client.Collection(f.collection).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to check memory record", goerr.V("id", id))
	}
	return true, nil
}

func (f *Firestore) Clear(ctx context.Context) error {
	iter := f.client.Collection(f.collection).Documents(ctx)
	defer iter.Stop()

	writer := f.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate memory records")
		}
		if _, err := writer.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to queue delete", goerr.V("doc", doc.Ref.ID))
		}
	}
	writer.End()

	return nil
}
