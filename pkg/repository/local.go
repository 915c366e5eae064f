package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jarvis-assistant/jarvis/pkg/model"
)

// Local is a file-backed vector store: all records live in memory and every
// committed write rewrites a JSON snapshot via temp file + rename, so a
// partially written record is never visible to Search or survives a crash.
// An empty path keeps the store purely in-process, which tests rely on.
type Local struct {
	path string

	mu      sync.RWMutex
	records map[model.RecordID]*model.MemoryRecord
}

type snapshot struct {
	Records []*model.MemoryRecord `json:"records"`
}

// NewLocal opens (or creates) a local store at path.
func NewLocal(path string) (*Local, error) {
	l := &Local{
		path:    path,
		records: make(map[model.RecordID]*model.MemoryRecord),
	}

	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read memory snapshot", goerr.V("path", path))
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, goerr.Wrap(err, "failed to parse memory snapshot", goerr.V("path", path))
	}
	for _, rec := range snap.Records {
		l.records[rec.ID] = rec
	}

	return l, nil
}

func (l *Local) Put(ctx context.Context, rec *model.MemoryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := *rec
	l.records[rec.ID] = &copied

	if err := l.persistLocked(); err != nil {
		delete(l.records, rec.ID)
		return err
	}
	return nil
}

func (l *Local) Search(ctx context.Context, embedding []float32, limit int) ([]*model.MemoryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := make([]*model.MemoryRecord, 0, len(l.records))
	for _, rec := range l.records {
		all = append(all, rec)
	}
	return rankBySimilarity(all, embedding, limit), nil
}

func (l *Local) List(ctx context.Context) ([]*model.MemoryRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := make([]*model.MemoryRecord, 0, len(l.records))
	for _, rec := range l.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all, nil
}

func (l *Local) Exists(ctx context.Context, id model.RecordID) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.records[id]
	return ok, nil
}

func (l *Local) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	old := l.records
	l.records = make(map[model.RecordID]*model.MemoryRecord)
	if err := l.persistLocked(); err != nil {
		l.records = old
		return err
	}
	return nil
}

// persistLocked writes the snapshot atomically. Caller holds the write lock.
func (l *Local) persistLocked() error {
	if l.path == "" {
		return nil
	}

	all := make([]*model.MemoryRecord, 0, len(l.records))
	for _, rec := range l.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	data, err := json.Marshal(snapshot{Records: all})
	if err != nil {
		return goerr.Wrap(err, "failed to marshal memory snapshot")
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create snapshot directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp snapshot")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close snapshot")
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return goerr.Wrap(err, "failed to commit snapshot", goerr.V("path", l.path))
	}
	return nil
}
