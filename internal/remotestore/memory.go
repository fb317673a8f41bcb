package remotestore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Client used in tests and for running the service
// without a database. Safe for concurrent use. Records are deep-copied on
// the way in and out so callers never share state with the store.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]Record // insertion-ordered
}

var _ Client = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Record)}
}

func copyRecord(src Record) Record {
	dst := make(Record, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// List returns all records in insertion order.
func (m *Memory) List(_ context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.collections[collection]
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = copyRecord(r)
	}
	return out, nil
}

// Create appends a record, assigning a UUID when id is AutoID.
func (m *Memory) Create(_ context.Context, collection, id string, fields Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == AutoID {
		id = uuid.New().String()
	}
	rec := copyRecord(fields)
	rec["id"] = id
	m.collections[collection] = append(m.collections[collection], rec)
	return copyRecord(rec), nil
}

// Update replaces the fields of the record with the given id in place,
// preserving its position in the collection.
func (m *Memory) Update(_ context.Context, collection, id string, fields Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.collections[collection]
	for i, r := range recs {
		if r.ID() == id {
			rec := copyRecord(fields)
			rec["id"] = id
			recs[i] = rec
			return copyRecord(rec), nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the record with the given id.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.collections[collection]
	for i, r := range recs {
		if r.ID() == id {
			m.collections[collection] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
