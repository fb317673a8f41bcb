// Package remotestore defines the document-store client contract the catalog
// synchronizes against. A store holds named collections of loosely-typed
// records; every record carries at least a unique "id" field.
package remotestore

import (
	"context"

	"github.com/go-faster/errors"
)

// AutoID asks the store to assign a record identifier at creation.
const AutoID = ""

// ErrNotFound is returned when a record does not exist in a collection.
var ErrNotFound = errors.New("record not found")

// Record is a single document as stored remotely.
type Record map[string]any

// ID returns the record's "id" field, or "" if absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// String returns the named field as a string, or "" if absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Bool returns the named field as a bool, defaulting to false.
func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// Client is the remote document-store contract. Implementations must return
// records from List in a stable insertion order.
type Client interface {
	// List returns every record in the named collection.
	List(ctx context.Context, collection string) ([]Record, error)

	// Create persists a new record. Pass AutoID to let the store assign the
	// identifier. The returned record is the store-confirmed document,
	// including the assigned id and any server-set fields.
	Create(ctx context.Context, collection, id string, fields Record) (Record, error)

	// Update replaces the fields of an existing record and returns the
	// store-confirmed document. Returns ErrNotFound for unknown ids.
	Update(ctx context.Context, collection, id string, fields Record) (Record, error)

	// Delete removes a record. Returns ErrNotFound for unknown ids.
	Delete(ctx context.Context, collection, id string) error
}
