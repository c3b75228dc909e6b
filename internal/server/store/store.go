// Package store implements the record store: a document-oriented persistence
// backend addressed by collection name. Two backends are provided, a
// Postgres-backed one (documents as jsonb) and an in-memory one for tests
// and development.
package store

import "context"

// Record is one persisted document: an opaque mapping of field name to value.
// Every record carries an "_id", a "create_at" timestamp and, after the first
// update, an "update_at" timestamp.
type Record map[string]any

// Reserved field names managed by the store itself.
const (
	FieldID       = "_id"
	FieldCreateAt = "create_at"
	FieldUpdateAt = "update_at"
)

// ID returns the record identifier, or "" if the record has none.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// Project returns a copy of the record reduced to the given business fields.
// An empty field list means all fields. The identifier and timestamps are
// always preserved.
func (r Record) Project(fields []string) Record {
	if len(fields) == 0 {
		return r
	}
	out := Record{}
	for _, f := range []string{FieldID, FieldCreateAt, FieldUpdateAt} {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Query describes a filtered, projected, paged find.
//
// Filter maps field names to expected values (empty means all records).
// Fields is the projection (empty means all fields). Page is 1-based;
// Limit <= 0 means no paging. Callers are expected to run user input
// through paginate.Coerce first.
type Query struct {
	Filter map[string]any
	Fields []string
	Page   int
	Limit  int
}

// Collection is one named set of records.
//
// All operations take a context and may fail with an error wrapping
// common.ErrStore when the backend is unreachable or rejects the operation.
// "No match" is never an error for Count, Find and Delete; FindOne, FindByID
// and Update report it as common.ErrNotFound.
type Collection interface {
	Count(ctx context.Context, filter map[string]any) (int64, error)
	Find(ctx context.Context, q Query) ([]Record, error)
	FindOne(ctx context.Context, filter map[string]any) (Record, error)
	FindByID(ctx context.Context, id string) (Record, error)
	Insert(ctx context.Context, fields map[string]any) (Record, error)

	// Update applies a strict partial update to the first matching record:
	// only the keys present in partial change, and update_at is set.
	Update(ctx context.Context, filter, partial map[string]any) (Record, error)

	// SetFields merges fields into the first matching record without
	// touching update_at. Used for internal bookkeeping (lockout state).
	SetFields(ctx context.Context, filter, fields map[string]any) error

	// IncrementField atomically adds delta to a numeric field of the first
	// matching record and returns the new value. The mutation is a single
	// store-side operation, so concurrent increments are never lost.
	IncrementField(ctx context.Context, filter map[string]any, field string, delta int64) (int64, error)

	Delete(ctx context.Context, filter map[string]any) (bool, error)
}

// Store hands out collections by name.
type Store interface {
	Collection(name string) Collection
	Close() error
}
