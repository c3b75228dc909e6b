// Package resource implements the generic data-access layer shared by every
// business resource. A Proxy wraps one record-store collection and exposes
// the uniform count/find/create/update/delete contract controllers depend
// on, with optional reference expansion into other collections.
package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/yzt-loan/loanadmin/internal/common"
	"github.com/yzt-loan/loanadmin/internal/server/store"
)

// Proxy is the uniform access layer for one collection.
//
// The error contract: backend failures surface as errors wrapping
// common.ErrStore; "no match" is common.ErrNotFound from FindOne/Update and
// a plain false from Delete — never a store failure.
type Proxy struct {
	store store.Store
	col   store.Collection
	refs  map[string]string
}

// New builds a Proxy for the named collection. refs maps reference field
// names to the collection a reference points into (e.g. "create_user" →
// "user"); only fields listed here can be expanded.
func New(s store.Store, name string, refs map[string]string) *Proxy {
	return &Proxy{store: s, col: s.Collection(name), refs: refs}
}

// Count returns the number of records matching filter (empty filter = all).
func (p *Proxy) Count(ctx context.Context, filter map[string]any) (int64, error) {
	return p.col.Count(ctx, filter)
}

// Find returns the requested page of matching records.
func (p *Proxy) Find(ctx context.Context, q store.Query) ([]store.Record, error) {
	return p.col.Find(ctx, q)
}

// FindAndExpand is Find with the named reference field expanded: the stored
// identifier is replaced by the referenced record, or nil when the reference
// is dangling. Expansion itself never fails on a missing target.
func (p *Proxy) FindAndExpand(ctx context.Context, q store.Query, refField string) ([]store.Record, error) {
	recs, err := p.col.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if err := p.expand(ctx, rec, refField); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// FindOne returns the first matching record or common.ErrNotFound.
func (p *Proxy) FindOne(ctx context.Context, filter map[string]any) (store.Record, error) {
	return p.col.FindOne(ctx, filter)
}

// FindOneAndExpand is FindOne with reference expansion.
func (p *Proxy) FindOneAndExpand(ctx context.Context, filter map[string]any, refField string) (store.Record, error) {
	rec, err := p.col.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := p.expand(ctx, rec, refField); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts a new record, assigning its identifier and creation
// timestamp.
func (p *Proxy) Create(ctx context.Context, fields map[string]any) (store.Record, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty document", common.ErrValidation)
	}
	return p.col.Insert(ctx, fields)
}

// Update applies a strict partial update to the first record matching
// filter: only the keys present in partial change, everything else is left
// exactly as stored. Returns common.ErrNotFound when nothing matches.
func (p *Proxy) Update(ctx context.Context, filter, partial map[string]any) (store.Record, error) {
	return p.col.Update(ctx, filter, partial)
}

// Delete removes the first record matching filter. Returns false, not an
// error, when nothing matched; repeated deletes are idempotent.
func (p *Proxy) Delete(ctx context.Context, filter map[string]any) (bool, error) {
	return p.col.Delete(ctx, filter)
}

func (p *Proxy) expand(ctx context.Context, rec store.Record, refField string) error {
	target, ok := p.refs[refField]
	if !ok {
		return fmt.Errorf("no reference target configured for field %q", refField)
	}

	id, _ := rec[refField].(string)
	if id == "" {
		rec[refField] = nil
		return nil
	}

	ref, err := p.store.Collection(target).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// dangling reference expands to null, never an error
			rec[refField] = nil
			return nil
		}
		return err
	}
	rec[refField] = ref
	return nil
}
