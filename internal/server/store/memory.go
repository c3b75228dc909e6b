package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yzt-loan/loanadmin/internal/common"
)

// Memory is an in-memory Store used in tests and development.
// Documents are kept in insertion order per collection.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]*memDoc
}

type memDoc struct {
	id       string
	createAt time.Time
	updateAt *time.Time
	fields   map[string]any
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]*memDoc)}
}

func (m *Memory) Collection(name string) Collection {
	return &memCollection{store: m, name: name}
}

func (m *Memory) Close() error { return nil }

type memCollection struct {
	store *Memory
	name  string
}

func (c *memCollection) docs() []*memDoc {
	return c.store.collections[c.name]
}

func (c *memCollection) Count(ctx context.Context, filter map[string]any) (int64, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var n int64
	for _, d := range c.docs() {
		if d.matches(filter) {
			n++
		}
	}
	return n, nil
}

func (c *memCollection) Find(ctx context.Context, q Query) ([]Record, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	matched := make([]*memDoc, 0)
	for _, d := range c.docs() {
		if d.matches(q.Filter) {
			matched = append(matched, d)
		}
	}

	if q.Limit > 0 {
		skip := 0
		if q.Page > 1 {
			skip = (q.Page - 1) * q.Limit
		}
		if skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[skip:]
		}
		if len(matched) > q.Limit {
			matched = matched[:q.Limit]
		}
	}

	out := make([]Record, 0, len(matched))
	for _, d := range matched {
		out = append(out, d.record().Project(q.Fields))
	}
	return out, nil
}

func (c *memCollection) FindOne(ctx context.Context, filter map[string]any) (Record, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	for _, d := range c.docs() {
		if d.matches(filter) {
			return d.record(), nil
		}
	}
	return nil, common.ErrNotFound
}

func (c *memCollection) FindByID(ctx context.Context, id string) (Record, error) {
	return c.FindOne(ctx, map[string]any{FieldID: id})
}

func (c *memCollection) Insert(ctx context.Context, fields map[string]any) (Record, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	d := &memDoc{
		id:       uuid.NewString(),
		createAt: time.Now(),
		fields:   make(map[string]any, len(fields)),
	}
	for k, v := range fields {
		d.fields[k] = v
	}
	c.store.collections[c.name] = append(c.store.collections[c.name], d)
	return d.record(), nil
}

func (c *memCollection) Update(ctx context.Context, filter, partial map[string]any) (Record, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	for _, d := range c.docs() {
		if !d.matches(filter) {
			continue
		}
		for k, v := range partial {
			d.fields[k] = v
		}
		now := time.Now()
		d.updateAt = &now
		return d.record(), nil
	}
	return nil, common.ErrNotFound
}

func (c *memCollection) SetFields(ctx context.Context, filter, fields map[string]any) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	for _, d := range c.docs() {
		if !d.matches(filter) {
			continue
		}
		for k, v := range fields {
			d.fields[k] = v
		}
		return nil
	}
	return common.ErrNotFound
}

func (c *memCollection) IncrementField(ctx context.Context, filter map[string]any, field string, delta int64) (int64, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	for _, d := range c.docs() {
		if !d.matches(filter) {
			continue
		}
		cur := toInt64(d.fields[field])
		cur += delta
		d.fields[field] = cur
		return cur, nil
	}
	return 0, common.ErrNotFound
}

func (c *memCollection) Delete(ctx context.Context, filter map[string]any) (bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs := c.docs()
	for i, d := range docs {
		if d.matches(filter) {
			c.store.collections[c.name] = append(docs[:i:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (d *memDoc) record() Record {
	r := Record{FieldID: d.id, FieldCreateAt: d.createAt}
	if d.updateAt != nil {
		r[FieldUpdateAt] = *d.updateAt
	}
	for k, v := range d.fields {
		r[k] = v
	}
	return r
}

func (d *memDoc) matches(filter map[string]any) bool {
	for k, want := range filter {
		if k == FieldID {
			if d.id != fmt.Sprint(want) {
				return false
			}
			continue
		}
		got, ok := d.fields[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares filter values against stored ones, treating all
// numeric types as equivalent (jsonb round-trips numbers as float64).
func valuesEqual(a, b any) bool {
	if na, aok := toFloat64(a); aok {
		if nb, bok := toFloat64(b); bok {
			return na == nb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toInt64(v any) int64 {
	if n, ok := toFloat64(v); ok {
		return int64(n)
	}
	return 0
}
