package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yzt-loan/loanadmin/internal/common"
)

func TestMemoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("loanPerson")

	rec, err := col.Insert(ctx, map[string]any{"name": "ivan", "tel": "555-0100"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.Contains(t, rec, FieldCreateAt)
	assert.NotContains(t, rec, FieldUpdateAt)

	got, err := col.FindByID(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "ivan", got["name"])

	_, err = col.FindByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryCountAndFilter(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("loanPerson")

	for i := 0; i < 3; i++ {
		_, err := col.Insert(ctx, map[string]any{"name": "ivan", "status": 1})
		require.NoError(t, err)
	}
	_, err := col.Insert(ctx, map[string]any{"name": "petr", "status": 2})
	require.NoError(t, err)

	n, err := col.Count(ctx, map[string]any{"name": "ivan"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// numeric filter values match regardless of the concrete integer type
	n, err = col.Count(ctx, map[string]any{"status": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = col.Count(ctx, map[string]any{"name": "nobody"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMemoryFindPaging(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("items")

	for i := 0; i < 25; i++ {
		_, err := col.Insert(ctx, map[string]any{"seq": i})
		require.NoError(t, err)
	}

	page2, err := col.Find(ctx, Query{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page2, 10)
	assert.Equal(t, 10, page2[0]["seq"])

	page3, err := col.Find(ctx, Query{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page3, 5)

	page4, err := col.Find(ctx, Query{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestMemoryFindProjection(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("user")

	_, err := col.Insert(ctx, map[string]any{"username": "admin", "password": "digest", "tel": "1"})
	require.NoError(t, err)

	recs, err := col.Find(ctx, Query{Fields: []string{"username", "tel"}})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "admin", r["username"])
	assert.Equal(t, "1", r["tel"])
	assert.NotContains(t, r, "password")
	assert.NotEmpty(t, r.ID())
}

func TestMemoryUpdatePartial(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("loanPerson")

	rec, err := col.Insert(ctx, map[string]any{"name": "ivan", "tel": "555-0100"})
	require.NoError(t, err)

	updated, err := col.Update(ctx, map[string]any{FieldID: rec.ID()}, map[string]any{"tel": "555-0199"})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated["tel"])
	assert.Equal(t, "ivan", updated["name"], "fields not named in the partial survive")
	assert.Contains(t, updated, FieldUpdateAt)

	_, err = col.Update(ctx, map[string]any{FieldID: "missing"}, map[string]any{"tel": "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemorySetFieldsSkipsUpdateAt(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("user")

	rec, err := col.Insert(ctx, map[string]any{"username": "admin"})
	require.NoError(t, err)

	err = col.SetFields(ctx, map[string]any{FieldID: rec.ID()}, map[string]any{"login_attempts": int64(0)})
	require.NoError(t, err)

	got, err := col.FindByID(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(0), got["login_attempts"])
	assert.NotContains(t, got, FieldUpdateAt)
}

func TestMemoryIncrementField(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("user")

	rec, err := col.Insert(ctx, map[string]any{"username": "admin"})
	require.NoError(t, err)
	filter := map[string]any{FieldID: rec.ID()}

	// missing field counts as zero
	n, err := col.IncrementField(ctx, filter, "login_attempts", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = col.IncrementField(ctx, filter, "login_attempts", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = col.IncrementField(ctx, map[string]any{FieldID: "missing"}, "login_attempts", 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryIncrementFieldConcurrent(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("user")

	rec, err := col.Insert(ctx, map[string]any{"username": "admin"})
	require.NoError(t, err)
	filter := map[string]any{FieldID: rec.ID()}

	const workers = 20
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := col.IncrementField(ctx, filter, "login_attempts", 1)
			done <- err
		}()
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-done)
	}

	got, err := col.FindByID(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(workers), toInt64(got["login_attempts"]))
}

func TestMemoryDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("loanCompany")

	rec, err := col.Insert(ctx, map[string]any{"name": "acme"})
	require.NoError(t, err)

	deleted, err := col.Delete(ctx, map[string]any{FieldID: rec.ID()})
	require.NoError(t, err)
	assert.True(t, deleted)

	// repeating the delete is not an error
	deleted, err = col.Delete(ctx, map[string]any{FieldID: rec.ID()})
	require.NoError(t, err)
	assert.False(t, deleted)

	n, err := col.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMemoryDeleteRemovesSingleMatch(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("items")

	for i := 0; i < 3; i++ {
		_, err := col.Insert(ctx, map[string]any{"kind": "dup", "seq": fmt.Sprint(i)})
		require.NoError(t, err)
	}

	deleted, err := col.Delete(ctx, map[string]any{"kind": "dup"})
	require.NoError(t, err)
	assert.True(t, deleted)

	n, err := col.Count(ctx, map[string]any{"kind": "dup"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
