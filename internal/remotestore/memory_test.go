package remotestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateAssignsID(t *testing.T) {
	m := NewMemory()

	rec, err := m.Create(context.Background(), "shops", AutoID, Record{"name": "Acme"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, "Acme", rec.String("name"))
}

func TestMemory_CreateKeepsCallerID(t *testing.T) {
	m := NewMemory()

	rec, err := m.Create(context.Background(), "shops", "s1", Record{"name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.ID())
}

func TestMemory_ListPreservesInsertionOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := m.Create(ctx, "shops", AutoID, Record{"name": name})
		require.NoError(t, err)
	}

	recs, err := m.List(ctx, "shops")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "first", recs[0].String("name"))
	assert.Equal(t, "second", recs[1].String("name"))
	assert.Equal(t, "third", recs[2].String("name"))
}

func TestMemory_UpdatePreservesPosition(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Create(ctx, "shops", "s1", Record{"name": "one"})
	require.NoError(t, err)
	_, err = m.Create(ctx, "shops", "s2", Record{"name": "two"})
	require.NoError(t, err)

	_, err = m.Update(ctx, "shops", "s1", Record{"name": "renamed"})
	require.NoError(t, err)

	recs, err := m.List(ctx, "shops")
	require.NoError(t, err)
	assert.Equal(t, "renamed", recs[0].String("name"))
	assert.Equal(t, "two", recs[1].String("name"))
}

func TestMemory_UpdateUnknownID(t *testing.T) {
	m := NewMemory()

	_, err := m.Update(context.Background(), "shops", "missing", Record{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Create(ctx, "shops", "s1", Record{"name": "one"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, "shops", "s1"))
	assert.ErrorIs(t, m.Delete(ctx, "shops", "s1"), ErrNotFound)

	recs, err := m.List(ctx, "shops")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMemory_ListIsolatesCaller(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Create(ctx, "shops", "s1", Record{"name": "one"})
	require.NoError(t, err)

	recs, err := m.List(ctx, "shops")
	require.NoError(t, err)
	recs[0]["name"] = "mutated"

	again, err := m.List(ctx, "shops")
	require.NoError(t, err)
	assert.Equal(t, "one", again[0].String("name"))
}
