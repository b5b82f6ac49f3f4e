package snapshot

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sample(label string) *Snapshot {
	return &Snapshot{
		Label:       label,
		InputHash:   "hash-" + label,
		SiteConfig:  json.RawMessage(`{"title":"Volga"}`),
		Routes:      []Route{{Path: "/", Title: "Volga"}, {Path: "/404.html"}},
		SearchIndex: json.RawMessage(`[{"title":"Volga"}]`),
	}
}

func TestSQLiteStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	in := sample("v1")
	id, err := s.Put(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, in.ID)
	assert.False(t, in.CreatedAt.IsZero())

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Label)
	assert.Equal(t, in.Routes, got.Routes)
	assert.JSONEq(t, `{"title":"Volga"}`, string(got.SiteConfig))
	assert.JSONEq(t, `[{"title":"Volga"}]`, string(got.SearchIndex))
	assert.WithinDuration(t, in.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Latest(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_VersionsAreKeptSideBySide(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, label := range []string{"v1", "v2", "v3"} {
		_, err := s.Put(ctx, sample(label))
		require.NoError(t, err)
	}

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v3", latest.Label)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"v3", "v2", "v1"}, []string{all[0].Label, all[1].Label, all[2].Label})
	assert.Equal(t, 2, all[0].Routes)

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestSQLiteStore_Prune(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, label := range []string{"a", "b", "c", "d"} {
		_, err := s.Put(ctx, sample(label))
		require.NoError(t, err)
	}

	n, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "d", left[0].Label)

	n, err = s.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_Persistent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "snaps.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	id, err := s.Put(ctx, sample("disk"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "disk", got.Label)
}

func TestSQLiteStore_DefaultsForEmptyPayloads(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	id, err := s.Put(ctx, &Snapshot{InputHash: "x"})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got.SiteConfig))
	assert.Equal(t, "[]", string(got.SearchIndex))
	assert.Empty(t, got.Routes)
}
