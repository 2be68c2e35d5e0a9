package refdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenStore("") // in-memory
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ImportAndSnapshot(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.ImportDir(filepath.Join("testdata", "db")))

	clinical, pharmaco, trait, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(3), clinical, "missing-rsid row must be pruned")
	assert.Equal(t, int64(2), pharmaco)
	assert.Equal(t, int64(2), trait, "confidence > 1 row must be pruned")

	snap, err := store.LoadSnapshot()
	require.NoError(t, err)

	hits := snap.Clinical("rs123")
	require.Len(t, hits, 2)
	assert.Equal(t, "pathogenic", hits[0].Significance)

	drugs := snap.Pharmaco("rs456")
	require.Len(t, drugs, 1)
	assert.Equal(t, "clopidogrel", drugs[0].Drug)
	assert.Equal(t, "Consider alternative antiplatelet therapy", drugs[0].Recommendation)

	traits := snap.Trait("rs789")
	require.Len(t, traits, 1)
	assert.InDelta(t, 0.60, traits[0].Confidence, 1e-9)
}

func TestStore_ImportIsIdempotent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.ImportDir(filepath.Join("testdata", "db")))
	require.NoError(t, store.ImportDir(filepath.Join("testdata", "db")))

	_, pharmaco, trait, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), pharmaco, "reimport must replace, not append")
	assert.Equal(t, int64(2), trait)
}

func TestStore_ImportMissingDir(t *testing.T) {
	store := openTestStore(t)

	err := store.ImportDir(t.TempDir())
	require.Error(t, err)
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.duckdb")

	store, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.ImportDir(filepath.Join("testdata", "db")))
	require.NoError(t, store.Close())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	snap, err := reopened.LoadSnapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Pharmaco("rs789"), 1)
}
