package cache

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "rawi_cache.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	t.Run("Load before any save reports not found", func(t *testing.T) {
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("Save then load returns the collection", func(t *testing.T) {
		coll := &types.Collection{Landmarks: []types.Landmark{
			{
				ID:              "001",
				Name:            types.LocalizedText{"ar": "رجال ألمع", "en": "Rijal Almaa"},
				Location:        types.Location{Lat: 18.1993, Lng: 42.2851},
				Recommendations: []string{"Visit the heritage museum"},
				Visits:          4,
			},
		}}
		require.NoError(t, store.Save(ctx, coll))
		assert.False(t, coll.LastUpdated.IsZero())

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded.Landmarks, 1)
		assert.Equal(t, "Rijal Almaa", loaded.Landmarks[0].Name["en"])
		assert.Equal(t, 4, loaded.Landmarks[0].Visits)
	})

	t.Run("Second save overwrites", func(t *testing.T) {
		coll := &types.Collection{Landmarks: []types.Landmark{}}
		require.NoError(t, store.Save(ctx, coll))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded.Landmarks)
	})
}

func TestStoreMemories(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	t.Run("No memories yields empty slice", func(t *testing.T) {
		memories, err := store.LoadMemories(ctx, "001")
		require.NoError(t, err)
		assert.NotNil(t, memories)
		assert.Empty(t, memories)
	})

	t.Run("Appends keep insertion order", func(t *testing.T) {
		base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		for i, id := range []string{"m1", "m2", "m3"} {
			err := store.AppendMemory(ctx, "001", types.Memory{
				ID:          id,
				LandmarkID:  "001",
				ImageData:   "data:image/jpeg;base64,AAAA",
				VisitorName: "زائر",
				CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
		}

		memories, err := store.LoadMemories(ctx, "001")
		require.NoError(t, err)
		require.Len(t, memories, 3)
		assert.Equal(t, "m1", memories[0].ID)
		assert.Equal(t, "m3", memories[2].ID)
	})

	t.Run("Walls are isolated per landmark", func(t *testing.T) {
		memories, err := store.LoadMemories(ctx, "002")
		require.NoError(t, err)
		assert.Empty(t, memories)
	})
}
