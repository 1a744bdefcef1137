package landmark

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rawi-ai/rawi-guide/app/observability/metrics"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	m.Run()
}

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) List(ctx context.Context) ([]types.Landmark, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Landmark), args.Error(1)
}

func (m *MockRecordStore) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordStore) Upsert(ctx context.Context, lm types.Landmark) error {
	args := m.Called(ctx, lm)
	return args.Error(0)
}

func (m *MockRecordStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordStore) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockCollectionCache struct {
	mock.Mock
}

func (m *MockCollectionCache) Save(ctx context.Context, coll *types.Collection) error {
	args := m.Called(ctx, coll)
	return args.Error(0)
}

func newTestService(coll *types.Collection, store *MockRecordStore, cache *MockCollectionCache) *ServiceImpl {
	return NewService(coll, store, cache, slog.Default())
}

func seedCollection() *types.Collection {
	return &types.Collection{Landmarks: []types.Landmark{
		{ID: "001", Name: types.LocalizedText{"ar": "رجال ألمع"}, Visits: 10},
		{ID: "002", Name: types.LocalizedText{"ar": "منتزه عسير"}, Visits: 5},
	}}
}

func TestServiceSave(t *testing.T) {
	ctx := context.Background()

	t.Run("Create assigns the next padded id", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(false)
		cache.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(seedCollection(), store, cache)
		lm, outcome, err := svc.Save(ctx, types.Landmark{
			Name: types.LocalizedText{"ar": "قلعة شمسان"},
		}, true)

		require.NoError(t, err)
		assert.Equal(t, "003", lm.ID)
		assert.Equal(t, 0, lm.Visits)
		assert.Equal(t, types.OutcomeLocalOnly, outcome)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		cache.AssertCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Create replicates remotely when available", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(true)
		store.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		cache.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(seedCollection(), store, cache)
		_, outcome, err := svc.Save(ctx, types.Landmark{
			Name: types.LocalizedText{"ar": "قلعة شمسان"},
		}, true)

		require.NoError(t, err)
		assert.Equal(t, types.OutcomeRemoteAndLocal, outcome)
	})

	t.Run("Remote failure degrades to local-only, cache still written", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(true)
		store.On("Upsert", mock.Anything, mock.Anything).Return(types.ErrTransport)
		cache.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(seedCollection(), store, cache)
		lm, outcome, err := svc.Save(ctx, types.Landmark{
			Name: types.LocalizedText{"ar": "قلعة شمسان"},
		}, true)

		require.NoError(t, err)
		assert.Equal(t, types.OutcomeLocalOnly, outcome)
		cache.AssertCalled(t, "Save", mock.Anything, mock.Anything)

		// The optimistic write stays in memory.
		got, err := svc.Get(ctx, lm.ID)
		require.NoError(t, err)
		assert.Equal(t, "قلعة شمسان", got.Name["ar"])
	})

	t.Run("Update preserves the visit counter", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(false)
		cache.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(seedCollection(), store, cache)
		lm, _, err := svc.Save(ctx, types.Landmark{
			ID:   "001",
			Name: types.LocalizedText{"ar": "رجال ألمع", "en": "Rijal Almaa"},
		}, false)

		require.NoError(t, err)
		assert.Equal(t, 10, lm.Visits)
	})

	t.Run("Update of unknown id reports not found", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)

		svc := newTestService(seedCollection(), store, cache)
		_, _, err := svc.Save(ctx, types.Landmark{ID: "999"}, false)

		assert.ErrorIs(t, err, types.ErrNotFound)
		cache.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Cache failure does not fail the save", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(false)
		cache.On("Save", mock.Anything, mock.Anything).Return(types.ErrTransport)

		svc := newTestService(seedCollection(), store, cache)
		_, _, err := svc.Save(ctx, types.Landmark{
			Name: types.LocalizedText{"ar": "قلعة شمسان"},
		}, true)

		assert.NoError(t, err)
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Remote failure aborts the local removal", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(true)
		store.On("Delete", mock.Anything, "001").Return(types.ErrTransport)

		svc := newTestService(seedCollection(), store, cache)
		err := svc.Delete(ctx, "001")

		require.Error(t, err)
		cache.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

		// The record survives in every tier.
		_, err = svc.Get(ctx, "001")
		assert.NoError(t, err)
	})

	t.Run("Offline delete applies locally", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(false)
		cache.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(seedCollection(), store, cache)
		require.NoError(t, svc.Delete(ctx, "001"))

		_, err := svc.Get(ctx, "001")
		assert.ErrorIs(t, err, types.ErrNotFound)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Connected delete removes remotely then locally", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(true)
		store.On("Delete", mock.Anything, "002").Return(nil)
		cache.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(seedCollection(), store, cache)
		require.NoError(t, svc.Delete(ctx, "002"))

		_, err := svc.Get(ctx, "002")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("Unknown id reports not found without remote calls", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)

		svc := newTestService(seedCollection(), store, cache)
		err := svc.Delete(ctx, "999")

		assert.ErrorIs(t, err, types.ErrNotFound)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestServiceRecordVisit(t *testing.T) {
	ctx := context.Background()

	t.Run("Increments and persists", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(false)
		cache.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(seedCollection(), store, cache)

		visits, err := svc.RecordVisit(ctx, "002")
		require.NoError(t, err)
		assert.Equal(t, 6, visits)

		visits, err = svc.RecordVisit(ctx, "002")
		require.NoError(t, err)
		assert.Equal(t, 7, visits)
	})

	t.Run("Replication failure keeps the local count", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)
		store.On("Available").Return(true)
		store.On("Upsert", mock.Anything, mock.Anything).Return(types.ErrTransport)
		cache.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(seedCollection(), store, cache)
		visits, err := svc.RecordVisit(ctx, "001")

		require.NoError(t, err)
		assert.Equal(t, 11, visits)
	})

	t.Run("Unknown id reports not found", func(t *testing.T) {
		store := new(MockRecordStore)
		cache := new(MockCollectionCache)

		svc := newTestService(seedCollection(), store, cache)
		_, err := svc.RecordVisit(ctx, "999")

		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestServiceList(t *testing.T) {
	store := new(MockRecordStore)
	cache := new(MockCollectionCache)
	svc := newTestService(seedCollection(), store, cache)

	coll := svc.List(context.Background())
	require.Len(t, coll.Landmarks, 2)

	// The returned slice is a copy; mutating it must not leak back.
	coll.Landmarks[0].Visits = 999
	got, err := svc.Get(context.Background(), "001")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Visits)
}
