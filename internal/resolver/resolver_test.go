package resolver

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

type MockRemoteLister struct {
	mock.Mock
}

func (m *MockRemoteLister) List(ctx context.Context) ([]types.Landmark, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Landmark), args.Error(1)
}

type MockCacheStore struct {
	mock.Mock
}

func (m *MockCacheStore) Load(ctx context.Context) (*types.Collection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Collection), args.Error(1)
}

func (m *MockCacheStore) Save(ctx context.Context, coll *types.Collection) error {
	args := m.Called(ctx, coll)
	return args.Error(0)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("Remote tier wins when reachable", func(t *testing.T) {
		remote := new(MockRemoteLister)
		store := new(MockCacheStore)
		remote.On("List", mock.Anything).Return([]types.Landmark{{ID: "001"}}, nil)

		coll, tier := New(remote, store, logger).Resolve(ctx)

		assert.Equal(t, types.TierRemote, tier)
		require.Len(t, coll.Landmarks, 1)
		store.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("Falls back to the local cache", func(t *testing.T) {
		remote := new(MockRemoteLister)
		store := new(MockCacheStore)
		remote.On("List", mock.Anything).Return(nil, types.ErrTransport)
		store.On("Load", mock.Anything).Return(&types.Collection{
			Landmarks: []types.Landmark{{ID: "001"}, {ID: "002"}},
		}, nil)

		coll, tier := New(remote, store, logger).Resolve(ctx)

		assert.Equal(t, types.TierLocalCache, tier)
		assert.Len(t, coll.Landmarks, 2)
	})

	t.Run("Bundled snapshot seeds the cache", func(t *testing.T) {
		remote := new(MockRemoteLister)
		store := new(MockCacheStore)
		remote.On("List", mock.Anything).Return(nil, types.ErrTransport)
		store.On("Load", mock.Anything).Return(nil, types.ErrNotFound)
		store.On("Save", mock.Anything, mock.Anything).Return(nil)

		coll, tier := New(remote, store, logger).Resolve(ctx)

		assert.Equal(t, types.TierBundled, tier)
		assert.NotEmpty(t, coll.Landmarks)
		store.AssertCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Cache seed failure does not fail the bundled tier", func(t *testing.T) {
		remote := new(MockRemoteLister)
		store := new(MockCacheStore)
		remote.On("List", mock.Anything).Return(nil, types.ErrTransport)
		store.On("Load", mock.Anything).Return(nil, types.ErrNotFound)
		store.On("Save", mock.Anything, mock.Anything).Return(types.ErrTransport)

		coll, tier := New(remote, store, logger).Resolve(ctx)

		assert.Equal(t, types.TierBundled, tier)
		assert.NotEmpty(t, coll.Landmarks)
	})

	t.Run("Bundled landmarks carry localized content", func(t *testing.T) {
		remote := new(MockRemoteLister)
		store := new(MockCacheStore)
		remote.On("List", mock.Anything).Return(nil, types.ErrTransport)
		store.On("Load", mock.Anything).Return(nil, types.ErrNotFound)
		store.On("Save", mock.Anything, mock.Anything).Return(nil)

		coll, _ := New(remote, store, logger).Resolve(ctx)

		require.NotEmpty(t, coll.Landmarks)
		first := coll.Landmarks[0]
		assert.NotEmpty(t, first.ID)
		assert.NotEmpty(t, first.Name["ar"])
	})
}

func TestBootstrapSource(t *testing.T) {
	ctx := context.Background()

	t.Run("Always yields an empty collection", func(t *testing.T) {
		store := new(MockCacheStore)
		store.On("Save", mock.Anything, mock.Anything).Return(nil)

		src := &bootstrapSource{cache: store, logger: slog.Default()}
		coll, err := src.Load(ctx)

		require.NoError(t, err)
		assert.NotNil(t, coll.Landmarks)
		assert.Empty(t, coll.Landmarks)
		assert.False(t, coll.LastUpdated.IsZero())
	})

	t.Run("Persist failure is swallowed", func(t *testing.T) {
		store := new(MockCacheStore)
		store.On("Save", mock.Anything, mock.Anything).Return(types.ErrTransport)

		src := &bootstrapSource{cache: store, logger: slog.Default()}
		coll, err := src.Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, coll.Landmarks)
	})
}
