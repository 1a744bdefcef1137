package stats

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

type MockCollectionLister struct {
	mock.Mock
}

func (m *MockCollectionLister) List(ctx context.Context) types.Collection {
	args := m.Called(ctx)
	return args.Get(0).(types.Collection)
}

func newStatsService(coll types.Collection) *ServiceImpl {
	landmarks := new(MockCollectionLister)
	landmarks.On("List", mock.Anything).Return(coll)
	return NewService(landmarks, slog.Default())
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty collection serves the placeholder series", func(t *testing.T) {
		d := newStatsService(types.Collection{}).Dashboard(ctx)

		assert.Zero(t, d.TotalLandmarks)
		assert.Zero(t, d.TotalVisits)
		assert.Zero(t, d.AverageVisits)
		assert.Equal(t, "ar", d.TopLanguage)
		assert.Equal(t, []int{450, 600, 550, 800, 1200, 1500, 1300}, d.DailyVisits)
		assert.Empty(t, d.TopLandmarks)
	})

	t.Run("Aggregates visits and coverage", func(t *testing.T) {
		coll := types.Collection{Landmarks: []types.Landmark{
			{ID: "001", Name: types.LocalizedText{"ar": "رجال ألمع", "en": "Rijal Almaa"}, Visits: 30},
			{ID: "002", Name: types.LocalizedText{"ar": "منتزه عسير"}, Visits: 10},
			{ID: "003", Name: types.LocalizedText{"ar": "قلعة شمسان", "en": "Shamsan Castle", "fr": "Château Shamsan"}, Visits: 20},
		}}

		d := newStatsService(coll).Dashboard(ctx)

		assert.Equal(t, 3, d.TotalLandmarks)
		assert.Equal(t, 60, d.TotalVisits)
		assert.Equal(t, 20, d.AverageVisits)
		assert.Equal(t, "ar", d.TopLanguage)
		assert.Equal(t, 3, d.LanguageCoverage["ar"])
		assert.Equal(t, 2, d.LanguageCoverage["en"])
		assert.Equal(t, 1, d.LanguageCoverage["fr"])
		assert.Equal(t, 0, d.LanguageCoverage["es"])
	})

	t.Run("Top landmarks are ordered by visits and capped at five", func(t *testing.T) {
		landmarks := make([]types.Landmark, 0, 7)
		for i, visits := range []int{5, 40, 15, 25, 10, 35, 20} {
			landmarks = append(landmarks, types.Landmark{
				ID:     string(rune('a' + i)),
				Name:   types.LocalizedText{"ar": "معلم"},
				Visits: visits,
			})
		}

		d := newStatsService(types.Collection{Landmarks: landmarks}).Dashboard(ctx)

		require.Len(t, d.TopLandmarks, 5)
		assert.Equal(t, 40, d.TopLandmarks[0].Visits)
		assert.Equal(t, 35, d.TopLandmarks[1].Visits)
		assert.Equal(t, 15, d.TopLandmarks[4].Visits)
	})

	t.Run("Daily series scales with the visit total", func(t *testing.T) {
		coll := types.Collection{Landmarks: []types.Landmark{
			{ID: "001", Name: types.LocalizedText{"ar": "معلم"}, Visits: 20000},
		}}

		d := newStatsService(coll).Dashboard(ctx)

		// base 200 spread over the weekly shape
		assert.Equal(t, []int{140, 180, 170, 240, 360, 440, 380}, d.DailyVisits)
	})

	t.Run("Low totals floor the series base", func(t *testing.T) {
		coll := types.Collection{Landmarks: []types.Landmark{
			{ID: "001", Name: types.LocalizedText{"ar": "معلم"}, Visits: 3},
		}}

		d := newStatsService(coll).Dashboard(ctx)

		assert.Equal(t, []int{70, 90, 85, 120, 180, 220, 190}, d.DailyVisits)
	})
}
