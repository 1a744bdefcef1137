package stats

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// CollectionLister supplies the current collection. Satisfied by the
// landmark service.
type CollectionLister interface {
	List(ctx context.Context) types.Collection
}

// LandmarkRank is one row of the top-landmarks board.
type LandmarkRank struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Visits int    `json:"visits"`
}

// Dashboard aggregates the admin overview numbers.
type Dashboard struct {
	TotalLandmarks   int            `json:"totalLandmarks"`
	TotalVisits      int            `json:"totalVisits"`
	AverageVisits    int            `json:"averageVisits"`
	TopLanguage      string         `json:"topLanguage"`
	LanguageCoverage map[string]int `json:"languageCoverage"`
	TopLandmarks     []LandmarkRank `json:"topLandmarks"`
	DailyVisits      []int          `json:"dailyVisits"`
}

// Service computes the admin dashboard aggregates.
type Service interface {
	Dashboard(ctx context.Context) Dashboard
}

type ServiceImpl struct {
	logger    *slog.Logger
	landmarks CollectionLister
}

func NewService(landmarks CollectionLister, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		landmarks: landmarks,
	}
}

// defaultDailyVisits is the placeholder series shown before any visit
// data exists.
var defaultDailyVisits = []int{450, 600, 550, 800, 1200, 1500, 1300}

// dailyShape spreads the visit total over a week-shaped curve. There is
// no per-day tracking in the data model; this reproduces the overview
// chart heuristic of the admin panel.
var dailyShape = []float64{0.7, 0.9, 0.85, 1.2, 1.8, 2.2, 1.9}

func (s *ServiceImpl) Dashboard(ctx context.Context) Dashboard {
	ctx, span := otel.Tracer("StatsService").Start(ctx, "Dashboard")
	defer span.End()

	coll := s.landmarks.List(ctx)

	d := Dashboard{
		TotalLandmarks:   len(coll.Landmarks),
		LanguageCoverage: map[string]int{},
	}
	for _, lang := range types.SupportedLanguages {
		d.LanguageCoverage[lang] = 0
	}

	for _, lm := range coll.Landmarks {
		d.TotalVisits += lm.Visits
		for _, lang := range types.SupportedLanguages {
			if name, ok := lm.Name[lang]; ok && name != "" {
				d.LanguageCoverage[lang]++
			}
		}
	}
	if len(coll.Landmarks) > 0 {
		d.AverageVisits = int(math.Round(float64(d.TotalVisits) / float64(len(coll.Landmarks))))
	}
	d.TopLanguage = topLanguage(d.LanguageCoverage)
	d.TopLandmarks = topLandmarks(coll.Landmarks, 5)
	d.DailyVisits = dailyVisits(d.TotalVisits, len(coll.Landmarks))

	span.SetAttributes(
		attribute.Int("landmarks.count", d.TotalLandmarks),
		attribute.Int("visits.total", d.TotalVisits),
	)
	span.SetStatus(codes.Ok, "Dashboard computed")
	return d
}

// topLanguage picks the language with the widest coverage, preferring
// the default language on ties via the fixed enumeration order.
func topLanguage(coverage map[string]int) string {
	top := types.DefaultLanguage
	best := -1
	for _, lang := range types.SupportedLanguages {
		if coverage[lang] > best {
			best = coverage[lang]
			top = lang
		}
	}
	return top
}

func topLandmarks(landmarks []types.Landmark, n int) []LandmarkRank {
	sorted := make([]types.Landmark, len(landmarks))
	copy(sorted, landmarks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Visits > sorted[j].Visits
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	ranks := make([]LandmarkRank, 0, len(sorted))
	for _, lm := range sorted {
		ranks = append(ranks, LandmarkRank{
			ID:     lm.ID,
			Name:   types.ResolveLocalized(lm.Name, types.DefaultLanguage, types.DefaultLanguage),
			Visits: lm.Visits,
		})
	}
	return ranks
}

func dailyVisits(total, landmarkCount int) []int {
	if landmarkCount == 0 {
		out := make([]int, len(defaultDailyVisits))
		copy(out, defaultDailyVisits)
		return out
	}
	base := math.Max(100, math.Floor(float64(total)/100))
	out := make([]int, len(dailyShape))
	for i, f := range dailyShape {
		out[i] = int(math.Round(base * f))
	}
	return out
}
