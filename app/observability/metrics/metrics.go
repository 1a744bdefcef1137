package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	LandmarkVisitsTotal *prometheus.CounterVec
	ChatRequestsTotal   *prometheus.CounterVec
	ResolverTierTotal   *prometheus.CounterVec
	RemoteFallbackTotal prometheus.Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics registers the instruments on the default registry,
// once per process.
func InitAppMetrics() {
	once.Do(func() {
		appMetrics = &AppMetrics{
			LandmarkVisitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "landmark_visits_total",
				Help: "Total number of landmark scan/selection events.",
			}, []string{"landmark_id"}),
			ChatRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "chat_requests_total",
				Help: "Total number of chat questions by outcome.",
			}, []string{"outcome"}),
			ResolverTierTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "resolver_tier_total",
				Help: "Data source tier reached at startup resolution.",
			}, []string{"tier"}),
			RemoteFallbackTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "remote_fallback_total",
				Help: "Remote store failures downgraded to the local tier.",
			}),
		}
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
