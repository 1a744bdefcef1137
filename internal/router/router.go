package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/rawi-ai/rawi-guide/app/observability/metrics"
	"github.com/rawi-ai/rawi-guide/internal/api/auth"
	"github.com/rawi-ai/rawi-guide/internal/api/chat"
	"github.com/rawi-ai/rawi-guide/internal/api/landmark"
	"github.com/rawi-ai/rawi-guide/internal/api/memory"
	"github.com/rawi-ai/rawi-guide/internal/api/stats"
	"github.com/rawi-ai/rawi-guide/internal/session"
)

// Config contains the handlers needed for the router setup.
type Config struct {
	AuthHandler            *auth.Handler
	LandmarkHandler        *landmark.Handler
	ChatHandler            *chat.Handler
	MemoryHandler          *memory.Handler
	StatsHandler           *stats.Handler
	SessionHandler         *session.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied
// before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	// The widget is embedded in third-party pages, so any origin may call
	// the public surface.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		// --- Public widget routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", cfg.AuthHandler.Login)

			r.Get("/landmarks", cfg.LandmarkHandler.ListLandmarks)
			r.Get("/landmarks/{id}", cfg.LandmarkHandler.GetLandmark)
			r.Get("/landmarks/{id}/memories", cfg.MemoryHandler.ListMemories)
			r.Post("/landmarks/{id}/memories", cfg.MemoryHandler.AddMemory)

			r.Get("/session", cfg.SessionHandler.GetSession)
			r.Put("/session/language", cfg.SessionHandler.SetLanguage)
			r.Post("/session/landmark/{id}", cfg.LandmarkHandler.VisitLandmark)
			r.Get("/status", cfg.SessionHandler.GetStatus)

			r.Post("/chat", cfg.ChatHandler.Ask)
		})

		// --- Admin routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/landmarks", cfg.LandmarkHandler.CreateLandmark)
			r.Put("/landmarks/{id}", cfg.LandmarkHandler.UpdateLandmark)
			r.Delete("/landmarks/{id}", cfg.LandmarkHandler.DeleteLandmark)

			r.Get("/admin/stats", cfg.StatsHandler.Dashboard)
		})
	})

	return r
}
