package stats

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawi-ai/rawi-guide/internal/api"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Dashboard serves the admin overview aggregates.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("StatsHandler").Start(r.Context(), "Dashboard", trace.WithAttributes(
		semconv.HTTPRouteKey.String("/admin/stats"),
	))
	defer span.End()

	api.WriteJSONResponse(w, r, http.StatusOK, h.service.Dashboard(ctx))
}
