package memory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawi-ai/rawi-guide/internal/api"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

type AddMemoryRequest struct {
	ImageData   string `json:"src"`
	VisitorName string `json:"name"`
}

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

// ListMemories returns a landmark's photo wall.
func (h *Handler) ListMemories(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MemoryHandler").Start(r.Context(), "ListMemories", trace.WithAttributes(
		semconv.HTTPRouteKey.String("/landmarks/{id}/memories"),
	))
	defer span.End()

	landmarkID := chi.URLParam(r, "id")
	memories, err := h.service.ListMemories(ctx, landmarkID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Landmark not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to list memories", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load memories")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, memories)
}

// AddMemory appends a visitor photo to a landmark's wall.
func (h *Handler) AddMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MemoryHandler").Start(r.Context(), "AddMemory", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/landmarks/{id}/memories"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "AddMemory"))
	landmarkID := chi.URLParam(r, "id")

	var req AddMemoryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode memory payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.service.AddMemory(ctx, landmarkID, req.ImageData, req.VisitorName)
	switch {
	case err == nil:
		api.WriteJSONResponse(w, r, http.StatusCreated, m)
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Landmark not found")
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, "A photo data URI is required")
	default:
		l.ErrorContext(ctx, "Failed to add memory", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save memory")
	}
}
