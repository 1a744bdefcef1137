package landmark

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawi-ai/rawi-guide/internal/api"
	"github.com/rawi-ai/rawi-guide/internal/session"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

type Handler struct {
	service Service
	state   *session.State
	logger  *slog.Logger
}

func NewHandler(service Service, state *session.State, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		state:   state,
		logger:  logger,
	}
}

// ListLandmarks returns the full collection for the widget and the admin
// table.
func (h *Handler) ListLandmarks(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LandmarkHandler").Start(r.Context(), "ListLandmarks", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/landmarks"),
	))
	defer span.End()

	coll := h.service.List(ctx)
	api.WriteJSONResponse(w, r, http.StatusOK, coll)
}

// GetLandmark returns a single landmark by id.
func (h *Handler) GetLandmark(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LandmarkHandler").Start(r.Context(), "GetLandmark", trace.WithAttributes(
		semconv.HTTPRouteKey.String("/landmarks/{id}"),
	))
	defer span.End()

	id := chi.URLParam(r, "id")
	lm, err := h.service.Get(ctx, id)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Landmark not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, lm)
}

// CreateLandmark handles the admin "add landmark" form.
func (h *Handler) CreateLandmark(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", true)
}

// UpdateLandmark handles the admin "edit landmark" form.
func (h *Handler) UpdateLandmark(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), false)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string, isNew bool) {
	ctx, span := otel.Tracer("LandmarkHandler").Start(r.Context(), "SaveLandmark", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SaveLandmark"), slog.Bool("isNew", isNew))

	var req UpsertLandmarkRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode landmark payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		l.WarnContext(ctx, "Landmark payload rejected", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	lm, outcome, err := h.service.Save(ctx, req.Landmark(id), isNew)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Landmark not found")
			return
		}
		l.ErrorContext(ctx, "Failed to save landmark", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save landmark")
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	api.WriteJSONResponse(w, r, status, SaveLandmarkResponse{Landmark: lm, Outcome: outcome})
}

// DeleteLandmark removes a landmark. The admin client must send
// confirm=true; without it the operation has no effect at all, the
// server-side equivalent of dismissing the confirmation dialog.
func (h *Handler) DeleteLandmark(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LandmarkHandler").Start(r.Context(), "DeleteLandmark", trace.WithAttributes(
		semconv.HTTPRouteKey.String("/landmarks/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteLandmark"))
	id := chi.URLParam(r, "id")

	if r.URL.Query().Get("confirm") != "true" {
		l.InfoContext(ctx, "Delete not confirmed, no effect", slog.String("landmarkID", id))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Deletion requires confirm=true")
		return
	}

	err := h.service.Delete(ctx, id)
	switch {
	case err == nil:
		api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
			"success": true,
			"id":      id,
		})
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Landmark not found")
	default:
		// Remote delete failed; nothing was removed in any tier.
		l.ErrorContext(ctx, "Delete failed", slog.Any("error", err), slog.String("landmarkID", id))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Failed to delete landmark from the cloud")
	}
}

// VisitLandmark is the scan/selection event: it makes the landmark
// current for the session, enables chat and bumps the visit counter.
func (h *Handler) VisitLandmark(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LandmarkHandler").Start(r.Context(), "VisitLandmark", trace.WithAttributes(
		semconv.HTTPRouteKey.String("/session/landmark/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "VisitLandmark"))
	id := chi.URLParam(r, "id")

	visits, err := h.service.RecordVisit(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Landmark not found")
			return
		}
		l.ErrorContext(ctx, "Failed to record visit", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to record visit")
		return
	}

	h.state.SetCurrentLandmark(id)
	api.WriteJSONResponse(w, r, http.StatusOK, VisitResponse{
		LandmarkID:  id,
		Visits:      visits,
		ChatEnabled: h.state.IsChatEnabled(),
	})
}
