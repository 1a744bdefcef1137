package session

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawi-ai/rawi-guide/internal/api"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

type SetLanguageRequest struct {
	Language string `json:"language"`
}

// StatusResponse is the connectivity badge payload.
type StatusResponse struct {
	Connected bool       `json:"connected"`
	Tier      types.Tier `json:"tier"`
}

type Handler struct {
	state  *State
	logger *slog.Logger
}

func NewHandler(state *State, logger *slog.Logger) *Handler {
	return &Handler{
		state:  state,
		logger: logger,
	}
}

// GetSession returns the current session snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("SessionHandler").Start(r.Context(), "GetSession", trace.WithAttributes(
		semconv.HTTPRouteKey.String("/session"),
	))
	defer span.End()

	api.WriteJSONResponse(w, r, http.StatusOK, h.state.Snapshot())
}

// SetLanguage switches the display language. Unsupported codes leave the
// language unchanged; the response always carries the resulting state.
func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SessionHandler").Start(r.Context(), "SetLanguage", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/session/language"),
	))
	defer span.End()

	var req SetLanguageRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode language payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.state.SetLanguage(req.Language)
	api.WriteJSONResponse(w, r, http.StatusOK, h.state.Snapshot())
}

// GetStatus serves the online/offline indicator.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("SessionHandler").Start(r.Context(), "GetStatus", trace.WithAttributes(
		semconv.HTTPRouteKey.String("/status"),
	))
	defer span.End()

	snap := h.state.Snapshot()
	api.WriteJSONResponse(w, r, http.StatusOK, StatusResponse{
		Connected: snap.Connected,
		Tier:      snap.Tier,
	})
}
