package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawi-ai/rawi-guide/internal/api"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

type AskRequest struct {
	Message string `json:"message"`
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

// Ask handles one visitor question.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "Ask", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/chat"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Ask"))

	var req AskRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode chat payload", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Ask(ctx, req.Message)
	switch {
	case err == nil:
		api.WriteJSONResponse(w, r, http.StatusOK, result)
	case errors.Is(err, types.ErrChatBusy):
		// Dropped, not queued. The widget resubmits when input re-enables.
		api.ErrorResponse(w, r, http.StatusTooManyRequests, "A question is already being answered")
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Message must not be empty and a landmark must be selected")
	default:
		l.ErrorContext(ctx, "Chat request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Chat request failed")
	}
}
