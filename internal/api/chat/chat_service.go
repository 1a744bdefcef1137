package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"

	"github.com/rawi-ai/rawi-guide/app/observability/metrics"
	"github.com/rawi-ai/rawi-guide/internal/session"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Generator is the LLM dependency. Satisfied by generativeAI.AIClient;
// nil when the API key is missing (offline mode).
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

// LandmarkGetter resolves the current landmark for grounding.
type LandmarkGetter interface {
	Get(ctx context.Context, id string) (types.Landmark, error)
}

// Result is one bot reply. Fallback marks the localized generic error
// message emitted in place of a model answer.
type Result struct {
	Reply    string `json:"reply"`
	Fallback bool   `json:"fallback"`
}

// Service runs the question lifecycle: validate, guard, ground, call,
// reply. At most one question is in flight at a time; a second submit
// while pending is dropped with types.ErrChatBusy, not queued.
type Service interface {
	Ask(ctx context.Context, text string) (Result, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	generator Generator
	landmarks LandmarkGetter
	state     *session.State

	// Single-slot in-flight guard. TryAcquire, never Acquire: backpressure
	// by dropping, matching the disabled input controls of the widget.
	inflight *semaphore.Weighted
}

func NewService(generator Generator, landmarks LandmarkGetter, state *session.State, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		generator: generator,
		landmarks: landmarks,
		state:     state,
		inflight:  semaphore.NewWeighted(1),
	}
}

func (s *ServiceImpl) Ask(ctx context.Context, text string) (Result, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "Ask", trace.WithAttributes(
		attribute.Int("question.length", len(text)),
	))
	defer span.End()

	lang := s.state.Language()
	l := s.logger.With(slog.String("method", "Ask"), slog.String("language", lang))

	text = strings.TrimSpace(text)
	if text == "" {
		span.SetStatus(codes.Error, "Empty question")
		return Result{}, fmt.Errorf("question text: %w", types.ErrValidation)
	}
	if !s.state.IsChatEnabled() {
		span.SetStatus(codes.Error, "Chat not enabled")
		return Result{}, fmt.Errorf("no landmark resolved yet: %w", types.ErrValidation)
	}

	if !s.inflight.TryAcquire(1) {
		l.InfoContext(ctx, "Question dropped, another is in flight")
		metrics.Get().ChatRequestsTotal.WithLabelValues("dropped").Inc()
		span.SetStatus(codes.Error, "Busy")
		return Result{}, types.ErrChatBusy
	}
	defer s.inflight.Release(1)

	if s.generator == nil {
		l.WarnContext(ctx, "AI system offline, serving offline message")
		metrics.Get().ChatRequestsTotal.WithLabelValues("offline").Inc()
		span.SetStatus(codes.Error, "AI offline")
		return Result{Reply: types.Translate("ai_offline", lang), Fallback: true}, nil
	}

	grounding := s.buildContext(ctx, lang)
	prompt := fmt.Sprintf("%s\n\n%s %s", grounding, QuestionLabel(lang), text)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.4),
		MaxOutputTokens: 10000,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemPrompt(lang)}},
		},
	}

	answer, err := s.generator.GenerateContent(ctx, prompt, config)
	if err != nil {
		// Transport and parse failures alike become the localized generic
		// error message; the raw error never reaches the visitor.
		l.ErrorContext(ctx, "LLM call failed", slog.Any("error", err))
		metrics.Get().ChatRequestsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "LLM call failed")
		return Result{Reply: types.Translate("ai_error", lang), Fallback: true}, nil
	}

	metrics.Get().ChatRequestsTotal.WithLabelValues("ok").Inc()
	span.SetStatus(codes.Ok, "Answer generated")
	return Result{Reply: answer}, nil
}

// buildContext resolves the session's current landmark into the
// grounding preamble. A missing or stale landmark id degrades to an
// ungrounded question.
func (s *ServiceImpl) buildContext(ctx context.Context, lang string) string {
	id := s.state.CurrentLandmarkID()
	if id == "" {
		return ""
	}
	lm, err := s.landmarks.Get(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "Current landmark not found, question goes ungrounded",
			slog.String("landmarkID", id), slog.Any("error", err))
		return ""
	}
	return BuildLandmarkContext(&lm, lang)
}
