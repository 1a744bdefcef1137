package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawi-ai/rawi-guide/internal/session"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// MemoryStore is the durable local tier for photo memories. Satisfied by
// cache.Store. Memories live only in the local tier; the deployed system
// never replicated them to the cloud despite its naming, and that
// behavior is kept.
type MemoryStore interface {
	LoadMemories(ctx context.Context, landmarkID string) ([]types.Memory, error)
	AppendMemory(ctx context.Context, landmarkID string, m types.Memory) error
}

// LandmarkGetter verifies the target landmark exists.
type LandmarkGetter interface {
	Get(ctx context.Context, id string) (types.Landmark, error)
}

// Service manages the per-landmark photo memory wall.
type Service interface {
	// ListMemories returns a landmark's wall, oldest first.
	ListMemories(ctx context.Context, landmarkID string) ([]types.Memory, error)

	// AddMemory appends a visitor photo. A blank visitor name defaults to
	// the localized "Visitor" string for the session language.
	AddMemory(ctx context.Context, landmarkID, imageData, visitorName string) (types.Memory, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	store     MemoryStore
	landmarks LandmarkGetter
	state     *session.State
}

func NewService(store MemoryStore, landmarks LandmarkGetter, state *session.State, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		store:     store,
		landmarks: landmarks,
		state:     state,
	}
}

func (s *ServiceImpl) ListMemories(ctx context.Context, landmarkID string) ([]types.Memory, error) {
	ctx, span := otel.Tracer("MemoryService").Start(ctx, "ListMemories", trace.WithAttributes(
		attribute.String("landmark.id", landmarkID),
	))
	defer span.End()

	if _, err := s.landmarks.Get(ctx, landmarkID); err != nil {
		span.SetStatus(codes.Error, "Landmark not found")
		return nil, err
	}

	memories, err := s.store.LoadMemories(ctx, landmarkID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load memories")
		return nil, fmt.Errorf("loading memories for %q: %w", landmarkID, err)
	}
	span.SetAttributes(attribute.Int("memories.count", len(memories)))
	span.SetStatus(codes.Ok, "Memories loaded")
	return memories, nil
}

func (s *ServiceImpl) AddMemory(ctx context.Context, landmarkID, imageData, visitorName string) (types.Memory, error) {
	ctx, span := otel.Tracer("MemoryService").Start(ctx, "AddMemory", trace.WithAttributes(
		attribute.String("landmark.id", landmarkID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "AddMemory"), slog.String("landmarkID", landmarkID))

	if _, err := s.landmarks.Get(ctx, landmarkID); err != nil {
		span.SetStatus(codes.Error, "Landmark not found")
		return types.Memory{}, err
	}

	if !strings.HasPrefix(imageData, "data:image/") {
		span.SetStatus(codes.Error, "Invalid image payload")
		return types.Memory{}, fmt.Errorf("image must be a data URI: %w", types.ErrValidation)
	}

	visitorName = strings.TrimSpace(visitorName)
	if visitorName == "" {
		visitorName = types.Translate("anonymous", s.state.Language())
	}

	m := types.Memory{
		ID:          uuid.NewString(),
		LandmarkID:  landmarkID,
		ImageData:   imageData,
		VisitorName: visitorName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.AppendMemory(ctx, landmarkID, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to append memory")
		return types.Memory{}, fmt.Errorf("appending memory: %w", err)
	}

	l.InfoContext(ctx, "Memory added", slog.String("memoryID", m.ID))
	span.SetStatus(codes.Ok, "Memory added")
	return m, nil
}
