package landmark

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawi-ai/rawi-guide/app/observability/metrics"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// CollectionCache is the durable local tier the service writes through
// to. Satisfied by cache.Store.
type CollectionCache interface {
	Save(ctx context.Context, coll *types.Collection) error
}

// Service owns the in-memory landmark collection for the session and
// reconciles admin mutations across the remote store and the local
// cache.
type Service interface {
	// List returns a copy of the current collection.
	List(ctx context.Context) types.Collection

	// Get returns a single landmark. Returns types.ErrNotFound when the
	// id is absent.
	Get(ctx context.Context, id string) (types.Landmark, error)

	// Save applies an admin create/update: optimistic in-memory mutation,
	// best-effort remote replication, unconditional local write-through.
	// The outcome reports which tiers carried the write.
	Save(ctx context.Context, lm types.Landmark, isNew bool) (types.Landmark, types.SaveOutcome, error)

	// Delete removes a landmark. When the remote store is available the
	// remote delete runs first and a failure aborts the whole operation,
	// leaving the record in place in both tiers. There is no local-only
	// fallback for delete, unlike Save.
	Delete(ctx context.Context, id string) error

	// RecordVisit increments a landmark's visit counter with the same
	// write-through policy as Save and returns the new count.
	RecordVisit(ctx context.Context, id string) (int, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	store  RecordStore
	cache  CollectionCache

	mu   sync.RWMutex
	coll *types.Collection
}

// NewService creates the reconciler around an already-resolved
// collection. The service takes ownership of coll.
func NewService(coll *types.Collection, store RecordStore, cache CollectionCache, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		store:  store,
		cache:  cache,
		coll:   coll,
	}
}

func (s *ServiceImpl) List(ctx context.Context) types.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := types.Collection{
		Landmarks:   make([]types.Landmark, len(s.coll.Landmarks)),
		LastUpdated: s.coll.LastUpdated,
	}
	copy(out.Landmarks, s.coll.Landmarks)
	return out
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (types.Landmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lm := s.coll.Find(id); lm != nil {
		return *lm, nil
	}
	return types.Landmark{}, fmt.Errorf("landmark %q: %w", id, types.ErrNotFound)
}

func (s *ServiceImpl) Save(ctx context.Context, lm types.Landmark, isNew bool) (types.Landmark, types.SaveOutcome, error) {
	ctx, span := otel.Tracer("LandmarkService").Start(ctx, "Save", trace.WithAttributes(
		attribute.Bool("landmark.new", isNew),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Save"), slog.Bool("isNew", isNew))

	// 1. Optimistic in-memory mutation.
	s.mu.Lock()
	if isNew {
		lm.ID = s.coll.NextID()
		lm.Visits = 0
		s.coll.Landmarks = append(s.coll.Landmarks, lm)
	} else {
		existing := s.coll.Find(lm.ID)
		if existing == nil {
			s.mu.Unlock()
			span.SetStatus(codes.Error, "Landmark not found")
			return types.Landmark{}, "", fmt.Errorf("landmark %q: %w", lm.ID, types.ErrNotFound)
		}
		lm.Visits = existing.Visits
		*existing = lm
	}
	s.mu.Unlock()

	l = l.With(slog.String("landmarkID", lm.ID))
	span.SetAttributes(attribute.String("landmark.id", lm.ID))

	// 2. Best-effort remote replication.
	outcome := types.OutcomeLocalOnly
	if s.store.Available() {
		if err := s.store.Upsert(ctx, lm); err != nil {
			l.WarnContext(ctx, "Remote replication failed, keeping local write",
				slog.Any("error", err))
			metrics.Get().RemoteFallbackTotal.Inc()
			span.RecordError(err)
		} else {
			outcome = types.OutcomeRemoteAndLocal
		}
	}

	// 3. Unconditional local write-through, the durability backstop.
	s.persistLocked(ctx, l)

	l.InfoContext(ctx, "Landmark saved", slog.String("outcome", string(outcome)))
	span.SetStatus(codes.Ok, "Landmark saved")
	return lm, outcome, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("LandmarkService").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("landmark.id", id),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Delete"), slog.String("landmarkID", id))

	s.mu.RLock()
	exists := s.coll.Find(id) != nil
	s.mu.RUnlock()
	if !exists {
		span.SetStatus(codes.Error, "Landmark not found")
		return fmt.Errorf("landmark %q: %w", id, types.ErrNotFound)
	}

	// Remote first. A remote failure aborts the delete entirely; the
	// record stays in memory and in the cache. Asymmetric with Save on
	// purpose: this replicates the observed behavior of the system.
	if s.store.Available() {
		if err := s.store.Delete(ctx, id); err != nil {
			l.ErrorContext(ctx, "Remote delete failed, aborting local removal",
				slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Remote delete failed")
			return fmt.Errorf("remote delete of %q: %w", id, err)
		}
	}

	s.mu.Lock()
	for i := range s.coll.Landmarks {
		if s.coll.Landmarks[i].ID == id {
			s.coll.Landmarks = append(s.coll.Landmarks[:i], s.coll.Landmarks[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.persistLocked(ctx, l)

	l.InfoContext(ctx, "Landmark deleted")
	span.SetStatus(codes.Ok, "Landmark deleted")
	return nil
}

func (s *ServiceImpl) RecordVisit(ctx context.Context, id string) (int, error) {
	ctx, span := otel.Tracer("LandmarkService").Start(ctx, "RecordVisit", trace.WithAttributes(
		attribute.String("landmark.id", id),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "RecordVisit"), slog.String("landmarkID", id))

	s.mu.Lock()
	lm := s.coll.Find(id)
	if lm == nil {
		s.mu.Unlock()
		span.SetStatus(codes.Error, "Landmark not found")
		return 0, fmt.Errorf("landmark %q: %w", id, types.ErrNotFound)
	}
	lm.Visits++
	visited := *lm
	s.mu.Unlock()

	metrics.Get().LandmarkVisitsTotal.WithLabelValues(id).Inc()

	if s.store.Available() {
		if err := s.store.Upsert(ctx, visited); err != nil {
			l.WarnContext(ctx, "Visit counter not replicated", slog.Any("error", err))
			metrics.Get().RemoteFallbackTotal.Inc()
		}
	}
	s.persistLocked(ctx, l)

	span.SetStatus(codes.Ok, "Visit recorded")
	return visited.Visits, nil
}

// persistLocked snapshots the collection under the read lock and writes
// it to the local cache. Cache failures degrade to a logged warning.
func (s *ServiceImpl) persistLocked(ctx context.Context, l *slog.Logger) {
	s.mu.RLock()
	snapshot := types.Collection{
		Landmarks: make([]types.Landmark, len(s.coll.Landmarks)),
	}
	copy(snapshot.Landmarks, s.coll.Landmarks)
	s.mu.RUnlock()

	if err := s.cache.Save(ctx, &snapshot); err != nil {
		l.WarnContext(ctx, "Local cache write failed", slog.Any("error", err))
		return
	}

	s.mu.Lock()
	s.coll.LastUpdated = snapshot.LastUpdated
	s.mu.Unlock()
}
