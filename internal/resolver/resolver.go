// Package resolver decides which data tier is authoritative for a
// session. It consults an ordered list of sources (remote store, local
// cache, bundled snapshot, empty bootstrap) and settles on the first one
// that yields a collection. It never fails: the bootstrap tier always
// succeeds.
package resolver

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rawi-ai/rawi-guide/app/observability/metrics"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

//go:embed landmarks.json
var bundledSnapshot []byte

// RemoteLister is the remote tier dependency.
type RemoteLister interface {
	List(ctx context.Context) ([]types.Landmark, error)
}

// CacheStore is the durable local tier dependency.
type CacheStore interface {
	Load(ctx context.Context) (*types.Collection, error)
	Save(ctx context.Context, coll *types.Collection) error
}

// Source is one data tier. Additional tiers slot in by appending to the
// ordered source list.
type Source interface {
	// Load attempts to produce a collection. A failed tier returns an
	// error and the resolver moves on.
	Load(ctx context.Context) (*types.Collection, error)

	// Tier names the source for status reporting.
	Tier() types.Tier
}

// Resolver iterates the tiers in order.
type Resolver struct {
	sources []Source
	logger  *slog.Logger
}

// New builds the standard four-tier resolver.
func New(remote RemoteLister, cache CacheStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		sources: []Source{
			&remoteSource{remote: remote},
			&cacheSource{cache: cache},
			&bundledSource{cache: cache, logger: logger},
			&bootstrapSource{cache: cache, logger: logger},
		},
		logger: logger,
	}
}

// Resolve walks the tiers until one succeeds and reports which tier is
// authoritative. Tier failures are logged and swallowed; the caller
// always receives a usable, possibly empty, collection.
func (r *Resolver) Resolve(ctx context.Context) (*types.Collection, types.Tier) {
	for _, src := range r.sources {
		coll, err := src.Load(ctx)
		if err != nil {
			r.logger.WarnContext(ctx, "Data tier unavailable, falling through",
				slog.String("tier", string(src.Tier())),
				slog.Any("error", err))
			continue
		}
		r.logger.InfoContext(ctx, "Landmark data resolved",
			slog.String("tier", string(src.Tier())),
			slog.Int("landmarks", len(coll.Landmarks)))
		metrics.Get().ResolverTierTotal.WithLabelValues(string(src.Tier())).Inc()
		return coll, src.Tier()
	}

	// Unreachable: the bootstrap tier cannot fail. Kept as a guard
	// against a misassembled source list.
	empty := &types.Collection{Landmarks: []types.Landmark{}, LastUpdated: time.Now().UTC()}
	return empty, types.TierBootstrap
}

type remoteSource struct {
	remote RemoteLister
}

func (s *remoteSource) Tier() types.Tier { return types.TierRemote }

func (s *remoteSource) Load(ctx context.Context) (*types.Collection, error) {
	landmarks, err := s.remote.List(ctx)
	if err != nil {
		return nil, err
	}
	return &types.Collection{Landmarks: landmarks, LastUpdated: time.Now().UTC()}, nil
}

type cacheSource struct {
	cache CacheStore
}

func (s *cacheSource) Tier() types.Tier { return types.TierLocalCache }

func (s *cacheSource) Load(ctx context.Context) (*types.Collection, error) {
	return s.cache.Load(ctx)
}

// bundledSource reads the snapshot shipped with the binary and seeds the
// local cache with it, so the next offline start lands on the cache tier.
type bundledSource struct {
	cache  CacheStore
	logger *slog.Logger
}

func (s *bundledSource) Tier() types.Tier { return types.TierBundled }

func (s *bundledSource) Load(ctx context.Context) (*types.Collection, error) {
	var coll types.Collection
	if err := json.Unmarshal(bundledSnapshot, &coll); err != nil {
		return nil, fmt.Errorf("decode bundled snapshot: %w", types.ErrParse)
	}
	if err := s.cache.Save(ctx, &coll); err != nil {
		s.logger.WarnContext(ctx, "Could not seed local cache from bundled snapshot",
			slog.Any("error", err))
	}
	return &coll, nil
}

// bootstrapSource constructs an empty collection with a fresh timestamp
// and persists it. It never fails.
type bootstrapSource struct {
	cache  CacheStore
	logger *slog.Logger
}

func (s *bootstrapSource) Tier() types.Tier { return types.TierBootstrap }

func (s *bootstrapSource) Load(ctx context.Context) (*types.Collection, error) {
	coll := &types.Collection{
		Landmarks:   []types.Landmark{},
		LastUpdated: time.Now().UTC(),
	}
	if err := s.cache.Save(ctx, coll); err != nil {
		s.logger.WarnContext(ctx, "Could not persist bootstrap collection",
			slog.Any("error", err))
	}
	return coll, nil
}
