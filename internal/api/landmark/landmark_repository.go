package landmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

var _ RecordStore = (*SupabaseRecordStore)(nil)

// RecordStore is the typed accessor over the remote landmark collection.
// Every failure is reported as a wrapped types.ErrTransport or
// types.ErrParse so callers can downgrade it to the local tier.
type RecordStore interface {
	// List fetches the full landmark collection.
	List(ctx context.Context) ([]types.Landmark, error)

	// Exists probes for a landmark id.
	Exists(ctx context.Context, id string) (bool, error)

	// Upsert writes a landmark, inserting or partially updating depending
	// on an existence probe. Two round trips, not atomic: a concurrent
	// delete between the probe and the write loses.
	Upsert(ctx context.Context, lm types.Landmark) error

	// Delete removes a landmark by id.
	Delete(ctx context.Context, id string) error

	// Available reports whether the remote tier is configured and the
	// last connectivity check succeeded. When false, operations defer
	// entirely to the local cache.
	Available() bool
}

const listCacheKey = "landmarks_list"

// supabaseRow is the flat row shape of the remote landmarks table. The
// remote schema only carries the ar/en localizations.
type supabaseRow struct {
	ID              string   `json:"id"`
	NameAr          string   `json:"name_ar"`
	NameEn          string   `json:"name_en"`
	Lat             float64  `json:"lat"`
	Lng             float64  `json:"lng"`
	DescriptionAr   string   `json:"description_ar"`
	DescriptionEn   string   `json:"description_en"`
	Recommendations []string `json:"recommendations"`
	Visits          int      `json:"visits"`
}

func rowFromLandmark(lm types.Landmark) supabaseRow {
	return supabaseRow{
		ID:              lm.ID,
		NameAr:          lm.Name["ar"],
		NameEn:          lm.Name["en"],
		Lat:             lm.Location.Lat,
		Lng:             lm.Location.Lng,
		DescriptionAr:   lm.Description["ar"],
		DescriptionEn:   lm.Description["en"],
		Recommendations: lm.Recommendations,
		Visits:          lm.Visits,
	}
}

func (r supabaseRow) toLandmark() types.Landmark {
	return types.Landmark{
		ID:              r.ID,
		Name:            types.LocalizedText{"ar": r.NameAr, "en": r.NameEn},
		Location:        types.Location{Lat: r.Lat, Lng: r.Lng},
		Description:     types.LocalizedText{"ar": r.DescriptionAr, "en": r.DescriptionEn},
		Recommendations: r.Recommendations,
		Visits:          r.Visits,
	}
}

// SupabaseRecordStore talks to the Supabase PostgREST surface of the
// landmarks table.
type SupabaseRecordStore struct {
	baseURL    string
	apiKey     string
	table      string
	client     *http.Client
	logger     *slog.Logger
	available  atomic.Bool
	configured bool

	// Hot read memo with the same 1h TTL the original applied to the
	// remote list.
	listCache *gocache.Cache
}

// NewSupabaseRecordStore builds the remote client. Empty credentials
// leave the store permanently unavailable (offline mode) rather than
// erroring.
func NewSupabaseRecordStore(baseURL, apiKey, table string, logger *slog.Logger) *SupabaseRecordStore {
	if table == "" {
		table = "landmarks"
	}
	s := &SupabaseRecordStore{
		baseURL:    baseURL,
		apiKey:     apiKey,
		table:      table,
		client:     &http.Client{},
		logger:     logger,
		configured: baseURL != "" && apiKey != "",
		listCache:  gocache.New(time.Hour, 10*time.Minute),
	}
	if !s.configured {
		logger.Warn("Supabase credentials missing, remote store disabled")
	}
	return s
}

// Available reports whether the remote tier is authoritative.
func (s *SupabaseRecordStore) Available() bool {
	return s.configured && s.available.Load()
}

func (s *SupabaseRecordStore) endpoint(query string) string {
	u := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table)
	if query != "" {
		u += "?" + query
	}
	return u
}

func (s *SupabaseRecordStore) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", types.ErrTransport, err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *SupabaseRecordStore) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", types.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: remote status %d", types.ErrTransport, resp.StatusCode)
	}
	return data, nil
}

// List fetches all landmark rows. A successful round trip marks the
// store available for this session; a failed one marks it unavailable.
func (s *SupabaseRecordStore) List(ctx context.Context) ([]types.Landmark, error) {
	ctx, span := otel.Tracer("SupabaseRecordStore").Start(ctx, "List", trace.WithAttributes(
		attribute.String("db.table", s.table),
	))
	defer span.End()

	if !s.configured {
		return nil, types.ErrRemoteUnavailable
	}

	if cached, ok := s.listCache.Get(listCacheKey); ok {
		span.SetStatus(codes.Ok, "Served from list memo")
		return cached.([]types.Landmark), nil
	}

	req, err := s.newRequest(ctx, http.MethodGet, s.endpoint("select=*"), nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	data, err := s.do(req)
	if err != nil {
		s.available.Store(false)
		span.RecordError(err)
		span.SetStatus(codes.Error, "List failed")
		return nil, err
	}

	var rows []supabaseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		s.available.Store(false)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unparseable list response")
		return nil, fmt.Errorf("%w: decode landmark list: %v", types.ErrParse, err)
	}

	landmarks := make([]types.Landmark, 0, len(rows))
	for _, r := range rows {
		landmarks = append(landmarks, r.toLandmark())
	}
	s.available.Store(true)
	s.listCache.Set(listCacheKey, landmarks, gocache.DefaultExpiration)
	span.SetAttributes(attribute.Int("landmarks.count", len(landmarks)))
	span.SetStatus(codes.Ok, "List fetched")
	return landmarks, nil
}

// Exists probes for a landmark id with a minimal select.
func (s *SupabaseRecordStore) Exists(ctx context.Context, id string) (bool, error) {
	ctx, span := otel.Tracer("SupabaseRecordStore").Start(ctx, "Exists", trace.WithAttributes(
		attribute.String("landmark.id", id),
	))
	defer span.End()

	if !s.Available() {
		return false, types.ErrRemoteUnavailable
	}

	query := "id=eq." + url.QueryEscape(id) + "&select=id"
	req, err := s.newRequest(ctx, http.MethodGet, s.endpoint(query), nil)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	data, err := s.do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Existence probe failed")
		return false, err
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("%w: decode existence probe: %v", types.ErrParse, err)
	}
	span.SetStatus(codes.Ok, "Probe completed")
	return len(rows) > 0, nil
}

// Upsert probes for the id, then PATCHes the existing row or POSTs a new
// one. PostgREST does offer an atomic merge via Prefer headers; the
// probe-then-branch shape is kept deliberately to match the system this
// replicates, race window included.
func (s *SupabaseRecordStore) Upsert(ctx context.Context, lm types.Landmark) error {
	ctx, span := otel.Tracer("SupabaseRecordStore").Start(ctx, "Upsert", trace.WithAttributes(
		attribute.String("landmark.id", lm.ID),
	))
	defer span.End()

	if !s.Available() {
		return types.ErrRemoteUnavailable
	}

	exists, err := s.Exists(ctx, lm.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Upsert probe failed")
		return err
	}

	payload, err := json.Marshal(rowFromLandmark(lm))
	if err != nil {
		return fmt.Errorf("encode landmark row: %w", err)
	}

	method := http.MethodPost
	endpoint := s.endpoint("")
	if exists {
		method = http.MethodPatch
		endpoint = s.endpoint("id=eq." + url.QueryEscape(lm.ID))
	}

	req, err := s.newRequest(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	if _, err := s.do(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Upsert write failed")
		return err
	}

	s.listCache.Delete(listCacheKey)
	s.logger.InfoContext(ctx, "Landmark replicated to remote store",
		slog.String("landmarkID", lm.ID), slog.Bool("update", exists))
	span.SetStatus(codes.Ok, "Upsert completed")
	return nil
}

// Delete removes a landmark row by id.
func (s *SupabaseRecordStore) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("SupabaseRecordStore").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("landmark.id", id),
	))
	defer span.End()

	if !s.Available() {
		return types.ErrRemoteUnavailable
	}

	req, err := s.newRequest(ctx, http.MethodDelete, s.endpoint("id=eq."+url.QueryEscape(id)), nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	if _, err := s.do(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Remote delete failed")
		return err
	}

	s.listCache.Delete(listCacheKey)
	span.SetStatus(codes.Ok, "Delete completed")
	return nil
}
