// Package cache provides the durable local tier: a SQLite-backed
// key-value store holding the serialized landmark collection and the
// per-landmark photo memories. It is the fallback data source when the
// remote store is unreachable and the write-through backstop for every
// admin mutation.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

const collectionKey = "rawi_db"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS memories (
	id          TEXT PRIMARY KEY,
	landmark_id TEXT NOT NULL,
	image_data  TEXT NOT NULL,
	visitor     TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_memories_landmark ON memories(landmark_id, created_at);
`

// Store wraps a sql.DB with the cache operations. All operations are
// best-effort: callers downgrade write failures to logged warnings.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &Store{conn: conn, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Load reads the cached collection. Returns types.ErrNotFound when no
// collection has ever been persisted.
func (s *Store) Load(ctx context.Context) (*types.Collection, error) {
	var raw string
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, collectionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: load collection: %w", err)
	}

	var coll types.Collection
	if err := json.Unmarshal([]byte(raw), &coll); err != nil {
		return nil, fmt.Errorf("cache: decode collection: %w", types.ErrParse)
	}
	return &coll, nil
}

// Save persists the collection, stamping LastUpdated with the current
// time.
func (s *Store) Save(ctx context.Context, coll *types.Collection) error {
	coll.LastUpdated = time.Now().UTC()
	raw, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("cache: encode collection: %w", err)
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		collectionKey, string(raw))
	if err != nil {
		return fmt.Errorf("cache: save collection: %w", err)
	}
	s.logger.DebugContext(ctx, "Collection persisted to local cache",
		slog.Int("landmarks", len(coll.Landmarks)))
	return nil
}

// LoadMemories returns the photo memories of a landmark, oldest first.
// A landmark with no memories yields an empty slice, not an error.
func (s *Store) LoadMemories(ctx context.Context, landmarkID string) ([]types.Memory, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, landmark_id, image_data, visitor, created_at
		FROM memories WHERE landmark_id = ? ORDER BY created_at, id`,
		landmarkID)
	if err != nil {
		return nil, fmt.Errorf("cache: load memories: %w", err)
	}
	defer rows.Close()

	memories := make([]types.Memory, 0)
	for rows.Next() {
		var m types.Memory
		if err := rows.Scan(&m.ID, &m.LandmarkID, &m.ImageData, &m.VisitorName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("cache: scan memory: %w", err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: iterate memories: %w", err)
	}
	return memories, nil
}

// AppendMemory adds a photo memory to a landmark's wall. The sequence is
// append-only; nothing ever rewrites or caps it.
func (s *Store) AppendMemory(ctx context.Context, landmarkID string, m types.Memory) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO memories (id, landmark_id, image_data, visitor, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, landmarkID, m.ImageData, m.VisitorName, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("cache: append memory: %w", err)
	}
	return nil
}
