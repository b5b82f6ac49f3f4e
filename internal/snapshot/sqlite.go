package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the snapshot database at dbPath. Use
// ":memory:" for a throwaway store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		input_hash TEXT NOT NULL,
		site_config BLOB NOT NULL,
		routes BLOB NOT NULL,
		route_count INTEGER NOT NULL,
		search_index BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put stores a snapshot.
func (s *SQLiteStore) Put(ctx context.Context, snap *Snapshot) (string, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	routes, err := json.Marshal(snap.Routes)
	if err != nil {
		return "", fmt.Errorf("marshal routes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO snapshots (id, created_at, label, input_hash, site_config, routes, route_count, search_index) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		snap.ID, snap.CreatedAt.UnixMilli(), snap.Label, snap.InputHash,
		orEmpty(snap.SiteConfig, "{}"), routes, len(snap.Routes), orEmpty(snap.SearchIndex, "[]"),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return snap.ID, nil
}

// Get retrieves a snapshot by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	return s.queryOne(ctx, "WHERE id = ?", id)
}

// Latest retrieves the newest snapshot.
func (s *SQLiteStore) Latest(ctx context.Context) (*Snapshot, error) {
	return s.queryOne(ctx, "ORDER BY seq DESC LIMIT 1")
}

func (s *SQLiteStore) queryOne(ctx context.Context, clause string, args ...any) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, created_at, label, input_hash, site_config, routes, search_index FROM snapshots "+clause, args...)

	var snap Snapshot
	var createdAt int64
	var siteConfig, routes, searchIndex []byte
	err := row.Scan(&snap.ID, &createdAt, &snap.Label, &snap.InputHash, &siteConfig, &routes, &searchIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	snap.CreatedAt = time.UnixMilli(createdAt).UTC()
	snap.SiteConfig = siteConfig
	snap.SearchIndex = searchIndex
	if err := json.Unmarshal(routes, &snap.Routes); err != nil {
		return nil, fmt.Errorf("unmarshal routes: %w", err)
	}
	return &snap, nil
}

// List returns snapshot summaries, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, created_at, label, input_hash, route_count FROM snapshots ORDER BY seq DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		var createdAt int64
		if err := rows.Scan(&sum.ID, &createdAt, &sum.Label, &sum.InputHash, &sum.Routes); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Prune keeps the newest keep snapshots.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM snapshots WHERE seq NOT IN (SELECT seq FROM snapshots ORDER BY seq DESC LIMIT ?)", keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return int(n), nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func orEmpty(raw json.RawMessage, empty string) []byte {
	if len(raw) == 0 {
		return []byte(empty)
	}
	return raw
}
