// Package snapshot keeps the history of built sites: every build can record
// the site config, route list and search index it produced. Snapshots of
// different site-config versions are stored side by side and never merged.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown snapshot ids.
var ErrNotFound = errors.New("snapshot not found")

// Route is the stored form of one route table entry.
type Route struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Snapshot is one recorded build.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Label     string    `json:"label,omitempty"`
	// InputHash identifies the docs and site config the build was made from.
	InputHash   string          `json:"input_hash"`
	SiteConfig  json.RawMessage `json:"site_config"`
	Routes      []Route         `json:"routes"`
	SearchIndex json.RawMessage `json:"search_index"`
}

// Summary is the listing form of a snapshot.
type Summary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Label     string    `json:"label,omitempty"`
	InputHash string    `json:"input_hash"`
	Routes    int       `json:"routes"`
}

// Store persists snapshots.
type Store interface {
	// Put stores s, assigning ID and CreatedAt when they are empty, and
	// returns the id.
	Put(ctx context.Context, s *Snapshot) (string, error)
	Get(ctx context.Context, id string) (*Snapshot, error)
	// Latest returns the most recent snapshot, or ErrNotFound.
	Latest(ctx context.Context) (*Snapshot, error)
	// List returns summaries, newest first. limit <= 0 lists all.
	List(ctx context.Context, limit int) ([]Summary, error)
	// Prune deletes all but the newest keep snapshots and returns how many went.
	Prune(ctx context.Context, keep int) (int, error)
	Close() error
}
