// Package events announces finished rebuilds to other services.
package events

import (
	"context"
	"time"
)

// RebuiltEvent is published after every successful build.
type RebuiltEvent struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version,omitempty"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	InputHash  string    `json:"input_hash"`
	Pages      int       `json:"pages"`
	Records    int       `json:"records"`
	DurationMS int64     `json:"duration_ms"`
	// Changed is false when the rebuild produced the same inputs as the
	// previous one.
	Changed bool `json:"changed"`
}

// Publisher delivers rebuild events.
type Publisher interface {
	PublishRebuilt(ctx context.Context, ev RebuiltEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishRebuilt(context.Context, RebuiltEvent) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }
