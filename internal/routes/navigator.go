package routes

import (
	"context"
	"errors"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/pagedata"
)

// ErrSuperseded is returned to a navigation that was overtaken by a newer one
// before its page finished loading.
var ErrSuperseded = errors.New("navigation superseded by a newer request")

// Navigation is a completed navigation.
type Navigation struct {
	Resolution
	Page *pagedata.Page
	Seq  uint64
}

// Navigator applies last-request-wins semantics on top of a Fetcher: only the
// most recently started navigation may become current.
type Navigator struct {
	fetcher *Fetcher

	mu      sync.Mutex
	latest  uint64
	current *Navigation
}

// NewNavigator creates a Navigator over f.
func NewNavigator(f *Fetcher) *Navigator {
	return &Navigator{fetcher: f}
}

// Navigate starts a navigation to path. If another navigation starts before
// this one finishes loading, this one is abandoned with ErrSuperseded.
func (n *Navigator) Navigate(ctx context.Context, path string) (*Navigation, error) {
	n.mu.Lock()
	n.latest++
	seq := n.latest
	n.mu.Unlock()

	res, page, err := n.fetcher.Fetch(ctx, path)

	n.mu.Lock()
	defer n.mu.Unlock()
	if seq != n.latest {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	n.current = &Navigation{Resolution: res, Page: page, Seq: seq}
	return n.current, nil
}

// Current returns the last navigation that completed without being
// superseded, or nil.
func (n *Navigator) Current() *Navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
