package routes

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
	"golang.org/x/sync/singleflight"
)

// Fetcher resolves paths against a Table and memoizes loaded pages per route
// path for its lifetime. Concurrent loads of the same route share one loader
// call. Failed loads are not cached.
type Fetcher struct {
	table    *Table
	recorder metrics.Recorder

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*pagedata.Page
}

// NewFetcher creates a Fetcher over t. A nil recorder disables metrics.
func NewFetcher(t *Table, recorder metrics.Recorder) *Fetcher {
	return &Fetcher{
		table:    t,
		recorder: metrics.OrNoop(recorder),
		cache:    make(map[string]*pagedata.Page),
	}
}

// Table returns the route table the fetcher resolves against.
func (f *Fetcher) Table() *Table { return f.table }

// Fetch resolves path and loads its page. The returned page is shared and
// must be treated as read-only.
func (f *Fetcher) Fetch(ctx context.Context, path string) (Resolution, *pagedata.Page, error) {
	res := f.table.Resolve(path)
	f.recorder.IncResolve(res.Found)

	key := res.Route.Path
	f.mu.RLock()
	page, ok := f.cache[key]
	f.mu.RUnlock()
	if ok {
		f.recorder.IncLoaderCache(true)
		return res, page, nil
	}
	f.recorder.IncLoaderCache(false)

	// The shared load must not be aborted by whichever caller happened to start it.
	loadCtx := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		f.mu.RLock()
		cached, ok := f.cache[key]
		f.mu.RUnlock()
		if ok {
			return cached, nil
		}
		p, err := res.Route.Loader.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.cache[key] = p
		f.mu.Unlock()
		return p, nil
	})

	select {
	case <-ctx.Done():
		return res, nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return res, nil, r.Err
		}
		return res, r.Val.(*pagedata.Page), nil
	}
}

// cached reports how many pages are memoized.
func (f *Fetcher) cached() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}
