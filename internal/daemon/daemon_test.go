package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/events"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
)

const siteYAML = `lang: en-US
title: Volga
navbar:
  - text: Home
    link: /
sidebar:
  - text: Home
    link: /
  - text: Getting Started
    prefix: /getting-started/
    children:
      - quick-start
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	docsDir := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(docsDir, "README.md"), "# Home\n")
	writeFile(t, filepath.Join(docsDir, "getting-started", "quick-start.md"), "# Quick Start\n\n## Setup\n")
	writeFile(t, filepath.Join(root, "site.yaml"), siteYAML)

	cfg := config.Default()
	cfg.Source.DocsDir = docsDir
	cfg.Source.SiteConfig = filepath.Join(root, "site.yaml")
	cfg.Output.Directory = filepath.Join(root, "out")
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Watch.Debounce = 50 * time.Millisecond
	cfg.Git.Enabled = false
	return cfg
}

func TestRebuild_FailureKeepsPreviousSite(t *testing.T) {
	cfg := testConfig(t)
	d := New(cfg, Options{})
	ctx := context.Background()

	res, err := d.Rebuild(ctx, "test")
	require.NoError(t, err)
	first := d.Holder().Current()
	require.NotNil(t, first)
	assert.Same(t, res.Site, first)

	writeFile(t, cfg.Source.SiteConfig, "navbar: [unterminated\n")
	_, err = d.Rebuild(ctx, "test")
	require.Error(t, err)
	assert.Same(t, first, d.Holder().Current())

	// Navigation pointing at a missing page is rejected the same way.
	writeFile(t, cfg.Source.SiteConfig, siteYAML+"      - missing\n")
	res, err = d.Rebuild(ctx, "test")
	require.Error(t, err)
	assert.NotEmpty(t, res.Violations)
	assert.Same(t, first, d.Holder().Current())
	assert.Same(t, res, d.LastResult())
}

func TestTrigger_Coalesces(t *testing.T) {
	d := New(testConfig(t), Options{})
	d.Trigger("a")
	d.Trigger("b")
	d.Trigger("c")
	assert.Len(t, d.triggers, 1)
	assert.Equal(t, "a", <-d.triggers)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	cfg := testConfig(t)
	var calls atomic.Int32
	var mu sync.Mutex
	var reasons []string
	w, err := NewWatcher(cfg.Source.DocsDir, cfg.Source.SiteConfig, 100*time.Millisecond, func(reason string) {
		calls.Add(1)
		mu.Lock()
		reasons = append(reasons, reason)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop() })

	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(cfg.Source.DocsDir, "getting-started", "quick-start.md"), "# Quick Start\n")
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	writeFile(t, cfg.Source.SiteConfig, siteYAML)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"docs", "site_config"}, reasons)
	mu.Unlock()
}

func TestWatcher_IgnoresHiddenAndOtherFiles(t *testing.T) {
	cfg := testConfig(t)
	var calls atomic.Int32
	writeFile(t, filepath.Join(cfg.Source.DocsDir, ".vuepress", "styles.css"), "")
	w, err := NewWatcher(cfg.Source.DocsDir, cfg.Source.SiteConfig, 30*time.Millisecond, func(string) { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop() })

	writeFile(t, filepath.Join(cfg.Source.DocsDir, ".vuepress", "styles.css"), "body{}")
	writeFile(t, filepath.Join(filepath.Dir(cfg.Source.SiteConfig), "notes.txt"), "x")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_SiteConfigInsideHiddenDocsDir(t *testing.T) {
	cfg := testConfig(t)
	cfgPath := filepath.Join(cfg.Source.DocsDir, ".vuepress", "site.yaml")
	writeFile(t, cfgPath, siteYAML)

	var mu sync.Mutex
	var reasons []string
	w, err := NewWatcher(cfg.Source.DocsDir, cfgPath, 30*time.Millisecond, func(reason string) {
		mu.Lock()
		reasons = append(reasons, reason)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop() })

	writeFile(t, cfgPath, siteYAML+"description: Rust web framework\n")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reasons) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Other files next to the site config stay ignored.
	writeFile(t, filepath.Join(cfg.Source.DocsDir, ".vuepress", "styles.css"), "body{}")
	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"site_config"}, reasons)
	mu.Unlock()
}

func TestWatcher_StopCancelsPendingTrigger(t *testing.T) {
	cfg := testConfig(t)
	var calls atomic.Int32
	w, err := NewWatcher(cfg.Source.DocsDir, cfg.Source.SiteConfig, 200*time.Millisecond, func(string) { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.schedule("docs")
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestScheduler_ScheduleEvery(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	_, err = s.ScheduleEvery("bad", 0, func() {})
	require.Error(t, err)

	var runs atomic.Int32
	id, err := s.ScheduleEvery("tick", 50*time.Millisecond, func() { runs.Add(1) })
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	s.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestRun_ServesAndRebuildsOnChange(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watch.Enabled = true
	d := New(cfg, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	select {
	case <-d.Ready():
	case err := <-errCh:
		t.Fatalf("daemon exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon not ready")
	}

	base := "http://" + d.Addr()
	routeCount := func() int {
		resp, err := http.Get(base + "/api/routes")
		if err != nil {
			return -1
		}
		defer resp.Body.Close()
		var list []responses.RouteResponse
		if json.NewDecoder(resp.Body).Decode(&list) != nil {
			return -1
		}
		return len(list)
	}
	assert.Equal(t, 3, routeCount())

	sub, unsubscribe := d.Broker().Subscribe()
	defer unsubscribe()

	writeFile(t, filepath.Join(cfg.Source.DocsDir, "getting-started", "headers.md"), "# Headers\n")
	require.Eventually(t, func() bool { return routeCount() == 4 }, 5*time.Second, 20*time.Millisecond)

	select {
	case ev := <-sub:
		assert.True(t, ev.Changed)
		assert.Equal(t, 4, ev.Pages)
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild event")
	}

	// A broken site config is logged and the old site stays online.
	writeFile(t, cfg.Source.SiteConfig, "sidebar: {broken\n")
	require.Eventually(t, func() bool {
		last := d.LastResult()
		return last != nil && last.Status != "success"
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 4, routeCount())

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	_, err := http.Get(base + "/health")
	assert.Error(t, err)
}

func TestRun_InitialBuildFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source.SiteConfig = filepath.Join(t.TempDir(), "missing.yaml")
	d := New(cfg, Options{Publisher: events.NoopPublisher{}})

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, d.Holder().Current())
}
