package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/events"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
)

func page(path, title, fingerprint string, headers ...pagedata.Header) pagedata.Page {
	p := pagedata.Page{Path: path, Title: title, Lang: "en-US", Fingerprint: fingerprint, Headers: headers}
	p.Normalize()
	return p
}

func testSite(t *testing.T, recorder metrics.Recorder) *build.Site {
	t.Helper()
	pages := []pagedata.Page{
		page("/", "Home", "fp-home"),
		page("/getting-started/quick-start.html", "Quick Start", "fp-qs",
			pagedata.Header{Level: 2, Title: "Setup", Slug: "setup", Link: "#setup"}),
		page("/getting-started/headers.html", "Headers", ""),
		page("/404.html", "", ""),
	}
	var rs []routes.PageRoute
	var records []search.Record
	for _, p := range pages {
		rs = append(rs, routes.PageRoute{Path: p.Path, Loader: routes.Static(p), Meta: routes.Meta{Title: p.Title}})
		records = append(records, search.RecordFromPage(p, "/"))
	}
	table, err := routes.NewTable(rs, map[string]string{"/quick-start.html": "/getting-started/quick-start.html"})
	require.NoError(t, err)
	cfg := &siteconfig.SiteConfig{Lang: "en-US", Title: "Volga", Navbar: []siteconfig.NavItem{{Text: "Home", Link: "/"}}}
	return build.NewSite(cfg, table, records, 2, siteconfig.BuildThemeData(cfg), manifest.Info{ID: "build-1"}, recorder)
}

func newTestServer(t *testing.T, opts Options) (*Server, *build.Holder) {
	t.Helper()
	holder := &build.Holder{}
	holder.Replace(testSite(t, opts.Recorder))
	return New(holder, opts), holder
}

func get(t *testing.T, s *Server, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[responses.HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "build-1", body.BuildID)
	assert.Equal(t, 4, body.Pages)
	assert.NotEmpty(t, body.Version)
}

func TestHealth_BeforeFirstBuild(t *testing.T) {
	s := New(&build.Holder{}, Options{HealthPath: "/healthz"})
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "starting", decode[responses.HealthResponse](t, rec).Status)

	rec = get(t, s, "/api/routes")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[ferrors.HTTPErrorResponse](t, rec)
	assert.Equal(t, "site not built yet", body.Error)
	assert.True(t, body.Retryable)
}

func TestResolve_Found(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := get(t, s, "/api/resolve?path=/getting-started/quick-start.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"fp-qs"`, rec.Header().Get("ETag"))

	body := decode[responses.ResolveResponse](t, rec)
	assert.True(t, body.Found)
	assert.Equal(t, "Quick Start", body.Title)
	require.NotNil(t, body.Page)
	require.Len(t, body.Page.Headers, 1)
	assert.Equal(t, "setup", body.Page.Headers[0].Slug)
}

func TestResolve_Redirect(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	body := decode[responses.ResolveResponse](t, get(t, s, "/api/resolve?path=/quick-start.html"))
	assert.True(t, body.Found)
	assert.Equal(t, "/getting-started/quick-start.html", body.Path)
	assert.Equal(t, "/quick-start.html", body.RedirectedFrom)
}

func TestResolve_NotFoundServesNotFoundPage(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := get(t, s, "/api/resolve?path=/nope.html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[responses.ResolveResponse](t, rec)
	assert.False(t, body.Found)
	assert.Equal(t, routes.NotFoundPath, body.Path)
	require.NotNil(t, body.Page)
	assert.Equal(t, routes.NotFoundPath, body.Page.Path)
}

func TestResolve_ConditionalRequest(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := get(t, s, "/api/resolve?path=/", "If-None-Match", `"fp-home"`)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = get(t, s, "/api/resolve?path=/", "If-None-Match", `"stale"`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResolve_MissingPathResolvesToNotFound(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	for _, target := range []string{"/api/resolve", "/api/resolve?path="} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		body := decode[responses.ResolveResponse](t, rec)
		assert.False(t, body.Found)
		assert.Equal(t, routes.NotFoundPath, body.Path)
		require.NotNil(t, body.Page)
	}
}

func TestSearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	s, _ := newTestServer(t, Options{Recorder: rec})

	results := decode[[]search.Result](t, get(t, s, "/api/search?q=setup"))
	require.Len(t, results, 1)
	assert.Equal(t, "Setup", results[0].MatchedHeading)
	assert.Equal(t, "/getting-started/quick-start.html#setup", results[0].Link)

	// The index default of 2 applies to a malformed limit.
	results = decode[[]search.Result](t, get(t, s, "/api/search?q=e&limit=abc"))
	assert.Len(t, results, 2)
	results = decode[[]search.Result](t, get(t, s, "/api/search?q=e&limit=1"))
	assert.Len(t, results, 1)

	results = decode[[]search.Result](t, get(t, s, "/api/search?q=e&locale=/ru/"))
	assert.Empty(t, results)

	empty := get(t, s, "/api/search")
	assert.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())
}

func TestThemeAndRoutes(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	theme := decode[siteconfig.ThemeData](t, get(t, s, "/api/theme"))
	require.Len(t, theme.Navbar, 1)
	assert.Equal(t, "Home", theme.Navbar[0].Text)

	list := decode[[]responses.RouteResponse](t, get(t, s, "/api/routes"))
	require.Len(t, list, 4)
	assert.Equal(t, responses.RouteResponse{Path: "/", Title: "Home"}, list[0])
	assert.Equal(t, routes.NotFoundPath, list[3].Path)
}

func TestReplaceIsVisibleToHandlers(t *testing.T) {
	s, holder := newTestServer(t, Options{})
	next := testSite(t, nil)
	next.Info.ID = "build-2"
	holder.Replace(next)

	assert.Equal(t, "build-2", decode[responses.HealthResponse](t, get(t, s, "/health")).BuildID)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	s, _ := newTestServer(t, Options{
		Recorder:       recorder,
		MetricsPath:    "/metrics",
		MetricsHandler: metrics.HTTPHandler(reg),
	})
	get(t, s, "/api/resolve?path=/")

	rec := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docsite_")

	noMetrics, _ := newTestServer(t, Options{})
	assert.Equal(t, http.StatusNotFound, get(t, noMetrics, "/metrics").Code)
}

func TestEventsStream(t *testing.T) {
	broker := events.NewBroker()
	s, _ := newTestServer(t, Options{Broker: broker})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, broker.PublishRebuilt(ctx, events.RebuiltEvent{ID: "ev-1", Pages: 4, Changed: true}))

	var frame []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			if len(frame) > 0 {
				break
			}
			continue
		}
		frame = append(frame, line)
	}
	require.Len(t, frame, 3)
	assert.Equal(t, "id: ev-1", frame[0])
	assert.Equal(t, "event: rebuilt", frame[1])
	var ev events.RebuiltEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame[2], "data: ")), &ev))
	assert.Equal(t, 4, ev.Pages)

	require.NoError(t, broker.Close())
	_, err = reader.ReadString('\n')
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s, _ := newTestServer(t, Options{Addr: "127.0.0.1:0"})
	require.NoError(t, s.Start(context.Background()))
	require.Error(t, s.Start(context.Background()))

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
