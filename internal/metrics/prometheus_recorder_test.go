package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_Counters(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncResolve(true)
	pr.IncResolve(false)
	pr.IncResolve(false)
	pr.IncLoaderCache(true)
	pr.IncBuildOutcome(BuildInvalid)
	pr.SetIndexedPages(12)
	pr.ObserveSearch(200*time.Microsecond, 3)
	pr.ObserveBuildStage("scan", 15*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.resolves.WithLabelValues("false")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.resolves.WithLabelValues("true")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.loaderCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("invalid")), 0)
	assert.InDelta(t, 12, testutil.ToFloat64(pr.indexedPages), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestHTTPHandler_ServesMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncResolve(true)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docsite_route_resolves_total")
}

func TestOrNoop(t *testing.T) {
	assert.IsType(t, NoopRecorder{}, OrNoop(nil))
	pr := NewPrometheusRecorder(nil)
	assert.Same(t, pr, OrNoop(pr))
}
