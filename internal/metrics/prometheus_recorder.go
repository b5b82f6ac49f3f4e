package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolves      *prom.CounterVec
	loaderCache   *prom.CounterVec
	searchLatency prom.Histogram
	searchResults prom.Histogram
	stageDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	indexedPages  prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "route_resolves_total",
			Help:      "Route resolutions by whether the path was registered",
		}, []string{"found"}),
		loaderCache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_loader_cache_total",
			Help:      "Page loader cache lookups by hit/miss",
		}, []string{"result"}),
		searchLatency: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of search index queries",
			Buckets:   []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		}),
		searchResults: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		indexedPages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_pages",
			Help:      "Pages in the live search index",
		}),
	}
	reg.MustRegister(pr.resolves, pr.loaderCache, pr.searchLatency, pr.searchResults,
		pr.stageDuration, pr.buildOutcome, pr.indexedPages)
	return pr
}

func (p *PrometheusRecorder) IncResolve(found bool) {
	p.resolves.WithLabelValues(strconv.FormatBool(found)).Inc()
}

func (p *PrometheusRecorder) IncLoaderCache(hit bool) {
	res := "miss"
	if hit {
		res = "hit"
	}
	p.loaderCache.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveSearch(d time.Duration, results int) {
	p.searchLatency.Observe(d.Seconds())
	p.searchResults.Observe(float64(results))
}

func (p *PrometheusRecorder) ObserveBuildStage(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetIndexedPages(n int) {
	p.indexedPages.Set(float64(n))
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors to reg.
func RegisterRuntimeCollectors(reg *prom.Registry) {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// HTTPHandler returns an http.Handler that serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
