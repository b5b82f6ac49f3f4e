package metrics

import "time"

// BuildOutcome enumerates final build states.
type BuildOutcome string

const (
	BuildSuccess BuildOutcome = "success"
	BuildInvalid BuildOutcome = "invalid" // site config violations
	BuildFailed  BuildOutcome = "failed"
)

// Recorder defines the observability hooks for route resolution, search and builds.
type Recorder interface {
	IncResolve(found bool)
	IncLoaderCache(hit bool)
	ObserveSearch(d time.Duration, results int)
	ObserveBuildStage(stage string, d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	SetIndexedPages(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncResolve(bool)                         {}
func (NoopRecorder) IncLoaderCache(bool)                     {}
func (NoopRecorder) ObserveSearch(time.Duration, int)        {}
func (NoopRecorder) ObserveBuildStage(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)            {}
func (NoopRecorder) SetIndexedPages(int)                     {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
