package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/events"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/observability"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// keepAliveInterval spaces comment lines on idle event streams.
const keepAliveInterval = 30 * time.Second

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// site returns the current site or writes 503 when no build has succeeded yet.
func (s *Server) site(w http.ResponseWriter, r *http.Request) *build.Site {
	site := s.holder.Current()
	if site == nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.RuntimeError("site not built yet").Retryable().Build())
	}
	return site
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Resolved(),
		Uptime:    time.Since(s.started).Seconds(),
	}
	status := http.StatusOK
	if site := s.holder.Current(); site != nil {
		resp.BuildID = site.Info.ID
		resp.Pages = site.Routes.Len()
	} else {
		resp.Status = "starting"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	site := s.site(w, r)
	if site == nil {
		return
	}
	// A missing path is just another unregistered one.
	res, page, err := site.Fetcher.Fetch(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	status := http.StatusOK
	if !res.Found {
		status = http.StatusNotFound
	}
	if page.Fingerprint != "" {
		etag := strconv.Quote(page.Fingerprint)
		w.Header().Set("ETag", etag)
		if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	writeJSON(w, status, responses.ResolveResponse{
		Path:           res.Route.Path,
		Title:          res.Route.Meta.Title,
		Found:          res.Found,
		RedirectedFrom: res.RedirectedFrom,
		Page:           page,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	site := s.site(w, r)
	if site == nil {
		return
	}
	q := r.URL.Query()
	// A malformed limit selects the index default.
	limit, _ := strconv.Atoi(q.Get("limit"))

	start := time.Now()
	results := site.Index.Search(q.Get("q"), search.Options{Locale: q.Get("locale"), Limit: limit})
	s.recorder.ObserveSearch(time.Since(start), len(results))
	observability.DebugContext(r.Context(), "Search served",
		logfields.Query(q.Get("q")), logfields.Locale(q.Get("locale")), logfields.Count(len(results)))
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	site := s.site(w, r)
	if site == nil {
		return
	}
	writeJSON(w, http.StatusOK, site.Theme)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	site := s.site(w, r)
	if site == nil {
		return
	}
	out := make([]responses.RouteResponse, 0, site.Routes.Len())
	for _, rt := range site.Routes.Routes() {
		out = append(out, responses.RouteResponse{Path: rt.Path, Title: rt.Meta.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEvents streams rebuild events as server-sent events until the
// client goes away or the broker closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.adapter.WriteErrorResponse(w, r, ferrors.InternalError("streaming unsupported").Build())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ch, unsubscribe := s.opts.Broker.Subscribe()
	defer unsubscribe()
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev events.RebuiltEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "id: %s\nevent: rebuilt\ndata: %s\n\n", ev.ID, data)
}
