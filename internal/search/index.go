// Package search implements the client-side search index of the site: a flat,
// immutable list of page records queried by case-insensitive substring.
package search

import (
	"strings"
	"sync/atomic"

	"git.home.luguber.info/inful/docsite/internal/pagedata"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultLimit is the result cap used when neither the query nor the index
// configures one.
const DefaultLimit = 10

// Options scope a single query.
type Options struct {
	// Locale restricts results to records whose PathLocale equals it. Empty means all locales.
	Locale string
	// Limit caps the number of results. Values <= 0 select the index default.
	Limit int
}

// Result is one search suggestion.
type Result struct {
	Path           string `json:"path"`
	Title          string `json:"title"`
	Locale         string `json:"locale"`
	MatchedHeading string `json:"matchedHeading,omitempty"`
	Link           string `json:"link"`
}

// Index is safe for concurrent use. Queries read an immutable snapshot;
// Rebuild swaps the snapshot wholesale.
type Index struct {
	snap         atomic.Pointer[snapshot]
	defaultLimit int
}

type snapshot struct {
	records []Record
	entries []entry
}

// entry holds the case-folded searchable text of one record.
type entry struct {
	title   string
	headers []foldedHeader
	extra   []string
}

type foldedHeader struct {
	header pagedata.Header
	folded string
}

// NewIndex creates an index over records. defaultLimit <= 0 selects DefaultLimit.
func NewIndex(records []Record, defaultLimit int) *Index {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	ix := &Index{defaultLimit: defaultLimit}
	ix.Rebuild(records)
	return ix
}

// Rebuild atomically replaces the entire index. Queries running concurrently
// finish against the snapshot they started with.
func (ix *Index) Rebuild(records []Record) {
	s := &snapshot{
		records: make([]Record, len(records)),
		entries: make([]entry, len(records)),
	}
	for i, r := range records {
		r.Headers = cloneHeaders(r.Headers)
		r.ExtraFields = append([]string(nil), r.ExtraFields...)
		r.normalize()
		s.records[i] = r

		e := entry{title: fold(r.Title)}
		pagedata.Flatten(r.Headers, func(h pagedata.Header) {
			e.headers = append(e.headers, foldedHeader{header: h, folded: fold(h.Title)})
		})
		for _, f := range r.ExtraFields {
			e.extra = append(e.extra, fold(f))
		}
		s.entries[i] = e
	}
	ix.snap.Store(s)
}

// Len returns the number of records in the current snapshot.
func (ix *Index) Len() int {
	return len(ix.snap.Load().records)
}

// Records returns a copy of the records in the current snapshot.
func (ix *Index) Records() []Record {
	s := ix.snap.Load()
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = r
		out[i].Headers = cloneHeaders(r.Headers)
		out[i].ExtraFields = append([]string{}, r.ExtraFields...)
	}
	return out
}

// Search returns the records matching query. Title matches come before
// heading matches, which come before extra-field matches; within each tier
// results keep index order and, for headings, document order. An empty query
// yields an empty result.
func (ix *Index) Search(query string, opts Options) []Result {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return []Result{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = ix.defaultLimit
	}

	s := ix.snap.Load()
	var titles, headings, extras []Result
	for i := range s.records {
		rec := &s.records[i]
		if opts.Locale != "" && rec.PathLocale != opts.Locale {
			continue
		}
		e := &s.entries[i]

		if strings.Contains(e.title, q) {
			titles = append(titles, Result{Path: rec.Path, Title: rec.Title, Locale: rec.PathLocale, Link: rec.Path})
			if len(titles) >= limit {
				// Later records can only add lower-ranked results.
				break
			}
		}
		if len(headings) < limit {
			for _, fh := range e.headers {
				if strings.Contains(fh.folded, q) {
					headings = append(headings, Result{
						Path:           rec.Path,
						Title:          rec.Title,
						Locale:         rec.PathLocale,
						MatchedHeading: fh.header.Title,
						Link:           rec.Path + fh.header.Link,
					})
				}
			}
		}
		if len(extras) < limit {
			for _, f := range e.extra {
				if strings.Contains(f, q) {
					extras = append(extras, Result{Path: rec.Path, Title: rec.Title, Locale: rec.PathLocale, Link: rec.Path})
					break
				}
			}
		}
	}

	out := make([]Result, 0, min(limit, len(titles)+len(headings)+len(extras)))
	for _, tier := range [][]Result{titles, headings, extras} {
		for _, r := range tier {
			if len(out) == limit {
				return out
			}
			out = append(out, r)
		}
	}
	return out
}

// fold normalizes s for caseless matching.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
