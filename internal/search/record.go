package search

import "git.home.luguber.info/inful/docsite/internal/pagedata"

// Record is the indexed representation of one page. Its JSON form is the
// client-side search index entry and must stay bit-exact.
type Record struct {
	Title       string            `json:"title"`
	Headers     []pagedata.Header `json:"headers"`
	Path        string            `json:"path"`
	PathLocale  string            `json:"pathLocale"`
	ExtraFields []string          `json:"extraFields"`
}

// RecordFromPage derives the search record of a page.
func RecordFromPage(p pagedata.Page, pathLocale string) Record {
	return Record{
		Title:       p.Title,
		Headers:     pagedata.NormalizeHeaders(cloneHeaders(p.Headers)),
		Path:        p.Path,
		PathLocale:  pathLocale,
		ExtraFields: []string{},
	}
}

// normalize makes nil collections marshal as empty arrays.
func (r *Record) normalize() {
	r.Headers = pagedata.NormalizeHeaders(r.Headers)
	if r.ExtraFields == nil {
		r.ExtraFields = []string{}
	}
}

func cloneHeaders(hs []pagedata.Header) []pagedata.Header {
	if hs == nil {
		return nil
	}
	out := make([]pagedata.Header, len(hs))
	for i, h := range hs {
		out[i] = h
		out[i].Children = cloneHeaders(h.Children)
	}
	return out
}
