package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
)

// Bundle is everything a build hands to the rendering side.
type Bundle struct {
	Info      Info
	Pages     []pagedata.Page
	Redirects map[string]string
	Search    []search.Record
	Theme     siteconfig.ThemeData
}

// routeEntry is one value of the routes map.
type routeEntry struct {
	Loader string `json:"loader"`
	Meta   struct {
		Title string `json:"title"`
	} `json:"meta"`
}

// Write renders b into dir/internal. The directory is assembled next to
// the live one and swapped in, so readers never see a half-written output.
// JSON is always written; FormatJS adds the ES module forms.
func Write(dir string, b Bundle, formats []Format) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("dir", dir).Build()
	}
	staging, err := os.MkdirTemp(dir, ".internal-*")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create staging directory").
			WithContext("dir", dir).Build()
	}
	defer func() { _ = os.RemoveAll(staging) }()

	withJS := slices.Contains(formats, FormatJS)
	b.Info.Formats = []string{string(FormatJSON)}
	if withJS {
		b.Info.Formats = append(b.Info.Formats, string(FormatJS))
	}
	b.Info.Pages = len(b.Pages)
	b.Info.Records = len(b.Search)

	w := &writer{root: staging, js: withJS}
	for _, p := range b.Pages {
		p.Normalize()
		w.json(PageFile(p.Path), p)
	}
	w.module(RoutesName, "routes", routesJSON(b.Pages))
	redirects := b.Redirects
	if redirects == nil {
		redirects = map[string]string{}
	}
	w.value(RedirectsName, "redirects", redirects)
	records := b.Search
	if records == nil {
		records = []search.Record{}
	}
	w.value(SearchName, "SEARCH_INDEX", records)
	w.value(ThemeName, "themeData", b.Theme)
	w.json(InfoFile, &b.Info)
	if w.err != nil {
		return w.err
	}

	live := filepath.Join(dir, InternalDir)
	if err := os.RemoveAll(live); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "remove previous output").
			WithContext("dir", live).Build()
	}
	if err := os.Rename(staging, live); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "publish output").
			WithContext("dir", live).Build()
	}
	return nil
}

// routesJSON keeps the route order of pages, which a Go map would lose.
func routesJSON(pages []pagedata.Page) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pages {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(p.Path)
		var e routeEntry
		e.Loader = PageFile(p.Path)
		e.Meta.Title = p.Title
		val, _ := json.Marshal(e)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// writer records the first error and turns later calls into no-ops.
type writer struct {
	root string
	js   bool
	err  error
}

func (w *writer) value(name, export string, v any) {
	if w.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		w.err = errors.WrapError(err, errors.CategoryInternal, "encode "+name).Build()
		return
	}
	w.module(name, export, data)
}

func (w *writer) module(name, export string, data []byte) {
	w.file(name+".json", data)
	if w.js {
		w.file(name+".js", []byte(fmt.Sprintf("export const %s = %s\n", export, data)))
	}
}

func (w *writer) json(rel string, v any) {
	if w.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		w.err = errors.WrapError(err, errors.CategoryInternal, "encode "+rel).Build()
		return
	}
	w.file(rel, data)
}

func (w *writer) file(rel string, data []byte) {
	if w.err != nil {
		return
	}
	full := filepath.Join(w.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		w.err = errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("file", rel).Build()
		return
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		w.err = errors.WrapError(err, errors.CategoryFileSystem, "write output file").
			WithContext("file", rel).Build()
	}
}
