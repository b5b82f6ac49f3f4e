package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
)

// Output is a build output loaded back from disk. Route loaders read their
// page data file on demand.
type Output struct {
	Info      Info
	Routes    []routes.PageRoute
	Redirects map[string]string
	Search    []search.Record
	Theme     siteconfig.ThemeData
}

// Read loads the JSON form of the output written to dir.
func Read(dir string) (*Output, error) {
	root := filepath.Join(dir, InternalDir)
	out := &Output{}

	if err := readJSON(root, InfoFile, &out.Info); err != nil {
		return nil, err
	}
	data, err := readFile(root, RoutesName+".json")
	if err != nil {
		return nil, err
	}
	entries, err := decodeRoutes(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDocs, "decode routes").
			WithContext("dir", root).Build()
	}
	for _, e := range entries {
		out.Routes = append(out.Routes, routes.PageRoute{
			Path:   e.path,
			Loader: fileLoader{file: filepath.Join(root, filepath.FromSlash(e.Loader))},
			Meta:   routes.Meta{Title: e.Meta.Title},
		})
	}
	if err := readJSON(root, RedirectsName+".json", &out.Redirects); err != nil {
		return nil, err
	}
	if err := readJSON(root, SearchName+".json", &out.Search); err != nil {
		return nil, err
	}
	if err := readJSON(root, ThemeName+".json", &out.Theme); err != nil {
		return nil, err
	}
	return out, nil
}

type orderedRoute struct {
	path string
	routeEntry
}

// decodeRoutes walks the routes object token by token to keep its order.
func decodeRoutes(data []byte) ([]orderedRoute, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("routes must be an object")
	}
	var out []orderedRoute
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var e routeEntry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("route %q: %w", key, err)
		}
		out = append(out, orderedRoute{path: key, routeEntry: e})
	}
	return out, nil
}

// fileLoader reads a page data file each time it is asked; the routes
// fetcher memoizes the result.
type fileLoader struct {
	file string
}

func (l fileLoader) Load(ctx context.Context) (*pagedata.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.file)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read page data").
			WithContext("file", l.file).Build()
	}
	var p pagedata.Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDocs, "decode page data").
			WithContext("file", l.file).Build()
	}
	p.Normalize()
	return &p, nil
}

func readFile(root, rel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read build output").
			WithContext("file", rel).Build()
	}
	return data, nil
}

func readJSON(root, rel string, v any) error {
	data, err := readFile(root, rel)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapError(err, errors.CategoryDocs, "decode build output").
			WithContext("file", rel).Build()
	}
	return nil
}
