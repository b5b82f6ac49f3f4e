// Package docs turns a docs source tree into page data.
package docs

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/pagedata"
	"git.home.luguber.info/inful/docsite/internal/siteconfig"
)

const defaultLang = "en-US"

// Options tunes a Scanner.
type Options struct {
	// HeaderLevels are passed to the markdown extractor.
	HeaderLevels []int
	// Git enables per-page git metadata.
	Git bool
}

// Scanner discovers the Markdown pages under a docs directory.
type Scanner struct {
	dir  string
	site *siteconfig.SiteConfig
	opts Options
}

// NewScanner creates a scanner for dir. site supplies the locales used to
// pick each page's language.
func NewScanner(dir string, site *siteconfig.SiteConfig, opts Options) *Scanner {
	if site == nil {
		site = &siteconfig.SiteConfig{}
	}
	return &Scanner{dir: dir, site: site, opts: opts}
}

// Dir returns the scanned directory.
func (s *Scanner) Dir() string { return s.dir }

// Scan walks the docs directory and returns one page per Markdown file,
// sorted by route path with /404.html last. The not-found page is added
// when the tree has none.
func (s *Scanner) Scan(ctx context.Context) ([]pagedata.Page, error) {
	info, err := os.Stat(s.dir)
	if err != nil || !info.IsDir() {
		return nil, errors.DocsError("docs directory not found").
			WithContext("dir", s.dir).WithCause(err).Build()
	}

	var files []string
	err = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != s.dir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isMarkdownFile(d.Name()) && !strings.HasPrefix(d.Name(), ".") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk docs directory").
			WithContext("dir", s.dir).Build()
	}

	var history *gitHistory
	if s.opts.Git {
		history = openGitHistory(s.dir)
	}

	pages := make([]pagedata.Page, 0, len(files)+1)
	byPath := make(map[string]string, len(files))
	for _, file := range files {
		page, err := s.loadPage(file)
		if err != nil {
			return nil, err
		}
		if other, dup := byPath[page.Path]; dup {
			return nil, errors.DocsError("two files map to the same route").
				WithContext("path", page.Path).
				WithContext("files", []string{other, page.FilePathRelative}).
				Build()
		}
		byPath[page.Path] = page.FilePathRelative
		if history != nil {
			page.Git = history.info(file)
		}
		slog.Debug("Discovered page", logfields.Path(page.Path), logfields.File(page.FilePathRelative))
		pages = append(pages, page)
	}

	if _, ok := byPath[NotFoundPath]; !ok {
		pages = append(pages, s.notFoundPage())
	}

	sort.Slice(pages, func(i, j int) bool { return routeLess(pages[i].Path, pages[j].Path) })
	return pages, nil
}

func (s *Scanner) loadPage(file string) (pagedata.Page, error) {
	rel, err := filepath.Rel(s.dir, file)
	if err != nil {
		return pagedata.Page{}, errors.WrapError(err, errors.CategoryFileSystem, "relative page path").
			WithContext("file", file).Build()
	}
	rel = filepath.ToSlash(rel)

	content, err := os.ReadFile(file)
	if err != nil {
		return pagedata.Page{}, errors.WrapError(err, errors.CategoryFileSystem, "read page").
			WithContext("file", rel).Build()
	}
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return pagedata.Page{}, errors.WrapError(err, errors.CategoryDocs, "parse frontmatter").
			WithContext("file", rel).Fatal().Build()
	}
	fingerprint, err := frontmatter.Fingerprint(doc)
	if err != nil {
		return pagedata.Page{}, errors.WrapError(err, errors.CategoryDocs, "fingerprint page").
			WithContext("file", rel).Build()
	}

	extracted := markdown.Extract(doc.Body, markdown.Options{HeaderLevels: s.opts.HeaderLevels})
	path := RoutePath(rel)

	title := doc.Title()
	if title == "" {
		title = extracted.Title
	}

	page := pagedata.Page{
		Path:             path,
		Title:            title,
		Lang:             s.langFor(path, doc.Lang()),
		Frontmatter:      doc.Fields,
		Headers:          pagedata.NestHeaders(extracted.Headers),
		FilePathRelative: rel,
		Fingerprint:      fingerprint,
		Content:          string(doc.Body),
	}
	page.Normalize()
	return page, nil
}

func (s *Scanner) langFor(path, override string) string {
	if override != "" {
		return override
	}
	if loc, ok := s.site.EffectiveLocales()[s.site.LocaleFor(path)]; ok && loc.Lang != "" {
		return loc.Lang
	}
	if s.site.Lang != "" {
		return s.site.Lang
	}
	return defaultLang
}

func (s *Scanner) notFoundPage() pagedata.Page {
	page := pagedata.Page{
		Path:        NotFoundPath,
		Lang:        s.langFor(NotFoundPath, ""),
		Frontmatter: map[string]any{"layout": "NotFound"},
	}
	page.Normalize()
	return page
}

// skipDir reports directories that never hold pages: dot-directories such
// as .vuepress and installed dependencies.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

func isMarkdownFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}

func routeLess(a, b string) bool {
	if a == NotFoundPath || b == NotFoundPath {
		return b == NotFoundPath && a != NotFoundPath
	}
	return a < b
}
