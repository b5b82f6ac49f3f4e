package siteconfig

import (
	"fmt"
	"slices"
	"strings"
)

// RouteSet answers whether a route path is registered.
type RouteSet interface {
	Has(path string) bool
}

// ViolationKind classifies a validation finding.
type ViolationKind string

const (
	KindInvalidLocaleKey  ViolationKind = "invalid_locale_key"
	KindUnknownLocale     ViolationKind = "unknown_locale"
	KindDanglingReference ViolationKind = "dangling_reference"
	KindDuplicatePath     ViolationKind = "duplicate_path"
)

// ValidationError is one violation found in a site configuration.
type ValidationError struct {
	Kind    ViolationKind `json:"kind"`
	Locale  string        `json:"locale"`
	Path    string        `json:"path,omitempty"`
	Message string        `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s [%s] %s: %s", e.Kind, e.Locale, e.Path, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Locale, e.Message)
}

// Validate checks cfg against routes and returns every violation found:
// locale keys used by navigation must be declared, every sidebar and navbar
// link must resolve to a registered route, and a locale's sidebar must not
// list the same page twice. The result is empty for a valid configuration.
func Validate(cfg *SiteConfig, routes RouteSet) []ValidationError {
	var errs []ValidationError
	locales := cfg.EffectiveLocales()

	for _, key := range sortedKeys(locales) {
		if !validLocaleKey(key) {
			errs = append(errs, ValidationError{
				Kind:    KindInvalidLocaleKey,
				Locale:  key,
				Message: "locale keys must start and end with /",
			})
		}
	}

	for _, locale := range cfg.NavigationLocales() {
		navbar, sidebar := cfg.Navigation(locale)
		usesLocale := locale != RootLocale || len(navbar) > 0 || len(sidebar) > 0
		if _, ok := locales[locale]; usesLocale && !ok {
			errs = append(errs, ValidationError{
				Kind:    KindUnknownLocale,
				Locale:  locale,
				Message: "navigation is configured for a locale missing from locales",
			})
		}

		seen := make(map[string]string)
		for _, l := range sidebar.Links() {
			if l.External || l.Path == "" {
				continue
			}
			if !routes.Has(l.Path) {
				errs = append(errs, ValidationError{
					Kind:    KindDanglingReference,
					Locale:  locale,
					Path:    l.Path,
					Message: fmt.Sprintf("sidebar entry %q (prefix %q) has no page", l.Link, l.Prefix),
				})
			}
			if first, dup := seen[l.Path]; dup {
				errs = append(errs, ValidationError{
					Kind:    KindDuplicatePath,
					Locale:  locale,
					Path:    l.Path,
					Message: fmt.Sprintf("sidebar lists the page twice (%q and %q)", first, l.Link),
				})
				continue
			}
			seen[l.Path] = l.Link
		}

		for _, item := range flattenNav(navbar) {
			path, external := ResolveLink("", item.Link)
			if external || path == "" {
				continue
			}
			if !routes.Has(path) {
				errs = append(errs, ValidationError{
					Kind:    KindDanglingReference,
					Locale:  locale,
					Path:    path,
					Message: fmt.Sprintf("navbar entry %q has no page", item.Text),
				})
			}
		}
	}
	return errs
}

func validLocaleKey(key string) bool {
	return strings.HasPrefix(key, "/") && strings.HasSuffix(key, "/")
}

func flattenNav(items []NavItem) []NavItem {
	var out []NavItem
	for _, it := range items {
		out = append(out, it)
		out = append(out, flattenNav(it.Children)...)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
