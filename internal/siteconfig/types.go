// Package siteconfig models the declarative site configuration: locales,
// navbar, sidebar trees and plugin options. It validates the configuration
// against the route table and derives the theme data consumed by the
// rendering theme.
package siteconfig

// RootLocale is the locale key of the default language subtree.
const RootLocale = "/"

// Locale describes one language subtree of the site.
type Locale struct {
	Lang        string `yaml:"lang" json:"lang"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// NavItem is a navbar entry. Items with children render as dropdowns.
type NavItem struct {
	Text     string    `yaml:"text" json:"text"`
	Link     string    `yaml:"link,omitempty" json:"link,omitempty"`
	Children []NavItem `yaml:"children,omitempty" json:"children,omitempty"`
}

// ThemeLocale carries the navigation of a non-root locale.
type ThemeLocale struct {
	SelectLanguageName string    `yaml:"select_language_name" json:"selectLanguageName"`
	Navbar             []NavItem `yaml:"navbar" json:"navbar,omitempty"`
	Sidebar            Sidebar   `yaml:"sidebar" json:"sidebar,omitempty"`
}

// SearchPlugin configures the client-side search box.
type SearchPlugin struct {
	MaxSuggestions int      `yaml:"max_suggestions" json:"maxSuggestions,omitempty"`
	HotKeys        []string `yaml:"hot_keys,omitempty" json:"hotKeys,omitempty"`
}

// PrismThemes names the syntax highlighting themes.
type PrismThemes struct {
	Light string `yaml:"light" json:"light"`
	Dark  string `yaml:"dark" json:"dark"`
}

// PrismPlugin configures syntax highlighting.
type PrismPlugin struct {
	Themes PrismThemes `yaml:"themes" json:"themes"`
}

// Plugins are passed through to the rendering side untouched.
type Plugins struct {
	Search SearchPlugin `yaml:"search" json:"search"`
	Prism  PrismPlugin  `yaml:"prism" json:"prism"`
}

// ThemeOptions are the default theme switches. Nil pointers select the theme defaults.
type ThemeOptions struct {
	ColorMode       string `yaml:"color_mode,omitempty" json:"colorMode,omitempty"`
	ColorModeSwitch *bool  `yaml:"color_mode_switch,omitempty" json:"colorModeSwitch,omitempty"`
	Logo            string `yaml:"logo,omitempty" json:"logo,omitempty"`
	Repo            string `yaml:"repo,omitempty" json:"repo,omitempty"`
	SidebarDepth    *int   `yaml:"sidebar_depth,omitempty" json:"sidebarDepth,omitempty"`
	EditLink        *bool  `yaml:"edit_link,omitempty" json:"editLink,omitempty"`
	LastUpdated     *bool  `yaml:"last_updated,omitempty" json:"lastUpdated,omitempty"`
	Contributors    *bool  `yaml:"contributors,omitempty" json:"contributors,omitempty"`
}

// SiteConfig is the hand-authored description of the site. The root Navbar
// and Sidebar belong to RootLocale; other locales carry theirs in ThemeLocales.
type SiteConfig struct {
	Lang         string                 `yaml:"lang" json:"lang"`
	Title        string                 `yaml:"title" json:"title"`
	Description  string                 `yaml:"description" json:"description"`
	Base         string                 `yaml:"base" json:"base"`
	Locales      map[string]Locale      `yaml:"locales,omitempty" json:"locales,omitempty"`
	Navbar       []NavItem              `yaml:"navbar" json:"navbar"`
	Sidebar      Sidebar                `yaml:"sidebar" json:"sidebar"`
	ThemeLocales map[string]ThemeLocale `yaml:"theme_locales,omitempty" json:"themeLocales,omitempty"`
	Theme        ThemeOptions           `yaml:"theme,omitempty" json:"theme,omitempty"`
	// Redirects maps retired paths onto current routes.
	Redirects map[string]string `yaml:"redirects,omitempty" json:"redirects,omitempty"`
	Plugins   Plugins           `yaml:"plugins" json:"plugins"`
}

// EffectiveLocales returns the declared locales, or a single root locale
// derived from the site-level fields when none are declared.
func (c *SiteConfig) EffectiveLocales() map[string]Locale {
	if len(c.Locales) > 0 {
		return c.Locales
	}
	return map[string]Locale{RootLocale: {Lang: c.Lang, Title: c.Title, Description: c.Description}}
}

// Navigation returns the navbar and sidebar configured for locale.
func (c *SiteConfig) Navigation(locale string) ([]NavItem, Sidebar) {
	if locale == RootLocale {
		return c.Navbar, c.Sidebar
	}
	tl := c.ThemeLocales[locale]
	return tl.Navbar, tl.Sidebar
}

// NavigationLocales returns the locale keys that carry navigation, root first.
func (c *SiteConfig) NavigationLocales() []string {
	keys := []string{RootLocale}
	for _, k := range sortedKeys(c.ThemeLocales) {
		if k != RootLocale {
			keys = append(keys, k)
		}
	}
	return keys
}

// LocaleFor returns the key of the longest declared locale prefix of path.
func (c *SiteConfig) LocaleFor(path string) string {
	best := RootLocale
	for key := range c.EffectiveLocales() {
		if len(key) > len(best) && len(path) >= len(key) && path[:len(key)] == key {
			best = key
		}
	}
	return best
}
