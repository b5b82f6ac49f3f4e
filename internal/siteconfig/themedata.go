package siteconfig

// ThemeLocaleData is the per-locale section of the theme data.
type ThemeLocaleData struct {
	SelectLanguageName string    `json:"selectLanguageName,omitempty"`
	Navbar             []NavItem `json:"navbar,omitempty"`
	Sidebar            Sidebar   `json:"sidebar,omitempty"`
}

// ThemeData is the site configuration reshaped into the JSON the default
// theme expects. Field order follows the theme's own output.
type ThemeData struct {
	Navbar                  []NavItem                  `json:"navbar"`
	Sidebar                 Sidebar                    `json:"sidebar"`
	Locales                 map[string]ThemeLocaleData `json:"locales"`
	ColorMode               string                     `json:"colorMode"`
	ColorModeSwitch         bool                       `json:"colorModeSwitch"`
	Logo                    *string                    `json:"logo"`
	Repo                    *string                    `json:"repo"`
	SelectLanguageText      string                     `json:"selectLanguageText"`
	SelectLanguageAriaLabel string                     `json:"selectLanguageAriaLabel"`
	SidebarDepth            int                        `json:"sidebarDepth"`
	EditLink                bool                       `json:"editLink"`
	EditLinkText            string                     `json:"editLinkText"`
	LastUpdated             bool                       `json:"lastUpdated"`
	LastUpdatedText         string                     `json:"lastUpdatedText"`
	Contributors            bool                       `json:"contributors"`
	ContributorsText        string                     `json:"contributorsText"`
	NotFound                []string                   `json:"notFound"`
	BackToHome              string                     `json:"backToHome"`
	OpenInNewWindow         string                     `json:"openInNewWindow"`
	ToggleColorMode         string                     `json:"toggleColorMode"`
	ToggleSidebar           string                     `json:"toggleSidebar"`
}

// languageNames covers the locales the docs ship with; others fall back to the lang code.
var languageNames = map[string]string{
	"en-US": "English",
	"en":    "English",
	"ru-RU": "Русский",
	"ru":    "Русский",
}

// BuildThemeData derives the theme data from cfg.
func BuildThemeData(cfg *SiteConfig) ThemeData {
	td := ThemeData{
		Navbar:                  nonNilNav(cfg.Navbar),
		Sidebar:                 nonNilSidebar(cfg.Sidebar),
		Locales:                 make(map[string]ThemeLocaleData),
		ColorMode:               "auto",
		ColorModeSwitch:         boolOr(cfg.Theme.ColorModeSwitch, true),
		SelectLanguageText:      "Languages",
		SelectLanguageAriaLabel: "Select language",
		SidebarDepth:            intOr(cfg.Theme.SidebarDepth, 2),
		EditLink:                boolOr(cfg.Theme.EditLink, true),
		EditLinkText:            "Edit this page",
		LastUpdated:             boolOr(cfg.Theme.LastUpdated, true),
		LastUpdatedText:         "Last Updated",
		Contributors:            boolOr(cfg.Theme.Contributors, true),
		ContributorsText:        "Contributors",
		NotFound: []string{
			"There's nothing here.",
			"How did we get here?",
			"That's a Four-Oh-Four.",
			"Looks like we've got some broken links.",
		},
		BackToHome:      "Take me home",
		OpenInNewWindow: "open in new window",
		ToggleColorMode: "toggle color mode",
		ToggleSidebar:   "toggle sidebar",
	}
	if cfg.Theme.ColorMode != "" {
		td.ColorMode = cfg.Theme.ColorMode
	}
	if cfg.Theme.Logo != "" {
		td.Logo = &cfg.Theme.Logo
	}
	if cfg.Theme.Repo != "" {
		td.Repo = &cfg.Theme.Repo
	}

	for key, loc := range cfg.EffectiveLocales() {
		entry := ThemeLocaleData{SelectLanguageName: languageName(loc.Lang)}
		if tl, ok := cfg.ThemeLocales[key]; ok {
			if tl.SelectLanguageName != "" {
				entry.SelectLanguageName = tl.SelectLanguageName
			}
			if key != RootLocale {
				entry.Navbar = tl.Navbar
				entry.Sidebar = tl.Sidebar
			}
		}
		td.Locales[key] = entry
	}
	return td
}

func languageName(lang string) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	if lang == "" {
		return "English"
	}
	return lang
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func nonNilNav(items []NavItem) []NavItem {
	if items == nil {
		return []NavItem{}
	}
	return items
}

func nonNilSidebar(s Sidebar) Sidebar {
	if s == nil {
		return Sidebar{}
	}
	return s
}
