package ui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/lipgloss/v2"
)

// Theme defines the colors of the list browser.
type Theme struct {
	Accent     color.Color // Title and spinner
	Muted      color.Color // Empty text and secondary status text
	CursorFG   color.Color // Record under the cursor
	CursorBG   color.Color
	SelectedFG color.Color // Selected records
	StatusFG   color.Color // Status bar
	StatusBG   color.Color
	Error      color.Color
	Success    color.Color
	HelpKey    color.Color
	HelpDesc   color.Color
}

// ThemeConfig is the YAML form of a Theme. Values are lipgloss colors:
// ANSI indices ("81") or hex ("#5fd7ff").
type ThemeConfig struct {
	Accent     string `yaml:"accent" json:"accent"`
	Muted      string `yaml:"muted" json:"muted"`
	CursorFG   string `yaml:"cursor_fg" json:"cursor_fg"`
	CursorBG   string `yaml:"cursor_bg" json:"cursor_bg"`
	SelectedFG string `yaml:"selected_fg" json:"selected_fg"`
	StatusFG   string `yaml:"status_fg" json:"status_fg"`
	StatusBG   string `yaml:"status_bg" json:"status_bg"`
	Error      string `yaml:"error" json:"error"`
	Success    string `yaml:"success" json:"success"`
	HelpKey    string `yaml:"help_key" json:"help_key"`
	HelpDesc   string `yaml:"help_desc" json:"help_desc"`
}

// fallbackTheme is used for colors a theme config leaves out.
func fallbackTheme() Theme {
	return Theme{
		Accent:     lipgloss.Color("81"),
		Muted:      lipgloss.Color("244"),
		CursorFG:   lipgloss.Color("255"),
		CursorBG:   lipgloss.Color("24"),
		SelectedFG: lipgloss.Color("114"),
		StatusFG:   lipgloss.Color("250"),
		StatusBG:   lipgloss.Color("236"),
		Error:      lipgloss.Color("203"),
		Success:    lipgloss.Color("114"),
		HelpKey:    lipgloss.Color("81"),
		HelpDesc:   lipgloss.Color("245"),
	}
}

// ThemeFromConfig builds a Theme, keeping base colors for empty fields.
func ThemeFromConfig(tc ThemeConfig, base Theme) Theme {
	pick := func(v string, fallback color.Color) color.Color {
		if v = strings.TrimSpace(v); v == "" {
			return fallback
		}
		return lipgloss.Color(v)
	}
	return Theme{
		Accent:     pick(tc.Accent, base.Accent),
		Muted:      pick(tc.Muted, base.Muted),
		CursorFG:   pick(tc.CursorFG, base.CursorFG),
		CursorBG:   pick(tc.CursorBG, base.CursorBG),
		SelectedFG: pick(tc.SelectedFG, base.SelectedFG),
		StatusFG:   pick(tc.StatusFG, base.StatusFG),
		StatusBG:   pick(tc.StatusBG, base.StatusBG),
		Error:      pick(tc.Error, base.Error),
		Success:    pick(tc.Success, base.Success),
		HelpKey:    pick(tc.HelpKey, base.HelpKey),
		HelpDesc:   pick(tc.HelpDesc, base.HelpDesc),
	}
}

// ResolveTheme returns the named theme from themes. An empty name selects
// the dark theme.
func ResolveTheme(themes map[string]ThemeConfig, name string) (Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "dark"
	}
	tc, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(themes), ", "))
	}
	return ThemeFromConfig(tc, fallbackTheme()), nil
}

// ThemeNames lists theme names in sorted order.
func ThemeNames(themes map[string]ThemeConfig) []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultTheme returns the theme the embedded configuration selects.
func DefaultTheme() Theme {
	cfg, err := EmbeddedDefaultConfig()
	if err != nil {
		return fallbackTheme()
	}
	th, err := ResolveTheme(cfg.UI.Themes, cfg.UI.Theme)
	if err != nil {
		return fallbackTheme()
	}
	return th
}

// styles are the lipgloss styles derived from a theme.
type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	status   lipgloss.Style
	err      lipgloss.Style
	success  lipgloss.Style
	help     help.Styles
}

func newStyles(th Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:    plain.Bold(true),
			muted:    plain,
			cursor:   plain,
			selected: plain,
			status:   plain,
			err:      plain,
			success:  plain,
			help: help.Styles{
				Ellipsis:       plain,
				ShortKey:       plain,
				ShortDesc:      plain,
				ShortSeparator: plain,
				FullKey:        plain,
				FullDesc:       plain,
				FullSeparator:  plain,
			},
		}
	}
	hs := help.DefaultDarkStyles()
	hs.ShortKey = hs.ShortKey.Foreground(th.HelpKey)
	hs.FullKey = hs.FullKey.Foreground(th.HelpKey)
	hs.ShortDesc = hs.ShortDesc.Foreground(th.HelpDesc)
	hs.FullDesc = hs.FullDesc.Foreground(th.HelpDesc)
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(th.Accent),
		muted:    lipgloss.NewStyle().Foreground(th.Muted),
		cursor:   lipgloss.NewStyle().Foreground(th.CursorFG).Background(th.CursorBG),
		selected: lipgloss.NewStyle().Foreground(th.SelectedFG),
		status:   lipgloss.NewStyle().Foreground(th.StatusFG).Background(th.StatusBG),
		err:      lipgloss.NewStyle().Foreground(th.Error).Background(th.StatusBG),
		success:  lipgloss.NewStyle().Foreground(th.Success).Background(th.StatusBG),
		help:     hs,
	}
}
