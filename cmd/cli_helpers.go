package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oakwood-commons/lazyview/internal/selection"
	"github.com/oakwood-commons/lazyview/internal/ui"
)

type themeSelectionError struct {
	Selected     string
	Available    []string
	DefaultTheme string
}

func (e themeSelectionError) Error() string {
	return fmt.Sprintf("unknown theme %q\navailable themes: %v\ndefault theme: %s", e.Selected, e.Available, e.DefaultTheme)
}

func defaultThemeName(cfg ui.ConfigFile) string {
	if name := strings.TrimSpace(cfg.UI.Theme); name != "" {
		return name
	}
	return "dark"
}

// selectTheme resolves the configured theme; --theme and LAZYVIEW_THEME are
// already merged into cfg.
func selectTheme(cfg ui.ConfigFile) (ui.Theme, error) {
	name := defaultThemeName(cfg)
	if _, ok := cfg.UI.Themes[name]; !ok {
		return ui.Theme{}, themeSelectionError{
			Selected:     name,
			Available:    ui.ThemeNames(cfg.UI.Themes),
			DefaultTheme: defaultThemeName(cfg),
		}
	}
	return ui.ResolveTheme(cfg.UI.Themes, name)
}

// selectModeValue is the --select-mode flag. It rejects unknown modes at
// parse time.
type selectModeValue struct {
	mode selection.Mode
	set  bool
}

func (v *selectModeValue) String() string { return v.mode.String() }
func (v *selectModeValue) Type() string   { return "mode" }

func (v *selectModeValue) Set(s string) error {
	m, err := selection.ParseMode(s)
	if err != nil {
		return err
	}
	v.mode, v.set = m, true
	return nil
}

var templateIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// defaultTemplate renders fields side by side. Fields that are not Go
// identifiers are read with index.
func defaultTemplate(fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if templateIdent.MatchString(f) {
			parts = append(parts, "{{."+f+"}}")
			continue
		}
		parts = append(parts, fmt.Sprintf("{{index . %q}}", f))
	}
	return strings.Join(parts, "  ")
}

// splitFields parses a comma separated field list.
func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseHeaders turns "Name: value" flags into a header map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
