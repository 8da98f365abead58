package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/lazyview/internal/selection"
	"github.com/oakwood-commons/lazyview/internal/ui"
	"github.com/oakwood-commons/lazyview/pkg/loader"
	"github.com/oakwood-commons/lazyview/pkg/settings"
)

// Environment overrides, applied after the config file and before flags.
const (
	envURL   = "LAZYVIEW_URL"
	envTheme = "LAZYVIEW_THEME"
)

// configLoader centralizes config loading so callers avoid duplicating merge logic.
type configLoader struct {
	defaults func() (ui.ConfigFile, error)
	lookup   func(string) (string, bool)
}

var cfgLoader = configLoader{defaults: ui.EmbeddedDefaultConfig, lookup: os.LookupEnv}

func loadMergedConfig(cfgPath string) (ui.ConfigFile, error) {
	return cfgLoader.loadMergedConfig(cfgPath)
}

// loadMergedConfig layers the user file at cfgPath (if any) and the
// environment over the embedded defaults.
func (l configLoader) loadMergedConfig(cfgPath string) (ui.ConfigFile, error) {
	cfg, err := l.defaults()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if cfg.UI.Theme == "" || len(cfg.UI.Themes) == 0 {
		return cfg, fmt.Errorf("default config is missing required theme defaults")
	}

	if cfgPath != "" {
		data, err := os.ReadFile(cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		if err := decodeConfig(cfgPath, data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", cfgPath, err)
		}
	}

	l.applyEnv(&cfg)

	if _, err := selection.ParseMode(cfg.Selection.Mode); err != nil {
		return cfg, fmt.Errorf("selection.mode: %w", err)
	}
	return cfg, nil
}

// decodeConfig decodes data over cfg, so keys missing from data keep their
// current value. TOML files are normalized through YAML to share the
// snake_case keys.
func decodeConfig(path string, data []byte, cfg *ui.ConfigFile) error {
	if f, _ := loader.FormatFromPath(path); f == loader.FormatTOML {
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return err
		}
		var err error
		if data, err = yaml.Marshal(doc); err != nil {
			return err
		}
	}
	return yaml.Unmarshal(data, cfg)
}

func (l configLoader) applyEnv(cfg *ui.ConfigFile) {
	if l.lookup == nil {
		return
	}
	if v, ok := l.lookup(envURL); ok && strings.TrimSpace(v) != "" {
		cfg.Source.URL = strings.TrimSpace(v)
	}
	if v, ok := l.lookup(envTheme); ok && strings.TrimSpace(v) != "" {
		cfg.UI.Theme = strings.TrimSpace(v)
	}
}

// resolveConfigPath returns the explicit configFile if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/lazyview/config.yaml) or ~/.config/lazyview/config.yaml if present.
// A config.toml next to it is used when no YAML file exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir = filepath.Join(xdg, settings.CliBinaryName)
	} else if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", settings.CliBinaryName)
	}
	if dir == "" {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}
