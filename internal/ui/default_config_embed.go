package ui

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     ConfigFile
	embeddedConfigErr  error
)

// ConfigFile is the layout of default_config.yaml and of user config files.
type ConfigFile struct {
	App       AppConfig       `yaml:"app" json:"app"`
	View      ViewConfig      `yaml:"view" json:"view"`
	Selection SelectionConfig `yaml:"selection" json:"selection"`
	Source    SourceConfig    `yaml:"source" json:"source"`
	UI        UIConfig        `yaml:"ui" json:"ui"`
}

type AppConfig struct {
	Name  string `yaml:"name" json:"name"`
	About string `yaml:"about" json:"about"`
}

// ViewConfig holds the list view settings.
type ViewConfig struct {
	Template       string  `yaml:"template" json:"template"`
	ItemSelector   string  `yaml:"item_selector" json:"item_selector"`
	LoadBarrier    float64 `yaml:"load_barrier" json:"load_barrier"`
	EmptyText      string  `yaml:"empty_text" json:"empty_text"`
	DeferEmptyText bool    `yaml:"defer_empty_text" json:"defer_empty_text"`
}

// SelectionConfig holds the selection settings. Mode is single, multi or simple.
type SelectionConfig struct {
	Mode          string `yaml:"mode" json:"mode"`
	AllowDeselect bool   `yaml:"allow_deselect" json:"allow_deselect"`
	Disabled      bool   `yaml:"disabled" json:"disabled"`
}

// SourceConfig holds the request settings of remote sources.
type SourceConfig struct {
	URL        string        `yaml:"url" json:"url"`
	Method     string        `yaml:"method" json:"method"`
	Root       string        `yaml:"root" json:"root"`
	TotalPath  string        `yaml:"total_path" json:"total_path"`
	PageParam  string        `yaml:"page_param" json:"page_param"`
	StartParam string        `yaml:"start_param" json:"start_param"`
	LimitParam string        `yaml:"limit_param" json:"limit_param"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	Latency    time.Duration `yaml:"latency" json:"latency"`
}

type UIConfig struct {
	Theme  string                 `yaml:"theme" json:"theme"`
	Themes map[string]ThemeConfig `yaml:"themes" json:"themes"`
}

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// EmbeddedDefaultConfig parses and returns the embedded default configuration.
// Callers get their own copy of the themes map.
func EmbeddedDefaultConfig() (ConfigFile, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		if err := yaml.Unmarshal(embeddedDefaultConfig, &embeddedConfig); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
			return
		}
		if embeddedConfig.UI.Themes == nil {
			embeddedConfig.UI.Themes = map[string]ThemeConfig{}
		}
	})
	cfg := embeddedConfig
	cfg.UI.Themes = make(map[string]ThemeConfig, len(embeddedConfig.UI.Themes))
	for name, th := range embeddedConfig.UI.Themes {
		cfg.UI.Themes[name] = th
	}
	return cfg, embeddedConfigErr
}
