package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	rdebug "runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/lazyview/internal/ui"
	"github.com/oakwood-commons/lazyview/pkg/settings"
)

type versionData struct {
	Name      string
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	BuildOS   string
	BuildArch string
}

// buildVersionData merges the ldflags version information with the module
// build info embedded by the Go toolchain.
func buildVersionData() versionData {
	vi := settings.VersionInformation
	data := versionData{
		Name:      settings.CliBinaryName,
		Version:   vi.BuildVersion,
		GitCommit: vi.Commit,
		BuildTime: vi.BuildTime,
		GoVersion: runtime.Version(),
		BuildOS:   runtime.GOOS,
		BuildArch: runtime.GOARCH,
	}
	info, ok := rdebug.ReadBuildInfo()
	if !ok {
		return data
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		data.Version = info.Main.Version
	}
	if info.GoVersion != "" {
		data.GoVersion = info.GoVersion
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 && data.GitCommit == "unknown" {
			data.GitCommit = s.Value[:7]
		}
	}
	return data
}

// cliVersionString builds a human-readable version string for CLI output and Cobra's --version flag.
func cliVersionString() string {
	d := buildVersionData()
	return fmt.Sprintf("%s %s (commit %s, %s, %s/%s)", d.Name, d.Version, d.GitCommit, d.GoVersion, d.BuildOS, d.BuildArch)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print lazyview version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return nil
	},
}

// configCmd groups configuration-related subcommands similar to gh-style CLIs.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lazyview configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show merged configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigGet,
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE:  runConfigThemes,
}

func runConfigGet(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return err
	}
	var out []byte
	switch strings.ToLower(configOutput) {
	case "yaml", "":
		out, err = yaml.Marshal(cfg)
	case "json":
		out, err = json.MarshalIndent(cfg, "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("invalid output for config: %s (use yaml|json)", configOutput)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runConfigThemes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return err
	}
	def := defaultThemeName(cfg)
	for _, name := range ui.ThemeNames(cfg.UI.Themes) {
		marker := " "
		if name == def {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
	}
	return nil
}
