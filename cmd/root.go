package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/oakwood-commons/lazyview/internal/lazyview"
	"github.com/oakwood-commons/lazyview/internal/render"
	"github.com/oakwood-commons/lazyview/internal/selection"
	"github.com/oakwood-commons/lazyview/internal/store"
	"github.com/oakwood-commons/lazyview/internal/ui"
	"github.com/oakwood-commons/lazyview/pkg/logger"
	"github.com/oakwood-commons/lazyview/pkg/settings"
)

const defaultFallbackTermWidth = 120

var (
	// Source flags
	sourceURL     string
	sqlitePath    string
	sqliteTable   string
	sqliteOrderBy string
	whereExpr     string
	fieldList     string
	headerFlags   []string
	limitRecords  int
	offsetRecords int
	tailRecords   int

	// Output and runtime flags
	configFile     string
	configOutput   string
	noColor        bool
	debug          bool
	logFile        string
	renderSnapshot bool
	startKeys      []string
	snapshotWidth  int
	snapshotHeight int

	selectMode selectModeValue
)

var (
	stdinIsPiped     = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	openTerminalIOFn = openTerminalIO
)

var rootCtx = context.Background()

type snapshotSize struct {
	Width  int
	Height int
}

func resolveSnapshotSize(flagWidth, flagHeight, detectedWidth, detectedHeight int) snapshotSize {
	width := flagWidth
	height := flagHeight
	if width <= 0 && detectedWidth > 0 {
		width = detectedWidth
	}
	if height <= 0 && detectedHeight > 0 {
		height = detectedHeight
	}
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return snapshotSize{Width: width, Height: height}
}

// detectTerminalSize returns the best-effort terminal width/height by probing
// stdout, stderr, and stdin, then falling back to $COLUMNS.
func detectTerminalSize() (int, int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 0
}

// applyFlagOverrides writes the flags the user set over cfg.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *ui.ConfigFile) error {
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
	duration := func(name string, dst *time.Duration) {
		if flags.Changed(name) {
			*dst, _ = flags.GetDuration(name)
		}
	}

	str("template", &cfg.View.Template)
	str("item-selector", &cfg.View.ItemSelector)
	str("empty-text", &cfg.View.EmptyText)
	boolean("defer-empty-text", &cfg.View.DeferEmptyText)
	if flags.Changed("load-barrier") {
		cfg.View.LoadBarrier, _ = flags.GetFloat64("load-barrier")
	}

	if selectMode.set {
		cfg.Selection.Mode = selectMode.mode.String()
	}
	boolean("allow-deselect", &cfg.Selection.AllowDeselect)
	boolean("disable-selection", &cfg.Selection.Disabled)

	str("url", &cfg.Source.URL)
	str("method", &cfg.Source.Method)
	str("root", &cfg.Source.Root)
	str("total-path", &cfg.Source.TotalPath)
	str("page-param", &cfg.Source.PageParam)
	str("start-param", &cfg.Source.StartParam)
	str("limit-param", &cfg.Source.LimitParam)
	duration("timeout", &cfg.Source.Timeout)
	duration("latency", &cfg.Source.Latency)

	str("theme", &cfg.UI.Theme)

	if cfg.Source.Timeout < 0 || cfg.Source.Latency < 0 {
		return fmt.Errorf("--timeout and --latency must be non-negative")
	}
	return nil
}

// buildModel wires store, resolver, renderer and view into the list browser.
func buildModel(ctx context.Context, src source, cfg ui.ConfigFile, theme ui.Theme, lgr logr.Logger) (*ui.Model, error) {
	run := settings.FromContextOrDefault(ctx)
	st := store.New(src.proxy, store.Options{
		Timeout: run.Source.Timeout,
		Logger:  lgr,
		Context: ctx,
	})

	mode, err := selection.ParseMode(cfg.Selection.Mode)
	if err != nil {
		return nil, err
	}
	selCfg := selection.ConfigForMode(mode)
	selCfg.AllowDeselect = cfg.Selection.AllowDeselect
	selCfg.DisableSelection = cfg.Selection.Disabled
	res := selection.NewResolver(selCfg, st, lgr)

	text := cfg.View.Template
	if strings.TrimSpace(text) == "" {
		fields := splitFields(fieldList)
		if len(fields) == 0 {
			fields = st.Schema().Fields
		}
		text = defaultTemplate(fields)
	}
	renderer, err := render.NewTemplate(text, cfg.View.ItemSelector)
	if err != nil {
		return nil, err
	}

	view, err := lazyview.New(lazyview.Config{
		ItemSelector:   cfg.View.ItemSelector,
		LoadBarrier:    cfg.View.LoadBarrier,
		EmptyText:      cfg.View.EmptyText,
		DeferEmptyText: cfg.View.DeferEmptyText,
	}, st, renderer, res, lgr)
	if err != nil {
		return nil, err
	}

	title := src.Title()
	if name := strings.TrimSpace(cfg.App.Name); name != "" {
		title = name + " · " + title
	}
	return ui.New(st, view, res, ui.Options{
		Title:   title,
		Theme:   theme,
		NoColor: run.NoColor,
		Logger:  lgr,
	})
}

func runRoot(cmd *cobra.Command, args []string) error {
	lgr := *logger.FromContext(rootCtx)

	cfg, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return err
	}
	theme, err := selectTheme(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	src, err := openSource(ctx, args, cfg, lgr)
	if errors.Is(err, errShowHelp) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := src.close(); err != nil {
			lgr.Error(err, "close source")
		}
	}()

	run := settings.NewCliParams()
	run.Source = src.settings
	run.NoColor = noColor
	run.LogFile = logFile
	if debug {
		run.MinLogLevel = -1
	}
	ctx = settings.IntoContext(ctx, run)

	m, err := buildModel(ctx, src, cfg, theme, lgr)
	if err != nil {
		var cfgErr *lazyview.ConfigurationError
		if errors.As(err, &cfgErr) {
			lgr.Error(err, "invalid view configuration", "component", cfgErr.Component)
		}
		return err
	}

	if renderSnapshot {
		w, h := 0, 0
		if snapshotWidth <= 0 || snapshotHeight <= 0 {
			w, h = detectTerminalSize()
		}
		size := resolveSnapshotSize(snapshotWidth, snapshotHeight, w, h)
		out := ui.RenderSnapshot(m, ui.SnapshotConfig{
			Width:     size.Width,
			Height:    size.Height,
			StartKeys: startKeys,
		})
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	opts, cleanup := getProgramOptions()
	defer cleanup()
	return ui.RunModel(m, snapshotWidth, snapshotHeight, opts...)
}

// getProgramOptions reads keys from the terminal when stdin carries the records.
func getProgramOptions() ([]tea.ProgramOption, func()) {
	cleanup := func() {}
	if !stdinIsPiped() {
		return nil, cleanup
	}
	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// /dev/tty not available (e.g., in some CI environments)
		return nil, cleanup
	}
	cleanup = func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}
	opts := []tea.ProgramOption{tea.WithInput(ttyIn)}
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut))
	}
	return opts, cleanup
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}
	if out == "" || out == in {
		return input, input, nil
	}
	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}
	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}
	return "/dev/tty", "/dev/tty"
}

func getCLILongHelp() string {
	cfg, err := ui.EmbeddedDefaultConfig()
	if err != nil || cfg.App.About == "" {
		return "Browse remotely paged record collections."
	}
	return fmt.Sprintf("%s\n\nRecords come from a file or stdin (json, ndjson, yaml, toml), a paged\n"+
		"JSON endpoint (--url) or a SQLite table (--sqlite). Pages are read as\n"+
		"you scroll; ':' jumps to any index, reading ahead as needed.", cfg.App.About)
}

var rootCmd = &cobra.Command{
	Use:   "lazyview [file]",
	Short: "lazyview - lazy paginated record browser",
	Long:  getCLILongHelp(),
	Example: "\n  lazyview contacts.json --template '{{.firstName}} {{.lastName}}'\n" +
		"  lazyview --url https://example.com/api/contacts --root d --limit-param count\n" +
		"  lazyview --sqlite crm.db --table contacts --fields name,email\n" +
		"  lazyview contacts.yaml --snapshot --press ':42<Enter>'\n",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// Map CLI debug flag to log level: debug => zap.DebugLevel (-1), else zap.InfoLevel (0)
		var level int8
		if debug {
			level = -1
		}
		var opts []logger.Option
		switch {
		case logFile != "":
			opts = append(opts, logger.WithFile(logFile))
		case cmd.Root() == cmd && !renderSnapshot:
			// The interactive program owns the terminal.
			opts = append(opts, logger.WithWriter(io.Discard))
		}
		lgr := logger.Get(level, opts...)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		rootCtx = logger.WithLogger(context.Background(), lgr)
	},
	RunE: runRoot,
}

// normalizeFlagName lets config-style names (--item_selector) stand in for flags.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() { //nolint:gochecknoinits
	f := rootCmd.Flags()
	// Source
	f.StringVar(&sourceURL, "url", "", "paged JSON endpoint (default from LAZYVIEW_URL or source.url)")
	f.StringVar(&sqlitePath, "sqlite", "", "SQLite database file")
	f.StringVar(&sqliteTable, "table", "", "SQLite table to page through (with --sqlite)")
	f.StringVar(&sqliteOrderBy, "order-by", "", "SQLite column to order by (default rowid)")
	f.String("method", "", "HTTP method: GET (query params) or POST (JSON body)")
	f.String("root", "", "path to the record array (gjson path for --url, dotted path for files)")
	f.String("total-path", "", "gjson path to the total record count in responses")
	f.String("page-param", "", "page request parameter name")
	f.String("start-param", "", "start offset request parameter name")
	f.String("limit-param", "", "page size request parameter name")
	f.StringArrayVar(&headerFlags, "header", nil, "extra request header \"Name: value\" (repeatable)")
	f.Duration("timeout", 0, "read timeout per page (default from config, 10s)")
	f.Duration("latency", 0, "artificial delay for file reads, to watch pages load")
	f.StringVar(&whereExpr, "where", "", "CEL filter over file records, with '_' as the record. Example: '_.age > 30'")
	f.IntVar(&limitRecords, "limit", 0, "limit total number of file records")
	f.IntVar(&offsetRecords, "offset", 0, "skip the first N file records")
	f.IntVar(&tailRecords, "tail", 0, "keep only the last N file records (mutually exclusive with --limit; ignores --offset)")
	// View
	f.String("template", "", "Go template for one record, e.g. '{{.firstName}} {{.lastName}}'")
	f.String("item-selector", "", "class given to rendered records")
	f.StringVar(&fieldList, "fields", "", "comma separated fields to read and show when no template is set")
	f.Float64("load-barrier", 0, "fraction of a page scrolled before the next page loads (0, 1]")
	f.String("empty-text", "", "text shown for an empty collection")
	f.Bool("defer-empty-text", false, "do not show the empty text before the first load")
	// Selection
	f.Var(&selectMode, "select-mode", "selection mode: single|multi|simple (default from config)")
	f.Bool("allow-deselect", false, "let a single selection be toggled off")
	f.Bool("disable-selection", false, "lock the selection")
	// UI
	f.String("theme", "", "theme name (default from config; see 'lazyview config themes')")
	f.StringVar(&configFile, "config-file", "", "path to a YAML or TOML config file")
	f.BoolVar(&noColor, "no-color", false, "disable color output")
	f.BoolVar(&debug, "debug", false, "log debug detail")
	f.StringVar(&logFile, "log-file", "", "write logs to a rotating file")
	f.BoolVar(&renderSnapshot, "snapshot", false, "render a single TUI snapshot and exit (dev/test); honors --width/--height")
	f.StringArrayVar(&startKeys, "press", nil, "keys applied before the snapshot. Use <Key> for special keys (e.g. <Down>, <Enter>, <Esc>). Literal text types normally. Example: --press \":40<Enter>\"")
	f.IntVar(&snapshotWidth, "width", 0, "TUI width in columns")
	f.IntVar(&snapshotHeight, "height", 0, "TUI height in rows")
	f.SetNormalizeFunc(normalizeFlagName)

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd)

	configCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML or TOML config file")
	configGetCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configThemesCmd)
	rootCmd.AddCommand(configCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
