package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/lazyview/internal/limiter"
	"github.com/oakwood-commons/lazyview/internal/proxy"
	"github.com/oakwood-commons/lazyview/internal/store"
	"github.com/oakwood-commons/lazyview/internal/ui"
	"github.com/oakwood-commons/lazyview/pkg/loader"
	"github.com/oakwood-commons/lazyview/pkg/settings"
)

// errShowHelp is returned by openSource when no source is given and help should be shown.
var errShowHelp = errors.New("no input provided")

// source is an opened record source.
type source struct {
	proxy    store.Proxy
	settings settings.SourceSettings
	close    func() error
}

// Title names the source for the header line.
func (s source) Title() string {
	switch s.settings.Kind {
	case settings.SourceHTTP:
		return s.settings.URL
	case settings.SourceSQLite:
		return filepath.Base(s.settings.Path) + ":" + s.settings.Table
	default:
		if s.settings.Path == "" {
			return "stdin"
		}
		return filepath.Base(s.settings.Path)
	}
}

// openSource picks the proxy from the flags and config: --sqlite, then a
// file argument, then a URL (flag, LAZYVIEW_URL or source.url), then piped
// stdin.
func openSource(ctx context.Context, args []string, cfg ui.ConfigFile, lgr logr.Logger) (source, error) {
	window := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	fields := splitFields(fieldList)
	src := source{close: func() error { return nil }}
	src.settings.Timeout = cfg.Source.Timeout

	if len(args) > 0 && (sqlitePath != "" || sourceURL != "") {
		return src, fmt.Errorf("use either a file argument, --url or --sqlite")
	}
	if sqlitePath != "" && sourceURL != "" {
		return src, fmt.Errorf("use either --url or --sqlite")
	}
	// A file argument wins over a URL from the config or environment.
	useURL := sqlitePath == "" && len(args) == 0 && cfg.Source.URL != ""
	if (sqlitePath != "" || useURL) && (window.IsActive() || whereExpr != "") {
		return src, fmt.Errorf("--limit, --offset, --tail and --where apply to file sources only")
	}

	switch {
	case sqlitePath != "":
		db, err := proxy.OpenSQLite(ctx, proxy.SQLiteOptions{
			Path:    sqlitePath,
			Table:   sqliteTable,
			Columns: fields,
			OrderBy: sqliteOrderBy,
			Logger:  lgr,
		})
		if err != nil {
			return src, err
		}
		src.proxy, src.close = db, db.Close
		src.settings.Kind = settings.SourceSQLite
		src.settings.Path = sqlitePath
		src.settings.Table = sqliteTable
		return src, nil

	case useURL:
		headers, err := parseHeaders(headerFlags)
		if err != nil {
			return src, err
		}
		h, err := proxy.NewHTTP(proxy.HTTPOptions{
			URL:        cfg.Source.URL,
			Method:     cfg.Source.Method,
			Root:       cfg.Source.Root,
			TotalPath:  cfg.Source.TotalPath,
			PageParam:  cfg.Source.PageParam,
			StartParam: cfg.Source.StartParam,
			LimitParam: cfg.Source.LimitParam,
			Headers:    headers,
			Fields:     fields,
			Logger:     lgr,
		})
		if err != nil {
			return src, err
		}
		src.proxy = h
		src.settings.Kind = settings.SourceHTTP
		src.settings.URL = cfg.Source.URL
		return src, nil
	}

	opts := proxy.MemoryOptions{
		Fields:  fields,
		Where:   whereExpr,
		Window:  window,
		Latency: cfg.Source.Latency,
		Logger:  lgr,
	}
	src.settings.Kind = settings.SourceFile
	if len(args) > 0 {
		m, err := proxy.LoadFile(args[0], cfg.Source.Root, opts)
		if err != nil {
			return src, err
		}
		src.proxy = m
		src.settings.Path = args[0]
		return src, nil
	}

	if !stdinIsPiped() {
		return src, errShowHelp
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return src, fmt.Errorf("failed to read from stdin: %w", err)
	}
	docs, err := loader.LoadData(string(data))
	if err != nil {
		return src, fmt.Errorf("parse stdin: %w", err)
	}
	records, err := loader.Records(docs, cfg.Source.Root)
	if err != nil {
		return src, fmt.Errorf("parse stdin: %w", err)
	}
	m, err := proxy.NewMemory(records, opts)
	if err != nil {
		return src, err
	}
	src.proxy = m
	return src, nil
}
