package proxy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/oakwood-commons/lazyview/internal/store"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteOptions configures a SQLite proxy.
type SQLiteOptions struct {
	Path  string
	Table string
	// Columns selects and orders the fields. Empty means every column of Table.
	Columns []string
	// OrderBy is the column rows are paged by. Defaults to rowid.
	OrderBy string
	Logger  logr.Logger
}

// SQLite pages through a table with LIMIT and OFFSET.
type SQLite struct {
	db      *sql.DB
	query   string
	count   string
	columns []string
	log     logr.Logger
}

// OpenSQLite opens the database at opts.Path and prepares the paging query.
func OpenSQLite(ctx context.Context, opts SQLiteOptions) (*SQLite, error) {
	if opts.Path == "" {
		return nil, errors.New("database path is required")
	}
	if !identifier.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid table name %q", opts.Table)
	}
	if opts.OrderBy == "" {
		opts.OrderBy = "rowid"
	}
	if !identifier.MatchString(opts.OrderBy) {
		return nil, fmt.Errorf("invalid order column %q", opts.OrderBy)
	}
	for _, c := range opts.Columns {
		if !identifier.MatchString(c) {
			return nil, fmt.Errorf("invalid column name %q", c)
		}
	}

	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Path, err)
	}
	columns := opts.Columns
	if len(columns) == 0 {
		if columns, err = tableColumns(ctx, db, opts.Table); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLite{
		db: db,
		query: fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT ? OFFSET ?",
			strings.Join(columns, ", "), opts.Table, opts.OrderBy),
		count:   fmt.Sprintf("SELECT COUNT(*) FROM %s", opts.Table),
		columns: columns,
		log:     opts.Logger.WithName("proxy.sqlite"),
	}
	s.log.V(1).Info("table opened", "table", opts.Table, "columns", columns)
	return s, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q not found", table)
	}
	return columns, nil
}

// Read selects op's window of rows.
func (s *SQLite) Read(ctx context.Context, op store.Operation) (store.Result, error) {
	rows, err := s.db.QueryContext(ctx, s.query, op.Limit, op.Start)
	if err != nil {
		return store.Result{}, err
	}
	defer rows.Close()

	var recs []store.Record
	vals := make([]any, len(s.columns))
	ptrs := make([]any, len(s.columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return store.Result{}, err
		}
		rec := make(store.Record, len(s.columns))
		for i, c := range s.columns {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return store.Result{}, err
	}

	total := -1
	if err := s.db.QueryRowContext(ctx, s.count).Scan(&total); err != nil {
		s.log.V(1).Info("count failed", "error", err.Error())
		total = -1
	}
	return store.Result{Records: recs, Total: total}, nil
}

// Schema returns the selected columns.
func (s *SQLite) Schema() store.Schema {
	return store.Schema{Fields: s.columns}
}

// Close releases the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
