// Package proxy provides the data sources a store reads pages from: static
// records (from a file), an HTTP JSON endpoint and a SQLite table.
package proxy

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/lazyview/internal/cel"
	"github.com/oakwood-commons/lazyview/internal/limiter"
	"github.com/oakwood-commons/lazyview/internal/store"
	"github.com/oakwood-commons/lazyview/pkg/loader"
)

// MemoryOptions configures a Memory proxy.
type MemoryOptions struct {
	// Fields overrides the schema derived from the records.
	Fields []string
	// Where is a CEL predicate over "_"; records it rejects are dropped.
	Where string
	// Window restricts the records served, before filtering.
	Window limiter.Config
	// Latency delays every read.
	Latency time.Duration
	Logger  logr.Logger
}

// Memory serves pages out of records held in memory.
type Memory struct {
	records []store.Record
	schema  store.Schema
	latency time.Duration
}

// NewMemory builds a Memory proxy over records.
func NewMemory(records []map[string]any, opts MemoryOptions) (*Memory, error) {
	if err := opts.Window.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger.WithName("proxy.memory")

	var pred *cel.Predicate
	if opts.Where != "" {
		ev, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		if pred, err = ev.Compile(opts.Where); err != nil {
			return nil, fmt.Errorf("where %q: %w", opts.Where, err)
		}
	}

	windowed := limiter.Apply(opts.Window, records)
	recs := make([]store.Record, 0, len(windowed))
	for i, r := range windowed {
		if pred != nil {
			ok, err := pred.Match(r)
			if err != nil {
				log.V(1).Info("filter rejected record", "index", i, "error", err.Error())
				continue
			}
			if !ok {
				continue
			}
		}
		recs = append(recs, store.Record(r))
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = loader.Fields(windowed)
	}
	log.V(1).Info("records ready", "total", len(records), "served", len(recs), "fields", fields)
	return &Memory{records: recs, schema: store.Schema{Fields: fields}, latency: opts.Latency}, nil
}

// LoadFile builds a Memory proxy over the records in path. root selects the
// record list inside each document.
func LoadFile(path, root string, opts MemoryOptions) (*Memory, error) {
	records, err := loader.LoadRecords(path, root)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return NewMemory(records, opts)
}

// Read returns the records of op's window.
func (m *Memory) Read(ctx context.Context, op store.Operation) (store.Result, error) {
	if m.latency > 0 {
		t := time.NewTimer(m.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return store.Result{}, ctx.Err()
		case <-t.C:
		}
	}
	return store.Result{
		Records: slices.Clone(limiter.Window(m.records, op.Start, op.Limit)),
		Total:   len(m.records),
	}, nil
}

// Schema returns the record fields.
func (m *Memory) Schema() store.Schema {
	return m.schema
}

// Len returns the number of records served.
func (m *Memory) Len() int {
	return len(m.records)
}
