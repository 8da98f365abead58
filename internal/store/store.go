package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/lazyview/internal/event"
	"github.com/oakwood-commons/lazyview/pkg/logger"
)

const (
	// DefaultPageSize is used until a view derives one from its viewport.
	DefaultPageSize = 25
	// DefaultTimeout bounds every proxy read.
	DefaultTimeout = 10 * time.Second
)

// Options configures a Store.
type Options struct {
	PageSize        int
	ClearOnPageLoad bool
	Timeout         time.Duration
	Logger          logr.Logger
	// Context is the parent of every read context. Defaults to context.Background().
	Context context.Context
}

// Store is the locally materialized prefix of a remotely paged collection.
//
// All methods must be called from the event loop. Reads are returned as
// commands; their results come back as LoadedMsg or LoadFailedMsg and are
// applied by Update.
type Store struct {
	proxy   Proxy
	log     logr.Logger
	ctx     context.Context
	timeout time.Duration

	records         []Record
	currentPage     int
	pageSize        int
	clearOnPageLoad bool
	inflight        map[string]Operation
	exhausted       bool
	lastErr         error

	loaded event.Emitter[LoadEvent]
	failed event.Emitter[FailureEvent]
}

// New creates a store reading through proxy.
func New(proxy Proxy, opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Store{
		proxy:           proxy,
		log:             opts.Logger.WithName("store"),
		ctx:             opts.Context,
		timeout:         opts.Timeout,
		pageSize:        opts.PageSize,
		clearOnPageLoad: opts.ClearOnPageLoad,
		inflight:        make(map[string]Operation),
	}
}

// Load reads the current page (page 1 when none has been requested yet),
// replacing whatever is materialized.
func (s *Store) Load() tea.Cmd {
	page := max(s.currentPage, 1)
	s.currentPage = page
	return s.Read(PageOperation(page, s.pageSize, false))
}

// LoadPage makes page current and reads it. Records are appended unless the
// store clears on page load.
func (s *Store) LoadPage(page int) tea.Cmd {
	s.currentPage = page
	return s.Read(PageOperation(page, s.pageSize, !s.clearOnPageLoad))
}

// NextPage reads the page after the current one.
func (s *Store) NextPage() tea.Cmd {
	return s.LoadPage(s.currentPage + 1)
}

// Read issues op against the proxy. The store counts as loading until the
// result is applied by Update.
func (s *Store) Read(op Operation) tea.Cmd {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	s.inflight[op.ID] = op
	s.log.V(1).Info("read issued", logger.OperationKey, op.ID, logger.PageKey, op.Page,
		"start", op.Start, "limit", op.Limit, "addRecords", op.AddRecords)

	proxy, parent, timeout := s.proxy, s.ctx, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		res, err := proxy.Read(ctx, op)
		if err != nil {
			return LoadFailedMsg{Op: op, Err: fmt.Errorf("read page %d: %w", op.Page, err)}
		}
		return LoadedMsg{Op: op, Result: res}
	}
}

// Update applies read results issued by this store. Messages for reads it
// did not issue are ignored.
func (s *Store) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoadedMsg:
		if _, ok := s.inflight[msg.Op.ID]; !ok {
			return nil
		}
		delete(s.inflight, msg.Op.ID)
		return s.commit(msg.Op, msg.Result)
	case LoadFailedMsg:
		if _, ok := s.inflight[msg.Op.ID]; !ok {
			return nil
		}
		delete(s.inflight, msg.Op.ID)
		s.lastErr = msg.Err
		s.log.Error(msg.Err, "read failed", logger.OperationKey, msg.Op.ID, logger.PageKey, msg.Op.Page)
		return s.failed.Emit(FailureEvent(msg))
	}
	return nil
}

func (s *Store) commit(op Operation, res Result) tea.Cmd {
	start := op.Start
	if !op.AddRecords {
		s.records = s.records[:0]
		start = 0
	}
	if !s.place(start, res.Records) {
		s.log.Info("discarding read past materialized records", logger.OperationKey, op.ID,
			logger.PageKey, op.Page, "start", start, "count", len(s.records))
		return s.loaded.Emit(LoadEvent{Op: op, Count: len(s.records), Discarded: true})
	}
	s.lastErr = nil
	s.exhausted = len(res.Records) < op.Limit || (res.Total >= 0 && len(s.records) >= res.Total)
	s.log.V(1).Info("read applied", logger.OperationKey, op.ID, logger.PageKey, op.Page,
		"received", len(res.Records), "count", len(s.records), "exhausted", s.exhausted)

	return s.loaded.Emit(LoadEvent{Op: op, Records: res.Records, Count: len(s.records)})
}

// place writes recs at logical positions start, start+1, ... Positions that
// are already materialized are overwritten, the rest are appended, so
// overlapping reads never duplicate records. A read starting past the end
// would leave a gap in the prefix; place drops it and returns false.
func (s *Store) place(start int, recs []Record) bool {
	if start > len(s.records) {
		return false
	}
	for i, r := range recs {
		pos := start + i
		if pos < len(s.records) {
			s.records[pos] = r
			continue
		}
		s.records = append(s.records, r)
	}
	return true
}

// OnLoad subscribes fn to every successful load.
func (s *Store) OnLoad(fn event.Handler[LoadEvent]) (off func()) {
	return s.loaded.On(fn)
}

// OnceLoad registers a one-shot continuation for the next successful load.
func (s *Store) OnceLoad(fn event.Handler[LoadEvent]) *Pending {
	p := &Pending{}
	p.off = s.loaded.Once(func(ev LoadEvent) tea.Cmd {
		if p.state != pendingWaiting {
			return nil
		}
		p.state = pendingResolved
		return fn(ev)
	})
	return p
}

// OnFailure subscribes fn to failed reads.
func (s *Store) OnFailure(fn event.Handler[FailureEvent]) (off func()) {
	return s.failed.On(fn)
}

// IsLoading reports whether any read is in flight.
func (s *Store) IsLoading() bool {
	return len(s.inflight) > 0
}

// Count returns the number of materialized records.
func (s *Store) Count() int {
	return len(s.records)
}

// Range returns the materialized records from start onward.
func (s *Store) Range(start int) []Record {
	if start < 0 {
		start = 0
	}
	if start >= len(s.records) {
		return nil
	}
	return slices.Clone(s.records[start:])
}

// At returns the record at logical index i when it is materialized.
func (s *Store) At(i int) (Record, bool) {
	if i < 0 || i >= len(s.records) {
		return nil, false
	}
	return s.records[i], true
}

func (s *Store) CurrentPage() int           { return s.currentPage }
func (s *Store) SetCurrentPage(page int)    { s.currentPage = page }
func (s *Store) PageSize() int              { return s.pageSize }
func (s *Store) SetPageSize(size int)       { s.pageSize = size }
func (s *Store) ClearOnPageLoad() bool      { return s.clearOnPageLoad }
func (s *Store) SetClearOnPageLoad(on bool) { s.clearOnPageLoad = on }
func (s *Store) Schema() Schema             { return s.proxy.Schema() }
func (s *Store) LastError() error           { return s.lastErr }
func (s *Store) InFlight() int              { return len(s.inflight) }

// Exhausted reports whether the last applied read reached the end of the
// remote collection.
func (s *Store) Exhausted() bool {
	return s.exhausted
}
