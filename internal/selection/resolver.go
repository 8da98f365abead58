package selection

import (
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/lazyview/internal/event"
	"github.com/oakwood-commons/lazyview/internal/store"
)

// Collection is the paged collection the resolver reads ahead in.
type Collection interface {
	Records
	PageSize() int
	CurrentPage() int
	SetCurrentPage(page int)
	ClearOnPageLoad() bool
	Exhausted() bool
	Read(op store.Operation) tea.Cmd
	OnceLoad(fn event.Handler[store.LoadEvent]) *store.Pending
}

// Resolver selects records by logical index. When the index is not
// materialized yet it reads ahead to the page containing it, plus one more
// page, and selects once that read has loaded.
type Resolver struct {
	*Model
	coll    Collection
	log     logr.Logger
	pending *store.Pending
}

// NewResolver returns a resolver over coll configured by cfg.
func NewResolver(cfg Config, coll Collection, log logr.Logger) *Resolver {
	return &Resolver{
		Model: NewModel(cfg, coll),
		coll:  coll,
		log:   log.WithName("selection"),
	}
}

// Select selects the record at logical index. It returns the read needed
// to materialize index, if any; the selection itself then happens when the
// collection next loads.
func (r *Resolver) Select(index int, keepExisting, suppressEvent bool) tea.Cmd {
	return r.resolve(index, keepExisting, suppressEvent, false)
}

// SelectResolved selects already materialized records, bypassing look-ahead.
func (r *Resolver) SelectResolved(indices []int, keepExisting, suppressEvent bool) tea.Cmd {
	return r.DoSelect(indices, keepExisting, suppressEvent)
}

// Pending reports whether a look-ahead selection is waiting for a load.
func (r *Resolver) Pending() bool {
	return r.pending != nil && r.pending.Waiting()
}

// CancelPending drops the waiting look-ahead selection, if any. The read
// already issued is not recalled.
func (r *Resolver) CancelPending() bool {
	if r.pending == nil {
		return false
	}
	ok := r.pending.Cancel()
	r.pending = nil
	if ok {
		r.log.V(1).Info("look-ahead selection cancelled")
	}
	return ok
}

func (r *Resolver) resolve(index int, keepExisting, suppressEvent, retry bool) tea.Cmd {
	if r.Locked() {
		return nil
	}
	if index < 0 || r.coll.Count() > index {
		return r.DoSelect([]int{index}, keepExisting, suppressEvent)
	}
	if retry && r.coll.Exhausted() {
		r.log.Info("index is past the end of the collection", "index", index, "count", r.coll.Count())
		return nil
	}

	size := r.coll.PageSize()
	if size <= 0 {
		return nil
	}
	page := index/size + 1
	if index%size != 0 {
		page++
	}
	prev := r.coll.CurrentPage()
	r.coll.SetCurrentPage(page)

	r.CancelPending()
	r.pending = r.coll.OnceLoad(func(store.LoadEvent) tea.Cmd {
		r.pending = nil
		return r.resolve(index, keepExisting, suppressEvent, true)
	})

	op := store.Operation{
		Page:       page,
		Start:      prev * size,
		Limit:      (page - prev) * size,
		AddRecords: !r.coll.ClearOnPageLoad(),
	}
	if op.Limit <= 0 {
		// current page already at or past the target: read from the end of
		// the materialized prefix instead
		op.Start = r.coll.Count()
		op.Limit = page*size - op.Start
	}
	r.log.V(1).Info("reading ahead for selection", "index", index, "page", page, "start", op.Start, "limit", op.Limit)
	return r.coll.Read(op)
}
