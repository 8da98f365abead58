// Package lazyview implements a list view over a remotely paged collection.
// It sizes pages from the viewport, prefetches the next page as the user
// scrolls toward the end of what is loaded, and appends newly loaded records
// to the rendered output instead of re-rendering the whole list.
package lazyview

import (
	"fmt"
	"math"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/lazyview/internal/event"
	"github.com/oakwood-commons/lazyview/internal/render"
	"github.com/oakwood-commons/lazyview/internal/selection"
	"github.com/oakwood-commons/lazyview/internal/store"
)

// placeholder fills every field of the record used to measure item height.
const placeholder = "\u00a0"

// Collection is the paged collection a view renders.
type Collection interface {
	Load() tea.Cmd
	LoadPage(page int) tea.Cmd
	NextPage() tea.Cmd
	OnLoad(fn event.Handler[store.LoadEvent]) (off func())
	OnceLoad(fn event.Handler[store.LoadEvent]) *store.Pending
	IsLoading() bool
	Count() int
	Range(start int) []store.Record
	CurrentPage() int
	SetPageSize(size int)
	SetClearOnPageLoad(on bool)
	Schema() store.Schema
}

// Selection is the selection strategy whose events the view relays.
type Selection interface {
	OnSelect(fn event.Handler[selection.Event]) (off func())
	OnDeselect(fn event.Handler[selection.Event]) (off func())
	OnSelectionChange(fn event.Handler[selection.ChangeEvent]) (off func())
}

// RefreshEvent is emitted after every render pass.
type RefreshEvent struct {
	// Items is the number of rendered record elements.
	Items int
	// Appended is the number of records rendered incrementally, zero for a
	// full render.
	Appended int
	Err      error
}

// View is the lazy list view. All methods must be called from the event loop.
type View struct {
	cfg       Config
	coll      Collection
	renderer  render.Renderer
	selection Selection
	log       logr.Logger

	node         render.Node
	items        []render.Element
	itemHeight   int
	pageSize     int
	initialized  bool
	mounted      bool
	marker       int
	skippedEmpty bool
	width        int
	height       int

	scroller Scroller
	offs     []func()
	prefetch *store.Pending

	refreshed  event.Emitter[RefreshEvent]
	selected   event.Emitter[selection.Event]
	deselected event.Emitter[selection.Event]
	changed    event.Emitter[selection.ChangeEvent]
}

// New returns an unmounted view. The selection strategy is optional; when
// given, its events are relayed through the view.
func New(cfg Config, coll Collection, renderer render.Renderer, sel Selection, log logr.Logger) (*View, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid view config: %w", err)
	}
	if coll == nil {
		return nil, &ConfigurationError{Component: "store", Reason: "no collection configured"}
	}
	v := &View{
		cfg:        cfg,
		coll:       coll,
		renderer:   renderer,
		selection:  sel,
		log:        log.WithName("lazyview"),
		itemHeight: -1,
		pageSize:   -1,
	}
	if sel != nil {
		sel.OnSelect(v.selected.Emit)
		sel.OnDeselect(v.deselected.Emit)
		sel.OnSelectionChange(v.changed.Emit)
	}
	return v, nil
}

// MeasureItemHeight renders one placeholder record into a temporary node
// attached to the view's node and returns its height in rows. The temporary
// node is always detached again.
func (v *View) MeasureItemHeight() (int, error) {
	if v.renderer == nil {
		return 0, &ConfigurationError{Component: "template", Reason: "no template renderer configured"}
	}
	schema := v.coll.Schema()
	if schema.Empty() {
		return 0, &ConfigurationError{Component: "schema", Reason: "collection has no resolvable record schema"}
	}
	rec := make(store.Record, len(schema.Fields))
	for _, f := range schema.Fields {
		rec[f] = placeholder
	}

	tmp := &render.Node{}
	if err := v.renderer.RenderInto(tmp, 0, []store.Record{rec}); err != nil {
		return 0, fmt.Errorf("measure item height: %w", err)
	}
	detach := v.node.Attach(tmp)
	defer detach()
	return v.renderer.Measure(tmp), nil
}

// ComputePageSize derives the page size from the viewport height. The
// first time it yields a positive size the collection is initialized:
// pages are kept across loads, page 1 is loaded, and page 2 is requested
// as soon as page 1 arrives.
func (v *View) ComputePageSize(viewportHeight int) (int, tea.Cmd) {
	if v.itemHeight <= 0 {
		return v.pageSize, nil
	}
	size := int(math.Round(float64(viewportHeight) / float64(v.itemHeight)))
	if size == v.pageSize {
		return size, nil
	}
	v.pageSize = size
	if size <= 0 {
		return size, nil
	}
	v.coll.SetPageSize(size)
	v.log.V(1).Info("page size changed", "pageSize", size, "viewport", viewportHeight, "itemHeight", v.itemHeight)
	if v.initialized {
		return size, nil
	}

	v.initialized = true
	v.coll.SetClearOnPageLoad(false)
	load := v.coll.Load()
	v.armPrefetch()
	return size, load
}

// armPrefetch requests page 2 once the replacing read of page 1 lands.
// Loads of other reads, such as a look-ahead that overtook page 1, leave
// it waiting.
func (v *View) armPrefetch() {
	v.prefetch = v.coll.OnceLoad(func(ev store.LoadEvent) tea.Cmd {
		if ev.Discarded || ev.Op.AddRecords || ev.Op.Page != 1 {
			v.armPrefetch()
			return nil
		}
		return v.coll.LoadPage(2)
	})
}

// OnScroll requests the next page once the scroll position has passed the
// load barrier of the current page, nothing is loading, and the position
// is near the end of the requested pages. The rendered count is recorded
// so the next refresh only appends.
func (v *View) OnScroll(offset int) tea.Cmd {
	if v.itemHeight <= 0 || v.pageSize <= 0 {
		return nil
	}
	pageSize := float64(v.pageSize)
	scrolled := float64(offset) / float64(v.itemHeight)
	withinPage := math.Mod(scrolled, pageSize)
	nearEnd := scrolled/pageSize >= float64(v.coll.CurrentPage()-2)

	if withinPage/pageSize >= v.cfg.LoadBarrier && !v.coll.IsLoading() && nearEnd {
		v.log.V(1).Info("prefetching next page", "offset", offset, "page", v.coll.CurrentPage()+1)
		return v.nextPage()
	}
	return nil
}

// LoadMore requests the next page unless a read is in flight. Hosts use it
// when the user reaches the last rendered record without crossing a load
// barrier.
func (v *View) LoadMore() tea.Cmd {
	if !v.mounted || v.coll.IsLoading() {
		return nil
	}
	return v.nextPage()
}

func (v *View) nextPage() tea.Cmd {
	v.marker = v.coll.Count()
	return v.coll.NextPage()
}

// Refresh renders the collection. Records past the render marker are
// appended when the marker is set; otherwise the node is rewritten.
func (v *View) Refresh() tea.Cmd {
	if !v.mounted {
		return nil
	}

	var (
		err      error
		appended int
	)
	records := v.coll.Range(v.marker)
	switch {
	case v.coll.Count() == 0:
		v.node.Clear()
		if !v.cfg.DeferEmptyText || v.skippedEmpty {
			v.node.SetEmpty(v.cfg.EmptyText)
		}
		v.marker = 0
	case v.marker > 0:
		appended = len(records)
		err = v.renderer.AppendInto(&v.node, v.marker, records)
		v.marker = 0
	default:
		err = v.renderer.RenderInto(&v.node, 0, records)
	}
	v.skippedEmpty = true
	if err != nil {
		v.log.Error(err, "render failed")
	}

	v.items = v.node.QueryAll(v.cfg.ItemSelector)
	v.syncBounds()
	return v.refreshed.Emit(RefreshEvent{Items: len(v.items), Appended: appended, Err: err})
}

// OnLayout recomputes the page size for the new height, then lays out: a
// width change re-renders every record at the new width.
func (v *View) OnLayout(width, height int) tea.Cmd {
	_, cmd := v.ComputePageSize(height)
	v.height = height

	var refresh tea.Cmd
	if width != v.width {
		v.width = width
		if v.renderer != nil {
			v.renderer.SetWidth(width)
		}
		if v.mounted && v.coll.Count() > 0 {
			v.marker = 0
			refresh = v.Refresh()
		}
	}
	v.syncBounds()
	return tea.Batch(cmd, refresh)
}

// Mount measures the item height and starts listening to the scroller and
// the collection.
func (v *View) Mount(scroller Scroller) error {
	if v.mounted {
		return nil
	}
	h, err := v.MeasureItemHeight()
	if err != nil {
		return err
	}
	if scroller == nil {
		return &ConfigurationError{Component: "scroller", Reason: "scroller should be persistent"}
	}
	v.itemHeight = max(h, 1)
	v.scroller = scroller
	v.offs = append(v.offs,
		scroller.Subscribe(v.OnScroll),
		v.coll.OnLoad(v.onLoad),
	)
	v.mounted = true
	v.log.V(1).Info("mounted", "itemHeight", v.itemHeight)
	return nil
}

// Unmount stops listening and cancels the pending page 2 request. The
// item height is measured again on the next Mount.
func (v *View) Unmount() {
	for _, off := range v.offs {
		off()
	}
	v.offs = nil
	if v.prefetch != nil {
		v.prefetch.Cancel()
	}
	v.scroller = nil
	v.mounted = false
	v.itemHeight = -1
}

func (v *View) onLoad(ev store.LoadEvent) tea.Cmd {
	if ev.Discarded {
		return nil
	}
	if !ev.Op.AddRecords {
		v.marker = 0
	}
	return v.Refresh()
}

func (v *View) syncBounds() {
	if v.scroller != nil {
		v.scroller.SetBounds(v.node.Height(), v.height)
	}
}

// OnRefresh subscribes fn to render passes.
func (v *View) OnRefresh(fn event.Handler[RefreshEvent]) (off func()) {
	return v.refreshed.On(fn)
}

// OnSelect subscribes fn to relayed select events.
func (v *View) OnSelect(fn event.Handler[selection.Event]) (off func()) {
	return v.selected.On(fn)
}

// OnDeselect subscribes fn to relayed deselect events.
func (v *View) OnDeselect(fn event.Handler[selection.Event]) (off func()) {
	return v.deselected.On(fn)
}

// OnSelectionChange subscribes fn to relayed selection changes.
func (v *View) OnSelectionChange(fn event.Handler[selection.ChangeEvent]) (off func()) {
	return v.changed.On(fn)
}

// Items returns the rendered record elements.
func (v *View) Items() []render.Element { return v.items }

// Node returns the render target.
func (v *View) Node() *render.Node { return &v.node }

func (v *View) ItemHeight() int { return v.itemHeight }
func (v *View) PageSize() int   { return v.pageSize }
func (v *View) Marker() int     { return v.marker }
func (v *View) Mounted() bool   { return v.mounted }
func (v *View) Config() Config  { return v.cfg }

// ItemTop returns the first row of the record at index.
func (v *View) ItemTop(index int) int {
	return index * max(v.itemHeight, 1)
}
