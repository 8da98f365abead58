// Package ui hosts the lazy list view in a Bubble Tea program: keys, mouse,
// status bar, goto prompt and snapshot rendering.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/lazyview/internal/lazyview"
	"github.com/oakwood-commons/lazyview/internal/render"
	"github.com/oakwood-commons/lazyview/internal/scroll"
	"github.com/oakwood-commons/lazyview/internal/selection"
	"github.com/oakwood-commons/lazyview/internal/store"
)

// gutterWidth is the number of columns reserved for the cursor and
// selection markers in front of every record.
const gutterWidth = 2

// Options configures a Model.
type Options struct {
	Title   string
	Theme   Theme
	NoColor bool
	// Static disables animation (spinner, cursor blink). Snapshots and tests
	// drain commands synchronously and must not be handed timers.
	Static bool
	Keys   *KeyMap
	Logger logr.Logger
}

// Model is the list browser.
type Model struct {
	store    *store.Store
	view     *lazyview.View
	resolver *selection.Resolver
	scroller *scroll.Container

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model
	styles  styles
	log     logr.Logger

	title     string
	noColor   bool
	static    bool
	spinning  bool
	prompting bool
	fullHelp  bool
	quitting  bool
	cursor    int
	target    int
	width     int
	height    int
	status    string
	kind      statusKind
}

// New mounts view in a fresh scroll container and wires the host to the
// store and selection events. The view must have been built over st with
// res as its selection strategy.
func New(st *store.Store, view *lazyview.View, res *selection.Resolver, opts Options) (*Model, error) {
	sc := &scroll.Container{}
	if err := view.Mount(sc); err != nil {
		return nil, err
	}

	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	if opts.Theme.Accent == nil {
		opts.Theme = DefaultTheme()
	}
	sty := newStyles(opts.Theme, opts.NoColor)

	h := help.New()
	h.Styles = sty.help

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(sty.title.UnsetBold()))

	ti := textinput.New()
	ti.Prompt = "select index: "
	ti.Placeholder = "0"
	ti.CharLimit = 12

	m := &Model{
		store:    st,
		view:     view,
		resolver: res,
		scroller: sc,
		keys:     keys,
		help:     h,
		spinner:  sp,
		input:    ti,
		styles:   sty,
		log:      opts.Logger.WithName("ui"),
		title:    opts.Title,
		noColor:  opts.NoColor,
		static:   opts.Static,
		target:   -1,
	}
	st.OnLoad(m.onLoad)
	st.OnFailure(m.onFailure)
	view.OnSelect(m.onSelect)
	view.OnSelectionChange(m.onSelectionChange)
	return m, nil
}

// Init implements tea.Model. Nothing is loaded before the first window size
// is known.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cmd = m.layout()
	case store.LoadedMsg, store.LoadFailedMsg:
		cmd = tea.Batch(m.store.Update(msg), m.checkTarget())
	case spinner.TickMsg:
		if !m.store.IsLoading() {
			m.spinning = false
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.MouseWheelMsg:
		cmd = m.wheel(msg)
	case tea.KeyPressMsg:
		if m.prompting {
			cmd = m.updatePrompt(msg)
		} else {
			cmd = m.handleKey(msg)
		}
	default:
		if m.prompting {
			var c tea.Cmd
			m.input, c = m.input.Update(msg)
			cmd = m.animated(c)
		}
	}
	return m, tea.Batch(cmd, m.spin())
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// Render draws the current frame.
func (m *Model) Render() string {
	if m.quitting {
		return ""
	}
	out := strings.Join([]string{m.titleView(), m.listView(), m.footerView(), m.helpView()}, "\n")
	if m.noColor {
		out = ansi.Strip(out)
	}
	return out
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Down):
		return m.moveTo(m.cursor + 1)
	case key.Matches(msg, m.keys.Up):
		return m.moveTo(m.cursor - 1)
	case key.Matches(msg, m.keys.PageDown):
		return m.moveTo(m.cursor + m.pageStep())
	case key.Matches(msg, m.keys.PageUp):
		return m.moveTo(m.cursor - m.pageStep())
	case key.Matches(msg, m.keys.Top):
		return m.moveTo(0)
	case key.Matches(msg, m.keys.Bottom):
		return m.moveTo(m.store.Count() - 1)
	case key.Matches(msg, m.keys.Toggle):
		return m.resolver.SelectWithEvent(m.cursor, true)
	case key.Matches(msg, m.keys.Select):
		return m.resolver.SelectWithEvent(m.cursor, false)
	case key.Matches(msg, m.keys.Goto):
		m.prompting = true
		m.input.Reset()
		return m.animated(m.input.Focus())
	case key.Matches(msg, m.keys.Cancel):
		if m.resolver.CancelPending() {
			m.target = -1
			m.setStatus(statusInfo, "look-ahead cancelled")
		} else {
			m.clearStatus()
		}
		return nil
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	case key.Matches(msg, m.keys.Help):
		m.fullHelp = !m.fullHelp
		return m.layout()
	}
	return nil
}

func (m *Model) updatePrompt(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return nil
	case key.Matches(msg, m.keys.Select):
		value := strings.TrimSpace(m.input.Value())
		m.closePrompt()
		return m.gotoIndex(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m.animated(cmd)
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.input.Blur()
}

// gotoIndex selects the record at the typed logical index, reading ahead
// when it is not loaded yet. The cursor follows once it is selected.
func (m *Model) gotoIndex(value string) tea.Cmd {
	index, err := strconv.Atoi(value)
	if err != nil || index < 0 {
		m.setStatus(statusError, fmt.Sprintf("invalid index %q", value))
		return nil
	}
	keep := m.resolver.Mode() != selection.Single
	if index < m.store.Count() {
		m.target = -1
		m.cursor = index
		return tea.Batch(m.resolver.Select(index, keep, false), m.reveal())
	}
	m.target = index
	m.setStatus(statusInfo, fmt.Sprintf("loading record %d", index))
	m.log.V(1).Info("goto unloaded record", "index", index, "count", m.store.Count())
	return m.resolver.Select(index, keep, false)
}

// checkTarget settles a goto once its look-ahead is no longer waiting. A
// target that was loaded without a select event (it was already selected)
// gets the cursor; otherwise the collection ended before the index.
func (m *Model) checkTarget() tea.Cmd {
	if m.target < 0 || m.resolver.Pending() {
		return nil
	}
	if m.target < m.store.Count() {
		m.cursor = m.target
		m.target = -1
		m.clearStatus()
		return m.reveal()
	}
	m.setStatus(statusError, fmt.Sprintf("record %d is out of range", m.target))
	m.target = -1
	return nil
}

func (m *Model) reload() tea.Cmd {
	m.resolver.CancelPending()
	m.target = -1
	m.cursor = 0
	m.clearStatus()
	m.store.SetCurrentPage(1)
	return tea.Batch(m.scroller.ScrollTo(0), m.store.Load())
}

// moveTo moves the cursor to index and scrolls it into view. Landing on the
// last loaded record asks for more when no scroll barrier did.
func (m *Model) moveTo(index int) tea.Cmd {
	count := m.store.Count()
	if count == 0 {
		return nil
	}
	m.cursor = min(max(index, 0), count-1)
	cmd := m.reveal()
	if m.cursor == count-1 && !m.store.Exhausted() {
		cmd = tea.Batch(cmd, m.view.LoadMore())
	}
	return cmd
}

func (m *Model) reveal() tea.Cmd {
	return m.scroller.Reveal(m.view.ItemTop(m.cursor), max(m.view.ItemHeight(), 1))
}

// wheel scrolls by one record and keeps the cursor on a visible record.
func (m *Model) wheel(msg tea.MouseWheelMsg) tea.Cmd {
	step := max(m.view.ItemHeight(), 1)
	var cmd tea.Cmd
	switch msg.Button {
	case tea.MouseWheelUp:
		cmd = m.scroller.ScrollBy(-step)
	case tea.MouseWheelDown:
		cmd = m.scroller.ScrollBy(step)
	default:
		return nil
	}
	first := (m.scroller.Offset() + step - 1) / step
	last := (m.scroller.Offset()+m.scroller.Viewport())/step - 1
	if m.cursor < first {
		m.cursor = first
	} else if m.cursor > last && last >= first {
		m.cursor = last
	}
	m.cursor = min(m.cursor, max(m.store.Count()-1, 0))
	return cmd
}

func (m *Model) pageStep() int {
	return max(m.listHeight()/max(m.view.ItemHeight(), 1), 1)
}

func (m *Model) layout() tea.Cmd {
	if m.width <= 0 || m.height <= 0 {
		return nil
	}
	m.help.SetWidth(m.width)
	m.input.SetWidth(max(m.width-lipgloss.Width(m.input.Prompt)-1, 1))
	return m.view.OnLayout(max(m.width-gutterWidth, 1), m.listHeight())
}

// listHeight is the number of rows left for records below the title and
// above the status and help lines.
func (m *Model) listHeight() int {
	return max(m.height-2-lipgloss.Height(m.helpView()), 1)
}

func (m *Model) spin() tea.Cmd {
	if m.static || m.spinning || !m.store.IsLoading() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) animated(cmd tea.Cmd) tea.Cmd {
	if m.static {
		return nil
	}
	return cmd
}

func (m *Model) onLoad(ev store.LoadEvent) tea.Cmd {
	if !ev.Op.AddRecords {
		m.resolver.Prune()
		m.cursor = min(m.cursor, max(ev.Count-1, 0))
	}
	if m.kind == statusError && m.target < 0 {
		m.clearStatus()
	}
	return nil
}

func (m *Model) onFailure(ev store.FailureEvent) tea.Cmd {
	m.setStatus(statusError, ev.Err.Error())
	return nil
}

func (m *Model) onSelect(ev selection.Event) tea.Cmd {
	if ev.Index != m.target {
		return nil
	}
	m.target = -1
	m.cursor = ev.Index
	m.clearStatus()
	return m.reveal()
}

func (m *Model) onSelectionChange(ev selection.ChangeEvent) tea.Cmd {
	m.log.V(1).Info("selection changed", "selected", ev.Selected)
	return nil
}

func (m *Model) titleView() string {
	title := m.title
	if title == "" {
		title = "lazyview"
	}
	out := m.styles.title.Render(title)
	if m.store.IsLoading() {
		out += " " + m.spinner.View() + m.styles.muted.Render(" loading")
	}
	return out
}

func (m *Model) listView() string {
	rows := m.listHeight()
	lines := m.decoratedLines()
	start := min(m.scroller.Offset(), len(lines))
	end := min(start+rows, len(lines))

	visible := make([]string, 0, rows)
	visible = append(visible, lines[start:end]...)
	for len(visible) < rows {
		visible = append(visible, "")
	}
	return strings.Join(visible, "\n")
}

// decoratedLines returns every rendered row with its gutter and styles.
func (m *Model) decoratedLines() []string {
	itemClass := render.Class(m.view.Config().ItemSelector)
	var out []string
	for _, el := range m.view.Node().Elements {
		style := lipgloss.NewStyle()
		marker := "  "
		switch {
		case el.Class == render.EmptyClass:
			style = m.styles.muted
		case el.Class != itemClass:
		case el.Index == m.cursor && m.resolver.IsSelected(el.Index):
			style, marker = m.styles.cursor, ">*"
		case el.Index == m.cursor:
			style, marker = m.styles.cursor, "> "
		case m.resolver.IsSelected(el.Index):
			style, marker = m.styles.selected, " *"
		}
		for i, line := range strings.Split(el.Content, "\n") {
			prefix := "  "
			if i == 0 {
				prefix = marker
			}
			out = append(out, prefix+style.Render(line))
		}
	}
	return out
}

func (m *Model) footerView() string {
	if m.prompting {
		return m.input.View()
	}
	return m.statusView()
}

func (m *Model) helpView() string {
	if m.fullHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// Cursor returns the logical index under the cursor.
func (m *Model) Cursor() int { return m.cursor }

// Status returns the status message.
func (m *Model) Status() string { return m.status }

// Prompting reports whether the goto prompt is open.
func (m *Model) Prompting() bool { return m.prompting }

// Selected returns the selected logical indices.
func (m *Model) Selected() []int { return m.resolver.Selected() }
