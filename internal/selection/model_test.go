package selection

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/lazyview/internal/store"
	"github.com/oakwood-commons/lazyview/internal/store/storetest"
)

type fixedRecords int

func (n fixedRecords) At(i int) (store.Record, bool) {
	if i < 0 || i >= int(n) {
		return nil, false
	}
	return storetest.Contact(i), true
}

func (n fixedRecords) Count() int { return int(n) }

type recorder struct {
	selected   []int
	deselected []int
	changes    [][]int
}

func watch(m *Model) *recorder {
	r := &recorder{}
	m.OnSelect(func(ev Event) tea.Cmd {
		r.selected = append(r.selected, ev.Index)
		return nil
	})
	m.OnDeselect(func(ev Event) tea.Cmd {
		r.deselected = append(r.deselected, ev.Index)
		return nil
	})
	m.OnSelectionChange(func(ev ChangeEvent) tea.Cmd {
		r.changes = append(r.changes, ev.Selected)
		return nil
	})
	return r
}

func TestConfigModePrecedence(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want Mode
	}{
		{"default", Config{}, Single},
		{"single", Config{SingleSelect: true}, Single},
		{"multi", Config{MultiSelect: true, SingleSelect: true}, Multi},
		{"simple wins", Config{SimpleSelect: true, MultiSelect: true}, Simple},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Mode())
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Single, Multi, Simple} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
		assert.Equal(t, m, ConfigForMode(m).Mode())
	}
	_, err := ParseMode("bulk")
	require.Error(t, err)
}

func TestSingleSelectReplaces(t *testing.T) {
	m := NewModel(Config{}, fixedRecords(10))
	r := watch(m)

	m.DoSelect([]int{2}, false, false)
	m.DoSelect([]int{5, 6}, true, false)

	assert.Equal(t, []int{5}, m.Selected())
	assert.Equal(t, []int{2, 5}, r.selected)
	assert.Equal(t, []int{2}, r.deselected)
	assert.Equal(t, [][]int{{2}, {5}}, r.changes)
}

func TestSelectingSelectedIsQuiet(t *testing.T) {
	m := NewModel(Config{}, fixedRecords(10))
	m.DoSelect([]int{2}, false, false)
	r := watch(m)

	assert.Nil(t, m.DoSelect([]int{2}, false, false))
	assert.Empty(t, r.changes)
}

func TestMultiSelectKeepsExisting(t *testing.T) {
	m := NewModel(Config{MultiSelect: true}, fixedRecords(10))

	m.DoSelect([]int{1, 3}, false, false)
	m.DoSelect([]int{4}, true, false)
	assert.Equal(t, []int{1, 3, 4}, m.Selected())

	m.DoSelect([]int{3}, false, false)
	assert.Equal(t, []int{3}, m.Selected())
}

func TestUnmaterializedIndexIsIgnored(t *testing.T) {
	m := NewModel(Config{MultiSelect: true}, fixedRecords(3))
	r := watch(m)

	assert.Nil(t, m.DoSelect([]int{7}, false, false))
	m.DoSelect([]int{1, 9}, false, false)

	assert.Equal(t, []int{1}, m.Selected())
	assert.Equal(t, []int{1}, r.selected)
}

func TestSuppressEvent(t *testing.T) {
	m := NewModel(Config{}, fixedRecords(10))
	r := watch(m)

	m.DoSelect([]int{1}, false, true)
	m.DeselectAll(true)

	assert.Empty(t, m.Selected())
	assert.Empty(t, r.selected)
	assert.Empty(t, r.deselected)
	assert.Empty(t, r.changes)
}

func TestLockedModelNeverMutates(t *testing.T) {
	m := NewModel(Config{DisableSelection: true}, fixedRecords(10))
	r := watch(m)

	assert.Nil(t, m.DoSelect([]int{1}, false, false))
	assert.Nil(t, m.SelectWithEvent(1, false))

	m.SetLocked(false)
	m.DoSelect([]int{1}, false, false)
	m.SetLocked(true)
	assert.Nil(t, m.DoDeselect([]int{1}, false))
	assert.Nil(t, m.DeselectAll(false))

	assert.Equal(t, []int{1}, m.Selected())
	assert.Equal(t, []int{1}, r.selected)
	assert.True(t, m.State().Locked)
}

func TestSelectWithEvent(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		presses []int
		extend  bool
		want    []int
	}{
		{"single moves", Config{}, []int{1, 2}, false, []int{2}},
		{"single sticks without allowDeselect", Config{}, []int{1, 1}, false, []int{1}},
		{"single deselects when allowed", Config{AllowDeselect: true}, []int{1, 1}, false, []int{}},
		{"simple toggles", Config{SimpleSelect: true}, []int{1, 2, 1}, false, []int{2}},
		{"multi plain replaces", Config{MultiSelect: true}, []int{1, 2}, false, []int{2}},
		{"multi extend accumulates", Config{MultiSelect: true}, []int{1, 2, 3, 2}, true, []int{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(tt.cfg, fixedRecords(10))
			for _, i := range tt.presses {
				m.SelectWithEvent(i, tt.extend)
			}
			assert.ElementsMatch(t, tt.want, m.Selected())
		})
	}
}

func TestPrune(t *testing.T) {
	recs := fixedRecords(10)
	m := NewModel(Config{MultiSelect: true}, recs)
	m.DoSelect([]int{2, 8}, false, false)

	m.records = fixedRecords(5)
	m.Prune()
	assert.Equal(t, []int{2}, m.Selected())
}
