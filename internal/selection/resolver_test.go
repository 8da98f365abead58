package selection

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/lazyview/internal/store"
	"github.com/oakwood-commons/lazyview/internal/store/storetest"
)

func loadedStore(t *testing.T, total, pageSize int) (*store.Store, *storetest.Proxy) {
	t.Helper()
	p := storetest.NewProxy(total)
	s := store.New(p, store.Options{PageSize: pageSize})
	storetest.Drain(s.Load(), s.Update)
	require.Equal(t, min(total, pageSize), s.Count())
	return s, p
}

func TestSelectMaterializedIndexSelectsImmediately(t *testing.T) {
	s, p := loadedStore(t, 100, 10)
	r := NewResolver(Config{}, s, logr.Discard())

	r.Select(4, false, false)

	assert.Equal(t, []int{4}, r.Selected())
	assert.Len(t, p.Ops, 1)
	assert.False(t, r.Pending())
}

func TestSelectLooksAheadAcrossPages(t *testing.T) {
	s, p := loadedStore(t, 100, 10)
	r := NewResolver(Config{}, s, logr.Discard())
	var selected []int
	r.OnSelect(func(ev Event) tea.Cmd {
		selected = append(selected, ev.Index)
		return nil
	})

	cmd := r.Select(25, false, false)
	require.NotNil(t, cmd)
	assert.Empty(t, r.Selected())
	assert.True(t, r.Pending())
	assert.Equal(t, 4, s.CurrentPage())

	op := p.LastOp()
	assert.Equal(t, 4, op.Page)
	assert.Equal(t, 10, op.Start)
	assert.Equal(t, 30, op.Limit)
	assert.True(t, op.AddRecords)

	storetest.Drain(cmd, s.Update)

	assert.Equal(t, 40, s.Count())
	assert.Equal(t, []int{25}, r.Selected())
	assert.Equal(t, []int{25}, selected)
	assert.False(t, r.Pending())
}

func TestLookAheadOvertakingPrefetchStillSelects(t *testing.T) {
	s, _ := loadedStore(t, 30, 10)
	r := NewResolver(Config{}, s, logr.Discard())

	prefetch := s.LoadPage(2)
	lookAhead := r.Select(25, false, false)
	require.NotNil(t, lookAhead)

	// the look-ahead answers while page 2 is still in flight
	retry := s.Update(lookAhead())
	assert.Equal(t, 10, s.Count())
	assert.False(t, s.Exhausted())
	assert.True(t, r.Pending())

	storetest.Drain(prefetch, s.Update)
	storetest.Drain(retry, s.Update)

	assert.Equal(t, 30, s.Count())
	assert.Equal(t, []int{25}, r.Selected())
	assert.False(t, r.Pending())
}

func TestSelectPageMath(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		wantPage  int
		wantLimit int
	}{
		{"first index of second page", 10, 2, 10},
		{"inside second page", 15, 3, 20},
		{"inside fourth page", 25, 4, 30},
		{"first index of fourth page", 30, 4, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := loadedStore(t, 100, 10)
			r := NewResolver(Config{}, s, logr.Discard())

			r.Select(tt.index, false, false)

			op := p.LastOp()
			assert.Equal(t, tt.wantPage, op.Page)
			assert.Equal(t, 10, op.Start)
			assert.Equal(t, tt.wantLimit, op.Limit)
		})
	}
}

func TestSelectAddRecordsFollowsClearOnPageLoad(t *testing.T) {
	s, p := loadedStore(t, 100, 10)
	s.SetClearOnPageLoad(true)
	r := NewResolver(Config{}, s, logr.Discard())

	r.Select(25, false, false)
	assert.False(t, p.LastOp().AddRecords)
}

func TestLockedSelectIsNoop(t *testing.T) {
	s, p := loadedStore(t, 100, 10)
	r := NewResolver(Config{DisableSelection: true}, s, logr.Discard())

	assert.Nil(t, r.Select(25, false, false))
	assert.Nil(t, r.Select(3, false, false))

	assert.Empty(t, r.Selected())
	assert.Len(t, p.Ops, 1)
	assert.Equal(t, 1, s.CurrentPage())
	assert.False(t, r.Pending())
}

func TestCancelledLookAheadNeverSelects(t *testing.T) {
	s, _ := loadedStore(t, 100, 10)
	r := NewResolver(Config{}, s, logr.Discard())

	cmd := r.Select(25, false, false)
	assert.True(t, r.CancelPending())
	assert.False(t, r.CancelPending())
	storetest.Drain(cmd, s.Update)

	assert.Equal(t, 40, s.Count())
	assert.Empty(t, r.Selected())
}

func TestNewLookAheadSupersedesPrevious(t *testing.T) {
	s, p := loadedStore(t, 100, 10)
	r := NewResolver(Config{}, s, logr.Discard())

	first := r.Select(25, false, false)
	second := r.Select(35, false, false)

	op := p.LastOp()
	assert.Equal(t, 5, op.Page)
	assert.Equal(t, 40, op.Start)
	assert.Equal(t, 10, op.Limit)

	storetest.Drain(first, s.Update)
	assert.Equal(t, []int{35}, r.Selected())

	storetest.Drain(second, s.Update)
	assert.Equal(t, 50, s.Count())
	assert.Equal(t, []int{35}, r.Selected())
}

func TestLookAheadStopsWhenCollectionIsExhausted(t *testing.T) {
	s, p := loadedStore(t, 15, 10)
	r := NewResolver(Config{}, s, logr.Discard())

	storetest.Drain(r.Select(40, false, false), s.Update)

	assert.Equal(t, 15, s.Count())
	assert.True(t, s.Exhausted())
	assert.Empty(t, r.Selected())
	assert.False(t, r.Pending())
	assert.Len(t, p.Ops, 2)
}

func TestLookAheadRebasesWhenPageAlreadyAhead(t *testing.T) {
	s, p := loadedStore(t, 100, 10)
	s.SetCurrentPage(6)
	r := NewResolver(Config{}, s, logr.Discard())

	storetest.Drain(r.Select(15, false, false), s.Update)

	op := p.LastOp()
	assert.Equal(t, 3, op.Page)
	assert.Equal(t, 10, op.Start)
	assert.Equal(t, 20, op.Limit)
	assert.Equal(t, []int{15}, r.Selected())
}

func TestSelectResolvedBypassesLookAhead(t *testing.T) {
	s, p := loadedStore(t, 100, 10)
	r := NewResolver(Config{MultiSelect: true}, s, logr.Discard())

	assert.Nil(t, r.SelectResolved([]int{30}, false, false))
	r.SelectResolved([]int{1, 2}, false, false)

	assert.Equal(t, []int{1, 2}, r.Selected())
	assert.Len(t, p.Ops, 1)
}
