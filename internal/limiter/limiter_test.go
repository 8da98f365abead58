package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid limit only",
			cfg:     Config{Limit: 10},
			wantErr: false,
		},
		{
			name:    "valid offset only",
			cfg:     Config{Offset: 5},
			wantErr: false,
		},
		{
			name:    "valid limit and offset",
			cfg:     Config{Limit: 10, Offset: 5},
			wantErr: false,
		},
		{
			name:    "valid tail only",
			cfg:     Config{Tail: 10},
			wantErr: false,
		},
		{
			name:    "tail ignores offset (valid)",
			cfg:     Config{Tail: 10, Offset: 5},
			wantErr: false,
		},
		{
			name:    "limit and tail mutually exclusive",
			cfg:     Config{Limit: 10, Tail: 5},
			wantErr: true,
			errMsg:  "mutually exclusive",
		},
		{
			name:    "negative limit invalid",
			cfg:     Config{Limit: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "negative offset invalid",
			cfg:     Config{Offset: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "negative tail invalid",
			cfg:     Config{Tail: -1},
			wantErr: true,
			errMsg:  "non-negative",
		},
		{
			name:    "zero values valid",
			cfg:     Config{Limit: 0, Offset: 0, Tail: 0},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigIsActive(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantBool bool
	}{
		{
			name:     "no flags set",
			cfg:      Config{},
			wantBool: false,
		},
		{
			name:     "limit set",
			cfg:      Config{Limit: 10},
			wantBool: true,
		},
		{
			name:     "offset set",
			cfg:      Config{Offset: 5},
			wantBool: true,
		},
		{
			name:     "tail set",
			cfg:      Config{Tail: 10},
			wantBool: true,
		},
		{
			name:     "all flags set",
			cfg:      Config{Limit: 10, Offset: 5, Tail: 0}, // tail not really set
			wantBool: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.IsActive()
			assert.Equal(t, tt.wantBool, got)
		})
	}
}

func TestApply(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name string
		cfg  Config
		want []int
	}{
		{
			name: "limit only",
			cfg:  Config{Limit: 3},
			want: []int{1, 2, 3},
		},
		{
			name: "offset only",
			cfg:  Config{Offset: 5},
			want: []int{6, 7, 8, 9, 10},
		},
		{
			name: "limit and offset",
			cfg:  Config{Limit: 3, Offset: 2},
			want: []int{3, 4, 5},
		},
		{
			name: "tail only",
			cfg:  Config{Tail: 3},
			want: []int{8, 9, 10},
		},
		{
			name: "offset larger than slice",
			cfg:  Config{Offset: 20},
			want: []int{},
		},
		{
			name: "limit larger than remaining",
			cfg:  Config{Limit: 100, Offset: 5},
			want: []int{6, 7, 8, 9, 10},
		},
		{
			name: "tail larger than slice",
			cfg:  Config{Tail: 100},
			want: items,
		},
		{
			name: "limit zero (unlimited)",
			cfg:  Config{Limit: 0},
			want: items,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.cfg, items))
		})
	}
}

func TestApplyEdgeCases(t *testing.T) {
	t.Run("empty slice", func(t *testing.T) {
		assert.Equal(t, []string{}, Apply(Config{Limit: 10}, []string{}))
	})

	t.Run("single element with limit 1", func(t *testing.T) {
		assert.Equal(t, []int{42}, Apply(Config{Limit: 1}, []int{42}))
	})

	t.Run("offset equals length", func(t *testing.T) {
		assert.Equal(t, []int{}, Apply(Config{Offset: 3}, []int{1, 2, 3}))
	})

	t.Run("tail zero is inactive", func(t *testing.T) {
		items := []int{1, 2, 3, 4, 5}
		assert.Equal(t, items, Apply(Config{Tail: 0}, items))
	})
}

func TestTailIgnoresOffset(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	// Even though offset is set, it should be ignored when tail is used
	assert.Equal(t, []int{8, 9, 10}, Apply(Config{Tail: 3, Offset: 5}, items))
}

func TestBounds(t *testing.T) {
	start, end := Config{Offset: 4, Limit: 3}.Bounds(10)
	assert.Equal(t, 4, start)
	assert.Equal(t, 7, end)

	start, end = Config{Tail: 2}.Bounds(10)
	assert.Equal(t, 8, start)
	assert.Equal(t, 10, end)
}

func TestWindow(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, []string{"b", "c"}, Window(items, 1, 2))
	assert.Equal(t, []string{"d", "e"}, Window(items, 3, 10))
	assert.Nil(t, Window(items, 5, 2))
	assert.Nil(t, Window(items, 0, 0))
	assert.Nil(t, Window(items, 9, 1))
}
