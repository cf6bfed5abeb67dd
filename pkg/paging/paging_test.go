package paging

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Params
	}{
		{
			name:     "Defaults on empty query",
			query:    "",
			expected: Params{Page: 0, Size: 20},
		},
		{
			name:     "Explicit page and size",
			query:    "page=2&size=5",
			expected: Params{Page: 2, Size: 5},
		},
		{
			name:     "Sort ascending",
			query:    "sort=created_at",
			expected: Params{Page: 0, Size: 20, Sort: "created_at"},
		},
		{
			name:     "Sort descending",
			query:    "sort=created_at,desc",
			expected: Params{Page: 0, Size: 20, Sort: "created_at", Desc: true},
		},
		{
			name:     "Size capped at maximum",
			query:    "size=1000",
			expected: Params{Page: 0, Size: 100},
		},
		{
			name:     "Malformed numbers fall back to defaults",
			query:    "page=abc&size=-3",
			expected: Params{Page: 0, Size: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, FromQuery(values))
		})
	}
}

func TestOffsetAndLimit(t *testing.T) {
	p := Params{Page: 3, Size: 10}
	assert.Equal(t, 10, p.Limit())
	assert.Equal(t, 30, p.Offset())

	p = Params{Page: -1, Size: 0}
	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, 0, p.Offset())
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, Params{Page: 0, Size: 3}, 7)
	assert.Equal(t, []int{1, 2, 3}, page.Items)
	assert.Equal(t, int64(7), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	empty := NewPage[int](nil, Params{Page: 4, Size: 3}, 7)
	assert.NotNil(t, empty.Items)
	assert.Len(t, empty.Items, 0)
}

func TestMap(t *testing.T) {
	page := NewPage([]int{1, 2}, Params{Page: 1, Size: 2}, 4)
	mapped := Map(page, func(i int) string {
		return string(rune('a' + i))
	})
	assert.Equal(t, []string{"b", "c"}, mapped.Items)
	assert.Equal(t, page.Page, mapped.Page)
	assert.Equal(t, page.Total, mapped.Total)
}
