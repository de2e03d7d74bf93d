package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterWindow(t *testing.T) {
	tests := []struct {
		name         string
		filter       Filter
		offset, size int
	}{
		{"default", DefaultFilter(), 0, 20},
		{"third page", Filter{Page: 3, PageSize: 10}, 20, 10},
		{"zero page", Filter{Page: 0, PageSize: 5}, 0, 5},
		{"oversized page", Filter{Page: 2, PageSize: 500}, 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, size := tt.filter.Window()
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.size, size)
		})
	}
}

func TestNewPaginated(t *testing.T) {
	page := NewPaginated([]string{"a", "b"}, 41, 1, 20)
	assert.Equal(t, 3, page.TotalPages)

	empty := NewPaginated[string](nil, 0, 1, 0)
	assert.Zero(t, empty.TotalPages)
	assert.NotNil(t, empty.Items)
}
