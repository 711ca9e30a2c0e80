package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name          string
		offset, limit int
		want          []int
		truncated     bool
	}{
		{"first page", 0, 2, []int{1, 2}, true},
		{"middle page", 2, 2, []int{3, 4}, true},
		{"last page", 4, 2, []int{5}, false},
		{"exact fit", 0, 5, []int{1, 2, 3, 4, 5}, false},
		{"offset past end", 9, 2, []int{}, false},
		{"no limit", 1, 0, []int{2, 3, 4, 5}, false},
		{"negative offset", -3, 1, []int{1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, res := Apply(items, tt.offset, tt.limit)
			assert.Equal(t, tt.want, page)
			assert.Equal(t, 5, res.TotalCount)
			assert.Equal(t, tt.truncated, res.Truncated)
		})
	}
}
