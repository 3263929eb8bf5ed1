package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 6))
	assert.Equal(t, 1, TotalPages(6, 6))
	assert.Equal(t, 2, TotalPages(7, 6))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestPageNormalizeAndOffset(t *testing.T) {
	p := Page{Number: -3}.Normalize(6)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 6, p.Size)
	assert.Equal(t, 0, p.Offset())

	p = Page{Number: 3, Size: 6}.Normalize(10)
	assert.Equal(t, 12, p.Offset())
	assert.Equal(t, 6, p.Limit())
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Page{Number: 2, Size: 6}, 13)
	assert.Equal(t, PageInfo{CurrentPage: 2, TotalPages: 3, TotalItems: 13}, info)
}
