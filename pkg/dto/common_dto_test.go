package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, PaginationMeta{CurrentPage: 2, TotalPages: 3, TotalItems: 5, Limit: 2}, meta)

	page, meta = Paginate(items, 9, 2)
	assert.Empty(t, page)
	assert.Equal(t, 3, meta.TotalPages)

	page, meta = Paginate(items, 0, 0)
	assert.Equal(t, items, page)
	assert.Equal(t, 1, meta.TotalPages)

	_, meta = Paginate([]int{}, 1, 10)
	assert.Equal(t, 1, meta.TotalPages)
}
