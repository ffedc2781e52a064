package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreatePagination(t *testing.T) {
	p := CreatePagination(25, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	start, end := p.Bounds()
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	p = CreatePagination(25, 3, 10)
	start, end = p.Bounds()
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)
}

func TestCreatePaginationDefaults(t *testing.T) {
	p := CreatePagination(5, 0, 0)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 1, p.TotalPages)

	assert.Equal(t, MaxPageSize, CreatePagination(5, 1, 5000).PageSize)
}

func TestBoundsPastEnd(t *testing.T) {
	start, end := CreatePagination(5, 4, 2).Bounds()
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)

	start, end = CreatePagination(0, 1, 10).Bounds()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestBoundsHugePage(t *testing.T) {
	start, end := CreatePagination(5, math.MaxInt64/50, 100).Bounds()
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)

	start, end = CreatePagination(5, math.MaxInt64, MaxPageSize).Bounds()
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}
