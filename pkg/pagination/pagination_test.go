// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/librarium/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "/books", 1, 20, 0},
		{"explicit", "/books?page=3&limit=10", 3, 10, 20},
		{"per_page alias", "/books?page=2&per_page=5", 2, 5, 5},
		{"clamped", "/books?page=-4&limit=5000", 1, 200, 0},
		{"garbage", "/books?page=x&limit=y", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", tt.url, nil))
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
			assert.Equal(t, tt.offset, params.Offset())
		})
	}
}

func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 20, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	assert.False(t, pagination.NewMeta(1, 20, 0).HasNext)
}
