package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePageParams(t *testing.T) {
	cases := []struct {
		name             string
		page, pageSize   string
		wantP, wantSize int
	}{
		{"defaults on empty input", "", "", 1, 20},
		{"defaults on malformed input", "abc", "xyz", 1, 20},
		{"passes through valid values", "3", "50", 3, 50},
		{"clamps non-positive page", "0", "20", 1, 20},
		{"clamps non-positive page size", "2", "-5", 2, 20},
		{"clamps oversized page size", "2", "500", 2, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotPage, gotSize := parsePageParams(tc.page, tc.pageSize)
			assert.Equal(t, tc.wantP, gotPage)
			assert.Equal(t, tc.wantSize, gotSize)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(5, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
	assert.Equal(t, 0, totalPages(100, 0))
}
