package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageWindow_ClampedToLast(t *testing.T) {
	// 30 rows span two pages. A request for page 999 serves the last
	// page and reports it as such, instead of labeling page 2's rows
	// with the requested number.
	page, offset := pageWindow(999, 30)
	assert.Equal(t, 2, page)
	assert.Equal(t, PageSize, offset)
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		total      int
		wantPage   int
		wantOffset int
	}{
		{"first page", 1, 60, 1, 0},
		{"middle page", 2, 60, 2, PageSize},
		{"zero page floors to one", 0, 60, 1, 0},
		{"empty table", 5, 0, 1, 0},
		{"exact page boundary", 2, PageSize * 2, 2, PageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, offset := pageWindow(tt.page, tt.total)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestPaymentsPage_ServesClampedPage(t *testing.T) {
	page, _ := pageWindow(999, 30)
	result := PaymentsPage{Total: 30, Page: page, TotalPages: TotalPages(30)}

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 2, decoded["page"])
	assert.EqualValues(t, 2, decoded["total_pages"])
}
