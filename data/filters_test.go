package data

import (
	"testing"

	"github.com/odese/athenaeum/internal/validator"
	"github.com/stretchr/testify/assert"
)

func TestValidateFilters(t *testing.T) {
	safeList := []string{"id", "-id", "borrow_date", "-borrow_date"}

	tests := []struct {
		name    string
		filters Filters
		valid   bool
	}{
		{"sensible defaults", Filters{Page: 1, PageSize: 10, Sort: "id", SortSafeList: safeList}, true},
		{"zero page", Filters{Page: 0, PageSize: 10, Sort: "id", SortSafeList: safeList}, false},
		{"oversized page size", Filters{Page: 1, PageSize: 101, Sort: "id", SortSafeList: safeList}, false},
		{"sort not in safelist", Filters{Page: 1, PageSize: 10, Sort: "fine_amount", SortSafeList: safeList}, false},
		{"descending sort in safelist", Filters{Page: 1, PageSize: 10, Sort: "-borrow_date", SortSafeList: safeList}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateFilters(v, tt.filters)
			assert.Equal(t, tt.valid, v.Valid())
		})
	}
}

func TestFiltersSort(t *testing.T) {
	f := Filters{Sort: "-due_date", SortSafeList: []string{"due_date", "-due_date"}}
	assert.Equal(t, "due_date", f.SortColumn())
	assert.Equal(t, "DESC", f.SortDirection())

	f.Sort = "due_date"
	assert.Equal(t, "ASC", f.SortDirection())

	assert.Panics(t, func() {
		unsafe := Filters{Sort: "due_date; DROP TABLE transactions", SortSafeList: []string{"due_date"}}
		unsafe.SortColumn()
	})
}

func TestCalculateMetadata(t *testing.T) {
	metadata := CalculateMetadata(43, 2, 10)
	assert.Equal(t, 2, metadata.CurrentPage)
	assert.Equal(t, 10, metadata.PageSize)
	assert.Equal(t, 1, metadata.FirstPage)
	assert.Equal(t, 5, metadata.LastPage)
	assert.Equal(t, 43, metadata.TotalRecords)

	assert.Equal(t, Metadata{}, CalculateMetadata(0, 1, 10))
}
