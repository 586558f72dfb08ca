package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesDefaultsAndCaps(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{"zero values", 0, 0, 1, 20},
		{"negative values", -3, -1, 1, 20},
		{"normal", 2, 50, 2, 50},
		{"per page capped", 1, 500, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPerPage, p.PerPage)
		})
	}
}

func TestOffsetAndLimit(t *testing.T) {
	p := New(3, 25)
	assert.Equal(t, 50, p.Offset())
	assert.Equal(t, 25, p.Limit())
}

func TestNewResult(t *testing.T) {
	p := New(2, 10)
	r := NewResult([]string{"a", "b"}, 42, p)

	assert.Equal(t, 42, r.Total)
	assert.Equal(t, 2, r.Page)
	assert.Equal(t, 10, r.PerPage)
	assert.Equal(t, 5, r.TotalPages)
	assert.Len(t, r.Data, 2)
}

func TestNewResultNilData(t *testing.T) {
	r := NewResult[string](nil, 0, New(1, 10))
	assert.NotNil(t, r.Data)
	assert.Empty(t, r.Data)
	assert.Equal(t, 0, r.TotalPages)
}
