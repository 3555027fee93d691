package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name                            string
		count, first, visible, overscan int
		start, end                      int
	}{
		{"top", 5000, 0, 15, 10, 0, 25},
		{"middle", 5000, 100, 15, 10, 90, 125},
		{"bottom", 50, 45, 15, 10, 35, 50},
		{"past end", 50, 500, 15, 10, 39, 50},
		{"empty", 0, 0, 15, 10, 0, 0},
		{"fewer than viewport", 3, 0, 15, 10, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.count, tt.first, tt.visible, tt.overscan)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.GreaterOrEqual(t, start, 0)
			assert.LessOrEqual(t, end, tt.count)
		})
	}
}

func TestPixelWindow(t *testing.T) {
	start, end := PixelWindow(1000, 400, 600, RowHeight, Overscan)
	assert.Equal(t, 0, start)
	assert.Equal(t, 35, end)

	start, end = PixelWindow(1000, 4000, 600, RowHeight, Overscan)
	assert.Equal(t, 90, start)
	assert.Equal(t, 125, end)
}
