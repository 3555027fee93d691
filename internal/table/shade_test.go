package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShade(t *testing.T) {
	assert.Equal(t, "rgb(255, 0, 0)", Shade(Intensity(10, 10)))
	assert.Equal(t, "rgb(0, 0, 255)", Shade(Intensity(0, 10)))
	assert.Equal(t, "rgb(128, 0, 128)", Shade(Intensity(5, 10)))
}

func TestIntensityFloorsMax(t *testing.T) {
	assert.Equal(t, 0.0, Intensity(0, 0))
	assert.Equal(t, 1.0, Intensity(3, 0))
}

func TestPaletteColorCycles(t *testing.T) {
	assert.Equal(t, "#8884d8", PaletteColor(0))
	assert.Equal(t, "#8884d8", PaletteColor(9))
	assert.Equal(t, "#ffeaa7", PaletteColor(8))
}
