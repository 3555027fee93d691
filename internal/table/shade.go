package table

import (
	"fmt"
	"math"
)

// NeutralFill is used for regions without data.
const NeutralFill = "#e0e0e0"

// Palette cycles across pie slices.
var Palette = []string{
	"#8884d8", "#82ca9d", "#ffc658", "#ff8042", "#8dd1e1",
	"#a29bfe", "#fab1a0", "#55efc4", "#ffeaa7",
}

func PaletteColor(index int) string {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// Intensity is count relative to maxCount, clamped to [0, 1]. maxCount is
// floored at 1.
func Intensity(count, maxCount int) float64 {
	maxCount = max(maxCount, 1)
	return math.Max(0, math.Min(1, float64(count)/float64(maxCount)))
}

// Shade interpolates from blue at intensity 0 to red at intensity 1.
func Shade(intensity float64) string {
	red := int(math.Round(255 * intensity))
	blue := int(math.Round(255 * (1 - intensity)))
	return fmt.Sprintf("rgb(%d, 0, %d)", red, blue)
}
