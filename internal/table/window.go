package table

const (
	// RowHeight is the fixed pixel height of a virtualized row.
	RowHeight = 40
	Overscan  = 10
)

// Window returns the half-open range [start, end) of rows to render for a
// viewport showing visible rows from first, padded by overscan on each side.
func Window(count, first, visible, overscan int) (start, end int) {
	if count <= 0 || visible <= 0 {
		return 0, 0
	}
	first = max(0, min(first, count-1))
	start = max(0, first-overscan)
	end = min(count, first+visible+overscan)
	return start, end
}

// PixelWindow converts a scroll offset and viewport height in pixels into a
// row window.
func PixelWindow(count, scrollTop, height, rowHeight, overscan int) (start, end int) {
	if rowHeight <= 0 {
		return 0, 0
	}
	first := max(0, scrollTop) / rowHeight
	visible := (height + rowHeight - 1) / rowHeight
	return Window(count, first, visible, overscan)
}
