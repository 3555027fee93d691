package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

const (
	MarkReviewed   = "✔️"
	MarkUnreviewed = "❌"

	// TruncateAt is the longest text rendered inline before an ellipsis.
	TruncateAt = 100
)

// FormatAmount renders a monetary value with two decimals. Values that do
// not parse are returned unchanged.
func FormatAmount(value any) string {
	text := domain.ValueText(value)
	if text == "" {
		return ""
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return text
	}
	return amount.StringFixed(2)
}

func ReviewedMark(reviewed bool) string {
	if reviewed {
		return MarkReviewed
	}
	return MarkUnreviewed
}

// Truncate cuts s to limit characters followed by "...".
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Cell renders a single cell the way every table shows it.
func Cell(row domain.Row, key string) string {
	value, ok := row.Get(key)
	if !ok || value == nil {
		return ""
	}
	switch key {
	case "amount":
		return FormatAmount(value)
	case "reviewed":
		return ReviewedMark(row.Bool(key))
	}
	return Truncate(domain.ValueText(value), TruncateAt)
}

// Fit pads or cuts s to exactly width terminal cells.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func SeverityColor(severity string) string {
	switch severity {
	case "CRITICAL":
		return "#ff4d4d"
	case "HIGH":
		return "#ff944d"
	case "ELEVATED":
		return "#f1c40f"
	case "MODERATE":
		return "#2ecc71"
	case "LOW":
		return "#95a5a6"
	default:
		return "#f5f5f5"
	}
}

// ScoreColor bands a numeric score. Unparseable scores fall in the lowest band.
func ScoreColor(score string) string {
	value, err := strconv.ParseFloat(strings.TrimSpace(score), 64)
	if err != nil {
		value = math.Inf(-1)
	}
	switch {
	case value >= 86:
		return "#e74c3c"
	case value >= 71:
		return "#e67e22"
	case value >= 61:
		return "#f1c40f"
	default:
		return "#2ecc71"
	}
}

// ExpandBlob renders a JSON object string as "key: value" lines in source
// order. Text that is not a JSON object is returned as is.
func ExpandBlob(blob string) string {
	if blob == "" {
		return ""
	}
	if strings.TrimSpace(blob) == "null" {
		return blob
	}
	var row domain.Row
	if err := json.Unmarshal([]byte(blob), &row); err != nil {
		return blob
	}
	lines := make([]string, 0, row.Len())
	for _, key := range row.Keys() {
		lines = append(lines, fmt.Sprintf("%s: %s", key, row.Text(key)))
	}
	return strings.Join(lines, "\n")
}

// BlobPreview is the collapsed form of an expandable blob field.
func BlobPreview(blob string) string {
	if blob == "" {
		return ""
	}
	runes := []rune(blob)
	if len(runes) > TruncateAt {
		runes = runes[:TruncateAt]
	}
	return string(runes) + "..."
}
