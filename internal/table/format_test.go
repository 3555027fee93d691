package table

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.50", FormatAmount("12.5"))
	assert.Equal(t, "3.00", FormatAmount(json.Number("3")))
	assert.Equal(t, "0.13", FormatAmount(0.125))
	assert.Equal(t, "n/a", FormatAmount("n/a"))
	assert.Equal(t, "", FormatAmount(nil))
}

func TestCell(t *testing.T) {
	long := strings.Repeat("x", 120)
	row := domain.NewRow("amount", "7", "reviewed", true, "note", long, "missing", nil)

	assert.Equal(t, "7.00", Cell(row, "amount"))
	assert.Equal(t, MarkReviewed, Cell(row, "reviewed"))
	assert.Equal(t, strings.Repeat("x", 100)+"...", Cell(row, "note"))
	assert.Equal(t, "", Cell(row, "missing"))
	assert.Equal(t, "", Cell(row, "absent"))

	row.Set("reviewed", false)
	assert.Equal(t, MarkUnreviewed, Cell(row, "reviewed"))
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, "#ff4d4d", SeverityColor("CRITICAL"))
	assert.Equal(t, "#ff944d", SeverityColor("HIGH"))
	assert.Equal(t, "#f1c40f", SeverityColor("ELEVATED"))
	assert.Equal(t, "#2ecc71", SeverityColor("MODERATE"))
	assert.Equal(t, "#95a5a6", SeverityColor("LOW"))
	assert.Equal(t, "#f5f5f5", SeverityColor("unknown"))
}

func TestScoreColor(t *testing.T) {
	tests := map[string]string{
		"100":  "#e74c3c",
		"86":   "#e74c3c",
		"85.9": "#e67e22",
		"71":   "#e67e22",
		"61":   "#f1c40f",
		"60":   "#2ecc71",
		"bad":  "#2ecc71",
	}
	for score, want := range tests {
		t.Run(score, func(t *testing.T) {
			assert.Equal(t, want, ScoreColor(score))
		})
	}
}

func TestExpandBlob(t *testing.T) {
	assert.Equal(t, "b: 1\na: two", ExpandBlob(`{"b":1,"a":"two"}`))
	assert.Equal(t, "<xml/>", ExpandBlob("<xml/>"))
	assert.Equal(t, "", ExpandBlob(""))
}

func TestBlobPreview(t *testing.T) {
	assert.Equal(t, "abc...", BlobPreview("abc"))
	assert.Equal(t, strings.Repeat("y", 100)+"...", BlobPreview(strings.Repeat("y", 150)))
	assert.Equal(t, "", BlobPreview(""))
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", Fit("ab", 4))
	assert.Equal(t, 4, len([]rune(Fit("abcdefgh", 4))))
	assert.Equal(t, "", Fit("abc", 0))
}
