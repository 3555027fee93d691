// Package table holds the presentation rules shared by every surface:
// column order and width, cell formatting, CSV export and row windowing.
package table

import (
	"slices"

	"github.com/NasaVasa/eventdash/internal/domain"
)

// DefaultWidth is the pixel width of any column without an explicit entry.
const DefaultWidth = 150

// Widths maps field names to pixel widths.
type Widths map[string]int

func (w Widths) Of(key string) int {
	if width, ok := w[key]; ok {
		return width
	}
	return DefaultWidth
}

// Total sums the widths of the given columns.
func (w Widths) Total(columns []string) int {
	total := 0
	for _, column := range columns {
		total += w.Of(column)
	}
	return total
}

var (
	AlertWidths = Widths{
		"alert_id":         150,
		"region":           70,
		"reviewed":         80,
		"create_timestamp": 100,
		"status":           60,
		"tenant":           60,
		"score":            60,
		"description":      250,
	}

	TransactionWidths = Widths{
		"transaction_key": 340,
		"amount":          100,
		"insert_date":     100,
		"insert_time":     160,
		"session_id":      200,
	}

	BrowserWidths = Widths{
		"user_id":    270,
		"event_date": 90,
		"event_time": 140,
		"event_type": 90,
		"metadata":   140,
		"session_id": 180,
	}
)

// ServerOrder returns the keys of the first row as the column list.
func ServerOrder(rows []domain.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Keys()
}

var alertPinned = []string{"severity", "alert_id", "reviewed", "create_timestamp"}

// AlertColumns orders alert columns: alert_id, region and reviewed first,
// create_timestamp last, and score, tenant and severity right after amount.
// Severity is only shown when the row carries an amount.
func AlertColumns(keys []string) []string {
	rest := make([]string, 0, len(keys)+3)
	for _, key := range keys {
		if !slices.Contains(alertPinned, key) {
			rest = append(rest, key)
		}
	}

	if amount := slices.Index(rest, "amount"); amount != -1 {
		for _, extra := range []string{"severity", "tenant", "score"} {
			if !slices.Contains(rest, extra) {
				rest = slices.Insert(rest, amount+1, extra)
			}
		}
	}

	columns := []string{"alert_id", "region", "reviewed"}
	for _, key := range rest {
		if key != "region" {
			columns = append(columns, key)
		}
	}
	return append(columns, "create_timestamp")
}

// PreviewOrder lists the main event fields first, then every other field,
// then xml_blob.
func PreviewOrder(keys []string) []string {
	ordered := make([]string, 0, len(keys))
	for _, key := range MainEventFields {
		if slices.Contains(keys, key) {
			ordered = append(ordered, key)
		}
	}
	for _, key := range keys {
		if key == BlobField || slices.Contains(MainEventFields, key) {
			continue
		}
		ordered = append(ordered, key)
	}
	if slices.Contains(keys, BlobField) {
		ordered = append(ordered, BlobField)
	}
	return ordered
}

var MainEventFields = []string{"user_id", "event_date", "event_time", "event_type", "session_id"}

const BlobField = "xml_blob"

// PreviewField is the column that opens the record preview.
const PreviewField = "user_id"
