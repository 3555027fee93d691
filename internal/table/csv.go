package table

import (
	"strings"

	"github.com/NasaVasa/eventdash/internal/domain"
)

const (
	AlertsExportName       = "alerts_export.csv"
	TransactionsExportName = "transactions_export.csv"
	DataExportName         = "data_export.csv"
)

// ExportCSV renders the loaded rows as CSV. The header is the first row's
// keys, unquoted; every data field is quoted with embedded quotes doubled.
// Lines are joined with "\n" and there is no trailing newline. An empty row
// set exports nothing.
func ExportCSV(rows []domain.Row) string {
	if len(rows) == 0 {
		return ""
	}
	header := rows[0].Keys()
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(header, ","))

	fields := make([]string, len(header))
	for _, row := range rows {
		for i, key := range header {
			fields[i] = `"` + strings.ReplaceAll(row.Text(key), `"`, `""`) + `"`
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}
