package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/NasaVasa/eventdash/internal/usecase"
	"github.com/charmbracelet/lipgloss"
)

// pixelsPerCell converts the shared pixel widths to terminal cells.
const pixelsPerCell = 10

func cells(px int) int {
	return max(4, px/pixelsPerCell)
}

func (m Model) View() string {
	tab := m.ws.Tabs.Active()

	var b strings.Builder
	b.WriteString(titleStyle.Render("eventdash"))
	b.WriteString(m.renderTabBar(tab))
	b.WriteString("\n\n")

	switch tab {
	case usecase.TabEvents:
		b.WriteString(m.renderEvents())
	case usecase.TabBrowser:
		b.WriteString(m.renderBrowser())
	case usecase.TabQuery:
		b.WriteString(m.renderQuery())
	case usecase.TabTransactions:
		b.WriteString(m.renderTransactions())
	case usecase.TabAlerts:
		b.WriteString(m.renderAlerts())
	case usecase.TabDashboards:
		b.WriteString(m.renderDashboards())
	case usecase.TabHealth:
		b.WriteString(m.renderHealth())
	}

	b.WriteString("\n")
	if m.flash != "" {
		style := okStyle
		if m.flashErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.flash))
		b.WriteString("\n")
	}
	if m.showHelp {
		b.WriteString(m.help.View(keys))
		b.WriteString("\n")
	}
	b.WriteString(statusBarStyle.Render(" " + tabHelp(tab) + " | 1-7: tabs | ?: help | q: quit"))
	return b.String()
}

func (m Model) renderTabBar(active string) string {
	tabs := make([]string, 0, len(usecase.Tabs))
	for i, tab := range usecase.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tab.Label)
		if tab.Key == active {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

// visibleRows is the number of table rows that fit below the chrome.
func (m Model) visibleRows() int {
	return max(5, m.height-12)
}

// viewport returns the row range to draw so the cursor stays on screen.
func (m Model) viewport(count, cursor int) (int, int) {
	visible := m.visibleRows()
	first := max(0, cursor-visible+1)
	return table.Window(count, first, visible, 0)
}

type cellStyler func(row domain.Row, key string) (lipgloss.Style, bool)

func renderTable(columns []string, rows []domain.Row, widths table.Widths, start, end, cursor int, styler cellStyler) string {
	var b strings.Builder
	header := make([]string, 0, len(columns))
	for _, column := range columns {
		header = append(header, table.Fit(column, cells(widths.Of(column))))
	}
	b.WriteString(headerStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	for i := start; i < end; i++ {
		row := rows[i]
		fields := make([]string, 0, len(columns))
		for _, column := range columns {
			text := table.Cell(row, column)
			if column == table.BlobField {
				text = table.BlobPreview(row.Text(column))
			}
			text = table.Fit(text, cells(widths.Of(column)))
			if styler != nil {
				if style, ok := styler(row, column); ok {
					text = style.Render(text)
				}
			}
			fields = append(fields, text)
		}
		line := strings.Join(fields, " ")
		if i == cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// alertStyler renders unreviewed rows bold and reviewed rows faint, with
// severity and score painted as background bands.
func alertStyler(row domain.Row, key string) (lipgloss.Style, bool) {
	style := unreviewedStyle
	if row.Bool("reviewed") {
		style = reviewedStyle
	}
	switch key {
	case "severity":
		style = style.Background(lipgloss.Color(table.SeverityColor(row.Text(key))))
	case "score":
		style = style.Background(lipgloss.Color(table.ScoreColor(row.Text(key)))).
			Foreground(lipgloss.Color("#000000"))
	}
	return style, true
}

func renderError(text string) string {
	if text == "" {
		return ""
	}
	return errorStyle.Render(text) + "\n"
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func optionalMs(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2fms", *v)
}

// --- Event browser ---

func (m Model) renderEvents() string {
	state := m.ws.Events.State()
	var b strings.Builder
	b.WriteString("user_id: " + m.user.View() + "\n")
	b.WriteString(renderError(state.Error))
	if state.Loading {
		b.WriteString(dimStyle.Render("Loading...") + "\n")
	}

	status := state.Status
	if status == "" {
		status = "-"
	}
	b.WriteString(fmt.Sprintf("Status: %s | Last: %s | Avg: %s | Lookups: %d\n",
		status, ms(state.LastTime()), ms(state.AverageTime()), len(state.History)))
	if state.Timing != nil {
		t := state.Timing
		b.WriteString(dimStyle.Render(fmt.Sprintf("web→api %.2fms | api→db %.2fms | db fetch %.2fms | db→web %.2fms | render %.2fms",
			t.WebToAPI, t.APIToDB, t.DBFetch, t.DBToWeb, state.RenderTime())) + "\n")
	}
	if state.RandomIDs != "" {
		b.WriteString("\n" + state.RandomIDs + "\n")
	}
	if len(state.Rows) > 0 {
		b.WriteString("\n")
		columns := table.PreviewOrder(state.Rows[0].Keys())
		start, end := m.viewport(len(state.Rows), 0)
		b.WriteString(renderTable(columns, state.Rows, table.BrowserWidths, start, end, -1, nil))
	}
	return b.String()
}

// --- Data browser ---

func (m Model) renderBrowser() string {
	state := m.ws.Browser.State()
	cursor := m.cursors[usecase.TabBrowser]
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Limit: %d | Rows: %d\n", state.Limit, len(state.Rows)))
	b.WriteString(renderError(state.Error))
	t := state.Timing
	b.WriteString(dimStyle.Render(fmt.Sprintf("call start %s | api %s | render %s | total %s | server db %s api %s processing %s",
		ms(t.CallStart), ms(t.API), ms(t.Render), ms(t.Total),
		optionalMs(t.Server.DBTime), optionalMs(t.Server.APITime), optionalMs(t.Server.ProcessingTime))) + "\n\n")

	if state.Expanded != "" {
		return b.String() + overlayStyle.Render(state.Expanded) + "\n"
	}
	if len(state.Preview) > 0 {
		lines := make([]string, 0, len(state.Preview))
		for _, field := range state.Preview {
			lines = append(lines, headerStyle.Render(field.Key+":")+" "+field.Value)
		}
		return b.String() + overlayStyle.Render(strings.Join(lines, "\n")) + "\n"
	}

	if state.Loading && len(state.Rows) == 0 {
		return b.String() + dimStyle.Render("Loading...") + "\n"
	}
	start, end := m.viewport(len(state.Rows), cursor)
	b.WriteString(renderTable(state.Columns, state.Rows, table.BrowserWidths, start, end, cursor, nil))
	return b.String()
}

// --- Query runner ---

func (m Model) renderQuery() string {
	state := m.ws.Query.State()
	var b strings.Builder
	b.WriteString("query: " + m.query.View() + "\n")
	if state.Error != "" {
		b.WriteString(renderError(state.Error))
	}
	if state.Loading {
		b.WriteString(dimStyle.Render("Running...") + "\n")
	}
	if state.Timing != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf("query %.2fms | server total %.2fms | round trip %s",
			state.Timing.QueryTimeMs, state.Timing.TotalTimeMs, ms(state.Elapsed))) + "\n")
	}
	if state.Result != "" {
		lines := strings.Split(state.Result, "\n")
		if limit := m.visibleRows(); len(lines) > limit {
			lines = append(lines[:limit], dimStyle.Render(fmt.Sprintf("... %d more lines", len(lines)-limit)))
		}
		b.WriteString("\n" + strings.Join(lines, "\n") + "\n")
	}
	return b.String()
}

// --- Transactions ---

func (m Model) renderTransactions() string {
	state := m.ws.Transactions.State()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Days: %d | Page: %d\n", state.Days, state.Page))
	b.WriteString(renderError(state.Error))
	if len(state.Rows) == 0 {
		if state.Loading {
			return b.String() + dimStyle.Render("Loading...") + "\n"
		}
		return b.String() + dimStyle.Render("No transactions.") + "\n"
	}
	start, end := m.viewport(len(state.Rows), 0)
	b.WriteString(renderTable(state.Columns, state.Rows, table.TransactionWidths, start, end, -1, nil))
	return b.String()
}

// --- Alerts ---

func (m Model) renderAlerts() string {
	state := m.ws.Alerts.State()
	cursor := m.cursors[usecase.TabAlerts]
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Days: %d | Status: %s | Page: %d\n", state.Filter.Days, state.Filter.Status, state.Page))
	b.WriteString(renderError(state.Error))

	if state.Selected != nil {
		b.WriteString(renderSelection(*state.Selected))
		return b.String()
	}
	if len(state.Rows) == 0 {
		if state.Loading {
			return b.String() + dimStyle.Render("Loading...") + "\n"
		}
		return b.String() + dimStyle.Render("No alerts.") + "\n"
	}
	start, end := m.viewport(len(state.Rows), cursor)
	b.WriteString(renderTable(state.Columns, state.Rows, table.AlertWidths, start, end, cursor, alertStyler))
	return b.String()
}

func renderSelection(selected usecase.AlertSelection) string {
	var lines []string
	lines = append(lines, headerStyle.Render("Alert "+selected.ID()))
	for _, key := range selected.Alert.Keys() {
		lines = append(lines, dimStyle.Render(key+":")+" "+table.Cell(selected.Alert, key))
	}
	switch {
	case selected.TransactionLoading:
		lines = append(lines, "", dimStyle.Render("Loading transaction..."))
	case selected.TransactionError != "":
		lines = append(lines, "", errorStyle.Render(selected.TransactionError))
	case selected.Transaction != nil:
		lines = append(lines, "", headerStyle.Render("Transaction"))
		for _, key := range selected.Transaction.Keys() {
			lines = append(lines, dimStyle.Render(key+":")+" "+table.Cell(*selected.Transaction, key))
		}
	}
	if selected.Notice != "" {
		style := okStyle
		if selected.NoticeIsError {
			style = errorStyle
		}
		lines = append(lines, "", style.Render(selected.Notice))
	}
	lines = append(lines, "", dimStyle.Render("s: next status | t: linked transaction | esc: close"))
	return overlayStyle.Render(strings.Join(lines, "\n")) + "\n"
}

// --- Dashboards ---

const barWidth = 30

func (m Model) renderDashboards() string {
	state := m.ws.Dashboards.State()
	var b strings.Builder
	b.WriteString("Chart: " + state.Selected + "\n")
	b.WriteString(renderError(state.Error))
	if state.Loading && len(state.Charts) == 0 {
		return b.String() + dimStyle.Render("Loading...") + "\n"
	}

	for _, kind := range domain.AggregateKinds {
		points, ok := state.Charts[kind]
		if !ok {
			continue
		}
		b.WriteString("\n" + headerStyle.Render("Alerts by "+string(kind)) + "\n")
		if kind == domain.AggregateByRegion {
			b.WriteString(renderRegions(state.Regions))
			continue
		}
		b.WriteString(renderBars(points))
	}
	return b.String()
}

func renderBars(points []usecase.ChartPoint) string {
	var top int64
	for _, point := range points {
		top = max(top, point.Value)
	}
	var b strings.Builder
	for _, point := range points {
		length := 0
		if top > 0 {
			length = int(point.Value * barWidth / top)
		}
		bar := colorStyle(point.Color).Render(strings.Repeat("█", length))
		b.WriteString(fmt.Sprintf("%s %s %d\n", table.Fit(point.Name, 20), bar, point.Value))
	}
	return b.String()
}

func renderRegions(fills []usecase.RegionFill) string {
	var b strings.Builder
	for _, fill := range fills {
		swatch := colorStyle(regionColor(fill.Fill)).Render("■■")
		b.WriteString(fmt.Sprintf("%s %s %d\n", swatch, table.Fit(fill.Region, 12), fill.Value))
	}
	return b.String()
}

// regionColor converts an "rgb(r, 0, b)" shade to hex. Hex input passes through.
func regionColor(fill string) string {
	var red, blue int
	if _, err := fmt.Sscanf(fill, "rgb(%d, 0, %d)", &red, &blue); err != nil {
		return fill
	}
	return fmt.Sprintf("#%02x00%02x", red, blue)
}

// --- Health ---

func (m Model) renderHealth() string {
	state := m.ws.Health.State()
	var b strings.Builder

	api := state.APIText()
	b.WriteString("API:        " + statusStyle(usecase.StatusColor(api)).Render(api) + "\n")
	b.WriteString("Database:   " + statusStyle(usecase.StatusColor(state.Database)).Render(state.Database) + "\n")
	b.WriteString("DB latency: " + optionalMs(state.DatabaseLatencyMs) + "\n")
	socket := string(state.Socket)
	b.WriteString("WebSocket:  " + statusStyle(usecase.StatusColor(socket)).Render(socket) + "\n")
	if !state.CheckedAt.IsZero() {
		b.WriteString(dimStyle.Render("checked "+state.CheckedAt.Format(time.TimeOnly)) + "\n")
	}
	if state.Probing {
		b.WriteString(dimStyle.Render("Probing...") + "\n")
	}
	if state.Demo != "" {
		style := okStyle
		if state.DemoFailed {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(state.Demo) + "\n")
	}
	return b.String()
}
