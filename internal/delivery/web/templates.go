package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/NasaVasa/eventdash/internal/usecase"
	"github.com/cockroachdb/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"events", "browser", "query", "transactions", "alerts", "alert", "dashboards", "health"}

var funcs = template.FuncMap{
	"ms": func(d time.Duration) string { return fmt.Sprintf("%dms", d.Milliseconds()) },
	"optms": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.2fms", *v)
	},
	"statuscolor": usecase.StatusColor,
	"inc":         func(n int) int { return n + 1 },
	"dec":         func(n int) int { return n - 1 },
	"mul":         func(a, b int) int { return a * b },
}

type pages map[string]*template.Template

// parsePages builds one template set per page so that each can define its
// own "content" block under the shared layout.
func parsePages() (pages, error) {
	set := make(pages, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, errors.Wrapf(err, "parse page %s", name)
		}
		set[name] = tmpl
	}
	return set, nil
}

func (p pages) render(w io.Writer, name string, data *pageData) error {
	tmpl, ok := p[name]
	if !ok {
		return errors.Newf("unknown page %s", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

type pageData struct {
	Title  string
	Tabs   []usecase.Tab
	Active string

	Events       *usecase.EventBrowserState
	Browser      *usecase.DataBrowserState
	Query        *usecase.QueryRunnerState
	Transactions *usecase.TransactionsState
	Alerts       *usecase.AlertsState
	Dashboards   *usecase.DashboardsState
	Health       *usecase.HealthState

	Table     *tableView
	DaySelect daySelect
	Statuses  []string
	Limits    []int
	Charts    []string

	Window    string
	PrevFirst int
	NextFirst int

	Selection         *usecase.AlertSelection
	Fields            []usecase.PreviewField
	TransactionFields []usecase.PreviewField
	AlertStatuses     []domain.AlertStatus

	Bars    []barChart
	Regions []usecase.RegionFill
}

type daySelect struct {
	Options []int
	Days    int
}

type tableView struct {
	Columns []columnView
	Rows    []rowView
	Empty   string
}

type columnView struct {
	Name  string
	Width int
}

type rowView struct {
	Class string
	Cells []cellView
}

type cellView struct {
	Text       string
	Color      string
	Background string
	Link       string
}

type barChart struct {
	Kind   domain.AggregateKind
	Points []barPoint
}

type barPoint struct {
	usecase.ChartPoint
	Percent int
}

// cellDecorator colours or links a single cell.
type cellDecorator func(index int, row domain.Row, key string, cell *cellView)

func newTableView(columns []string, rows []domain.Row, widths table.Widths, empty string, decorate cellDecorator) *tableView {
	view := &tableView{Empty: empty, Rows: make([]rowView, 0, len(rows))}
	for _, column := range columns {
		view.Columns = append(view.Columns, columnView{Name: column, Width: widths.Of(column)})
	}
	for i, row := range rows {
		cells := make([]cellView, 0, len(columns))
		for _, column := range columns {
			cell := cellView{Text: table.Cell(row, column)}
			if decorate != nil {
				decorate(i, row, column, &cell)
			}
			cells = append(cells, cell)
		}
		view.Rows = append(view.Rows, rowView{Cells: cells})
	}
	return view
}

// alertCells links the alert id to its detail page and paints severity
// and score as background bands.
func alertCells(_ int, row domain.Row, key string, cell *cellView) {
	switch key {
	case "alert_id":
		cell.Link = "/alerts/" + row.Text("alert_id")
	case "severity":
		cell.Background = table.SeverityColor(row.Text("severity"))
	case "score":
		cell.Background = table.ScoreColor(row.Text("score"))
		cell.Color = "#000000"
	}
}

// markReviewed classes each alert row by its reviewed flag.
func markReviewed(view *tableView, rows []domain.Row) *tableView {
	for i := range view.Rows {
		view.Rows[i].Class = "unreviewed"
		if rows[i].Bool("reviewed") {
			view.Rows[i].Class = "reviewed"
		}
	}
	return view
}

func rowFields(row domain.Row) []usecase.PreviewField {
	keys := row.Keys()
	fields := make([]usecase.PreviewField, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, usecase.PreviewField{Key: key, Value: table.Cell(row, key)})
	}
	return fields
}

func newBarCharts(state usecase.DashboardsState) []barChart {
	var charts []barChart
	for _, kind := range domain.AggregateKinds {
		points, ok := state.Charts[kind]
		if !ok {
			continue
		}
		var top int64
		for _, point := range points {
			top = max(top, point.Value)
		}
		chart := barChart{Kind: kind}
		for _, point := range points {
			percent := 0
			if top > 0 {
				percent = int(point.Value * 100 / top)
			}
			chart.Points = append(chart.Points, barPoint{ChartPoint: point, Percent: percent})
		}
		charts = append(charts, chart)
	}
	return charts
}
