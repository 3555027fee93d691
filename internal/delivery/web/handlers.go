package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/NasaVasa/eventdash/internal/usecase"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// visibleRows is the number of data browser rows in one page of the window.
const visibleRows = 25

// Handlers serves one page per tab. Every session works on its own
// workspace, so filters and selections survive between requests.
type Handlers struct {
	pool    *usecase.WorkspacePool
	auditor *usecase.Auditor
	pages   pages
	logger  *zap.Logger
}

func NewHandlers(pool *usecase.WorkspacePool, auditor *usecase.Auditor, logger *zap.Logger) (*Handlers, error) {
	set, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handlers{pool: pool, auditor: auditor, pages: set, logger: logger}, nil
}

// Mount registers the dashboard routes on r.
func (h *Handlers) Mount(r *mux.Router) {
	r.StrictSlash(true)
	r.Path("/").HandlerFunc(h.index).Methods(http.MethodGet)
	r.Path("/tab/{key}").HandlerFunc(h.selectTab).Methods(http.MethodGet)

	r.Path("/events").HandlerFunc(h.events).Methods(http.MethodGet)
	r.Path("/events/random").HandlerFunc(h.randomUsers).Methods(http.MethodPost)
	r.Path("/browser").HandlerFunc(h.browser).Methods(http.MethodGet)
	r.Path("/query").HandlerFunc(h.query).Methods(http.MethodGet, http.MethodPost)
	r.Path("/transactions").HandlerFunc(h.transactions).Methods(http.MethodGet)
	r.Path("/alerts").HandlerFunc(h.alerts).Methods(http.MethodGet)
	r.Path("/alerts/{id}").HandlerFunc(h.alert).Methods(http.MethodGet)
	r.Path("/alerts/{id}/status").HandlerFunc(h.alertStatus).Methods(http.MethodPost)
	r.Path("/dashboards").HandlerFunc(h.dashboards).Methods(http.MethodGet)
	r.Path("/dashboards/refresh").HandlerFunc(h.refreshDashboards).Methods(http.MethodPost)
	r.Path("/health").HandlerFunc(h.health).Methods(http.MethodGet)
	r.Path("/health/demo").HandlerFunc(h.demo).Methods(http.MethodPost)
	r.Path("/audit").HandlerFunc(h.audit).Methods(http.MethodGet)

	r.Path("/" + table.TransactionsExportName).HandlerFunc(h.export(func(ws *usecase.Workspace) (string, string) { return ws.Transactions.Export() })).Methods(http.MethodGet)
	r.Path("/" + table.AlertsExportName).HandlerFunc(h.export(func(ws *usecase.Workspace) (string, string) { return ws.Alerts.Export() })).Methods(http.MethodGet)
	r.Path("/" + table.DataExportName).HandlerFunc(h.export(func(ws *usecase.Workspace) (string, string) { return ws.Browser.Export() })).Methods(http.MethodGet)
}

func (h *Handlers) workspace(ctx context.Context) *usecase.Workspace {
	return h.pool.Get(ctx, sessionScope(ctx))
}

// activate makes tab the session's active tab, releasing whatever the
// previous tab held open.
func (h *Handlers) activate(ctx context.Context, ws *usecase.Workspace, tab string) {
	if prev := ws.Tabs.Active(); prev != tab {
		ws.Leave(prev)
	}
	if err := ws.Tabs.Select(ctx, tab); err != nil {
		h.logger.Warn("failed to select tab", zap.String("tab", tab), zap.Error(err))
	}
}

// enter activates tab and runs its mount-time loads. Load failures are
// already reflected in the view state, so they are only logged.
func (h *Handlers) enter(ctx context.Context, ws *usecase.Workspace, tab string) {
	h.activate(ctx, ws, tab)
	if err := ws.Enter(ctx, tab); err != nil {
		h.logger.Debug("tab load failed", zap.String("tab", tab), zap.Error(err))
	}
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r.Context())
	http.Redirect(w, r, "/"+ws.Tabs.Active(), http.StatusFound)
}

func (h *Handlers) selectTab(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if usecase.TabIndex(key) < 0 {
		http.Error(w, "unknown tab", http.StatusNotFound)
		return
	}
	ws := h.workspace(r.Context())
	h.activate(r.Context(), ws, key)
	http.Redirect(w, r, "/"+key, http.StatusFound)
}

func (h *Handlers) events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	h.activate(ctx, ws, usecase.TabEvents)

	if r.URL.Query().Has("user_id") {
		ws.Events.SetUserID(r.URL.Query().Get("user_id"))
		err := ws.Events.Fetch(ctx, r.URL.Query().Get("full") == "1")
		if errors.Is(err, usecase.ErrEmptyUserID) {
			ws.Events.Clear()
		}
	}
	h.renderEvents(w, r, ws)
}

func (h *Handlers) randomUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	h.activate(ctx, ws, usecase.TabEvents)
	_ = ws.Events.FetchRandom(ctx)
	h.renderEvents(w, r, ws)
}

func (h *Handlers) renderEvents(w http.ResponseWriter, r *http.Request, ws *usecase.Workspace) {
	state := ws.Events.State()
	data := h.page(ws, "Event Browser")
	data.Events = &state
	var columns []string
	if len(state.Rows) > 0 {
		columns = table.PreviewOrder(state.Rows[0].Keys())
	}
	data.Table = newTableView(columns, state.Rows, table.BrowserWidths, "No events.", nil)
	h.render(w, r, "events", data)
}

func (h *Handlers) browser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	h.activate(ctx, ws, usecase.TabBrowser)
	q := r.URL.Query()

	switch {
	case q.Has("limit"):
		limit, err := strconv.Atoi(q.Get("limit"))
		if err == nil {
			err = ws.Browser.SetLimit(limit)
		}
		if err != nil {
			h.badRequest(w, err)
			return
		}
		_ = ws.Browser.Load(ctx)
	case q.Has("expand"), q.Has("preview"):
		if err := h.openOverlay(ws.Browser, q.Get("expand"), q.Get("preview")); err != nil {
			h.badRequest(w, err)
			return
		}
	case q.Has("close"):
		ws.Browser.CloseOverlay()
	case len(ws.Browser.State().Rows) == 0:
		_ = ws.Browser.Load(ctx)
	}
	ws.Browser.MarkRendered()

	state := ws.Browser.State()
	first, _ := strconv.Atoi(q.Get("first"))
	start, end := ws.Browser.Window(first, visibleRows)

	data := h.page(ws, "Data Browser")
	data.Browser = &state
	data.Limits = usecase.BrowseLimits
	if len(state.Rows) > 0 {
		data.Window = fmt.Sprintf("%d-%d", start+1, end)
		data.PrevFirst = max(0, first-visibleRows)
		data.NextFirst = min(first+visibleRows, max(0, len(state.Rows)-visibleRows))
	}
	data.Table = newTableView(state.Columns, state.Rows[start:end], table.BrowserWidths, "No rows.",
		func(index int, _ domain.Row, key string, cell *cellView) {
			switch key {
			case table.BlobField:
				cell.Link = fmt.Sprintf("/browser?expand=%d", start+index)
			case table.PreviewField:
				cell.Link = fmt.Sprintf("/browser?preview=%d", start+index)
			}
		})
	h.render(w, r, "browser", data)
}

func (h *Handlers) openOverlay(browser *usecase.DataBrowser, expand, preview string) error {
	if expand != "" {
		index, err := strconv.Atoi(expand)
		if err != nil {
			return errors.Wrap(usecase.ErrUnknownRow, expand)
		}
		return browser.Expand(index)
	}
	index, err := strconv.Atoi(preview)
	if err != nil {
		return errors.Wrap(usecase.ErrUnknownRow, preview)
	}
	return browser.OpenPreview(index)
}

func (h *Handlers) query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	h.activate(ctx, ws, usecase.TabQuery)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			h.badRequest(w, err)
			return
		}
		_ = ws.Query.Run(ctx, r.PostForm.Get("query"))
	}
	state := ws.Query.State()
	data := h.page(ws, "Query Runner")
	data.Query = &state
	h.render(w, r, "query", data)
}

func (h *Handlers) transactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	q := r.URL.Query()

	if err := applyPaging(q.Get("days"), q.Get("page"), ws.Transactions.SetDays, ws.Transactions.SetPage); err != nil {
		h.badRequest(w, err)
		return
	}
	h.enter(ctx, ws, usecase.TabTransactions)

	state := ws.Transactions.State()
	data := h.page(ws, "Transactions")
	data.Transactions = &state
	data.DaySelect = daySelect{Options: domain.DayRanges, Days: state.Days}
	data.Table = newTableView(state.Columns, state.Rows, table.TransactionWidths, "No transactions.", nil)
	h.render(w, r, "transactions", data)
}

func (h *Handlers) alerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	q := r.URL.Query()

	if q.Has("close") {
		ws.Alerts.Close()
	}
	reload := !q.Has("close") || q.Has("status") || q.Has("days") || q.Has("page")
	if status := q.Get("status"); status != "" {
		if err := ws.Alerts.SetStatusFilter(status); err != nil {
			h.badRequest(w, err)
			return
		}
	}
	if err := applyPaging(q.Get("days"), q.Get("page"), ws.Alerts.SetDays, ws.Alerts.SetPage); err != nil {
		h.badRequest(w, err)
		return
	}
	// Closing the detail keeps the loaded page and its local review marks.
	if reload || len(ws.Alerts.State().Rows) == 0 {
		h.enter(ctx, ws, usecase.TabAlerts)
	} else {
		h.activate(ctx, ws, usecase.TabAlerts)
	}

	state := ws.Alerts.State()
	data := h.page(ws, "Alerts")
	data.Alerts = &state
	data.DaySelect = daySelect{Options: domain.DayRanges, Days: state.Filter.Days}
	data.Statuses = domain.StatusFilters
	data.Table = markReviewed(newTableView(state.Columns, state.Rows, table.AlertWidths, "No alerts.", alertCells), state.Rows)
	h.render(w, r, "alerts", data)
}

// alert opens the detail of an alert on the current page, marking it
// reviewed, and loads its linked transaction.
func (h *Handlers) alert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	h.activate(ctx, ws, usecase.TabAlerts)
	id := mux.Vars(r)["id"]

	err := ws.Alerts.Open(ctx, id)
	if errors.Is(err, usecase.ErrUnknownRow) {
		http.Error(w, "alert is not on the current page", http.StatusNotFound)
		return
	}
	_ = ws.Alerts.LoadTransaction(ctx)
	h.renderAlert(w, r, ws)
}

func (h *Handlers) alertStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	id := mux.Vars(r)["id"]
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, err)
		return
	}

	state := ws.Alerts.State()
	if state.Selected == nil || state.Selected.ID() != id {
		if err := ws.Alerts.Open(ctx, id); errors.Is(err, usecase.ErrUnknownRow) {
			http.Error(w, "alert is not on the current page", http.StatusNotFound)
			return
		}
	}
	err := ws.Alerts.ChangeStatus(ctx, r.PostForm.Get("status"))
	if errors.Is(err, usecase.ErrInvalidStatus) {
		h.badRequest(w, err)
		return
	}
	h.renderAlert(w, r, ws)
}

func (h *Handlers) renderAlert(w http.ResponseWriter, r *http.Request, ws *usecase.Workspace) {
	state := ws.Alerts.State()
	if state.Selected == nil {
		http.Redirect(w, r, "/alerts", http.StatusFound)
		return
	}
	data := h.page(ws, "Alert "+state.Selected.ID())
	data.Selection = state.Selected
	data.Fields = rowFields(state.Selected.Alert)
	if state.Selected.Transaction != nil {
		data.TransactionFields = rowFields(*state.Selected.Transaction)
	}
	data.AlertStatuses = domain.AlertStatuses
	h.render(w, r, "alert", data)
}

func (h *Handlers) dashboards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	if chart := r.URL.Query().Get("chart"); chart != "" {
		if err := ws.Dashboards.Select(chart); err != nil {
			h.badRequest(w, err)
			return
		}
	}
	h.enter(ctx, ws, usecase.TabDashboards)

	state := ws.Dashboards.State()
	data := h.page(ws, "Dashboards")
	data.Dashboards = &state
	data.Charts = dashboardChoices()
	data.Bars = newBarCharts(state)
	data.Regions = state.Regions
	h.render(w, r, "dashboards", data)
}

func (h *Handlers) refreshDashboards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	h.activate(ctx, ws, usecase.TabDashboards)
	if err := ws.Dashboards.Refresh(ctx); err != nil {
		h.logger.Warn("dashboard refresh failed", zap.Error(err))
	}
	http.Redirect(w, r, "/dashboards", http.StatusSeeOther)
}

// health probes the API and dials the feed once. A page view holds no
// socket open after it has rendered.
func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	h.activate(ctx, ws, usecase.TabHealth)
	if err := ws.Health.Probe(ctx); err != nil {
		h.logger.Debug("health probe failed", zap.Error(err))
	}
	if err := ws.Health.CheckSocket(ctx); err != nil {
		h.logger.Debug("feed socket check failed", zap.Error(err))
	}
	h.renderHealth(w, r, ws)
}

func (h *Handlers) demo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws := h.workspace(ctx)
	h.activate(ctx, ws, usecase.TabHealth)
	_ = ws.Health.DemoQuery(ctx)
	h.renderHealth(w, r, ws)
}

func (h *Handlers) renderHealth(w http.ResponseWriter, r *http.Request, ws *usecase.Workspace) {
	state := ws.Health.State()
	data := h.page(ws, "System Health")
	data.Health = &state
	h.render(w, r, "health", data)
}

// audit lists the most recent operator actions as JSON.
func (h *Handlers) audit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	entries, err := h.auditor.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list audit entries", zap.Error(err))
		http.Error(w, "audit log unavailable", http.StatusServiceUnavailable)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.logger.Warn("failed to write audit entries", zap.Error(err))
	}
}

func (h *Handlers) export(source func(ws *usecase.Workspace) (string, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, body := source(h.workspace(r.Context()))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		_, _ = w.Write([]byte(body))
	}
}

func (h *Handlers) page(ws *usecase.Workspace, title string) *pageData {
	return &pageData{Title: title, Tabs: usecase.Tabs, Active: ws.Tabs.Active()}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, data *pageData) {
	var buf bytes.Buffer
	if err := h.pages.render(&buf, name, data); err != nil {
		h.logger.Error("failed to render page", zap.String("page", name), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handlers) badRequest(w http.ResponseWriter, err error) {
	h.logger.Debug("rejecting request", zap.Error(err))
	http.Error(w, errors.UnwrapAll(err).Error(), http.StatusBadRequest)
}

// applyPaging validates the days and page parameters, if present, before
// they are applied to a list view.
func applyPaging(days, page string, setDays, setPage func(int) error) error {
	if days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			return errors.Wrapf(usecase.ErrInvalidDays, "days %q", days)
		}
		if err := setDays(n); err != nil {
			return err
		}
	}
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return errors.Wrapf(usecase.ErrInvalidPage, "page %q", page)
		}
		if err := setPage(n); err != nil {
			return err
		}
	}
	return nil
}

func dashboardChoices() []string {
	choices := []string{usecase.Overview}
	for _, kind := range domain.AggregateKinds {
		choices = append(choices, string(kind))
	}
	return choices
}
