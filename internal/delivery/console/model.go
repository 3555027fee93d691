// Package console is the keyboard-driven terminal surface.
package console

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/usecase"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// --- Messages ---

type loadedMsg struct {
	tab string
	err error
}

type actionMsg struct {
	notice string
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

// --- Model ---

type Model struct {
	ctx       context.Context
	ws        *usecase.Workspace
	exportDir string
	logger    *zap.Logger

	width    int
	height   int
	cursors  map[string]int
	editing  bool
	user     textinput.Model
	query    textinput.Model
	flash    string
	flashErr bool

	help     help.Model
	showHelp bool
}

func NewModel(ctx context.Context, ws *usecase.Workspace, exportDir string, logger *zap.Logger) Model {
	user := textinput.New()
	user.Placeholder = "user_id (UUID)"
	user.CharLimit = 36
	user.Width = 40

	query := textinput.New()
	query.Placeholder = "SELECT * FROM events WHERE user_id = ..."
	query.CharLimit = 1000
	query.Width = 80

	return Model{
		ctx:       ctx,
		ws:        ws,
		exportDir: exportDir,
		logger:    logger,
		cursors:   make(map[string]int),
		user:      user,
		query:     query,
		help:      help.New(),
		width:     120,
		height:    40,
	}
}

func (m Model) Init() tea.Cmd {
	return m.enter(m.ws.Tabs.Active())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case loadedMsg:
		if msg.tab == usecase.TabBrowser {
			m.ws.Browser.MarkRendered()
		}
		if errors.Is(msg.err, usecase.ErrEmptyUserID) {
			m.setFlash("Enter a user_id first.", true)
		}
		if msg.err != nil {
			m.logger.Debug("tab load failed", zap.String("tab", msg.tab), zap.Error(msg.err))
		}
		return m, nil
	case actionMsg:
		m.setFlash(msg.notice, msg.err != nil)
		return m, nil
	case exportedMsg:
		if msg.err != nil {
			m.setFlash("Export failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.setFlash("Exported "+msg.path, false)
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash, m.flashErr = text, isErr
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	tab := m.ws.Tabs.Active()
	switch msg.String() {
	case "enter":
		m.editing = false
		m.user.Blur()
		m.query.Blur()
		if tab == usecase.TabQuery {
			return m, m.runQuery()
		}
		m.ws.Events.SetUserID(m.user.Value())
		return m, m.fetchEvents(false)
	case "esc":
		m.editing = false
		m.user.Blur()
		m.query.Blur()
		return m, nil
	}
	if tab == usecase.TabQuery {
		m.query, cmd = m.query.Update(msg)
		return m, cmd
	}
	m.user, cmd = m.user.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.ws.Tabs.Active()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, keys.Tab):
		return m.switchTab(tab, m.ws.Tabs.Cycle(m.ctx, 1))
	case key.Matches(msg, keys.BackTab):
		return m.switchTab(tab, m.ws.Tabs.Cycle(m.ctx, -1))
	case key.Matches(msg, keys.Export):
		return m, m.export(tab)
	}

	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(usecase.Tabs) {
		next := usecase.Tabs[n-1].Key
		if err := m.ws.Tabs.Select(m.ctx, next); err != nil {
			return m, nil
		}
		return m.switchTab(tab, next)
	}

	switch tab {
	case usecase.TabEvents:
		return m.handleEventsKey(msg)
	case usecase.TabBrowser:
		return m.handleBrowserKey(msg)
	case usecase.TabQuery:
		return m.handleQueryKey(msg)
	case usecase.TabTransactions:
		return m.handleTransactionsKey(msg)
	case usecase.TabAlerts:
		return m.handleAlertsKey(msg)
	case usecase.TabDashboards:
		return m.handleDashboardsKey(msg)
	case usecase.TabHealth:
		return m.handleHealthKey(msg)
	}
	return m, nil
}

func (m Model) switchTab(prev, next string) (tea.Model, tea.Cmd) {
	m.flash = ""
	if prev == next {
		return m, nil
	}
	m.ws.Leave(prev)
	return m, m.enter(next)
}

func (m Model) handleEventsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Edit):
		m.editing = true
		m.user.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Refresh):
		m.ws.Events.SetUserID(m.user.Value())
		return m, m.fetchEvents(false)
	case key.Matches(msg, keys.Full):
		m.ws.Events.SetUserID(m.user.Value())
		return m, m.fetchEvents(true)
	case key.Matches(msg, keys.Random):
		return m, m.call(usecase.TabEvents, m.ws.Events.FetchRandom)
	case key.Matches(msg, keys.Esc):
		m.ws.Events.Clear()
	}
	return m, nil
}

func (m Model) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	browser := m.ws.Browser
	rows := len(browser.State().Rows)
	switch {
	case key.Matches(msg, keys.Up):
		m.moveCursor(usecase.TabBrowser, -1, rows)
	case key.Matches(msg, keys.Down):
		m.moveCursor(usecase.TabBrowser, 1, rows)
	case key.Matches(msg, keys.Limit):
		if err := browser.SetLimit(nextOf(usecase.BrowseLimits, browser.State().Limit)); err != nil {
			return m, nil
		}
		m.cursors[usecase.TabBrowser] = 0
		return m, m.enter(usecase.TabBrowser)
	case key.Matches(msg, keys.Refresh):
		return m, m.enter(usecase.TabBrowser)
	case key.Matches(msg, keys.Enter):
		_ = browser.Expand(m.cursors[usecase.TabBrowser])
	case key.Matches(msg, keys.Preview):
		_ = browser.OpenPreview(m.cursors[usecase.TabBrowser])
	case key.Matches(msg, keys.Esc):
		browser.CloseOverlay()
	}
	return m, nil
}

func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Edit):
		m.editing = true
		m.query.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Refresh):
		return m, m.runQuery()
	}
	return m, nil
}

func (m Model) handleTransactionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.ws.Transactions
	switch {
	case key.Matches(msg, keys.PrevPage):
		if view.Prev() {
			return m, m.enter(usecase.TabTransactions)
		}
	case key.Matches(msg, keys.NextPage):
		view.Next()
		return m, m.enter(usecase.TabTransactions)
	case key.Matches(msg, keys.Days):
		if err := view.SetDays(nextOf(domain.DayRanges, view.State().Days)); err == nil {
			return m, m.enter(usecase.TabTransactions)
		}
	case key.Matches(msg, keys.Refresh):
		return m, m.enter(usecase.TabTransactions)
	}
	return m, nil
}

func (m Model) handleAlertsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.ws.Alerts
	state := view.State()
	switch {
	case key.Matches(msg, keys.Up):
		m.moveCursor(usecase.TabAlerts, -1, len(state.Rows))
	case key.Matches(msg, keys.Down):
		m.moveCursor(usecase.TabAlerts, 1, len(state.Rows))
	case key.Matches(msg, keys.PrevPage):
		if view.Prev() {
			m.cursors[usecase.TabAlerts] = 0
			return m, m.enter(usecase.TabAlerts)
		}
	case key.Matches(msg, keys.NextPage):
		view.Next()
		m.cursors[usecase.TabAlerts] = 0
		return m, m.enter(usecase.TabAlerts)
	case key.Matches(msg, keys.Days):
		if err := view.SetDays(nextOf(domain.DayRanges, state.Filter.Days)); err == nil {
			return m, m.enter(usecase.TabAlerts)
		}
	case key.Matches(msg, keys.Filter):
		if err := view.SetStatusFilter(nextOf(domain.StatusFilters, state.Filter.Status)); err == nil {
			return m, m.enter(usecase.TabAlerts)
		}
	case key.Matches(msg, keys.Refresh):
		return m, m.enter(usecase.TabAlerts)
	case key.Matches(msg, keys.Enter):
		cursor := m.cursors[usecase.TabAlerts]
		if cursor >= len(state.Rows) {
			return m, nil
		}
		alertID := state.Rows[cursor].Text("alert_id")
		return m, m.call(usecase.TabAlerts, func(ctx context.Context) error {
			return view.Open(ctx, alertID)
		})
	case key.Matches(msg, keys.Esc):
		view.Close()
	case key.Matches(msg, keys.Linked):
		if state.Selected != nil {
			return m, m.call(usecase.TabAlerts, view.LoadTransaction)
		}
	case key.Matches(msg, keys.Status):
		if state.Selected == nil {
			return m, nil
		}
		current, _ := domain.ParseAlertStatus(state.Selected.Alert.Text("status"))
		next := string(nextOf(domain.AlertStatuses, current))
		return m, m.call(usecase.TabAlerts, func(ctx context.Context) error {
			return view.ChangeStatus(ctx, next)
		})
	}
	return m, nil
}

var dashboardChoices = []string{
	usecase.Overview,
	string(domain.AggregateByType),
	string(domain.AggregateByTenant),
	string(domain.AggregateByScoreRange),
	string(domain.AggregateByRegion),
}

func (m Model) handleDashboardsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	dashboards := m.ws.Dashboards
	switch {
	case key.Matches(msg, keys.Dataset):
		if err := dashboards.Select(nextOf(dashboardChoices, dashboards.State().Selected)); err == nil {
			return m, m.enter(usecase.TabDashboards)
		}
	case key.Matches(msg, keys.Refresh):
		return m, m.call(usecase.TabDashboards, dashboards.Refresh)
	}
	return m, nil
}

func (m Model) handleHealthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Refresh):
		return m, m.call(usecase.TabHealth, m.ws.Health.Probe)
	case key.Matches(msg, keys.Demo):
		return m, m.call(usecase.TabHealth, m.ws.Health.DemoQuery)
	}
	return m, nil
}

func (m *Model) moveCursor(tab string, delta, count int) {
	if count == 0 {
		m.cursors[tab] = 0
		return
	}
	m.cursors[tab] = max(0, min(count-1, m.cursors[tab]+delta))
}

// --- Commands ---

func (m Model) enter(tab string) tea.Cmd {
	ws, ctx := m.ws, m.ctx
	return func() tea.Msg {
		return loadedMsg{tab: tab, err: ws.Enter(ctx, tab)}
	}
}

func (m Model) call(tab string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{tab: tab, err: fn(ctx)}
	}
}

func (m Model) fetchEvents(full bool) tea.Cmd {
	return m.call(usecase.TabEvents, func(ctx context.Context) error {
		return m.ws.Events.Fetch(ctx, full)
	})
}

func (m Model) runQuery() tea.Cmd {
	text := m.query.Value()
	return m.call(usecase.TabQuery, func(ctx context.Context) error {
		return m.ws.Query.Run(ctx, text)
	})
}

func (m Model) export(tab string) tea.Cmd {
	var name, data string
	switch tab {
	case usecase.TabBrowser:
		name, data = m.ws.Browser.Export()
	case usecase.TabTransactions:
		name, data = m.ws.Transactions.Export()
	case usecase.TabAlerts:
		name, data = m.ws.Alerts.Export()
	default:
		return nil
	}
	if data == "" {
		return func() tea.Msg { return actionMsg{notice: "Nothing to export.", err: errors.New("empty export")} }
	}
	path := filepath.Join(m.exportDir, name)
	return func() tea.Msg {
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			return exportedMsg{err: errors.Wrapf(err, "write %s", path)}
		}
		return exportedMsg{path: path}
	}
}

// nextOf returns the option after current, wrapping around. Unknown values
// restart at the first option.
func nextOf[T comparable](options []T, current T) T {
	index := slices.Index(options, current)
	return options[(index+1)%len(options)]
}
