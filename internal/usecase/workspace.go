package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"go.uber.org/zap"
)

// API is everything the dashboard reads from and writes to the event-log
// service.
type API interface {
	domain.EventReader
	domain.RowBrowser
	domain.QueryExecutor
	domain.TransactionReader
	domain.AlertService
	domain.AggregateReader
	domain.HealthProber
}

type Deps struct {
	API         API
	Feed        domain.FeedDialer
	Preferences domain.PreferenceRepository
	Auditor     *Auditor
}

// Workspace is the full set of view models behind one operator session.
type Workspace struct {
	Scope        string
	Tabs         *TabSelector
	Events       *EventBrowser
	Browser      *DataBrowser
	Query        *QueryRunner
	Transactions *TransactionsView
	Alerts       *AlertsView
	Dashboards   *Dashboards
	Health       *HealthPanel
}

func NewWorkspace(deps Deps, scope string, logger *zap.Logger) *Workspace {
	logger = logger.With(zap.String("scope", scope))
	return &Workspace{
		Scope:        scope,
		Tabs:         NewTabSelector(deps.Preferences, scope, logger),
		Events:       NewEventBrowser(deps.API, logger),
		Browser:      NewDataBrowser(deps.API, logger),
		Query:        NewQueryRunner(deps.API, deps.Auditor, logger),
		Transactions: NewTransactionsView(deps.API, logger),
		Alerts:       NewAlertsView(deps.API, deps.Auditor, logger),
		Dashboards:   NewDashboards(deps.API, deps.Auditor, logger),
		Health:       NewHealthPanel(deps.API, deps.Feed, logger),
	}
}

// Enter runs the mount-time loads of a tab. The error of the first failing
// load is returned; view models keep their own notices.
func (w *Workspace) Enter(ctx context.Context, tab string) error {
	switch tab {
	case TabBrowser:
		return w.Browser.Load(ctx)
	case TabTransactions:
		return w.Transactions.Load(ctx)
	case TabAlerts:
		return w.Alerts.Load(ctx)
	case TabDashboards:
		return w.Dashboards.Load(ctx)
	case TabHealth:
		err := w.Health.Probe(ctx)
		if connectErr := w.Health.Connect(ctx); err == nil {
			err = connectErr
		}
		return err
	default:
		return nil
	}
}

// Leave releases what a tab holds open.
func (w *Workspace) Leave(tab string) {
	if tab == TabHealth {
		w.Health.Close()
	}
}

func (w *Workspace) Close() {
	w.Health.Close()
}

// WorkspacePool hands out one workspace per scope, creating it on first use
// with its persisted tab restored. Workspaces unused for longer than the idle
// timeout are closed by EvictIdle; their tab survives in the preferences.
type WorkspacePool struct {
	deps   Deps
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	workspaces map[string]*pooledWorkspace
}

type pooledWorkspace struct {
	ws       *Workspace
	lastUsed time.Time
}

func NewWorkspacePool(deps Deps, logger *zap.Logger) *WorkspacePool {
	return &WorkspacePool{deps: deps, logger: logger, now: time.Now, workspaces: make(map[string]*pooledWorkspace)}
}

func (p *WorkspacePool) Get(ctx context.Context, scope string) *Workspace {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok := p.workspaces[scope]; ok {
		entry.lastUsed = p.now()
		return entry.ws
	}
	ws := NewWorkspace(p.deps, scope, p.logger)
	ws.Tabs.Load(ctx)
	p.workspaces[scope] = &pooledWorkspace{ws: ws, lastUsed: p.now()}
	return ws
}

func (p *WorkspacePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workspaces)
}

// EvictIdle closes the workspaces not used within idle and returns how many
// were removed.
func (p *WorkspacePool) EvictIdle(idle time.Duration) int {
	cutoff := p.now().Add(-idle)
	var evicted []*Workspace

	p.mu.Lock()
	for scope, entry := range p.workspaces {
		if entry.lastUsed.Before(cutoff) {
			evicted = append(evicted, entry.ws)
			delete(p.workspaces, scope)
		}
	}
	p.mu.Unlock()

	for _, ws := range evicted {
		ws.Close()
	}
	if len(evicted) > 0 {
		p.logger.Debug("idle workspaces evicted", zap.Int("count", len(evicted)), zap.Int("remaining", p.Len()))
	}
	return len(evicted)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (p *WorkspacePool) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.EvictIdle(idle)
		}
	}
}

func (p *WorkspacePool) Close() {
	p.mu.Lock()
	workspaces := p.workspaces
	p.workspaces = make(map[string]*pooledWorkspace)
	p.mu.Unlock()

	for _, entry := range workspaces {
		entry.ws.Close()
	}
}
