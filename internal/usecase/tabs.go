package usecase

import (
	"context"
	"sync"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Tab struct {
	Key   string
	Label string
}

const (
	TabEvents       = "events"
	TabBrowser      = "browser"
	TabQuery        = "query"
	TabTransactions = "transactions"
	TabAlerts       = "alerts"
	TabDashboards   = "dashboards"
	TabHealth       = "health"
)

// Tabs in display order. The first one is the default.
var Tabs = []Tab{
	{Key: TabEvents, Label: "Event Browser"},
	{Key: TabBrowser, Label: "Data Browser"},
	{Key: TabQuery, Label: "Query Runner"},
	{Key: TabTransactions, Label: "Transactions"},
	{Key: TabAlerts, Label: "Alerts"},
	{Key: TabDashboards, Label: "Dashboards"},
	{Key: TabHealth, Label: "System Health"},
}

func TabIndex(key string) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

// TabSelector owns the active tab of one scope and writes every change
// through to the preference store.
type TabSelector struct {
	prefs  domain.PreferenceRepository
	scope  string
	logger *zap.Logger

	mu     sync.RWMutex
	active string
}

func NewTabSelector(prefs domain.PreferenceRepository, scope string, logger *zap.Logger) *TabSelector {
	return &TabSelector{prefs: prefs, scope: scope, logger: logger, active: Tabs[0].Key}
}

// Load restores the persisted tab, falling back to the first tab when the
// stored value is missing or unknown.
func (s *TabSelector) Load(ctx context.Context) string {
	active := Tabs[0].Key
	pref, err := s.prefs.Get(ctx, s.scope, domain.PrefActiveTab)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		s.logger.Warn("failed to load active tab", zap.String("scope", s.scope), zap.Error(err))
	case TabIndex(pref.Value) >= 0:
		active = pref.Value
	default:
		s.logger.Warn("ignoring unknown stored tab", zap.String("scope", s.scope), zap.String("tab", pref.Value))
	}

	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
	return active
}

func (s *TabSelector) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Select makes key the active tab. Reselecting the active tab writes nothing.
func (s *TabSelector) Select(ctx context.Context, key string) error {
	if TabIndex(key) < 0 {
		return errors.Wrapf(ErrUnknownTab, "tab %q", key)
	}

	s.mu.Lock()
	if s.active == key {
		s.mu.Unlock()
		return nil
	}
	s.active = key
	s.mu.Unlock()

	if err := s.prefs.Put(ctx, &domain.Preference{Scope: s.scope, Key: domain.PrefActiveTab, Value: key}); err != nil {
		s.logger.Warn("failed to persist active tab", zap.String("scope", s.scope), zap.String("tab", key), zap.Error(err))
	}
	return nil
}

// Cycle moves the selection by delta positions, wrapping around.
func (s *TabSelector) Cycle(ctx context.Context, delta int) string {
	index := TabIndex(s.Active())
	next := ((index+delta)%len(Tabs) + len(Tabs)) % len(Tabs)
	key := Tabs[next].Key
	_ = s.Select(ctx, key)
	return key
}
