package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestChartPointsSortsScoreRanges(t *testing.T) {
	rows := []domain.Row{
		domain.NewRow("score_range", "81–90", "count", 2),
		domain.NewRow("score_range", "0–60", "count", 9),
		domain.NewRow("score_range", "61-65", "count", 4),
	}

	points := ChartPoints(domain.AggregateByScoreRange, rows)

	require.Len(t, points, 3)
	assert.Equal(t, "0–60", points[0].Name)
	assert.Equal(t, "61-65", points[1].Name)
	assert.Equal(t, "81–90", points[2].Name)
	assert.Equal(t, int64(9), points[0].Value)
	assert.Equal(t, table.Palette[0], points[0].Color)
}

func TestChartPointsUsesDimension(t *testing.T) {
	rows := []domain.Row{domain.NewRow("alert_type", "velocity", "count", "7")}
	points := ChartPoints(domain.AggregateByType, rows)
	assert.Equal(t, []ChartPoint{{Name: "velocity", Value: 7, Color: table.Palette[0]}}, points)
}

func TestRegionFills(t *testing.T) {
	fills := RegionFills([]ChartPoint{
		{Name: "Sweden", Value: 10},
		{Name: "Estonia", Value: 0},
		{Name: "Latvia", Value: 5},
	})

	require.Len(t, fills, len(MapRegions))
	byRegion := map[string]string{}
	for _, fill := range fills {
		byRegion[fill.Region] = fill.Fill
	}
	assert.Equal(t, "rgb(255, 0, 0)", byRegion["Sweden"])
	assert.Equal(t, "rgb(0, 0, 255)", byRegion["Estonia"])
	assert.Equal(t, "rgb(128, 0, 128)", byRegion["Latvia"])
	assert.Equal(t, table.NeutralFill, byRegion["Lithuania"])
}

func TestDashboardsOverviewLoad(t *testing.T) {
	api := &fakeAPI{aggregates: map[domain.AggregateKind][]domain.Row{
		domain.AggregateByType:       {domain.NewRow("alert_type", "velocity", "count", 3)},
		domain.AggregateByTenant:     {domain.NewRow("tenant", "acme", "count", 1)},
		domain.AggregateByScoreRange: {domain.NewRow("score_range", "0–60", "count", 2)},
		domain.AggregateByRegion:     {domain.NewRow("region", "Sweden", "count", 4)},
	}}
	dashboards := NewDashboards(api, nil, zaptest.NewLogger(t))

	require.NoError(t, dashboards.Load(context.Background()))

	state := dashboards.State()
	assert.Equal(t, Overview, state.Selected)
	assert.Len(t, state.Charts, 4)
	assert.Equal(t, "rgb(255, 0, 0)", state.Regions[0].Fill)

	api.aggregateErr = map[domain.AggregateKind]error{domain.AggregateByTenant: errors.New("boom")}
	require.Error(t, dashboards.Load(context.Background()))
	state = dashboards.State()
	assert.Empty(t, state.Charts)
	assert.Equal(t, MsgDashboardFailed, state.Error)
}

func TestDashboardsRefreshSingleKind(t *testing.T) {
	api := &fakeAPI{aggregates: map[domain.AggregateKind][]domain.Row{
		domain.AggregateByTenant: {domain.NewRow("tenant", "acme", "count", 1)},
	}}
	audit := &memAudit{}
	dashboards := NewDashboards(api, NewAuditor(audit, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	assert.ErrorIs(t, dashboards.Select("weather"), ErrUnknownDataset)
	require.NoError(t, dashboards.Select("tenant"))
	require.NoError(t, dashboards.Refresh(context.Background()))

	assert.Equal(t, []domain.AggregateKind{domain.AggregateByTenant}, api.refreshed)
	assert.Len(t, dashboards.State().Charts, 1)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, domain.AuditDashboardReload, audit.entries[0].Action)
}

func TestDashboardsOverviewRefreshRunsConcurrently(t *testing.T) {
	gate := &sync.WaitGroup{}
	gate.Add(len(domain.AggregateKinds))
	api := &fakeAPI{refreshGate: gate, aggregates: map[domain.AggregateKind][]domain.Row{
		domain.AggregateByType: {domain.NewRow("alert_type", "velocity", "count", 3)},
	}}
	dashboards := NewDashboards(api, nil, zaptest.NewLogger(t))

	require.NoError(t, dashboards.Refresh(context.Background()))

	assert.ElementsMatch(t, domain.AggregateKinds, api.refreshed)
	assert.Empty(t, dashboards.State().Error)
}

func TestDashboardsRefreshFailureSkipsReload(t *testing.T) {
	api := &fakeAPI{refreshErr: errors.New("boom")}
	audit := &memAudit{}
	dashboards := NewDashboards(api, NewAuditor(audit, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	require.Error(t, dashboards.Refresh(context.Background()))

	assert.Equal(t, MsgDashboardFailed, dashboards.State().Error)
	assert.Empty(t, audit.entries)
}
