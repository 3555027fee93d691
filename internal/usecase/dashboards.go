package usecase

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Overview selects every aggregate at once.
const Overview = "overview"

// MapRegions are the regions drawn on the static map.
var MapRegions = []string{"Sweden", "Estonia", "Latvia", "Lithuania"}

type ChartPoint struct {
	Name  string
	Value int64
	Color string
}

type RegionFill struct {
	Region string
	Value  int64
	Fill   string
}

type DashboardsState struct {
	Selected string
	Charts   map[domain.AggregateKind][]ChartPoint
	Regions  []RegionFill
	Loading  bool
	Error    string
}

const MsgDashboardFailed = "Failed to load dashboard data."

type Dashboards struct {
	api     domain.AggregateReader
	auditor *Auditor
	logger  *zap.Logger

	mu       sync.RWMutex
	selected string
	charts   map[domain.AggregateKind][]ChartPoint
	loading  bool
	err      string
}

func NewDashboards(api domain.AggregateReader, auditor *Auditor, logger *zap.Logger) *Dashboards {
	return &Dashboards{
		api:      api,
		auditor:  auditor,
		logger:   logger,
		selected: Overview,
		charts:   map[domain.AggregateKind][]ChartPoint{},
	}
}

// Select picks a single aggregate kind or Overview.
func (d *Dashboards) Select(selection string) error {
	if _, err := selectedKinds(selection); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = selection
	return nil
}

// Load fetches the selected aggregates concurrently. Any failure clears
// every chart.
func (d *Dashboards) Load(ctx context.Context) error {
	d.mu.Lock()
	selection := d.selected
	d.loading = true
	d.err = ""
	d.mu.Unlock()

	kinds, err := selectedKinds(selection)
	if err != nil {
		return err
	}

	results := make([][]domain.Row, len(kinds))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		eg.Go(func() error {
			rows, err := d.api.Aggregate(egCtx, kind)
			if err != nil {
				return errors.Wrapf(err, "aggregate %s", kind)
			}
			results[i] = rows
			return nil
		})
	}
	err = eg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	d.charts = map[domain.AggregateKind][]ChartPoint{}
	if err != nil {
		d.logger.Error("dashboard load failed", zap.String("selection", selection), zap.Error(err))
		d.err = MsgDashboardFailed
		return err
	}
	for i, kind := range kinds {
		d.charts[kind] = ChartPoints(kind, results[i])
	}
	return nil
}

// Refresh asks the server to recompute the selected aggregates
// concurrently, then reloads.
func (d *Dashboards) Refresh(ctx context.Context) error {
	d.mu.RLock()
	selection := d.selected
	d.mu.RUnlock()

	kinds, err := selectedKinds(selection)
	if err != nil {
		return err
	}
	eg, egCtx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		kind := kind
		eg.Go(func() error {
			if err := d.api.RefreshAggregate(egCtx, kind); err != nil {
				return errors.Wrapf(err, "refresh %s", kind)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		d.logger.Error("dashboard refresh failed", zap.String("selection", selection), zap.Error(err))
		d.mu.Lock()
		d.err = MsgDashboardFailed
		d.mu.Unlock()
		return err
	}
	d.auditor.Record(ctx, domain.AuditDashboardReload, selection, "")
	return d.Load(ctx)
}

func (d *Dashboards) State() DashboardsState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	charts := make(map[domain.AggregateKind][]ChartPoint, len(d.charts))
	for kind, points := range d.charts {
		charts[kind] = slices.Clone(points)
	}
	return DashboardsState{
		Selected: d.selected,
		Charts:   charts,
		Regions:  RegionFills(d.charts[domain.AggregateByRegion]),
		Loading:  d.loading,
		Error:    d.err,
	}
}

func selectedKinds(selection string) ([]domain.AggregateKind, error) {
	if selection == Overview {
		return domain.AggregateKinds, nil
	}
	kind, ok := domain.ParseAggregateKind(selection)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDataset, "dashboard %q", selection)
	}
	return []domain.AggregateKind{kind}, nil
}

// ChartPoints maps aggregate rows to chart points. Score ranges are ordered
// by their lower bound.
func ChartPoints(kind domain.AggregateKind, rows []domain.Row) []ChartPoint {
	dimension := kind.Dimension()
	points := make([]ChartPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, ChartPoint{
			Name:  row.Text(dimension),
			Value: countOf(row),
		})
	}
	if kind == domain.AggregateByScoreRange {
		slices.SortStableFunc(points, func(a, b ChartPoint) int {
			return rangeStart(a.Name) - rangeStart(b.Name)
		})
	}
	for i := range points {
		points[i].Color = table.PaletteColor(i)
	}
	return points
}

// RegionFills shades every map region by its count relative to the largest.
func RegionFills(points []ChartPoint) []RegionFill {
	counts := make(map[string]int64, len(points))
	var maxCount int64
	for _, point := range points {
		counts[point.Name] = point.Value
		maxCount = max(maxCount, point.Value)
	}
	fills := make([]RegionFill, 0, len(MapRegions))
	for _, region := range MapRegions {
		count, ok := counts[region]
		fill := RegionFill{Region: region, Value: count, Fill: table.NeutralFill}
		if ok {
			fill.Fill = table.Shade(table.Intensity(int(count), int(maxCount)))
		}
		fills = append(fills, fill)
	}
	return fills
}

func countOf(row domain.Row) int64 {
	for _, key := range []string{"count", "value"} {
		if !row.Has(key) {
			continue
		}
		text := row.Text(key)
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return int64(f)
		}
	}
	return 0
}

func rangeStart(label string) int {
	head, _, _ := strings.Cut(strings.ReplaceAll(label, "–", "-"), "-")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0
	}
	return n
}
