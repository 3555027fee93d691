package usecase

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// BrowseLimits are the selectable row counts; the first is the default.
var BrowseLimits = []int{10, 50, 100, 500, 1000, 5000}

const MsgBrowseFailed = "Failed to load data."

// BrowseTimings splits one load into client and server phases.
type BrowseTimings struct {
	CallStart time.Duration
	API       time.Duration
	Render    time.Duration
	Total     time.Duration
	Server    domain.BrowseTiming
}

// PreviewField is one labelled line of the record preview.
type PreviewField struct {
	Key   string
	Value string
}

type DataBrowserState struct {
	Limit    int
	Rows     []domain.Row
	Columns  []string
	Timing   BrowseTimings
	Error    string
	Loading  bool
	Expanded string
	Preview  []PreviewField
}

// DataBrowser is the generic bulk row view.
type DataBrowser struct {
	api    domain.RowBrowser
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	state     DataBrowserState
	loadStart time.Time
	apiEnd    time.Time
}

func NewDataBrowser(api domain.RowBrowser, logger *zap.Logger) *DataBrowser {
	return &DataBrowser{
		api:    api,
		logger: logger,
		now:    time.Now,
		state:  DataBrowserState{Limit: BrowseLimits[0]},
	}
}

func (b *DataBrowser) SetLimit(limit int) error {
	if !slices.Contains(BrowseLimits, limit) {
		return errors.Wrapf(ErrInvalidLimit, "limit %d", limit)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Limit = limit
	return nil
}

// Load fetches the configured number of rows. On failure the previous rows
// stay visible next to an error notice.
func (b *DataBrowser) Load(ctx context.Context) error {
	b.mu.Lock()
	limit := b.state.Limit
	b.state.Loading = true
	b.state.Error = ""
	b.loadStart = b.now()
	loadStart := b.loadStart
	b.mu.Unlock()

	callStart := b.now()
	result, err := b.api.Browse(ctx, limit)
	apiEnd := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Loading = false
	if err != nil {
		b.logger.Warn("browse failed", zap.Int("limit", limit), zap.Error(err))
		b.state.Error = MsgBrowseFailed
		return err
	}

	b.apiEnd = apiEnd
	b.state.Rows = result.Data
	b.state.Columns = table.ServerOrder(result.Data)
	b.state.Timing = BrowseTimings{
		CallStart: callStart.Sub(loadStart),
		API:       apiEnd.Sub(callStart),
		Server:    result.Timing,
	}
	b.logger.Info("browse complete", zap.Int("limit", limit), zap.Int("rows", len(result.Data)), zap.Duration("duration", apiEnd.Sub(callStart)))
	return nil
}

// MarkRendered closes the timing of the last load once a surface has drawn it.
func (b *DataBrowser) MarkRendered() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.apiEnd.IsZero() || b.state.Timing.Total != 0 {
		return
	}
	end := b.now()
	b.state.Timing.Render = end.Sub(b.apiEnd)
	b.state.Timing.Total = end.Sub(b.loadStart)
}

// Window is the row range to draw for a viewport of visible rows starting at first.
func (b *DataBrowser) Window(first, visible int) (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return table.Window(len(b.state.Rows), first, visible, table.Overscan)
}

// Expand opens the blob overlay for the row at index.
func (b *DataBrowser) Expand(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.state.Rows) {
		return ErrUnknownRow
	}
	b.state.Expanded = table.ExpandBlob(b.state.Rows[index].Text(table.BlobField))
	return nil
}

// OpenPreview shows every field of the row at index, main fields first.
func (b *DataBrowser) OpenPreview(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.state.Rows) {
		return ErrUnknownRow
	}
	b.state.Preview = RecordPreview(b.state.Rows[index])
	return nil
}

// CloseOverlay dismisses the blob overlay and the record preview.
func (b *DataBrowser) CloseOverlay() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Expanded = ""
	b.state.Preview = nil
}

func (b *DataBrowser) Export() (string, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return table.DataExportName, table.ExportCSV(b.state.Rows)
}

func (b *DataBrowser) State() DataBrowserState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	state := b.state
	state.Rows = append([]domain.Row(nil), b.state.Rows...)
	state.Columns = append([]string(nil), b.state.Columns...)
	state.Preview = append([]PreviewField(nil), b.state.Preview...)
	return state
}

// RecordPreview lists the main event fields, then the expanded blob, then
// the remaining fields.
func RecordPreview(row domain.Row) []PreviewField {
	keys := row.Keys()
	fields := make([]PreviewField, 0, len(keys))
	for _, key := range table.MainEventFields {
		if row.Has(key) {
			fields = append(fields, PreviewField{Key: key, Value: row.Text(key)})
		}
	}
	if row.Has(table.BlobField) {
		fields = append(fields, PreviewField{Key: table.BlobField, Value: table.ExpandBlob(row.Text(table.BlobField))})
	}
	for _, key := range keys {
		if key == table.BlobField || slices.Contains(table.MainEventFields, key) {
			continue
		}
		fields = append(fields, PreviewField{Key: key, Value: row.Text(key)})
	}
	return fields
}
