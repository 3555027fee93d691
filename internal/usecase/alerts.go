package usecase

import (
	"context"
	"slices"
	"sync"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	MsgStatusUpdated      = "Status updated successfully"
	MsgStatusFailed       = "Failed to update status"
	MsgStatusError        = "Error updating status"
	MsgReviewFailed       = "Failed to mark alert as reviewed"
	MsgTransactionMissing = "No linked transaction."
	MsgTransactionFailed  = "Failed to load transaction."
)

// AlertSelection is the detail overlay of one alert.
type AlertSelection struct {
	Alert              domain.Row
	Transaction        *domain.Row
	TransactionLoading bool
	TransactionError   string
	Notice             string
	NoticeIsError      bool
}

func (s AlertSelection) ID() string {
	return s.Alert.Text("alert_id")
}

type AlertsState struct {
	Filter   domain.AlertFilter
	Page     int
	Rows     []domain.Row
	Columns  []string
	Error    string
	Loading  bool
	Selected *AlertSelection
}

func (s AlertsState) CanPrev() bool {
	return s.Page > 1
}

// AlertsView is the paginated alert table with its detail overlay.
type AlertsView struct {
	api     domain.AlertService
	auditor *Auditor
	logger  *zap.Logger

	mu       sync.RWMutex
	paging   paging
	status   string
	rows     []domain.Row
	err      string
	loading  bool
	selected *AlertSelection
}

func NewAlertsView(api domain.AlertService, auditor *Auditor, logger *zap.Logger) *AlertsView {
	return &AlertsView{
		api:     api,
		auditor: auditor,
		logger:  logger,
		paging:  paging{days: 30, page: 1},
		status:  string(domain.AlertStatusNew),
	}
}

func (v *AlertsView) SetDays(days int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paging.setDays(days)
}

// SetStatusFilter changes the status filter and returns to the first page.
func (v *AlertsView) SetStatusFilter(status string) error {
	if !slices.Contains(domain.StatusFilters, status) {
		return errors.Wrapf(ErrInvalidStatus, "filter %q", status)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = status
	v.paging.page = 1
	return nil
}

func (v *AlertsView) SetPage(page int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paging.setPage(page)
}

func (v *AlertsView) Next() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paging.next()
}

func (v *AlertsView) Prev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paging.prev()
}

func (v *AlertsView) Load(ctx context.Context) error {
	v.mu.Lock()
	filter := domain.AlertFilter{Days: v.paging.days, Status: v.status}
	page := v.paging.page
	v.loading = true
	v.err = ""
	v.mu.Unlock()

	rows, err := v.api.Alerts(ctx, filter, page)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.logger.Warn("alerts load failed", zap.Int("days", filter.Days), zap.String("status", filter.Status), zap.Int("page", page), zap.Error(err))
		v.err = MsgListFailed
		return err
	}
	v.rows = rows
	return nil
}

// Open selects an alert from the current page and marks it reviewed.
func (v *AlertsView) Open(ctx context.Context, alertID string) error {
	v.mu.Lock()
	index := v.indexLocked(alertID)
	if index < 0 {
		v.mu.Unlock()
		return errors.Wrapf(ErrUnknownRow, "alert %q", alertID)
	}
	v.selected = &AlertSelection{Alert: v.rows[index].Clone()}
	v.mu.Unlock()

	if err := v.Review(ctx, alertID); err != nil {
		v.mu.Lock()
		if v.selected != nil && v.selected.ID() == alertID {
			v.selected.Notice = MsgReviewFailed
			v.selected.NoticeIsError = true
		}
		v.mu.Unlock()
		return err
	}
	return nil
}

// Review marks an alert reviewed on the server, then flags the matching row
// of the current page. Other rows are left untouched.
func (v *AlertsView) Review(ctx context.Context, alertID string) error {
	if err := v.api.MarkReviewed(ctx, alertID); err != nil {
		v.logger.Warn("mark reviewed failed", zap.String("alert_id", alertID), zap.Error(err))
		return err
	}
	v.auditor.Record(ctx, domain.AuditAlertReviewed, alertID, "")

	v.mu.Lock()
	defer v.mu.Unlock()
	if index := v.indexLocked(alertID); index >= 0 {
		row := v.rows[index].Clone()
		row.Set("reviewed", true)
		v.rows = slices.Clone(v.rows)
		v.rows[index] = row
	}
	if v.selected != nil && v.selected.ID() == alertID {
		v.selected.Alert = v.selected.Alert.Clone()
		v.selected.Alert.Set("reviewed", true)
	}
	return nil
}

// Close dismisses the detail overlay.
func (v *AlertsView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
}

// LoadTransaction fetches the transaction linked to the selected alert.
func (v *AlertsView) LoadTransaction(ctx context.Context) error {
	v.mu.Lock()
	if v.selected == nil {
		v.mu.Unlock()
		return ErrNoSelection
	}
	alertID := v.selected.ID()
	v.selected.TransactionLoading = true
	v.selected.TransactionError = ""
	v.mu.Unlock()

	transaction, err := v.api.AlertTransaction(ctx, alertID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil || v.selected.ID() != alertID {
		return err
	}
	v.selected.TransactionLoading = false
	if err != nil {
		v.logger.Warn("linked transaction failed", zap.String("alert_id", alertID), zap.Error(err))
		v.selected.Transaction = nil
		v.selected.TransactionError = MsgTransactionFailed
		if errors.Is(err, domain.ErrNotFound) {
			v.selected.TransactionError = MsgTransactionMissing
		}
		return err
	}
	v.selected.Transaction = transaction
	return nil
}

// ChangeStatus submits a new status for the selected alert. The outcome is
// reported through the selection notice.
func (v *AlertsView) ChangeStatus(ctx context.Context, status string) error {
	v.mu.RLock()
	selected := v.selected
	v.mu.RUnlock()
	if selected == nil {
		return ErrNoSelection
	}
	alertID := selected.ID()

	err := v.SetStatus(ctx, alertID, status)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil || v.selected.ID() != alertID {
		return err
	}
	switch {
	case err == nil:
		v.selected.Notice, v.selected.NoticeIsError = MsgStatusUpdated, false
	case errors.Is(err, ErrInvalidStatus):
		v.selected.Notice, v.selected.NoticeIsError = MsgStatusFailed, true
	case domain.ErrorStatus(err) != 0:
		v.selected.Notice, v.selected.NoticeIsError = MsgStatusFailed, true
	default:
		v.selected.Notice, v.selected.NoticeIsError = MsgStatusError, true
	}
	return err
}

// SetStatus assigns status to any alert by id and mirrors it locally.
func (v *AlertsView) SetStatus(ctx context.Context, alertID, status string) error {
	parsed, ok := domain.ParseAlertStatus(status)
	if !ok {
		return errors.Wrapf(ErrInvalidStatus, "status %q", status)
	}
	if err := v.api.SetAlertStatus(ctx, alertID, parsed); err != nil {
		v.logger.Warn("status update failed", zap.String("alert_id", alertID), zap.String("status", string(parsed)), zap.Error(err))
		return err
	}
	v.auditor.Record(ctx, domain.AuditAlertStatus, alertID, string(parsed))

	v.mu.Lock()
	defer v.mu.Unlock()
	if index := v.indexLocked(alertID); index >= 0 {
		row := v.rows[index].Clone()
		row.Set("status", string(parsed))
		v.rows = slices.Clone(v.rows)
		v.rows[index] = row
	}
	if v.selected != nil && v.selected.ID() == alertID {
		v.selected.Alert = v.selected.Alert.Clone()
		v.selected.Alert.Set("status", string(parsed))
	}
	return nil
}

// Lookup fetches one alert with its linked transaction without touching
// the table state.
func (v *AlertsView) Lookup(ctx context.Context, alertID string) (*domain.AlertDetail, error) {
	detail, err := v.api.Alert(ctx, alertID)
	if err != nil {
		v.logger.Warn("alert lookup failed", zap.String("alert_id", alertID), zap.Error(err))
		return nil, err
	}
	return detail, nil
}

func (v *AlertsView) Export() (string, string) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return table.AlertsExportName, table.ExportCSV(v.rows)
}

func (v *AlertsView) State() AlertsState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	state := AlertsState{
		Filter:  domain.AlertFilter{Days: v.paging.days, Status: v.status},
		Page:    v.paging.page,
		Rows:    append([]domain.Row(nil), v.rows...),
		Error:   v.err,
		Loading: v.loading,
	}
	if len(v.rows) > 0 {
		state.Columns = table.AlertColumns(v.rows[0].Keys())
	}
	if v.selected != nil {
		selected := *v.selected
		state.Selected = &selected
	}
	return state
}

func (v *AlertsView) indexLocked(alertID string) int {
	for i, row := range v.rows {
		if row.Text("alert_id") == alertID {
			return i
		}
	}
	return -1
}
