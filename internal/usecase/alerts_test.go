package usecase

import (
	"context"
	"testing"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func alertRows() []domain.Row {
	return []domain.Row{
		domain.NewRow("alert_id", "a-1", "region", "EU", "reviewed", false, "status", "open", "amount", "10.5", "create_timestamp", "t1"),
		domain.NewRow("alert_id", "a-2", "region", "EU", "reviewed", false, "status", "open", "amount", "3", "create_timestamp", "t2"),
	}
}

func TestAlertsViewDefaultsAndPaging(t *testing.T) {
	api := &fakeAPI{alerts: alertRows()}
	view := NewAlertsView(api, nil, zaptest.NewLogger(t))

	state := view.State()
	assert.Equal(t, domain.AlertFilter{Days: 30, Status: "new"}, state.Filter)
	assert.Equal(t, 1, state.Page)
	assert.False(t, state.CanPrev())

	assert.False(t, view.Prev())
	assert.Equal(t, 1, view.State().Page)

	view.Next()
	view.Next()
	assert.True(t, view.Prev())
	assert.Equal(t, 2, view.State().Page)

	require.NoError(t, view.SetDays(7))
	require.NoError(t, view.SetStatusFilter("open"))
	assert.Equal(t, 1, view.State().Page)

	require.NoError(t, view.Load(context.Background()))
	assert.Equal(t, []domain.AlertFilter{{Days: 7, Status: "open"}}, api.alertFilters)
	assert.Len(t, view.State().Rows, 2)

	assert.ErrorIs(t, view.SetDays(2), ErrInvalidDays)
	assert.ErrorIs(t, view.SetStatusFilter("pending"), ErrInvalidStatus)
	assert.ErrorIs(t, view.SetPage(0), ErrInvalidPage)
}

func TestAlertsViewLoadFailureKeepsRows(t *testing.T) {
	api := &fakeAPI{alerts: alertRows()}
	view := NewAlertsView(api, nil, zaptest.NewLogger(t))
	require.NoError(t, view.Load(context.Background()))

	api.alertsErr = errors.New("connection refused")
	view.Next()
	require.Error(t, view.Load(context.Background()))

	state := view.State()
	assert.Len(t, state.Rows, 2)
	assert.Equal(t, MsgListFailed, state.Error)
	assert.False(t, state.Loading)
}

func TestAlertsViewOpenMarksOnlySelectedRowReviewed(t *testing.T) {
	ctx := WithActor(context.Background(), "ops")
	api := &fakeAPI{alerts: alertRows()}
	audit := &memAudit{}
	view := NewAlertsView(api, NewAuditor(audit, zaptest.NewLogger(t)), zaptest.NewLogger(t))
	require.NoError(t, view.Load(ctx))

	require.NoError(t, view.Open(ctx, "a-1"))

	state := view.State()
	assert.Equal(t, []string{"a-1"}, api.reviewed)
	assert.True(t, state.Rows[0].Bool("reviewed"))
	assert.False(t, state.Rows[1].Bool("reviewed"))
	assert.Equal(t, table.MarkReviewed, table.Cell(state.Rows[0], "reviewed"))
	assert.Equal(t, table.MarkUnreviewed, table.Cell(state.Rows[1], "reviewed"))
	require.NotNil(t, state.Selected)
	assert.True(t, state.Selected.Alert.Bool("reviewed"))

	require.Len(t, audit.entries, 1)
	assert.Equal(t, domain.AuditAlertReviewed, audit.entries[0].Action)
	assert.Equal(t, "ops", audit.entries[0].Actor)
	assert.Equal(t, 1, len(api.alertFilters), "no refetch after review")
}

func TestAlertsViewReviewFailureLeavesRow(t *testing.T) {
	api := &fakeAPI{alerts: alertRows()}
	view := NewAlertsView(api, nil, zaptest.NewLogger(t))
	require.NoError(t, view.Load(context.Background()))

	api.reviewErr = &domain.APIError{Status: 500, Detail: "boom"}
	require.Error(t, view.Open(context.Background(), "a-2"))

	state := view.State()
	assert.False(t, state.Rows[1].Bool("reviewed"))
	require.NotNil(t, state.Selected)
	assert.Equal(t, MsgReviewFailed, state.Selected.Notice)
	assert.True(t, state.Selected.NoticeIsError)
}

func TestAlertsViewOpenUnknownRow(t *testing.T) {
	view := NewAlertsView(&fakeAPI{}, nil, zaptest.NewLogger(t))
	assert.ErrorIs(t, view.Open(context.Background(), "missing"), ErrUnknownRow)
}

func TestAlertsViewChangeStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		statusErr error
		notice    string
		isError   bool
		applied   bool
	}{
		{name: "success", status: "closed", notice: MsgStatusUpdated, applied: true},
		{name: "server rejects", status: "closed", statusErr: &domain.APIError{Status: 422, Detail: "bad"}, notice: MsgStatusFailed, isError: true},
		{name: "transport failure", status: "closed", statusErr: errors.New("dial tcp: refused"), notice: MsgStatusError, isError: true},
		{name: "unknown status", status: "pending", notice: MsgStatusFailed, isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{alerts: alertRows()}
			view := NewAlertsView(api, nil, zaptest.NewLogger(t))
			require.NoError(t, view.Load(context.Background()))
			require.NoError(t, view.Open(context.Background(), "a-1"))

			api.statusErr = tt.statusErr
			err := view.ChangeStatus(context.Background(), tt.status)

			state := view.State()
			require.NotNil(t, state.Selected)
			assert.Equal(t, tt.notice, state.Selected.Notice)
			assert.Equal(t, tt.isError, state.Selected.NoticeIsError)
			if tt.applied {
				require.NoError(t, err)
				assert.Equal(t, tt.status, state.Selected.Alert.Text("status"))
				assert.Equal(t, tt.status, state.Rows[0].Text("status"))
				assert.Equal(t, "open", state.Rows[1].Text("status"))
				return
			}
			require.Error(t, err)
			assert.Equal(t, "open", state.Rows[0].Text("status"))
		})
	}
}

func TestAlertsViewChangeStatusWithoutSelection(t *testing.T) {
	view := NewAlertsView(&fakeAPI{}, nil, zaptest.NewLogger(t))
	assert.ErrorIs(t, view.ChangeStatus(context.Background(), "open"), ErrNoSelection)
	assert.ErrorIs(t, view.LoadTransaction(context.Background()), ErrNoSelection)
}

func TestAlertsViewLoadTransaction(t *testing.T) {
	linked := domain.NewRow("transaction_id", "t-1", "amount", "12")
	api := &fakeAPI{alerts: alertRows(), linked: &linked}
	view := NewAlertsView(api, nil, zaptest.NewLogger(t))
	require.NoError(t, view.Load(context.Background()))
	require.NoError(t, view.Open(context.Background(), "a-1"))

	require.NoError(t, view.LoadTransaction(context.Background()))
	selected := view.State().Selected
	require.NotNil(t, selected.Transaction)
	assert.Equal(t, "t-1", selected.Transaction.Text("transaction_id"))

	api.linked = nil
	api.linkedErr = domain.ErrNotFound
	require.Error(t, view.LoadTransaction(context.Background()))
	selected = view.State().Selected
	assert.Nil(t, selected.Transaction)
	assert.Equal(t, MsgTransactionMissing, selected.TransactionError)

	view.Close()
	assert.Nil(t, view.State().Selected)
}

func TestAlertsViewLookup(t *testing.T) {
	api := &fakeAPI{}
	view := NewAlertsView(api, nil, zaptest.NewLogger(t))

	_, err := view.Lookup(context.Background(), "a-9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	api.detail = &domain.AlertDetail{Alert: domain.NewRow("alert_id", "a-9")}
	detail, err := view.Lookup(context.Background(), "a-9")
	require.NoError(t, err)
	assert.Equal(t, "a-9", detail.Alert.Text("alert_id"))
}

func TestAlertsViewColumnsAndExport(t *testing.T) {
	api := &fakeAPI{alerts: alertRows()}
	view := NewAlertsView(api, nil, zaptest.NewLogger(t))
	require.NoError(t, view.Load(context.Background()))

	state := view.State()
	assert.Equal(t, "alert_id", state.Columns[0])
	assert.Equal(t, "create_timestamp", state.Columns[len(state.Columns)-1])

	name, data := view.Export()
	assert.Equal(t, table.AlertsExportName, name)
	assert.Contains(t, data, "alert_id,region,reviewed,status,amount,create_timestamp\n")
}
