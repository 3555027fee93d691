package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func browseRows(n int) []domain.Row {
	rows := make([]domain.Row, n)
	for i := range rows {
		rows[i] = domain.NewRow("user_id", "u", "session_id", "s", "xml_blob", `{"ip":"10.0.0.1"}`, "event_type", "login")
	}
	return rows
}

func TestDataBrowserLoadAndTimings(t *testing.T) {
	db := 1.5
	api := &fakeAPI{browse: &domain.BrowseResult{Data: browseRows(3), Timing: domain.BrowseTiming{DBTime: &db}}}
	browser := NewDataBrowser(api, zaptest.NewLogger(t))
	browser.now = stepClock(time.Millisecond)

	assert.Equal(t, BrowseLimits[0], browser.State().Limit)
	require.NoError(t, browser.SetLimit(100))
	assert.ErrorIs(t, browser.SetLimit(7), ErrInvalidLimit)

	require.NoError(t, browser.Load(context.Background()))
	browser.MarkRendered()

	state := browser.State()
	assert.Len(t, state.Rows, 3)
	assert.Equal(t, []string{"user_id", "session_id", "xml_blob", "event_type"}, state.Columns)
	assert.Equal(t, time.Millisecond, state.Timing.CallStart)
	assert.Equal(t, time.Millisecond, state.Timing.API)
	assert.Equal(t, time.Millisecond, state.Timing.Render)
	assert.Equal(t, 3*time.Millisecond, state.Timing.Total)
	assert.Equal(t, &db, state.Timing.Server.DBTime)
}

func TestDataBrowserFailureKeepsRows(t *testing.T) {
	api := &fakeAPI{browse: &domain.BrowseResult{Data: browseRows(2)}}
	browser := NewDataBrowser(api, zaptest.NewLogger(t))
	require.NoError(t, browser.Load(context.Background()))

	api.browseErr = errors.New("timeout")
	require.Error(t, browser.Load(context.Background()))
	state := browser.State()
	assert.Len(t, state.Rows, 2)
	assert.Equal(t, MsgBrowseFailed, state.Error)
}

func TestDataBrowserOverlays(t *testing.T) {
	api := &fakeAPI{browse: &domain.BrowseResult{Data: browseRows(1)}}
	browser := NewDataBrowser(api, zaptest.NewLogger(t))
	require.NoError(t, browser.Load(context.Background()))

	assert.ErrorIs(t, browser.Expand(4), ErrUnknownRow)
	require.NoError(t, browser.Expand(0))
	assert.Equal(t, "ip: 10.0.0.1", browser.State().Expanded)

	require.NoError(t, browser.OpenPreview(0))
	preview := browser.State().Preview
	keys := make([]string, 0, len(preview))
	for _, field := range preview {
		keys = append(keys, field.Key)
	}
	assert.Equal(t, []string{"user_id", "session_id", "xml_blob", "event_type"}, keys)

	browser.CloseOverlay()
	state := browser.State()
	assert.Empty(t, state.Expanded)
	assert.Empty(t, state.Preview)

	name, data := browser.Export()
	assert.Equal(t, table.DataExportName, name)
	assert.NotEmpty(t, data)
}

func TestDataBrowserWindow(t *testing.T) {
	api := &fakeAPI{browse: &domain.BrowseResult{Data: browseRows(100)}}
	browser := NewDataBrowser(api, zaptest.NewLogger(t))
	require.NoError(t, browser.Load(context.Background()))

	start, end := browser.Window(50, 20)
	assert.Equal(t, 40, start)
	assert.Equal(t, 80, end)

	start, end = browser.Window(95, 20)
	assert.Equal(t, 85, start)
	assert.Equal(t, 100, end)
}
