package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestQueryRunnerRequiresFilter(t *testing.T) {
	for _, query := range []string{"", "SELECT * FROM events", "select * from x limit 5"} {
		api := &fakeAPI{}
		runner := NewQueryRunner(api, nil, zaptest.NewLogger(t))

		err := runner.Run(context.Background(), query)

		assert.ErrorIs(t, err, ErrMissingFilter, query)
		assert.Equal(t, MsgMissingFilter, runner.State().Error)
		assert.Zero(t, api.callCount(), query)
	}
}

func TestHasFilter(t *testing.T) {
	assert.True(t, HasFilter("SELECT * FROM t WHERE user_id = 1"))
	assert.True(t, HasFilter("select * from t where x"))
	assert.False(t, HasFilter("SELECT * FROM t"))
}

func TestQueryRunnerSuccess(t *testing.T) {
	api := &fakeAPI{query: &domain.QueryResult{
		Data:   json.RawMessage(`[{"user_id":"u1"}]`),
		Timing: domain.QueryTiming{QueryTimeMs: 3.5, TotalTimeMs: 4},
	}}
	audit := &memAudit{}
	runner := NewQueryRunner(api, NewAuditor(audit, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	query := "SELECT * FROM events WHERE user_id = 'u1'"
	require.NoError(t, runner.Run(context.Background(), query))

	state := runner.State()
	assert.Equal(t, "[\n  {\n    \"user_id\": \"u1\"\n  }\n]", state.Result)
	require.NotNil(t, state.Timing)
	assert.InDelta(t, 3.5, state.Timing.QueryTimeMs, 0.001)
	assert.Empty(t, state.Error)
	assert.Equal(t, []string{query}, api.queries)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, domain.AuditQueryRun, audit.entries[0].Action)
	assert.Equal(t, query, audit.entries[0].Detail)
}

func TestQueryRunnerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "server detail", err: &domain.APIError{Status: 400, Detail: "Query failed: syntax error"}, want: "Query failed: syntax error"},
		{name: "transport", err: errors.New("connection reset"), want: MsgQueryFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewQueryRunner(&fakeAPI{queryErr: tt.err}, nil, zaptest.NewLogger(t))
			require.Error(t, runner.Run(context.Background(), "SELECT * FROM t WHERE a = 1"))
			state := runner.State()
			assert.Equal(t, tt.want, state.Error)
			assert.Empty(t, state.Result)
		})
	}
}
