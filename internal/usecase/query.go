package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"go.uber.org/zap"
)

const (
	MsgMissingFilter = "⚠️ Query must include a WHERE clause (e.g., WHERE user_id = ...)"
	MsgQueryFailed   = "Query failed"
)

type QueryRunnerState struct {
	Query   string
	Result  string
	Timing  *domain.QueryTiming
	Elapsed time.Duration
	Error   string
	Loading bool
}

// QueryRunner submits free-text queries. Queries without a filter clause are
// refused before any request is made; the server validates independently.
type QueryRunner struct {
	api     domain.QueryExecutor
	auditor *Auditor
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.RWMutex
	state QueryRunnerState
}

func NewQueryRunner(api domain.QueryExecutor, auditor *Auditor, logger *zap.Logger) *QueryRunner {
	return &QueryRunner{api: api, auditor: auditor, logger: logger, now: time.Now}
}

// HasFilter reports whether query contains the filter keyword in any case.
func HasFilter(query string) bool {
	return strings.Contains(strings.ToLower(query), "where")
}

func (r *QueryRunner) Run(ctx context.Context, query string) error {
	r.mu.Lock()
	r.state.Query = query
	if !HasFilter(query) {
		r.state.Error = MsgMissingFilter
		r.mu.Unlock()
		return ErrMissingFilter
	}
	r.state.Result = ""
	r.state.Timing = nil
	r.state.Elapsed = 0
	r.state.Error = ""
	r.state.Loading = true
	r.mu.Unlock()

	r.auditor.Record(ctx, domain.AuditQueryRun, "", query)

	start := r.now()
	result, err := r.api.RunQuery(ctx, query)
	elapsed := r.now().Sub(start)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Loading = false
	if err != nil {
		r.logger.Warn("query failed", zap.Error(err))
		r.state.Error = MsgQueryFailed
		if detail := domain.ErrorDetail(err); detail != "" {
			r.state.Error = detail
		}
		return err
	}

	timing := result.Timing
	r.state.Result = indentJSON(result.Data)
	r.state.Timing = &timing
	r.state.Elapsed = elapsed
	r.logger.Info("query complete", zap.Duration("duration", elapsed), zap.Float64("query_time_ms", timing.QueryTimeMs))
	return nil
}

func (r *QueryRunner) State() QueryRunnerState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func indentJSON(data json.RawMessage) string {
	if len(data) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
