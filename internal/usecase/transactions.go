package usecase

import (
	"context"
	"sync"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"go.uber.org/zap"
)

type TransactionsState struct {
	Days    int
	Page    int
	Rows    []domain.Row
	Columns []string
	Error   string
	Loading bool
}

// CanPrev reports whether the previous-page action is enabled.
func (s TransactionsState) CanPrev() bool {
	return s.Page > 1
}

type TransactionsView struct {
	api    domain.TransactionReader
	logger *zap.Logger

	mu      sync.RWMutex
	paging  paging
	rows    []domain.Row
	err     string
	loading bool
}

func NewTransactionsView(api domain.TransactionReader, logger *zap.Logger) *TransactionsView {
	return &TransactionsView{api: api, logger: logger, paging: paging{days: 1, page: 1}}
}

// SetDays changes the date range and returns to the first page.
func (v *TransactionsView) SetDays(days int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paging.setDays(days)
}

func (v *TransactionsView) SetPage(page int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paging.setPage(page)
}

func (v *TransactionsView) Next() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paging.next()
}

// Prev steps back one page and reports whether anything changed.
func (v *TransactionsView) Prev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paging.prev()
}

// Load fetches the current page. On failure the previous rows are kept.
func (v *TransactionsView) Load(ctx context.Context) error {
	v.mu.Lock()
	days, page := v.paging.days, v.paging.page
	v.loading = true
	v.err = ""
	v.mu.Unlock()

	rows, err := v.api.Transactions(ctx, days, page)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.logger.Warn("transactions load failed", zap.Int("days", days), zap.Int("page", page), zap.Error(err))
		v.err = MsgListFailed
		return err
	}
	v.rows = rows
	return nil
}

func (v *TransactionsView) Export() (string, string) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return table.TransactionsExportName, table.ExportCSV(v.rows)
}

func (v *TransactionsView) State() TransactionsState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return TransactionsState{
		Days:    v.paging.days,
		Page:    v.paging.page,
		Rows:    append([]domain.Row(nil), v.rows...),
		Columns: table.ServerOrder(v.rows),
		Error:   v.err,
		Loading: v.loading,
	}
}
