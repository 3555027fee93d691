package usecase

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgFetchFailed     = "Fetch failed."
	MsgParseFailed     = "Failed to parse server response."
	MsgRandomFailed    = "Failed to fetch random users."
	MsgInvalidUserID   = "Invalid UUID format"
	StatusTransportErr = "ERR"
)

// TimingSample is one round trip in the lookup history.
type TimingSample struct {
	Time   time.Duration
	Status string
}

type EventBrowserState struct {
	UserID    string
	Full      bool
	Rows      []domain.Row
	RandomIDs string
	Timing    *domain.EventTiming
	History   []TimingSample
	Status    string
	Error     string
	Loading   bool
}

// LastTime is the most recent round trip, or zero.
func (s EventBrowserState) LastTime() time.Duration {
	if len(s.History) == 0 {
		return 0
	}
	return s.History[len(s.History)-1].Time
}

func (s EventBrowserState) AverageTime() time.Duration {
	if len(s.History) == 0 {
		return 0
	}
	var total time.Duration
	for _, sample := range s.History {
		total += sample.Time
	}
	return (total / time.Duration(len(s.History))).Round(time.Millisecond)
}

// RenderTime is the part of the last round trip not covered by the server
// breakdown, floored at zero.
func (s EventBrowserState) RenderTime() float64 {
	if s.Timing == nil {
		return 0
	}
	total := float64(s.LastTime()) / float64(time.Millisecond)
	return max(0, total-s.Timing.Total())
}

// EventBrowser looks up the events of a single user.
type EventBrowser struct {
	api    domain.EventReader
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state EventBrowserState
}

func NewEventBrowser(api domain.EventReader, logger *zap.Logger) *EventBrowser {
	return &EventBrowser{api: api, logger: logger, now: time.Now}
}

func (b *EventBrowser) SetUserID(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.UserID = strings.TrimSpace(userID)
}

// Fetch looks up the current user id. With full set it requests every column.
func (b *EventBrowser) Fetch(ctx context.Context, full bool) error {
	b.mu.Lock()
	userID := b.state.UserID
	if userID == "" {
		b.mu.Unlock()
		return ErrEmptyUserID
	}
	if _, err := uuid.Parse(userID); err != nil {
		b.state.Error = MsgInvalidUserID
		b.mu.Unlock()
		return errors.Wrapf(ErrInvalidUserID, "user id %q", userID)
	}
	b.resetResultLocked()
	b.state.Full = full
	b.state.Loading = true
	b.mu.Unlock()

	start := b.now()
	b.logger.Info("event lookup start", zap.String("user_id", userID), zap.Bool("full", full))
	result, err := b.api.Events(ctx, userID, full)
	elapsed := b.now().Sub(start).Round(time.Millisecond)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Loading = false

	if err != nil {
		b.logger.Warn("event lookup failed", zap.String("user_id", userID), zap.Error(err))
		status := StatusTransportErr
		if code := domain.ErrorStatus(err); code != 0 {
			status = strconv.Itoa(code)
		}
		b.state.Status = status
		b.state.History = append(b.state.History, TimingSample{Time: elapsed, Status: status})
		b.state.Error = lookupErrorMessage(err)
		return err
	}

	b.logger.Info("event lookup complete", zap.String("user_id", userID), zap.Int("rows", len(result.Data)), zap.Duration("duration", elapsed))
	timing := result.Timing
	b.state.Rows = result.Data
	b.state.Timing = &timing
	b.state.Status = "200"
	b.state.History = append(b.state.History, TimingSample{Time: elapsed, Status: b.state.Status})
	return nil
}

func (b *EventBrowser) FetchRandom(ctx context.Context) error {
	b.mu.Lock()
	b.resetResultLocked()
	b.state.Loading = true
	b.mu.Unlock()

	ids, err := b.api.RandomUserIDs(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Loading = false
	if err != nil {
		b.logger.Warn("random user ids failed", zap.Error(err))
		b.state.Error = MsgRandomFailed
		return err
	}
	b.state.RandomIDs = strings.Join(ids, ",\n")
	return nil
}

// Clear drops the current result but keeps the timing history.
func (b *EventBrowser) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetResultLocked()
	b.state.Status = ""
}

func (b *EventBrowser) State() EventBrowserState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	state := b.state
	state.Rows = append([]domain.Row(nil), b.state.Rows...)
	state.History = append([]TimingSample(nil), b.state.History...)
	return state
}

func (b *EventBrowser) resetResultLocked() {
	b.state.Rows = nil
	b.state.RandomIDs = ""
	b.state.Timing = nil
	b.state.Error = ""
}

func lookupErrorMessage(err error) string {
	if detail := domain.ErrorDetail(err); detail != "" {
		return detail
	}
	if errors.Is(err, domain.ErrMalformedResponse) {
		return MsgParseFailed
	}
	return MsgFetchFailed
}
