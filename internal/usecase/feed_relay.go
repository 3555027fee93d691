package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(chatID int64, text string) error
}

// FeedRelay forwards every message of the API's live feed to subscribed
// chats. A dropped socket ends the relay; it is not redialled.
type FeedRelay struct {
	subscribers domain.SubscriberRepository
	dialer      domain.FeedDialer
	notifier    Notifier
	logger      *zap.Logger

	mu     sync.Mutex
	runner *relayRunner
}

type relayRunner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewFeedRelay(subscribers domain.SubscriberRepository, dialer domain.FeedDialer, notifier Notifier, logger *zap.Logger) *FeedRelay {
	return &FeedRelay{
		subscribers: subscribers,
		dialer:      dialer,
		notifier:    notifier,
		logger:      logger,
	}
}

// Start dials the feed and relays it in the background until ctx is
// cancelled, Stop is called or the socket drops.
func (r *FeedRelay) Start(ctx context.Context) error {
	r.Stop()

	socket, err := r.dialer.Dial(ctx)
	if err != nil {
		return errors.Wrap(err, "dial feed")
	}

	childCtx, cancel := context.WithCancel(ctx)
	runner := &relayRunner{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.runner = runner
	r.mu.Unlock()

	go func() {
		defer close(runner.done)
		r.run(childCtx, socket)
	}()
	return nil
}

func (r *FeedRelay) Running() bool {
	r.mu.Lock()
	runner := r.runner
	r.mu.Unlock()
	if runner == nil {
		return false
	}
	select {
	case <-runner.done:
		return false
	default:
		return true
	}
}

func (r *FeedRelay) Stop() {
	r.mu.Lock()
	runner := r.runner
	r.runner = nil
	r.mu.Unlock()

	if runner == nil {
		return
	}

	runner.cancel()
	select {
	case <-runner.done:
	case <-time.After(5 * time.Second):
		r.logger.Warn("timeout stopping feed relay")
	}
}

func (r *FeedRelay) run(ctx context.Context, socket domain.FeedSocket) {
	defer socket.Close()

	go func() {
		<-ctx.Done()
		_ = socket.Close()
	}()

	r.logger.Info("feed relay started")
	for {
		msg, err := socket.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("feed relay stopped")
				return
			}
			r.logger.Error("feed receive error", zap.Error(err))
			return
		}
		r.broadcast(ctx, msg)
	}
}

func (r *FeedRelay) broadcast(ctx context.Context, msg string) {
	subscribers, err := r.subscribers.List(ctx)
	if err != nil {
		r.logger.Warn("failed to list subscribers", zap.Error(err))
		return
	}
	for _, subscriber := range subscribers {
		if err := r.notifier.Notify(subscriber.ChatID, msg); err != nil {
			r.logger.Warn("failed to relay feed message", zap.Int64("chat_id", subscriber.ChatID), zap.Error(err))
		}
	}
}
