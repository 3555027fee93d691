package usecase

import (
	"context"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
)

type SubscriberUsecase struct {
	subscribers domain.SubscriberRepository
}

func NewSubscriberUsecase(subscribers domain.SubscriberRepository) *SubscriberUsecase {
	return &SubscriberUsecase{subscribers: subscribers}
}

// Subscribe registers a chat for the feed relay. It reports whether the chat
// was newly added.
func (u *SubscriberUsecase) Subscribe(ctx context.Context, chatID int64, username string) (*domain.Subscriber, bool, error) {
	subscriber, err := u.subscribers.GetByChatID(ctx, chatID)
	if err == nil {
		return subscriber, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	subscriber = &domain.Subscriber{
		ChatID:   chatID,
		Username: username,
	}
	if err := u.subscribers.Create(ctx, subscriber); err != nil {
		return nil, false, err
	}

	return subscriber, true, nil
}

func (u *SubscriberUsecase) Unsubscribe(ctx context.Context, chatID int64) error {
	err := u.subscribers.Delete(ctx, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrNotSubscribed
	}
	return err
}

func (u *SubscriberUsecase) IsSubscribed(ctx context.Context, chatID int64) (bool, error) {
	_, err := u.subscribers.GetByChatID(ctx, chatID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}
