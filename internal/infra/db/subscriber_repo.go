package db

import (
	"context"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
)

type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) GetByChatID(ctx context.Context, chatID int64) (*domain.Subscriber, error) {
	var model subscriberModel
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mapSubscriberToDomain(model), nil
}

func (r *SubscriberRepository) Create(ctx context.Context, subscriber *domain.Subscriber) error {
	model := mapSubscriberToModel(*subscriber)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	subscriber.ID = model.ID
	subscriber.CreatedAt = model.CreatedAt
	subscriber.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes the row outright so the chat can subscribe again later.
func (r *SubscriberRepository) Delete(ctx context.Context, chatID int64) error {
	result := r.db.WithContext(ctx).Unscoped().Where("chat_id = ?", chatID).Delete(&subscriberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepository) List(ctx context.Context) ([]domain.Subscriber, error) {
	var models []subscriberModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	subscribers := make([]domain.Subscriber, 0, len(models))
	for _, model := range models {
		subscribers = append(subscribers, *mapSubscriberToDomain(model))
	}
	return subscribers, nil
}

func mapSubscriberToDomain(model subscriberModel) *domain.Subscriber {
	var deleted *time.Time
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		deleted = &t
	}
	return &domain.Subscriber{
		ID:        model.ID,
		ChatID:    model.ChatID,
		Username:  model.Username,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		DeletedAt: deleted,
	}
}

func mapSubscriberToModel(subscriber domain.Subscriber) subscriberModel {
	return subscriberModel{
		ID:        subscriber.ID,
		ChatID:    subscriber.ChatID,
		Username:  subscriber.Username,
		CreatedAt: subscriber.CreatedAt,
		UpdatedAt: subscriber.UpdatedAt,
	}
}
