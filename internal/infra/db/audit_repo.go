package db

import (
	"context"

	"github.com/NasaVasa/eventdash/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	model := auditModel{
		Actor:     entry.Actor,
		Action:    entry.Action,
		Target:    entry.Target,
		Detail:    entry.Detail,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	var models []auditModel
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.AuditEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, domain.AuditEntry{
			ID:        model.ID,
			Actor:     model.Actor,
			Action:    model.Action,
			Target:    model.Target,
			Detail:    model.Detail,
			CreatedAt: model.CreatedAt,
		})
	}
	return entries, nil
}
