package db

import (
	"context"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, scope, key string) (*domain.Preference, error) {
	var model preferenceModel
	if err := r.db.WithContext(ctx).Where("scope = ? AND pref_key = ?", scope, key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &domain.Preference{Scope: model.Scope, Key: model.Key, Value: model.Value, UpdatedAt: model.UpdatedAt}, nil
}

// Put inserts or overwrites the value for (scope, key).
func (r *PreferenceRepository) Put(ctx context.Context, pref *domain.Preference) error {
	model := preferenceModel{Scope: pref.Scope, Key: pref.Key, Value: pref.Value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}, {Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return err
	}
	pref.UpdatedAt = model.UpdatedAt
	return nil
}
