package db

import (
	"time"

	"gorm.io/gorm"
)

type preferenceModel struct {
	ID        uint   `gorm:"primaryKey"`
	Scope     string `gorm:"uniqueIndex:idx_preferences_scope_key,priority:1;not null"`
	Key       string `gorm:"column:pref_key;uniqueIndex:idx_preferences_scope_key,priority:2;not null"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (preferenceModel) TableName() string {
	return "preferences"
}

type subscriberModel struct {
	ID        uint   `gorm:"primaryKey"`
	ChatID    int64  `gorm:"uniqueIndex;not null"`
	Username  string `gorm:""`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (subscriberModel) TableName() string {
	return "subscribers"
}

type auditModel struct {
	ID        uint      `gorm:"primaryKey"`
	Actor     string    `gorm:"not null"`
	Action    string    `gorm:"index;not null"`
	Target    string    `gorm:""`
	Detail    string    `gorm:""`
	CreatedAt time.Time `gorm:"index"`
}

func (auditModel) TableName() string {
	return "audit_entries"
}
