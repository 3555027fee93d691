package domain

import (
	"context"

	"github.com/cockroachdb/errors"
)

var ErrNotFound = errors.New("not found")

type PreferenceRepository interface {
	Get(ctx context.Context, scope, key string) (*Preference, error)
	Put(ctx context.Context, pref *Preference) error
}

type SubscriberRepository interface {
	GetByChatID(ctx context.Context, chatID int64) (*Subscriber, error)
	Create(ctx context.Context, subscriber *Subscriber) error
	Delete(ctx context.Context, chatID int64) error
	List(ctx context.Context) ([]Subscriber, error)
}

type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
}
