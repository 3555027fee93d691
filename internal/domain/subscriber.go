package domain

import "time"

// Subscriber is a telegram chat receiving the live feed relay.
type Subscriber struct {
	ID        uint
	ChatID    int64
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
