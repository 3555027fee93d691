package usecase

import "github.com/cockroachdb/errors"

var (
	ErrMissingFilter  = errors.New("query must include a WHERE clause")
	ErrEmptyUserID    = errors.New("user id is empty")
	ErrInvalidUserID  = errors.New("invalid user id")
	ErrUnknownTab     = errors.New("unknown tab")
	ErrNoSelection    = errors.New("no alert selected")
	ErrInvalidStatus  = errors.New("invalid alert status")
	ErrInvalidPage    = errors.New("page must be at least 1")
	ErrInvalidDays    = errors.New("invalid day range")
	ErrInvalidLimit   = errors.New("invalid row limit")
	ErrUnknownRow     = errors.New("row index out of range")
	ErrNotSubscribed  = errors.New("chat is not subscribed")
	ErrUnknownDataset = errors.New("unknown dashboard")
)
