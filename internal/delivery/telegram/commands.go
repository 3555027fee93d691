package telegram

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/NasaVasa/eventdash/internal/domain"
)

const HelpText = `Commands:
/start - welcome
/help - show this help
/health - API and database status
/demo - run the demo read query
/alerts [days] [status] [page] - list alerts (defaults: 30 new 1)
/review <alert_id> - mark an alert reviewed
/status <alert_id> <new|open|closed> - change alert status
/txn <alert_id> - show the linked transaction
/subscribe - receive the live feed in this chat
/unsubscribe - stop the live feed

Notes:
- days is one of 1, 3, 7, 30.
- status filter is one of new, all, open, closed.
Example:
/alerts 7 open
/status 3f9a2c1e-0d44-4a57-8b8e-1c2d3e4f5a6b closed
`

var ErrInvalidArguments = errors.New("invalid arguments")

// AlertsArgs are the parsed /alerts arguments.
type AlertsArgs struct {
	Days   int
	Status string
	Page   int
}

// ParseAlertsArgs reads optional positional days, status and page.
func ParseAlertsArgs(args string) (AlertsArgs, error) {
	parsed := AlertsArgs{Days: 30, Status: string(domain.AlertStatusNew), Page: 1}
	parts := strings.Fields(args)
	if len(parts) > 3 {
		return AlertsArgs{}, ErrInvalidArguments
	}
	if len(parts) > 0 {
		days, err := strconv.Atoi(parts[0])
		if err != nil || !slices.Contains(domain.DayRanges, days) {
			return AlertsArgs{}, ErrInvalidArguments
		}
		parsed.Days = days
	}
	if len(parts) > 1 {
		status := strings.ToLower(parts[1])
		if !slices.Contains(domain.StatusFilters, status) {
			return AlertsArgs{}, ErrInvalidArguments
		}
		parsed.Status = status
	}
	if len(parts) > 2 {
		page, err := strconv.Atoi(parts[2])
		if err != nil || page < 1 {
			return AlertsArgs{}, ErrInvalidArguments
		}
		parsed.Page = page
	}
	return parsed, nil
}

func ParseAlertID(args string) (string, error) {
	parts := strings.Fields(args)
	if len(parts) != 1 {
		return "", ErrInvalidArguments
	}
	return parts[0], nil
}

func ParseStatusArgs(args string) (alertID string, status domain.AlertStatus, err error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", "", ErrInvalidArguments
	}
	status, ok := domain.ParseAlertStatus(parts[1])
	if !ok {
		return "", "", ErrInvalidArguments
	}
	return parts[0], status, nil
}
