package domain

import "strings"

type AlertStatus string

const (
	AlertStatusNew    AlertStatus = "new"
	AlertStatusOpen   AlertStatus = "open"
	AlertStatusClosed AlertStatus = "closed"
)

// AlertStatuses lists the statuses an operator may assign.
var AlertStatuses = []AlertStatus{AlertStatusNew, AlertStatusOpen, AlertStatusClosed}

func ParseAlertStatus(value string) (AlertStatus, bool) {
	status := AlertStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range AlertStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// StatusFilterAll matches every alert status in list queries.
const StatusFilterAll = "all"

// StatusFilters are the list filter options in display order.
var StatusFilters = []string{string(AlertStatusNew), StatusFilterAll, string(AlertStatusOpen), string(AlertStatusClosed)}

// DayRanges are the date-range selector options shared by the list views.
var DayRanges = []int{1, 3, 7, 30}

type AlertFilter struct {
	Days   int
	Status string
}

// AlertDetail is an alert together with its linked transaction, if any.
type AlertDetail struct {
	Alert       Row  `json:"alert"`
	Transaction *Row `json:"transaction"`
}

type AggregateKind string

const (
	AggregateByType       AggregateKind = "type"
	AggregateByTenant     AggregateKind = "tenant"
	AggregateByScoreRange AggregateKind = "score_range"
	AggregateByRegion     AggregateKind = "region"
)

var AggregateKinds = []AggregateKind{AggregateByType, AggregateByTenant, AggregateByScoreRange, AggregateByRegion}

// Dimension is the field naming the group in the aggregate's rows.
func (k AggregateKind) Dimension() string {
	if k == AggregateByType {
		return "alert_type"
	}
	return string(k)
}

func ParseAggregateKind(value string) (AggregateKind, bool) {
	for _, kind := range AggregateKinds {
		if string(kind) == value {
			return kind, true
		}
	}
	return "", false
}
