package domain

import (
	"context"
	"encoding/json"
)

// EventTiming is the server-side breakdown of an event lookup, in milliseconds.
type EventTiming struct {
	WebToAPI float64 `json:"webToApi"`
	APIToDB  float64 `json:"apiToDb"`
	DBFetch  float64 `json:"dbFetch"`
	DBToWeb  float64 `json:"dbToWeb"`
}

func (t EventTiming) Total() float64 {
	return t.WebToAPI + t.APIToDB + t.DBFetch + t.DBToWeb
}

type EventsResult struct {
	Data   []Row       `json:"data"`
	Timing EventTiming `json:"timing"`
}

// BrowseTiming fields are nil when the server omits them.
type BrowseTiming struct {
	DBTime         *float64 `json:"db_time"`
	APITime        *float64 `json:"api_time"`
	ProcessingTime *float64 `json:"processing_time"`
}

type BrowseResult struct {
	Data   []Row        `json:"data"`
	Timing BrowseTiming `json:"timing"`
}

type QueryTiming struct {
	QueryTimeMs float64 `json:"queryTimeMs"`
	TotalTimeMs float64 `json:"totalTimeMs"`
}

type QueryResult struct {
	Data   json.RawMessage `json:"data"`
	Timing QueryTiming     `json:"timing"`
}

type Health struct {
	APIStatus         string   `json:"api_status"`
	DatabaseStatus    string   `json:"cassandra_status"`
	DatabaseLatencyMs *float64 `json:"cassandra_latency_ms"`
}

type DemoQuery struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type EventReader interface {
	Events(ctx context.Context, userID string, full bool) (*EventsResult, error)
	RandomUserIDs(ctx context.Context) ([]string, error)
}

type RowBrowser interface {
	Browse(ctx context.Context, limit int) (*BrowseResult, error)
}

type QueryExecutor interface {
	RunQuery(ctx context.Context, query string) (*QueryResult, error)
}

type TransactionReader interface {
	Transactions(ctx context.Context, days, page int) ([]Row, error)
}

type AlertService interface {
	Alerts(ctx context.Context, filter AlertFilter, page int) ([]Row, error)
	Alert(ctx context.Context, alertID string) (*AlertDetail, error)
	MarkReviewed(ctx context.Context, alertID string) error
	SetAlertStatus(ctx context.Context, alertID string, status AlertStatus) error
	AlertTransaction(ctx context.Context, alertID string) (*Row, error)
}

type AggregateReader interface {
	Aggregate(ctx context.Context, kind AggregateKind) ([]Row, error)
	RefreshAggregate(ctx context.Context, kind AggregateKind) error
}

type HealthProber interface {
	Health(ctx context.Context) (*Health, error)
	DemoQuery(ctx context.Context) (*DemoQuery, error)
}

// FeedSocket is an open connection to the API's broadcast channel.
type FeedSocket interface {
	Receive(ctx context.Context) (string, error)
	Close() error
}

type FeedDialer interface {
	Dial(ctx context.Context) (FeedSocket, error)
}
