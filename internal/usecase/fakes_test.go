package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
)

// fakeAPI answers from canned values and records mutating calls.
type fakeAPI struct {
	mu sync.Mutex

	events    *domain.EventsResult
	eventsErr error
	userIDs   []string
	browse    *domain.BrowseResult
	browseErr error
	query     *domain.QueryResult
	queryErr  error
	queries   []string

	transactions    []domain.Row
	transactionsErr error
	alerts          []domain.Row
	alertsErr       error
	alertFilters    []domain.AlertFilter
	alertPages      []int
	detail          *domain.AlertDetail
	reviewed        []string
	reviewErr       error
	statuses        map[string]domain.AlertStatus
	statusErr       error
	linked          *domain.Row
	linkedErr       error

	aggregates   map[domain.AggregateKind][]domain.Row
	aggregateErr map[domain.AggregateKind]error
	refreshed    []domain.AggregateKind
	refreshErr   error
	// refreshGate, when set, holds every refresh until all of them started.
	refreshGate *sync.WaitGroup

	health    *domain.Health
	healthErr error
	demo      *domain.DemoQuery
	demoErr   error
	calls     int
}

func (f *fakeAPI) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAPI) Events(ctx context.Context, userID string, full bool) (*domain.EventsResult, error) {
	f.hit()
	return f.events, f.eventsErr
}

func (f *fakeAPI) RandomUserIDs(ctx context.Context) ([]string, error) {
	f.hit()
	return f.userIDs, nil
}

func (f *fakeAPI) Browse(ctx context.Context, limit int) (*domain.BrowseResult, error) {
	f.hit()
	return f.browse, f.browseErr
}

func (f *fakeAPI) RunQuery(ctx context.Context, query string) (*domain.QueryResult, error) {
	f.hit()
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return f.query, f.queryErr
}

func (f *fakeAPI) Transactions(ctx context.Context, days, page int) ([]domain.Row, error) {
	f.hit()
	return f.transactions, f.transactionsErr
}

func (f *fakeAPI) Alerts(ctx context.Context, filter domain.AlertFilter, page int) ([]domain.Row, error) {
	f.hit()
	f.mu.Lock()
	f.alertFilters = append(f.alertFilters, filter)
	f.alertPages = append(f.alertPages, page)
	f.mu.Unlock()
	return f.alerts, f.alertsErr
}

func (f *fakeAPI) Alert(ctx context.Context, alertID string) (*domain.AlertDetail, error) {
	f.hit()
	if f.detail == nil {
		return nil, &domain.APIError{Status: 404, Detail: "Alert not found"}
	}
	return f.detail, nil
}

func (f *fakeAPI) MarkReviewed(ctx context.Context, alertID string) error {
	f.hit()
	if f.reviewErr != nil {
		return f.reviewErr
	}
	f.mu.Lock()
	f.reviewed = append(f.reviewed, alertID)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) SetAlertStatus(ctx context.Context, alertID string, status domain.AlertStatus) error {
	f.hit()
	if f.statusErr != nil {
		return f.statusErr
	}
	f.mu.Lock()
	if f.statuses == nil {
		f.statuses = map[string]domain.AlertStatus{}
	}
	f.statuses[alertID] = status
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) AlertTransaction(ctx context.Context, alertID string) (*domain.Row, error) {
	f.hit()
	return f.linked, f.linkedErr
}

func (f *fakeAPI) Aggregate(ctx context.Context, kind domain.AggregateKind) ([]domain.Row, error) {
	f.hit()
	if err := f.aggregateErr[kind]; err != nil {
		return nil, err
	}
	return f.aggregates[kind], nil
}

func (f *fakeAPI) RefreshAggregate(ctx context.Context, kind domain.AggregateKind) error {
	f.hit()
	f.mu.Lock()
	f.refreshed = append(f.refreshed, kind)
	gate, err := f.refreshGate, f.refreshErr
	f.mu.Unlock()
	if gate != nil {
		gate.Done()
		started := make(chan struct{})
		go func() {
			gate.Wait()
			close(started)
		}()
		select {
		case <-started:
		case <-time.After(time.Second):
			return errors.Newf("refresh %s waited alone", kind)
		}
	}
	return err
}

func (f *fakeAPI) Health(ctx context.Context) (*domain.Health, error) {
	f.hit()
	return f.health, f.healthErr
}

func (f *fakeAPI) DemoQuery(ctx context.Context) (*domain.DemoQuery, error) {
	f.hit()
	return f.demo, f.demoErr
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memPrefs struct {
	mu     sync.Mutex
	values map[string]string
	puts   int
	putErr error
}

func newMemPrefs() *memPrefs {
	return &memPrefs{values: map[string]string{}}
}

func (m *memPrefs) Get(ctx context.Context, scope, key string) (*domain.Preference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[scope+"/"+key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Preference{Scope: scope, Key: key, Value: value}, nil
}

func (m *memPrefs) Put(ctx context.Context, pref *domain.Preference) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[pref.Scope+"/"+pref.Key] = pref.Value
	m.puts++
	return nil
}

type memSubscribers struct {
	mu   sync.Mutex
	subs []domain.Subscriber
}

func (m *memSubscribers) GetByChatID(ctx context.Context, chatID int64) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		if sub.ChatID == chatID {
			found := sub
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSubscribers) Create(ctx context.Context, subscriber *domain.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	subscriber.ID = uint(len(m.subs) + 1)
	m.subs = append(m.subs, *subscriber)
	return nil
}

func (m *memSubscribers) Delete(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subs {
		if sub.ChatID == chatID {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memSubscribers) List(ctx context.Context) ([]domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Subscriber(nil), m.subs...), nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (m *memAudit) Append(ctx context.Context, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAudit) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEntry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

var errSocketClosed = errors.New("socket closed")

// fakeSocket delivers queued messages, then blocks until closed.
type fakeSocket struct {
	messages chan string
	closed   chan struct{}
	once     sync.Once
}

func newFakeSocket(messages ...string) *fakeSocket {
	s := &fakeSocket{messages: make(chan string, len(messages)), closed: make(chan struct{})}
	for _, msg := range messages {
		s.messages <- msg
	}
	return s
}

func (s *fakeSocket) Receive(ctx context.Context) (string, error) {
	select {
	case msg := <-s.messages:
		return msg, nil
	case <-s.closed:
		return "", errSocketClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *fakeSocket) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type fakeDialer struct {
	socket *fakeSocket
	err    error
}

func (d *fakeDialer) Dial(ctx context.Context) (domain.FeedSocket, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.socket, nil
}

// countingDialer hands out a fresh socket per dial and reports how many
// are still open.
type countingDialer struct {
	mu      sync.Mutex
	sockets []*fakeSocket
}

func (d *countingDialer) Dial(ctx context.Context) (domain.FeedSocket, error) {
	socket := newFakeSocket()
	d.mu.Lock()
	d.sockets = append(d.sockets, socket)
	d.mu.Unlock()
	return socket, nil
}

func (d *countingDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sockets)
}

func (d *countingDialer) open() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	open := 0
	for _, socket := range d.sockets {
		select {
		case <-socket.closed:
		default:
			open++
		}
	}
	return open
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (n *recordingNotifier) Notify(chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[int64][]string{}
	}
	n.sent[chatID] = append(n.sent[chatID], text)
	return nil
}

func (n *recordingNotifier) messages(chatID int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent[chatID]...)
}
