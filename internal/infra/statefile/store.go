// Package statefile persists preferences and subscribers in a local YAML
// file when no database is configured.
package statefile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type preferenceEntry struct {
	Value     string    `yaml:"value"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

type subscriberEntry struct {
	ID        uint      `yaml:"id"`
	ChatID    int64     `yaml:"chat_id"`
	Username  string    `yaml:"username,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

type document struct {
	Preferences map[string]map[string]preferenceEntry `yaml:"preferences,omitempty"`
	Subscribers []subscriberEntry                     `yaml:"subscribers,omitempty"`
}

// Store is safe for concurrent use. Every mutation rewrites the file.
type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu  sync.Mutex
	doc document
}

// Open loads path if it exists. A missing file starts an empty store.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger, now: time.Now}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("state file not found, starting empty", zap.String("path", path))
	case err != nil:
		return nil, errors.Wrapf(err, "read state file %s", path)
	default:
		if err := yaml.Unmarshal(data, &s.doc); err != nil {
			return nil, errors.Wrapf(err, "parse state file %s", path)
		}
	}
	if s.doc.Preferences == nil {
		s.doc.Preferences = make(map[string]map[string]preferenceEntry)
	}
	return s, nil
}

func (s *Store) Get(ctx context.Context, scope, key string) (*domain.Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.doc.Preferences[scope][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Preference{Scope: scope, Key: key, Value: entry.Value, UpdatedAt: entry.UpdatedAt}, nil
}

func (s *Store) Put(ctx context.Context, pref *domain.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scoped, ok := s.doc.Preferences[pref.Scope]
	if !ok {
		scoped = make(map[string]preferenceEntry)
		s.doc.Preferences[pref.Scope] = scoped
	}
	pref.UpdatedAt = s.now().UTC()
	scoped[pref.Key] = preferenceEntry{Value: pref.Value, UpdatedAt: pref.UpdatedAt}
	return s.save()
}

func (s *Store) GetByChatID(ctx context.Context, chatID int64) (*domain.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.doc.Subscribers {
		if entry.ChatID == chatID {
			return mapSubscriber(entry), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) Create(ctx context.Context, subscriber *domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nextID uint = 1
	for _, entry := range s.doc.Subscribers {
		if entry.ChatID == subscriber.ChatID {
			return errors.Newf("subscriber %d already exists", subscriber.ChatID)
		}
		nextID = max(nextID, entry.ID+1)
	}

	entry := subscriberEntry{ID: nextID, ChatID: subscriber.ChatID, Username: subscriber.Username, CreatedAt: s.now().UTC()}
	s.doc.Subscribers = append(s.doc.Subscribers, entry)
	subscriber.ID = entry.ID
	subscriber.CreatedAt = entry.CreatedAt
	subscriber.UpdatedAt = entry.CreatedAt
	return s.save()
}

func (s *Store) Delete(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, entry := range s.doc.Subscribers {
		if entry.ChatID == chatID {
			s.doc.Subscribers = append(s.doc.Subscribers[:i], s.doc.Subscribers[i+1:]...)
			return s.save()
		}
	}
	return domain.ErrNotFound
}

func (s *Store) List(ctx context.Context) ([]domain.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscribers := make([]domain.Subscriber, 0, len(s.doc.Subscribers))
	for _, entry := range s.doc.Subscribers {
		subscribers = append(subscribers, *mapSubscriber(entry))
	}
	sort.Slice(subscribers, func(i, j int) bool { return subscribers[i].ID < subscribers[j].ID })
	return subscribers, nil
}

// save replaces the file through a temp file and rename.
func (s *Store) save() error {
	data, err := yaml.Marshal(&s.doc)
	if err != nil {
		return errors.Wrap(err, "encode state file")
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".eventdash-state-*")
	if err != nil {
		return errors.Wrap(err, "create state temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "write state file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "close state file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "replace state file")
	}
	s.logger.Debug("state file saved", zap.String("path", s.path))
	return nil
}

func mapSubscriber(entry subscriberEntry) *domain.Subscriber {
	return &domain.Subscriber{
		ID:        entry.ID,
		ChatID:    entry.ChatID,
		Username:  entry.Username,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.CreatedAt,
	}
}
