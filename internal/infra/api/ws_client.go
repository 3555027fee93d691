package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// FeedURL derives the broadcast socket address from the REST base URL.
func FeedURL(baseURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", errors.Wrap(err, "parse api base url")
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	case "http", "":
		parsed.Scheme = "ws"
	}
	parsed.Path += "/ws/data"
	return parsed.String(), nil
}

type FeedDialer struct {
	url         string
	dialer      *websocket.Dialer
	readTimeout time.Duration
	logger      *zap.Logger
}

func NewFeedDialer(url string, readTimeout time.Duration, logger *zap.Logger) *FeedDialer {
	return &FeedDialer{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		readTimeout: readTimeout,
		logger:      logger,
	}
}

func (f *FeedDialer) Dial(ctx context.Context) (domain.FeedSocket, error) {
	f.logger.Info("ws connect start", zap.String("url", f.url))
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		f.logger.Error("ws connect failed", zap.String("url", f.url), zap.Error(err))
		return nil, errors.Wrap(err, "dial feed")
	}
	f.logger.Info("ws connect success", zap.String("url", f.url))
	return &FeedSocket{conn: conn, readTimeout: f.readTimeout, logger: f.logger}, nil
}

type FeedSocket struct {
	conn        *websocket.Conn
	readTimeout time.Duration
	logger      *zap.Logger
}

// Receive blocks for the next text frame. Binary frames are skipped.
func (s *FeedSocket) Receive(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if s.readTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}

		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind != websocket.TextMessage {
			s.logger.Debug("ws message ignored", zap.Int("type", kind))
			continue
		}
		return string(data), nil
	}
}

func (s *FeedSocket) Close() error {
	s.logger.Info("ws close")
	return s.conn.Close()
}

// IsClosed reports whether err is an orderly close of the socket.
func IsClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, websocket.ErrCloseSent)
}
