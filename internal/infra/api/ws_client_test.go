package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFeedURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8000":       "ws://localhost:8000/ws/data",
		"https://api.example.com/":    "wss://api.example.com/ws/data",
		"https://api.example.com/v1/": "wss://api.example.com/v1/ws/data",
	}
	for base, want := range tests {
		t.Run(base, func(t *testing.T) {
			got, err := FeedURL(base)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFeedDialerReceivesTextFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2})
		_ = conn.WriteMessage(websocket.TextMessage, []byte("New row added for user_id: u1"))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer server.Close()

	feedURL, err := FeedURL(server.URL)
	require.NoError(t, err)
	socket, err := NewFeedDialer(feedURL, 0, zaptest.NewLogger(t)).Dial(context.Background())
	require.NoError(t, err)
	defer socket.Close()

	message, err := socket.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New row added for user_id: u1", message)

	_, err = socket.Receive(context.Background())
	require.Error(t, err)
	assert.True(t, IsClosed(err))
}
