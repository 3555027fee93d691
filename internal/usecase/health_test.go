package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHealthPanelProbe(t *testing.T) {
	latency := 4.2
	api := &fakeAPI{health: &domain.Health{APIStatus: "ok", DatabaseStatus: "UP", DatabaseLatencyMs: &latency}}
	panel := NewHealthPanel(api, &fakeDialer{}, zaptest.NewLogger(t))
	panel.now = stepClock(12 * time.Millisecond)

	state := panel.State()
	assert.Equal(t, ComponentUnknown, state.API)
	assert.Equal(t, SocketUnknown, state.Socket)

	require.NoError(t, panel.Probe(context.Background()))
	state = panel.State()
	assert.Equal(t, "UP (12ms)", state.APIText())
	assert.Equal(t, "UP", state.Database)
	assert.Equal(t, &latency, state.DatabaseLatencyMs)

	api.healthErr = errors.New("refused")
	require.Error(t, panel.Probe(context.Background()))
	state = panel.State()
	assert.Equal(t, "DOWN", state.APIText())
	assert.Equal(t, "UNKNOWN", state.Database)
	assert.Nil(t, state.DatabaseLatencyMs)
}

func TestHealthPanelDemoQuery(t *testing.T) {
	api := &fakeAPI{demo: &domain.DemoQuery{Message: "Demo query successful", Timestamp: "12:00:00"}}
	panel := NewHealthPanel(api, &fakeDialer{}, zaptest.NewLogger(t))
	panel.now = stepClock(5 * time.Millisecond)

	require.NoError(t, panel.DemoQuery(context.Background()))
	state := panel.State()
	assert.Equal(t, "Demo query successful @ 12:00:00 (5ms)", state.Demo)
	assert.False(t, state.DemoFailed)

	api.demoErr = &domain.APIError{Status: 500, Detail: "Cassandra is down"}
	require.Error(t, panel.DemoQuery(context.Background()))
	state = panel.State()
	assert.Equal(t, MsgDemoFailed, state.Demo)
	assert.True(t, state.DemoFailed)
}

func TestHealthPanelSocketStates(t *testing.T) {
	socket := newFakeSocket()
	panel := NewHealthPanel(&fakeAPI{}, &fakeDialer{socket: socket}, zaptest.NewLogger(t))

	require.NoError(t, panel.Connect(context.Background()))
	assert.Equal(t, SocketConnected, panel.State().Socket)

	require.NoError(t, socket.Close())
	assert.Eventually(t, func() bool {
		return panel.State().Socket == SocketDisconnected
	}, time.Second, 5*time.Millisecond)

	failing := NewHealthPanel(&fakeAPI{}, &fakeDialer{err: errors.New("handshake failed")}, zaptest.NewLogger(t))
	require.Error(t, failing.Connect(context.Background()))
	assert.Equal(t, SocketError, failing.State().Socket)
}

func TestHealthPanelCloseReleasesSocket(t *testing.T) {
	socket := newFakeSocket()
	panel := NewHealthPanel(&fakeAPI{}, &fakeDialer{socket: socket}, zaptest.NewLogger(t))
	require.NoError(t, panel.Connect(context.Background()))

	panel.Close()

	assert.Equal(t, SocketDisconnected, panel.State().Socket)
	select {
	case <-socket.closed:
	default:
		t.Fatal("socket left open")
	}
}

func TestStatusColor(t *testing.T) {
	tests := map[string]string{
		"DOWN":         "red",
		"Disconnected": "red",
		"Error":        "red",
		"UP (3ms)":     "green",
		"Connected":    "green",
		"UNKNOWN":      "green",
	}
	for status, want := range tests {
		assert.Equal(t, want, StatusColor(status), status)
	}
}

func TestHealthPanelConcurrentConnectKeepsOneSocket(t *testing.T) {
	dialer := &countingDialer{}
	panel := NewHealthPanel(&fakeAPI{}, dialer, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, panel.Connect(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, dialer.dials())
	assert.Equal(t, 1, dialer.open())
	assert.Equal(t, SocketConnected, panel.State().Socket)

	panel.Close()
	assert.Zero(t, dialer.open())
	assert.Equal(t, SocketDisconnected, panel.State().Socket)
}

func TestHealthPanelCheckSocketHoldsNothingOpen(t *testing.T) {
	dialer := &countingDialer{}
	panel := NewHealthPanel(&fakeAPI{}, dialer, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, panel.CheckSocket(context.Background()))
	}

	assert.Equal(t, 3, dialer.dials())
	assert.Zero(t, dialer.open())
	assert.Equal(t, SocketConnected, panel.State().Socket)

	failing := NewHealthPanel(&fakeAPI{}, &fakeDialer{err: errors.New("handshake failed")}, zaptest.NewLogger(t))
	require.Error(t, failing.CheckSocket(context.Background()))
	assert.Equal(t, SocketError, failing.State().Socket)
}
