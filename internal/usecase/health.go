package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NasaVasa/eventdash/internal/domain"
	"go.uber.org/zap"
)

type ComponentState string

const (
	ComponentUnknown ComponentState = "UNKNOWN"
	ComponentUp      ComponentState = "UP"
	ComponentDown    ComponentState = "DOWN"
)

type SocketState string

const (
	SocketUnknown      SocketState = "Unknown"
	SocketConnected    SocketState = "Connected"
	SocketError        SocketState = "Error"
	SocketDisconnected SocketState = "Disconnected"
)

const MsgDemoFailed = "❌ Demo query failed: database is DOWN"

type HealthState struct {
	API               ComponentState
	APILatency        time.Duration
	Database          string
	DatabaseLatencyMs *float64
	Socket            SocketState
	Demo              string
	DemoFailed        bool
	Probing           bool
	CheckedAt         time.Time
}

// APIText renders the API cell, e.g. "UP (12ms)".
func (s HealthState) APIText() string {
	if s.API == ComponentUp {
		return fmt.Sprintf("UP (%dms)", s.APILatency.Milliseconds())
	}
	return string(s.API)
}

// StatusColor is the colour of a status label: red for failures, green
// otherwise.
func StatusColor(status string) string {
	switch {
	case strings.HasPrefix(status, string(ComponentDown)),
		status == string(SocketDisconnected),
		status == string(SocketError):
		return "red"
	default:
		return "green"
	}
}

// HealthPanel probes the API, its database and the feed socket. Probes are
// never retried; a failed probe holds until the next one.
type HealthPanel struct {
	api    domain.HealthProber
	dialer domain.FeedDialer
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	state  HealthState
	socket domain.FeedSocket
	cancel context.CancelFunc
	gen    uint64
}

func NewHealthPanel(api domain.HealthProber, dialer domain.FeedDialer, logger *zap.Logger) *HealthPanel {
	return &HealthPanel{
		api:    api,
		dialer: dialer,
		logger: logger,
		now:    time.Now,
		state: HealthState{
			API:      ComponentUnknown,
			Database: string(ComponentUnknown),
			Socket:   SocketUnknown,
		},
	}
}

// Probe measures the round trip to the health endpoint.
func (p *HealthPanel) Probe(ctx context.Context) error {
	p.mu.Lock()
	p.state.Probing = true
	p.mu.Unlock()

	start := p.now()
	health, err := p.api.Health(ctx)
	elapsed := p.now().Sub(start)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Probing = false
	p.state.CheckedAt = p.now()
	if err != nil {
		p.logger.Warn("health probe failed", zap.Duration("duration", elapsed), zap.Error(err))
		p.state.API = ComponentDown
		p.state.APILatency = 0
		p.state.Database = string(ComponentUnknown)
		p.state.DatabaseLatencyMs = nil
		return err
	}
	p.state.API = ComponentUp
	p.state.APILatency = elapsed
	p.state.Database = health.DatabaseStatus
	if p.state.Database == "" {
		p.state.Database = string(ComponentUnknown)
	}
	p.state.DatabaseLatencyMs = health.DatabaseLatencyMs
	return nil
}

// Connect opens the feed socket to report connectivity. An existing socket
// is closed first. The socket is watched until it drops or Close is called.
// When connects overlap, only the latest one keeps its socket.
func (p *HealthPanel) Connect(ctx context.Context) error {
	gen := p.release()

	socket, err := p.dialer.Dial(ctx)

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		if err == nil {
			p.closeSocket(socket)
		}
		return err
	}
	if err != nil {
		p.state.Socket = SocketError
		p.mu.Unlock()
		p.logger.Warn("feed socket probe failed", zap.Error(err))
		return err
	}
	watchCtx, cancel := context.WithCancel(context.Background())
	p.socket = socket
	p.cancel = cancel
	p.state.Socket = SocketConnected
	p.mu.Unlock()

	go p.watch(watchCtx, socket)
	return nil
}

// CheckSocket dials the feed once and closes it again, recording whether
// the handshake succeeded. It holds nothing open.
func (p *HealthPanel) CheckSocket(ctx context.Context) error {
	p.release()

	socket, err := p.dialer.Dial(ctx)
	if err != nil {
		p.logger.Warn("feed socket probe failed", zap.Error(err))
		p.mu.Lock()
		p.state.Socket = SocketError
		p.mu.Unlock()
		return err
	}
	p.closeSocket(socket)

	p.mu.Lock()
	p.state.Socket = SocketConnected
	p.mu.Unlock()
	return nil
}

func (p *HealthPanel) watch(ctx context.Context, socket domain.FeedSocket) {
	for {
		if _, err := socket.Receive(ctx); err != nil {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.socket != socket {
				return
			}
			if ctx.Err() == nil {
				p.logger.Info("feed socket dropped", zap.Error(err))
			}
			p.state.Socket = SocketDisconnected
			return
		}
	}
}

// Close releases the feed socket, if any. A connect still in flight is
// discarded when it completes.
func (p *HealthPanel) Close() {
	p.release()
}

// release bumps the connect generation and closes the held socket. It
// returns the new generation.
func (p *HealthPanel) release() uint64 {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	socket, cancel := p.socket, p.cancel
	p.socket, p.cancel = nil, nil
	if socket != nil {
		p.state.Socket = SocketDisconnected
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if socket != nil {
		p.closeSocket(socket)
	}
	return gen
}

func (p *HealthPanel) closeSocket(socket domain.FeedSocket) {
	if err := socket.Close(); err != nil {
		p.logger.Debug("feed socket close failed", zap.Error(err))
	}
}

// DemoQuery exercises the end-to-end read path.
func (p *HealthPanel) DemoQuery(ctx context.Context) error {
	start := p.now()
	demo, err := p.api.DemoQuery(ctx)
	elapsed := p.now().Sub(start)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.logger.Warn("demo query failed", zap.Duration("duration", elapsed), zap.Error(err))
		p.state.Demo = MsgDemoFailed
		p.state.DemoFailed = true
		return err
	}
	p.state.Demo = fmt.Sprintf("%s @ %s (%dms)", demo.Message, demo.Timestamp, elapsed.Milliseconds())
	p.state.DemoFailed = false
	return nil
}

func (p *HealthPanel) State() HealthState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}
