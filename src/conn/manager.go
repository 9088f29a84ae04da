// Package conn maintains one logical WebSocket connection per session and
// role: authenticated handshake, heartbeat replies, reconnection with
// exponential backoff, and outbound queuing while disconnected.
package conn

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ryan-RCNR/quiz-party/config"
	"github.com/Ryan-RCNR/quiz-party/src/types"
)

var (
	ErrNoSessionCode = errors.New("session code required")
	ErrInvalidRole   = errors.New("role must be host or player")
)

// Options configures a Manager. OnMessage receives every well-formed
// application frame; heartbeats are answered internally and never reach it.
// All callbacks are optional and must not block.
type Options struct {
	SessionCode string
	Role        types.Role
	Credentials types.Credentials

	// Endpoint overrides the WebSocket base URL. When empty the
	// configured WS base is used, itself derived from the API base
	// when not set explicitly.
	Endpoint string

	Config *config.Client
	Dialer Dialer
	Logger zerolog.Logger

	OnMessage   func(types.Envelope)
	OnState     func(types.ConnState)
	OnError     func(error)
	OnExhausted func()
}

// Manager owns one transport at a time and drives the connection state
// machine. All transport failures surface through state and callbacks;
// no method panics or returns transport errors to the caller.
type Manager struct {
	opts   Options
	cfg    *config.Client
	dialer Dialer
	logger zerolog.Logger
	url    string

	mu        sync.Mutex
	conn      types.Conn
	state     types.ConnState
	attempts  int
	queue     []any
	timer     *time.Timer
	gen       uint64
	closed    bool
	exhausted bool
}

// Open validates the options and starts connecting in the background.
// Changing session code, role, or credentials means closing this Manager
// and opening a new one; the outbound queue does not carry over across a
// deliberate parameter change, only across automatic reconnects.
func Open(opts Options) (*Manager, error) {
	if opts.SessionCode == "" {
		return nil, ErrNoSessionCode
	}
	if !opts.Role.Valid() {
		return nil, ErrInvalidRole
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = WebsocketDialer{}
	}

	m := &Manager{
		opts:   opts,
		cfg:    cfg,
		dialer: dialer,
		logger: opts.Logger.With().
			Str("component", "conn").
			Str("conn_id", uuid.NewString()[:8]).
			Str("session", opts.SessionCode).
			Str("role", string(opts.Role)).
			Logger(),
		url:   resolveEndpoint(opts, cfg),
		state: types.StateDisconnected,
	}
	go m.dial(0)
	return m, nil
}

// resolveEndpoint picks the transport URL: explicit override, then the
// configured base. Path is /ws/{namespace}/{sessionCode}.
func resolveEndpoint(opts Options, cfg *config.Client) string {
	base := opts.Endpoint
	if base == "" {
		base = cfg.WSBase()
	}
	return fmt.Sprintf("%s/ws/%s/%s", strings.TrimSuffix(base, "/"), cfg.Namespace, opts.SessionCode)
}

// Backoff returns the reconnect delay for the given attempt number:
// min(initial * 2^attempt, max).
func Backoff(attempt int, initial, max time.Duration) time.Duration {
	d := initial << uint(attempt)
	if d <= 0 || d > max {
		return max
	}
	return d
}

// State returns the current connection state.
func (m *Manager) State() types.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Send writes msg immediately when the transport is open, otherwise
// appends it to the outbound queue for delivery after the next successful
// handshake. Best effort: queued messages are lost if the Manager is
// closed before a flush.
func (m *Manager) Send(msg any) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	c := m.conn
	if c == nil {
		m.queue = append(m.queue, msg)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := c.WriteJSON(msg); err != nil {
		// The read loop observes the dead transport and reconnects.
		m.logger.Debug().Err(err).Msg("write failed")
	}
}

// Close tears the connection down: the pending reconnect timer is
// cancelled, the transport is closed, and no callback fires afterwards.
// The transport reference is nulled before close so late events from the
// old transport are never observed.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	c := m.conn
	m.conn = nil
	m.state = types.StateDisconnected
	m.queue = nil
	m.mu.Unlock()

	if c != nil {
		c.Close()
	}
	m.logger.Debug().Msg("connection closed")
}

// dial runs one connection attempt for the given generation. A stale
// generation means the Manager was closed in the meantime.
func (m *Manager) dial(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	st := types.StateConnecting
	if m.attempts > 0 {
		st = types.StateReconnecting
	}
	m.state = st
	onState := m.opts.OnState
	attempt := m.attempts
	m.mu.Unlock()

	if onState != nil {
		onState(st)
	}
	m.logger.Debug().Int("attempt", attempt).Msg("dialing")

	c, err := m.dialer.Dial(m.url)

	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		if err == nil {
			c.Close()
		}
		return
	}
	if err != nil {
		m.mu.Unlock()
		m.notifyError(gen, err)
		m.handleDisconnect(gen)
		return
	}
	m.state = types.StateConnected
	m.attempts = 0
	pending := m.queue
	m.queue = nil
	onState = m.opts.OnState
	m.mu.Unlock()

	if onState != nil {
		onState(types.StateConnected)
	}
	m.logger.Info().Msg("connected")

	// Handshake first, then the queue in FIFO order. The transport is
	// not published to Send until the flush completes, so anything
	// enqueued meanwhile waits for the next successful open. A failed
	// handshake means the transport died under us: put the queue back
	// and let the reconnect path try again.
	if err := c.WriteJSON(types.NewInitMessage(m.opts.Role, m.opts.Credentials)); err != nil {
		m.logger.Debug().Err(err).Msg("handshake write failed")
		m.mu.Lock()
		if !m.closed && gen == m.gen {
			m.queue = append(pending, m.queue...)
		}
		m.mu.Unlock()
		c.Close()
		m.notifyError(gen, err)
		m.handleDisconnect(gen)
		return
	}
	for _, msg := range pending {
		if err := c.WriteJSON(msg); err != nil {
			m.logger.Debug().Err(err).Msg("queue flush write failed")
		}
	}

	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		c.Close()
		return
	}
	m.conn = c
	m.mu.Unlock()

	go m.readLoop(c, gen)
}

// readLoop pumps inbound frames until the transport fails or the Manager
// is torn down. Malformed frames are dropped; heartbeats are answered on
// the same transport and never forwarded.
func (m *Manager) readLoop(c types.Conn, gen uint64) {
	defer c.Close()

	for {
		data, err := c.ReadMessage()
		if err != nil {
			m.notifyError(gen, err)
			m.handleDisconnect(gen)
			return
		}

		env, ok := types.ParseEnvelope(data)
		if !ok {
			m.logger.Debug().Msg("dropping malformed frame")
			continue
		}
		if env.Type == types.TagPing {
			if err := c.WriteJSON(types.NewPongMessage()); err != nil {
				m.logger.Debug().Err(err).Msg("pong write failed")
			}
			continue
		}

		m.mu.Lock()
		stale := m.closed || gen != m.gen
		onMessage := m.opts.OnMessage
		m.mu.Unlock()
		if stale {
			return
		}
		if onMessage != nil {
			onMessage(env)
		}
	}
}

// handleDisconnect schedules a reconnect with exponential backoff, or
// gives up after the configured attempt limit and fires the exhaustion
// callback exactly once.
func (m *Manager) handleDisconnect(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.conn = nil

	if m.attempts >= m.cfg.MaxReconnectAttempts {
		m.state = types.StateDisconnected
		fire := !m.exhausted
		m.exhausted = true
		onState := m.opts.OnState
		onExhausted := m.opts.OnExhausted
		m.mu.Unlock()

		if onState != nil {
			onState(types.StateDisconnected)
		}
		if fire {
			m.logger.Warn().Msg("reconnect attempts exhausted")
			if onExhausted != nil {
				onExhausted()
			}
		}
		return
	}

	delay := Backoff(m.attempts, m.cfg.ReconnectInitialDelay, m.cfg.ReconnectMaxDelay)
	m.attempts++
	m.state = types.StateReconnecting
	m.timer = time.AfterFunc(delay, func() { m.dial(gen) })
	onState := m.opts.OnState
	attempt := m.attempts
	m.mu.Unlock()

	m.logger.Debug().
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("reconnect scheduled")
	if onState != nil {
		onState(types.StateReconnecting)
	}
}

// notifyError forwards a transport error unless the Manager was torn down.
// Error and close are sequential outcomes: reporting an error never itself
// triggers reconnection.
func (m *Manager) notifyError(gen uint64, err error) {
	m.mu.Lock()
	stale := m.closed || gen != m.gen
	onError := m.opts.OnError
	m.mu.Unlock()
	if stale || onError == nil {
		return
	}
	onError(err)
}
