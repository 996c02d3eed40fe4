package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bloom-monitor/config"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

// ConnState is the connection state owned by a Connector.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// ErrConnectorStopped is returned by Connect after Stop.
var ErrConnectorStopped = errors.New("connector stopped")

// ConnectorConfig tunes the bounded connect and the reconnect loop.
type ConnectorConfig struct {
	MaxRetries  int
	RetryBase   time.Duration
	RetryFactor float64
	MaxDelay    time.Duration
	JitterPct   float64

	AutoReconnect        bool
	ReconnectMaxAttempts int // 0 means unlimited
	ReconnectBase        time.Duration
	ReconnectFactor      float64
	ReconnectMaxDelay    time.Duration
	HealthInterval       time.Duration
}

// ConnectorConfigFrom maps the application config onto a ConnectorConfig.
func ConnectorConfigFrom(cfg *config.Config) ConnectorConfig {
	return ConnectorConfig{
		MaxRetries:           cfg.DBMaxRetries,
		RetryBase:            cfg.DBRetryBase,
		RetryFactor:          cfg.DBRetryFactor,
		MaxDelay:             cfg.DBMaxDelay,
		JitterPct:            cfg.DBRetryJitterPct,
		AutoReconnect:        cfg.DBAutoReconnect,
		ReconnectMaxAttempts: cfg.DBReconnectMaxAttempts,
		ReconnectBase:        cfg.DBReconnectBase,
		ReconnectFactor:      cfg.DBReconnectFactor,
		ReconnectMaxDelay:    cfg.DBReconnectMaxDelay,
		HealthInterval:       cfg.DBHealthInterval,
	}
}

// OpenFunc opens and verifies a connection.
type OpenFunc func(ctx context.Context) (*gorm.DB, error)

// PingFunc checks an established connection.
type PingFunc func(ctx context.Context, db *gorm.DB) error

// ConnectorStatus is a snapshot of the connector for health reporting.
type ConnectorStatus struct {
	State             ConnState `json:"state"`
	ConnectAttempts   int       `json:"connectAttempts"`
	ReconnectAttempts int       `json:"reconnectAttempts"`
	Reconnecting      bool      `json:"reconnecting"`
	LastError         string    `json:"lastError,omitempty"`
}

// Connector establishes the database connection with bounded retries and
// keeps it alive afterwards with a health probe and a reconnect loop.
type Connector struct {
	cfg    ConnectorConfig
	open   OpenFunc
	ping   PingFunc
	logger *slog.Logger

	connectMu sync.Mutex

	mu                sync.Mutex
	state             ConnState
	db                *gorm.DB
	attempts          int
	reconnectAttempts int
	reconnecting      bool
	lastErr           error
	stopped           bool

	failed chan error
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConnector(cfg ConnectorConfig, open OpenFunc, logger *slog.Logger) *Connector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connector{
		cfg:    cfg,
		open:   open,
		ping:   pingDB,
		logger: logger.With("component", "db_connector"),
		state:  StateDisconnected,
		failed: make(chan error, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetPing replaces the health check. Must be called before Start.
func (c *Connector) SetPing(ping PingFunc) {
	c.ping = ping
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Connect opens the connection, retrying transient failures with capped
// exponential backoff for at most 1+MaxRetries attempts. Non-transient
// failures abort at once. An established connection is returned as is.
func (c *Connector) Connect(ctx context.Context) (*gorm.DB, error) {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil, ErrConnectorStopped
	}
	if c.state == StateConnected && c.db != nil {
		db := c.db
		c.mu.Unlock()
		return db, nil
	}
	c.attempts = 0
	c.mu.Unlock()

	var db *gorm.DB
	start := time.Now()
	op := func() error {
		attempt := c.beginAttempt()
		opened, err := c.open(ctx)
		if err != nil {
			c.fail(err)
			if !IsTransient(err) {
				c.logger.Error("Database connect failed with a non-transient error", "attempt", attempt, slog.Any("error", err))
				return backoff.Permanent(err)
			}
			return err
		}
		db = opened
		return nil
	}
	notify := func(err error, next time.Duration) {
		c.logger.Warn("Database connect attempt failed, retrying",
			"attempt", c.Attempts(), "max_retries", c.cfg.MaxRetries, "retry_in", next.String(), slog.Any("error", err))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(c.cfg.RetryBase, c.cfg.RetryFactor, c.cfg.MaxDelay, c.cfg.JitterPct), uint64(max(c.cfg.MaxRetries, 0))),
		ctx,
	)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		attempts := c.Attempts()
		c.logger.Error("Database connection failed. No more retries.", "attempts", attempts, slog.Any("error", err))
		return nil, fmt.Errorf("database connect failed after %d attempt(s): %w", attempts, err)
	}

	c.mu.Lock()
	c.db = db
	c.state = StateConnected
	c.lastErr = nil
	attempts := c.attempts
	c.mu.Unlock()

	c.logger.Info("Database connected", "attempt", attempts, "elapsed", time.Since(start).String())
	return db, nil
}

func (c *Connector) beginAttempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	c.state = StateConnecting
	return c.attempts
}

func (c *Connector) fail(err error) {
	c.mu.Lock()
	c.state = StateDisconnected
	c.lastErr = err
	c.mu.Unlock()
}

// Start launches the health probe. Without auto-reconnect it does nothing.
func (c *Connector) Start(ctx context.Context) {
	if !c.cfg.AutoReconnect {
		c.logger.Info("Database auto-reconnect disabled")
		return
	}
	if c.cfg.HealthInterval <= 0 {
		c.logger.Warn("Database health probe disabled: non-positive interval")
		return
	}

	c.wg.Add(1)
	go c.probe(ctx)
}

func (c *Connector) probe(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			db, state, busy := c.db, c.state, c.reconnecting
			c.mu.Unlock()
			if db == nil || busy || state != StateConnected {
				continue
			}

			pingCtx, cancel := context.WithTimeout(ctx, c.cfg.HealthInterval)
			err := c.ping(pingCtx, db)
			cancel()
			if err != nil {
				c.HandleDisconnect(err)
			}
		}
	}
}

// HandleDisconnect marks the connection lost and schedules the reconnect
// loop. It returns false when a loop is already running, the connector is
// stopped or auto-reconnect is disabled.
func (c *Connector) HandleDisconnect(cause error) bool {
	c.mu.Lock()
	if c.stopped || c.reconnecting {
		c.mu.Unlock()
		return false
	}
	c.state = StateDisconnected
	c.lastErr = cause
	if !c.cfg.AutoReconnect || c.db == nil {
		c.mu.Unlock()
		c.logger.Warn("Database disconnected", slog.Any("error", cause))
		return false
	}
	c.reconnecting = true
	c.reconnectAttempts = 0
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Warn("Database disconnected, scheduling reconnect", slog.Any("error", cause))
	go c.reconnectLoop()
	return true
}

func (c *Connector) reconnectLoop() {
	defer c.wg.Done()

	b := newBackOff(c.cfg.ReconnectBase, c.cfg.ReconnectFactor, c.cfg.ReconnectMaxDelay, c.cfg.JitterPct)
	limit := c.cfg.ReconnectMaxAttempts

	for {
		delay := b.NextBackOff()
		timer := time.NewTimer(delay)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			c.endReconnect()
			return
		case <-timer.C:
		}

		c.mu.Lock()
		c.reconnectAttempts++
		attempt := c.reconnectAttempts
		c.state = StateConnecting
		db := c.db
		c.mu.Unlock()

		pingCtx, cancel := context.WithTimeout(c.ctx, c.attemptTimeout())
		err := c.ping(pingCtx, db)
		cancel()

		if err == nil {
			c.mu.Lock()
			c.state = StateConnected
			c.reconnecting = false
			c.reconnectAttempts = 0
			c.lastErr = nil
			c.mu.Unlock()
			c.logger.Info("Database reconnected", "attempt", attempt)
			return
		}

		c.mu.Lock()
		c.state = StateDisconnected
		c.lastErr = err
		c.mu.Unlock()

		if limit > 0 && attempt >= limit {
			c.endReconnect()
			terminal := fmt.Errorf("database reconnect gave up after %d attempt(s): %w", attempt, err)
			c.logger.Error("Database reconnect failed. No more retries.", "attempts", attempt, slog.Any("error", err))
			select {
			case c.failed <- terminal:
			default:
			}
			return
		}
		c.logger.Warn("Database reconnect attempt failed", "attempt", attempt, "max_attempts", limit, slog.Any("error", err))
	}
}

func (c *Connector) endReconnect() {
	c.mu.Lock()
	c.reconnecting = false
	c.mu.Unlock()
}

func (c *Connector) attemptTimeout() time.Duration {
	if c.cfg.HealthInterval > 0 {
		return c.cfg.HealthInterval
	}
	return 5 * time.Second
}

// ReconnectFailed delivers the terminal error when a finite reconnect budget
// is exhausted.
func (c *Connector) ReconnectFailed() <-chan error {
	return c.failed
}

// Stop ends the health probe and any running reconnect loop.
func (c *Connector) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.logger.Info("Database connector stopped")
}

// State returns the current connection state.
func (c *Connector) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns the number of attempts made by the last Connect.
func (c *Connector) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Status returns a snapshot for health reporting.
func (c *Connector) Status() ConnectorStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := ConnectorStatus{
		State:             c.state,
		ConnectAttempts:   c.attempts,
		ReconnectAttempts: c.reconnectAttempts,
		Reconnecting:      c.reconnecting,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// newBackOff builds base*factor^(n-1) delays capped at maxDelay with ±jitterPct
// randomization and no elapsed-time limit.
func newBackOff(base time.Duration, factor float64, maxDelay time.Duration, jitterPct float64) *backoff.ExponentialBackOff {
	if factor < 1 {
		factor = 1
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     base,
		RandomizationFactor: min(max(jitterPct, 0), 100) / 100,
		Multiplier:          factor,
		MaxInterval:         maxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}
