// Package pool provides a bounded connection pool with FIFO waiters,
// validate-on-borrow and idle eviction.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/satishbabariya/chorm/internal/debug"
)

// Resource is a pooled connection. Implementations are compared by identity,
// so pointer types are the natural fit.
type Resource interface {
	comparable
	Ping(ctx context.Context) error
	Close() error
}

// Factory opens a new connection.
type Factory[C Resource] func(ctx context.Context) (C, error)

var (
	// ErrAcquireTimeout is returned when no connection was released to a
	// waiter within Config.AcquireTimeout.
	ErrAcquireTimeout = errors.New("pool: timeout waiting for available connection")

	// ErrPoolClosing is delivered to waiters still queued when the pool closes.
	ErrPoolClosing = errors.New("pool: connection pool is closing")

	// ErrPoolClosed is returned by Get after Close.
	ErrPoolClosed = errors.New("pool: connection pool is closed")

	// ErrInvalidConfig is returned by New for impossible limits.
	ErrInvalidConfig = errors.New("pool: invalid configuration")
)

// ConnectionCreationError wraps a failure to open or ping a new connection.
type ConnectionCreationError struct {
	Err error
}

func (e *ConnectionCreationError) Error() string {
	return fmt.Sprintf("pool: failed to create connection: %v", e.Err)
}

func (e *ConnectionCreationError) Unwrap() error {
	return e.Err
}

// Config holds connection pool configuration.
type Config struct {
	// MinConnections is the floor idle eviction will not go below.
	MinConnections int
	// MaxConnections caps the number of borrowed connections.
	MaxConnections int
	// IdleTimeout is how long a released connection may sit unused.
	IdleTimeout time.Duration
	// AcquireTimeout bounds how long Get waits at capacity.
	AcquireTimeout time.Duration
	// ValidateOnBorrow pings reused connections before lending them.
	ValidateOnBorrow bool
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		MinConnections:   1,
		MaxConnections:   10,
		IdleTimeout:      60 * time.Second,
		AcquireTimeout:   30 * time.Second,
		ValidateOnBorrow: true,
	}
}

// cleanupInterval is min(30s, IdleTimeout).
func (c Config) cleanupInterval() time.Duration {
	if c.IdleTimeout < 30*time.Second {
		return c.IdleTimeout
	}
	return 30 * time.Second
}

func (c Config) validate() error {
	if c.MaxConnections < 1 {
		return fmt.Errorf("%w: max connections must be at least 1", ErrInvalidConfig)
	}
	if c.MinConnections < 0 || c.MinConnections > c.MaxConnections {
		return fmt.Errorf("%w: min connections must be between 0 and %d", ErrInvalidConfig, c.MaxConnections)
	}
	if c.AcquireTimeout <= 0 {
		return fmt.Errorf("%w: acquire timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Option configures a Pool.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for warm-up, eviction and close failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the clock used to stamp released connections.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type idleConn[C Resource] struct {
	conn     C
	lastUsed time.Time
}

type result[C Resource] struct {
	conn C
	err  error
}

// waiter is a queued Get. ch is buffered so release and close never block
// while holding the pool lock.
type waiter[C Resource] struct {
	ch chan result[C]
}

// Pool lends out connections created by a Factory.
type Pool[C Resource] struct {
	factory Factory[C]
	config  Config
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	available []idleConn[C]
	borrowed  map[C]struct{}
	waiters   []*waiter[C]
	pending   int
	closed    bool

	// Lifecycle
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Stats is a snapshot of pool occupancy.
type Stats struct {
	Available int
	Borrowed  int
	Waiting   int
	Pending   int
}

// New creates a pool, opens MinConnections concurrently and starts the idle
// eviction loop. Warm-up failures are logged and leave the pool usable.
func New[C Resource](ctx context.Context, factory Factory[C], config Config, opts ...Option) (*Pool[C], error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = debug.With("component", "pool")
	}

	p := &Pool[C]{
		factory:  factory,
		config:   config,
		logger:   o.logger,
		now:      o.now,
		borrowed: make(map[C]struct{}),
	}

	if err := p.warmUp(ctx); err != nil {
		p.logger.Error("failed to initialize connection pool", "error", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	if interval := config.cleanupInterval(); interval > 0 {
		p.wg.Add(1)
		go p.evictLoop(loopCtx, interval)
	}

	return p, nil
}

func (p *Pool[C]) warmUp(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i := 0; i < p.config.MinConnections; i++ {
		g.Go(func() error {
			conn, err := p.open(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			p.available = append(p.available, idleConn[C]{conn: conn, lastUsed: p.now()})
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// open creates and pings a connection outside the lock.
func (p *Pool[C]) open(ctx context.Context) (C, error) {
	conn, err := p.factory(ctx)
	if err != nil {
		var zero C
		return zero, err
	}
	if err := conn.Ping(ctx); err != nil {
		if cerr := conn.Close(); cerr != nil {
			p.logger.Warn("failed to close unreachable connection", "error", cerr)
		}
		var zero C
		return zero, err
	}
	return conn, nil
}

// Get borrows a connection. Reused connections are validated when
// ValidateOnBorrow is set and transparently replaced if the ping fails. At
// capacity the call queues FIFO until a Release hands it a connection, the
// acquire timeout elapses or ctx is done.
func (p *Pool[C]) Get(ctx context.Context) (C, error) {
	var zero C

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, ErrPoolClosed
	}

	if len(p.available) > 0 {
		entry := p.available[0]
		p.available = p.available[1:]
		p.borrowed[entry.conn] = struct{}{}
		p.mu.Unlock()

		if !p.config.ValidateOnBorrow {
			return entry.conn, nil
		}
		if err := entry.conn.Ping(ctx); err != nil {
			p.logger.Warn("pooled connection failed validation, replacing", "error", err)
			p.replace(entry.conn)
			return p.create(ctx)
		}
		return entry.conn, nil
	}

	if len(p.borrowed)+p.pending < p.config.MaxConnections {
		p.pending++
		p.mu.Unlock()
		return p.create(ctx)
	}

	w := &waiter[C]{ch: make(chan result[C], 1)}
	p.waiters = append(p.waiters, w)
	p.mu.Unlock()

	return p.wait(ctx, w)
}

// replace drops a broken borrowed connection and reserves its slot for the
// connection create is about to open.
func (p *Pool[C]) replace(conn C) {
	p.mu.Lock()
	delete(p.borrowed, conn)
	p.pending++
	p.mu.Unlock()

	if err := conn.Close(); err != nil {
		p.logger.Warn("failed to close invalid connection", "error", err)
	}
}

// create fills a slot reserved by incrementing pending.
func (p *Pool[C]) create(ctx context.Context) (C, error) {
	var zero C
	conn, err := p.open(ctx)

	p.mu.Lock()
	p.pending--
	if err != nil {
		p.handOffLocked()
		p.mu.Unlock()
		return zero, &ConnectionCreationError{Err: err}
	}
	if p.closed {
		p.mu.Unlock()
		if cerr := conn.Close(); cerr != nil {
			p.logger.Warn("failed to close connection opened during shutdown", "error", cerr)
		}
		return zero, ErrPoolClosed
	}
	p.borrowed[conn] = struct{}{}
	p.mu.Unlock()

	return conn, nil
}

// handOffLocked gives a slot freed by a failed open to the oldest waiter,
// which then gets its own attempt. p.mu must be held.
func (p *Pool[C]) handOffLocked() {
	if p.closed || len(p.waiters) == 0 {
		return
	}
	w := p.waiters[0]
	p.waiters = p.waiters[1:]
	p.pending++
	go p.openFor(w)
}

// openFor fills a slot reserved by handOffLocked and delivers the outcome to w.
func (p *Pool[C]) openFor(w *waiter[C]) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.AcquireTimeout)
	defer cancel()
	conn, err := p.create(ctx)
	w.ch <- result[C]{conn: conn, err: err}
}

func (p *Pool[C]) wait(ctx context.Context, w *waiter[C]) (C, error) {
	timer := time.NewTimer(p.config.AcquireTimeout)
	defer timer.Stop()

	var err error
	select {
	case res := <-w.ch:
		return res.conn, res.err
	case <-timer.C:
		err = ErrAcquireTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	p.mu.Lock()
	removed := p.removeWaiter(w)
	p.mu.Unlock()
	if removed {
		var zero C
		return zero, err
	}

	// Release, Close or a failed open dequeued this waiter first; its
	// result is buffered or about to be.
	res := <-w.ch
	return res.conn, res.err
}

func (p *Pool[C]) removeWaiter(w *waiter[C]) bool {
	for i, queued := range p.waiters {
		if queued == w {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Release returns a borrowed connection. Connections the pool did not lend
// are ignored, which makes double release harmless. If a Get is waiting the
// connection is handed to the oldest waiter directly and stays borrowed.
func (p *Pool[C]) Release(conn C) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.borrowed[conn]; !ok {
		return
	}

	if len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		w.ch <- result[C]{conn: conn}
		return
	}

	delete(p.borrowed, conn)
	p.available = append(p.available, idleConn[C]{conn: conn, lastUsed: p.now()})
}

// WithConnection borrows a connection for the duration of fn.
func (p *Pool[C]) WithConnection(ctx context.Context, fn func(C) error) error {
	conn, err := p.Get(ctx)
	if err != nil {
		return err
	}
	defer p.Release(conn)
	return fn(conn)
}

// EvictIdle closes available connections idle for longer than IdleTimeout.
// Enough of the oldest connections to keep MinConnections alive (counting
// borrowed ones) are retained regardless of age. It returns the number of
// connections evicted.
func (p *Pool[C]) EvictIdle() int {
	p.mu.Lock()
	now := p.now()

	retain := p.config.MinConnections - len(p.borrowed)
	if retain < 0 {
		retain = 0
	}
	if retain > len(p.available) {
		retain = len(p.available)
	}

	sort.SliceStable(p.available, func(i, j int) bool {
		return p.available[i].lastUsed.Before(p.available[j].lastUsed)
	})

	keep := make([]idleConn[C], 0, len(p.available))
	keep = append(keep, p.available[:retain]...)
	var evicted []C
	for _, entry := range p.available[retain:] {
		if now.Sub(entry.lastUsed) > p.config.IdleTimeout {
			evicted = append(evicted, entry.conn)
			continue
		}
		keep = append(keep, entry)
	}
	p.available = keep
	p.mu.Unlock()

	for _, conn := range evicted {
		if err := conn.Close(); err != nil {
			p.logger.Warn("error closing idle connection", "error", err)
		}
	}
	if len(evicted) > 0 {
		p.logger.Debug("evicted idle connections", "count", len(evicted))
	}
	return len(evicted)
}

func (p *Pool[C]) evictLoop(ctx context.Context, interval time.Duration) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.EvictIdle()
		}
	}
}

// Stats returns current pool statistics.
func (p *Pool[C]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Available: len(p.available),
		Borrowed:  len(p.borrowed),
		Waiting:   len(p.waiters),
		Pending:   p.pending,
	}
}

// Close stops eviction, fails queued waiters with ErrPoolClosing and closes
// every connection. Individual close failures are logged, not returned.
func (p *Pool[C]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	waiters := p.waiters
	conns := make([]C, 0, len(p.available)+len(p.borrowed))
	for _, entry := range p.available {
		conns = append(conns, entry.conn)
	}
	for conn := range p.borrowed {
		conns = append(conns, conn)
	}
	p.waiters = nil
	p.available = nil
	p.borrowed = make(map[C]struct{})
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	for _, w := range waiters {
		w.ch <- result[C]{err: ErrPoolClosing}
	}
	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			p.logger.Error("error closing connection", "error", err)
		}
	}
	return nil
}
