// Package dispatch serialises commands onto a single go-redis connection.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/edwingeng/deque/v2"
	"github.com/redis/go-redis/v9"
)

var (
	ErrConnectionOverloaded = errors.New("connection overloaded")
	ErrConnectionReset      = errors.New("connection reset")
	ErrRequestTimeout       = errors.New("request timeout")
	ErrShutdown             = errors.New("dispatcher is shut down")
)

// Conn is the connection a Dispatcher owns.
type Conn interface {
	Process(ctx context.Context, cmd redis.Cmder) error
	Close() error
}

type Config struct {
	// MaxOutstandingRequests caps queued commands; 0 means unbounded.
	MaxOutstandingRequests int
	// Timeout bounds the time from Dispatch to reply; 0 means none.
	Timeout time.Duration
}

type request struct {
	ctx      context.Context
	cmd      redis.Cmder
	deadline time.Time
	done     chan error
}

// Dispatcher runs commands on its connection one at a time, in the order
// they were dispatched.
type Dispatcher struct {
	Config
	conn   Conn
	logger *slog.Logger

	mu     sync.Mutex
	deque  *deque.Deque[request]
	closed bool

	wake chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
}

func New(conn Conn, cfg Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		Config: cfg,
		conn:   conn,
		logger: logger,
		deque:  deque.NewDeque[request](),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Dispatch queues cmd. The returned channel receives exactly one value and
// is buffered, so it may be dropped without leaking the worker.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd redis.Cmder) <-chan error {
	rc := make(chan error, 1)
	rq := request{ctx: ctx, cmd: cmd, done: rc}
	if d.Timeout > 0 {
		rq.deadline = time.Now().Add(d.Timeout)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		rc <- fail(cmd, ErrShutdown)
		return rc
	}
	if d.MaxOutstandingRequests > 0 && d.deque.Len() >= d.MaxOutstandingRequests {
		d.mu.Unlock()
		rc <- fail(cmd, ErrConnectionOverloaded)
		return rc
	}
	d.deque.PushFront(rq)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return rc
}

// Process dispatches cmd and waits for it. If ctx is done first the command
// is abandoned: it is skipped when it reaches the head of the queue.
func (d *Dispatcher) Process(ctx context.Context, cmd redis.Cmder) error {
	select {
	case err := <-d.Dispatch(ctx, cmd):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outstanding is the number of queued commands not yet picked up.
func (d *Dispatcher) Outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deque.Len()
}

// Shutdown fails every queued command with ErrConnectionReset, waits for the
// command in flight and closes the connection.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for d.deque.Len() > 0 {
		r := d.deque.PopBack()
		r.done <- fail(r.cmd, ErrConnectionReset)
	}
	d.mu.Unlock()

	close(d.stop)
	d.wg.Wait()
	if err := d.conn.Close(); err != nil {
		d.logger.Warn("closing connection", "error", err)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stop:
			return
		case <-d.wake:
		}
		for {
			r, ok := d.next()
			if !ok {
				break
			}
			r.done <- d.execute(r)
		}
	}
}

func (d *Dispatcher) next() (request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deque.Len() == 0 {
		return request{}, false
	}
	return d.deque.PopBack(), true
}

func (d *Dispatcher) execute(r request) error {
	if err := r.ctx.Err(); err != nil {
		d.logger.Debug("skipping abandoned command", "command", r.cmd.Name())
		return err
	}

	ctx := r.ctx
	if !r.deadline.IsZero() {
		if !time.Now().Before(r.deadline) {
			return fail(r.cmd, ErrRequestTimeout)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, r.deadline)
		defer cancel()
	}

	err := d.conn.Process(ctx, r.cmd)
	if err != nil && r.ctx.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fail(r.cmd, fmt.Errorf("%w: %w", ErrRequestTimeout, err))
	}
	return err
}

func fail(cmd redis.Cmder, err error) error {
	cmd.SetErr(err)
	return err
}
