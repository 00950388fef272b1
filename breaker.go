package redisgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures WithCircuitBreaker.
type BreakerSettings struct {
	Name string
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts are cleared; 0 never clears.
	Interval time.Duration
	// Timeout spent open before probing again.
	Timeout time.Duration
	// FailureThreshold consecutive transport faults open the breaker.
	FailureThreshold uint32
}

const defaultFailureThreshold = 5

type breakerConn struct {
	conn    ConnectionLike
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// WithCircuitBreaker fails fast once conn keeps producing transport faults.
// Protocol faults, such as a rejected query, count as successes.
func WithCircuitBreaker(conn ConnectionLike, s BreakerSettings, logger *slog.Logger) ConnectionLike {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := s.FailureThreshold
	if threshold == 0 {
		threshold = defaultFailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsProtocolError(err)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"target", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &breakerConn{
		conn:    conn,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (b *breakerConn) Process(ctx context.Context, cmd redis.Cmder) error {
	_, err := b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.conn.Process(ctx, cmd)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		cmd.SetErr(err)
	}
	return err
}
