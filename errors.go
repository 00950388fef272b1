package redisgraph

import (
	"errors"

	"github.com/jvanmalder/redis-graph/internal/dispatch"
	"github.com/jvanmalder/redis-graph/router"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrMalformedReply means the server answered with a shape that is not a
	// graph result set.
	ErrMalformedReply = errors.New("malformed graph reply")
	// ErrConnectionBusy is returned by Exclusive connections that already
	// have a command in flight.
	ErrConnectionBusy = errors.New("connection busy")
	ErrCircuitOpen    = errors.New("circuit breaker open")
	ErrNoTargets      = router.ErrNoTargets

	ErrConnectionOverloaded = dispatch.ErrConnectionOverloaded
	ErrConnectionReset      = dispatch.ErrConnectionReset
	ErrRequestTimeout       = dispatch.ErrRequestTimeout
	ErrClientShutdown       = dispatch.ErrShutdown
)

// IsProtocolError reports whether err came from the server: an error reply,
// or a reply that could not be decoded.
func IsProtocolError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMalformedReply) {
		return true
	}
	var rerr redis.Error
	return errors.As(err, &rerr)
}

// IsTransportError reports whether err is a fault of the connection itself:
// I/O, timeouts, cancellation, argument encoding or local backpressure.
func IsTransportError(err error) bool {
	return err != nil && !IsProtocolError(err)
}
