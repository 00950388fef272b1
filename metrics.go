package redisgraph

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	outcomeOK             = "ok"
	outcomeProtocolError  = "protocol_error"
	outcomeTransportError = "transport_error"
)

// Metrics holds the collectors Instrument records into.
type Metrics struct {
	Commands *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "redisgraph",
				Name:      "commands_total",
				Help:      "Total number of graph commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "redisgraph",
				Name:      "command_duration_seconds",
				Help:      "Graph command round trip duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	return errors.Join(
		reg.Register(m.Commands),
		reg.Register(m.Duration),
	)
}

type instrumentedConn struct {
	conn    ConnectionLike
	metrics *Metrics
}

// Instrument records every command processed on conn.
func Instrument(conn ConnectionLike, m *Metrics) ConnectionLike {
	return &instrumentedConn{conn: conn, metrics: m}
}

func (c *instrumentedConn) Process(ctx context.Context, cmd redis.Cmder) error {
	start := time.Now()
	err := c.conn.Process(ctx, cmd)

	name := strings.ToUpper(cmd.Name())
	c.metrics.Duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	c.metrics.Commands.WithLabelValues(name, outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case IsProtocolError(err):
		return outcomeProtocolError
	default:
		return outcomeTransportError
	}
}
