package redisgraph

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"

	"github.com/jvanmalder/redis-graph/router"
)

const DefaultMaxOutstandingRequests = 100

// Client runs graph commands against one or more servers. A graph always
// lives on the same server; its queries and deletes share one connection and
// run in call order, read-only commands share a second one.
type Client interface {
	Query(ctx context.Context, graph, query string) (*ResultSet, error)
	ReadOnlyQuery(ctx context.Context, graph, query string) (*ResultSet, error)
	Delete(ctx context.Context, graph string) error
	List(ctx context.Context) ([]string, error)
	Shutdown()
}

type Option func(*clientConfig)

type clientConfig struct {
	logger  *slog.Logger
	metrics *Metrics
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMetrics instruments every connection the client owns.
func WithMetrics(m *Metrics) Option {
	return func(c *clientConfig) {
		c.metrics = m
	}
}

func newClientConfig(opts []Option) clientConfig {
	cfg := clientConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type client struct {
	router router.Router[*targetClient]
	logger *slog.Logger
}

// DefaultClient connects to a single server at addr ("host:port").
func DefaultClient(addr string, opts ...Option) (Client, error) {
	host, portString, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portString)
	if err != nil {
		return nil, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	return SingleTargetClient(ConnectionTarget{
		Address:                host,
		Port:                   port,
		MaxOutstandingRequests: DefaultMaxOutstandingRequests,
	}, opts...)
}

func SingleTargetClient(target ConnectionTarget, opts ...Option) (Client, error) {
	cfg := newClientConfig(opts)
	tc, err := newTargetClient(target, cfg)
	if err != nil {
		return nil, err
	}
	return &client{router: router.NewDirectRouter(tc), logger: cfg.logger}, nil
}

// ShardedClient spreads graphs over targets by graph key.
func ShardedClient(targets []ConnectionTarget, opts ...Option) (Client, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	cfg := newClientConfig(opts)
	clients := make([]*targetClient, 0, len(targets))
	for _, t := range targets {
		tc, err := newTargetClient(t, cfg)
		if err != nil {
			for _, c := range clients {
				c.Shutdown()
			}
			return nil, err
		}
		clients = append(clients, tc)
	}
	r, err := router.NewShardedRouter(clients...)
	if err != nil {
		return nil, err
	}
	return &client{router: r, logger: cfg.logger}, nil
}

// FromConnections builds a client on connections owned by the caller. Graphs
// are sharded over conns; Shutdown leaves them open.
func FromConnections(conns []ConnectionLike, opts ...Option) (Client, error) {
	if len(conns) == 0 {
		return nil, ErrNoTargets
	}
	cfg := newClientConfig(opts)
	clients := make([]*targetClient, 0, len(conns))
	for i, conn := range conns {
		clients = append(clients, borrowedTargetClient(fmt.Sprintf("conn-%d", i), conn, cfg))
	}
	if len(clients) == 1 {
		return &client{router: router.NewDirectRouter(clients[0]), logger: cfg.logger}, nil
	}
	r, err := router.NewShardedRouter(clients...)
	if err != nil {
		return nil, err
	}
	return &client{router: r, logger: cfg.logger}, nil
}

func (c *client) Query(ctx context.Context, graph, query string) (*ResultSet, error) {
	return c.router.Route(graph).Query(ctx, graph, query)
}

func (c *client) ReadOnlyQuery(ctx context.Context, graph, query string) (*ResultSet, error) {
	return c.router.Route(graph).ReadOnlyQuery(ctx, graph, query)
}

func (c *client) Delete(ctx context.Context, graph string) error {
	return c.router.Route(graph).Delete(ctx, graph)
}

// List collects the graph names of every target, sorted.
func (c *client) List(ctx context.Context) ([]string, error) {
	var names []string
	for _, t := range c.router.All() {
		n, err := t.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing graphs on %s: %w", t.name, err)
		}
		names = append(names, n...)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func (c *client) Shutdown() {
	c.logger.Debug("shutting down graph client")
	c.router.Shutdown()
}
