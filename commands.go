// Package redisgraph adds RedisGraph commands to go-redis connections.
//
// Any value with a go-redis style Process method can run graph queries.
// Replies are decoded in their RESP2 shape, so clients should use Protocol 2:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379", Protocol: 2})
//	rs, err := redisgraph.GraphQuery(ctx, rdb, "my_graph",
//		"CREATE (:Rider {name:'Valentino Rossi'})-[:rides]->(:Team {name:'Yamaha'})")
//
// GraphQueryAsync returns a Pending that the caller can wait on or cancel.
package redisgraph

import (
	"context"

	"github.com/goccy/go-reflect"
	"github.com/redis/go-redis/v9"
)

const (
	QueryCommand         = "GRAPH.QUERY"
	ReadOnlyQueryCommand = "GRAPH.RO_QUERY"
	DeleteCommand        = "GRAPH.DELETE"
	ListCommand          = "GRAPH.LIST"
)

// ConnectionLike is the capability every graph command runs on. It is
// satisfied by *redis.Client, *redis.Conn, *redis.ClusterClient, *redis.Ring
// and by the decorators in this package.
//
// A ConnectionLike that is not safe for concurrent use must not be shared by
// two in-flight commands; see Exclusive.
type ConnectionLike interface {
	Process(ctx context.Context, cmd redis.Cmder) error
}

// Arg is any value the go-redis argument writer can encode.
type Arg interface {
	~string | ~[]byte |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~bool
}

// GraphQuery runs GRAPH.QUERY key query on conn and decodes the reply.
// Errors returned by conn are handed back unchanged.
func GraphQuery[K, Q Arg](ctx context.Context, conn ConnectionLike, key K, query Q) (*ResultSet, error) {
	return execute(ctx, conn, newCommand(ctx, QueryCommand, key, query))
}

// GraphQueryAsync is GraphQuery without blocking the caller.
func GraphQueryAsync[K, Q Arg](ctx context.Context, conn ConnectionLike, key K, query Q) *Pending {
	return runPending(ctx, func(ctx context.Context) (*ResultSet, error) {
		return execute(ctx, conn, newCommand(ctx, QueryCommand, key, query))
	})
}

func newCommand[K, Q Arg](ctx context.Context, name string, key K, query Q) *redis.Cmd {
	return redis.NewCmd(ctx, name, encodeArg(key), encodeArg(query))
}

func execute(ctx context.Context, conn ConnectionLike, cmd *redis.Cmd) (*ResultSet, error) {
	if err := conn.Process(ctx, cmd); err != nil {
		return nil, err
	}
	if err := cmd.Err(); err != nil {
		return nil, err
	}
	return ParseResultSet(cmd.Val())
}

// encodeArg turns named types into their underlying builtin, since the
// go-redis writer only switches on builtin types.
func encodeArg[T Arg](v T) any {
	switch a := any(v).(type) {
	case string, []byte, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, bool:
		return a
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Slice:
		return rv.Bytes()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	default:
		return v
	}
}

// Commands exposes the graph commands as methods on a connection.
type Commands struct {
	conn ConnectionLike
}

// Graph wraps conn. The wrapper holds no state of its own.
func Graph(conn ConnectionLike) Commands {
	return Commands{conn: conn}
}

func (c Commands) Query(ctx context.Context, graph, query string) (*ResultSet, error) {
	return GraphQuery(ctx, c.conn, graph, query)
}

func (c Commands) QueryAsync(ctx context.Context, graph, query string) *Pending {
	return GraphQueryAsync(ctx, c.conn, graph, query)
}

// ReadOnlyQuery runs GRAPH.RO_QUERY, which the server rejects for queries
// that write.
func (c Commands) ReadOnlyQuery(ctx context.Context, graph, query string) (*ResultSet, error) {
	return execute(ctx, c.conn, newCommand(ctx, ReadOnlyQueryCommand, graph, query))
}

// Delete removes the graph and all of its entities.
func (c Commands) Delete(ctx context.Context, graph string) error {
	cmd := redis.NewCmd(ctx, DeleteCommand, graph)
	if err := c.conn.Process(ctx, cmd); err != nil {
		return err
	}
	return cmd.Err()
}

// List returns the names of all graphs stored on the connection's server.
func (c Commands) List(ctx context.Context) ([]string, error) {
	cmd := redis.NewStringSliceCmd(ctx, ListCommand)
	if err := c.conn.Process(ctx, cmd); err != nil {
		return nil, err
	}
	return cmd.Result()
}
