package redisgraph

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConnectionsRoutesGraphsToOneConnection(t *testing.T) {
	ctx := context.Background()
	conns := []*fakeConn{newFakeConn(), newFakeConn(), newFakeConn()}
	c, err := FromConnections([]ConnectionLike{conns[0], conns[1], conns[2]})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Shutdown()

	for i := 0; i < 30; i++ {
		graph := fmt.Sprintf("graph-%d", i%10)
		_, err := c.Query(ctx, graph, fmt.Sprintf("RETURN %d", i))
		require.NoError(t, err)
	}

	seen := map[string]int{}
	for i, conn := range conns {
		for _, call := range conn.Calls() {
			graph := call[1].(string)
			if prev, ok := seen[graph]; ok {
				assert.Equal(t, prev, i, "Expected %s to stay on one connection", graph)
			}
			seen[graph] = i
		}
	}
	assert.Len(t, seen, 10)

	// submission order is kept per graph
	for _, conn := range conns {
		last := map[string]int{}
		for _, call := range conn.Calls() {
			var n int
			_, err := fmt.Sscanf(call[2].(string), "RETURN %d", &n)
			require.NoError(t, err)
			graph := call[1].(string)
			if prev, ok := last[graph]; ok {
				assert.Less(t, prev, n)
			}
			last[graph] = n
		}
	}
}

func TestFromConnectionsListMergesTargets(t *testing.T) {
	a, b := newFakeConn(), newFakeConn()
	a.replies[ListCommand] = []string{"social", "bikes"}
	b.replies[ListCommand] = []string{"bikes", "teams"}

	c, err := FromConnections([]ConnectionLike{a, b})
	if err != nil {
		t.Fatal(err)
	}

	names, err := c.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []string{"bikes", "social", "teams"}, names)
}

func TestFromConnectionsListError(t *testing.T) {
	a := newFakeConn()
	a.err = serverError("ERR unknown command 'GRAPH.LIST'")

	c, err := FromConnections([]ConnectionLike{a})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.List(context.Background())
	assert.ErrorIs(t, err, a.err)
	assert.True(t, IsProtocolError(err))
}

func TestFromConnectionsCommands(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	m := NewMetrics()
	c, err := FromConnections([]ConnectionLike{conn}, WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.ReadOnlyQuery(ctx, "g", "MATCH (n) RETURN n")
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, "g"))

	assert.Equal(t, [][]any{
		{"GRAPH.RO_QUERY", "g", "MATCH (n) RETURN n"},
		{"GRAPH.DELETE", "g"},
	}, conn.Calls())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("GRAPH.RO_QUERY", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("GRAPH.DELETE", "ok")))
}

func TestClientConstructorErrors(t *testing.T) {
	_, err := FromConnections(nil)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = ShardedClient(nil)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = DefaultClient("no-port")
	assert.Error(t, err)

	_, err = DefaultClient("localhost:port")
	assert.Error(t, err)

	_, err = SingleTargetClient(ConnectionTarget{URL: "http://localhost"})
	assert.Error(t, err)
}

func TestSingleTargetClientUnreachable(t *testing.T) {
	c, err := SingleTargetClient(ConnectionTarget{
		Address:                "127.0.0.1",
		Port:                   1,
		MaxOutstandingRequests: 10,
		Timeout:                5 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Shutdown()

	_, err = c.Query(context.Background(), riderGraph, riderQuery)
	assert.Error(t, err)
	assert.True(t, IsTransportError(err), "Expected a transport fault, got %v", err)
}

func TestShutdownClientRejectsCommands(t *testing.T) {
	c, err := DefaultClient("127.0.0.1:1")
	if err != nil {
		t.Fatal(err)
	}
	c.Shutdown()

	_, err = c.Query(context.Background(), riderGraph, riderQuery)
	assert.ErrorIs(t, err, ErrClientShutdown)
}

func TestConnectionTargetString(t *testing.T) {
	assert.Equal(t, "localhost:6379", ConnectionTarget{Address: "localhost", Port: 6379}.String())
	assert.Equal(t, "graph.internal:6380", ConnectionTarget{URL: "redis://graph.internal:6380/0"}.String())
}
