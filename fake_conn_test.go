package redisgraph

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

var emptyReply = []any{[]any{}, []any{}, []any{}}

// fakeConn answers every command with a canned reply or error, recording
// the arguments it saw.
type fakeConn struct {
	mu      sync.Mutex
	replies map[string]any
	err     error
	calls   [][]any
}

func newFakeConn() *fakeConn {
	return &fakeConn{replies: map[string]any{
		QueryCommand:         emptyReply,
		ReadOnlyQueryCommand: emptyReply,
		DeleteCommand:        "Graph removed, internal execution time: 0.1 milliseconds",
		ListCommand:          []string{},
	}}
}

func (f *fakeConn) Process(ctx context.Context, cmd redis.Cmder) error {
	f.mu.Lock()
	f.calls = append(f.calls, cmd.Args())
	reply, err := f.replies[strings.ToUpper(cmd.Name())], f.err
	f.mu.Unlock()

	if err != nil {
		cmd.SetErr(err)
		return err
	}
	setReply(cmd, reply)
	return nil
}

func (f *fakeConn) Calls() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.calls...)
}

func setReply(cmd redis.Cmder, reply any) {
	switch c := cmd.(type) {
	case *redis.Cmd:
		c.SetVal(reply)
	case *redis.StringSliceCmd:
		c.SetVal(reply.([]string))
	}
}

// blockingConn holds every command until released or cancelled. open counts
// commands currently inside Process.
type blockingConn struct {
	reply    any
	started  chan struct{}
	release  chan struct{}
	open     atomic.Int32
	consumed atomic.Int32
}

func newBlockingConn() *blockingConn {
	return &blockingConn{
		reply:   emptyReply,
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (b *blockingConn) Process(ctx context.Context, cmd redis.Cmder) error {
	b.open.Add(1)
	defer b.open.Add(-1)
	b.started <- struct{}{}

	select {
	case <-b.release:
		setReply(cmd, b.reply)
		b.consumed.Add(1)
		return nil
	case <-ctx.Done():
		cmd.SetErr(ctx.Err())
		return ctx.Err()
	}
}

// closableConn adapts a ConnectionLike to the dispatcher connection.
type closableConn struct {
	ConnectionLike
	closed atomic.Bool
}

func (c *closableConn) Close() error {
	c.closed.Store(true)
	return nil
}

// serverError stands in for an error reply from the server.
type serverError string

func (e serverError) Error() string { return string(e) }

func (serverError) RedisError() {}
