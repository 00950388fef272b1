package redisgraph

import (
	"context"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

type exclusiveConn struct {
	conn ConnectionLike
	busy atomic.Bool
}

// Exclusive guards conn against overlapping use. While one command is in
// flight every other command fails with ErrConnectionBusy without reaching
// conn.
func Exclusive(conn ConnectionLike) ConnectionLike {
	return &exclusiveConn{conn: conn}
}

func (c *exclusiveConn) Process(ctx context.Context, cmd redis.Cmder) error {
	if !c.busy.CompareAndSwap(false, true) {
		cmd.SetErr(ErrConnectionBusy)
		return ErrConnectionBusy
	}
	defer c.busy.Store(false)
	return c.conn.Process(ctx, cmd)
}
