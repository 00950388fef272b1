package redisgraph

import (
	"context"
)

// Pending is an in-flight graph command. It resolves exactly once.
type Pending struct {
	done   chan struct{}
	cancel context.CancelFunc
	rs     *ResultSet
	err    error
}

func runPending(ctx context.Context, fn func(context.Context) (*ResultSet, error)) *Pending {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer cancel()
		p.rs, p.err = fn(ctx)
		close(p.done)
	}()
	return p
}

// Done is closed once the command has resolved.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the command resolves and returns its outcome.
func (p *Pending) Wait() (*ResultSet, error) {
	<-p.done
	return p.rs, p.err
}

// Cancel abandons the command by cancelling the context it was issued with.
// What happens to a request already on the wire is up to the connection;
// Wait reports whatever the connection returned. Cancel after resolution is
// a no-op.
func (p *Pending) Cancel() {
	p.cancel()
}
