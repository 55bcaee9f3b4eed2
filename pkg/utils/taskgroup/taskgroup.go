// Package taskgroup runs background tasks with a bounded lifetime.
//
// A Group is created over a parent context. Tasks spawned with Go receive a
// context which is cancelled when the group closes. Close waits for tasks up
// to a grace period before cancelling them, then joins.
package taskgroup

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group
}

// New creates a Group whose tasks observe cancellation of ctx.
func New(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{
		ctx:    ctx,
		cancel: cancel,
		eg:     new(errgroup.Group),
	}
}

// Go spawns task in the group.
//
// The context passed to task is cancelled when the group's parent context is
// cancelled, or when Close gives up waiting.
func (g *Group) Go(task func(ctx context.Context) error) {
	g.eg.Go(func() error { return task(g.ctx) })
}

// Close waits until all tasks return, at most for grace.
//
// When grace expires, remaining tasks are cancelled and Close keeps waiting
// for them to return. The first non-nil task error is returned.
func (g *Group) Close(grace time.Duration) error {
	defer g.cancel()

	done := make(chan error, 1)
	go func() { done <- g.eg.Wait() }()

	timeout := time.NewTimer(grace)
	defer timeout.Stop()

	select {
	case err := <-done:
		return err
	case <-timeout.C:
		g.cancel()
		return <-done
	}
}
