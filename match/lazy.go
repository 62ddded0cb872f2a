package match

import (
	"context"
	"sync"
)

// Lazy builds a Service once, in the background, and publishes it to every
// waiter. Queries never observe a partially built service.
type Lazy struct {
	build func(ctx context.Context) (*Service, error)
	once  sync.Once
	done  chan struct{}
	svc   *Service
	err   error
}

// NewLazy returns a barrier around build. Nothing runs until Start or Wait.
func NewLazy(build func(ctx context.Context) (*Service, error)) *Lazy {
	return &Lazy{build: build, done: make(chan struct{})}
}

// Start launches the build if it has not been launched yet.
func (l *Lazy) Start(ctx context.Context) {
	l.once.Do(func() {
		go func() {
			defer close(l.done)
			l.svc, l.err = l.build(ctx)
		}()
	})
}

// Wait starts the build if needed and blocks until it finishes or ctx is
// done. The build error, typically a *dataset.LoadError, is returned to
// every caller.
func (l *Lazy) Wait(ctx context.Context) (*Service, error) {
	l.Start(context.WithoutCancel(ctx))
	select {
	case <-l.done:
		return l.svc, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ready reports whether the build has finished, successfully or not.
func (l *Lazy) Ready() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
