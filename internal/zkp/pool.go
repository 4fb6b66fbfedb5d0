package zkp

import "context"

// Pool bounds the number of concurrent proof generations. Proving is
// CPU-bound; without a bound a burst of authorization requests would starve
// every other request in the process.
type Pool struct {
	sem chan struct{}
}

// NewPool creates a pool admitting at most size concurrent provers.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Do runs fn once a slot is free, or returns the context error if the caller
// gives up while waiting. A cancelled wait leaves no side effect.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()

	return fn(ctx)
}
