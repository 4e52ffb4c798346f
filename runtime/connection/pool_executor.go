package connection

import (
	"context"

	"github.com/satishbabariya/chorm/runtime/pool"
)

// Conn is a poolable executor.
type Conn interface {
	pool.Resource
	Executor
}

// PoolExecutor runs each query on a connection borrowed from a pool.
type PoolExecutor[C Conn] struct {
	pool *pool.Pool[C]
}

// NewPoolExecutor wraps p.
func NewPoolExecutor[C Conn](p *pool.Pool[C]) *PoolExecutor[C] {
	return &PoolExecutor[C]{pool: p}
}

// OpenPool starts a pool of HTTP connections sharing cfg.
func OpenPool(ctx context.Context, cfg Config, poolCfg pool.Config, opts ...pool.Option) (*PoolExecutor[*Connection], error) {
	factory := func(ctx context.Context) (*Connection, error) {
		return New(cfg), nil
	}
	p, err := pool.New(ctx, factory, poolCfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewPoolExecutor(p), nil
}

// Query borrows a connection, runs sql and releases it.
func (e *PoolExecutor[C]) Query(ctx context.Context, sql string, opts ...QueryOption) (*Result, error) {
	var res *Result
	err := e.pool.WithConnection(ctx, func(c C) error {
		var err error
		res, err = c.Query(ctx, sql, opts...)
		return err
	})
	return res, err
}

// Pool returns the underlying pool.
func (e *PoolExecutor[C]) Pool() *pool.Pool[C] {
	return e.pool
}

// Close closes the pool.
func (e *PoolExecutor[C]) Close() error {
	return e.pool.Close()
}
