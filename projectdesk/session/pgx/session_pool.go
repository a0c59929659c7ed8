package pgx

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

type SessionPool struct {
	pool *pgxpool.Pool
	opts []Option
}

func NewSessionPool(pool *pgxpool.Pool, opts ...Option) *SessionPool {
	return &SessionPool{pool: pool, opts: opts}
}

// Connect opens a pgx pool for dsn.
func Connect(ctx context.Context, dsn string, opts ...Option) (*SessionPool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewSessionPool(pool, opts...), nil
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return callback(NewSession(ctx, conn, p.opts...))
}

func (p *SessionPool) Close() {
	p.pool.Close()
}
