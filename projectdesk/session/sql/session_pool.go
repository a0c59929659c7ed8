package sql

import (
	"context"
	"database/sql"

	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

// SessionPool hands out sessions over one *sql.DB, which pools connections
// itself.
type SessionPool struct {
	db   *sql.DB
	opts []Option
}

func NewSessionPool(db *sql.DB, opts ...Option) *SessionPool {
	return &SessionPool{db: db, opts: opts}
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return callback(NewSession(ctx, p.db, p.opts...))
}
