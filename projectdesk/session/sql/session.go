package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/session"
	"github.com/krew-solutions/projectdesk/projectdesk/session/identitymap"
	"github.com/krew-solutions/projectdesk/projectdesk/signals"
)

// Session is a database/sql handle outside of any transaction.
type Session struct {
	ctx         context.Context
	db          *sql.DB
	options     options
	identityMap *identitymap.IdentityMap
}

func NewSession(ctx context.Context, db *sql.DB, opts ...Option) *Session {
	o := newOptions(opts)
	return &Session{
		ctx:         ctx,
		db:          db,
		options:     o,
		identityMap: identitymap.New(o.cacheSize, identitymap.ReadUncommitted),
	}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Connection() session.DbConnection {
	return session.Observe(&connection{ctx: s.ctx, exec: s.db}, s, s.options.onQueryEnded)
}

func (s *Session) IdentityMap() *identitymap.IdentityMap {
	return s.identityMap
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	tx, err := s.db.BeginTx(s.ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	im := identitymap.New(s.options.cacheSize, s.options.isolation)
	defer im.Clear()
	atomic := &AtomicSession{ctx: s.ctx, tx: tx, options: s.options, identityMap: im}
	err = callback(atomic)
	if err != nil {
		if txErr := tx.Rollback(); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if txErr := tx.Commit(); txErr != nil {
		return errors.Wrap(txErr, "failed to commit transaction")
	}
	return nil
}

// AtomicSession runs inside a transaction. database/sql has no nested
// transactions, so nested Atomic calls issue SAVEPOINT statements, which
// both PostgreSQL and SQLite understand.
type AtomicSession struct {
	ctx         context.Context
	tx          *sql.Tx
	options     options
	identityMap *identitymap.IdentityMap
	depth       int
}

func (s *AtomicSession) Context() context.Context {
	return s.ctx
}

func (s *AtomicSession) Connection() session.DbConnection {
	return session.Observe(&connection{ctx: s.ctx, exec: s.tx}, s, s.options.onQueryEnded)
}

func (s *AtomicSession) IdentityMap() *identitymap.IdentityMap {
	return s.identityMap
}

func (s *AtomicSession) Atomic(callback session.SessionCallback) error {
	name := fmt.Sprintf("sp_%d", s.depth+1)
	if _, err := s.tx.ExecContext(s.ctx, "SAVEPOINT "+name); err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}
	nested := &AtomicSession{ctx: s.ctx, tx: s.tx, options: s.options, identityMap: s.identityMap, depth: s.depth + 1}
	err := callback(nested)
	if err != nil {
		if _, txErr := s.tx.ExecContext(s.ctx, "ROLLBACK TO SAVEPOINT "+name); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if _, txErr := s.tx.ExecContext(s.ctx, "RELEASE SAVEPOINT "+name); txErr != nil {
		return errors.Wrap(txErr, "failed to release savepoint")
	}
	return nil
}

// executor is implemented by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type connection struct {
	ctx  context.Context
	exec executor
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	return c.exec.ExecContext(c.ctx, query, args...)
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	rows, err := c.exec.QueryContext(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	return c.exec.QueryRowContext(c.ctx, query, args...)
}

var _ session.IdentityMapSession = (*Session)(nil)
var _ session.IdentityMapSession = (*AtomicSession)(nil)

type options struct {
	cacheSize    int
	isolation    identitymap.IsolationLevel
	onQueryEnded signals.Signal[session.QueryEndedEvent]
}

const defaultCacheSize = 100

func newOptions(opts []Option) options {
	o := options{cacheSize: defaultCacheSize, isolation: identitymap.Serializable}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Option func(*options)

func WithIdentityMap(size int, level identitymap.IsolationLevel) Option {
	return func(o *options) {
		o.cacheSize = size
		o.isolation = level
	}
}

func WithQueryObserver(signal signals.Signal[session.QueryEndedEvent]) Option {
	return func(o *options) {
		o.onQueryEnded = signal
	}
}
