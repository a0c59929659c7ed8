package pgx

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/session"
	"github.com/krew-solutions/projectdesk/projectdesk/session/identitymap"
	"github.com/krew-solutions/projectdesk/projectdesk/session/result"
	"github.com/krew-solutions/projectdesk/projectdesk/signals"
)

// Session is a pooled connection outside of any transaction.
type Session struct {
	ctx         context.Context
	conn        *pgxpool.Conn
	options     options
	identityMap *identitymap.IdentityMap
}

func NewSession(ctx context.Context, conn *pgxpool.Conn, opts ...Option) *Session {
	o := newOptions(opts)
	return &Session{
		ctx:         ctx,
		conn:        conn,
		options:     o,
		identityMap: identitymap.New(o.cacheSize, identitymap.ReadUncommitted),
	}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Connection() session.DbConnection {
	return session.Observe(&connection{ctx: s.ctx, exec: s.conn}, s, s.options.onQueryEnded)
}

func (s *Session) IdentityMap() *identitymap.IdentityMap {
	return s.identityMap
}

// Atomic runs callback in a transaction with its own identity map, which is
// discarded when the transaction ends.
func (s *Session) Atomic(callback session.SessionCallback) error {
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	im := identitymap.New(s.options.cacheSize, s.options.isolation)
	defer im.Clear()
	return finish(s.ctx, tx, callback(newAtomicSession(s.ctx, tx, im, s.options)), "transaction")
}

// AtomicSession runs inside a transaction; nested Atomic calls use savepoints
// and share the transaction's identity map.
type AtomicSession struct {
	ctx         context.Context
	tx          pgx.Tx
	options     options
	identityMap *identitymap.IdentityMap
}

func newAtomicSession(ctx context.Context, tx pgx.Tx, im *identitymap.IdentityMap, opts options) *AtomicSession {
	return &AtomicSession{ctx: ctx, tx: tx, options: opts, identityMap: im}
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
	nested, err := s.tx.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}
	return finish(s.ctx, nested, callback(newAtomicSession(s.ctx, nested, s.identityMap, s.options)), "savepoint")
}

func finish(ctx context.Context, tx pgx.Tx, err error, what string) error {
	if err != nil {
		if txErr := tx.Rollback(ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if txErr := tx.Commit(ctx); txErr != nil {
		return errors.Wrapf(txErr, "failed to commit %s", what)
	}
	return nil
}

// executor is implemented by both *pgxpool.Conn and pgx.Tx.
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

type connection struct {
	ctx  context.Context
	exec executor
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	tag, err := c.exec.Exec(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return result.NewResult(0, tag.RowsAffected()), nil
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	rows, err := c.exec.Query(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsAdapter{rows: rows}, nil
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	return &rowAdapter{row: c.exec.QueryRow(c.ctx, query, args...)}
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

// WithIdentityMap sizes the per-transaction identity map.
func WithIdentityMap(size int, level identitymap.IsolationLevel) Option {
	return func(o *options) {
		o.cacheSize = size
		o.isolation = level
	}
}

// WithQueryObserver notifies signal after every statement.
func WithQueryObserver(signal signals.Signal[session.QueryEndedEvent]) Option {
	return func(o *options) {
		o.onQueryEnded = signal
	}
}
