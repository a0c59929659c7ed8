package repository

import (
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/session"
	"github.com/krew-solutions/projectdesk/projectdesk/session/identitymap"
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

// Scanner is satisfied by both session.Rows and session.Row.
type Scanner interface {
	Scan(dest ...any) error
}

// RowMapper reads one row selected with every field of the root entity, in
// the order the fields were declared.
type RowMapper[T any] func(Scanner) (T, error)

// Entity is a row with a numeric primary key.
type Entity interface {
	Identity() int64
}

type rowKey[T any] struct {
	identitymap.IdentityKeyBase[T]
	entity string
	id     int64
}

type config struct {
	placeholder     spec.PlaceholderFormat
	logger          *slog.Logger
	defaultPageSize int
	maxPageSize     int
}

type Option func(*config)

func WithPlaceholder(format spec.PlaceholderFormat) Option {
	return func(c *config) {
		c.placeholder = format
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithPageSizes overrides DefaultPageSize and MaxPageSize.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(c *config) {
		if defaultSize > 0 {
			c.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			c.maxPageSize = maxSize
		}
	}
}

// Store runs compiled criteria against one root entity. It keeps no state
// between calls; every method takes the session to run in.
type Store[T Entity] struct {
	compiler *spec.Compiler
	mapRow   RowMapper[T]
	config   config
}

func NewStore[T Entity](model *spec.Model, root string, mapRow RowMapper[T], opts ...Option) (*Store[T], error) {
	c := config{
		logger:          slog.Default(),
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
	for _, opt := range opts {
		opt(&c)
	}
	compiler, err := spec.NewCompiler(model, root, spec.WithPlaceholder(c.placeholder))
	if err != nil {
		return nil, err
	}
	return &Store[T]{compiler: compiler, mapRow: mapRow, config: c}, nil
}

func (r *Store[T]) Entity() string {
	return r.compiler.Root().Name()
}

func (r *Store[T]) logger() *slog.Logger {
	return r.config.logger.With("entity", r.Entity())
}

func (r *Store[T]) normalize(p PageRequest) PageRequest {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = r.config.defaultPageSize
	}
	if p.Size > r.config.maxPageSize {
		p.Size = r.config.maxPageSize
	}
	return p
}

// Find returns one page of matches together with the total number of
// matches.
func (r *Store[T]) Find(sess session.DbSession, q Query) (Page[T], error) {
	page := r.normalize(q.Page)
	total, err := r.Count(sess, q)
	if err != nil {
		return Page[T]{}, err
	}
	items, err := r.query(sess, spec.SelectQuery{
		Criteria: q.Criteria(),
		Sort:     page.Sort,
		Limit:    page.Size,
		Offset:   (page.Number - 1) * page.Size,
	})
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Total: total, Number: page.Number, Size: page.Size}, nil
}

// List returns every match, ignoring q.Page except for its sort order.
func (r *Store[T]) List(sess session.DbSession, q Query) ([]T, error) {
	return r.query(sess, spec.SelectQuery{Criteria: q.Criteria(), Sort: q.Page.Sort})
}

func (r *Store[T]) Count(sess session.DbSession, q Query) (int64, error) {
	sql, params, err := r.compiler.Count(q.Criteria())
	if err != nil {
		return 0, err
	}
	var total int64
	if err := sess.Connection().QueryRow(sql, params...).Scan(&total); err != nil {
		return 0, errors.Wrapf(err, "count %s", r.Entity())
	}
	return total, nil
}

// Get loads a row by primary key through the session identity map, if the
// session has one.
func (r *Store[T]) Get(sess session.DbSession, id int64) (T, error) {
	var zero T
	key := rowKey[T]{entity: r.Entity(), id: id}
	im := identityMapOf(sess)
	if im != nil {
		cached, err := identitymap.Get[T](im, key)
		switch {
		case err == nil:
			return cached, nil
		case errors.Is(err, identitymap.ErrObjectNotFound):
			return zero, errors.Wrapf(ErrNotFound, "%s %d", r.Entity(), id)
		}
	}
	keyField := r.compiler.Root().Key().Name
	items, err := r.query(sess, spec.SelectQuery{
		Criteria: s.Criteria{Where: s.Equal(s.Field(s.GlobalScope(), keyField), s.Value(id))},
		Limit:    1,
	})
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		if im != nil {
			identitymap.AddAbsent[T](im, key)
		}
		return zero, errors.Wrapf(ErrNotFound, "%s %d", r.Entity(), id)
	}
	return items[0], nil
}

func (r *Store[T]) query(sess session.DbSession, q spec.SelectQuery) ([]T, error) {
	sql, params, err := r.compiler.Select(q)
	if err != nil {
		return nil, err
	}
	r.logger().Debug("select", "criteria", q.Criteria.String())
	rows, err := sess.Connection().Query(sql, params...)
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", r.Entity())
	}
	defer rows.Close()
	im := identityMapOf(sess)
	items := make([]T, 0)
	for rows.Next() {
		item, err := r.mapRow(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", r.Entity())
		}
		if im != nil {
			identitymap.Add[T](im, rowKey[T]{entity: r.Entity(), id: item.Identity()}, item)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "select %s", r.Entity())
	}
	return items, nil
}

// Update applies assignments to every row matching where in one statement
// and returns the number of affected rows. A nil where updates every row.
func (r *Store[T]) Update(sess session.DbSession, where s.Visitable, assignments ...spec.Assignment) (int64, error) {
	sql, params, err := r.compiler.Update(where, assignments...)
	if err != nil {
		return 0, err
	}
	return r.mutate(sess, "update", where, sql, params)
}

// Delete removes every row matching where in one statement. A nil where
// deletes every row.
func (r *Store[T]) Delete(sess session.DbSession, where s.Visitable) (int64, error) {
	sql, params, err := r.compiler.Delete(where)
	if err != nil {
		return 0, err
	}
	return r.mutate(sess, "delete", where, sql, params)
}

func (r *Store[T]) mutate(sess session.DbSession, kind string, where s.Visitable, sql string, params []any) (int64, error) {
	operation := ulid.Make().String()
	logger := r.logger().With("operation", operation, "kind", kind)
	result, err := sess.Connection().Exec(sql, params...)
	if err != nil {
		logger.Error("bulk statement failed", "predicate", s.Format(where), "error", err)
		return 0, errors.Wrapf(err, "%s %s", kind, r.Entity())
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	// Cascades may touch other entities, so nothing cached stays trustworthy.
	Evict(sess)
	logger.Info("bulk statement", "predicate", s.Format(where), "affected", affected)
	return affected, nil
}

// Evict drops every row the session has cached.
func Evict(sess session.DbSession) {
	if im := identityMapOf(sess); im != nil {
		im.Clear()
	}
}

func identityMapOf(sess session.DbSession) *identitymap.IdentityMap {
	if ims, ok := sess.(session.IdentityMapSession); ok {
		return ims.IdentityMap()
	}
	return nil
}
