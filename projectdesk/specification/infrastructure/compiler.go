package specification

import (
	"strings"

	"github.com/pkg/errors"

	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

// Order sorts by a field of the root entity.
type Order struct {
	Field string
	Desc  bool
}

func Asc(field string) Order {
	return Order{Field: field}
}

func Desc(field string) Order {
	return Order{Field: field, Desc: true}
}

type SelectQuery struct {
	Criteria s.Criteria
	Sort     []Order
	// Limit <= 0 selects every row.
	Limit  int
	Offset int
}

// Assignment sets a root field in a bulk update. A nil Value sets NULL.
type Assignment struct {
	Field string
	Value any
}

func Set(field string, value any) Assignment {
	return Assignment{Field: field, Value: value}
}

type CompilerOption func(*Compiler)

func WithPlaceholder(format PlaceholderFormat) CompilerOption {
	return func(c *Compiler) {
		c.placeholder = format
	}
}

// Compiler renders complete statements over one root entity.
type Compiler struct {
	model       *Model
	root        *EntityMapping
	placeholder PlaceholderFormat
}

func NewCompiler(model *Model, root string, opts ...CompilerOption) (*Compiler, error) {
	e, err := model.Entity(root)
	if err != nil {
		return nil, err
	}
	c := &Compiler{model: model, root: e}
	for i := range opts {
		opts[i](c)
	}
	return c, nil
}

func (c *Compiler) Root() *EntityMapping {
	return c.root
}

func (c *Compiler) visitor() *PostgresqlVisitor {
	return NewPostgresqlVisitor(c.model, c.root, c.placeholder)
}

func (c *Compiler) column(field string) string {
	f, _ := c.root.Field(field)
	return c.root.Table() + "." + f.Column
}

func (c *Compiler) columns() string {
	fields := c.root.Fields()
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, c.root.Table()+"."+f.Column)
	}
	return strings.Join(cols, ", ")
}

// Where compiles a bare condition, e.g. for embedding into hand-written SQL.
// A nil predicate compiles to an empty string.
func (c *Compiler) Where(predicate s.Visitable) (sql string, params []any, err error) {
	if predicate == nil {
		return "", nil, nil
	}
	v := c.visitor()
	sql, err = v.Fragment(predicate, false)
	if err != nil {
		return "", nil, err
	}
	return sql, v.Parameters(), nil
}

// filtered renders FROM, threshold joins, WHERE, GROUP BY and HAVING.
func (c *Compiler) filtered(v *PostgresqlVisitor, criteria s.Criteria) (string, error) {
	sql := " FROM " + c.root.Table()
	thresholds := criteria.Active()
	having := make([]string, 0, len(thresholds))
	counts := make([]string, 0, len(thresholds))
	for _, t := range thresholds {
		join, count, err := v.ThresholdJoin(t)
		if err != nil {
			return "", err
		}
		sql += join
		counts = append(counts, count)
	}
	if criteria.Where != nil {
		where, err := v.Fragment(criteria.Where, false)
		if err != nil {
			return "", err
		}
		sql += " WHERE " + where
	}
	if len(thresholds) > 0 {
		sql += " GROUP BY " + c.column(c.root.Key().Name)
		for i, t := range thresholds {
			having = append(having, counts[i]+" >= "+v.Bind(t.Min))
		}
		sql += " HAVING " + strings.Join(having, " AND ")
	}
	return sql, nil
}

// Select renders a SELECT of every root field in declaration order. Rows are
// ordered by q.Sort and then by the key ascending.
func (c *Compiler) Select(q SelectQuery) (sql string, params []any, err error) {
	v := c.visitor()
	from, err := c.filtered(v, q.Criteria)
	if err != nil {
		return "", nil, err
	}
	order, err := c.orderBy(q.Sort)
	if err != nil {
		return "", nil, err
	}
	sql = "SELECT " + c.columns() + from + order
	if q.Limit > 0 {
		sql += " LIMIT " + v.Bind(q.Limit)
		if q.Offset > 0 {
			sql += " OFFSET " + v.Bind(q.Offset)
		}
	}
	return sql, v.Parameters(), nil
}

func (c *Compiler) orderBy(sort []Order) (string, error) {
	key := c.root.Key().Name
	terms := make([]string, 0, len(sort)+1)
	keySorted := false
	for _, o := range sort {
		if _, ok := c.root.Field(o.Field); !ok {
			return "", errors.Wrapf(ErrUnknownSortField, "\"%s\" of %s", o.Field, c.root.Name())
		}
		direction := " ASC"
		if o.Desc {
			direction = " DESC"
		}
		terms = append(terms, c.column(o.Field)+direction)
		keySorted = keySorted || o.Field == key
	}
	if !keySorted {
		terms = append(terms, c.column(key)+" ASC")
	}
	return " ORDER BY " + strings.Join(terms, ", "), nil
}

// Count renders the number of root rows matching criteria.
func (c *Compiler) Count(criteria s.Criteria) (sql string, params []any, err error) {
	v := c.visitor()
	from, err := c.filtered(v, criteria)
	if err != nil {
		return "", nil, err
	}
	if len(criteria.Active()) == 0 {
		return "SELECT COUNT(*)" + from, v.Parameters(), nil
	}
	return "SELECT COUNT(*) FROM (SELECT " + c.column(c.root.Key().Name) + from + ") AS matched", v.Parameters(), nil
}

// Update renders a set-based UPDATE. A nil predicate updates every row.
func (c *Compiler) Update(where s.Visitable, assignments ...Assignment) (sql string, params []any, err error) {
	if len(assignments) == 0 {
		return "", nil, errors.New("update requires at least one assignment")
	}
	v := c.visitor()
	sets := make([]string, 0, len(assignments))
	for _, a := range assignments {
		f, ok := c.root.Field(a.Field)
		if !ok {
			return "", nil, errors.Wrapf(ErrUnknownPath, "\"%s\" is not a field of %s", a.Field, c.root.Name())
		}
		value, err := Coerce(f, a.Value)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, f.Column+" = "+v.Bind(value))
	}
	sql = "UPDATE " + c.root.Table() + " SET " + strings.Join(sets, ", ")
	if where != nil {
		condition, err := v.Fragment(where, false)
		if err != nil {
			return "", nil, err
		}
		sql += " WHERE " + condition
	}
	return sql, v.Parameters(), nil
}

// Delete renders a set-based DELETE. A nil predicate deletes every row.
func (c *Compiler) Delete(where s.Visitable) (sql string, params []any, err error) {
	v := c.visitor()
	sql = "DELETE FROM " + c.root.Table()
	if where != nil {
		condition, err := v.Fragment(where, false)
		if err != nil {
			return "", nil, err
		}
		sql += " WHERE " + condition
	}
	return sql, v.Parameters(), nil
}

// Check reports whether predicate only uses fields and relations the model
// declares for root.
func (m *Model) Check(root string, predicate s.Visitable) error {
	c, err := NewCompiler(m, root)
	if err != nil {
		return err
	}
	_, _, err = c.Where(predicate)
	return err
}
