package specification

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/specification/domain/operators"
)

const anySegment = "any"

// Path is a dotted navigation resolved against the model, such as
// "tasks.any.assignee.email". A to-many segment is followed by "any"; a
// to-one segment is navigated directly. The last segment is either a field,
// which yields comparison leaves, or a relation, which yields existence
// leaves. Paths build the same predicates as the typed accessors.
type Path struct {
	expr     string
	scope    s.EmptiableObject
	hops     []RelationMapping
	owner    *EntityMapping
	field    *FieldMapping
	relation *RelationMapping
}

// Path resolves expr from the root entity (the query's GlobalScope).
func (m *Model) Path(root, expr string) (Path, error) {
	return m.resolve(root, s.GlobalScope(), expr)
}

// ItemPath resolves expr from the current row of an enclosing quantifier,
// for building the nested predicate of Exists, NotExists or Count.
func (m *Model) ItemPath(entity, expr string) (Path, error) {
	return m.resolve(entity, s.Item(), expr)
}

// MustPath is Path for paths declared at startup; it panics on an unknown
// path.
func (m *Model) MustPath(root, expr string) Path {
	p, err := m.Path(root, expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (m *Model) MustItemPath(entity, expr string) Path {
	p, err := m.ItemPath(entity, expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (m *Model) resolve(entity string, scope s.EmptiableObject, expr string) (Path, error) {
	e, err := m.Entity(entity)
	if err != nil {
		return Path{}, err
	}
	p := Path{expr: expr, scope: scope, owner: e}
	unknown := func(format string, args ...any) error {
		return errors.Wrapf(ErrUnknownPath, "%s.%s: %s", entity, expr, fmt.Sprintf(format, args...))
	}
	segments := strings.Split(expr, ".")
	for i := 0; i < len(segments); i++ {
		segment := segments[i]
		last := i == len(segments)-1
		if f, ok := p.owner.Field(segment); ok {
			if !last {
				return Path{}, unknown("field \"%s\" has no members", segment)
			}
			p.field = &f
			return p, nil
		}
		r, ok := p.owner.Relation(segment)
		if !ok {
			return Path{}, unknown("\"%s\" is not a member of %s", segment, p.owner.Name())
		}
		p.hops = append(p.hops, r)
		p.owner = m.entities[r.Target]
		if r.Cardinality == ToMany {
			switch {
			case last:
			case segments[i+1] == anySegment:
				i++
			default:
				return Path{}, unknown("to-many relation \"%s\" must be followed by \"any\"", segment)
			}
		} else if !last && segments[i+1] == anySegment {
			return Path{}, unknown("to-one relation \"%s\" cannot be quantified", segment)
		}
	}
	if len(p.hops) > 0 && p.field == nil {
		r := p.hops[len(p.hops)-1]
		p.relation = &r
	}
	return p, nil
}

func (p Path) String() string {
	return p.expr
}

// Field returns the mapping of the leaf field, if the path ends in one.
func (p Path) Field() (FieldMapping, bool) {
	if p.field == nil {
		return FieldMapping{}, false
	}
	return *p.field, true
}

// Target returns the entity the last relation of the path leads to.
func (p Path) Target() string {
	return p.owner.Name()
}

// wrap quantifies predicate over every relation hop of the path. A path
// without hops leaves predicate as is.
func (p Path) wrap(hops []RelationMapping, predicate s.Visitable) s.Visitable {
	for i := len(hops) - 1; i >= 0; i-- {
		predicate = s.Exists(p.hopScope(i), hops[i].Name, predicate)
	}
	return predicate
}

func (p Path) hopScope(i int) s.EmptiableObject {
	if i == 0 {
		return p.scope
	}
	return s.Item()
}

func (p Path) leafField() (s.FieldNode, error) {
	if p.field == nil {
		return s.FieldNode{}, errors.Wrapf(ErrUnknownPath, "\"%s\" does not end in a field", p.expr)
	}
	return s.Field(p.hopScope(len(p.hops)), p.field.Name), nil
}

func (p Path) compare(op operators.Operator, value any, allowed ...FieldKind) (s.Visitable, error) {
	field, err := p.leafField()
	if err != nil {
		return nil, err
	}
	if len(allowed) > 0 && !slices.Contains(allowed, p.field.Kind) {
		return nil, errors.Wrapf(ErrUnsupportedOperator, "%s on %s field \"%s\"", op, p.field.Kind, p.expr)
	}
	if value == nil {
		return nil, errors.Wrapf(ErrTypeMismatch, "nil value for \"%s\", use IsNull", p.expr)
	}
	coerced, err := Coerce(*p.field, value)
	if err != nil {
		return nil, err
	}
	var leaf s.Visitable
	switch op {
	case operators.OperatorEq:
		leaf = s.Equal(field, s.Value(coerced))
	case operators.OperatorNe:
		leaf = s.NotEqual(field, s.Value(coerced))
	case operators.OperatorGt:
		leaf = s.GreaterThan(field, s.Value(coerced))
	case operators.OperatorGte:
		leaf = s.GreaterThanEqual(field, s.Value(coerced))
	case operators.OperatorLt:
		leaf = s.LessThan(field, s.Value(coerced))
	case operators.OperatorLte:
		leaf = s.LessThanEqual(field, s.Value(coerced))
	case operators.OperatorContains:
		leaf = s.Contains(field, s.Value(coerced))
	case operators.OperatorEqualFold:
		leaf = s.EqualFold(field, s.Value(coerced))
	default:
		return nil, errors.Wrapf(ErrUnsupportedOperator, "%s", op)
	}
	return p.wrap(p.hops, leaf), nil
}

var ordered = []FieldKind{KindString, KindInteger, KindNumber, KindTimestamp}

func (p Path) Eq(value any) (s.Visitable, error) {
	return p.compare(operators.OperatorEq, value)
}

func (p Path) Ne(value any) (s.Visitable, error) {
	return p.compare(operators.OperatorNe, value)
}

func (p Path) Gt(value any) (s.Visitable, error) {
	return p.compare(operators.OperatorGt, value, ordered...)
}

func (p Path) Gte(value any) (s.Visitable, error) {
	return p.compare(operators.OperatorGte, value, ordered...)
}

func (p Path) Lt(value any) (s.Visitable, error) {
	return p.compare(operators.OperatorLt, value, ordered...)
}

func (p Path) Lte(value any) (s.Visitable, error) {
	return p.compare(operators.OperatorLte, value, ordered...)
}

// Contains is a case-insensitive substring match on a string field.
func (p Path) Contains(value string) (s.Visitable, error) {
	return p.compare(operators.OperatorContains, value, KindString)
}

func (p Path) EqualFold(value string) (s.Visitable, error) {
	return p.compare(operators.OperatorEqualFold, value, KindString)
}

func (p Path) IsNull() (s.Visitable, error) {
	field, err := p.leafField()
	if err != nil {
		return nil, err
	}
	return p.wrap(p.hops, s.IsNull(field)), nil
}

func (p Path) IsNotNull() (s.Visitable, error) {
	field, err := p.leafField()
	if err != nil {
		return nil, err
	}
	return p.wrap(p.hops, s.IsNotNull(field)), nil
}

func (p Path) requireRelation() error {
	if p.relation == nil {
		return errors.Wrapf(ErrUnknownPath, "\"%s\" does not end in a relation", p.expr)
	}
	return nil
}

// Exists holds when at least one row reached through the path satisfies
// predicate, which must be scoped with ItemPath on Target(). A nil
// predicate matches any row.
func (p Path) Exists(predicate s.Visitable) (s.Visitable, error) {
	if err := p.requireRelation(); err != nil {
		return nil, err
	}
	return p.wrap(p.hops, predicate), nil
}

// NotExists negates the last relation of the path only; preceding hops
// keep their existential meaning.
func (p Path) NotExists(predicate s.Visitable) (s.Visitable, error) {
	if err := p.requireRelation(); err != nil {
		return nil, err
	}
	last := len(p.hops) - 1
	negated := s.NotExists(p.hopScope(last), p.hops[last].Name, predicate)
	return p.wrap(p.hops[:last], negated), nil
}

// Count builds a threshold over a to-many relation of the root entity.
func (p Path) Count(predicate s.Visitable, min int64) (s.Threshold, error) {
	if err := p.requireRelation(); err != nil {
		return s.Threshold{}, err
	}
	if len(p.hops) != 1 || p.relation.Cardinality != ToMany {
		return s.Threshold{}, errors.Wrapf(ErrUnknownPath, "\"%s\" is not a to-many relation of the root", p.expr)
	}
	if _, ok := p.scope.(s.GlobalScopeNode); !ok {
		return s.Threshold{}, errors.Wrapf(ErrUnknownPath, "threshold \"%s\" must start at the root", p.expr)
	}
	return s.Threshold{Relation: p.relation.Name, Predicate: predicate, Min: min}, nil
}
