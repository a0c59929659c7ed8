package typed

import (
	"time"

	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

// Scope is where a field is read from: s.GlobalScope() for the root
// entity, s.Item() for the current row of an enclosing quantifier.
type Scope = s.EmptiableObject

type leaf struct {
	field s.FieldNode
}

func newLeaf(scope Scope, name string) leaf {
	return leaf{field: s.Field(scope, name)}
}

func (l leaf) Delegate() s.Visitable {
	return l.field
}

func (l leaf) IsNull() s.Visitable {
	return s.IsNull(l.field)
}

func (l leaf) IsNotNull() s.Visitable {
	return s.IsNotNull(l.field)
}

// Text is a string field.
type Text struct {
	leaf
}

func NewText(scope Scope, name string) Text {
	return Text{newLeaf(scope, name)}
}

func (t Text) Eq(value string) s.Visitable {
	return s.Equal(t.field, s.Value(value))
}

func (t Text) Ne(value string) s.Visitable {
	return s.NotEqual(t.field, s.Value(value))
}

// Contains matches a case-insensitive substring.
func (t Text) Contains(value string) s.Visitable {
	return s.Contains(t.field, s.Value(value))
}

func (t Text) EqualFold(value string) s.Visitable {
	return s.EqualFold(t.field, s.Value(value))
}

// Integer is an int64 field, typically an identity or a foreign key.
type Integer struct {
	leaf
}

func NewInteger(scope Scope, name string) Integer {
	return Integer{newLeaf(scope, name)}
}

func (i Integer) Eq(value int64) s.Visitable {
	return s.Equal(i.field, s.Value(value))
}

func (i Integer) Ne(value int64) s.Visitable {
	return s.NotEqual(i.field, s.Value(value))
}

func (i Integer) Gt(value int64) s.Visitable {
	return s.GreaterThan(i.field, s.Value(value))
}

func (i Integer) Gte(value int64) s.Visitable {
	return s.GreaterThanEqual(i.field, s.Value(value))
}

func (i Integer) Lt(value int64) s.Visitable {
	return s.LessThan(i.field, s.Value(value))
}

func (i Integer) Lte(value int64) s.Visitable {
	return s.LessThanEqual(i.field, s.Value(value))
}

// Number is a float64 field such as an amount.
type Number struct {
	leaf
}

func NewNumber(scope Scope, name string) Number {
	return Number{newLeaf(scope, name)}
}

func (n Number) Gt(value float64) s.Visitable {
	return s.GreaterThan(n.field, s.Value(value))
}

func (n Number) Gte(value float64) s.Visitable {
	return s.GreaterThanEqual(n.field, s.Value(value))
}

func (n Number) Lt(value float64) s.Visitable {
	return s.LessThan(n.field, s.Value(value))
}

func (n Number) Lte(value float64) s.Visitable {
	return s.LessThanEqual(n.field, s.Value(value))
}

// GtField compares two number fields, e.g. spent > total.
func (n Number) GtField(other Number) s.Visitable {
	return s.GreaterThan(n.field, other.field)
}

// Timestamp is a time.Time field.
type Timestamp struct {
	leaf
}

func NewTimestamp(scope Scope, name string) Timestamp {
	return Timestamp{newLeaf(scope, name)}
}

func (t Timestamp) Eq(value time.Time) s.Visitable {
	return s.Equal(t.field, s.Value(value))
}

func (t Timestamp) Before(value time.Time) s.Visitable {
	return s.Before(t.field, s.Value(value))
}

func (t Timestamp) After(value time.Time) s.Visitable {
	return s.After(t.field, s.Value(value))
}

// AtOrAfter is the inclusive lower bound of a range.
func (t Timestamp) AtOrAfter(value time.Time) s.Visitable {
	return s.GreaterThanEqual(t.field, s.Value(value))
}

// AtOrBefore is the inclusive upper bound of a range.
func (t Timestamp) AtOrBefore(value time.Time) s.Visitable {
	return s.LessThanEqual(t.field, s.Value(value))
}

// Enum is a field restricted to the values of T. Values are stored as
// their string form.
type Enum[T ~string] struct {
	leaf
}

func NewEnum[T ~string](scope Scope, name string) Enum[T] {
	return Enum[T]{newLeaf(scope, name)}
}

func (e Enum[T]) Eq(value T) s.Visitable {
	return s.Equal(e.field, s.Value(string(value)))
}

func (e Enum[T]) Ne(value T) s.Visitable {
	return s.NotEqual(e.field, s.Value(string(value)))
}
