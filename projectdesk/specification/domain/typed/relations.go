package typed

import (
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

// Many is a to-many relation whose rows are described by the path type T.
type Many[T any] struct {
	scope Scope
	name  string
	item  func(Scope) T
}

func NewMany[T any](scope Scope, name string, item func(Scope) T) Many[T] {
	return Many[T]{scope: scope, name: name, item: item}
}

func (m Many[T]) Name() string {
	return m.name
}

// Any holds when at least one related row satisfies the condition built
// by fn. When fn builds nothing the result is nil, i.e. unconstrained.
func (m Many[T]) Any(fn func(T) s.Visitable) s.Visitable {
	predicate := fn(m.item(s.Item()))
	if predicate == nil {
		return nil
	}
	return s.Exists(m.scope, m.name, predicate)
}

// Exists holds when the relation has at least one row.
func (m Many[T]) Exists() s.Visitable {
	return s.Exists(m.scope, m.name, nil)
}

// None holds when no related row satisfies the condition built by fn. When
// fn builds nothing, None holds for an empty relation only.
func (m Many[T]) None(fn func(T) s.Visitable) s.Visitable {
	return s.NotExists(m.scope, m.name, fn(m.item(s.Item())))
}

// Count builds a threshold on this relation. It is only meaningful on
// relations of the root entity.
func (m Many[T]) Count(fn func(T) s.Visitable, min int64) s.Threshold {
	var predicate s.Visitable
	if fn != nil {
		predicate = fn(m.item(s.Item()))
	}
	return s.Threshold{Relation: m.name, Predicate: predicate, Min: min}
}

// One is a to-one relation. It quantifies like a collection of zero or one
// rows, so a missing related row never matches.
type One[T any] struct {
	scope Scope
	name  string
	item  func(Scope) T
}

func NewOne[T any](scope Scope, name string, item func(Scope) T) One[T] {
	return One[T]{scope: scope, name: name, item: item}
}

func (o One[T]) Name() string {
	return o.name
}

// Has holds when the related row exists and satisfies the condition built
// by fn. When fn builds nothing the result is nil.
func (o One[T]) Has(fn func(T) s.Visitable) s.Visitable {
	predicate := fn(o.item(s.Item()))
	if predicate == nil {
		return nil
	}
	return s.Exists(o.scope, o.name, predicate)
}

func (o One[T]) Exists() s.Visitable {
	return s.Exists(o.scope, o.name, nil)
}

func (o One[T]) Missing() s.Visitable {
	return s.NotExists(o.scope, o.name, nil)
}
