package repository

import (
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects a page; Number starts at 1. Ties in Sort are always
// broken by the primary key ascending.
type PageRequest struct {
	Number int
	Size   int
	Sort   []spec.Order
}

// Query is a compiled filter over one root entity. A nil Where and no
// active thresholds select every row.
type Query struct {
	Where      s.Visitable
	Thresholds []s.Threshold
	Page       PageRequest
}

func (q Query) Criteria() s.Criteria {
	return s.Criteria{Where: q.Where, Thresholds: q.Thresholds}
}

func (q Query) String() string {
	return q.Criteria().String()
}

type Page[T any] struct {
	Items  []T
	Total  int64
	Number int
	Size   int
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages()
}
