package specification

import (
	"fmt"
	"strings"
)

// Threshold requires at least Min rows of the root's Relation to satisfy
// Predicate. The predicate is scoped to the related row through Item(); a
// nil predicate counts every related row. Min <= 0 imposes nothing.
type Threshold struct {
	Relation  string
	Predicate Visitable
	Min       int64
}

func (t Threshold) Active() bool {
	return t.Min > 0
}

// Match counts matching related rows of ctx in memory.
func (t Threshold) Match(ctx Context) (bool, error) {
	if !t.Active() {
		return true, nil
	}
	value, err := ctx.Get(t.Relation)
	if err != nil {
		return false, err
	}
	related, err := asContext(value)
	if err != nil {
		return false, err
	}
	var count int64
	for _, item := range itemsOf(related) {
		ok, err := matchItem(ctx, item, t.Predicate)
		if err != nil {
			return false, err
		}
		if ok {
			count++
		}
	}
	return count >= t.Min, nil
}

func (t Threshold) String() string {
	if t.Predicate == nil {
		return fmt.Sprintf("COUNT $.%s >= %d", t.Relation, t.Min)
	}
	return fmt.Sprintf("COUNT $.%s (%s) >= %d", t.Relation, Format(t.Predicate), t.Min)
}

func matchItem(root, item Context, predicate Visitable) (bool, error) {
	if predicate == nil {
		return true, nil
	}
	v := NewEvaluateVisitor(root, defaultRegistry)
	v.currentItem = item
	if err := predicate.Accept(v); err != nil {
		return false, err
	}
	return v.Result()
}

// Criteria is a compiled filter: a row predicate plus aggregate thresholds
// over the root's relations.
type Criteria struct {
	Where      Visitable
	Thresholds []Threshold
}

// Active returns the thresholds that constrain anything.
func (c Criteria) Active() []Threshold {
	var active []Threshold
	for _, t := range c.Thresholds {
		if t.Active() {
			active = append(active, t)
		}
	}
	return active
}

// Match evaluates the criteria against ctx in memory.
func (c Criteria) Match(ctx Context) (bool, error) {
	ok, err := Match(ctx, c.Where)
	if err != nil || !ok {
		return false, err
	}
	for _, t := range c.Active() {
		ok, err := t.Match(ctx)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (c Criteria) String() string {
	parts := []string{Format(c.Where)}
	for _, t := range c.Active() {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " AND ")
}
