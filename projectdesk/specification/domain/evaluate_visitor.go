package specification

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/specification/domain/operators"
)

// Context exposes an entity to in-memory evaluation. Get returns plain
// values (string, int64, float64, bool, time.Time or nil) for fields, and
// a Context, a []Context or nil for relations.
type Context interface {
	Get(string) (any, error)
}

func NewEvaluateVisitor(context Context, registry *operators.OperatorRegistry) *EvaluateVisitor {
	return &EvaluateVisitor{
		Context:  context,
		root:     context,
		registry: registry,
	}
}

type EvaluateVisitor struct {
	currentValue any
	currentItem  Context
	root         Context
	stack        []Context
	registry     *operators.OperatorRegistry
	Context
}

func (v *EvaluateVisitor) push(ctx Context) {
	v.stack = append(v.stack, v.Context)
	v.Context = ctx
}

func (v *EvaluateVisitor) pop() {
	v.Context = v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
}

func (v *EvaluateVisitor) get(name string) (any, error) {
	if v.Context == nil {
		return nil, nil
	}
	return v.Context.Get(name)
}

func (v EvaluateVisitor) CurrentValue() any {
	return v.currentValue
}

func (v *EvaluateVisitor) SetCurrentValue(val any) {
	v.currentValue = val
}

func (v *EvaluateVisitor) VisitGlobalScope(_ GlobalScopeNode) error {
	v.push(v.root)
	return nil
}

func (v *EvaluateVisitor) VisitItem(_ ItemNode) error {
	v.push(v.currentItem)
	return nil
}

func (v *EvaluateVisitor) VisitObject(n ObjectNode) error {
	err := n.Parent().Accept(v)
	if err != nil {
		return err
	}
	value, err := v.get(n.Name())
	v.pop()
	if err != nil {
		return err
	}
	obj, err := asContext(value)
	if err != nil {
		return errors.Wrapf(err, "relation \"%s\"", n.Name())
	}
	v.push(obj)
	return nil
}

func (v *EvaluateVisitor) VisitCollection(n CollectionNode) error {
	err := n.Parent().Accept(v)
	if err != nil {
		return err
	}
	items := itemsOf(v.Context)
	v.pop()

	outerItem := v.currentItem
	defer func() { v.currentItem = outerItem }()

	result := false
	for i := range items {
		if n.Predicate() == nil {
			result = true
			break
		}
		v.currentItem = items[i]
		err := n.Predicate().Accept(v)
		if err != nil {
			return err
		}
		if matched, ok := v.CurrentValue().(bool); ok && matched {
			result = true
			break
		}
	}
	v.SetCurrentValue(result)
	return nil
}

func (v *EvaluateVisitor) VisitField(n FieldNode) error {
	err := n.Object().Accept(v)
	if err != nil {
		return err
	}
	value, err := v.get(n.Name())
	v.pop()
	if err != nil {
		return err
	}
	v.SetCurrentValue(value)
	return nil
}

func (v *EvaluateVisitor) VisitValue(n ValueNode) error {
	v.SetCurrentValue(n.Value())
	return nil
}

func (v *EvaluateVisitor) VisitPrefix(n PrefixNode) error {
	err := n.Operand().Accept(v)
	if err != nil {
		return err
	}
	result, err := v.registry.ExecUnary(n.Operator(), v.CurrentValue())
	if err != nil {
		return err
	}
	v.SetCurrentValue(result)
	return nil
}

func (v *EvaluateVisitor) VisitPostfix(n PostfixNode) error {
	err := n.Operand().Accept(v)
	if err != nil {
		return err
	}
	result, err := v.registry.ExecUnary(n.Operator(), v.CurrentValue())
	if err != nil {
		return err
	}
	v.SetCurrentValue(result)
	return nil
}

func (v *EvaluateVisitor) VisitInfix(n InfixNode) error {
	err := n.Left().Accept(v)
	if err != nil {
		return err
	}
	left := v.CurrentValue()
	err = n.Right().Accept(v)
	if err != nil {
		return err
	}
	right := v.CurrentValue()
	result, err := v.registry.ExecBinary(left, n.Operator(), right)
	if err != nil {
		return err
	}
	v.SetCurrentValue(result)
	return nil
}

// Result reports the outcome of the visited predicate. NULL counts as
// false, the way a WHERE clause treats it.
func (v EvaluateVisitor) Result() (bool, error) {
	switch result := v.CurrentValue().(type) {
	case nil:
		return false, nil
	case bool:
		return result, nil
	default:
		return false, errors.Wrapf(ErrNotBoolean, "got %T", result)
	}
}

// Match evaluates predicate against ctx. A nil predicate matches everything.
func Match(ctx Context, predicate Visitable) (bool, error) {
	if predicate == nil {
		return true, nil
	}
	v := NewEvaluateVisitor(ctx, defaultRegistry)
	err := predicate.Accept(v)
	if err != nil {
		return false, err
	}
	return v.Result()
}

var defaultRegistry = operators.NewDefaultRegistry()

type CollectionContext struct {
	items []Context
}

func NewCollectionContext(items []Context) CollectionContext {
	return CollectionContext{items: items}
}

func (c CollectionContext) Get(slice string) (any, error) {
	if slice == "*" {
		return c.items, nil
	}
	return nil, fmt.Errorf("unsupported slice type \"%s\"", slice)
}

func asContext(value any) (Context, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case []Context:
		return NewCollectionContext(typed), nil
	case Context:
		return typed, nil
	}
	return nil, fmt.Errorf("%T is not a Context", value)
}

// itemsOf treats a to-one relation as a collection of zero or one rows.
func itemsOf(ctx Context) []Context {
	switch typed := ctx.(type) {
	case nil:
		return nil
	case CollectionContext:
		return typed.items
	}
	return []Context{ctx}
}
