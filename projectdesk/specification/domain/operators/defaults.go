package operators

import (
	"cmp"
	"strings"
	"time"
)

func registerComparison[T cmp.Ordered](reg *OperatorRegistry) {
	RegisterBinary[T, T](reg, OperatorEq, func(a, b T) (any, error) { return a == b, nil })
	RegisterBinary[T, T](reg, OperatorNe, func(a, b T) (any, error) { return a != b, nil })
	RegisterBinary[T, T](reg, OperatorGt, func(a, b T) (any, error) { return a > b, nil })
	RegisterBinary[T, T](reg, OperatorGte, func(a, b T) (any, error) { return a >= b, nil })
	RegisterBinary[T, T](reg, OperatorLt, func(a, b T) (any, error) { return a < b, nil })
	RegisterBinary[T, T](reg, OperatorLte, func(a, b T) (any, error) { return a <= b, nil })
}

func registerWidening[N int | int64](reg *OperatorRegistry) {
	for _, op := range []Operator{OperatorEq, OperatorNe, OperatorGt, OperatorGte, OperatorLt, OperatorLte} {
		fn := compareFloat(op)
		RegisterBinary[N, float64](reg, op, func(a N, b float64) (any, error) { return fn(float64(a), b), nil })
		RegisterBinary[float64, N](reg, op, func(a float64, b N) (any, error) { return fn(a, float64(b)), nil })
	}
}

func compareFloat(op Operator) func(a, b float64) bool {
	switch op {
	case OperatorEq:
		return func(a, b float64) bool { return a == b }
	case OperatorNe:
		return func(a, b float64) bool { return a != b }
	case OperatorGt:
		return func(a, b float64) bool { return a > b }
	case OperatorGte:
		return func(a, b float64) bool { return a >= b }
	case OperatorLt:
		return func(a, b float64) bool { return a < b }
	default:
		return func(a, b float64) bool { return a <= b }
	}
}

// NewDefaultRegistry creates a registry with PostgreSQL-compatible operators
// for the value types produced by entity contexts.
func NewDefaultRegistry() *OperatorRegistry {
	reg := NewOperatorRegistry()

	// bool
	RegisterBinary[bool, bool](reg, OperatorEq, func(a, b bool) (any, error) { return a == b, nil })
	RegisterBinary[bool, bool](reg, OperatorNe, func(a, b bool) (any, error) { return a != b, nil })
	RegisterUnary[bool](reg, OperatorNot, func(a bool) (any, error) { return !a, nil })

	// numbers
	registerComparison[int](reg)
	registerComparison[int64](reg)
	registerComparison[float64](reg)
	registerWidening[int](reg)
	registerWidening[int64](reg)

	// string
	registerComparison[string](reg)
	RegisterBinary[string, string](reg, OperatorContains, func(a, b string) (any, error) {
		return strings.Contains(strings.ToLower(a), strings.ToLower(b)), nil
	})
	RegisterBinary[string, string](reg, OperatorEqualFold, func(a, b string) (any, error) {
		return strings.EqualFold(a, b), nil
	})

	// time.Time (timestamp)
	RegisterBinary[time.Time, time.Time](reg, OperatorEq, func(a, b time.Time) (any, error) { return a.Equal(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorNe, func(a, b time.Time) (any, error) { return !a.Equal(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorGt, func(a, b time.Time) (any, error) { return a.After(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorGte, func(a, b time.Time) (any, error) { return !a.Before(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorLt, func(a, b time.Time) (any, error) { return a.Before(b), nil })
	RegisterBinary[time.Time, time.Time](reg, OperatorLte, func(a, b time.Time) (any, error) { return !a.After(b), nil })

	return reg
}
