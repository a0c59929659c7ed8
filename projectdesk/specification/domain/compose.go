package specification

// AllOf joins the non-nil predicates with AND. A nil predicate is
// unconstrained, so it is skipped; when every predicate is nil the
// result is nil as well.
func AllOf(predicates ...Visitable) Visitable {
	return fold(And, predicates)
}

// AnyOf joins the non-nil predicates with OR, skipping nil ones like AllOf.
func AnyOf(predicates ...Visitable) Visitable {
	return fold(Or, predicates)
}

func fold(combine func(Visitable, ...Visitable) InfixNode, predicates []Visitable) Visitable {
	present := make([]Visitable, 0, len(predicates))
	for _, p := range predicates {
		if p != nil {
			present = append(present, p)
		}
	}
	switch len(present) {
	case 0:
		return nil
	case 1:
		return present[0]
	}
	return combine(present[0], present[1:]...)
}

// Exists holds when at least one row of relation matches predicate.
func Exists(scope EmptiableObject, relation string, predicate Visitable) CollectionNode {
	return Wildcard(Object(scope, relation), predicate)
}

// NotExists holds when no row of relation matches predicate.
func NotExists(scope EmptiableObject, relation string, predicate Visitable) PrefixNode {
	return Not(Exists(scope, relation, predicate))
}

func Before(left, right Visitable) InfixNode {
	return LessThan(left, right)
}

func After(left, right Visitable) InfixNode {
	return GreaterThan(left, right)
}
