package specification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/krew-solutions/projectdesk/projectdesk/specification/domain/operators"
)

// Format renders a predicate in a JSONPath-like notation for logs and
// diagnostics, e.g. `$.name ~ "acme" AND ANY $.tasks (@.status = "Completed")`.
// A nil predicate renders as TRUE.
func Format(predicate Visitable) string {
	if predicate == nil {
		return "TRUE"
	}
	v := &formatVisitor{}
	if err := predicate.Accept(v); err != nil {
		return fmt.Sprintf("<invalid predicate: %v>", err)
	}
	return v.buf.String()
}

var formatPrecedence = map[operators.Operator]int{
	operators.OperatorOr:  1,
	operators.OperatorAnd: 2,
	operators.OperatorNot: 3,
}

type formatVisitor struct {
	buf        strings.Builder
	precedence int
}

func (v *formatVisitor) nested(op operators.Operator, callable func() error) error {
	outer := v.precedence
	inner, ok := formatPrecedence[op]
	if !ok {
		inner = 4
	}
	v.precedence = inner
	if inner < outer {
		v.buf.WriteString("(")
	}
	err := callable()
	if inner < outer {
		v.buf.WriteString(")")
	}
	v.precedence = outer
	return err
}

func (v *formatVisitor) VisitGlobalScope(_ GlobalScopeNode) error {
	v.buf.WriteString("$")
	return nil
}

func (v *formatVisitor) VisitItem(_ ItemNode) error {
	v.buf.WriteString("@")
	return nil
}

func (v *formatVisitor) VisitObject(n ObjectNode) error {
	if err := n.Parent().Accept(v); err != nil {
		return err
	}
	v.buf.WriteString(".")
	v.buf.WriteString(n.Name())
	return nil
}

func (v *formatVisitor) VisitCollection(n CollectionNode) error {
	v.buf.WriteString("ANY ")
	if err := n.Parent().Accept(v); err != nil {
		return err
	}
	if n.Predicate() == nil {
		return nil
	}
	v.buf.WriteString(" (")
	outer := v.precedence
	v.precedence = 0
	err := n.Predicate().Accept(v)
	v.precedence = outer
	v.buf.WriteString(")")
	return err
}

func (v *formatVisitor) VisitField(n FieldNode) error {
	if err := n.Object().Accept(v); err != nil {
		return err
	}
	v.buf.WriteString(".")
	v.buf.WriteString(n.Name())
	return nil
}

func (v *formatVisitor) VisitValue(n ValueNode) error {
	switch value := n.Value().(type) {
	case nil:
		v.buf.WriteString("NULL")
	case string:
		v.buf.WriteString(strconv.Quote(value))
	case time.Time:
		v.buf.WriteString(strconv.Quote(value.Format(time.RFC3339)))
	default:
		fmt.Fprintf(&v.buf, "%v", value)
	}
	return nil
}

func (v *formatVisitor) VisitPrefix(n PrefixNode) error {
	return v.nested(n.Operator(), func() error {
		v.buf.WriteString(string(n.Operator()))
		v.buf.WriteString(" ")
		return n.Operand().Accept(v)
	})
}

func (v *formatVisitor) VisitInfix(n InfixNode) error {
	return v.nested(n.Operator(), func() error {
		if err := n.Left().Accept(v); err != nil {
			return err
		}
		fmt.Fprintf(&v.buf, " %s ", n.Operator())
		return n.Right().Accept(v)
	})
}

func (v *formatVisitor) VisitPostfix(n PostfixNode) error {
	return v.nested(n.Operator(), func() error {
		if err := n.Operand().Accept(v); err != nil {
			return err
		}
		v.buf.WriteString(" ")
		v.buf.WriteString(string(n.Operator()))
		return nil
	})
}
