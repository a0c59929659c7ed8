package specification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"

	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/specification/domain/operators"
)

// PlaceholderFormat selects how bound parameters are written.
type PlaceholderFormat int

const (
	// Dollar writes $1, $2, ... as PostgreSQL expects.
	Dollar PlaceholderFormat = iota
	// Question writes ? for drivers such as SQLite.
	Question
)

type frame struct {
	entity *EntityMapping
	alias  string
}

// PostgresqlVisitor compiles predicates into SQL conditions over the model.
// Fields are qualified by the alias of their scope: the root table for
// GlobalScope, the innermost correlated subquery for Item. Every relation
// quantifier becomes its own correlated EXISTS subquery, so two quantifiers
// over the same relation may be satisfied by different rows and root rows
// are never multiplied by joins.
//
// Parameters accumulate across fragments, so fragments must be compiled in
// the order they appear in the final statement.
type PostgresqlVisitor struct {
	model             *Model
	sql               string
	placeholder       PlaceholderFormat
	parameters        []any
	precedence        int
	precedenceMapping map[string]int
	frames            []frame
	aliasCounter      int
}

func NewPostgresqlVisitor(model *Model, root *EntityMapping, placeholder PlaceholderFormat) *PostgresqlVisitor {
	v := &PostgresqlVisitor{
		model:             model,
		placeholder:       placeholder,
		precedenceMapping: make(map[string]int),
		frames:            []frame{{entity: root, alias: root.Table()}},
	}
	// https://www.postgresql.org/docs/14/sql-syntax-lexical.html#SQL-PRECEDENCE-TABLE
	v.setPrecedence(100, "(any other operator) LEFT")
	v.setPrecedence(90, "LIKE NON", "~ NON")
	v.setPrecedence(80, "< NON", "> NON", "= NON", "<= NON", ">= NON", "!= NON", "=~ NON")
	v.setPrecedence(70, "IS NULL NON", "IS NOT NULL NON")
	v.setPrecedence(60, "NOT RIGHT")
	v.setPrecedence(50, "AND LEFT")
	v.setPrecedence(40, "OR LEFT")
	return v
}

func (v PostgresqlVisitor) getNodePrecedenceKey(n s.Operable) string {
	return fmt.Sprintf("%s %s", n.Operator(), n.Associativity())
}

func (v PostgresqlVisitor) setPrecedence(precedence int, operators ...string) {
	for _, op := range operators {
		v.precedenceMapping[op] = precedence
	}
}

func (v *PostgresqlVisitor) visit(precedenceKey string, callable func() error) error {
	outerPrecedence := v.precedence
	innerPrecedence, ok := v.precedenceMapping[precedenceKey]
	if !ok {
		innerPrecedence = v.precedenceMapping["(any other operator) LEFT"]
	}
	v.precedence = innerPrecedence
	if innerPrecedence < outerPrecedence {
		v.sql += "("
	}
	err := callable()
	if err != nil {
		return err
	}
	if innerPrecedence < outerPrecedence {
		v.sql += ")"
	}
	v.precedence = outerPrecedence
	return nil
}

// Fragment compiles predicate as a standalone condition. With and=true the
// condition is meant to be joined by AND, so a top-level OR is parenthesised.
func (v *PostgresqlVisitor) Fragment(predicate s.Visitable, and bool) (string, error) {
	v.sql = ""
	v.precedence = 0
	if and {
		v.precedence = v.precedenceMapping["AND LEFT"]
	}
	if err := predicate.Accept(v); err != nil {
		return "", err
	}
	result := v.sql
	v.sql = ""
	v.precedence = 0
	return result, nil
}

// Bind appends a parameter and returns its placeholder. Times are bound in
// UTC: SQLite compares them as text.
func (v *PostgresqlVisitor) Bind(value any) string {
	switch t := value.(type) {
	case time.Time:
		value = t.UTC()
	case *time.Time:
		if t != nil {
			value = t.UTC()
		}
	}
	v.parameters = append(v.parameters, value)
	if v.placeholder == Question {
		return "?"
	}
	return "$" + strconv.Itoa(len(v.parameters))
}

func (v *PostgresqlVisitor) Parameters() []any {
	return v.parameters
}

func (v *PostgresqlVisitor) root() frame {
	return v.frames[0]
}

func (v *PostgresqlVisitor) current() frame {
	return v.frames[len(v.frames)-1]
}

func (v *PostgresqlVisitor) push(f frame) {
	v.frames = append(v.frames, f)
}

func (v *PostgresqlVisitor) pop() {
	v.frames = v.frames[:len(v.frames)-1]
}

func (v *PostgresqlVisitor) nextAlias(table string) string {
	v.aliasCounter++
	return fmt.Sprintf("%s_%d", inflection.Singular(table), v.aliasCounter)
}

func (v *PostgresqlVisitor) scope(obj s.EmptiableObject) (frame, error) {
	switch obj.(type) {
	case s.GlobalScopeNode:
		return v.root(), nil
	case s.ItemNode:
		return v.current(), nil
	}
	return frame{}, errors.Wrapf(ErrUnsupportedNode, "scope \"%s\" must be navigated with a quantifier", obj.Name())
}

func (v *PostgresqlVisitor) relation(f frame, name string) (RelationMapping, *EntityMapping, error) {
	r, ok := f.entity.Relation(name)
	if !ok {
		return RelationMapping{}, nil, errors.Wrapf(ErrUnknownPath, "\"%s\" is not a relation of %s", name, f.entity.Name())
	}
	return r, v.model.entities[r.Target], nil
}

func (v *PostgresqlVisitor) VisitGlobalScope(_ s.GlobalScopeNode) error {
	return nil
}

func (v *PostgresqlVisitor) VisitItem(_ s.ItemNode) error {
	return nil
}

func (v *PostgresqlVisitor) VisitObject(n s.ObjectNode) error {
	return errors.Wrapf(ErrUnsupportedNode, "relation \"%s\" outside of a quantifier", n.Name())
}

func (v *PostgresqlVisitor) VisitCollection(n s.CollectionNode) error {
	obj, ok := n.Parent().(s.ObjectNode)
	if !ok {
		return errors.Wrapf(ErrUnsupportedNode, "quantifier over \"%s\"", n.Parent().Name())
	}
	parent, err := v.scope(obj.Parent())
	if err != nil {
		return err
	}
	rel, target, err := v.relation(parent, obj.Name())
	if err != nil {
		return err
	}

	alias := v.nextAlias(target.Table())
	if rel.Through == nil {
		v.sql += "EXISTS (SELECT 1 FROM " + target.Table() + " AS " + alias + " WHERE "
		v.sql += foreignKeyConditions(alias, parent.alias, rel.ForeignKeys)
	} else {
		link := v.nextAlias(rel.Through.Table)
		v.sql += "EXISTS (SELECT 1 FROM " + rel.Through.Table + " AS " + link
		v.sql += " JOIN " + target.Table() + " AS " + alias
		v.sql += " ON " + alias + "." + target.Key().Column + " = " + link + "." + rel.Through.ChildColumn
		v.sql += " WHERE " + link + "." + rel.Through.ParentColumn + " = " + parent.alias + "." + parent.entity.Key().Column
	}

	if n.Predicate() != nil {
		v.sql += " AND "
		outerPrecedence := v.precedence
		v.precedence = v.precedenceMapping["AND LEFT"]
		v.push(frame{entity: target, alias: alias})
		err = n.Predicate().Accept(v)
		v.pop()
		v.precedence = outerPrecedence
		if err != nil {
			return err
		}
	}
	v.sql += ")"
	return nil
}

func foreignKeyConditions(childAlias, parentAlias string, keys []ForeignKeyPair) string {
	conditions := make([]string, 0, len(keys))
	for _, fk := range keys {
		conditions = append(conditions, childAlias+"."+fk.ChildColumn+" = "+parentAlias+"."+fk.ParentColumn)
	}
	return strings.Join(conditions, " AND ")
}

func (v *PostgresqlVisitor) VisitField(n s.FieldNode) error {
	f, err := v.scope(n.Object())
	if err != nil {
		return err
	}
	field, ok := f.entity.Field(n.Name())
	if !ok {
		return errors.Wrapf(ErrUnknownPath, "\"%s\" is not a field of %s", n.Name(), f.entity.Name())
	}
	v.sql += f.alias + "." + field.Column
	return nil
}

func (v *PostgresqlVisitor) VisitValue(n s.ValueNode) error {
	v.sql += v.Bind(n.Value())
	return nil
}

func (v *PostgresqlVisitor) VisitPrefix(node s.PrefixNode) error {
	precedenceKey := v.getNodePrecedenceKey(node)
	return v.visit(precedenceKey, func() error {
		v.sql += fmt.Sprintf("%s ", node.Operator())
		return node.Operand().Accept(v)
	})
}

func (v *PostgresqlVisitor) VisitInfix(n s.InfixNode) error {
	switch n.Operator() {
	case operators.OperatorContains:
		return v.visitContains(n)
	case operators.OperatorEqualFold:
		return v.visitEqualFold(n)
	}
	precedenceKey := v.getNodePrecedenceKey(n)
	return v.visit(precedenceKey, func() error {
		err := n.Left().Accept(v)
		if err != nil {
			return err
		}
		v.sql += fmt.Sprintf(" %s ", n.Operator())
		return n.Right().Accept(v)
	})
}

// visitContains renders LOWER(col) LIKE LOWER('%value%') with LIKE
// wildcards in value escaped. Both sides fold in the database, so the match
// is as case-insensitive as its LOWER: SQLite folds ASCII letters only.
func (v *PostgresqlVisitor) visitContains(n s.InfixNode) error {
	pattern, err := stringOperand(n)
	if err != nil {
		return err
	}
	return v.visit(v.getNodePrecedenceKey(n), func() error {
		v.sql += "LOWER("
		if err := n.Left().Accept(v); err != nil {
			return err
		}
		v.sql += ") LIKE LOWER(" + v.Bind("%"+likeEscaper.Replace(pattern)+"%") + `) ESCAPE '\'`
		return nil
	})
}

func (v *PostgresqlVisitor) visitEqualFold(n s.InfixNode) error {
	value, err := stringOperand(n)
	if err != nil {
		return err
	}
	return v.visit(v.getNodePrecedenceKey(n), func() error {
		v.sql += "LOWER("
		if err := n.Left().Accept(v); err != nil {
			return err
		}
		v.sql += ") = LOWER(" + v.Bind(value) + ")"
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func stringOperand(n s.InfixNode) (string, error) {
	value, ok := n.Right().(s.ValueNode)
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedNode, "operator \"%s\" requires a value on the right", n.Operator())
	}
	str, ok := value.Value().(string)
	if !ok {
		return "", errors.Wrapf(ErrTypeMismatch, "operator \"%s\" requires a string, got %T", n.Operator(), value.Value())
	}
	return str, nil
}

func (v *PostgresqlVisitor) VisitPostfix(node s.PostfixNode) error {
	precedenceKey := v.getNodePrecedenceKey(node)
	return v.visit(precedenceKey, func() error {
		err := node.Operand().Accept(v)
		if err != nil {
			return err
		}
		v.sql += fmt.Sprintf(" %s", node.Operator())
		return nil
	})
}

// ThresholdJoin renders the LEFT JOIN feeding a threshold and the COUNT
// expression that goes into HAVING.
func (v *PostgresqlVisitor) ThresholdJoin(t s.Threshold) (join, count string, err error) {
	root := v.root()
	rel, target, err := v.relation(root, t.Relation)
	if err != nil {
		return "", "", err
	}
	alias := v.nextAlias(target.Table())
	if rel.Through == nil {
		join = " LEFT JOIN " + target.Table() + " AS " + alias +
			" ON " + foreignKeyConditions(alias, root.alias, rel.ForeignKeys)
	} else {
		link := v.nextAlias(rel.Through.Table)
		join = " LEFT JOIN " + rel.Through.Table + " AS " + link +
			" ON " + link + "." + rel.Through.ParentColumn + " = " + root.alias + "." + root.entity.Key().Column +
			" LEFT JOIN " + target.Table() + " AS " + alias +
			" ON " + alias + "." + target.Key().Column + " = " + link + "." + rel.Through.ChildColumn
	}
	if t.Predicate != nil {
		v.push(frame{entity: target, alias: alias})
		condition, err := v.Fragment(t.Predicate, true)
		v.pop()
		if err != nil {
			return "", "", err
		}
		join += " AND " + condition
	}
	return join, "COUNT(DISTINCT " + alias + "." + target.Key().Column + ")", nil
}
