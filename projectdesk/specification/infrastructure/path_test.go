package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

func TestPathResolve(t *testing.T) {
	m := newTestModel(t)

	p, err := m.Path("Project", "tasks.any.assignee.email")
	require.NoError(t, err)
	assert.Equal(t, "tasks.any.assignee.email", p.String())
	assert.Equal(t, "User", p.Target())
	f, ok := p.Field()
	require.True(t, ok)
	assert.Equal(t, "email", f.Column)

	invalid := []string{
		"owner",
		"name.first",
		"tasks.assignee",
		"tasks.any.assignee.any.email",
		"tasks.any.label",
	}
	for _, expr := range invalid {
		t.Run(expr, func(t *testing.T) {
			_, err := m.Path("Project", expr)
			assert.ErrorIs(t, err, ErrUnknownPath)
		})
	}

	_, err = m.Path("Invoice", "id")
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.Panics(t, func() { m.MustPath("Project", "owner") })
}

func TestPathComparisons(t *testing.T) {
	m := newTestModel(t)

	predicate, err := m.MustPath("Project", "tasks.any.assignee.email").Contains("alice")
	require.NoError(t, err)
	assert.Equal(t, `ANY $.tasks (ANY @.assignee (@.email ~ "alice"))`, s.Format(predicate))

	predicate, err = m.MustPath("Project", "budget").Gt(100)
	require.NoError(t, err)
	assert.Equal(t, `$.budget > 100`, s.Format(predicate))
	assert.Equal(t, s.GreaterThan(s.Field(s.GlobalScope(), "budget"), s.Value(float64(100))), predicate)

	predicate, err = m.MustItemPath("Task", "status").Eq("Completed")
	require.NoError(t, err)
	assert.Equal(t, `@.status = "Completed"`, s.Format(predicate))

	predicate, err = m.MustPath("Project", "endDate").IsNull()
	require.NoError(t, err)
	assert.Equal(t, `$.endDate IS NULL`, s.Format(predicate))
}

func TestPathComparisonErrors(t *testing.T) {
	m := newTestModel(t)

	_, err := m.MustPath("Project", "tasks.any.status").Eq("Archived")
	assert.ErrorIs(t, err, ErrInvalidEnumValue)

	_, err = m.MustPath("Project", "budget").Contains("1")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	_, err = m.MustPath("Project", "budget").Gt("plenty")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = m.MustPath("Project", "name").Eq(nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = m.MustPath("Task", "tags").Eq("x")
	assert.ErrorIs(t, err, ErrUnknownPath)

	_, err = m.MustPath("User", "active").Gt(true)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestPathQuantifiers(t *testing.T) {
	m := newTestModel(t)
	named, err := m.MustItemPath("Tag", "name").Eq("backend")
	require.NoError(t, err)

	predicate, err := m.MustPath("Project", "tasks").NotExists(nil)
	require.NoError(t, err)
	assert.Equal(t, `NOT ANY $.tasks`, s.Format(predicate))

	predicate, err = m.MustPath("Project", "tasks.any.tags").NotExists(named)
	require.NoError(t, err)
	assert.Equal(t, `ANY $.tasks (NOT ANY @.tags (@.name = "backend"))`, s.Format(predicate))

	predicate, err = m.MustPath("Project", "tasks.any.tags").Exists(named)
	require.NoError(t, err)
	assert.Equal(t, `ANY $.tasks (ANY @.tags (@.name = "backend"))`, s.Format(predicate))

	_, err = m.MustPath("Project", "name").Exists(nil)
	assert.ErrorIs(t, err, ErrUnknownPath)
}

func TestPathCount(t *testing.T) {
	m := newTestModel(t)
	completed, err := m.MustItemPath("Task", "status").Eq("Completed")
	require.NoError(t, err)

	threshold, err := m.MustPath("Project", "tasks").Count(completed, 2)
	require.NoError(t, err)
	assert.Equal(t, s.Threshold{Relation: "tasks", Predicate: completed, Min: 2}, threshold)

	_, err = m.MustPath("Project", "tasks.any.tags").Count(nil, 1)
	assert.ErrorIs(t, err, ErrUnknownPath)

	_, err = m.MustPath("Task", "assignee").Count(nil, 1)
	assert.ErrorIs(t, err, ErrUnknownPath)

	_, err = m.MustItemPath("Task", "tags").Count(nil, 1)
	assert.ErrorIs(t, err, ErrUnknownPath)
}
