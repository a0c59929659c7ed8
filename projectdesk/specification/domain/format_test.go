package specification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		predicate Visitable
		want      string
	}{
		{"nil", nil, "TRUE"},
		{"field", Contains(Field(GlobalScope(), "name"), Value("acme")), `$.name ~ "acme"`},
		{
			"or inside and",
			And(Equal(Field(GlobalScope(), "id"), Value(int64(1))), Or(Value(true), Value(false))),
			`$.id = 1 AND (true OR false)`,
		},
		{
			"quantifier",
			Exists(GlobalScope(), "tasks", Before(Field(Item(), "dueDate"), Value(due))),
			`ANY $.tasks (@.dueDate < "2024-03-01T00:00:00Z")`,
		},
		{
			"negated quantifier without predicate",
			NotExists(GlobalScope(), "comments", nil),
			`NOT ANY $.comments`,
		},
		{"null check", IsNull(Field(GlobalScope(), "endDate")), `$.endDate IS NULL`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.predicate))
		})
	}
}

func TestCriteriaString(t *testing.T) {
	criteria := Criteria{
		Where: Equal(Field(GlobalScope(), "name"), Value("x")),
		Thresholds: []Threshold{
			{Relation: "tasks", Predicate: Equal(Field(Item(), "status"), Value("Completed")), Min: 2},
			{Relation: "comments", Min: 0},
		},
	}
	assert.Equal(t, `$.name = "x" AND COUNT $.tasks (@.status = "Completed") >= 2`, criteria.String())
}
