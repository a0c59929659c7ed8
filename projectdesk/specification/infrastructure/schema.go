package specification

import (
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// FieldKind declares how values of a field are coerced and compared.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInteger
	KindNumber
	KindTimestamp
	KindEnum
	KindBoolean
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindTimestamp:
		return "timestamp"
	case KindEnum:
		return "enum"
	case KindBoolean:
		return "boolean"
	}
	return "unknown"
}

type FieldMapping struct {
	Name   string
	Column string
	Kind   FieldKind
	// Values lists the allowed values of a KindEnum field.
	Values []string
}

type Cardinality int

const (
	ToOne Cardinality = iota
	ToMany
)

// ForeignKeyPair represents a single FK column mapping
type ForeignKeyPair struct {
	// ChildColumn is the column of the related table (e.g., "project_id")
	ChildColumn string
	// ParentColumn is the column of the table the relation starts from (e.g., "id")
	ParentColumn string
}

// JoinTable links two tables of a many-to-many relation.
type JoinTable struct {
	Table string
	// ParentColumn references the key of the table the relation starts from.
	ParentColumn string
	// ChildColumn references the key of the related table.
	ChildColumn string
}

type RelationMapping struct {
	Name        string
	Target      string
	Cardinality Cardinality
	// ForeignKeys join the related table directly (supports composite keys).
	ForeignKeys []ForeignKeyPair
	// Through is set for many-to-many relations instead of ForeignKeys.
	Through *JoinTable
}

type EntityMapping struct {
	name      string
	table     string
	key       string
	fields    []FieldMapping
	relations []RelationMapping
}

func (e *EntityMapping) Name() string {
	return e.name
}

func (e *EntityMapping) Table() string {
	return e.table
}

// Key returns the field holding the row identity.
func (e *EntityMapping) Key() FieldMapping {
	f, _ := e.Field(e.key)
	return f
}

func (e *EntityMapping) Field(name string) (FieldMapping, bool) {
	for _, f := range e.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMapping{}, false
}

// Fields returns the fields in declaration order.
func (e *EntityMapping) Fields() []FieldMapping {
	return slices.Clone(e.fields)
}

func (e *EntityMapping) Relation(name string) (RelationMapping, bool) {
	for _, r := range e.relations {
		if r.Name == name {
			return r, true
		}
	}
	return RelationMapping{}, false
}

// Model is the validated graph of entities, their fields and relations.
// It is built once at startup and read-only afterwards.
type Model struct {
	entities map[string]*EntityMapping
	index    map[string]string
}

// Entity returns the mapping registered under exactly name.
func (m *Model) Entity(name string) (*EntityMapping, error) {
	e, ok := m.entities[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEntity, "\"%s\"", name)
	}
	return e, nil
}

// Lookup resolves an entity name case-insensitively, ignoring surrounding
// blanks, the way names arrive from URLs and audit requests.
func (m *Model) Lookup(name string) (*EntityMapping, error) {
	canonical, ok := m.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEntity, "\"%s\"", name)
	}
	return m.entities[canonical], nil
}

// Entities returns the registered entity names, sorted.
func (m *Model) Entities() []string {
	names := make([]string, 0, len(m.entities))
	for name := range m.entities {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func NewModelBuilder() *ModelBuilder {
	return &ModelBuilder{}
}

type ModelBuilder struct {
	entities []*EntityBuilder
}

// Entity declares an entity stored in table.
func (b *ModelBuilder) Entity(name, table string) *EntityBuilder {
	eb := &EntityBuilder{mapping: &EntityMapping{name: name, table: table, key: "id"}}
	b.entities = append(b.entities, eb)
	return eb
}

// Build validates the graph and reports every problem found at once.
func (b *ModelBuilder) Build() (*Model, error) {
	var result *multierror.Error
	m := &Model{
		entities: make(map[string]*EntityMapping, len(b.entities)),
		index:    make(map[string]string, len(b.entities)),
	}
	for _, eb := range b.entities {
		e := eb.mapping
		folded := strings.ToLower(e.name)
		if _, dup := m.index[folded]; dup {
			result = multierror.Append(result, errors.Wrapf(ErrInvalidSchema, "duplicate entity \"%s\"", e.name))
			continue
		}
		m.entities[e.name] = e
		m.index[folded] = e.name
	}
	for _, eb := range b.entities {
		result = multierror.Append(result, validateEntity(m, eb.mapping)...)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return m, nil
}

func validateEntity(m *Model, e *EntityMapping) []error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, errors.Wrapf(ErrInvalidSchema, "%s: "+format, append([]any{e.name}, args...)...))
	}
	if e.table == "" {
		invalid("table is required")
	}
	if _, ok := e.Field(e.key); !ok {
		invalid("key field \"%s\" is not declared", e.key)
	}
	seen := make(map[string]bool)
	for _, f := range e.fields {
		if seen[f.Name] {
			invalid("duplicate member \"%s\"", f.Name)
		}
		seen[f.Name] = true
		if f.Column == "" {
			invalid("field \"%s\" has no column", f.Name)
		}
		if f.Kind == KindEnum && len(f.Values) == 0 {
			invalid("enum field \"%s\" has no values", f.Name)
		}
	}
	for _, r := range e.relations {
		if seen[r.Name] {
			invalid("duplicate member \"%s\"", r.Name)
		}
		seen[r.Name] = true
		if _, ok := m.entities[r.Target]; !ok {
			invalid("relation \"%s\" targets unknown entity \"%s\"", r.Name, r.Target)
		}
		if r.Through == nil && len(r.ForeignKeys) == 0 {
			invalid("relation \"%s\" has no join columns", r.Name)
		}
		if r.Through != nil && (r.Through.Table == "" || r.Through.ParentColumn == "" || r.Through.ChildColumn == "") {
			invalid("relation \"%s\" has an incomplete join table", r.Name)
		}
	}
	return errs
}

type EntityBuilder struct {
	mapping *EntityMapping
}

// Key overrides the identity field, "id" by default.
func (b *EntityBuilder) Key(field string) *EntityBuilder {
	b.mapping.key = field
	return b
}

func (b *EntityBuilder) Field(name, column string, kind FieldKind) *EntityBuilder {
	b.mapping.fields = append(b.mapping.fields, FieldMapping{Name: name, Column: column, Kind: kind})
	return b
}

func (b *EntityBuilder) Enum(name, column string, values ...string) *EntityBuilder {
	b.mapping.fields = append(b.mapping.fields, FieldMapping{
		Name: name, Column: column, Kind: KindEnum, Values: values,
	})
	return b
}

// HasMany declares a one-to-many relation; fkColumn lives in the target table.
func (b *EntityBuilder) HasMany(name, target, fkColumn string) *EntityBuilder {
	return b.relation(name, target, ToMany, ForeignKeyPair{ChildColumn: fkColumn, ParentColumn: b.keyColumn()})
}

// HasOne declares a one-to-one relation owned by the target table.
func (b *EntityBuilder) HasOne(name, target, fkColumn string) *EntityBuilder {
	return b.relation(name, target, ToOne, ForeignKeyPair{ChildColumn: fkColumn, ParentColumn: b.keyColumn()})
}

// BelongsTo declares a to-one relation whose fkColumn lives in this table and
// references the target's "id" column.
func (b *EntityBuilder) BelongsTo(name, target, fkColumn string) *EntityBuilder {
	return b.relation(name, target, ToOne, ForeignKeyPair{ChildColumn: "id", ParentColumn: fkColumn})
}

// ManyToMany declares a relation through a join table.
func (b *EntityBuilder) ManyToMany(name, target string, through JoinTable) *EntityBuilder {
	b.mapping.relations = append(b.mapping.relations, RelationMapping{
		Name: name, Target: target, Cardinality: ToMany, Through: &through,
	})
	return b
}

// Relation registers a relation with full mapping configuration, e.g. a
// composite foreign key.
func (b *EntityBuilder) Relation(mapping RelationMapping) *EntityBuilder {
	b.mapping.relations = append(b.mapping.relations, mapping)
	return b
}

func (b *EntityBuilder) relation(name, target string, cardinality Cardinality, fk ForeignKeyPair) *EntityBuilder {
	return b.Relation(RelationMapping{
		Name: name, Target: target, Cardinality: cardinality, ForeignKeys: []ForeignKeyPair{fk},
	})
}

func (b *EntityBuilder) keyColumn() string {
	if f, ok := b.mapping.Field(b.mapping.key); ok {
		return f.Column
	}
	return b.mapping.key
}
