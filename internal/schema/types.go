package schema

import (
	"strings"
	"sync"
)

// RelationshipType is the cardinality of a relationship as seen from its owning table.
type RelationshipType string

const (
	ManyToOne  RelationshipType = "many-to-one"
	OneToOne   RelationshipType = "one-to-one"
	ZeroToOne  RelationshipType = "zero-to-one"
	OneToMany  RelationshipType = "one-to-many"
	ManyToMany RelationshipType = "many-to-many"
)

// IsToMany reports whether one record may relate to several records of the other side.
func (t RelationshipType) IsToMany() bool {
	return t == OneToMany || t == ManyToMany
}

// IsValid returns true if the type is a recognized value.
func (t RelationshipType) IsValid() bool {
	switch t {
	case ManyToOne, OneToOne, ZeroToOne, OneToMany, ManyToMany:
		return true
	default:
		return false
	}
}

// Schema is the read-only description of every table the workbench can map into.
type Schema struct {
	Tables []*Table `yaml:"tables" json:"tables" validate:"required,min=1,dive"`

	once   sync.Once
	byName map[string]*Table
}

// Table describes one table of the data model.
type Table struct {
	Name          string         `yaml:"name"                    json:"name"                    validate:"required"`
	Label         string         `yaml:"label,omitempty"         json:"label,omitempty"`
	Aliases       []string       `yaml:"aliases,omitempty"       json:"aliases,omitempty"`
	Fields        []Field        `yaml:"fields,omitempty"        json:"fields,omitempty"        validate:"dive"`
	Relationships []Relationship `yaml:"relationships,omitempty" json:"relationships,omitempty" validate:"dive"`
	Ranks         []string       `yaml:"ranks,omitempty"         json:"ranks,omitempty"         validate:"dive,required"`

	once       sync.Once
	fieldIndex map[string]int
	relIndex   map[string]int
	rankIndex  map[string]bool
}

// Field is a scalar column of a table.
type Field struct {
	Name     string   `yaml:"name"               json:"name"               validate:"required"`
	Label    string   `yaml:"label,omitempty"    json:"label,omitempty"`
	Type     string   `yaml:"type,omitempty"     json:"type,omitempty"`
	Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Hidden   bool     `yaml:"hidden,omitempty"   json:"hidden,omitempty"`
	Aliases  []string `yaml:"aliases,omitempty"  json:"aliases,omitempty"`
}

// Relationship links a table to another table.
type Relationship struct {
	Name          string           `yaml:"name"                    json:"name"                    validate:"required"`
	Label         string           `yaml:"label,omitempty"         json:"label,omitempty"`
	Type          RelationshipType `yaml:"type"                    json:"type"                    validate:"required,oneof=many-to-one one-to-one zero-to-one one-to-many many-to-many"`
	RelatedTable  string           `yaml:"relatedTable"            json:"relatedTable"            validate:"required"`
	OtherSideName string           `yaml:"otherSideName,omitempty" json:"otherSideName,omitempty"`
	Required      bool             `yaml:"required,omitempty"      json:"required,omitempty"`
	Hidden        bool             `yaml:"hidden,omitempty"        json:"hidden,omitempty"`
	Aliases       []string         `yaml:"aliases,omitempty"       json:"aliases,omitempty"`
}

// IsToMany reports whether the relationship expands into "#n" index tokens.
func (r *Relationship) IsToMany() bool {
	return r.Type.IsToMany()
}

// DisplayLabel returns the label, falling back to the name.
func (r *Relationship) DisplayLabel() string {
	if r.Label != "" {
		return r.Label
	}

	return r.Name
}

// DisplayLabel returns the label, falling back to the name.
func (f *Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}

	return f.Name
}

// DisplayLabel returns the label, falling back to the name.
func (t *Table) DisplayLabel() string {
	if t.Label != "" {
		return t.Label
	}

	return t.Name
}

// New builds a Schema from tables and indexes it.
func New(tables ...*Table) *Schema {
	s := &Schema{Tables: tables}
	s.ensureIndex()

	return s
}

// ensureIndex builds the lookup maps exactly once, so literal schemas are
// safe to share between goroutines.
func (s *Schema) ensureIndex() {
	s.once.Do(s.index)
}

// index builds the lookup maps. Table names are case-insensitive.
func (s *Schema) index() {
	s.byName = make(map[string]*Table, len(s.Tables))

	for _, t := range s.Tables {
		if t == nil || t.Name == "" {
			continue
		}

		t.ensureIndex()
		s.byName[strings.ToLower(t.Name)] = t
	}
}

func (t *Table) ensureIndex() {
	t.once.Do(t.index)
}

func (t *Table) index() {
	t.fieldIndex = make(map[string]int, len(t.Fields))
	for i, f := range t.Fields {
		t.fieldIndex[strings.ToLower(f.Name)] = i
	}

	t.relIndex = make(map[string]int, len(t.Relationships))
	for i, r := range t.Relationships {
		t.relIndex[strings.ToLower(r.Name)] = i
	}

	t.rankIndex = make(map[string]bool, len(t.Ranks))
	for _, r := range t.Ranks {
		t.rankIndex[r] = true
	}
}

// Table returns the table with the given name, or nil if not found.
func (s *Schema) Table(name string) *Table {
	if s == nil {
		return nil
	}

	s.ensureIndex()

	return s.byName[strings.ToLower(name)]
}

// TableNames returns table names in declaration order.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}

	return names
}

// Field returns the field with the given name, or nil if not found.
func (t *Table) Field(name string) *Field {
	t.ensureIndex()

	i, ok := t.fieldIndex[strings.ToLower(name)]
	if !ok {
		return nil
	}

	return &t.Fields[i]
}

// Relationship returns the relationship with the given name, or nil if not found.
func (t *Table) Relationship(name string) *Relationship {
	t.ensureIndex()

	i, ok := t.relIndex[strings.ToLower(name)]
	if !ok {
		return nil
	}

	return &t.Relationships[i]
}

// IsTree reports whether the table is hierarchical, i.e. has rank definitions.
func (t *Table) IsTree() bool {
	return len(t.Ranks) > 0
}

// HasRank reports whether rank is one of the tree's ranks.
func (t *Table) HasRank(rank string) bool {
	t.ensureIndex()

	return t.rankIndex[rank]
}
