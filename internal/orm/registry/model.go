// Package registry holds the process-wide model registry: model
// definitions keyed by name, each an ordered field map split into
// scalar and link fields. Models are registered once at process start
// and are read-only afterwards.
package registry

import (
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// FieldDecl pairs a field name with its declaration, preserving
// declaration order (Go maps don't).
type FieldDecl struct {
	Name  string
	Field field.Field
}

// Model is a named record: a table name, an ordered field map (always
// including the synthetic "id" primary key), and that same set split
// into scalar columns and link fields.
type Model struct {
	Name  string
	Table string

	order  []string
	fields map[string]field.Field
}

// Fields returns every field name in declaration order, "id" first.
func (m *Model) Fields() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Field looks up a field by name.
func (m *Model) Field(name string) (field.Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// MustField looks up a field by name, returning a schema error naming
// the model if absent.
func (m *Model) MustField(name string) (field.Field, error) {
	f, ok := m.fields[name]
	if !ok {
		return nil, sqlerr.Schema("unknown field %q on model %s", name, m.Name)
	}
	return f, nil
}

// ScalarColumns returns the names of every non-many-to-many field, in
// declaration order — these are the columns a CREATE TABLE/SELECT *
// actually projects.
func (m *Model) ScalarColumns() []string {
	var out []string
	for _, name := range m.order {
		if _, ok := m.fields[name].(*field.ManyToManyField); ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ForeignKeys returns the model's foreign-key fields by name.
func (m *Model) ForeignKeys() map[string]*field.ForeignKeyField {
	out := map[string]*field.ForeignKeyField{}
	for name, f := range m.fields {
		if fk, ok := f.(*field.ForeignKeyField); ok {
			out[name] = fk
		}
	}
	return out
}

// ManyToMany returns the model's many-to-many fields by name.
func (m *Model) ManyToMany() map[string]*field.ManyToManyField {
	out := map[string]*field.ManyToManyField{}
	for name, f := range m.fields {
		if m2m, ok := f.(*field.ManyToManyField); ok {
			out[name] = m2m
		}
	}
	return out
}

// IsLink reports whether name is a foreign-key or many-to-many field on
// this model.
func (m *Model) IsLink(name string) bool {
	switch m.fields[name].(type) {
	case *field.ForeignKeyField, *field.ManyToManyField:
		return true
	default:
		return false
	}
}

// CreateTableDDL renders the CREATE TABLE IF NOT EXISTS statement for
// this model, in declaration order, with the synthetic id column and
// primary key clause appended.
func (m *Model) CreateTableDDL() string {
	var cols []string
	cols = append(cols, "id int NOT NULL UNIQUE AUTO_INCREMENT")
	for _, name := range m.order {
		if name == "id" {
			continue
		}
		f := m.fields[name]
		if _, ok := f.(*field.ManyToManyField); ok {
			continue
		}
		cols = append(cols, f.DDL(name))
	}
	cols = append(cols, "PRIMARY KEY (id)")
	return "CREATE TABLE IF NOT EXISTS " + m.Table + " (" + strings.Join(cols, ", ") + ")"
}

// JunctionDDL renders the CREATE TABLE statements for every many-to-many
// field's junction table.
func (m *Model) JunctionDDL() []string {
	var out []string
	for _, name := range m.order {
		if m2m, ok := m.fields[name].(*field.ManyToManyField); ok {
			out = append(out, m2m.JunctionDDL())
		}
	}
	return out
}

// DropTableDDL renders DROP TABLE IF EXISTS for this model's table.
func (m *Model) DropTableDDL() string {
	return "DROP TABLE IF EXISTS " + m.Table
}

// DescribeSQL renders the DESCRIBE statement for this model's table.
func (m *Model) DescribeSQL() string {
	return "DESCRIBE " + m.Table
}
