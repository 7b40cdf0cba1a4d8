// Package field implements the field catalog: type-specific codecs
// (value -> SQL literal, SQL value -> value) and the declared-column DDL
// fragment for each field kind a model can declare.
package field

import (
	"fmt"
	"strings"
)

// Field is the declarative descriptor every column kind implements.
// DDL renders the column's fragment of a CREATE TABLE statement under
// the given column name; ToSQL renders a value as a SQL literal; FromSQL
// decodes an engine-returned value back into a Go value.
type Field interface {
	DDL(name string) string
	ToSQL(v any) (string, error)
	FromSQL(v any) (any, error)
	Nullable() bool
	IsUnique() bool
}

// Link is implemented by field kinds that participate in the join
// planner: ForeignKey and ManyToMany. Ref is the referenced model's
// registered name.
type Link interface {
	Field
	Ref() string
}

// Referential actions usable on a Link field's ON DELETE / ON UPDATE
// clauses.
const (
	Cascade    = "CASCADE"
	Restrict   = "RESTRICT"
	SetNull    = "SET NULL"
	SetDefault = "SET DEFAULT"
	NoAction   = "NO ACTION"
)

// base holds the attributes common to every field kind: nullability,
// uniqueness, an optional default and an optional enum of allowed
// values (rendered as a CHECK constraint).
type base struct {
	null       bool
	unique     bool
	def        any
	hasDefault bool
	choices    []any
}

// Option configures the common attributes of a field at construction
// time.
type Option func(*base)

// Null marks the field nullable. Fields are NOT NULL by default.
func Null() Option { return func(b *base) { b.null = true } }

// Unique marks the field UNIQUE.
func Unique() Option { return func(b *base) { b.unique = true } }

// Default sets the column's DEFAULT value.
func Default(v any) Option {
	return func(b *base) {
		b.def = v
		b.hasDefault = true
	}
}

// Choices restricts the column to the given set of values via a CHECK
// constraint.
func Choices(values ...any) Option {
	return func(b *base) { b.choices = values }
}

func newBase(opts []Option) base {
	var b base
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b base) Nullable() bool { return b.null }
func (b base) IsUnique() bool { return b.unique }

// ddl composes the common suffix of a column's DDL fragment: the type
// already rendered by the caller, followed by UNIQUE, NOT NULL, DEFAULT
// and CHECK clauses in that order, matching the grammar
// `<name> <TYPE>[ UNIQUE][ NOT NULL][ DEFAULT <v>][ CHECK (<name> IN (...))]`.
func (b base) ddl(name, sqlType string, toSQL func(any) (string, error)) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte(' ')
	sb.WriteString(sqlType)
	if b.unique {
		sb.WriteString(" UNIQUE")
	}
	if !b.null {
		sb.WriteString(" NOT NULL")
	}
	if b.hasDefault {
		lit, err := toSQL(b.def)
		if err == nil {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(lit)
		}
	}
	if len(b.choices) > 0 {
		lits := make([]string, len(b.choices))
		for i, c := range b.choices {
			lit, err := toSQL(c)
			if err != nil {
				lit = fmt.Sprintf("%v", c)
			}
			lits[i] = lit
		}
		fmt.Fprintf(&sb, " CHECK (%s IN (%s))", name, strings.Join(lits, ", "))
	}
	return sb.String()
}
