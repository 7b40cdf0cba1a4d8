package orm

import (
	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

// Model declaration surface: type aliases so callers never need to
// import internal/orm/field or internal/orm/registry directly.
type (
	Model     = registry.Model
	FieldDecl = registry.FieldDecl
	Field     = field.Field
	Link      = field.Link
	Option    = field.Option
)

// On-delete/on-update referential actions.
const (
	Cascade    = field.Cascade
	Restrict   = field.Restrict
	SetNull    = field.SetNull
	SetDefault = field.SetDefault
	NoAction   = field.NoAction
)

// Field options.
var (
	Null     = field.Null
	Unique   = field.Unique
	Default  = field.Default
	Choices  = field.Choices
)

// Scalar field constructors.
var (
	Int          = field.NewInt
	UnsignedInt  = field.NewUnsignedInt
	Float        = field.NewFloat
	String       = field.NewString
	Text         = field.NewText
	Bool         = field.NewBoolean
	DateTime     = field.NewDateTime
	Duration     = field.NewDuration
	JSON         = field.NewJSON
	ForeignKey   = field.NewForeignKey
	ManyToMany   = field.NewManyToMany
)

// Fld pairs a field name with its declaration, for use in Declare.
func Fld(name string, f Field) FieldDecl {
	return FieldDecl{Name: name, Field: f}
}

// Declare registers a new model named name with the given field
// declarations (in order). Referenced models (ForeignKey/ManyToMany
// targets) must already be registered.
func Declare(name string, decls ...FieldDecl) (*Model, error) {
	return registry.Register(name, decls)
}

// Lookup finds a registered model by name.
func Lookup(name string) (*Model, error) {
	return registry.Lookup(name)
}

// AllModels returns every registered model, for bulk schema operations.
func AllModels() []*Model {
	return registry.All()
}
