package registry

import (
	"strings"
	"sync"

	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// reservedSeparator may not appear in a user field name; it routes
// dotted-path segments in the predicate and ordering DSLs.
const reservedSeparator = "__"

var (
	mu     sync.RWMutex
	models = map[string]*Model{}
)

// Register declares a model under name, validating field names and
// wiring the synthetic "id" primary key. Foreign-key and many-to-many
// fields must reference an already-registered model, so referenced
// models must be registered before the models that link to them
// (spec.md §9, "Process-wide state").
func Register(name string, decls []FieldDecl) (*Model, error) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := models[name]; exists {
		return nil, sqlerr.Schema("model %q already registered", name)
	}

	order := []string{"id"}
	fields := map[string]field.Field{
		"id": field.NewInt(field.Unique()),
	}

	for _, d := range decls {
		if d.Name == "id" {
			return nil, sqlerr.Schema("model %q: field name \"id\" is reserved", name)
		}
		if strings.Contains(d.Name, reservedSeparator) {
			return nil, sqlerr.Schema("model %q: field name %q contains reserved separator %q", name, d.Name, reservedSeparator)
		}
		if _, dup := fields[d.Name]; dup {
			return nil, sqlerr.Schema("model %q: duplicate field name %q", name, d.Name)
		}

		switch lf := d.Field.(type) {
		case *field.ForeignKeyField:
			if _, ok := models[lf.Ref()]; !ok {
				return nil, sqlerr.Schema("model %q: field %q references unregistered model %q", name, d.Name, lf.Ref())
			}
		case *field.ManyToManyField:
			if _, ok := models[lf.Ref()]; !ok {
				return nil, sqlerr.Schema("model %q: field %q references unregistered model %q", name, d.Name, lf.Ref())
			}
			lf.SetOwner(name)
		}

		order = append(order, d.Name)
		fields[d.Name] = d.Field
	}

	m := &Model{
		Name:   name,
		Table:  strings.ToLower(name) + "s",
		order:  order,
		fields: fields,
	}
	models[name] = m
	return m, nil
}

// Lookup finds a registered model by name.
func Lookup(name string) (*Model, error) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := models[name]
	if !ok {
		return nil, sqlerr.Schema("model %q is not registered", name)
	}
	return m, nil
}

// All returns every registered model, for bulk operations such as
// schema bootstrap.
func All() []*Model {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]*Model, 0, len(models))
	for _, m := range models {
		out = append(out, m)
	}
	return out
}

// reset clears the registry. Test-only: production callers never need
// to unregister a model, since the registry is populated once at
// process start and is read-only afterwards.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	models = map[string]*Model{}
}
