// Package hydrate turns SQL result rows into model instances: scalar
// fields decoded through their field codec, foreign-key and
// many-to-many relations exposed as lazy accessors.
package hydrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/dbconn"
	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/registry"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// Instance is one hydrated row: decoded scalar/foreign-key values, plus
// relation accessors populated eagerly (select_related/prefetch_related)
// or lazily on first access.
type Instance struct {
	model  *registry.Model
	conn   dbconn.Conn
	values map[string]any
	related map[string]*Instance
	m2m     map[string]*M2MAccessor
}

// RowID implements field.Identifiable, letting an Instance be assigned
// directly as a foreign-key value.
func (i *Instance) RowID() int64 {
	v, _ := i.values["id"].(int64)
	return v
}

// Model returns the instance's model.
func (i *Instance) Model() *registry.Model { return i.model }

// Get returns a loaded scalar or foreign-key field's decoded value.
func (i *Instance) Get(name string) (any, error) {
	v, ok := i.values[name]
	if !ok {
		return nil, sqlerr.Schema("field %q was not loaded on this instance", name)
	}
	return v, nil
}

func newInstance(model *registry.Model, conn dbconn.Conn, raw map[string]any) (*Instance, error) {
	values := make(map[string]any, len(raw))
	for col, rv := range raw {
		f, ok := model.Field(col)
		if !ok {
			continue
		}
		if _, isM2M := f.(*field.ManyToManyField); isM2M {
			continue
		}
		decoded, err := f.FromSQL(rv)
		if err != nil {
			return nil, fmt.Errorf("hydrate: decode %s.%s: %w", model.Table, col, err)
		}
		values[col] = decoded
	}
	return &Instance{model: model, conn: conn, values: values, related: map[string]*Instance{}, m2m: map[string]*M2MAccessor{}}, nil
}

// FromRow builds an Instance from one result row. relatedPaths is the
// query's select_related list: a column named "<path>__<col>" is routed
// into the nested instance for that path rather than treated as a base
// scalar, resolving the ambiguity between a relation-prefixed column and
// an opaquely-named annotation alias without re-deriving it from the
// column name alone.
func FromRow(model *registry.Model, conn dbconn.Conn, relatedPaths []string, cols []string, vals []any) (*Instance, error) {
	base := map[string]any{}
	groups := make(map[string]map[string]any, len(relatedPaths))

	for i, c := range cols {
		matched := false
		for _, rp := range relatedPaths {
			prefix := rp + "__"
			if strings.HasPrefix(c, prefix) {
				g := groups[rp]
				if g == nil {
					g = map[string]any{}
					groups[rp] = g
				}
				g[strings.TrimPrefix(c, prefix)] = vals[i]
				matched = true
				break
			}
		}
		if !matched {
			base[c] = vals[i]
		}
	}

	inst, err := newInstance(model, conn, base)
	if err != nil {
		return nil, err
	}

	for _, rp := range relatedPaths {
		termModel, rerr := resolveRelatedModel(model, strings.Split(rp, "__"))
		if rerr != nil {
			return nil, rerr
		}
		sub, serr := newInstance(termModel, conn, groups[rp])
		if serr != nil {
			return nil, serr
		}
		inst.related[rp] = sub
	}

	return inst, nil
}

func resolveRelatedModel(model *registry.Model, segs []string) (*registry.Model, error) {
	cur := model
	for _, seg := range segs {
		f, err := cur.MustField(seg)
		if err != nil {
			return nil, err
		}
		switch lf := f.(type) {
		case *field.ForeignKeyField:
			next, rerr := registry.Lookup(lf.Ref())
			if rerr != nil {
				return nil, rerr
			}
			cur = next
		case *field.ManyToManyField:
			next, rerr := registry.Lookup(lf.Ref())
			if rerr != nil {
				return nil, rerr
			}
			cur = next
		default:
			return nil, sqlerr.Schema("path segment %q on model %s is not a link field", seg, cur.Name)
		}
	}
	return cur, nil
}

// Related returns the instance's foreign-key relation named path,
// pre-seeded by select_related or lazily fetched (and cached) on first
// access otherwise.
func (i *Instance) Related(ctx context.Context, path string) (*Instance, error) {
	if sub, ok := i.related[path]; ok {
		return sub, nil
	}

	f, err := i.model.MustField(path)
	if err != nil {
		return nil, err
	}
	fk, ok := f.(*field.ForeignKeyField)
	if !ok {
		return nil, sqlerr.Misuse("%q is not a foreign-key field on %s", path, i.model.Name)
	}

	rawID, err := i.Get(path)
	if err != nil {
		return nil, err
	}
	refID, ok := rawID.(int64)
	if !ok {
		return nil, sqlerr.Schema("foreign key %q on %s decoded to non-int64 %T", path, i.model.Name, rawID)
	}

	refModel, err := registry.Lookup(fk.Ref())
	if err != nil {
		return nil, err
	}

	sub, err := fetchByID(ctx, i.conn, refModel, refID)
	if err != nil {
		return nil, err
	}
	i.related[path] = sub
	return sub, nil
}

// FetchByID loads a model's row by id with a direct SELECT, the same
// single-row fetch path the lazy relation accessors use.
func FetchByID(ctx context.Context, conn dbconn.Conn, model *registry.Model, id int64) (*Instance, error) {
	return fetchByID(ctx, conn, model, id)
}

// BuildInstance hydrates an Instance directly from already-fetched
// column values, without issuing any query of its own. It is exported
// for resultset's prefetch_related regrouping step, which joins through
// an entire dotted path in one statement and decodes every hop's row
// locally instead of re-querying per related id.
func BuildInstance(conn dbconn.Conn, model *registry.Model, raw map[string]any) (*Instance, error) {
	return newInstance(model, conn, raw)
}

// PreloadRelated attaches a foreign-key relation's related instance
// directly, mirroring Preload for many-to-many relations, so
// prefetch_related's regrouping step can seed a foreign-key hop without
// its accessor issuing its own query.
func (i *Instance) PreloadRelated(name string, related *Instance) {
	i.related[name] = related
}

// fetchByID loads a model's row by id with a direct SELECT, used by lazy
// relation accessors (spec.md's relation traversal does not need the
// full assembler pipeline for a single-row, single-table fetch by key).
func fetchByID(ctx context.Context, conn dbconn.Conn, model *registry.Model, id int64) (*Instance, error) {
	cols := model.ScalarColumns()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %d", strings.Join(cols, ", "), model.Table, id)
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sqlerr.NotFound("no %s row with id %d", model.Table, id)
	}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	raw := make(map[string]any, len(cols))
	for i, c := range cols {
		raw[c] = vals[i]
	}
	return newInstance(model, conn, raw)
}
