package hydrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/registry"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// M2MAccessor is a many-to-many relation's per-instance accessor:
// cache-aware iteration plus Add/Remove mutating the junction table
// directly.
type M2MAccessor struct {
	owner   *Instance
	field   *field.ManyToManyField
	loaded  bool
	cached  []*Instance
}

// M2M returns the instance's many-to-many accessor named name,
// pre-seeded by prefetch_related or loaded lazily (and cached) on
// first use otherwise.
func (i *Instance) M2M(name string) (*M2MAccessor, error) {
	if acc, ok := i.m2m[name]; ok {
		return acc, nil
	}
	f, err := i.model.MustField(name)
	if err != nil {
		return nil, err
	}
	m2m, ok := f.(*field.ManyToManyField)
	if !ok {
		return nil, sqlerr.Misuse("%q is not a many-to-many field on %s", name, i.model.Name)
	}
	acc := &M2MAccessor{owner: i, field: m2m}
	i.m2m[name] = acc
	return acc, nil
}

// Preload attaches a many-to-many relation's related instances directly,
// for prefetch_related's regrouping step to seed without each accessor
// issuing its own query.
func (i *Instance) Preload(name string, related []*Instance) error {
	acc, err := i.M2M(name)
	if err != nil {
		return err
	}
	acc.cached = related
	acc.loaded = true
	return nil
}

// All returns every related instance, loading and caching them on first
// call.
func (a *M2MAccessor) All(ctx context.Context) ([]*Instance, error) {
	if a.loaded {
		return a.cached, nil
	}

	ownerID := a.owner.RowID()
	rows, err := a.owner.conn.QueryContext(ctx, a.field.SelectRefIDsSQL(ownerID))
	if err != nil {
		return nil, err
	}
	var refIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		refIDs = append(refIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	refModel, err := registry.Lookup(a.field.Ref())
	if err != nil {
		return nil, err
	}

	out := make([]*Instance, 0, len(refIDs))
	for _, id := range refIDs {
		inst, ferr := fetchByID(ctx, a.owner.conn, refModel, id)
		if ferr != nil {
			return nil, ferr
		}
		out = append(out, inst)
	}

	a.cached = out
	a.loaded = true
	return out, nil
}

// Add links ref to the owning instance via the junction table.
func (a *M2MAccessor) Add(ctx context.Context, ref *Instance) error {
	_, err := a.owner.conn.ExecContext(ctx, a.field.InsertSQL(a.owner.RowID(), ref.RowID()))
	if err != nil {
		return fmt.Errorf("hydrate: add %s to %s.%s: %w", strings.ToLower(a.field.Ref()), a.owner.model.Name, a.field.Ref(), err)
	}
	a.loaded = false
	return nil
}

// Remove unlinks ref from the owning instance via the junction table.
func (a *M2MAccessor) Remove(ctx context.Context, ref *Instance) error {
	_, err := a.owner.conn.ExecContext(ctx, a.field.DeleteSQL(a.owner.RowID(), ref.RowID()))
	if err != nil {
		return fmt.Errorf("hydrate: remove %s from %s.%s: %w", strings.ToLower(a.field.Ref()), a.owner.model.Name, a.field.Ref(), err)
	}
	a.loaded = false
	return nil
}
