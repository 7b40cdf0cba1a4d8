package hydrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/dbconn"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

// New builds an unsaved Instance from a set of field values (no "id"
// yet). Save inserts it and assigns the generated id.
func New(model *registry.Model, conn dbconn.Conn, values map[string]any) (*Instance, error) {
	return newInstance(model, conn, values)
}

// Create builds an Instance and immediately saves it.
func Create(ctx context.Context, model *registry.Model, conn dbconn.Conn, values map[string]any) (*Instance, error) {
	inst, err := New(model, conn, values)
	if err != nil {
		return nil, err
	}
	if err := inst.Save(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// Save inserts the instance if it has no id yet, else updates every
// loaded scalar column by id.
func (i *Instance) Save(ctx context.Context) error {
	if _, hasID := i.values["id"]; hasID && i.RowID() != 0 {
		return i.update(ctx)
	}
	return i.insert(ctx)
}

func (i *Instance) insert(ctx context.Context) error {
	cols := make([]string, 0, len(i.values))
	lits := make([]string, 0, len(i.values))
	for _, col := range i.model.ScalarColumns() {
		if col == "id" {
			continue
		}
		v, ok := i.values[col]
		if !ok {
			continue
		}
		f, err := i.model.MustField(col)
		if err != nil {
			return err
		}
		lit, err := f.ToSQL(v)
		if err != nil {
			return fmt.Errorf("hydrate: encode %s.%s: %w", i.model.Table, col, err)
		}
		cols = append(cols, col)
		lits = append(lits, lit)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", i.model.Table, strings.Join(cols, ", "), strings.Join(lits, ", "))
	result, err := i.conn.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("hydrate: insert %s: %w", i.model.Table, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("hydrate: read generated id for %s: %w", i.model.Table, err)
	}
	i.values["id"] = id
	return nil
}

func (i *Instance) update(ctx context.Context) error {
	var sets []string
	for _, col := range i.model.ScalarColumns() {
		if col == "id" {
			continue
		}
		v, ok := i.values[col]
		if !ok {
			continue
		}
		f, err := i.model.MustField(col)
		if err != nil {
			return err
		}
		lit, err := f.ToSQL(v)
		if err != nil {
			return fmt.Errorf("hydrate: encode %s.%s: %w", i.model.Table, col, err)
		}
		sets = append(sets, fmt.Sprintf("%s = %s", col, lit))
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %d", i.model.Table, strings.Join(sets, ", "), i.RowID())
	if _, err := i.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("hydrate: update %s: %w", i.model.Table, err)
	}
	return nil
}

// Delete removes the instance's row by id.
func (i *Instance) Delete(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %d", i.model.Table, i.RowID())
	if _, err := i.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("hydrate: delete %s: %w", i.model.Table, err)
	}
	return nil
}
