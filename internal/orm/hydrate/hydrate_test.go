package hydrate

import (
	"context"
	"testing"

	"github.com/kersh1337228/goorm/internal/orm/dbconn"
	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

func registerAirlinePlane(t *testing.T, suffix string) (airline, plane *registry.Model) {
	t.Helper()
	var err error
	airline, err = registry.Register("Airline"+suffix, []registry.FieldDecl{
		{Name: "name", Field: field.NewString(64)},
	})
	if err != nil {
		t.Fatalf("Register(Airline): %v", err)
	}
	plane, err = registry.Register("Plane"+suffix, []registry.FieldDecl{
		{Name: "name", Field: field.NewString(64)},
		{Name: "airline", Field: field.NewForeignKey("Airline"+suffix, field.Cascade, field.Cascade)},
	})
	if err != nil {
		t.Fatalf("Register(Plane): %v", err)
	}
	return
}

// fakeCursor/fakeResult/fakeConn mirror resultset's test fakes so
// hydrate's fetch paths can be exercised without a live MySQL connection.
type fakeCursor struct {
	cols []string
	rows [][]any
	pos  int
}

func (c *fakeCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Scan(dest ...any) error {
	row := c.rows[c.pos-1]
	for i, d := range dest {
		if p, ok := d.(*any); ok {
			*p = row[i]
			continue
		}
		if p, ok := d.(*int64); ok {
			*p = row[i].(int64)
		}
	}
	return nil
}

func (c *fakeCursor) Columns() ([]string, error) { return c.cols, nil }
func (c *fakeCursor) Close() error               { return nil }
func (c *fakeCursor) Err() error                  { return nil }

type fakeResult struct{ id int64 }

func (r fakeResult) LastInsertId() (int64, error) { return r.id, nil }
func (r fakeResult) RowsAffected() (int64, error) { return 1, nil }

type fakeConn struct {
	queries  []string
	byQuery  map[string]*fakeCursor
	execID   int64
}

func (f *fakeConn) ExecContext(ctx context.Context, query string, args ...any) (dbconn.Result, error) {
	f.queries = append(f.queries, query)
	return fakeResult{id: f.execID}, nil
}

func (f *fakeConn) QueryContext(ctx context.Context, query string, args ...any) (dbconn.Cursor, error) {
	f.queries = append(f.queries, query)
	if f.byQuery != nil {
		if c, ok := f.byQuery[query]; ok {
			return c, nil
		}
	}
	return &fakeCursor{}, nil
}

func (f *fakeConn) QueryRowContext(ctx context.Context, query string, args ...any) dbconn.Row {
	panic("not used by hydrate")
}

func (f *fakeConn) Close() error { return nil }

func TestFromRowSplitsBaseAndRelatedColumns(t *testing.T) {
	_, plane := registerAirlinePlane(t, "A")
	cols := []string{"id", "name", "airline", "airline__id", "airline__name"}
	vals := []any{int64(1), "Concorde", int64(2), int64(2), "SkyLine"}

	inst, err := FromRow(plane, &fakeConn{}, []string{"airline"}, cols, vals)
	if err != nil {
		t.Fatalf("FromRow returned error: %v", err)
	}
	if inst.RowID() != 1 {
		t.Errorf("RowID() = %d, want 1", inst.RowID())
	}
	name, err := inst.Get("name")
	if err != nil || name != "Concorde" {
		t.Errorf("Get(name) = (%v, %v), want Concorde", name, err)
	}

	sub, ok := inst.related["airline"]
	if !ok {
		t.Fatal("related[airline] not populated")
	}
	if sub.RowID() != 2 {
		t.Errorf("related airline RowID() = %d, want 2", sub.RowID())
	}
	subName, _ := sub.Get("name")
	if subName != "SkyLine" {
		t.Errorf("related airline name = %v, want SkyLine", subName)
	}
}

func TestGetUnloadedFieldErrors(t *testing.T) {
	_, plane := registerAirlinePlane(t, "B")
	inst, err := New(plane, &fakeConn{}, map[string]any{"id": int64(1)})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := inst.Get("name"); err == nil {
		t.Fatal("Get(unloaded field) should error")
	}
}

func TestRelatedLazilyFetchesAndCaches(t *testing.T) {
	airline, plane := registerAirlinePlane(t, "C")
	conn := &fakeConn{byQuery: map[string]*fakeCursor{}}
	query := "SELECT id, name FROM airlinecs WHERE id = 9"
	conn.byQuery[query] = &fakeCursor{
		cols: []string{"id", "name"},
		rows: [][]any{{int64(9), "SkyLine"}},
	}

	inst, err := New(plane, conn, map[string]any{"id": int64(1), "name": "Concorde", "airline": int64(9)})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sub, err := inst.Related(context.Background(), "airline")
	if err != nil {
		t.Fatalf("Related returned error: %v", err)
	}
	if sub.RowID() != 9 {
		t.Errorf("Related RowID() = %d, want 9", sub.RowID())
	}

	cached, err := inst.Related(context.Background(), "airline")
	if err != nil {
		t.Fatalf("second Related call returned error: %v", err)
	}
	if cached != sub {
		t.Error("Related did not cache the previously fetched instance")
	}
	_ = airline
}

func TestRelatedRejectsNonForeignKeyField(t *testing.T) {
	_, plane := registerAirlinePlane(t, "D")
	inst, err := New(plane, &fakeConn{}, map[string]any{"id": int64(1), "name": "x"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := inst.Related(context.Background(), "name"); err == nil {
		t.Fatal("Related(scalar field) should error")
	}
}

func TestPreloadSeedsM2MAccessorWithoutQuerying(t *testing.T) {
	m, err := registry.Register("FlightA", []registry.FieldDecl{
		{Name: "routes", Field: field.NewManyToMany("RouteA", field.Cascade, field.Cascade)},
	})
	if err != nil {
		t.Fatalf("Register(Flight): %v", err)
	}
	inst, err := New(m, &fakeConn{}, map[string]any{"id": int64(1)})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	seeded, err := New(m, &fakeConn{}, map[string]any{"id": int64(2)})
	if err != nil {
		t.Fatalf("New(seeded) returned error: %v", err)
	}

	if err := inst.Preload("routes", []*Instance{seeded}); err != nil {
		t.Fatalf("Preload returned error: %v", err)
	}

	acc, err := inst.M2M("routes")
	if err != nil {
		t.Fatalf("M2M returned error: %v", err)
	}
	all, err := acc.All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) != 1 || all[0] != seeded {
		t.Errorf("All() = %v, want the preloaded instance", all)
	}
}
