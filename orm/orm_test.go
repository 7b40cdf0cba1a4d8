package orm

import (
	"context"
	"strings"
	"testing"

	"github.com/kersh1337228/goorm/internal/orm/dbconn"
)

func registerAirline(t *testing.T, suffix string) *Model {
	t.Helper()
	m, err := Declare("Airline"+suffix,
		Fld("name", String(64, Unique())),
		Fld("country", String(64)),
	)
	if err != nil {
		t.Fatalf("Declare: %v", err)
	}
	return m
}

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
	execQueries []string
	execID      int64
	cur         *fakeCursor
}

func (f *fakeConn) ExecContext(ctx context.Context, query string, args ...any) (dbconn.Result, error) {
	f.execQueries = append(f.execQueries, query)
	return fakeResult{id: f.execID}, nil
}

func (f *fakeConn) QueryContext(ctx context.Context, query string, args ...any) (dbconn.Cursor, error) {
	return f.cur, nil
}

func (f *fakeConn) QueryRowContext(ctx context.Context, query string, args ...any) dbconn.Row {
	panic("not used by this test")
}

func (f *fakeConn) Close() error { return nil }

func TestDeclareAndLookupRoundTrip(t *testing.T) {
	m := registerAirline(t, "A")
	got, err := Lookup("AirlineA")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if got != m {
		t.Error("Lookup did not return the declared model")
	}
}

func TestObjectsReturnsResultSetOverModel(t *testing.T) {
	m := registerAirline(t, "B")
	db := &DB{conn: &fakeConn{}}
	rs := db.Objects(m)
	if rs == nil {
		t.Fatal("Objects returned nil")
	}
}

func TestFilterIsShorthandForObjectsFilter(t *testing.T) {
	m := registerAirline(t, "C")
	db := &DB{conn: &fakeConn{cur: &fakeCursor{cols: []string{"id", "name", "country"}}}}
	rs := db.Filter(m, map[string]any{"name": "SkyLine"})
	if _, err := rs.All(context.Background()); err != nil {
		t.Fatalf("Filter(...).All returned error: %v", err)
	}
}

func TestCreateInsertsAndAssignsID(t *testing.T) {
	m := registerAirline(t, "D")
	conn := &fakeConn{execID: 3}
	db := &DB{conn: conn}

	inst, err := db.Create(context.Background(), m, map[string]any{"name": "SkyLine", "country": "UK"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if inst.RowID() != 3 {
		t.Errorf("RowID() = %d, want 3", inst.RowID())
	}
}

func TestBulkCreateInsertsEveryRow(t *testing.T) {
	m := registerAirline(t, "E")
	conn := &fakeConn{execID: 1}
	db := &DB{conn: conn}

	rows := []map[string]any{
		{"name": "SkyLine", "country": "UK"},
		{"name": "Regional", "country": "FR"},
	}
	insts, err := db.BulkCreate(context.Background(), m, rows)
	if err != nil {
		t.Fatalf("BulkCreate returned error: %v", err)
	}
	if len(insts) != 2 {
		t.Fatalf("BulkCreate returned %d instances, want 2", len(insts))
	}
	if len(conn.execQueries) != 2 {
		t.Errorf("execQueries = %v, want 2 INSERTs", conn.execQueries)
	}
}

func TestMigrateCreatesTable(t *testing.T) {
	m := registerAirline(t, "F")
	conn := &fakeConn{}
	db := &DB{conn: conn}

	if err := db.Migrate(context.Background(), m); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if len(conn.execQueries) != 1 || !strings.HasPrefix(conn.execQueries[0], "CREATE TABLE") {
		t.Errorf("execQueries = %v, want a single CREATE TABLE statement", conn.execQueries)
	}
}

func TestMigrateAlsoCreatesJunctionTables(t *testing.T) {
	route, err := Declare("RouteF", Fld("name", String(64)))
	if err != nil {
		t.Fatalf("Declare(Route): %v", err)
	}
	flight, err := Declare("FlightF", Fld("routes", ManyToMany("RouteF", Cascade, Cascade)))
	if err != nil {
		t.Fatalf("Declare(Flight): %v", err)
	}
	conn := &fakeConn{}
	db := &DB{conn: conn}

	if err := db.Migrate(context.Background(), flight); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if len(conn.execQueries) != 2 {
		t.Fatalf("execQueries = %v, want table DDL + junction DDL", conn.execQueries)
	}
	_ = route
}

func TestDropDropsTable(t *testing.T) {
	m := registerAirline(t, "G")
	conn := &fakeConn{}
	db := &DB{conn: conn}

	if err := db.Drop(context.Background(), m); err != nil {
		t.Fatalf("Drop returned error: %v", err)
	}
	if len(conn.execQueries) != 1 || !strings.HasPrefix(conn.execQueries[0], "DROP TABLE") {
		t.Errorf("execQueries = %v, want a single DROP TABLE statement", conn.execQueries)
	}
}

func TestDescribeJoinsRowsAsPipeSeparatedStrings(t *testing.T) {
	m := registerAirline(t, "H")
	conn := &fakeConn{cur: &fakeCursor{
		cols: []string{"Field", "Type"},
		rows: [][]any{{"id", "int"}, {"name", "varchar(64)"}},
	}}
	db := &DB{conn: conn}

	rows, err := db.Describe(context.Background(), m)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if len(rows) != 2 || rows[0] != "id | int" {
		t.Errorf("Describe() = %v, want [\"id | int\" \"name | varchar(64)\"]", rows)
	}
}

func TestRawDelegatesToRawQueryPackage(t *testing.T) {
	m := registerAirline(t, "I")
	conn := &fakeConn{cur: &fakeCursor{
		cols: []string{"id", "name", "country"},
		rows: [][]any{{int64(1), "SkyLine", "UK"}},
	}}
	db := &DB{conn: conn}

	rows, err := db.Raw(context.Background(), m, "SELECT id, name, country FROM airlineis")
	if err != nil {
		t.Fatalf("Raw returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].RowID() != 1 {
		t.Errorf("Raw() = %v, want one row with id 1", rows)
	}
}

func TestRawRejectsNonSelectStatements(t *testing.T) {
	m := registerAirline(t, "J")
	conn := &fakeConn{}
	db := &DB{conn: conn}

	if _, err := db.Raw(context.Background(), m, "DELETE FROM airlinejs"); err == nil {
		t.Fatal("Raw(non-SELECT) should error")
	}
}
