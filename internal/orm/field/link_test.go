package field

import "testing"

func TestForeignKeyDDL(t *testing.T) {
	f := NewForeignKey("Airline", Cascade, Restrict)
	got := f.DDL("airline")
	want := "airline int NOT NULL, FOREIGN KEY (airline) REFERENCES airlines (id) ON DELETE CASCADE ON UPDATE RESTRICT"
	if got != want {
		t.Errorf("DDL() = %q, want %q", got, want)
	}
}

func TestForeignKeyToSQLAcceptsIdentifiable(t *testing.T) {
	f := NewForeignKey("Airline", Cascade, Cascade)
	lit, err := f.ToSQL(stubIdentifiable{id: 7})
	if err != nil || lit != "7" {
		t.Fatalf("ToSQL(Identifiable{7}) = (%q, %v), want (\"7\", nil)", lit, err)
	}
}

type stubIdentifiable struct{ id int64 }

func (s stubIdentifiable) RowID() int64 { return s.id }

func TestManyToManyJunctionNaming(t *testing.T) {
	f := NewManyToMany("Route", Cascade, Cascade)
	f.SetOwner("Flight")

	if got := f.JunctionTable(); got != "flight_route" {
		t.Errorf("JunctionTable() = %q, want %q", got, "flight_route")
	}
	if got := f.OwnerColumn(); got != "flight_id" {
		t.Errorf("OwnerColumn() = %q, want %q", got, "flight_id")
	}
	if got := f.RefColumn(); got != "route_id" {
		t.Errorf("RefColumn() = %q, want %q", got, "route_id")
	}
	if got := f.DDL("routes"); got != "" {
		t.Errorf("DDL() = %q, want empty string", got)
	}
}

func TestManyToManyJunctionDDL(t *testing.T) {
	f := NewManyToMany("Route", Cascade, Restrict)
	f.SetOwner("Flight")

	got := f.JunctionDDL()
	want := "CREATE TABLE IF NOT EXISTS flight_route (flight_id int NOT NULL, route_id int NOT NULL, " +
		"FOREIGN KEY (flight_id) REFERENCES flights (id) ON DELETE CASCADE ON UPDATE RESTRICT, " +
		"FOREIGN KEY (route_id) REFERENCES routes (id) ON DELETE CASCADE ON UPDATE RESTRICT, " +
		"UNIQUE (flight_id, route_id))"
	if got != want {
		t.Errorf("JunctionDDL() =\n%q\nwant\n%q", got, want)
	}
}

func TestManyToManyCRUDStatements(t *testing.T) {
	f := NewManyToMany("Route", Cascade, Cascade)
	f.SetOwner("Flight")

	if got := f.InsertSQL(1, 2); got != "INSERT INTO flight_route (flight_id, route_id) VALUES (1, 2)" {
		t.Errorf("InsertSQL() = %q", got)
	}
	if got := f.DeleteSQL(1, 2); got != "DELETE FROM flight_route WHERE flight_id = 1 AND route_id = 2" {
		t.Errorf("DeleteSQL() = %q", got)
	}
	if got := f.SelectRefIDsSQL(1); got != "SELECT route_id FROM flight_route WHERE flight_id = 1" {
		t.Errorf("SelectRefIDsSQL() = %q", got)
	}
}

func TestManyToManyHasNoScalarRepresentation(t *testing.T) {
	f := NewManyToMany("Route", Cascade, Cascade)
	if _, err := f.ToSQL(nil); err == nil {
		t.Fatal("ToSQL on a many-to-many field should error")
	}
	if _, err := f.FromSQL(nil); err == nil {
		t.Fatal("FromSQL on a many-to-many field should error")
	}
}
