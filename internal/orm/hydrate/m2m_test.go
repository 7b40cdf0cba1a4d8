package hydrate

import (
	"context"
	"strings"
	"testing"

	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

func registerFlightRoute(t *testing.T, suffix string) (flight, route *registry.Model) {
	t.Helper()
	var err error
	route, err = registry.Register("Route"+suffix, []registry.FieldDecl{
		{Name: "name", Field: field.NewString(64)},
	})
	if err != nil {
		t.Fatalf("Register(Route): %v", err)
	}
	flight, err = registry.Register("Flight"+suffix, []registry.FieldDecl{
		{Name: "routes", Field: field.NewManyToMany("Route"+suffix, field.Cascade, field.Cascade)},
	})
	if err != nil {
		t.Fatalf("Register(Flight): %v", err)
	}
	return
}

func TestM2MAllLoadsAndCachesJunctionRows(t *testing.T) {
	flight, route := registerFlightRoute(t, "A")
	conn := &fakeConn{byQuery: map[string]*fakeCursor{}}

	junctionQuery := "SELECT routea_id FROM flighta_routea WHERE flighta_id = 1"
	conn.byQuery[junctionQuery] = &fakeCursor{cols: []string{"routea_id"}, rows: [][]any{{int64(5)}, {int64(6)}}}
	conn.byQuery["SELECT id, name FROM routeas WHERE id = 5"] = &fakeCursor{cols: []string{"id", "name"}, rows: [][]any{{int64(5), "LHR-JFK"}}}
	conn.byQuery["SELECT id, name FROM routeas WHERE id = 6"] = &fakeCursor{cols: []string{"id", "name"}, rows: [][]any{{int64(6), "CDG-NRT"}}}

	inst, err := New(flight, conn, map[string]any{"id": int64(1)})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	acc, err := inst.M2M("routes")
	if err != nil {
		t.Fatalf("M2M returned error: %v", err)
	}

	all, err := acc.All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) != 2 || all[0].RowID() != 5 || all[1].RowID() != 6 {
		t.Fatalf("All() = %v, want routes 5 and 6", all)
	}

	cached, err := acc.All(context.Background())
	if err != nil {
		t.Fatalf("second All call returned error: %v", err)
	}
	if len(cached) != 2 {
		t.Error("All() did not reuse the cached slice")
	}
	_ = route
}

func TestM2MAddIssuesJunctionInsert(t *testing.T) {
	flight, route := registerFlightRoute(t, "B")
	conn := &fakeConn{}
	inst, _ := New(flight, conn, map[string]any{"id": int64(1)})
	ref, _ := New(route, conn, map[string]any{"id": int64(9), "name": "x"})

	acc, err := inst.M2M("routes")
	if err != nil {
		t.Fatalf("M2M returned error: %v", err)
	}
	if err := acc.Add(context.Background(), ref); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if len(conn.queries) != 1 || !strings.Contains(conn.queries[0], "INSERT INTO flightb_routeb") {
		t.Errorf("queries = %v, want a junction INSERT", conn.queries)
	}
}

func TestM2MRemoveIssuesJunctionDeleteAndInvalidatesCache(t *testing.T) {
	flight, route := registerFlightRoute(t, "C")
	conn := &fakeConn{}
	inst, _ := New(flight, conn, map[string]any{"id": int64(1)})
	ref, _ := New(route, conn, map[string]any{"id": int64(9), "name": "x"})

	acc, _ := inst.M2M("routes")
	if err := inst.Preload("routes", []*Instance{ref}); err != nil {
		t.Fatalf("Preload returned error: %v", err)
	}
	acc2, _ := inst.M2M("routes")
	if err := acc2.Remove(context.Background(), ref); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if acc2.loaded {
		t.Error("Remove should invalidate the cache (loaded=false)")
	}
	if len(conn.queries) != 1 || !strings.Contains(conn.queries[0], "DELETE FROM flightc_routec") {
		t.Errorf("queries = %v, want a junction DELETE", conn.queries)
	}
	_ = acc
}
