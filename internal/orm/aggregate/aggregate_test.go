package aggregate

import (
	"testing"

	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

func registerPlane(t *testing.T, suffix string) *registry.Model {
	t.Helper()
	m, err := registry.Register("Plane"+suffix, []registry.FieldDecl{
		{Name: "capacity", Field: field.NewInt()},
		{Name: "price", Field: field.NewFloat()},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return m
}

func TestDefaultAliasLeaf(t *testing.T) {
	n := NewSum("capacity")
	if got := DefaultAlias(n); got != "capacity__sum" {
		t.Errorf("DefaultAlias(Sum(capacity)) = %q, want %q", got, "capacity__sum")
	}
}

func TestDefaultAliasDottedPath(t *testing.T) {
	n := NewAvg("plane__capacity")
	if got := DefaultAlias(n); got != "plane__capacity__avg" {
		t.Errorf("DefaultAlias = %q, want %q", got, "plane__capacity__avg")
	}
}

func TestDefaultAliasBinOp(t *testing.T) {
	n := NewSum("capacity").Add(NewMax("price"))
	want := "capacity__sum___add___price__max"
	if got := DefaultAlias(n); got != want {
		t.Errorf("DefaultAlias = %q, want %q", got, want)
	}
}

func TestAssembleCountEmitsStarWildcard(t *testing.T) {
	m := registerPlane(t, "A")
	n := NewCount("capacity")

	got, err := Assemble(n, m, "planesa00", 1, 0)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if got.Expr != "COUNT(*)" {
		t.Errorf("Expr = %q, want %q", got.Expr, "COUNT(*)")
	}
}

func TestAssembleLeafScalarField(t *testing.T) {
	m := registerPlane(t, "B")
	n := NewSum("capacity")

	got, err := Assemble(n, m, "planesb00", 1, 0)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	want := "SUM(planesb00.capacity)"
	if got.Expr != want {
		t.Errorf("Expr = %q, want %q", got.Expr, want)
	}
	if len(got.Joins) != 0 {
		t.Errorf("Joins = %v, want none for a same-model scalar path", got.Joins)
	}
}

func TestAssembleBinOpThreadsPrimaryIndex(t *testing.T) {
	m := registerPlane(t, "C")
	n := NewSum("capacity").Mul(NewAvg("price"))

	got, err := Assemble(n, m, "planesc00", 1, 0)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	want := "(SUM(planesc00.capacity)) * (AVG(planesc00.price))"
	if got.Expr != want {
		t.Errorf("Expr = %q, want %q", got.Expr, want)
	}
	if got.Alias != "capacity__sum___mul___price__avg" {
		t.Errorf("Alias = %q", got.Alias)
	}
	if got.NextPrimaryIndex != 1 {
		t.Errorf("NextPrimaryIndex = %d, want 1 (no joins on either side)", got.NextPrimaryIndex)
	}
}

func TestAssembleFloorDivRendersDivKeyword(t *testing.T) {
	m := registerPlane(t, "D")
	n := NewMax("capacity").FloorDiv(NewMin("capacity"))

	got, err := Assemble(n, m, "planesd00", 1, 0)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	want := "(MAX(planesd00.capacity)) DIV (MIN(planesd00.capacity))"
	if got.Expr != want {
		t.Errorf("Expr = %q, want %q", got.Expr, want)
	}
}

func TestBinOpCombinatorsChain(t *testing.T) {
	a := NewSum("capacity")
	b := NewMax("price")
	chained := a.Add(b).Sub(NewMin("price"))
	if _, ok := chained.(BinOp); !ok {
		t.Fatalf("chained combinator result = %T, want BinOp", chained)
	}
}
