package predicate

import (
	"reflect"
	"testing"
)

func TestParseKeyPlain(t *testing.T) {
	path, op, err := ParseKey("name")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if !reflect.DeepEqual(path, []string{"name"}) || op != OpEq {
		t.Errorf("ParseKey(\"name\") = (%v, %q), want ([name], \"\")", path, op)
	}
}

func TestParseKeyWithOperator(t *testing.T) {
	path, op, err := ParseKey("age__gte")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if !reflect.DeepEqual(path, []string{"age"}) || op != OpGte {
		t.Errorf("ParseKey(\"age__gte\") = (%v, %q), want ([age], \"gte\")", path, op)
	}
}

func TestParseKeyDottedPath(t *testing.T) {
	path, op, err := ParseKey("airline__name__startswith")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if !reflect.DeepEqual(path, []string{"airline", "name"}) || op != OpStartsWith {
		t.Errorf("ParseKey(...) = (%v, %q)", path, op)
	}
}

func TestParseKeyBareOperatorNameIsAField(t *testing.T) {
	// A single segment matching an operator tag verbatim, with nothing
	// preceding it, is a field name, not an operator: "year" alone
	// can't mean the year() operator applied to nothing.
	path, op, err := ParseKey("year")
	if err != nil {
		t.Fatalf("ParseKey returned error: %v", err)
	}
	if !reflect.DeepEqual(path, []string{"year"}) || op != OpEq {
		t.Errorf("ParseKey(\"year\") = (%v, %q), want ([year], \"\")", path, op)
	}
}

func TestParseKeyEmpty(t *testing.T) {
	if _, _, err := ParseKey(""); err == nil {
		t.Fatal("ParseKey(\"\") should error")
	}
}

func TestLeaf1(t *testing.T) {
	n, err := Leaf1("age__gte", 18)
	if err != nil {
		t.Fatalf("Leaf1 returned error: %v", err)
	}
	leaf, ok := n.(Leaf)
	if !ok {
		t.Fatalf("Leaf1 returned %T, want Leaf", n)
	}
	if leaf.Op != OpGte || leaf.Value != 18 {
		t.Errorf("Leaf1 = %+v", leaf)
	}
}

func TestQRejectsWrongArity(t *testing.T) {
	if _, err := Q(map[string]any{}); err == nil {
		t.Fatal("Q(empty) should error")
	}
	if _, err := Q(map[string]any{"a": 1, "b": 2}); err == nil {
		t.Fatal("Q(two keys) should error")
	}
}

func TestNotFoldsDeMorgan(t *testing.T) {
	a, _ := Leaf1("a", 1)
	b, _ := Leaf1("b", 2)

	and := And(a, b)
	negated := Not(and)
	or, ok := negated.(OrNode)
	if !ok || len(or.Children) != 2 {
		t.Fatalf("Not(And(a,b)) = %T, want OrNode with 2 children", negated)
	}
	if _, ok := or.Children[0].(NotNode); !ok {
		t.Errorf("Not(And(a,b)).Children[0] = %T, want NotNode", or.Children[0])
	}

	or2 := Or(a, b)
	negated2 := Not(or2)
	and2, ok := negated2.(AndNode)
	if !ok || len(and2.Children) != 2 {
		t.Fatalf("Not(Or(a,b)) = %T, want AndNode with 2 children", negated2)
	}
}

func TestNotCollapsesDoubleNegation(t *testing.T) {
	a, _ := Leaf1("a", 1)
	once := Not(a)
	twice := Not(once)
	if !reflect.DeepEqual(twice, a) {
		t.Errorf("Not(Not(a)) = %v, want a itself", twice)
	}
}

func TestCombinatorMethodsDelegate(t *testing.T) {
	a, _ := Leaf1("a", 1)
	b, _ := Leaf1("b", 2)

	if _, ok := a.And(b).(AndNode); !ok {
		t.Error("Leaf.And should build an AndNode")
	}
	if _, ok := a.Or(b).(OrNode); !ok {
		t.Error("Leaf.Or should build an OrNode")
	}
	if _, ok := a.Not().(NotNode); !ok {
		t.Error("Leaf.Not should build a NotNode")
	}
}
