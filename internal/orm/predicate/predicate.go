// Package predicate implements the Q-tree: leaf predicates of the form
// "field_path op value" and the AND/OR/NOT combinators that compose
// them, with De Morgan folding applied at negation time.
package predicate

import "github.com/kersh1337228/goorm/internal/orm/sqlerr"

// Node is any node of a predicate expression tree: a Leaf or one of the
// AndNode/OrNode/NotNode compounds.
type Node interface {
	// Or, And and Not are the explicit combinator methods standing in
	// for the source's operator overloading (spec.md §9): a | b, a & b
	// and ~a respectively.
	Or(other Node) Node
	And(other Node) Node
	Not() Node
}

// Leaf is a single "path op value" predicate.
type Leaf struct {
	Path  []string
	Op    Operator
	Value any
}

// AndNode is a conjunction of children.
type AndNode struct{ Children []Node }

// OrNode is a disjunction of children.
type OrNode struct{ Children []Node }

// NotNode is the negation of a single child.
type NotNode struct{ Child Node }

func (l Leaf) Or(other Node) Node    { return Or(l, other) }
func (l Leaf) And(other Node) Node   { return And(l, other) }
func (l Leaf) Not() Node             { return Not(l) }
func (a AndNode) Or(o Node) Node     { return Or(a, o) }
func (a AndNode) And(o Node) Node    { return And(a, o) }
func (a AndNode) Not() Node          { return Not(a) }
func (o OrNode) Or(other Node) Node  { return Or(o, other) }
func (o OrNode) And(other Node) Node { return And(o, other) }
func (o OrNode) Not() Node           { return Not(o) }
func (n NotNode) Or(other Node) Node { return Or(n, other) }
func (n NotNode) And(o Node) Node    { return And(n, o) }
func (n NotNode) Not() Node          { return Not(n) }

// And builds a conjunction. AND binds tighter than OR, per spec.md §4.1's
// standard logical precedence note; callers express that precedence by
// nesting And() inside Or()'s arguments, since Go has no infix operators
// for user types.
func And(nodes ...Node) Node { return AndNode{Children: nodes} }

// Or builds a disjunction.
func Or(nodes ...Node) Node { return OrNode{Children: nodes} }

// Not negates a node, folding De Morgan's laws over And/Or children and
// collapsing double negation, rather than wrapping every negation in a
// NotNode.
func Not(n Node) Node {
	switch t := n.(type) {
	case AndNode:
		neg := make([]Node, len(t.Children))
		for i, c := range t.Children {
			neg[i] = Not(c)
		}
		return OrNode{Children: neg}
	case OrNode:
		neg := make([]Node, len(t.Children))
		for i, c := range t.Children {
			neg[i] = Not(c)
		}
		return AndNode{Children: neg}
	case NotNode:
		return t.Child
	default:
		return NotNode{Child: n}
	}
}

// Q builds a single leaf predicate from exactly one keyword pair, the
// typed equivalent of the source's Q(path_with_opt_op=value). Passing
// zero or more than one entry is a misuse error, never reaching SQL
// assembly.
func Q(kwargs map[string]any) (Node, error) {
	if len(kwargs) != 1 {
		return nil, sqlerr.Misuse("Q() accepts exactly one keyword argument, got %d", len(kwargs))
	}
	for k, v := range kwargs {
		return Leaf1(k, v)
	}
	panic("unreachable")
}

// Leaf1 builds a single leaf predicate from one dotted key and value,
// parsing an optional trailing operator tag off the key.
func Leaf1(key string, value any) (Node, error) {
	path, op, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	return Leaf{Path: path, Op: op, Value: value}, nil
}
