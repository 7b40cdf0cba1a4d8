// Package assembler implements the SQL assembler: a pure function that
// consumes a query descriptor and emits one SQL statement in its
// SELECT/COUNT/EXISTS/DELETE/UPDATE/UNION variants, plus
// annotation-subselects.
package assembler

import (
	"github.com/kersh1337228/goorm/internal/orm/aggregate"
	"github.com/kersh1337228/goorm/internal/orm/predicate"
)

// KeywordPredicate is one entry of a descriptor's keyword_predicates
// mapping: a dotted path (optionally operator-tagged) to a value. Kept
// as an ordered slice rather than a map so the synthesised conjunction's
// SQL is deterministic.
type KeywordPredicate struct {
	Key   string
	Value any
}

// Annotation is one entry of a descriptor's annotations sequence. Alias
// is empty for an auto-aliased (positional) annotation.
type Annotation struct {
	Alias string
	Expr  aggregate.Node
}

// QueryDescriptor is the central in-memory structure a result container
// builds up before the assembler materialises it into SQL.
type QueryDescriptor struct {
	Predicates        []predicate.Node
	KeywordPredicates []KeywordPredicate
	OrderBy           []string
	Annotations       []Annotation
	SelectRelated     []string
	PrefetchRelated   []string
	Limit             *int
	Offset            *int
	UnionTail         []*QueryDescriptor
}

// Clone returns a shallow copy of d with independently-growable slices,
// so mutation methods on a result container return a fresh, unexecuted
// descriptor rather than aliasing the original's slices (spec.md §3,
// "Descriptors are immutable once execution begins").
func (d *QueryDescriptor) Clone() *QueryDescriptor {
	clone := *d
	clone.Predicates = append([]predicate.Node{}, d.Predicates...)
	clone.KeywordPredicates = append([]KeywordPredicate{}, d.KeywordPredicates...)
	clone.OrderBy = append([]string{}, d.OrderBy...)
	clone.Annotations = append([]Annotation{}, d.Annotations...)
	clone.SelectRelated = append([]string{}, d.SelectRelated...)
	clone.PrefetchRelated = append([]string{}, d.PrefetchRelated...)
	clone.UnionTail = append([]*QueryDescriptor{}, d.UnionTail...)
	if d.Limit != nil {
		l := *d.Limit
		clone.Limit = &l
	}
	if d.Offset != nil {
		o := *d.Offset
		clone.Offset = &o
	}
	return &clone
}

// New returns an empty, unexecuted query descriptor.
func New() *QueryDescriptor { return &QueryDescriptor{} }
