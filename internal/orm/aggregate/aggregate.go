// Package aggregate implements the aggregate algebra: MAX/MIN/AVG/COUNT/
// SUM leaves and the arithmetic/comparison tree over them, producing SQL
// column expressions with composed aliases.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/join"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

// Function is one of the five supported aggregate functions.
type Function string

const (
	Max   Function = "MAX"
	Min   Function = "MIN"
	Avg   Function = "AVG"
	Sum   Function = "SUM"
	Count Function = "COUNT"
)

// Node is any node of an aggregate expression: a Leaf or a BinOp
// combining two Nodes.
type Node interface {
	Add(other Node) Node
	Sub(other Node) Node
	Mul(other Node) Node
	FloorDiv(other Node) Node
	Div(other Node) Node
	Eq(other Node) Node
	Ne(other Node) Node
	Gt(other Node) Node
	Gte(other Node) Node
	Lt(other Node) Node
	Lte(other Node) Node
}

// Leaf is a single aggregate function applied to a dotted field path.
type Leaf struct {
	Path []string
	Fn   Function
}

// BinaryOp is the arithmetic/comparison operator composing two aggregate
// nodes.
type BinaryOp string

const (
	OpAdd      BinaryOp = "+"
	OpSub      BinaryOp = "-"
	OpMul      BinaryOp = "*"
	OpFloorDiv BinaryOp = "//"
	OpDiv      BinaryOp = "/"
	OpEq       BinaryOp = "="
	OpNe       BinaryOp = "!="
	OpGt       BinaryOp = ">"
	OpGte      BinaryOp = ">="
	OpLt       BinaryOp = "<"
	OpLte      BinaryOp = "<="
)

// opNames is the word form joined into a composed alias as
// "___<op_name>___", matching the source's operator-method names.
var opNames = map[BinaryOp]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpFloorDiv: "floordiv", OpDiv: "truediv",
	OpEq: "eq", OpNe: "ne", OpGt: "gt", OpGte: "ge", OpLt: "lt", OpLte: "le",
}

// sqlTokens overrides the rendered SQL token for operators whose Go-side
// symbol isn't valid SQL. MySQL has no "//" operator; integer division
// is spelled out as the DIV keyword.
var sqlTokens = map[BinaryOp]string{
	OpFloorDiv: "DIV",
}

// sqlToken returns the token Assemble should splice between the two
// sides of a BinOp, falling back to the operator's Go-side symbol.
func sqlToken(op BinaryOp) string {
	if tok, ok := sqlTokens[op]; ok {
		return tok
	}
	return string(op)
}

// BinOp combines two aggregate nodes with a binary operator.
type BinOp struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

func combine(op BinaryOp, a, b Node) Node { return BinOp{Op: op, Left: a, Right: b} }

func (l Leaf) Add(o Node) Node      { return combine(OpAdd, l, o) }
func (l Leaf) Sub(o Node) Node      { return combine(OpSub, l, o) }
func (l Leaf) Mul(o Node) Node      { return combine(OpMul, l, o) }
func (l Leaf) FloorDiv(o Node) Node { return combine(OpFloorDiv, l, o) }
func (l Leaf) Div(o Node) Node      { return combine(OpDiv, l, o) }
func (l Leaf) Eq(o Node) Node       { return combine(OpEq, l, o) }
func (l Leaf) Ne(o Node) Node       { return combine(OpNe, l, o) }
func (l Leaf) Gt(o Node) Node       { return combine(OpGt, l, o) }
func (l Leaf) Gte(o Node) Node      { return combine(OpGte, l, o) }
func (l Leaf) Lt(o Node) Node       { return combine(OpLt, l, o) }
func (l Leaf) Lte(o Node) Node      { return combine(OpLte, l, o) }

func (b BinOp) Add(o Node) Node      { return combine(OpAdd, b, o) }
func (b BinOp) Sub(o Node) Node      { return combine(OpSub, b, o) }
func (b BinOp) Mul(o Node) Node      { return combine(OpMul, b, o) }
func (b BinOp) FloorDiv(o Node) Node { return combine(OpFloorDiv, b, o) }
func (b BinOp) Div(o Node) Node      { return combine(OpDiv, b, o) }
func (b BinOp) Eq(o Node) Node       { return combine(OpEq, b, o) }
func (b BinOp) Ne(o Node) Node       { return combine(OpNe, b, o) }
func (b BinOp) Gt(o Node) Node       { return combine(OpGt, b, o) }
func (b BinOp) Gte(o Node) Node      { return combine(OpGte, b, o) }
func (b BinOp) Lt(o Node) Node       { return combine(OpLt, b, o) }
func (b BinOp) Lte(o Node) Node      { return combine(OpLte, b, o) }

func leaf(path string, fn Function) Leaf {
	return Leaf{Path: strings.Split(path, "__"), Fn: fn}
}

// NewMax builds a MAX(path) aggregate.
func NewMax(path string) Node { return leaf(path, Max) }

// NewMin builds a MIN(path) aggregate.
func NewMin(path string) Node { return leaf(path, Min) }

// NewAvg builds an AVG(path) aggregate.
func NewAvg(path string) Node { return leaf(path, Avg) }

// NewSum builds a SUM(path) aggregate.
func NewSum(path string) Node { return leaf(path, Sum) }

// NewCount builds a COUNT(*) aggregate. The path is still join-planned
// to attach the aggregate to the proper scope, even though the emitted
// SQL ignores the terminal column and counts rows.
func NewCount(path string) Node { return leaf(path, Count) }

// Assembled is the SQL fragment produced by assembling one aggregate
// node: its joins, its column expression and its default alias.
type Assembled struct {
	Joins            []join.Join
	Expr             string
	Alias            string
	NextPrimaryIndex int
}

// Assemble renders node's SQL expression and joins within model's scope,
// threading the statement-wide primary-join index through every leaf it
// visits left to right. baseAlias is the alias the first hop of any leaf
// plans against: "<table>00" for the outer query, "<table>0<aidx>" for
// an aggregate used as an annotation's correlated subselect.
func Assemble(node Node, model *registry.Model, baseAlias string, primaryIndex, annotateIndex int) (Assembled, error) {
	switch n := node.(type) {
	case Leaf:
		res, err := join.Plan(model, n.Path, baseAlias, primaryIndex, annotateIndex)
		if err != nil {
			return Assembled{}, err
		}
		var expr string
		if n.Fn == Count {
			expr = "COUNT(*)"
		} else {
			expr = fmt.Sprintf("%s(%s.%s)", n.Fn, res.TerminalAlias, res.TerminalField)
		}
		alias := DefaultAlias(n)
		return Assembled{Joins: res.Joins, Expr: expr, Alias: alias, NextPrimaryIndex: res.NextPrimaryIndex}, nil

	case BinOp:
		left, err := Assemble(n.Left, model, baseAlias, primaryIndex, annotateIndex)
		if err != nil {
			return Assembled{}, err
		}
		right, err := Assemble(n.Right, model, baseAlias, left.NextPrimaryIndex, annotateIndex)
		if err != nil {
			return Assembled{}, err
		}
		joins := append(append([]join.Join{}, left.Joins...), right.Joins...)
		expr := fmt.Sprintf("(%s) %s (%s)", left.Expr, sqlToken(n.Op), right.Expr)
		alias := left.Alias + "___" + opNames[n.Op] + "___" + right.Alias
		return Assembled{Joins: joins, Expr: expr, Alias: alias, NextPrimaryIndex: right.NextPrimaryIndex}, nil

	default:
		return Assembled{}, fmt.Errorf("aggregate: unknown node type %T", node)
	}
}

// DefaultAlias computes a node's default alias without planning any
// joins, so the set of a statement's annotation aliases can be known
// before its predicates (which may reference them) are assembled.
func DefaultAlias(node Node) string {
	switch n := node.(type) {
	case Leaf:
		return strings.Join(n.Path, "__") + "__" + strings.ToLower(string(n.Fn))
	case BinOp:
		return DefaultAlias(n.Left) + "___" + opNames[n.Op] + "___" + DefaultAlias(n.Right)
	default:
		return ""
	}
}
