package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/join"
	"github.com/kersh1337228/goorm/internal/orm/predicate"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

// condResult is one Q-tree node's contribution to a statement: the joins
// it required and its rendered condition, routed into the WHERE bucket
// or the HAVING bucket (or, in the mixed case, split across both — see
// assembleCompound).
type condResult struct {
	joins  []join.Join
	where  string
	having string
	next   int
}

// genericLiteral renders a value with no field codec available, for
// conditions against an annotation alias rather than a real column.
func genericLiteral(v any) (string, error) {
	switch n := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(n, "'", "''") + "'", nil
	case bool:
		if n {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	default:
		return fmt.Sprintf("%v", n), nil
	}
}

func isCompound(n predicate.Node) bool {
	switch n.(type) {
	case predicate.AndNode, predicate.OrNode:
		return true
	default:
		return false
	}
}

// assembleTree renders a single Q-tree node (and its children) into a
// condResult. annotationAliases is the set of this statement's
// annotation aliases: a leaf whose single-segment path names one of them
// is routed to HAVING rather than WHERE (spec.md §4.1).
func assembleTree(node predicate.Node, model *registry.Model, annotationAliases map[string]bool, baseAlias string, primaryIndex, annotateIndex int) (condResult, error) {
	switch t := node.(type) {
	case predicate.Leaf:
		if len(t.Path) == 1 && annotationAliases[t.Path[0]] {
			cond, err := renderCondition(t.Path[0], t.Op, t.Value, genericLiteral)
			if err != nil {
				return condResult{}, err
			}
			return condResult{having: cond, next: primaryIndex}, nil
		}

		res, err := join.Plan(model, t.Path, baseAlias, primaryIndex, annotateIndex)
		if err != nil {
			return condResult{}, err
		}
		f, err := res.TerminalModel.MustField(res.TerminalField)
		if err != nil {
			return condResult{}, err
		}
		colExpr := res.TerminalAlias + "." + res.TerminalField
		cond, err := renderCondition(colExpr, t.Op, t.Value, f.ToSQL)
		if err != nil {
			return condResult{}, err
		}
		return condResult{joins: res.Joins, where: cond, next: res.NextPrimaryIndex}, nil

	case predicate.AndNode:
		return assembleCompound(t.Children, "AND", model, annotationAliases, baseAlias, primaryIndex, annotateIndex)

	case predicate.OrNode:
		return assembleCompound(t.Children, "OR", model, annotationAliases, baseAlias, primaryIndex, annotateIndex)

	case predicate.NotNode:
		inner, err := assembleTree(t.Child, model, annotationAliases, baseAlias, primaryIndex, annotateIndex)
		if err != nil {
			return condResult{}, err
		}
		out := condResult{joins: inner.joins, next: inner.next}
		if inner.where != "" {
			out.where = "NOT (" + inner.where + ")"
		}
		if inner.having != "" {
			out.having = "NOT (" + inner.having + ")"
		}
		return out, nil

	default:
		return condResult{}, fmt.Errorf("assembler: unknown predicate node %T", node)
	}
}

// assembleCompound assembles an AND/OR node's children in order,
// threading the primary-join index through each, and joins their WHERE
// and HAVING fragments separately with connector. A child produced by a
// nested AndNode/OrNode is parenthesized to preserve precedence (AND
// binds tighter than OR, per spec.md §4.1).
func assembleCompound(children []predicate.Node, connector string, model *registry.Model, annotationAliases map[string]bool, baseAlias string, primaryIndex, annotateIndex int) (condResult, error) {
	var joins []join.Join
	var whereParts []string
	var havingParts []string
	idx := primaryIndex

	for _, c := range children {
		res, err := assembleTree(c, model, annotationAliases, baseAlias, idx, annotateIndex)
		if err != nil {
			return condResult{}, err
		}
		joins = append(joins, res.joins...)
		idx = res.next
		if res.where != "" {
			if isCompound(c) {
				whereParts = append(whereParts, "("+res.where+")")
			} else {
				whereParts = append(whereParts, res.where)
			}
		}
		if res.having != "" {
			if isCompound(c) {
				havingParts = append(havingParts, "("+res.having+")")
			} else {
				havingParts = append(havingParts, res.having)
			}
		}
	}

	out := condResult{joins: joins, next: idx}
	if len(whereParts) > 0 {
		out.where = strings.Join(whereParts, " "+connector+" ")
	}
	if len(havingParts) > 0 {
		out.having = strings.Join(havingParts, " "+connector+" ")
	}
	return out, nil
}
