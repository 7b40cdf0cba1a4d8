package assembler

import (
	"fmt"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/predicate"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// stripQuotes removes a single pair of surrounding single quotes from a
// field codec's literal, so *startswith/contains/endswith operators can
// re-wrap the bare value with '%'.
func stripQuotes(lit string) string {
	if len(lit) >= 2 && lit[0] == '\'' && lit[len(lit)-1] == '\'' {
		return lit[1 : len(lit)-1]
	}
	return lit
}

func truthy(v any) bool {
	switch n := v.(type) {
	case nil:
		return false
	case bool:
		return n
	case int:
		return n != 0
	case int64:
		return n != 0
	case string:
		return n != ""
	default:
		return true
	}
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, sqlerr.Misuse("predicate: expected an integer value, got %T", v)
	}
}

func asPair(v any) (any, any, error) {
	switch p := v.(type) {
	case [2]any:
		return p[0], p[1], nil
	case []any:
		if len(p) != 2 {
			return nil, nil, sqlerr.Misuse("predicate: range operator requires exactly two values, got %d", len(p))
		}
		return p[0], p[1], nil
	default:
		return nil, nil, sqlerr.Misuse("predicate: range operator requires a pair of values, got %T", v)
	}
}

func asSlice(v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	default:
		return nil, sqlerr.Misuse("predicate: \"in\" operator requires a slice of values, got %T", v)
	}
}

// renderCondition renders the SQL fragment "<colExpr> <op> <value>" for
// every operator tag in the closed set spec.md §4.1 defines. toSQL is
// the terminal field's codec, used wherever the operand shares the
// field's own type (equality, comparisons, LIKE variants, range, in).
// The year/month/day/hour/minute/second and isnull operators take
// operands of a different shape (an integer, a boolean) and are encoded
// without the field codec.
func renderCondition(colExpr string, op predicate.Operator, value any, toSQL func(any) (string, error)) (string, error) {
	switch op {
	case predicate.OpEq:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		return colExpr + " = " + lit, nil
	case predicate.OpGt, predicate.OpGte, predicate.OpLt, predicate.OpLte:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		symbols := map[predicate.Operator]string{
			predicate.OpGt: ">", predicate.OpGte: ">=", predicate.OpLt: "<", predicate.OpLte: "<=",
		}
		return colExpr + " " + symbols[op] + " " + lit, nil
	case predicate.OpStartsWith:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		return colExpr + " LIKE BINARY '" + stripQuotes(lit) + "%'", nil
	case predicate.OpIStartsWith:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		return "LOWER(" + colExpr + ") LIKE '" + strings.ToLower(stripQuotes(lit)) + "%'", nil
	case predicate.OpEndsWith:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		return colExpr + " LIKE BINARY '%" + stripQuotes(lit) + "'", nil
	case predicate.OpIEndsWith:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		return "LOWER(" + colExpr + ") LIKE '%" + strings.ToLower(stripQuotes(lit)) + "'", nil
	case predicate.OpContains:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		return colExpr + " LIKE BINARY '%" + stripQuotes(lit) + "%'", nil
	case predicate.OpIContains:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		return "LOWER(" + colExpr + ") LIKE '%" + strings.ToLower(stripQuotes(lit)) + "%'", nil
	case predicate.OpRange:
		lo, hi, err := asPair(value)
		if err != nil {
			return "", err
		}
		loLit, err := toSQL(lo)
		if err != nil {
			return "", err
		}
		hiLit, err := toSQL(hi)
		if err != nil {
			return "", err
		}
		return colExpr + " BETWEEN " + loLit + " AND " + hiLit, nil
	case predicate.OpYear, predicate.OpMonth, predicate.OpDay, predicate.OpHour, predicate.OpMinute, predicate.OpSecond:
		n, err := asInt64(value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s) = %d", strings.ToUpper(string(op)), colExpr, n), nil
	case predicate.OpIsNull:
		if truthy(value) {
			return colExpr + " IS NULL", nil
		}
		return colExpr + " IS NOT NULL", nil
	case predicate.OpRegex:
		lit, err := toSQL(value)
		if err != nil {
			return "", err
		}
		return colExpr + " LIKE " + lit, nil
	case predicate.OpIn:
		values, err := asSlice(value)
		if err != nil {
			return "", err
		}
		lits := make([]string, len(values))
		for i, v := range values {
			lit, err := toSQL(v)
			if err != nil {
				return "", err
			}
			lits[i] = lit
		}
		return colExpr + " IN (" + strings.Join(lits, ", ") + ")", nil
	default:
		return "", sqlerr.Misuse("predicate: unknown operator tag %q", op)
	}
}
