package predicate

import (
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// Operator is one tag of the closed operator set a leaf's dotted key may
// end in. The zero value, OpEq, means plain equality and has no tag.
type Operator string

const (
	OpEq          Operator = ""
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpStartsWith  Operator = "startswith"
	OpIStartsWith Operator = "istartswith"
	OpEndsWith    Operator = "endswith"
	OpIEndsWith   Operator = "iendswith"
	OpContains    Operator = "contains"
	OpIContains   Operator = "icontains"
	OpRange       Operator = "range"
	OpYear        Operator = "year"
	OpMonth       Operator = "month"
	OpDay         Operator = "day"
	OpHour        Operator = "hour"
	OpMinute      Operator = "minute"
	OpSecond      Operator = "second"
	OpIsNull      Operator = "isnull"
	OpRegex       Operator = "regex"
	OpIn          Operator = "in"
)

// knownOperators is the closed tag set recognised as a trailing path
// segment; any other trailing segment is treated as a literal field
// name rather than an operator.
var knownOperators = map[Operator]bool{
	OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpStartsWith: true, OpIStartsWith: true,
	OpEndsWith: true, OpIEndsWith: true,
	OpContains: true, OpIContains: true,
	OpRange: true,
	OpYear:  true, OpMonth: true, OpDay: true,
	OpHour: true, OpMinute: true, OpSecond: true,
	OpIsNull: true, OpRegex: true, OpIn: true,
}

const reservedSeparator = "__"

// ParseKey splits a dotted key of the form "a__b__c" or
// "a__b__c__op" into its path segments and an optional trailing
// operator tag. A trailing segment is treated as an operator only when
// it is a member of the closed tag set AND at least one path segment
// remains before it — a bare operator-shaped field name ("year" alone)
// is just a field name.
func ParseKey(key string) ([]string, Operator, error) {
	if key == "" {
		return nil, OpEq, sqlerr.Misuse("predicate: empty key")
	}
	segs := strings.Split(key, reservedSeparator)
	if len(segs) > 1 {
		last := Operator(segs[len(segs)-1])
		if knownOperators[last] {
			return segs[:len(segs)-1], last, nil
		}
	}
	return segs, OpEq, nil
}
