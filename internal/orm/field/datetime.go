package field

import (
	"fmt"
	"time"
)

// dateTimeLayout is the bit-exact wire format for datetime literals:
// zero-padded, 24-hour, no timezone.
const dateTimeLayout = "2006-01-02 15:04:05"

// DateTimeField is a MySQL DATETIME column.
type DateTimeField struct {
	base
}

// NewDateTime declares a datetime field.
func NewDateTime(opts ...Option) *DateTimeField { return &DateTimeField{newBase(opts)} }

func (f *DateTimeField) DDL(name string) string { return f.ddl(name, "datetime", f.ToSQL) }

func (f *DateTimeField) ToSQL(v any) (string, error) {
	if v == nil {
		if f.null {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: datetime field is not nullable")
	}
	t, ok := v.(time.Time)
	if !ok {
		return "", fmt.Errorf("field: datetime field got non-time value %v (%T)", v, v)
	}
	return "'" + t.UTC().Format(dateTimeLayout) + "'", nil
}

func (f *DateTimeField) FromSQL(v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return n, nil
	case []byte:
		return time.Parse(dateTimeLayout, string(n))
	case string:
		return time.Parse(dateTimeLayout, n)
	default:
		return nil, fmt.Errorf("field: cannot decode datetime from %T", v)
	}
}
