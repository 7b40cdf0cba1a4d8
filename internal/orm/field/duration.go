package field

import (
	"fmt"
	"strconv"
	"time"
)

// DurationField stores a duration as an integer number of seconds.
type DurationField struct {
	base
}

// NewDuration declares a duration field.
func NewDuration(opts ...Option) *DurationField { return &DurationField{newBase(opts)} }

func (f *DurationField) DDL(name string) string { return f.ddl(name, "int", f.ToSQL) }

func (f *DurationField) ToSQL(v any) (string, error) {
	if v == nil {
		if f.null {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: duration field is not nullable")
	}
	d, ok := v.(time.Duration)
	if !ok {
		return "", fmt.Errorf("field: duration field got non-duration value %v (%T)", v, v)
	}
	return strconv.FormatInt(int64(d.Seconds()), 10), nil
}

func (f *DurationField) FromSQL(v any) (any, error) {
	n, err := toInt64(v)
	if err != nil || n == nil {
		return nil, err
	}
	return time.Duration(n.(int64)) * time.Second, nil
}
