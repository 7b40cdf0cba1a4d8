package field

import (
	"fmt"
	"strconv"
	"strings"
)

// IntField is a signed integer column.
type IntField struct {
	base
}

// NewInt declares a signed int field.
func NewInt(opts ...Option) *IntField { return &IntField{newBase(opts)} }

func (f *IntField) DDL(name string) string { return f.ddl(name, "int", f.ToSQL) }

func (f *IntField) ToSQL(v any) (string, error) {
	if v == nil {
		if f.null {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: int field is not nullable")
	}
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	default:
		return "", fmt.Errorf("field: int field got non-integer value %v (%T)", v, v)
	}
}

func (f *IntField) FromSQL(v any) (any, error) { return toInt64(v) }

// UnsignedIntField is an unsigned integer column.
type UnsignedIntField struct {
	base
}

// NewUnsignedInt declares an unsigned int field.
func NewUnsignedInt(opts ...Option) *UnsignedIntField { return &UnsignedIntField{newBase(opts)} }

func (f *UnsignedIntField) DDL(name string) string { return f.ddl(name, "int unsigned", f.ToSQL) }

func (f *UnsignedIntField) ToSQL(v any) (string, error) {
	if v == nil {
		if f.null {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: unsigned int field is not nullable")
	}
	n, err := toInt64(v)
	if err != nil {
		return "", err
	}
	i := n.(int64)
	if i < 0 {
		return "", fmt.Errorf("field: unsigned int field got negative value %d", i)
	}
	return strconv.FormatInt(i, 10), nil
}

func (f *UnsignedIntField) FromSQL(v any) (any, error) { return toInt64(v) }

// FloatField is a floating point column.
type FloatField struct {
	base
}

// NewFloat declares a float field.
func NewFloat(opts ...Option) *FloatField { return &FloatField{newBase(opts)} }

func (f *FloatField) DDL(name string) string { return f.ddl(name, "float", f.ToSQL) }

func (f *FloatField) ToSQL(v any) (string, error) {
	if v == nil {
		if f.null {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: float field is not nullable")
	}
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(n), nil
	default:
		return "", fmt.Errorf("field: float field got non-numeric value %v (%T)", v, v)
	}
}

func (f *FloatField) FromSQL(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case []byte:
		return strconv.ParseFloat(string(n), 64)
	case string:
		return strconv.ParseFloat(n, 64)
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("field: cannot decode float from %T", v)
	}
}

// StringField is a variable-length VARCHAR(size) column.
type StringField struct {
	base
	Size int
}

// NewString declares a VARCHAR(size) field.
func NewString(size int, opts ...Option) *StringField {
	return &StringField{base: newBase(opts), Size: size}
}

func (f *StringField) DDL(name string) string {
	return f.ddl(name, fmt.Sprintf("varchar(%d)", f.Size), f.ToSQL)
}

func (f *StringField) ToSQL(v any) (string, error) { return quoteString(v, f.null) }
func (f *StringField) FromSQL(v any) (any, error)  { return decodeString(v) }

// TextField is an unbounded TEXT column.
type TextField struct {
	base
}

// NewText declares a TEXT field.
func NewText(opts ...Option) *TextField { return &TextField{newBase(opts)} }

func (f *TextField) DDL(name string) string        { return f.ddl(name, "text", f.ToSQL) }
func (f *TextField) ToSQL(v any) (string, error)    { return quoteString(v, f.null) }
func (f *TextField) FromSQL(v any) (any, error)     { return decodeString(v) }

// BooleanField is a single-bit boolean column, rendered as 0/1 literals.
type BooleanField struct {
	base
}

// NewBoolean declares a boolean field.
func NewBoolean(opts ...Option) *BooleanField { return &BooleanField{newBase(opts)} }

func (f *BooleanField) DDL(name string) string { return f.ddl(name, "bit(1)", f.ToSQL) }

func (f *BooleanField) ToSQL(v any) (string, error) {
	if v == nil {
		if f.null {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: boolean field is not nullable")
	}
	b, ok := v.(bool)
	if !ok {
		return "", fmt.Errorf("field: boolean field got non-bool value %v (%T)", v, v)
	}
	if b {
		return "1", nil
	}
	return "0", nil
}

func (f *BooleanField) FromSQL(v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return n, nil
	case int64:
		return n != 0, nil
	case []byte:
		return len(n) > 0 && n[0] != 0, nil
	default:
		return nil, fmt.Errorf("field: cannot decode boolean from %T", v)
	}
}

func toInt64(v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err
	default:
		return nil, fmt.Errorf("field: cannot decode integer from %T", v)
	}
}

func quoteString(v any, nullable bool) (string, error) {
	if v == nil {
		if nullable {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: string field is not nullable")
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field: string field got non-string value %v (%T)", v, v)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}

func decodeString(v any) (any, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case string:
		return n, nil
	case []byte:
		return string(n), nil
	default:
		return nil, fmt.Errorf("field: cannot decode string from %T", v)
	}
}
