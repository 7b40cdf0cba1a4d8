package field

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JSONField stores an arbitrary JSON-encodable value as a JSON column.
type JSONField struct {
	base
}

// NewJSON declares a JSON field.
func NewJSON(opts ...Option) *JSONField { return &JSONField{newBase(opts)} }

func (f *JSONField) DDL(name string) string { return f.ddl(name, "json", f.ToSQL) }

func (f *JSONField) ToSQL(v any) (string, error) {
	if v == nil {
		if f.null {
			return "NULL", nil
		}
		return "", fmt.Errorf("field: json field is not nullable")
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("field: json field encode: %w", err)
	}
	return "'" + strings.ReplaceAll(string(encoded), "'", "''") + "'", nil
}

func (f *JSONField) FromSQL(v any) (any, error) {
	var raw []byte
	switch n := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		raw = n
	case string:
		raw = []byte(n)
	default:
		return nil, fmt.Errorf("field: cannot decode json from %T", v)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("field: json field decode: %w", err)
	}
	return decoded, nil
}
