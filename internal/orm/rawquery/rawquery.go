// Package rawquery wraps an escape hatch for hand-written SQL: a
// whitelist-regex-validated SELECT, executed and hydrated the same way
// as an assembled statement, for the rare case the predicate/aggregate
// algebra can't express.
package rawquery

import (
	"context"
	"regexp"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/dbconn"
	"github.com/kersh1337228/goorm/internal/orm/hydrate"
	"github.com/kersh1337228/goorm/internal/orm/registry"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// allowed matches the SELECT ... FROM <table> shape of a raw query;
// forbidden rejects semicolons and DDL/DML keywords, so a raw query can
// project and filter but never mutate or chain a second statement.
var allowed = regexp.MustCompile(`(?is)^\s*SELECT\s+.+\s+FROM\s+\w+.*$`)

var forbidden = regexp.MustCompile(`(?is)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|GRANT|REVOKE)\b|;`)

// Validate reports an error if query is not a single whitelisted SELECT.
func Validate(query string) error {
	trimmed := strings.TrimSpace(query)
	if !allowed.MatchString(trimmed) {
		return sqlerr.Misuse("raw query must be a single SELECT statement")
	}
	if forbidden.MatchString(trimmed) {
		return sqlerr.Misuse("raw query contains a forbidden keyword or statement separator")
	}
	return nil
}

// Query runs a validated raw SELECT against model's table shape,
// hydrating each row the same way the assembler's output is.
func Query(ctx context.Context, conn dbconn.Conn, model *registry.Model, query string, args ...any) ([]*hydrate.Instance, error) {
	if err := Validate(query); err != nil {
		return nil, err
	}

	cur, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	cols, err := cur.Columns()
	if err != nil {
		return nil, err
	}

	var out []*hydrate.Instance
	for cur.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := cur.Scan(ptrs...); err != nil {
			return nil, err
		}
		inst, herr := hydrate.FromRow(model, conn, nil, cols, vals)
		if herr != nil {
			return nil, herr
		}
		out = append(out, inst)
	}
	return out, cur.Err()
}
