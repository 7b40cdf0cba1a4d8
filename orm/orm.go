package orm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/dbconn"
	"github.com/kersh1337228/goorm/internal/orm/hydrate"
	"github.com/kersh1337228/goorm/internal/orm/rawquery"
	"github.com/kersh1337228/goorm/internal/orm/resultset"
)

// DB is the handle every model operation runs through: one connection
// wrapping the configured Connector.
type DB struct {
	conn dbconn.Conn
}

// Connect opens a DB using connector against cfg. Pass dbconn.MySQLConnector{}
// for the shipped driver.
func Connect(ctx context.Context, connector dbconn.Connector, cfg *dbconn.Config) (*DB, error) {
	conn, err := connector.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

// Objects returns an unexecuted result set over every row of model.
func (db *DB) Objects(model *Model) *resultset.ResultSet {
	return resultset.New(model, db.conn)
}

// Filter is shorthand for db.Objects(model).Filter(kwargs).
func (db *DB) Filter(model *Model, kwargs map[string]any) *resultset.ResultSet {
	return db.Objects(model).Filter(kwargs)
}

// Get fetches the single row of model matching kwargs.
func (db *DB) Get(ctx context.Context, model *Model, kwargs map[string]any) (*hydrate.Instance, error) {
	return db.Objects(model).Get(ctx, kwargs)
}

// Create builds and saves a new row of model with the given field values.
func (db *DB) Create(ctx context.Context, model *Model, values map[string]any) (*hydrate.Instance, error) {
	return hydrate.Create(ctx, model, db.conn, values)
}

// BulkCreate saves every row in rows, issuing one INSERT per row and
// stopping at the first error.
func (db *DB) BulkCreate(ctx context.Context, model *Model, rows []map[string]any) ([]*hydrate.Instance, error) {
	out := make([]*hydrate.Instance, 0, len(rows))
	for _, values := range rows {
		inst, err := db.Create(ctx, model, values)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Migrate creates model's table (and any many-to-many junction tables)
// if they don't already exist.
func (db *DB) Migrate(ctx context.Context, model *Model) error {
	if _, err := db.conn.ExecContext(ctx, model.CreateTableDDL()); err != nil {
		return fmt.Errorf("orm: create table %s: %w", model.Table, err)
	}
	for _, ddl := range model.JunctionDDL() {
		if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("orm: create junction table for %s: %w", model.Name, err)
		}
	}
	return nil
}

// MigrateAll runs Migrate for every registered model.
func (db *DB) MigrateAll(ctx context.Context) error {
	for _, model := range AllModels() {
		if err := db.Migrate(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

// Describe returns model's column descriptions, as reported by DESCRIBE.
func (db *DB) Describe(ctx context.Context, model *Model) ([]string, error) {
	cur, err := db.conn.QueryContext(ctx, model.DescribeSQL())
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	cols, err := cur.Columns()
	if err != nil {
		return nil, err
	}

	var out []string
	for cur.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := cur.Scan(ptrs...); err != nil {
			return nil, err
		}
		parts := make([]string, len(cols))
		for i, v := range vals {
			parts[i] = fmt.Sprintf("%v", v)
		}
		out = append(out, strings.Join(parts, " | "))
	}
	return out, cur.Err()
}

// Drop drops model's table.
func (db *DB) Drop(ctx context.Context, model *Model) error {
	_, err := db.conn.ExecContext(ctx, model.DropTableDDL())
	return err
}

// Raw runs a hand-written, whitelist-validated SELECT against model's
// table shape, for queries the predicate/aggregate algebra can't express.
func (db *DB) Raw(ctx context.Context, model *Model, query string, args ...any) ([]*hydrate.Instance, error) {
	return rawquery.Query(ctx, db.conn, model, query, args...)
}
