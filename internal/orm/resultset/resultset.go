// Package resultset implements the lazy result container: a query
// descriptor wrapped in a fluent, immutable-on-mutation builder that
// only talks to the database once a terminal operation is called.
package resultset

import (
	"context"
	"sort"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/aggregate"
	"github.com/kersh1337228/goorm/internal/orm/assembler"
	"github.com/kersh1337228/goorm/internal/orm/dbconn"
	"github.com/kersh1337228/goorm/internal/orm/hydrate"
	"github.com/kersh1337228/goorm/internal/orm/predicate"
	"github.com/kersh1337228/goorm/internal/orm/registry"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// ResultSet is a query descriptor plus the model/connection it executes
// against. Every mutator returns a fresh ResultSet wrapping a cloned
// descriptor, leaving the receiver untouched (spec.md §3, "descriptors
// are immutable once execution begins").
type ResultSet struct {
	model *registry.Model
	conn  dbconn.Conn
	desc  *assembler.QueryDescriptor
}

// New returns an unexecuted result set over every row of model.
func New(model *registry.Model, conn dbconn.Conn) *ResultSet {
	return &ResultSet{model: model, conn: conn, desc: assembler.New()}
}

func (r *ResultSet) clone() *ResultSet {
	return &ResultSet{model: r.model, conn: r.conn, desc: r.desc.Clone()}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Filter narrows the result set by a conjunction of keyword predicates
// (e.g. {"age__gt": 30}), combined with any predicates already present.
func (r *ResultSet) Filter(kwargs map[string]any) *ResultSet {
	rs := r.clone()
	for _, k := range sortedKeys(kwargs) {
		rs.desc.KeywordPredicates = append(rs.desc.KeywordPredicates, assembler.KeywordPredicate{Key: k, Value: kwargs[k]})
	}
	return rs
}

// FilterQ narrows the result set by one or more predicate.Node trees,
// each conjoined with the rest of the descriptor's predicates.
func (r *ResultSet) FilterQ(nodes ...predicate.Node) *ResultSet {
	rs := r.clone()
	rs.desc.Predicates = append(rs.desc.Predicates, nodes...)
	return rs
}

// Exclude narrows the result set to rows NOT matching the conjunction of
// kwargs.
func (r *ResultSet) Exclude(kwargs map[string]any) (*ResultSet, error) {
	keys := sortedKeys(kwargs)
	leaves := make([]predicate.Node, 0, len(keys))
	for _, k := range keys {
		leaf, err := predicate.Leaf1(k, kwargs[k])
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}
	rs := r.clone()
	rs.desc.Predicates = append(rs.desc.Predicates, predicate.Not(predicate.And(leaves...)))
	return rs, nil
}

// OrderBy appends entries to the result set's ordering, so repeated
// calls accumulate in call order; an entry already present is not added
// again. A leading "-" on an entry means descending.
func (r *ResultSet) OrderBy(fields ...string) *ResultSet {
	rs := r.clone()
	for _, f := range fields {
		dup := false
		for _, have := range rs.desc.OrderBy {
			if have == f {
				dup = true
				break
			}
		}
		if !dup {
			rs.desc.OrderBy = append(rs.desc.OrderBy, f)
		}
	}
	return rs
}

// SelectRelated eagerly joins the named foreign-key paths into the base
// query instead of lazily loading them per instance.
func (r *ResultSet) SelectRelated(paths ...string) *ResultSet {
	rs := r.clone()
	rs.desc.SelectRelated = append(rs.desc.SelectRelated, paths...)
	return rs
}

// PrefetchRelated issues one companion query per named dotted path,
// joining through every foreign-key and many-to-many hop the path
// names (at least one of which must be many-to-many), and regroups its
// rows onto the already-fetched instances at every hop, avoiding one
// query per instance per relation.
func (r *ResultSet) PrefetchRelated(paths ...string) *ResultSet {
	rs := r.clone()
	rs.desc.PrefetchRelated = append(rs.desc.PrefetchRelated, paths...)
	return rs
}

// Annotate adds a computed column to every row, backed by a correlated
// subselect. An empty alias auto-names the annotation from its
// expression shape.
func (r *ResultSet) Annotate(alias string, expr aggregate.Node) *ResultSet {
	rs := r.clone()
	rs.desc.Annotations = append(rs.desc.Annotations, assembler.Annotation{Alias: alias, Expr: expr})
	return rs
}

// Limit caps the number of rows returned.
func (r *ResultSet) Limit(n int) *ResultSet {
	rs := r.clone()
	rs.desc.Limit = &n
	return rs
}

// Offset skips the first n rows.
func (r *ResultSet) Offset(n int) *ResultSet {
	rs := r.clone()
	rs.desc.Offset = &n
	return rs
}

// Union appends other as this result set's UNION tail.
func (r *ResultSet) Union(other *ResultSet) *ResultSet {
	rs := r.clone()
	rs.desc.UnionTail = append(rs.desc.UnionTail, other.desc.Clone())
	return rs
}

// combinedPredicate folds a descriptor's predicates and keyword
// predicates into one Q-tree node, for the Or/And set-algebra operators.
func combinedPredicate(d *assembler.QueryDescriptor) (predicate.Node, error) {
	nodes := append([]predicate.Node{}, d.Predicates...)
	for _, kp := range d.KeywordPredicates {
		leaf, err := predicate.Leaf1(kp.Key, kp.Value)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, leaf)
	}
	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return nodes[0], nil
	default:
		return predicate.And(nodes...), nil
	}
}

// Or returns the result set matching either receiver's or other's
// filters (set union over the same model).
func (r *ResultSet) Or(other *ResultSet) (*ResultSet, error) {
	left, err := combinedPredicate(r.desc)
	if err != nil {
		return nil, err
	}
	right, err := combinedPredicate(other.desc)
	if err != nil {
		return nil, err
	}
	rs := New(r.model, r.conn)
	switch {
	case left == nil && right == nil:
	case left == nil:
		rs.desc.Predicates = []predicate.Node{right}
	case right == nil:
		rs.desc.Predicates = []predicate.Node{left}
	default:
		rs.desc.Predicates = []predicate.Node{predicate.Or(left, right)}
	}
	return rs, nil
}

// And returns the result set matching both receiver's and other's
// filters (set intersection over the same model).
func (r *ResultSet) And(other *ResultSet) *ResultSet {
	rs := r.clone()
	rs.desc.Predicates = append(rs.desc.Predicates, other.desc.Predicates...)
	rs.desc.KeywordPredicates = append(rs.desc.KeywordPredicates, other.desc.KeywordPredicates...)
	return rs
}

// Aggregate executes the descriptor's filters with its row set collapsed
// through one or more outer aggregate expressions, returning a map from
// each expression's alias to its scalar result.
func (r *ResultSet) Aggregate(ctx context.Context, anns ...assembler.Annotation) (map[string]any, error) {
	query, aliases, err := assembler.AssembleAggregate(r.model, r.desc, anns)
	if err != nil {
		return nil, err
	}
	row := r.conn.QueryRowContext(ctx, query)
	vals := make([]any, len(aliases))
	ptrs := make([]any, len(aliases))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := row.Scan(ptrs...); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(aliases))
	for i, a := range aliases {
		out[a] = vals[i]
	}
	return out, nil
}

// All executes the descriptor and returns every matching instance.
func (r *ResultSet) All(ctx context.Context) ([]*hydrate.Instance, error) {
	query, err := assembler.AssembleSelect(r.model, r.desc)
	if err != nil {
		return nil, err
	}
	cur, err := r.conn.QueryContext(ctx, query)
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
		inst, herr := hydrate.FromRow(r.model, r.conn, r.desc.SelectRelated, cols, vals)
		if herr != nil {
			return nil, herr
		}
		out = append(out, inst)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	if len(r.desc.PrefetchRelated) > 0 {
		if err := prefetch(ctx, r.conn, out, r.desc.PrefetchRelated); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Get fetches the single instance matching kwargs, erroring if none or
// more than one row matches.
func (r *ResultSet) Get(ctx context.Context, kwargs map[string]any) (*hydrate.Instance, error) {
	rows, err := r.Filter(kwargs).All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, sqlerr.NotFound("no %s row matches %v", r.model.Table, kwargs)
	case 1:
		return rows[0], nil
	default:
		return nil, sqlerr.Misuse("%s.get matched %d rows, expected exactly one", r.model.Table, len(rows))
	}
}

// Exists reports whether the descriptor's filters match at least one
// row, without materialising it.
func (r *ResultSet) Exists(ctx context.Context) (bool, error) {
	query, err := assembler.AssembleExists(r.model, r.desc)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := r.conn.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Contains reports whether instanceID appears in the descriptor's
// result set.
func (r *ResultSet) Contains(ctx context.Context, instanceID int64) (bool, error) {
	query, err := assembler.AssembleMembership(r.model, r.desc, instanceID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := r.conn.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Len returns the number of rows the descriptor's filters match.
func (r *ResultSet) Len(ctx context.Context) (int64, error) {
	query, err := assembler.AssembleCount(r.model, r.desc)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := r.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Update sets assignments on every row matching the descriptor's
// filters, returning the number of affected rows.
func (r *ResultSet) Update(ctx context.Context, assignments ...assembler.Assignment) (int64, error) {
	query, err := assembler.AssembleUpdate(r.model, r.desc, assignments)
	if err != nil {
		return 0, err
	}
	result, err := r.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Delete removes every row matching the descriptor's filters, returning
// the number of affected rows.
func (r *ResultSet) Delete(ctx context.Context) (int64, error) {
	query, err := assembler.AssembleDelete(r.model, r.desc)
	if err != nil {
		return 0, err
	}
	result, err := r.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func splitPath(path string) []string {
	return strings.Split(path, "__")
}
