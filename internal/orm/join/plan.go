// Package join implements the join planner: given a dotted path over a
// starting model, it resolves an ordered list of JOIN records and a
// terminal field, allocating stable, collision-free table aliases.
package join

import (
	"fmt"
	"strconv"

	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/registry"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// Join is one LEFT JOIN emitted by the planner.
type Join struct {
	Table string
	Alias string
	On    string
}

// Result is the outcome of planning a dotted path.
type Result struct {
	Joins []Join
	// TerminalModel is the model the terminal field belongs to.
	TerminalModel *registry.Model
	// TerminalAlias is the alias to qualify the terminal field with:
	// "<table>00" if the path had no link hops, else the alias of the
	// last-joined table.
	TerminalAlias string
	// TerminalField is the final path segment's field name. For a
	// many-to-many terminal segment this is "id" at the referent's
	// alias; for every other terminal (scalar or foreign-key) it is the
	// segment's own field name, since a foreign-key column already
	// stores the referent's id directly.
	TerminalField string
	// NextPrimaryIndex is the primary-join index to use for the next
	// path planned within the same statement.
	NextPrimaryIndex int
}

// BaseAlias is the outer model's own alias: "<table>00".
func BaseAlias(m *registry.Model) string {
	return m.Table + "00"
}

// Plan walks path over model, starting from primaryIndex (the
// statement-wide join counter) and annotateIndex (0 outside annotation
// subselects, >=1 inside one). Every segment but the last must be a
// link field (foreign-key or many-to-many); the last segment is the
// terminal field and may be scalar or link (spec.md §3 invariant 3). No
// alias deduplication is performed across repeated traversals of the
// same prefix: the primary index always advances, per spec.md §9's
// "no deduplication" decision.
//
// baseAlias is the alias the first hop's ON clause qualifies against:
// "<table>00" for the outer query, or "<table>0<aidx>" for an
// annotation's correlated subselect.
func Plan(m *registry.Model, path []string, baseAlias string, primaryIndex, annotateIndex int) (Result, error) {
	return planFrom(m, path, baseAlias, primaryIndex, annotateIndex)
}

// PlanThrough traverses every segment of path as a link hop, including
// the last, returning the model and alias reached at the end. This is
// the select_related projection's planner: spec.md §4.4 step 4 projects
// every scalar column of the path's terminal model, which requires
// actually joining through a final FK segment rather than reading its
// raw column (unlike a predicate or aggregate leaf's terminal
// semantics).
func PlanThrough(m *registry.Model, path []string, baseAlias string, primaryIndex, annotateIndex int) ([]Join, *registry.Model, string, int, error) {
	prevAlias := baseAlias
	cur := m
	p := primaryIndex
	var joins []Join

	for _, seg := range path {
		f, err := cur.MustField(seg)
		if err != nil {
			return nil, nil, "", 0, err
		}
		switch lf := f.(type) {
		case *field.ForeignKeyField:
			refModel, rerr := registry.Lookup(lf.Ref())
			if rerr != nil {
				return nil, nil, "", 0, rerr
			}
			alias := lf.RefTable() + strconv.Itoa(p) + strconv.Itoa(annotateIndex)
			joins = append(joins, Join{Table: lf.RefTable(), Alias: alias, On: fmt.Sprintf("%s.%s = %s.id", prevAlias, seg, alias)})
			prevAlias, cur, p = alias, refModel, p+1
		case *field.ManyToManyField:
			refModel, rerr := registry.Lookup(lf.Ref())
			if rerr != nil {
				return nil, nil, "", 0, rerr
			}
			jointAlias := "joint_table" + strconv.Itoa(p) + strconv.Itoa(annotateIndex)
			refAlias := lf.RefTable() + strconv.Itoa(p) + strconv.Itoa(annotateIndex)
			joins = append(joins,
				Join{Table: lf.JunctionTable(), Alias: jointAlias, On: fmt.Sprintf("%s.id = %s.%s", prevAlias, jointAlias, lf.OwnerColumn())},
				Join{Table: lf.RefTable(), Alias: refAlias, On: fmt.Sprintf("%s.%s = %s.id", jointAlias, lf.RefColumn(), refAlias)},
			)
			prevAlias, cur, p = refAlias, refModel, p+1
		default:
			return nil, nil, "", 0, sqlerr.Schema("path segment %q on model %s is not a link field", seg, cur.Name)
		}
	}

	return joins, cur, prevAlias, p, nil
}

func planFrom(m *registry.Model, path []string, prevAlias string, primaryIndex, annotateIndex int) (Result, error) {
	if len(path) == 0 {
		return Result{}, sqlerr.Misuse("join planner: empty path")
	}

	seg := path[0]
	last := len(path) == 1
	p := primaryIndex

	f, err := m.MustField(seg)
	if err != nil {
		return Result{}, err
	}

	fk, isFK := f.(*field.ForeignKeyField)
	m2m, isM2M := f.(*field.ManyToManyField)

	if !isFK && !isM2M {
		if !last {
			return Result{}, sqlerr.Schema("path segment %q on model %s is not a link field", seg, m.Name)
		}
		return Result{TerminalModel: m, TerminalAlias: prevAlias, TerminalField: seg, NextPrimaryIndex: p}, nil
	}

	if isFK {
		if last {
			// A foreign-key column already stores the referent's id; no
			// join is needed to read it.
			return Result{TerminalModel: m, TerminalAlias: prevAlias, TerminalField: seg, NextPrimaryIndex: p}, nil
		}
		refModel, rerr := registry.Lookup(fk.Ref())
		if rerr != nil {
			return Result{}, rerr
		}
		alias := fk.RefTable() + strconv.Itoa(p) + strconv.Itoa(annotateIndex)
		j := Join{Table: fk.RefTable(), Alias: alias, On: fmt.Sprintf("%s.%s = %s.id", prevAlias, seg, alias)}
		sub, serr := planFrom(refModel, path[1:], alias, p+1, annotateIndex)
		if serr != nil {
			return Result{}, serr
		}
		sub.Joins = append([]Join{j}, sub.Joins...)
		return sub, nil
	}

	// Many-to-many: always requires the junction + referent joins, even
	// as a terminal segment, since the referent's id only becomes
	// available once both joins are in place.
	refModel, rerr := registry.Lookup(m2m.Ref())
	if rerr != nil {
		return Result{}, rerr
	}
	jointAlias := "joint_table" + strconv.Itoa(p) + strconv.Itoa(annotateIndex)
	refAlias := m2m.RefTable() + strconv.Itoa(p) + strconv.Itoa(annotateIndex)
	js := []Join{
		{Table: m2m.JunctionTable(), Alias: jointAlias, On: fmt.Sprintf("%s.id = %s.%s", prevAlias, jointAlias, m2m.OwnerColumn())},
		{Table: m2m.RefTable(), Alias: refAlias, On: fmt.Sprintf("%s.%s = %s.id", jointAlias, m2m.RefColumn(), refAlias)},
	}
	if last {
		return Result{Joins: js, TerminalModel: refModel, TerminalAlias: refAlias, TerminalField: "id", NextPrimaryIndex: p + 1}, nil
	}
	sub, serr := planFrom(refModel, path[1:], refAlias, p+1, annotateIndex)
	if serr != nil {
		return Result{}, serr
	}
	sub.Joins = append(js, sub.Joins...)
	return sub, nil
}
