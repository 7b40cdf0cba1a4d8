package resultset

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/dbconn"
	"github.com/kersh1337228/goorm/internal/orm/field"
	"github.com/kersh1337228/goorm/internal/orm/hydrate"
	"github.com/kersh1337228/goorm/internal/orm/registry"
	"github.com/kersh1337228/goorm/internal/orm/sqlerr"
)

// reverseOrderBy flips every entry's direction, defaulting to "-id" when
// the descriptor has no explicit ordering — an arbitrary but stable tie
// breaker, needed so negative indexing has a well-defined "last row".
func reverseOrderBy(paths []string) []string {
	if len(paths) == 0 {
		return []string{"-id"}
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if strings.HasPrefix(p, "-") {
			out[i] = strings.TrimPrefix(p, "-")
		} else {
			out[i] = "-" + p
		}
	}
	return out
}

// Reversed returns the result set with its ordering flipped end to end.
func (r *ResultSet) Reversed() *ResultSet {
	rs := r.clone()
	rs.desc.OrderBy = reverseOrderBy(rs.desc.OrderBy)
	return rs
}

// Index fetches the single row at position i, counting from the end for
// negative i (Python-style), by reversing the ordering and reading from
// the front rather than materialising the whole set.
func (r *ResultSet) Index(ctx context.Context, i int) (*hydrate.Instance, error) {
	rs := r
	if i < 0 {
		rs = r.Reversed()
		i = -i - 1
	}
	rows, err := rs.Limit(1).Offset(i).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sqlerr.NotFound("index %d out of range for %s", i, r.model.Table)
	}
	return rows[0], nil
}

// Slice returns the result set restricted to [low, high) (either bound
// may be nil for an open end), mirroring Python's a[low:high] over a
// lazily-evaluated set.
func (r *ResultSet) Slice(low, high *int) *ResultSet {
	rs := r.clone()
	if low != nil {
		off := *low
		rs.desc.Offset = &off
	}
	if high != nil {
		l := *high
		if low != nil {
			l -= *low
		}
		if l < 0 {
			l = 0
		}
		rs.desc.Limit = &l
	}
	return rs
}

// prefetchHop is one resolved segment of a prefetch_related path: the
// link field joined through to reach it, and the dotted prefix ("a",
// "a__b", ...) its model's columns are aliased under in the companion
// SELECT.
type prefetchHop struct {
	seg    string
	fk     *field.ForeignKeyField
	m2m    *field.ManyToManyField
	model  *registry.Model
	prefix string
}

// planPrefetchHops resolves path's segments against model in order,
// requiring every segment to be a link field (spec.md §3 invariant),
// and returns the resolved chain of hops reaching each intermediate and
// terminal model in turn.
func planPrefetchHops(model *registry.Model, segs []string) ([]prefetchHop, error) {
	hops := make([]prefetchHop, 0, len(segs))
	cur := model
	prefix := ""
	for _, seg := range segs {
		f, err := cur.MustField(seg)
		if err != nil {
			return nil, err
		}
		if prefix == "" {
			prefix = seg
		} else {
			prefix = prefix + "__" + seg
		}
		switch lf := f.(type) {
		case *field.ForeignKeyField:
			refModel, rerr := registry.Lookup(lf.Ref())
			if rerr != nil {
				return nil, rerr
			}
			hops = append(hops, prefetchHop{seg: seg, fk: lf, model: refModel, prefix: prefix})
			cur = refModel
		case *field.ManyToManyField:
			refModel, rerr := registry.Lookup(lf.Ref())
			if rerr != nil {
				return nil, rerr
			}
			hops = append(hops, prefetchHop{seg: seg, m2m: lf, model: refModel, prefix: prefix})
			cur = refModel
		default:
			return nil, sqlerr.Schema("path segment %q on model %s is not a link field", seg, cur.Name)
		}
	}
	return hops, nil
}

// buildPrefetchQuery renders the single SELECT joining model through
// every hop in order, projecting every scalar column of every
// intermediate and terminal model aliased "<prefix>__<col>" alongside
// the root row's own id, restricted to rootIDs — spec.md §4.5's "one
// companion SELECT per prefetch_related path", generalised to a path
// of arbitrary link hops rather than a single leading many-to-many
// field.
func buildPrefetchQuery(model *registry.Model, hops []prefetchHop, rootIDs []int64) string {
	baseAlias := model.Table + "00"
	prevAlias := baseAlias
	var joins strings.Builder
	var cols []string

	for i, h := range hops {
		var alias string
		if h.fk != nil {
			alias = h.fk.RefTable() + strconv.Itoa(i+1)
			fmt.Fprintf(&joins, " LEFT JOIN %s AS %s ON %s.%s = %s.id", h.fk.RefTable(), alias, prevAlias, h.seg, alias)
		} else {
			jointAlias := "joint_table" + strconv.Itoa(i+1)
			alias = h.m2m.RefTable() + strconv.Itoa(i+1)
			fmt.Fprintf(&joins, " LEFT JOIN %s AS %s ON %s.id = %s.%s", h.m2m.JunctionTable(), jointAlias, prevAlias, jointAlias, h.m2m.OwnerColumn())
			fmt.Fprintf(&joins, " LEFT JOIN %s AS %s ON %s.%s = %s.id", h.m2m.RefTable(), alias, jointAlias, h.m2m.RefColumn(), alias)
		}
		for _, col := range h.model.ScalarColumns() {
			cols = append(cols, fmt.Sprintf("%s.%s AS %s__%s", alias, col, h.prefix, col))
		}
		prevAlias = alias
	}

	idLits := make([]string, len(rootIDs))
	for i, id := range rootIDs {
		idLits[i] = strconv.FormatInt(id, 10)
	}

	return fmt.Sprintf("SELECT %s.id AS __prefetch_root_id, %s FROM %s AS %s%s WHERE %s.id IN (%s)",
		baseAlias, strings.Join(cols, ", "), model.Table, baseAlias, joins.String(), baseAlias, strings.Join(idLits, ", "))
}

// m2mGroupKey identifies one owner instance's many-to-many accessor
// across the rows of a prefetch query, so its distinct referents can be
// accumulated before the single Preload call that seeds it.
type m2mGroupKey struct {
	owner *hydrate.Instance
	seg   string
}

// prefetch batches a single SELECT joining through each named dotted
// path for every instance at once, then regroups rows back onto the
// matching instance at every hop of the path — the prefetch_related
// optimisation over one query per instance per relation. A path may
// chain any number of foreign-key hops before and after its many-to-many
// hop (spec.md §3: "sequence of dotted paths through at least one
// M2M"), not only a path that starts with one.
func prefetch(ctx context.Context, conn dbconn.Conn, instances []*hydrate.Instance, paths []string) error {
	if len(instances) == 0 {
		return nil
	}
	model := instances[0].Model()

	byID := make(map[int64]*hydrate.Instance, len(instances))
	rootIDs := make([]int64, len(instances))
	for i, inst := range instances {
		id := inst.RowID()
		byID[id] = inst
		rootIDs[i] = id
	}

	for _, path := range paths {
		hops, err := planPrefetchHops(model, splitPath(path))
		if err != nil {
			return err
		}
		hasM2M := false
		for _, h := range hops {
			if h.m2m != nil {
				hasM2M = true
				break
			}
		}
		if !hasM2M {
			return sqlerr.Misuse("prefetch_related path %q has no many-to-many hop", path)
		}

		query := buildPrefetchQuery(model, hops, rootIDs)
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}

		cols, err := rows.Columns()
		if err != nil {
			rows.Close()
			return err
		}

		hopCaches := make([]map[int64]*hydrate.Instance, len(hops))
		for i := range hopCaches {
			hopCaches[i] = map[int64]*hydrate.Instance{}
		}
		m2mGroups := map[m2mGroupKey]map[int64]*hydrate.Instance{}
		rootSeenFirstHop := map[int64]bool{}

		for rows.Next() {
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				rows.Close()
				return err
			}

			byCol := make(map[string]any, len(cols))
			for i, c := range cols {
				byCol[c] = vals[i]
			}

			rootID, _ := byCol["__prefetch_root_id"].(int64)
			prev := byID[rootID]
			if prev == nil {
				continue
			}

			for i, h := range hops {
				raw := make(map[string]any, len(h.model.ScalarColumns()))
				for _, col := range h.model.ScalarColumns() {
					raw[col] = byCol[h.prefix+"__"+col]
				}
				if raw["id"] == nil {
					// LEFT JOIN found no row at this hop; nothing further
					// down this path exists for this root row.
					break
				}

				inst, berr := hydrate.BuildInstance(conn, h.model, raw)
				if berr != nil {
					rows.Close()
					return berr
				}
				id := inst.RowID()

				if cached, ok := hopCaches[i][id]; ok {
					inst = cached
				} else {
					hopCaches[i][id] = inst
				}

				if h.m2m != nil {
					key := m2mGroupKey{owner: prev, seg: h.seg}
					grp := m2mGroups[key]
					if grp == nil {
						grp = map[int64]*hydrate.Instance{}
						m2mGroups[key] = grp
					}
					grp[id] = inst
					if i == 0 {
						rootSeenFirstHop[rootID] = true
					}
				} else {
					prev.PreloadRelated(h.seg, inst)
				}

				prev = inst
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		for key, grp := range m2mGroups {
			related := make([]*hydrate.Instance, 0, len(grp))
			for _, inst := range grp {
				related = append(related, inst)
			}
			if err := key.owner.Preload(key.seg, related); err != nil {
				return err
			}
		}

		// A root instance with zero matching rows at the path's first
		// hop still gets that hop's accessor seeded empty, so it never
		// falls back to a live query. A deeper hop's owner only exists
		// once at least one row has reached it, so it is always seeded
		// above when it has any related rows, or left to lazily query
		// (at most once) in the zero-match edge case.
		if hops[0].m2m != nil {
			for _, inst := range instances {
				if rootSeenFirstHop[inst.RowID()] {
					continue
				}
				if err := inst.Preload(hops[0].seg, nil); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
