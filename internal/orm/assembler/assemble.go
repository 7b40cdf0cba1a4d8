package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/aggregate"
	"github.com/kersh1337228/goorm/internal/orm/join"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

// renderJoins renders an ordered list of joins as a sequence of
// " LEFT JOIN <table> AS <alias> ON <on>" fragments.
func renderJoins(js []join.Join) string {
	var sb strings.Builder
	for _, j := range js {
		fmt.Fprintf(&sb, " LEFT JOIN %s AS %s ON %s", j.Table, j.Alias, j.On)
	}
	return sb.String()
}

// compiled is the fully-planned, not-yet-composed shape of one
// descriptor's base SELECT (spec.md §4.4 steps 1-7): every join, WHERE
// and HAVING fragment and ORDER BY term has been resolved to concrete
// table aliases. sql() composes these into the final statement (step 8).
type compiled struct {
	model       *registry.Model
	baseAlias   string
	projCols    []string
	joins       []join.Join
	whereParts  []string
	havingParts []string
	orderParts  []string
	limit       *int
	offset      *int
}

func (c *compiled) sql(extraFrom string) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(c.projCols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(c.model.Table)
	sb.WriteString(" AS ")
	sb.WriteString(c.baseAlias)
	sb.WriteString(renderJoins(c.joins))
	if extraFrom != "" {
		sb.WriteString(" ")
		sb.WriteString(extraFrom)
	}
	if len(c.whereParts) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(c.whereParts, " AND "))
	}
	if len(c.havingParts) > 0 {
		sb.WriteString(" HAVING ")
		sb.WriteString(strings.Join(c.havingParts, " AND "))
	}
	if len(c.orderParts) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(c.orderParts, ", "))
	}
	if c.limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *c.limit)
	}
	if c.offset != nil {
		fmt.Fprintf(&sb, " OFFSET %d", *c.offset)
	}
	return sb.String()
}

// annotationAliasSet computes the set of alias names this descriptor's
// annotations expose, without planning any joins, so predicates (which
// may reference an annotation alias) can route to HAVING correctly
// regardless of declaration order (spec.md §4.1).
func annotationAliasSet(d *QueryDescriptor) map[string]bool {
	out := map[string]bool{}
	for _, a := range d.Annotations {
		alias := a.Alias
		if alias == "" {
			alias = aggregate.DefaultAlias(a.Expr)
		}
		out[alias] = true
	}
	return out
}

// compile performs spec.md §4.4 steps 1-7 for one descriptor: predicate
// and keyword-predicate assembly, select_related projection, annotation
// subselects, base projection and order_by.
func compile(model *registry.Model, d *QueryDescriptor) (*compiled, error) {
	primaryIndex, annotateIndex := 1, 0
	baseAlias := join.BaseAlias(model)
	aliases := annotationAliasSet(d)

	c := &compiled{model: model, baseAlias: baseAlias}

	// Step 2: predicates.
	for _, p := range d.Predicates {
		res, err := assembleTree(p, model, aliases, baseAlias, primaryIndex, annotateIndex)
		if err != nil {
			return nil, err
		}
		c.joins = append(c.joins, res.joins...)
		primaryIndex = res.next
		if res.where != "" {
			c.whereParts = append(c.whereParts, res.where)
		}
		if res.having != "" {
			c.havingParts = append(c.havingParts, res.having)
		}
	}

	// Step 3: keyword_predicates, synthesised as one conjunction.
	if len(d.KeywordPredicates) > 0 {
		leaves, err := leavesFromKeywords(d.KeywordPredicates)
		if err != nil {
			return nil, err
		}
		res, err := assembleCompound(leaves, "AND", model, aliases, baseAlias, primaryIndex, annotateIndex)
		if err != nil {
			return nil, err
		}
		c.joins = append(c.joins, res.joins...)
		primaryIndex = res.next
		if res.where != "" {
			c.whereParts = append(c.whereParts, res.where)
		}
		if res.having != "" {
			c.havingParts = append(c.havingParts, res.having)
		}
	}

	var projCols []string

	// Step 6 (part 1): base model columns, emitted first; the
	// select_related and annotation columns below follow them.
	for _, col := range model.ScalarColumns() {
		projCols = append(projCols, baseAlias+"."+col)
	}

	// Step 4: select_related.
	for _, relPath := range d.SelectRelated {
		segs := strings.Split(relPath, "__")
		js, termModel, termAlias, next, err := join.PlanThrough(model, segs, baseAlias, primaryIndex, annotateIndex)
		if err != nil {
			return nil, err
		}
		c.joins = append(c.joins, js...)
		primaryIndex = next
		for _, col := range termModel.ScalarColumns() {
			projCols = append(projCols, fmt.Sprintf("%s.%s AS %s__%s", termAlias, col, relPath, col))
		}
	}

	// Step 5: annotations, each planned inside its own correlated
	// subselect with a fresh primary index and an advanced annotate
	// index.
	for _, ann := range d.Annotations {
		annotateIndex++
		subBase := model.Table + "0" + strconv.Itoa(annotateIndex)
		assembled, err := aggregate.Assemble(ann.Expr, model, subBase, 1, annotateIndex)
		if err != nil {
			return nil, err
		}
		alias := ann.Alias
		if alias == "" {
			alias = assembled.Alias
		}
		subselect := fmt.Sprintf("(SELECT %s FROM %s AS %s%s WHERE %s.id = %s.id) AS %s",
			assembled.Expr, model.Table, subBase, renderJoins(assembled.Joins), subBase, baseAlias, alias)
		projCols = append(projCols, subselect)
	}

	c.projCols = projCols

	// Step 7: order_by.
	for _, raw := range d.OrderBy {
		desc := strings.HasPrefix(raw, "-")
		pathStr := strings.TrimPrefix(raw, "-")
		segs := strings.Split(pathStr, "__")

		if len(segs) == 1 && aliases[segs[0]] {
			col := segs[0]
			if desc {
				col += " DESC"
			}
			c.orderParts = append(c.orderParts, col)
			continue
		}

		res, err := join.Plan(model, segs, baseAlias, primaryIndex, annotateIndex)
		if err != nil {
			return nil, err
		}
		c.joins = append(c.joins, res.Joins...)
		primaryIndex = res.NextPrimaryIndex
		col := res.TerminalAlias + "." + res.TerminalField
		if desc {
			col += " DESC"
		}
		c.orderParts = append(c.orderParts, col)
	}

	if d.Limit != nil {
		l := *d.Limit
		c.limit = &l
	}
	if d.Offset != nil {
		o := *d.Offset
		c.offset = &o
	}

	return c, nil
}
