package assembler

import (
	"fmt"
	"strings"

	"github.com/kersh1337228/goorm/internal/orm/aggregate"
	"github.com/kersh1337228/goorm/internal/orm/join"
	"github.com/kersh1337228/goorm/internal/orm/predicate"
	"github.com/kersh1337228/goorm/internal/orm/registry"
)

// leavesFromKeywords turns a descriptor's keyword_predicates into
// predicate leaves, so step 3 can reuse the same Q-tree assembly path
// as step 2 rather than a separate rendering routine.
func leavesFromKeywords(kps []KeywordPredicate) ([]predicate.Node, error) {
	leaves := make([]predicate.Node, 0, len(kps))
	for _, kp := range kps {
		leaf, err := predicate.Leaf1(kp.Key, kp.Value)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

// AssembleSelect renders d's full SELECT statement, including any
// union_tail entries joined with UNION (spec.md §4.4 steps 1-8, 10).
func AssembleSelect(model *registry.Model, d *QueryDescriptor) (string, error) {
	c, err := compile(model, d)
	if err != nil {
		return "", err
	}
	stmt := c.sql("")
	for _, ud := range d.UnionTail {
		uc, err := compile(model, ud)
		if err != nil {
			return "", err
		}
		stmt += " UNION " + uc.sql("")
	}
	return stmt, nil
}

// AssembleAggregate renders the base SELECT (without its union tail)
// wrapped as a derived table, projected through outerGroup's aggregate
// expressions (spec.md §4.4's outer_aggregate_group mechanism). It
// returns the statement and the alias each outerGroup entry was
// projected under, in order. union_tail is deliberately excluded: an
// aggregate over a union would first need to de-duplicate the combined
// row set, which outer_aggregate_group does not express; callers that
// need an aggregate over a union should aggregate each branch
// separately.
func AssembleAggregate(model *registry.Model, d *QueryDescriptor, outerGroup []Annotation) (string, []string, error) {
	c, err := compile(model, d)
	if err != nil {
		return "", nil, err
	}
	inner := c.sql("")

	var projs []string
	var joins []join.Join
	var aliases []string
	for _, ann := range outerGroup {
		assembled, aerr := aggregate.Assemble(ann.Expr, model, c.baseAlias, 1, 0)
		if aerr != nil {
			return "", nil, aerr
		}
		alias := ann.Alias
		if alias == "" {
			alias = assembled.Alias
		}
		projs = append(projs, assembled.Expr+" AS "+alias)
		aliases = append(aliases, alias)
		joins = append(joins, assembled.Joins...)
	}

	stmt := fmt.Sprintf("SELECT %s FROM (%s) AS %s%s", strings.Join(projs, ", "), inner, c.baseAlias, renderJoins(joins))
	return stmt, aliases, nil
}

// AssembleCount renders a COUNT statement: AssembleAggregate specialised
// to a single COUNT('id') outer aggregate.
func AssembleCount(model *registry.Model, d *QueryDescriptor) (string, error) {
	stmt, _, err := AssembleAggregate(model, d, []Annotation{{Expr: aggregate.NewCount("id")}})
	return stmt, err
}

// AssembleExists renders an EXISTS statement wrapping d's full SELECT.
func AssembleExists(model *registry.Model, d *QueryDescriptor) (string, error) {
	inner, err := AssembleSelect(model, d)
	if err != nil {
		return "", err
	}
	return "SELECT EXISTS(" + inner + ")", nil
}

// AssembleMembership renders a membership check: whether a row with id
// instanceID appears in d's result set, via an INNER JOIN back onto the
// model's own table restricted to that id, wrapped in EXISTS (spec.md
// §4.4's membership variant).
func AssembleMembership(model *registry.Model, d *QueryDescriptor, instanceID int64) (string, error) {
	c, err := compile(model, d)
	if err != nil {
		return "", err
	}
	intersect := fmt.Sprintf("INNER JOIN %s AS intersect ON %s.id = intersect.id AND intersect.id = %d",
		model.Table, c.baseAlias, instanceID)
	return "SELECT EXISTS(" + c.sql(intersect) + ")", nil
}

// Assignment is one column to set in an UPDATE statement.
type Assignment struct {
	Name  string
	Value any
}

// AssembleUpdate renders an UPDATE statement over every row d's
// predicates select, expressed as a self-join against the id-only
// projection of d's SELECT (spec.md §4.4's UPDATE-by-query variant,
// needed because MySQL forbids selecting from the table being updated
// in the same statement).
func AssembleUpdate(model *registry.Model, d *QueryDescriptor, assignments []Assignment) (string, error) {
	if len(assignments) == 0 {
		return "", fmt.Errorf("assembler: update requires at least one assignment")
	}
	c, err := compile(model, d)
	if err != nil {
		return "", err
	}
	c.projCols = []string{c.baseAlias + ".id"}
	idSelect := c.sql("")

	setParts := make([]string, 0, len(assignments))
	for _, a := range assignments {
		f, ferr := model.MustField(a.Name)
		if ferr != nil {
			return "", ferr
		}
		lit, lerr := f.ToSQL(a.Value)
		if lerr != nil {
			return "", lerr
		}
		setParts = append(setParts, fmt.Sprintf("%s.%s = %s", model.Table, a.Name, lit))
	}

	return fmt.Sprintf("UPDATE %s, (%s) AS __tab SET %s WHERE %s.id = __tab.id",
		model.Table, idSelect, strings.Join(setParts, ", "), model.Table), nil
}

// AssembleDelete renders a DELETE statement over every row d's
// predicates select, expressed as an id subquery (spec.md §4.4's
// DELETE-by-query variant, needed for the same self-reference reason as
// AssembleUpdate).
func AssembleDelete(model *registry.Model, d *QueryDescriptor) (string, error) {
	inner, err := AssembleSelect(model, d)
	if err != nil {
		return "", err
	}
	base := model.Table + "00"
	return fmt.Sprintf("DELETE FROM %s WHERE %s.id IN (SELECT %s.id FROM (%s) AS %s)",
		model.Table, model.Table, base, inner, base), nil
}
