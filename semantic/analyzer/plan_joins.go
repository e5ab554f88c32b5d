// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analyzer

import (
	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

// planJoins protects aggregations from join fan-out. A join declared Many or
// Cross multiplies rows of the other side, so summing a measure across the
// raw join would count its rows once per match (the fan trap; two Many arms
// under one ancestor form the chasm trap). The rule rewrites every such join
// under an Aggregate so that each side is aggregated down to the grain of its
// join keys plus its requested group keys before joining. The join then only
// combines already-aggregated scalars, and the outer Aggregate re-aggregates
// the partial results: sums and counts are summed, mins and maxes are taken
// again, and averages travel as separate sum and count partials recombined by
// a division after the final aggregation.
//
// Aggregating a measure across a join with no declared cardinality is
// rejected with ErrAmbiguousJoinCardinality instead of silently producing a
// fan-prone result.
func planJoins(ctx *semantic.Context, a *Analyzer, n plan.Node) (plan.Node, error) {
	return plan.TransformUp(n, func(n plan.Node) (plan.Node, error) {
		agg, ok := n.(*plan.Aggregate)
		if !ok {
			return n, nil
		}
		return planAggregate(ctx, a, agg)
	})
}

// aggRewrite records how the outer aggregate must re-aggregate a measure
// whose partial was pushed below a join.
type aggRewrite struct {
	op  plan.AggOp
	avg bool
}

func planAggregate(ctx *semantic.Context, a *Analyzer, agg *plan.Aggregate) (plan.Node, error) {
	hasFanOut := false
	var undeclared bool
	walkTop(agg.Child, func(n plan.Node) bool {
		if j, ok := n.(*plan.Join); ok {
			switch j.Cardinality {
			case plan.CardinalityMany, plan.CardinalityCross:
				hasFanOut = true
			case plan.CardinalityUnspecified:
				undeclared = true
			}
		}
		return true
	})

	if undeclared {
		for _, c := range agg.Aggs {
			if c.Op == plan.OpDefault {
				return nil, semantic.ErrAmbiguousJoinCardinality.New(c.Measure)
			}
		}
	}
	if !hasFanOut {
		return agg, nil
	}

	fields, err := fieldsFor(agg)
	if err != nil {
		return nil, err
	}
	groupKeys := topGroupKeys(agg.Child)

	rewrites := make(map[string]aggRewrite)
	child, err := transformTop(agg.Child, func(n plan.Node) (plan.Node, error) {
		j, ok := n.(*plan.Join)
		if !ok || (j.Cardinality != plan.CardinalityMany && j.Cardinality != plan.CardinalityCross) {
			return n, nil
		}

		a.Log("pre-aggregating both sides of %s join", j.Cardinality)
		left, err := preAggregateSide(fields, j.Left, joinFields(j.On, true), groupKeys, agg.Aggs, rewrites)
		if err != nil {
			return nil, err
		}
		right, err := preAggregateSide(fields, j.Right, joinFields(j.On, false), groupKeys, agg.Aggs, rewrites)
		if err != nil {
			return nil, err
		}

		return plan.NewJoin(left, right, j.On, plan.CardinalityOne, j.Kind), nil
	})
	if err != nil {
		return nil, err
	}

	if len(rewrites) == 0 {
		return plan.NewAggregate(agg.Aggs, child), nil
	}

	// Rebuild the outer aggregate over the partial columns.
	var outAggs []plan.AggColumn
	var mutates []plan.MutateColumn
	for _, c := range agg.Aggs {
		rw, ok := rewrites[c.Name]
		if !ok {
			outAggs = append(outAggs, c)
			continue
		}
		if rw.avg {
			sumName, countName := c.Name+"__sum", c.Name+"__count"
			outAggs = append(outAggs,
				plan.AggColumn{Name: sumName, Measure: sumName, Op: plan.OpSum},
				plan.AggColumn{Name: countName, Measure: countName, Op: plan.OpSum},
			)
			mutates = append(mutates, plan.MutateColumn{
				Name: c.Name,
				Fn:   divideMeasures(sumName, countName),
			})
			continue
		}
		outAggs = append(outAggs, plan.AggColumn{Name: c.Name, Measure: c.Name, Op: rw.op})
	}

	var result plan.Node = plan.NewAggregate(outAggs, child)
	if len(mutates) > 0 {
		// Recombine avg partials and drop them from the output.
		result = plan.NewMutate(mutates, result)
		fields := make([]string, 0, len(groupKeys)+len(agg.Aggs))
		for _, k := range groupKeys {
			fields = append(fields, k.Field)
		}
		for _, c := range agg.Aggs {
			fields = append(fields, c.Name)
		}
		result = plan.NewProject(fields, result)
	}
	return result, nil
}

// preAggregateSide wraps one side of a fan-prone join in an aggregation at
// the grain of the side's join keys plus its group keys. Measures owned by
// the side become partial aggregates; partials produced by joins planned
// deeper in the same side are re-aggregated so they survive the wrap. A side
// with nothing to aggregate still gets deduplicated to one row per grain.
func preAggregateSide(
	fields *semantic.Fields,
	side plan.Node,
	sideJoinFields []string,
	groupKeys []plan.GroupKey,
	origAggs []plan.AggColumn,
	rewrites map[string]aggRewrite,
) (plan.Node, error) {
	sideTables := tableSet(side)

	grain := make([]plan.GroupKey, 0, len(sideJoinFields)+len(groupKeys))
	for _, f := range sideJoinFields {
		grain = append(grain, plan.GroupKey{Field: f})
	}
	for _, k := range groupKeys {
		if !onSide(fields, sideTables, k.Field) || containsKey(grain, k.Field) {
			continue
		}
		grain = append(grain, k)
	}

	var partials []plan.AggColumn
	for _, c := range origAggs {
		if rw, done := rewrites[c.Name]; done {
			// Planned by a join deeper in this side: carry the
			// partials through this grain.
			if rw.avg {
				for _, nm := range []string{c.Name + "__sum", c.Name + "__count"} {
					if producesColumn(side, nm) {
						partials = append(partials, plan.AggColumn{Name: nm, Measure: nm, Op: plan.OpSum})
					}
				}
			} else if producesColumn(side, c.Name) {
				partials = append(partials, plan.AggColumn{Name: c.Name, Measure: c.Name, Op: rw.op})
			}
			continue
		}

		if c.Op != plan.OpDefault {
			if producesColumn(side, c.Measure) {
				partials = append(partials, plan.AggColumn{Name: c.Name, Measure: c.Measure, Op: c.Op})
				rewrites[c.Name] = aggRewrite{op: reAggOp(c.Op)}
			}
			continue
		}

		rm, err := fields.Measure(c.Measure)
		if err != nil {
			continue
		}
		if _, ok := sideTables[rm.Table.Name()]; !ok {
			continue
		}

		switch rm.Measure.Agg.(type) {
		case *expression.Avg:
			partials = append(partials,
				plan.AggColumn{Name: c.Name + "__sum", Measure: rm.Qualified, Op: plan.OpSum},
				plan.AggColumn{Name: c.Name + "__count", Measure: rm.Qualified, Op: plan.OpCount},
			)
			rewrites[c.Name] = aggRewrite{avg: true}
		case *expression.Min:
			partials = append(partials, plan.AggColumn{Name: c.Name, Measure: rm.Qualified})
			rewrites[c.Name] = aggRewrite{op: plan.OpMin}
		case *expression.Max:
			partials = append(partials, plan.AggColumn{Name: c.Name, Measure: rm.Qualified})
			rewrites[c.Name] = aggRewrite{op: plan.OpMax}
		default:
			// Sums and counts re-aggregate by summing the partials.
			partials = append(partials, plan.AggColumn{Name: c.Name, Measure: rm.Qualified})
			rewrites[c.Name] = aggRewrite{op: plan.OpSum}
		}
	}

	return plan.NewAggregate(partials, plan.NewGroupBy(grain, side)), nil
}

// reAggOp returns the aggregation that combines partials produced by op.
func reAggOp(op plan.AggOp) plan.AggOp {
	switch op {
	case plan.OpMin:
		return plan.OpMin
	case plan.OpMax:
		return plan.OpMax
	default:
		return plan.OpSum
	}
}

func divideMeasures(numerator, denominator string) semantic.CalcFunc {
	return func(r semantic.Resolver) (semantic.Expression, error) {
		num, err := r.Measure(numerator)
		if err != nil {
			return nil, err
		}
		den, err := r.Measure(denominator)
		if err != nil {
			return nil, err
		}
		return expression.NewDiv(num, den), nil
	}
}

func joinFields(on []plan.JoinKey, left bool) []string {
	fields := make([]string, len(on))
	for i, key := range on {
		if left {
			fields[i] = key.Left
		} else {
			fields[i] = key.Right
		}
	}
	return fields
}

func onSide(fields *semantic.Fields, sideTables map[string]struct{}, field string) bool {
	if dim, err := fields.Dimension(field); err == nil {
		_, ok := sideTables[dim.Table.Name()]
		return ok
	}
	if t, _ := fields.Column(field); t != nil {
		_, ok := sideTables[t.Name()]
		return ok
	}
	return false
}

func containsKey(keys []plan.GroupKey, field string) bool {
	for _, k := range keys {
		if k.Field == field {
			return true
		}
	}
	return false
}

// producesColumn reports whether the subtree emits an output column with the
// given name from an Aggregate or Mutate node.
func producesColumn(n plan.Node, name string) bool {
	found := false
	plan.Inspect(n, func(n plan.Node) bool {
		switch n := n.(type) {
		case *plan.Aggregate:
			for _, c := range n.Aggs {
				if c.Name == name {
					found = true
				}
			}
		case *plan.Mutate:
			for _, c := range n.Cols {
				if c.Name == name {
					found = true
				}
			}
		}
		return !found
	})
	return found
}

// topGroupKeys collects the group keys of the aggregation, without descending
// into sides that were already aggregated.
func topGroupKeys(n plan.Node) []plan.GroupKey {
	var keys []plan.GroupKey
	walkTop(n, func(n plan.Node) bool {
		if g, ok := n.(*plan.GroupBy); ok {
			keys = append(keys, g.Keys...)
		}
		return true
	})
	return keys
}

// walkTop traverses the plan like plan.Inspect but does not descend into
// nested Aggregate subtrees, which belong to joins planned earlier.
func walkTop(n plan.Node, f func(plan.Node) bool) {
	if n == nil || !f(n) {
		return
	}
	if _, ok := n.(*plan.Aggregate); ok {
		return
	}
	for _, child := range n.Children() {
		walkTop(child, f)
	}
}

// transformTop rewrites the plan bottom-up like plan.TransformUp but leaves
// nested Aggregate subtrees untouched.
func transformTop(n plan.Node, f func(plan.Node) (plan.Node, error)) (plan.Node, error) {
	if _, ok := n.(*plan.Aggregate); ok {
		return n, nil
	}

	children := n.Children()
	if len(children) > 0 {
		newChildren := make([]plan.Node, len(children))
		for i, child := range children {
			nc, err := transformTop(child, f)
			if err != nil {
				return nil, err
			}
			newChildren[i] = nc
		}

		var err error
		n, err = n.WithChildren(newChildren...)
		if err != nil {
			return nil, err
		}
	}

	return f(n)
}
