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

package sle

import (
	"strings"

	"gopkg.in/src-d/go-errors.v1"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/exec"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/filter"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

// ErrNestedCalculation is returned when a calculated measure references
// another calculated measure. Calculated measures may only reference base
// measures and dimensions.
var ErrNestedCalculation = errors.NewKind("calculated measure %q references calculated measure %q")

// On builds an equality join key between a left-side and a right-side field.
func On(left, right string) plan.JoinKey {
	return plan.JoinKey{Left: left, Right: right}
}

type joinSpec struct {
	table       *semantic.SemanticTable
	on          []plan.JoinKey
	cardinality plan.Cardinality
	kind        plan.JoinKind
}

type aggSpec struct {
	name    string
	measure string
	op      plan.AggOp
}

// Query is an immutable fluent builder over a semantic table. Every method
// returns a new value, so a partially built query can be shared and extended
// along different branches without synchronization.
type Query struct {
	engine *Engine
	table  *semantic.SemanticTable

	joins    []joinSpec
	filters  []filter.Filter
	keys     []plan.GroupKey
	aggs     []aggSpec
	mutates  []plan.MutateColumn
	sorts    []plan.SortField
	projects []string
	limit    int64
	offset   int64

	err error
}

func (q *Query) copy() *Query {
	nq := *q
	nq.joins = append([]joinSpec(nil), q.joins...)
	nq.filters = append([]filter.Filter(nil), q.filters...)
	nq.keys = append([]plan.GroupKey(nil), q.keys...)
	nq.aggs = append([]aggSpec(nil), q.aggs...)
	nq.mutates = append([]plan.MutateColumn(nil), q.mutates...)
	nq.sorts = append([]plan.SortField(nil), q.sorts...)
	nq.projects = append([]string(nil), q.projects...)
	return &nq
}

func (q *Query) join(name string, on []plan.JoinKey, c plan.Cardinality, k plan.JoinKind) *Query {
	if q.err != nil {
		return q
	}
	t, err := q.engine.Catalog.Table(name)
	if err != nil {
		nq := q.copy()
		nq.err = err
		return nq
	}
	nq := q.copy()
	nq.joins = append(nq.joins, joinSpec{table: t, on: on, cardinality: c, kind: k})
	return nq
}

// Join adds an inner join without a declared cardinality. Aggregating a
// measure across such a join fails during analysis; declare the cardinality
// with JoinOne or JoinMany when measures are involved.
func (q *Query) Join(table string, on ...plan.JoinKey) *Query {
	return q.join(table, on, plan.CardinalityUnspecified, plan.JoinInner)
}

// JoinOne adds an inner join where at most one right row matches each left
// row.
func (q *Query) JoinOne(table string, on ...plan.JoinKey) *Query {
	return q.join(table, on, plan.CardinalityOne, plan.JoinInner)
}

// JoinMany adds an inner join where several right rows may match each left
// row.
func (q *Query) JoinMany(table string, on ...plan.JoinKey) *Query {
	return q.join(table, on, plan.CardinalityMany, plan.JoinInner)
}

// LeftJoinOne adds a left outer join with at most one right match per left
// row.
func (q *Query) LeftJoinOne(table string, on ...plan.JoinKey) *Query {
	return q.join(table, on, plan.CardinalityOne, plan.JoinLeft)
}

// LeftJoinMany adds a left outer join where several right rows may match each
// left row.
func (q *Query) LeftJoinMany(table string, on ...plan.JoinKey) *Query {
	return q.join(table, on, plan.CardinalityMany, plan.JoinLeft)
}

// CrossJoin adds a cartesian product with the given table.
func (q *Query) CrossJoin(table string) *Query {
	return q.join(table, nil, plan.CardinalityCross, plan.JoinInner)
}

// Filter adds a filter. Filters are compiled against the full field map of
// the join tree when the plan is built, so they may reference fields of
// tables joined after the Filter call.
func (q *Query) Filter(f filter.Filter) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	nq.filters = append(nq.filters, f)
	return nq
}

// FilterExpr adds a filter written in the boolean expression mini-grammar,
// e.g. "region = 'EMEA' and amount > 100".
func (q *Query) FilterExpr(expr string) *Query {
	return q.Filter(filter.Expr(expr))
}

// GroupBy adds grouping keys. Each field is a dimension reference or a raw
// column, optionally qualified.
func (q *Query) GroupBy(fields ...string) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	for _, f := range fields {
		nq.keys = append(nq.keys, plan.GroupKey{Field: f})
	}
	return nq
}

// GroupByGrain adds a grouping key over a time dimension truncated to the
// given grain.
func (q *Query) GroupByGrain(field string, grain semantic.Grain) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	nq.keys = append(nq.keys, plan.GroupKey{Field: field, Grain: grain})
	return nq
}

// Aggregate requests measures, each aggregated with its declared aggregation.
// The output column takes the measure's display name (the part after the last
// dot).
func (q *Query) Aggregate(measures ...string) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	for _, m := range measures {
		nq.aggs = append(nq.aggs, aggSpec{name: displayName(m), measure: m, op: plan.OpDefault})
	}
	return nq
}

// AggregateAs requests a measure under an explicit output name.
func (q *Query) AggregateAs(name, measure string) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	nq.aggs = append(nq.aggs, aggSpec{name: name, measure: measure, op: plan.OpDefault})
	return nq
}

// Mutate adds a computed column evaluated after aggregation. The function
// resolves names against the aggregated output columns only.
func (q *Query) Mutate(name string, fn semantic.CalcFunc) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	nq.mutates = append(nq.mutates, plan.MutateColumn{Name: name, Fn: fn})
	return nq
}

// OrderBy adds sort fields, e.g. OrderBy(plan.Asc("region"),
// plan.Desc("revenue")).
func (q *Query) OrderBy(fields ...plan.SortField) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	nq.sorts = append(nq.sorts, fields...)
	return nq
}

// Project restricts the output to the given fields, in the given order.
func (q *Query) Project(fields ...string) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	nq.projects = append(nq.projects, fields...)
	return nq
}

// Limit caps the number of output rows.
func (q *Query) Limit(n int64) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	nq.limit = n
	return nq
}

// Offset skips the first n output rows.
func (q *Query) Offset(n int64) *Query {
	if q.err != nil {
		return q
	}
	nq := q.copy()
	nq.offset = n
	return nq
}

// Plan builds the logical plan for the query. The plan is not yet analyzed.
func (q *Query) Plan() (plan.Node, error) {
	if q.err != nil {
		return nil, q.err
	}

	tables := []*semantic.SemanticTable{q.table}
	var node plan.Node = plan.NewSource(q.table)
	for _, j := range q.joins {
		tables = append(tables, j.table)
		node = plan.NewJoin(node, plan.NewSource(j.table), j.on, j.cardinality, j.kind)
	}

	fields, err := semantic.BuildFields(tables...)
	if err != nil {
		return nil, err
	}

	if len(q.filters) > 0 {
		var conds []semantic.Expression
		for _, f := range q.filters {
			e, err := filter.Compile(f, fields)
			if err != nil {
				return nil, err
			}
			conds = append(conds, e)
		}
		node = plan.NewFilter(expression.JoinAnd(conds...), node)
	}

	if len(q.keys) > 0 {
		node = plan.NewGroupBy(q.keys, node)
	}

	if len(q.aggs) > 0 {
		var err error
		node, err = q.buildAggregate(fields, node)
		if err != nil {
			return nil, err
		}
	} else if len(q.mutates) > 0 {
		node = plan.NewMutate(q.mutates, node)
	}

	if len(q.sorts) > 0 {
		node = plan.NewSort(q.sorts, node)
	}
	if len(q.projects) > 0 {
		node = plan.NewProject(q.projects, node)
	}
	if q.limit > 0 || q.offset > 0 {
		limit := q.limit
		if limit <= 0 {
			limit = -1
		}
		node = plan.NewLimit(limit, q.offset, node)
	}

	return node, nil
}

// buildAggregate assembles the Aggregate node, expanding calculated measures
// into their base aggregations plus a Mutate computing the final value, and a
// Project hiding the helper columns.
func (q *Query) buildAggregate(fields *semantic.Fields, node plan.Node) (plan.Node, error) {
	var aggs []plan.AggColumn
	var calcs []plan.MutateColumn
	expanded := false

	produces := func(name string) bool {
		for _, a := range aggs {
			if a.Name == name {
				return true
			}
		}
		return false
	}

	for _, spec := range q.aggs {
		if spec.op != plan.OpDefault {
			aggs = append(aggs, plan.AggColumn{Name: spec.name, Measure: spec.measure, Op: spec.op})
			continue
		}

		rm, err := fields.Measure(spec.measure)
		if err != nil || !rm.Measure.Calculated() {
			// Unresolved measures are left for the analyzer to report.
			aggs = append(aggs, plan.AggColumn{Name: spec.name, Measure: spec.measure})
			continue
		}

		rec := &recordingResolver{}
		if _, err := rm.Measure.Calc(rec); err != nil {
			return nil, err
		}
		for _, ref := range rec.measures {
			if base, err := fields.Measure(ref); err == nil && base.Measure.Calculated() {
				return nil, ErrNestedCalculation.New(spec.measure, ref)
			}
			if name := displayName(ref); !produces(name) {
				aggs = append(aggs, plan.AggColumn{Name: name, Measure: ref})
			}
		}
		calcs = append(calcs, plan.MutateColumn{Name: spec.name, Fn: rm.Measure.Calc})
		expanded = true
	}

	node = plan.NewAggregate(aggs, node)

	mutates := append(calcs, q.mutates...)
	if len(mutates) > 0 {
		node = plan.NewMutate(mutates, node)
	}

	if expanded {
		// Keep only the group keys and the columns the caller asked for.
		var keep []string
		for _, key := range q.keys {
			keep = append(keep, key.Field)
		}
		for _, spec := range q.aggs {
			keep = append(keep, spec.name)
		}
		for _, m := range q.mutates {
			keep = append(keep, m.Name)
		}
		node = plan.NewProject(keep, node)
	}

	return node, nil
}

// Analyze builds the plan and runs the engine's analyzer over it.
func (q *Query) Analyze(ctx *semantic.Context) (plan.Node, error) {
	n, err := q.Plan()
	if err != nil {
		return nil, err
	}
	return q.engine.Analyzer.Analyze(ctx, n)
}

// Lower analyzes the query and lowers it into an executable form.
func (q *Query) Lower(ctx *semantic.Context) (*exec.Query, error) {
	n, err := q.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	return exec.Lower(ctx, n)
}

// Execute runs the query against the backing relations and materializes the
// result. The query is registered with the engine's process list while it
// runs.
func (q *Query) Execute(ctx *semantic.Context) (*semantic.Table, error) {
	lowered, err := q.Lower(ctx)
	if err != nil {
		return nil, err
	}

	ctx, done := q.engine.processes.Add(ctx, lowered.String())
	defer done()

	return lowered.Execute(ctx)
}

// recordingResolver captures the field references a calculated measure makes,
// without binding them.
type recordingResolver struct {
	dims     []string
	measures []string
}

func (r *recordingResolver) Dimension(name string) (semantic.Expression, error) {
	r.dims = append(r.dims, name)
	return expression.NewColumn(name), nil
}

func (r *recordingResolver) Measure(name string) (semantic.Expression, error) {
	r.measures = append(r.measures, name)
	return expression.NewColumn(name), nil
}

func displayName(field string) string {
	if idx := strings.LastIndex(field, "."); idx >= 0 {
		return field[idx+1:]
	}
	return field
}
