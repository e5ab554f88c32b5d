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

package exec

import (
	"fmt"
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

// Lower translates an analyzed plan into an executable query. Lowering is a
// closed dispatch over the plan node types: every field reference is resolved
// through the join tree's field map and bound to a row position, so an
// unresolvable reference fails here instead of mid-execution. Lowering the
// same plan twice produces structurally identical queries.
func Lower(ctx *semantic.Context, n plan.Node) (*Query, error) {
	span, ctx := ctx.Span("lower")
	defer span.Finish()

	root, err := lowerNode(ctx, n)
	if err != nil {
		return nil, err
	}
	return NewQuery(ctx.ID(), root), nil
}

func lowerNode(ctx *semantic.Context, n plan.Node) (Node, error) {
	switch n := n.(type) {
	case *plan.Source:
		return lowerSource(n)
	case *plan.Filter:
		return lowerFilter(ctx, n)
	case *plan.Join:
		return lowerJoin(ctx, n)
	case *plan.GroupBy:
		// A group by with no aggregate on top deduplicates its keys.
		return lowerAggregate(ctx, plan.NewAggregate(nil, n))
	case *plan.Aggregate:
		return lowerAggregate(ctx, n)
	case *plan.Mutate:
		return lowerMutate(ctx, n)
	case *plan.Sort:
		return lowerSort(ctx, n)
	case *plan.Limit:
		child, err := lowerNode(ctx, n.Child)
		if err != nil {
			return nil, err
		}
		return NewLimit(n.Limit, n.Offset, child), nil
	case *plan.Project:
		return lowerProject(ctx, n)
	default:
		return nil, semantic.ErrLowering.New(fmt.Sprintf("%T", n), "unknown node type")
	}
}

func lowerSource(s *plan.Source) (Node, error) {
	if s.Columns != nil {
		return NewProjectedScan(s.Table, s.Columns)
	}
	return NewScan(s.Table)
}

func lowerFilter(ctx *semantic.Context, f *plan.Filter) (Node, error) {
	child, err := lowerNode(ctx, f.Child)
	if err != nil {
		return nil, err
	}

	predicate, err := bindColumns("Filter", f.Predicate, child.Schema())
	if err != nil {
		return nil, err
	}
	return NewFilter(predicate, child), nil
}

func lowerJoin(ctx *semantic.Context, j *plan.Join) (Node, error) {
	left, err := lowerNode(ctx, j.Left)
	if err != nil {
		return nil, err
	}
	right, err := lowerNode(ctx, j.Right)
	if err != nil {
		return nil, err
	}

	leftFields, err := planFields(j.Left)
	if err != nil {
		return nil, err
	}
	rightFields, err := planFields(j.Right)
	if err != nil {
		return nil, err
	}

	conds := make([]JoinCondition, len(j.On))
	for i, key := range j.On {
		leftExpr, err := bindField("Join", leftFields, left.Schema(), key.Left)
		if err != nil {
			return nil, err
		}
		rightExpr, err := bindField("Join", rightFields, right.Schema(), key.Right)
		if err != nil {
			return nil, err
		}
		conds[i] = JoinCondition{Left: leftExpr, Right: rightExpr}
	}

	if j.Kind == plan.JoinLeft {
		return NewLeftJoin(left, right, conds), nil
	}
	return NewJoin(left, right, conds), nil
}

func lowerAggregate(ctx *semantic.Context, agg *plan.Aggregate) (Node, error) {
	childPlan := agg.Child
	var keys []plan.GroupKey
	if g, ok := childPlan.(*plan.GroupBy); ok {
		keys = g.Keys
		childPlan = g.Child
	}

	fields, err := planFields(agg)
	if err != nil {
		return nil, err
	}
	child, err := lowerNode(ctx, childPlan)
	if err != nil {
		return nil, err
	}
	schema := child.Schema()

	keyExprs := make([]semantic.Expression, 0, len(keys))
	outSchema := make(semantic.Schema, 0, len(keys)+len(agg.Aggs))
	for _, key := range keys {
		expr, source, err := lowerGroupKey(fields, schema, key)
		if err != nil {
			return nil, err
		}
		keyExprs = append(keyExprs, expr)
		outSchema = append(outSchema, &semantic.Column{
			Name:     displayName(key.Field),
			Type:     expr.Type(),
			Source:   source,
			Nullable: true,
		})
	}

	aggExprs := make([]semantic.Aggregation, 0, len(agg.Aggs))
	for _, c := range agg.Aggs {
		aggExpr, source, err := lowerAggColumn(fields, schema, c)
		if err != nil {
			return nil, err
		}
		aggExprs = append(aggExprs, aggExpr)
		outSchema = append(outSchema, &semantic.Column{
			Name:     c.Name,
			Type:     aggExpr.Type(),
			Source:   source,
			Nullable: true,
		})
	}

	return NewGroupBy(keyExprs, aggExprs, outSchema, child), nil
}

// lowerGroupKey binds a group key, preferring the declared dimension's
// expression over a schema column of the same name. After a join side was
// pre-aggregated the raw columns are gone, so the key falls back to the
// aggregated output column. Time grains wrap the bound key in a truncation.
func lowerGroupKey(fields *semantic.Fields, schema semantic.Schema, key plan.GroupKey) (semantic.Expression, string, error) {
	var expr semantic.Expression
	var source string

	if dim, err := fields.Dimension(key.Field); err == nil {
		source = dim.Table.Name()
		bound, err := bindColumns("GroupBy", scopedExpr(dim), schema)
		if err == nil {
			expr = bound
		} else if idx := indexOfField(schema, displayName(key.Field), dim.Table.Name()); idx >= 0 {
			expr = fieldAt(schema, idx)
		} else {
			return nil, "", err
		}
	} else {
		bound, err := bindField("GroupBy", fields, schema, key.Field)
		if err != nil {
			return nil, "", err
		}
		expr = bound
		if gf, ok := expr.(*expression.GetField); ok {
			source = gf.Table()
		}
	}

	if key.Grain != semantic.GrainNone {
		expr = expression.NewTimeTrunc(key.Grain, expr)
	}
	return expr, source, nil
}

// lowerAggColumn binds one aggregate output. Default op means the measure
// aggregates with its declared expression. An explicit op re-aggregates: its
// input is a column of the child schema when one matches (the partial
// produced below a planned join), or the measure's own input expression.
func lowerAggColumn(fields *semantic.Fields, schema semantic.Schema, c plan.AggColumn) (semantic.Aggregation, string, error) {
	if c.Op == plan.OpDefault {
		rm, err := fields.Measure(c.Measure)
		if err != nil {
			return nil, "", semantic.ErrLowering.New("Aggregate", err)
		}
		if rm.Measure.Calculated() {
			return nil, "", semantic.ErrLowering.New("Aggregate",
				fmt.Sprintf("calculated measure %q must be computed after aggregation", c.Measure))
		}

		bound, err := bindColumns("Aggregate", scopedMeasure(rm), schema)
		if err != nil {
			return nil, "", err
		}
		agg, ok := bound.(semantic.Aggregation)
		if !ok {
			return nil, "", semantic.ErrLowering.New("Aggregate",
				fmt.Sprintf("measure %q is not an aggregation", c.Measure))
		}
		return agg, rm.Table.Name(), nil
	}

	// Partials produced by a pre-aggregation live in the child schema under
	// the measure's name, possibly bare.
	var input semantic.Expression
	var source string
	table, name, _ := splitField(c.Measure)
	if idx := indexOfField(schema, name, table); idx >= 0 {
		input = fieldAt(schema, idx)
		source = schema[idx].Source
	}
	if input == nil {
		rm, err := fields.Measure(c.Measure)
		if err != nil {
			return nil, "", semantic.ErrLowering.New("Aggregate", err)
		}
		children := rm.Measure.Agg.Children()
		if len(children) != 1 {
			return nil, "", semantic.ErrLowering.New("Aggregate",
				fmt.Sprintf("measure %q has no single input to re-aggregate", c.Measure))
		}
		input, err = bindColumns("Aggregate", scopedMeasureInput(rm, children[0]), schema)
		if err != nil {
			return nil, "", err
		}
		source = rm.Table.Name()
	}

	switch c.Op {
	case plan.OpSum:
		return expression.NewSum(input), source, nil
	case plan.OpCount:
		return expression.NewCount(input), source, nil
	case plan.OpMin:
		return expression.NewMin(input), source, nil
	case plan.OpMax:
		return expression.NewMax(input), source, nil
	default:
		return nil, "", semantic.ErrLowering.New("Aggregate", fmt.Sprintf("unknown aggregation op %s", c.Op))
	}
}

func lowerMutate(ctx *semantic.Context, m *plan.Mutate) (Node, error) {
	child, err := lowerNode(ctx, m.Child)
	if err != nil {
		return nil, err
	}
	schema := child.Schema()

	// Mutate expressions see only the aggregated output columns, never the
	// row-level columns below the aggregation.
	resolver := &schemaResolver{schema: schema}

	projections := make([]semantic.Expression, 0, len(schema)+len(m.Cols))
	outSchema := make(semantic.Schema, 0, len(schema)+len(m.Cols))
	for i, col := range schema {
		projections = append(projections, expression.NewGetFieldWithTable(i, col.Type, col.Source, col.Name, col.Nullable))
		outSchema = append(outSchema, col)
	}

	for _, col := range m.Cols {
		e, err := col.Fn(resolver)
		if err != nil {
			return nil, semantic.ErrLowering.New("Mutate", err)
		}
		e, err = bindColumns("Mutate", e, schema)
		if err != nil {
			return nil, err
		}
		// Computed columns carry their output name on the expression itself.
		aliased := expression.NewAlias(col.Name, e)
		projections = append(projections, aliased)
		outSchema = append(outSchema, &semantic.Column{
			Name:     col.Name,
			Type:     aliased.Type(),
			Nullable: true,
		})
	}

	return NewProject(projections, outSchema, child), nil
}

func lowerSort(ctx *semantic.Context, s *plan.Sort) (Node, error) {
	child, err := lowerNode(ctx, s.Child)
	if err != nil {
		return nil, err
	}

	fields, err := planFields(s)
	if err != nil {
		return nil, err
	}

	sortFields := make([]SortField, len(s.Fields))
	for i, f := range s.Fields {
		expr, err := bindField("Sort", fields, child.Schema(), f.Field)
		if err != nil {
			return nil, err
		}
		sortFields[i] = SortField{Expr: expr, Order: f.Order}
	}

	return NewSort(sortFields, child), nil
}

func lowerProject(ctx *semantic.Context, p *plan.Project) (Node, error) {
	child, err := lowerNode(ctx, p.Child)
	if err != nil {
		return nil, err
	}
	schema := child.Schema()

	fields, err := planFields(p)
	if err != nil {
		return nil, err
	}

	projections := make([]semantic.Expression, len(p.Fields))
	outSchema := make(semantic.Schema, len(p.Fields))
	for i, f := range p.Fields {
		expr, err := bindField("Project", fields, schema, f)
		if err != nil {
			return nil, err
		}
		projections[i] = expr

		col := &semantic.Column{Name: displayName(f), Type: expr.Type(), Nullable: true}
		if gf, ok := expr.(*expression.GetField); ok {
			col.Source = gf.Table()
		}
		outSchema[i] = col
	}

	return NewProject(projections, outSchema, child), nil
}

// planFields builds the field map of the plan's join tree.
func planFields(n plan.Node) (*semantic.Fields, error) {
	sources := plan.Sources(n)
	tables := make([]*semantic.SemanticTable, len(sources))
	for i, s := range sources {
		tables[i] = s.Table
	}
	return semantic.BuildFields(tables...)
}

// bindColumns replaces every unbound column in the expression with a field
// bound to a position of the schema.
func bindColumns(node string, e semantic.Expression, schema semantic.Schema) (semantic.Expression, error) {
	return expression.TransformUp(e, func(e semantic.Expression) (semantic.Expression, error) {
		col, ok := e.(*expression.Column)
		if !ok {
			return e, nil
		}

		idx := indexOfField(schema, col.Name(), col.Table())
		if idx < 0 {
			return nil, semantic.ErrLowering.New(node,
				fmt.Sprintf("field %q not found, available: %s", col.String(), strings.Join(schema.ColumnNames(), ", ")))
		}
		return fieldAt(schema, idx), nil
	})
}

// bindField resolves a field reference against the child schema first and the
// declared dimensions second.
func bindField(node string, fields *semantic.Fields, schema semantic.Schema, name string) (semantic.Expression, error) {
	if table, col, ok := splitField(name); ok {
		if idx := indexOfField(schema, col, table); idx >= 0 {
			return fieldAt(schema, idx), nil
		}
	} else if idx := schema.IndexOfName(name); idx >= 0 {
		return fieldAt(schema, idx), nil
	}

	if dim, err := fields.Dimension(name); err == nil {
		if bound, err := bindColumns(node, scopedExpr(dim), schema); err == nil {
			return bound, nil
		}
	}

	return nil, semantic.ErrLowering.New(node,
		fmt.Sprintf("field %q not found, available: %s", name, strings.Join(schema.ColumnNames(), ", ")))
}

// indexOfField finds a schema column by name, optionally qualified by its
// source. A qualified miss falls back to the bare name.
func indexOfField(schema semantic.Schema, name, source string) int {
	if source != "" {
		if idx := schema.IndexOf(name, source); idx >= 0 {
			return idx
		}
	}
	return schema.IndexOfName(name)
}

func fieldAt(schema semantic.Schema, idx int) *expression.GetField {
	col := schema[idx]
	return expression.NewGetFieldWithTable(idx, col.Type, col.Source, col.Name, col.Nullable)
}

// scopedExpr qualifies the bare column references of a dimension's expression
// with its owning table.
func scopedExpr(dim semantic.ResolvedDimension) semantic.Expression {
	return qualifyColumns(dim.Dimension.Expr, dim.Table.Name())
}

func scopedMeasure(rm semantic.ResolvedMeasure) semantic.Expression {
	return qualifyColumns(rm.Measure.Agg, rm.Table.Name())
}

func scopedMeasureInput(rm semantic.ResolvedMeasure, input semantic.Expression) semantic.Expression {
	return qualifyColumns(input, rm.Table.Name())
}

func qualifyColumns(e semantic.Expression, table string) semantic.Expression {
	qualified, err := expression.TransformUp(e, func(e semantic.Expression) (semantic.Expression, error) {
		if col, ok := e.(*expression.Column); ok && col.Table() == "" {
			return expression.NewQualifiedColumn(table, col.Name()), nil
		}
		return e, nil
	})
	if err != nil {
		return e
	}
	return qualified
}

// splitField splits "table.field" into its parts.
func splitField(name string) (table, field string, ok bool) {
	idx := strings.Index(name, ".")
	if idx < 0 {
		return "", name, false
	}
	return name[:idx], name[idx+1:], true
}

func displayName(field string) string {
	if idx := strings.LastIndex(field, "."); idx >= 0 {
		return field[idx+1:]
	}
	return field
}

// schemaResolver resolves calculated expressions against a fixed schema, so
// post-aggregation computations can only reference aggregated outputs.
type schemaResolver struct {
	schema semantic.Schema
}

var _ semantic.Resolver = (*schemaResolver)(nil)

func (r *schemaResolver) Dimension(name string) (semantic.Expression, error) {
	return r.resolve(name)
}

func (r *schemaResolver) Measure(name string) (semantic.Expression, error) {
	return r.resolve(name)
}

func (r *schemaResolver) resolve(name string) (semantic.Expression, error) {
	table, col, _ := splitField(name)
	if idx := indexOfField(r.schema, col, table); idx >= 0 {
		return fieldAt(r.schema, idx), nil
	}
	return nil, semantic.ErrUnresolvedField.New(name, strings.Join(r.schema.ColumnNames(), ", "))
}
