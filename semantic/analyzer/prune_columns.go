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
	"sort"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

// pruneColumns computes, for every source, the minimal set of relation
// columns the rest of the plan needs: columns referenced by the dimensions
// and measures in use, filter predicates, join keys, and the transitive
// references of calculated measures. Sources are rewritten to read only that
// set. The rewrite never changes which rows survive, only which physical
// columns are fetched.
func pruneColumns(ctx *semantic.Context, a *Analyzer, n plan.Node) (plan.Node, error) {
	if !discardsColumns(n) {
		return n, nil
	}

	fields, err := fieldsFor(n)
	if err != nil {
		return nil, err
	}

	used := make(map[string]map[string]struct{})
	var cerr error
	plan.Inspect(n, func(n plan.Node) bool {
		switch n := n.(type) {
		case *plan.Filter:
			collectExprColumns(used, fields, n.Predicate)
		case *plan.GroupBy:
			for _, key := range n.Keys {
				collectField(used, fields, key.Field)
			}
		case *plan.Join:
			for _, key := range n.On {
				collectField(used, fields, key.Left)
				collectField(used, fields, key.Right)
			}
		case *plan.Aggregate:
			for _, agg := range n.Aggs {
				cerr = collectMeasure(used, fields, agg.Measure)
				if cerr != nil {
					return false
				}
			}
		case *plan.Mutate:
			for _, col := range n.Cols {
				cerr = collectCalc(used, fields, col.Fn)
				if cerr != nil {
					return false
				}
			}
		case *plan.Sort:
			for _, f := range n.Fields {
				collectField(used, fields, f.Field)
			}
		case *plan.Project:
			for _, f := range n.Fields {
				collectField(used, fields, f)
			}
		}
		return true
	})
	if cerr != nil {
		return nil, cerr
	}

	return plan.TransformUp(n, func(n plan.Node) (plan.Node, error) {
		s, ok := n.(*plan.Source)
		if !ok {
			return n, nil
		}

		cols := used[s.Table.Name()]
		if len(cols) == 0 {
			return n, nil
		}

		names := make([]string, 0, len(cols))
		for name := range cols {
			names = append(names, name)
		}
		sort.Strings(names)
		a.Log("pruning source %s to columns %v", s.Table.Name(), names)
		return s.WithColumns(names), nil
	})
}

// discardsColumns reports whether the plan's output columns are fixed by a
// projecting node at the top. Plans whose root passes raw source rows through,
// like a bare filter or join, expose every source column and must not be
// pruned.
func discardsColumns(n plan.Node) bool {
	switch n := n.(type) {
	case *plan.Project, *plan.Aggregate, *plan.GroupBy:
		return true
	case *plan.Limit:
		return discardsColumns(n.Child)
	case *plan.Sort:
		return discardsColumns(n.Child)
	case *plan.Mutate:
		return discardsColumns(n.Child)
	default:
		return false
	}
}

// collectField marks the columns behind a field reference, which may name a
// dimension, a measure or a raw relation column. Output column names of
// aggregates and mutates refer to no source columns and are skipped.
func collectField(used map[string]map[string]struct{}, fields *semantic.Fields, name string) {
	if dim, err := fields.Dimension(name); err == nil {
		addExprColumns(used, dim.Table.Name(), dim.Dimension.Expr)
		return
	}
	if rm, err := fields.Measure(name); err == nil && !rm.Measure.Calculated() {
		addExprColumns(used, rm.Table.Name(), rm.Measure.Agg)
		return
	}
	if t, col := fields.Column(name); t != nil {
		markColumn(used, t.Name(), col)
	}
}

func collectMeasure(used map[string]map[string]struct{}, fields *semantic.Fields, name string) error {
	rm, err := fields.Measure(name)
	if err != nil {
		// Not a declared measure: an output column of a deeper node.
		return nil
	}
	if rm.Measure.Calculated() {
		return collectCalc(used, fields, rm.Measure.Calc)
	}
	addExprColumns(used, rm.Table.Name(), rm.Measure.Agg)
	return nil
}

// collectCalc statically analyzes a calculated expression by running it
// against a resolver that records every dimension and measure it asks for.
func collectCalc(used map[string]map[string]struct{}, fields *semantic.Fields, fn semantic.CalcFunc) error {
	rec := &recordingResolver{}
	if _, err := fn(rec); err != nil {
		return err
	}

	for _, name := range rec.dims {
		collectField(used, fields, name)
	}
	for _, name := range rec.measures {
		if err := collectMeasure(used, fields, name); err != nil {
			return err
		}
	}
	return nil
}

// collectExprColumns marks every column referenced by a compiled predicate.
// Qualified references are attributed directly; bare ones are resolved
// against the field map.
func collectExprColumns(used map[string]map[string]struct{}, fields *semantic.Fields, e semantic.Expression) {
	expression.Inspect(e, func(e semantic.Expression) bool {
		col, ok := e.(*expression.Column)
		if !ok {
			return true
		}
		if col.Table() != "" {
			markColumn(used, col.Table(), col.Name())
			return true
		}
		if t, name := fields.Column(col.Name()); t != nil {
			markColumn(used, t.Name(), name)
		} else {
			collectField(used, fields, col.Name())
		}
		return true
	})
}

// addExprColumns marks the columns of an expression owned by a single table.
// Unqualified column references belong to the owning table's relation.
func addExprColumns(used map[string]map[string]struct{}, table string, e semantic.Expression) {
	expression.Inspect(e, func(e semantic.Expression) bool {
		if col, ok := e.(*expression.Column); ok {
			if col.Table() != "" {
				markColumn(used, col.Table(), col.Name())
			} else {
				markColumn(used, table, col.Name())
			}
		}
		return true
	})
}

func markColumn(used map[string]map[string]struct{}, table, column string) {
	if used[table] == nil {
		used[table] = make(map[string]struct{})
	}
	used[table][column] = struct{}{}
}

// recordingResolver satisfies calculated expressions without a live schema,
// recording which fields they reference.
type recordingResolver struct {
	dims     []string
	measures []string
}

var _ semantic.Resolver = (*recordingResolver)(nil)

func (r *recordingResolver) Dimension(name string) (semantic.Expression, error) {
	r.dims = append(r.dims, name)
	return expression.NewColumn(name), nil
}

func (r *recordingResolver) Measure(name string) (semantic.Expression, error) {
	r.measures = append(r.measures, name)
	return expression.NewColumn(name), nil
}
