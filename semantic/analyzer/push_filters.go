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

// pushFilters moves filter conjuncts that reference only one side of a join
// below that join, so joins and pre-aggregations work on fewer rows. A
// conjunct referencing both sides, or an unqualified column, stays where it
// is. Right-side conjuncts are never pushed below a left join since they
// would stop filtering the null-padded rows.
func pushFilters(ctx *semantic.Context, a *Analyzer, n plan.Node) (plan.Node, error) {
	return plan.TransformUp(n, func(n plan.Node) (plan.Node, error) {
		f, ok := n.(*plan.Filter)
		if !ok {
			return n, nil
		}
		j, ok := f.Child.(*plan.Join)
		if !ok {
			return n, nil
		}

		leftTables := tableSet(j.Left)
		rightTables := tableSet(j.Right)

		// A side that was already aggregated by the join planner no
		// longer exposes raw row-level columns, so nothing can be
		// pushed into it.
		leftOpen := !containsAggregate(j.Left)
		rightOpen := !containsAggregate(j.Right)

		var left, right, keep []semantic.Expression
		for _, conjunct := range splitConjunction(f.Predicate) {
			tables, qualified := referencedTables(conjunct)
			switch {
			case !qualified || len(tables) == 0:
				keep = append(keep, conjunct)
			case leftOpen && subsetOf(tables, leftTables):
				left = append(left, conjunct)
			case rightOpen && subsetOf(tables, rightTables) && j.Kind == plan.JoinInner:
				right = append(right, conjunct)
			default:
				keep = append(keep, conjunct)
			}
		}

		if len(left) == 0 && len(right) == 0 {
			return n, nil
		}
		a.Log("pushing %d left and %d right conjuncts below join", len(left), len(right))

		newLeft := j.Left
		if len(left) > 0 {
			newLeft = plan.NewFilter(expression.JoinAnd(left...), newLeft)
		}
		newRight := j.Right
		if len(right) > 0 {
			newRight = plan.NewFilter(expression.JoinAnd(right...), newRight)
		}

		var result plan.Node = plan.NewJoin(newLeft, newRight, j.On, j.Cardinality, j.Kind)
		if len(keep) > 0 {
			result = plan.NewFilter(expression.JoinAnd(keep...), result)
		}
		return result, nil
	})
}

func splitConjunction(e semantic.Expression) []semantic.Expression {
	and, ok := e.(*expression.And)
	if !ok {
		return []semantic.Expression{e}
	}
	return append(
		splitConjunction(and.Left),
		splitConjunction(and.Right)...,
	)
}

// referencedTables returns the table qualifiers of every column in the
// expression. qualified is false if any column lacks a qualifier, in which
// case the expression cannot be attributed to a join side.
func referencedTables(e semantic.Expression) (tables map[string]struct{}, qualified bool) {
	tables = make(map[string]struct{})
	qualified = true
	expression.Inspect(e, func(e semantic.Expression) bool {
		if col, ok := e.(*expression.Column); ok {
			if col.Table() == "" {
				qualified = false
				return false
			}
			tables[col.Table()] = struct{}{}
		}
		return true
	})
	return tables, qualified
}

func containsAggregate(n plan.Node) bool {
	found := false
	plan.Inspect(n, func(n plan.Node) bool {
		if _, ok := n.(*plan.Aggregate); ok {
			found = true
		}
		return !found
	})
	return found
}

func tableSet(n plan.Node) map[string]struct{} {
	set := make(map[string]struct{})
	for _, s := range plan.Sources(n) {
		set[s.Table.Name()] = struct{}{}
	}
	return set
}

func subsetOf(sub, super map[string]struct{}) bool {
	for t := range sub {
		if _, ok := super[t]; !ok {
			return false
		}
	}
	return true
}
