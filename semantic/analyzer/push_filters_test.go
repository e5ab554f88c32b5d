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

package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

func regionFilter() semantic.Expression {
	return expression.NewEquals(
		expression.NewQualifiedColumn("customers", "region"),
		expression.NewLiteral("EMEA", semantic.Text),
	)
}

func amountFilter() semantic.Expression {
	return expression.NewGreaterThan(
		expression.NewQualifiedColumn("orders", "amount"),
		expression.NewLiteral(float64(100), semantic.Float64),
	)
}

func TestPushFiltersSplitsConjuncts(t *testing.T) {
	require := require.New(t)

	node := plan.NewFilter(
		expression.NewAnd(regionFilter(), amountFilter()),
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityOne,
			plan.JoinInner,
		),
	)

	analyzed := analyze(t, node)

	// Both conjuncts land on their own side, leaving no filter above the
	// join.
	join, ok := analyzed.(*plan.Join)
	require.True(ok)

	left, ok := join.Left.(*plan.Filter)
	require.True(ok)
	require.Contains(left.Predicate.String(), "customers.region")

	right, ok := join.Right.(*plan.Filter)
	require.True(ok)
	require.Contains(right.Predicate.String(), "orders.amount")
}

func TestPushFiltersKeepsRightSideOfLeftJoin(t *testing.T) {
	require := require.New(t)

	node := plan.NewFilter(
		amountFilter(),
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityOne,
			plan.JoinLeft,
		),
	)

	analyzed := analyze(t, node)

	// Pushing the filter below the left join would stop it from seeing the
	// null-padded rows, so it stays on top.
	filter, ok := analyzed.(*plan.Filter)
	require.True(ok)
	_, ok = filter.Child.(*plan.Join)
	require.True(ok)
}

func TestPushFiltersKeepsUnqualifiedColumns(t *testing.T) {
	require := require.New(t)

	node := plan.NewFilter(
		expression.NewEquals(
			expression.NewColumn("region"),
			expression.NewLiteral("EMEA", semantic.Text),
		),
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityOne,
			plan.JoinInner,
		),
	)

	analyzed := analyze(t, node)

	_, ok := analyzed.(*plan.Filter)
	require.True(ok)
}

func TestPushFiltersKeepsCrossSideConjuncts(t *testing.T) {
	require := require.New(t)

	crossSide := expression.NewEquals(
		expression.NewQualifiedColumn("customers", "region"),
		expression.NewQualifiedColumn("orders", "amount"),
	)

	node := plan.NewFilter(
		crossSide,
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityOne,
			plan.JoinInner,
		),
	)

	analyzed := analyze(t, node)

	filter, ok := analyzed.(*plan.Filter)
	require.True(ok)
	_, ok = filter.Child.(*plan.Join)
	require.True(ok)
}
