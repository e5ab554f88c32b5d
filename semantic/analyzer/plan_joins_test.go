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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/analyzer"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

func analyze(t *testing.T, n plan.Node) plan.Node {
	t.Helper()

	analyzed, err := analyzer.NewDefault().Analyze(semantic.NewEmptyContext(), n)
	require.NoError(t, err)
	return analyzed
}

func manyJoin(t *testing.T) *plan.Join {
	return plan.NewJoin(
		plan.NewSource(customersTable(t)),
		plan.NewSource(ordersTable(t)),
		[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
		plan.CardinalityMany,
		plan.JoinInner,
	)
}

func TestPlanJoinsFanTrap(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "total_ltv", Measure: "customers.total_ltv"}},
		manyJoin(t),
	)

	analyzed := analyze(t, node)
	rendered := analyzed.String()

	// Both sides are aggregated down to the join grain before joining, and
	// the rewritten join no longer multiplies raw rows.
	require.Contains(rendered, "InnerJoin[one]")
	require.NotContains(rendered, "InnerJoin[many]")
	require.Contains(rendered, "GroupBy(customers.id)")
	require.Contains(rendered, "GroupBy(orders.customer_id)")

	// The customer-side partial is re-aggregated with a plain sum.
	require.Contains(rendered, "sum(total_ltv) as total_ltv")
}

func TestPlanJoinsKeepsGroupKeysInGrain(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "revenue", Measure: "orders.revenue"}},
		plan.NewGroupBy([]plan.GroupKey{{Field: "customers.region"}}, manyJoin(t)),
	)

	rendered := analyze(t, node).String()

	// The requested group key belongs to the customer side, so that side's
	// pre-aggregation grain includes it along with the join key.
	require.Contains(rendered, "GroupBy(customers.id, customers.region)")
	require.Contains(rendered, "GroupBy(orders.customer_id)")
}

func TestPlanJoinsAvgDecomposition(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "avg_ltv", Measure: "customers.avg_ltv"}},
		manyJoin(t),
	)

	rendered := analyze(t, node).String()

	// Averages travel as sum and count partials and are recombined by a
	// division after the outer aggregation, which the projection then hides.
	require.Contains(rendered, "avg_ltv__sum")
	require.Contains(rendered, "avg_ltv__count")
	require.Contains(rendered, "Mutate(avg_ltv)")
	require.Contains(rendered, "Project(avg_ltv)")
}

func TestPlanJoinsNoRewriteForOneToOne(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "total_ltv", Measure: "customers.total_ltv"}},
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityOne,
			plan.JoinInner,
		),
	)

	rendered := analyze(t, node).String()
	require.Contains(rendered, "InnerJoin[one]")
	// One aggregate only: the user's.
	require.Equal(1, strings.Count(rendered, "Aggregate("))
}

func TestPlanJoinsAmbiguousCardinality(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "total_ltv", Measure: "customers.total_ltv"}},
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityUnspecified,
			plan.JoinInner,
		),
	)

	_, err := analyzer.NewDefault().Analyze(semantic.NewEmptyContext(), node)
	require.Error(err)
	require.True(semantic.ErrAmbiguousJoinCardinality.Is(err))
}

func TestPlanJoinsUndeclaredJoinWithoutMeasuresIsFine(t *testing.T) {
	require := require.New(t)

	// Grouping without aggregating a measure does not fan anything out, so
	// an undeclared join stays legal.
	node := plan.NewGroupBy(
		[]plan.GroupKey{{Field: "customers.region"}},
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityUnspecified,
			plan.JoinInner,
		),
	)

	_, err := analyzer.NewDefault().Analyze(semantic.NewEmptyContext(), node)
	require.NoError(err)
}

func TestPlanJoinsIdempotent(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{
			{Name: "total_ltv", Measure: "customers.total_ltv"},
			{Name: "revenue", Measure: "orders.revenue"},
		},
		manyJoin(t),
	)

	once := analyze(t, node)
	twice := analyze(t, once)
	require.Equal(once.String(), twice.String())
}
