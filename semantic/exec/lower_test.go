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

package exec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-semantic-layer/memory"
	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/analyzer"
	"github.com/dolthub/go-semantic-layer/semantic/exec"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

func customersTable(t *testing.T) *semantic.SemanticTable {
	t.Helper()

	rel := memory.NewTable("customers", semantic.Schema{
		{Name: "id", Type: semantic.Int64, Source: "customers"},
		{Name: "name", Type: semantic.Text, Source: "customers"},
		{Name: "region", Type: semantic.Text, Source: "customers"},
		{Name: "lifetime_value", Type: semantic.Float64, Source: "customers"},
	})

	rows := []semantic.Row{
		{int64(1), "ada", "EMEA", float64(1000)},
		{int64(2), "grace", "APAC", float64(2000)},
		{int64(3), "lin", "EMEA", float64(1500)},
	}
	for _, row := range rows {
		require.NoError(t, rel.Insert(row))
	}

	table, err := semantic.NewTable("customers", rel).
		WithDimensions(
			semantic.Dimension{Name: "name", Expr: expression.NewColumn("name")},
			semantic.Dimension{Name: "region", Expr: expression.NewColumn("region")},
		)
	require.NoError(t, err)

	table, err = table.WithMeasures(
		semantic.Measure{
			Name: "total_ltv",
			Agg:  expression.NewSum(expression.NewColumn("lifetime_value")),
		},
		semantic.Measure{
			Name: "avg_ltv",
			Agg:  expression.NewAvg(expression.NewColumn("lifetime_value")),
		},
		semantic.Measure{
			Name: "customer_count",
			Agg:  expression.NewCount(expression.NewColumn("id")),
		},
	)
	require.NoError(t, err)

	return table.WithPrimaryKey("id")
}

func ordersTable(t *testing.T) *semantic.SemanticTable {
	t.Helper()

	rel := memory.NewTable("orders", semantic.Schema{
		{Name: "id", Type: semantic.Int64, Source: "orders"},
		{Name: "customer_id", Type: semantic.Int64, Source: "orders"},
		{Name: "amount", Type: semantic.Float64, Source: "orders"},
		{Name: "created_at", Type: semantic.Timestamp, Source: "orders"},
	})

	day := func(d int) time.Time {
		return time.Date(2021, time.August, d, 12, 0, 0, 0, time.UTC)
	}
	rows := []semantic.Row{
		{int64(1), int64(1), float64(10), day(1)},
		{int64(2), int64(1), float64(20), day(2)},
		{int64(3), int64(1), float64(30), day(3)},
		{int64(4), int64(2), float64(40), day(4)},
		{int64(5), int64(2), float64(50), day(20)},
		{int64(6), int64(2), float64(60), day(21)},
		{int64(7), int64(3), float64(70), day(22)},
		{int64(8), int64(3), float64(80), day(23)},
	}
	for _, row := range rows {
		require.NoError(t, rel.Insert(row))
	}

	table, err := semantic.NewTable("orders", rel).
		WithDimensions(
			semantic.Dimension{
				Name:          "created_at",
				Expr:          expression.NewColumn("created_at"),
				TimeDimension: true,
				SmallestGrain: semantic.GrainDay,
			},
		)
	require.NoError(t, err)

	table, err = table.WithMeasures(
		semantic.Measure{
			Name: "revenue",
			Agg:  expression.NewSum(expression.NewColumn("amount")),
		},
		semantic.Measure{
			Name: "order_count",
			Agg:  expression.NewCount(expression.NewColumn("id")),
		},
	)
	require.NoError(t, err)

	return table.WithPrimaryKey("id")
}

func ticketsTable(t *testing.T) *semantic.SemanticTable {
	t.Helper()

	rel := memory.NewTable("tickets", semantic.Schema{
		{Name: "id", Type: semantic.Int64, Source: "tickets"},
		{Name: "customer_id", Type: semantic.Int64, Source: "tickets"},
	})

	rows := []semantic.Row{
		{int64(1), int64(1)},
		{int64(2), int64(1)},
		{int64(3), int64(2)},
		{int64(4), int64(2)},
		{int64(5), int64(3)},
	}
	for _, row := range rows {
		require.NoError(t, rel.Insert(row))
	}

	table, err := semantic.NewTable("tickets", rel).WithMeasures(semantic.Measure{
		Name: "ticket_count",
		Agg:  expression.NewCount(expression.NewColumn("id")),
	})
	require.NoError(t, err)

	return table.WithPrimaryKey("id")
}

// run analyzes, lowers and executes a plan with the default analyzer.
func run(t *testing.T, node plan.Node) *semantic.Table {
	t.Helper()
	return runWith(t, analyzer.NewDefault(), node)
}

func runWith(t *testing.T, a *analyzer.Analyzer, node plan.Node) *semantic.Table {
	t.Helper()

	ctx := semantic.NewEmptyContext()
	analyzed, err := a.Analyze(ctx, node)
	require.NoError(t, err)

	query, err := exec.Lower(ctx, analyzed)
	require.NoError(t, err)

	result, err := query.Execute(ctx)
	require.NoError(t, err)
	return result
}

func TestLowerScanAndFilter(t *testing.T) {
	require := require.New(t)

	node := plan.NewFilter(
		expression.NewEquals(
			expression.NewQualifiedColumn("customers", "region"),
			expression.NewLiteral("EMEA", semantic.Text),
		),
		plan.NewSource(customersTable(t)),
	)

	result := run(t, node)
	require.Len(result.Rows, 2)
	require.Equal("ada", result.Rows[0][1])
	require.Equal("lin", result.Rows[1][1])
}

func TestLowerGroupByAggregate(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{
			{Name: "total_ltv", Measure: "customers.total_ltv"},
			{Name: "customer_count", Measure: "customers.customer_count"},
		},
		plan.NewGroupBy(
			[]plan.GroupKey{{Field: "customers.region"}},
			plan.NewSource(customersTable(t)),
		),
	)

	result := run(t, node)
	require.Equal([]string{"region", "total_ltv", "customer_count"}, result.Columns)
	// Groups come out in first-seen order.
	require.Equal([]semantic.Row{
		{"EMEA", float64(2500), int64(2)},
		{"APAC", float64(2000), int64(1)},
	}, result.Rows)
}

func TestLowerKeylessAggregateOverEmptyInput(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "total_ltv", Measure: "customers.total_ltv"}},
		plan.NewFilter(
			expression.NewEquals(
				expression.NewQualifiedColumn("customers", "region"),
				expression.NewLiteral("NOWHERE", semantic.Text),
			),
			plan.NewSource(customersTable(t)),
		),
	)

	result := run(t, node)
	// A keyless aggregation always yields one row; the sum of nothing is
	// null.
	require.Len(result.Rows, 1)
	require.Nil(result.Rows[0][0])
}

func TestLowerGroupByGrain(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "revenue", Measure: "orders.revenue"}},
		plan.NewGroupBy(
			[]plan.GroupKey{{Field: "orders.created_at", Grain: semantic.GrainMonth}},
			plan.NewSource(ordersTable(t)),
		),
	)

	result := run(t, node)
	require.Equal([]semantic.Row{
		{time.Date(2021, time.August, 1, 0, 0, 0, 0, time.UTC), float64(360)},
	}, result.Rows)
}

func TestLowerBareGroupByDeduplicates(t *testing.T) {
	require := require.New(t)

	node := plan.NewGroupBy(
		[]plan.GroupKey{{Field: "customers.region"}},
		plan.NewSource(customersTable(t)),
	)

	result := run(t, node)
	require.Equal([]semantic.Row{{"EMEA"}, {"APAC"}}, result.Rows)
}

func TestLowerFanTrap(t *testing.T) {
	require := require.New(t)

	// 3 customers with lifetime values summing to 4500 and 8 orders fanning
	// them out. The sum must not be inflated by the join.
	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "total_ltv", Measure: "customers.total_ltv"}},
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityMany,
			plan.JoinInner,
		),
	)

	result := run(t, node)
	require.Equal([]semantic.Row{{float64(4500)}}, result.Rows)
}

func TestLowerFanTrapBothSides(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{
			{Name: "total_ltv", Measure: "customers.total_ltv"},
			{Name: "revenue", Measure: "orders.revenue"},
			{Name: "order_count", Measure: "orders.order_count"},
		},
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityMany,
			plan.JoinInner,
		),
	)

	result := run(t, node)
	// The count crosses the rewritten join as a partial and is re-aggregated
	// with a sum, so it comes back as a float.
	require.Equal([]semantic.Row{{float64(4500), float64(360), float64(8)}}, result.Rows)
}

func TestLowerFanTrapGrouped(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{
			{Name: "total_ltv", Measure: "customers.total_ltv"},
			{Name: "revenue", Measure: "orders.revenue"},
		},
		plan.NewGroupBy(
			[]plan.GroupKey{{Field: "customers.region"}},
			plan.NewJoin(
				plan.NewSource(customersTable(t)),
				plan.NewSource(ordersTable(t)),
				[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
				plan.CardinalityMany,
				plan.JoinInner,
			),
		),
	)

	result := run(t, node)
	require.Equal([]semantic.Row{
		{"EMEA", float64(2500), float64(210)},
		{"APAC", float64(2000), float64(150)},
	}, result.Rows)
}

func TestLowerFanTrapAvg(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "avg_ltv", Measure: "customers.avg_ltv"}},
		plan.NewJoin(
			plan.NewSource(customersTable(t)),
			plan.NewSource(ordersTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
			plan.CardinalityMany,
			plan.JoinInner,
		),
	)

	result := run(t, node)
	// (1000 + 2000 + 1500) / 3, unaffected by the 8-order fan-out.
	require.Equal([]semantic.Row{{float64(1500)}}, result.Rows)
}

func TestLowerChasmTrap(t *testing.T) {
	require := require.New(t)

	// Two independent many-arms under the same customers root: counting one
	// arm must not be multiplied by the other's row count.
	node := plan.NewAggregate(
		[]plan.AggColumn{
			{Name: "order_count", Measure: "orders.order_count"},
			{Name: "ticket_count", Measure: "tickets.ticket_count"},
		},
		plan.NewJoin(
			plan.NewJoin(
				plan.NewSource(customersTable(t)),
				plan.NewSource(ordersTable(t)),
				[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
				plan.CardinalityMany,
				plan.JoinInner,
			),
			plan.NewSource(ticketsTable(t)),
			[]plan.JoinKey{{Left: "customers.id", Right: "tickets.customer_id"}},
			plan.CardinalityMany,
			plan.JoinInner,
		),
	)

	result := run(t, node)
	require.Equal([]semantic.Row{{float64(8), float64(5)}}, result.Rows)
}

func TestLowerLeftJoinPadsNulls(t *testing.T) {
	require := require.New(t)

	// A filter keeps only orders over 65, so customers 1 and 2 have no
	// match and get null-padded order columns.
	node := plan.NewJoin(
		plan.NewSource(customersTable(t)),
		plan.NewFilter(
			expression.NewGreaterThan(
				expression.NewQualifiedColumn("orders", "amount"),
				expression.NewLiteral(float64(65), semantic.Float64),
			),
			plan.NewSource(ordersTable(t)),
		),
		[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
		plan.CardinalityMany,
		plan.JoinLeft,
	)

	result := run(t, node)
	require.Len(result.Rows, 4)

	var padded int
	for _, row := range result.Rows {
		if row[4] == nil {
			padded++
		}
	}
	require.Equal(2, padded)
}

func TestLowerSortLimitOffset(t *testing.T) {
	require := require.New(t)

	node := plan.NewLimit(2, 1,
		plan.NewSort(
			[]plan.SortField{plan.Desc("amount")},
			plan.NewSource(ordersTable(t)),
		),
	)

	result := run(t, node)
	require.Len(result.Rows, 2)
	require.Equal(float64(70), result.Rows[0][2])
	require.Equal(float64(60), result.Rows[1][2])
}

func TestLowerProject(t *testing.T) {
	require := require.New(t)

	node := plan.NewProject(
		[]string{"customers.name", "customers.region"},
		plan.NewSource(customersTable(t)),
	)

	result := run(t, node)
	require.Equal([]string{"name", "region"}, result.Columns)
	require.Equal([]semantic.Row{
		{"ada", "EMEA"},
		{"grace", "APAC"},
		{"lin", "EMEA"},
	}, result.Rows)
}

func TestLowerMutate(t *testing.T) {
	require := require.New(t)

	node := plan.NewMutate(
		[]plan.MutateColumn{{
			Name: "double_revenue",
			Fn: func(r semantic.Resolver) (semantic.Expression, error) {
				rev, err := r.Measure("revenue")
				if err != nil {
					return nil, err
				}
				return expression.NewMult(rev, expression.NewLiteral(int64(2), semantic.Int64)), nil
			},
		}},
		plan.NewAggregate(
			[]plan.AggColumn{{Name: "revenue", Measure: "orders.revenue"}},
			plan.NewSource(ordersTable(t)),
		),
	)

	result := run(t, node)
	require.Equal([]string{"revenue", "double_revenue"}, result.Columns)
	require.Equal([]semantic.Row{{float64(360), float64(720)}}, result.Rows)
}

func TestLowerMutateCannotSeeRowColumns(t *testing.T) {
	require := require.New(t)

	// Post-aggregation expressions resolve against aggregated outputs only;
	// raw row-level columns are out of reach.
	node := plan.NewMutate(
		[]plan.MutateColumn{{
			Name: "bad",
			Fn: func(r semantic.Resolver) (semantic.Expression, error) {
				return r.Dimension("orders.amount")
			},
		}},
		plan.NewAggregate(
			[]plan.AggColumn{{Name: "revenue", Measure: "orders.revenue"}},
			plan.NewSource(ordersTable(t)),
		),
	)

	ctx := semantic.NewEmptyContext()
	analyzed, err := analyzer.NewDefault().Analyze(ctx, node)
	require.NoError(err)

	_, err = exec.Lower(ctx, analyzed)
	require.Error(err)
	require.True(semantic.ErrLowering.Is(err))
}

func TestPushdownEquivalence(t *testing.T) {
	require := require.New(t)

	build := func() plan.Node {
		return plan.NewAggregate(
			[]plan.AggColumn{
				{Name: "total_ltv", Measure: "customers.total_ltv"},
				{Name: "revenue", Measure: "orders.revenue"},
			},
			plan.NewGroupBy(
				[]plan.GroupKey{{Field: "customers.region"}},
				plan.NewJoin(
					plan.NewSource(customersTable(t)),
					plan.NewSource(ordersTable(t)),
					[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
					plan.CardinalityMany,
					plan.JoinInner,
				),
			),
		)
	}

	pushed := runWith(t, analyzer.NewDefault(), build())
	unpushed := runWith(t, analyzer.NewBuilder().WithoutProjectionPushdown().Build(), build())

	require.Equal(pushed.Columns, unpushed.Columns)
	require.Equal(pushed.Rows, unpushed.Rows)
}

func TestLoweringIdempotent(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "total_ltv", Measure: "customers.total_ltv"}},
		plan.NewGroupBy(
			[]plan.GroupKey{{Field: "customers.region"}},
			plan.NewSource(customersTable(t)),
		),
	)

	ctx := semantic.NewEmptyContext()
	analyzed, err := analyzer.NewDefault().Analyze(ctx, node)
	require.NoError(err)

	first, err := exec.Lower(ctx, analyzed)
	require.NoError(err)
	second, err := exec.Lower(ctx, analyzed)
	require.NoError(err)

	require.Equal(first.String(), second.String())

	fp1, err := first.Fingerprint()
	require.NoError(err)
	fp2, err := second.Fingerprint()
	require.NoError(err)
	require.Equal(fp1, fp2)
}

func TestQueryToSQL(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "total_ltv", Measure: "customers.total_ltv"}},
		plan.NewGroupBy(
			[]plan.GroupKey{{Field: "customers.region"}},
			plan.NewSource(customersTable(t)),
		),
	)

	ctx := semantic.NewEmptyContext()
	analyzed, err := analyzer.NewDefault().Analyze(ctx, node)
	require.NoError(err)

	query, err := exec.Lower(ctx, analyzed)
	require.NoError(err)

	sql := query.ToSQL()
	require.Contains(sql, "GROUP BY")
	require.Contains(sql, "AS total_ltv")
	require.Contains(sql, "FROM customers")
}

func TestQueryToSQLMutate(t *testing.T) {
	require := require.New(t)

	node := plan.NewMutate(
		[]plan.MutateColumn{{
			Name: "double_revenue",
			Fn: func(r semantic.Resolver) (semantic.Expression, error) {
				rev, err := r.Measure("revenue")
				if err != nil {
					return nil, err
				}
				return expression.NewMult(rev, expression.NewLiteral(int64(2), semantic.Int64)), nil
			},
		}},
		plan.NewAggregate(
			[]plan.AggColumn{{Name: "revenue", Measure: "orders.revenue"}},
			plan.NewSource(ordersTable(t)),
		),
	)

	ctx := semantic.NewEmptyContext()
	analyzed, err := analyzer.NewDefault().Analyze(ctx, node)
	require.NoError(err)

	query, err := exec.Lower(ctx, analyzed)
	require.NoError(err)

	// The computed column renders exactly once, under its output name.
	sql := query.ToSQL()
	require.Contains(sql, "AS double_revenue")
	require.NotContains(sql, "as double_revenue")
}
