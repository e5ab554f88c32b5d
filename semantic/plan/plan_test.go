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

package plan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-semantic-layer/memory"
	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

func sourceFor(name string) *plan.Source {
	rel := memory.NewTable(name, semantic.Schema{
		{Name: "id", Type: semantic.Int64, Source: name},
	})
	return plan.NewSource(semantic.NewTable(name, rel))
}

func TestPlanStrings(t *testing.T) {
	require := require.New(t)

	src := sourceFor("orders")
	require.Equal("Source(orders)", src.String())
	require.Equal("Source(orders: id)", src.WithColumns([]string{"id"}).String())

	join := plan.NewJoin(
		sourceFor("customers"), sourceFor("orders"),
		[]plan.JoinKey{{Left: "customers.id", Right: "orders.customer_id"}},
		plan.CardinalityMany, plan.JoinInner,
	)
	require.Equal(""+
		"InnerJoin[many](customers.id = orders.customer_id)\n"+
		" ├─ Source(customers)\n"+
		" └─ Source(orders)\n",
		join.String())

	group := plan.NewGroupBy([]plan.GroupKey{
		{Field: "region"},
		{Field: "created_at", Grain: semantic.GrainMonth},
	}, src)
	require.Equal(""+
		"GroupBy(region, created_at@month)\n"+
		" └─ Source(orders)\n",
		group.String())

	agg := plan.NewAggregate([]plan.AggColumn{
		{Name: "revenue", Measure: "orders.revenue"},
		{Name: "revenue__count", Measure: "orders.revenue", Op: plan.OpCount},
	}, group)
	require.Contains(agg.String(), "Aggregate(orders.revenue as revenue, count(orders.revenue) as revenue__count)")

	limit := plan.NewLimit(10, 0, src)
	require.Contains(limit.String(), "Limit(10)")
	offset := plan.NewLimit(10, 5, src)
	require.Contains(offset.String(), "Limit(10, offset 5)")

	sort := plan.NewSort([]plan.SortField{plan.Asc("region"), plan.Desc("revenue")}, src)
	require.Contains(sort.String(), "Sort(region asc, revenue desc)")
}

func TestTransformUp(t *testing.T) {
	require := require.New(t)

	src := sourceFor("orders")
	filter := plan.NewFilter(
		expression.NewEquals(expression.NewColumn("region"), expression.NewLiteral("EMEA", semantic.Text)),
		src,
	)

	transformed, err := plan.TransformUp(filter, func(n plan.Node) (plan.Node, error) {
		if s, ok := n.(*plan.Source); ok {
			return s.WithColumns([]string{"id"}), nil
		}
		return n, nil
	})
	require.NoError(err)
	require.Contains(transformed.String(), "Source(orders: id)")

	// The original tree is untouched.
	require.Contains(filter.String(), "Source(orders)\n")
}

func TestWithChildrenArity(t *testing.T) {
	require := require.New(t)

	filter := plan.NewFilter(expression.NewLiteral(true, semantic.Boolean), sourceFor("orders"))
	_, err := filter.WithChildren()
	require.Error(err)
	require.True(semantic.ErrInvalidChildrenNumber.Is(err))

	join := plan.NewJoin(sourceFor("a"), sourceFor("b"), nil, plan.CardinalityOne, plan.JoinInner)
	_, err = join.WithChildren(sourceFor("a"))
	require.Error(err)
	require.True(semantic.ErrInvalidChildrenNumber.Is(err))
}

func TestSources(t *testing.T) {
	require := require.New(t)

	join := plan.NewJoin(
		sourceFor("a"),
		plan.NewJoin(sourceFor("b"), sourceFor("c"), nil, plan.CardinalityOne, plan.JoinInner),
		nil, plan.CardinalityOne, plan.JoinInner,
	)

	sources := plan.Sources(join)
	require.Len(sources, 3)
	require.Equal("a", sources[0].Table.Name())
	require.Equal("b", sources[1].Table.Name())
	require.Equal("c", sources[2].Table.Name())
}
