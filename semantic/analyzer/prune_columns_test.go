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
	"github.com/dolthub/go-semantic-layer/semantic/analyzer"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

func TestPruneColumnsSingleSource(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "revenue", Measure: "orders.revenue"}},
		plan.NewGroupBy(
			[]plan.GroupKey{{Field: "orders.created_at", Grain: semantic.GrainMonth}},
			plan.NewSource(ordersTable(t)),
		),
	)

	rendered := analyze(t, node).String()

	// revenue reads amount, the group key reads created_at. Nothing else
	// survives the prune.
	require.Contains(rendered, "Source(orders: amount, created_at)")
}

func TestPruneColumnsJoinKeys(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "total_ltv", Measure: "customers.total_ltv"}},
		manyJoin(t),
	)

	rendered := analyze(t, node).String()

	// Join keys stay in the pruned column sets of both sides.
	require.Contains(rendered, "Source(customers: id, lifetime_value)")
	require.Contains(rendered, "Source(orders: customer_id)")
}

func TestPruneColumnsDisabled(t *testing.T) {
	require := require.New(t)

	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "revenue", Measure: "orders.revenue"}},
		plan.NewGroupBy(
			[]plan.GroupKey{{Field: "orders.created_at"}},
			plan.NewSource(ordersTable(t)),
		),
	)

	a := analyzer.NewBuilder().WithoutProjectionPushdown().Build()
	analyzed, err := a.Analyze(semantic.NewEmptyContext(), node)
	require.NoError(err)

	require.Contains(analyzed.String(), "Source(orders)\n")
}
