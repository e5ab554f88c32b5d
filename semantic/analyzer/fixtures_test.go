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

	"github.com/dolthub/go-semantic-layer/memory"
	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
)

// customersTable is the "one" side of the classic fan trap: a few customers,
// each with a lifetime value that join fan-out must not inflate.
func customersTable(t *testing.T) *semantic.SemanticTable {
	t.Helper()

	rel := memory.NewTable("customers", semantic.Schema{
		{Name: "id", Type: semantic.Int64, Source: "customers"},
		{Name: "name", Type: semantic.Text, Source: "customers"},
		{Name: "region", Type: semantic.Text, Source: "customers"},
		{Name: "lifetime_value", Type: semantic.Float64, Source: "customers"},
	})

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
