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

package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-semantic-layer/memory"
	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
)

func ordersRelation() *memory.Table {
	return memory.NewTable("orders", semantic.Schema{
		{Name: "id", Type: semantic.Int64, Source: "orders"},
		{Name: "region", Type: semantic.Text, Source: "orders"},
		{Name: "amount", Type: semantic.Float64, Source: "orders"},
	})
}

func TestTableWithDimensions(t *testing.T) {
	require := require.New(t)

	base := semantic.NewTable("orders", ordersRelation())
	withDims, err := base.WithDimensions(semantic.Dimension{
		Name: "region",
		Expr: expression.NewColumn("region"),
	})
	require.NoError(err)

	require.Len(base.Dimensions(), 0)
	require.Len(withDims.Dimensions(), 1)
	require.NotNil(withDims.Dimension("region"))
	require.Nil(withDims.Dimension("missing"))
	require.Equal([]string{"region"}, withDims.AvailableDimensions())
}

func TestTableWithMeasures(t *testing.T) {
	require := require.New(t)

	base := semantic.NewTable("orders", ordersRelation())
	withMeasures, err := base.WithMeasures(semantic.Measure{
		Name: "revenue",
		Agg:  expression.NewSum(expression.NewColumn("amount")),
	})
	require.NoError(err)

	require.Len(base.Measures(), 0)
	require.NotNil(withMeasures.Measure("revenue"))
	require.False(withMeasures.Measure("revenue").Calculated())
	require.Equal([]string{"revenue"}, withMeasures.AvailableMeasures())
}

func TestTableDuplicateField(t *testing.T) {
	require := require.New(t)

	base, err := semantic.NewTable("orders", ordersRelation()).
		WithDimensions(semantic.Dimension{
			Name: "region",
			Expr: expression.NewColumn("region"),
		})
	require.NoError(err)

	_, err = base.WithDimensions(semantic.Dimension{
		Name: "region",
		Expr: expression.NewColumn("region"),
	})
	require.Error(err)
	require.True(semantic.ErrDuplicateField.Is(err))

	// A measure cannot reuse a dimension name either.
	_, err = base.WithMeasures(semantic.Measure{
		Name: "region",
		Agg:  expression.NewCount(expression.NewColumn("id")),
	})
	require.Error(err)
	require.True(semantic.ErrDuplicateField.Is(err))
}

func TestTableCalculatedMeasure(t *testing.T) {
	require := require.New(t)

	table, err := semantic.NewTable("orders", ordersRelation()).
		WithMeasures(
			semantic.Measure{
				Name: "revenue",
				Agg:  expression.NewSum(expression.NewColumn("amount")),
			},
			semantic.Measure{
				Name: "avg_order_value",
				Calc: func(r semantic.Resolver) (semantic.Expression, error) {
					rev, err := r.Measure("revenue")
					if err != nil {
						return nil, err
					}
					cnt, err := r.Measure("order_count")
					if err != nil {
						return nil, err
					}
					return expression.NewDiv(rev, cnt), nil
				},
			},
		)
	require.NoError(err)

	require.True(table.Measure("avg_order_value").Calculated())
	require.False(table.Measure("revenue").Calculated())
}

func TestCatalogRegister(t *testing.T) {
	require := require.New(t)

	catalog := semantic.NewCatalog()
	orders := semantic.NewTable("orders", ordersRelation())

	require.NoError(catalog.Register(orders))

	err := catalog.Register(semantic.NewTable("orders", ordersRelation()))
	require.Error(err)
	require.True(semantic.ErrTableAlreadyExists.Is(err))

	found, err := catalog.Table("orders")
	require.NoError(err)
	require.Equal(orders, found)

	_, err = catalog.Table("missing")
	require.Error(err)
	require.True(semantic.ErrTableNotFound.Is(err))

	require.Equal([]string{"orders"}, catalog.Tables())
}
