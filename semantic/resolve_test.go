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

func tableWithField(t *testing.T, table, field string) *semantic.SemanticTable {
	t.Helper()

	rel := memory.NewTable(table, semantic.Schema{
		{Name: field, Type: semantic.Text, Source: table},
	})
	st, err := semantic.NewTable(table, rel).WithDimensions(semantic.Dimension{
		Name: field,
		Expr: expression.NewColumn(field),
	})
	require.NoError(t, err)
	return st
}

func TestBuildFieldsQualifiedNamesUnique(t *testing.T) {
	require := require.New(t)

	a := tableWithField(t, "a", "x")
	b := tableWithField(t, "b", "x")

	fields, err := semantic.BuildFields(a, b)
	require.NoError(err)

	require.Equal([]string{"a.x", "b.x"}, fields.DimensionNames())

	ra, err := fields.Dimension("a.x")
	require.NoError(err)
	require.Equal("a", ra.Table.Name())

	rb, err := fields.Dimension("b.x")
	require.NoError(err)
	require.Equal("b", rb.Table.Name())
}

func TestBuildFieldsBareNamePrecedence(t *testing.T) {
	require := require.New(t)

	a := tableWithField(t, "a", "x")
	b := tableWithField(t, "b", "x")

	// The leftmost table claims the bare name, regardless of which
	// qualified lookup the caller makes afterwards.
	fields, err := semantic.BuildFields(a, b)
	require.NoError(err)

	bare, err := fields.Dimension("x")
	require.NoError(err)
	require.Equal("a.x", bare.Qualified)

	// Reversing the join order reverses the claim.
	fields, err = semantic.BuildFields(b, a)
	require.NoError(err)

	bare, err = fields.Dimension("x")
	require.NoError(err)
	require.Equal("b.x", bare.Qualified)
}

func TestBuildFieldsSuffixFallback(t *testing.T) {
	require := require.New(t)

	a := tableWithField(t, "a", "x")
	b := tableWithField(t, "b", "y")

	fields, err := semantic.BuildFields(a, b)
	require.NoError(err)

	// "y" is only claimed by b, so the bare map has it. A name that is
	// neither qualified nor bare resolves through the suffix fallback.
	ry, err := fields.Dimension("y")
	require.NoError(err)
	require.Equal("b.y", ry.Qualified)

	_, err = fields.Dimension("z")
	require.Error(err)
	require.True(semantic.ErrUnresolvedField.Is(err))
}

func TestBuildFieldsDuplicateTable(t *testing.T) {
	require := require.New(t)

	a := tableWithField(t, "a", "x")

	_, err := semantic.BuildFields(a, a)
	require.Error(err)
	require.True(semantic.ErrDuplicateTable.Is(err))
}

func TestBuildFieldsMeasures(t *testing.T) {
	require := require.New(t)

	rel := memory.NewTable("orders", semantic.Schema{
		{Name: "amount", Type: semantic.Float64, Source: "orders"},
	})
	orders, err := semantic.NewTable("orders", rel).WithMeasures(semantic.Measure{
		Name: "revenue",
		Agg:  expression.NewSum(expression.NewColumn("amount")),
	})
	require.NoError(err)

	fields, err := semantic.BuildFields(orders)
	require.NoError(err)

	rm, err := fields.Measure("revenue")
	require.NoError(err)
	require.Equal("orders.revenue", rm.Qualified)

	require.True(fields.IsMeasure("orders.revenue"))
	require.False(fields.IsDimension("revenue"))
}

func TestFieldsColumn(t *testing.T) {
	require := require.New(t)

	a := tableWithField(t, "a", "x")
	b := tableWithField(t, "b", "y")

	fields, err := semantic.BuildFields(a, b)
	require.NoError(err)

	owner, col := fields.Column("y")
	require.NotNil(owner)
	require.Equal("b", owner.Name())
	require.Equal("y", col)

	owner, col = fields.Column("b.y")
	require.NotNil(owner)
	require.Equal("y", col)

	owner, _ = fields.Column("a.y")
	require.Nil(owner)

	owner, _ = fields.Column("z")
	require.Nil(owner)
}
