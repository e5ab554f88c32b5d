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

package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-semantic-layer/memory"
	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/filter"
)

func orderFields(t *testing.T) *semantic.Fields {
	t.Helper()

	rel := memory.NewTable("orders", semantic.Schema{
		{Name: "id", Type: semantic.Int64, Source: "orders"},
		{Name: "region", Type: semantic.Text, Source: "orders"},
		{Name: "amount", Type: semantic.Float64, Source: "orders"},
		{Name: "created_at", Type: semantic.Timestamp, Source: "orders"},
	})

	orders, err := semantic.NewTable("orders", rel).WithDimensions(
		semantic.Dimension{Name: "region", Expr: expression.NewColumn("region")},
		semantic.Dimension{
			Name:          "created_at",
			Expr:          expression.NewColumn("created_at"),
			TimeDimension: true,
			SmallestGrain: semantic.GrainDay,
		},
	)
	require.NoError(t, err)

	fields, err := semantic.BuildFields(orders)
	require.NoError(t, err)
	return fields
}

func TestParseOperator(t *testing.T) {
	testCases := map[string]string{
		"=":           filter.OpEquals,
		"==":          filter.OpEquals,
		"EQ":          filter.OpEquals,
		"<>":          filter.OpNotEquals,
		"neq":         filter.OpNotEquals,
		"lte":         filter.OpLessEqual,
		"gt":          filter.OpGreaterThan,
		"not_in":      filter.OpNotIn,
		"is_null":     filter.OpIsNull,
		"IS NOT NULL": filter.OpIsNotNull,
	}

	for alias, canonical := range testCases {
		op, err := filter.ParseOperator(alias)
		require.NoError(t, err)
		require.Equal(t, canonical, op)
	}

	_, err := filter.ParseOperator("like")
	require.Error(t, err)
	require.True(t, filter.ErrUnknownOperator.Is(err))
}

func TestCompileCondition(t *testing.T) {
	require := require.New(t)
	fields := orderFields(t)

	e, err := filter.Compile(filter.Condition{
		Field:    "region",
		Operator: "eq",
		Value:    "EMEA",
	}, fields)
	require.NoError(err)

	require.Equal(
		expression.NewEquals(
			expression.NewQualifiedColumn("orders", "region"),
			expression.NewLiteral("EMEA", semantic.Text),
		),
		e,
	)
}

func TestCompileConditionIn(t *testing.T) {
	require := require.New(t)
	fields := orderFields(t)

	e, err := filter.Compile(filter.Condition{
		Field:    "region",
		Operator: "in",
		Values:   []interface{}{"EMEA", "APAC"},
	}, fields)
	require.NoError(err)

	in, ok := e.(*expression.In)
	require.True(ok)
	require.Equal("orders.region", in.Left.String())

	_, err = filter.Compile(filter.Condition{
		Field:    "region",
		Operator: "in",
	}, fields)
	require.Error(err)
	require.True(filter.ErrBadCondition.Is(err))
}

func TestCompileConditionUnknownField(t *testing.T) {
	require := require.New(t)

	_, err := filter.Compile(filter.Condition{
		Field:    "missing",
		Operator: "=",
		Value:    1,
	}, orderFields(t))
	require.Error(err)
	require.True(semantic.ErrUnresolvedField.Is(err))
}

func TestCompileConditionTimeLiteral(t *testing.T) {
	require := require.New(t)

	// Strings compared against a timestamp dimension become time values.
	e, err := filter.Compile(filter.Condition{
		Field:    "created_at",
		Operator: ">=",
		Value:    "2021-08-01",
	}, orderFields(t))
	require.NoError(err)

	cmp, ok := e.(*expression.GreaterThanOrEqual)
	require.True(ok)
	lit, ok := cmp.Right.(*expression.Literal)
	require.True(ok)
	require.IsType(time.Time{}, lit.Value())
}

func TestCompileCompound(t *testing.T) {
	require := require.New(t)
	fields := orderFields(t)

	e, err := filter.Compile(filter.And(
		filter.Condition{Field: "region", Operator: "=", Value: "EMEA"},
		filter.Condition{Field: "region", Operator: "!=", Value: "APAC"},
	), fields)
	require.NoError(err)
	require.IsType(&expression.And{}, e)

	e, err = filter.Compile(filter.Or(
		filter.Condition{Field: "region", Operator: "=", Value: "EMEA"},
		filter.Condition{Field: "region", Operator: "=", Value: "APAC"},
	), fields)
	require.NoError(err)
	require.IsType(&expression.Or{}, e)

	_, err = filter.Compile(filter.And(), fields)
	require.Error(err)
	require.True(filter.ErrBadCondition.Is(err))
}

func TestCompileExpr(t *testing.T) {
	require := require.New(t)

	e, err := filter.Compile(filter.Expr("region = 'EMEA'"), orderFields(t))
	require.NoError(err)

	require.Equal(
		expression.NewEquals(
			expression.NewQualifiedColumn("orders", "region"),
			expression.NewLiteral("EMEA", semantic.Text),
		),
		e,
	)
}

func TestCompileExprRawColumn(t *testing.T) {
	require := require.New(t)

	// amount is a relation column without a declared dimension.
	e, err := filter.Compile(filter.Expr("amount > 100"), orderFields(t))
	require.NoError(err)

	require.Equal(
		expression.NewGreaterThan(
			expression.NewQualifiedColumn("orders", "amount"),
			expression.NewLiteral(int64(100), semantic.Int64),
		),
		e,
	)
}

func TestCompileExprTimeLiteral(t *testing.T) {
	require := require.New(t)

	// Parsed expressions get the same literal conversion as structured
	// conditions: strings compared against a timestamp column become times.
	e, err := filter.Compile(filter.Expr("created_at >= '2021-08-01'"), orderFields(t))
	require.NoError(err)

	cmp, ok := e.(*expression.GreaterThanOrEqual)
	require.True(ok)
	lit, ok := cmp.Right.(*expression.Literal)
	require.True(ok)
	require.IsType(time.Time{}, lit.Value())
}

func TestCompileExprUnknownField(t *testing.T) {
	require := require.New(t)

	// Neither a dimension nor a relation column anywhere in scope.
	_, err := filter.Compile(filter.Expr("bogus > 1"), orderFields(t))
	require.Error(err)
	require.True(semantic.ErrUnknownField.Is(err))
}

func TestCompilePredicate(t *testing.T) {
	require := require.New(t)

	e, err := filter.Compile(filter.Predicate{
		Expr: expression.NewIsNull(expression.NewColumn("region")),
	}, orderFields(t))
	require.NoError(err)

	require.Equal(
		expression.NewIsNull(expression.NewQualifiedColumn("orders", "region")),
		e,
	)
}

func TestCompileTimeRange(t *testing.T) {
	require := require.New(t)
	fields := orderFields(t)

	start := time.Date(2021, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, time.September, 1, 0, 0, 0, 0, time.UTC)

	e, err := filter.Compile(filter.TimeRange{
		Field: "created_at",
		Start: start,
		End:   end,
	}, fields)
	require.NoError(err)

	require.Equal(
		expression.NewAnd(
			expression.NewGreaterThanOrEqual(
				expression.NewQualifiedColumn("orders", "created_at"),
				expression.NewLiteral(start, semantic.Timestamp),
			),
			expression.NewLessThan(
				expression.NewQualifiedColumn("orders", "created_at"),
				expression.NewLiteral(end, semantic.Timestamp),
			),
		),
		e,
	)

	// Ranges only apply to time dimensions.
	_, err = filter.Compile(filter.TimeRange{
		Field: "region",
		Start: start,
		End:   end,
	}, fields)
	require.Error(err)
	require.True(semantic.ErrNotTimeDimension.Is(err))
}

func TestFromJSON(t *testing.T) {
	require := require.New(t)

	f, err := filter.FromJSON([]byte(`"region = 'EMEA'"`))
	require.NoError(err)
	require.Equal(filter.Expr("region = 'EMEA'"), f)

	f, err = filter.FromJSON([]byte(`{"field": "region", "operator": "eq", "value": "EMEA"}`))
	require.NoError(err)
	require.Equal(filter.Condition{Field: "region", Operator: filter.OpEquals, Value: "EMEA"}, f)

	f, err = filter.FromJSON([]byte(`{"field": "region", "operator": "in", "values": ["a", "b"]}`))
	require.NoError(err)
	require.Equal(filter.Condition{
		Field:    "region",
		Operator: filter.OpIn,
		Values:   []interface{}{"a", "b"},
	}, f)

	f, err = filter.FromJSON([]byte(`{"and": [
		{"field": "region", "operator": "=", "value": "EMEA"},
		"amount > 100"
	]}`))
	require.NoError(err)
	compound, ok := f.(filter.Compound)
	require.True(ok)
	require.Equal(filter.ConnectorAnd, compound.Operator)
	require.Len(compound.Conditions, 2)

	// A compound may also spell out its connector under "operator", in
	// either case.
	f, err = filter.FromJSON([]byte(`{"operator": "AND", "conditions": [
		{"field": "region", "operator": "=", "value": "EMEA"},
		{"field": "amount", "operator": ">", "value": 100}
	]}`))
	require.NoError(err)
	compound, ok = f.(filter.Compound)
	require.True(ok)
	require.Equal(filter.ConnectorAnd, compound.Operator)
	require.Len(compound.Conditions, 2)

	f, err = filter.FromJSON([]byte(`{"operator": "or", "conditions": ["amount > 100", "amount < 10"]}`))
	require.NoError(err)
	compound, ok = f.(filter.Compound)
	require.True(ok)
	require.Equal(filter.ConnectorOr, compound.Operator)
	require.Len(compound.Conditions, 2)

	f, err = filter.FromJSON([]byte(`{"field": "created_at", "start": "2021-08-01", "end": "2021-09-01"}`))
	require.NoError(err)
	tr, ok := f.(filter.TimeRange)
	require.True(ok)
	require.Equal("created_at", tr.Field)
	require.Equal(time.Date(2021, time.August, 1, 0, 0, 0, 0, time.UTC), tr.Start)
}

func TestFromJSONErrors(t *testing.T) {
	require := require.New(t)

	_, err := filter.FromJSON([]byte(`{`))
	require.Error(err)
	require.True(filter.ErrInvalidJSON.Is(err))

	_, err = filter.FromJSON([]byte(`42`))
	require.Error(err)
	require.True(filter.ErrInvalidJSON.Is(err))

	_, err = filter.FromJSON([]byte(`{"operator": "="}`))
	require.Error(err)
	require.True(filter.ErrInvalidJSON.Is(err))

	_, err = filter.FromJSON([]byte(`{"field": "x", "operator": "like", "value": 1}`))
	require.Error(err)
	require.True(filter.ErrUnknownOperator.Is(err))

	_, err = filter.FromJSON([]byte(`{"operator": "xor", "conditions": []}`))
	require.Error(err)
	require.True(filter.ErrInvalidJSON.Is(err))
}
