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

func analyzeErr(t *testing.T, n plan.Node) error {
	t.Helper()

	_, err := analyzer.NewDefault().Analyze(semantic.NewEmptyContext(), n)
	require.Error(t, err)
	return err
}

func TestValidateFieldsUnknownGroupKey(t *testing.T) {
	node := plan.NewGroupBy(
		[]plan.GroupKey{{Field: "nonsense"}},
		plan.NewSource(ordersTable(t)),
	)

	err := analyzeErr(t, node)
	require.True(t, semantic.ErrUnresolvedField.Is(err))
}

func TestValidateFieldsUnknownMeasure(t *testing.T) {
	node := plan.NewAggregate(
		[]plan.AggColumn{{Name: "x", Measure: "orders.nonsense"}},
		plan.NewSource(ordersTable(t)),
	)

	err := analyzeErr(t, node)
	require.True(t, semantic.ErrUnresolvedField.Is(err))
}

func TestValidateFieldsRawColumnGroupKey(t *testing.T) {
	require := require.New(t)

	// Raw relation columns are legal group keys even without a dimension.
	node := plan.NewGroupBy(
		[]plan.GroupKey{{Field: "orders.customer_id"}},
		plan.NewSource(ordersTable(t)),
	)

	_, err := analyzer.NewDefault().Analyze(semantic.NewEmptyContext(), node)
	require.NoError(err)
}

func TestValidateFieldsSortOverAggregateOutput(t *testing.T) {
	require := require.New(t)

	node := plan.NewSort(
		[]plan.SortField{plan.Desc("revenue")},
		plan.NewAggregate(
			[]plan.AggColumn{{Name: "revenue", Measure: "orders.revenue"}},
			plan.NewSource(ordersTable(t)),
		),
	)

	_, err := analyzer.NewDefault().Analyze(semantic.NewEmptyContext(), node)
	require.NoError(err)
}

func TestValidateGrainsNotTimeDimension(t *testing.T) {
	node := plan.NewGroupBy(
		[]plan.GroupKey{{Field: "customers.region", Grain: semantic.GrainMonth}},
		plan.NewSource(customersTable(t)),
	)

	err := analyzeErr(t, node)
	require.True(t, semantic.ErrNotTimeDimension.Is(err))
}

func TestValidateGrainsTooFine(t *testing.T) {
	// orders.created_at declares day as its smallest grain.
	node := plan.NewGroupBy(
		[]plan.GroupKey{{Field: "orders.created_at", Grain: semantic.GrainHour}},
		plan.NewSource(ordersTable(t)),
	)

	err := analyzeErr(t, node)
	require.True(t, semantic.ErrGrainTooFine.Is(err))
}

func TestValidateGrainsCoarserIsFine(t *testing.T) {
	require := require.New(t)

	for _, grain := range []semantic.Grain{
		semantic.GrainDay,
		semantic.GrainWeek,
		semantic.GrainMonth,
		semantic.GrainQuarter,
		semantic.GrainYear,
	} {
		node := plan.NewGroupBy(
			[]plan.GroupKey{{Field: "orders.created_at", Grain: grain}},
			plan.NewSource(ordersTable(t)),
		)

		_, err := analyzer.NewDefault().Analyze(semantic.NewEmptyContext(), node)
		require.NoError(err, "grain %s", grain)
	}
}
