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

package analyzer

import (
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

// validateFields checks that every field reference in the plan resolves to a
// dimension, a measure, a raw relation column or an output column produced
// lower in the plan. It fails fast with ErrUnresolvedField so bad references
// never reach the backend.
func validateFields(ctx *semantic.Context, a *Analyzer, n plan.Node) (plan.Node, error) {
	fields, err := fieldsFor(n)
	if err != nil {
		return nil, err
	}

	outputs := outputNames(n)

	var verr error
	plan.Inspect(n, func(n plan.Node) bool {
		switch n := n.(type) {
		case *plan.GroupBy:
			for _, key := range n.Keys {
				if !fields.IsDimension(key.Field) && !isRawColumn(fields, key.Field) {
					verr = unresolved(fields, key.Field)
					return false
				}
			}
		case *plan.Aggregate:
			for _, agg := range n.Aggs {
				if agg.Op != plan.OpDefault {
					continue
				}
				if !fields.IsMeasure(agg.Measure) {
					verr = unresolved(fields, agg.Measure)
					return false
				}
			}
		case *plan.Sort:
			for _, f := range n.Fields {
				if verr = checkRef(fields, outputs, f.Field); verr != nil {
					return false
				}
			}
		case *plan.Project:
			for _, f := range n.Fields {
				if verr = checkRef(fields, outputs, f); verr != nil {
					return false
				}
			}
		case *plan.Join:
			for _, key := range n.On {
				if verr = checkRef(fields, outputs, key.Left); verr != nil {
					return false
				}
				if verr = checkRef(fields, outputs, key.Right); verr != nil {
					return false
				}
			}
		case *plan.Filter:
			expression.Inspect(n.Predicate, func(e semantic.Expression) bool {
				col, ok := e.(*expression.Column)
				if !ok {
					return true
				}
				name := col.Name()
				if col.Table() != "" {
					name = col.Table() + "." + name
				}
				if verr = checkRef(fields, outputs, name); verr != nil {
					return false
				}
				return true
			})
			if verr != nil {
				return false
			}
		}
		return true
	})
	if verr != nil {
		return nil, verr
	}

	return n, nil
}

// checkRef accepts dimensions, measures, raw relation columns and names
// produced by Aggregate or Mutate nodes in the plan.
func checkRef(fields *semantic.Fields, outputs map[string]struct{}, name string) error {
	if fields.IsDimension(name) || fields.IsMeasure(name) {
		return nil
	}
	if isRawColumn(fields, name) {
		return nil
	}
	if _, ok := outputs[name]; ok {
		return nil
	}
	return unresolved(fields, name)
}

func isRawColumn(fields *semantic.Fields, name string) bool {
	t, _ := fields.Column(name)
	return t != nil
}

// outputNames collects the column names introduced by Aggregate and Mutate
// nodes, which sort and project clauses may reference.
func outputNames(n plan.Node) map[string]struct{} {
	outputs := make(map[string]struct{})
	plan.Inspect(n, func(n plan.Node) bool {
		switch n := n.(type) {
		case *plan.Aggregate:
			for _, agg := range n.Aggs {
				outputs[agg.Name] = struct{}{}
			}
		case *plan.Mutate:
			for _, col := range n.Cols {
				outputs[col.Name] = struct{}{}
			}
		}
		return true
	})
	return outputs
}

func unresolved(fields *semantic.Fields, name string) error {
	available := append(fields.DimensionNames(), fields.MeasureNames()...)
	return semantic.ErrUnresolvedField.New(name, strings.Join(available, ", "))
}
