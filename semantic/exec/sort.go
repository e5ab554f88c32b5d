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

package exec

import (
	"sort"
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

// SortField is a bound sort key.
type SortField struct {
	Expr  semantic.Expression
	Order plan.SortOrder
}

// Sort materializes the child rows and orders them by the given fields.
// Nulls sort first.
type Sort struct {
	child  Node
	fields []SortField
}

// NewSort creates a new sort node.
func NewSort(fields []SortField, child Node) *Sort {
	return &Sort{child: child, fields: fields}
}

// Schema implements the Node interface.
func (s *Sort) Schema() semantic.Schema { return s.child.Schema() }

// Children implements the Node interface.
func (s *Sort) Children() []Node { return []Node{s.child} }

// RowIter implements the Node interface.
func (s *Sort) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	span, ctx := ctx.Span("exec.Sort")
	iter, err := s.child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	rows, err := semantic.RowIterToRows(iter)
	if err != nil {
		span.Finish()
		return nil, err
	}

	var serr error
	sort.SliceStable(rows, func(a, b int) bool {
		if serr != nil {
			return false
		}
		less, err := s.less(ctx, rows[a], rows[b])
		if err != nil {
			serr = err
			return false
		}
		return less
	})
	if serr != nil {
		span.Finish()
		return nil, serr
	}

	return semantic.NewSpanIter(span, semantic.RowsToRowIter(rows...)), nil
}

func (s *Sort) less(ctx *semantic.Context, a, b semantic.Row) (bool, error) {
	for _, f := range s.fields {
		av, err := f.Expr.Eval(ctx, a)
		if err != nil {
			return false, err
		}
		bv, err := f.Expr.Eval(ctx, b)
		if err != nil {
			return false, err
		}

		if av == nil && bv == nil {
			continue
		}
		if av == nil {
			return f.Order == plan.Ascending, nil
		}
		if bv == nil {
			return f.Order == plan.Descending, nil
		}

		cmp, err := semantic.Compare(av, bv)
		if err != nil {
			return false, err
		}
		if cmp == 0 {
			continue
		}
		if f.Order == plan.Descending {
			return cmp > 0, nil
		}
		return cmp < 0, nil
	}
	return false, nil
}

func (s *Sort) String() string {
	fields := make([]string, len(s.fields))
	for i, f := range s.fields {
		fields[i] = f.Expr.String() + " " + f.Order.String()
	}

	p := semantic.NewTreePrinter()
	_ = p.WriteNode("Sort(%s)", strings.Join(fields, ", "))
	_ = p.WriteChildren(s.child.String())
	return p.String()
}
