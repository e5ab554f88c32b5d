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
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// JoinCondition is one equality between an expression bound to the left
// schema and an expression bound to the right schema.
type JoinCondition struct {
	Left  semantic.Expression
	Right semantic.Expression
}

// Join is an in-memory nested loop join. The right side is materialized
// once. With no conditions it degenerates to a cross join. A left join pads
// unmatched left rows with nulls for the right columns.
type Join struct {
	left  Node
	right Node
	conds []JoinCondition
	outer bool
}

// NewJoin creates an inner join node.
func NewJoin(left, right Node, conds []JoinCondition) *Join {
	return &Join{left: left, right: right, conds: conds}
}

// NewLeftJoin creates a left outer join node.
func NewLeftJoin(left, right Node, conds []JoinCondition) *Join {
	return &Join{left: left, right: right, conds: conds, outer: true}
}

// Schema implements the Node interface.
func (j *Join) Schema() semantic.Schema {
	left, right := j.left.Schema(), j.right.Schema()
	schema := make(semantic.Schema, 0, len(left)+len(right))
	return append(append(schema, left...), right...)
}

// Children implements the Node interface.
func (j *Join) Children() []Node { return []Node{j.left, j.right} }

// RowIter implements the Node interface.
func (j *Join) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	span, ctx := ctx.Span("exec.Join")

	leftIter, err := j.left.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}

	rightIter, err := j.right.RowIter(ctx)
	if err != nil {
		leftIter.Close()
		span.Finish()
		return nil, err
	}
	rightRows, err := semantic.RowIterToRows(rightIter)
	if err != nil {
		leftIter.Close()
		span.Finish()
		return nil, err
	}

	return semantic.NewSpanIter(span, &joinIter{
		ctx:        ctx,
		j:          j,
		left:       leftIter,
		rightRows:  rightRows,
		rightWidth: len(j.right.Schema()),
	}), nil
}

func (j *Join) String() string {
	conds := make([]string, len(j.conds))
	for i, c := range j.conds {
		conds[i] = c.Left.String() + " = " + c.Right.String()
	}

	name := "InnerJoin"
	if j.outer {
		name = "LeftJoin"
	}

	p := semantic.NewTreePrinter()
	_ = p.WriteNode("%s(%s)", name, strings.Join(conds, ", "))
	_ = p.WriteChildren(j.left.String(), j.right.String())
	return p.String()
}

type joinIter struct {
	ctx        *semantic.Context
	j          *Join
	left       semantic.RowIter
	rightRows  []semantic.Row
	rightWidth int

	leftRow  semantic.Row
	rightPos int
	matched  bool
}

func (i *joinIter) Next() (semantic.Row, error) {
	for {
		if i.leftRow == nil {
			row, err := i.left.Next()
			if err != nil {
				return nil, err
			}
			i.leftRow = row
			i.rightPos = 0
			i.matched = false
		}

		for i.rightPos < len(i.rightRows) {
			rightRow := i.rightRows[i.rightPos]
			i.rightPos++

			ok, err := i.matches(i.leftRow, rightRow)
			if err != nil {
				return nil, err
			}
			if ok {
				i.matched = true
				return append(i.leftRow.Copy(), rightRow...), nil
			}
		}

		leftRow := i.leftRow
		i.leftRow = nil

		if i.j.outer && !i.matched {
			return append(leftRow.Copy(), make(semantic.Row, i.rightWidth)...), nil
		}
	}
}

func (i *joinIter) matches(left, right semantic.Row) (bool, error) {
	for _, cond := range i.j.conds {
		lval, err := cond.Left.Eval(i.ctx, left)
		if err != nil {
			return false, err
		}
		rval, err := cond.Right.Eval(i.ctx, right)
		if err != nil {
			return false, err
		}
		if lval == nil || rval == nil {
			return false, nil
		}

		cmp, err := semantic.Compare(lval, rval)
		if err != nil {
			return false, err
		}
		if cmp != 0 {
			return false, nil
		}
	}
	return true, nil
}

func (i *joinIter) Close() error {
	i.rightRows = nil
	return i.left.Close()
}

var _ semantic.RowIter = (*joinIter)(nil)
