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

package expression

import (
	"fmt"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// In is a comparison that checks an expression is inside a list of
// expressions.
type In struct {
	BinaryExpression
}

// NewIn creates an In expression. The right side must be a Tuple.
func NewIn(left, right semantic.Expression) *In {
	return &In{BinaryExpression{left, right}}
}

var _ semantic.Expression = (*In)(nil)

// Type implements the Expression interface.
func (*In) Type() semantic.ColumnType { return semantic.Boolean }

// Eval implements the Expression interface.
func (in *In) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	left, err := in.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}

	tuple, ok := in.Right.(*Tuple)
	if !ok {
		return nil, semantic.ErrInvalidValue.New(in.Right, "tuple")
	}

	for _, el := range tuple.Children() {
		right, err := el.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if right == nil {
			continue
		}

		cmp, err := semantic.Compare(left, right)
		if err != nil {
			return nil, err
		}
		if cmp == 0 {
			return true, nil
		}
	}

	return false, nil
}

// WithChildren implements the Expression interface.
func (in *In) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(in, len(children), 2)
	}
	return NewIn(children[0], children[1]), nil
}

func (in *In) String() string {
	return fmt.Sprintf("(%s IN %s)", in.Left, in.Right)
}
