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

	"github.com/spf13/cast"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// And checks whether two expressions are true.
type And struct {
	BinaryExpression
}

// NewAnd creates a new And expression.
func NewAnd(left, right semantic.Expression) *And {
	return &And{BinaryExpression{left, right}}
}

// JoinAnd joins several expressions with ands.
func JoinAnd(exprs ...semantic.Expression) semantic.Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		result := NewAnd(exprs[0], exprs[1])
		for _, e := range exprs[2:] {
			result = NewAnd(result, e)
		}
		return result
	}
}

var _ semantic.Expression = (*And)(nil)

// Type implements the Expression interface.
func (*And) Type() semantic.ColumnType { return semantic.Boolean }

// Eval implements the Expression interface.
func (a *And) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	lval, err := a.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if lval == false {
		return false, nil
	}

	rval, err := a.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if rval == false {
		return false, nil
	}

	if lval == nil || rval == nil {
		return nil, nil
	}
	return true, nil
}

// WithChildren implements the Expression interface.
func (a *And) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewAnd(children[0], children[1]), nil
}

func (a *And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

// Or checks whether one of the two given expressions is true.
type Or struct {
	BinaryExpression
}

// NewOr creates a new Or expression.
func NewOr(left, right semantic.Expression) *Or {
	return &Or{BinaryExpression{left, right}}
}

var _ semantic.Expression = (*Or)(nil)

// Type implements the Expression interface.
func (*Or) Type() semantic.ColumnType { return semantic.Boolean }

// Eval implements the Expression interface.
func (o *Or) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	lval, err := o.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if lval == true {
		return true, nil
	}

	rval, err := o.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if rval == true {
		return true, nil
	}

	if lval == nil || rval == nil {
		return nil, nil
	}
	return false, nil
}

// WithChildren implements the Expression interface.
func (o *Or) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(o, len(children), 2)
	}
	return NewOr(children[0], children[1]), nil
}

func (o *Or) String() string {
	return fmt.Sprintf("(%s OR %s)", o.Left, o.Right)
}

// Not is a node that negates an expression.
type Not struct {
	UnaryExpression
}

// NewNot returns a new Not node.
func NewNot(child semantic.Expression) *Not {
	return &Not{UnaryExpression{child}}
}

var _ semantic.Expression = (*Not)(nil)

// Type implements the Expression interface.
func (*Not) Type() semantic.ColumnType { return semantic.Boolean }

// Eval implements the Expression interface.
func (e *Not) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	v, err := e.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, semantic.ErrInvalidValue.New(v, semantic.Boolean)
	}
	return !b, nil
}

// WithChildren implements the Expression interface.
func (e *Not) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return NewNot(children[0]), nil
}

func (e *Not) String() string {
	return fmt.Sprintf("NOT(%s)", e.Child)
}
