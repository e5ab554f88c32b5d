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

const (
	// PlusStr is the string representation of the addition operator.
	PlusStr = "+"
	// MinusStr is the string representation of the subtraction operator.
	MinusStr = "-"
	// MultStr is the string representation of the multiplication operator.
	MultStr = "*"
	// DivStr is the string representation of the division operator.
	DivStr = "/"
)

// Arithmetic expressions (+, -, *, /). Operands are evaluated as float64;
// division by zero yields NULL.
type Arithmetic struct {
	BinaryExpression
	Op string
}

// NewArithmetic creates a new Arithmetic expression.
func NewArithmetic(left, right semantic.Expression, op string) *Arithmetic {
	return &Arithmetic{BinaryExpression{left, right}, op}
}

// NewPlus creates a new addition expression.
func NewPlus(left, right semantic.Expression) *Arithmetic {
	return NewArithmetic(left, right, PlusStr)
}

// NewMinus creates a new subtraction expression.
func NewMinus(left, right semantic.Expression) *Arithmetic {
	return NewArithmetic(left, right, MinusStr)
}

// NewMult creates a new multiplication expression.
func NewMult(left, right semantic.Expression) *Arithmetic {
	return NewArithmetic(left, right, MultStr)
}

// NewDiv creates a new division expression.
func NewDiv(left, right semantic.Expression) *Arithmetic {
	return NewArithmetic(left, right, DivStr)
}

var _ semantic.Expression = (*Arithmetic)(nil)

// Type implements the Expression interface.
func (*Arithmetic) Type() semantic.ColumnType { return semantic.Float64 }

// Eval implements the Expression interface.
func (a *Arithmetic) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	lval, err := a.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	rval, err := a.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if lval == nil || rval == nil {
		return nil, nil
	}

	left, err := cast.ToFloat64E(lval)
	if err != nil {
		return nil, semantic.ErrInvalidValue.New(lval, semantic.Float64)
	}
	right, err := cast.ToFloat64E(rval)
	if err != nil {
		return nil, semantic.ErrInvalidValue.New(rval, semantic.Float64)
	}

	switch a.Op {
	case PlusStr:
		return left + right, nil
	case MinusStr:
		return left - right, nil
	case MultStr:
		return left * right, nil
	case DivStr:
		if right == 0 {
			return nil, nil
		}
		return left / right, nil
	}
	return nil, semantic.ErrUnsupportedOperator.New(a.Op)
}

// WithChildren implements the Expression interface.
func (a *Arithmetic) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewArithmetic(children[0], children[1], a.Op), nil
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right)
}
