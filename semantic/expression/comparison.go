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

type comparison struct {
	BinaryExpression
}

// Compare the two given values using the types of the expressions in the
// comparison. A NULL on either side yields a NULL result, signalled by the
// bool return.
func (c *comparison) compare(ctx *semantic.Context, row semantic.Row) (int, bool, error) {
	left, err := c.Left.Eval(ctx, row)
	if err != nil {
		return 0, false, err
	}
	right, err := c.Right.Eval(ctx, row)
	if err != nil {
		return 0, false, err
	}
	if left == nil || right == nil {
		return 0, true, nil
	}

	cmp, err := semantic.Compare(left, right)
	if err != nil {
		return 0, false, err
	}
	return cmp, false, nil
}

// Type implements the Expression interface.
func (*comparison) Type() semantic.ColumnType { return semantic.Boolean }

// Equals is a comparison that checks an expression is equal to another.
type Equals struct {
	comparison
}

// NewEquals returns a new Equals expression.
func NewEquals(left, right semantic.Expression) *Equals {
	return &Equals{comparison{BinaryExpression{left, right}}}
}

var _ semantic.Expression = (*Equals)(nil)

// Eval implements the Expression interface.
func (e *Equals) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	cmp, null, err := e.compare(ctx, row)
	if err != nil || null {
		return nil, err
	}
	return cmp == 0, nil
}

// WithChildren implements the Expression interface.
func (e *Equals) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewEquals(children[0], children[1]), nil
}

func (e *Equals) String() string {
	return fmt.Sprintf("(%s = %s)", e.Left, e.Right)
}

// NotEquals is a comparison that checks an expression is not equal to another.
type NotEquals struct {
	comparison
}

// NewNotEquals returns a new NotEquals expression.
func NewNotEquals(left, right semantic.Expression) *NotEquals {
	return &NotEquals{comparison{BinaryExpression{left, right}}}
}

var _ semantic.Expression = (*NotEquals)(nil)

// Eval implements the Expression interface.
func (e *NotEquals) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	cmp, null, err := e.compare(ctx, row)
	if err != nil || null {
		return nil, err
	}
	return cmp != 0, nil
}

// WithChildren implements the Expression interface.
func (e *NotEquals) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewNotEquals(children[0], children[1]), nil
}

func (e *NotEquals) String() string {
	return fmt.Sprintf("(%s != %s)", e.Left, e.Right)
}

// LessThan is a comparison that checks an expression is less than another.
type LessThan struct {
	comparison
}

// NewLessThan returns a new LessThan expression.
func NewLessThan(left, right semantic.Expression) *LessThan {
	return &LessThan{comparison{BinaryExpression{left, right}}}
}

var _ semantic.Expression = (*LessThan)(nil)

// Eval implements the Expression interface.
func (e *LessThan) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	cmp, null, err := e.compare(ctx, row)
	if err != nil || null {
		return nil, err
	}
	return cmp < 0, nil
}

// WithChildren implements the Expression interface.
func (e *LessThan) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewLessThan(children[0], children[1]), nil
}

func (e *LessThan) String() string {
	return fmt.Sprintf("(%s < %s)", e.Left, e.Right)
}

// LessThanOrEqual is a comparison that checks an expression is less than or
// equal to another.
type LessThanOrEqual struct {
	comparison
}

// NewLessThanOrEqual returns a new LessThanOrEqual expression.
func NewLessThanOrEqual(left, right semantic.Expression) *LessThanOrEqual {
	return &LessThanOrEqual{comparison{BinaryExpression{left, right}}}
}

var _ semantic.Expression = (*LessThanOrEqual)(nil)

// Eval implements the Expression interface.
func (e *LessThanOrEqual) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	cmp, null, err := e.compare(ctx, row)
	if err != nil || null {
		return nil, err
	}
	return cmp <= 0, nil
}

// WithChildren implements the Expression interface.
func (e *LessThanOrEqual) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewLessThanOrEqual(children[0], children[1]), nil
}

func (e *LessThanOrEqual) String() string {
	return fmt.Sprintf("(%s <= %s)", e.Left, e.Right)
}

// GreaterThan is a comparison that checks an expression is greater than
// another.
type GreaterThan struct {
	comparison
}

// NewGreaterThan returns a new GreaterThan expression.
func NewGreaterThan(left, right semantic.Expression) *GreaterThan {
	return &GreaterThan{comparison{BinaryExpression{left, right}}}
}

var _ semantic.Expression = (*GreaterThan)(nil)

// Eval implements the Expression interface.
func (e *GreaterThan) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	cmp, null, err := e.compare(ctx, row)
	if err != nil || null {
		return nil, err
	}
	return cmp > 0, nil
}

// WithChildren implements the Expression interface.
func (e *GreaterThan) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewGreaterThan(children[0], children[1]), nil
}

func (e *GreaterThan) String() string {
	return fmt.Sprintf("(%s > %s)", e.Left, e.Right)
}

// GreaterThanOrEqual is a comparison that checks an expression is greater than
// or equal to another.
type GreaterThanOrEqual struct {
	comparison
}

// NewGreaterThanOrEqual returns a new GreaterThanOrEqual expression.
func NewGreaterThanOrEqual(left, right semantic.Expression) *GreaterThanOrEqual {
	return &GreaterThanOrEqual{comparison{BinaryExpression{left, right}}}
}

var _ semantic.Expression = (*GreaterThanOrEqual)(nil)

// Eval implements the Expression interface.
func (e *GreaterThanOrEqual) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	cmp, null, err := e.compare(ctx, row)
	if err != nil || null {
		return nil, err
	}
	return cmp >= 0, nil
}

// WithChildren implements the Expression interface.
func (e *GreaterThanOrEqual) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 2)
	}
	return NewGreaterThanOrEqual(children[0], children[1]), nil
}

func (e *GreaterThanOrEqual) String() string {
	return fmt.Sprintf("(%s >= %s)", e.Left, e.Right)
}
