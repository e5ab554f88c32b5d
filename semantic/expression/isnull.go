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

// IsNull is an expression that checks if an expression is null.
type IsNull struct {
	UnaryExpression
}

// NewIsNull creates a new IsNull expression.
func NewIsNull(child semantic.Expression) *IsNull {
	return &IsNull{UnaryExpression{child}}
}

var _ semantic.Expression = (*IsNull)(nil)

// Type implements the Expression interface.
func (*IsNull) Type() semantic.ColumnType { return semantic.Boolean }

// IsNullable implements the Expression interface.
func (*IsNull) IsNullable() bool { return false }

// Eval implements the Expression interface.
func (e *IsNull) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	v, err := e.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	return v == nil, nil
}

// WithChildren implements the Expression interface.
func (e *IsNull) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return NewIsNull(children[0]), nil
}

func (e *IsNull) String() string {
	return fmt.Sprintf("(%s IS NULL)", e.Child)
}
