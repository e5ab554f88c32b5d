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
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// Tuple is a fixed-size collection of expressions.
type Tuple []semantic.Expression

// NewTuple creates a new Tuple expression.
func NewTuple(exprs ...semantic.Expression) *Tuple {
	t := Tuple(exprs)
	return &t
}

var _ semantic.Expression = (*Tuple)(nil)

// Resolved implements the Expression interface.
func (t *Tuple) Resolved() bool {
	return ExpressionsResolved(*t...)
}

// Type implements the Expression interface. A tuple has no single type; the
// type of its first element is reported.
func (t *Tuple) Type() semantic.ColumnType {
	if len(*t) == 0 {
		return semantic.Unknown
	}
	return (*t)[0].Type()
}

// IsNullable implements the Expression interface.
func (t *Tuple) IsNullable() bool {
	for _, e := range *t {
		if e.IsNullable() {
			return true
		}
	}
	return false
}

// Eval implements the Expression interface.
func (t *Tuple) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	values := make([]interface{}, len(*t))
	for i, e := range *t {
		var err error
		values[i], err = e.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
	}
	return values, nil
}

// Children implements the Expression interface.
func (t *Tuple) Children() []semantic.Expression {
	return *t
}

// WithChildren implements the Expression interface.
func (t *Tuple) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != len(*t) {
		return nil, semantic.ErrInvalidChildrenNumber.New(t, len(children), len(*t))
	}
	return NewTuple(children...), nil
}

func (t *Tuple) String() string {
	parts := make([]string, len(*t))
	for i, e := range *t {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
