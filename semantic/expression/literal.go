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

// Literal represents a literal expression (string, number, bool, nil, ...).
type Literal struct {
	value     interface{}
	fieldType semantic.ColumnType
}

// NewLiteral creates a new Literal expression.
func NewLiteral(value interface{}, fieldType semantic.ColumnType) *Literal {
	return &Literal{value: value, fieldType: fieldType}
}

var _ semantic.Expression = (*Literal)(nil)

// Value returns the literal value.
func (l *Literal) Value() interface{} { return l.value }

// Resolved implements the Expression interface.
func (*Literal) Resolved() bool { return true }

// Type implements the Expression interface.
func (l *Literal) Type() semantic.ColumnType { return l.fieldType }

// IsNullable implements the Expression interface.
func (l *Literal) IsNullable() bool { return l.value == nil }

// Eval implements the Expression interface.
func (l *Literal) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	return l.value, nil
}

// Children implements the Expression interface.
func (*Literal) Children() []semantic.Expression { return nil }

// WithChildren implements the Expression interface.
func (l *Literal) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 0 {
		return nil, semantic.ErrInvalidChildrenNumber.New(l, len(children), 0)
	}
	return l, nil
}

func (l *Literal) String() string {
	switch v := l.value.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}
