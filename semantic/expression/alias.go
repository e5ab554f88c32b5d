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

// Alias is an expression wrapper that gives a name to another expression.
type Alias struct {
	UnaryExpression
	name string
}

// NewAlias creates a new Alias expression.
func NewAlias(name string, expr semantic.Expression) *Alias {
	return &Alias{UnaryExpression{expr}, name}
}

var _ semantic.Expression = (*Alias)(nil)

// Name implements the Nameable interface.
func (e *Alias) Name() string { return e.name }

// Type implements the Expression interface.
func (e *Alias) Type() semantic.ColumnType { return e.Child.Type() }

// Eval implements the Expression interface.
func (e *Alias) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	return e.Child.Eval(ctx, row)
}

// WithChildren implements the Expression interface.
func (e *Alias) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(e, len(children), 1)
	}
	return NewAlias(e.name, children[0]), nil
}

func (e *Alias) String() string {
	return fmt.Sprintf("%s as %s", e.Child, e.name)
}
