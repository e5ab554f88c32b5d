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
	"github.com/dolthub/go-semantic-layer/semantic"
)

// UnaryExpression is an expression that has only one child.
type UnaryExpression struct {
	Child semantic.Expression
}

// Children implements the Expression interface.
func (p *UnaryExpression) Children() []semantic.Expression {
	return []semantic.Expression{p.Child}
}

// Resolved implements the Expression interface.
func (p *UnaryExpression) Resolved() bool {
	return p.Child.Resolved()
}

// IsNullable implements the Expression interface.
func (p *UnaryExpression) IsNullable() bool {
	return p.Child.IsNullable()
}

// BinaryExpression is an expression that has two children.
type BinaryExpression struct {
	Left  semantic.Expression
	Right semantic.Expression
}

// Children implements the Expression interface.
func (p *BinaryExpression) Children() []semantic.Expression {
	return []semantic.Expression{p.Left, p.Right}
}

// Resolved implements the Expression interface.
func (p *BinaryExpression) Resolved() bool {
	return p.Left.Resolved() && p.Right.Resolved()
}

// IsNullable implements the Expression interface.
func (p *BinaryExpression) IsNullable() bool {
	return p.Left.IsNullable() || p.Right.IsNullable()
}

// ExpressionsResolved returns whether all the given expressions are resolved.
func ExpressionsResolved(exprs ...semantic.Expression) bool {
	for _, e := range exprs {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

// TypeOf returns the type an expression produces when evaluated against rows
// of the given schema, without evaluating it. Unbound columns are resolved
// against the schema by name.
func TypeOf(e semantic.Expression, schema semantic.Schema) semantic.ColumnType {
	switch e := e.(type) {
	case *Column:
		var idx int
		if e.Table() != "" {
			idx = schema.IndexOf(e.Name(), e.Table())
		} else {
			idx = schema.IndexOfName(e.Name())
		}
		if idx < 0 {
			return semantic.Unknown
		}
		return schema[idx].Type
	default:
		return e.Type()
	}
}
