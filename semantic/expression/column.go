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

// Column is a reference to a relation column that has not been bound to a row
// position yet. Lowering replaces every Column with a GetField before
// execution.
type Column struct {
	name  string
	table string
}

// NewColumn creates a reference to the column with the given name.
func NewColumn(name string) *Column {
	return &Column{name: name}
}

// NewQualifiedColumn creates a reference to a column qualified with a table
// name.
func NewQualifiedColumn(table, name string) *Column {
	return &Column{name: name, table: table}
}

var _ semantic.Expression = (*Column)(nil)

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Table returns the qualifying table name, which may be empty.
func (c *Column) Table() string { return c.table }

// Resolved implements the Expression interface.
func (*Column) Resolved() bool { return false }

// Type implements the Expression interface.
func (*Column) Type() semantic.ColumnType { return semantic.Unknown }

// IsNullable implements the Expression interface.
func (*Column) IsNullable() bool { return true }

// Eval implements the Expression interface.
func (c *Column) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	panic("column is a placeholder node, but Eval was called")
}

// Children implements the Expression interface.
func (*Column) Children() []semantic.Expression { return nil }

// WithChildren implements the Expression interface.
func (c *Column) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 0 {
		return nil, semantic.ErrInvalidChildrenNumber.New(c, len(children), 0)
	}
	return c, nil
}

func (c *Column) String() string {
	if c.table == "" {
		return c.name
	}
	return fmt.Sprintf("%s.%s", c.table, c.name)
}
