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

// GetField is an expression to get the value of a field at a known position in
// a row.
type GetField struct {
	fieldIndex int
	fieldType  semantic.ColumnType
	name       string
	table      string
	nullable   bool
}

// NewGetField creates a GetField expression.
func NewGetField(index int, fieldType semantic.ColumnType, fieldName string, nullable bool) *GetField {
	return NewGetFieldWithTable(index, fieldType, "", fieldName, nullable)
}

// NewGetFieldWithTable creates a GetField expression with table name.
func NewGetFieldWithTable(index int, fieldType semantic.ColumnType, table, fieldName string, nullable bool) *GetField {
	return &GetField{
		fieldIndex: index,
		fieldType:  fieldType,
		name:       fieldName,
		table:      table,
		nullable:   nullable,
	}
}

var _ semantic.Expression = (*GetField)(nil)

// Index returns the row position this field reads from.
func (p *GetField) Index() int { return p.fieldIndex }

// Name returns the name of the field.
func (p *GetField) Name() string { return p.name }

// Table returns the name of the field table.
func (p *GetField) Table() string { return p.table }

// Resolved implements the Expression interface.
func (*GetField) Resolved() bool { return true }

// Type returns the type of the field.
func (p *GetField) Type() semantic.ColumnType { return p.fieldType }

// IsNullable returns whether the field is nullable or not.
func (p *GetField) IsNullable() bool { return p.nullable }

// Eval implements the Expression interface.
func (p *GetField) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	if p.fieldIndex < 0 || p.fieldIndex >= len(row) {
		return nil, semantic.ErrUnexpectedRowLength.New(p.fieldIndex+1, len(row))
	}
	return row[p.fieldIndex], nil
}

// Children implements the Expression interface.
func (*GetField) Children() []semantic.Expression { return nil }

// WithChildren implements the Expression interface.
func (p *GetField) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 0 {
		return nil, semantic.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

// WithIndex returns a copy of this field reading from a different row
// position.
func (p *GetField) WithIndex(index int) *GetField {
	np := *p
	np.fieldIndex = index
	return &np
}

func (p *GetField) String() string {
	if p.table == "" {
		return p.name
	}
	return fmt.Sprintf("%s.%s", p.table, p.name)
}
