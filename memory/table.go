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

// Package memory provides an in-memory relation backend, used for tests and
// examples.
package memory

import (
	"github.com/dolthub/go-semantic-layer/semantic"
)

// Table is an in-memory relation.
type Table struct {
	name   string
	schema semantic.Schema
	rows   []semantic.Row
}

var _ semantic.ExternalRelation = (*Table)(nil)
var _ semantic.ProjectedRelation = (*Table)(nil)

// NewTable creates a new in-memory relation with the given schema.
func NewTable(name string, schema semantic.Schema) *Table {
	return &Table{name: name, schema: schema}
}

// Name implements the Nameable interface.
func (t *Table) Name() string { return t.name }

// Schema implements the ExternalRelation interface.
func (t *Table) Schema() semantic.Schema { return t.schema }

// Insert adds a row to the table. The row must match the schema.
func (t *Table) Insert(row semantic.Row) error {
	if err := t.schema.CheckRow(row); err != nil {
		return err
	}
	t.rows = append(t.rows, row)
	return nil
}

// RowIter implements the ExternalRelation interface.
func (t *Table) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	return semantic.RowsToRowIter(t.rows...), nil
}

// WithColumns implements the ProjectedRelation interface. The returned
// relation reads only the given columns, in the given order.
func (t *Table) WithColumns(columns []string) (semantic.ExternalRelation, error) {
	indexes := make([]int, len(columns))
	schema := make(semantic.Schema, len(columns))
	for i, name := range columns {
		idx := t.schema.IndexOfName(name)
		if idx < 0 {
			return nil, semantic.ErrColumnNotFound.New(t.name, name)
		}
		indexes[i] = idx
		schema[i] = t.schema[idx]
	}
	return &projectedTable{table: t, indexes: indexes, schema: schema}, nil
}

type projectedTable struct {
	table   *Table
	indexes []int
	schema  semantic.Schema
}

func (p *projectedTable) Name() string { return p.table.name }

func (p *projectedTable) Schema() semantic.Schema { return p.schema }

func (p *projectedTable) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	rows := make([]semantic.Row, len(p.table.rows))
	for i, row := range p.table.rows {
		projected := make(semantic.Row, len(p.indexes))
		for j, idx := range p.indexes {
			projected[j] = row[idx]
		}
		rows[i] = projected
	}
	return semantic.RowsToRowIter(rows...), nil
}
