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

package semantic

import "io"

// Row is a tuple of values.
type Row []interface{}

// NewRow creates a row from the given values.
func NewRow(values ...interface{}) Row {
	row := make(Row, len(values))
	copy(row, values)
	return row
}

// Copy returns a copy of the row.
func (r Row) Copy() Row {
	return NewRow(r...)
}

// Append returns a new row with the values of r2 appended.
func (r Row) Append(r2 Row) Row {
	row := make(Row, 0, len(r)+len(r2))
	row = append(row, r...)
	row = append(row, r2...)
	return row
}

// RowIter is an iterator that produces rows.
type RowIter interface {
	// Next retrieves the next row. It will return io.EOF if it's the last
	// row. After retrieving the last row, Close will be automatically closed.
	Next() (Row, error)
	// Close the iterator.
	Close() error
}

// RowIterToRows collects all the rows of an iterator, closing it.
func RowIterToRows(i RowIter) ([]Row, error) {
	var rows []Row
	for {
		row, err := i.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = i.Close()
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, i.Close()
}

// RowsToRowIter creates an iterator over the given rows.
func RowsToRowIter(rows ...Row) RowIter {
	return &sliceRowIter{rows: rows}
}

type sliceRowIter struct {
	rows []Row
	idx  int
}

func (i *sliceRowIter) Next() (Row, error) {
	if i.idx >= len(i.rows) {
		return nil, io.EOF
	}
	r := i.rows[i.idx]
	i.idx++
	return r.Copy(), nil
}

func (i *sliceRowIter) Close() error {
	i.rows = nil
	return nil
}

// Table is a materialized tabular result, the terminal value produced by
// executing a lowered query.
type Table struct {
	// Columns are the output column names, in order.
	Columns []string
	// Rows are the result rows.
	Rows []Row
}
