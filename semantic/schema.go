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

import "strings"

// Column is the definition of a relation column.
type Column struct {
	// Name is the name of the column.
	Name string
	// Type is the data type of the column.
	Type ColumnType
	// Source is the name of the table this column came from.
	Source string
	// Nullable is true if the column can contain NULL values.
	Nullable bool
}

// Equals checks whether two columns are equal.
func (c *Column) Equals(c2 *Column) bool {
	return c.Name == c2.Name &&
		c.Source == c2.Source &&
		c.Type == c2.Type &&
		c.Nullable == c2.Nullable
}

// Schema is the definition of a relation.
type Schema []*Column

// CheckRow checks that the row conforms to the schema.
func (s Schema) CheckRow(row Row) error {
	expected := len(s)
	got := len(row)
	if expected != got {
		return ErrUnexpectedRowLength.New(expected, got)
	}

	for idx, c := range s {
		if !c.Type.Check(row[idx]) {
			return ErrInvalidValue.New(row[idx], c.Type)
		}
	}

	return nil
}

// Contains returns whether the schema contains a column with the given name
// and source.
func (s Schema) Contains(column, source string) bool {
	return s.IndexOf(column, source) >= 0
}

// IndexOf returns the index of the column with the given name and source, or
// -1 if it's not present.
func (s Schema) IndexOf(column, source string) int {
	column = strings.ToLower(column)
	source = strings.ToLower(source)
	for i, col := range s {
		if strings.ToLower(col.Name) == column && strings.ToLower(col.Source) == source {
			return i
		}
	}
	return -1
}

// IndexOfName returns the index of the first column with the given name,
// regardless of source, or -1 if it's not present.
func (s Schema) IndexOfName(column string) int {
	column = strings.ToLower(column)
	for i, col := range s {
		if strings.ToLower(col.Name) == column {
			return i
		}
	}
	return -1
}

// Equals checks whether the given schema is equal to this one.
func (s Schema) Equals(s2 Schema) bool {
	if len(s) != len(s2) {
		return false
	}
	for i := range s {
		if !s[i].Equals(s2[i]) {
			return false
		}
	}
	return true
}

// ColumnNames returns the names of all columns, in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.Name
	}
	return names
}
