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

package plan

import (
	"fmt"
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// SortOrder is the order of a sort field.
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = iota
	// Descending order.
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// SortField is a field by which a query is sorted.
type SortField struct {
	Field string
	Order SortOrder
}

// Asc creates an ascending sort field.
func Asc(field string) SortField {
	return SortField{Field: field, Order: Ascending}
}

// Desc creates a descending sort field.
func Desc(field string) SortField {
	return SortField{Field: field, Order: Descending}
}

func (f SortField) String() string {
	return fmt.Sprintf("%s %s", f.Field, f.Order)
}

// Sort orders the child's rows by the given fields. Nulls sort first.
type Sort struct {
	UnaryNode
	Fields []SortField
}

// NewSort creates a new Sort node.
func NewSort(fields []SortField, child Node) *Sort {
	return &Sort{UnaryNode{child}, fields}
}

var _ Node = (*Sort)(nil)

// WithChildren implements the Node interface.
func (s *Sort) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSort(s.Fields, children[0]), nil
}

func (s *Sort) String() string {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.String()
	}

	p := semantic.NewTreePrinter()
	_ = p.WriteNode("Sort(%s)", strings.Join(fields, ", "))
	_ = p.WriteChildren(s.Child.String())
	return p.String()
}
