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
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// Source is a leaf node reading rows from a semantic table's relation. When
// Columns is non-nil only those relation columns are read, in that order.
type Source struct {
	Table   *semantic.SemanticTable
	Columns []string
}

// NewSource creates a source node for the given table.
func NewSource(table *semantic.SemanticTable) *Source {
	return &Source{Table: table}
}

var _ Node = (*Source)(nil)

// Name returns the semantic table name.
func (s *Source) Name() string { return s.Table.Name() }

// Children implements the Node interface.
func (*Source) Children() []Node { return nil }

// WithChildren implements the Node interface.
func (s *Source) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, semantic.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

// WithColumns returns a copy of the source restricted to the given relation
// columns.
func (s *Source) WithColumns(columns []string) *Source {
	return &Source{Table: s.Table, Columns: columns}
}

func (s *Source) String() string {
	if s.Columns == nil {
		return "Source(" + s.Table.Name() + ")"
	}
	return "Source(" + s.Table.Name() + ": " + strings.Join(s.Columns, ", ") + ")"
}
