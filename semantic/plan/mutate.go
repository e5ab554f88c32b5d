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

// MutateColumn is a derived column appended by a Mutate node. Its expression
// is built late, against whatever fields the child node exposes.
type MutateColumn struct {
	Name string
	Fn   semantic.CalcFunc
}

// Mutate appends derived columns computed from the child's columns. It is the
// post-aggregation counterpart of a calculated measure.
type Mutate struct {
	UnaryNode
	Cols []MutateColumn
}

// NewMutate creates a new Mutate node.
func NewMutate(cols []MutateColumn, child Node) *Mutate {
	return &Mutate{UnaryNode{child}, cols}
}

var _ Node = (*Mutate)(nil)

// WithChildren implements the Node interface.
func (m *Mutate) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMutate(m.Cols, children[0]), nil
}

func (m *Mutate) String() string {
	names := make([]string, len(m.Cols))
	for i, c := range m.Cols {
		names[i] = c.Name
	}

	p := semantic.NewTreePrinter()
	_ = p.WriteNode("Mutate(%s)", strings.Join(names, ", "))
	_ = p.WriteChildren(m.Child.String())
	return p.String()
}
