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
	"github.com/dolthub/go-semantic-layer/semantic"
)

// Limit passes through at most Limit rows, after skipping Offset rows.
// A negative Limit means no bound.
type Limit struct {
	UnaryNode
	Limit  int64
	Offset int64
}

// NewLimit creates a new Limit node.
func NewLimit(limit, offset int64, child Node) *Limit {
	return &Limit{UnaryNode{child}, limit, offset}
}

var _ Node = (*Limit)(nil)

// WithChildren implements the Node interface.
func (l *Limit) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLimit(l.Limit, l.Offset, children[0]), nil
}

func (l *Limit) String() string {
	p := semantic.NewTreePrinter()
	if l.Offset > 0 {
		_ = p.WriteNode("Limit(%d, offset %d)", l.Limit, l.Offset)
	} else {
		_ = p.WriteNode("Limit(%d)", l.Limit)
	}
	_ = p.WriteChildren(l.Child.String())
	return p.String()
}
