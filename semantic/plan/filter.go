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

// Filter skips rows that don't match the predicate.
type Filter struct {
	UnaryNode
	Predicate semantic.Expression
}

// NewFilter creates a new filter node.
func NewFilter(predicate semantic.Expression, child Node) *Filter {
	return &Filter{UnaryNode{child}, predicate}
}

var _ Node = (*Filter)(nil)

// WithChildren implements the Node interface.
func (f *Filter) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(f, len(children), 1)
	}
	return NewFilter(f.Predicate, children[0]), nil
}

func (f *Filter) String() string {
	p := semantic.NewTreePrinter()
	_ = p.WriteNode("Filter(%s)", f.Predicate)
	_ = p.WriteChildren(f.Child.String())
	return p.String()
}
