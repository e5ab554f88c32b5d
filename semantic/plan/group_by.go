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

// GroupKey is a dimension reference used as a grouping key, optionally
// truncated to a time grain.
type GroupKey struct {
	Field string
	Grain semantic.Grain
}

func (k GroupKey) String() string {
	if k.Grain == semantic.GrainNone {
		return k.Field
	}
	return fmt.Sprintf("%s@%s", k.Field, k.Grain)
}

// GroupBy declares the grain of the following aggregation.
type GroupBy struct {
	UnaryNode
	Keys []GroupKey
}

// NewGroupBy creates a new GroupBy node.
func NewGroupBy(keys []GroupKey, child Node) *GroupBy {
	return &GroupBy{UnaryNode{child}, keys}
}

var _ Node = (*GroupBy)(nil)

// WithChildren implements the Node interface.
func (g *GroupBy) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	return NewGroupBy(g.Keys, children[0]), nil
}

func (g *GroupBy) String() string {
	keys := make([]string, len(g.Keys))
	for i, k := range g.Keys {
		keys[i] = k.String()
	}

	p := semantic.NewTreePrinter()
	_ = p.WriteNode("GroupBy(%s)", strings.Join(keys, ", "))
	_ = p.WriteChildren(g.Child.String())
	return p.String()
}
