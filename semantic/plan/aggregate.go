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

// AggOp overrides how a measure is aggregated. The join planner uses explicit
// ops to compute partial aggregates below a join and to re-aggregate the
// partials above it.
type AggOp byte

const (
	// OpDefault aggregates the measure with its declared aggregation.
	OpDefault AggOp = iota
	// OpSum sums the referenced column.
	OpSum
	// OpCount counts non-null values of the referenced column.
	OpCount
	// OpMin takes the smallest value of the referenced column.
	OpMin
	// OpMax takes the greatest value of the referenced column.
	OpMax
)

func (o AggOp) String() string {
	switch o {
	case OpSum:
		return "sum"
	case OpCount:
		return "count"
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	default:
		return "default"
	}
}

// AggColumn is one output column of an Aggregate node: a measure (or, for
// explicit ops, any column of the child) aggregated under an output name.
type AggColumn struct {
	Name    string
	Measure string
	Op      AggOp
}

func (c AggColumn) String() string {
	if c.Op == OpDefault {
		if c.Name == c.Measure {
			return c.Measure
		}
		return fmt.Sprintf("%s as %s", c.Measure, c.Name)
	}
	return fmt.Sprintf("%s(%s) as %s", c.Op, c.Measure, c.Name)
}

// Aggregate evaluates measures at the grain declared by the GroupBy nodes
// beneath it.
type Aggregate struct {
	UnaryNode
	Aggs []AggColumn
}

// NewAggregate creates a new Aggregate node.
func NewAggregate(aggs []AggColumn, child Node) *Aggregate {
	return &Aggregate{UnaryNode{child}, aggs}
}

var _ Node = (*Aggregate)(nil)

// WithChildren implements the Node interface.
func (a *Aggregate) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return NewAggregate(a.Aggs, children[0]), nil
}

func (a *Aggregate) String() string {
	aggs := make([]string, len(a.Aggs))
	for i, c := range a.Aggs {
		aggs[i] = c.String()
	}

	p := semantic.NewTreePrinter()
	_ = p.WriteNode("Aggregate(%s)", strings.Join(aggs, ", "))
	_ = p.WriteChildren(a.Child.String())
	return p.String()
}
