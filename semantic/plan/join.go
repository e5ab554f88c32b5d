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

// Cardinality declares how many right-side rows may match one left-side row.
// The join planner uses it to decide whether measures must be pre-aggregated
// before the join to stay correct.
type Cardinality byte

const (
	// CardinalityUnspecified means the author declared nothing. Aggregating
	// over such a join is rejected rather than silently fanned out.
	CardinalityUnspecified Cardinality = iota
	// CardinalityOne means at most one right row matches each left row.
	CardinalityOne
	// CardinalityMany means several right rows may match each left row.
	CardinalityMany
	// CardinalityCross is a cartesian product with no join keys.
	CardinalityCross
)

func (c Cardinality) String() string {
	switch c {
	case CardinalityOne:
		return "one"
	case CardinalityMany:
		return "many"
	case CardinalityCross:
		return "cross"
	default:
		return "unspecified"
	}
}

// JoinKind is the type of a join.
type JoinKind byte

const (
	// JoinInner keeps only matching row pairs.
	JoinInner JoinKind = iota
	// JoinLeft keeps left rows without a match, padding the right side
	// with nulls.
	JoinLeft
)

func (k JoinKind) String() string {
	if k == JoinLeft {
		return "LeftJoin"
	}
	return "InnerJoin"
}

// JoinKey is an equality between a left-side field and a right-side field.
type JoinKey struct {
	Left  string
	Right string
}

func (k JoinKey) String() string {
	return fmt.Sprintf("%s = %s", k.Left, k.Right)
}

// Join combines two plans on equality of the given keys.
type Join struct {
	BinaryNode
	On          []JoinKey
	Cardinality Cardinality
	Kind        JoinKind
}

// NewJoin creates a new join node.
func NewJoin(left, right Node, on []JoinKey, cardinality Cardinality, kind JoinKind) *Join {
	return &Join{BinaryNode{left, right}, on, cardinality, kind}
}

var _ Node = (*Join)(nil)

// WithChildren implements the Node interface.
func (j *Join) WithChildren(children ...Node) (Node, error) {
	if len(children) != 2 {
		return nil, semantic.ErrInvalidChildrenNumber.New(j, len(children), 2)
	}
	return NewJoin(children[0], children[1], j.On, j.Cardinality, j.Kind), nil
}

func (j *Join) String() string {
	keys := make([]string, len(j.On))
	for i, k := range j.On {
		keys[i] = k.String()
	}

	p := semantic.NewTreePrinter()
	_ = p.WriteNode("%s[%s](%s)", j.Kind, j.Cardinality, strings.Join(keys, ", "))
	_ = p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}
