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

// Package plan defines the logical query nodes a semantic query is made of.
// Plan nodes are immutable values referencing fields by name; they carry no
// row positions and no execution state. The analyzer rewrites plans and the
// exec package lowers them into executable iterators.
package plan

import "fmt"

// Node is a node of the logical query plan.
type Node interface {
	fmt.Stringer
	// Children nodes.
	Children() []Node
	// WithChildren returns a copy of the node with children replaced.
	WithChildren(children ...Node) (Node, error)
}

// UnaryNode is a node that has only one child.
type UnaryNode struct {
	Child Node
}

// Children implements the Node interface.
func (n *UnaryNode) Children() []Node {
	return []Node{n.Child}
}

// BinaryNode is a node with two children.
type BinaryNode struct {
	Left  Node
	Right Node
}

// Children implements the Node interface.
func (n *BinaryNode) Children() []Node {
	return []Node{n.Left, n.Right}
}
