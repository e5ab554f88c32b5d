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

// Project keeps only the named columns of the child, in the given order.
type Project struct {
	UnaryNode
	Fields []string
}

// NewProject creates a new projection.
func NewProject(fields []string, child Node) *Project {
	return &Project{UnaryNode{child}, fields}
}

var _ Node = (*Project)(nil)

// WithChildren implements the Node interface.
func (p *Project) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}
	return NewProject(p.Fields, children[0]), nil
}

func (p *Project) String() string {
	tp := semantic.NewTreePrinter()
	_ = tp.WriteNode("Project(%s)", strings.Join(p.Fields, ", "))
	_ = tp.WriteChildren(p.Child.String())
	return tp.String()
}
