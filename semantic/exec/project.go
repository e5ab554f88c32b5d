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

package exec

import (
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// Project evaluates one expression per output column against each child row.
type Project struct {
	child       Node
	projections []semantic.Expression
	schema      semantic.Schema
}

// NewProject creates a new projection node.
func NewProject(projections []semantic.Expression, schema semantic.Schema, child Node) *Project {
	return &Project{child: child, projections: projections, schema: schema}
}

// Schema implements the Node interface.
func (p *Project) Schema() semantic.Schema { return p.schema }

// Children implements the Node interface.
func (p *Project) Children() []Node { return []Node{p.child} }

// RowIter implements the Node interface.
func (p *Project) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	span, ctx := ctx.Span("exec.Project")
	iter, err := p.child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return semantic.NewSpanIter(span, &projectIter{ctx, p.projections, iter}), nil
}

func (p *Project) String() string {
	projections := make([]string, len(p.projections))
	for i, e := range p.projections {
		projections[i] = e.String()
	}

	tp := semantic.NewTreePrinter()
	_ = tp.WriteNode("Project(%s)", strings.Join(projections, ", "))
	_ = tp.WriteChildren(p.child.String())
	return tp.String()
}

type projectIter struct {
	ctx         *semantic.Context
	projections []semantic.Expression
	child       semantic.RowIter
}

func (i *projectIter) Next() (semantic.Row, error) {
	row, err := i.child.Next()
	if err != nil {
		return nil, err
	}

	out := make(semantic.Row, len(i.projections))
	for j, e := range i.projections {
		out[j], err = e.Eval(i.ctx, row)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (i *projectIter) Close() error { return i.child.Close() }
