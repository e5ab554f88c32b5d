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

// Package exec lowers analyzed plans into executable row iterators. Every
// field reference is bound to a row position here; unresolved references
// fail at lowering time, never during iteration.
package exec

import (
	"fmt"
	"io"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// Node is an executable query node with a fixed output schema.
type Node interface {
	fmt.Stringer
	// Schema of the rows the node produces.
	Schema() semantic.Schema
	// RowIter produces the node's rows.
	RowIter(ctx *semantic.Context) (semantic.RowIter, error)
	// Children nodes.
	Children() []Node
}

// Scan reads rows from a semantic table's backing relation.
type Scan struct {
	table    *semantic.SemanticTable
	relation semantic.ExternalRelation
	schema   semantic.Schema
}

// NewScan creates a scan over the full relation of the table.
func NewScan(table *semantic.SemanticTable) (*Scan, error) {
	return newScan(table, table.Relation())
}

// NewProjectedScan creates a scan restricted to the given relation columns.
// The relation must support projection.
func NewProjectedScan(table *semantic.SemanticTable, columns []string) (*Scan, error) {
	projected, ok := table.Relation().(semantic.ProjectedRelation)
	if !ok {
		return newScan(table, table.Relation())
	}

	relation, err := projected.WithColumns(columns)
	if err != nil {
		return nil, err
	}
	return newScan(table, relation)
}

func newScan(table *semantic.SemanticTable, relation semantic.ExternalRelation) (*Scan, error) {
	source := relation.Schema()
	schema := make(semantic.Schema, len(source))
	for i, col := range source {
		c := *col
		c.Source = table.Name()
		schema[i] = &c
	}
	return &Scan{table: table, relation: relation, schema: schema}, nil
}

// Schema implements the Node interface.
func (s *Scan) Schema() semantic.Schema { return s.schema }

// Children implements the Node interface.
func (*Scan) Children() []Node { return nil }

// RowIter implements the Node interface.
func (s *Scan) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	span, ctx := ctx.Span("exec.Scan", opentracing.Tag{Key: "table", Value: s.table.Name()})
	iter, err := s.relation.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return semantic.NewSpanIter(span, iter), nil
}

func (s *Scan) String() string {
	return "Scan(" + s.table.Name() + ")"
}

// Filter evaluates a bound predicate against each child row.
type Filter struct {
	child     Node
	predicate semantic.Expression
}

// NewFilter creates a new filter node.
func NewFilter(predicate semantic.Expression, child Node) *Filter {
	return &Filter{child: child, predicate: predicate}
}

// Schema implements the Node interface.
func (f *Filter) Schema() semantic.Schema { return f.child.Schema() }

// Children implements the Node interface.
func (f *Filter) Children() []Node { return []Node{f.child} }

// RowIter implements the Node interface.
func (f *Filter) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	span, ctx := ctx.Span("exec.Filter")
	iter, err := f.child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return semantic.NewSpanIter(span, &filterIter{ctx, f.predicate, iter}), nil
}

func (f *Filter) String() string {
	p := semantic.NewTreePrinter()
	_ = p.WriteNode("Filter(%s)", f.predicate)
	_ = p.WriteChildren(f.child.String())
	return p.String()
}

type filterIter struct {
	ctx       *semantic.Context
	predicate semantic.Expression
	child     semantic.RowIter
}

func (i *filterIter) Next() (semantic.Row, error) {
	for {
		row, err := i.child.Next()
		if err != nil {
			return nil, err
		}

		ok, err := i.predicate.Eval(i.ctx, row)
		if err != nil {
			return nil, err
		}
		if ok == true {
			return row, nil
		}
	}
}

func (i *filterIter) Close() error { return i.child.Close() }

// Limit yields at most a fixed number of rows after an optional offset.
type Limit struct {
	child  Node
	limit  int64
	offset int64
}

// NewLimit creates a new limit node.
func NewLimit(limit, offset int64, child Node) *Limit {
	return &Limit{child: child, limit: limit, offset: offset}
}

// Schema implements the Node interface.
func (l *Limit) Schema() semantic.Schema { return l.child.Schema() }

// Children implements the Node interface.
func (l *Limit) Children() []Node { return []Node{l.child} }

// RowIter implements the Node interface.
func (l *Limit) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	span, ctx := ctx.Span("exec.Limit")
	iter, err := l.child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return semantic.NewSpanIter(span, &limitIter{l: l, child: iter}), nil
}

func (l *Limit) String() string {
	p := semantic.NewTreePrinter()
	if l.offset > 0 {
		_ = p.WriteNode("Limit(%d, offset %d)", l.limit, l.offset)
	} else {
		_ = p.WriteNode("Limit(%d)", l.limit)
	}
	_ = p.WriteChildren(l.child.String())
	return p.String()
}

type limitIter struct {
	l       *Limit
	child   semantic.RowIter
	skipped int64
	yielded int64
}

func (i *limitIter) Next() (semantic.Row, error) {
	for i.skipped < i.l.offset {
		if _, err := i.child.Next(); err != nil {
			return nil, err
		}
		i.skipped++
	}

	if i.l.limit >= 0 && i.yielded >= i.l.limit {
		return nil, io.EOF
	}

	row, err := i.child.Next()
	if err != nil {
		return nil, err
	}
	i.yielded++
	return row, nil
}

func (i *limitIter) Close() error { return i.child.Close() }
