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
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// GroupBy aggregates child rows by the given key expressions. All rows are
// consumed before the first group is emitted; groups come out in first-seen
// order. With no keys the whole input forms a single group.
type GroupBy struct {
	child  Node
	keys   []semantic.Expression
	aggs   []semantic.Aggregation
	schema semantic.Schema
}

// NewGroupBy creates a new GroupBy node. The schema must list one column per
// key followed by one per aggregation.
func NewGroupBy(keys []semantic.Expression, aggs []semantic.Aggregation, schema semantic.Schema, child Node) *GroupBy {
	return &GroupBy{child: child, keys: keys, aggs: aggs, schema: schema}
}

// Schema implements the Node interface.
func (g *GroupBy) Schema() semantic.Schema { return g.schema }

// Children implements the Node interface.
func (g *GroupBy) Children() []Node { return []Node{g.child} }

// RowIter implements the Node interface.
func (g *GroupBy) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	span, ctx := ctx.Span("exec.GroupBy")
	iter, err := g.child.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return semantic.NewSpanIter(span, &groupByIter{ctx: ctx, g: g, child: iter}), nil
}

func (g *GroupBy) String() string {
	keys := make([]string, len(g.keys))
	for i, k := range g.keys {
		keys[i] = k.String()
	}
	aggs := make([]string, len(g.aggs))
	for i, a := range g.aggs {
		aggs[i] = a.String()
	}

	p := semantic.NewTreePrinter()
	_ = p.WriteNode("GroupBy(keys: [%s], aggs: [%s])", strings.Join(keys, ", "), strings.Join(aggs, ", "))
	_ = p.WriteChildren(g.child.String())
	return p.String()
}

type group struct {
	keyVals semantic.Row
	buffers []semantic.AggregationBuffer
}

type groupByIter struct {
	ctx   *semantic.Context
	g     *GroupBy
	child semantic.RowIter

	done   bool
	order  []uint64
	groups map[uint64]*group
	pos    int
}

func (i *groupByIter) Next() (semantic.Row, error) {
	if !i.done {
		if err := i.consume(); err != nil {
			return nil, err
		}
		i.done = true
	}

	if i.pos >= len(i.order) {
		return nil, io.EOF
	}

	grp := i.groups[i.order[i.pos]]
	i.pos++

	row := make(semantic.Row, 0, len(grp.keyVals)+len(grp.buffers))
	row = append(row, grp.keyVals...)
	for _, buffer := range grp.buffers {
		v, err := buffer.Eval(i.ctx)
		if err != nil {
			return nil, err
		}
		row = append(row, v)
	}
	return row, nil
}

func (i *groupByIter) consume() error {
	i.groups = make(map[uint64]*group)

	for {
		row, err := i.child.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		keyVals, err := evalKeys(i.ctx, i.g.keys, row)
		if err != nil {
			return err
		}

		key := groupingKey(keyVals)
		grp, ok := i.groups[key]
		if !ok {
			grp = &group{
				keyVals: keyVals,
				buffers: make([]semantic.AggregationBuffer, len(i.g.aggs)),
			}
			for j, agg := range i.g.aggs {
				grp.buffers[j] = agg.NewBuffer()
			}
			i.groups[key] = grp
			i.order = append(i.order, key)
		}

		for _, buffer := range grp.buffers {
			if err := buffer.Update(i.ctx, row); err != nil {
				return err
			}
		}
	}

	// A keyless aggregation over an empty input still yields one row.
	if len(i.g.keys) == 0 && len(i.order) == 0 {
		grp := &group{buffers: make([]semantic.AggregationBuffer, len(i.g.aggs))}
		for j, agg := range i.g.aggs {
			grp.buffers[j] = agg.NewBuffer()
		}
		i.groups[0] = grp
		i.order = append(i.order, 0)
	}

	return nil
}

func (i *groupByIter) Close() error {
	i.groups = nil
	i.order = nil
	return i.child.Close()
}

func evalKeys(ctx *semantic.Context, keys []semantic.Expression, row semantic.Row) (semantic.Row, error) {
	vals := make(semantic.Row, len(keys))
	for i, key := range keys {
		v, err := key.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func groupingKey(vals semantic.Row) uint64 {
	hash := xxhash.New()
	for _, v := range vals {
		fmt.Fprintf(hash, "%#v,", v)
	}
	return hash.Sum64()
}
