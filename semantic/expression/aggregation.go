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

package expression

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
	"github.com/spf13/cast"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// Sum aggregation returns the sum of all values in the selected column. It
// implements the Aggregation interface.
type Sum struct {
	UnaryExpression
}

// NewSum returns a new Sum node.
func NewSum(e semantic.Expression) *Sum {
	return &Sum{UnaryExpression{e}}
}

var _ semantic.Aggregation = (*Sum)(nil)

// Type implements the Expression interface.
func (*Sum) Type() semantic.ColumnType { return semantic.Float64 }

// IsNullable implements the Expression interface.
func (*Sum) IsNullable() bool { return true }

// Eval implements the Expression interface.
func (s *Sum) Eval(ctx *semantic.Context, buffer semantic.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (s *Sum) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSum(children[0]), nil
}

// NewBuffer implements the Aggregation interface.
func (s *Sum) NewBuffer() semantic.AggregationBuffer {
	return &sumBuffer{expr: s.Child}
}

func (s *Sum) String() string {
	return fmt.Sprintf("sum(%s)", s.Child)
}

type sumBuffer struct {
	expr semantic.Expression
	sum  float64
	seen bool
}

func (b *sumBuffer) Update(ctx *semantic.Context, row semantic.Row) error {
	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return semantic.ErrInvalidValue.New(v, semantic.Float64)
	}
	b.sum += f
	b.seen = true
	return nil
}

func (b *sumBuffer) Eval(ctx *semantic.Context) (interface{}, error) {
	if !b.seen {
		return nil, nil
	}
	return b.sum, nil
}

// Count aggregation returns the number of rows where the selected expression
// is not null. Count over Star counts every row.
type Count struct {
	UnaryExpression
}

// NewCount returns a new Count node.
func NewCount(e semantic.Expression) *Count {
	return &Count{UnaryExpression{e}}
}

var _ semantic.Aggregation = (*Count)(nil)

// Type implements the Expression interface.
func (*Count) Type() semantic.ColumnType { return semantic.Int64 }

// IsNullable implements the Expression interface.
func (*Count) IsNullable() bool { return false }

// Eval implements the Expression interface.
func (c *Count) Eval(ctx *semantic.Context, buffer semantic.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (c *Count) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return NewCount(children[0]), nil
}

// NewBuffer implements the Aggregation interface.
func (c *Count) NewBuffer() semantic.AggregationBuffer {
	_, star := c.Child.(*Star)
	return &countBuffer{expr: c.Child, star: star}
}

func (c *Count) String() string {
	return fmt.Sprintf("count(%s)", c.Child)
}

type countBuffer struct {
	expr  semantic.Expression
	star  bool
	count int64
}

func (b *countBuffer) Update(ctx *semantic.Context, row semantic.Row) error {
	if b.star {
		b.count++
		return nil
	}

	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v != nil {
		b.count++
	}
	return nil
}

func (b *countBuffer) Eval(ctx *semantic.Context) (interface{}, error) {
	return b.count, nil
}

// CountDistinct aggregation returns the number of distinct non-null values of
// the selected expression.
type CountDistinct struct {
	UnaryExpression
}

// NewCountDistinct returns a new CountDistinct node.
func NewCountDistinct(e semantic.Expression) *CountDistinct {
	return &CountDistinct{UnaryExpression{e}}
}

var _ semantic.Aggregation = (*CountDistinct)(nil)

// Type implements the Expression interface.
func (*CountDistinct) Type() semantic.ColumnType { return semantic.Int64 }

// IsNullable implements the Expression interface.
func (*CountDistinct) IsNullable() bool { return false }

// Eval implements the Expression interface.
func (c *CountDistinct) Eval(ctx *semantic.Context, buffer semantic.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (c *CountDistinct) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return NewCountDistinct(children[0]), nil
}

// NewBuffer implements the Aggregation interface.
func (c *CountDistinct) NewBuffer() semantic.AggregationBuffer {
	return &countDistinctBuffer{expr: c.Child, seen: make(map[uint64]struct{})}
}

func (c *CountDistinct) String() string {
	return fmt.Sprintf("count(distinct %s)", c.Child)
}

type countDistinctBuffer struct {
	expr semantic.Expression
	seen map[uint64]struct{}
}

func (b *countDistinctBuffer) Update(ctx *semantic.Context, row semantic.Row) error {
	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	hash, err := hashstructure.Hash(v, nil)
	if err != nil {
		return err
	}
	b.seen[hash] = struct{}{}
	return nil
}

func (b *countDistinctBuffer) Eval(ctx *semantic.Context) (interface{}, error) {
	return int64(len(b.seen)), nil
}

// Avg node to calculate the average from numeric column values.
type Avg struct {
	UnaryExpression
}

// NewAvg creates a new Avg node.
func NewAvg(e semantic.Expression) *Avg {
	return &Avg{UnaryExpression{e}}
}

var _ semantic.Aggregation = (*Avg)(nil)

// Type implements the Expression interface.
func (*Avg) Type() semantic.ColumnType { return semantic.Float64 }

// IsNullable implements the Expression interface.
func (*Avg) IsNullable() bool { return true }

// Eval implements the Expression interface.
func (a *Avg) Eval(ctx *semantic.Context, buffer semantic.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (a *Avg) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return NewAvg(children[0]), nil
}

// NewBuffer implements the Aggregation interface.
func (a *Avg) NewBuffer() semantic.AggregationBuffer {
	return &avgBuffer{expr: a.Child}
}

func (a *Avg) String() string {
	return fmt.Sprintf("avg(%s)", a.Child)
}

type avgBuffer struct {
	expr  semantic.Expression
	sum   float64
	count int64
}

func (b *avgBuffer) Update(ctx *semantic.Context, row semantic.Row) error {
	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return semantic.ErrInvalidValue.New(v, semantic.Float64)
	}
	b.sum += f
	b.count++
	return nil
}

func (b *avgBuffer) Eval(ctx *semantic.Context) (interface{}, error) {
	if b.count == 0 {
		return nil, nil
	}
	return b.sum / float64(b.count), nil
}

// Min aggregation returns the smallest value of the selected column.
type Min struct {
	UnaryExpression
}

// NewMin creates a new Min node.
func NewMin(e semantic.Expression) *Min {
	return &Min{UnaryExpression{e}}
}

var _ semantic.Aggregation = (*Min)(nil)

// Type implements the Expression interface.
func (m *Min) Type() semantic.ColumnType { return m.Child.Type() }

// IsNullable implements the Expression interface.
func (*Min) IsNullable() bool { return true }

// Eval implements the Expression interface.
func (m *Min) Eval(ctx *semantic.Context, buffer semantic.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (m *Min) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMin(children[0]), nil
}

// NewBuffer implements the Aggregation interface.
func (m *Min) NewBuffer() semantic.AggregationBuffer {
	return &extremumBuffer{expr: m.Child, min: true}
}

func (m *Min) String() string {
	return fmt.Sprintf("min(%s)", m.Child)
}

// Max aggregation returns the greatest value of the selected column.
type Max struct {
	UnaryExpression
}

// NewMax returns a new Max node.
func NewMax(e semantic.Expression) *Max {
	return &Max{UnaryExpression{e}}
}

var _ semantic.Aggregation = (*Max)(nil)

// Type implements the Expression interface.
func (m *Max) Type() semantic.ColumnType { return m.Child.Type() }

// IsNullable implements the Expression interface.
func (*Max) IsNullable() bool { return true }

// Eval implements the Expression interface.
func (m *Max) Eval(ctx *semantic.Context, buffer semantic.Row) (interface{}, error) {
	return buffer[0], nil
}

// WithChildren implements the Expression interface.
func (m *Max) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMax(children[0]), nil
}

// NewBuffer implements the Aggregation interface.
func (m *Max) NewBuffer() semantic.AggregationBuffer {
	return &extremumBuffer{expr: m.Child}
}

func (m *Max) String() string {
	return fmt.Sprintf("max(%s)", m.Child)
}

type extremumBuffer struct {
	expr semantic.Expression
	min  bool
	best interface{}
}

func (b *extremumBuffer) Update(ctx *semantic.Context, row semantic.Row) error {
	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	if b.best == nil {
		b.best = v
		return nil
	}

	cmp, err := semantic.Compare(v, b.best)
	if err != nil {
		return err
	}
	if (b.min && cmp < 0) || (!b.min && cmp > 0) {
		b.best = v
	}
	return nil
}

func (b *extremumBuffer) Eval(ctx *semantic.Context) (interface{}, error) {
	return b.best, nil
}
