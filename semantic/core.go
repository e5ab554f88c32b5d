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

package semantic

import "fmt"

// Nameable is anything with a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Tableable is anything that belongs to a table.
type Tableable interface {
	// Table returns the table name.
	Table() string
}

// Expression is a row-level expression over a relation. Expressions are
// immutable trees: transforms return new values.
type Expression interface {
	fmt.Stringer
	// Resolved returns whether the expression and all its children are bound
	// to concrete row positions.
	Resolved() bool
	// Type returns the type of the value the expression produces.
	Type() ColumnType
	// IsNullable returns whether the expression can produce NULL.
	IsNullable() bool
	// Eval evaluates the expression against the given row.
	Eval(ctx *Context, row Row) (interface{}, error)
	// Children returns the child expressions.
	Children() []Expression
	// WithChildren returns a copy of the expression with the given children.
	WithChildren(children ...Expression) (Expression, error)
}

// Aggregation is an expression that aggregates rows into a single value
// through a buffer.
type Aggregation interface {
	Expression
	// NewBuffer returns a fresh buffer for one aggregation group.
	NewBuffer() AggregationBuffer
}

// AggregationBuffer accumulates rows for one group of an aggregation.
type AggregationBuffer interface {
	// Update feeds one row into the buffer.
	Update(ctx *Context, row Row) error
	// Eval returns the aggregated value accumulated so far.
	Eval(ctx *Context) (interface{}, error)
}

// Resolver resolves dimension and measure names late, at lowering time. It is
// handed to calculated measure and mutate functions so that a measure defined
// before a join can still pick up the qualified name it gets after joining.
type Resolver interface {
	// Dimension returns a bound expression for the named dimension.
	Dimension(name string) (Expression, error)
	// Measure returns a bound expression for the named measure.
	Measure(name string) (Expression, error)
}

// CalcFunc produces an expression from late-resolved fields. It is the
// defining function of a calculated measure or a mutate column.
type CalcFunc func(r Resolver) (Expression, error)
