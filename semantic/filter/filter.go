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

// Package filter defines the filter forms a query accepts and compiles them
// into predicate expressions over resolved dimensions.
package filter

import (
	"fmt"
	"strings"
	"time"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/dolthub/go-semantic-layer/semantic"
)

var (
	// ErrUnknownOperator is returned for operators no filter form supports.
	ErrUnknownOperator = errors.NewKind("unknown filter operator %q")
	// ErrBadCondition is returned when a condition is malformed, for
	// example an IN without values.
	ErrBadCondition = errors.NewKind("bad filter condition on %q: %s")
)

// Filter is a predicate over the dimensions of a query, in one of several
// interchangeable forms. Every form compiles down to an expression tree.
type Filter interface {
	fmt.Stringer
	isFilter()
}

// Canonical comparison operators. Common aliases are accepted and normalized
// by ParseOperator.
const (
	OpEquals       = "="
	OpNotEquals    = "!="
	OpLessThan     = "<"
	OpLessEqual    = "<="
	OpGreaterThan  = ">"
	OpGreaterEqual = ">="
	OpIn           = "in"
	OpNotIn        = "not in"
	OpIsNull       = "is null"
	OpIsNotNull    = "is not null"
)

var operatorAliases = map[string]string{
	"=":           OpEquals,
	"==":          OpEquals,
	"eq":          OpEquals,
	"equals":      OpEquals,
	"!=":          OpNotEquals,
	"<>":          OpNotEquals,
	"neq":         OpNotEquals,
	"<":           OpLessThan,
	"lt":          OpLessThan,
	"<=":          OpLessEqual,
	"lte":         OpLessEqual,
	">":           OpGreaterThan,
	"gt":          OpGreaterThan,
	">=":          OpGreaterEqual,
	"gte":         OpGreaterEqual,
	"in":          OpIn,
	"not in":      OpNotIn,
	"not_in":      OpNotIn,
	"is null":     OpIsNull,
	"is_null":     OpIsNull,
	"is not null": OpIsNotNull,
	"is_not_null": OpIsNotNull,
}

// ParseOperator normalizes an operator or one of its aliases to its canonical
// form.
func ParseOperator(op string) (string, error) {
	canonical, ok := operatorAliases[strings.ToLower(strings.TrimSpace(op))]
	if !ok {
		return "", ErrUnknownOperator.New(op)
	}
	return canonical, nil
}

// Condition compares one dimension against a value. For OpIn and OpNotIn the
// Values slice is used instead of Value; for OpIsNull and OpIsNotNull both
// are ignored.
type Condition struct {
	Field    string
	Operator string
	Value    interface{}
	Values   []interface{}
}

func (Condition) isFilter() {}

func (c Condition) String() string {
	switch c.Operator {
	case OpIn, OpNotIn:
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = fmt.Sprint(v)
		}
		return fmt.Sprintf("%s %s (%s)", c.Field, c.Operator, strings.Join(parts, ", "))
	case OpIsNull, OpIsNotNull:
		return fmt.Sprintf("%s %s", c.Field, c.Operator)
	default:
		return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
	}
}

// Boolean connectors for Compound filters.
const (
	ConnectorAnd = "and"
	ConnectorOr  = "or"
)

// Compound combines several filters with a single boolean connector.
type Compound struct {
	Operator   string
	Conditions []Filter
}

// And combines filters so all of them must hold.
func And(filters ...Filter) Compound {
	return Compound{Operator: ConnectorAnd, Conditions: filters}
}

// Or combines filters so at least one of them must hold.
func Or(filters ...Filter) Compound {
	return Compound{Operator: ConnectorOr, Conditions: filters}
}

func (Compound) isFilter() {}

func (c Compound) String() string {
	parts := make([]string, len(c.Conditions))
	for i, f := range c.Conditions {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, " "+c.Operator+" ") + ")"
}

// Expr is a filter written as a SQL-ish boolean expression string, for
// example "status = 'active' AND amount > 100".
type Expr string

func (Expr) isFilter() {}

func (e Expr) String() string { return string(e) }

// Predicate is a filter given directly as an expression tree. Column
// references in the tree are resolved as dimension names.
type Predicate struct {
	Expr semantic.Expression
}

func (Predicate) isFilter() {}

func (p Predicate) String() string { return p.Expr.String() }

// TimeRange restricts a time dimension to the half-open interval
// [Start, End).
type TimeRange struct {
	Field string
	Start time.Time
	End   time.Time
}

func (TimeRange) isFilter() {}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s in [%s, %s)",
		r.Field,
		r.Start.Format(time.RFC3339),
		r.End.Format(time.RFC3339),
	)
}
