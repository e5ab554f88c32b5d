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

package filter

import (
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
	"github.com/dolthub/go-semantic-layer/semantic/parse"
)

// Compile turns a filter into a predicate expression over the given field
// map. Dimension references are replaced with the owning table's dimension
// expression, scoped by table name so lowering can bind them. Literal values
// compared against Date or Timestamp dimensions are converted to time values
// at compile time.
func Compile(f Filter, fields *semantic.Fields) (semantic.Expression, error) {
	switch f := f.(type) {
	case Condition:
		return compileCondition(f, fields)
	case Compound:
		return compileCompound(f, fields)
	case Expr:
		parsed, err := parse.ParseFilter(string(f))
		if err != nil {
			return nil, err
		}
		resolved, err := resolveColumns(parsed, fields)
		if err != nil {
			return nil, err
		}
		return convertTimeLiterals(resolved, fields)
	case Predicate:
		resolved, err := resolveColumns(f.Expr, fields)
		if err != nil {
			return nil, err
		}
		return convertTimeLiterals(resolved, fields)
	case TimeRange:
		return compileTimeRange(f, fields)
	default:
		return nil, ErrBadCondition.New(f.String(), "unknown filter form")
	}
}

func compileCondition(c Condition, fields *semantic.Fields) (semantic.Expression, error) {
	op, err := ParseOperator(c.Operator)
	if err != nil {
		return nil, err
	}

	dim, err := fields.Dimension(c.Field)
	if err != nil {
		return nil, err
	}
	left := scopedExpr(dim)

	switch op {
	case OpIsNull:
		return expression.NewIsNull(left), nil
	case OpIsNotNull:
		return expression.NewNot(expression.NewIsNull(left)), nil
	case OpIn, OpNotIn:
		if len(c.Values) == 0 {
			return nil, ErrBadCondition.New(c.Field, "IN requires at least one value")
		}
		exprs := make([]semantic.Expression, len(c.Values))
		for i, v := range c.Values {
			lit, err := literalFor(v, dim)
			if err != nil {
				return nil, err
			}
			exprs[i] = lit
		}
		in := expression.NewIn(left, expression.NewTuple(exprs...))
		if op == OpNotIn {
			return expression.NewNot(in), nil
		}
		return in, nil
	}

	right, err := literalFor(c.Value, dim)
	if err != nil {
		return nil, err
	}

	switch op {
	case OpEquals:
		return expression.NewEquals(left, right), nil
	case OpNotEquals:
		return expression.NewNotEquals(left, right), nil
	case OpLessThan:
		return expression.NewLessThan(left, right), nil
	case OpLessEqual:
		return expression.NewLessThanOrEqual(left, right), nil
	case OpGreaterThan:
		return expression.NewGreaterThan(left, right), nil
	case OpGreaterEqual:
		return expression.NewGreaterThanOrEqual(left, right), nil
	}
	return nil, ErrUnknownOperator.New(op)
}

func compileCompound(c Compound, fields *semantic.Fields) (semantic.Expression, error) {
	if len(c.Conditions) == 0 {
		return nil, ErrBadCondition.New(c.Operator, "compound filter without conditions")
	}

	compiled := make([]semantic.Expression, len(c.Conditions))
	for i, f := range c.Conditions {
		e, err := Compile(f, fields)
		if err != nil {
			return nil, err
		}
		compiled[i] = e
	}

	switch c.Operator {
	case ConnectorAnd:
		return expression.JoinAnd(compiled...), nil
	case ConnectorOr:
		result := compiled[0]
		for _, e := range compiled[1:] {
			result = expression.NewOr(result, e)
		}
		return result, nil
	default:
		return nil, ErrUnknownOperator.New(c.Operator)
	}
}

func compileTimeRange(r TimeRange, fields *semantic.Fields) (semantic.Expression, error) {
	dim, err := fields.Dimension(r.Field)
	if err != nil {
		return nil, err
	}
	if !dim.Dimension.TimeDimension {
		return nil, semantic.ErrNotTimeDimension.New(r.Field)
	}

	left := scopedExpr(dim)
	return expression.NewAnd(
		expression.NewGreaterThanOrEqual(left, expression.NewLiteral(r.Start, semantic.Timestamp)),
		expression.NewLessThan(left, expression.NewLiteral(r.End, semantic.Timestamp)),
	), nil
}

// resolveColumns replaces unbound columns with the referenced dimension's
// expression, scoped by its owning table. Names that match no dimension may
// still refer to raw relation columns.
func resolveColumns(e semantic.Expression, fields *semantic.Fields) (semantic.Expression, error) {
	return expression.TransformUp(e, func(e semantic.Expression) (semantic.Expression, error) {
		col, ok := e.(*expression.Column)
		if !ok {
			return e, nil
		}

		name := col.Name()
		if col.Table() != "" {
			name = col.Table() + "." + name
		}

		dim, err := fields.Dimension(name)
		if err == nil {
			return scopedExpr(dim), nil
		}
		if table, column := fields.Column(name); table != nil {
			return expression.NewQualifiedColumn(table.Name(), column), nil
		}
		return nil, semantic.ErrUnknownField.New(name, strings.Join(fields.DimensionNames(), ", "))
	})
}

// convertTimeLiterals rewrites string literals compared against temporal
// columns into time values, the same conversion the structured filter forms
// get in literalFor.
func convertTimeLiterals(e semantic.Expression, fields *semantic.Fields) (semantic.Expression, error) {
	return expression.TransformUp(e, func(e semantic.Expression) (semantic.Expression, error) {
		switch e.(type) {
		case *expression.Equals, *expression.NotEquals,
			*expression.LessThan, *expression.LessThanOrEqual,
			*expression.GreaterThan, *expression.GreaterThanOrEqual:
		default:
			return e, nil
		}

		children := e.Children()
		left, right := children[0], children[1]

		if converted, ok, err := timeLiteral(left, right, fields); err != nil {
			return nil, err
		} else if ok {
			return e.WithChildren(left, converted)
		}
		if converted, ok, err := timeLiteral(right, left, fields); err != nil {
			return nil, err
		} else if ok {
			return e.WithChildren(converted, right)
		}
		return e, nil
	})
}

// timeLiteral converts lit to a time value when col is a temporal column and
// lit is a string literal. The bool return reports whether a conversion
// happened.
func timeLiteral(col, lit semantic.Expression, fields *semantic.Fields) (semantic.Expression, bool, error) {
	c, ok := col.(*expression.Column)
	if !ok {
		return nil, false, nil
	}
	t := fields.Table(c.Table())
	if t == nil {
		return nil, false, nil
	}
	target := expression.TypeOf(c, t.Relation().Schema())
	if !target.IsTime() {
		return nil, false, nil
	}

	l, ok := lit.(*expression.Literal)
	if !ok {
		return nil, false, nil
	}
	s, ok := l.Value().(string)
	if !ok {
		return nil, false, nil
	}

	converted, err := target.Convert(s)
	if err != nil {
		return nil, false, err
	}
	return expression.NewLiteral(converted, target), true, nil
}

// scopedExpr returns the dimension's expression with every column reference
// qualified by the owning table, so that lowering binds against the right
// relation after joins.
func scopedExpr(dim semantic.ResolvedDimension) semantic.Expression {
	scoped, err := expression.TransformUp(dim.Dimension.Expr, func(e semantic.Expression) (semantic.Expression, error) {
		if col, ok := e.(*expression.Column); ok && col.Table() == "" {
			return expression.NewQualifiedColumn(dim.Table.Name(), col.Name()), nil
		}
		return e, nil
	})
	if err != nil {
		return dim.Dimension.Expr
	}
	return scoped
}

// literalFor builds a literal for a raw value compared against a dimension,
// converting strings to time values when the dimension is temporal.
func literalFor(v interface{}, dim semantic.ResolvedDimension) (semantic.Expression, error) {
	typ := semantic.TypeOfValue(v)

	target := expression.TypeOf(dim.Dimension.Expr, dim.Table.Relation().Schema())
	if target == semantic.Date || target == semantic.Timestamp {
		if _, ok := v.(string); ok {
			converted, err := target.Convert(v)
			if err != nil {
				return nil, err
			}
			return expression.NewLiteral(converted, target), nil
		}
	}

	return expression.NewLiteral(v, typ), nil
}
