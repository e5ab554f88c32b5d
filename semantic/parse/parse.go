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

// Package parse turns SQL-ish filter strings into expression trees. Column
// references stay unbound; the caller resolves them against its field map.
package parse

import (
	"strconv"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-vitess.v1/vt/sqlparser"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/expression"
)

var (
	// ErrInvalidFilter is returned when a filter string cannot be parsed.
	ErrInvalidFilter = errors.NewKind("invalid filter %q: %s")
	// ErrUnsupportedSyntax is returned for SQL constructs filters don't
	// support.
	ErrUnsupportedSyntax = errors.NewKind("unsupported filter syntax: %s")
)

// ParseFilter parses a boolean filter expression such as
// "status = 'active' AND amount > 100".
func ParseFilter(s string) (semantic.Expression, error) {
	stmt, err := sqlparser.Parse("SELECT 1 FROM dual WHERE " + s)
	if err != nil {
		return nil, ErrInvalidFilter.New(s, err)
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok || sel.Where == nil {
		return nil, ErrInvalidFilter.New(s, "not a boolean expression")
	}

	return exprToExpression(sel.Where.Expr)
}

func exprToExpression(e sqlparser.Expr) (semantic.Expression, error) {
	switch v := e.(type) {
	case *sqlparser.ParenExpr:
		return exprToExpression(v.Expr)
	case *sqlparser.AndExpr:
		left, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := exprToExpression(v.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewAnd(left, right), nil
	case *sqlparser.OrExpr:
		left, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := exprToExpression(v.Right)
		if err != nil {
			return nil, err
		}
		return expression.NewOr(left, right), nil
	case *sqlparser.NotExpr:
		child, err := exprToExpression(v.Expr)
		if err != nil {
			return nil, err
		}
		return expression.NewNot(child), nil
	case *sqlparser.ComparisonExpr:
		return comparisonToExpression(v)
	case *sqlparser.IsExpr:
		return isToExpression(v)
	case *sqlparser.ColName:
		return colToColumn(v), nil
	case *sqlparser.SQLVal:
		return valToLiteral(v)
	case sqlparser.BoolVal:
		return expression.NewLiteral(bool(v), semantic.Boolean), nil
	case *sqlparser.NullVal:
		return expression.NewLiteral(nil, semantic.Unknown), nil
	case sqlparser.ValTuple:
		exprs := make([]semantic.Expression, len(v))
		for i, el := range v {
			expr, err := exprToExpression(el)
			if err != nil {
				return nil, err
			}
			exprs[i] = expr
		}
		return expression.NewTuple(exprs...), nil
	default:
		return nil, ErrUnsupportedSyntax.New(sqlparser.String(e))
	}
}

func comparisonToExpression(c *sqlparser.ComparisonExpr) (semantic.Expression, error) {
	left, err := exprToExpression(c.Left)
	if err != nil {
		return nil, err
	}
	right, err := exprToExpression(c.Right)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	case sqlparser.EqualStr:
		return expression.NewEquals(left, right), nil
	case sqlparser.NotEqualStr:
		return expression.NewNotEquals(left, right), nil
	case sqlparser.LessThanStr:
		return expression.NewLessThan(left, right), nil
	case sqlparser.LessEqualStr:
		return expression.NewLessThanOrEqual(left, right), nil
	case sqlparser.GreaterThanStr:
		return expression.NewGreaterThan(left, right), nil
	case sqlparser.GreaterEqualStr:
		return expression.NewGreaterThanOrEqual(left, right), nil
	case sqlparser.InStr:
		return expression.NewIn(left, right), nil
	case sqlparser.NotInStr:
		return expression.NewNot(expression.NewIn(left, right)), nil
	default:
		return nil, ErrUnsupportedSyntax.New(c.Operator)
	}
}

func isToExpression(is *sqlparser.IsExpr) (semantic.Expression, error) {
	child, err := exprToExpression(is.Expr)
	if err != nil {
		return nil, err
	}

	switch is.Operator {
	case sqlparser.IsNullStr:
		return expression.NewIsNull(child), nil
	case sqlparser.IsNotNullStr:
		return expression.NewNot(expression.NewIsNull(child)), nil
	default:
		return nil, ErrUnsupportedSyntax.New(is.Operator)
	}
}

func colToColumn(c *sqlparser.ColName) *expression.Column {
	if !c.Qualifier.IsEmpty() {
		return expression.NewQualifiedColumn(
			strings.ToLower(c.Qualifier.Name.String()),
			c.Name.Lowered(),
		)
	}
	return expression.NewColumn(c.Name.Lowered())
}

func valToLiteral(v *sqlparser.SQLVal) (semantic.Expression, error) {
	switch v.Type {
	case sqlparser.StrVal:
		return expression.NewLiteral(string(v.Val), semantic.Text), nil
	case sqlparser.IntVal:
		i, err := strconv.ParseInt(string(v.Val), 10, 64)
		if err != nil {
			return nil, ErrInvalidFilter.New(string(v.Val), err)
		}
		return expression.NewLiteral(i, semantic.Int64), nil
	case sqlparser.FloatVal:
		f, err := strconv.ParseFloat(string(v.Val), 64)
		if err != nil {
			return nil, ErrInvalidFilter.New(string(v.Val), err)
		}
		return expression.NewLiteral(f, semantic.Float64), nil
	default:
		return nil, ErrUnsupportedSyntax.New(string(v.Val))
	}
}
