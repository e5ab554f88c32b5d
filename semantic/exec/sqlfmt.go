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
	"strings"

	"github.com/dolthub/go-semantic-layer/semantic/expression"
)

// toSQL renders an executable tree as nested SELECT statements.
func toSQL(n Node) string {
	switch n := n.(type) {
	case *Scan:
		cols := make([]string, len(n.schema))
		for i, col := range n.schema {
			cols[i] = col.Name
		}
		return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), n.table.Name())
	case *Filter:
		return fmt.Sprintf("SELECT * FROM (%s) AS t WHERE %s", toSQL(n.child), n.predicate)
	case *Join:
		kind := "INNER JOIN"
		if n.outer {
			kind = "LEFT JOIN"
		}
		conds := make([]string, len(n.conds))
		for i, c := range n.conds {
			conds[i] = fmt.Sprintf("l.%s = r.%s", c.Left, c.Right)
		}
		on := "TRUE"
		if len(conds) > 0 {
			on = strings.Join(conds, " AND ")
		}
		return fmt.Sprintf("SELECT * FROM (%s) AS l %s (%s) AS r ON %s",
			toSQL(n.left), kind, toSQL(n.right), on)
	case *GroupBy:
		selects := make([]string, 0, len(n.keys)+len(n.aggs))
		groups := make([]string, 0, len(n.keys))
		for i, key := range n.keys {
			selects = append(selects, fmt.Sprintf("%s AS %s", key, n.schema[i].Name))
			groups = append(groups, key.String())
		}
		for i, agg := range n.aggs {
			selects = append(selects, fmt.Sprintf("%s AS %s", agg, n.schema[len(n.keys)+i].Name))
		}
		if len(selects) == 0 {
			selects = append(selects, "*")
		}
		sql := fmt.Sprintf("SELECT %s FROM (%s) AS t", strings.Join(selects, ", "), toSQL(n.child))
		if len(groups) > 0 {
			sql += " GROUP BY " + strings.Join(groups, ", ")
		}
		return sql
	case *Project:
		selects := make([]string, len(n.projections))
		for i, e := range n.projections {
			if a, ok := e.(*expression.Alias); ok {
				e = a.Child
			}
			selects[i] = fmt.Sprintf("%s AS %s", e, n.schema[i].Name)
		}
		return fmt.Sprintf("SELECT %s FROM (%s) AS t", strings.Join(selects, ", "), toSQL(n.child))
	case *Sort:
		orders := make([]string, len(n.fields))
		for i, f := range n.fields {
			orders[i] = fmt.Sprintf("%s %s", f.Expr, f.Order)
		}
		return fmt.Sprintf("SELECT * FROM (%s) AS t ORDER BY %s", toSQL(n.child), strings.Join(orders, ", "))
	case *Limit:
		sql := fmt.Sprintf("SELECT * FROM (%s) AS t", toSQL(n.child))
		if n.limit >= 0 {
			sql += fmt.Sprintf(" LIMIT %d", n.limit)
		}
		if n.offset > 0 {
			sql += fmt.Sprintf(" OFFSET %d", n.offset)
		}
		return sql
	default:
		return fmt.Sprintf("/* %T */", n)
	}
}
