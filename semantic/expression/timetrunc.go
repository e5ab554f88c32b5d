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
	"time"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// TimeTrunc truncates a time value down to the given grain, like the SQL
// date_trunc function.
type TimeTrunc struct {
	UnaryExpression
	grain semantic.Grain
}

// NewTimeTrunc creates a new TimeTrunc expression.
func NewTimeTrunc(grain semantic.Grain, child semantic.Expression) *TimeTrunc {
	return &TimeTrunc{UnaryExpression{child}, grain}
}

var _ semantic.Expression = (*TimeTrunc)(nil)

// Grain returns the grain values are truncated to.
func (t *TimeTrunc) Grain() semantic.Grain { return t.grain }

// Type implements the Expression interface.
func (t *TimeTrunc) Type() semantic.ColumnType { return semantic.Timestamp }

// Eval implements the Expression interface.
func (t *TimeTrunc) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	v, err := t.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	when, ok := v.(time.Time)
	if !ok {
		converted, err := semantic.Timestamp.Convert(v)
		if err != nil {
			return nil, err
		}
		when = converted.(time.Time)
	}

	return t.grain.Truncate(when), nil
}

// WithChildren implements the Expression interface.
func (t *TimeTrunc) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 1 {
		return nil, semantic.ErrInvalidChildrenNumber.New(t, len(children), 1)
	}
	return NewTimeTrunc(t.grain, children[0]), nil
}

func (t *TimeTrunc) String() string {
	return fmt.Sprintf("date_trunc('%s', %s)", t.grain, t.Child)
}
