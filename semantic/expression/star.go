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
	"github.com/dolthub/go-semantic-layer/semantic"
)

// Star is the expression counting whole rows, as in count(*).
type Star struct{}

// NewStar returns a new Star expression.
func NewStar() *Star {
	return &Star{}
}

var _ semantic.Expression = (*Star)(nil)

// Resolved implements the Expression interface.
func (*Star) Resolved() bool { return true }

// Type implements the Expression interface.
func (*Star) Type() semantic.ColumnType { return semantic.Int64 }

// IsNullable implements the Expression interface.
func (*Star) IsNullable() bool { return false }

// Eval implements the Expression interface.
func (*Star) Eval(ctx *semantic.Context, row semantic.Row) (interface{}, error) {
	return int64(1), nil
}

// Children implements the Expression interface.
func (*Star) Children() []semantic.Expression { return nil }

// WithChildren implements the Expression interface.
func (s *Star) WithChildren(children ...semantic.Expression) (semantic.Expression, error) {
	if len(children) != 0 {
		return nil, semantic.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

func (*Star) String() string { return "*" }
