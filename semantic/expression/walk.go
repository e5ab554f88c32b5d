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

import "github.com/dolthub/go-semantic-layer/semantic"

// Inspect traverses the expression tree in depth-first order. If f returns
// false for an expression, its children are not visited.
func Inspect(e semantic.Expression, f func(semantic.Expression) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, child := range e.Children() {
		Inspect(child, f)
	}
}

// TransformUp applies f to the expression tree bottom-up, children first,
// returning a new tree.
func TransformUp(
	e semantic.Expression,
	f func(semantic.Expression) (semantic.Expression, error),
) (semantic.Expression, error) {
	children := e.Children()
	if len(children) > 0 {
		newChildren := make([]semantic.Expression, len(children))
		for i, child := range children {
			nc, err := TransformUp(child, f)
			if err != nil {
				return nil, err
			}
			newChildren[i] = nc
		}

		var err error
		e, err = e.WithChildren(newChildren...)
		if err != nil {
			return nil, err
		}
	}

	return f(e)
}

// Columns returns the names of all unbound columns referenced by the
// expression, in visit order, without duplicates.
func Columns(e semantic.Expression) []string {
	var names []string
	seen := make(map[string]struct{})
	Inspect(e, func(e semantic.Expression) bool {
		if c, ok := e.(*Column); ok {
			if _, ok := seen[c.Name()]; !ok {
				seen[c.Name()] = struct{}{}
				names = append(names, c.Name())
			}
		}
		return true
	})
	return names
}
