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

package plan

// TransformUp applies f to the plan bottom-up, children first, returning a
// new plan.
func TransformUp(n Node, f func(Node) (Node, error)) (Node, error) {
	children := n.Children()
	if len(children) > 0 {
		newChildren := make([]Node, len(children))
		for i, child := range children {
			nc, err := TransformUp(child, f)
			if err != nil {
				return nil, err
			}
			newChildren[i] = nc
		}

		var err error
		n, err = n.WithChildren(newChildren...)
		if err != nil {
			return nil, err
		}
	}

	return f(n)
}
