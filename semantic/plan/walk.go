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

// Inspect traverses the plan in depth-first order. If f returns false for a
// node, its children are not visited.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, child := range n.Children() {
		Inspect(child, f)
	}
}

// Sources returns every source node of the plan, leftmost first.
func Sources(n Node) []*Source {
	var sources []*Source
	Inspect(n, func(n Node) bool {
		if s, ok := n.(*Source); ok {
			sources = append(sources, s)
		}
		return true
	})
	return sources
}
