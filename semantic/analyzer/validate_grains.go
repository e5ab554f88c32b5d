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

package analyzer

import (
	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

// validateGrains checks every time-grained group key: the field must be a
// declared time dimension, and the requested grain must not be finer than
// the dimension's declared smallest grain. Coarser grains are rewritten to
// truncations at lowering time; finer grains would silently duplicate rows,
// so they are rejected here.
func validateGrains(ctx *semantic.Context, a *Analyzer, n plan.Node) (plan.Node, error) {
	fields, err := fieldsFor(n)
	if err != nil {
		return nil, err
	}

	var verr error
	plan.Inspect(n, func(n plan.Node) bool {
		g, ok := n.(*plan.GroupBy)
		if !ok {
			return true
		}

		for _, key := range g.Keys {
			if key.Grain == semantic.GrainNone {
				continue
			}

			dim, err := fields.Dimension(key.Field)
			if err != nil {
				verr = err
				return false
			}
			if !dim.Dimension.TimeDimension {
				verr = semantic.ErrNotTimeDimension.New(key.Field)
				return false
			}

			smallest := dim.Dimension.SmallestGrain
			if smallest != semantic.GrainNone && key.Grain.FinerThan(smallest) {
				verr = semantic.ErrGrainTooFine.New(key.Grain, smallest, key.Field)
				return false
			}
		}
		return true
	})
	if verr != nil {
		return nil, verr
	}

	return n, nil
}
