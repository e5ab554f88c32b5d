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

package semantic

// ExternalRelation is the opaque handle to a backing table or query provided
// by the execution collaborator. The semantic layer only needs its schema and
// a way to iterate its rows.
type ExternalRelation interface {
	Nameable
	// Schema returns the columns of the relation.
	Schema() Schema
	// RowIter produces the rows of the relation.
	RowIter(ctx *Context) (RowIter, error)
}

// ProjectedRelation is an ExternalRelation that can narrow itself to a subset
// of its columns. The projection pushdown pass uses it to request only the
// columns a plan needs; relations that don't implement it are projected by
// the scan instead.
type ProjectedRelation interface {
	ExternalRelation
	// WithColumns returns a view of the relation restricted to the given
	// columns, in the given order.
	WithColumns(columns []string) (ExternalRelation, error)
}
