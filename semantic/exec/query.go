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
	"github.com/mitchellh/hashstructure"
	uuid "github.com/satori/go.uuid"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// Query is a fully lowered, executable query.
type Query struct {
	id   uuid.UUID
	root Node
}

// NewQuery creates a query with the given root node.
func NewQuery(id uuid.UUID, root Node) *Query {
	return &Query{id: id, root: root}
}

// ID returns the query id.
func (q *Query) ID() uuid.UUID { return q.id }

// Schema of the rows the query produces.
func (q *Query) Schema() semantic.Schema { return q.root.Schema() }

// RowIter runs the query and returns its row iterator.
func (q *Query) RowIter(ctx *semantic.Context) (semantic.RowIter, error) {
	span, ctx := ctx.Span("query")
	iter, err := q.root.RowIter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return semantic.NewSpanIter(span, iter), nil
}

// Execute runs the query to completion and materializes the result.
func (q *Query) Execute(ctx *semantic.Context) (*semantic.Table, error) {
	iter, err := q.RowIter(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := semantic.RowIterToRows(iter)
	if err != nil {
		return nil, err
	}

	return &semantic.Table{
		Columns: q.Schema().ColumnNames(),
		Rows:    rows,
	}, nil
}

// Fingerprint returns a stable hash of the query structure, independent of
// the query id. Two lowerings of the same plan share a fingerprint.
func (q *Query) Fingerprint() (uint64, error) {
	return hashstructure.Hash(q.root.String(), nil)
}

// ToSQL renders the query as nested SQL for debugging and documentation. The
// output is not guaranteed to parse on any particular backend.
func (q *Query) ToSQL() string {
	return toSQL(q.root)
}

func (q *Query) String() string {
	return q.root.String()
}
