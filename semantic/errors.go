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

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrDuplicateField is returned when a dimension or measure is declared
	// with a name that already exists on the table. Redefinition is rejected,
	// never silently overwritten.
	ErrDuplicateField = errors.NewKind("field %q already defined on table %q")

	// ErrUnknownField is returned when a filter or query references a field
	// that is not declared on any table in scope.
	ErrUnknownField = errors.NewKind("unknown field %q, available fields: %s")

	// ErrUnresolvedField is returned when a referenced name cannot be resolved
	// against the field map of a join tree.
	ErrUnresolvedField = errors.NewKind("field %q could not be resolved, available: %s")

	// ErrUnsupportedOperator is returned when a filter uses an operator
	// outside the supported taxonomy.
	ErrUnsupportedOperator = errors.NewKind("unsupported filter operator %q")

	// ErrGrainTooFine is returned when a query requests a time grain finer
	// than the smallest grain declared on the dimension.
	ErrGrainTooFine = errors.NewKind("time grain %s is finer than the smallest declared grain %s of dimension %q")

	// ErrNotTimeDimension is returned when a time grain is requested on a
	// dimension that was not declared as a time dimension.
	ErrNotTimeDimension = errors.NewKind("dimension %q is not a time dimension")

	// ErrInvalidGrain is returned when a grain name cannot be parsed.
	ErrInvalidGrain = errors.NewKind("invalid time grain %q, must be one of %s")

	// ErrAmbiguousJoinCardinality is returned when a query aggregates a
	// measure across a join whose cardinality was not declared. Without a
	// declared cardinality the planner cannot prevent join fan-out from
	// inflating the aggregate.
	ErrAmbiguousJoinCardinality = errors.NewKind("cannot aggregate measure %q across a join with undeclared cardinality; declare the join with JoinOne or JoinMany")

	// ErrLowering is returned when the lowering engine cannot translate a
	// node of the plan. It carries the node type and the offending detail.
	ErrLowering = errors.NewKind("cannot lower %s node: %s")

	// ErrTableAlreadyExists is returned when a semantic table is registered
	// under a name that is already taken.
	ErrTableAlreadyExists = errors.NewKind("table with name %q already registered")

	// ErrTableNotFound is returned when the named table is not in the catalog.
	ErrTableNotFound = errors.NewKind("table not found: %s%s")

	// ErrDuplicateTable is returned when two tables with the same name appear
	// in one join tree. Qualified field names would collide.
	ErrDuplicateTable = errors.NewKind("table %q appears more than once in the join tree")

	// ErrColumnNotFound is returned when a relation does not have a column
	// with the given name.
	ErrColumnNotFound = errors.NewKind("relation %q does not have column %q")

	// ErrInvalidType is returned when a value has an unexpected type.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrInvalidValue is returned when a value cannot be converted to the
	// declared column type.
	ErrInvalidValue = errors.NewKind("value %v cannot be converted to %s")

	// ErrUnexpectedRowLength is returned when an inserted row does not match
	// the schema of its relation.
	ErrUnexpectedRowLength = errors.NewKind("expected %d values, got %d")

	// ErrInvalidChildrenNumber is returned when the WithChildren method of a
	// node or expression is called with an invalid number of arguments.
	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")
)
