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

import "strings"

// Dimension is a named, row-level attribute expression of a semantic table.
// Dimensions are immutable once attached to a table.
type Dimension struct {
	// Name is the name of the dimension.
	Name string
	// Expr is the row-level expression that produces the dimension's value.
	// Columns it references are columns of the table's relation.
	Expr Expression
	// Description documents the dimension for introspection.
	Description string
	// TimeDimension marks the dimension as temporal. Only time dimensions can
	// be grouped at a grain or filtered by a time range.
	TimeDimension bool
	// SmallestGrain is the finest grain the dimension supports. GrainNone
	// means any grain is allowed.
	SmallestGrain Grain
}

// Measure is a named aggregation expression of a semantic table. A measure is
// either base (Agg set) or calculated (Calc set). A calculated measure may
// reference other measures and dimensions by name; those names are resolved
// at lowering time, not at definition time.
type Measure struct {
	// Name is the name of the measure.
	Name string
	// Agg is the aggregation expression of a base measure.
	Agg Expression
	// Calc is the defining function of a calculated measure.
	Calc CalcFunc
	// Description documents the measure for introspection.
	Description string
}

// Calculated returns whether the measure is calculated rather than base.
func (m *Measure) Calculated() bool { return m.Calc != nil }

// SemanticTable is a named relation with a reusable vocabulary of dimensions
// and measures. Tables are immutable values: the With methods return new
// tables, so one table can be safely shared across branches of a plan and
// across concurrent query constructions.
type SemanticTable struct {
	name       string
	relation   ExternalRelation
	primaryKey string
	dimensions []*Dimension
	measures   []*Measure
}

// NewTable creates a semantic table over the given relation.
func NewTable(name string, relation ExternalRelation) *SemanticTable {
	return &SemanticTable{name: name, relation: relation}
}

// Name implements the Nameable interface.
func (t *SemanticTable) Name() string { return t.name }

// Relation returns the backing relation.
func (t *SemanticTable) Relation() ExternalRelation { return t.relation }

// PrimaryKey returns the declared primary key column, if any.
func (t *SemanticTable) PrimaryKey() string { return t.primaryKey }

func (t *SemanticTable) copy() *SemanticTable {
	nt := &SemanticTable{
		name:       t.name,
		relation:   t.relation,
		primaryKey: t.primaryKey,
		dimensions: make([]*Dimension, len(t.dimensions)),
		measures:   make([]*Measure, len(t.measures)),
	}
	copy(nt.dimensions, t.dimensions)
	copy(nt.measures, t.measures)
	return nt
}

// WithPrimaryKey returns a new table with the given primary key column.
func (t *SemanticTable) WithPrimaryKey(column string) *SemanticTable {
	nt := t.copy()
	nt.primaryKey = column
	return nt
}

// WithDimensions returns a new table with the given dimensions appended.
// Redeclaring an existing dimension or measure name fails with
// ErrDuplicateField.
func (t *SemanticTable) WithDimensions(dims ...Dimension) (*SemanticTable, error) {
	nt := t.copy()
	for i := range dims {
		d := dims[i]
		if nt.hasField(d.Name) {
			return nil, ErrDuplicateField.New(d.Name, t.name)
		}
		nt.dimensions = append(nt.dimensions, &d)
	}
	return nt, nil
}

// WithMeasures returns a new table with the given measures appended.
// Redeclaring an existing dimension or measure name fails with
// ErrDuplicateField.
func (t *SemanticTable) WithMeasures(measures ...Measure) (*SemanticTable, error) {
	nt := t.copy()
	for i := range measures {
		m := measures[i]
		if nt.hasField(m.Name) {
			return nil, ErrDuplicateField.New(m.Name, t.name)
		}
		nt.measures = append(nt.measures, &m)
	}
	return nt, nil
}

func (t *SemanticTable) hasField(name string) bool {
	return t.Dimension(name) != nil || t.Measure(name) != nil
}

// Dimension returns the dimension with the given name, or nil.
func (t *SemanticTable) Dimension(name string) *Dimension {
	for _, d := range t.dimensions {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Measure returns the measure with the given name, or nil.
func (t *SemanticTable) Measure(name string) *Measure {
	for _, m := range t.measures {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Dimensions returns the dimensions of the table, in declaration order.
func (t *SemanticTable) Dimensions() []*Dimension {
	dims := make([]*Dimension, len(t.dimensions))
	copy(dims, t.dimensions)
	return dims
}

// Measures returns the measures of the table, in declaration order.
func (t *SemanticTable) Measures() []*Measure {
	measures := make([]*Measure, len(t.measures))
	copy(measures, t.measures)
	return measures
}

// AvailableDimensions returns the declared dimension names, in order.
func (t *SemanticTable) AvailableDimensions() []string {
	names := make([]string, len(t.dimensions))
	for i, d := range t.dimensions {
		names[i] = d.Name
	}
	return names
}

// AvailableMeasures returns the declared measure names, in order.
func (t *SemanticTable) AvailableMeasures() []string {
	names := make([]string, len(t.measures))
	for i, m := range t.measures {
		names[i] = m.Name
	}
	return names
}

func (t *SemanticTable) String() string {
	p := NewTreePrinter()
	_ = p.WriteNode("SemanticTable(%s)", t.name)
	_ = p.WriteChildren(
		"dimensions: "+strings.Join(t.AvailableDimensions(), ", "),
		"measures: "+strings.Join(t.AvailableMeasures(), ", "),
	)
	return p.String()
}
