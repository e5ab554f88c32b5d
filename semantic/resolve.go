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

// ResolvedDimension is a dimension found in a field map, together with the
// table that owns it and its globally unique qualified name.
type ResolvedDimension struct {
	Table     *SemanticTable
	Dimension *Dimension
	Qualified string
}

// ResolvedMeasure is a measure found in a field map, together with the table
// that owns it and its globally unique qualified name.
type ResolvedMeasure struct {
	Table     *SemanticTable
	Measure   *Measure
	Qualified string
}

// Fields is the flat field map of a join tree: every dimension and measure of
// every table, keyed by qualified name ("table.field", always present and
// unique) and by bare name (present only for the first table to claim it).
type Fields struct {
	dimensions   map[string]ResolvedDimension
	measures     map[string]ResolvedMeasure
	dimNames     []string
	measureNames []string
	tables       []*SemanticTable
}

// BuildFields walks the given tables in join-tree order (left to right, depth
// first) and merges their dimension and measure namespaces. Each field is
// registered twice: under its qualified name and, if no earlier table claimed
// the bare name, under the bare name as well. The first writer wins on bare
// names; qualified names never collide for distinct table names.
func BuildFields(tables ...*SemanticTable) (*Fields, error) {
	f := &Fields{
		dimensions: make(map[string]ResolvedDimension),
		measures:   make(map[string]ResolvedMeasure),
	}

	seen := make(map[string]struct{})
	for _, t := range tables {
		if _, ok := seen[t.Name()]; ok {
			return nil, ErrDuplicateTable.New(t.Name())
		}
		seen[t.Name()] = struct{}{}
		f.tables = append(f.tables, t)

		for _, d := range t.Dimensions() {
			qualified := t.Name() + "." + d.Name
			rd := ResolvedDimension{Table: t, Dimension: d, Qualified: qualified}
			f.dimensions[qualified] = rd
			f.dimNames = append(f.dimNames, qualified)
			if !f.claimed(d.Name) {
				f.dimensions[d.Name] = rd
			}
		}

		for _, m := range t.Measures() {
			qualified := t.Name() + "." + m.Name
			rm := ResolvedMeasure{Table: t, Measure: m, Qualified: qualified}
			f.measures[qualified] = rm
			f.measureNames = append(f.measureNames, qualified)
			if !f.claimed(m.Name) {
				f.measures[m.Name] = rm
			}
		}
	}

	return f, nil
}

func (f *Fields) claimed(bare string) bool {
	if _, ok := f.dimensions[bare]; ok {
		return true
	}
	_, ok := f.measures[bare]
	return ok
}

// Tables returns the tables of the field map, in join-tree order.
func (f *Fields) Tables() []*SemanticTable {
	tables := make([]*SemanticTable, len(f.tables))
	copy(tables, f.tables)
	return tables
}

// Table returns the table with the given name, or nil.
func (f *Fields) Table(name string) *SemanticTable {
	for _, t := range f.tables {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// DimensionNames returns all qualified dimension names, in registration order.
func (f *Fields) DimensionNames() []string {
	names := make([]string, len(f.dimNames))
	copy(names, f.dimNames)
	return names
}

// MeasureNames returns all qualified measure names, in registration order.
func (f *Fields) MeasureNames() []string {
	names := make([]string, len(f.measureNames))
	copy(names, f.measureNames)
	return names
}

// Dimension resolves a dimension reference. Resolution order: exact match
// (qualified or unambiguous bare name), then suffix match against qualified
// names as a fallback for deep join chains.
func (f *Fields) Dimension(name string) (ResolvedDimension, error) {
	if rd, ok := f.dimensions[name]; ok {
		return rd, nil
	}
	suffix := "." + name
	for _, qualified := range f.dimNames {
		if strings.HasSuffix(qualified, suffix) {
			return f.dimensions[qualified], nil
		}
	}
	return ResolvedDimension{}, ErrUnresolvedField.New(name, strings.Join(f.dimNames, ", "))
}

// Measure resolves a measure reference with the same precedence as Dimension.
func (f *Fields) Measure(name string) (ResolvedMeasure, error) {
	if rm, ok := f.measures[name]; ok {
		return rm, nil
	}
	suffix := "." + name
	for _, qualified := range f.measureNames {
		if strings.HasSuffix(qualified, suffix) {
			return f.measures[qualified], nil
		}
	}
	return ResolvedMeasure{}, ErrUnresolvedField.New(name, strings.Join(f.measureNames, ", "))
}

// IsDimension returns whether the name resolves to a dimension.
func (f *Fields) IsDimension(name string) bool {
	_, err := f.Dimension(name)
	return err == nil
}

// IsMeasure returns whether the name resolves to a measure.
func (f *Fields) IsMeasure(name string) bool {
	_, err := f.Measure(name)
	return err == nil
}

// Column finds the table owning a raw relation column with the given name,
// which may be bare or qualified as "table.column". It returns the owning
// table and the column name, or nil if no relation has such a column.
func (f *Fields) Column(name string) (*SemanticTable, string) {
	if idx := strings.Index(name, "."); idx >= 0 {
		table, column := name[:idx], name[idx+1:]
		if t := f.Table(table); t != nil {
			if t.Relation().Schema().IndexOfName(column) >= 0 {
				return t, column
			}
		}
		return nil, ""
	}
	for _, t := range f.tables {
		if t.Relation().Schema().IndexOfName(name) >= 0 {
			return t, name
		}
	}
	return nil, ""
}
