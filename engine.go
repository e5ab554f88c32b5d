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

// Package sle is a semantic query layer: callers define named relations with
// reusable dimensions and measures, compose them into typed query plans with
// a fluent builder, and lower the analyzed plans into executable queries
// against a backend relation.
package sle

import (
	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/analyzer"
)

// Engine holds the semantic tables and the plan analyzer.
type Engine struct {
	Catalog  *semantic.Catalog
	Analyzer *analyzer.Analyzer

	processes *ProcessList
}

// New creates an engine with the given analyzer.
func New(a *analyzer.Analyzer) *Engine {
	return &Engine{
		Catalog:   semantic.NewCatalog(),
		Analyzer:  a,
		processes: NewProcessList(),
	}
}

// NewDefault creates an engine with the default analyzer configuration.
func NewDefault() *Engine {
	return New(analyzer.NewDefault())
}

// Register adds a semantic table to the engine's catalog.
func (e *Engine) Register(t *semantic.SemanticTable) error {
	return e.Catalog.Register(t)
}

// Query starts a query over the named table.
func (e *Engine) Query(name string) *Query {
	t, err := e.Catalog.Table(name)
	if err != nil {
		return &Query{err: err}
	}
	return &Query{engine: e, table: t}
}

// Processes returns the queries currently executing on this engine.
func (e *Engine) Processes() []Process {
	return e.processes.Processes()
}

// Kill cancels the query with the given id, if it is still running.
func (e *Engine) Kill(id string) {
	e.processes.Kill(id)
}
