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

// Package analyzer rewrites logical plans before lowering: it validates
// field references and time grains, pushes filters below joins, plans
// pre-aggregation around fan-prone joins and prunes unused source columns.
package analyzer

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/go-semantic-layer/semantic"
	"github.com/dolthub/go-semantic-layer/semantic/plan"
)

const debugAnalyzerKey = "DEBUG_ANALYZER"

const maxBatchIterations = 8

// RuleFunc is a function that rewrites a plan or errors out.
type RuleFunc func(ctx *semantic.Context, a *Analyzer, n plan.Node) (plan.Node, error)

// Rule is a named rewrite over a plan.
type Rule struct {
	Name  string
	Apply RuleFunc
}

// Batch executes a set of rules in order, repeating the whole set until the
// plan stops changing or the iteration cap is hit.
type Batch struct {
	Desc       string
	Iterations int
	Rules      []Rule
}

// Eval applies the batch of rules to the node until it reaches a fixed point.
func (b *Batch) Eval(ctx *semantic.Context, a *Analyzer, n plan.Node) (plan.Node, error) {
	prev := n.String()
	for i := 0; i < b.Iterations; i++ {
		var err error
		for _, rule := range b.Rules {
			a.Log("evaluating rule %s", rule.Name)
			n, err = rule.Apply(ctx, a, n)
			if err != nil {
				return nil, err
			}
		}

		cur := n.String()
		if cur == prev {
			break
		}
		prev = cur
	}
	return n, nil
}

// Analyzer analyzes plans by applying batches of transformation rules.
type Analyzer struct {
	// Debug prints a trace of every rule application.
	Debug bool
	// PushProjections toggles the column pruning batch. Disabling it
	// changes which physical columns sources read, never which rows
	// survive.
	PushProjections bool
	// Batches of rules, applied in order.
	Batches []*Batch
}

// NewDefault creates a default analyzer.
func NewDefault() *Analyzer {
	return NewBuilder().Build()
}

// Log prints an analyzer message if debug is enabled.
func (a *Analyzer) Log(msg string, args ...interface{}) {
	if a != nil && a.Debug {
		logrus.Infof("analyzer: "+msg, args...)
	}
}

// Analyze applies the batches of rules to the given plan.
func (a *Analyzer) Analyze(ctx *semantic.Context, n plan.Node) (plan.Node, error) {
	span, ctx := ctx.Span("analyze")
	defer span.Finish()

	prev := n.String()
	for _, batch := range a.Batches {
		var err error
		n, err = batch.Eval(ctx, a, n)
		if err != nil {
			return nil, err
		}

		if cur := n.String(); cur != prev {
			a.Log("batch %s rewrote the plan:\n%s", batch.Desc, cur)
			prev = cur
		}
	}

	return n, nil
}

// Builder provides an easy way to generate Analyzers.
type Builder struct {
	debug            bool
	pushProjections  bool
	postAnalyzeRules []Rule
}

// NewBuilder creates a new Builder with the default analyzer configuration.
func NewBuilder() *Builder {
	return &Builder{pushProjections: true}
}

// WithDebug activates debug on the Analyzer.
func (ab *Builder) WithDebug() *Builder {
	ab.debug = true
	return ab
}

// WithoutProjectionPushdown disables the column pruning batch.
func (ab *Builder) WithoutProjectionPushdown() *Builder {
	ab.pushProjections = false
	return ab
}

// AddPostAnalyzeRule adds a rule that runs after the default batches.
func (ab *Builder) AddPostAnalyzeRule(name string, fn RuleFunc) *Builder {
	ab.postAnalyzeRules = append(ab.postAnalyzeRules, Rule{name, fn})
	return ab
}

// Build creates a new Analyzer from the builder parameters.
func (ab *Builder) Build() *Analyzer {
	_, debug := os.LookupEnv(debugAnalyzerKey)

	batches := []*Batch{
		{
			Desc:       "validation",
			Iterations: 1,
			Rules: []Rule{
				{"validate_fields", validateFields},
				{"validate_grains", validateGrains},
			},
		},
		{
			Desc:       "planning",
			Iterations: maxBatchIterations,
			Rules: []Rule{
				{"push_filters", pushFilters},
				{"plan_joins", planJoins},
			},
		},
	}

	if ab.pushProjections {
		batches = append(batches, &Batch{
			Desc:       "optimization",
			Iterations: 1,
			Rules: []Rule{
				{"prune_columns", pruneColumns},
			},
		})
	}

	if len(ab.postAnalyzeRules) > 0 {
		batches = append(batches, &Batch{
			Desc:       "post-analyze",
			Iterations: 1,
			Rules:      ab.postAnalyzeRules,
		})
	}

	return &Analyzer{
		Debug:           debug || ab.debug,
		PushProjections: ab.pushProjections,
		Batches:         batches,
	}
}

// fieldsFor builds the field map of the plan's join tree, leftmost source
// first.
func fieldsFor(n plan.Node) (*semantic.Fields, error) {
	sources := plan.Sources(n)
	tables := make([]*semantic.SemanticTable, len(sources))
	for i, s := range sources {
		tables[i] = s.Table
	}
	return semantic.BuildFields(tables...)
}
