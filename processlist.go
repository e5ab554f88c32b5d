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

package sle

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/go-semantic-layer/semantic"
)

// Process is a query in execution.
type Process struct {
	// ID is the query id.
	ID string
	// Query is the plan being executed, rendered as a tree.
	Query string
	// StartedAt is the time the query started executing.
	StartedAt time.Time
}

type process struct {
	Process
	cancel context.CancelFunc
}

// ProcessList tracks the queries in execution on an engine. It is safe for
// concurrent use.
type ProcessList struct {
	mu    sync.RWMutex
	procs map[string]*process
}

// NewProcessList creates an empty process list.
func NewProcessList() *ProcessList {
	return &ProcessList{procs: make(map[string]*process)}
}

// Add registers the query with the process list and returns a context that is
// cancelled when the process is killed, along with a done function the caller
// must invoke when execution finishes.
func (pl *ProcessList) Add(ctx *semantic.Context, query string) (*semantic.Context, func()) {
	inner, cancel := context.WithCancel(ctx.Context)
	id := ctx.ID().String()

	pl.mu.Lock()
	pl.procs[id] = &process{
		Process: Process{ID: id, Query: query, StartedAt: time.Now()},
		cancel:  cancel,
	}
	pl.mu.Unlock()

	return ctx.WithContext(inner), func() {
		pl.mu.Lock()
		delete(pl.procs, id)
		pl.mu.Unlock()
		cancel()
	}
}

// Kill cancels the query with the given id, if it is still running.
func (pl *ProcessList) Kill(id string) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	p, ok := pl.procs[id]
	if !ok {
		return
	}

	logrus.Infof("killing query %s", id)
	p.cancel()
	delete(pl.procs, id)
}

// Processes returns a snapshot of the currently executing queries.
func (pl *ProcessList) Processes() []Process {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	procs := make([]Process, 0, len(pl.procs))
	for _, p := range pl.procs {
		procs = append(procs, p.Process)
	}
	return procs
}
