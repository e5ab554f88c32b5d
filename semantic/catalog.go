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

import (
	"sync"

	"github.com/dolthub/go-semantic-layer/internal/similartext"
)

// Catalog holds the semantic tables available to an engine. It is safe for
// concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	tables []*SemanticTable
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Register adds a table to the catalog. Registering a name twice fails with
// ErrTableAlreadyExists.
func (c *Catalog) Register(t *SemanticTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.tables {
		if existing.Name() == t.Name() {
			return ErrTableAlreadyExists.New(t.Name())
		}
	}

	c.tables = append(c.tables, t)
	return nil
}

// Table returns the table with the given name.
func (c *Catalog) Table(name string) (*SemanticTable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		if t.Name() == name {
			return t, nil
		}
		names[i] = t.Name()
	}
	return nil, ErrTableNotFound.New(name, similartext.Find(names, name))
}

// Tables returns the names of all registered tables, in registration order.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name()
	}
	return names
}
