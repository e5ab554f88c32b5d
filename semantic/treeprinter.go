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
	"errors"
	"fmt"
	"strings"
)

// TreePrinter prints a node and its children with tree drawing characters.
type TreePrinter struct {
	buf          strings.Builder
	nodeWritten  bool
	childWritten bool
}

// NewTreePrinter creates a new tree printer.
func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

var (
	errNodeAlreadyWritten = errors.New("treeprinter: node already written")
	errNodeNotWritten     = errors.New("treeprinter: children must be written after the node")
	errChildrenWritten    = errors.New("treeprinter: children already written")
)

// WriteNode writes the top level node of the tree. It must be called exactly
// once, before WriteChildren.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) error {
	if p.nodeWritten {
		return errNodeAlreadyWritten
	}
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteRune('\n')
	p.nodeWritten = true
	return nil
}

// WriteChildren writes the children of the node, which may themselves be
// multi-line trees.
func (p *TreePrinter) WriteChildren(children ...string) error {
	if !p.nodeWritten {
		return errNodeNotWritten
	}
	if p.childWritten {
		return errChildrenWritten
	}
	p.childWritten = true

	for i, child := range children {
		last := i == len(children)-1
		lines := strings.Split(strings.TrimRight(child, "\n"), "\n")
		for j, line := range lines {
			switch {
			case j == 0 && last:
				p.buf.WriteString(" └─ ")
			case j == 0:
				p.buf.WriteString(" ├─ ")
			case last:
				p.buf.WriteString("    ")
			default:
				p.buf.WriteString(" │  ")
			}
			p.buf.WriteString(line)
			p.buf.WriteRune('\n')
		}
	}
	return nil
}

// String returns the printed tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}
