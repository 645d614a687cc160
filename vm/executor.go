// Copyright (C) 2026 Dropbox, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"fmt"
	"strings"
)

// VecOperator is one physical vector operation. Operators read
// their input buffers from the scratchpad and write their
// designated output buffer(s) before the next operator runs.
type VecOperator interface {
	fmt.Stringer

	// Exec runs the operator against the shared scratchpad.
	Exec(s *Scratchpad) error
}

// executorStage is an ordered list of operators sharing one active
// filter and one optional resolved group-key buffer. A fresh stage
// inherits neither from its predecessor.
type executorStage struct {
	ops            []VecOperator
	filter         Filter
	encodedGroupBy BufferRef
	hasGroupBy     bool
}

// QueryExecutor holds the staged physical program for one query
// execution. It is built by plan lowering and run exactly once.
type QueryExecutor struct {
	stages []executorStage
	count  int
	ran    bool
}

// NewQueryExecutor returns an executor in the building state with
// one (empty) initial stage.
func NewQueryExecutor() *QueryExecutor {
	return &QueryExecutor{stages: make([]executorStage, 1)}
}

// NewBuffer allocates a fresh buffer handle.
func (e *QueryExecutor) NewBuffer() BufferRef {
	e.count++
	return BufferRef(e.count - 1)
}

// Push appends op to the current stage.
func (e *QueryExecutor) Push(op VecOperator) {
	last := &e.stages[len(e.stages)-1]
	last.ops = append(last.ops, op)
}

// NewStage appends a fresh stage. The new stage starts with no
// filter and no group-key buffer; both must be set explicitly.
func (e *QueryExecutor) NewStage() {
	e.stages = append(e.stages, executorStage{})
}

// SetFilter sets the active filter of the current stage.
func (e *QueryExecutor) SetFilter(f Filter) {
	e.stages[len(e.stages)-1].filter = f
}

// Filter returns the active filter of the current stage.
func (e *QueryExecutor) Filter() Filter {
	return e.stages[len(e.stages)-1].filter
}

// SetEncodedGroupBy registers the buffer holding the current
// stage's materialized group key. The group-by placeholder plan
// node resolves to this buffer during lowering.
func (e *QueryExecutor) SetEncodedGroupBy(ref BufferRef) {
	last := &e.stages[len(e.stages)-1]
	last.encodedGroupBy = ref
	last.hasGroupBy = true
}

// EncodedGroupBy returns the current stage's group-key buffer.
func (e *QueryExecutor) EncodedGroupBy() (BufferRef, bool) {
	last := &e.stages[len(e.stages)-1]
	return last.encodedGroupBy, last.hasGroupBy
}

// Run executes all stages strictly in append order and, within a
// stage, all operators strictly in append order. An executor can
// be run at most once; the returned scratchpad holds every buffer
// materialized during the execution.
func (e *QueryExecutor) Run() (*Scratchpad, error) {
	if e.ran {
		return nil, fmt.Errorf("query executor already run")
	}
	e.ran = true
	scratchpad := newScratchpad(e.count)
	for i := range e.stages {
		for _, op := range e.stages[i].ops {
			if err := op.Exec(scratchpad); err != nil {
				return nil, fmt.Errorf("stage %d: %s: %w", i, op, err)
			}
		}
	}
	return scratchpad, nil
}

// String renders the staged program for diagnostics.
func (e *QueryExecutor) String() string {
	var sb strings.Builder
	for i := range e.stages {
		fmt.Fprintf(&sb, "-- Stage %d --", i)
		for _, op := range e.stages[i].ops {
			fmt.Fprintf(&sb, "\n%s", op)
		}
		if i != len(e.stages)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
