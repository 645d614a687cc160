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
	"errors"
	"strings"
	"testing"

	"github.com/dropbox/ruba/value"
)

type failOp struct{ err error }

func (op *failOp) Exec(*Scratchpad) error { return op.err }
func (op *failOp) String() string         { return "fail" }

func TestExecutorRunsOnce(t *testing.T) {
	ex := NewQueryExecutor()
	out := ex.NewBuffer()
	ex.Push(&Constant{Val: value.Int64(1), Out: out})
	if _, err := ex.Run(); err != nil {
		t.Fatal(err)
	}
	if _, err := ex.Run(); err == nil {
		t.Fatal("a second Run must fail")
	}
}

func TestExecutorWrapsOperatorErrors(t *testing.T) {
	ex := NewQueryExecutor()
	ex.NewStage()
	boom := errors.New("boom")
	ex.Push(&failOp{err: boom})
	_, err := ex.Run()
	if !errors.Is(err, boom) {
		t.Fatalf("error not propagated: %v", err)
	}
	if !strings.Contains(err.Error(), "stage 1") {
		t.Errorf("error does not name the failing stage: %v", err)
	}
}

func TestStagesInheritNothing(t *testing.T) {
	ex := NewQueryExecutor()
	ex.SetFilter(IndexFilter([]uint32{1}))
	key := ex.NewBuffer()
	ex.SetEncodedGroupBy(key)

	ex.NewStage()
	if f := ex.Filter(); f.Kind != FilterNone {
		t.Errorf("fresh stage has filter kind %d", f.Kind)
	}
	if _, ok := ex.EncodedGroupBy(); ok {
		t.Error("fresh stage has a group-by buffer")
	}
}

type setOp struct {
	out BufferRef
	v   any
}

func (op *setOp) Exec(s *Scratchpad) error { s.Set(op.out, op.v); return nil }
func (op *setOp) String() string           { return "set" }

func TestLaterStagesSeeEarlierBuffers(t *testing.T) {
	ex := NewQueryExecutor()
	lhs := ex.NewBuffer()
	rhs := ex.NewBuffer()
	ex.Push(&setOp{out: lhs, v: []bool{true, false, true}})
	ex.Push(&setOp{out: rhs, v: []bool{true, true, false}})

	ex.NewStage()
	ex.Push(&Boolean{Lhs: lhs, Rhs: rhs})

	s, err := ex.Run()
	if err != nil {
		t.Fatal(err)
	}
	got := s.Bools(lhs)
	want := []bool{true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
