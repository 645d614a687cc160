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

package ruba

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dropbox/ruba/expr"
	"github.com/dropbox/ruba/mem"
	"github.com/dropbox/ruba/plan"
	"github.com/dropbox/ruba/value"
	"github.com/dropbox/ruba/vm"
)

// Aggregate pairs an aggregation operator with its value
// expression. Expr is ignored for Count (count the rows per group).
type Aggregate struct {
	Op   plan.Aggregator
	Expr expr.Node
}

// Query is the already-parsed form of one query, standing at the
// interface boundary of the external text parser. A query either
// projects (Select, no GroupBy) or aggregates (GroupBy plus
// Aggregates; the result columns are the grouping columns followed
// by the aggregates).
type Query struct {
	Table      string
	Select     []expr.Node
	Filter     expr.Node
	GroupBy    []expr.Node
	Aggregates []Aggregate
	// OrderBy names a result column ("" leaves the result in
	// pipeline order).
	OrderBy    string
	Descending bool
	// Limit truncates the result (0 means unlimited).
	Limit int
}

// QueryResult holds a materialized result: one name per column and
// row-major decoded values.
type QueryResult struct {
	ID      uuid.UUID
	Columns []string
	Rows    [][]value.Value
}

// RunQuery compiles, lowers and executes one query against the
// named table's current snapshot.
func (r *Ruba) RunQuery(q *Query) (*QueryResult, error) {
	t, err := r.Table(q.Table)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	cols := t.Columns()
	r.log.Printf("[%s] query table=%s rows=%d", id, q.Table, t.Rows())

	filter := vm.NoFilter()
	if q.Filter != nil {
		filter, err = computeFilter(q.Filter, cols)
		if err != nil {
			return nil, err
		}
	}

	var res *QueryResult
	if len(q.GroupBy) > 0 {
		res, err = r.runGrouped(q, cols, filter)
	} else {
		res, err = runSelect(q, cols, filter)
	}
	if err != nil {
		r.log.Printf("[%s] failed: %s", id, err)
		return nil, err
	}
	res.ID = id
	r.log.Printf("[%s] done: %d rows", id, len(res.Rows))
	return res, nil
}

// computeFilter evaluates the WHERE expression over all rows in a
// dedicated executor and converts the boolean vector into the
// row-selection form later passes are lowered against: an index
// list when few rows survive, a bitmap otherwise, and no filter at
// all when every row survives.
func computeFilter(node expr.Node, cols map[string]*mem.Column) (vm.Filter, error) {
	op, typ, err := plan.Compile(node, cols)
	if err != nil {
		return vm.Filter{}, err
	}
	if typ.Basic != mem.Boolean {
		return vm.Filter{}, &plan.TypeError{Msg: fmt.Sprintf("filter has type %s, expected boolean", typ)}
	}
	ex := vm.NewQueryExecutor()
	out := plan.Lower(op, ex)
	s, err := ex.Run()
	if err != nil {
		return vm.Filter{}, err
	}
	bools := s.Bools(out)
	bits := vm.BoolsToBitmap(bools)
	selected := bits.Count()
	switch {
	case selected == len(bools):
		return vm.NoFilter(), nil
	case selected*8 < len(bools):
		return vm.IndexFilter(vm.BitmapIndices(bits, len(bools))), nil
	default:
		return vm.BitVecFilter(bits), nil
	}
}

// runSelect runs a projection query. Selected columns stay in
// encoded space through sorting where their codec permits it and
// are decoded at the very end.
func runSelect(q *Query, cols map[string]*mem.Column, filter vm.Filter) (*QueryResult, error) {
	if len(q.Select) == 0 {
		return nil, &plan.NotImplementedError{Msg: "query selects no columns"}
	}
	ex := vm.NewQueryExecutor()
	ex.SetFilter(filter)

	names := make([]string, len(q.Select))
	ops := make([]plan.Op, len(q.Select))
	types := make([]plan.Type, len(q.Select))
	bufs := make([]vm.BufferRef, len(q.Select))
	for i, sel := range q.Select {
		op, typ, err := plan.Compile(sel, cols)
		if err != nil {
			return nil, err
		}
		if typ.Basic == mem.Boolean {
			return nil, &plan.NotImplementedError{Msg: fmt.Sprintf("selecting boolean expression %s", sel)}
		}
		names[i] = sel.String()
		ops[i], types[i] = op, typ
		bufs[i] = plan.Lower(op, ex)
	}

	if q.OrderBy != "" {
		idx, err := resultColumn(names, q.OrderBy)
		if err != nil {
			return nil, err
		}
		sortPlan, _ := plan.OrderPreserving(ops[idx], types[idx])
		sortIn := plan.Lower(sortPlan, ex)
		sortIdx := ex.NewBuffer()
		ex.Push(&vm.SortIndices{In: sortIn, Out: sortIdx, Descending: q.Descending})
		for i := range bufs {
			out := ex.NewBuffer()
			ex.Push(&vm.Gather{In: bufs[i], Indices: sortIdx, Out: out})
			bufs[i] = out
		}
	}
	for i := range bufs {
		if types[i].IsEncoded() {
			out := ex.NewBuffer()
			ex.Push(&vm.DecodeWith{In: bufs[i], Out: out, Codec: types[i].Codec})
			bufs[i] = out
		}
	}

	s, err := ex.Run()
	if err != nil {
		return nil, err
	}
	return materialize(s, names, bufs, q.Limit)
}

// runGrouped runs an aggregation query: materialize the grouping
// key under the row filter, bucket rows densely or through a hash
// table depending on the key's static range, aggregate, then in a
// second stage decode the distinct keys back into the grouping
// columns and order the per-group result.
func (r *Ruba) runGrouped(q *Query, cols map[string]*mem.Column, filter vm.Filter) (*QueryResult, error) {
	gk, err := plan.CompileGroupingKey(q.GroupBy, cols)
	if err != nil {
		return nil, err
	}
	if gk.Type.EncodingType() == mem.Str {
		return nil, &plan.NotImplementedError{Msg: "grouping by an unencoded string column"}
	}

	ex := vm.NewQueryExecutor()
	ex.SetFilter(filter)
	rawKey := plan.Lower(gk.Plan, ex)

	// a statically small non-negative key range permits
	// direct-indexed aggregation tables; anything else goes
	// through hashing
	dense := gk.MinKey >= 0 &&
		gk.MaxKey != plan.UnknownCardinality &&
		gk.MaxKey < r.opts.DenseGroupingLimit
	var (
		unique   vm.BufferRef
		grouping vm.BufferRef
		maxIndex int64
		card     = vm.NoBuffer
	)
	if dense {
		unique = plan.LowerUnique(rawKey, gk.MaxKey, ex)
		grouping, maxIndex = rawKey, gk.MaxKey
	} else {
		unique, grouping, card = plan.LowerHashGrouping(rawKey, ex)
	}

	names := make([]string, 0, len(q.GroupBy)+len(q.Aggregates))
	for _, g := range q.GroupBy {
		names = append(names, g.String())
	}
	aggBufs := make([]vm.BufferRef, len(q.Aggregates))
	for i, a := range q.Aggregates {
		var (
			vplan plan.Op
			vtype plan.Type
		)
		if a.Op == plan.AggSum {
			vplan, vtype, err = plan.Compile(a.Expr, cols)
			if err != nil {
				return nil, err
			}
			if vtype.Basic != mem.Integer {
				return nil, &plan.TypeError{Msg: fmt.Sprintf("sum over %s", vtype)}
			}
		}
		aggBufs[i] = plan.LowerAggregation(vplan, vtype, a.Op, grouping, maxIndex, card, ex)
		names = append(names, aggName(a))
	}

	ex.NewStage()
	ex.SetEncodedGroupBy(unique)
	resultBufs := make([]vm.BufferRef, 0, len(names))
	for _, dp := range gk.DecodePlans {
		resultBufs = append(resultBufs, plan.Lower(dp, ex))
	}
	if dense {
		// dense aggregates span the whole key range; compact them
		// down to the keys actually present
		for i := range aggBufs {
			out := ex.NewBuffer()
			ex.Push(&vm.Gather{In: aggBufs[i], Indices: unique, Out: out})
			aggBufs[i] = out
		}
	}
	resultBufs = append(resultBufs, aggBufs...)

	if q.OrderBy != "" {
		idx, err := resultColumn(names, q.OrderBy)
		if err != nil {
			return nil, err
		}
		sortIdx := ex.NewBuffer()
		ex.Push(&vm.SortIndices{In: resultBufs[idx], Out: sortIdx, Descending: q.Descending})
		for i := range resultBufs {
			out := ex.NewBuffer()
			ex.Push(&vm.Gather{In: resultBufs[i], Indices: sortIdx, Out: out})
			resultBufs[i] = out
		}
	}

	s, err := ex.Run()
	if err != nil {
		return nil, err
	}
	return materialize(s, names, resultBufs, q.Limit)
}

func aggName(a Aggregate) string {
	if a.Expr == nil {
		return "count(*)"
	}
	return fmt.Sprintf("%s(%s)", strings.ToLower(a.Op.String()), a.Expr)
}

func resultColumn(names []string, name string) (int, error) {
	for i := range names {
		if names[i] == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("order by %q does not name a result column", name)
}

// materialize turns final buffers into a row-major result. Every
// final buffer holds decoded values ([]int64 or []string).
func materialize(s *vm.Scratchpad, names []string, bufs []vm.BufferRef, limit int) (*QueryResult, error) {
	columns := make([][]value.Value, len(bufs))
	rows := 0
	for i, ref := range bufs {
		switch v := s.Get(ref).(type) {
		case []int64:
			columns[i] = make([]value.Value, len(v))
			for j := range v {
				columns[i][j] = value.Int64(v[j])
			}
		case []string:
			columns[i] = make([]value.Value, len(v))
			for j := range v {
				columns[i][j] = value.String(v[j])
			}
		default:
			return nil, fmt.Errorf("column %s materialized as %T", names[i], v)
		}
		if i == 0 {
			rows = len(columns[i])
		} else if len(columns[i]) != rows {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", names[i], len(columns[i]), rows)
		}
	}
	if limit > 0 && rows > limit {
		rows = limit
	}
	out := make([][]value.Value, rows)
	for j := 0; j < rows; j++ {
		row := make([]value.Value, len(columns))
		for i := range columns {
			row[i] = columns[i][j]
		}
		out[j] = row
	}
	return &QueryResult{Columns: names, Rows: out}, nil
}
