// Package inference implements error-block and specification inference:
// the outer module-level fixed point that combines the value-flow,
// returned-values and branch-constraint analyses with the error-only
// seed set to compute the abstract error return value (AERV) per
// function.
package inference

import (
	"eesi/internal/branchconstraint"
	"eesi/internal/interval"
	"eesi/internal/ir"
	"eesi/internal/returned"
	"eesi/internal/valueflow"
)

// Edge is a propagation edge recorded when inference concludes that To's
// AERV was widened because it returns a value held by a call to From.
type Edge struct {
	From, To string
}

// Result is the outcome of running inference to a fixed point.
type Result struct {
	// AERV maps function name to its finalized specification.
	AERV map[string]interval.Constraint
	// Edges is the error-propagation edge set, in discovery order, deduped.
	Edges []Edge
	// Bootstrap is the set of function names whose AERV was seeded by a
	// direct call to a known error-only function.
	Bootstrap map[string]bool
	// Returned is the unrestricted returned-values analysis the fixed
	// point ran over, exposed for callers that need the full (not
	// error-gated) propagation relation.
	Returned *returned.Analysis

	edgeSeen map[Edge]bool
}

// Run computes the AERV for every function in m, seeded by errorOnly and
// optionally by an initial set of specs. errorCodes is the externally
// configured prima-facie error-code list.
func Run(m *ir.Module, errorOnly map[string]bool, seed map[string]interval.Constraint, errorCodes map[int64]bool) *Result {
	vf := valueflow.Run(m)
	rv := returned.Run(m)
	bc := branchconstraint.Run(m, vf)

	r := &Result{
		AERV:      map[string]interval.Constraint{},
		Bootstrap: map[string]bool{},
		Returned:  rv,
		edgeSeen:  map[Edge]bool{},
	}
	for fname, c := range seed {
		r.AERV[fname] = c
	}

	changed := true
	for changed {
		changed = false
		for _, f := range m.Functions {
			for _, blk := range f.Blocks {
				if r.visitBlock(f, blk, vf, rv, bc, errorOnly, errorCodes) {
					changed = true
				}
			}
		}
	}
	return r
}

func (r *Result) haveAERV(fname string) bool {
	_, ok := r.AERV[fname]
	return ok
}

func (r *Result) getAERV(fname string) interval.Constraint {
	if c, ok := r.AERV[fname]; ok {
		return c
	}
	panic("inference: no AERV for function " + fname)
}

// setAERV joins contribution into fname's AERV, returning whether the AERV
// changed.
func (r *Result) setAERV(fname string, contribution interval.Constraint) bool {
	cur, ok := r.AERV[fname]
	if !ok {
		r.AERV[fname] = interval.Constraint{Fname: fname, Interval: contribution.Interval}
		return true
	}
	joined := cur.Join(contribution)
	if joined.Interval == cur.Interval {
		return false
	}
	r.AERV[fname] = joined
	return true
}

func (r *Result) addEdge(from, to string) {
	e := Edge{From: from, To: to}
	if r.edgeSeen[e] {
		return
	}
	r.edgeSeen[e] = true
	r.Edges = append(r.Edges, e)
}

func (r *Result) visitBlock(
	f *ir.Function,
	blk *ir.BasicBlock,
	vf *valueflow.Analysis,
	rv *returned.Analysis,
	bc *branchconstraint.Analysis,
	errorOnly map[string]bool,
	errorCodes map[int64]bool,
) bool {
	changed := false

	// (1) Error seeding from calls to error-only functions.
	for _, inst := range blk.Instructions {
		call, ok := inst.(*ir.CallInst)
		if !ok || !errorOnly[call.Callee] {
			continue
		}
		for _, v := range rv.OutFact(call).Values() {
			if seedVal, isErr := constOrNull(v); isErr {
				r.Bootstrap[f.Name] = true
				if r.addErrorValue(f.Name, seedVal) {
					changed = true
				}
			}
		}
	}

	first := blk.First()
	last := blk.Last()
	if first == nil || last == nil {
		return changed
	}

	rtf := rv.InFact(first)
	if rtf.Len() > 1 {
		return changed
	}

	// (1, continued) Error seeding from the predefined error-code list.
	for _, v := range rtf.Values() {
		if val, ok := v.(*ir.ConstInt); ok && errorCodes[val.Val] {
			if r.addErrorValue(f.Name, val.Val) {
				changed = true
			}
		}
	}

	// (2) Error seeding from constrained blocks.
	rcf := bc.OutFact(last)
	for constraintFname, blockConstraint := range rcf.All() {
		if !r.haveAERV(constraintFname) {
			continue
		}
		constraintAERV := r.getAERV(constraintFname)
		if interval.Meet(blockConstraint.Interval, constraintAERV.Interval) == interval.Bot {
			continue
		}

		for _, returnedValue := range rtf.Values() {
			returnInterval := interval.Bot
			propagateCallee := ""

			if blockConstraint.Interval != interval.Top {
				if val, isConst := constOrNull(returnedValue); isConst {
					returnInterval = interval.AbstractInt(val)
				}
			}

			if call, isCall := returnedValue.(*ir.CallInst); isCall {
				if r.haveAERV(call.Callee) {
					returnInterval = r.getAERV(call.Callee).Interval
					propagateCallee = call.Callee
				}
			} else {
				held := vf.OutFact(last).GetHeldValues(returnedValue)
				if len(held) == 1 {
					if call, ok := held[0].(*ir.CallInst); ok && r.haveAERV(call.Callee) {
						returnInterval = r.getAERV(call.Callee).Interval
						propagateCallee = call.Callee
					}
				}
			}

			contribution := interval.Constraint{Fname: f.Name, Interval: returnInterval}
			if r.setAERV(f.Name, contribution) {
				changed = true
				if propagateCallee != "" {
					r.addEdge(propagateCallee, f.Name)
				}
			}
		}
	}

	return changed
}

// addErrorValue seeds fname's AERV with the abstraction of a concrete
// error-return constant, returning whether the AERV changed.
func (r *Result) addErrorValue(fname string, v int64) bool {
	return r.setAERV(fname, interval.Constraint{Fname: fname, Interval: interval.AbstractInt(v)})
}

func constOrNull(v ir.Value) (int64, bool) {
	switch c := v.(type) {
	case *ir.ConstInt:
		return c.Val, true
	case *ir.ConstNull:
		return 0, true
	default:
		return 0, false
	}
}
