package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eesi/internal/interval"
	"eesi/internal/ir"
)

// TestErrorOnlyCallSeedsCallerAERV builds a caller that invokes a
// declared error-only function and then returns a constant of its own;
// the call-site seeding step should fold that downstream constant into
// the caller's own AERV and mark it bootstrap-seeded.
func TestErrorOnlyCallSeedsCallerAERV(t *testing.T) {
	b := ir.NewBuilder()
	fail := b.Func("fail_open", false)
	fEntry := b.Block(fail, "entry")
	ir.Terminate(fEntry, &ir.RetInst{Val: &ir.ConstInt{Val: -5}})

	caller := b.Func("caller", false)
	cEntry := b.Block(caller, "entry")
	call := &ir.CallInst{Callee: "fail_open"}
	ir.Append(cEntry, call)
	ir.Terminate(cEntry, &ir.RetInst{Val: &ir.ConstInt{Val: -7}})

	m := b.Module()
	errorOnly := map[string]bool{"fail_open": true}

	result := Run(m, errorOnly, map[string]interval.Constraint{}, map[int64]bool{})

	assert.Equal(t, interval.Ltz, result.AERV["caller"].Interval)
	assert.True(t, result.Bootstrap["caller"])
}

// TestConstraintPropagationThroughCaller models a caller that branches on
// a callee whose known error interval is Zero, returns a negative constant
// down the path where the callee returned Zero, and checks that the
// caller's AERV absorbs the contribution. The caller returns a constant,
// not a value held by the callee's result, so no propagation edge is
// recorded. The other path is infeasible given the callee's known
// interval and must not contribute.
func TestConstraintPropagationThroughCaller(t *testing.T) {
	b := ir.NewBuilder()
	inner := b.Func("alloc", false)
	iEntry := b.Block(inner, "entry")
	ir.Terminate(iEntry, &ir.RetInst{Val: &ir.ConstNull{}})

	caller := b.Func("wrapper", false)
	entry := b.Block(caller, "entry")
	errBlk := b.Block(caller, "err")
	okBlk := b.Block(caller, "ok")

	call := &ir.CallInst{Callee: "alloc"}
	ir.Append(entry, call)
	icmp := &ir.ICmpInst{Pred: ir.EQ, Left: call, Right: &ir.ConstNull{}}
	ir.Append(entry, icmp)
	ir.Terminate(entry, &ir.BrInst{Cond: icmp, TrueBlk: errBlk, FalseBlk: okBlk})

	ir.Terminate(errBlk, &ir.RetInst{Val: &ir.ConstInt{Val: -12}})
	ir.Terminate(okBlk, &ir.RetInst{Val: &ir.ConstInt{Val: 0}})

	m := b.Module()
	errorOnly := map[string]bool{}
	seed := map[string]interval.Constraint{
		"alloc": {Fname: "alloc", Interval: interval.Zero},
	}

	result := Run(m, errorOnly, seed, map[int64]bool{})

	assert.Equal(t, interval.Ltz, result.AERV["wrapper"].Interval)
	assert.NotContains(t, result.Edges, Edge{From: "alloc", To: "wrapper"})
}
