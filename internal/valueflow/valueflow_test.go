package valueflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eesi/internal/ir"
)

// TestCallThenLoadHoldsCallResult builds: %c = call f(); store %c, %slot;
// %v = load %slot; ret %v — the value-flow fact after the load should show
// %v may hold %c.
func TestCallThenLoadHoldsCallResult(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Func("caller", false)
	entry := b.Block(f, "entry")

	call := &ir.CallInst{Callee: "f"}
	ir.Append(entry, call)

	alloc := &ir.AllocaInst{}
	ir.Append(entry, alloc)

	store := &ir.StoreInst{Val: call, Addr: alloc}
	ir.Append(entry, store)

	load := &ir.LoadInst{Addr: alloc}
	ir.Append(entry, load)

	ir.Terminate(entry, &ir.RetInst{Val: load})

	a := Run(b.Module())

	held := a.OutFact(load).GetHeldValues(load)
	assert.Contains(t, held, ir.Value(call))
}

// TestBitCastPreservesIdentity checks that a bitcast of a call result is
// treated as the same identity for value-flow purposes.
func TestBitCastPreservesIdentity(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Func("caller", false)
	entry := b.Block(f, "entry")

	call := &ir.CallInst{Callee: "f"}
	ir.Append(entry, call)

	cast := &ir.BitCastInst{Operand: call}
	ir.Append(entry, cast)

	ir.Terminate(entry, &ir.RetInst{Val: cast})

	a := Run(b.Module())

	held := a.OutFact(cast).GetHeldValues(cast)
	assert.Contains(t, held, ir.Value(call))
}

// TestPhiMergesBothPaths merges two distinct call results at a join point
// and confirms the phi fact holds both (needed so branchconstraint and
// inference can see either path's callee through the merge).
func TestPhiMergesBothPaths(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Func("caller", false)
	entry := b.Block(f, "entry")
	left := b.Block(f, "left")
	right := b.Block(f, "right")
	join := b.Block(f, "join")

	ir.Terminate(entry, &ir.BrInst{TrueBlk: left, FalseBlk: right, Cond: &ir.ICmpInst{Pred: ir.EQ, Left: &ir.Arg{Name: "x"}, Right: &ir.ConstInt{Val: 0}}})

	callLeft := &ir.CallInst{Callee: "f"}
	ir.Append(left, callLeft)
	ir.Terminate(left, &ir.BrInst{TrueBlk: join})

	callRight := &ir.CallInst{Callee: "g"}
	ir.Append(right, callRight)
	ir.Terminate(right, &ir.BrInst{TrueBlk: join})

	phi := &ir.PhiInst{Incoming: []ir.PhiEdge{
		{Value: callLeft, Pred: left},
		{Value: callRight, Pred: right},
	}}
	ir.Append(join, phi)
	ir.Terminate(join, &ir.RetInst{Val: phi})

	a := Run(b.Module())

	held := a.OutFact(phi).GetHeldValues(phi)
	assert.Contains(t, held, ir.Value(callLeft))
	assert.Contains(t, held, ir.Value(callRight))
}
