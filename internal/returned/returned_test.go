package returned

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eesi/internal/ir"
)

// TestDirectReturnIsReturnedValue: ret %c, where %c = call f(), should
// place %c in the returned-values fact on entry to the call.
func TestDirectReturnIsReturnedValue(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Func("caller", false)
	entry := b.Block(f, "entry")

	call := &ir.CallInst{Callee: "f"}
	ir.Append(entry, call)
	ir.Terminate(entry, &ir.RetInst{Val: call})

	a := Run(b.Module())

	assert.True(t, a.InFact(call).contains(ir.Value(call)))
}

// TestReturnThroughLocalVariable propagates a call result through a
// store/load pair to a return.
func TestReturnThroughLocalVariable(t *testing.T) {
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

	assert.True(t, a.InFact(store).contains(ir.Value(call)))
}

// TestErrPtrIdiomPropagatesFirstArgument checks that when the result of an
// ERR_PTR-style helper is returned, its first argument also becomes a
// returned value.
func TestErrPtrIdiomPropagatesFirstArgument(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Func("caller", false)
	entry := b.Block(f, "entry")

	code := &ir.ConstInt{Val: -12}
	wrap := &ir.CallInst{Callee: "ERR_PTR", Args: []ir.Value{code}}
	ir.Append(entry, wrap)
	ir.Terminate(entry, &ir.RetInst{Val: wrap})

	a := Run(b.Module())

	assert.True(t, a.InFact(wrap).contains(code))
}

func TestErrCastIsAliasOfPtrErr(t *testing.T) {
	assert.True(t, matchesIdiom("ERR_CAST"))
	assert.True(t, matchesIdiom("PTR_ERR"))
	assert.True(t, matchesIdiom("some_ERR_PTR_helper"))
	assert.False(t, matchesIdiom("malloc"))
}
