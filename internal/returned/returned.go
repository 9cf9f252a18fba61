// Package returned implements the returned-values analysis: a backward
// intra-procedural dataflow computing, at each program point, the set of
// SSA values that can reach some return instruction.
package returned

import "eesi/internal/ir"

// errIdioms names the kernel-style helpers whose first argument propagates
// through the call as if it were directly returned. ERR_CAST is folded
// in here as an alias of PTR_ERR rather than a separate branch, since
// both idioms extract the same wrapped pointer.
var errIdioms = []string{"ERR_PTR", "IS_ERR", "PTR_ERR", "ERR_CAST"}

func matchesIdiom(name string) bool {
	for _, idiom := range errIdioms {
		if contains(name, idiom) {
			return true
		}
	}
	return false
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// Fact is the per-instruction returned-values fact: the set of SSA values
// that can reach a return from this point forward.
type Fact struct {
	vals map[ir.Value]bool
}

func newFact() *Fact { return &Fact{vals: map[ir.Value]bool{}} }

func (f *Fact) clone() *Fact {
	out := newFact()
	for v := range f.vals {
		out.vals[v] = true
	}
	return out
}

func (f *Fact) equal(other *Fact) bool {
	if len(f.vals) != len(other.vals) {
		return false
	}
	for v := range f.vals {
		if !other.vals[v] {
			return false
		}
	}
	return true
}

// Values returns the set of values the fact holds.
func (f *Fact) Values() []ir.Value {
	out := make([]ir.Value, 0, len(f.vals))
	for v := range f.vals {
		out = append(out, v)
	}
	return out
}

// Len reports the number of candidate return values in the fact.
func (f *Fact) Len() int { return len(f.vals) }

func (f *Fact) join(other *Fact) {
	for v := range other.vals {
		f.vals[v] = true
	}
}

func (f *Fact) insert(v ir.Value)  { f.vals[v] = true }
func (f *Fact) remove(v ir.Value)  { delete(f.vals, v) }
func (f *Fact) contains(v ir.Value) bool { return f.vals[v] }

// Edge is a propagation edge callee -> caller recorded when a call result
// can reach the caller's return.
type Edge struct {
	Callee, Caller string
}

// Analysis holds the per-instruction facts and the set of propagation
// edges discovered while computing them.
type Analysis struct {
	in, out map[ir.Instruction]*Fact
	// propagated[f] is the set of callee names whose result can reach a
	// return of function f.
	propagated map[*ir.Function]map[string]bool
}

// Run executes the analysis over every function in m.
func Run(m *ir.Module) *Analysis {
	a := &Analysis{
		in:         map[ir.Instruction]*Fact{},
		out:        map[ir.Instruction]*Fact{},
		propagated: map[*ir.Function]map[string]bool{},
	}
	for _, f := range m.Functions {
		a.initFunc(f)
	}
	for _, f := range m.Functions {
		a.runFunc(f)
	}
	return a
}

func (a *Analysis) initFunc(f *ir.Function) {
	for _, blk := range f.Blocks {
		for _, inst := range blk.AllInstructions() {
			a.in[inst] = newFact()
			a.out[inst] = newFact()
		}
	}
}

// InFact returns the backward fact on entry to inst.
func (a *Analysis) InFact(inst ir.Instruction) *Fact { return a.in[inst] }

// OutFact returns the backward fact on exit from inst.
func (a *Analysis) OutFact(inst ir.Instruction) *Fact { return a.out[inst] }

// Propagated returns the set of callee names whose result can reach a
// return of f.
func (a *Analysis) Propagated(f *ir.Function) map[string]bool { return a.propagated[f] }

func (a *Analysis) addPropagated(f *ir.Function, callee string) {
	if a.propagated[f] == nil {
		a.propagated[f] = map[string]bool{}
	}
	a.propagated[f][callee] = true
}

func (a *Analysis) runFunc(f *ir.Function) {
	changed := true
	for changed {
		changed = false
		for _, blk := range f.Blocks {
			last := blk.Last()
			if last == nil {
				continue
			}
			for _, succ := range blk.Succs {
				succFirst := succ.First()
				if succFirst == nil {
					continue
				}
				a.out[last].join(a.in[succFirst])
			}
			if a.visitBlock(blk) {
				changed = true
			}
		}
	}
}

// visitBlock processes blk's instructions in reverse, as the analysis is
// backward.
func (a *Analysis) visitBlock(blk *ir.BasicBlock) bool {
	changed := false
	insts := blk.AllInstructions()
	for i := len(insts) - 1; i >= 0; i-- {
		inst := insts[i]
		var out *Fact
		if i == len(insts)-1 {
			out = a.out[inst]
		} else {
			out = a.in[insts[i+1]]
		}
		a.out[inst] = out
		in := a.in[inst]
		before := in.clone()
		a.transfer(inst, in, out)
		if !in.equal(before) {
			changed = true
		}
	}
	return changed
}

func (a *Analysis) transfer(inst ir.Instruction, in, out *Fact) {
	switch v := inst.(type) {
	case *ir.RetInst:
		in.join(out)
		if v.Val != nil {
			in.insert(v.Val)
		}
	case *ir.CallInst:
		in.join(out)
		if v.Callee == "" {
			return
		}
		if out.contains(ir.Value(v)) {
			a.addPropagated(v.Block().Func, v.Callee)
		}
		if matchesIdiom(v.Callee) && len(v.Args) > 0 && out.contains(ir.Value(v)) {
			in.insert(v.Args[0])
		}
	case *ir.StoreInst:
		in.join(out)
		in.remove(v.Addr)
		if out.contains(v.Addr) {
			in.insert(v.Val)
		}
	case *ir.LoadInst:
		in.join(out)
		in.remove(ir.Value(v))
		if out.contains(ir.Value(v)) {
			in.insert(v.Addr)
		}
	case *ir.BitCastInst:
		in.join(out)
		in.remove(ir.Value(v))
		if out.contains(ir.Value(v)) {
			in.insert(v.Operand)
		}
	case *ir.PtrToIntInst:
		in.join(out)
		in.remove(ir.Value(v))
		if out.contains(ir.Value(v)) {
			in.insert(v.Operand)
		}
	case *ir.TruncInst:
		in.join(out)
		in.remove(ir.Value(v))
		if out.contains(ir.Value(v)) {
			in.insert(v.Operand)
		}
	case *ir.SExtInst:
		in.join(out)
		in.remove(ir.Value(v))
		if out.contains(ir.Value(v)) {
			in.insert(v.Operand)
		}
	case *ir.PhiInst:
		in.join(out)
		if !out.contains(ir.Value(v)) {
			return
		}
		in.remove(ir.Value(v))
		for _, edge := range v.Incoming {
			predLast := edge.Pred.Last()
			if predLast == nil {
				continue
			}
			a.out[predLast].insert(edge.Value)
		}
	default:
		in.join(out)
	}
}
