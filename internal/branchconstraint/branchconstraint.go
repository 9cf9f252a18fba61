// Package branchconstraint implements the branch-constraint analysis: a
// forward intra-procedural dataflow tracking, at each program point, the
// tightest known interval on each callee's result along every path that
// reaches this point.
package branchconstraint

import (
	"eesi/internal/interval"
	"eesi/internal/ir"
	"eesi/internal/valueflow"
)

// Fact is the per-instruction branch-constraint fact: callee name ->
// Constraint.
type Fact struct {
	vals map[string]interval.Constraint
}

func newFact() *Fact { return &Fact{vals: map[string]interval.Constraint{}} }

func (f *Fact) clone() *Fact {
	out := newFact()
	for k, v := range f.vals {
		out.vals[k] = v
	}
	return out
}

func (f *Fact) equal(other *Fact) bool {
	if len(f.vals) != len(other.vals) {
		return false
	}
	for k, v := range f.vals {
		ov, ok := other.vals[k]
		if !ok || ov.Interval != v.Interval {
			return false
		}
	}
	return true
}

// Get returns the Constraint known for callee at this point, or a Bot
// constraint if none has been observed.
func (f *Fact) Get(callee string) interval.Constraint {
	if c, ok := f.vals[callee]; ok {
		return c
	}
	return interval.New(callee)
}

// All returns every (callee, Constraint) pair known at this point.
func (f *Fact) All() map[string]interval.Constraint { return f.vals }

func (f *Fact) set(c interval.Constraint) { f.vals[c.Fname] = c }

// join merges another fact into f in place via per-key Constraint.Join.
func (f *Fact) join(other *Fact) {
	for k, v := range other.vals {
		if cur, ok := f.vals[k]; ok {
			f.vals[k] = cur.Join(v)
		} else {
			f.vals[k] = v
		}
	}
}

// meetInto applies Constraint.Meet for every key of other into f, used for
// the successor-refinement at conditional branches.
func (f *Fact) meetInto(other *Fact) {
	for k, v := range other.vals {
		if cur, ok := f.vals[k]; ok {
			f.vals[k] = cur.Meet(v)
		} else {
			f.vals[k] = v
		}
	}
}

// Analysis holds the per-instruction facts for a whole module.
type Analysis struct {
	in, out map[ir.Instruction]*Fact
	vf      *valueflow.Analysis
}

// Run executes the analysis over every function in m, using vf to resolve which callee results a compare's operand may hold.
func Run(m *ir.Module, vf *valueflow.Analysis) *Analysis {
	a := &Analysis{in: map[ir.Instruction]*Fact{}, out: map[ir.Instruction]*Fact{}, vf: vf}
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

// InFact returns the fact on entry to inst.
func (a *Analysis) InFact(inst ir.Instruction) *Fact { return a.in[inst] }

// OutFact returns the fact on exit from inst.
func (a *Analysis) OutFact(inst ir.Instruction) *Fact { return a.out[inst] }

func (a *Analysis) runFunc(f *ir.Function) {
	changed := true
	for changed {
		changed = false
		for _, blk := range f.Blocks {
			first := blk.First()
			if first == nil {
				continue
			}
			for _, pred := range blk.Preds {
				predLast := pred.Last()
				if predLast == nil {
					continue
				}
				a.in[first].join(a.out[predLast])
			}
			if a.visitBlock(blk) {
				changed = true
			}
		}
	}
}

func (a *Analysis) visitBlock(blk *ir.BasicBlock) bool {
	changed := false
	insts := blk.AllInstructions()
	for i, inst := range insts {
		var in *Fact
		if i == 0 {
			in = a.in[inst]
		} else {
			in = a.out[insts[i-1]]
		}
		a.in[inst] = in
		out := a.out[inst]
		before := out.clone()
		a.transfer(inst, in, out)
		if !out.equal(before) {
			changed = true
		}
	}
	return changed
}

func (a *Analysis) transfer(inst ir.Instruction, in, out *Fact) {
	for k, v := range in.vals {
		out.vals[k] = v
	}
	switch v := inst.(type) {
	case *ir.CallInst:
		if v.Callee == "" {
			return
		}
		top := interval.New(v.Callee)
		top.Interval = interval.Top
		out.set(top)
	case *ir.BrInst:
		a.visitBranch(v, out)
	default:
		// identity transfer
	}
}

func (a *Analysis) visitBranch(br *ir.BrInst, out *Fact) {
	if br.Cond == nil {
		return
	}
	icmp, ok := br.Cond.(*ir.ICmpInst)
	if !ok {
		return
	}

	trueInterval, falseInterval := interval.AbstractICmp(icmp)

	tested := valueMayHoldCalls(a.vf, icmp, icmp.Left)
	tested = append(tested, valueMayHoldCalls(a.vf, icmp, icmp.Right)...)

	for _, call := range tested {
		fname := call.Callee

		// Kill the current fact's entry so the predecessor-join above
		// does not pollute the split with a stale interval.
		killed := interval.New(fname)
		out.set(killed)

		trueC := interval.Constraint{Fname: fname, Interval: trueInterval}
		falseC := interval.Constraint{Fname: fname, Interval: falseInterval}

		trueFact := newFact()
		trueFact.set(trueC)
		falseFact := newFact()
		falseFact.set(falseC)

		if br.TrueBlk != nil {
			if first := br.TrueBlk.First(); first != nil {
				a.in[first].meetInto(trueFact)
			}
		}
		if br.FalseBlk != nil {
			if first := br.FalseBlk.First(); first != nil {
				a.in[first].meetInto(falseFact)
			}
		}
	}
}

// valueMayHoldCalls resolves the call instructions whose result v's
// pointer-aware fact (at point icmp) may hold.
func valueMayHoldCalls(vf *valueflow.Analysis, icmp *ir.ICmpInst, v ir.Value) []*ir.CallInst {
	fact := vf.InFact(icmp)
	var calls []*ir.CallInst
	for _, held := range fact.GetHeldValues(v) {
		if call, ok := held.(*ir.CallInst); ok {
			calls = append(calls, call)
		}
	}
	return calls
}
