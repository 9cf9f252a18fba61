// Package valueflow implements the pointer-aware value-flow analysis: a
// forward intra-procedural dataflow tracking, for every storage
// location, the set of call-result identities it may currently hold.
package valueflow

import "eesi/internal/ir"

// MemVal is either a concrete SSA value tag or a synthetic reference tag
// created the first time memory is discovered. Synthetic
// reference tags are distinguished by ref=true and compare equal only to
// themselves (via their unique idx), or — for GEP-derived tags — by the
// (idx, field1, field2) triple.
type MemVal struct {
	value ir.Value // nil when ref is true
	ref   bool
	idx   int
	idx1  int64
	idx2  int64
	has1  bool
	has2  bool
}

func fromValue(v ir.Value) MemVal { return MemVal{value: v} }

func fromRef(idx int) MemVal { return MemVal{ref: true, idx: idx} }

// withIndices returns a GEP-derived tag: the same base identity, annotated
// with up to two levels of constant field indices.
func (m MemVal) withIndices(idx1 int64, has1 bool, idx2 int64, has2 bool) MemVal {
	m.idx1, m.has1 = idx1, has1
	m.idx2, m.has2 = idx2, has2
	return m
}

// IsRef reports whether m is a synthetic reference tag rather than a tag
// for a concrete SSA value.
func (m MemVal) IsRef() bool { return m.ref }

// Value returns the concrete SSA value this tag names. Valid only when
// !IsRef().
func (m MemVal) Value() ir.Value { return m.value }

// Fact is the per-instruction value-flow fact: a map from storage location
// to the set of values it may currently hold.
type Fact struct {
	vals map[MemVal]map[MemVal]bool
}

func newFact() *Fact { return &Fact{vals: make(map[MemVal]map[MemVal]bool)} }

func (f *Fact) clone() *Fact {
	out := newFact()
	for k, set := range f.vals {
		cp := make(map[MemVal]bool, len(set))
		for v := range set {
			cp[v] = true
		}
		out.vals[k] = cp
	}
	return out
}

func (f *Fact) get(k MemVal) map[MemVal]bool {
	if s, ok := f.vals[k]; ok {
		return s
	}
	return nil
}

func (f *Fact) set(k MemVal, set map[MemVal]bool) {
	f.vals[k] = set
}

func (f *Fact) has(k MemVal) bool {
	_, ok := f.vals[k]
	return ok
}

func singleton(v MemVal) map[MemVal]bool { return map[MemVal]bool{v: true} }

// equal reports whether two facts hold identical maps, used to detect a
// fixed point.
func (f *Fact) equal(other *Fact) bool {
	if len(f.vals) != len(other.vals) {
		return false
	}
	for k, set := range f.vals {
		oset, ok := other.vals[k]
		if !ok || len(set) != len(oset) {
			return false
		}
		for v := range set {
			if !oset[v] {
				return false
			}
		}
	}
	return true
}

// join merges another fact into f in place: pointwise union of every
// MemVal -> set(MemVal) entry.
func (f *Fact) join(other *Fact) {
	for k, set := range other.vals {
		dst := f.vals[k]
		if dst == nil {
			dst = make(map[MemVal]bool, len(set))
			f.vals[k] = dst
		}
		for v := range set {
			dst[v] = true
		}
	}
}

// ValueMayHold reports whether v's fact (at some instruction) may hold
// call's result identity.
func (f *Fact) ValueMayHold(v ir.Value, call ir.Instruction) bool {
	set := f.get(fromValue(v))
	if set == nil {
		return false
	}
	return set[fromValue(call)]
}

// GetHeldValues returns the non-reference tags v's fact may hold: the
// concrete SSA values (not synthetic references) v may currently carry.
func (f *Fact) GetHeldValues(v ir.Value) []ir.Value {
	set := f.get(fromValue(v))
	var out []ir.Value
	for mv := range set {
		if !mv.IsRef() {
			out = append(out, mv.value)
		}
	}
	return out
}

// Analysis holds the per-instruction input/output facts for a whole
// module, once Run below has reached a fixed point per function.
type Analysis struct {
	in, out map[ir.Instruction]*Fact
	nextRef int
}

// Run executes the analysis over every function in m and returns the
// populated Analysis.
func Run(m *ir.Module) *Analysis {
	a := &Analysis{in: map[ir.Instruction]*Fact{}, out: map[ir.Instruction]*Fact{}}
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
		out.vals[k] = cloneSet(v)
	}
	switch v := inst.(type) {
	case *ir.CallInst:
		if v.Intrinsic {
			return
		}
		self := fromValue(v)
		out.set(self, singleton(self))
	case *ir.LoadInst:
		a.findOrCreate(out, fromValue(v.Addr))
		loadTo := out.get(fromValue(v))
		if loadTo == nil {
			loadTo = map[MemVal]bool{}
			out.set(fromValue(v), loadTo)
		}
		for deref := range out.get(fromValue(v.Addr)) {
			a.findOrCreate(out, deref)
			for dv := range out.get(deref) {
				loadTo[dv] = true
			}
		}
	case *ir.StoreInst:
		receiverVals := a.findOrCreate(out, fromValue(v.Addr))
		for loc := range receiverVals {
			var newVal map[MemVal]bool
			sender := fromValue(v.Val)
			if sv, ok := out.vals[sender]; ok {
				newVal = cloneSet(sv)
			} else {
				newVal = singleton(sender)
			}
			out.set(loc, newVal)
		}
	case *ir.BitCastInst:
		out.set(fromValue(v), singleton(fromValue(v.Operand)))
	case *ir.PtrToIntInst:
		out.set(fromValue(v), singleton(fromValue(v.Operand)))
	case *ir.BinaryInst:
		out.set(fromValue(v), singleton(fromValue(v.Left)))
	case *ir.GEPInst:
		out.set(fromValue(v), a.calculateGEP(out, v))
	case *ir.AllocaInst:
		a.findOrCreate(out, fromValue(v))
	case *ir.PhiInst:
		set := map[MemVal]bool{}
		for _, edge := range v.Incoming {
			set[fromValue(edge.Value)] = true
		}
		out.set(fromValue(v), set)
	default:
		// identity transfer: out already carries in's facts verbatim.
	}
}

func cloneSet(s map[MemVal]bool) map[MemVal]bool {
	cp := make(map[MemVal]bool, len(s))
	for k := range s {
		cp[k] = true
	}
	return cp
}

// findOrCreate returns the fact's current value set for k, allocating a
// fresh singleton reference tag the first time k is referenced.
func (a *Analysis) findOrCreate(f *Fact, k MemVal) map[MemVal]bool {
	if !f.has(k) {
		ref := fromRef(a.nextRef)
		a.nextRef++
		f.set(k, singleton(ref))
	}
	return f.get(k)
}

// calculateGEP computes the set of memory locations a GEP may address
//. Non-constant indices force a fresh reference tag.
func (a *Analysis) calculateGEP(f *Fact, g *ir.GEPInst) map[MemVal]bool {
	if !g.HasIdx1 || !g.HasIdx2 {
		ref := fromRef(a.nextRef)
		a.nextRef++
		return singleton(ref)
	}
	baseSet := a.findOrCreate(f, fromValue(g.Base))
	ret := map[MemVal]bool{}
	for base := range baseSet {
		ret[base.withIndices(g.Idx1, true, g.Idx2, true)] = true
	}
	return ret
}
