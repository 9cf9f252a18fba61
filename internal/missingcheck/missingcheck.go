// Package missingcheck implements missing-error-check detection: given a
// finalized specification for some functions, it classifies every call
// site to a specced function as checked or unchecked, and flags the
// "inconsistent error handling" pattern where a call to a known
// error-only function sits in a block reached only on the success path of
// a nearby call to a specced function.
package missingcheck

import (
	"eesi/internal/branchconstraint"
	"eesi/internal/interval"
	"eesi/internal/ir"
	"eesi/internal/valueflow"
)

// DefaultMaxDistance is the instruction-count window used by default for
// the inconsistent-error-handling heuristic.
const DefaultMaxDistance = 25

// CallSite is one call to a specced function, classified as checked or not.
type CallSite struct {
	Callee  string
	File    string
	Line    int
	Checked bool
}

// Inconsistency is one instance of the "inconsistent error handling" bug
// pattern: a call to an error-only function sits in a block where the
// branch constraint on SuccessCallee's result (SuccessInterval) does not
// overlap its specification (ErrorInterval), no other specced callee is
// constrained onto an error path, and a call to SuccessCallee precedes it
// by at most MaxDistance instructions in module order.
type Inconsistency struct {
	ErrorOnlyCallee string
	File            string
	Line            int
	SuccessCallee   string
	SuccessInterval interval.Interval
	ErrorCallee     string
	ErrorInterval   interval.Interval
}

// Report is the complete output of a missing-check run.
type Report struct {
	// Conflated, when true, means Sites is left empty; the whole-callee
	// counters CheckedCalls/UncheckedCalls and UncheckedLocs are filled
	// either way. When false (the default), Sites additionally records one
	// entry per call to a specced function.
	Conflated bool

	CheckedCalls   map[string]int
	UncheckedCalls map[string]int
	UncheckedLocs  []CallSite
	Sites          []CallSite
	Inconsistent   []Inconsistency
}

// Options configures a Run.
type Options struct {
	Conflated   bool
	MaxDistance int
}

// Run classifies every call site to a function named in specs, and detects
// inconsistent error handling around calls to functions named in errorOnly.
func Run(m *ir.Module, specs map[string]interval.Constraint, errorOnly map[string]bool, opts Options) *Report {
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = DefaultMaxDistance
	}
	vf := valueflow.Run(m)
	bc := branchconstraint.Run(m, vf)

	instNum := numberInstructions(m)
	handled := populateHandledFunctions(m, bc, specs)

	r := &Report{
		Conflated:      opts.Conflated,
		CheckedCalls:   map[string]int{},
		UncheckedCalls: map[string]int{},
	}

	for _, f := range m.Functions {
		for _, blk := range f.Blocks {
			for _, inst := range blk.Instructions {
				call, ok := inst.(*ir.CallInst)
				if !ok {
					continue
				}
				visitCallInst(r, m, f, call, specs, errorOnly, handled, vf, bc, instNum, opts.MaxDistance)
			}
		}
	}
	return r
}

// numberInstructions assigns a sequential index to every instruction in
// module order, used by the short-distance heuristic.
func numberInstructions(m *ir.Module) map[ir.Instruction]int {
	nums := map[ir.Instruction]int{}
	n := 0
	for _, f := range m.Functions {
		for _, blk := range f.Blocks {
			for _, inst := range blk.AllInstructions() {
				nums[inst] = n
				n++
			}
		}
	}
	return nums
}

// populateHandledFunctions computes, for every function f, the union of
// block-exit constraints on each specced callee that were compared against
// that callee's full specification somewhere in f.
func populateHandledFunctions(m *ir.Module, bc *branchconstraint.Analysis, specs map[string]interval.Constraint) map[*ir.Function]map[string]interval.Constraint {
	handled := map[*ir.Function]map[string]interval.Constraint{}
	for _, f := range m.Functions {
		handled[f] = map[string]interval.Constraint{}
		for _, blk := range f.Blocks {
			last := blk.Last()
			if last == nil {
				continue
			}
			rcf := bc.OutFact(last)
			for constraintFname, blockConstraint := range rcf.All() {
				spec, ok := specs[constraintFname]
				if !ok {
					continue
				}
				if blockConstraint.Interval == interval.Top {
					continue
				}
				if !(blockConstraint.Covers(spec) || spec.Covers(blockConstraint)) {
					continue
				}
				cur, ok := handled[f][constraintFname]
				if !ok {
					cur = interval.New(constraintFname)
				}
				handled[f][constraintFname] = cur.Join(blockConstraint)
			}
		}
	}
	return handled
}

func visitCallInst(
	r *Report,
	m *ir.Module,
	parent *ir.Function,
	call *ir.CallInst,
	specs map[string]interval.Constraint,
	errorOnly map[string]bool,
	handled map[*ir.Function]map[string]interval.Constraint,
	vf *valueflow.Analysis,
	bc *branchconstraint.Analysis,
	instNum map[ir.Instruction]int,
	maxDistance int,
) {
	fname := call.Callee

	if errorOnly[fname] {
		checkInconsistency(r, m, call, specs, bc, instNum, maxDistance)
	}

	if _, ok := specs[fname]; !ok {
		return
	}

	checked := false
	for _, blk := range parent.Blocks {
		for _, inst := range blk.AllInstructions() {
			inputFact := vf.InFact(inst)
			switch v := inst.(type) {
			case *ir.ICmpInst:
				if checkIsSufficient(v, call, specs, handled, vf) {
					checked = true
				}
			case *ir.RetInst:
				if v.Val != nil && inputFact.ValueMayHold(v.Val, call) {
					checked = true
				}
			case *ir.CallInst:
				if contains(v.Callee, "IS_ERR") {
					for _, arg := range v.Args {
						if inputFact.ValueMayHold(arg, call) {
							checked = true
						}
					}
				}
			case *ir.SwitchInst:
				if inputFact.ValueMayHold(v.Cond, call) {
					checked = true
				}
			}
		}
	}

	file, line, _ := ir.DebugLoc(call)
	site := CallSite{Callee: fname, File: file, Line: line, Checked: checked}

	if checked {
		r.CheckedCalls[fname]++
	} else {
		r.UncheckedCalls[fname]++
		r.UncheckedLocs = append(r.UncheckedLocs, site)
	}
	if !r.Conflated {
		r.Sites = append(r.Sites, site)
	}
}

// checkIsSufficient reports whether an operand of icmp may hold call's
// result and the handled union for call's callee in icmp's function
// covers the callee's specification.
func checkIsSufficient(
	icmp *ir.ICmpInst,
	call *ir.CallInst,
	specs map[string]interval.Constraint,
	handled map[*ir.Function]map[string]interval.Constraint,
	vf *valueflow.Analysis,
) bool {
	fname := call.Callee
	spec, ok := specs[fname]
	if !ok {
		return false
	}
	parent := icmp.Block().Func
	inputFact := vf.InFact(icmp)

	for _, op := range []ir.Value{icmp.Left, icmp.Right} {
		if !inputFact.ValueMayHold(op, call) {
			continue
		}
		checkedUnions, ok := handled[parent]
		if !ok {
			continue
		}
		checkedUnion, ok := checkedUnions[fname]
		if !ok {
			continue
		}
		if checkedUnion.Covers(spec) {
			return true
		}
	}
	return false
}

// checkInconsistency records eoCall, a call to a known error-only
// function, when its block's branch constraints put some specced callee on
// its success path and none on an error path, and a call to that callee
// precedes eoCall by at most maxDistance instructions.
func checkInconsistency(
	r *Report,
	m *ir.Module,
	eoCall *ir.CallInst,
	specs map[string]interval.Constraint,
	bc *branchconstraint.Analysis,
	instNum map[ir.Instruction]int,
	maxDistance int,
) {
	last := eoCall.Block().Last()
	if last == nil {
		return
	}
	rcf := bc.OutFact(last)

	haveSuccess := false
	haveNoError := true
	var successConstraint, errorSpec interval.Constraint

	for constraintFname, blockConstraint := range rcf.All() {
		spec, ok := specs[constraintFname]
		if !ok {
			continue
		}
		if blockConstraint.Interval == interval.Top {
			continue
		}
		if interval.Meet(blockConstraint.Interval, spec.Interval) == interval.Bot {
			haveSuccess = true
			successConstraint = blockConstraint
			errorSpec = spec
		} else {
			haveNoError = false
		}
	}

	if !haveSuccess || !haveNoError {
		return
	}

	shortDistance := false
	eoNum := instNum[eoCall]
	for _, f := range m.Functions {
		for _, blk := range f.Blocks {
			for _, inst := range blk.Instructions {
				call, ok := inst.(*ir.CallInst)
				if !ok || call.Callee != successConstraint.Fname {
					continue
				}
				if instNum[call] > eoNum {
					continue
				}
				if eoNum-instNum[call] <= maxDistance {
					shortDistance = true
				}
			}
		}
	}
	if !shortDistance {
		return
	}

	file, line, _ := ir.DebugLoc(eoCall)
	r.Inconsistent = append(r.Inconsistent, Inconsistency{
		ErrorOnlyCallee: eoCall.Callee,
		File:            file,
		Line:            line,
		SuccessCallee:   successConstraint.Fname,
		SuccessInterval: successConstraint.Interval,
		ErrorCallee:     errorSpec.Fname,
		ErrorInterval:   errorSpec.Interval,
	})
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
