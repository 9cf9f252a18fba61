// Package report renders the tool's analysis results to an io.Writer: a
// flat specs listing, two propagation digraphs, a missing-checks report,
// and the defined/called-functions listings.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"eesi/internal/inference"
	"eesi/internal/ir"
	"eesi/internal/missingcheck"
	"eesi/internal/returned"
)

// Specs prints one "name: name interval" line per function with an
// inferred AERV, sorted by name for reproducible output. The three-field
// lines can be read back by config.ReadSpecs.
func Specs(w io.Writer, result *inference.Result) {
	for _, fname := range sortedKeys(result.AERV) {
		fmt.Fprintf(w, "%s: %s %s\n", fname, fname, result.AERV[fname].Interval)
	}
}

// ErrorPropagation prints the error-propagation edge set as a Graphviz
// digraph, tagging error-only-bootstrapped functions with "(EO)".
func ErrorPropagation(w io.Writer, result *inference.Result) {
	fmt.Fprintln(w, "digraph error_prop {")
	for _, e := range result.Edges {
		from := label(result, e.From)
		to := label(result, e.To)
		fmt.Fprintf(w, "\t%q -> %q\n", from, to)
	}
	fmt.Fprintln(w, "}")
}

func label(result *inference.Result, fname string) string {
	spec := result.AERV[fname]
	name := fname
	if result.Bootstrap[fname] {
		name += "(EO)"
	}
	return fmt.Sprintf("%s %s", name, spec.Interval)
}

// FullPropagation prints the full (not error-restricted) returned-values
// propagation graph: every function pair where one's call result can
// reach the other's return, whether or not either side has any known
// error semantics. Each side is labeled with its inferred AERV when one
// is known. Function names containing "." (compiler-generated clones and
// intrinsics) are filtered out of both sides of the relation.
func FullPropagation(w io.Writer, m *ir.Module, rv *returned.Analysis, result *inference.Result) {
	fmt.Fprintln(w, "digraph full_prop {")
	for _, f := range m.Functions {
		if strings.Contains(f.Name, ".") {
			continue
		}
		for _, callee := range sortedKeys(rv.Propagated(f)) {
			if strings.Contains(callee, ".") {
				continue
			}
			fmt.Fprintf(w, "\t%q -> %q\n", fullPropLabel(result, callee), fullPropLabel(result, f.Name))
		}
	}
	fmt.Fprintln(w, "}")
}

func fullPropLabel(result *inference.Result, fname string) string {
	if c, ok := result.AERV[fname]; ok {
		return fmt.Sprintf("%s(%s)", fname, c.Interval)
	}
	return fname
}

// Bugs prints the missing-check report: one line per unchecked call site
// ("loc fname unchecked checked", the counts being per callee), followed,
// unless rep.Conflated, by one "site" line per call to a specced function,
// followed by any inconsistent-error-handling findings.
func Bugs(w io.Writer, rep *missingcheck.Report) {
	for _, loc := range rep.UncheckedLocs {
		fmt.Fprintf(w, "%s:%d %s %d %d\n",
			loc.File, loc.Line, loc.Callee,
			rep.UncheckedCalls[loc.Callee], rep.CheckedCalls[loc.Callee])
	}

	if !rep.Conflated {
		for _, site := range rep.Sites {
			fmt.Fprintf(w, "site %s:%d %s checked=%t\n", site.File, site.Line, site.Callee, site.Checked)
		}
	}

	for _, inc := range rep.Inconsistent {
		fmt.Fprintf(w, "inconsistent %s:%d %s success=%s(%s) error=%s(%s)\n",
			inc.File, inc.Line, inc.ErrorOnlyCallee,
			inc.SuccessCallee, inc.SuccessInterval,
			inc.ErrorCallee, inc.ErrorInterval)
	}
}

// DefinedFunctions prints the name of every function in m with a body.
func DefinedFunctions(w io.Writer, m *ir.Module) {
	for _, f := range m.Functions {
		if f.Defined() {
			fmt.Fprintln(w, f.Name)
		}
	}
}

// CalledFunctions prints the name of every distinct function named by a
// call instruction anywhere in m.
func CalledFunctions(w io.Writer, m *ir.Module) {
	seen := map[string]bool{}
	var names []string
	for _, f := range m.Functions {
		for _, blk := range f.Blocks {
			for _, inst := range blk.Instructions {
				call, ok := inst.(*ir.CallInst)
				if !ok || call.Callee == "" || seen[call.Callee] {
					continue
				}
				seen[call.Callee] = true
				names = append(names, call.Callee)
			}
		}
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
