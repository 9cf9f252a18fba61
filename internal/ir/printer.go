package ir

import (
	"fmt"
	"strings"
)

// Print renders a module as a human-readable instruction listing, useful
// for --debugfunction tracing and tests.
func Print(m *Module) string {
	var out strings.Builder
	for _, f := range m.Functions {
		if !f.Defined() {
			fmt.Fprintf(&out, "declare %s\n", f.Name)
			continue
		}
		fmt.Fprintf(&out, "func %s {\n", f.Name)
		for _, blk := range f.Blocks {
			fmt.Fprintf(&out, "%s:\n", blk.Name)
			for _, inst := range blk.AllInstructions() {
				fmt.Fprintf(&out, "  %s\n", inst.String())
			}
		}
		out.WriteString("}\n")
	}
	return out.String()
}
