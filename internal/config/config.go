// Package config reads the plain-text input files used to seed error
// inference: the error-only function list, a seed-specs file, and a
// finalized-specs file fed back in as input to missing-check detection.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"eesi/internal/diag"
	"eesi/internal/interval"
)

// canonicalTokens is the full vocabulary Suggest compares a malformed
// token against.
var canonicalTokens = []string{"bottom", "<0", "==0", ">0", "<=0", ">=0", "!=0", "top"}

// ReadErrorOnly reads a newline-separated list of function names known to
// return only on error. Blank lines are ignored.
func ReadErrorOnly(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening error-only file: %w", err)
	}
	defer f.Close()

	set := map[string]bool{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		set[line] = true
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading error-only file: %w", err)
	}
	if len(set) == 0 {
		diag.Soundness("error-only function list at %s is empty", path)
	}
	return set, nil
}

// ReadSpecs reads the finalized-specs file fed back as input to
// missing-check detection: one entry per line of the form
// "<label> <function> <interval-token>". label is unused by this tool
// but required for the on-disk format's field alignment with the
// upstream three-column convention.
func ReadSpecs(path string) (map[string]interval.Constraint, error) {
	return readSpecsFile(path, "<label> <function> <interval>", func(fields []string) (string, string, bool) {
		if len(fields) < 3 {
			return "", "", false
		}
		return fields[1], fields[2], true
	})
}

// ReadSeedSpecs reads the seed-specs file used to pre-seed inference (the
// --inputspecs flag): one entry per line of the form
// "<function> <interval-token>", two fields, with no leading label.
func ReadSeedSpecs(path string) (map[string]interval.Constraint, error) {
	return readSpecsFile(path, "<function> <interval>", func(fields []string) (string, string, bool) {
		if len(fields) < 2 {
			return "", "", false
		}
		return fields[0], fields[1], true
	})
}

// readSpecsFile scans path line by line, skipping blanks, and hands each
// non-blank line's whitespace-separated fields to extract, which returns
// the function name and interval token (or ok=false if the line doesn't
// have enough fields). wantShape describes the expected line shape for
// diagnostics.
func readSpecsFile(path, wantShape string, extract func(fields []string) (fname, token string, ok bool)) (map[string]interval.Constraint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening specs file: %w", err)
	}
	defer f.Close()

	specs := map[string]interval.Constraint{}
	sc := bufio.NewScanner(f)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)
		fname, token, ok := extract(fields)
		if !ok {
			fmt.Fprint(os.Stderr, diag.Format(diag.Diagnostic{
				Level:    diag.Error,
				Path:     path,
				Line:     lineNum,
				LineText: line,
				Message:  fmt.Sprintf("malformed specs line: expected %q", wantShape),
				Help:     "each line needs whitespace-separated fields matching that shape",
			}))
			return nil, fmt.Errorf("%s:%d: malformed specs line", path, lineNum)
		}

		parsed, ok := interval.Parse(token)
		if !ok {
			d := diag.Diagnostic{
				Level:    diag.Error,
				Path:     path,
				Line:     lineNum,
				LineText: line,
				Message:  fmt.Sprintf("unrecognized interval token %q", token),
				Help:     "valid tokens are: bottom, <0, ==0, >0, <=0, >=0, !=0, top",
			}
			if similar := diag.Suggest(token, canonicalTokens); len(similar) > 0 {
				d.Suggestions = []string{fmt.Sprintf("did you mean %q?", similar[0])}
			}
			fmt.Fprint(os.Stderr, diag.Format(d))
			return nil, fmt.Errorf("%s:%d: unrecognized interval token %q", path, lineNum, token)
		}

		specs[fname] = interval.Constraint{Fname: fname, Interval: parsed}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading specs file: %w", err)
	}
	if len(specs) == 0 {
		diag.Soundness("specs file at %s is empty", path)
	}
	return specs, nil
}

// DefaultErrorCodes returns the prima-facie error-code seed set: the negated POSIX errno range, the convention the kernel
// idioms this tool models (ERR_PTR and friends) are built around.
func DefaultErrorCodes() map[int64]bool {
	codes := make(map[int64]bool, 133)
	for i := int64(1); i <= 133; i++ {
		codes[-i] = true
	}
	return codes
}
