// Package diag renders the tool's three classes of diagnostic: malformed
// configuration input (a parse error in one of the input text files), a
// fatal failure to load the IR module, and a soundness warning emitted
// when an input leaves the analysis with nothing to seed from (an empty
// error-only list or specs file).
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a Diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
	Help    Level = "help"
)

// Diagnostic is a single structured message pointing at a line of a
// configuration file: the error-only list, the seed-specs
// file, or a finalized-specs file fed back in as input.
type Diagnostic struct {
	Level       Level
	Path        string
	Line        int
	LineText    string
	Message     string
	Suggestions []string
	Notes       []string
	Help        string
}

// Format renders d as a leveled header, a --> location line, the
// offending line of text, and any suggestions/notes/help.
func Format(d Diagnostic) string {
	var b strings.Builder

	levelColor := levelColor(d.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	b.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(d.Level)), d.Message))

	width := lineNumberWidth(d.Line)
	indent := strings.Repeat(" ", width)

	b.WriteString(fmt.Sprintf("%s %s %s:%d\n", indent, dim("-->"), d.Path, d.Line))
	b.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if d.LineText != "" {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, d.Line)), dim("│"), d.LineText))
	}

	if len(d.Suggestions) > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		help := color.New(color.FgCyan).SprintFunc()
		for i, s := range d.Suggestions {
			if i == 0 {
				b.WriteString(fmt.Sprintf("%s %s %s: %s\n", indent, help("help"), help("try"), s))
			} else {
				b.WriteString(fmt.Sprintf("%s %s %s\n", indent, help("    "), s))
			}
		}
	}

	for _, note := range d.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note))
	}

	if d.Help != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), helpColor("help:"), d.Help))
	}

	return b.String()
}

func levelColor(l Level) func(...interface{}) string {
	switch l {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		return 3
	}
	return w
}

// Suggest returns the entries of candidates within edit distance 2 of
// token, used to turn a malformed interval token in a seed-specs file
// into a "did you mean" suggestion instead of a bare parse
// failure.
func Suggest(token string, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if levenshtein(token, c) <= 2 {
			out = append(out, c)
		}
	}
	return out
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
