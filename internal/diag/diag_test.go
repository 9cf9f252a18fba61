package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatIncludesLocationAndMessage(t *testing.T) {
	out := Format(Diagnostic{
		Level:    Error,
		Path:     "specs.txt",
		Line:     3,
		LineText: "spec f <00",
		Message:  "unrecognized interval token",
		Help:     "valid tokens are: bottom, <0, ==0, >0, <=0, >=0, !=0, top",
	})

	assert.Contains(t, out, "unrecognized interval token")
	assert.Contains(t, out, "specs.txt:3")
	assert.Contains(t, out, "spec f <00")
	assert.Contains(t, out, "valid tokens are")
}

func TestFormatRendersSuggestionsAndNotes(t *testing.T) {
	out := Format(Diagnostic{
		Level:       Warning,
		Path:        "errors.txt",
		Line:        1,
		Message:     "empty list",
		Suggestions: []string{`did you mean "top"?`},
		Notes:       []string{"this list seeds the error-only bootstrap set"},
	})

	assert.Contains(t, out, "try")
	assert.Contains(t, out, `did you mean "top"?`)
	assert.Contains(t, out, "note:")
	assert.Contains(t, out, "this list seeds the error-only bootstrap set")
}

func TestSuggestFindsCloseCandidates(t *testing.T) {
	candidates := []string{"bottom", "<0", "==0", ">0", "<=0", ">=0", "!=0", "top"}

	assert.Contains(t, Suggest("bottm", candidates), "bottom")
	assert.Contains(t, Suggest("tpo", candidates), "top")
	assert.Empty(t, Suggest("completely-unrelated", candidates))
}

func TestLineNumberWidthHasMinimumThree(t *testing.T) {
	assert.Equal(t, 3, lineNumberWidth(1))
	assert.Equal(t, 3, lineNumberWidth(42))
	assert.Equal(t, 4, lineNumberWidth(1000))
}

func TestFormatOmitsEmptySections(t *testing.T) {
	out := Format(Diagnostic{Level: Error, Path: "f.txt", Line: 1, Message: "boom"})

	assert.False(t, strings.Contains(out, "help:"))
	assert.False(t, strings.Contains(out, "note:"))
}
