package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInlineFoldsNewlinesAndTabs(t *testing.T) {
	input := "\x1b]8;;https://evil\x07click\x1b]8;;\x07\nline\tmore"
	out := SanitizeInline(input)

	assert.False(t, strings.Contains(out, "\x1b"))
	assert.False(t, strings.Contains(out, "\n"))
	assert.False(t, strings.Contains(out, "\t"))
	// Folded separators keep the words apart.
	assert.Contains(t, out, "line more")
}

func TestSanitizeTextKeepsNewlines(t *testing.T) {
	out := SanitizeText("line1\nline2\tend")
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, "\t")
}

func TestSanitizeTextRemovesBidiControls(t *testing.T) {
	input := "safe‮exe.txt"
	out := SanitizeText(input)

	assert.NotContains(t, out, "‮")
}

func TestSanitizeInlineRemovesBidiControls(t *testing.T) {
	out := SanitizeInline("tag⁦name⁩")
	assert.Equal(t, "tagname", out)
}
