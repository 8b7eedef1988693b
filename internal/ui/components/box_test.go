package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestBoxWidthBounds(t *testing.T) {
	assert.Equal(t, 40, boxWidth(10))
	assert.Equal(t, 80, boxWidth(200))
	assert.Equal(t, 70, boxWidth(100))
}

func TestBoxNarrowTerminalClampsWidth(t *testing.T) {
	out := TitledBox("Queue", "line", 20)
	overflow := false
	for _, line := range strings.Split(out, "\n") {
		if lipgloss.Width(line) > 20 {
			overflow = true
			break
		}
	}
	assert.False(t, overflow)
}

func TestTitledBoxIncludesTitle(t *testing.T) {
	out := TitledBox("Tag Library", "Content", 80)
	assert.True(t, strings.Contains(out, "Tag Library"))
}

func TestTitledBoxEmptyTitleFallsBack(t *testing.T) {
	out := TitledBox("", "Content", 80)
	assert.True(t, strings.Contains(out, "Content"))
}

func TestErrorBoxIncludesMessage(t *testing.T) {
	out := ErrorBox("Error", "Something broke", 80)
	assert.True(t, strings.Contains(out, "Something broke"))
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "", truncateWidth("hello", 0))
	assert.Equal(t, "he", truncateWidth("hello", 2))

	// CJK runes occupy two columns; a rune that would straddle the cut is
	// dropped rather than overflowing.
	assert.Equal(t, "", truncateWidth("猫娘", 1))
	assert.Equal(t, "猫", truncateWidth("猫娘", 2))
	assert.Equal(t, "猫", truncateWidth("猫娘", 3))
}

func TestClampTextWidthCountsColumns(t *testing.T) {
	// Four CJK tags are eight columns wide.
	assert.Equal(t, "猫娘", ClampTextWidth("猫娘珈琲", 5))
	assert.Equal(t, "猫娘珈琲", ClampTextWidth("猫娘珈琲", 8))
}

func TestClampTextWidthEllipsis(t *testing.T) {
	assert.Equal(t, "long_tag_…", ClampTextWidthEllipsis("long_tag_name", 10))
	assert.Equal(t, "short", ClampTextWidthEllipsis("short", 10))
	assert.Equal(t, "猫…", ClampTextWidthEllipsis("猫娘珈琲", 3))
}

// TestTableClampsLongValues ensures table rows stay within the box width.
func TestTableClampsLongValues(t *testing.T) {
	rows := []TableRow{
		{
			Label: strings.Repeat("Label", 8),
			Value: strings.Repeat("value", 40),
		},
	}
	out := Table("Table", rows, 60)
	maxWidth := lipgloss.Width(strings.Split(Box("x", 60), "\n")[0])
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), maxWidth)
	}
}

func TestActiveBoxClampsWidth(t *testing.T) {
	out := ActiveBox("hello\nworld", 40)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
}

func TestInfoRowSanitizesLabelAndValue(t *testing.T) {
	out := InfoRow("na‮me\x1b]0;evil\x07", "va\x1b[2Jlu‮e")
	assert.NotContains(t, out, "‮")
	assert.NotContains(t, out, "\x1b]")
	assert.NotContains(t, out, "\x1b[2J")

	clean := SanitizeText(out)
	assert.Contains(t, clean, "name: value")
}

func TestIndentPreservesLineCountAndAddsPadding(t *testing.T) {
	src := "a\nb\nc"
	out := Indent(src, 2)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "  "))
	}
}

func TestCenterLineAddsLeftPadding(t *testing.T) {
	out := CenterLine("hi", 80)
	pad := (safeBoxWidth(80) - lipgloss.Width("hi")) / 2
	assert.True(t, strings.HasPrefix(out, strings.Repeat(" ", pad)))
}

func TestDiffTableRendersMultilineValuesAndSanitizes(t *testing.T) {
	out := DiffTable("Changes", []DiffRow{
		{
			Label: "Synonyms‮\x1b]0;bad\x07",
			From:  "feline\n\x1b[2Jkitty",
			To:    "feline\n‮neko",
		},
	}, 60)

	assert.NotContains(t, out, "\x1b]")
	assert.NotContains(t, out, "‮")
	assert.NotContains(t, out, "\x1b[2J")

	clean := SanitizeText(out)
	assert.Contains(t, clean, "Changes")
	assert.Contains(t, clean, "- feline")
	assert.Contains(t, clean, "kitty")
	assert.Contains(t, clean, "+ feline")
	assert.Contains(t, clean, "neko")
}

func TestMaxIntReturnsLarger(t *testing.T) {
	assert.Equal(t, 2, maxInt(1, 2))
	assert.Equal(t, 2, maxInt(2, 1))
}
