package components

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsDelimiter reports whether r separates tags in a multi-value field.
// Tag lines mix ASCII and CJK punctuation freely, so the class covers
// whitespace (including the ideographic space) plus the three comma forms.
func IsDelimiter(r rune) bool {
	switch r {
	case ',', '，', '、':
		return true
	}
	return unicode.IsSpace(r)
}

// SplitTags returns the non-empty tokens of a delimited tag line. Delimiter
// runs of any length separate tokens and are never part of one.
func SplitTags(s string) []string {
	return strings.FieldsFunc(s, IsDelimiter)
}

// ActiveQuery returns the trailing in-progress token of a tag line: the text
// after the last delimiter, which is empty when the line ends in one.
func ActiveQuery(s string) string {
	cut := 0
	for i, r := range s {
		if IsDelimiter(r) {
			cut = i + utf8.RuneLen(r)
		}
	}
	return s[cut:]
}

// CommittedTokens returns the tokens of a tag line excluding the trailing
// in-progress one.
func CommittedTokens(s string) []string {
	active := ActiveQuery(s)
	return SplitTags(s[: len(s)-len(active)])
}

// SpliceCommit replaces the trailing in-progress token of value with tag,
// keeping every committed token and its original delimiter characters
// intact, and appends a single trailing space so typing continues fluidly.
func SpliceCommit(value, tag string) string {
	segs := splitSegments(value)

	last := len(segs) - 1
	for last >= 0 && segs[last].delim {
		last--
	}
	if last >= 0 {
		segs = segs[:last]
	} else {
		segs = nil
	}

	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(seg.text)
	}
	b.WriteString(tag)
	b.WriteString(" ")
	return b.String()
}

// segment is one run of a tag line: either a token or a delimiter run.
type segment struct {
	text  string
	delim bool
}

// splitSegments cuts a tag line into alternating token and delimiter runs.
func splitSegments(s string) []segment {
	var segs []segment
	start := 0
	var inDelim bool
	for i, r := range s {
		d := IsDelimiter(r)
		if i == 0 {
			inDelim = d
			continue
		}
		if d != inDelim {
			segs = append(segs, segment{text: s[start:i], delim: inDelim})
			start = i
			inDelim = d
		}
	}
	if start < len(s) {
		segs = append(segs, segment{text: s[start:], delim: inDelim})
	}
	return segs
}
