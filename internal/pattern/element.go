// Package pattern turns pattern text — a PatternDef's raw text or a
// PatternRef's carved text, both already reduced to plain runes plus a
// handful of special markers — into a sequence of graph.PatternElement,
// and assembles the three shared tries those elements get inserted into.
package pattern

import "github.com/OpenAEC-Foundation/dynlex/internal/graph"

// ParseElements turns text into a sequence of PatternElements. A literal
// '$' (typed by a pattern-definition author) and a carved U+0007 (left
// by the line parser at a call site) are both treated as an anonymous
// Variable capture — one parser serves both PatternDef.RawText and
// PatternRef.PatternText without caring which one produced the text.
func ParseElements(text string) []graph.PatternElement {
	elems, _ := parseElements(text, 0)
	return elems
}

// parseElements scans text starting at i and returns the elements found
// plus the index just past the last one consumed (always len(text) at
// the top level; recursive calls over bracket contents use it too).
func parseElements(text string, i int) ([]graph.PatternElement, int) {
	var out []graph.PatternElement
	for i < len(text) {
		c := text[i]
		switch {
		case c == '$' || c == '\x07':
			out = append(out, graph.VariableElem(""))
			i++
		case c == '{':
			if elem, end, ok := scanWordCapture(text, i); ok {
				out = append(out, elem)
				i = end
				continue
			}
			out = appendLiteral(out, "{")
			i++
		case c == '[':
			if elem, end, absorbed, ok := scanChoice(text, i); ok {
				out = append(out, elem)
				i = end
				if absorbed {
					i++ // skip the one space absorbed into the alternatives
				}
				continue
			}
			out = appendLiteral(out, "[")
			i++
		case isVariableLikeByte(c):
			start := i
			for i < len(text) && isVariableLikeByte(text[i]) {
				i++
			}
			out = append(out, graph.VariableLike(text[start:i]))
		default:
			out = appendLiteral(out, text[i:i+1])
			i++
		}
	}
	return out, i
}

func isVariableLikeByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}

// appendLiteral appends s to elems, merging into a trailing ElemLiteral
// if one is already there so adjacent non-special characters collapse
// into one element instead of one per byte.
func appendLiteral(elems []graph.PatternElement, s string) []graph.PatternElement {
	if n := len(elems); n > 0 && elems[n-1].Kind == graph.ElemLiteral {
		elems[n-1].Text += s
		return elems
	}
	return append(elems, graph.Literal(s))
}

// scanWordCapture recognizes "{word:name}" starting at text[i] == '{'.
// Returns ok=false if the content doesn't match, leaving the caller to
// fall back to treating '{' as a literal byte.
func scanWordCapture(text string, i int) (graph.PatternElement, int, bool) {
	const prefix = "word:"
	j := i + 1
	if j+len(prefix) > len(text) || text[j:j+len(prefix)] != prefix {
		return graph.PatternElement{}, i, false
	}
	j += len(prefix)
	start := j
	for j < len(text) && isVariableLikeByte(text[j]) {
		j++
	}
	if start == j || j >= len(text) || text[j] != '}' {
		return graph.PatternElement{}, i, false
	}
	return graph.WordCapture(text[start:j]), j + 1, true
}

// scanChoice recognizes "[alt|alt|...]" starting at text[i] == '['. Each
// alternative is recursively parsed. absorbed reports whether a space
// immediately following the closing ']' was pulled into the non-empty
// alternatives to avoid a double space when the empty alternative wins
// at match time (so the caller must skip that one space itself).
func scanChoice(text string, i int) (elem graph.PatternElement, end int, absorbed bool, ok bool) {
	closeIdx, found := findMatchingBracket(text, i)
	if !found {
		return graph.PatternElement{}, i, false, false
	}
	inner := text[i+1 : closeIdx]
	altTexts := splitTopLevelAlternatives(inner)

	alts := make([][]graph.PatternElement, len(altTexts))
	hasEmpty := false
	for idx, alt := range altTexts {
		parsed, _ := parseElements(alt, 0)
		alts[idx] = parsed
		if len(parsed) == 0 {
			hasEmpty = true
		}
	}

	end = closeIdx + 1
	if hasEmpty && end < len(text) && text[end] == ' ' {
		absorbed = true
		for idx, alt := range alts {
			if len(alt) == 0 {
				continue
			}
			alts[idx] = appendLiteral(alt, " ")
		}
	}

	return graph.Choice(alts), end, absorbed, true
}

// findMatchingBracket finds the ']' matching the '[' at text[open],
// respecting nested '[...]' pairs.
func findMatchingBracket(text string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

// splitTopLevelAlternatives splits inner on '|' characters not nested
// inside a further '[...]' pair.
func splitTopLevelAlternatives(inner string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '|':
			if depth == 0 {
				out = append(out, inner[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, inner[start:])
	return out
}
