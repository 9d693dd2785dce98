package section

import "github.com/OpenAEC-Foundation/dynlex/internal/graph"

// header is the result of parsing a section-opening line's leading
// keywords: optional `macro`, optional `local`, then a mandatory kind
// keyword. matched is false when no kind keyword was found, in which
// case rest is the untouched input and the caller treats the line as a
// Custom section.
type header struct {
	kind    graph.SectionKind
	isMacro bool
	isLocal bool
	rest    string
	matched bool
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func leadingWord(s string, pos int) (word string, after int) {
	for pos < len(s) && s[pos] == ' ' {
		pos++
	}
	start := pos
	for pos < len(s) && isIdentByte(s[pos]) {
		pos++
	}
	return s[start:pos], pos
}

func classifyHeader(patternText string) header {
	pos := 0
	isMacro, isLocal := false, false

	word, after := leadingWord(patternText, pos)
	if word == "macro" {
		isMacro = true
		pos = after
		word, after = leadingWord(patternText, pos)
	}
	if word == "local" {
		isLocal = true
		pos = after
		word, after = leadingWord(patternText, pos)
	}

	var kind graph.SectionKind
	switch word {
	case "effect":
		kind = graph.SecEffect
	case "expression":
		kind = graph.SecExpression
	case "section":
		kind = graph.SecSection
	case "class":
		kind = graph.SecClass
	default:
		return header{kind: graph.SecCustom, rest: patternText, matched: false}
	}

	rest := patternText[after:]
	for len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return header{kind: kind, isMacro: isMacro, isLocal: isLocal, rest: rest, matched: true}
}

// patternKindFor maps a DefinitionSection's kind to the trie it shares.
// Classes have no syntax of their own to match on at a call site other
// than the constructor-call shape, which is spelled the same way an
// expression call is, so they live in the expression trie.
func patternKindFor(kind graph.SectionKind) graph.PatternKind {
	switch kind {
	case graph.SecEffect:
		return graph.PatternEffect
	case graph.SecSection:
		return graph.PatternSection
	default:
		return graph.PatternExpression
	}
}

// specializedChild maps one of the fixed child-section keywords allowed
// directly inside a DefinitionSection to its SectionKind. ok is false for
// any other word.
func specializedChild(word string) (kind graph.SectionKind, ok bool) {
	switch word {
	case "execute":
		return graph.SecExecute, true
	case "get":
		return graph.SecGet, true
	case "replacement":
		return graph.SecReplacement, true
	case "patterns":
		return graph.SecPatterns, true
	case "members":
		return graph.SecMembers, true
	case "alignment":
		return graph.SecAlignment, true
	case "padding":
		return graph.SecPadding, true
	}
	return graph.SecCustom, false
}
