package lineparse

import (
	"strings"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

const intrinsicPrefix = "@intrinsic("

// scanIntrinsic parses @intrinsic("name", args...) starting at i
// (text[i] == '@'). The first argument must be a string literal naming
// the intrinsic; the rest are recursively parsed as Expression patterns.
// On failure it reports a diagnostic and returns ok=false with end set
// to where the caller should resume copying raw text.
func (p *Parser) scanIntrinsic(text string, i int, fileID source.FileID, absBase uint32, lineID graph.LineID) (graph.ExprID, int, bool) {
	openParen := i + len(intrinsicPrefix) - 1
	closeParen, ok := findMatchingParen(text, openParen)
	if !ok {
		p.report(diag.LineUnclosedParen, diag.SevError, p.spanFrom(fileID, absBase+uint32(i), len(text)-i),
			"unclosed '@intrinsic('")
		return graph.NoExprID, len(text), false
	}

	inner := text[openParen+1 : closeParen]
	pieces := splitTopLevelArgs(inner)
	innerBase := absBase + uint32(openParen+1)

	name, nameOK := p.intrinsicName(pieces, fileID, innerBase)
	if !nameOK {
		p.report(diag.LineBadIntrinsic, diag.SevError, p.spanFrom(fileID, absBase+uint32(i), closeParen+1-i),
			"@intrinsic's first argument must be a string literal naming it")
		return graph.NoExprID, closeParen + 1, false
	}

	var childArgs []graph.ExprID
	for _, piece := range pieces[1:] {
		trimmed, extra := trimPiece(piece.text)
		if trimmed == "" {
			p.report(diag.LineStrayComma, diag.SevWarning, p.spanFrom(fileID, innerBase+uint32(piece.offset), 1),
				"empty argument between commas in @intrinsic(...)")
			continue
		}
		child := p.parseText(trimmed, fileID, innerBase+uint32(piece.offset+extra), lineID, graph.PatternExpression)
		childArgs = append(childArgs, child)
	}

	span := p.spanFrom(fileID, absBase+uint32(i), closeParen+1-i)
	exprID := p.Program.Exprs.New(graph.Expression{
		Kind:          graph.ExprIntrinsicCall,
		IntrinsicName: name,
		IntrinsicArgs: childArgs,
		Span:          span,
	})
	return exprID, closeParen + 1, true
}

func (p *Parser) intrinsicName(pieces []argPiece, fileID source.FileID, innerBase uint32) (string, bool) {
	if len(pieces) == 0 {
		return "", false
	}
	trimmed, extra := trimPiece(pieces[0].text)
	if len(trimmed) < 2 || trimmed[0] != '"' {
		return "", false
	}
	decoded, end, ok := p.scanString(trimmed, 0, fileID, innerBase+uint32(pieces[0].offset+extra))
	if !ok || end != len(trimmed) {
		return "", false
	}
	return decoded, true
}

// trimPiece strips leading/trailing whitespace from s, returning the
// trimmed text and how many leading bytes were dropped (so absolute
// offsets into the original text can still be computed).
func trimPiece(s string) (trimmed string, leadingDropped int) {
	left := len(s) - len(strings.TrimLeft(s, " \t"))
	return strings.TrimSpace(s), left
}
