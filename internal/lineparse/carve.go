package lineparse

import (
	"strconv"
	"strings"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// argChar is the reserved argument character a carved literal leaves
// behind in the surviving pattern text.
const argChar = '\x07'

// carve walks text left to right, replacing every recognized literal —
// a string, a decimal number, an @intrinsic(...) call, or a
// parenthesized sub-expression — with argChar, and returns the child
// Expression built for each in left-to-right order.
func (p *Parser) carve(text string, fileID source.FileID, absBase uint32, lineID graph.LineID) (string, []graph.ExprID) {
	var out strings.Builder
	var args []graph.ExprID
	inIdent := false
	n := len(text)

	for i := 0; i < n; {
		c := text[i]
		switch {
		case c == '"':
			start := i
			decoded, end, ok := p.scanString(text, i, fileID, absBase)
			if !ok {
				out.WriteString(text[start:])
				i = n
				continue
			}
			span := p.spanFrom(fileID, absBase+uint32(start), end-start)
			exprID := p.Program.Exprs.New(graph.Expression{Kind: graph.ExprLiteralString, StringValue: decoded, Span: span})
			args = append(args, exprID)
			out.WriteByte(argChar)
			i = end
			inIdent = false

		case isDecimalDigit(c) && !inIdent:
			start := i
			end, isFloat := scanNumber(text, i)
			exprID := p.numberExpr(text[start:end], isFloat, fileID, absBase+uint32(start), end-start)
			args = append(args, exprID)
			out.WriteByte(argChar)
			i = end
			inIdent = false

		case c == '@' && strings.HasPrefix(text[i:], "@intrinsic("):
			start := i
			exprID, end, ok := p.scanIntrinsic(text, i, fileID, absBase, lineID)
			if !ok {
				out.WriteString(text[start:end])
				i = end
				inIdent = false
				continue
			}
			args = append(args, exprID)
			out.WriteByte(argChar)
			i = end
			inIdent = false

		case c == '(':
			start := i
			end, ok := findMatchingParen(text, i)
			if !ok {
				p.report(diag.LineUnclosedParen, diag.SevError, p.spanFrom(fileID, absBase+uint32(start), n-start),
					"unclosed '(' in pattern text")
				out.WriteString(text[start:])
				i = n
				continue
			}
			inner := text[start+1 : end]
			childExpr := p.parseText(inner, fileID, absBase+uint32(start+1), lineID, graph.PatternExpression)
			args = append(args, childExpr)
			out.WriteByte(argChar)
			i = end + 1
			inIdent = false

		case c == ',' && !inIdent:
			// A stray top-level comma outside @intrinsic(...) has no
			// meaning; it passes through as ordinary text (the containing
			// definition may legitimately use ',' as a literal separator).
			out.WriteByte(c)
			i++

		default:
			out.WriteByte(c)
			inIdent = isIdentByte(c)
			i++
		}
	}
	return out.String(), args
}

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanNumber consumes a decimal integer with an optional fractional part
// starting at i (text[i] is already known to be a digit).
func scanNumber(text string, i int) (end int, isFloat bool) {
	n := len(text)
	j := i
	for j < n && isDecimalDigit(text[j]) {
		j++
	}
	if j < n && text[j] == '.' && j+1 < n && isDecimalDigit(text[j+1]) {
		isFloat = true
		j++
		for j < n && isDecimalDigit(text[j]) {
			j++
		}
	}
	return j, isFloat
}

func (p *Parser) numberExpr(raw string, isFloat bool, fileID source.FileID, absBase uint32, length int) graph.ExprID {
	span := p.spanFrom(fileID, absBase, length)
	if isFloat {
		v, _ := strconv.ParseFloat(raw, 64)
		return p.Program.Exprs.New(graph.Expression{Kind: graph.ExprLiteralFloat, FloatValue: v, Span: span})
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Too large for int64: fall back to float rather than drop the
		// literal outright.
		f, _ := strconv.ParseFloat(raw, 64)
		return p.Program.Exprs.New(graph.Expression{Kind: graph.ExprLiteralFloat, FloatValue: f, Span: span})
	}
	return p.Program.Exprs.New(graph.Expression{Kind: graph.ExprLiteralInt, IntValue: v, Span: span})
}

// scanString decodes a "..." literal starting at i (text[i] == '"'),
// honoring the escapes \n \t \r \a \b \f \v \\ \" \0.
func (p *Parser) scanString(text string, i int, fileID source.FileID, absBase uint32) (decoded string, end int, ok bool) {
	n := len(text)
	var b strings.Builder
	j := i + 1
	for j < n {
		c := text[j]
		if c == '"' {
			return b.String(), j + 1, true
		}
		if c == '\\' && j+1 < n {
			decodedByte, known := decodeEscape(text[j+1])
			if !known {
				p.report(diag.LineBadEscape, diag.SevWarning, p.spanFrom(fileID, absBase+uint32(j), 2),
					"unrecognized escape sequence '\\"+string(text[j+1])+"'")
				b.WriteByte(text[j+1])
			} else {
				b.WriteByte(decodedByte)
			}
			j += 2
			continue
		}
		b.WriteByte(c)
		j++
	}
	p.report(diag.LineUnclosedString, diag.SevError, p.spanFrom(fileID, absBase+uint32(i), n-i),
		"unclosed string literal")
	return "", n, false
}

func decodeEscape(c byte) (value byte, ok bool) {
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'v':
		return '\v', true
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case '0':
		return 0, true
	}
	return c, false
}

// findMatchingParen finds the index of the ')' matching the '(' at
// open, respecting nested parens and string literals.
func findMatchingParen(text string, open int) (int, bool) {
	depth := 0
	n := len(text)
	for i := open; i < n; i++ {
		switch text[i] {
		case '"':
			end, ok := skipString(text, i)
			if !ok {
				return 0, false
			}
			i = end - 1
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// skipString returns the index just past the closing quote of the
// string literal starting at i (text[i] == '"'), honoring backslash
// escapes without decoding them.
func skipString(text string, i int) (int, bool) {
	n := len(text)
	j := i + 1
	for j < n {
		if text[j] == '"' {
			return j + 1, true
		}
		if text[j] == '\\' && j+1 < n {
			j += 2
			continue
		}
		j++
	}
	return 0, false
}

// splitTopLevelArgs splits inner on ',' at paren/string depth 0,
// returning each argument's raw text and its byte offset within inner.
func splitTopLevelArgs(inner string) []argPiece {
	var pieces []argPiece
	depth := 0
	start := 0
	n := len(inner)
	for i := 0; i < n; i++ {
		switch inner[i] {
		case '"':
			end, ok := skipString(inner, i)
			if ok {
				i = end - 1
			}
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				pieces = append(pieces, argPiece{text: inner[start:i], offset: start})
				start = i + 1
			}
		}
	}
	pieces = append(pieces, argPiece{text: inner[start:], offset: start})
	return pieces
}

type argPiece struct {
	text   string
	offset int
}
