// Package lineparse turns a CodeLine's pattern text into an Expression
// tree plus a PatternRef carrying whatever text is left over once
// literals have been carved out.
package lineparse

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// Parser builds the top-level Expression for every CodeLine that carries
// one: anything owned by a body-holding section (the root, Execute, Get,
// Replacement, or a Custom section's own header line). Lines inside
// Patterns/Members/Alignment/Padding sections are structural, not
// expressions, and are never passed to Run.
type Parser struct {
	Program  *graph.Program
	Reporter diag.Reporter
}

// Run parses line's PatternText and assigns the resulting Expression to
// line.Expression. Lines with empty PatternText (blank or comment-only)
// are left untouched (NoExprID).
func (p *Parser) Run(line *graph.CodeLine) {
	if line.PatternText == "" {
		return
	}
	spans := p.Program.Lines.Spans(line.ID)
	kind := graph.PatternEffect
	if line.OpensSection.IsValid() {
		if sec := p.Program.Sections.Get(line.OpensSection); sec != nil && sec.Kind == graph.SecCustom {
			kind = graph.PatternSection
		}
	}
	line.Expression = p.parseText(line.PatternText, spans.PatternText.File, spans.PatternText.Start, line.ID, kind)
}

// parseText carves literals out of text, normalizes whitespace in what's
// left, and wraps the result in a Pending Expression — unless the
// collapse rule applies, in which case the sole carved argument is
// returned directly.
func (p *Parser) parseText(text string, fileID source.FileID, absBase uint32, lineID graph.LineID, kind graph.PatternKind) graph.ExprID {
	carved, args := p.carve(text, fileID, absBase, lineID)
	normalized := p.normalizeWhitespace(carved, fileID, absBase)

	if normalized == "\x07" && len(args) == 1 {
		return args[0]
	}

	span := p.spanFrom(fileID, absBase, len(text))
	ref := p.Program.PatternRefs.New(graph.PatternRef{
		Kind:        kind,
		Line:        lineID,
		PatternText: normalized,
		ArgExprs:    args,
	})
	exprID := p.Program.Exprs.New(graph.Expression{Kind: graph.ExprPending, Span: span, Ref: ref})
	p.Program.PatternRefs.Get(ref).OwningExpression = exprID
	return exprID
}

func (p *Parser) spanFrom(fileID source.FileID, absBase uint32, length int) source.Span {
	n, err := safecast.Conv[uint32](length)
	if err != nil {
		panic(fmt.Errorf("lineparse: span length overflow: %w", err))
	}
	return source.Span{File: fileID, Start: absBase, End: absBase + n}
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if p.Reporter == nil {
		return
	}
	p.Reporter.Report(code, sev, sp, msg, nil)
}
