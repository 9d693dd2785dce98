package section

import (
	"fmt"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// Analyzer turns a merged CodeLine sequence into a tree of Sections
// rooted at Program.Root, using indentation and trailing ':' to find
// section boundaries and leading keywords to classify them.
type Analyzer struct {
	Program  *graph.Program
	Reporter diag.Reporter
}

type openSection struct {
	id    graph.SectionID
	level int
}

// Run builds the section tree. Its only error is an over-indent: a line
// more than one level deeper than the innermost open section's header
// (so also any indented line under a line that opens no section), which
// aborts the stage immediately since the tree built so far cannot be
// trusted.
func (a *Analyzer) Run() error {
	program := a.Program
	root := program.Sections.New(graph.SecCustom, graph.NoSectionID)
	program.Root = root

	var unit indentUnit
	stack := []openSection{{id: root, level: -1}}

	lines := program.Lines.Data()
	for i := range lines {
		line := &lines[i]
		level, mixedChar, widthMismatch := unit.classify(line.Indent)
		spans := program.Lines.Spans(line.ID)

		if mixedChar {
			a.report(diag.SectionMixedIndentChar, spans.Full,
				fmt.Sprintf("indentation does not consist of %s repeated", charName(unit.char)))
		}
		if widthMismatch {
			a.report(diag.SectionIndentWidthMismatch, spans.Full,
				fmt.Sprintf("indent width %d is not a multiple of %d", len(line.Indent), unit.width))
		}

		if level > stack[len(stack)-1].level+1 {
			a.report(diag.SectionOverIndent, spans.Full,
				fmt.Sprintf("line is indented %d level(s) deeper than its enclosing section allows", level-stack[len(stack)-1].level-1))
			return fmt.Errorf("section: over-indent at merged line %d", line.MergedLineIdx)
		}

		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].id

		line.Section = parent
		parentSec := program.Sections.Get(parent)
		parentSec.Lines = append(parentSec.Lines, line.ID)

		if parentSec.Kind == graph.SecPatterns {
			a.registerPatternsAlias(parentSec, line)
		}

		if !line.HasChildSection {
			continue
		}

		child := a.openChild(parent, parentSec, line)
		line.OpensSection = child
		stack = append(stack, openSection{id: child, level: level})
	}
	return nil
}

// registerPatternsAlias adds line verbatim as an extra PatternDef on the
// DefinitionSection that owns the enclosing `patterns:` block, regardless
// of whether line itself opens a further child section.
func (a *Analyzer) registerPatternsAlias(patternsSec *graph.Section, line *graph.CodeLine) {
	program := a.Program
	grandparent := program.Sections.Get(patternsSec.Parent)
	if grandparent == nil {
		return
	}
	def := program.PatternDefs.New(graph.PatternDef{
		Kind:    patternKindFor(grandparent.Kind),
		Section: patternsSec.Parent,
		Line:    line.ID,
		Span:    program.Lines.Spans(line.ID).PatternText,
		RawText: line.PatternText,
	})
	grandparent.PatternDefs = append(grandparent.PatternDefs, def)
}

// openChild creates the Section that line's trailing ':' opens and
// performs whatever bookkeeping its kind requires: registering a
// DefinitionSection's own PatternDef, or wiring a class's
// ClassDefinition.
func (a *Analyzer) openChild(parentID graph.SectionID, parent *graph.Section, line *graph.CodeLine) graph.SectionID {
	program := a.Program

	if parent.Kind.IsDefinitionKind() {
		if kind, ok := specializedChild(line.PatternText); ok {
			child := program.Sections.New(kind, parentID)
			if kind == graph.SecReplacement {
				// A replacement: body makes its owning definition a macro
				// regardless of whether `macro` was spelled on the header
				// line: any pattern whose body is inlined rather than
				// called is a macro by definition.
				parent.IsMacro = true
			}
			return child
		}
	}

	hdr := classifyHeader(line.PatternText)
	if !hdr.matched {
		return program.Sections.New(graph.SecCustom, parentID)
	}

	child := program.Sections.New(hdr.kind, parentID)
	sec := program.Sections.Get(child)
	sec.IsMacro = hdr.isMacro
	sec.IsLocal = hdr.isLocal

	def := program.PatternDefs.New(graph.PatternDef{
		Kind:    patternKindFor(hdr.kind),
		Section: child,
		Line:    line.ID,
		Span:    program.Lines.Spans(line.ID).PatternText,
		RawText: hdr.rest,
	})
	sec.PatternDefs = append(sec.PatternDefs, def)

	if hdr.kind == graph.SecClass {
		classID := program.ClassDefs.New(graph.ClassDefinition{Section: child})
		sec.ClassDef = classID
	}
	return child
}

func (a *Analyzer) report(code diag.Code, sp source.Span, msg string) {
	if a.Reporter == nil {
		return
	}
	sev := diag.SevWarning
	if code == diag.SectionOverIndent || code == diag.SectionMixedIndentChar {
		sev = diag.SevError
	}
	a.Reporter.Report(code, sev, sp, msg, nil)
}

func charName(c byte) string {
	switch c {
	case ' ':
		return "space"
	case '\t':
		return "tab"
	default:
		return fmt.Sprintf("%q", c)
	}
}
