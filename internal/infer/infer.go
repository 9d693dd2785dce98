// Package infer assigns a fully concrete Type to every Variable,
// Expression, Instantiation.ReturnType and ClassInstantiation field type
// left behind by resolve, or reports every entity it could not deduce.
//
// The algorithm is a bounded fixed-point iteration, the same shape as
// the resolver's classify/match loop: each pass walks every top-level
// (non-body) line's Expression bottom-up, refining types in place via
// graph.Type.Refine/Promote, and stops the first time a pass makes no
// change. Non-macro pattern bodies are inferred lazily, once per
// distinct call-site argument-type tuple, when a PatternCall into them
// is encountered; macro bodies are inferred inline at each call site
// with their parameters bound to the call's argument expressions.
package infer

import (
	"fmt"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// MaxInferencePasses bounds the fixed-point loop.
const MaxInferencePasses = 64

// Inferrer runs type inference over a Program already left in a
// fully-resolved state by resolve.Resolver.
type Inferrer struct {
	Program  *graph.Program
	Reporter diag.Reporter
	Cancel   func() bool // cooperative cancel flag, checked between passes

	changed    bool
	visiting   map[graph.InstantiationKey]bool
	macroDepth int
}

// Run executes the fixed-point pass loop, then defaulting, then
// validation. It returns an error if validation finds any entity that
// still lacks a deduced type (or a type error), matching every such
// failure to a diagnostic first.
func (inf *Inferrer) Run() error {
	lines := globalLines(inf.Program)

	for pass := 0; pass < MaxInferencePasses; pass++ {
		if inf.Cancel != nil && inf.Cancel() {
			break
		}
		inf.changed = false
		inf.visiting = make(map[graph.InstantiationKey]bool)
		for _, line := range lines {
			if !line.Expression.IsValid() {
				continue
			}
			inf.inferExpr(line.Expression, nil)
		}
		if !inf.changed {
			break
		}
		if pass == MaxInferencePasses-1 {
			inf.report(diag.TypeMaxPasses, diag.SevWarning, source.Span{},
				"type inference did not converge within the pass bound")
		}
	}

	inf.applyDefaults()

	if !inf.validate() {
		return fmt.Errorf("infer: one or more types could not be deduced")
	}
	return nil
}

// globalLines returns every CodeLine that does not belong, even
// transitively, to a DefinitionSection's body: the lines type inference
// walks directly every pass. Body lines are only ever visited through a
// PatternCall's recursive instantiation inference, exactly mirroring the
// resolver's body_refs/global_refs split.
func globalLines(p *graph.Program) []*graph.CodeLine {
	lines := p.Lines.Data()
	var out []*graph.CodeLine
	for i := range lines {
		line := &lines[i]
		if p.Sections.NearestDefinitionAncestor(line.Section).IsValid() {
			continue
		}
		out = append(out, line)
	}
	return out
}

func (inf *Inferrer) markChanged() { inf.changed = true }

func (inf *Inferrer) lineSpan(exprID graph.ExprID) source.Span {
	expr := inf.Program.Exprs.Get(exprID)
	if expr == nil {
		return source.Span{}
	}
	return expr.Span
}

func (inf *Inferrer) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if inf.Reporter == nil {
		return
	}
	inf.Reporter.Report(code, sev, sp, msg, nil)
}
