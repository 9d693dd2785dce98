package infer

import (
	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// validate reports every Variable and top-level Expression that still
// lacks a deduced type after defaulting, and reports whether the
// program is otherwise clean. A Variable belonging to a monomorphized
// function body is exempt: it is legitimately shared across every
// instantiation and is checked per-instantiation instead, through the
// paramTypes override each call site supplies.
func (inf *Inferrer) validate() bool {
	ok := true

	variables := inf.Program.Variables.Data()
	for i := range variables {
		v := &variables[i]
		if v.Type.IsDeduced() {
			continue
		}
		if sec := inf.Program.Sections.Get(v.Section); sec != nil && sec.Kind.IsDefinitionKind() {
			continue
		}
		ok = false
		inf.report(diag.TypeUndeducedVariable, diag.SevError, inf.varSpan(v),
			"variable \""+v.Name+"\" could not be assigned a concrete type")
	}

	for _, line := range globalLines(inf.Program) {
		if !line.Expression.IsValid() {
			continue
		}
		expr := inf.Program.Exprs.Get(line.Expression)
		if expr == nil || expr.Type.IsDeduced() {
			continue
		}
		ok = false
		inf.report(diag.TypeUndeducedVariable, diag.SevError, expr.Span,
			"expression could not be assigned a concrete type")
	}

	return ok
}

func (inf *Inferrer) varSpan(v *graph.Variable) source.Span {
	ref := inf.Program.VarRefs.Get(v.Definition)
	if ref == nil {
		return source.Span{}
	}
	return inf.Program.Lines.Spans(ref.Line).PatternText
}
