package infer

import "github.com/OpenAEC-Foundation/dynlex/internal/graph"

// inferExpr computes id's type under ctx, refining it in place and
// returning the refined value. Children are always visited first: every
// Expression kind that has children (PatternCall, IntrinsicCall) infers
// them before combining their types, so one pass already sees a fully
// bottom-up result even though the pass itself is a flat forward walk.
func (inf *Inferrer) inferExpr(id graph.ExprID, ctx *inferContext) graph.Type {
	expr := inf.Program.Exprs.Get(id)
	if expr == nil {
		return graph.TypeUndeduced
	}

	switch expr.Kind {
	case graph.ExprLiteralInt:
		return inf.refineExprType(expr, graph.Type{Kind: graph.Integer})
	case graph.ExprLiteralFloat:
		return inf.refineExprType(expr, graph.Type{Kind: graph.Float})
	case graph.ExprLiteralString:
		return inf.refineExprType(expr, graph.Type{Kind: graph.String})
	case graph.ExprVariable:
		return inf.inferVariable(expr, ctx)
	case graph.ExprPatternCall:
		return inf.inferPatternCall(expr, ctx)
	case graph.ExprIntrinsicCall:
		return inf.inferIntrinsic(expr, ctx)
	default:
		return expr.Type
	}
}

// inferVariable resolves a variable occurrence through ctx (so a macro
// parameter or a non-macro instantiation's argument type takes
// precedence over the shared Variable) and feeds any new information
// back the other way: a more specific type discovered at this
// occurrence narrows the shared Variable too, unless ctx says the
// occurrence is bound (a bound occurrence IS the binding, not a second
// independent source of evidence about it).
func (inf *Inferrer) inferVariable(expr *graph.Expression, ctx *inferContext) graph.Type {
	ref := inf.Program.VarRefs.Get(expr.VarRef)
	if ref == nil {
		return expr.Type
	}
	effective := inf.effectiveType(ref.Variable, ctx)
	refined, ok := expr.Type.Refine(effective)
	if !ok {
		return expr.Type
	}
	if !refined.Equal(expr.Type) {
		expr.Type = refined
		inf.markChanged()
	}
	if !refined.Equal(effective) {
		inf.refineVariable(ref.Variable, ctx, refined)
	}
	return expr.Type
}

// refineExprType narrows expr.Type toward to and reports the change.
// Undeduced `to` values (a child that could not yet be typed) are
// ignored rather than forcing expr back to Undeduced.
func (inf *Inferrer) refineExprType(expr *graph.Expression, to graph.Type) graph.Type {
	if to.Kind == graph.Undeduced {
		return expr.Type
	}
	refined, ok := expr.Type.Refine(to)
	if !ok {
		return expr.Type
	}
	if !refined.Equal(expr.Type) {
		expr.Type = refined
		inf.markChanged()
	}
	return expr.Type
}

// propagateTo pushes to onto id: refines its own Type, and, if id names
// a variable, follows through to the Variable it reads so later
// occurrences see the narrower type too.
func (inf *Inferrer) propagateTo(id graph.ExprID, ctx *inferContext, to graph.Type) {
	e := inf.Program.Exprs.Get(id)
	if e == nil {
		return
	}
	inf.refineExprType(e, to)
	if e.Kind == graph.ExprVariable {
		if ref := inf.Program.VarRefs.Get(e.VarRef); ref != nil {
			inf.refineVariable(ref.Variable, ctx, e.Type)
		}
	}
}
