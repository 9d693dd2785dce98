package infer

import "github.com/OpenAEC-Foundation/dynlex/internal/graph"

// exprBinding is a macro parameter's bound value: the call-site argument
// expression plus the context its own free variables resolve in. A
// binding must carry its own context (not the callee's) because the
// argument expression was written, and may itself reference macro
// parameters, at the call site, not inside the macro body it is being
// substituted into. This is the "context object holding a map from
// parameter name to call-site expression" the design notes call for;
// look-through happens in effectiveType, never by rewriting the body.
type exprBinding struct {
	expr graph.ExprID
	ctx  *inferContext
}

// inferContext is threaded through one inference walk of a pattern
// body. Exactly one of exprBindings or paramTypes is populated for a
// given call: a macro body is inlined per call site, so its parameters
// resolve to the actual argument expression; a non-macro body is shared
// by every instantiation, so its parameters resolve only to a Type (the
// instantiation's argument type at that position), never to an
// expression from some specific call site.
type inferContext struct {
	exprBindings map[graph.VariableID]exprBinding
	paramTypes   map[graph.VariableID]graph.Type
	inst         *graph.Instantiation
}

// effectiveType resolves variable's type for this context: a macro
// binding is looked through (recursively, in the binding's own context)
// before falling back to a non-macro parameter type, then to the
// Variable's own shared type.
func (inf *Inferrer) effectiveType(variable graph.VariableID, ctx *inferContext) graph.Type {
	for c := ctx; c != nil; {
		if b, ok := c.exprBindings[variable]; ok {
			return inf.inferExpr(b.expr, b.ctx)
		}
		if t, ok := c.paramTypes[variable]; ok {
			return t
		}
		break
	}
	v := inf.Program.Variables.Get(variable)
	if v == nil {
		return graph.TypeUndeduced
	}
	return v.Type
}

// refineVariable narrows variable's shared type toward to, reporting a
// change if it moved. Bound macro/param variables are never refined in
// place: a macro parameter IS the call-site expression (refining that
// instead, via inferExpr, is what actually happens), and a non-macro
// parameter's type is fixed for the duration of one instantiation's
// inference, supplied by the call site rather than narrowed by the body.
func (inf *Inferrer) refineVariable(variable graph.VariableID, ctx *inferContext, to graph.Type) graph.Type {
	for c := ctx; c != nil; c = nil {
		if _, ok := c.exprBindings[variable]; ok {
			return inf.effectiveType(variable, ctx)
		}
		if _, ok := c.paramTypes[variable]; ok {
			return inf.effectiveType(variable, ctx)
		}
	}
	v := inf.Program.Variables.Get(variable)
	if v == nil {
		return graph.TypeUndeduced
	}
	refined, ok := v.Type.Refine(to)
	if !ok {
		return v.Type
	}
	if !refined.Equal(v.Type) {
		v.Type = refined
		inf.markChanged()
	}
	return v.Type
}
