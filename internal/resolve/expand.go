package resolve

import "github.com/OpenAEC-Foundation/dynlex/internal/graph"

// expandAll rewrites every Pending Expression whose PatternRef finished
// processing into its final shape. Arena index order is already a
// valid bottom-up order here: the line parser always creates a child
// argument Expression (via a recursive parse) before the Pending that
// refers to it, so a single forward pass sees every child already
// rewritten by the time it reaches the parent.
func (r *Resolver) expandAll() {
	p := r.Program
	exprs := p.Exprs.Data()
	for i := range exprs {
		expr := &exprs[i]
		if expr.Kind != graph.ExprPending {
			continue
		}
		ref := p.PatternRefs.Get(expr.Ref)
		if ref == nil {
			continue
		}
		switch ref.State {
		case graph.RefResolved:
			r.expandResolved(expr, ref)
		case graph.RefVariablePromoted:
			expr.Kind = graph.ExprVariable
			expr.VarRef = ref.PromotedVarRef
		}
	}
}

// expandResolved rewrites expr (currently Pending) into a PatternCall
// built from ref.Match's arguments, or collapses it directly into an
// IntrinsicCall when the call has exactly one argument and that
// argument is itself an intrinsic call — the same "don't make a trivial
// wrapper" rule the line parser applies to carved single-slot text.
func (r *Resolver) expandResolved(expr *graph.Expression, ref *graph.PatternRef) {
	p := r.Program
	match := ref.Match

	args := make([]graph.ExprID, len(match.Args))
	for i, arg := range match.Args {
		if arg.IsWord {
			args[i] = p.Exprs.New(graph.Expression{
				Kind:        graph.ExprLiteralString,
				Span:        expr.Span,
				StringValue: arg.WordText,
			})
			continue
		}
		args[i] = arg.SubExpr
	}

	if len(args) == 1 {
		if inner := p.Exprs.Get(args[0]); inner != nil && inner.Kind == graph.ExprIntrinsicCall {
			expr.Kind = graph.ExprIntrinsicCall
			expr.IntrinsicName = inner.IntrinsicName
			expr.IntrinsicArgs = inner.IntrinsicArgs
			return
		}
	}

	expr.Kind = graph.ExprPatternCall
	expr.Match = match
	expr.Args = args
}
