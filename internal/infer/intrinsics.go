package infer

import (
	"fmt"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
)

// inferIntrinsic infers every argument first, then dispatches on the
// intrinsic's name. The name set below is this package's own invention
// (nothing upstream enumerates intrinsic names as a closed set): every
// entry corresponds to one of the primitive operations the descriptive
// design notes name — arithmetic, comparison, assignment, control
// transfer, address-of/dereference, an escape hatch into a
// foreign/native call, an explicit cast, and class construct/property
// access.
func (inf *Inferrer) inferIntrinsic(expr *graph.Expression, ctx *inferContext) graph.Type {
	args := make([]graph.Type, len(expr.IntrinsicArgs))
	for i, a := range expr.IntrinsicArgs {
		args[i] = inf.inferExpr(a, ctx)
	}

	var result graph.Type
	switch expr.IntrinsicName {
	case "add", "subtract", "multiply", "divide", "modulo":
		result = inf.inferArithmetic(expr, args, ctx)
	case "equal", "not_equal", "less", "less_equal", "greater", "greater_equal":
		result = inf.inferCompare(expr, args)
	case "store":
		result = inf.inferStore(expr, args, ctx)
	case "return":
		if len(args) > 0 {
			result = args[0]
		} else {
			result = graph.TypeVoid
		}
	case "address_of":
		result = inf.inferAddressOf(args)
	case "dereference":
		result = inf.inferDereference(expr, args)
	case "call":
		result = inf.inferCallIntrinsic(expr)
	case "cast":
		result = inf.inferCast(expr, args)
	case "construct":
		result = inf.inferConstructIntrinsic(args)
	case "property":
		result = inf.inferProperty(expr, args)
	default:
		inf.report(diag.TypeUnknownIntrinsic, diag.SevError, expr.Span,
			fmt.Sprintf("unknown intrinsic %q", expr.IntrinsicName))
		result = graph.TypeUndeduced
	}
	return inf.refineExprType(expr, result)
}

func isNumericKind(t graph.Type) bool {
	return t.Kind == graph.Numeric || t.Kind == graph.Integer || t.Kind == graph.Float
}

// inferArithmetic applies the promotion rule once both operands are
// known numeric. When exactly one side is still Undeduced, that side is
// at least constrained to Numeric and pushed back through ctx (a later
// pass picks up whatever specializes it further, e.g. a store into a
// sized variable); a deduced non-numeric operand is a hard error.
func (inf *Inferrer) inferArithmetic(expr *graph.Expression, args []graph.Type, ctx *inferContext) graph.Type {
	if len(args) < 2 {
		return graph.TypeUndeduced
	}
	a, b := args[0], args[1]
	switch {
	case isNumericKind(a) && isNumericKind(b):
		return graph.Promote(a, b)
	case isNumericKind(a) && b.Kind == graph.Undeduced:
		inf.propagateTo(expr.IntrinsicArgs[1], ctx, graph.TypeNumeric)
		return graph.TypeNumeric
	case isNumericKind(b) && a.Kind == graph.Undeduced:
		inf.propagateTo(expr.IntrinsicArgs[0], ctx, graph.TypeNumeric)
		return graph.TypeNumeric
	case a.Kind == graph.Undeduced || b.Kind == graph.Undeduced:
		return graph.TypeUndeduced
	default:
		inf.report(diag.TypeArithmeticNonNumeric, diag.SevError, expr.Span,
			fmt.Sprintf("%s requires numeric operands, got %s and %s", expr.IntrinsicName, a.Kind, b.Kind))
		return graph.TypeUndeduced
	}
}

func typesComparable(a, b graph.Type) bool {
	if isNumericKind(a) && isNumericKind(b) {
		return true
	}
	return a.Kind == b.Kind && a.PointerDepth == b.PointerDepth
}

func (inf *Inferrer) inferCompare(expr *graph.Expression, args []graph.Type) graph.Type {
	if len(args) >= 2 {
		a, b := args[0], args[1]
		if a.IsDeduced() && b.IsDeduced() && !typesComparable(a, b) {
			inf.report(diag.TypeMismatchedCompare, diag.SevError, expr.Span,
				fmt.Sprintf("cannot compare %s and %s", a.Kind, b.Kind))
		}
	}
	return graph.TypeBool
}

// inferStore models assignment: the target and the value must refine to
// one common type, which then flows back to both sides (so a variable
// target picks up the value's type, and a variable used as the value
// picks up the target's).
func (inf *Inferrer) inferStore(expr *graph.Expression, args []graph.Type, ctx *inferContext) graph.Type {
	if len(args) < 2 {
		return graph.TypeVoid
	}
	merged, ok := args[0].Refine(args[1])
	if !ok {
		inf.report(diag.TypeMismatchedCompare, diag.SevError, expr.Span,
			fmt.Sprintf("cannot store a value of type %s into a target of type %s", args[1].Kind, args[0].Kind))
		return graph.TypeVoid
	}
	inf.propagateTo(expr.IntrinsicArgs[0], ctx, merged)
	inf.propagateTo(expr.IntrinsicArgs[1], ctx, merged)
	return graph.TypeVoid
}

func (inf *Inferrer) inferAddressOf(args []graph.Type) graph.Type {
	if len(args) == 0 {
		return graph.TypeUndeduced
	}
	t := args[0]
	return t.Pointer(t.PointerDepth + 1)
}

func (inf *Inferrer) inferDereference(expr *graph.Expression, args []graph.Type) graph.Type {
	if len(args) == 0 {
		return graph.TypeUndeduced
	}
	t := args[0]
	if t.Kind == graph.Undeduced {
		return graph.TypeUndeduced
	}
	if t.PointerDepth == 0 {
		inf.report(diag.TypeArithmeticNonNumeric, diag.SevError, expr.Span,
			"cannot dereference a non-pointer value")
		return graph.TypeUndeduced
	}
	return t.Pointer(t.PointerDepth - 1)
}

// inferCallIntrinsic models an escape hatch into a foreign/native
// function: its first argument names the call's return type as a
// primitive-type string literal (e.g. "i32"), since a foreign callee has
// no PatternDef of its own for an Instantiation to carry a ReturnType on.
func (inf *Inferrer) inferCallIntrinsic(expr *graph.Expression) graph.Type {
	if len(expr.IntrinsicArgs) == 0 {
		return graph.TypeUndeduced
	}
	nameExpr := inf.Program.Exprs.Get(expr.IntrinsicArgs[0])
	if nameExpr == nil || nameExpr.Kind != graph.ExprLiteralString {
		return graph.TypeUndeduced
	}
	t, ok := primitiveTypeByName(nameExpr.StringValue)
	if !ok {
		return graph.TypeUndeduced
	}
	return t
}

// inferCast resolves the open question of what a cast's type operand
// looks like: prefer a TypeReference-typed second argument (a name
// already resolved to a class), fall back to a string-literal primitive
// name, and fall back again to identity conversion when neither is
// present.
func (inf *Inferrer) inferCast(expr *graph.Expression, args []graph.Type) graph.Type {
	if len(args) == 0 {
		return graph.TypeUndeduced
	}
	if len(args) >= 2 {
		if args[1].Kind == graph.TypeReference {
			return graph.Type{Kind: graph.Class, ClassDef: args[1].ClassDef}
		}
		if nameExpr := inf.Program.Exprs.Get(expr.IntrinsicArgs[1]); nameExpr != nil && nameExpr.Kind == graph.ExprLiteralString {
			if t, ok := primitiveTypeByName(nameExpr.StringValue); ok {
				return t
			}
			inf.report(diag.TypeUnknownCast, diag.SevError, expr.Span,
				fmt.Sprintf("unknown cast target %q", nameExpr.StringValue))
			return graph.TypeUndeduced
		}
	}
	return args[0]
}

// inferConstructIntrinsic handles a construct spelled through the
// intrinsic form rather than a direct PatternCall into a class's own
// pattern: its first argument is a TypeReference (a class name already
// resolved to its ClassDefID), the rest are the constructor's argument
// types, fed to the same structural-monomorphization bookkeeping a
// PatternCall construct uses.
func (inf *Inferrer) inferConstructIntrinsic(args []graph.Type) graph.Type {
	if len(args) == 0 || args[0].Kind != graph.TypeReference {
		return graph.TypeUndeduced
	}
	classDef := args[0].ClassDef
	typeArgs := args[1:]
	ix := inf.Program.ClassDefs.GetOrCreateInstantiation(classDef, typeArgs)
	if ix < 0 {
		return graph.TypeUndeduced
	}
	return graph.Type{Kind: graph.Class, ClassDef: classDef, InstantiationIx: ix}
}

// inferProperty reads a class instance's field type by name, specialized
// to the instance's own ClassInstantiation when one is known.
func (inf *Inferrer) inferProperty(expr *graph.Expression, args []graph.Type) graph.Type {
	if len(args) < 2 || args[0].Kind != graph.Class {
		return graph.TypeUndeduced
	}
	nameExpr := inf.Program.Exprs.Get(expr.IntrinsicArgs[1])
	if nameExpr == nil || nameExpr.Kind != graph.ExprLiteralString {
		return graph.TypeUndeduced
	}
	def := inf.Program.ClassDefs.Get(args[0].ClassDef)
	if def == nil {
		return graph.TypeUndeduced
	}
	idx := -1
	for i, f := range def.Fields {
		if f.Name == nameExpr.StringValue {
			idx = i
			break
		}
	}
	if idx < 0 {
		return graph.TypeUndeduced
	}
	if ix := args[0].InstantiationIx; ix >= 0 && ix < len(def.Instantiations) {
		inst := def.Instantiations[ix]
		if idx < len(inst.FieldTypes) {
			return inst.FieldTypes[idx]
		}
	}
	return def.Fields[idx].Type
}

func primitiveTypeByName(name string) (graph.Type, bool) {
	switch name {
	case "void":
		return graph.TypeVoid, true
	case "bool":
		return graph.TypeBool, true
	case "string":
		return graph.Type{Kind: graph.String}, true
	case "i8":
		return graph.Type{Kind: graph.Integer, ByteSize: 1}, true
	case "i16":
		return graph.Type{Kind: graph.Integer, ByteSize: 2}, true
	case "i32":
		return graph.Type{Kind: graph.Integer, ByteSize: 4}, true
	case "i64":
		return graph.Type{Kind: graph.Integer, ByteSize: 8}, true
	case "f32":
		return graph.Type{Kind: graph.Float, ByteSize: 4}, true
	case "f64":
		return graph.Type{Kind: graph.Float, ByteSize: 8}, true
	}
	return graph.TypeUndeduced, false
}
