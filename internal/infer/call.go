package infer

import "github.com/OpenAEC-Foundation/dynlex/internal/graph"

// maxMacroDepth bounds macro inlining during a single inferExpr walk, the
// same role MaxInferencePasses plays across passes: it catches a
// self-referential macro (which would otherwise recurse forever, since
// inlining never terminates the way a monomorphized call's cycle guard
// does) without having to detect the cycle structurally.
const maxMacroDepth = 64

// inferPatternCall infers expr, a call into def.Section's pattern. A
// SecClass target is a construct: argument types become the class's
// field types positionally. Anything else is a function-like call,
// dispatched to the macro or non-macro path by the target section's
// IsMacro flag.
func (inf *Inferrer) inferPatternCall(expr *graph.Expression, ctx *inferContext) graph.Type {
	match := expr.Match
	if match == nil {
		return expr.Type
	}
	def := inf.Program.PatternDefs.Get(match.Definition)
	if def == nil {
		return expr.Type
	}
	defSection := inf.Program.Sections.Get(def.Section)
	if defSection == nil {
		return expr.Type
	}

	argTypes := make([]graph.Type, len(expr.Args))
	for i, a := range expr.Args {
		argTypes[i] = inf.inferExpr(a, ctx)
	}

	if defSection.Kind == graph.SecClass {
		return inf.refineExprType(expr, inf.inferConstructCall(defSection, argTypes))
	}
	if defSection.IsMacro {
		return inf.refineExprType(expr, inf.inferMacroCall(expr, match, defSection, ctx))
	}
	return inf.refineExprType(expr, inf.inferInstantiatedCall(match, defSection, argTypes))
}

// inferConstructCall models `ClassName(args...)` the same way a class
// literal is type-checked elsewhere: one ClassInstantiation per distinct
// argument-type tuple, with field types assumed positional (the
// constructor's parameter order mirrors `members:`'s declaration order).
func (inf *Inferrer) inferConstructCall(defSection *graph.Section, argTypes []graph.Type) graph.Type {
	if !defSection.ClassDef.IsValid() {
		return graph.TypeUndeduced
	}
	ix := inf.Program.ClassDefs.GetOrCreateInstantiation(defSection.ClassDef, argTypes)
	if ix < 0 {
		return graph.TypeUndeduced
	}
	cd := inf.Program.ClassDefs.Get(defSection.ClassDef)
	inst := &cd.Instantiations[ix]
	for i := range inst.FieldTypes {
		if i >= len(argTypes) {
			break
		}
		refined, ok := inst.FieldTypes[i].Refine(argTypes[i])
		if ok && !refined.Equal(inst.FieldTypes[i]) {
			inst.FieldTypes[i] = refined
			inf.markChanged()
		}
	}
	return graph.Type{Kind: graph.Class, ClassDef: defSection.ClassDef, InstantiationIx: ix}
}

// inferMacroCall inlines defSection's body for this one call site: each
// parameter's Variable (if the body ever references it) is bound to the
// call's own argument expression, evaluated in the caller's context —
// not rewritten into the body, per the context-object design this
// package follows throughout.
func (inf *Inferrer) inferMacroCall(expr *graph.Expression, match *graph.Match, defSection *graph.Section, ctx *inferContext) graph.Type {
	if inf.macroDepth >= maxMacroDepth {
		return graph.TypeUndeduced
	}
	inf.macroDepth++
	defer func() { inf.macroDepth-- }()

	body := &inferContext{exprBindings: make(map[graph.VariableID]exprBinding, len(match.Args))}
	for i, arg := range match.Args {
		if i >= len(expr.Args) {
			break
		}
		if varID, ok := defSection.Variables[arg.ParamName]; ok {
			body.exprBindings[varID] = exprBinding{expr: expr.Args[i], ctx: ctx}
		}
	}
	return inf.inferBody(defSection, body)
}

// inferInstantiatedCall looks up (or lazily creates) the monomorphization
// of defSection for argTypes and runs its body once per pass, with each
// parameter's Variable overridden to that instantiation's argument type
// rather than mutated in place (the Variable is shared by every other
// instantiation of the same definition).
func (inf *Inferrer) inferInstantiatedCall(match *graph.Match, defSection *graph.Section, argTypes []graph.Type) graph.Type {
	inst, _ := defSection.Instantiations.GetOrCreate(match.Definition, argTypes)
	key := graph.ArgsKey(match.Definition, argTypes)
	if inf.visiting[key] {
		return inst.ReturnType
	}
	inf.visiting[key] = true
	defer delete(inf.visiting, key)

	body := &inferContext{paramTypes: make(map[graph.VariableID]graph.Type, len(match.Args)), inst: inst}
	for i, arg := range match.Args {
		if i >= len(argTypes) {
			break
		}
		if varID, ok := defSection.Variables[arg.ParamName]; ok {
			body.paramTypes[varID] = argTypes[i]
		}
	}

	result := inf.inferBody(defSection, body)
	refined, ok := inst.ReturnType.Refine(result)
	if ok && !refined.Equal(inst.ReturnType) {
		inst.ReturnType = refined
		inf.markChanged()
	}
	return inst.ReturnType
}

// inferBody runs every line in defSection's execute:/get:/replacement:
// body under ctx and returns the call's result type: the argument of
// the last "return" intrinsic encountered always wins. Absent an
// explicit return, an execute: body (a sequence of effect statements,
// whose values are all discarded) defaults to Void; a get: or
// replacement: body (an expression-producing body) implicitly returns
// its last line's value, the way a block expression would.
func (inf *Inferrer) inferBody(defSection *graph.Section, ctx *inferContext) graph.Type {
	kind := inf.bodyKind(defSection)
	result := graph.TypeVoid
	sawReturn := false
	for _, line := range inf.bodyLines(defSection.ID) {
		if !line.Expression.IsValid() {
			continue
		}
		t := inf.inferExpr(line.Expression, ctx)
		expr := inf.Program.Exprs.Get(line.Expression)
		if expr != nil && expr.Kind == graph.ExprIntrinsicCall && expr.IntrinsicName == "return" {
			result = t
			sawReturn = true
			continue
		}
		if !sawReturn && kind != graph.SecExecute {
			result = t
		}
	}
	return result
}

// bodyKind reports which single body-introducing child (at most one is
// expected) governs defSection's return semantics.
func (inf *Inferrer) bodyKind(defSection *graph.Section) graph.SectionKind {
	for _, childID := range defSection.Children {
		child := inf.Program.Sections.Get(childID)
		if child == nil {
			continue
		}
		switch child.Kind {
		case graph.SecExecute, graph.SecGet, graph.SecReplacement:
			return child.Kind
		}
	}
	return graph.SecCustom
}

// bodyLines collects every line belonging to defSection's execute:/get:/
// replacement: child (recursively, so a nested block still counts),
// skipping the metadata-only Patterns/Members/Alignment/Padding
// subtrees the same way the line-parser driver filter does.
func (inf *Inferrer) bodyLines(defSectionID graph.SectionID) []*graph.CodeLine {
	sec := inf.Program.Sections.Get(defSectionID)
	if sec == nil {
		return nil
	}
	var out []*graph.CodeLine
	for _, childID := range sec.Children {
		child := inf.Program.Sections.Get(childID)
		if child == nil {
			continue
		}
		switch child.Kind {
		case graph.SecExecute, graph.SecGet, graph.SecReplacement:
			inf.collectBodyLines(childID, &out)
		}
	}
	return out
}

func (inf *Inferrer) collectBodyLines(sectionID graph.SectionID, out *[]*graph.CodeLine) {
	sec := inf.Program.Sections.Get(sectionID)
	if sec == nil {
		return
	}
	for _, lineID := range sec.Lines {
		if line := inf.Program.Lines.Get(lineID); line != nil {
			*out = append(*out, line)
		}
	}
	for _, childID := range sec.Children {
		child := inf.Program.Sections.Get(childID)
		if child == nil {
			continue
		}
		switch child.Kind {
		case graph.SecPatterns, graph.SecMembers, graph.SecAlignment, graph.SecPadding:
			continue
		}
		inf.collectBodyLines(childID, out)
	}
}
