package resolve

import (
	"testing"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/importer"
	"github.com/OpenAEC-Foundation/dynlex/internal/lineparse"
	"github.com/OpenAEC-Foundation/dynlex/internal/section"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// build loads content through the importer, section analyzer and line
// parser, then runs the resolver. shouldParse mirrors the line-selection
// rule a driver package applies in front of the line parser: skip a
// definition section's own header line (its text already became a
// PatternDef) and skip lines structurally owned by a Patterns/Members/
// Alignment/Padding section.
func build(t *testing.T, content string) (*graph.Program, *diag.Bag, error) {
	t.Helper()
	provider := importer.NewMapFileProvider()
	provider.Files["main.dl"] = []byte(content)
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}

	im := &importer.Importer{Files: fs, Provider: provider, Reporter: reporter}
	program, err := im.Run("main.dl")
	if err != nil {
		t.Fatalf("importer.Run() error = %v", err)
	}

	an := &section.Analyzer{Program: program, Reporter: reporter}
	if err := an.Run(); err != nil {
		t.Fatalf("section.Analyzer.Run() error = %v", err)
	}

	lp := &lineparse.Parser{Program: program, Reporter: reporter}
	lines := program.Lines.Data()
	for i := range lines {
		if shouldParse(program, &lines[i]) {
			lp.Run(&lines[i])
		}
	}

	resolver := &Resolver{Program: program, Reporter: reporter}
	runErr := resolver.Run()
	return program, bag, runErr
}

func shouldParse(program *graph.Program, line *graph.CodeLine) bool {
	if line.OpensSection.IsValid() {
		if sec := program.Sections.Get(line.OpensSection); sec != nil && sec.Kind.IsDefinitionKind() {
			return false
		}
	}
	sec := program.Sections.Get(line.Section)
	if sec == nil {
		return true
	}
	switch sec.Kind {
	case graph.SecPatterns, graph.SecMembers, graph.SecAlignment, graph.SecPadding:
		return false
	}
	return true
}

func findLine(program *graph.Program, patternText string) *graph.CodeLine {
	lines := program.Lines.Data()
	for i := range lines {
		if lines[i].PatternText == patternText {
			return &lines[i]
		}
	}
	return nil
}

func TestResolverMatchesEffectWithKeywordsAndArgs(t *testing.T) {
	program, bag, err := build(t, "effect set $ to $:\n  execute:\n    0\n\nset 1 to 2\n")
	if err != nil {
		t.Fatalf("resolve.Run() error = %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	defs := program.PatternDefs.Data()
	if len(defs) != 1 {
		t.Fatalf("got %d defs, want 1", len(defs))
	}
	def := &defs[0]
	if !def.Resolved || def.State != graph.DefInserted {
		t.Fatalf("def not inserted: resolved=%v state=%v", def.Resolved, def.State)
	}
	// "set" and "to" both parse as VariableLike runs (alnum text is
	// always VariableLike before classification); with no body ref ever
	// using either name as an argument, both classify to Literal as soon
	// as the section's own body ("0", a bare literal with no pattern
	// ref) stops promising further evidence: set, " ", $, " ", to, " ", $.
	if len(def.Elements) != 7 {
		t.Fatalf("got %d elements, want 7 (set)( )($)( )(to)( )($)", len(def.Elements))
	}
	if def.Elements[0].Kind != graph.ElemLiteral || def.Elements[0].Text != "set" {
		t.Fatalf("elements[0] = %+v, want Literal(set)", def.Elements[0])
	}
	if def.Elements[4].Kind != graph.ElemLiteral || def.Elements[4].Text != "to" {
		t.Fatalf("elements[4] = %+v, want Literal(to)", def.Elements[4])
	}

	callLine := findLine(program, "set 1 to 2")
	if callLine == nil {
		t.Fatal("call-site line not found")
	}
	call := program.Exprs.Get(callLine.Expression)
	if call.Kind != graph.ExprPatternCall {
		t.Fatalf("call.Kind = %v, want ExprPatternCall", call.Kind)
	}
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}
	arg0 := program.Exprs.Get(call.Args[0])
	arg1 := program.Exprs.Get(call.Args[1])
	if arg0.Kind != graph.ExprLiteralInt || arg0.IntValue != 1 {
		t.Fatalf("arg0 = %+v, want literal int 1", arg0)
	}
	if arg1.Kind != graph.ExprLiteralInt || arg1.IntValue != 2 {
		t.Fatalf("arg1 = %+v, want literal int 2", arg1)
	}
}

func TestResolverPromotesAndSharesFreeVariable(t *testing.T) {
	program, bag, err := build(t, "effect greet $:\n  execute:\n    name\n    name\n")
	if err != nil {
		t.Fatalf("resolve.Run() error = %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	var nameLines []*graph.CodeLine
	lines := program.Lines.Data()
	for i := range lines {
		if lines[i].PatternText == "name" {
			nameLines = append(nameLines, &lines[i])
		}
	}
	if len(nameLines) != 2 {
		t.Fatalf("got %d name lines, want 2", len(nameLines))
	}

	var varRefIDs []graph.VarRefID
	for _, line := range nameLines {
		expr := program.Exprs.Get(line.Expression)
		if expr.Kind != graph.ExprVariable {
			t.Fatalf("expr.Kind = %v, want ExprVariable", expr.Kind)
		}
		varRefIDs = append(varRefIDs, expr.VarRef)
	}

	ref0 := program.VarRefs.Get(varRefIDs[0])
	ref1 := program.VarRefs.Get(varRefIDs[1])
	if !ref0.Variable.IsValid() || ref0.Variable != ref1.Variable {
		t.Fatalf("refs resolved to different variables: %v vs %v", ref0.Variable, ref1.Variable)
	}
	if ref0.Definition != ref0.ID {
		t.Fatalf("earliest ref's Definition = %v, want itself (%v)", ref0.Definition, ref0.ID)
	}
	if ref1.Definition != ref0.ID {
		t.Fatalf("second ref's Definition = %v, want first ref's id (%v)", ref1.Definition, ref0.ID)
	}

	root := program.Sections.Get(program.Root)
	effect := program.Sections.Get(root.Children[0])
	if effect.Kind != graph.SecEffect {
		t.Fatalf("kind = %v, want SecEffect", effect.Kind)
	}
	variable, ok := effect.Variables["name"]
	if !ok || variable != ref0.Variable {
		t.Fatalf("effect section does not own the shared variable: got %v ok=%v, want %v", variable, ok, ref0.Variable)
	}
}
