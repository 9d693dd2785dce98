package infer

import (
	"testing"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/importer"
	"github.com/OpenAEC-Foundation/dynlex/internal/lineparse"
	"github.com/OpenAEC-Foundation/dynlex/internal/resolve"
	"github.com/OpenAEC-Foundation/dynlex/internal/section"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// build runs the full front half of the pipeline (importer, section
// analysis, line parsing, resolution) the same way resolve's own tests
// do, then runs type inference over the result. inf.Run()'s error is
// intentionally not fatal here: several tests below want to inspect the
// diagnostics a failed deduction produces.
func build(t *testing.T, content string) (*graph.Program, *diag.Bag) {
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

	resolver := &resolve.Resolver{Program: program, Reporter: reporter}
	if err := resolver.Run(); err != nil {
		t.Fatalf("resolve.Resolver.Run() error = %v", err)
	}

	inf := &Inferrer{Program: program, Reporter: reporter}
	_ = inf.Run()

	return program, bag
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

func TestInferDeducesLiteralArgsOfNonMacroEffect(t *testing.T) {
	program, bag := build(t, "effect set $ to $:\n  execute:\n    0\n\nset 1 to 2\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	callLine := findLine(program, "set 1 to 2")
	if callLine == nil {
		t.Fatal("call-site line not found")
	}
	call := program.Exprs.Get(callLine.Expression)
	arg0 := program.Exprs.Get(call.Args[0])
	arg1 := program.Exprs.Get(call.Args[1])
	if arg0.Type.Kind != graph.Integer || arg0.Type.ByteSize != 4 {
		t.Fatalf("arg0.Type = %+v, want Integer(4)", arg0.Type)
	}
	if arg1.Type.Kind != graph.Integer || arg1.Type.ByteSize != 4 {
		t.Fatalf("arg1.Type = %+v, want Integer(4)", arg1.Type)
	}

	defs := program.PatternDefs.Data()
	if len(defs) != 1 {
		t.Fatalf("got %d defs, want 1", len(defs))
	}
	defSection := program.Sections.Get(defs[0].Section)
	insts := defSection.Instantiations.All()
	if len(insts) != 1 {
		t.Fatalf("got %d instantiations, want 1", len(insts))
	}
	if insts[0].ReturnType.Kind != graph.Void {
		t.Fatalf("instantiation.ReturnType = %+v, want Void (an execute: body with no explicit return)", insts[0].ReturnType)
	}
}

// TestInferPropagatesNumericFromArithmeticPartner exercises the
// fixed-point loop actually needing more than one pass: the shared
// variable "n" starts Undeduced, only gains Numeric from its arithmetic
// partner on the pass that visits the add, and the line referencing "n"
// alone only picks that up on a subsequent pass.
func TestInferPropagatesNumericFromArithmeticPartner(t *testing.T) {
	program, bag := build(t, "n\n@intrinsic(\"add\", n, 1)\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	bareLine := findLine(program, "n")
	if bareLine == nil {
		t.Fatal("bare variable line not found")
	}
	bare := program.Exprs.Get(bareLine.Expression)
	if !isNumericKind(bare.Type) {
		t.Fatalf("bare n.Type = %+v, want a numeric kind", bare.Type)
	}
}

func TestInferMacroInlinesCallSiteArgumentType(t *testing.T) {
	program, bag := build(t,
		"macro effect double $:\n  replacement:\n    @intrinsic(\"add\", _1, _1)\n\ndouble 3\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}

	callLine := findLine(program, "double 3")
	if callLine == nil {
		t.Fatal("call-site line not found")
	}
	call := program.Exprs.Get(callLine.Expression)
	if call.Type.Kind != graph.Integer {
		t.Fatalf("macro call result type = %+v, want Integer", call.Type)
	}
}

func TestInferReportsNonNumericArithmeticOperand(t *testing.T) {
	_, bag := build(t,
		"effect combine $ and $:\n  execute:\n    @intrinsic(\"add\", _1, _2)\n\ncombine \"a\" and 1\n")
	if !bag.HasErrors() {
		t.Fatalf("expected a type error for adding a string to a number, got none: %v", bag.Items())
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeArithmeticNonNumeric {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a TypeArithmeticNonNumeric diagnostic, got: %v", bag.Items())
	}
}
