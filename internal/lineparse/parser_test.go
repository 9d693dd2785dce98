package lineparse

import (
	"testing"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/importer"
	"github.com/OpenAEC-Foundation/dynlex/internal/section"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// build loads content through the importer and section analyzer (so
// spans, HasChildSection and OpensSection are realistic) and runs the
// line parser over every resulting line.
func build(t *testing.T, content string) (*graph.Program, *diag.Bag) {
	t.Helper()
	provider := importer.NewMapFileProvider()
	provider.Files["main.dl"] = []byte(content)
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	im := &importer.Importer{Files: fs, Provider: provider, Reporter: diag.BagReporter{Bag: bag}}
	program, err := im.Run("main.dl")
	if err != nil {
		t.Fatalf("importer.Run() error = %v", err)
	}
	an := &section.Analyzer{Program: program, Reporter: diag.BagReporter{Bag: bag}}
	if err := an.Run(); err != nil {
		t.Fatalf("section.Analyzer.Run() error = %v", err)
	}
	lp := &Parser{Program: program, Reporter: diag.BagReporter{Bag: bag}}
	lines := program.Lines.Data()
	for i := range lines {
		lp.Run(&lines[i])
	}
	return program, bag
}

func singleLine(t *testing.T, program *graph.Program) *graph.CodeLine {
	t.Helper()
	lines := program.Lines.Data()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	return &lines[0]
}

func TestParseStringLiteralCollapses(t *testing.T) {
	program, bag := build(t, `"hello\nworld"`+"\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	line := singleLine(t, program)
	expr := program.Exprs.Get(line.Expression)
	if expr.Kind != graph.ExprLiteralString {
		t.Fatalf("kind = %v, want ExprLiteralString", expr.Kind)
	}
	if expr.StringValue != "hello\nworld" {
		t.Fatalf("StringValue = %q, want %q", expr.StringValue, "hello\nworld")
	}
}

func TestParseNumberLiterals(t *testing.T) {
	program, bag := build(t, "3.5\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	line := singleLine(t, program)
	expr := program.Exprs.Get(line.Expression)
	if expr.Kind != graph.ExprLiteralFloat {
		t.Fatalf("kind = %v, want ExprLiteralFloat", expr.Kind)
	}
	if expr.FloatValue != 3.5 {
		t.Fatalf("FloatValue = %v, want 3.5", expr.FloatValue)
	}
}

func TestParseIntegerDoesNotBleedIntoIdentifier(t *testing.T) {
	program, bag := build(t, "Int32\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	line := singleLine(t, program)
	expr := program.Exprs.Get(line.Expression)
	if expr.Kind != graph.ExprPending {
		t.Fatalf("kind = %v, want ExprPending (Int32 should stay one identifier)", expr.Kind)
	}
	ref := program.PatternRefs.Get(expr.Ref)
	if ref.PatternText != "Int32" {
		t.Fatalf("PatternText = %q, want %q", ref.PatternText, "Int32")
	}
}

func TestParseIntrinsicCallCollapses(t *testing.T) {
	program, bag := build(t, `@intrinsic("add", x, y)`+"\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	line := singleLine(t, program)
	expr := program.Exprs.Get(line.Expression)
	if expr.Kind != graph.ExprIntrinsicCall {
		t.Fatalf("kind = %v, want ExprIntrinsicCall", expr.Kind)
	}
	if expr.IntrinsicName != "add" {
		t.Fatalf("IntrinsicName = %q, want %q", expr.IntrinsicName, "add")
	}
	if len(expr.IntrinsicArgs) != 2 {
		t.Fatalf("IntrinsicArgs = %d, want 2", len(expr.IntrinsicArgs))
	}
}

func TestParseParenCollapsesToInner(t *testing.T) {
	program, bag := build(t, `(5)`+"\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	line := singleLine(t, program)
	expr := program.Exprs.Get(line.Expression)
	if expr.Kind != graph.ExprLiteralInt {
		t.Fatalf("kind = %v, want ExprLiteralInt (single paren should collapse)", expr.Kind)
	}
	if expr.IntValue != 5 {
		t.Fatalf("IntValue = %d, want 5", expr.IntValue)
	}
}

func TestParsePendingCallKeepsLiteralsAndSlots(t *testing.T) {
	program, bag := build(t, `set x to (1 + 2)`+"\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	line := singleLine(t, program)
	expr := program.Exprs.Get(line.Expression)
	if expr.Kind != graph.ExprPending {
		t.Fatalf("kind = %v, want ExprPending", expr.Kind)
	}
	ref := program.PatternRefs.Get(expr.Ref)
	want := "set x to \x07"
	if ref.PatternText != want {
		t.Fatalf("PatternText = %q, want %q", ref.PatternText, want)
	}
	if len(ref.ArgExprs) != 1 {
		t.Fatalf("ArgExprs = %d, want 1", len(ref.ArgExprs))
	}
	inner := program.Exprs.Get(ref.ArgExprs[0])
	if inner.Kind != graph.ExprPending {
		t.Fatalf("inner kind = %v, want ExprPending (1 + 2 is itself a pattern call)", inner.Kind)
	}
	innerRef := program.PatternRefs.Get(inner.Ref)
	if innerRef.Kind != graph.PatternExpression {
		t.Fatalf("inner ref Kind = %v, want PatternExpression", innerRef.Kind)
	}
}

func TestParseWhitespaceCollapsedWarns(t *testing.T) {
	program, bag := build(t, "set   x to 1\n")
	if !bag.HasWarnings() {
		t.Fatal("expected a whitespace-collapsed warning")
	}
	line := singleLine(t, program)
	expr := program.Exprs.Get(line.Expression)
	ref := program.PatternRefs.Get(expr.Ref)
	want := "set x to \x07"
	if ref.PatternText != want {
		t.Fatalf("PatternText = %q, want %q", ref.PatternText, want)
	}
}

func TestParseUnclosedStringReportsError(t *testing.T) {
	_, bag := build(t, `print "oops`+"\n")
	if !bag.HasErrors() {
		t.Fatal("expected an unclosed-string error")
	}
}

func TestParseSectionHeaderGetsSectionKind(t *testing.T) {
	program, bag := build(t, "if x then:\n  body\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	lines := program.Lines.Data()
	header := &lines[0]
	expr := program.Exprs.Get(header.Expression)
	ref := program.PatternRefs.Get(expr.Ref)
	if ref.Kind != graph.PatternSection {
		t.Fatalf("Kind = %v, want PatternSection", ref.Kind)
	}
}
