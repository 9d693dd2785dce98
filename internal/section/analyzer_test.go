package section

import (
	"testing"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/importer"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

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
	an := &Analyzer{Program: program, Reporter: diag.BagReporter{Bag: bag}}
	if err := an.Run(); err != nil {
		t.Fatalf("Analyzer.Run() error = %v", err)
	}
	return program, bag
}

func TestAnalyzerBuildsNestedExecuteSection(t *testing.T) {
	program, _ := build(t, "effect a $:\n  execute:\n    print b\n")

	root := program.Sections.Get(program.Root)
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(root.Children))
	}
	effect := program.Sections.Get(root.Children[0])
	if effect.Kind != graph.SecEffect {
		t.Fatalf("kind = %v, want SecEffect", effect.Kind)
	}
	if len(effect.PatternDefs) != 1 {
		t.Fatalf("PatternDefs = %d, want 1", len(effect.PatternDefs))
	}
	def := program.PatternDefs.Get(effect.PatternDefs[0])
	if def.RawText != "a $" {
		t.Fatalf("RawText = %q, want %q", def.RawText, "a $")
	}
	if len(effect.Children) != 1 {
		t.Fatalf("effect children = %d, want 1", len(effect.Children))
	}
	execute := program.Sections.Get(effect.Children[0])
	if execute.Kind != graph.SecExecute {
		t.Fatalf("kind = %v, want SecExecute", execute.Kind)
	}
	if len(execute.Lines) != 1 {
		t.Fatalf("execute lines = %d, want 1", len(execute.Lines))
	}
}

func TestAnalyzerMacroLocalModifiers(t *testing.T) {
	program, _ := build(t, "macro local effect foo:\n  execute:\n    x\n")
	root := program.Sections.Get(program.Root)
	effect := program.Sections.Get(root.Children[0])
	if !effect.IsMacro || !effect.IsLocal {
		t.Fatalf("IsMacro=%v IsLocal=%v, want both true", effect.IsMacro, effect.IsLocal)
	}
	if effect.Kind != graph.SecEffect {
		t.Fatalf("kind = %v, want SecEffect", effect.Kind)
	}
}

func TestAnalyzerCustomSectionHasNoPatternDef(t *testing.T) {
	program, _ := build(t, "if $ then:\n  body\n")
	root := program.Sections.Get(program.Root)
	custom := program.Sections.Get(root.Children[0])
	if custom.Kind != graph.SecCustom {
		t.Fatalf("kind = %v, want SecCustom", custom.Kind)
	}
	if len(custom.PatternDefs) != 0 {
		t.Fatalf("PatternDefs = %d, want 0", len(custom.PatternDefs))
	}
	if len(root.PatternDefs) != 0 {
		t.Fatalf("root PatternDefs = %d, want 0 (resolved later by the line parser)", len(root.PatternDefs))
	}
}

func TestAnalyzerPatternsAliasesAttachToGrandparent(t *testing.T) {
	program, _ := build(t, "effect print $:\n  execute:\n    body\n  patterns:\n    print out $\n    write $ out\n")
	root := program.Sections.Get(program.Root)
	effect := program.Sections.Get(root.Children[0])
	if len(effect.PatternDefs) != 3 {
		t.Fatalf("PatternDefs = %d, want 3", len(effect.PatternDefs))
	}
	var texts []string
	for _, id := range effect.PatternDefs {
		texts = append(texts, program.PatternDefs.Get(id).RawText)
	}
	want := []string{"print $", "print out $", "write $ out"}
	for i, w := range want {
		if texts[i] != w {
			t.Fatalf("PatternDefs[%d] = %q, want %q (got %v)", i, texts[i], w, texts)
		}
	}
}

func TestAnalyzerClassSectionCreatesClassDefinition(t *testing.T) {
	program, _ := build(t, "class point:\n  members:\n    x\n")
	root := program.Sections.Get(program.Root)
	class := program.Sections.Get(root.Children[0])
	if class.Kind != graph.SecClass {
		t.Fatalf("kind = %v, want SecClass", class.Kind)
	}
	if !class.ClassDef.IsValid() {
		t.Fatal("ClassDef is not valid, want a created ClassDefinition")
	}
	cd := program.ClassDefs.Get(class.ClassDef)
	if cd.Section != class.ID {
		t.Fatalf("ClassDefinition.Section = %v, want %v", cd.Section, class.ID)
	}
}

func TestAnalyzerOverIndentIsFatal(t *testing.T) {
	provider := importer.NewMapFileProvider()
	provider.Files["main.dl"] = []byte("effect a:\n  first:\n      too deep\n")
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	im := &importer.Importer{Files: fs, Provider: provider, Reporter: diag.BagReporter{Bag: bag}}
	program, err := im.Run("main.dl")
	if err != nil {
		t.Fatalf("importer.Run() error = %v", err)
	}
	an := &Analyzer{Program: program, Reporter: diag.BagReporter{Bag: bag}}
	if err := an.Run(); err == nil {
		t.Fatal("expected over-indent error")
	}
	if !bag.HasErrors() {
		t.Fatal("expected an error diagnostic to be recorded")
	}
}
