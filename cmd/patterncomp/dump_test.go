package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/importer"
	"github.com/OpenAEC-Foundation/dynlex/internal/pipeline"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

func compileFixture(t *testing.T, content string) (*pipeline.Pipeline, pipeline.Result) {
	t.Helper()
	provider := importer.NewMapFileProvider()
	provider.Files["main.dl"] = []byte(content)
	pl := &pipeline.Pipeline{
		Files:    source.NewFileSet(),
		Provider: provider,
		Reporter: diag.BagReporter{Bag: diag.NewBag(0)},
	}
	return pl, pl.Run("main.dl")
}

func TestDumpSectionsPrintsHeaderAndChildren(t *testing.T) {
	_, res := compileFixture(t, "effect set $ to $:\n  execute:\n    0\n\nset 1 to 2\n")
	if res.Program == nil {
		t.Fatal("Run() produced no Program")
	}

	var buf bytes.Buffer
	dumpSections(&buf, res.Program)
	out := buf.String()

	if !strings.Contains(out, "effect") {
		t.Fatalf("missing effect section: %q", out)
	}
	if !strings.Contains(out, "execute") {
		t.Fatalf("missing execute child section: %q", out)
	}
}

func TestDumpPatternsPrintsSyntheticCaptureNames(t *testing.T) {
	_, res := compileFixture(t, "effect set $ to $:\n  execute:\n    0\n\nset 1 to 2\n")
	if res.Program == nil {
		t.Fatal("Run() produced no Program")
	}

	var buf bytes.Buffer
	dumpPatterns(&buf, res.Program)
	out := buf.String()

	if !strings.Contains(out, "$ capture -> _1") && !strings.Contains(out, "$ capture -> _2") {
		t.Fatalf("missing synthesized $ capture names: %q", out)
	}
}

func TestDumpTrieListsAllThreeKinds(t *testing.T) {
	_, res := compileFixture(t, "effect set $ to $:\n  execute:\n    0\n\nset 1 to 2\n")
	if res.Forest == nil {
		t.Fatal("Run() produced no Forest")
	}

	var buf bytes.Buffer
	dumpTrie(&buf, res.Forest)
	out := buf.String()

	for _, want := range []string{"-- effect --", "-- expression --", "-- section --"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q: %q", want, out)
		}
	}
}

func TestFormatElementRendersDefinitionElements(t *testing.T) {
	_, res := compileFixture(t, "effect set $ to $:\n  execute:\n    0\n\nset 1 to 2\n")
	if res.Program == nil {
		t.Fatal("Run() produced no Program")
	}
	defs := res.Program.PatternDefs.Data()
	if len(defs) == 0 {
		t.Fatal("expected at least one pattern definition")
	}
	for _, elem := range defs[0].Elements {
		if formatElement(elem) == "unknown" {
			t.Fatalf("unexpected element kind %v formatted as unknown", elem.Kind)
		}
	}
}
