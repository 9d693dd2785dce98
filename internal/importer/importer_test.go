package importer

import (
	"testing"

	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

func newImporter(files map[string][]byte) (*Importer, *source.FileSet) {
	provider := NewMapFileProvider()
	for k, v := range files {
		provider.Files[k] = v
	}
	fs := source.NewFileSet()
	return &Importer{Files: fs, Provider: provider}, fs
}

func TestImporterMergesLinesInOrder(t *testing.T) {
	im, program := prepare(t, map[string][]byte{
		"main.dl": []byte("set x to 5\nprint x\n"),
	})
	_ = program

	prog, err := im.Run("main.dl")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	lines := prog.Lines.Data()
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	for i, l := range lines {
		if int(l.MergedLineIdx) != i {
			t.Fatalf("lines[%d].MergedLineIdx = %d, want %d", i, l.MergedLineIdx, i)
		}
	}
	if lines[0].PatternText != "set x to 5" {
		t.Fatalf("PatternText = %q", lines[0].PatternText)
	}
}

func TestImporterExpandsImportInline(t *testing.T) {
	im, _ := prepare(t, map[string][]byte{
		"main.dl": []byte("import ./prelude.dl\nprint x\n"),
		"prelude.dl": []byte("effect print $:\n"),
	})
	prog, err := im.Run("main.dl")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	lines := prog.Lines.Data()
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2 (import line itself must not survive)", len(lines))
	}
	if lines[0].PatternText != "effect print $" {
		t.Fatalf("lines[0] = %q, want prelude content first", lines[0].PatternText)
	}
	if lines[1].PatternText != "print x" {
		t.Fatalf("lines[1] = %q", lines[1].PatternText)
	}
}

func TestImporterCircularImportShortCircuits(t *testing.T) {
	im, _ := prepare(t, map[string][]byte{
		"a.dl": []byte("import ./b.dl\neffect a:\n"),
		"b.dl": []byte("import ./a.dl\neffect b:\n"),
	})
	prog, err := im.Run("a.dl")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	lines := prog.Lines.Data()
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2 (no infinite loop)", len(lines))
	}
	if lines[0].PatternText != "effect b" || lines[1].PatternText != "effect a" {
		t.Fatalf("unexpected line order: %q, %q", lines[0].PatternText, lines[1].PatternText)
	}
}

func TestImporterUnreadableRootIsFatal(t *testing.T) {
	im, _ := prepare(t, map[string][]byte{})
	_, err := im.Run("missing.dl")
	if err == nil {
		t.Fatal("expected error for unreadable root file")
	}
}

func TestImporterStripsCommentsHonoringStrings(t *testing.T) {
	im, _ := prepare(t, map[string][]byte{
		"main.dl": []byte(`print "a # b" # real comment` + "\n"),
	})
	prog, err := im.Run("main.dl")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	lines := prog.Lines.Data()
	if lines[0].PatternText != `print "a # b"` {
		t.Fatalf("PatternText = %q", lines[0].PatternText)
	}
}

func TestImporterBlankAndCommentOnlyLinesOccupyMergedIndex(t *testing.T) {
	im, _ := prepare(t, map[string][]byte{
		"main.dl": []byte("effect a:\n\n# just a comment\neffect b:\n"),
	})
	prog, err := im.Run("main.dl")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	lines := prog.Lines.Data()
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}
	if lines[1].PatternText != "" || lines[2].PatternText != "" {
		t.Fatalf("expected empty pattern text for blank/comment lines, got %q, %q", lines[1].PatternText, lines[2].PatternText)
	}
	if int(lines[3].MergedLineIdx) != 3 {
		t.Fatalf("MergedLineIdx = %d, want 3", lines[3].MergedLineIdx)
	}
}

func prepare(t *testing.T, files map[string][]byte) (*Importer, *source.FileSet) {
	t.Helper()
	im, fs := newImporter(files)
	return im, fs
}
