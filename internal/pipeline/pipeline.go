// Package pipeline wires the five compiler-frontend stages — Import,
// Section, Line, Resolve, Infer — into the one ordered call a driver
// (a CLI, an LSP session) actually needs, the same way buildpipeline
// sequences vovakirdan-surge's own stages.
package pipeline

import (
	"sync/atomic"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/importer"
	"github.com/OpenAEC-Foundation/dynlex/internal/infer"
	"github.com/OpenAEC-Foundation/dynlex/internal/lineparse"
	"github.com/OpenAEC-Foundation/dynlex/internal/pattern"
	"github.com/OpenAEC-Foundation/dynlex/internal/resolve"
	"github.com/OpenAEC-Foundation/dynlex/internal/section"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// Pipeline runs the full front end over one root file. Cancel is a
// plain *atomic.Bool rather than a channel: the whole pipeline is
// single-threaded and synchronous, so a cooperative flag checked
// between stages (and between iterations within a stage) is all
// cancellation needs to be.
type Pipeline struct {
	Files       *source.FileSet
	Provider    importer.FileProvider
	LibraryRoot string
	Reporter    diag.Reporter
	Cancel      *atomic.Bool

	// CodeGen, if set, is handed every PatternDef's Section once Run
	// completes successfully, so a future code generator can walk
	// Instantiations and fill in each one's LLVMFunction slot. A nil
	// CodeGen just means Run stops at a fully type-checked Program.
	CodeGen CodeGenConsumer
}

// CodeGenConsumer is the boundary this frontend stops at: lowering a
// monomorphized Instantiation to an LLVMFunction value (left as `any`
// here, since no codegen backend exists in this repo) is someone
// else's job. Accept exists so a driver can still exercise that
// boundary end-to-end without the frontend depending on LLVM itself.
type CodeGenConsumer interface {
	Accept(program *graph.Program, section *graph.Section, inst *graph.Instantiation)
}

// ErrUnreadableRoot wraps the importer's root-file error so a driver
// can tell "never even started" apart from every other stage failure
// (resolve/infer errors always arrive alongside error diagnostics
// already in the Bag; this one doesn't).
type ErrUnreadableRoot struct{ Err error }

func (e *ErrUnreadableRoot) Error() string { return e.Err.Error() }
func (e *ErrUnreadableRoot) Unwrap() error { return e.Err }

// Result is everything a caller needs after a successful Run: the
// fully resolved and type-checked Program, plus whether inference
// reported anything (a caller may still want the Program for
// diagnostics-in-context even when Err is non-nil).
type Result struct {
	Program *graph.Program
	Err     error

	// Forest is the pattern forest built by the Resolve stage, present
	// whenever that stage ran at all (even if Resolve itself failed to
	// converge) — a driver's debug tooling (--dump-trie) needs it, but
	// nothing in the frontend itself reads it back.
	Forest *pattern.Forest
}

// Run executes Import, Section, Line, Resolve, Infer in order,
// stopping early (without error) the moment Cancel is set. Import,
// Resolve and Infer are each handed the same cancel func so a long
// import graph, a pathological resolve loop, or a non-converging infer
// loop can all be aborted the same way; Section and Line get no cancel
// func, and Run itself checks it between stages and between the Line
// stage's lines.
func (pl *Pipeline) Run(rootPath string) Result {
	cancel := pl.cancelFunc()

	im := &importer.Importer{
		Files:       pl.Files,
		Provider:    pl.Provider,
		LibraryRoot: pl.LibraryRoot,
		Reporter:    pl.Reporter,
		Cancel:      cancel,
	}
	program, err := im.Run(rootPath)
	if err != nil {
		return Result{Err: &ErrUnreadableRoot{Err: err}}
	}
	if cancel() {
		return Result{Program: program}
	}

	an := &section.Analyzer{Program: program, Reporter: pl.Reporter}
	if err := an.Run(); err != nil {
		return Result{Program: program, Err: err}
	}
	if cancel() {
		return Result{Program: program}
	}

	lp := &lineparse.Parser{Program: program, Reporter: pl.Reporter}
	for _, line := range linesToParse(program) {
		if cancel() {
			return Result{Program: program}
		}
		lp.Run(line)
	}

	resolver := &resolve.Resolver{Program: program, Reporter: pl.Reporter, Cancel: cancel}
	resolveErr := resolver.Run()
	forest := resolver.Forest()
	if resolveErr != nil {
		return Result{Program: program, Forest: forest, Err: resolveErr}
	}
	if cancel() {
		return Result{Program: program, Forest: forest}
	}

	inf := &infer.Inferrer{Program: program, Reporter: pl.Reporter, Cancel: cancel}
	if err := inf.Run(); err != nil {
		return Result{Program: program, Forest: forest, Err: err}
	}

	if pl.CodeGen != nil && !cancel() {
		pl.runCodeGen(program)
	}

	return Result{Program: program, Forest: forest}
}

func (pl *Pipeline) cancelFunc() func() bool {
	if pl.Cancel == nil {
		return func() bool { return false }
	}
	return pl.Cancel.Load
}

func (pl *Pipeline) runCodeGen(program *graph.Program) {
	defs := program.PatternDefs.Data()
	for i := range defs {
		sec := program.Sections.Get(defs[i].Section)
		if sec == nil || sec.Instantiations == nil {
			continue
		}
		for _, inst := range sec.Instantiations.All() {
			pl.CodeGen.Accept(program, sec, inst)
		}
	}
}

// linesToParse returns every CodeLine the line parser should run over:
// anything owned by a body-holding section, skipping the metadata-only
// Patterns/Members/Alignment/Padding subtrees and skipping a
// definition section's own header line (lineparse.Parser.Run already
// refuses empty PatternText, but a definition header's PatternText is
// its raw pattern shape, not an expression to parse as one).
func linesToParse(program *graph.Program) []*graph.CodeLine {
	lines := program.Lines.Data()
	out := make([]*graph.CodeLine, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		if line.OpensSection.IsValid() {
			if sec := program.Sections.Get(line.OpensSection); sec != nil && sec.Kind.IsDefinitionKind() {
				continue
			}
		}
		sec := program.Sections.Get(line.Section)
		if sec == nil {
			out = append(out, line)
			continue
		}
		switch sec.Kind {
		case graph.SecPatterns, graph.SecMembers, graph.SecAlignment, graph.SecPadding:
			continue
		}
		out = append(out, line)
	}
	return out
}
