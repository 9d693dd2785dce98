package graph

import "github.com/OpenAEC-Foundation/dynlex/internal/source"

// Program owns every arena produced by a single pipeline run. A re-run
// (e.g. an LSP re-parse after an edit) builds a fresh Program rather than
// mutating this one.
type Program struct {
	Files *source.FileSet

	Lines       *Lines
	Sections    *Sections
	PatternDefs *PatternDefs
	PatternRefs *PatternRefs
	Exprs       *Exprs
	Variables   *Variables
	VarRefs     *VarRefs
	ClassDefs   *ClassDefs

	Root SectionID
}

func NewProgram(files *source.FileSet) *Program {
	return &Program{
		Files:       files,
		Lines:       NewLines(0),
		Sections:    NewSections(),
		PatternDefs: NewPatternDefs(),
		PatternRefs: NewPatternRefs(),
		Exprs:       NewExprs(),
		Variables:   NewVariables(),
		VarRefs:     NewVarRefs(),
		ClassDefs:   NewClassDefs(),
	}
}
