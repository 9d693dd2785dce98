package graph

import "github.com/OpenAEC-Foundation/dynlex/internal/source"

// PatternKind selects which of the three shared tries a PatternDef/
// PatternRef belongs to (Class definitions use the Expression trie).
type PatternKind uint8

const (
	PatternEffect PatternKind = iota
	PatternExpression
	PatternSection
	// Class definitions share the Expression trie: a class's own
	// "pattern" is the constructor-call shape, which call sites spell
	// the same way an expression call is spelled.
)

func (k PatternKind) String() string {
	switch k {
	case PatternEffect:
		return "effect"
	case PatternExpression:
		return "expression"
	case PatternSection:
		return "section"
	}
	return "unknown"
}

// DefState tracks a PatternDef's lifecycle: Parsed -> Classifying
// (repeatedly, as VariableLike elements resolve) -> Inserted.
type DefState uint8

const (
	DefParsed DefState = iota
	DefClassifying
	DefInserted
)

// PatternDef is one pattern definition.
type PatternDef struct {
	ID       PatternDefID
	Kind     PatternKind
	Section  SectionID // the DefinitionSection that owns it
	Line     LineID
	Span     source.Span

	RawText  string // pattern text before element parsing (still has VariableLike runs)
	Elements []PatternElement

	State    DefState
	Resolved bool

	// ParameterOrder lists parameter names (Variable/WordCapture) in
	// left-to-right positional order, as they appear in Elements. Filled
	// once State == DefInserted.
	ParameterOrder []string
}

// PatternDefs is the arena owning every PatternDef.
type PatternDefs struct {
	data []PatternDef
}

func NewPatternDefs() *PatternDefs {
	return &PatternDefs{data: make([]PatternDef, 1, 64)}
}

func (p *PatternDefs) New(def PatternDef) PatternDefID {
	id := PatternDefID(len(p.data))
	def.ID = id
	p.data = append(p.data, def)
	return id
}

func (p *PatternDefs) Get(id PatternDefID) *PatternDef {
	if !id.IsValid() || int(id) >= len(p.data) {
		return nil
	}
	return &p.data[id]
}

func (p *PatternDefs) Len() int { return len(p.data) - 1 }

func (p *PatternDefs) Data() []PatternDef {
	if len(p.data) <= 1 {
		return nil
	}
	return p.data[1:]
}
