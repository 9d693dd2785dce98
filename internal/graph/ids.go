// Package graph is the ProgramGraph: the arena-owned entity model shared
// across every pipeline stage. Every cross-reference between CodeLine,
// Section, PatternDef, PatternRef, Expression, Variable and VarRef is an
// integer id into one of these arenas, never a pointer — this is what
// lets the resolver and type inference rewrite nodes in place without a
// lifetime tangle.
package graph

type (
	LineID       uint32
	SectionID    uint32
	PatternDefID uint32
	PatternRefID uint32
	ExprID       uint32
	VariableID   uint32
	VarRefID     uint32
	ClassDefID   uint32
)

const (
	NoLineID       LineID       = 0
	NoSectionID    SectionID    = 0
	NoPatternDefID PatternDefID = 0
	NoPatternRefID PatternRefID = 0
	NoExprID       ExprID       = 0
	NoVariableID   VariableID   = 0
	NoVarRefID     VarRefID     = 0
	NoClassDefID   ClassDefID   = 0
)

func (id LineID) IsValid() bool       { return id != NoLineID }
func (id SectionID) IsValid() bool    { return id != NoSectionID }
func (id PatternDefID) IsValid() bool { return id != NoPatternDefID }
func (id PatternRefID) IsValid() bool { return id != NoPatternRefID }
func (id ExprID) IsValid() bool       { return id != NoExprID }
func (id VariableID) IsValid() bool   { return id != NoVariableID }
func (id VarRefID) IsValid() bool     { return id != NoVarRefID }
func (id ClassDefID) IsValid() bool   { return id != NoClassDefID }
