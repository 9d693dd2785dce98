package graph

// RefState tracks a PatternRef's lifecycle:
// Unresolved -> {Resolved(match) | VariablePromoted | Failed}.
type RefState uint8

const (
	RefUnresolved RefState = iota
	RefResolved
	RefVariablePromoted
	RefFailed
)

// PatternRef is one reference to a pattern at a use site.
type PatternRef struct {
	ID               PatternRefID
	OwningExpression ExprID
	Kind             PatternKind
	Line             LineID

	PatternText string // after the line parser's literal carve-out (U+0007 slots)
	Elements    []PatternElement

	// ArgExprs holds the child Expression built for each U+0007 slot in
	// PatternText, in left-to-right order — the i-th ElemVariable in
	// Elements corresponds to ArgExprs[i]. Populated by the line parser;
	// consumed by the resolver when it assembles a match's arguments.
	ArgExprs []ExprID

	Match *Match
	State RefState

	// PromotedVarRef is set when State == RefVariablePromoted: the
	// VarRef standing in for this ref's owning Expression, which the
	// resolver's expansion pass rewrites into an ExprVariable.
	PromotedVarRef VarRefID

	// VariableLikeNames enumerates the VariableLike element texts this
	// ref contributes to its ancestor definition sections'
	// variable_like_counts bookkeeping.
	VariableLikeNames []string
}

type PatternRefs struct {
	data []PatternRef
}

func NewPatternRefs() *PatternRefs {
	return &PatternRefs{data: make([]PatternRef, 1, 64)}
}

func (p *PatternRefs) New(ref PatternRef) PatternRefID {
	id := PatternRefID(len(p.data))
	ref.ID = id
	p.data = append(p.data, ref)
	return id
}

func (p *PatternRefs) Get(id PatternRefID) *PatternRef {
	if !id.IsValid() || int(id) >= len(p.data) {
		return nil
	}
	return &p.data[id]
}

func (p *PatternRefs) Len() int { return len(p.data) - 1 }

func (p *PatternRefs) Data() []PatternRef {
	if len(p.data) <= 1 {
		return nil
	}
	return p.data[1:]
}
