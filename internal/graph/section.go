package graph

// SectionKind tags what a Section represents.
type SectionKind uint8

const (
	SecCustom SectionKind = iota
	SecSection
	SecEffect
	SecExpression
	SecClass
	SecPatterns
	SecExecute
	SecGet
	SecReplacement
	SecMembers
	SecAlignment
	SecPadding
)

func (k SectionKind) String() string {
	switch k {
	case SecCustom:
		return "custom"
	case SecSection:
		return "section"
	case SecEffect:
		return "effect"
	case SecExpression:
		return "expression"
	case SecClass:
		return "class"
	case SecPatterns:
		return "patterns"
	case SecExecute:
		return "execute"
	case SecGet:
		return "get"
	case SecReplacement:
		return "replacement"
	case SecMembers:
		return "members"
	case SecAlignment:
		return "alignment"
	case SecPadding:
		return "padding"
	}
	return "unknown"
}

// IsDefinitionKind reports whether this kind owns PatternDefs directly
// (Effect/Expression/Section/Class — a "DefinitionSection").
func (k SectionKind) IsDefinitionKind() bool {
	switch k {
	case SecEffect, SecExpression, SecSection, SecClass:
		return true
	default:
		return false
	}
}

// VarRef is one textual occurrence of a variable name.
type VarRef struct {
	ID         VarRefID
	Name       string
	Line       LineID
	Definition VarRefID // NoVarRefID until scope resolution assigns one
	Variable   VariableID
}

// Section is one node of the section tree.
type Section struct {
	ID     SectionID
	Kind   SectionKind
	Parent SectionID

	Children []SectionID
	Lines    []LineID

	PatternDefs      []PatternDefID
	PatternRefs      []PatternRefID
	ClassDef         ClassDefID // valid only for SecClass

	VariableRefs map[string][]VarRefID
	VariableDefs map[string]VarRefID
	Variables    map[string]VariableID

	VariableLikeCounts map[string]int

	// Instantiations holds one monomorphization per distinct call-site
	// argument-type tuple. Every section gets an empty set; only a
	// non-macro DefinitionSection's set is ever filled.
	Instantiations *InstantiationSet

	IsMacro bool
	IsLocal bool

	UnresolvedCount int
}

func newSection(id SectionID, kind SectionKind, parent SectionID) Section {
	return Section{
		ID:                 id,
		Kind:               kind,
		Parent:             parent,
		VariableRefs:       make(map[string][]VarRefID),
		VariableDefs:       make(map[string]VarRefID),
		Variables:          make(map[string]VariableID),
		VariableLikeCounts: make(map[string]int),
		Instantiations:     NewInstantiationSet(),
	}
}

// Sections is the arena owning every Section in the tree.
type Sections struct {
	data []Section
}

func NewSections() *Sections {
	return &Sections{data: make([]Section, 1, 64)}
}

// New allocates a child of parent (or the root, if parent is NoSectionID
// and this is the first call) and links it into the parent's Children.
func (s *Sections) New(kind SectionKind, parent SectionID) SectionID {
	id := SectionID(len(s.data))
	s.data = append(s.data, newSection(id, kind, parent))
	if parent.IsValid() {
		if p := s.Get(parent); p != nil {
			p.Children = append(p.Children, id)
		}
	}
	return id
}

func (s *Sections) Get(id SectionID) *Section {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

func (s *Sections) Len() int { return len(s.data) - 1 }

// Data exposes every stored Section, excluding the arena sentinel.
func (s *Sections) Data() []Section {
	if len(s.data) <= 1 {
		return nil
	}
	return s.data[1:]
}

// NearestDefinitionAncestor walks up from id (inclusive) to the nearest
// Section whose kind owns PatternDefs directly.
func (s *Sections) NearestDefinitionAncestor(id SectionID) SectionID {
	for cur := id; cur.IsValid(); {
		sec := s.Get(cur)
		if sec == nil {
			return NoSectionID
		}
		if sec.Kind.IsDefinitionKind() {
			return cur
		}
		cur = sec.Parent
	}
	return NoSectionID
}

// Ancestors returns id and every ancestor up to (and including) the root,
// nearest first.
func (s *Sections) Ancestors(id SectionID) []SectionID {
	var out []SectionID
	for cur := id; cur.IsValid(); {
		out = append(out, cur)
		sec := s.Get(cur)
		if sec == nil {
			break
		}
		cur = sec.Parent
	}
	return out
}

// IsAncestor reports whether ancestor is id or an ancestor of id.
func (s *Sections) IsAncestor(ancestor, id SectionID) bool {
	for cur := id; cur.IsValid(); {
		if cur == ancestor {
			return true
		}
		sec := s.Get(cur)
		if sec == nil {
			return false
		}
		cur = sec.Parent
	}
	return false
}

// AddUnresolved adjusts UnresolvedCount by delta on id and every ancestor.
// The count transitions to/from zero exactly when a subtree's resolution
// state changes.
func (s *Sections) AddUnresolved(id SectionID, delta int) {
	for cur := id; cur.IsValid(); {
		sec := s.Get(cur)
		if sec == nil {
			return
		}
		sec.UnresolvedCount += delta
		cur = sec.Parent
	}
}
