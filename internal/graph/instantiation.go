package graph

import (
	"strconv"
	"strings"
)

// Instantiation is one monomorphization of a non-macro PatternDef for a
// specific tuple of call-site argument types. LLVMFunction is opaque
// here: codegen is the only component that ever looks inside it.
type Instantiation struct {
	ArgTypes     []Type
	ReturnType   Type
	LLVMFunction any
}

// InstantiationKey makes (PatternDefID, []Type) comparable so it can key a
// Go map, mirroring the ArgsKey string approach used for generic
// instantiation maps elsewhere in the pack (slices cannot be map keys
// directly).
type InstantiationKey struct {
	Def     PatternDefID
	ArgsKey string
}

func typeKey(t Type) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(t.Kind)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(int(t.ByteSize)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(int(t.PointerDepth)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(int(t.ClassDef)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(t.InstantiationIx))
	return b.String()
}

func ArgsKey(def PatternDefID, args []Type) InstantiationKey {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(typeKey(a))
	}
	return InstantiationKey{Def: def, ArgsKey: b.String()}
}

// InstantiationSet holds every Instantiation recorded for a PatternDef,
// keyed lazily by call-site argument types as type inference first
// encounters them.
type InstantiationSet struct {
	byKey map[InstantiationKey]*Instantiation
	order []InstantiationKey
}

func NewInstantiationSet() *InstantiationSet {
	return &InstantiationSet{byKey: make(map[InstantiationKey]*Instantiation)}
}

// GetOrCreate returns the existing Instantiation for (def, argTypes) or
// creates one with an Undeduced ReturnType.
func (s *InstantiationSet) GetOrCreate(def PatternDefID, argTypes []Type) (*Instantiation, bool) {
	key := ArgsKey(def, argTypes)
	if inst, ok := s.byKey[key]; ok {
		return inst, false
	}
	inst := &Instantiation{ArgTypes: append([]Type(nil), argTypes...), ReturnType: TypeUndeduced}
	s.byKey[key] = inst
	s.order = append(s.order, key)
	return inst, true
}

func (s *InstantiationSet) All() []*Instantiation {
	out := make([]*Instantiation, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// FieldDef is one field of a ClassDefinition's `members:` section.
type FieldDef struct {
	Name    string
	TypeRef string // unresolved textual type name; resolved during type inference
	Type    Type
}

// ClassInstantiation is one structural monomorphization of a class: the
// concrete field types for one tuple of class type arguments.
type ClassInstantiation struct {
	TypeArgs   []Type
	FieldTypes []Type
}

// ClassDefinition describes a `class` DefinitionSection. Classes are
// structurally monomorphized the same way functions are:
// Instantiations holds one ClassInstantiation per distinct type-argument
// tuple actually constructed.
type ClassDefinition struct {
	ID             ClassDefID
	Section        SectionID
	Fields         []FieldDef
	Alignment      int
	Padding        int
	Instantiations []ClassInstantiation
}

type ClassDefs struct {
	data []ClassDefinition
}

func NewClassDefs() *ClassDefs {
	return &ClassDefs{data: make([]ClassDefinition, 1, 16)}
}

func (c *ClassDefs) New(def ClassDefinition) ClassDefID {
	id := ClassDefID(len(c.data))
	def.ID = id
	c.data = append(c.data, def)
	return id
}

func (c *ClassDefs) Get(id ClassDefID) *ClassDefinition {
	if !id.IsValid() || int(id) >= len(c.data) {
		return nil
	}
	return &c.data[id]
}

// Data exposes every stored ClassDefinition, excluding the arena sentinel.
func (c *ClassDefs) Data() []ClassDefinition {
	if len(c.data) <= 1 {
		return nil
	}
	return c.data[1:]
}

// GetOrCreateInstantiation returns the index of the ClassInstantiation
// matching typeArgs, creating one (with field types copied from fields'
// declared, still possibly Undeduced, types) if none exists yet.
func (c *ClassDefs) GetOrCreateInstantiation(id ClassDefID, typeArgs []Type) int {
	def := c.Get(id)
	if def == nil {
		return -1
	}
	for i, inst := range def.Instantiations {
		if sameTypes(inst.TypeArgs, typeArgs) {
			return i
		}
	}
	fieldTypes := make([]Type, len(def.Fields))
	for i, f := range def.Fields {
		fieldTypes[i] = f.Type
	}
	def.Instantiations = append(def.Instantiations, ClassInstantiation{
		TypeArgs:   append([]Type(nil), typeArgs...),
		FieldTypes: fieldTypes,
	})
	return len(def.Instantiations) - 1
}

func sameTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
