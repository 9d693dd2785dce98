package graph

// Variable is a named, typed binding. It lives on the ancestor Section
// nearest to the highest-level reference that still has a matching
// in-scope definition (populated by scope resolution).
type Variable struct {
	ID         VariableID
	Name       string
	Type       Type
	Definition VarRefID
	Section    SectionID
}

type Variables struct {
	data []Variable
}

func NewVariables() *Variables {
	return &Variables{data: make([]Variable, 1, 64)}
}

func (v *Variables) New(variable Variable) VariableID {
	id := VariableID(len(v.data))
	variable.ID = id
	v.data = append(v.data, variable)
	return id
}

func (v *Variables) Get(id VariableID) *Variable {
	if !id.IsValid() || int(id) >= len(v.data) {
		return nil
	}
	return &v.data[id]
}

func (v *Variables) Len() int { return len(v.data) - 1 }

// Data exposes every stored Variable, excluding the arena sentinel.
func (v *Variables) Data() []Variable {
	if len(v.data) <= 1 {
		return nil
	}
	return v.data[1:]
}

type VarRefs struct {
	data []VarRef
}

func NewVarRefs() *VarRefs {
	return &VarRefs{data: make([]VarRef, 1, 128)}
}

func (v *VarRefs) New(ref VarRef) VarRefID {
	id := VarRefID(len(v.data))
	ref.ID = id
	v.data = append(v.data, ref)
	return id
}

func (v *VarRefs) Get(id VarRefID) *VarRef {
	if !id.IsValid() || int(id) >= len(v.data) {
		return nil
	}
	return &v.data[id]
}

func (v *VarRefs) Len() int { return len(v.data) - 1 }

func (v *VarRefs) Data() []VarRef {
	if len(v.data) <= 1 {
		return nil
	}
	return v.data[1:]
}
