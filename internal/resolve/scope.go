package resolve

import (
	"sort"

	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
)

// resolveScopes assigns a graph.Variable to every VarRef left standing
// after expansion. A ref whose name matches a parameter of some
// definition section it is nested in binds to that parameter's shared
// Variable instead of a fresh one. Everything else is grouped by name
// within its nearest owning definition section (or the file root, for
// top-level code); the earliest reference in each group becomes the
// Variable's definition site, and the Variable is registered on that
// group's scope root.
func (r *Resolver) resolveScopes() {
	p := r.Program
	paramVars := make(map[graph.SectionID]map[string]graph.VariableID)
	groups := make(map[scopeKey][]graph.VarRefID)

	refs := p.VarRefs.Data()
	for i := range refs {
		ref := &refs[i]
		lineSection := refLineSection(p, ref.Line)

		if varID, ok := r.bindParameter(lineSection, ref.Name, paramVars); ok {
			ref.Variable = varID
			if v := p.Variables.Get(varID); v != nil {
				ref.Definition = v.Definition
			}
			continue
		}

		key := scopeKey{name: ref.Name, root: scopeRoot(p, lineSection)}
		groups[key] = append(groups[key], ref.ID)
	}

	for key, ids := range groups {
		r.bindGroup(key, ids)
	}
}

func refLineSection(p *graph.Program, lineID graph.LineID) graph.SectionID {
	line := p.Lines.Get(lineID)
	if line == nil {
		return graph.NoSectionID
	}
	return line.Section
}

type scopeKey struct {
	name string
	root graph.SectionID
}

// scopeRoot is the section a free (non-parameter) variable with this
// name is scoped to: the nearest enclosing definition section's body, or
// the file's outermost section if the reference sits outside any
// definition.
func scopeRoot(p *graph.Program, section graph.SectionID) graph.SectionID {
	if def := p.Sections.NearestDefinitionAncestor(section); def.IsValid() {
		return def
	}
	ancestors := p.Sections.Ancestors(section)
	if len(ancestors) == 0 {
		return section
	}
	return ancestors[len(ancestors)-1]
}

// bindGroup picks the earliest (lowest LineID) reference in ids as the
// Variable's definition and registers the Variable on key.root.
func (r *Resolver) bindGroup(key scopeKey, ids []graph.VarRefID) {
	p := r.Program
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var earliest graph.VarRefID
	earliestLine := graph.NoLineID
	for _, id := range ids {
		ref := p.VarRefs.Get(id)
		if ref == nil {
			continue
		}
		if !earliestLine.IsValid() || ref.Line < earliestLine {
			earliestLine = ref.Line
			earliest = id
		}
	}
	if !earliest.IsValid() {
		return
	}

	variable := p.Variables.New(graph.Variable{
		Name:       key.name,
		Definition: earliest,
		Section:    key.root,
	})

	if sec := p.Sections.Get(key.root); sec != nil {
		sec.Variables[key.name] = variable
		sec.VariableDefs[key.name] = earliest
	}

	for _, id := range ids {
		ref := p.VarRefs.Get(id)
		if ref == nil {
			continue
		}
		ref.Variable = variable
		ref.Definition = earliest
	}
}

// bindParameter reports whether name matches a parameter of some
// definition section enclosing section, searched bottom-up through
// nested definition sections, and returns the Variable standing for
// that parameter (created on first use, shared by every reference to it
// from anywhere in the definition's body).
func (r *Resolver) bindParameter(section graph.SectionID, name string, cache map[graph.SectionID]map[string]graph.VariableID) (graph.VariableID, bool) {
	p := r.Program
	cur := p.Sections.NearestDefinitionAncestor(section)
	for cur.IsValid() {
		sec := p.Sections.Get(cur)
		if sec == nil {
			return graph.NoVariableID, false
		}
		if isParameterName(p, sec, name) {
			byName, ok := cache[cur]
			if !ok {
				byName = make(map[string]graph.VariableID)
				cache[cur] = byName
			}
			if varID, ok := byName[name]; ok {
				return varID, true
			}
			varID := p.Variables.New(graph.Variable{Name: name, Section: cur})
			byName[name] = varID
			sec.Variables[name] = varID
			return varID, true
		}
		cur = p.Sections.NearestDefinitionAncestor(sec.Parent)
	}
	return graph.NoVariableID, false
}

// isParameterName reports whether name appears in the ParameterOrder of
// any pattern definition owned by sec.
func isParameterName(p *graph.Program, sec *graph.Section, name string) bool {
	for _, defID := range sec.PatternDefs {
		def := p.PatternDefs.Get(defID)
		if def == nil {
			continue
		}
		for _, pname := range def.ParameterOrder {
			if pname == name {
				return true
			}
		}
	}
	return false
}
