// Package resolve converges a Program to a state where every PatternRef
// either resolved to a PatternDef or promoted to a plain variable
// reference, classifies every PatternDef's VariableLike elements into
// Variable or Literal, and rewrites Pending Expressions into their
// final shape.
package resolve

import (
	"fmt"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/pattern"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// MaxResolutionIterations bounds each phase of the main loop.
const MaxResolutionIterations = 256

// Resolver runs the bounded fixed-point classification/matching loop
// over a Program and then expands every resolved Pending Expression.
type Resolver struct {
	Program  *graph.Program
	Reporter diag.Reporter
	Cancel   func() bool // cooperative cancel flag, checked once per phase iteration

	forest *pattern.Forest
}

// Run executes bootstrap, phase 1 (body refs), phase 2 (global refs),
// and expansion, in that order. It returns an error if any reference
// remains unresolved after either phase's iteration bound.
func (r *Resolver) Run() error {
	r.forest = pattern.NewForest()

	bodyRefs, globalRefs, defSections := r.bootstrap()

	ok1 := r.runPhase(defSections, bodyRefs, true, MaxResolutionIterations)
	ok2 := r.runPhase(nil, globalRefs, false, MaxResolutionIterations)

	r.expandAll()
	r.resolveScopes()

	if !ok1 || !ok2 {
		return fmt.Errorf("resolve: one or more pattern references could not be resolved")
	}
	return nil
}

// Forest exposes the pattern forest built during Run, so debug tooling
// (a --dump-trie CLI flag) can inspect trie shape after resolution
// without the resolver needing to format it itself.
func (r *Resolver) Forest() *pattern.Forest { return r.forest }

// bootstrap collects body/global refs, parses every PatternDef's and
// PatternRef's elements, and seeds each definition section's
// UnresolvedCount (a count of pending body refs reachable from that
// section downward) and VariableLikeCounts (how many body refs mention
// a given name as a VariableLike element).
func (r *Resolver) bootstrap() (bodyRefs, globalRefs []graph.PatternRefID, defSections []graph.SectionID) {
	p := r.Program

	defs := p.PatternDefs.Data()
	for i := range defs {
		defs[i].Elements = pattern.ParseElements(defs[i].RawText)
	}

	refs := p.PatternRefs.Data()
	for i := range refs {
		ref := &refs[i]
		ref.Elements = pattern.ParseElements(ref.PatternText)
		ref.VariableLikeNames = variableLikeNames(ref.Elements)

		line := p.Lines.Get(ref.Line)
		lineSection := graph.NoSectionID
		if line != nil {
			lineSection = line.Section
		}
		ancestorDef := p.Sections.NearestDefinitionAncestor(lineSection)
		if ancestorDef.IsValid() {
			bodyRefs = append(bodyRefs, ref.ID)
			p.Sections.AddUnresolved(lineSection, 1)
			for _, name := range ref.VariableLikeNames {
				for _, anc := range p.Sections.Ancestors(lineSection) {
					sec := p.Sections.Get(anc)
					if sec != nil && sec.Kind.IsDefinitionKind() {
						sec.VariableLikeCounts[name]++
					}
				}
			}
		} else {
			globalRefs = append(globalRefs, ref.ID)
		}
	}

	sections := p.Sections.Data()
	for i := range sections {
		sec := &sections[i]
		if sec.Kind.IsDefinitionKind() && len(sec.PatternDefs) > 0 {
			defSections = append(defSections, sec.ID)
		}
	}

	return bodyRefs, globalRefs, defSections
}

func variableLikeNames(elems []graph.PatternElement) []string {
	seen := make(map[string]bool)
	var names []string
	walkLeaves(elems, func(e *graph.PatternElement) {
		if e.Kind == graph.ElemVariableLike && !seen[e.Text] {
			seen[e.Text] = true
			names = append(names, e.Text)
		}
	})
	return names
}

// walkLeaves visits every element, recursing into Choice alternatives.
func walkLeaves(elems []graph.PatternElement, visit func(*graph.PatternElement)) {
	for i := range elems {
		e := &elems[i]
		visit(e)
		if e.Kind == graph.ElemChoice {
			for j := range e.Alternatives {
				walkLeaves(e.Alternatives[j], visit)
			}
		}
	}
}

// runPhase drains refs against defSections (if classify is true, the
// owning sections' pattern definitions are classified and inserted as
// the loop progresses; phase 2 passes classify=false and a nil
// defSections, matching against whatever the forest already holds from
// phase 1). It returns false if refs or defSections are still nonempty
// once bound is exhausted.
func (r *Resolver) runPhase(defSections []graph.SectionID, refs []graph.PatternRefID, classify bool, bound int) bool {
	pending := append([]graph.PatternRefID(nil), refs...)
	unresolvedSecs := append([]graph.SectionID(nil), defSections...)

	for iter := 0; iter < bound; iter++ {
		if len(unresolvedSecs) == 0 && len(pending) == 0 {
			return true
		}
		if r.Cancel != nil && r.Cancel() {
			return true
		}

		if classify {
			unresolvedSecs = r.classifyPass(unresolvedSecs)
		}

		var stillPending []graph.PatternRefID
		for _, refID := range pending {
			if r.processRef(refID, classify) {
				continue
			}
			stillPending = append(stillPending, refID)
		}
		pending = stillPending
	}

	if len(unresolvedSecs) == 0 && len(pending) == 0 {
		return true
	}
	for _, refID := range pending {
		r.reportUnresolved(refID)
	}
	return false
}

// classifyPass walks every still-open definition section's PatternDefs,
// reclassifying VariableLike leaves and inserting fully-decided
// definitions into the forest. It returns the sections that still own
// at least one undecided definition.
func (r *Resolver) classifyPass(sections []graph.SectionID) []graph.SectionID {
	p := r.Program
	var still []graph.SectionID
	for _, secID := range sections {
		sec := p.Sections.Get(secID)
		if sec == nil {
			continue
		}
		open := false
		for _, defID := range sec.PatternDefs {
			def := p.PatternDefs.Get(defID)
			if def == nil || def.State == graph.DefInserted {
				continue
			}
			def.State = graph.DefClassifying
			decided := classifyElements(def.Elements, len(def.Elements), sec.VariableLikeCounts)
			if !decided && sec.UnresolvedCount == 0 {
				forceClassify(def.Elements)
				decided = true
			}
			if !decided {
				open = true
				continue
			}
			def.State = graph.DefInserted
			def.Resolved = true
			assignSyntheticNames(def.Elements, new(int))
			def.ParameterOrder = parameterOrder(def.Elements)
			r.forest.ForKind(def.Kind).Insert(def.ID, def.Elements)
		}
		if open {
			still = append(still, secID)
		}
	}
	return still
}

// classifyElements decides every VariableLike leaf's final role in
// place, recursing into Choice alternatives. total is the definition's
// own top-level element count: a single-element definition's lone
// VariableLike is always a keyword, never a parameter, since nothing
// else in the pattern would let a call site tell the two apart.
// Otherwise a name with at least one body-ref occurrence is a
// parameter (Variable); a name with none seen yet is undecided until
// either evidence arrives or the section runs out of pending body refs
// to offer it, at which point forceClassify settles it as a keyword.
func classifyElements(elems []graph.PatternElement, total int, counts map[string]int) bool {
	decided := true
	for i := range elems {
		e := &elems[i]
		switch e.Kind {
		case graph.ElemVariableLike:
			switch {
			case total <= 1:
				e.Kind = graph.ElemLiteral
			case counts[e.Text] > 0:
				name := e.Text
				e.Kind = graph.ElemVariable
				e.Name = name
			default:
				decided = false
			}
		case graph.ElemChoice:
			for j := range e.Alternatives {
				if !classifyElements(e.Alternatives[j], total, counts) {
					decided = false
				}
			}
		}
	}
	return decided
}

// forceClassify turns every remaining VariableLike leaf into a Literal,
// used once a section's body has no further evidence to offer.
func forceClassify(elems []graph.PatternElement) {
	for i := range elems {
		e := &elems[i]
		if e.Kind == graph.ElemVariableLike {
			e.Kind = graph.ElemLiteral
		} else if e.Kind == graph.ElemChoice {
			for j := range e.Alternatives {
				forceClassify(e.Alternatives[j])
			}
		}
	}
}

// assignSyntheticNames gives every anonymous $ capture (an ElemVariable
// whose Name is still empty) a positional name of its own, counted
// across the whole definition left to right (a Choice's every
// alternative shares the count, since only one alternative is ever
// live at match time). Without this a body could never refer back to
// a $ parameter by name the way it can a {word:name} one.
func assignSyntheticNames(elems []graph.PatternElement, counter *int) {
	for i := range elems {
		e := &elems[i]
		switch e.Kind {
		case graph.ElemVariable:
			if e.Name == "" {
				*counter++
				e.Name = fmt.Sprintf("_%d", *counter)
			}
		case graph.ElemChoice:
			for j := range e.Alternatives {
				assignSyntheticNames(e.Alternatives[j], counter)
			}
		}
	}
}

// parameterOrder walks elems left to right (taking a Choice's first
// alternative as representative of its parameter positions) collecting
// Variable/WordCapture names in the order they appear.
func parameterOrder(elems []graph.PatternElement) []string {
	var names []string
	var walk func([]graph.PatternElement)
	walk = func(es []graph.PatternElement) {
		for _, e := range es {
			switch e.Kind {
			case graph.ElemVariable, graph.ElemWordCapture:
				names = append(names, e.Name)
			case graph.ElemChoice:
				if len(e.Alternatives) > 0 {
					walk(e.Alternatives[0])
				}
			}
		}
	}
	walk(elems)
	return names
}

func (r *Resolver) lineSpan(line graph.LineID) source.Span {
	return r.Program.Lines.Spans(line).Full
}

func (r *Resolver) reportUnresolved(refID graph.PatternRefID) {
	ref := r.Program.PatternRefs.Get(refID)
	if ref == nil {
		return
	}
	ref.State = graph.RefFailed
	r.report(diag.ResolveUnresolvedRef, diag.SevError, r.lineSpan(ref.Line),
		fmt.Sprintf("pattern reference %q could not be resolved", ref.PatternText))
}

func (r *Resolver) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if r.Reporter == nil {
		return
	}
	r.Reporter.Report(code, sev, sp, msg, nil)
}
