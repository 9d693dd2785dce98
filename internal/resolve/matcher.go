package resolve

import (
	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/pattern"
)

// processRef attempts to resolve one ref against the forest. It reports
// one of the matcher's three outcomes: a trie match (attach it, and if
// decrementCounts, decrement variable_like_counts on every ancestor
// definition section for each VariableLike name this ref contributed),
// a single-element VariableLike ref (promote to a plain variable
// reference), or no match (return false, leave the ref pending).
//
// Argument expressions for $ captures are not re-parsed against a
// nested expression trie here: the line parser already built each
// capture's sub-expression as its own independent Pending Expression
// with its own PatternRef, which drains through this same resolver as
// its own body or global ref. A Variable trie edge simply claims the
// next entry of ref.ArgExprs in order.
func (r *Resolver) processRef(refID graph.PatternRefID, decrementCounts bool) bool {
	p := r.Program
	ref := p.PatternRefs.Get(refID)
	if ref == nil {
		return true
	}

	trie := r.forest.ForKind(ref.Kind)
	if len(ref.Elements) == 1 && ref.Elements[0].Kind == graph.ElemVariableLike {
		if match := r.bestMatch(trie, ref); match != nil {
			r.attachMatch(ref, match, decrementCounts)
			return true
		}
		r.promoteToVariable(ref)
		return true
	}

	match := r.bestMatch(trie, ref)
	if match == nil {
		return false
	}
	r.attachMatch(ref, match, decrementCounts)
	return true
}

// candidate is one complete walk of the trie consuming every element of
// a ref, together with the bookkeeping needed to tie-break it against
// other candidates.
type candidate struct {
	def         graph.PatternDefID
	node        graph.TrieNodeID
	args        []graph.MatchedArg
	specificity int
	consumed    int
}

func (r *Resolver) bestMatch(trie *pattern.Trie, ref *graph.PatternRef) *graph.Match {
	argIdx := 0
	cands := r.walk(trie, trie.Root, ref.Elements, 0, ref, &argIdx, nil, 0, 0)
	if len(cands) == 0 {
		return nil
	}

	best := cands[0]
	tied := []candidate{best}
	for _, c := range cands[1:] {
		switch {
		case c.specificity > best.specificity || (c.specificity == best.specificity && c.consumed > best.consumed):
			best = c
			tied = []candidate{c}
		case c.specificity == best.specificity && c.consumed == best.consumed:
			tied = append(tied, c)
		}
	}
	if len(tied) > 1 {
		for i := 1; i < len(tied); i++ {
			if tied[i].def < best.def {
				best = tied[i]
			}
		}
		r.report(diag.ResolveAmbiguousMatch, diag.SevWarning, r.lineSpan(ref.Line),
			"pattern reference matches more than one definition equally well")
	}

	r.namedArgs(best.def, best.args)

	return &graph.Match{
		Definition:  best.def,
		EndNode:     best.node,
		LineStart:   ref.Line,
		LineEnd:     ref.Line,
		Args:        best.args,
		Specificity: best.specificity,
		Consumed:    best.consumed,
	}
}

// namedArgs fills each captured arg's ParamName from def's
// ParameterOrder by position: the elements a ref walk consumes carry no
// parameter name of their own (a $ capture is anonymous, and a
// VariableLike capture's name belongs to whichever definition the call
// happens to match), so the name has to come from the chosen
// definition, not the ref.
func (r *Resolver) namedArgs(defID graph.PatternDefID, args []graph.MatchedArg) {
	def := r.Program.PatternDefs.Get(defID)
	if def == nil {
		return
	}
	for i := range args {
		if i < len(def.ParameterOrder) {
			args[i].ParamName = def.ParameterOrder[i]
		}
	}
}

// appendArg copies args before appending item, since walk tries several
// branches off the same args slice (literal, variable, word-capture) and
// a plain append could let one branch's write clobber a sibling's
// slice if they happened to share spare capacity.
func appendArg(args []graph.MatchedArg, item graph.MatchedArg) []graph.MatchedArg {
	out := make([]graph.MatchedArg, len(args), len(args)+1)
	copy(out, args)
	return append(out, item)
}

// walk enumerates every complete path through trie starting at node
// that consumes elems[i:] in full and terminates on a node with at
// least one ended pattern. argIdx tracks how many of ref.ArgExprs have
// been claimed by Variable edges seen so far on this path.
func (r *Resolver) walk(trie *pattern.Trie, node graph.TrieNodeID, elems []graph.PatternElement, i int, ref *graph.PatternRef, argIdx *int, args []graph.MatchedArg, specificity, consumed int) []candidate {
	if i == len(elems) {
		var out []candidate
		for _, def := range trie.EndedPatterns(node) {
			out = append(out, candidate{def: def, node: node, args: append([]graph.MatchedArg(nil), args...), specificity: specificity, consumed: consumed})
		}
		return out
	}

	elem := elems[i]
	var out []candidate

	tryLiteral := func(text string) {
		if child, ok := trie.LiteralChild(node, text); ok {
			out = append(out, r.walk(trie, child, elems, i+1, ref, argIdx, args, specificity+1, consumed+1)...)
		}
	}
	tryVariable := func(subExpr graph.ExprID, paramName string) {
		child, ok := trie.VariableChild(node)
		if !ok {
			return
		}
		newArgs := appendArg(args, graph.MatchedArg{ParamName: paramName, SubExpr: subExpr})
		out = append(out, r.walk(trie, child, elems, i+1, ref, argIdx, newArgs, specificity, consumed+1)...)
	}
	tryWordCapture := func(text string) {
		child, ok := trie.WordCaptureChild(node)
		if !ok {
			return
		}
		newArgs := appendArg(args, graph.MatchedArg{IsWord: true, WordText: text})
		out = append(out, r.walk(trie, child, elems, i+1, ref, argIdx, newArgs, specificity, consumed+1)...)
	}

	switch elem.Kind {
	case graph.ElemLiteral:
		tryLiteral(elem.Text)
	case graph.ElemVariableLike:
		tryLiteral(elem.Text)
		tryVariable(graph.NoExprID, elem.Text)
		tryWordCapture(elem.Text)
	case graph.ElemVariable:
		if *argIdx < len(ref.ArgExprs) {
			sub := ref.ArgExprs[*argIdx]
			*argIdx++
			tryVariable(sub, elem.Name)
			*argIdx--
		}
	case graph.ElemWordCapture:
		tryWordCapture(elem.Name)
	}
	return out
}

// attachMatch fills ref.Match/ref.State and, when decrementCounts is
// set, decrements variable_like_counts on every ancestor definition
// section for each VariableLike name this ref contributed, and clears
// this ref's own slot from the section's pending-body-ref tally.
func (r *Resolver) attachMatch(ref *graph.PatternRef, match *graph.Match, decrementCounts bool) {
	ref.Match = match
	ref.State = graph.RefResolved
	p := r.Program

	line := p.Lines.Get(ref.Line)
	lineSection := graph.NoSectionID
	if line != nil {
		lineSection = line.Section
	}
	if decrementCounts {
		for _, name := range ref.VariableLikeNames {
			for _, anc := range p.Sections.Ancestors(lineSection) {
				sec := p.Sections.Get(anc)
				if sec != nil && sec.Kind.IsDefinitionKind() {
					sec.VariableLikeCounts[name]--
				}
			}
		}
		p.Sections.AddUnresolved(lineSection, -1)
	}
}

// promoteToVariable turns a standalone single-identifier ref into a
// VarRef registered on its owning section, to be assigned a Variable
// during scope resolution.
func (r *Resolver) promoteToVariable(ref *graph.PatternRef) {
	p := r.Program
	ref.State = graph.RefVariablePromoted

	line := p.Lines.Get(ref.Line)
	lineSection := graph.NoSectionID
	if line != nil {
		lineSection = line.Section
	}
	name := ref.Elements[0].Text
	varRefID := p.VarRefs.New(graph.VarRef{Name: name, Line: ref.Line})
	ref.PromotedVarRef = varRefID

	if sec := p.Sections.Get(lineSection); sec != nil {
		sec.VariableRefs[name] = append(sec.VariableRefs[name], varRefID)
	}
	p.Sections.AddUnresolved(lineSection, -1)
}
