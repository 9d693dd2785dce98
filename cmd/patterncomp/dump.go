package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/pattern"
)

// dumpSections prints the section tree depth-first, one line per
// section naming its kind and (when present) its header line's text.
func dumpSections(w io.Writer, program *graph.Program) {
	fmt.Fprintln(w, "== sections ==")
	dumpSection(w, program, program.Root, 0)
}

func dumpSection(w io.Writer, program *graph.Program, id graph.SectionID, depth int) {
	sec := program.Sections.Get(id)
	if sec == nil {
		return
	}
	fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), sec.Kind, sectionHeader(program, sec))
	for _, child := range sec.Children {
		dumpSection(w, program, child, depth+1)
	}
}

func sectionHeader(program *graph.Program, sec *graph.Section) string {
	parent := program.Sections.Get(sec.Parent)
	if parent == nil {
		return ""
	}
	for _, id := range parent.Lines {
		if line := program.Lines.Get(id); line != nil && line.OpensSection == sec.ID {
			return line.PatternText
		}
	}
	return ""
}

// dumpPatterns prints every pattern definition's classified elements and
// parameter order.
func dumpPatterns(w io.Writer, program *graph.Program) {
	fmt.Fprintln(w, "== patterns ==")
	defs := program.PatternDefs.Data()
	for i := range defs {
		def := &defs[i]
		fmt.Fprintf(w, "%s [%s] params=%v\n", def.RawText, def.Kind, def.ParameterOrder)
		for _, elem := range def.Elements {
			fmt.Fprintf(w, "  %s\n", formatElement(elem))
		}
	}
}

func formatElement(e graph.PatternElement) string {
	switch e.Kind {
	case graph.ElemLiteral:
		return fmt.Sprintf("literal %q", e.Text)
	case graph.ElemVariableLike:
		return fmt.Sprintf("variable-like %q (unclassified)", e.Text)
	case graph.ElemVariable:
		return fmt.Sprintf("$ capture -> %s", e.Name)
	case graph.ElemWordCapture:
		return fmt.Sprintf("{word:%s}", e.Name)
	case graph.ElemChoice:
		alts := make([]string, len(e.Alternatives))
		for i, alt := range e.Alternatives {
			parts := make([]string, len(alt))
			for j, inner := range alt {
				parts[j] = formatElement(inner)
			}
			alts[i] = strings.Join(parts, " ")
		}
		return "choice [" + strings.Join(alts, " | ") + "]"
	default:
		return "unknown"
	}
}

// dumpTrie prints each of the forest's three tries depth-first, one
// line per edge, naming the definitions that terminate at each node.
func dumpTrie(w io.Writer, forest *pattern.Forest) {
	fmt.Fprintln(w, "== trie ==")
	for _, kind := range []graph.PatternKind{graph.PatternEffect, graph.PatternExpression, graph.PatternSection} {
		fmt.Fprintf(w, "-- %s --\n", kind)
		dumpTrieNode(w, forest.ForKind(kind), forest.ForKind(kind).Root, 0)
	}
}

func dumpTrieNode(w io.Writer, t *pattern.Trie, id graph.TrieNodeID, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, def := range t.EndedPatterns(id) {
		fmt.Fprintf(w, "%s(end %d)\n", indent, def)
	}
	for text, child := range t.LiteralChildren(id) {
		fmt.Fprintf(w, "%s%q ->\n", indent, text)
		dumpTrieNode(w, t, child, depth+1)
	}
	if child, ok := t.VariableChild(id); ok {
		fmt.Fprintf(w, "%s$ ->\n", indent)
		dumpTrieNode(w, t, child, depth+1)
	}
	if child, ok := t.WordCaptureChild(id); ok {
		fmt.Fprintf(w, "%s{word} ->\n", indent)
		dumpTrieNode(w, t, child, depth+1)
	}
}
