package pattern

import (
	"testing"

	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
)

func TestTrieInsertAndWalkLiteralPath(t *testing.T) {
	trie := NewTrie()
	elems := ParseElements("print $")
	trie.Insert(1, elems)

	node, ok := trie.LiteralChild(trie.Root, "print")
	if !ok {
		t.Fatal("expected a literal child for \"print\"")
	}
	node, ok = trie.LiteralChild(node, " ")
	if !ok {
		t.Fatal("expected a literal child for \" \"")
	}
	varNode, ok := trie.VariableChild(node)
	if !ok {
		t.Fatal("expected a variable child")
	}
	ended := trie.EndedPatterns(varNode)
	if len(ended) != 1 || ended[0] != graph.PatternDefID(1) {
		t.Fatalf("EndedPatterns = %v, want [1]", ended)
	}
}

func TestTrieSharedPrefixConverges(t *testing.T) {
	trie := NewTrie()
	trie.Insert(1, ParseElements("print $"))
	trie.Insert(2, ParseElements("print $ loudly"))

	node, ok := trie.LiteralChild(trie.Root, "print")
	if !ok {
		t.Fatal("expected a shared literal child for \"print\"")
	}
	node, ok = trie.LiteralChild(node, " ")
	if !ok {
		t.Fatal("expected a shared literal child for \" \"")
	}
	varNode, _ := trie.VariableChild(node)

	ended := trie.EndedPatterns(varNode)
	if len(ended) != 1 || ended[0] != graph.PatternDefID(1) {
		t.Fatalf("EndedPatterns(varNode) = %v, want [1]", ended)
	}

	spaceNode2, ok := trie.LiteralChild(varNode, " ")
	if !ok {
		t.Fatal("expected pattern 2's \" \" edge to extend off the shared variable node")
	}
	loudNode, ok := trie.LiteralChild(spaceNode2, "loudly")
	if !ok {
		t.Fatal("expected pattern 2's \"loudly\" edge")
	}
	ended = trie.EndedPatterns(loudNode)
	if len(ended) != 1 || ended[0] != graph.PatternDefID(2) {
		t.Fatalf("EndedPatterns(loudNode) = %v, want [2]", ended)
	}
}

func TestTrieChoiceAlternativesConverge(t *testing.T) {
	trie := NewTrie()
	// "go [north|south]" should let both "go north" and "go south" reach
	// the same terminal node for this definition.
	trie.Insert(1, ParseElements("go [north|south]"))

	goNode, ok := trie.LiteralChild(trie.Root, "go")
	if !ok {
		t.Fatal("expected literal child \"go\"")
	}
	spaceNode, ok := trie.LiteralChild(goNode, " ")
	if !ok {
		t.Fatal("expected literal child \" \"")
	}
	northNode, ok := trie.LiteralChild(spaceNode, "north")
	if !ok {
		t.Fatal("expected alternative edge \"north\"")
	}
	southNode, ok := trie.LiteralChild(spaceNode, "south")
	if !ok {
		t.Fatal("expected alternative edge \"south\"")
	}
	for _, n := range []graph.TrieNodeID{northNode, southNode} {
		ended := trie.EndedPatterns(n)
		if len(ended) != 1 || ended[0] != graph.PatternDefID(1) {
			t.Fatalf("EndedPatterns = %v, want [1]", ended)
		}
	}
}

func TestTrieWordCaptureRecordsParameterName(t *testing.T) {
	trie := NewTrie()
	elems := []graph.PatternElement{
		graph.Literal("rename "),
		graph.WordCapture("target"),
	}
	trie.Insert(3, elems)

	renameNode, _ := trie.LiteralChild(trie.Root, "rename ")
	wordNode, ok := trie.WordCaptureChild(renameNode)
	if !ok {
		t.Fatal("expected a word-capture child")
	}
	name, ok := trie.ParameterName(wordNode, 3)
	if !ok || name != "target" {
		t.Fatalf("ParameterName = %q, %v, want %q, true", name, ok, "target")
	}
}

func TestForestRoutesByPatternKind(t *testing.T) {
	forest := NewForest()
	if forest.ForKind(graph.PatternEffect) != forest.Effect {
		t.Fatal("PatternEffect should route to Effect trie")
	}
	if forest.ForKind(graph.PatternSection) != forest.Section {
		t.Fatal("PatternSection should route to Section trie")
	}
	if forest.ForKind(graph.PatternExpression) != forest.Expression {
		t.Fatal("PatternExpression should route to Expression trie")
	}
}
