package graph

import "testing"

func TestUnresolvedCountPropagatesToAncestors(t *testing.T) {
	sections := NewSections()
	root := sections.New(SecCustom, NoSectionID)
	child := sections.New(SecEffect, root)
	grandchild := sections.New(SecExecute, child)

	sections.AddUnresolved(grandchild, 1)

	if sections.Get(grandchild).UnresolvedCount != 1 {
		t.Fatal("expected grandchild count 1")
	}
	if sections.Get(child).UnresolvedCount != 1 {
		t.Fatal("expected child count to include grandchild's")
	}
	if sections.Get(root).UnresolvedCount != 1 {
		t.Fatal("expected root count to include grandchild's")
	}

	sections.AddUnresolved(grandchild, -1)
	if sections.Get(root).UnresolvedCount != 0 {
		t.Fatal("expected root count back to zero")
	}
}

func TestNearestDefinitionAncestor(t *testing.T) {
	sections := NewSections()
	root := sections.New(SecCustom, NoSectionID)
	def := sections.New(SecEffect, root)
	execute := sections.New(SecExecute, def)

	if got := sections.NearestDefinitionAncestor(execute); got != def {
		t.Fatalf("NearestDefinitionAncestor(execute) = %d, want %d", got, def)
	}
	if got := sections.NearestDefinitionAncestor(def); got != def {
		t.Fatalf("NearestDefinitionAncestor(def) = %d, want %d (self)", got, def)
	}
	if got := sections.NearestDefinitionAncestor(root); got.IsValid() {
		t.Fatalf("NearestDefinitionAncestor(root) = %d, want invalid", got)
	}
}

func TestIsAncestor(t *testing.T) {
	sections := NewSections()
	root := sections.New(SecCustom, NoSectionID)
	child := sections.New(SecEffect, root)
	grandchild := sections.New(SecExecute, child)

	if !sections.IsAncestor(root, grandchild) {
		t.Fatal("root should be an ancestor of grandchild")
	}
	if sections.IsAncestor(grandchild, root) {
		t.Fatal("grandchild should not be an ancestor of root")
	}
	if !sections.IsAncestor(child, child) {
		t.Fatal("a section is its own ancestor")
	}
}

func TestInstantiationSetGetOrCreate(t *testing.T) {
	set := NewInstantiationSet()
	inst1, created1 := set.GetOrCreate(1, []Type{TypeInt32})
	if !created1 {
		t.Fatal("expected first lookup to create")
	}
	inst2, created2 := set.GetOrCreate(1, []Type{TypeInt32})
	if created2 {
		t.Fatal("expected second lookup to reuse")
	}
	if inst1 != inst2 {
		t.Fatal("expected same Instantiation pointer for identical arg types")
	}
	_, created3 := set.GetOrCreate(1, []Type{TypeFloat64})
	if !created3 {
		t.Fatal("expected a distinct arg-type tuple to create a new Instantiation")
	}
	if len(set.All()) != 2 {
		t.Fatalf("All() len = %d, want 2", len(set.All()))
	}
}
