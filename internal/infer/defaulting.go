package infer

import "github.com/OpenAEC-Foundation/dynlex/internal/graph"

// applyDefaults runs once, after the fixed-point loop stops making
// progress: it picks a concrete size for every literal, Variable,
// Instantiation return type and class field type that is numeric in
// kind but was never narrowed to a specific byte size, because nothing
// in the program constrained it any further. A Variable still fully
// Undeduced (never even reached Numeric) is left alone — that is a
// deduction failure for validate to report, not a default to paper over.
func (inf *Inferrer) applyDefaults() {
	// A literal int's own magnitude picks its size; every other
	// Expression (including one that merely reads a now-defaulted
	// Variable, like a bare variable reference) gets the same generic
	// defaulting a Variable does, so an Expression's Type never stays
	// stuck at Numeric just because defaulting runs once and nothing
	// re-walks the expression tree afterward.
	exprs := inf.Program.Exprs.Data()
	for i := range exprs {
		e := &exprs[i]
		if e.Kind == graph.ExprLiteralInt && (e.Type.Kind == graph.Numeric || (e.Type.Kind == graph.Integer && e.Type.ByteSize == 0)) {
			e.Type = graph.Type{Kind: graph.Integer, ByteSize: defaultIntSize(e.IntValue)}
			continue
		}
		e.Type = defaultNumericType(e.Type)
	}

	variables := inf.Program.Variables.Data()
	for i := range variables {
		variables[i].Type = defaultNumericType(variables[i].Type)
	}

	classDefs := inf.Program.ClassDefs.Data()
	for i := range classDefs {
		cd := &classDefs[i]
		for f := range cd.Fields {
			cd.Fields[f].Type = defaultNumericType(cd.Fields[f].Type)
		}
		for j := range cd.Instantiations {
			inst := &cd.Instantiations[j]
			for k := range inst.FieldTypes {
				inst.FieldTypes[k] = defaultNumericType(inst.FieldTypes[k])
			}
		}
	}

	sections := inf.Program.Sections.Data()
	for i := range sections {
		sec := &sections[i]
		if sec.Instantiations == nil {
			continue
		}
		for _, inst := range sec.Instantiations.All() {
			inst.ReturnType = defaultNumericType(inst.ReturnType)
		}
	}
}

// defaultNumericType defaults a still-open Numeric kind, or an
// Integer/Float with no byte size yet, to the narrowest size that is
// always valid: a 4-byte word for integers, a double for floats.
// Anything else (Undeduced, a fully concrete type) passes through
// unchanged.
func defaultNumericType(t graph.Type) graph.Type {
	switch {
	case t.Kind == graph.Numeric:
		return graph.Type{Kind: graph.Integer, ByteSize: 4, PointerDepth: t.PointerDepth}
	case t.Kind == graph.Integer && t.ByteSize == 0:
		t.ByteSize = 4
		return t
	case t.Kind == graph.Float && t.ByteSize == 0:
		t.ByteSize = 8
		return t
	default:
		return t
	}
}

// defaultIntSize picks the smallest of the two standard integer sizes
// that can hold v.
func defaultIntSize(v int64) uint8 {
	if v >= -(1<<31) && v <= (1<<31-1) {
		return 4
	}
	return 8
}
