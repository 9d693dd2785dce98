package graph

// TypeKind tags the Type variant.
type TypeKind uint8

const (
	Undeduced TypeKind = iota
	Void
	Bool
	Numeric // not yet specialized to Integer or Float
	Integer
	Float
	String
	Class
	TypeReference
)

func (k TypeKind) String() string {
	switch k {
	case Undeduced:
		return "undeduced"
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Numeric:
		return "numeric"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Class:
		return "class"
	case TypeReference:
		return "type-reference"
	}
	return "unknown"
}

// Type is a tagged variant. Integer/Float carry ByteSize; Class/
// TypeReference carry a ClassDefID and, for Class, the InstantiationIx
// selecting which monomorphized layout applies.
type Type struct {
	Kind          TypeKind
	ByteSize      uint8 // Integer: 1/2/4/8; Float: 4/8; 0 means "any valid size"
	PointerDepth  uint32
	ClassDef      ClassDefID
	InstantiationIx int
}

func (t Type) IsDeduced() bool {
	if t.Kind == Undeduced {
		return false
	}
	if t.PointerDepth > 0 {
		return true
	}
	switch t.Kind {
	case Integer:
		return t.ByteSize == 1 || t.ByteSize == 2 || t.ByteSize == 4 || t.ByteSize == 8
	case Float:
		return t.ByteSize == 4 || t.ByteSize == 8
	case Numeric:
		return false
	default:
		return true
	}
}

func (t Type) Pointer(depth uint32) Type {
	t.PointerDepth = depth
	return t
}

func (t Type) IsPointer() bool { return t.PointerDepth > 0 }

func (t Type) Equal(other Type) bool {
	return t.Kind == other.Kind &&
		t.ByteSize == other.ByteSize &&
		t.PointerDepth == other.PointerDepth &&
		t.ClassDef == other.ClassDef &&
		t.InstantiationIx == other.InstantiationIx
}

// Refines reports whether `to` is a legal refinement of `t`: Undeduced
// refines to anything; Numeric refines to any Integer/Float; a same-kind
// byte_size=0 refines to any valid size; otherwise no refinement is
// possible (t and to must already be equal).
func (t Type) Refines(to Type) bool {
	if t.Kind == Undeduced {
		return true
	}
	if t.Kind == Numeric && (to.Kind == Integer || to.Kind == Float) {
		return true
	}
	if t.Kind == to.Kind && t.PointerDepth == to.PointerDepth {
		if t.ByteSize == 0 && to.ByteSize != 0 {
			return true
		}
		return t.Equal(to)
	}
	return false
}

// Refine returns the more specific of t and to if one refines into the
// other, and ok=false if they conflict outright.
func (t Type) Refine(to Type) (Type, bool) {
	if t.Equal(to) {
		return t, true
	}
	if t.Refines(to) {
		return to, true
	}
	if to.Refines(t) {
		return t, true
	}
	return t, false
}

// Promote applies the arithmetic promotion rule: Float beats Integer; on
// a size mismatch within the same kind the larger wins; pointer +
// integer promotes to the pointer's type.
func Promote(a, b Type) Type {
	if a.PointerDepth > 0 && b.PointerDepth == 0 && (b.Kind == Integer || b.Kind == Numeric) {
		return a
	}
	if b.PointerDepth > 0 && a.PointerDepth == 0 && (a.Kind == Integer || a.Kind == Numeric) {
		return b
	}
	if a.Kind == Float && b.Kind != Float {
		return a
	}
	if b.Kind == Float && a.Kind != Float {
		return b
	}
	if a.Kind == b.Kind && (a.Kind == Integer || a.Kind == Float) {
		if a.ByteSize >= b.ByteSize {
			return a
		}
		return b
	}
	if a.Kind == Numeric {
		return b
	}
	return a
}

var (
	TypeVoid     = Type{Kind: Void}
	TypeBool     = Type{Kind: Bool}
	TypeNumeric  = Type{Kind: Numeric}
	TypeInt32    = Type{Kind: Integer, ByteSize: 4}
	TypeInt64    = Type{Kind: Integer, ByteSize: 8}
	TypeFloat64  = Type{Kind: Float, ByteSize: 8}
	TypeBytePtr  = Type{Kind: Integer, ByteSize: 1, PointerDepth: 1}
	TypeUndeduced = Type{Kind: Undeduced}
)
