package diag

import "fmt"

// Code is a stable, greppable diagnostic identifier. Ranges group codes
// by the pipeline stage that emits them.
type Code uint16

const (
	UnknownCode Code = 0

	// Importer — 1000s.
	ImportInfo            Code = 1000
	ImportUnreadableRoot  Code = 1001
	ImportUnreadableFile  Code = 1002
	ImportCycleShortCircuited Code = 1003

	// SectionAnalyzer — 2000s.
	SectionInfo               Code = 2000
	SectionOverIndent         Code = 2001
	SectionMixedIndentChar    Code = 2002
	SectionIndentWidthMismatch Code = 2003
	SectionUnknownChildKind   Code = 2004

	// LineParser — 3000s.
	LineInfo                Code = 3000
	LineUnclosedParen       Code = 3001
	LineUnclosedString      Code = 3002
	LineStrayComma          Code = 3003
	LineBadEscape           Code = 3004
	LineWhitespaceCollapsed Code = 3005
	LineBadIntrinsic        Code = 3006

	// PatternElement / PatternTrie — 4000s.
	PatternInfo            Code = 4000
	PatternEmptyChoiceGap  Code = 4001
	PatternDuplicateAtNode Code = 4002

	// Resolver / Matcher — 5000s.
	ResolveInfo              Code = 5000
	ResolveUnresolvedRef     Code = 5001
	ResolveAmbiguousMatch    Code = 5002
	ResolveMaxIterations     Code = 5003
	ResolveVariableNoScope   Code = 5004

	// TypeInference — 6000s.
	TypeInfo                Code = 6000
	TypeArithmeticNonNumeric Code = 6001
	TypeUndeducedVariable    Code = 6002
	TypeMismatchedCompare    Code = 6003
	TypeMaxPasses            Code = 6004
	TypeUnknownIntrinsic     Code = 6005
	TypeUnknownCast          Code = 6006

	// Project manifest / config — 7000s.
	ProjectInfo           Code = 7000
	ProjectBadManifest     Code = 7001
)

func (c Code) String() string {
	return fmt.Sprintf("D%04d", uint16(c))
}
