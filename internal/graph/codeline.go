package graph

import "github.com/OpenAEC-Foundation/dynlex/internal/source"

// CodeLine is the unit of parsing: one line in the merged, import-expanded
// sequence, with back-pointers to its owning Section and forward-pointers
// to any child Section it opens.
type CodeLine struct {
	ID               LineID
	File             source.FileID
	OriginalLineIdx  uint32 // 0-based index within File
	MergedLineIdx    uint32 // position in the flattened import sequence

	Text        string // indent plus the comment-stripped, right-trimmed source text
	Indent      string // detected leading whitespace prefix
	PatternText string // Text with leading indent and trailing ':' removed

	// HasChildSection is true when the line's trailing ':' was present
	// before the importer stripped it — i.e. whether this line opens a
	// child Section. Set unconditionally by the importer; the
	// SectionAnalyzer is what actually decides the child's kind.
	HasChildSection bool
	IsResolved      bool

	Section      SectionID
	OpensSection SectionID // NoSectionID unless this line opens a child

	// Expression is the top-level meaning of this line, filled by the
	// LineParser. NoExprID for lines that are pure section headers with
	// no expression content of their own.
	Expression ExprID
}

// Span covers PatternText's extent within File, computed by the caller
// from Indent length and Text length; CodeLine itself only stores the
// byte offsets needed to reconstruct it, via LineSpans (below), because
// source.Span needs absolute file offsets that only the Importer has at
// load time.
type LineSpans struct {
	Full        source.Span
	PatternText source.Span
}

// Lines is the arena owning every CodeLine produced by the Importer.
// Index 0 is reserved so the zero value of LineID means "no line".
type Lines struct {
	data  []CodeLine
	spans []LineSpans
}

func NewLines(capacityHint int) *Lines {
	if capacityHint <= 0 {
		capacityHint = 256
	}
	return &Lines{
		data:  make([]CodeLine, 1, capacityHint+1),
		spans: make([]LineSpans, 1, capacityHint+1),
	}
}

func (l *Lines) New(line CodeLine, spans LineSpans) LineID {
	id := LineID(len(l.data))
	line.ID = id
	l.data = append(l.data, line)
	l.spans = append(l.spans, spans)
	return id
}

func (l *Lines) Get(id LineID) *CodeLine {
	if !id.IsValid() || int(id) >= len(l.data) {
		return nil
	}
	return &l.data[id]
}

func (l *Lines) Spans(id LineID) LineSpans {
	if !id.IsValid() || int(id) >= len(l.spans) {
		return LineSpans{}
	}
	return l.spans[id]
}

func (l *Lines) Len() int { return len(l.data) - 1 }

// Data exposes every stored line in merged order, excluding the sentinel.
func (l *Lines) Data() []CodeLine {
	if len(l.data) <= 1 {
		return nil
	}
	return l.data[1:]
}
