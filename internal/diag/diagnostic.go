package diag

import "github.com/OpenAEC-Foundation/dynlex/internal/source"

// Note attaches secondary context to a Diagnostic, e.g. pointing at a
// conflicting earlier definition.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one entry in the pipeline's append-only diagnostic stream.
// Consumers (a terminal renderer, an LSP translation layer) read Severity,
// Code, Primary and Message; Notes add optional secondary locations.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
