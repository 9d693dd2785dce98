package diag

import "github.com/OpenAEC-Foundation/dynlex/internal/source"

// Reporter is the minimal contract every stage uses to emit diagnostics.
// BagReporter is the only implementation the driver wires by default;
// stages never talk to a Bag directly so they stay agnostic of how
// diagnostics are ultimately collected or rendered.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// BagReporter adapts a Reporter onto a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

// Builder accumulates note details before emitting once to a Reporter.
type Builder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

func New(r Reporter, sev Severity, code Code, primary source.Span, msg string) *Builder {
	return &Builder{
		reporter: r,
		diag:     Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg},
	}
}

func Error(r Reporter, code Code, primary source.Span, msg string) *Builder {
	return New(r, SevError, code, primary, msg)
}

func Warning(r Reporter, code Code, primary source.Span, msg string) *Builder {
	return New(r, SevWarning, code, primary, msg)
}

func Info(r Reporter, code Code, primary source.Span, msg string) *Builder {
	return New(r, SevInfo, code, primary, msg)
}

func (b *Builder) WithNote(sp source.Span, msg string) *Builder {
	if b == nil {
		return nil
	}
	b.diag.Notes = append(b.diag.Notes, Note{Span: sp, Msg: msg})
	return b
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *Builder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Primary, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
}
