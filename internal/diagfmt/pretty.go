// Package diagfmt renders a diag.Bag as a human-readable terminal report:
// one header line per diagnostic (path:line:col, severity, code, message)
// followed by the offending source line and a caret underline, the way
// rustc- and vovakirdan-surge-style compiler output does.
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

var (
	colorError   = color.New(color.FgRed, color.Bold)
	colorWarning = color.New(color.FgYellow, color.Bold)
	colorInfo    = color.New(color.FgCyan, color.Bold)
	colorHint    = color.New(color.FgHiBlack, color.Bold)
	colorPath    = color.New(color.Bold)
	colorCaret   = color.New(color.FgGreen, color.Bold)
)

// Pretty writes every diagnostic in bag to w, sorted the same way
// diag.Bag.Sort orders them (by file, position, severity, code).
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil || bag.Len() == 0 {
		return
	}
	bag.Sort()
	items := bag.Items()
	for i := range items {
		writeDiagnostic(w, &items[i], fs, opts)
		if i < len(items)-1 {
			fmt.Fprintln(w)
		}
	}
}

func writeDiagnostic(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	path := formatPath(fs, d.Primary.File, opts.PathMode)
	start, _ := fs.Resolve(d.Primary)
	header := fmt.Sprintf("%s:%d:%d:", path, start.Line, start.Col)

	if opts.Color {
		fmt.Fprintf(w, "%s %s %s: %s\n", colorPath.Sprint(header), severityColor(d.Severity).Sprint(d.Severity.String()), d.Code.String(), d.Message)
	} else {
		fmt.Fprintf(w, "%s %s %s: %s\n", header, d.Severity.String(), d.Code.String(), d.Message)
	}

	writeSnippet(w, fs, d.Primary, opts)

	if opts.ShowNotes {
		for i := range d.Notes {
			writeNote(w, fs, d.Notes[i], opts)
		}
	}
}

func writeNote(w io.Writer, fs *source.FileSet, note diag.Note, opts PrettyOpts) {
	path := formatPath(fs, note.Span.File, opts.PathMode)
	start, _ := fs.Resolve(note.Span)
	label := "note:"
	if opts.Color {
		label = colorHint.Sprint("note:")
	}
	fmt.Fprintf(w, "  %s:%d:%d: %s %s\n", path, start.Line, start.Col, label, note.Msg)
	writeSnippet(w, fs, note.Span, opts)
}

// writeSnippet prints the primary line the span starts on (plus
// opts.Context lines of surrounding text) and a caret underline beneath
// it. Columns from FileSet.Resolve are byte offsets into the line, not
// display columns, so go-runewidth measures the prefix and the
// underlined range themselves to keep the carets aligned under wide
// (e.g. CJK) runes.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	gutter := strings.Repeat(" ", len(fmt.Sprintf("%d", start.Line)))

	ctx := int(opts.Context)
	for n := start.Line - minUint32(start.Line-1, uint32(ctx)); n < start.Line; n++ {
		fmt.Fprintf(w, "%*d | %s\n", len(gutter), n, truncate(f.GetLine(n), opts.Width))
	}

	line := f.GetLine(start.Line)
	fmt.Fprintf(w, "%*d | %s\n", len(gutter), start.Line, truncate(line, opts.Width))
	fmt.Fprintf(w, "%s | %s\n", gutter, caretLine(line, start, end, opts))

	for n := start.Line + 1; n <= start.Line+uint32(ctx); n++ {
		text := f.GetLine(n)
		if text == "" && n > uint32(len(f.LineIdx)) {
			break
		}
		fmt.Fprintf(w, "%*d | %s\n", len(gutter), n, truncate(text, opts.Width))
	}
}

func caretLine(line string, start, end source.LineCol, opts PrettyOpts) string {
	prefixEnd := clampCol(line, start.Col)
	offset := runewidth.StringWidth(line[:prefixEnd])

	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		underlineEnd := clampCol(line, end.Col)
		if w := runewidth.StringWidth(line[prefixEnd:underlineEnd]); w > 0 {
			width = w
		}
	}

	carets := strings.Repeat("^", width)
	if opts.Color {
		carets = colorCaret.Sprint(carets)
	}
	return strings.Repeat(" ", offset) + carets
}

func clampCol(line string, col uint32) int {
	idx := int(col) - 1
	switch {
	case idx < 0:
		return 0
	case idx > len(line):
		return len(line)
	default:
		return idx
	}
}

func truncate(line string, width uint8) string {
	if width == 0 {
		return line
	}
	return runewidth.Truncate(line, int(width), "...")
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return colorError
	case diag.SevWarning:
		return colorWarning
	case diag.SevInfo:
		return colorInfo
	default:
		return colorHint
	}
}

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	switch mode {
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative, PathModeAuto:
		return relativeTo(fs.BaseDir(), f.Path)
	default:
		return f.Path
	}
}

func relativeTo(base, path string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
