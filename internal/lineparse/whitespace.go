package lineparse

import (
	"strings"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// normalizeWhitespace trims carved's outer whitespace and collapses any
// internal run of more than one whitespace byte into a single space,
// warning once per call when any run was collapsed. Carved literals have already shrunk to one
// reserved byte each, so the span attached to the warning only locates
// the line, not the exact run — good enough to point a user at it.
func (p *Parser) normalizeWhitespace(carved string, fileID source.FileID, absBase uint32) string {
	trimmed := strings.TrimSpace(carved)
	var out strings.Builder
	runStart := -1
	collapsedAny := false
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == ' ' || c == '\t' {
			if runStart == -1 {
				runStart = i
			}
			continue
		}
		if runStart != -1 {
			if i-runStart > 1 {
				collapsedAny = true
			}
			out.WriteByte(' ')
			runStart = -1
		}
		out.WriteByte(c)
	}
	if runStart != -1 {
		// trailing run can't happen after TrimSpace, kept for safety.
		out.WriteByte(' ')
	}
	if collapsedAny {
		p.report(diag.LineWhitespaceCollapsed, diag.SevWarning, p.spanFrom(fileID, absBase, len(trimmed)),
			"internal whitespace run collapsed to a single space")
	}
	return out.String()
}
