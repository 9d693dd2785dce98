package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"

	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/graph"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

// Importer loads a root file and every file it (transitively) imports,
// producing one merged, import-expanded CodeLine sequence with
// MergedLineIdx strictly increasing.
type Importer struct {
	Files       *source.FileSet
	Provider    FileProvider
	LibraryRoot string
	Reporter    diag.Reporter
	Cancel      func() bool // cooperative cancel flag, checked between files

	loaded map[string]bool
}

// Run loads rootPath and every transitive import into a fresh Program.
// The only error it returns is the root file being unreadable.
func (im *Importer) Run(rootPath string) (*graph.Program, error) {
	if im.loaded == nil {
		im.loaded = make(map[string]bool)
	}
	program := graph.NewProgram(im.Files)
	var mergedIdx uint32
	if err := im.expand(rootPath, "", program, &mergedIdx, true); err != nil {
		return nil, fmt.Errorf("importer: cannot read root file %q: %w", rootPath, err)
	}
	return program, nil
}

func (im *Importer) expand(path, fromDir string, program *graph.Program, mergedIdx *uint32, isRoot bool) error {
	if im.Cancel != nil && im.Cancel() {
		return nil
	}

	resolved, err := im.resolve(path, fromDir)
	if err != nil {
		return err
	}
	content, err := im.Provider.ReadFile(resolved)
	if err != nil {
		if isRoot {
			return err
		}
		im.report(diag.ImportUnreadableFile, source.Span{}, fmt.Sprintf("cannot read imported file %q: %v", path, err))
		return nil
	}

	canonical := normalizeCanonical(resolved)
	if im.loaded[canonical] {
		// Circular import: the repeat visit contributes zero lines.
		return nil
	}
	im.loaded[canonical] = true

	fileID := im.addFile(resolved, content)
	content = im.Files.Get(fileID).Content
	dir := filepath.Dir(resolved)

	for _, rawLine := range splitLines(content) {
		raw := string(content[rawLine.Start:rawLine.End])
		indent := leadingWhitespace(raw)
		body := raw[len(indent):]
		stripped := stripComment(body)
		fullBody := strings.TrimRight(stripped, " \t\r")

		trimmedText := strings.TrimSpace(fullBody)
		if strings.HasPrefix(trimmedText, "import ") || trimmedText == "import" {
			importPath := strings.TrimSpace(strings.TrimPrefix(trimmedText, "import"))
			if importPath != "" {
				if err := im.expand(importPath, dir, program, mergedIdx, false); err != nil {
					return err
				}
				continue
			}
		}

		patternText := fullBody
		hadColon := strings.HasSuffix(patternText, ":")
		if hadColon {
			patternText = patternText[:len(patternText)-1]
		}

		patternStart := rawLine.Start + uint32(len(indent))
		patternEnd := patternStart + uint32(len(patternText))

		line := graph.CodeLine{
			File:            fileID,
			OriginalLineIdx: rawLine.Index,
			MergedLineIdx:   *mergedIdx,
			Text:            indent + fullBody,
			Indent:          indent,
			PatternText:     patternText,
			HasChildSection: hadColon,
			Section:         graph.NoSectionID,
			OpensSection:    graph.NoSectionID,
			Expression:      graph.NoExprID,
		}
		spans := graph.LineSpans{
			Full:        source.Span{File: fileID, Start: rawLine.Start, End: rawLine.End},
			PatternText: source.Span{File: fileID, Start: patternStart, End: patternEnd},
		}
		program.Lines.New(line, spans)
		*mergedIdx++
	}
	return nil
}

func (im *Importer) resolve(path, fromDir string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	if fromDir != "" {
		candidate := filepath.Join(fromDir, path)
		if im.exists(candidate) {
			return candidate, nil
		}
	}
	if im.LibraryRoot != "" {
		candidate := filepath.Join(im.LibraryRoot, path)
		if im.exists(candidate) {
			return candidate, nil
		}
	}
	if fromDir != "" {
		return filepath.Join(fromDir, path), nil
	}
	return path, nil
}

func (im *Importer) exists(path string) bool {
	_, err := im.Provider.ReadFile(path)
	return err == nil
}

func (im *Importer) addFile(path string, content []byte) source.FileID {
	if id, ok := im.Files.GetByPath(path); ok {
		return id.ID
	}
	return im.Files.AddVirtual(path, content)
}

func (im *Importer) report(code diag.Code, sp source.Span, msg string) {
	if im.Reporter != nil {
		im.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}

func normalizeCanonical(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

type rawLine struct {
	Index uint32
	Start uint32
	End   uint32 // exclusive, excludes the trailing newline
}

// splitLines finds line boundaries directly over content's bytes so
// Span offsets line up with the file exactly as loaded (the caller
// passes the FileSet's CRLF/BOM-normalized copy).
func splitLines(content []byte) []rawLine {
	var out []rawLine
	start := uint32(0)
	var idx uint32
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			end, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("line offset overflow: %w", err))
			}
			out = append(out, rawLine{Index: idx, Start: start, End: end})
			start = end + 1
			idx++
		}
	}
	if start < uint32(len(content)) || len(content) == 0 {
		end, err := safecast.Conv[uint32](len(content))
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		out = append(out, rawLine{Index: idx, Start: start, End: end})
	}
	return out
}

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}

func trailingTrimmedLen(s string) int {
	return len(s) - len(strings.TrimRight(s, " \t\r"))
}
