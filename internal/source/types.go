// Package source holds the file and span primitives shared by every stage
// of the pattern pipeline.
package source

type (
	// FileID uniquely identifies a loaded source file.
	FileID uint32
	// FileFlags records how a file's bytes were obtained or normalized.
	FileFlags uint8
)

const (
	// FileVirtual marks a file whose bytes the caller handed over via
	// AddVirtual rather than Load reading it from disk (the importer adds
	// every file this way, whatever its FileProvider read it from).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File captures metadata and content for one loaded source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// LineCol is a human-facing 1-based line/column position.
type LineCol struct {
	Line uint32
	Col  uint32
}
