// Package config loads a project's pattern.toml manifest: the project
// name, a prelude path and the library root, looked up from the
// directory of the file patterncomp compiles, mirroring surge.toml /
// project.ModuleMeta in shape and lookup order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestFileName = "pattern.toml"

// ErrNoManifest signals that no pattern.toml was found walking up from
// the start directory; not finding one is not itself an error for a
// caller that's happy compiling a single file directly.
var ErrNoManifest = errors.New("config: no pattern.toml found")

// Manifest is a located and parsed pattern.toml: Path/Root record where
// it came from, Package mirrors the same layout projectConfig uses.
type Manifest struct {
	Path    string
	Root    string
	Package PackageConfig
}

// PackageConfig is the [package] table: Name identifies the project,
// Prelude names a file (relative to Root) that PreludePath resolves
// (the compile command and the pipeline do not import it), and
// LibraryRoot names the directory import statements resolve
// non-relative paths against — passed through pipeline.Pipeline to
// importer.Importer.LibraryRoot.
type PackageConfig struct {
	Name        string `toml:"name"`
	Prelude     string `toml:"prelude"`
	LibraryRoot string `toml:"library_root"`
}

// Find walks upward from startDir looking for pattern.toml, the same
// directory-climbing lookup findSurgeToml performs. It
// returns ErrNoManifest (not a plain false) when none is found, so a
// caller can distinguish "no manifest" from "couldn't stat a
// directory" with a single errors.Is check.
func Find(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("config: resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config: stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoManifest
		}
		dir = parent
	}
}

// Load finds and parses the nearest pattern.toml above startDir.
func Load(startDir string) (*Manifest, error) {
	path, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile parses the pattern.toml at path directly, validating that
// [package] and [package].name are present the way loadProjectConfig
// validates [package]/[run].
func LoadFile(path string) (*Manifest, error) {
	var pkg struct {
		Package PackageConfig `toml:"package"`
	}
	meta, err := toml.DecodeFile(path, &pkg)
	if err != nil {
		return nil, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(pkg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}

	return &Manifest{
		Path:    path,
		Root:    filepath.Dir(path),
		Package: pkg.Package,
	}, nil
}

// PreludePath resolves Package.Prelude against Root, returning "" when
// no prelude is configured.
func (m *Manifest) PreludePath() string {
	if m == nil || strings.TrimSpace(m.Package.Prelude) == "" {
		return ""
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Package.Prelude))
}

// LibraryRootPath resolves Package.LibraryRoot against Root, falling
// back to Root itself when unset (imports resolve against the project
// root by default).
func (m *Manifest) LibraryRootPath() string {
	if m == nil {
		return ""
	}
	if strings.TrimSpace(m.Package.LibraryRoot) == "" {
		return m.Root
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Package.LibraryRoot))
}
