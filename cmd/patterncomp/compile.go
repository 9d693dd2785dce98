package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OpenAEC-Foundation/dynlex/internal/config"
	"github.com/OpenAEC-Foundation/dynlex/internal/diag"
	"github.com/OpenAEC-Foundation/dynlex/internal/diagfmt"
	"github.com/OpenAEC-Foundation/dynlex/internal/importer"
	"github.com/OpenAEC-Foundation/dynlex/internal/pipeline"
	"github.com/OpenAEC-Foundation/dynlex/internal/source"
)

var compileCmd = &cobra.Command{
	Use:   "compile <input>",
	Short: "Run the pattern pipeline over a root file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "name recorded as the build's output artifact")
	compileCmd.Flags().Bool("emit-llvm", false, "report the LLVMFunction slots a codegen backend would fill (no backend is wired in this repo)")
	compileCmd.Flags().IntP("optimize", "O", 0, "optimization level 0-3 (accepted for CLI compatibility; this front end performs no optimization)")
	compileCmd.Flags().Bool("dump-sections", false, "print the resolved section tree")
	compileCmd.Flags().Bool("dump-patterns", false, "print every pattern definition's classified elements")
	compileCmd.Flags().Bool("dump-trie", false, "print the Effect/Expression/Section pattern tries")
	compileCmd.Flags().String("cache-dir", "", "persist read file contents here across runs (msgpack-backed)")
}

// exit codes per the pipeline's CLI contract: 0 success, 1 an error
// diagnostic was emitted, 2 the root file itself could not be read.
const (
	exitOK             = 0
	exitDiagnosticsBad = 1
	exitUnreadableRoot = 2
)

func runCompile(cmd *cobra.Command, args []string) error {
	rootPath := args[0]

	optimize, err := cmd.Flags().GetInt("optimize")
	if err != nil {
		return err
	}
	if optimize < 0 || optimize > 3 {
		return fmt.Errorf("-O%d out of range: must be 0-3", optimize)
	}
	emitLLVM, err := cmd.Flags().GetBool("emit-llvm")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return err
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	var provider importer.FileProvider = importer.OSFileProvider{}
	if cacheDir != "" {
		cache, err := importer.NewFileCache(cacheDir, provider)
		if err != nil {
			return fmt.Errorf("cache-dir: %w", err)
		}
		provider = cache
	}

	libraryRoot := filepath.Dir(rootPath)
	if manifest, err := config.Load(libraryRoot); err == nil {
		libraryRoot = manifest.LibraryRootPath()
	} else if !errors.Is(err, config.ErrNoManifest) {
		return fmt.Errorf("pattern.toml: %w", err)
	}

	files := source.NewFileSet()
	files.SetBaseDir(libraryRoot)
	bag := diag.NewBag(maxDiagnostics)

	pl := &pipeline.Pipeline{
		Files:       files,
		Provider:    provider,
		LibraryRoot: libraryRoot,
		Reporter:    diag.BagReporter{Bag: bag},
		Cancel:      new(atomic.Bool),
	}
	res := pl.Run(rootPath)

	var unreadable *pipeline.ErrUnreadableRoot
	if errors.As(res.Err, &unreadable) {
		fmt.Fprintln(os.Stderr, unreadable.Error())
		os.Exit(exitUnreadableRoot)
	}

	diagfmt.Pretty(os.Stdout, bag, files, diagfmt.PrettyOpts{
		Color:     shouldColor(colorMode),
		Context:   1,
		ShowNotes: true,
		Width:     120,
	})

	if res.Program != nil {
		if mustDump(cmd, "dump-sections") {
			dumpSections(os.Stdout, res.Program)
		}
		if mustDump(cmd, "dump-patterns") {
			dumpPatterns(os.Stdout, res.Program)
		}
		if mustDump(cmd, "dump-trie") && res.Forest != nil {
			dumpTrie(os.Stdout, res.Forest)
		}
	}

	if emitLLVM {
		fmt.Fprintln(os.Stderr, "note: --emit-llvm requested but no LLVM backend is wired; Instantiation.LLVMFunction slots remain nil")
	}

	if bag.HasErrors() {
		os.Exit(exitDiagnosticsBad)
	}

	if output != "" {
		fmt.Fprintf(os.Stdout, "ok: %s\n", output)
	}
	os.Exit(exitOK)
	return nil
}

func mustDump(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	return err == nil && v
}

// shouldColor resolves the --color flag; "auto" defers to fatih/color's
// own terminal detection (color.NoColor), rather than rolling this
// repo's own isatty check.
func shouldColor(mode string) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return !color.NoColor
	}
}
