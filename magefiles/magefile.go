//go:build mage

// Package main contains Mage build targets for peril-crawler developer tooling.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/peril-crawler/internal/perils"
)

const (
	binDir       = "bin"
	binName      = "peril-crawler"
	cmdPkg       = "./cmd/peril-crawler"
	outputDir    = "output"
	keywordsFile = "peril_keywords.json"
)

// Init creates the output directory and seeds peril_keywords.json with
// the default keyword list if it does not exist.
func Init() error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outputDir, err)
	}
	fmt.Println("  ", outputDir)

	err := perils.WriteDefaultKeywords(keywordsFile)
	switch {
	case errors.Is(err, fs.ErrExist):
		fmt.Println("  ", keywordsFile, "(kept existing)")
	case err != nil:
		return err
	default:
		fmt.Println("  ", keywordsFile)
	}
	fmt.Println("Project initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Combinations prints the keyword/state totals for peril_keywords.json.
func Combinations() error {
	mg.Deps(Init)

	kf, err := perils.LoadKeywordFile(keywordsFile)
	if err != nil {
		return err
	}
	combos, err := perils.Generate(perils.States(), kf.Keywords)
	if err != nil {
		return err
	}
	fmt.Printf("Keywords:     %d\n", len(kf.Keywords))
	fmt.Printf("States:       %d\n", len(perils.States()))
	fmt.Printf("Combinations: %d\n", len(combos))
	fmt.Printf("Extra:        %d\n", len(kf.Extra))
	return nil
}

// Crawl builds the binary and runs a crawl with default settings.
func Crawl() error {
	mg.SerialDeps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "crawl")
}

// Stats prints Go production and test line counts.
func Stats() error {
	var prod, test int
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") || (d.Name() != "." && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	return nil
}

// countLines counts non-blank lines in path.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
