// Package main provides build targets for the corkboard project using Mage.
//
// Usage:
//
//	mage build          Compile corkboard binary to bin/
//	mage test:all       Run all tests with the race detector
//	mage test:unit      Run the fast test pass (-short)
//	mage test:cover     Run all tests and write coverage.out
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install corkboard to GOBIN
//	mage stats          Print Go lines per package and Markdown word counts
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "corkboard"
	binaryDir  = "bin"
	cmdDir     = "./cmd/corkboard"
	coverFile  = "coverage.out"
)

// Build compiles the corkboard binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v",
		"-ldflags", "-s -w",
		"-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Lint runs go vet and then golangci-lint over every corkboard package.
func Lint() error {
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV("golangci-lint", "run", "./cmd/...", "./internal/...", "./pkg/...")
}

// Clean removes build artifacts.
func Clean() error {
	for _, path := range []string{binaryDir, coverFile} {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install installs corkboard into GOBIN with the same flags as Build.
func Install() error {
	return sh.RunV(binGo, "install", "-ldflags", "-s -w", cmdDir)
}

// statAreas are the top-level source trees Stats reports on, in print order.
var statAreas = []string{"cmd", "internal", "pkg", "magefiles"}

// lineCount is the production and test Go line count of one package.
type lineCount struct {
	prod, test int
}

// Stats prints Go lines per package under cmd/, internal/, pkg/ and
// magefiles/, with a subtotal per area, and the Markdown word count.
func Stats() error {
	counts, err := collectLineCounts(".")
	if err != nil {
		return err
	}

	var total lineCount
	for _, area := range statAreas {
		var sub lineCount
		for _, pkg := range sortedKeys(counts) {
			if pkg != area && !strings.HasPrefix(pkg, area+"/") {
				continue
			}
			c := counts[pkg]
			fmt.Printf("  %-28s %6d prod %6d test\n", pkg, c.prod, c.test)
			sub.prod += c.prod
			sub.test += c.test
		}
		fmt.Printf("%-30s %6d prod %6d test\n", area+"/", sub.prod, sub.test)
		total.prod += sub.prod
		total.test += sub.test
	}

	docWords, err := countDocWords()
	if err != nil {
		return err
	}
	fmt.Printf("%-30s %6d prod %6d test\n", "total", total.prod, total.test)
	fmt.Printf("%-30s %6d words\n", "markdown", docWords)
	return nil
}

// collectLineCounts walks the stat areas under root and returns Go line
// counts keyed by package directory, relative to root with forward slashes.
func collectLineCounts(root string) (map[string]lineCount, error) {
	counts := make(map[string]lineCount)
	for _, area := range statAreas {
		dir := filepath.Join(root, area)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != dir && strings.HasPrefix(d.Name(), "_") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".go") {
				return nil
			}
			n, err := countLines(path)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, filepath.Dir(path))
			if err != nil {
				return err
			}
			pkg := filepath.ToSlash(rel)
			c := counts[pkg]
			if strings.HasSuffix(path, "_test.go") {
				c.test += n
			} else {
				c.prod += n
			}
			counts[pkg] = c
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", area, err)
		}
	}
	return counts, nil
}

func sortedKeys(m map[string]lineCount) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countDocWords() (int, error) {
	total := 0

	// Markdown at the repository root, such as DESIGN.md.
	patterns := []string{"*.md"}
	seen := map[string]bool{}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true
			words, err := countWordsInFile(path)
			if err != nil {
				continue
			}
			total += words
		}
	}
	return total, nil
}

func countWordsInFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	count := 0
	inWord := false
	for _, r := range string(data) {
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count, nil
}
