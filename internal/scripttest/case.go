// internal/scripttest/case.go
package scripttest

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"ember/internal/lexer"
)

// Extension marks script files.
const Extension = ".em"

const (
	expectPrefix      = "expect:"
	expectErrorPrefix = "expect error:"
)

// Case is one script together with the expectations written in its
// comments.
type Case struct {
	Name   string
	File   string
	Source string
	// Expect holds the expected output lines, in order.
	Expect []string
	// ExpectError, when set, must appear in one of the reported
	// diagnostics.
	ExpectError string
}

// ExpectedOutput joins Expect the way print writes it.
func (c *Case) ExpectedOutput() string {
	if len(c.Expect) == 0 {
		return ""
	}
	return strings.Join(c.Expect, "\n") + "\n"
}

// ParseCase reads expectations from the line comments of source.
//
//	print 1 + 2; // expect: 3
//	print -"a";  // expect error: must be a number
func ParseCase(name, source string) *Case {
	c := &Case{Name: name, File: name, Source: source}

	scanner := lexer.NewScanner(source)
	scanner.ScanTokens()
	for _, comment := range scanner.Comments() {
		text := strings.TrimSpace(strings.TrimPrefix(comment.Text, "//"))
		switch {
		case strings.HasPrefix(text, expectErrorPrefix):
			c.ExpectError = strings.TrimSpace(strings.TrimPrefix(text, expectErrorPrefix))
		case strings.HasPrefix(text, expectPrefix):
			line := strings.TrimPrefix(text, expectPrefix)
			c.Expect = append(c.Expect, strings.TrimPrefix(line, " "))
		}
	}
	return c
}

// Discover returns every script under dir, sorted by path.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Extension {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "discover scripts in %s", dir)
	}
	slices.Sort(files)
	return files, nil
}

// LoadCases reads each file and names its case relative to dir.
func LoadCases(dir string, files []string) ([]*Case, error) {
	cases := make([]*Case, 0, len(files))
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", file)
		}
		name, err := filepath.Rel(dir, file)
		if err != nil {
			name = file
		}
		c := ParseCase(filepath.ToSlash(name), string(source))
		c.File = file
		cases = append(cases, c)
	}
	return cases, nil
}
