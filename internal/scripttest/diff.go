// internal/scripttest/diff.go
package scripttest

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff renders a line diff of want against got: removed lines start with
// '-', added lines with '+', shared lines with a space.
func Diff(want, got string) string {
	differ := diffmatchpatch.New()
	differ.DiffTimeout = 0

	hashed1, hashed2, lineArray := differ.DiffLinesToChars(want, got)
	diffs := differ.DiffCharsToLines(differ.DiffMain(hashed1, hashed2, false), lineArray)

	var buff bytes.Buffer
	buff.WriteString("--- expected\n+++ actual\n")
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			buff.WriteString(prefix)
			buff.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				buff.WriteString("\n\\ no newline at end\n")
			}
		}
	}
	return buff.String()
}
