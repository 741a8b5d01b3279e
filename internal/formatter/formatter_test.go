package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/parser"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"print", "print   1+2 ;", "print 1 + 2;\n"},
		{"assignment", "x=1;", "x = 1;\n"},
		{"chained assignment", "a=b=c;", "a = b = c;\n"},
		{"grouping kept", "print (1+2)*3;", "print (1 + 2) * 3;\n"},
		{"redundant grouping kept", "print ((x));", "print ((x));\n"},
		{"unary", "print -x; print !true; print +1; print - -2;", "print -x;\nprint !true;\nprint +1;\nprint --2;\n"},
		{"logical", "print a and b or c;", "print a and b or c;\n"},
		{"literals", `print nil; print true; print "s p";print 2.50;`, "print nil;\nprint true;\nprint \"s p\";\nprint 2.5;\n"},
		{"if", "if(x){print 1;}", "if (x) {\n    print 1;\n}\n"},
		{"if else", "if (x) { print 1; } else { print 2; }", "if (x) {\n    print 1;\n} else {\n    print 2;\n}\n"},
		{"empty blocks", "if (x) {} else {}", "if (x) {\n} else {\n}\n"},
		{"nested", "if (a) { if (b) { c = 1; } }", "if (a) {\n    if (b) {\n        c = 1;\n    }\n}\n"},
		{"blank lines around if", "a = 1; if (a) { print a; } b = 2;", "a = 1;\n\nif (a) {\n    print a;\n}\n\nb = 2;\n"},
		{"print variable", "print = 1; print print;", "print = 1;\nprint print;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Source(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatComments(t *testing.T) {
	src := "// leading\nx = 1; // why\n\nif (x) { // check\n  // inside\n  print x;\n}\n// tail\n"
	want := "// leading\nx = 1; // why\n\nif (x) { // check\n    // inside\n    print x;\n}\n// tail\n"
	got, err := Source(src)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFormatBlockComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"after last statement",
			"if (x) {\n    print 1;\n    // inside\n}\nprint 2;\n",
			"if (x) {\n    print 1;\n    // inside\n}\n\nprint 2;\n",
		},
		{
			"empty block",
			"if (x) {\n  // nothing yet\n}\n",
			"if (x) {\n    // nothing yet\n}\n",
		},
		{
			"end of else",
			"if (x) {\n    print 1;\n} else {\n    print 2;\n    // fallback\n}\n",
			"if (x) {\n    print 1;\n} else {\n    print 2;\n    // fallback\n}\n",
		},
		{
			"on closing brace",
			"if (x) {\n    print 1;\n} // done\nprint 2;\n",
			"if (x) {\n    print 1;\n} // done\n\nprint 2;\n",
		},
		{
			"nested",
			"if (x) {\n  if (y) {\n    print 1;\n    // deep\n  }\n  // outer\n}\n",
			"if (x) {\n    if (y) {\n        print 1;\n        // deep\n    }\n    // outer\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Source(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := Source(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	programs := []string{
		"x = 5; print x;",
		"print 1 + 2 * 3 - (4 / 5);",
		`if (a == nil or b != "q") { print -a; } else { c = d = !false; }`,
		"print \"multi\nline\"; y = 1 <= 2 and 3 >= 4;",
		"if (x) { if (y) { } } print 1.5;",
		"print 1" + strings.Repeat("0", 400) + ";",
	}

	for _, src := range programs {
		t.Run(src, func(t *testing.T) {
			first, err := parser.ParseSource(src)
			require.NoError(t, err)

			formatted, err := Source(src)
			require.NoError(t, err)
			second, err := parser.ParseSource(formatted)
			require.NoError(t, err, "formatted output must parse:\n%s", formatted)

			assert.Equal(t, parser.Dump(first), parser.Dump(second))

			again, err := Source(formatted)
			require.NoError(t, err)
			assert.Equal(t, formatted, again, "formatting is a fixed point")
		})
	}
}

func TestSourceErrors(t *testing.T) {
	src := "print 1"
	got, err := Source(src)
	require.Error(t, err)
	assert.Equal(t, src, got)

	src = "print 1; $"
	got, err = Source(src)
	require.Error(t, err)
	assert.Equal(t, src, got)
}
