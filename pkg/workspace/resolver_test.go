package workspace

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func newTestWorkspace() *Workspace {
	return NewFS(fstest.MapFS{
		"a.txt":          {Data: []byte("alpha")},
		"b.go":           {Data: []byte("package b")},
		"src/main.py":    {Data: []byte("print('hi')")},
		"docs/readme.md": {Data: []byte("# docs")},
	}, "/work")
}

func TestResolve(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace()

	tests := []struct {
		name    string
		input   string
		files   []string
		cleaned string
	}{
		{
			name:    "valid and missing reference",
			input:   "@a.txt @missing.txt explain",
			files:   []string{"a.txt"},
			cleaned: "explain",
		},
		{
			name:    "reference in the middle",
			input:   "compare @a.txt with @b.go please",
			files:   []string{"a.txt", "b.go"},
			cleaned: "compare with please",
		},
		{
			name:    "duplicates kept in order",
			input:   "@b.go @a.txt @b.go diff",
			files:   []string{"b.go", "a.txt", "b.go"},
			cleaned: "diff",
		},
		{
			name:    "nested path",
			input:   "what does @src/main.py do",
			files:   []string{"src/main.py"},
			cleaned: "what does do",
		},
		{
			name:    "directory entry exists",
			input:   "@docs summarize",
			files:   []string{"docs"},
			cleaned: "summarize",
		},
		{
			name:    "escaping the root never validates",
			input:   "@../etc/passwd @/etc/passwd read",
			files:   []string{},
			cleaned: "read",
		},
		{
			name:    "only references",
			input:   "@a.txt",
			files:   []string{"a.txt"},
			cleaned: "",
		},
		{
			name:    "multibyte text before the reference",
			input:   "voilà@a.txt suite",
			files:   []string{"a.txt"},
			cleaned: "voilà suite",
		},
		{
			name:    "emoji before the reference",
			input:   "🙅@a.txt  x",
			files:   []string{"a.txt"},
			cleaned: "🙅  x",
		},
		{
			name:    "non-breaking space before the reference",
			input:   "see\u00a0@a.txt  now",
			files:   []string{"a.txt"},
			cleaned: "see\u00a0now",
		},
		{
			name:    "bare at sign is not a reference",
			input:   "mail me @ home",
			files:   []string{},
			cleaned: "mail me @ home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			files, cleaned := ws.Resolve(tt.input)
			assert.Equal(t, tt.files, files)
			assert.Equal(t, tt.cleaned, cleaned)
		})
	}
}

func TestResolveWithoutReferences(t *testing.T) {
	t.Parallel()

	ws := newTestWorkspace()

	inputs := []string{
		"hello world",
		"  padded input\t",
		"multi\nline  text",
		"déjà vu à",
		"  voilà  ",
		"",
	}
	for _, input := range inputs {
		files, cleaned := ws.Resolve(input)
		assert.Empty(t, files)
		assert.NotNil(t, files)
		assert.Equal(t, strings.TrimSpace(input), cleaned)
	}
}

func TestFsPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{"a.txt", "a.txt", true},
		{"./a.txt", "a.txt", true},
		{"src//main.py", "src/main.py", true},
		{"src/../a.txt", "a.txt", true},
		{"src//main.py", "src/main.py", true},
		{"../a.txt", "", false},
		{"/etc/passwd", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := fsPath(tt.ref)
		assert.Equal(t, tt.ok, ok, tt.ref)
		assert.Equal(t, tt.want, got, tt.ref)

		cleaned, cleanOK := CleanPath(tt.ref)
		assert.Equal(t, got, cleaned, tt.ref)
		assert.Equal(t, ok, cleanOK, tt.ref)
	}
}
