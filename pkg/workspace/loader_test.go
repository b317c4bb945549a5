package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func TestLoadFiles(t *testing.T) {
	t.Parallel()

	ws := NewFS(fstest.MapFS{
		"a.txt":     {Data: []byte("alpha")},
		"img.png":   {Data: pngHeader},
		"dir/x.go":  {Data: []byte("package x")},
		"latin1.md": {Data: []byte("caf\xe9 au lait")},
	}, "/work")

	t.Run("order and content", func(t *testing.T) {
		t.Parallel()

		blocks := ws.LoadFiles([]string{"dir/x.go", "a.txt"})
		require.Len(t, blocks, 2)
		assert.Equal(t, Block{Label: "dir/x.go", Content: "package x"}, blocks[0])
		assert.Equal(t, Block{Label: "a.txt", Content: "alpha"}, blocks[1])
	})

	t.Run("failures become error blocks", func(t *testing.T) {
		t.Parallel()

		blocks := ws.LoadFiles([]string{"missing.txt", "a.txt", "dir", "img.png", "latin1.md"})
		require.Len(t, blocks, 5)

		assert.True(t, blocks[0].IsError())
		assert.ErrorIs(t, blocks[0].Err, ErrFileNotFound)
		assert.Equal(t, "Error: file missing.txt does not exist: file not found", blocks[0].Content)

		assert.False(t, blocks[1].IsError())

		assert.True(t, blocks[2].IsError())
		assert.Equal(t, "dir", blocks[2].Label)

		assert.True(t, blocks[3].IsError())
		assert.ErrorIs(t, blocks[3].Err, ErrBinaryFile)
		assert.True(t, strings.HasPrefix(blocks[3].Content, "Error: cannot read binary file img.png"))

		assert.True(t, blocks[4].IsError())
		assert.ErrorIs(t, blocks[4].Err, ErrBinaryFile)

		for _, b := range blocks {
			if b.IsError() {
				assert.True(t, strings.HasPrefix(b.Content, "Error:"))
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, ws.LoadFiles(nil))
	})
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	t.Run("truncates at max files", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{}
		for i := 1; i <= 5; i++ {
			fsys[fmt.Sprintf("f%d.go", i)] = &fstest.MapFile{Data: []byte(fmt.Sprintf("package f%d", i))}
		}
		ws := NewFS(fsys, "/work")

		blocks := ws.LoadDirectory(2)
		require.Len(t, blocks, 3)
		assert.Equal(t, "f1.go", blocks[0].Label)
		assert.Equal(t, "f2.go", blocks[1].Label)
		assert.True(t, blocks[2].IsTruncation())
		assert.Equal(t, "... truncated (max 2 files)", blocks[2].Content)
	})

	t.Run("exactly max files has no marker", func(t *testing.T) {
		t.Parallel()

		ws := NewFS(fstest.MapFS{
			"a.go": {Data: []byte("package a")},
			"b.go": {Data: []byte("package b")},
		}, "/work")

		blocks := ws.LoadDirectory(2)
		require.Len(t, blocks, 2)
		for _, b := range blocks {
			assert.False(t, b.IsTruncation())
		}
	})

	t.Run("ignore set and unsupported files", func(t *testing.T) {
		t.Parallel()

		ws := NewFS(fstest.MapFS{
			".git/config":           {Data: []byte("[core]")},
			"node_modules/pkg/x.js": {Data: []byte("module.exports = 1")},
			"src/__pycache__/m.py":  {Data: []byte("cached")},
			"src/app.py":            {Data: []byte("app")},
			"photo.jpg":             {Data: []byte("jpeg")},
			"Makefile":              {Data: []byte("all:")},
			"broken.txt":            {Data: pngHeader},
			"docs/guide/README.md":  {Data: []byte("guide")},
			"build/generated.go":    {Data: []byte("package generated")},
			".vscode/settings.json": {Data: []byte("{}")},
		}, "/work")

		blocks := ws.LoadDirectory(0)
		labels := make([]string, 0, len(blocks))
		for _, b := range blocks {
			assert.False(t, b.IsError())
			labels = append(labels, b.Label)
		}
		assert.Equal(t, []string{"Makefile", "docs/guide/README.md", "src/app.py"}, labels)
	})

	t.Run("real directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "x.go"), []byte("package x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("notes"), 0o644))

		ws, err := New(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, ws.Root())

		blocks := ws.LoadDirectory(DefaultMaxFiles)
		require.Len(t, blocks, 2)
		assert.Equal(t, "notes.txt", blocks[0].Label)
		assert.Equal(t, "pkg/x.go", blocks[1].Label)

		files, cleaned := ws.Resolve("@pkg/x.go review")
		assert.Equal(t, []string{"pkg/x.go"}, files)
		assert.Equal(t, "review", cleaned)
	})
}

func TestListSupportedFiles(t *testing.T) {
	t.Parallel()

	ws := NewFS(fstest.MapFS{
		"z.go":              {Data: []byte("package z")},
		"a/b.ts":            {Data: []byte("export {}")},
		".env":              {Data: []byte("KEY=1")},
		".hidden/secret.md": {Data: []byte("secret")},
		"venv/lib.py":       {Data: []byte("lib")},
		"image.png":         {Data: pngHeader},
	}, "/work")

	assert.Equal(t, []string{".env", "a/b.ts", "z.go"}, ws.ListSupportedFiles())
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = New(file)
	assert.Error(t, err)
}
