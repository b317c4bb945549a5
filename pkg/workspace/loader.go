package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// TruncationLabel labels the block appended when a directory scan hits its cap
const TruncationLabel = "truncation_notice"

var (
	// ErrFileNotFound is returned when a referenced file doesn't exist
	ErrFileNotFound = errors.New("file not found")

	// ErrBinaryFile is returned when content cannot be decoded as UTF-8 text
	ErrBinaryFile = errors.New("cannot decode file as UTF-8 text")
)

// Block is one unit of file content: the file text with its path, or an
// error marker when the read failed
type Block struct {
	Label   string
	Content string
	Err     error
}

// IsError reports whether the block carries an error marker
func (b Block) IsError() bool {
	return b.Err != nil
}

// IsTruncation reports whether the block is the directory scan cap marker
func (b Block) IsTruncation() bool {
	return b.Label == TruncationLabel
}

func errorBlock(label string, err error) Block {
	return Block{
		Label:   label,
		Content: "Error: " + err.Error(),
		Err:     err,
	}
}

// LoadFiles reads each path in order. A failed read produces an error block
// in place of the content; no path is ever skipped.
func (w *Workspace) LoadFiles(paths []string) []Block {
	blocks := make([]Block, 0, len(paths))
	for _, p := range paths {
		content, err := w.readFile(p)
		if err != nil {
			w.logger.Warn("file read failed", zap.String("file", p), zap.Error(err))
			blocks = append(blocks, errorBlock(p, err))
			continue
		}
		blocks = append(blocks, Block{Label: p, Content: content})
	}
	return blocks
}

// LoadDirectory walks the root in lexical order and loads every supported
// file outside the ignore set. Failed reads are skipped without a marker.
// Once maxFiles files have been loaded, the next file encountered stops the
// scan and a single truncation block is appended.
func (w *Workspace) LoadDirectory(maxFiles int) []Block {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	var blocks []Block
	loaded := 0
	err := fs.WalkDir(w.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtree, keep scanning the rest
			w.logger.Debug("walk error", zap.String("path", p), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != "." && IsIgnoredDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if loaded >= maxFiles {
			blocks = append(blocks, Block{
				Label:   TruncationLabel,
				Content: fmt.Sprintf("... truncated (max %d files)", maxFiles),
			})
			return fs.SkipAll
		}

		if !IsSupported(d.Name()) {
			return nil
		}
		content, err := w.readFile(p)
		if err != nil {
			w.logger.Debug("skipping unreadable file", zap.String("file", p), zap.Error(err))
			return nil
		}
		blocks = append(blocks, Block{Label: p, Content: content})
		loaded++
		return nil
	})
	if err != nil {
		w.logger.Warn("directory scan failed", zap.String("root", w.root), zap.Error(err))
	}

	w.logger.Debug("directory scan complete", zap.Int("files", loaded))
	return blocks
}

// ListSupportedFiles returns the sorted paths of every supported file,
// skipping the ignore set and hidden directories
func (w *Workspace) ListSupportedFiles() []string {
	var files []string
	_ = fs.WalkDir(w.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != "." && (IsIgnoredDir(d.Name()) || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if IsSupported(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files
}

// readFile reads a referenced file as UTF-8 text
func (w *Workspace) readFile(ref string) (string, error) {
	name, ok := fsPath(ref)
	if !ok {
		return "", fmt.Errorf("file %s does not exist: %w", ref, ErrFileNotFound)
	}

	info, err := fs.Stat(w.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("file %s does not exist: %w", ref, ErrFileNotFound)
		}
		return "", fmt.Errorf("reading file %s: %w", ref, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", ref)
	}

	data, err := fs.ReadFile(w.fsys, name)
	if err != nil {
		return "", fmt.Errorf("reading file %s: %w", ref, err)
	}

	// non-text content is still attempted as UTF-8
	if utf8.Valid(data) {
		return string(data), nil
	}
	if !isText(data) {
		return "", fmt.Errorf("cannot read binary file %s: %w", ref, ErrBinaryFile)
	}
	return "", fmt.Errorf("reading file %s: %w", ref, ErrBinaryFile)
}

// isText reports whether the sniffed content type is textual
func isText(data []byte) bool {
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if strings.HasPrefix(mt.String(), "text/") {
			return true
		}
	}
	return false
}
