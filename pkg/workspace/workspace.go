package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxFiles caps directory scans when no limit is given
const DefaultMaxFiles = 50

// Workspace gives read-only access to the files under a root directory
type Workspace struct {
	root   string
	fsys   fs.FS
	logger *zap.Logger
}

// Option configures a Workspace
type Option func(*Workspace)

// WithLogger sets the logger used for read failures and scans
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Workspace rooted at dir, which must be an existing directory
func New(dir string, opts ...Option) (*Workspace, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root %q: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", root)
	}
	return NewFS(os.DirFS(root), root, opts...), nil
}

// NewFS creates a Workspace over an arbitrary file system. root is only used
// for display.
func NewFS(fsys fs.FS, root string, opts ...Option) *Workspace {
	w := &Workspace{
		root:   root,
		fsys:   fsys,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named("workspace")
	return w
}

// Root returns the directory the workspace is rooted at
func (w *Workspace) Root() string {
	return w.root
}

// CleanPath returns the slash-separated path under the root that a reference
// names, as used in block labels of a directory scan
func CleanPath(ref string) (string, bool) {
	return fsPath(ref)
}

// fsPath converts a user reference into an io/fs path. References that
// would leave the root are rejected.
func fsPath(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	p := filepath.ToSlash(ref)
	if strings.HasPrefix(p, "/") {
		return "", false
	}
	p = path.Clean(p)
	if p == "." || !fs.ValidPath(p) {
		return "", false
	}
	return p, true
}
