package workspace

import (
	"path"
	"strings"
)

// supportedExtensions lists the file extensions loaded as context
var supportedExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".ts": {}, ".jsx": {}, ".tsx": {}, ".java": {}, ".c": {}, ".cpp": {},
	".h": {}, ".hpp": {}, ".cs": {}, ".php": {}, ".rb": {}, ".go": {}, ".rs": {}, ".swift": {},
	".kt": {}, ".scala": {}, ".r": {}, ".m": {}, ".sh": {}, ".bash": {}, ".zsh": {}, ".fish": {},
	".ps1": {}, ".md": {}, ".txt": {}, ".json": {}, ".xml": {}, ".yaml": {}, ".yml": {}, ".toml": {},
	".ini": {}, ".cfg": {}, ".conf": {}, ".html": {}, ".css": {}, ".scss": {}, ".sass": {}, ".less": {},
	".sql": {}, ".dockerfile": {}, ".docker": {}, ".gitignore": {}, ".env": {}, ".makefile": {},
}

// supportedNames lists exact file names loaded as context regardless of
// their extension
var supportedNames = map[string]struct{}{
	".gitignore": {},
	".env":       {},
	"Makefile":   {},
	"makefile":   {},
	"Dockerfile": {},
}

// ignoredDirs is the ignore set: directory names whose whole subtree is
// skipped by directory scans
var ignoredDirs = map[string]struct{}{
	".git": {}, "__pycache__": {}, "node_modules": {}, ".venv": {}, "venv": {}, "env": {},
	".idea": {}, ".vscode": {}, "dist": {}, "build": {}, ".next": {}, ".nuxt": {}, "target": {},
	"bin": {}, "obj": {}, ".pytest_cache": {}, ".mypy_cache": {}, ".tox": {}, "coverage": {},
}

// IsSupported reports whether a file name is loaded as context
func IsSupported(name string) bool {
	base := path.Base(name)
	if _, ok := supportedNames[base]; ok {
		return true
	}
	_, ok := supportedExtensions[strings.ToLower(path.Ext(base))]
	return ok
}

// IsIgnoredDir reports whether a directory name belongs to the ignore set
func IsIgnoredDir(name string) bool {
	_, ok := ignoredDirs[name]
	return ok
}
