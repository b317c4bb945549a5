package workspace

import (
	"io/fs"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// referencePattern matches an @ followed by one or more non-whitespace characters
var referencePattern = regexp.MustCompile(`@(\S+)`)

// Resolve extracts @token references from raw user text. It returns the
// tokens naming an existing entry under the root, in encounter order with
// duplicates kept, and the text with every token removed. Tokens that do not
// resolve are dropped from the list but still stripped from the text.
func (w *Workspace) Resolve(raw string) ([]string, string) {
	matches := referencePattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return []string{}, strings.TrimSpace(raw)
	}

	valid := make([]string, 0, len(matches))
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(raw[last:m[0]])
		last = m[1]

		// close the seam: when the token sat between whitespace, drop the
		// horizontal whitespace that followed it
		if m[0] == 0 || precededBySpace(raw[:m[0]]) {
			for last < len(raw) && (raw[last] == ' ' || raw[last] == '\t') {
				last++
			}
		}

		token := raw[m[2]:m[3]]
		if w.exists(token) {
			valid = append(valid, token)
		}
	}
	b.WriteString(raw[last:])

	return valid, strings.TrimSpace(b.String())
}

// precededBySpace reports whether s ends in a whitespace rune
func precededBySpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

// exists reports whether a reference names an entry under the root
func (w *Workspace) exists(ref string) bool {
	name, ok := fsPath(ref)
	if !ok {
		return false
	}
	_, err := fs.Stat(w.fsys, name)
	return err == nil
}
