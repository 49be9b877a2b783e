package repo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Normalize reduces an absolute path to its repo-relative identity.
// The result is slash-separated regardless of platform so it is stable on
// the wire. Fails with ErrOutsideRoot when abs does not lie under root.
func Normalize(abs, root string) (string, error) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not relative to %s", ErrOutsideRoot, abs, root)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes %s", ErrOutsideRoot, abs, root)
	}
	return filepath.ToSlash(rel), nil
}

// Reconstruct joins a repo-relative path back onto the root.
//
// TODO: reject parent-directory segments in rel so a crafted payload cannot
// resolve to a file outside root. Today this is a plain join and is not a
// verified inverse of Normalize for all inputs.
func Reconstruct(rel, root string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
