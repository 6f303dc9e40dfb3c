// Package worktree is the boundary to the working directory and the engine
// that materializes commits into it.
package worktree

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Tree abstracts the working directory. Paths are slash-separated and
// relative to the tree root.
type Tree interface {
	ReadFile(p string) ([]byte, error)
	WriteFile(p string, data []byte) error
	Exists(p string) bool
	Remove(p string) error
	// List returns every regular file in the tree, sorted, excluding the
	// repository's own metadata directory.
	List() ([]string, error)
}

// ErrOutsideTree indicates a path that is absolute or escapes the tree root.
var ErrOutsideTree = errors.New("path outside working tree")

// Clean normalizes a user-supplied path into tree form.
func Clean(p string) (string, error) {
	p = strings.ReplaceAll(p, `\`, "/")
	if p == "" || path.IsAbs(p) {
		return "", fmt.Errorf("%w: %q", ErrOutsideTree, p)
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: %q", ErrOutsideTree, p)
	}
	return c, nil
}
