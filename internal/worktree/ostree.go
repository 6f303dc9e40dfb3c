package worktree

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/systemshift/memex-vc/internal/dag"
	"golang.org/x/exp/mmap"
)

// OSTree is a Tree backed by a directory on disk.
type OSTree struct {
	root   string
	ignore map[string]bool // top-level names never listed (e.g. ".mxvc")
}

// NewOSTree returns a tree rooted at root. Top-level entries named in ignore
// are left out of List.
func NewOSTree(root string, ignore ...string) *OSTree {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	t := &OSTree{root: filepath.Clean(root), ignore: make(map[string]bool, len(ignore))}
	for _, name := range ignore {
		t.ignore[name] = true
	}
	return t
}

// Root returns the directory the tree is rooted at.
func (t *OSTree) Root() string {
	return t.root
}

func (t *OSTree) abs(p string) (string, error) {
	c, err := Clean(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(t.root, filepath.FromSlash(c)), nil
}

// ReadFile maps the file into memory and copies its content out.
func (t *OSTree) ReadFile(p string) ([]byte, error) {
	full, err := t.abs(p)
	if err != nil {
		return nil, err
	}
	r, err := mmap.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer r.Close()

	data := make([]byte, r.Len())
	if len(data) == 0 {
		return data, nil
	}
	if _, err := r.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

// WriteFile replaces the file atomically, creating parent directories. An
// empty directory at p is replaced; a non-empty one is an error.
func (t *OSTree) WriteFile(p string, data []byte) error {
	full, err := t.abs(p)
	if err != nil {
		return err
	}
	if fi, err := os.Lstat(full); err == nil && fi.IsDir() {
		if err := os.Remove(full); err != nil {
			return fmt.Errorf("replace directory %s: %w", p, err)
		}
	}
	return dag.SafeWriteAll(full, data, 0644)
}

// Exists reports whether a regular file exists at p.
func (t *OSTree) Exists(p string) bool {
	full, err := t.abs(p)
	if err != nil {
		return false
	}
	fi, err := os.Stat(full)
	return err == nil && fi.Mode().IsRegular()
}

// Remove deletes the file at p and prunes parent directories left empty.
// Removing a missing file is not an error.
func (t *OSTree) Remove(p string) error {
	full, err := t.abs(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	for dir := filepath.Dir(full); dir != t.root && len(dir) > len(t.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break // not empty, or already gone
		}
	}
	return nil
}

// List walks the tree and returns every regular file path.
func (t *OSTree) List() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(t.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(t.root, full)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if t.ignore[rel] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk working tree: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
