package worktree

import (
	"fmt"
	"io/fs"
	"sort"
)

// MemTree is an in-memory Tree for tests and dry runs.
type MemTree struct {
	files map[string][]byte
}

// NewMemTree returns an empty in-memory tree.
func NewMemTree() *MemTree {
	return &MemTree{files: make(map[string][]byte)}
}

func (m *MemTree) ReadFile(p string) ([]byte, error) {
	c, err := Clean(p)
	if err != nil {
		return nil, err
	}
	data, ok := m.files[c]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", p, fs.ErrNotExist)
	}
	return append([]byte{}, data...), nil
}

func (m *MemTree) WriteFile(p string, data []byte) error {
	c, err := Clean(p)
	if err != nil {
		return err
	}
	m.files[c] = append([]byte{}, data...)
	return nil
}

func (m *MemTree) Exists(p string) bool {
	c, err := Clean(p)
	if err != nil {
		return false
	}
	_, ok := m.files[c]
	return ok
}

func (m *MemTree) Remove(p string) error {
	c, err := Clean(p)
	if err != nil {
		return err
	}
	delete(m.files, c)
	return nil
}

func (m *MemTree) List() ([]string, error) {
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
