package dag

import (
	"fmt"
	"os"
	"strings"
)

// HeadRef is the single-line HEAD file naming the active branch.
type HeadRef struct {
	path string
}

// NewHeadRef creates a HeadRef that reads/writes the file at path.
func NewHeadRef(path string) *HeadRef {
	return &HeadRef{path: path}
}

// Branch returns the name of the active branch.
func (h *HeadRef) Branch() (string, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("%w: HEAD is empty", ErrCorruptObject)
	}
	return name, nil
}

// Set points HEAD at the named branch.
func (h *HeadRef) Set(branch string) error {
	if err := SafeWrite(h.path, []byte(branch+"\n"), 0644); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}
