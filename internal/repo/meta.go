package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/systemshift/memex-vc/internal/dag"
)

// Meta is the content of meta.json.
type Meta struct {
	Version       int       `json:"version"`
	Created       time.Time `json:"created"`
	DefaultBranch string    `json:"default_branch"`
}

func writeMeta(path string, m Meta) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	return dag.SafeWrite(path, append(data, '\n'), 0644)
}

func readMeta(path string) (Meta, error) {
	var m Meta
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read meta: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: meta.json: %v", dag.ErrCorruptObject, err)
	}
	return m, nil
}
