// Package stage implements the staging index: the pending-add and
// pending-remove sets recorded between commits.
package stage

import (
	"errors"
	"fmt"
	"path/filepath"

	gocid "github.com/ipfs/go-cid"
	"github.com/systemshift/memex-vc/internal/dag"
)

// ErrNothingToRemove indicates rm of a path that is neither tracked nor staged.
var ErrNothingToRemove = errors.New("no reason to remove the file")

// Outcome says which branch of the add reconciliation applied.
type Outcome int

const (
	// Staged means the path was recorded (or re-recorded) for addition.
	Staged Outcome = iota
	// Unstaged means the working file matched the current commit and a
	// stale pending-add entry was dropped.
	Unstaged
	// Unchanged means the working file matched the current commit and
	// nothing was staged.
	Unchanged
	// Restaged means a pending removal of an untracked path was cancelled
	// and the path staged for addition instead.
	Restaged
)

func (o Outcome) String() string {
	switch o {
	case Staged:
		return "staged"
	case Unstaged:
		return "unstaged"
	case Unchanged:
		return "unchanged"
	case Restaged:
		return "restaged"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Index holds the two staging sets. Each maps a working-tree path to a
// snapshot identifier; a path is never present in both.
type Index struct {
	add     *dag.RefStore
	remove  *dag.RefStore
	objects *dag.Objects
}

// Open loads (creating if needed) the index stored under dir.
func Open(dir string, objects *dag.Objects) (*Index, error) {
	add, err := dag.NewRefStore(filepath.Join(dir, "add"))
	if err != nil {
		return nil, fmt.Errorf("open add set: %w", err)
	}
	remove, err := dag.NewRefStore(filepath.Join(dir, "remove"))
	if err != nil {
		return nil, fmt.Errorf("open remove set: %w", err)
	}
	return &Index{add: add, remove: remove, objects: objects}, nil
}

// StageAdd stores content as a snapshot of path and records it for addition,
// cancelling any pending removal of the same path.
func (idx *Index) StageAdd(path string, content []byte) (gocid.Cid, error) {
	c, err := idx.objects.PutSnapshot(dag.NewFileSnapshot(path, content))
	if err != nil {
		return gocid.Undef, err
	}
	if err := idx.remove.Delete(path); err != nil {
		return gocid.Undef, err
	}
	if err := idx.add.Set(path, c); err != nil {
		return gocid.Undef, fmt.Errorf("stage %s: %w", path, err)
	}
	return c, nil
}

// StageRemove drops any pending addition of path and, when current tracks it,
// records it for removal. The returned flag is true only in that second case:
// the caller must then delete the working file.
func (idx *Index) StageRemove(path string, current *dag.CommitObject) (bool, error) {
	staged := idx.add.Has(path)
	id, tracked, err := current.FileID(path)
	if err != nil {
		return false, err
	}
	if !staged && !tracked {
		return false, fmt.Errorf("%w: %s", ErrNothingToRemove, path)
	}
	if err := idx.add.Delete(path); err != nil {
		return false, err
	}
	if !tracked {
		return false, nil
	}
	if err := idx.remove.Set(path, id); err != nil {
		return false, fmt.Errorf("stage removal of %s: %w", path, err)
	}
	return true, nil
}

// ReconcileAdd decides what `add` means for a working file given the current commit:
//
//   - same as current and staged:      drop the pending addition
//   - same as current and not staged:  nothing to do
//   - untracked but pending removal:   cancel the removal, stage for addition
//   - anything else:                   stage for addition, replacing any earlier version
//
// A pending removal of path is cancelled in every case.
func (idx *Index) ReconcileAdd(path string, content []byte, current *dag.CommitObject) (Outcome, error) {
	id, err := idx.objects.SnapshotID(dag.NewFileSnapshot(path, content))
	if err != nil {
		return Staged, err
	}
	committed, tracked, err := current.FileID(path)
	if err != nil {
		return Staged, err
	}
	wasRemoved := idx.remove.Has(path)
	if err := idx.remove.Delete(path); err != nil {
		return Staged, err
	}

	if tracked && committed.Equals(id) {
		if idx.add.Has(path) {
			if err := idx.add.Delete(path); err != nil {
				return Staged, err
			}
			return Unstaged, nil
		}
		return Unchanged, nil
	}

	if _, err := idx.StageAdd(path, content); err != nil {
		return Staged, err
	}
	if wasRemoved && !tracked {
		return Restaged, nil
	}
	return Staged, nil
}

// ApplyTo folds the index into a commit draft: pending additions overwrite
// the draft's entries, pending removals delete them.
func (idx *Index) ApplyTo(commit *dag.CommitObject) error {
	added, err := idx.add.All()
	if err != nil {
		return err
	}
	removed, err := idx.remove.List()
	if err != nil {
		return err
	}
	for path, c := range added {
		commit.Files[path] = dag.CIDToFilename(c)
	}
	for _, path := range removed {
		delete(commit.Files, path)
	}
	return nil
}

// Clear empties both sets.
func (idx *Index) Clear() error {
	if err := idx.add.Clear(); err != nil {
		return fmt.Errorf("clear add set: %w", err)
	}
	if err := idx.remove.Clear(); err != nil {
		return fmt.Errorf("clear remove set: %w", err)
	}
	return nil
}

// IsEmpty reports whether nothing is staged in either set.
func (idx *Index) IsEmpty() (bool, error) {
	n, err := idx.add.Len()
	if err != nil {
		return false, err
	}
	m, err := idx.remove.Len()
	if err != nil {
		return false, err
	}
	return n == 0 && m == 0, nil
}

// Added returns the paths staged for addition, sorted.
func (idx *Index) Added() ([]string, error) {
	return idx.add.List()
}

// Removed returns the paths staged for removal, sorted.
func (idx *Index) Removed() ([]string, error) {
	return idx.remove.List()
}

// AddedID returns the snapshot staged for path, if any.
func (idx *Index) AddedID(path string) (gocid.Cid, bool, error) {
	if !idx.add.Has(path) {
		return gocid.Undef, false, nil
	}
	c, err := idx.add.Get(path)
	if err != nil {
		return gocid.Undef, false, err
	}
	return c, true, nil
}

// IsRemoved reports whether path is pending removal.
func (idx *Index) IsRemoved(path string) bool {
	return idx.remove.Has(path)
}
