package worktree

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/stage"
)

var (
	// ErrFileNotInCommit indicates a restore of a path the commit does not track.
	ErrFileNotInCommit = errors.New("file does not exist in that commit")

	// ErrUntrackedInTheWay indicates a working file that would be overwritten
	// but whose content was never stored.
	ErrUntrackedInTheWay = errors.New("there is an untracked file in the way; delete it, or add and commit it first")
)

// UntrackedError names the first path that blocked a checkout or merge.
type UntrackedError struct {
	Path string
}

func (e *UntrackedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUntrackedInTheWay, e.Path)
}

func (e *UntrackedError) Unwrap() error {
	return ErrUntrackedInTheWay
}

// Checkout materializes commits into a working tree.
type Checkout struct {
	Objects *dag.Objects
	Tree    Tree
	Index   *stage.Index
}

// NewCheckout wires a checkout engine.
func NewCheckout(objects *dag.Objects, tree Tree, index *stage.Index) *Checkout {
	return &Checkout{Objects: objects, Tree: tree, Index: index}
}

// Content loads the bytes a commit records for path.
func (c *Checkout) Content(commit *dag.CommitObject, path string) ([]byte, error) {
	id, ok, err := commit.FileID(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotInCommit, path)
	}
	snap, err := c.Objects.GetSnapshot(id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return snap.Content, nil
}

// RestoreFile overwrites (or creates) the working file with the version the
// commit tracks. The index is not touched.
func (c *Checkout) RestoreFile(commit *dag.CommitObject, path string) error {
	content, err := c.Content(commit, path)
	if err != nil {
		return err
	}
	if err := c.Tree.WriteFile(path, content); err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}
	return nil
}

// CheckObstructions validates a checkout or merge before anything is
// written. Every path in paths is about to be overwritten or deleted, and
// fails the check if it holds a working file whose exact (path, content)
// snapshot is not in the object store. Paths not also in removes will be
// written, so they additionally need room: no working file that will
// survive may sit where one of their parent directories goes, and no
// surviving working file may live under them as if they were a directory.
// Nothing is modified.
func (c *Checkout) CheckObstructions(paths, removes []string) error {
	for _, p := range paths {
		if !c.Tree.Exists(p) {
			continue
		}
		content, err := c.Tree.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		known, err := c.Objects.Tracked(p, content)
		if err != nil {
			return err
		}
		if !known {
			return &UntrackedError{Path: p}
		}
	}

	gone := mapset.NewThreadUnsafeSet[string](removes...)
	working, err := c.Tree.List()
	if err != nil {
		return err
	}
	survives := func(p string) bool {
		if gone.Contains(p) {
			return false
		}
		i := sort.SearchStrings(working, p)
		return i < len(working) && working[i] == p
	}
	for _, p := range paths {
		if gone.Contains(p) {
			continue
		}
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			if survives(dir) {
				return &UntrackedError{Path: dir}
			}
		}
		under := p + "/"
		for i := sort.SearchStrings(working, under); i < len(working) && strings.HasPrefix(working[i], under); i++ {
			if !gone.Contains(working[i]) {
				return &UntrackedError{Path: working[i]}
			}
		}
	}
	return nil
}

// RestoreCommit replaces the tracked working files of current with those of
// target. Everything is validated before anything is written, so an
// untracked file in the way leaves the tree untouched. Paths only current
// tracks are deleted before target's files are written, which lets a path
// switch between file and directory. The index is cleared unless target and
// current are the same commit.
func (c *Checkout) RestoreCommit(target, current dag.Entry) error {
	writes := target.Commit.Paths()
	var removes []string
	for _, p := range current.Commit.Paths() {
		if !target.Commit.Tracks(p) {
			removes = append(removes, p)
		}
	}
	if err := c.CheckObstructions(writes, removes); err != nil {
		return err
	}
	for _, p := range removes {
		if err := c.Tree.Remove(p); err != nil {
			return fmt.Errorf("delete %s: %w", p, err)
		}
	}
	for _, p := range writes {
		if err := c.RestoreFile(target.Commit, p); err != nil {
			return err
		}
	}
	if target.ID.Equals(current.ID) {
		return nil
	}
	return c.Index.Clear()
}
