package repo

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	gocid "github.com/ipfs/go-cid"
	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/merge"
	"github.com/systemshift/memex-vc/internal/stage"
)

// Add stages the working version of path, or unstages it when it matches
// the current commit.
func (r *Repository) Add(path string) (stage.Outcome, error) {
	p, err := cleanPath(path)
	if err != nil {
		return stage.Staged, err
	}
	if !r.Tree.Exists(p) {
		return stage.Staged, fmt.Errorf("%w: %s", ErrFileNotExist, p)
	}
	content, err := r.Tree.ReadFile(p)
	if err != nil {
		return stage.Staged, err
	}
	cur, err := r.Graph.Current()
	if err != nil {
		return stage.Staged, err
	}
	return r.Index.ReconcileAdd(p, content, cur.Commit)
}

// Commit records the staged changes as a child of the active branch's tip
// and advances the branch.
func (r *Repository) Commit(message string) (gocid.Cid, error) {
	empty, err := r.Index.IsEmpty()
	if err != nil {
		return gocid.Undef, err
	}
	if empty {
		return gocid.Undef, ErrNothingToCommit
	}
	branch, err := r.Graph.CurrentBranch()
	if err != nil {
		return gocid.Undef, err
	}
	cur, err := r.Graph.Current()
	if err != nil {
		return gocid.Undef, err
	}
	draft, err := dag.NewCommit(cur.Commit, cur.ID, message, r.now())
	if err != nil {
		return gocid.Undef, err
	}
	if err := r.Index.ApplyTo(draft); err != nil {
		return gocid.Undef, err
	}
	id, err := r.Objects.PutCommit(draft)
	if err != nil {
		return gocid.Undef, err
	}
	if err := r.Index.Clear(); err != nil {
		return gocid.Undef, err
	}
	if err := r.Graph.SetBranchHead(branch, id); err != nil {
		return gocid.Undef, err
	}
	return id, nil
}

// Remove unstages path and, if the current commit tracks it, stages its
// removal and deletes the working file.
func (r *Repository) Remove(path string) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	cur, err := r.Graph.Current()
	if err != nil {
		return err
	}
	deleteWorking, err := r.Index.StageRemove(p, cur.Commit)
	if err != nil {
		return err
	}
	if deleteWorking {
		return r.Tree.Remove(p)
	}
	return nil
}

// Log returns the first-parent history of the active branch, newest first.
func (r *Repository) Log() ([]dag.Entry, error) {
	cur, err := r.Graph.Current()
	if err != nil {
		return nil, err
	}
	var entries []dag.Entry
	for e, err := range r.Graph.History(cur.ID) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GlobalLog returns every commit ever made, in identifier order.
func (r *Repository) GlobalLog() ([]dag.Entry, error) {
	return r.Graph.All()
}

// Find returns the identifiers of every commit whose message equals message.
func (r *Repository) Find(message string) ([]gocid.Cid, error) {
	all, err := r.Graph.All()
	if err != nil {
		return nil, err
	}
	var ids []gocid.Cid
	for _, e := range all {
		if e.Commit.Message == message {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoMatchingCommit
	}
	return ids, nil
}

// CheckoutFile restores path from the active branch's tip. The index is
// left alone.
func (r *Repository) CheckoutFile(path string) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	cur, err := r.Graph.Current()
	if err != nil {
		return err
	}
	return r.Checkout.RestoreFile(cur.Commit, p)
}

// CheckoutFileAt restores path from the commit named by id.
func (r *Repository) CheckoutFileAt(id, path string) error {
	e, err := r.ResolveCommit(id)
	if err != nil {
		return err
	}
	p, err := cleanPath(path)
	if err != nil {
		return err
	}
	return r.Checkout.RestoreFile(e.Commit, p)
}

// CheckoutBranch replaces the working tree with the tip of branch name and
// makes it the active branch.
func (r *Repository) CheckoutBranch(name string) error {
	tip, err := r.Graph.BranchTip(name)
	if err != nil {
		return err
	}
	current, err := r.Graph.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return ErrAlreadyOnBranch
	}
	cur, err := r.Graph.Current()
	if err != nil {
		return err
	}
	target, err := r.Graph.Lookup(tip)
	if err != nil {
		return err
	}
	if err := r.Checkout.RestoreCommit(target, cur); err != nil {
		return err
	}
	if err := r.Index.Clear(); err != nil {
		return err
	}
	return r.Graph.Switch(name)
}

// Branch creates a branch at the active branch's tip. HEAD does not move.
func (r *Repository) Branch(name string) error {
	cur, err := r.Graph.Current()
	if err != nil {
		return err
	}
	return r.Graph.CreateBranch(name, cur.ID)
}

// RemoveBranch deletes a branch pointer. Its commits are kept.
func (r *Repository) RemoveBranch(name string) error {
	return r.Graph.DeleteBranch(name)
}

// Reset checks out every file of the commit named by id and moves the
// active branch to it.
func (r *Repository) Reset(id string) error {
	target, err := r.ResolveCommit(id)
	if err != nil {
		return err
	}
	branch, err := r.Graph.CurrentBranch()
	if err != nil {
		return err
	}
	cur, err := r.Graph.Current()
	if err != nil {
		return err
	}
	if err := r.Checkout.RestoreCommit(target, cur); err != nil {
		return err
	}
	if err := r.Index.Clear(); err != nil {
		return err
	}
	return r.Graph.SetBranchHead(branch, target.ID)
}

// Merge merges branch other into the active branch.
func (r *Repository) Merge(other string) (*merge.Result, error) {
	return r.Merger.Merge(other)
}

// Status is a snapshot of branches, the index and the working tree.
type Status struct {
	Branches []string
	Current  string
	Staged   []string
	Removed  []string
	Modified []Modification
	// Untracked lists working files neither tracked nor staged.
	Untracked []string
}

// Modification is a working file that differs from what would be committed.
type Modification struct {
	Path    string
	Deleted bool
}

func (m Modification) String() string {
	if m.Deleted {
		return m.Path + " (deleted)"
	}
	return m.Path + " (modified)"
}

// Status reports the branch list, the index, and working-tree changes that
// are not staged.
func (r *Repository) Status() (*Status, error) {
	var (
		s   Status
		err error
	)
	if s.Branches, err = r.Graph.ListBranches(); err != nil {
		return nil, err
	}
	if s.Current, err = r.Graph.CurrentBranch(); err != nil {
		return nil, err
	}
	if s.Staged, err = r.Index.Added(); err != nil {
		return nil, err
	}
	if s.Removed, err = r.Index.Removed(); err != nil {
		return nil, err
	}
	cur, err := r.Graph.Current()
	if err != nil {
		return nil, err
	}
	working, err := r.Tree.List()
	if err != nil {
		return nil, err
	}

	paths := mapset.NewThreadUnsafeSet[string](working...)
	for p := range cur.Commit.Files {
		paths.Add(p)
	}
	for _, p := range s.Staged {
		paths.Add(p)
	}
	all := paths.ToSlice()
	sort.Strings(all)

	inTree := mapset.NewThreadUnsafeSet[string](working...)
	for _, p := range all {
		staged, isStaged, err := r.Index.AddedID(p)
		if err != nil {
			return nil, err
		}
		removed := r.Index.IsRemoved(p)
		committed, tracked := cur.Commit.Files[p]

		if !inTree.Contains(p) {
			if isStaged || (tracked && !removed) {
				s.Modified = append(s.Modified, Modification{Path: p, Deleted: true})
			}
			continue
		}

		content, err := r.Tree.ReadFile(p)
		if err != nil {
			return nil, err
		}
		id, err := r.Objects.SnapshotID(dag.NewFileSnapshot(p, content))
		if err != nil {
			return nil, err
		}
		switch {
		case isStaged:
			if !staged.Equals(id) {
				s.Modified = append(s.Modified, Modification{Path: p})
			}
		case tracked && !removed:
			if committed != dag.CIDToFilename(id) {
				s.Modified = append(s.Modified, Modification{Path: p})
			}
		default:
			s.Untracked = append(s.Untracked, p)
		}
	}
	return &s, nil
}
