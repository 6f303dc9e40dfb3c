package merge

import (
	"errors"
	"fmt"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	gocid "github.com/ipfs/go-cid"
	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/stage"
	"github.com/systemshift/memex-vc/internal/worktree"
)

var (
	// ErrUncommittedChanges indicates a merge attempted with a non-empty index.
	ErrUncommittedChanges = errors.New("you have uncommitted changes")

	// ErrSelfMerge indicates a branch merged into itself.
	ErrSelfMerge = errors.New("cannot merge a branch with itself")

	// ErrGivenIsAncestor indicates the other branch is already contained in
	// the current one; nothing is changed.
	ErrGivenIsAncestor = errors.New("given branch is an ancestor of the current branch")
)

// Kind says how a successful merge was carried out.
type Kind int

const (
	// ThreeWay merges created a two-parent commit.
	ThreeWay Kind = iota
	// FastForward merges only advanced the branch pointer.
	FastForward
)

// Step is the planned outcome for one path.
type Step struct {
	Path    string
	Outcome Outcome
}

// Result describes a completed merge.
type Result struct {
	Kind      Kind
	Base      gocid.Cid
	Commit    gocid.Cid // new tip of the current branch
	Steps     []Step
	Conflicts []string
}

// Conflict reports whether any path was merged with conflict markers.
func (r *Result) Conflict() bool {
	return len(r.Conflicts) > 0
}

// Engine merges branches of one repository.
type Engine struct {
	Graph    *dag.Graph
	Index    *stage.Index
	Checkout *worktree.Checkout
	Now      func() time.Time
}

// NewEngine wires a merge engine. now defaults to time.Now.
func NewEngine(graph *dag.Graph, index *stage.Index, checkout *worktree.Checkout, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{Graph: graph, Index: index, Checkout: checkout, Now: now}
}

// Plan classifies every path present in base, current or other, in path order.
func Plan(base, current, other *dag.CommitObject) []Step {
	all := mapset.NewThreadUnsafeSet[string]()
	for _, c := range []*dag.CommitObject{base, current, other} {
		for p := range c.Files {
			all.Add(p)
		}
	}
	paths := all.ToSlice()
	sort.Strings(paths)

	steps := make([]Step, 0, len(paths))
	for _, p := range paths {
		steps = append(steps, Step{
			Path:    p,
			Outcome: Classify(base.Files[p], current.Files[p], other.Files[p]),
		})
	}
	return steps
}

// Merge merges branch other into the active branch.
//
// Preconditions are checked before anything is written. When the active tip
// is the merge base the branch is fast-forwarded. Otherwise every path is
// reconciled, conflicting paths get marker files, and a commit with parents
// (current tip, other tip) is created. Moving the branch pointer is the last
// write. Conflicts do not fail the merge; they are listed in the Result.
func (e *Engine) Merge(other string) (*Result, error) {
	empty, err := e.Index.IsEmpty()
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, ErrUncommittedChanges
	}
	otherTip, err := e.Graph.BranchTip(other)
	if err != nil {
		return nil, err
	}
	current, err := e.Graph.CurrentBranch()
	if err != nil {
		return nil, err
	}
	if current == other {
		return nil, fmt.Errorf("%w: %s", ErrSelfMerge, other)
	}

	cur, err := e.Graph.Current()
	if err != nil {
		return nil, err
	}
	oth, err := e.Graph.Lookup(otherTip)
	if err != nil {
		return nil, err
	}
	baseID, err := e.Graph.CommonAncestor(cur.ID, oth.ID)
	if err != nil {
		return nil, fmt.Errorf("find merge base: %w", err)
	}

	if baseID.Equals(oth.ID) {
		return nil, ErrGivenIsAncestor
	}
	if baseID.Equals(cur.ID) {
		return e.fastForward(current, cur, oth)
	}

	base, err := e.Graph.Lookup(baseID)
	if err != nil {
		return nil, err
	}
	steps := Plan(base.Commit, cur.Commit, oth.Commit)

	var touched, removes []string
	for _, s := range steps {
		switch s.Outcome {
		case RemovedOther:
			removes = append(removes, s.Path)
			fallthrough
		case OnlyOther, Conflict:
			touched = append(touched, s.Path)
		}
	}
	if err := e.Checkout.CheckObstructions(touched, removes); err != nil {
		return nil, err
	}

	draft, err := dag.NewCommit(cur.Commit, cur.ID, fmt.Sprintf("Merged %s into %s.", other, current), e.Now())
	if err != nil {
		return nil, err
	}
	draft.MergeParent = dag.CIDToFilename(oth.ID)

	// Removals go first so a path can turn from directory into file.
	res := &Result{Kind: ThreeWay, Base: baseID, Steps: steps}
	for _, removal := range []bool{true, false} {
		for _, s := range steps {
			if (s.Outcome == RemovedOther) != removal {
				continue
			}
			if err := e.apply(s, cur.Commit, oth.Commit, res); err != nil {
				return nil, fmt.Errorf("merge %s: %w", s.Path, err)
			}
		}
	}

	if err := e.Index.ApplyTo(draft); err != nil {
		return nil, err
	}
	id, err := e.Graph.Objects.PutCommit(draft)
	if err != nil {
		return nil, err
	}
	if err := e.Index.Clear(); err != nil {
		return nil, err
	}
	if err := e.Graph.SetBranchHead(current, id); err != nil {
		return nil, err
	}
	res.Commit = id
	return res, nil
}

func (e *Engine) fastForward(branch string, cur, oth dag.Entry) (*Result, error) {
	if err := e.Checkout.RestoreCommit(oth, cur); err != nil {
		return nil, err
	}
	if err := e.Graph.SetBranchHead(branch, oth.ID); err != nil {
		return nil, err
	}
	return &Result{Kind: FastForward, Base: cur.ID, Commit: oth.ID}, nil
}

func (e *Engine) apply(s Step, cur, oth *dag.CommitObject, res *Result) error {
	switch s.Outcome {
	case OnlyOther:
		content, err := e.Checkout.Content(oth, s.Path)
		if err != nil {
			return err
		}
		if err := e.Checkout.Tree.WriteFile(s.Path, content); err != nil {
			return err
		}
		_, err = e.Index.StageAdd(s.Path, content)
		return err

	case RemovedOther:
		if _, err := e.Index.StageRemove(s.Path, cur); err != nil {
			return err
		}
		return e.Checkout.Tree.Remove(s.Path)

	case Conflict:
		ours, err := e.contentOrEmpty(cur, s.Path)
		if err != nil {
			return err
		}
		theirs, err := e.contentOrEmpty(oth, s.Path)
		if err != nil {
			return err
		}
		merged := ConflictContent(ours, theirs)
		if err := e.Checkout.Tree.WriteFile(s.Path, merged); err != nil {
			return err
		}
		if _, err := e.Index.StageAdd(s.Path, merged); err != nil {
			return err
		}
		res.Conflicts = append(res.Conflicts, s.Path)
		return nil
	}
	return nil
}

func (e *Engine) contentOrEmpty(commit *dag.CommitObject, path string) ([]byte, error) {
	if !commit.Tracks(path) {
		return nil, nil
	}
	return e.Checkout.Content(commit, path)
}
