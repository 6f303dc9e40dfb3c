package repo

import (
	"errors"

	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/merge"
	"github.com/systemshift/memex-vc/internal/stage"
	"github.com/systemshift/memex-vc/internal/worktree"
)

// Workflow errors
var (
	// ErrNotInitialized indicates no repository exists at the given root.
	ErrNotInitialized = errors.New("not in an initialized mxvc directory")

	// ErrAlreadyInitialized indicates Init over an existing repository.
	ErrAlreadyInitialized = errors.New("a version-control system already exists in the current directory")

	// ErrFileNotExist indicates add of a path missing from the working tree.
	ErrFileNotExist = errors.New("file does not exist")

	// ErrNothingToCommit indicates commit with an empty index.
	ErrNothingToCommit = errors.New("no changes added to the commit")

	// ErrNoMatchingCommit indicates find found nothing.
	ErrNoMatchingCommit = errors.New("found no commit with that message")

	// ErrNoSuchCommit indicates an identifier that names no stored commit.
	ErrNoSuchCommit = errors.New("no commit with that id exists")

	// ErrAlreadyOnBranch indicates checkout of the active branch.
	ErrAlreadyOnBranch = errors.New("no need to checkout the current branch")
)

// Kind groups errors by how a caller should treat them.
type Kind int

const (
	// UserError covers bad input and unmet preconditions; nothing was changed.
	UserError Kind = iota
	// SafetyViolation means an untracked working file blocked the operation
	// before anything was written.
	SafetyViolation
	// StorageFault means persisted data expected to exist is missing,
	// corrupt or unreadable.
	StorageFault
)

func (k Kind) String() string {
	switch k {
	case UserError:
		return "user error"
	case SafetyViolation:
		return "safety violation"
	default:
		return "storage fault"
	}
}

var userErrors = []error{
	ErrNotInitialized,
	ErrAlreadyInitialized,
	ErrFileNotExist,
	ErrNothingToCommit,
	ErrNoMatchingCommit,
	ErrNoSuchCommit,
	ErrAlreadyOnBranch,
	dag.ErrAmbiguousID,
	dag.ErrInvalidUTF8,
	dag.ErrEmptyMessage,
	dag.ErrBranchExists,
	dag.ErrNoSuchBranch,
	dag.ErrCurrentBranch,
	stage.ErrNothingToRemove,
	worktree.ErrFileNotInCommit,
	worktree.ErrOutsideTree,
	merge.ErrUncommittedChanges,
	merge.ErrSelfMerge,
	merge.ErrGivenIsAncestor,
}

// KindOf classifies err. Anything not recognised is a StorageFault.
func KindOf(err error) Kind {
	if errors.Is(err, worktree.ErrUntrackedInTheWay) {
		return SafetyViolation
	}
	if errors.Is(err, dag.ErrCorruptObject) {
		return StorageFault
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return UserError
		}
	}
	return StorageFault
}
