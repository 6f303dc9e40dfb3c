package dag

import "errors"

// Object store errors
var (
	// ErrNotFound indicates that no object matches the identifier or prefix.
	ErrNotFound = errors.New("object not found")

	// ErrAmbiguousID indicates that an abbreviated identifier matches more than one object.
	ErrAmbiguousID = errors.New("ambiguous object id")

	// ErrCorruptObject indicates that stored bytes no longer hash to their identifier.
	ErrCorruptObject = errors.New("corrupt object")

	// ErrInvalidUTF8 indicates a path or message that is not valid UTF-8 and
	// so has no canonical encoding.
	ErrInvalidUTF8 = errors.New("not valid UTF-8")
)

// Commit graph errors
var (
	// ErrEmptyMessage indicates a commit was attempted with a blank message.
	ErrEmptyMessage = errors.New("please enter a commit message")

	// ErrBranchExists indicates that a branch with the requested name already exists.
	ErrBranchExists = errors.New("a branch with that name already exists")

	// ErrNoSuchBranch indicates that the named branch does not exist.
	ErrNoSuchBranch = errors.New("a branch with that name does not exist")

	// ErrCurrentBranch indicates an attempt to delete the active branch.
	ErrCurrentBranch = errors.New("cannot remove the current branch")
)
