package dag

import (
	"fmt"
	"maps"
	"sort"
	"time"
	"unicode/utf8"

	gocid "github.com/ipfs/go-cid"
)

// CommitObject is a snapshot of every tracked path at a point in time.
// Serialized via CanonicalJSON and stored in the commits ObjectStore; the
// path mapping and both parent links are part of the hashed form.
type CommitObject struct {
	V           int               `json:"v"`
	Message     string            `json:"message"`
	Timestamp   time.Time         `json:"timestamp"`
	Files       map[string]string `json:"files"`                  // path → snapshot CID (base32)
	Parent      string            `json:"parent,omitempty"`       // CID (base32) of first parent
	MergeParent string            `json:"merge_parent,omitempty"` // CID (base32) of merged-in tip
}

// Entry pairs a commit with its identifier.
type Entry struct {
	ID     gocid.Cid
	Commit *CommitObject
}

// NewRootCommit builds the parentless commit a repository starts from.
func NewRootCommit(message string, ts time.Time) *CommitObject {
	return &CommitObject{
		V:         1,
		Message:   message,
		Timestamp: ts.UTC(),
		Files:     make(map[string]string),
	}
}

// NewCommit builds a child of parent whose file mapping starts as a copy of
// the parent's. Staged changes are applied to the result by the caller.
func NewCommit(parent *CommitObject, parentID gocid.Cid, message string, ts time.Time) (*CommitObject, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if !utf8.ValidString(message) {
		return nil, fmt.Errorf("%w: commit message", ErrInvalidUTF8)
	}
	if parent == nil || !parentID.Defined() {
		return nil, fmt.Errorf("new commit: missing parent")
	}
	return &CommitObject{
		V:         1,
		Message:   message,
		Timestamp: ts.UTC(),
		Files:     maps.Clone(parent.Files),
		Parent:    CIDToFilename(parentID),
	}, nil
}

func (c *CommitObject) encode() ([]byte, error) {
	if c.Files == nil {
		c.Files = make(map[string]string)
	}
	// encoding/json would silently replace invalid bytes with U+FFFD.
	if !utf8.ValidString(c.Message) {
		return nil, fmt.Errorf("%w: commit message", ErrInvalidUTF8)
	}
	for p := range c.Files {
		if !utf8.ValidString(p) {
			return nil, fmt.Errorf("%w: tracked path %q", ErrInvalidUTF8, p)
		}
	}
	data, err := CanonicalJSON(c)
	if err != nil {
		return nil, fmt.Errorf("serialize commit: %w", err)
	}
	return data, nil
}

// IsRoot reports whether the commit has no parent.
func (c *CommitObject) IsRoot() bool {
	return c.Parent == ""
}

// IsMerge reports whether the commit has a second parent.
func (c *CommitObject) IsMerge() bool {
	return c.MergeParent != ""
}

// ParentIDs returns the decoded parent links, first parent first.
func (c *CommitObject) ParentIDs() ([]gocid.Cid, error) {
	var ids []gocid.Cid
	for _, s := range []string{c.Parent, c.MergeParent} {
		if s == "" {
			continue
		}
		id, err := ParseID(s)
		if err != nil {
			return nil, fmt.Errorf("%w: parent link: %v", ErrCorruptObject, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Tracks reports whether path is part of this commit's snapshot.
func (c *CommitObject) Tracks(path string) bool {
	_, ok := c.Files[path]
	return ok
}

// FileID returns the snapshot identifier recorded for path.
func (c *CommitObject) FileID(path string) (gocid.Cid, bool, error) {
	s, ok := c.Files[path]
	if !ok {
		return gocid.Undef, false, nil
	}
	id, err := ParseID(s)
	if err != nil {
		return gocid.Undef, false, fmt.Errorf("%w: file %s: %v", ErrCorruptObject, path, err)
	}
	return id, true, nil
}

// Paths returns the tracked paths in sorted order.
func (c *CommitObject) Paths() []string {
	paths := make([]string, 0, len(c.Files))
	for p := range c.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
