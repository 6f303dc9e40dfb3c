package dag

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	gocid "github.com/ipfs/go-cid"
)

// FileSnapshot is the on-disk format for one file's content at one path.
// The name is part of the encoding, so equal bytes under different names
// produce different identifiers.
type FileSnapshot struct {
	V       int    `json:"v"`
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

// NewFileSnapshot builds a snapshot of content recorded under name.
func NewFileSnapshot(name string, content []byte) *FileSnapshot {
	if content == nil {
		content = []byte{}
	}
	return &FileSnapshot{V: 1, Name: name, Content: content}
}

func (s *FileSnapshot) encode() ([]byte, error) {
	if !utf8.ValidString(s.Name) {
		return nil, fmt.Errorf("%w: snapshot name %q", ErrInvalidUTF8, s.Name)
	}
	data, err := CanonicalJSON(s)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	return data, nil
}

// Objects is the typed view over a repository's two object stores.
type Objects struct {
	Blobs   *ObjectStore
	Commits *ObjectStore
}

// SnapshotID computes the identifier snap would be stored under, without storing it.
func (o *Objects) SnapshotID(snap *FileSnapshot) (gocid.Cid, error) {
	data, err := snap.encode()
	if err != nil {
		return gocid.Undef, err
	}
	return ComputeCID(data)
}

// PutSnapshot stores a file snapshot and returns its identifier.
func (o *Objects) PutSnapshot(snap *FileSnapshot) (gocid.Cid, error) {
	data, err := snap.encode()
	if err != nil {
		return gocid.Undef, err
	}
	c, err := o.Blobs.Put(data)
	if err != nil {
		return gocid.Undef, fmt.Errorf("store snapshot: %w", err)
	}
	return c, nil
}

// GetSnapshot reads and unmarshals a file snapshot by CID.
func (o *Objects) GetSnapshot(c gocid.Cid) (*FileSnapshot, error) {
	data, err := o.Blobs.Get(c)
	if err != nil {
		return nil, err
	}
	var snap FileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: unmarshal snapshot %s: %v", ErrCorruptObject, CIDToFilename(c), err)
	}
	if snap.Content == nil {
		snap.Content = []byte{}
	}
	return &snap, nil
}

// Tracked reports whether the exact (name, content) pair is already stored.
func (o *Objects) Tracked(name string, content []byte) (bool, error) {
	c, err := o.SnapshotID(NewFileSnapshot(name, content))
	if err != nil {
		return false, err
	}
	return o.Blobs.Has(c), nil
}

// CommitID computes the identifier a commit would be stored under.
func (o *Objects) CommitID(commit *CommitObject) (gocid.Cid, error) {
	data, err := commit.encode()
	if err != nil {
		return gocid.Undef, err
	}
	return ComputeCID(data)
}

// PutCommit stores a commit and returns its identifier.
func (o *Objects) PutCommit(commit *CommitObject) (gocid.Cid, error) {
	data, err := commit.encode()
	if err != nil {
		return gocid.Undef, err
	}
	c, err := o.Commits.Put(data)
	if err != nil {
		return gocid.Undef, fmt.Errorf("store commit: %w", err)
	}
	return c, nil
}

// GetCommit reads and unmarshals a commit by CID.
func (o *Objects) GetCommit(c gocid.Cid) (*CommitObject, error) {
	data, err := o.Commits.Get(c)
	if err != nil {
		return nil, err
	}
	var commit CommitObject
	if err := json.Unmarshal(data, &commit); err != nil {
		return nil, fmt.Errorf("%w: unmarshal commit %s: %v", ErrCorruptObject, CIDToFilename(c), err)
	}
	if commit.Files == nil {
		commit.Files = make(map[string]string)
	}
	return &commit, nil
}
