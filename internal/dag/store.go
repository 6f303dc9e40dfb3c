package dag

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// ObjectStore manages CID-addressed immutable objects in one directory.
// A repository keeps two of them: one for file snapshots, one for commits.
type ObjectStore struct {
	dir string
}

// NewObjectStore creates an ObjectStore at the given directory.
func NewObjectStore(dir string) (*ObjectStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", err)
	}
	return &ObjectStore{dir: dir}, nil
}

// ComputeCID computes a CIDv1 (raw codec, SHA2-256) for the given data.
func ComputeCID(data []byte) (gocid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return gocid.Undef, fmt.Errorf("multihash: %w", err)
	}
	return gocid.NewCidV1(gocid.Raw, mh), nil
}

// CIDToFilename returns the base32lower encoding of a CID. The same string is
// the identifier shown to users and accepted (or abbreviated) on input.
func CIDToFilename(c gocid.Cid) string {
	encoded, _ := multibase.Encode(multibase.Base32, c.Bytes())
	return encoded
}

// IDHeader is the leading text every identifier shares: the multibase,
// version, codec and hash-function prefix of a CIDv1 raw SHA2-256.
const IDHeader = "bafkrei"

// shortIDLen is how much of the digest ShortID keeps.
const shortIDLen = 8

// ShortID abbreviates a full identifier to the start of its digest. Resolve
// accepts the result.
func ShortID(id string) string {
	body := strings.TrimPrefix(id, IDHeader)
	if len(body) > shortIDLen {
		body = body[:shortIDLen]
	}
	return body
}

// ParseID decodes a full base32 identifier back into a CID.
func ParseID(s string) (gocid.Cid, error) {
	_, cidBytes, err := multibase.Decode(strings.TrimSpace(s))
	if err != nil {
		return gocid.Undef, fmt.Errorf("decode id %q: %w", s, err)
	}
	return gocid.Cast(cidBytes)
}

func (s *ObjectStore) path(c gocid.Cid) string {
	return filepath.Join(s.dir, CIDToFilename(c))
}

// Put writes data to the object store, returning the CID.
// If the object already exists, this is a no-op.
func (s *ObjectStore) Put(data []byte) (gocid.Cid, error) {
	c, err := ComputeCID(data)
	if err != nil {
		return gocid.Undef, err
	}
	path := s.path(c)
	if _, err := os.Stat(path); err == nil {
		return c, nil // already exists
	}
	if err := SafeWrite(path, data, 0444); err != nil {
		return gocid.Undef, fmt.Errorf("write object: %w", err)
	}
	return c, nil
}

// Get reads an object by CID and checks that its bytes still hash to it.
func (s *ObjectStore) Get(c gocid.Cid) ([]byte, error) {
	data, err := os.ReadFile(s.path(c))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, CIDToFilename(c))
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", c, err)
	}
	got, err := ComputeCID(data)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(got.Hash(), c.Hash()) {
		return nil, fmt.Errorf("%w: %s", ErrCorruptObject, CIDToFilename(c))
	}
	return data, nil
}

// Has checks if an object exists.
func (s *ObjectStore) Has(c gocid.Cid) bool {
	_, err := os.Stat(s.path(c))
	return err == nil
}

// List returns the identifiers of every stored object, sorted by their string form.
func (s *ObjectStore) List() ([]gocid.Cid, error) {
	names, err := s.names()
	if err != nil {
		return nil, err
	}
	ids := make([]gocid.Cid, 0, len(names))
	for _, name := range names {
		c, err := ParseID(name)
		if err != nil {
			continue // not an object file
		}
		ids = append(ids, c)
	}
	return ids, nil
}

// Resolve expands a full or abbreviated identifier to the unique stored CID
// whose string form starts with prefix. A prefix that does not begin with
// IDHeader is matched against the digest part, so "d4kq2m" works as well as
// "bafkreid4kq2m".
func (s *ObjectStore) Resolve(prefix string) (gocid.Cid, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return gocid.Undef, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	if !strings.HasPrefix(prefix, IDHeader) {
		prefix = IDHeader + prefix
	}
	if c, err := ParseID(prefix); err == nil && s.Has(c) {
		return c, nil
	}

	names, err := s.names()
	if err != nil {
		return gocid.Undef, err
	}
	var matches []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return gocid.Undef, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ParseID(matches[0])
	default:
		return gocid.Undef, fmt.Errorf("%w: %s matches %d objects", ErrAmbiguousID, prefix, len(matches))
	}
}

// names lists object filenames, skipping temp files left by an interrupted write.
func (s *ObjectStore) names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
