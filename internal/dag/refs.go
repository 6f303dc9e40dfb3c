package dag

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gocid "github.com/ipfs/go-cid"
)

// RefStore manages name -> CID mappings as files, one file per name whose
// content is the base32 CID. Branches and both staging sets are RefStores.
// Filenames are path-escaped so names may contain slashes.
type RefStore struct {
	dir string
}

// NewRefStore creates a RefStore at the given directory.
func NewRefStore(dir string) (*RefStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create refs dir: %w", err)
	}
	return &RefStore{dir: dir}, nil
}

func refFilename(name string) string {
	return url.PathEscape(name)
}

func refNameFromFilename(filename string) (string, error) {
	return url.PathUnescape(filename)
}

func (r *RefStore) path(name string) string {
	return filepath.Join(r.dir, refFilename(name))
}

// Set writes a ref mapping name -> cid.
func (r *RefStore) Set(name string, c gocid.Cid) error {
	if name == "" {
		return fmt.Errorf("set ref: empty name")
	}
	return SafeWrite(r.path(name), []byte(CIDToFilename(c)+"\n"), 0644)
}

// Get resolves a name to a CID.
func (r *RefStore) Get(name string) (gocid.Cid, error) {
	data, err := os.ReadFile(r.path(name))
	if os.IsNotExist(err) {
		return gocid.Undef, fmt.Errorf("ref not found: %s", name)
	}
	if err != nil {
		return gocid.Undef, fmt.Errorf("read ref %s: %w", name, err)
	}
	c, err := ParseID(string(data))
	if err != nil {
		return gocid.Undef, fmt.Errorf("%w: ref %s: %v", ErrCorruptObject, name, err)
	}
	return c, nil
}

// Delete removes a ref. Deleting a missing ref is a no-op.
func (r *RefStore) Delete(name string) error {
	err := os.Remove(r.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete ref %s: %w", name, err)
	}
	return nil
}

// Has checks if a ref exists.
func (r *RefStore) Has(name string) bool {
	_, err := os.Stat(r.path(name))
	return err == nil
}

// List returns all ref names in sorted order.
func (r *RefStore) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		name, err := refNameFromFilename(e.Name())
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// All returns every mapping in the store.
func (r *RefStore) All() (map[string]gocid.Cid, error) {
	names, err := r.List()
	if err != nil {
		return nil, err
	}
	all := make(map[string]gocid.Cid, len(names))
	for _, name := range names {
		c, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		all[name] = c
	}
	return all, nil
}

// Len returns the number of refs.
func (r *RefStore) Len() (int, error) {
	names, err := r.List()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Clear removes every ref.
func (r *RefStore) Clear() error {
	names, err := r.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := r.Delete(name); err != nil {
			return err
		}
	}
	return nil
}
