package fuse

import (
	"context"
	"sort"
	"strings"
	"syscall"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/repo"
)

// TreeDir is one directory level of a commit's snapshot. Directories are
// implied by the slash-separated tracked paths; prefix is "" at the top and
// ends in "/" below it.
type TreeDir struct {
	fs.Inode
	repo   *repo.Repository
	entry  dag.Entry
	prefix string
}

var _ = (fs.NodeLookuper)((*TreeDir)(nil))
var _ = (fs.NodeReaddirer)((*TreeDir)(nil))
var _ = (fs.NodeGetattrer)((*TreeDir)(nil))

// treeIno keys inodes by commit and path, so the same commit reached
// through a branch or through commits/ shares inodes.
func treeIno(commitID, path string) uint64 {
	return stableIno("tree/" + commitID + "/" + path)
}

func newTreeInode(ctx context.Context, parent *fs.Inode, r *repo.Repository, e dag.Entry, prefix string) *fs.Inode {
	d := &TreeDir{repo: r, entry: e, prefix: prefix}
	return parent.NewInode(ctx, d, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  treeIno(dag.CIDToFilename(e.ID), prefix),
	})
}

func (d *TreeDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = treeIno(dag.CIDToFilename(d.entry.ID), d.prefix)
	out.SetTimes(nil, &d.entry.Commit.Timestamp, nil)
	return fs.OK
}

func (d *TreeDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	id := dag.CIDToFilename(d.entry.ID)
	files, dirs := listChildren(d.entry.Commit.Paths(), d.prefix)
	entries := make([]fuse.DirEntry, 0, len(files)+len(dirs))
	for _, name := range dirs {
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFDIR,
			Ino:  treeIno(id, d.prefix+name+"/"),
		})
	}
	for _, name := range files {
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFREG,
			Ino:  treeIno(id, d.prefix+name),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *TreeDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	full := d.prefix + name
	commit := d.entry.Commit
	if commit.Tracks(full) {
		f := &ReadOnlyFile{
			key:   "tree/" + dag.CIDToFilename(d.entry.ID) + "/" + full,
			mtime: commit.Timestamp,
			load: func() ([]byte, error) {
				return d.repo.Checkout.Content(commit, full)
			},
		}
		return d.NewInode(ctx, f, fs.StableAttr{
			Mode: syscall.S_IFREG,
			Ino:  treeIno(dag.CIDToFilename(d.entry.ID), full),
		}), fs.OK
	}
	if hasPrefix(commit.Paths(), full+"/") {
		return newTreeInode(ctx, &d.Inode, d.repo, d.entry, full+"/"), fs.OK
	}
	return nil, syscall.ENOENT
}

// listChildren splits the tracked paths directly under prefix into file
// names and subdirectory names, each sorted.
func listChildren(paths []string, prefix string) (files, dirs []string) {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, p := range paths {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			seen.Add(rest[:i])
			continue
		}
		files = append(files, rest)
	}
	dirs = seen.ToSlice()
	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs
}

func hasPrefix(paths []string, prefix string) bool {
	for _, p := range paths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
