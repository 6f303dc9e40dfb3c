package fuse

import (
	"context"
	"fmt"
	"net/url"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/repo"
)

// RootNode is the mountpoint directory. Contains "HEAD", "branches/",
// "commits/" and "log/".
type RootNode struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeOnAdder)((*RootNode)(nil))
var _ = (fs.NodeGetattrer)((*RootNode)(nil))

func (r *RootNode) OnAdd(ctx context.Context) {
	head := &ReadOnlyFile{key: "HEAD", volatile: true, load: r.headBytes}
	r.AddChild("HEAD", r.NewPersistentInode(ctx, head, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  stableIno("HEAD"),
	}), true)

	branches := &BranchesDir{repo: r.repo}
	r.AddChild("branches", r.NewPersistentInode(ctx, branches, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("branches"),
	}), true)

	commits := &CommitsDir{repo: r.repo}
	r.AddChild("commits", r.NewPersistentInode(ctx, commits, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("commits"),
	}), true)

	logDir := &LogDir{repo: r.repo}
	r.AddChild("log", r.NewPersistentInode(ctx, logDir, fs.StableAttr{
		Mode: syscall.S_IFDIR,
		Ino:  stableIno("log"),
	}), true)
}

func (r *RootNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("/")
	return fs.OK
}

// headBytes renders the active branch and its tip, one per line.
func (r *RootNode) headBytes() ([]byte, error) {
	branch, err := r.repo.Graph.CurrentBranch()
	if err != nil {
		return nil, err
	}
	tip, err := r.repo.Graph.BranchTip(branch)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%s\n%s\n", branch, dag.CIDToFilename(tip))), nil
}

// BranchesDir lists one tree per branch, rooted at the branch tip.
// Branch names are path-escaped so names containing slashes stay one entry.
type BranchesDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*BranchesDir)(nil))
var _ = (fs.NodeReaddirer)((*BranchesDir)(nil))
var _ = (fs.NodeGetattrer)((*BranchesDir)(nil))

func (d *BranchesDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("branches")
	return fs.OK
}

func (d *BranchesDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	names, err := d.repo.Graph.ListBranches()
	if err != nil {
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, fuse.DirEntry{
			Name: url.PathEscape(name),
			Mode: syscall.S_IFDIR,
			Ino:  stableIno("branches/" + name),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *BranchesDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	branch, err := url.PathUnescape(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	tip, err := d.repo.Graph.BranchTip(branch)
	if err != nil {
		return nil, syscall.ENOENT
	}
	e, err := d.repo.Graph.Lookup(tip)
	if err != nil {
		return nil, syscall.EIO
	}
	return newTreeInode(ctx, &d.Inode, d.repo, e, ""), fs.OK
}

// CommitsDir lists every stored commit. Lookup also accepts any unique
// identifier prefix.
type CommitsDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*CommitsDir)(nil))
var _ = (fs.NodeReaddirer)((*CommitsDir)(nil))
var _ = (fs.NodeGetattrer)((*CommitsDir)(nil))

func (d *CommitsDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("commits")
	return fs.OK
}

func (d *CommitsDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	ids, err := d.repo.Objects.Commits.List()
	if err != nil {
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, 0, len(ids))
	for _, id := range ids {
		name := dag.CIDToFilename(id)
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Mode: syscall.S_IFDIR,
			Ino:  treeIno(name, ""),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *CommitsDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	e, err := d.repo.ResolveCommit(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	return newTreeInode(ctx, &d.Inode, d.repo, e, ""), fs.OK
}
