package fuse

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/repo"
)

const maxLogEntries = 64

// LogDir exposes the active branch's recent history as files.
// Layout: log/0 (newest commit JSON), log/1, ...
type LogDir struct {
	fs.Inode
	repo *repo.Repository
}

var _ = (fs.NodeLookuper)((*LogDir)(nil))
var _ = (fs.NodeReaddirer)((*LogDir)(nil))
var _ = (fs.NodeGetattrer)((*LogDir)(nil))

func (d *LogDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = 0555
	out.Ino = stableIno("log")
	return fs.OK
}

func (d *LogDir) recent() ([]dag.Entry, error) {
	entries, err := d.repo.Log()
	if err != nil {
		return nil, err
	}
	if len(entries) > maxLogEntries {
		entries = entries[:maxLogEntries]
	}
	return entries, nil
}

func (d *LogDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	commits, err := d.recent()
	if err != nil {
		return nil, syscall.EIO
	}
	entries := make([]fuse.DirEntry, 0, len(commits))
	for i, e := range commits {
		entries = append(entries, fuse.DirEntry{
			Name: strconv.Itoa(i),
			Mode: syscall.S_IFREG,
			Ino:  stableIno(logKey(e)),
		})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *LogDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	idx, err := strconv.Atoi(name)
	if err != nil || idx < 0 || idx >= maxLogEntries {
		return nil, syscall.ENOENT
	}
	commits, err := d.recent()
	if err != nil {
		return nil, syscall.EIO
	}
	if idx >= len(commits) {
		return nil, syscall.ENOENT
	}

	// log/N names a different commit after every commit on the branch, so
	// the inode follows the commit rather than N.
	e := commits[idx]
	f := &ReadOnlyFile{
		key:   logKey(e),
		mtime: e.Commit.Timestamp,
		load:  func() ([]byte, error) { return commitJSON(e) },
	}
	child := d.NewInode(ctx, f, fs.StableAttr{
		Mode: syscall.S_IFREG,
		Ino:  stableIno(f.key),
	})
	return child, fs.OK
}

func logKey(e dag.Entry) string {
	return "log/" + dag.CIDToFilename(e.ID)
}

// logRecord is the JSON shape of one log/N file.
type logRecord struct {
	ID          string            `json:"id"`
	Message     string            `json:"message"`
	Timestamp   time.Time         `json:"timestamp"`
	Parent      string            `json:"parent,omitempty"`
	MergeParent string            `json:"merge_parent,omitempty"`
	Files       map[string]string `json:"files"`
}

func commitJSON(e dag.Entry) ([]byte, error) {
	data, err := json.MarshalIndent(logRecord{
		ID:          dag.CIDToFilename(e.ID),
		Message:     e.Commit.Message,
		Timestamp:   e.Commit.Timestamp,
		Parent:      e.Commit.Parent,
		MergeParent: e.Commit.MergeParent,
		Files:       e.Commit.Files,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render commit: %w", err)
	}
	return append(data, '\n'), nil
}
