package fuse

import (
	"context"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// ReadOnlyFile serves bytes produced by load. Content is loaded on every
// Getattr and Read. Commit-keyed files never change, so the kernel may keep
// their pages; volatile files (HEAD) bypass the page cache.
type ReadOnlyFile struct {
	fs.Inode
	key      string
	mtime    time.Time
	volatile bool
	load     func() ([]byte, error)
}

var _ = (fs.NodeGetattrer)((*ReadOnlyFile)(nil))
var _ = (fs.NodeOpener)((*ReadOnlyFile)(nil))
var _ = (fs.NodeReader)((*ReadOnlyFile)(nil))

func (f *ReadOnlyFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	data, err := f.load()
	if err != nil {
		return syscall.EIO
	}
	out.Mode = 0444
	out.Size = uint64(len(data))
	out.Ino = stableIno(f.key)
	if !f.mtime.IsZero() {
		out.SetTimes(nil, &f.mtime, nil)
	}
	return fs.OK
}

func (f *ReadOnlyFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, openFlags(f.volatile), fs.OK
}

func (f *ReadOnlyFile) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := f.load()
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(window(data, len(dest), off)), fs.OK
}

func openFlags(volatile bool) uint32 {
	if volatile {
		return fuse.FOPEN_DIRECT_IO
	}
	return fuse.FOPEN_KEEP_CACHE
}

// window returns the part of data a read of n bytes at off sees.
func window(data []byte, n int, off int64) []byte {
	if off < 0 || off >= int64(len(data)) {
		return nil
	}
	end := off + int64(n)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[off:end]
}
