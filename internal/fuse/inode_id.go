package fuse

import "github.com/zeebo/xxh3"

// stableIno returns a stable inode number for a given path string.
func stableIno(path string) uint64 {
	return xxh3.HashString(path)
}
