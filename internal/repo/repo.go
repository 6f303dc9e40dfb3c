// Package repo ties the object store, commit graph, staging index, checkout
// and merge engines into the workflow operations the CLI exposes.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/merge"
	"github.com/systemshift/memex-vc/internal/stage"
	"github.com/systemshift/memex-vc/internal/worktree"
)

const (
	// DirName is the metadata directory at the root of a working tree.
	DirName = ".mxvc"
	// DefaultBranch is the branch Init creates unless told otherwise.
	DefaultBranch = "master"
	// InitialMessage is the message of every repository's root commit.
	InitialMessage = "initial commit"
)

// Options tunes Init and Open.
type Options struct {
	// Now is the commit clock. Defaults to time.Now.
	Now func() time.Time
	// Branch names the first branch at Init. Defaults to DefaultBranch.
	Branch string
}

// Repository is one working tree plus its .mxvc directory.
type Repository struct {
	root string
	dir  string
	now  func() time.Time

	Meta     Meta
	Objects  *dag.Objects
	Graph    *dag.Graph
	Index    *stage.Index
	Tree     worktree.Tree
	Checkout *worktree.Checkout
	Merger   *merge.Engine
}

// Init creates a repository at root: the directory layout, meta.json, and a
// root commit with no files on the default branch, which HEAD selects.
func Init(root string, opts Options) (*Repository, error) {
	dir := filepath.Join(root, DirName)
	if _, err := os.Stat(dir); err == nil {
		return nil, ErrAlreadyInitialized
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	branch := opts.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	meta := Meta{Version: 1, Created: now().UTC(), DefaultBranch: branch}
	if err := writeMeta(filepath.Join(dir, "meta.json"), meta); err != nil {
		return nil, err
	}

	r, err := assemble(root, dir, meta, now)
	if err != nil {
		return nil, err
	}
	rootID, err := r.Objects.PutCommit(dag.NewRootCommit(InitialMessage, time.Unix(0, 0)))
	if err != nil {
		return nil, err
	}
	if err := r.Graph.CreateBranch(branch, rootID); err != nil {
		return nil, err
	}
	if err := r.Graph.Head.Set(branch); err != nil {
		return nil, err
	}
	return r, nil
}

// Open loads the repository at root.
func Open(root string, opts Options) (*Repository, error) {
	dir := filepath.Join(root, DirName)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, ErrNotInitialized
	}
	meta, err := readMeta(filepath.Join(dir, "meta.json"))
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return assemble(root, dir, meta, now)
}

func assemble(root, dir string, meta Meta, now func() time.Time) (*Repository, error) {
	blobs, err := dag.NewObjectStore(filepath.Join(dir, "objects", "blobs"))
	if err != nil {
		return nil, err
	}
	commits, err := dag.NewObjectStore(filepath.Join(dir, "objects", "commits"))
	if err != nil {
		return nil, err
	}
	objects := &dag.Objects{Blobs: blobs, Commits: commits}

	branches, err := dag.NewRefStore(filepath.Join(dir, "branches"))
	if err != nil {
		return nil, err
	}
	graph := dag.NewGraph(objects, branches, dag.NewHeadRef(filepath.Join(dir, "HEAD")))

	index, err := stage.Open(filepath.Join(dir, "stage"), objects)
	if err != nil {
		return nil, err
	}
	tree := worktree.NewOSTree(root, DirName)
	checkout := worktree.NewCheckout(objects, tree, index)

	return &Repository{
		root:     root,
		dir:      dir,
		now:      now,
		Meta:     meta,
		Objects:  objects,
		Graph:    graph,
		Index:    index,
		Tree:     tree,
		Checkout: checkout,
		Merger:   merge.NewEngine(graph, index, checkout, now),
	}, nil
}

// Root returns the working tree directory.
func (r *Repository) Root() string {
	return r.root
}

// Dir returns the .mxvc directory.
func (r *Repository) Dir() string {
	return r.dir
}

// cleanPath normalizes a working-tree path and keeps it out of the
// metadata directory.
func cleanPath(p string) (string, error) {
	if !utf8.ValidString(p) {
		return "", fmt.Errorf("%w: path %q", dag.ErrInvalidUTF8, p)
	}
	c, err := worktree.Clean(p)
	if err != nil {
		return "", err
	}
	if c == DirName || strings.HasPrefix(c, DirName+"/") {
		return "", fmt.Errorf("%w: %q", worktree.ErrOutsideTree, p)
	}
	return c, nil
}

// ResolveCommit loads the commit named by a full or abbreviated identifier.
func (r *Repository) ResolveCommit(prefix string) (dag.Entry, error) {
	e, err := r.Graph.Resolve(prefix)
	if errors.Is(err, dag.ErrNotFound) {
		return dag.Entry{}, fmt.Errorf("%w: %s", ErrNoSuchCommit, prefix)
	}
	return e, err
}
