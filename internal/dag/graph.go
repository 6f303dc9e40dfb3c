package dag

import (
	"fmt"
	"iter"
	"sort"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
	gocid "github.com/ipfs/go-cid"
)

// Graph is the commit DAG plus the named branch pointers into it and HEAD.
// Traversal is keyed by identifier and loads commits from the object store
// on demand; nothing is held in memory between calls.
type Graph struct {
	Objects  *Objects
	Branches *RefStore
	Head     *HeadRef
}

// NewGraph wires a Graph over existing stores.
func NewGraph(objects *Objects, branches *RefStore, head *HeadRef) *Graph {
	return &Graph{Objects: objects, Branches: branches, Head: head}
}

// Lookup loads the commit stored under id.
func (g *Graph) Lookup(id gocid.Cid) (Entry, error) {
	commit, err := g.Objects.GetCommit(id)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: id, Commit: commit}, nil
}

// Resolve loads the commit named by a full or abbreviated identifier.
func (g *Graph) Resolve(prefix string) (Entry, error) {
	id, err := g.Objects.Commits.Resolve(prefix)
	if err != nil {
		return Entry{}, err
	}
	return g.Lookup(id)
}

// All returns every stored commit, in identifier order.
func (g *Graph) All() ([]Entry, error) {
	ids, err := g.Objects.Commits.List()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := g.Lookup(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// History walks first-parent links from start back to the root commit,
// newest first. The sequence is lazy and can be ranged over repeatedly.
// A load failure is yielded once as a non-nil error and ends the walk.
func (g *Graph) History(start gocid.Cid) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		id := start
		for {
			e, err := g.Lookup(id)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
			if e.Commit.IsRoot() {
				return
			}
			id, err = ParseID(e.Commit.Parent)
			if err != nil {
				yield(Entry{}, fmt.Errorf("%w: parent of %s: %v", ErrCorruptObject, CIDToFilename(e.ID), err))
				return
			}
		}
	}
}

// walker memoizes parent links for the duration of one traversal.
type walker struct {
	objects *Objects
	parents map[string][]string
}

func (g *Graph) newWalker() *walker {
	return &walker{objects: g.Objects, parents: make(map[string][]string)}
}

func (w *walker) parentsOf(id string) ([]string, error) {
	if ps, ok := w.parents[id]; ok {
		return ps, nil
	}
	c, err := ParseID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	commit, err := w.objects.GetCommit(c)
	if err != nil {
		return nil, err
	}
	var ps []string
	for _, p := range []string{commit.Parent, commit.MergeParent} {
		if p != "" {
			ps = append(ps, p)
		}
	}
	w.parents[id] = ps
	return ps, nil
}

// distances does a BFS from tip over both parent links and returns the
// shortest edge count from tip to every ancestor, tip itself at 0.
func (w *walker) distances(tip string) (map[string]int, error) {
	dist := map[string]int{tip: 0}
	queue := []string{tip}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		parents, err := w.parentsOf(id)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			if _, seen := dist[p]; !seen {
				dist[p] = dist[id] + 1
				queue = append(queue, p)
			}
		}
	}
	return dist, nil
}

// Ancestors returns tip and every commit reachable from it through either
// parent link.
func (g *Graph) Ancestors(tip gocid.Cid) (mapset.Set[string], error) {
	dist, err := g.newWalker().distances(CIDToFilename(tip))
	if err != nil {
		return nil, err
	}
	set := mapset.NewThreadUnsafeSetWithSize[string](len(dist))
	for id := range dist {
		set.Add(id)
	}
	return set, nil
}

// CommonAncestor returns the nearest common ancestor of a and b.
//
// Candidates are the common ancestors that are not themselves ancestors of
// another common ancestor. Among those the one with the smallest combined
// distance from both tips wins; ties go to the smaller of the two distances'
// maximum, then to the lexically smaller identifier. Every rule is symmetric
// in a and b, so CommonAncestor(a, b) == CommonAncestor(b, a).
func (g *Graph) CommonAncestor(a, b gocid.Cid) (gocid.Cid, error) {
	w := g.newWalker()
	da, err := w.distances(CIDToFilename(a))
	if err != nil {
		return gocid.Undef, err
	}
	db, err := w.distances(CIDToFilename(b))
	if err != nil {
		return gocid.Undef, err
	}

	type candidate struct {
		id        string
		sum, high int
	}
	var common []candidate
	commonSet := mapset.NewThreadUnsafeSet[string]()
	for id, x := range da {
		if y, ok := db[id]; ok {
			common = append(common, candidate{id: id, sum: x + y, high: max(x, y)})
			commonSet.Add(id)
		}
	}
	if len(common) == 0 {
		return gocid.Undef, fmt.Errorf("%w: no common ancestor of %s and %s", ErrNotFound, a, b)
	}
	sort.Slice(common, func(i, j int) bool {
		if common[i].sum != common[j].sum {
			return common[i].sum < common[j].sum
		}
		if common[i].high != common[j].high {
			return common[i].high < common[j].high
		}
		return common[i].id < common[j].id
	})

	// Nearest first, so the first undominated candidate marks most of the rest.
	dominated := mapset.NewThreadUnsafeSet[string]()
	for _, c := range common {
		if dominated.Contains(c.id) {
			continue
		}
		anc, err := w.distances(c.id)
		if err != nil {
			return gocid.Undef, err
		}
		for id := range anc {
			if id != c.id && commonSet.Contains(id) {
				dominated.Add(id)
			}
		}
	}
	for _, c := range common {
		if !dominated.Contains(c.id) {
			return ParseID(c.id)
		}
	}
	return gocid.Undef, fmt.Errorf("%w: no common ancestor of %s and %s", ErrNotFound, a, b)
}

// CurrentBranch returns the name of the branch HEAD selects.
func (g *Graph) CurrentBranch() (string, error) {
	return g.Head.Branch()
}

// Current loads the commit at the tip of the active branch.
func (g *Graph) Current() (Entry, error) {
	name, err := g.CurrentBranch()
	if err != nil {
		return Entry{}, err
	}
	tip, err := g.BranchTip(name)
	if err != nil {
		return Entry{}, err
	}
	return g.Lookup(tip)
}

// Switch makes name the active branch.
func (g *Graph) Switch(name string) error {
	if !g.Branches.Has(name) {
		return fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	return g.Head.Set(name)
}

// ListBranches returns every branch name in sorted order.
func (g *Graph) ListBranches() ([]string, error) {
	return g.Branches.List()
}

// BranchTip returns the commit a branch currently points at.
func (g *Graph) BranchTip(name string) (gocid.Cid, error) {
	if !g.Branches.Has(name) {
		return gocid.Undef, fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	return g.Branches.Get(name)
}

// CreateBranch adds a branch pointing at c.
func (g *Graph) CreateBranch(name string, c gocid.Cid) error {
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: branch name %q", ErrInvalidUTF8, name)
	}
	if g.Branches.Has(name) {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	return g.Branches.Set(name, c)
}

// DeleteBranch removes a branch pointer. The commits it referenced stay in the store.
func (g *Graph) DeleteBranch(name string) error {
	if !g.Branches.Has(name) {
		return fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	current, err := g.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return fmt.Errorf("%w: %s", ErrCurrentBranch, name)
	}
	return g.Branches.Delete(name)
}

// SetBranchHead moves an existing branch to c. It is the only way a branch
// pointer changes after creation.
func (g *Graph) SetBranchHead(name string, c gocid.Cid) error {
	if !g.Branches.Has(name) {
		return fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
	}
	if err := g.Branches.Set(name, c); err != nil {
		return fmt.Errorf("move branch %s: %w", name, err)
	}
	return nil
}
