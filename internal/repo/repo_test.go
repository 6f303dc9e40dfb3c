package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/merge"
	"github.com/systemshift/memex-vc/internal/stage"
	"github.com/systemshift/memex-vc/internal/worktree"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r, err := Init(t.TempDir(), Options{Now: func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func writeFile(t *testing.T, r *Repository, name, content string) {
	t.Helper()
	full := filepath.Join(r.Root(), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func readFile(t *testing.T, r *Repository, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.Root(), filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("ReadFile %s: %v", name, err)
	}
	return string(data)
}

func addAndCommit(t *testing.T, r *Repository, name, content, msg string) {
	t.Helper()
	writeFile(t, r, name, content)
	if _, err := r.Add(name); err != nil {
		t.Fatalf("Add %s: %v", name, err)
	}
	if _, err := r.Commit(msg); err != nil {
		t.Fatalf("Commit %q: %v", msg, err)
	}
}

func messages(t *testing.T, entries []dag.Entry) []string {
	t.Helper()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Commit.Message
	}
	return out
}

func TestInit_InitialCommit(t *testing.T) {
	r := openTestRepo(t)

	branch, err := r.Graph.CurrentBranch()
	if err != nil {
		t.Fatal(err)
	}
	if branch != "master" {
		t.Errorf("branch = %q, want master", branch)
	}
	cur, err := r.Graph.Current()
	if err != nil {
		t.Fatal(err)
	}
	if cur.Commit.Message != InitialMessage || !cur.Commit.IsRoot() || len(cur.Commit.Files) != 0 {
		t.Errorf("unexpected root commit: %+v", cur.Commit)
	}
	if !cur.Commit.Timestamp.Equal(time.Unix(0, 0)) {
		t.Errorf("Timestamp = %v, want epoch", cur.Commit.Timestamp)
	}
	if r.Meta.DefaultBranch != "master" || r.Meta.Version != 1 {
		t.Errorf("Meta = %+v", r.Meta)
	}
}

func TestInit_Twice(t *testing.T) {
	r := openTestRepo(t)
	if _, err := Init(r.Root(), Options{}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("err = %v, want ErrAlreadyInitialized", err)
	}
}

func TestInit_RootCommitIsShared(t *testing.T) {
	a := openTestRepo(t)
	b := openTestRepo(t)
	ca, _ := a.Graph.Current()
	cb, _ := b.Graph.Current()
	if !ca.ID.Equals(cb.ID) {
		t.Error("every repository should start from the same root commit")
	}
}

func TestInit_CustomBranch(t *testing.T) {
	r, err := Init(t.TempDir(), Options{Branch: "main"})
	if err != nil {
		t.Fatal(err)
	}
	branches, _ := r.Graph.ListBranches()
	if len(branches) != 1 || branches[0] != "main" {
		t.Errorf("branches = %v, want [main]", branches)
	}
}

func TestOpen(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")

	reopened, err := Open(r.Root(), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	log, err := reopened.Log()
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 || log[0].Commit.Message != "first" {
		t.Errorf("log = %v", messages(t, log))
	}
	if reopened.Meta.DefaultBranch != "master" {
		t.Errorf("Meta = %+v", reopened.Meta)
	}
}

func TestOpen_NotInitialized(t *testing.T) {
	if _, err := Open(t.TempDir(), Options{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("err = %v, want ErrNotInitialized", err)
	}
}

func TestLog_NewestFirst(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")
	addAndCommit(t, r, "f.txt", "B", "second")

	log, err := r.Log()
	if err != nil {
		t.Fatal(err)
	}
	got := messages(t, log)
	want := []string{"second", "first", InitialMessage}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("log = %v, want %v", got, want)
	}
}

func TestCheckoutBranch_RestoresFiles(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")
	addAndCommit(t, r, "f.txt", "B", "second")

	if err := r.Branch("feat"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if err := r.CheckoutBranch("feat"); err != nil {
		t.Fatalf("CheckoutBranch feat: %v", err)
	}
	addAndCommit(t, r, "f.txt", "C", "third")

	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatalf("CheckoutBranch master: %v", err)
	}
	if got := readFile(t, r, "f.txt"); got != "B" {
		t.Errorf("f.txt = %q, want %q", got, "B")
	}
	if err := r.CheckoutBranch("master"); !errors.Is(err, ErrAlreadyOnBranch) {
		t.Errorf("err = %v, want ErrAlreadyOnBranch", err)
	}
	if err := r.CheckoutBranch("nope"); !errors.Is(err, dag.ErrNoSuchBranch) {
		t.Errorf("err = %v, want ErrNoSuchBranch", err)
	}
}

func TestCheckoutBranch_UntrackedInTheWay(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")
	if err := r.Branch("feat"); err != nil {
		t.Fatal(err)
	}
	if err := r.CheckoutBranch("feat"); err != nil {
		t.Fatal(err)
	}
	addAndCommit(t, r, "g.txt", "theirs", "add g")
	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatal(err)
	}

	writeFile(t, r, "g.txt", "mine")
	err := r.CheckoutBranch("feat")
	if !errors.Is(err, worktree.ErrUntrackedInTheWay) {
		t.Fatalf("err = %v, want ErrUntrackedInTheWay", err)
	}
	if KindOf(err) != SafetyViolation {
		t.Errorf("KindOf = %v, want SafetyViolation", KindOf(err))
	}
	if got := readFile(t, r, "g.txt"); got != "mine" {
		t.Errorf("g.txt = %q, untracked file must be left alone", got)
	}
	if branch, _ := r.Graph.CurrentBranch(); branch != "master" {
		t.Errorf("branch = %q, want master", branch)
	}
}

// fileDirBranches leaves master tracking 0.txt and a file a, and feat
// tracking 0.txt and a/b in place of a. The active branch is feat.
func fileDirBranches(t *testing.T) *Repository {
	t.Helper()
	r := openTestRepo(t)
	writeFile(t, r, "0.txt", "z1")
	if _, err := r.Add("0.txt"); err != nil {
		t.Fatal(err)
	}
	addAndCommit(t, r, "a", "A", "a is a file")
	if err := r.Branch("feat"); err != nil {
		t.Fatal(err)
	}
	if err := r.CheckoutBranch("feat"); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	writeFile(t, r, "0.txt", "z2")
	if _, err := r.Add("0.txt"); err != nil {
		t.Fatal(err)
	}
	addAndCommit(t, r, "a/b", "B", "a is a directory")
	return r
}

func TestCheckoutBranch_FileAndDirectorySwap(t *testing.T) {
	r := fileDirBranches(t)

	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatalf("CheckoutBranch master: %v", err)
	}
	if got := readFile(t, r, "a"); got != "A" {
		t.Errorf("a = %q, want %q", got, "A")
	}
	if got := readFile(t, r, "0.txt"); got != "z1" {
		t.Errorf("0.txt = %q, want %q", got, "z1")
	}

	if err := r.CheckoutBranch("feat"); err != nil {
		t.Fatalf("CheckoutBranch feat: %v", err)
	}
	if got := readFile(t, r, "a/b"); got != "B" {
		t.Errorf("a/b = %q, want %q", got, "B")
	}
	if got := readFile(t, r, "0.txt"); got != "z2" {
		t.Errorf("0.txt = %q, want %q", got, "z2")
	}
}

func TestCheckoutBranch_UntrackedUnderDirectory(t *testing.T) {
	r := fileDirBranches(t)
	writeFile(t, r, "a/c", "mine")

	err := r.CheckoutBranch("master")
	var ue *worktree.UntrackedError
	if !errors.As(err, &ue) || ue.Path != "a/c" {
		t.Fatalf("err = %v, want UntrackedError for a/c", err)
	}
	if KindOf(err) != SafetyViolation {
		t.Errorf("KindOf = %v, want SafetyViolation", KindOf(err))
	}
	if got := readFile(t, r, "0.txt"); got != "z2" {
		t.Errorf("0.txt = %q, a blocked checkout must write nothing", got)
	}
	if got := readFile(t, r, "a/b"); got != "B" {
		t.Errorf("a/b = %q, a blocked checkout must delete nothing", got)
	}
	if branch, _ := r.Graph.CurrentBranch(); branch != "feat" {
		t.Errorf("branch = %q, want feat", branch)
	}
}

func TestCheckoutBranch_UntrackedFileAsParent(t *testing.T) {
	r := fileDirBranches(t)
	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Commit("drop a"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, r, "a", "untracked")

	err := r.CheckoutBranch("feat")
	var ue *worktree.UntrackedError
	if !errors.As(err, &ue) || ue.Path != "a" {
		t.Fatalf("err = %v, want UntrackedError for a", err)
	}
	if got := readFile(t, r, "a"); got != "untracked" {
		t.Errorf("a = %q, untracked file must be left alone", got)
	}
}

func TestMerge_DirectoryBecomesFile(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "a/b", "B", "a is a directory")
	if err := r.Branch("feat"); err != nil {
		t.Fatal(err)
	}
	if err := r.CheckoutBranch("feat"); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("a/b"); err != nil {
		t.Fatal(err)
	}
	addAndCommit(t, r, "a", "A", "a is a file")
	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatal(err)
	}
	addAndCommit(t, r, "g.txt", "G", "master g")

	res, err := r.Merge("feat")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if res.Kind != merge.ThreeWay || res.Conflict() {
		t.Errorf("result = %+v, want a clean three-way merge", res)
	}
	if got := readFile(t, r, "a"); got != "A" {
		t.Errorf("a = %q, want %q", got, "A")
	}
	cur, _ := r.Graph.Current()
	if cur.Commit.Tracks("a/b") || !cur.Commit.Tracks("a") || !cur.Commit.Tracks("g.txt") {
		t.Errorf("merge commit tracks %v", cur.Commit.Paths())
	}
}

func TestInvalidUTF8(t *testing.T) {
	r := openTestRepo(t)
	_, err := r.Add("f\xff.txt")
	if !errors.Is(err, dag.ErrInvalidUTF8) {
		t.Fatalf("Add err = %v, want ErrInvalidUTF8", err)
	}
	if KindOf(err) != UserError {
		t.Errorf("KindOf = %v, want UserError", KindOf(err))
	}

	writeFile(t, r, "f.txt", "A")
	if _, err := r.Add("f.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Commit("msg\xff"); !errors.Is(err, dag.ErrInvalidUTF8) {
		t.Errorf("Commit err = %v, want ErrInvalidUTF8", err)
	}
	if empty, _ := r.Index.IsEmpty(); empty {
		t.Error("a rejected commit must leave the index alone")
	}
}

func TestMerge_ConflictScenario(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")
	addAndCommit(t, r, "f.txt", "B", "second")
	if err := r.Branch("feat"); err != nil {
		t.Fatal(err)
	}

	addAndCommit(t, r, "g.txt", "X", "master g")
	if err := r.CheckoutBranch("feat"); err != nil {
		t.Fatal(err)
	}
	addAndCommit(t, r, "g.txt", "Y", "feat g")
	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatal(err)
	}

	res, err := r.Merge("feat")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !res.Conflict() {
		t.Error("merge should report a conflict")
	}
	want := "<<<<<<< HEAD\nX=======\nY>>>>>>>\n"
	if got := readFile(t, r, "g.txt"); got != want {
		t.Errorf("g.txt = %q, want %q", got, want)
	}
	cur, err := r.Graph.Current()
	if err != nil {
		t.Fatal(err)
	}
	if !cur.Commit.IsMerge() {
		t.Error("tip should be a two-parent commit")
	}
	if cur.Commit.Message != "Merged feat into master." {
		t.Errorf("Message = %q", cur.Commit.Message)
	}
}

func TestMerge_FastForwardMatchesCheckout(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "a.txt", "a", "first")
	if err := r.Branch("feat"); err != nil {
		t.Fatal(err)
	}
	if err := r.CheckoutBranch("feat"); err != nil {
		t.Fatal(err)
	}
	addAndCommit(t, r, "b.txt", "b", "feat b")
	featTip, _ := r.Graph.BranchTip("feat")
	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatal(err)
	}

	res, err := r.Merge("feat")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if res.Kind != merge.FastForward {
		t.Errorf("Kind = %v, want FastForward", res.Kind)
	}
	tip, _ := r.Graph.BranchTip("master")
	if !tip.Equals(featTip) {
		t.Error("master should point at feat's tip")
	}
	files, err := r.Tree.List()
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(files) != "[a.txt b.txt]" {
		t.Errorf("files = %v", files)
	}
	if got := readFile(t, r, "b.txt"); got != "b" {
		t.Errorf("b.txt = %q", got)
	}
}

func TestAdd_SameAsCommitted(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")

	outcome, err := r.Add("f.txt")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if outcome != stage.Unchanged {
		t.Errorf("outcome = %v, want unchanged", outcome)
	}
	if empty, _ := r.Index.IsEmpty(); !empty {
		t.Error("index should stay empty")
	}

	writeFile(t, r, "f.txt", "changed")
	if _, err := r.Add("f.txt"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, r, "f.txt", "A")
	outcome, err = r.Add("f.txt")
	if err != nil {
		t.Fatal(err)
	}
	if outcome != stage.Unstaged {
		t.Errorf("outcome = %v, want unstaged", outcome)
	}
	if empty, _ := r.Index.IsEmpty(); !empty {
		t.Error("reverting the file should empty the index")
	}
}

func TestAdd_Errors(t *testing.T) {
	r := openTestRepo(t)
	if _, err := r.Add("missing.txt"); !errors.Is(err, ErrFileNotExist) {
		t.Errorf("err = %v, want ErrFileNotExist", err)
	}
	if _, err := r.Add(".mxvc/HEAD"); !errors.Is(err, worktree.ErrOutsideTree) {
		t.Errorf("err = %v, want ErrOutsideTree", err)
	}
	if _, err := r.Add("../escape.txt"); !errors.Is(err, worktree.ErrOutsideTree) {
		t.Errorf("err = %v, want ErrOutsideTree", err)
	}
}

func TestCommit_Errors(t *testing.T) {
	r := openTestRepo(t)
	if _, err := r.Commit("msg"); !errors.Is(err, ErrNothingToCommit) {
		t.Errorf("err = %v, want ErrNothingToCommit", err)
	}
	writeFile(t, r, "f.txt", "A")
	if _, err := r.Add("f.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Commit(""); !errors.Is(err, dag.ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
	if empty, _ := r.Index.IsEmpty(); empty {
		t.Error("a failed commit must keep the index")
	}
}

func TestRemove(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")

	if err := r.Remove("f.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if r.Tree.Exists("f.txt") {
		t.Error("tracked file should be deleted")
	}
	if _, err := r.Commit("drop f"); err != nil {
		t.Fatal(err)
	}
	cur, _ := r.Graph.Current()
	if cur.Commit.Tracks("f.txt") {
		t.Error("f.txt should no longer be tracked")
	}

	writeFile(t, r, "g.txt", "G")
	if _, err := r.Add("g.txt"); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("g.txt"); err != nil {
		t.Fatalf("Remove staged: %v", err)
	}
	if !r.Tree.Exists("g.txt") {
		t.Error("untracked file must stay on disk when only unstaged")
	}
	if err := r.Remove("g.txt"); !errors.Is(err, stage.ErrNothingToRemove) {
		t.Errorf("err = %v, want ErrNothingToRemove", err)
	}
}

func TestStatus(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "kept.txt", "k", "first")
	addAndCommit(t, r, "gone.txt", "g", "second")
	addAndCommit(t, r, "edit.txt", "e", "third")
	if err := r.Branch("other"); err != nil {
		t.Fatal(err)
	}

	writeFile(t, r, "new.txt", "n")
	if _, err := r.Add("new.txt"); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("kept.txt"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, r, "edit.txt", "changed")
	if err := os.Remove(filepath.Join(r.Root(), "gone.txt")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, r, "stray.txt", "s")

	s, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if s.Current != "master" || fmt.Sprint(s.Branches) != "[master other]" {
		t.Errorf("branches = %v current = %q", s.Branches, s.Current)
	}
	if fmt.Sprint(s.Staged) != "[new.txt]" {
		t.Errorf("Staged = %v", s.Staged)
	}
	if fmt.Sprint(s.Removed) != "[kept.txt]" {
		t.Errorf("Removed = %v", s.Removed)
	}
	if fmt.Sprint(s.Modified) != "[edit.txt (modified) gone.txt (deleted)]" {
		t.Errorf("Modified = %v", s.Modified)
	}
	if fmt.Sprint(s.Untracked) != "[stray.txt]" {
		t.Errorf("Untracked = %v", s.Untracked)
	}
}

func TestFind(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "same")
	addAndCommit(t, r, "f.txt", "B", "same")
	addAndCommit(t, r, "f.txt", "C", "different")

	ids, err := r.Find("same")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("found %d commits, want 2", len(ids))
	}
	if _, err := r.Find("nothing"); !errors.Is(err, ErrNoMatchingCommit) {
		t.Errorf("err = %v, want ErrNoMatchingCommit", err)
	}

	all, err := r.GlobalLog()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("GlobalLog has %d commits, want 4", len(all))
	}
}

func TestCheckoutFileAt_Prefix(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")
	first, _ := r.Graph.Current()
	addAndCommit(t, r, "f.txt", "B", "second")

	// Long enough to be unique among a handful of commits.
	prefix := dag.CIDToFilename(first.ID)[:20]
	if err := r.CheckoutFileAt(prefix, "f.txt"); err != nil {
		t.Fatalf("CheckoutFileAt: %v", err)
	}
	if got := readFile(t, r, "f.txt"); got != "A" {
		t.Errorf("f.txt = %q, want %q", got, "A")
	}
	if err := r.CheckoutFile("f.txt"); err != nil {
		t.Fatalf("CheckoutFile: %v", err)
	}
	if got := readFile(t, r, "f.txt"); got != "B" {
		t.Errorf("f.txt = %q, want %q", got, "B")
	}

	if err := r.CheckoutFileAt(prefix, "missing.txt"); !errors.Is(err, worktree.ErrFileNotInCommit) {
		t.Errorf("err = %v, want ErrFileNotInCommit", err)
	}
	if err := r.CheckoutFileAt("bafkreizzzzzzzzzzzz", "f.txt"); !errors.Is(err, ErrNoSuchCommit) {
		t.Errorf("err = %v, want ErrNoSuchCommit", err)
	}
	if err := r.CheckoutFileAt("bafkrei", "f.txt"); !errors.Is(err, dag.ErrAmbiguousID) {
		t.Errorf("err = %v, want ErrAmbiguousID", err)
	}
}

func TestReset(t *testing.T) {
	r := openTestRepo(t)
	addAndCommit(t, r, "f.txt", "A", "first")
	first, _ := r.Graph.Current()
	addAndCommit(t, r, "g.txt", "G", "second")

	writeFile(t, r, "h.txt", "H")
	if _, err := r.Add("h.txt"); err != nil {
		t.Fatal(err)
	}

	if err := r.Reset(dag.CIDToFilename(first.ID)); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	tip, _ := r.Graph.BranchTip("master")
	if !tip.Equals(first.ID) {
		t.Error("master should point at the reset target")
	}
	if r.Tree.Exists("g.txt") {
		t.Error("g.txt is not tracked by the target and should be deleted")
	}
	if empty, _ := r.Index.IsEmpty(); !empty {
		t.Error("reset should clear the index")
	}
}

func TestBranchErrors(t *testing.T) {
	r := openTestRepo(t)
	if err := r.Branch("feat"); err != nil {
		t.Fatal(err)
	}
	if err := r.Branch("feat"); !errors.Is(err, dag.ErrBranchExists) {
		t.Errorf("err = %v, want ErrBranchExists", err)
	}
	if err := r.RemoveBranch("master"); !errors.Is(err, dag.ErrCurrentBranch) {
		t.Errorf("err = %v, want ErrCurrentBranch", err)
	}
	if err := r.RemoveBranch("nope"); !errors.Is(err, dag.ErrNoSuchBranch) {
		t.Errorf("err = %v, want ErrNoSuchBranch", err)
	}
	if err := r.RemoveBranch("feat"); err != nil {
		t.Errorf("RemoveBranch: %v", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{fmt.Errorf("wrap: %w", ErrNothingToCommit), UserError},
		{merge.ErrGivenIsAncestor, UserError},
		{dag.ErrAmbiguousID, UserError},
		{fmt.Errorf("path: %w", dag.ErrInvalidUTF8), UserError},
		{&worktree.UntrackedError{Path: "x"}, SafetyViolation},
		{fmt.Errorf("load: %w", dag.ErrCorruptObject), StorageFault},
		{dag.ErrNotFound, StorageFault},
		{errors.New("disk on fire"), StorageFault},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
