package main

import (
	"fmt"
	"io"

	gocid "github.com/ipfs/go-cid"
	"github.com/systemshift/memex-vc/internal/dag"
	"github.com/systemshift/memex-vc/internal/merge"
	"github.com/systemshift/memex-vc/internal/repo"
)

// dateFormat matches git's default log date.
const dateFormat = "Mon Jan 2 15:04:05 2006 -0700"

func printEntry(w io.Writer, e dag.Entry) {
	fmt.Fprintln(w, "===")
	fmt.Fprintf(w, "commit %s\n", dag.CIDToFilename(e.ID))
	if e.Commit.IsMerge() {
		fmt.Fprintf(w, "Merge: %s %s\n", dag.ShortID(e.Commit.Parent), dag.ShortID(e.Commit.MergeParent))
	}
	fmt.Fprintf(w, "Date: %s\n", e.Commit.Timestamp.Local().Format(dateFormat))
	fmt.Fprintln(w, e.Commit.Message)
	fmt.Fprintln(w)
}

func printLog(w io.Writer, entries []dag.Entry) {
	for _, e := range entries {
		printEntry(w, e)
	}
}

func printIDs(w io.Writer, ids []gocid.Cid) {
	for _, id := range ids {
		fmt.Fprintln(w, dag.CIDToFilename(id))
	}
}

func printStatus(w io.Writer, s *repo.Status) {
	fmt.Fprintln(w, "=== Branches ===")
	for _, b := range s.Branches {
		if b == s.Current {
			fmt.Fprint(w, "*")
		}
		fmt.Fprintln(w, b)
	}
	fmt.Fprintln(w)

	section := func(title string, lines []string) {
		fmt.Fprintf(w, "=== %s ===\n", title)
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
		fmt.Fprintln(w)
	}
	section("Staged Files", s.Staged)
	section("Removed Files", s.Removed)

	modified := make([]string, len(s.Modified))
	for i, m := range s.Modified {
		modified[i] = m.String()
	}
	section("Modifications Not Staged For Commit", modified)
	section("Untracked Files", s.Untracked)
}

func printMerge(w io.Writer, res *merge.Result) {
	switch {
	case res.Kind == merge.FastForward:
		fmt.Fprintln(w, "Current branch fast-forwarded.")
	case res.Conflict():
		fmt.Fprintln(w, "Encountered a merge conflict.")
	}
}
