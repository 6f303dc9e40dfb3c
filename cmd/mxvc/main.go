package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "mxvc",
	Short: "mxvc - a local, single-user version-control system",
	Long: `mxvc tracks snapshots of a working directory in a content-addressed store
under .mxvc/. Files are staged with add and rm, recorded with commit, and
branches are switched, reset and merged like in git.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a repository in the working directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

var addCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Stage files for the next commit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Record the staged changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommit,
}

var rmCmd = &cobra.Command{
	Use:   "rm <file>...",
	Short: "Unstage files, or stage tracked files for removal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the active branch's history, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

var globalLogCmd = &cobra.Command{
	Use:   "global-log",
	Short: "Show every commit ever made",
	Args:  cobra.NoArgs,
	RunE:  runGlobalLog,
}

var findCmd = &cobra.Command{
	Use:   "find <message>",
	Short: "Print the ids of commits with the given message",
	Args:  cobra.ExactArgs(1),
	RunE:  runFind,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show branches, staged files and working-tree changes",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout (-- <file> | <commit-id> -- <file> | <branch>)",
	Short: "Restore a file, or switch branches",
	Long: `Restore a file or switch branches.

Examples:
  mxvc checkout -- f.txt              # f.txt as of the active branch's tip
  mxvc checkout d4kq2m -- f.txt       # f.txt as of a (possibly abbreviated) commit
  mxvc checkout feature               # switch to branch feature

Commit ids may be abbreviated to any unique prefix. Every id starts with
"bafkrei"; that part may be left out, so the 8-character ids shown on
"Merge:" lines in log output work as-is.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCheckout,
}

var branchCmd = &cobra.Command{
	Use:   "branch <name>",
	Short: "Create a branch at the active branch's tip",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranch,
}

var rmBranchCmd = &cobra.Command{
	Use:   "rm-branch <name>",
	Short: "Delete a branch pointer",
	Args:  cobra.ExactArgs(1),
	RunE:  runRmBranch,
}

var resetCmd = &cobra.Command{
	Use:   "reset <commit-id>",
	Short: "Check out a commit and move the active branch to it",
	Long: `Check out every file of a commit and move the active branch to it.

The commit id may be a unique prefix, with or without the leading "bafkrei".`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the active branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runMerge,
}

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Serve a read-only view of the history over FUSE",
	Args:  cobra.ExactArgs(1),
	RunE:  runMount,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", ".", "Working tree root (contains .mxvc/)")

	initCmd.Flags().String("branch", "master", "Name of the initial branch")
	mountCmd.Flags().Bool("debug", false, "Log every FUSE request")

	rootCmd.AddCommand(initCmd, addCmd, commitCmd, rmCmd, logCmd, globalLogCmd, findCmd,
		statusCmd, checkoutCmd, branchCmd, rmBranchCmd, resetCmd, mergeCmd, mountCmd)
}

func main() {
	log.SetPrefix("mxvc: ")
	log.SetFlags(0)

	if err := rootCmd.Execute(); err != nil {
		log.Print(err)
		os.Exit(exitCode(err))
	}
}
