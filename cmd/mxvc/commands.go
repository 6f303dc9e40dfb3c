package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	memexfuse "github.com/systemshift/memex-vc/internal/fuse"
	"github.com/systemshift/memex-vc/internal/repo"
)

// opError marks a failed repository operation, as opposed to a usage error
// reported by cobra.
type opError struct {
	err error
}

func (e *opError) Error() string { return e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

func fail(err error) error {
	if err == nil {
		return nil
	}
	return &opError{err: err}
}

// exitCode maps an error to the process exit status: 1 for user errors,
// 2 for usage, 3 when an untracked file blocked the operation, 4 for
// storage faults.
func exitCode(err error) int {
	var op *opError
	if !errors.As(err, &op) {
		return 2
	}
	switch repo.KindOf(op.err) {
	case repo.UserError:
		return 1
	case repo.SafetyViolation:
		return 3
	default:
		return 4
	}
}

func openRepo() (*repo.Repository, error) {
	r, err := repo.Open(dataDir, repo.Options{})
	return r, fail(err)
}

func runInit(cmd *cobra.Command, args []string) error {
	branch, _ := cmd.Flags().GetString("branch")
	_, err := repo.Init(dataDir, repo.Options{Branch: branch})
	return fail(err)
}

func runAdd(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	for _, path := range args {
		if _, err := r.Add(path); err != nil {
			return fail(err)
		}
	}
	return nil
}

func runCommit(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	_, err = r.Commit(args[0])
	return fail(err)
}

func runRm(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	for _, path := range args {
		if err := r.Remove(path); err != nil {
			return fail(err)
		}
	}
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	entries, err := r.Log()
	if err != nil {
		return fail(err)
	}
	printLog(cmd.OutOrStdout(), entries)
	return nil
}

func runGlobalLog(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	entries, err := r.GlobalLog()
	if err != nil {
		return fail(err)
	}
	printLog(cmd.OutOrStdout(), entries)
	return nil
}

func runFind(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	ids, err := r.Find(args[0])
	if err != nil {
		return fail(err)
	}
	printIDs(cmd.OutOrStdout(), ids)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	s, err := r.Status()
	if err != nil {
		return fail(err)
	}
	printStatus(cmd.OutOrStdout(), s)
	return nil
}

// runCheckout dispatches on where "--" appeared: cobra drops the dash
// itself and reports its position.
func runCheckout(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	switch dash := cmd.ArgsLenAtDash(); {
	case dash == 0 && len(args) == 1:
		return fail(r.CheckoutFile(args[0]))
	case dash == 1 && len(args) == 2:
		return fail(r.CheckoutFileAt(args[0], args[1]))
	case dash == -1 && len(args) == 1:
		return fail(r.CheckoutBranch(args[0]))
	default:
		return fmt.Errorf("incorrect operands")
	}
}

func runBranch(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	return fail(r.Branch(args[0]))
}

func runRmBranch(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	return fail(r.RemoveBranch(args[0]))
}

func runReset(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	return fail(r.Reset(args[0]))
}

func runMerge(cmd *cobra.Command, args []string) error {
	r, err := openRepo()
	if err != nil {
		return err
	}
	res, err := r.Merge(args[0])
	if err != nil {
		return fail(err)
	}
	printMerge(cmd.OutOrStdout(), res)
	return nil
}

func runMount(cmd *cobra.Command, args []string) error {
	mountpoint := args[0]
	debug, _ := cmd.Flags().GetBool("debug")

	r, err := openRepo()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(mountpoint, 0755); err != nil {
		return fail(fmt.Errorf("create mountpoint: %w", err))
	}

	log.Printf("mounting %s at %s", r.Root(), mountpoint)
	server, err := memexfuse.MountFS(mountpoint, r, debug)
	if err != nil {
		return fail(fmt.Errorf("mount failed: %w", err))
	}

	// Unmount on signal
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-done
		log.Println("shutting down...")
		if err := server.Unmount(); err != nil {
			log.Printf("unmount: %v", err)
		}
	}()

	log.Printf("ready (pid %d)", os.Getpid())
	server.Wait()
	log.Println("stopped")
	return nil
}
