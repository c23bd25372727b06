// Command kvstore inspects and edits a kvstore bbolt database from the shell.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	exitCodeOK       = 0
	exitCodeNotFound = 1
	exitCodeError    = 2
)

// exitError carries a process exit status through cobra's RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitCodeOK
	}

	fmt.Fprintln(root.ErrOrStderr(), "kvstore:", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	return exitCodeError
}
