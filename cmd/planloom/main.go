package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/planloom/planloom/cmd/planloom/internal"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and maps the outcome to a process exit code.
// os.Exit stays in main so deferred handlers here always fire.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			if internal.IsVerbose() {
				fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			} else {
				fmt.Fprintln(os.Stderr, "Run with --verbose for stack trace")
			}
			code = internal.ExitError
		}
	}()

	if err := Execute(context.Background()); err != nil {
		return internal.HandleError(rootCmd, err)
	}
	return internal.ExitSuccess
}
