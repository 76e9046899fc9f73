package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/arthur-debert/saltbox/cmd/saltbox"
	"github.com/arthur-debert/saltbox/pkg/style"
)

func main() {
	style.Setup(os.Stderr)

	rootCmd := saltbox.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// a tool's own failure was already reported by the tool
		var exitErr *saltbox.ExitError
		if !stderrors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, style.ErrorLine(err))
		}
		os.Exit(saltbox.ExitCode(err))
	}
}
