package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/saltbox/cmd/saltbox"
	"github.com/arthur-debert/saltbox/internal/version"
)

// Writes saltbox.1 to stdout, or one page per command into the directory given
func main() {
	rootCmd := saltbox.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "SALTBOX",
		Section: "1",
		Source:  "saltbox " + version.Version,
		Manual:  "saltbox manual",
	}

	var err error
	if len(os.Args) > 1 {
		err = doc.GenManTree(rootCmd, header, os.Args[1])
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
