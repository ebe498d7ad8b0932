package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  srpn [--seed=N] [--config=srpn.yml] [--stats]")
	fmt.Fprintln(os.Stderr, "  srpn [flags] run <file>")
	fmt.Fprintln(os.Stderr, "  srpn [flags] check [transcript or directory ...]")
	fmt.Fprintln(os.Stderr, "  srpn [flags] suites install")
	fmt.Fprintln(os.Stderr, "  srpn [flags] suites update [suite ...]")
	fmt.Fprintln(os.Stderr, "  srpn --version")
}
