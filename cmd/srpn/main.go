package main

import (
	"fmt"
	"os"
)

const cliToolVersion = "srpn 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		return 1
	}
	if opts.stats {
		defer printStats(os.Stderr)
	}

	if len(remaining) == 0 {
		return runSession(opts, os.Stdin)
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runFile(opts, remaining[1:])
	case "check":
		return runCheck(opts, remaining[1:])
	case "suites":
		return runSuites(opts, remaining[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", remaining[0])
		printUsage()
		return 1
	}
}
