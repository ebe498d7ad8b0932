package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jb361/rpn-calculator/pkg/driver"
	"github.com/jb361/rpn-calculator/pkg/interpreter"
)

func runSession(opts cliOptions, input io.Reader) int {
	cfg, err := loadSettings(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	calc := interpreter.NewWithOptions(interpreter.Options{
		Seed:   cfg.Seed,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	session := driver.NewSession(calc, cfg.LineLimit)
	session.Stderr = os.Stderr
	return session.Run(input)
}

func runFile(opts cliOptions, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "srpn run requires exactly one input file")
		return 1
	}
	path := strings.TrimSpace(args[0])
	if path == "-" {
		return runSession(opts, os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open input: %v\n", err)
		return 1
	}
	defer file.Close()
	return runSession(opts, file)
}
