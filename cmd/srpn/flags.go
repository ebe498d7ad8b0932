package main

import (
	"fmt"
	"strconv"
	"strings"
)

type cliOptions struct {
	configPath string
	seed       *int32
	stats      bool
}

// parseGlobalFlags pulls the flags shared by every command out of args.
// Everything after "--" is passed through untouched.
func parseGlobalFlags(args []string) (cliOptions, []string, error) {
	var opts cliOptions
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--seed", "--config":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, nil, fmt.Errorf("%s expects a value", name)
				}
				value = args[i+1]
				i++
			}
			if name == "--config" {
				if strings.TrimSpace(value) == "" {
					return opts, nil, fmt.Errorf("--config expects a value")
				}
				opts.configPath = value
				continue
			}
			seed, err := parseSeed(value)
			if err != nil {
				return opts, nil, fmt.Errorf("--seed: %w", err)
			}
			opts.seed = &seed
		case "--stats":
			if hasValue {
				return opts, nil, fmt.Errorf("--stats does not take a value")
			}
			opts.stats = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return opts, remaining, nil
}

func parseSeed(value string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q (expected a 32-bit integer)", value)
	}
	return int32(v), nil
}
