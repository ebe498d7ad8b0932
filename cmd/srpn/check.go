package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jb361/rpn-calculator/pkg/driver"
)

// runCheck replays transcripts and reports which ones diverge from the
// recorded behaviour. Exit code 1 means a transcript failed, 2 that the
// transcripts could not be loaded.
func runCheck(opts cliOptions, args []string) int {
	targets := args
	if len(targets) == 0 {
		cfg, err := loadSettings(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srpn check: %v\n", err)
			return 2
		}
		targets, err = configuredSuiteDirs(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srpn check: %v\n", err)
			return 2
		}
		if len(targets) == 0 {
			fmt.Fprintln(os.Stdout, "srpn check: no suites configured")
			return 0
		}
	}

	files, err := driver.CollectTranscripts(targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "srpn check: %v\n", err)
		return 2
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stdout, "srpn check: no transcripts found")
		return 0
	}

	transcripts := make([]*driver.Transcript, 0, len(files))
	for _, file := range files {
		t, err := driver.LoadTranscript(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srpn check: %v\n", err)
			return 2
		}
		transcripts = append(transcripts, t)
	}

	failed := 0
	for _, t := range transcripts {
		mismatches := t.Compare(t.Run())
		if len(mismatches) == 0 {
			fmt.Fprintf(os.Stdout, "ok   %s\n", t.Name)
			continue
		}
		failed++
		fmt.Fprintf(os.Stdout, "FAIL %s (%s)\n", t.Name, t.Path)
		for _, m := range mismatches {
			fmt.Fprintf(os.Stdout, "     %s\n", m)
		}
	}
	fmt.Fprintf(os.Stdout, "%d passed, %d failed\n", len(transcripts)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

// configuredSuiteDirs maps every suite in cfg to the directory holding its
// transcripts. Git suites must have been installed first.
func configuredSuiteDirs(cfg *driver.Config) ([]string, error) {
	if len(cfg.SuiteOrder) == 0 {
		return nil, nil
	}
	var lock *driver.Lockfile
	var cacheDir string
	dirs := make([]string, 0, len(cfg.SuiteOrder))
	for _, name := range cfg.SuiteOrder {
		spec := cfg.Suites[name]
		if !spec.IsGit() {
			dirs = append(dirs, filepath.Join(resolveSuitePath(cfg, spec), filepath.FromSlash(spec.Dir)))
			continue
		}
		if lock == nil {
			var err error
			lock, err = driver.LoadLockfile(lockPathFor(cfg))
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil, fmt.Errorf("%s missing; run `srpn suites install`", driver.LockFileName)
				}
				return nil, err
			}
			cacheDir, err = resolveHome()
			if err != nil {
				return nil, err
			}
		}
		locked := lock.Find(name)
		if locked == nil {
			return nil, fmt.Errorf("suite %q is not installed; run `srpn suites install`", name)
		}
		if !lockMatches(locked, spec) {
			return nil, fmt.Errorf("suite %q is locked to %s but %s asks for %s; run `srpn suites install`", name, locked.Pin, driver.ConfigFileName, spec.Pin())
		}
		dirs = append(dirs, gitSuiteDir(cacheDir, name, locked.Version, locked.Dir))
	}
	return dirs, nil
}

func resolveSuitePath(cfg *driver.Config, spec *driver.SuiteSpec) string {
	path := filepath.FromSlash(spec.Path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cfg.BaseDir(), path)
}
