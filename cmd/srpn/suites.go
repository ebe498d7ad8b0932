package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jb361/rpn-calculator/pkg/driver"
)

func runSuites(opts cliOptions, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "srpn suites requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "srpn suites install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return installSuites(opts, nil, false)
	case "update":
		return installSuites(opts, args[1:], true)
	default:
		fmt.Fprintf(os.Stderr, "unknown suites subcommand %q\n", args[0])
		return 1
	}
}

func installSuites(opts cliOptions, targets []string, update bool) int {
	cfg, err := loadSettings(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if cfg.Path == "" {
		fmt.Fprintf(os.Stderr, "unable to locate %s\n", driver.ConfigFileName)
		return 1
	}
	cacheDir, err := resolveHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve SRPN_HOME: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Config: %s\n", cfg.Path)
	fmt.Fprintf(os.Stdout, "Suites: %d\n", len(cfg.SuiteOrder))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := lockPathFor(cfg)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion

	refresh := make(map[string]struct{})
	if update {
		if len(targets) == 0 {
			for _, name := range cfg.SuiteOrder {
				refresh[name] = struct{}{}
			}
		}
		for _, target := range targets {
			spec, ok := cfg.Suite(target)
			if !ok {
				fmt.Fprintf(os.Stderr, "suite %q not declared in %s\n", target, driver.ConfigFileName)
				return 1
			}
			refresh[spec.Name] = struct{}{}
		}
	}

	installer := newSuiteInstaller(cfg, cacheDir)
	changed, logs, err := installer.Install(lock, refresh)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to install suites: %v\n", err)
		return 1
	}

	if changed || lockCreated {
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Updated %s: %s\n", driver.LockFileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockFileName, lock.Path)
	}
	return 0
}

type suiteInstaller struct {
	config   *driver.Config
	cacheDir string
}

func newSuiteInstaller(cfg *driver.Config, cacheDir string) *suiteInstaller {
	return &suiteInstaller{config: cfg, cacheDir: cacheDir}
}

// Install resolves every configured suite into lock and drops entries for
// suites no longer configured. A locked git suite is reused only while its
// pin, dir and source still match srpn.yml and its export is intact; suites
// named in refresh are fetched again regardless.
func (i *suiteInstaller) Install(lock *driver.Lockfile, refresh map[string]struct{}) (bool, []string, error) {
	changed := false
	var logs []string
	for _, name := range i.config.SuiteOrder {
		spec := i.config.Suites[name]
		_, forced := refresh[name]

		var entry *driver.LockedSuite
		var err error
		if spec.IsGit() {
			if existing := lock.Find(name); !forced && i.reusable(existing, spec) {
				logs = append(logs, fmt.Sprintf("Using %s %s at %s", name, existing.Pin, existing.Version))
				continue
			}
			entry, err = i.fetchGitSuite(spec)
		} else {
			entry, err = fetchPathSuite(resolveSuitePath(i.config, spec), spec)
		}
		if err != nil {
			return changed, logs, fmt.Errorf("suite %q: %w", name, err)
		}
		logs = append(logs, fmt.Sprintf("Resolved %s %s at %s", name, entry.Pin, entry.Version))
		if lock.Put(entry) {
			changed = true
		}
	}
	for _, name := range lock.Retain(i.config.SuiteOrder) {
		logs = append(logs, fmt.Sprintf("Removed %s", name))
		changed = true
	}
	return changed, logs, nil
}

func (i *suiteInstaller) reusable(locked *driver.LockedSuite, spec *driver.SuiteSpec) bool {
	if locked == nil || !lockMatches(locked, spec) {
		return false
	}
	sum, err := dirChecksum(gitSuiteDir(i.cacheDir, spec.Name, locked.Version, locked.Dir))
	return err == nil && sum == locked.Checksum
}

// lockMatches reports whether locked was resolved from the request in spec.
func lockMatches(locked *driver.LockedSuite, spec *driver.SuiteSpec) bool {
	if locked.Pin != spec.Pin() || locked.Dir != spec.Dir {
		return false
	}
	return !spec.IsGit() || locked.Source == "git+"+strings.TrimSpace(spec.Git)
}
