package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jb361/rpn-calculator/pkg/driver"
)

// loadSettings resolves the effective configuration: srpn.yml (explicit or
// found upwards from the working directory), then SRPN_SEED, then --seed.
func loadSettings(opts cliOptions) (*driver.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if env := strings.TrimSpace(os.Getenv("SRPN_SEED")); env != "" {
		seed, err := parseSeed(env)
		if err != nil {
			return nil, fmt.Errorf("SRPN_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if opts.seed != nil {
		cfg.Seed = *opts.seed
	}
	return cfg, nil
}

func loadConfig(opts cliOptions) (*driver.Config, error) {
	if opts.configPath != "" {
		return driver.LoadConfig(opts.configPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	path, err := driver.FindConfig(cwd)
	if err != nil {
		if errors.Is(err, driver.ErrConfigNotFound) {
			return driver.DefaultConfig(), nil
		}
		return nil, err
	}
	return driver.LoadConfig(path)
}

// resolveHome returns the suite cache directory: SRPN_HOME or ~/.srpn.
func resolveHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("SRPN_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve SRPN_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".srpn"), nil
}

func lockPathFor(cfg *driver.Config) string {
	return filepath.Join(cfg.BaseDir(), driver.LockFileName)
}
