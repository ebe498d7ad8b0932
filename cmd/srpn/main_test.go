package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jb361/rpn-calculator/pkg/driver"
	"github.com/jb361/rpn-calculator/pkg/interpreter"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), driver.ConfigFileName)
	writeFile(t, path, contents)
	return path
}

func TestVersionAndHelp(t *testing.T) {
	code, stdout, _ := captureCLI(t, "", "--version")
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version: code=%d stdout=%q", code, stdout)
	}
	code, _, stderr := captureCLI(t, "", "help")
	if code != 0 || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("help: code=%d stderr=%q", code, stderr)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := captureCLI(t, "", "frobnicate")
	if code != 1 || !strings.Contains(stderr, `unknown command "frobnicate"`) {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	opts, rest, err := parseGlobalFlags([]string{"--seed", "7", "--stats", "run", "--config=x.yml", "--", "--seed"})
	if err != nil {
		t.Fatalf("parseGlobalFlags: %v", err)
	}
	if opts.seed == nil || *opts.seed != 7 || !opts.stats || opts.configPath != "x.yml" {
		t.Fatalf("opts = %+v", opts)
	}
	if strings.Join(rest, " ") != "run --seed" {
		t.Fatalf("remaining = %q", rest)
	}

	for _, bad := range [][]string{{"--seed"}, {"--seed", "lots"}, {"--seed=4294967296"}, {"--stats=yes"}, {"--config="}} {
		if _, _, err := parseGlobalFlags(bad); err == nil {
			t.Errorf("parseGlobalFlags(%q) succeeded", bad)
		}
	}
}

func TestInteractiveSession(t *testing.T) {
	cfg := writeConfig(t, "seed: 1\n")
	code, stdout, stderr := captureCLI(t, "1 2 +\nd\nr =\n5 0 /\n", "--config", cfg)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%q", code, stderr)
	}
	if stdout != "3\n1804289383\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if stderr != "Divide by 0.\n" {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestSessionExitCodes(t *testing.T) {
	if code, _, _ := captureCLI(t, "5 0 %\n", "--config", writeConfig(t, "")); code != interpreter.ExitArithmeticFault {
		t.Fatalf("modulo exit = %d", code)
	}
	cfg := writeConfig(t, "line_limit: 4\n")
	if code, _, _ := captureCLI(t, "1 2 3 +\n", "--config", cfg); code != interpreter.ExitSegmentationFault {
		t.Fatalf("line limit exit = %d", code)
	}
}

func TestSeedPrecedence(t *testing.T) {
	cfg := writeConfig(t, "seed: 5\n")

	_, fromConfig, _ := captureCLI(t, "r =\n", "--config", cfg)

	t.Setenv("SRPN_SEED", "1")
	_, fromEnv, _ := captureCLI(t, "r =\n", "--config", cfg)
	if fromEnv != "1804289383\n" {
		t.Fatalf("SRPN_SEED ignored: %q", fromEnv)
	}
	if fromConfig == fromEnv {
		t.Fatalf("config seed ignored: %q", fromConfig)
	}

	_, fromFlag, _ := captureCLI(t, "r =\n", "--config", cfg, "--seed", "5")
	if fromFlag != fromConfig {
		t.Fatalf("--seed did not override SRPN_SEED: %q vs %q", fromFlag, fromConfig)
	}

	t.Setenv("SRPN_SEED", "nope")
	if code, _, stderr := captureCLI(t, "", "--config", cfg); code != 1 || !strings.Contains(stderr, "SRPN_SEED") {
		t.Fatalf("bad SRPN_SEED: code=%d stderr=%q", code, stderr)
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "session.txt")
	writeFile(t, input, "2 3 ^\nd")
	code, stdout, _ := captureCLI(t, "", "--config", writeConfig(t, ""), "run", input)
	if code != 0 || stdout != "8\n" {
		t.Fatalf("code=%d stdout=%q", code, stdout)
	}
	if code, _, _ := captureCLI(t, "", "run"); code != 1 {
		t.Fatalf("run without file exit = %d", code)
	}
	if code, _, _ := captureCLI(t, "", "run", filepath.Join(dir, "missing.txt")); code != 1 {
		t.Fatalf("run missing file exit = %d", code)
	}
}

func TestStatsFlag(t *testing.T) {
	code, _, stderr := captureCLI(t, "1 2 + r x\n", "--config", writeConfig(t, ""), "--stats")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	for _, name := range []string{interpreter.MetricTokens, interpreter.MetricDraws, driver.MetricLines} {
		if !strings.Contains(stderr, name+" ") {
			t.Fatalf("stats missing %s:\n%s", name, stderr)
		}
	}
}

func TestCheckLegacyTranscripts(t *testing.T) {
	code, stdout, stderr := captureCLI(t, "", "check", filepath.Join("..", "..", "testdata", "transcripts"))
	if code != 0 {
		t.Fatalf("check failed: code=%d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "ok   random values follow the legacy sequence") || !strings.HasSuffix(stdout, " 0 failed\n") {
		t.Fatalf("stdout:\n%s", stdout)
	}
}

func TestCheckReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wrong.yml"), `
input: "1 2 + d"
expect:
  stdout: ["4"]
`)
	code, stdout, _ := captureCLI(t, "", "check", dir)
	if code != 1 {
		t.Fatalf("exit code = %d\n%s", code, stdout)
	}
	if !strings.Contains(stdout, "FAIL wrong") || !strings.Contains(stdout, "0 passed, 1 failed") {
		t.Fatalf("stdout:\n%s", stdout)
	}

	writeFile(t, filepath.Join(dir, "broken.yml"), "expect: {}\n")
	if code, _, stderr := captureCLI(t, "", "check", dir); code != 2 || !strings.Contains(stderr, "input must be provided") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestCheckUsesConfiguredPathSuites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cases", "add.yml"), `
input: "1 2 + d"
expect:
  stdout: ["3"]
`)
	cfg := filepath.Join(root, driver.ConfigFileName)
	writeFile(t, cfg, "suites:\n  local:\n    path: cases\n")
	code, stdout, stderr := captureCLI(t, "", "--config", cfg, "check")
	if code != 0 || !strings.Contains(stdout, "1 passed, 0 failed") {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
}
