package driver

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigParsesSuites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, `
seed: 42
line_limit: 64
suites:
  Legacy:
    path: testdata/transcripts
  upstream:
    git: https://example.com/srpn-transcripts.git
    tag: v1.2.0
    dir: cases
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Seed != 42 || cfg.LineLimit != 64 {
		t.Fatalf("seed/line_limit = %d/%d", cfg.Seed, cfg.LineLimit)
	}
	if !reflect.DeepEqual(cfg.SuiteOrder, []string{"legacy", "upstream"}) {
		t.Fatalf("suite order = %v", cfg.SuiteOrder)
	}
	legacy, ok := cfg.Suite("Legacy")
	if !ok || legacy.Path != "testdata/transcripts" || legacy.IsGit() {
		t.Fatalf("legacy suite = %+v", legacy)
	}
	upstream, ok := cfg.Suite("upstream")
	if !ok || !upstream.IsGit() {
		t.Fatalf("upstream suite = %+v", upstream)
	}
	if pin := upstream.Pin(); pin != "tag:v1.2.0" {
		t.Fatalf("upstream pin = %q", pin)
	}
	if pin := legacy.Pin(); pin != "path:testdata/transcripts" {
		t.Fatalf("legacy pin = %q", pin)
	}
	if cfg.BaseDir() != dir {
		t.Fatalf("base dir = %q, want %q", cfg.BaseDir(), dir)
	}
}

func TestLoadConfigEmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Seed != 1 || cfg.LineLimit != DefaultLineLimit || len(cfg.Suites) != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "seed: 1\ncolour: blue\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		issue    string
	}{
		{"seed range", "seed: 4294967296\n", "does not fit in 32 bits"},
		{"line limit", "line_limit: 0\n", "line_limit must be positive"},
		{"no source", "suites:\n  a: {}\n", "must specify git or path"},
		{"both sources", "suites:\n  a:\n    git: x\n    path: y\n    rev: abc\n", "cannot also specify path"},
		{"unpinned git", "suites:\n  a:\n    git: x\n", "require rev, tag, or branch"},
		{"two pins", "suites:\n  a:\n    git: x\n    tag: v1\n    branch: main\n", "only one of rev, tag, or branch"},
		{"pin on path", "suites:\n  a:\n    path: y\n    rev: abc\n", "apply only to git suites"},
		{"escaping dir", "suites:\n  a:\n    path: y\n    dir: ../z\n", "must stay inside the suite"},
		{"collision", "suites:\n  A-b:\n    path: y\n  a_b:\n    path: z\n", "collides with another suite"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			writeFile(t, path, tc.contents)
			_, err := LoadConfig(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(verr.Error(), tc.issue) {
				t.Fatalf("error %q does not mention %q", verr.Error(), tc.issue)
			}
		})
	}
}

func TestFindConfigWalksUpwards(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigFileName)
	writeFile(t, path, "seed: 1\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != path {
		t.Fatalf("found %q, want %q", found, path)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"Legacy":       "legacy",
		" spaced out ": "spaced_out",
		"v1.2-rc":      "v1.2_rc",
		"a/b":          "a_b",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
