package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jb361/rpn-calculator/pkg/interpreter"
)

// Transcript is a recorded calculator session: the input fed to the shell and
// the output and exit code the legacy tool produced for it.
type Transcript struct {
	Path      string
	Name      string
	Seed      int32
	LineLimit int
	Input     string
	Expect    TranscriptExpectation
}

// TranscriptExpectation lists the expected outcome. A nil Stdout or Stderr is
// not checked; an empty one must match exactly no output.
type TranscriptExpectation struct {
	Stdout []string
	Stderr []string
	Exit   int
}

// TranscriptResult is what a transcript run actually produced.
type TranscriptResult struct {
	Stdout []string
	Stderr []string
	Exit   int
}

// LoadTranscript parses and validates one transcript file.
func LoadTranscript(path string) (*Transcript, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("transcript: read %s: %w", absPath, err)
	}
	return ParseTranscript(absPath, data)
}

// ParseTranscript decodes a transcript from YAML. path is used for messages
// and as the default name.
func ParseTranscript(path string, data []byte) (*Transcript, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var raw transcriptFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("transcript: %s is empty", path)
		}
		return nil, fmt.Errorf("transcript: parse %s: %w", path, err)
	}

	t := &Transcript{
		Path:      path,
		Name:      strings.TrimSpace(raw.Name),
		Seed:      interpreter.DefaultSeed,
		LineLimit: DefaultLineLimit,
		Expect: TranscriptExpectation{
			Stdout: raw.Expect.Stdout,
			Stderr: raw.Expect.Stderr,
		},
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var issues []string
	if raw.Input == nil {
		issues = append(issues, "input must be provided")
	} else {
		t.Input = *raw.Input
	}
	if raw.Seed != nil {
		if *raw.Seed < math.MinInt32 || *raw.Seed > math.MaxInt32 {
			issues = append(issues, fmt.Sprintf("seed %d does not fit in 32 bits", *raw.Seed))
		} else {
			t.Seed = int32(*raw.Seed)
		}
	}
	if raw.LineLimit != nil {
		if *raw.LineLimit <= 0 {
			issues = append(issues, "line_limit must be positive")
		} else {
			t.LineLimit = *raw.LineLimit
		}
	}
	if raw.Expect.Exit != nil {
		if *raw.Expect.Exit < 0 || *raw.Expect.Exit > 255 {
			issues = append(issues, fmt.Sprintf("expect.exit %d is not a process exit code", *raw.Expect.Exit))
		} else {
			t.Expect.Exit = *raw.Expect.Exit
		}
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Source: "transcript " + path, Issues: issues}
	}
	return t, nil
}

// Run replays the transcript on a fresh calculator.
func (t *Transcript) Run() TranscriptResult {
	var stdout, stderr bytes.Buffer
	calc := interpreter.NewWithOptions(interpreter.Options{
		Seed:   t.Seed,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	session := NewSession(calc, t.LineLimit)
	session.Stderr = &stderr
	code := session.Run(strings.NewReader(t.Input))
	return TranscriptResult{
		Stdout: splitOutputLines(stdout.String()),
		Stderr: splitOutputLines(stderr.String()),
		Exit:   code,
	}
}

// Compare lists every way result departs from the expectation.
func (t *Transcript) Compare(result TranscriptResult) []string {
	var mismatches []string
	if t.Expect.Stdout != nil && !reflect.DeepEqual(normalizeLines(t.Expect.Stdout), result.Stdout) {
		mismatches = append(mismatches, fmt.Sprintf("stdout mismatch: expected %q, got %q", t.Expect.Stdout, result.Stdout))
	}
	if t.Expect.Stderr != nil && !reflect.DeepEqual(normalizeLines(t.Expect.Stderr), result.Stderr) {
		mismatches = append(mismatches, fmt.Sprintf("stderr mismatch: expected %q, got %q", t.Expect.Stderr, result.Stderr))
	}
	if t.Expect.Exit != result.Exit {
		mismatches = append(mismatches, fmt.Sprintf("exit code mismatch: expected %d, got %d", t.Expect.Exit, result.Exit))
	}
	return mismatches
}

// CollectTranscripts expands files and directories into a sorted list of
// transcript files. Directories are searched recursively for .yml and .yaml
// files.
func CollectTranscripts(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("transcript: resolve %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("transcript: %w", err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			switch filepath.Ext(p) {
			case ".yml", ".yaml":
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("transcript: walk %s: %w", abs, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func splitOutputLines(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return []string{}
	}
	return strings.Split(out, "\n")
}

func normalizeLines(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}

type transcriptFile struct {
	Name      string          `yaml:"name"`
	Seed      *int64          `yaml:"seed"`
	LineLimit *int            `yaml:"line_limit"`
	Input     *string         `yaml:"input"`
	Expect    expectationYAML `yaml:"expect"`
}

type expectationYAML struct {
	Stdout []string `yaml:"stdout"`
	Stderr []string `yaml:"stderr"`
	Exit   *int     `yaml:"exit"`
}
