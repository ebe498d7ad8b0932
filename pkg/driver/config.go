package driver

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jb361/rpn-calculator/pkg/interpreter"
)

// ConfigFileName is the file LoadConfig and FindConfig look for.
const ConfigFileName = "srpn.yml"

// DefaultLineLimit is the longest line the legacy shell accepted.
const DefaultLineLimit = 128

// ErrConfigNotFound is returned by FindConfig when no srpn.yml exists in the
// start directory or any parent.
var ErrConfigNotFound = errors.New("srpn.yml not found")

// Config represents the parsed contents of srpn.yml.
type Config struct {
	Path       string
	Seed       int32
	LineLimit  int
	Suites     map[string]*SuiteSpec
	SuiteOrder []string
}

// SuiteSpec describes where a transcript suite comes from.
type SuiteSpec struct {
	Name   string
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
	Dir    string
}

// DefaultConfig returns the settings used when no srpn.yml is present.
func DefaultConfig() *Config {
	return &Config{
		Seed:      interpreter.DefaultSeed,
		LineLimit: DefaultLineLimit,
		Suites:    map[string]*SuiteSpec{},
	}
}

// LoadConfig parses srpn.yml from disk, returning a validated config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			cfg := DefaultConfig()
			cfg.Path = absPath
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg, issues := raw.toConfig(absPath)
	if len(issues) > 0 {
		return nil, &ValidationError{Source: "config", Issues: issues}
	}
	return cfg, nil
}

// FindConfig walks from start towards the filesystem root looking for
// srpn.yml.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ConfigFileName, origin, ErrConfigNotFound)
		}
		dir = parent
	}
}

// Suite looks up a suite by sanitized or original name.
func (c *Config) Suite(name string) (*SuiteSpec, bool) {
	if c == nil {
		return nil, false
	}
	spec, ok := c.Suites[SanitizeName(name)]
	return spec, ok && spec != nil
}

// BaseDir is the directory relative suite paths are resolved against.
func (c *Config) BaseDir() string {
	if c == nil || c.Path == "" {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	return filepath.Dir(c.Path)
}

// IsGit reports whether the suite is fetched from a git repository.
func (s *SuiteSpec) IsGit() bool {
	return s != nil && s.Git != ""
}

// Pin describes what the suite is locked to: "rev:<sha>", "tag:<name>",
// "branch:<name>" for git suites and "path:<dir>" otherwise. A lock entry
// whose pin differs from the config is stale.
func (s *SuiteSpec) Pin() string {
	switch {
	case s.Git == "":
		return "path:" + s.Path
	case s.Rev != "":
		return "rev:" + s.Rev
	case s.Tag != "":
		return "tag:" + s.Tag
	case s.Branch != "":
		return "branch:" + s.Branch
	default:
		return ""
	}
}

func (s *SuiteSpec) validate() []string {
	var issues []string
	if s.Git == "" && s.Path == "" {
		issues = append(issues, "must specify git or path")
	}
	if s.Git != "" && s.Path != "" {
		issues = append(issues, "git suites cannot also specify path")
	}
	pins := 0
	for _, pin := range []string{s.Rev, s.Tag, s.Branch} {
		if pin != "" {
			pins++
		}
	}
	if s.Git == "" && pins > 0 {
		issues = append(issues, "rev, tag and branch apply only to git suites")
	}
	if s.Git != "" && pins == 0 {
		issues = append(issues, "git suites require rev, tag, or branch")
	}
	if pins > 1 {
		issues = append(issues, "only one of rev, tag, or branch may be given")
	}
	if filepath.IsAbs(s.Dir) || strings.HasPrefix(filepath.Clean(s.Dir), "..") {
		issues = append(issues, fmt.Sprintf("dir %q must stay inside the suite", s.Dir))
	}
	return issues
}

type configFile struct {
	Seed      *int64               `yaml:"seed"`
	LineLimit *int                 `yaml:"line_limit"`
	Suites    map[string]suiteYAML `yaml:"suites"`
}

type suiteYAML struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
	Dir    string `yaml:"dir"`
}

func (cf configFile) toConfig(path string) (*Config, []string) {
	cfg := DefaultConfig()
	cfg.Path = path

	var issues []string
	if cf.Seed != nil {
		if *cf.Seed < math.MinInt32 || *cf.Seed > math.MaxInt32 {
			issues = append(issues, fmt.Sprintf("seed %d does not fit in 32 bits", *cf.Seed))
		} else {
			cfg.Seed = int32(*cf.Seed)
		}
	}
	if cf.LineLimit != nil {
		if *cf.LineLimit <= 0 {
			issues = append(issues, "line_limit must be positive")
		} else {
			cfg.LineLimit = *cf.LineLimit
		}
	}

	names := make([]string, 0, len(cf.Suites))
	for name := range cf.Suites {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		raw := cf.Suites[name]
		key := SanitizeName(name)
		if key == "" {
			issues = append(issues, "suites must not use empty keys")
			continue
		}
		if _, exists := cfg.Suites[key]; exists {
			issues = append(issues, fmt.Sprintf("suite %q collides with another suite after sanitization", name))
			continue
		}
		spec := &SuiteSpec{
			Name:   key,
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Path:   strings.TrimSpace(raw.Path),
			Dir:    strings.TrimSpace(raw.Dir),
		}
		for _, issue := range spec.validate() {
			issues = append(issues, fmt.Sprintf("suites.%s: %s", name, issue))
		}
		cfg.Suites[key] = spec
		cfg.SuiteOrder = append(cfg.SuiteOrder, key)
	}
	return cfg, issues
}
