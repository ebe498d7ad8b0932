package driver

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockFileName sits next to srpn.yml and pins fetched suites.
const LockFileName = "srpn.lock"

// ChecksumPrefix starts every suite checksum recorded in srpn.lock.
const ChecksumPrefix = "sha256:"

// Lockfile models the srpn.lock contents.
type Lockfile struct {
	Path      string
	Generated string
	Tool      string
	Suites    []*LockedSuite
}

// LockedSuite records how one suite was resolved. Pin and Dir repeat the
// srpn.yml request so a changed request can be told apart from a locked one.
type LockedSuite struct {
	Name     string
	Pin      string
	Dir      string
	Version  string
	Source   string
	Checksum string
}

// NewLockfile constructs an empty lockfile stamped with tool.
func NewLockfile(tool string) *Lockfile {
	return &Lockfile{
		Tool:   strings.TrimSpace(tool),
		Suites: []*LockedSuite{},
	}
}

// LoadLockfile reads and validates srpn.lock. A missing file is reported
// with an error matching os.ErrNotExist.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, errors.New("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	var raw lockfileDisk
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	if issues := lock.validate(); len(issues) > 0 {
		return nil, &ValidationError{Source: "lockfile " + abs, Issues: issues}
	}
	return lock, nil
}

// WriteLockfile stamps, sorts and saves lock to path, or to lock.Path when
// path is empty. The file is replaced atomically.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return errors.New("lockfile: nil lockfile")
	}
	if path == "" {
		path = lock.Path
	}
	if path == "" {
		return errors.New("lockfile: missing path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	lock.Path = abs
	lock.Generated = time.Now().UTC().Format(time.RFC3339)
	lock.normalize()
	if issues := lock.validate(); len(issues) > 0 {
		return &ValidationError{Source: "lockfile " + abs, Issues: issues}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+LockFileName+"-*")
	if err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	_, werr := tmp.Write(buf.Bytes())
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the locked entry for name.
func (l *Lockfile) Find(name string) *LockedSuite {
	if l == nil {
		return nil
	}
	key := SanitizeName(name)
	for _, suite := range l.Suites {
		if suite != nil && suite.Name == key {
			return suite
		}
	}
	return nil
}

// Put replaces or adds an entry and reports whether anything changed.
func (l *Lockfile) Put(entry *LockedSuite) bool {
	if l == nil || entry == nil {
		return false
	}
	for i, suite := range l.Suites {
		if suite != nil && suite.Name == entry.Name {
			if *suite == *entry {
				return false
			}
			l.Suites[i] = entry
			return true
		}
	}
	l.Suites = append(l.Suites, entry)
	return true
}

// Retain drops every entry whose suite is not in names and returns the
// dropped names.
func (l *Lockfile) Retain(names []string) []string {
	if l == nil {
		return nil
	}
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[SanitizeName(name)] = true
	}
	var dropped []string
	kept := l.Suites[:0]
	for _, suite := range l.Suites {
		if suite == nil {
			continue
		}
		if !keep[suite.Name] {
			dropped = append(dropped, suite.Name)
			continue
		}
		kept = append(kept, suite)
	}
	l.Suites = kept
	return dropped
}

func (l *Lockfile) normalize() {
	l.Tool = strings.TrimSpace(l.Tool)
	kept := l.Suites[:0]
	for _, suite := range l.Suites {
		if suite == nil {
			continue
		}
		suite.Name = SanitizeName(suite.Name)
		suite.Pin = strings.TrimSpace(suite.Pin)
		suite.Dir = strings.TrimSpace(suite.Dir)
		suite.Version = strings.TrimSpace(suite.Version)
		suite.Source = strings.TrimSpace(suite.Source)
		suite.Checksum = strings.TrimSpace(suite.Checksum)
		kept = append(kept, suite)
	}
	l.Suites = kept
	sort.SliceStable(l.Suites, func(i, j int) bool {
		return l.Suites[i].Name < l.Suites[j].Name
	})
}

func (l *Lockfile) validate() []string {
	var issues []string
	seen := make(map[string]bool, len(l.Suites))
	for i, suite := range l.Suites {
		label := suite.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			issues = append(issues, fmt.Sprintf("suites[%d]: name is required", i))
		} else if seen[suite.Name] {
			issues = append(issues, fmt.Sprintf("suite %s is locked twice", suite.Name))
		}
		seen[suite.Name] = true

		if suite.Version == "" {
			issues = append(issues, fmt.Sprintf("suite %s: version is required", label))
		}
		switch {
		case strings.HasPrefix(suite.Source, "git+"):
			if strings.HasPrefix(suite.Pin, "path:") || suite.Pin == "" {
				issues = append(issues, fmt.Sprintf("suite %s: git source needs a rev, tag or branch pin", label))
			}
		case strings.HasPrefix(suite.Source, "path:"):
			if !strings.HasPrefix(suite.Pin, "path:") {
				issues = append(issues, fmt.Sprintf("suite %s: path source needs a path pin", label))
			}
		default:
			issues = append(issues, fmt.Sprintf("suite %s: unknown source %q", label, suite.Source))
		}
		if !validChecksum(suite.Checksum) {
			issues = append(issues, fmt.Sprintf("suite %s: checksum %q is not %s<64 hex digits>", label, suite.Checksum, ChecksumPrefix))
		}
	}
	return issues
}

func validChecksum(sum string) bool {
	digest, ok := strings.CutPrefix(sum, ChecksumPrefix)
	if !ok || len(digest) != 64 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

func (l *Lockfile) toDisk() lockfileDisk {
	suites := make([]lockfileSuite, 0, len(l.Suites))
	for _, suite := range l.Suites {
		suites = append(suites, lockfileSuite(*suite))
	}
	return lockfileDisk{
		Generated: l.Generated,
		Tool:      l.Tool,
		Suites:    suites,
	}
}

type lockfileDisk struct {
	Generated string          `yaml:"generated"`
	Tool      string          `yaml:"tool"`
	Suites    []lockfileSuite `yaml:"suites"`
}

type lockfileSuite struct {
	Name     string `yaml:"name"`
	Pin      string `yaml:"pin"`
	Dir      string `yaml:"dir,omitempty"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Suites:    make([]*LockedSuite, 0, len(d.Suites)),
	}
	for _, suite := range d.Suites {
		entry := LockedSuite(suite)
		lock.Suites = append(lock.Suites, &entry)
	}
	lock.normalize()
	return lock
}
