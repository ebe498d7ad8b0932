package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/jb361/rpn-calculator/pkg/driver"
)

func fetchPathSuite(dir string, spec *driver.SuiteSpec) (*driver.LockedSuite, error) {
	root := filepath.Join(dir, filepath.FromSlash(spec.Dir))
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path suite %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path suite %s is not a directory", root)
	}
	checksum, err := dirChecksum(root)
	if err != nil {
		return nil, fmt.Errorf("checksum %s: %w", root, err)
	}
	return &driver.LockedSuite{
		Name:     spec.Name,
		Pin:      spec.Pin(),
		Dir:      spec.Dir,
		Version:  "local",
		Source:   "path:" + filepath.ToSlash(dir),
		Checksum: checksum,
	}, nil
}

// fetchGitSuite resolves the suite's pin in an in-memory clone and exports
// the transcripts under spec.Dir at that commit into the cache, replacing any
// earlier export of the same commit. Only the installer's reuse check skips
// this.
func (i *suiteInstaller) fetchGitSuite(spec *driver.SuiteSpec) (*driver.LockedSuite, error) {
	url := strings.TrimSpace(spec.Git)
	repo, err := git.Clone(memory.NewStorage(), nil, &git.CloneOptions{URL: url})
	if err != nil {
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(cloneRevision(spec))
	if err != nil {
		return nil, fmt.Errorf("%s not found in %s: %w", spec.Pin(), url, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree of %s: %w", hash, err)
	}
	if dir := path.Clean(spec.Dir); spec.Dir != "" && dir != "." {
		if tree, err = tree.Tree(dir); err != nil {
			return nil, fmt.Errorf("dir %q not found at %s: %w", spec.Dir, hash, err)
		}
	}

	target := gitSuiteDir(i.cacheDir, spec.Name, hash.String(), spec.Dir)
	if err := exportTree(tree, target); err != nil {
		return nil, fmt.Errorf("export %s: %w", spec.Pin(), err)
	}

	checksum, err := dirChecksum(target)
	if err != nil {
		return nil, fmt.Errorf("checksum %s: %w", target, err)
	}
	return &driver.LockedSuite{
		Name:     spec.Name,
		Pin:      spec.Pin(),
		Dir:      spec.Dir,
		Version:  hash.String(),
		Source:   "git+" + url,
		Checksum: checksum,
	}, nil
}

// cloneRevision maps a pin onto the refs a fresh clone carries: tags as
// fetched, branches as remote-tracking refs.
func cloneRevision(spec *driver.SuiteSpec) plumbing.Revision {
	switch {
	case spec.Rev != "":
		return plumbing.Revision(spec.Rev)
	case spec.Tag != "":
		return plumbing.Revision(plumbing.NewTagReferenceName(spec.Tag))
	default:
		return plumbing.Revision(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, spec.Branch))
	}
}

// exportTree writes every file of tree below target. Files are staged next to
// target and swapped in at the end, so a partial export is never picked up.
func exportTree(tree *object.Tree, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(filepath.Dir(target), ".export-*")
	if err != nil {
		return err
	}
	err = tree.Files().ForEach(func(f *object.File) error {
		contents, err := f.Contents()
		if err != nil {
			return err
		}
		dst := filepath.Join(staging, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, []byte(contents), 0o644)
	})
	if err == nil {
		err = os.RemoveAll(target)
	}
	if err == nil {
		err = os.Rename(staging, target)
	}
	if err != nil {
		_ = os.RemoveAll(staging)
	}
	return err
}

// gitSuiteDir is where the export of dir at commit lives in the cache.
func gitSuiteDir(cacheDir, name, commit, dir string) string {
	leaf := commit
	if key := cacheKey(dir); key != "" {
		leaf += "-" + key
	}
	return filepath.Join(cacheDir, "suites", driver.SanitizeName(name), leaf)
}

func cacheKey(dir string) string {
	dir = strings.Trim(path.Clean(filepath.ToSlash(dir)), "/")
	if dir == "." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			return r
		}
		return '-'
	}, dir)
}

// dirChecksum hashes the relative name and contents of every file below
// root, skipping .git.
func dirChecksum(root string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(h, "%s\x00%d\x00", filepath.ToSlash(rel), len(data))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return driver.ChecksumPrefix + hex.EncodeToString(h.Sum(nil)), nil
}
