package corpus

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// skipDirs are never descended into by the filesystem walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// Discover expands paths into the readable input files they name. Files are
// kept as given when their format is known; directories are listed with git
// when they sit inside a repository (so .gitignore is honored) and walked
// otherwise.
func Discover(paths ...string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("corpus: %w", err)
		}
		if !info.IsDir() {
			if _, ok := FormatForFile(p); !ok {
				return nil, fmt.Errorf("corpus: %s: unrecognized file type", p)
			}
			add(filepath.Clean(p))
			continue
		}
		found, err := gitListFiles(p)
		if err != nil {
			found, err = walkListFiles(p)
			if err != nil {
				return nil, err
			}
		}
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

// gitListFiles lists tracked and untracked-but-not-ignored files under root.
func gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p := filepath.Join(root, line)
		if _, ok := FormatForFile(p); ok {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// walkListFiles skips hidden directories and the entries of skipDirs.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := FormatForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
