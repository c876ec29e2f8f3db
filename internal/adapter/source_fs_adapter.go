// Package adapter contains infrastructure adapters for the stackmut CLI.
package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "gooze.dev/pkg/stackmut/internal/model"
)

// ListingSuffix marks the files source discovery picks up.
const ListingSuffix = ".listing.yaml"

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning listings. It hides direct `os` access so the workflow
// logic can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Get resolves Go-style path patterns into listing sources, skipping paths
	// that match any exclude regex.
	Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// HashFile returns the SHA-256 fingerprint of the file at path.
	HashFile(ctx context.Context, path m.Path) (string, error)

	// CreateTempDir creates a temporary directory for one mutant.
	CreateTempDir(ctx context.Context, pattern string) (m.Path, error)

	// RemoveAll removes a directory and all its contents.
	RemoveAll(ctx context.Context, path m.Path) error

	// WriteFile writes content to a file with the given permissions.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// LocalSourceFSAdapter implements SourceFSAdapter on the local filesystem.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get resolves path patterns: "dir/..." scans recursively, "dir" scans only
// that directory and a file path is taken as is. No paths means "./...".
func (a *LocalSourceFSAdapter) Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error) {
	if len(paths) == 0 {
		paths = []m.Path{"./..."}
	}

	excludes, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)

	var sources []m.Source

	for _, pattern := range paths {
		root, recursive := splitPattern(string(pattern))

		files, err := a.listingFiles(ctx, root, recursive)
		if err != nil {
			return nil, err
		}

		for _, file := range files {
			if seen[file] || isExcluded(file, excludes) {
				continue
			}

			seen[file] = true

			source, err := a.newSource(ctx, file)
			if err != nil {
				return nil, err
			}

			sources = append(sources, source)
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Origin.FullPath < sources[j].Origin.FullPath
	})

	return sources, nil
}

func splitPattern(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}

	if strings.HasSuffix(pattern, "/...") {
		root := strings.TrimSuffix(pattern, "/...")
		if root == "" {
			root = "/"
		}

		return root, true
	}

	return pattern, false
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		out = append(out, re)
	}

	return out, nil
}

func isExcluded(path string, excludes []*regexp.Regexp) bool {
	for _, re := range excludes {
		if re.MatchString(path) || re.MatchString(filepath.ToSlash(path)) {
			return true
		}
	}

	return false
}

func (a *LocalSourceFSAdapter) listingFiles(ctx context.Context, root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path %s: %w", root, err)
	}

	if !info.IsDir() {
		return []string{filepath.Clean(root)}, nil
	}

	var files []string

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path == root {
				return nil
			}

			if !recursive || skipDir(d.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasSuffix(d.Name(), ListingSuffix) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

func skipDir(name string) bool {
	return name == ".git" || name == "vendor" || name == "node_modules" || strings.HasPrefix(name, ".stackmut")
}

func (a *LocalSourceFSAdapter) newSource(ctx context.Context, path string) (m.Source, error) {
	hash, err := a.HashFile(ctx, m.Path(path))
	if err != nil {
		return m.Source{}, fmt.Errorf("hash %s: %w", path, err)
	}

	full, err := filepath.Abs(path)
	if err != nil {
		return m.Source{}, err
	}

	return m.Source{
		Origin: &m.File{
			ShortPath: m.Path(filepath.Clean(path)),
			FullPath:  m.Path(full),
			Hash:      hash,
		},
	}, nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(ctx context.Context, path m.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// #nosec G304 - path comes from source discovery
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// CreateTempDir creates a temporary directory.
func (a *LocalSourceFSAdapter) CreateTempDir(ctx context.Context, pattern string) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}

	return m.Path(tmpDir), nil
}

// RemoveAll removes a directory and all its contents. It runs even when ctx is
// done so temporary directories are not leaked on cancellation.
func (a *LocalSourceFSAdapter) RemoveAll(_ context.Context, path m.Path) error {
	return os.RemoveAll(string(path))
}

// WriteFile writes content to a file, creating parent directories.
func (a *LocalSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
