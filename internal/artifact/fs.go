package artifact

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSStore keeps artifacts on the local filesystem, one directory per
// artifact name under BaseDir.
type FSStore struct {
	BaseDir string
}

func NewFSStore(baseDir string) *FSStore {
	return &FSStore{BaseDir: baseDir}
}

func (s *FSStore) Upload(ctx context.Context, name, dir string) error {
	if err := validName(name); err != nil {
		return err
	}
	dst := filepath.Join(s.BaseDir, name)

	// overwrite semantics: drop whatever a previous run published
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clear previous artifact: %w", err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func (s *FSStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *FSStore) Files(ctx context.Context, name string) ([]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	root := filepath.Join(s.BaseDir, name)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *FSStore) Open(ctx context.Context, name, path string) (io.ReadCloser, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid artifact path %q", path)
	}
	f, err := os.Open(filepath.Join(s.BaseDir, name, clean))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
