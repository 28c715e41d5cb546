// Package checkout materializes the triggering commit into a job workspace.
package checkout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// GitProvider checks out a commit with the git CLI.
type GitProvider struct{}

func NewGitProvider() *GitProvider {
	return &GitProvider{}
}

// Checkout clones the repo into dst and pins it to the pushed commit.
// Each job gets its own clean clone.
func (g *GitProvider) Checkout(ctx context.Context, repo, branch, commit, dst string) error {
	if err := runGit(ctx, "", "clone", "--branch", branch, "--single-branch", repo, dst); err != nil {
		return fmt.Errorf("clone %s: %w", repo, err)
	}
	if commit != "" {
		if err := runGit(ctx, dst, "checkout", "--detach", commit); err != nil {
			return fmt.Errorf("checkout %s: %w", commit, err)
		}
	}
	return nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %v: %v: %s", args, err, out.String())
	}
	return nil
}

// DirProvider copies a local source tree instead of cloning. Used by
// the CLI for local runs and by tests.
type DirProvider struct{}

func NewDirProvider() *DirProvider {
	return &DirProvider{}
}

func (d *DirProvider) Checkout(ctx context.Context, repo, branch, commit, dst string) error {
	info, err := os.Stat(repo)
	if err != nil {
		return fmt.Errorf("source dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %q is not a directory", repo)
	}
	return copyTree(repo, dst)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		fi, err := entry.Info()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}
