// store/file.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores objects in the local filesystem; object paths are
// file paths.
type FileBackend struct{}

func (FileBackend) List(ctx context.Context, prefix string) (map[string]int64, error) {
	// A directory lists everything under it; otherwise prefix is matched
	// against the paths in its parent directory.
	dir, match := prefix, ""
	if fi, err := os.Stat(prefix); err != nil || !fi.IsDir() {
		dir, match = filepath.Dir(prefix), filepath.Clean(prefix)
	}

	m := make(map[string]int64)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(path, match) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		m[path] = info.Size()
		return nil
	})
	return m, err
}

func (FileBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return f, err
}

// Store writes to a temporary file in the same directory and renames it
// into place so that a failed write doesn't clobber an existing file.
func (FileBackend) Store(ctx context.Context, path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, err
	}
	if err := f.Close(); err != nil {
		return n, err
	}
	return n, os.Rename(tmp, path)
}

func (FileBackend) Close() error { return nil }
