// store/store.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package store provides the storage backends that scene documents are
// read from and written to: the local filesystem, Google Cloud Storage,
// and Amazon S3.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

var (
	ErrNotFound          = errors.New("Object not found")
	ErrUnsupportedScheme = errors.New("Unsupported storage URL scheme")
	ErrInvalidURL        = errors.New("Invalid storage URL")
)

type Backend interface {
	// List returns the names and sizes of the objects whose names start
	// with prefix.
	List(ctx context.Context, prefix string) (map[string]int64, error)
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)
	Store(ctx context.Context, path string, r io.Reader) (int64, error)
	Close() error
}

// Location is a parsed storage URL.
type Location struct {
	Scheme string // "file", "gs", or "s3"
	Bucket string // empty for files
	Path   string
}

func (l Location) String() string {
	if l.Scheme == "file" {
		return l.Path
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Path
}

// ParseLocation parses a document location. Plain paths and file:// URLs
// refer to the local filesystem; gs://bucket/key and s3://bucket/key refer
// to objects in cloud storage.
func ParseLocation(s string) (Location, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		if s == "" {
			return Location{}, fmt.Errorf("%w: empty path", ErrInvalidURL)
		}
		return Location{Scheme: "file", Path: s}, nil
	}

	switch scheme {
	case "file":
		u, err := url.Parse(s)
		if err != nil {
			return Location{}, fmt.Errorf("%s: %w: %v", s, ErrInvalidURL, err)
		}
		if u.Path == "" {
			return Location{}, fmt.Errorf("%s: %w: empty path", s, ErrInvalidURL)
		}
		return Location{Scheme: "file", Path: u.Path}, nil

	case "gs", "s3":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("%s: %w: no bucket", s, ErrInvalidURL)
		}
		return Location{Scheme: scheme, Bucket: bucket, Path: key}, nil

	default:
		return Location{}, fmt.Errorf("%s: %w", scheme, ErrUnsupportedScheme)
	}
}

// Open returns a backend for the location s along with the path of the
// object within that backend.
func Open(ctx context.Context, s string) (Backend, string, error) {
	loc, err := ParseLocation(s)
	if err != nil {
		return nil, "", err
	}

	var b Backend
	switch loc.Scheme {
	case "file":
		b = FileBackend{}
	case "gs":
		b, err = MakeGCSBackend(ctx, loc.Bucket)
	case "s3":
		b, err = MakeS3Backend(ctx, loc.Bucket)
	}
	if err != nil {
		return nil, "", err
	}
	return b, loc.Path, nil
}

// ReadAll reads the entire contents of the object at path.
func ReadAll(ctx context.Context, b Backend, path string) ([]byte, error) {
	r, err := b.OpenRead(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type CountingWriter struct {
	io.Writer
	N int64
}

func (w *CountingWriter) Write(b []byte) (int, error) {
	n, err := w.Writer.Write(b)
	w.N += int64(n)
	return n, err
}

// DryRunBackend passes reads through to another backend but discards
// writes, reporting how much would have been written.
type DryRunBackend struct {
	B Backend
}

func (d DryRunBackend) List(ctx context.Context, prefix string) (map[string]int64, error) {
	return d.B.List(ctx, prefix)
}

func (d DryRunBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	return d.B.OpenRead(ctx, path)
}

func (d DryRunBackend) Store(ctx context.Context, path string, r io.Reader) (int64, error) {
	return io.Copy(io.Discard, r)
}

func (d DryRunBackend) Close() error { return d.B.Close() }
