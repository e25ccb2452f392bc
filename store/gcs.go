// store/gcs.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSCredentialsEnv names the environment variable that may hold service
// account credentials JSON for Google Cloud Storage. If it's unset,
// application default credentials are used.
const GCSCredentialsEnv = "PLATECAD_GCS_CREDENTIALS"

type GCSBackend struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func MakeGCSBackend(ctx context.Context, bucketName string) (*GCSBackend, error) {
	var opts []option.ClientOption
	if creds := os.Getenv(GCSCredentialsEnv); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bucketName, err)
	}

	return &GCSBackend{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (g *GCSBackend) List(ctx context.Context, prefix string) (map[string]int64, error) {
	query := storage.Query{
		Projection: storage.ProjectionNoACL,
		Prefix:     prefix,
	}

	m := make(map[string]int64)
	it := g.bucket.Objects(ctx, &query)
	for {
		if obj, err := it.Next(); err == iterator.Done {
			break
		} else if err != nil {
			return nil, err
		} else {
			m[obj.Name] = obj.Size
		}
	}
	return m, nil
}

func (g *GCSBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := g.bucket.Object(path).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return r, err
}

func (g *GCSBackend) Store(ctx context.Context, path string, r io.Reader) (int64, error) {
	objw := g.bucket.Object(path).NewWriter(ctx)
	n, err := io.Copy(objw, r)
	if err != nil {
		objw.Close()
		return n, err
	}
	return n, objw.Close()
}

func (g *GCSBackend) Close() error { return g.client.Close() }
