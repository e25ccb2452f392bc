// store/cache.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachingBackend keeps the contents of recently read objects in memory so
// that reverting a document or reopening it doesn't go back to the
// network. Entries expire after a while in case the object is changed by
// someone else; writes through the CachingBackend update the cache.
type CachingBackend struct {
	B     Backend
	cache *expirable.LRU[string, []byte]
}

func NewCachingBackend(b Backend, size int, ttl time.Duration) *CachingBackend {
	return &CachingBackend{
		B:     b,
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (c *CachingBackend) List(ctx context.Context, prefix string) (map[string]int64, error) {
	return c.B.List(ctx, prefix)
}

func (c *CachingBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	if b, ok := c.cache.Get(path); ok {
		return io.NopCloser(bytes.NewReader(b)), nil
	}

	b, err := ReadAll(ctx, c.B, path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(path, b)
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (c *CachingBackend) Store(ctx context.Context, path string, r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	n, err := c.B.Store(ctx, path, bytes.NewReader(b))
	if err != nil {
		c.cache.Remove(path)
		return n, err
	}
	c.cache.Add(path, b)
	return n, nil
}

// Cached reports whether the contents of path are currently cached.
func (c *CachingBackend) Cached(path string) bool {
	return c.cache.Contains(path)
}

func (c *CachingBackend) Close() error {
	c.cache.Purge()
	return c.B.Close()
}
