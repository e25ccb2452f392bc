// store/s3.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Environment variables that override the default AWS configuration.
// PLATECAD_S3_ENDPOINT allows using S3-compatible services.
const (
	S3EndpointEnv  = "PLATECAD_S3_ENDPOINT"
	S3RegionEnv    = "PLATECAD_S3_REGION"
	S3AccessKeyEnv = "PLATECAD_S3_ACCESS_KEY"
	S3SecretKeyEnv = "PLATECAD_S3_SECRET_KEY"
)

type S3Backend struct {
	client *s3.Client
	bucket string
}

func MakeS3Backend(ctx context.Context, bucket string) (*S3Backend, error) {
	var opts []func(*config.LoadOptions) error
	if region := os.Getenv(S3RegionEnv); region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if id, secret := os.Getenv(S3AccessKeyEnv), os.Getenv(S3SecretKeyEnv); id != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(id, secret, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bucket, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := os.Getenv(S3EndpointEnv); ep != "" {
			o.BaseEndpoint = aws.String(ep)
			o.UsePathStyle = true
		}
	})

	return &S3Backend{client: client, bucket: bucket}, nil
}

func (b *S3Backend) List(ctx context.Context, prefix string) (map[string]int64, error) {
	m := make(map[string]int64)
	p := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			m[aws.ToString(obj.Key)] = aws.ToInt64(obj.Size)
		}
	}
	return m, nil
}

func (b *S3Backend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
	})
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	} else if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (b *S3Backend) Store(ctx context.Context, path string, r io.Reader) (int64, error) {
	// PutObject needs a seekable body to sign the payload; documents are
	// small, so just buffer it.
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(buf),
	})
	if err != nil {
		return 0, err
	}
	return int64(len(buf)), nil
}

func (b *S3Backend) Close() error { return nil }
