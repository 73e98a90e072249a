// Package storage keeps export archives in S3 compatible object storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrDisabled is returned by callers that need storage when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

type ObjectInfo struct {
	Key          string     `json:"key"`
	Size         int64      `json:"size"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

// Service stores objects in a single bucket.
type Service interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Copy duplicates the object at src under dst in the same bucket.
	Copy(ctx context.Context, src, dst string) error
	DeletePrefix(ctx context.Context, prefix string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Options selects the bucket and how to reach it. An Endpoint switches to
// path-style addressing for MinIO and similar servers.
type Options struct {
	Bucket   string
	Region   string
	Endpoint string
	Profile  string
}
