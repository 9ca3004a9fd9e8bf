package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Package storage wraps the external object store that owns the screenshots.
// Implementations must avoid using local disk and rely on streaming I/O only.

var (
	// ErrNotFound is returned when the key does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrPreconditionFailed is returned when a conditional write lost a race.
	ErrPreconditionFailed = errors.New("object changed since it was read")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
// Metadata keys are lower case and carry no x-amz-meta- prefix.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	// Metadata is nil on listed objects whose backend did not report it.
	Metadata map[string]string
}

// ListOptions narrows a listing.
type ListOptions struct {
	Prefix string
	// MaxKeys caps the number of returned objects; zero means no cap.
	MaxKeys int
	// WithMetadata asks the backend to include custom metadata when it can.
	// Plain S3 listings never do; Stat the objects left with nil Metadata.
	WithMetadata bool
}

// ListResult is one page of a listing. Truncated is set when more objects
// exist beyond MaxKeys.
type ListResult struct {
	Objects   []ObjectInfo
	Truncated bool
}

// ReplaceOptions guard a metadata rewrite against concurrent writers.
type ReplaceOptions struct {
	// MatchETag, when set, makes the rewrite fail unless the current etag matches.
	MatchETag string
	// UnmodifiedSince, when set, makes the rewrite fail if the object changed after it.
	UnmodifiedSince time.Time
	// ContentType is carried over since a metadata replace resets it otherwise.
	ContentType string
}

// Storage is a reusable, S3-compatible object storage client interface.
// Methods use context and streaming readers/writers; no local disk is used.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns an object's info and custom metadata without its content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// List returns objects in key order.
	List(ctx context.Context, opt ListOptions) (ListResult, error)
	// ReplaceMetadata rewrites the object's custom metadata in place.
	ReplaceMetadata(ctx context.Context, key string, meta map[string]string, opt ReplaceOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Ping checks that the backend and bucket are reachable.
	Ping(ctx context.Context) error
}

const amzMetaPrefix = "x-amz-meta-"

// normalizeMetadata lower-cases keys and strips the x-amz-meta- prefix.
// With prefixedOnly set, keys without the prefix are standard headers and
// are dropped.
func normalizeMetadata(in map[string]string, prefixedOnly bool) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		lk := strings.ToLower(k)
		switch {
		case strings.HasPrefix(lk, amzMetaPrefix):
			out[strings.TrimPrefix(lk, amzMetaPrefix)] = v
		case !prefixedOnly:
			out[lk] = v
		}
	}
	return out
}

func copyMetadata(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
