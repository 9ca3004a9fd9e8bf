package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"shotapi/internal/config"
)

// minioStorage implements the Storage interface using an S3-compatible backend (MinIO, AWS S3, R2, etc.).
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates a new S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{client: cli, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

// Put uploads an object using streaming I/O only (no local disk).
func (m *minioStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	putOpts := minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, putOpts)
	if err != nil {
		return ObjectInfo{}, translateError(err)
	}
	lastModified := info.LastModified
	if lastModified.IsZero() {
		lastModified = time.Now().UTC()
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: lastModified,
		Metadata:     copyMetadata(opt.Metadata),
	}, nil
}

// Get downloads an object content as a ReadCloser along with basic info.
func (m *minioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, translateError(err)
	}
	// Fetch stat to populate info; avoid reading content into memory.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, translateError(err)
	}
	return obj, toObjectInfo(st, false), nil
}

// Stat is the equivalent of a HEAD request.
func (m *minioStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	st, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, translateError(err)
	}
	return toObjectInfo(st, false), nil
}

// List walks the bucket and stops one object past MaxKeys to detect truncation.
func (m *minioStorage) List(ctx context.Context, opt ListOptions) (ListResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	// Cancelling stops the listing goroutine when we leave early.
	defer cancel()

	res := ListResult{Objects: make([]ObjectInfo, 0)}
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:       opt.Prefix,
		Recursive:    true,
		WithMetadata: opt.WithMetadata,
	}) {
		if obj.Err != nil {
			return ListResult{}, translateError(obj.Err)
		}
		if opt.MaxKeys > 0 && len(res.Objects) == opt.MaxKeys {
			res.Truncated = true
			break
		}
		res.Objects = append(res.Objects, toObjectInfo(obj, true))
	}
	return res, nil
}

// ReplaceMetadata copies the object onto itself with a REPLACE metadata
// directive. The copy is conditional on the etag and modification time the
// caller read.
func (m *minioStorage) ReplaceMetadata(ctx context.Context, key string, meta map[string]string, opt ReplaceOptions) (ObjectInfo, error) {
	userMeta := copyMetadata(meta)
	if opt.ContentType != "" {
		userMeta["Content-Type"] = opt.ContentType
	}

	src := minio.CopySrcOptions{
		Bucket:    m.bucket,
		Object:    key,
		MatchETag: opt.MatchETag,
	}
	if !opt.UnmodifiedSince.IsZero() {
		src.MatchUnmodifiedSince = opt.UnmodifiedSince
	}
	dst := minio.CopyDestOptions{
		Bucket:          m.bucket,
		Object:          key,
		UserMetadata:    userMeta,
		ReplaceMetadata: true,
	}

	if _, err := m.client.CopyObject(ctx, dst, src); err != nil {
		return ObjectInfo{}, translateError(err)
	}
	return m.Stat(ctx, key)
}

// Delete removes an object by key.
func (m *minioStorage) Delete(ctx context.Context, key string) error {
	return translateError(m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}))
}

// PresignGet generates a pre-signed URL for GET with the specified expiry.
func (m *minioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Ping checks the bucket is reachable.
func (m *minioStorage) Ping(ctx context.Context) error {
	ok, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", m.bucket)
	}
	return nil
}

func toObjectInfo(st minio.ObjectInfo, listed bool) ObjectInfo {
	info := ObjectInfo{
		Key:          st.Key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
	}
	// Only the MinIO listing extension returns UserMetadata.
	if !listed || st.UserMetadata != nil {
		info.Metadata = normalizeMetadata(st.UserMetadata, listed)
	}
	return info
}

// translateError maps S3 error responses onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch {
		case resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, resp.Key)
		case resp.Code == "PreconditionFailed" || resp.StatusCode == http.StatusPreconditionFailed:
			return fmt.Errorf("%w: %s", ErrPreconditionFailed, resp.Key)
		}
	}
	return err
}
