package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	info ObjectInfo
}

// MemoryStorage keeps objects in a map guarded by an RWMutex. It backs local
// development and tests; nothing survives a restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]*memoryObject
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]*memoryObject),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SampleScreenshots are loaded by Seed for local development.
var SampleScreenshots = []struct {
	Key      string
	Size     int
	Uploaded string
	ETag     string
}{
	{Key: "mock-123-ies.png", Size: 242370, Uploaded: "2025-11-30T07:02:11.430Z", ETag: "c12f683797fae585ebe6365645bd8ba5"},
	{Key: "mock-456-s2v.png", Size: 162488, Uploaded: "2025-11-30T13:59:54.305Z", ETag: "6b90173de84b0a7cf8b060c42c79ac9f"},
	{Key: "mock-678-sj4.png", Size: 191211, Uploaded: "2025-12-14T14:19:33.278Z", ETag: "306b679d1ba3cd5256bd6f5ddca13b01"},
}

// Seed fills the store with SampleScreenshots. Content is zero bytes of the
// listed size; the etags are the listed ones, not content hashes.
func (m *MemoryStorage) Seed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range SampleScreenshots {
		uploaded, err := time.Parse(time.RFC3339Nano, s.Uploaded)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.Key, err)
		}
		m.objects[s.Key] = &memoryObject{
			data: make([]byte, s.Size),
			info: ObjectInfo{
				Key:          s.Key,
				Size:         int64(s.Size),
				ETag:         s.ETag,
				ContentType:  "image/png",
				LastModified: uploaded,
				Metadata:     map[string]string{},
			},
		}
	}
	return nil
}

func (m *MemoryStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("read object body: %w", err)
	}

	info := ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ETag:         etagOf(data),
		ContentType:  opt.ContentType,
		LastModified: m.now(),
		Metadata:     normalizeMetadata(opt.Metadata, false),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = &memoryObject{data: data, info: info}
	return cloneInfo(info), nil
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), cloneInfo(obj.info), nil
}

func (m *MemoryStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return cloneInfo(obj.info), nil
}

func (m *MemoryStorage) List(ctx context.Context, opt ListOptions) (ListResult, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, opt.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	res := ListResult{Objects: make([]ObjectInfo, 0, len(keys))}
	for _, k := range keys {
		if opt.MaxKeys > 0 && len(res.Objects) == opt.MaxKeys {
			res.Truncated = true
			break
		}
		info := cloneInfo(m.objects[k].info)
		if !opt.WithMetadata {
			info.Metadata = nil
		}
		res.Objects = append(res.Objects, info)
	}
	m.mu.RUnlock()
	return res, nil
}

// ReplaceMetadata checks the preconditions and swaps the metadata under the
// write lock. The etag is content based and stays put; LastModified moves.
func (m *MemoryStorage) ReplaceMetadata(ctx context.Context, key string, meta map[string]string, opt ReplaceOptions) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if opt.MatchETag != "" && opt.MatchETag != obj.info.ETag {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrPreconditionFailed, key)
	}
	if !opt.UnmodifiedSince.IsZero() && obj.info.LastModified.After(opt.UnmodifiedSince) {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrPreconditionFailed, key)
	}

	obj.info.Metadata = normalizeMetadata(meta, false)
	if opt.ContentType != "" {
		obj.info.ContentType = opt.ContentType
	}
	now := m.now()
	if !now.After(obj.info.LastModified) {
		now = obj.info.LastModified.Add(time.Nanosecond)
	}
	obj.info.LastModified = now
	return cloneInfo(obj.info), nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// PresignGet returns a memory:// URL; there is no server to sign for.
func (m *MemoryStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	u := url.URL{Scheme: "memory", Path: "/" + key}
	q := url.Values{}
	q.Set("expires", m.now().Add(expiry).Format(time.RFC3339))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func etagOf(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func cloneInfo(in ObjectInfo) ObjectInfo {
	out := in
	out.Metadata = copyMetadata(in.Metadata)
	return out
}
