package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shotapi/internal/metadata"
	"shotapi/internal/model"
	"shotapi/internal/storage"
)

var (
	ErrKeyRequired = errors.New("screenshot key is required")
	ErrNotFound    = errors.New("screenshot not found")
	ErrConflict    = errors.New("screenshot was modified concurrently")
	ErrInvalidSort = errors.New("invalid sort order")
)

// Sort orders accepted by List.
const (
	SortRecent       = "recent"
	SortOldest       = "oldest"
	SortNameAsc      = "name-asc"
	SortNameDesc     = "name-desc"
	SortSizeLargest  = "size-largest"
	SortSizeSmallest = "size-smallest"
)

const maxPerPage = 100

// statConcurrency bounds the Stat calls List makes for metadata-less objects.
const statConcurrency = 8

// ListQuery narrows and orders a listing. Zero values mean no search, no
// tag filter, most recent first and no pagination.
type ListQuery struct {
	Query   string
	Tags    []string
	Sort    string
	Page    int
	PerPage int
}

// ScreenshotOptions tune URL building and listing.
type ScreenshotOptions struct {
	// PublicBaseURL, when set, prefixes the escaped key to form the public URL.
	PublicBaseURL string
	// PresignTTL is used for presigned URLs when no public base is set.
	PresignTTL  time.Duration
	ListMaxKeys int
}

// ScreenshotService defines the use cases around stored screenshots.
type ScreenshotService interface {
	// List returns the stored screenshots after search, tag filter, sort and pagination.
	List(ctx context.Context, q ListQuery) (*model.ScreenshotList, error)

	// Get returns a single screenshot with its decoded metadata.
	Get(ctx context.Context, key string) (*model.Screenshot, error)

	// Delete removes a screenshot. A missing key is ErrNotFound.
	Delete(ctx context.Context, key string) error

	// UpdateMetadata validates raw, merges it over the stored metadata and
	// writes the result back conditionally on the version it read.
	UpdateMetadata(ctx context.Context, key string, raw any) (*model.MetadataResult, error)

	// ClearMetadata removes every custom metadata field.
	ClearMetadata(ctx context.Context, key string) (*model.MetadataResult, error)
}

type screenshotService struct {
	store    storage.Storage
	pipeline *metadata.Pipeline
	activity ActivityService
	opts     ScreenshotOptions
}

// NewScreenshotService constructs a new ScreenshotService.
func NewScreenshotService(store storage.Storage, pipeline *metadata.Pipeline, activity ActivityService, opts ScreenshotOptions) ScreenshotService {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}
	return &screenshotService{store: store, pipeline: pipeline, activity: activity, opts: opts}
}

func (s *screenshotService) List(ctx context.Context, q ListQuery) (*model.ScreenshotList, error) {
	less, err := sortFunc(q.Sort)
	if err != nil {
		return nil, err
	}

	res, err := s.store.List(ctx, storage.ListOptions{MaxKeys: s.opts.ListMaxKeys, WithMetadata: true})
	if err != nil {
		return nil, fmt.Errorf("list storage: %w", err)
	}
	if err := s.fillMetadata(ctx, res.Objects); err != nil {
		return nil, err
	}

	all := make([]model.Screenshot, 0, len(res.Objects))
	for _, obj := range res.Objects {
		shot, err := s.toScreenshot(ctx, obj)
		if err != nil {
			return nil, err
		}
		all = append(all, shot)
	}

	filtered := filterScreenshots(all, q.Query, q.Tags)
	sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[i], filtered[j]) })

	page, perPage := q.Page, q.PerPage
	if perPage < 0 {
		perPage = 0
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page < 1 {
		page = 1
	}
	items := filtered
	if perPage > 0 {
		start := (page - 1) * perPage
		if start > len(filtered) {
			start = len(filtered)
		}
		end := start + perPage
		if end > len(filtered) {
			end = len(filtered)
		}
		items = filtered[start:end]
	}

	return &model.ScreenshotList{
		Screenshots: items,
		Count:       len(items),
		Total:       len(filtered),
		Page:        page,
		PerPage:     perPage,
		Truncated:   res.Truncated,
		Tags:        allTags(all),
	}, nil
}

// fillMetadata stats every listed object the backend returned without
// metadata. Objects deleted since the listing keep empty metadata.
func (s *screenshotService) fillMetadata(ctx context.Context, objs []storage.ObjectInfo) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)
	for i := range objs {
		if objs[i].Metadata != nil {
			continue
		}
		obj := &objs[i]
		g.Go(func() error {
			info, err := s.store.Stat(gctx, obj.Key)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				obj.Metadata = map[string]string{}
				return nil
			case err != nil:
				return fmt.Errorf("stat %s: %w", obj.Key, err)
			}
			obj.Metadata = info.Metadata
			if obj.Metadata == nil {
				obj.Metadata = map[string]string{}
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *screenshotService) Get(ctx context.Context, key string) (*model.Screenshot, error) {
	info, err := s.stat(ctx, key)
	if err != nil {
		return nil, err
	}
	shot, err := s.toScreenshot(ctx, info)
	if err != nil {
		return nil, err
	}
	return &shot, nil
}

// Delete heads the object first so a missing key is reported rather than
// silently succeeding.
func (s *screenshotService) Delete(ctx context.Context, key string) error {
	if _, err := s.stat(ctx, key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	s.activity.Record(ctx, model.ActionDelete, key, "")
	return nil
}

func (s *screenshotService) UpdateMetadata(ctx context.Context, key string, raw any) (*model.MetadataResult, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	// Shape and incoming size are checked before touching the store.
	if _, err := s.pipeline.Apply(metadata.Metadata{}, raw); err != nil {
		return nil, err
	}

	info, err := s.stat(ctx, key)
	if err != nil {
		return nil, err
	}

	merged, err := s.pipeline.Apply(metadata.Decode(info.Metadata), raw)
	if err != nil {
		return nil, err
	}

	encoded := metadata.Encode(merged)
	if err := s.replace(ctx, info, encoded); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, model.ActionMetadataUpdate, key, detailJSON(encoded))
	return &model.MetadataResult{Key: key, Metadata: merged}, nil
}

func (s *screenshotService) ClearMetadata(ctx context.Context, key string) (*model.MetadataResult, error) {
	info, err := s.stat(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.replace(ctx, info, map[string]string{}); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, model.ActionMetadataClear, key, "")
	return &model.MetadataResult{Key: key, Metadata: metadata.Metadata{}}, nil
}

func (s *screenshotService) stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	if key == "" {
		return storage.ObjectInfo{}, ErrKeyRequired
	}
	info, err := s.store.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ObjectInfo{}, ErrNotFound
		}
		return storage.ObjectInfo{}, fmt.Errorf("stat storage: %w", err)
	}
	return info, nil
}

// replace rewrites metadata only if the object is still the version read by stat.
func (s *screenshotService) replace(ctx context.Context, info storage.ObjectInfo, encoded map[string]string) error {
	_, err := s.store.ReplaceMetadata(ctx, info.Key, encoded, storage.ReplaceOptions{
		MatchETag:       info.ETag,
		UnmodifiedSince: info.LastModified,
		ContentType:     info.ContentType,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrPreconditionFailed):
		return ErrConflict
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("replace metadata: %w", err)
	}
}

func (s *screenshotService) toScreenshot(ctx context.Context, info storage.ObjectInfo) (model.Screenshot, error) {
	u, err := s.publicURL(ctx, info.Key)
	if err != nil {
		return model.Screenshot{}, err
	}
	return model.Screenshot{
		Key:      info.Key,
		Size:     info.Size,
		Uploaded: info.LastModified,
		ETag:     strings.Trim(info.ETag, `"`),
		URL:      u,
		Metadata: metadata.Decode(info.Metadata),
	}, nil
}

func (s *screenshotService) publicURL(ctx context.Context, key string) (string, error) {
	if s.opts.PublicBaseURL != "" {
		return PublicURL(s.opts.PublicBaseURL, key), nil
	}
	u, err := s.store.PresignGet(ctx, key, s.opts.PresignTTL)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u, nil
}

// PublicURL joins base and key, escaping each path segment of the key.
func PublicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

func sortFunc(order string) (func(a, b model.Screenshot) bool, error) {
	switch order {
	case "", SortRecent:
		return func(a, b model.Screenshot) bool { return a.Uploaded.After(b.Uploaded) }, nil
	case SortOldest:
		return func(a, b model.Screenshot) bool { return a.Uploaded.Before(b.Uploaded) }, nil
	case SortNameAsc:
		return func(a, b model.Screenshot) bool { return a.Key < b.Key }, nil
	case SortNameDesc:
		return func(a, b model.Screenshot) bool { return a.Key > b.Key }, nil
	case SortSizeLargest:
		return func(a, b model.Screenshot) bool { return a.Size > b.Size }, nil
	case SortSizeSmallest:
		return func(a, b model.Screenshot) bool { return a.Size < b.Size }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, order)
	}
}

// filterScreenshots keeps shots whose key, title, description or any tag
// contains query (case-insensitive) and that carry every tag in tags.
func filterScreenshots(all []model.Screenshot, query string, tags []string) []model.Screenshot {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Screenshot, 0, len(all))
	for _, shot := range all {
		if query != "" && !matchesQuery(shot, query) {
			continue
		}
		if !hasAllTags(shot.Metadata, tags) {
			continue
		}
		out = append(out, shot)
	}
	return out
}

func matchesQuery(shot model.Screenshot, query string) bool {
	if strings.Contains(strings.ToLower(shot.Key), query) ||
		strings.Contains(strings.ToLower(shot.Metadata.Title), query) ||
		strings.Contains(strings.ToLower(shot.Metadata.Description), query) {
		return true
	}
	for _, tag := range shot.Metadata.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func hasAllTags(m metadata.Metadata, tags []string) bool {
	for _, tag := range tags {
		if !m.HasTag(tag) {
			return false
		}
	}
	return true
}

func allTags(shots []model.Screenshot) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, shot := range shots {
		for _, tag := range shot.Metadata.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// detailJSON renders the stored map for the audit trail; keys come out sorted.
func detailJSON(encoded map[string]string) string {
	b, err := json.Marshal(encoded)
	if err != nil {
		return ""
	}
	return string(b)
}
