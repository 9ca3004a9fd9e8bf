package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"shotapi/internal/metadata"
	"shotapi/internal/model"
	"shotapi/internal/storage"
	storeMocks "shotapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	key      string
	size     int
	meta     metadata.Metadata
	uploaded time.Time
}

func newMemoryService(t *testing.T, shots ...fixture) (ScreenshotService, *recordingActivity, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemory()
	for _, f := range shots {
		_, err := store.Put(context.Background(), f.key, strings.NewReader(strings.Repeat("x", f.size)), storage.PutObjectOptions{
			ContentType: "image/png",
			Metadata:    metadata.Encode(f.meta),
		})
		require.NoError(t, err)
	}
	activity := new(recordingActivity)
	svc := NewScreenshotService(store, metadata.New(metadata.DefaultLimits()), activity, ScreenshotOptions{
		PublicBaseURL: "https://ss.example.com/",
	})
	return svc, activity, store
}

func rawJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func keys(shots []model.Screenshot) []string {
	out := make([]string, len(shots))
	for i, s := range shots {
		out[i] = s.Key
	}
	return out
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test/a.png", PublicURL("https://cdn.test", "a.png"))
	assert.Equal(t, "https://cdn.test/dir/a%20b.png", PublicURL("https://cdn.test/", "dir/a b.png"))
	assert.Equal(t, "https://cdn.test/%3Fq%23.png", PublicURL("https://cdn.test", "?q#.png"))
}

func TestScreenshotService_List(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMemoryService(t,
		fixture{key: "alpha.png", size: 30, meta: metadata.Metadata{Description: "Login page", Tags: []string{"ui", "bug"}}},
		fixture{key: "beta.png", size: 10, meta: metadata.Metadata{Tags: []string{"ui"}}},
		fixture{key: "gamma.png", size: 20},
	)

	t.Run("all with tags and urls", func(t *testing.T) {
		res, err := svc.List(ctx, ListQuery{Sort: SortNameAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha.png", "beta.png", "gamma.png"}, keys(res.Screenshots))
		assert.Equal(t, 3, res.Count)
		assert.Equal(t, 3, res.Total)
		assert.False(t, res.Truncated)
		assert.Equal(t, []string{"bug", "ui"}, res.Tags)
		assert.Equal(t, "https://ss.example.com/alpha.png", res.Screenshots[0].URL)
		assert.Equal(t, []string{"ui", "bug"}, res.Screenshots[0].Metadata.Tags)
	})

	t.Run("search matches key, description and tags", func(t *testing.T) {
		res, err := svc.List(ctx, ListQuery{Query: "LOGIN", Sort: SortNameAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha.png"}, keys(res.Screenshots))

		res, err = svc.List(ctx, ListQuery{Query: "amm"})
		require.NoError(t, err)
		assert.Equal(t, []string{"gamma.png"}, keys(res.Screenshots))

		res, err = svc.List(ctx, ListQuery{Query: "u", Sort: SortNameAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha.png", "beta.png"}, keys(res.Screenshots))
	})

	t.Run("tag filter requires every tag", func(t *testing.T) {
		res, err := svc.List(ctx, ListQuery{Tags: []string{"ui", "bug"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha.png"}, keys(res.Screenshots))
		assert.Equal(t, []string{"bug", "ui"}, res.Tags)
	})

	t.Run("sort orders", func(t *testing.T) {
		cases := map[string][]string{
			SortNameDesc:     {"gamma.png", "beta.png", "alpha.png"},
			SortSizeLargest:  {"alpha.png", "gamma.png", "beta.png"},
			SortSizeSmallest: {"beta.png", "gamma.png", "alpha.png"},
		}
		for order, want := range cases {
			res, err := svc.List(ctx, ListQuery{Sort: order})
			require.NoError(t, err)
			assert.Equal(t, want, keys(res.Screenshots), order)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := svc.List(ctx, ListQuery{Sort: SortNameAsc, Page: 2, PerPage: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"gamma.png"}, keys(res.Screenshots))
		assert.Equal(t, 1, res.Count)
		assert.Equal(t, 3, res.Total)

		res, err = svc.List(ctx, ListQuery{Page: 9, PerPage: 2})
		require.NoError(t, err)
		assert.Empty(t, res.Screenshots)
		assert.Equal(t, 3, res.Total)
	})

	t.Run("unknown sort", func(t *testing.T) {
		_, err := svc.List(ctx, ListQuery{Sort: "random"})
		assert.ErrorIs(t, err, ErrInvalidSort)
	})
}

func TestScreenshotService_ListRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := new(storeMocks.MockStorage)
	older := time.Date(2025, 11, 30, 7, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	store.On("List", ctx, storage.ListOptions{MaxKeys: 2, WithMetadata: true}).Return(storage.ListResult{
		Objects: []storage.ObjectInfo{
			{Key: "old.png", LastModified: older, ETag: `"e1"`, Metadata: map[string]string{}},
			{Key: "new.png", LastModified: newer, ETag: `"e2"`, Metadata: map[string]string{}},
		},
		Truncated: true,
	}, nil)
	store.On("PresignGet", ctx, mock.Anything, 15*time.Minute).Return("https://signed", nil)

	svc := NewScreenshotService(store, metadata.New(metadata.DefaultLimits()), new(recordingActivity), ScreenshotOptions{ListMaxKeys: 2})
	res, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new.png", "old.png"}, keys(res.Screenshots))
	assert.True(t, res.Truncated)
	assert.Equal(t, "e2", res.Screenshots[0].ETag)
	assert.Equal(t, "https://signed", res.Screenshots[0].URL)
	assert.Equal(t, []string{}, res.Tags)
	store.AssertExpectations(t)
}

func TestScreenshotService_ListStorageError(t *testing.T) {
	ctx := context.Background()
	store := new(storeMocks.MockStorage)
	store.On("List", ctx, mock.Anything).Return(storage.ListResult{}, errors.New("connection refused"))

	svc := NewScreenshotService(store, metadata.New(metadata.DefaultLimits()), new(recordingActivity), ScreenshotOptions{})
	_, err := svc.List(ctx, ListQuery{})
	assert.ErrorContains(t, err, "list storage: connection refused")
}

// plainListing lists like S3 without the MinIO extension: no user metadata.
type plainListing struct {
	*storage.MemoryStorage
}

func (p plainListing) List(ctx context.Context, opt storage.ListOptions) (storage.ListResult, error) {
	opt.WithMetadata = false
	return p.MemoryStorage.List(ctx, opt)
}

func TestScreenshotService_ListStatsObjectsListedWithoutMetadata(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	for key, meta := range map[string]metadata.Metadata{
		"a.png": {Title: "hello world", Tags: []string{"work"}},
		"b.png": {Title: "other", Tags: []string{"home"}},
	} {
		_, err := store.Put(ctx, key, strings.NewReader("x"), storage.PutObjectOptions{ContentType: "image/png", Metadata: metadata.Encode(meta)})
		require.NoError(t, err)
	}
	svc := NewScreenshotService(plainListing{store}, metadata.New(metadata.DefaultLimits()), new(recordingActivity), ScreenshotOptions{})

	res, err := svc.List(ctx, ListQuery{Tags: []string{"work"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"a.png"}, keys(res.Screenshots))
	assert.Equal(t, "hello world", res.Screenshots[0].Metadata.Title)
	assert.Equal(t, []string{"home", "work"}, res.Tags)

	res, err = svc.List(ctx, ListQuery{Query: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}

func TestScreenshotService_ListStatError(t *testing.T) {
	ctx := context.Background()
	store := new(storeMocks.MockStorage)
	store.On("List", ctx, mock.Anything).Return(storage.ListResult{
		Objects: []storage.ObjectInfo{{Key: "a.png"}},
	}, nil)
	store.On("Stat", mock.Anything, "a.png").Return(storage.ObjectInfo{}, errors.New("connection reset"))

	svc := NewScreenshotService(store, metadata.New(metadata.DefaultLimits()), new(recordingActivity), ScreenshotOptions{})
	_, err := svc.List(ctx, ListQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestScreenshotService_Get(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMemoryService(t, fixture{key: "a.png", size: 5, meta: metadata.Metadata{Title: "T"}})

	shot, err := svc.Get(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", shot.Key)
	assert.Equal(t, int64(5), shot.Size)
	assert.Equal(t, metadata.Metadata{Title: "T"}, shot.Metadata)
	assert.NotEmpty(t, shot.ETag)

	_, err = svc.Get(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
}

func TestScreenshotService_Delete(t *testing.T) {
	ctx := WithActor(context.Background(), "admin")
	svc, activity, store := newMemoryService(t, fixture{key: "a.png", size: 1})
	activity.On("Record", "admin", model.ActionDelete, "a.png", "").Once()

	require.NoError(t, svc.Delete(ctx, "a.png"))
	_, err := store.Stat(ctx, "a.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "a.png"), ErrNotFound)
	activity.AssertExpectations(t)
}

func TestScreenshotService_UpdateMetadata(t *testing.T) {
	ctx := WithActor(context.Background(), "admin")

	t.Run("merges and persists", func(t *testing.T) {
		svc, activity, store := newMemoryService(t, fixture{key: "a.png", size: 1, meta: metadata.Metadata{Description: "old", Tags: []string{"x"}}})
		activity.On("Record", "admin", model.ActionMetadataUpdate, "a.png", `{"description":"old","title":"New"}`).Once()

		res, err := svc.UpdateMetadata(ctx, "a.png", rawJSON(t, `{"title":" New ","tags":[]}`))
		require.NoError(t, err)
		assert.Equal(t, "a.png", res.Key)
		assert.Equal(t, metadata.Metadata{Description: "old", Title: "New"}, res.Metadata)

		info, err := store.Stat(ctx, "a.png")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"description": "old", "title": "New"}, info.Metadata)
		assert.Equal(t, "image/png", info.ContentType)
		activity.AssertExpectations(t)
	})

	t.Run("too long description rejected before store", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		svc := NewScreenshotService(store, metadata.New(metadata.DefaultLimits()), new(recordingActivity), ScreenshotOptions{})

		_, err := svc.UpdateMetadata(ctx, "a.png", rawJSON(t, `{"description":"`+strings.Repeat("x", 600)+`"}`))
		var verr *metadata.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Errors[0], "500")
		store.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
	})

	t.Run("merged result too large", func(t *testing.T) {
		limits := metadata.DefaultLimits()
		limits.MaxBytes = 64
		store := storage.NewMemory()
		_, err := store.Put(ctx, "a.png", strings.NewReader("x"), storage.PutObjectOptions{
			Metadata: metadata.Encode(metadata.Metadata{Description: strings.Repeat("d", 40)}),
		})
		require.NoError(t, err)
		svc := NewScreenshotService(store, metadata.New(limits), new(recordingActivity), ScreenshotOptions{PublicBaseURL: "http://x"})

		_, err = svc.UpdateMetadata(ctx, "a.png", rawJSON(t, `{"title":"`+strings.Repeat("t", 30)+`"}`))
		var serr *metadata.SizeError
		require.ErrorAs(t, err, &serr)
	})

	t.Run("missing key", func(t *testing.T) {
		svc, _, _ := newMemoryService(t)
		_, err := svc.UpdateMetadata(ctx, "missing.png", rawJSON(t, `{"title":"x"}`))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent change is a conflict", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		read := storage.ObjectInfo{Key: "a.png", ETag: "e1", ContentType: "image/png", LastModified: time.Unix(100, 0)}
		store.On("Stat", ctx, "a.png").Return(read, nil)
		store.On("ReplaceMetadata", ctx, "a.png", map[string]string{"title": "x"}, storage.ReplaceOptions{
			MatchETag:       "e1",
			UnmodifiedSince: read.LastModified,
			ContentType:     "image/png",
		}).Return(storage.ObjectInfo{}, storage.ErrPreconditionFailed)

		activity := new(recordingActivity)
		svc := NewScreenshotService(store, metadata.New(metadata.DefaultLimits()), activity, ScreenshotOptions{})
		_, err := svc.UpdateMetadata(ctx, "a.png", rawJSON(t, `{"title":"x"}`))
		assert.ErrorIs(t, err, ErrConflict)
		activity.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})
}

func TestScreenshotService_ClearMetadata(t *testing.T) {
	ctx := WithActor(context.Background(), "admin")
	svc, activity, store := newMemoryService(t, fixture{key: "a.png", size: 1, meta: metadata.Metadata{Description: "d", Tags: []string{"t"}}})
	activity.On("Record", "admin", model.ActionMetadataClear, "a.png", "").Once()

	res, err := svc.ClearMetadata(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, &model.MetadataResult{Key: "a.png"}, res)

	info, err := store.Stat(ctx, "a.png")
	require.NoError(t, err)
	assert.Empty(t, info.Metadata)

	_, err = svc.ClearMetadata(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
	activity.AssertExpectations(t)
}
