package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shotapi/internal/logging"
	"shotapi/internal/model"
	"shotapi/internal/repository"
)

type actorKey struct{}

// WithActor stores the authenticated username on ctx.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// ActorFrom returns the username stored by WithActor, or "anonymous".
func ActorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return "anonymous"
}

// ActivityListResult is the service-level DTO for paginated activity.
type ActivityListResult struct {
	Items []model.Activity `json:"items"`
	Total int              `json:"total"`
}

// ActivityService records mutations and lists them back.
type ActivityService interface {
	// Record appends an entry. Failures are logged, never returned: the
	// audit trail must not fail the request it describes.
	Record(ctx context.Context, action, objectKey, detail string)

	// List returns entries newest first using limit/offset.
	List(ctx context.Context, limit, offset int) (*ActivityListResult, error)
}

type activityService struct {
	repo repository.ActivityRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewActivityService constructs an ActivityService over repo.
func NewActivityService(repo repository.ActivityRepository, log *zap.Logger) ActivityService {
	return &activityService{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *activityService) Record(ctx context.Context, action, objectKey, detail string) {
	a := &model.Activity{
		ID:        uuid.New().String(),
		Action:    action,
		Actor:     ActorFrom(ctx),
		ObjectKey: objectKey,
		Detail:    detail,
		CreatedAt: s.now(),
	}
	if _, err := s.repo.Create(ctx, a); err != nil {
		s.log.Warn("activity record failed",
			zap.String("component", "activity"),
			zap.String("action", action),
			zap.String("object_key", objectKey),
			logging.Trace(ctx),
			zap.Error(err),
		)
	}
}

func (s *activityService) List(ctx context.Context, limit, offset int) (*ActivityListResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ActivityListResult{Items: res.Items, Total: res.Total}, nil
}
