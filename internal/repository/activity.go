package repository

import (
	"context"

	"shotapi/internal/model"
)

// ActivityRepository defines data access for the audit trail using SQL queries only.
// Entries are append-only; there is no update or delete.
type ActivityRepository interface {
	// Create inserts a new entry. The caller provides ID and CreatedAt.
	Create(ctx context.Context, a *model.Activity) (*model.Activity, error)

	// List returns a page of entries, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Activity], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// NopActivityRepository drops writes and lists nothing. It stands in when no
// database is configured.
type NopActivityRepository struct{}

var _ ActivityRepository = NopActivityRepository{}

func (NopActivityRepository) Create(_ context.Context, a *model.Activity) (*model.Activity, error) {
	return a, nil
}

func (NopActivityRepository) List(_ context.Context, _ PageQuery) (*PageResult[model.Activity], error) {
	return &PageResult[model.Activity]{Items: []model.Activity{}}, nil
}
