package mocks

import (
	"context"

	"shotapi/internal/model"
	"shotapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, a *model.Activity) (*model.Activity, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Activity), args.Error(1)
}

func (m *MockActivityRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Activity], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Activity]), args.Error(1)
}
