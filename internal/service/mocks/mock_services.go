package mocks

import (
	"context"

	"shotapi/internal/auth"
	"shotapi/internal/model"
	"shotapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Authenticate(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

type MockScreenshotService struct {
	mock.Mock
}

func (m *MockScreenshotService) List(ctx context.Context, q service.ListQuery) (*model.ScreenshotList, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScreenshotList), args.Error(1)
}

func (m *MockScreenshotService) Get(ctx context.Context, key string) (*model.Screenshot, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Screenshot), args.Error(1)
}

func (m *MockScreenshotService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockScreenshotService) UpdateMetadata(ctx context.Context, key string, raw any) (*model.MetadataResult, error) {
	args := m.Called(ctx, key, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataResult), args.Error(1)
}

func (m *MockScreenshotService) ClearMetadata(ctx context.Context, key string) (*model.MetadataResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MetadataResult), args.Error(1)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, action, objectKey, detail string) {
	m.Called(ctx, action, objectKey, detail)
}

func (m *MockActivityService) List(ctx context.Context, limit, offset int) (*service.ActivityListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ActivityListResult), args.Error(1)
}
