package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/execution-hub/wifictl/internal/domain/settings"
)

// MockRepository is a mock implementation of settings.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetAll(ctx context.Context) (map[settings.Key]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[settings.Key]string), args.Error(1)
}

func (m *MockRepository) Set(ctx context.Context, key settings.Key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockRepository) Listen(ctx context.Context, fn func(key settings.Key)) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}
