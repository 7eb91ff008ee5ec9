package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

// MockTransitionRepository is a mock implementation of wifi.TransitionRepository
type MockTransitionRepository struct {
	mock.Mock
}

func (m *MockTransitionRepository) Append(ctx context.Context, t wifi.Transition) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransitionRepository) ListRecent(ctx context.Context, limit int) ([]wifi.Transition, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wifi.Transition), args.Error(1)
}

// MockImsMonitor is a mock implementation of wifi.ImsMonitor
type MockImsMonitor struct {
	mock.Mock
}

func (m *MockImsMonitor) WifiOffDeferringTime() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockImsMonitor) Register(cb wifi.ImsCallbacks) (func(), error) {
	args := m.Called(cb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
