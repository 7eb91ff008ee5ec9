package mocks

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

// MockOsuNetwork is a mock implementation of provisioning.OsuNetwork
type MockOsuNetwork struct {
	mock.Mock
}

func (m *MockOsuNetwork) SetCallbacks(cb provisioning.NetworkCallbacks) {
	m.Called(cb)
}

func (m *MockOsuNetwork) Connect(ssid, nai string) bool {
	args := m.Called(ssid, nai)
	return args.Bool(0)
}

func (m *MockOsuNetwork) Disconnect() {
	m.Called()
}

// MockOsuServer is a mock implementation of provisioning.OsuServer
type MockOsuServer struct {
	mock.Mock
}

func (m *MockOsuServer) SetCallbacks(cb provisioning.ServerCallbacks) {
	m.Called(cb)
}

func (m *MockOsuServer) CanValidateServer() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockOsuServer) Connect(server *url.URL, network string, session int) bool {
	args := m.Called(server, network, session)
	return args.Bool(0)
}

func (m *MockOsuServer) ValidateProvider(language, friendlyName string) bool {
	args := m.Called(language, friendlyName)
	return args.Bool(0)
}

func (m *MockOsuServer) ExchangeSoapMessage(req provisioning.Request) bool {
	args := m.Called(req)
	return args.Bool(0)
}

func (m *MockOsuServer) RetrieveTrustRootCerts(roots map[provisioning.TrustCertType][]provisioning.TrustRoot) bool {
	args := m.Called(roots)
	return args.Bool(0)
}

func (m *MockOsuServer) Cleanup() {
	m.Called()
}

// MockRedirectListener is a mock implementation of provisioning.RedirectListener
type MockRedirectListener struct {
	mock.Mock
}

func (m *MockRedirectListener) Start(cb provisioning.RedirectCallbacks) error {
	args := m.Called(cb)
	return args.Error(0)
}

func (m *MockRedirectListener) URL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRedirectListener) Stop() {
	m.Called()
}

// MockLoginLauncher is a mock implementation of provisioning.LoginLauncher
type MockLoginLauncher struct {
	mock.Mock
}

func (m *MockLoginLauncher) Launch(ctx context.Context, req provisioning.LoginRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockMoParser is a mock implementation of provisioning.MoParser
type MockMoParser struct {
	mock.Mock
}

func (m *MockMoParser) ParsePPSMO(text string) (*provisioning.PasspointConfig, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provisioning.PasspointConfig), args.Error(1)
}

// MockConfigRepository is a mock implementation of provisioning.ConfigRepository
type MockConfigRepository struct {
	mock.Mock
}

func (m *MockConfigRepository) AddOrUpdate(ctx context.Context, uid int, cfg *provisioning.PasspointConfig) error {
	args := m.Called(ctx, uid, cfg)
	return args.Error(0)
}

func (m *MockConfigRepository) List(ctx context.Context) ([]*provisioning.PasspointConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*provisioning.PasspointConfig), args.Error(1)
}

// MockCallback is a mock implementation of provisioning.Callback
type MockCallback struct {
	mock.Mock
}

func (m *MockCallback) OnStatus(status provisioning.Status) {
	m.Called(status)
}

func (m *MockCallback) OnFailure(failure provisioning.Failure) {
	m.Called(failure)
}

func (m *MockCallback) OnComplete() {
	m.Called()
}
