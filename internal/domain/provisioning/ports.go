package provisioning

import (
	"context"
	"crypto/x509"
	"net/url"
)

// NetworkCallbacks report OSU network events. They may be invoked from any
// goroutine.
type NetworkCallbacks struct {
	OnConnected    func(network string)
	OnDisconnected func()
	OnWifiDisabled func()
}

// OsuNetwork associates with the provider's OSU access point.
type OsuNetwork interface {
	SetCallbacks(cb NetworkCallbacks)
	// Connect starts associating with ssid. It returns false when the attempt
	// cannot be started.
	Connect(ssid, nai string) bool
	Disconnect()
}

// ServerCallbacks report OSU server events. Every callback echoes the
// session passed to Connect.
type ServerCallbacks struct {
	OnServerValidationStatus        func(session int, ok bool)
	OnServerConnectionStatus        func(session int, ok bool)
	OnReceivedSoapMessage           func(session int, resp *Response)
	OnReceivedTrustRootCertificates func(session int, certs map[TrustCertType][]*x509.Certificate)
}

// OsuServer talks SPP to the OSU server. Requests complete asynchronously
// through ServerCallbacks.
type OsuServer interface {
	SetCallbacks(cb ServerCallbacks)
	CanValidateServer() bool
	Connect(server *url.URL, network string, session int) bool
	ValidateProvider(language, friendlyName string) bool
	ExchangeSoapMessage(req Request) bool
	RetrieveTrustRootCerts(roots map[TrustCertType][]TrustRoot) bool
	Cleanup()
}

// RedirectCallbacks report the outcome of the browser redirect.
type RedirectCallbacks struct {
	OnRedirectReceived func()
	OnRedirectTimedOut func()
}

// RedirectListener receives the HTTP redirect that ends the user's browser
// session with the OSU server.
type RedirectListener interface {
	Start(cb RedirectCallbacks) error
	URL() string
	Stop()
}

// LoginRequest asks the OSU login activity to open the provider's page.
type LoginRequest struct {
	URL          string
	RedirectURL  string
	Network      string
	FriendlyName string
}

// LoginLauncher starts the OSU login activity.
type LoginLauncher interface {
	Launch(ctx context.Context, req LoginRequest) error
}

// MoParser parses a PPS management object.
type MoParser interface {
	ParsePPSMO(text string) (*PasspointConfig, error)
}

// ConfigRepository stores provisioned subscriptions.
type ConfigRepository interface {
	AddOrUpdate(ctx context.Context, uid int, cfg *PasspointConfig) error
	List(ctx context.Context) ([]*PasspointConfig, error)
}
