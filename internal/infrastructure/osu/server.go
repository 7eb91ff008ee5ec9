package osu

import (
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

// UnavailableServer is the OSU server connection used when no SPP client is
// installed. It cannot validate servers, so every provisioning request ends
// with PROVISIONING_NOT_AVAILABLE before any network is touched.
type UnavailableServer struct {
	mu     sync.Mutex
	cb     provisioning.ServerCallbacks
	logger zerolog.Logger
}

func NewUnavailableServer(logger zerolog.Logger) *UnavailableServer {
	return &UnavailableServer{logger: logger.With().Str("component", "osu-server").Logger()}
}

func (s *UnavailableServer) SetCallbacks(cb provisioning.ServerCallbacks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

func (s *UnavailableServer) CanValidateServer() bool { return false }

func (s *UnavailableServer) Connect(server *url.URL, network string, session int) bool {
	s.logger.Warn().Str("server", server.String()).Int("sessionId", session).Msg("osu server connection unavailable")
	return false
}

func (s *UnavailableServer) ValidateProvider(language, friendlyName string) bool { return false }

func (s *UnavailableServer) ExchangeSoapMessage(req provisioning.Request) bool { return false }

func (s *UnavailableServer) RetrieveTrustRootCerts(roots map[provisioning.TrustCertType][]provisioning.TrustRoot) bool {
	return false
}

func (s *UnavailableServer) Cleanup() {}

var _ provisioning.OsuServer = (*UnavailableServer)(nil)
