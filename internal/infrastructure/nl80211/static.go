package nl80211

import (
	"sync"

	"github.com/rs/zerolog"
)

// Static is a radio without a driver. Power save requests succeed and are
// remembered; low latency is unsupported.
type Static struct {
	mu        sync.Mutex
	powerSave bool
	logger    zerolog.Logger
}

func NewStatic(logger zerolog.Logger) *Static {
	return &Static{powerSave: true, logger: logger.With().Str("component", "nl80211-static").Logger()}
}

func (s *Static) SetPowerSave(enable bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.powerSave = enable
	s.logger.Info().Bool("enable", enable).Msg("power save")
	return true
}

func (s *Static) SetLowLatencyMode(enable bool) bool { return false }

func (s *Static) SupportedFeatureBitmap() uint64 { return baseFeatureSupported }

func (s *Static) PowerSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.powerSave
}
