package iwd

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/provisioning"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

// Simulator stands in for iwd when radio adapters are disabled. Every
// request succeeds immediately and is echoed back to the controller.
type Simulator struct {
	sink wifi.EventSink

	mu   sync.Mutex
	mode wifi.OperationalMode

	logger zerolog.Logger
}

func NewSimulator(sink wifi.EventSink, logger zerolog.Logger) *Simulator {
	return &Simulator{
		sink:   sink,
		mode:   wifi.ModeDisabled,
		logger: logger.With().Str("component", "iwd-sim").Logger(),
	}
}

func (s *Simulator) SetSupplicantRunning(enable bool) {
	s.logger.Info().Bool("enable", enable).Msg("supplicant")
	if enable {
		s.sink.Send(wifi.Message{What: wifi.CmdWifiEnabled})
	} else {
		s.sink.Send(wifi.Message{What: wifi.CmdWifiDisabled})
	}
}

func (s *Simulator) SetOperationalMode(mode wifi.OperationalMode) {
	s.mu.Lock()
	prev := s.mode
	s.mode = mode
	s.mu.Unlock()
	s.logger.Info().Stringer("mode", mode).Msg("operational mode")
	if mode == wifi.ModeScanOnlyWithWifiOff && prev == wifi.ModeConnect {
		s.sink.Send(wifi.Message{What: wifi.CmdWifiDisabled})
	}
}

func (s *Simulator) OperationalMode() wifi.OperationalMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Simulator) SetHighPerfModeEnabled(enable bool) {
	s.logger.Debug().Bool("enable", enable).Msg("high perf mode")
}

func (s *Simulator) ReloadTLSNetworksAndReconnect() {
	s.logger.Debug().Msg("reload tls networks")
}

func (s *Simulator) UpdateBatteryWorkSource(ws lock.WorkSource) {
	s.logger.Debug().Ints("uids", ws.AttributedUIDs()).Msg("battery work source")
}

func (s *Simulator) ClearANQPCache() {}

func (s *Simulator) SetHostApRunning(cfg *wifi.SoftApConfig, enable bool) {
	s.logger.Info().Bool("enable", enable).Msg("softap")
	if enable {
		s.sink.Send(wifi.Message{What: wifi.CmdApStarted})
	} else {
		s.sink.Send(wifi.Message{What: wifi.CmdApStopped})
	}
}

func (s *Simulator) SetCallbacks(cb provisioning.NetworkCallbacks) {}

// Connect always fails: there is no radio to associate with.
func (s *Simulator) Connect(ssid, nai string) bool {
	s.logger.Info().Str("ssid", ssid).Msg("osu connect unavailable in simulation")
	return false
}

func (s *Simulator) Disconnect() {}
