package wifilock

import (
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

type lowLatencySupport int

const (
	lowLatencyUnknown lowLatencySupport = iota
	lowLatencySupported
	lowLatencyUnsupported
)

func (s lowLatencySupport) String() string {
	switch s {
	case lowLatencySupported:
		return "SUPPORTED"
	case lowLatencyUnsupported:
		return "UNSUPPORTED"
	}
	return "UNKNOWN"
}

// opModeDriver applies resolved modes to the radio, unwinding the current
// mode before applying the next one.
type opModeDriver struct {
	radio   lock.RadioControl
	current lock.Mode
	support lowLatencySupport
	logger  zerolog.Logger
}

func newOpModeDriver(radio lock.RadioControl, logger zerolog.Logger) *opModeDriver {
	return &opModeDriver{radio: radio, current: lock.ModeNoLocksHeld, logger: logger}
}

// apply drives the radio to mode. On failure current is left where the
// sequence stopped so the next call resumes from there.
func (d *opModeDriver) apply(mode lock.Mode) bool {
	if mode == d.current {
		return true
	}
	d.logger.Debug().Stringer("from", d.current).Stringer("to", mode).Msg("changing op mode")

	switch d.current {
	case lock.ModeFullHighPerf:
		if !d.radio.SetPowerSave(true) {
			d.logger.Warn().Msg("failed to reset op mode from hi-perf")
			return false
		}
	case lock.ModeFullLowLatency:
		if !d.setLowLatency(false) {
			d.logger.Warn().Msg("failed to reset op mode from low-latency")
			return false
		}
	}

	d.current = lock.ModeNoLocksHeld

	switch mode {
	case lock.ModeFullHighPerf:
		if !d.radio.SetPowerSave(false) {
			d.logger.Warn().Msg("failed to set op mode to hi-perf")
			return false
		}
	case lock.ModeFullLowLatency:
		if !d.setLowLatency(true) {
			d.logger.Warn().Msg("failed to set op mode to low-latency")
			return false
		}
	case lock.ModeNoLocksHeld:
	default:
		d.logger.Error().Stringer("mode", mode).Msg("invalid op mode")
		return false
	}

	d.current = mode
	return true
}

func (d *opModeDriver) setLowLatency(enable bool) bool {
	switch d.lowLatencySupport() {
	case lowLatencySupported:
		return d.radio.SetLowLatencyMode(enable)
	case lowLatencyUnsupported:
		// low latency on means power save off
		return d.radio.SetPowerSave(!enable)
	}
	return false
}

func (d *opModeDriver) lowLatencySupport() lowLatencySupport {
	if d.support != lowLatencyUnknown {
		return d.support
	}
	features := d.radio.SupportedFeatureBitmap()
	if features == 0 {
		return lowLatencyUnknown
	}
	if features&lock.FeatureLowLatency != 0 {
		d.support = lowLatencySupported
	} else {
		d.support = lowLatencyUnsupported
	}
	return d.support
}
