package wifilock

import "github.com/execution-hub/wifictl/internal/domain/lock"

// Inputs is everything the strongest mode depends on.
type Inputs struct {
	ForcedHiPerf             bool
	ForcedLowLatency         bool
	ScreenOn                 bool
	ForegroundLowLatencyUIDs int
	HiPerfAcquired           int
	HiPerfReleased           int
}

// Resolve returns the strongest mode for in. The first matching rule wins.
// FULL and SCAN_ONLY locks never contribute.
func Resolve(in Inputs) lock.Mode {
	switch {
	case in.ForcedHiPerf:
		return lock.ModeFullHighPerf
	case in.ForcedLowLatency:
		return lock.ModeFullLowLatency
	case in.ScreenOn && in.ForegroundLowLatencyUIDs > 0:
		return lock.ModeFullLowLatency
	case in.HiPerfAcquired > in.HiPerfReleased:
		return lock.ModeFullHighPerf
	}
	return lock.ModeNoLocksHeld
}
