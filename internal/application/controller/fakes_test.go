package controller

import (
	"time"

	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/settings"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

type fakeStation struct {
	mode        wifi.OperationalMode
	modes       []wifi.OperationalMode
	supplicant  []bool
	highPerf    []bool
	tlsReloads  int
	anqpClears  int
	workSources []lock.WorkSource
}

func (f *fakeStation) SetOperationalMode(mode wifi.OperationalMode) {
	f.mode = mode
	f.modes = append(f.modes, mode)
}

func (f *fakeStation) OperationalMode() wifi.OperationalMode { return f.mode }

func (f *fakeStation) SetSupplicantRunning(enable bool) {
	f.supplicant = append(f.supplicant, enable)
}

func (f *fakeStation) SetHighPerfModeEnabled(enable bool) {
	f.highPerf = append(f.highPerf, enable)
}

func (f *fakeStation) ReloadTLSNetworksAndReconnect() { f.tlsReloads++ }

func (f *fakeStation) UpdateBatteryWorkSource(ws lock.WorkSource) {
	f.workSources = append(f.workSources, ws)
}

func (f *fakeStation) ClearANQPCache() { f.anqpClears++ }

func (f *fakeStation) supplicantRunning() bool {
	return len(f.supplicant) > 0 && f.supplicant[len(f.supplicant)-1]
}

type softApCall struct {
	cfg    *wifi.SoftApConfig
	enable bool
}

type fakeSoftAp struct {
	calls []softApCall
}

func (f *fakeSoftAp) SetHostApRunning(cfg *wifi.SoftApConfig, enable bool) {
	f.calls = append(f.calls, softApCall{cfg: cfg, enable: enable})
}

type fakeSettings struct {
	airplane   bool
	toggle     bool
	scanAlways bool
	saved      settings.SavedState
	idle       time.Duration
	reEnable   time.Duration
	conditions int
}

func (f *fakeSettings) IsAirplaneModeOn() bool { return f.airplane }
func (f *fakeSettings) IsWifiToggleEnabled() bool { return f.toggle }
func (f *fakeSettings) IsScanAlwaysAvailable() bool { return !f.airplane && f.scanAlways }
func (f *fakeSettings) WifiSavedState() settings.SavedState { return f.saved }
func (f *fakeSettings) SetWifiSavedState(s settings.SavedState) { f.saved = s }
func (f *fakeSettings) IdleTimeout() time.Duration { return f.idle }
func (f *fakeSettings) ReEnableDelay() time.Duration { return f.reEnable }
func (f *fakeSettings) StayAwakeConditions() int { return f.conditions }

type fakeLocks struct {
	mode lock.Mode
	ws   lock.WorkSource
}

func (f *fakeLocks) StrongestMode() lock.Mode { return f.mode }
func (f *fakeLocks) MergedWorkSource() lock.WorkSource { return f.ws }

type fakeIms struct {
	deferTime    time.Duration
	cb           wifi.ImsCallbacks
	registered   int
	unregistered int
}

func (f *fakeIms) WifiOffDeferringTime() time.Duration { return f.deferTime }

func (f *fakeIms) Register(cb wifi.ImsCallbacks) (func(), error) {
	f.cb = cb
	f.registered++
	return func() { f.unregistered++ }, nil
}
