package controller

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/settings"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
	"github.com/execution-hub/wifictl/internal/infrastructure/looper"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc         *Service
	handler     *looper.Manual
	station     *fakeStation
	softAp      *fakeSoftAp
	settings    *fakeSettings
	locks       *fakeLocks
	ims         *fakeIms
	transitions []wifi.Transition
}

func newFixture(t *testing.T, cfg Config, configure func(*fixture)) *fixture {
	t.Helper()
	f := &fixture{
		handler: looper.NewManual(epoch),
		station: &fakeStation{},
		softAp:  &fakeSoftAp{},
		settings: &fakeSettings{
			idle:     settings.DefaultIdle,
			reEnable: settings.DefaultReEnableDelay,
		},
		locks: &fakeLocks{},
		ims:   &fakeIms{},
	}
	if configure != nil {
		configure(f)
	}
	if cfg.SleepPolicy == "" {
		cfg.SleepPolicy = "default"
	}
	svc, err := NewService(cfg, Deps{
		Handler:  f.handler,
		Station:  f.station,
		SoftAp:   f.softAp,
		Settings: f.settings,
		Locks:    f.locks,
		Ims:      f.ims,
	}, zerolog.Nop())
	require.NoError(t, err)
	svc.OnTransition(func(tr wifi.Transition) { f.transitions = append(f.transitions, tr) })
	svc.Start()
	f.handler.DispatchAll()
	f.svc = svc
	return f
}

func (f *fixture) send(what wifi.Command) {
	f.svc.Send(wifi.Message{What: what})
	f.handler.DispatchAll()
}

func (f *fixture) state() wifi.StateID {
	return f.svc.Status().State
}

// enableStation toggles Wi-Fi on well after the last disable.
func (f *fixture) enableStation(t *testing.T) {
	t.Helper()
	f.handler.Advance(time.Second)
	f.settings.toggle = true
	f.svc.WifiToggled()
	f.handler.DispatchAll()
	if f.svc.cfg.StaApConcurrency {
		require.Equal(t, wifi.StateStaEnabling, f.state())
		f.send(wifi.CmdWifiEnabled)
	}
	require.Equal(t, wifi.StateDeviceActive, f.state())
}

func TestInitialState(t *testing.T) {
	t.Run("wifi off", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		assert.Equal(t, wifi.StateApStaDisabled, f.state())
		assert.Empty(t, f.station.supplicant)
		require.Len(t, f.transitions, 0)
	})

	t.Run("scan always available", func(t *testing.T) {
		f := newFixture(t, Config{}, func(f *fixture) { f.settings.scanAlways = true })
		assert.Equal(t, wifi.StateStaDisabledWithScan, f.state())
		assert.Equal(t, wifi.ModeScanOnlyWithWifiOff, f.station.mode)
		assert.True(t, f.station.supplicantRunning())
		assert.Equal(t, 1, f.station.anqpClears)
	})

	t.Run("messages before start are dropped", func(t *testing.T) {
		h := looper.NewManual(epoch)
		svc, err := NewService(Config{}, Deps{
			Handler:  h,
			Station:  &fakeStation{},
			SoftAp:   &fakeSoftAp{},
			Settings: &fakeSettings{toggle: true},
			Locks:    &fakeLocks{},
		}, zerolog.Nop())
		require.NoError(t, err)
		svc.WifiToggled()
		h.DispatchAll()
		assert.Equal(t, wifi.StateID(""), svc.Status().State)
	})
}

func TestNewServiceRejectsBadPolicy(t *testing.T) {
	_, err := NewService(Config{SleepPolicy: "plugged &&& ("}, Deps{Handler: looper.NewManual(epoch)}, zerolog.Nop())
	assert.Error(t, err)
}

func TestToggleStation(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.enableStation(t)

	assert.Equal(t, []bool{true}, f.station.supplicant)
	assert.Equal(t, wifi.ModeConnect, f.station.mode)
	assert.Equal(t, []wifi.StateID{wifi.StateDeviceActive, wifi.StateStaEnabled, wifi.StateDefault}, f.svc.Status().Path)

	f.settings.toggle = false
	f.svc.WifiToggled()
	f.handler.DispatchAll()
	assert.Equal(t, wifi.StateStaDisabling, f.state())
	assert.Equal(t, []bool{true, false}, f.station.supplicant)

	f.send(wifi.CmdWifiDisabled)
	assert.Equal(t, wifi.StateApStaDisabled, f.state())

	require.Len(t, f.transitions, 3)
	assert.Equal(t, "WIFI_TOGGLED", f.transitions[0].Event)
	assert.Equal(t, wifi.StateStaDisabling, f.transitions[2].From)
	assert.Equal(t, "WIFI_DISABLED", f.transitions[2].Event)
}

func TestToggleOffWithScanAlways(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.enableStation(t)

	f.settings.scanAlways = true
	f.settings.toggle = false
	f.svc.WifiToggled()
	f.handler.DispatchAll()
	assert.Equal(t, wifi.StateStaDisabledWithScan, f.state())
	assert.Equal(t, wifi.ModeScanOnlyWithWifiOff, f.station.mode)

	f.settings.scanAlways = false
	f.svc.ScanAlwaysModeChanged()
	f.handler.DispatchAll()
	assert.Equal(t, wifi.StateStaDisabling, f.state())
	assert.False(t, f.station.supplicantRunning())
}

func TestDeferredEnable(t *testing.T) {
	t.Run("enable soon after disable waits for the re-enable delay", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.handler.Advance(100 * time.Millisecond)
		f.settings.toggle = true
		f.svc.WifiToggled()
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateApStaDisabled, f.state())
		assert.Equal(t, 1, f.handler.Pending())

		f.handler.Advance(400 * time.Millisecond)
		assert.Equal(t, wifi.StateApStaDisabled, f.state())

		f.handler.Advance(deferMargin)
		assert.Equal(t, wifi.StateDeviceActive, f.state())
	})

	t.Run("two deferred toggles cancel out", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.settings.toggle = true
		f.handler.Advance(100 * time.Millisecond)
		f.svc.WifiToggled()
		f.handler.DispatchAll()
		f.handler.Advance(100 * time.Millisecond)
		f.svc.WifiToggled()
		f.handler.DispatchAll()

		f.handler.Advance(time.Second)
		assert.Equal(t, wifi.StateApStaDisabled, f.state())
		assert.Equal(t, 0, f.handler.Pending())
	})

	t.Run("stale deferred toggle after a state change is ignored", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.settings.toggle = true
		f.handler.Advance(100 * time.Millisecond)
		f.svc.WifiToggled()
		f.handler.DispatchAll()

		f.svc.SetSoftAp(true, &wifi.SoftApConfig{SSID: "hotspot"})
		f.handler.DispatchAll()
		require.Equal(t, wifi.StateApEnabled, f.state())

		f.handler.Advance(time.Second)
		assert.Equal(t, wifi.StateApEnabled, f.state())
	})
}

func TestSoftApWithoutConcurrency(t *testing.T) {
	cfg := &wifi.SoftApConfig{SSID: "hotspot", Passphrase: "secret123"}

	t.Run("from station restores station afterwards", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.enableStation(t)

		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateStaDisabling, f.state())
		assert.Equal(t, settings.SavedEnabled, f.settings.saved)

		f.send(wifi.CmdWifiDisabled)
		assert.Equal(t, wifi.StateApEnabled, f.state())
		assert.Equal(t, settings.SavedEnabled, f.settings.saved)
		require.Len(t, f.softAp.calls, 1)
		assert.Equal(t, softApCall{cfg: cfg, enable: true}, f.softAp.calls[0])

		f.svc.SetSoftAp(false, nil)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateApEnabled, f.state())
		require.Len(t, f.softAp.calls, 2)
		assert.False(t, f.softAp.calls[1].enable)

		f.send(wifi.CmdApStopped)
		assert.Equal(t, wifi.StateDeviceActive, f.state())
		assert.True(t, f.station.supplicantRunning())
	})

	t.Run("from off returns to off", func(t *testing.T) {
		f := newFixture(t, Config{}, func(f *fixture) { f.settings.saved = settings.SavedEnabled })
		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateApEnabled, f.state())
		assert.Equal(t, settings.SavedDisabled, f.settings.saved)

		f.svc.SetSoftAp(false, nil)
		f.handler.DispatchAll()
		f.send(wifi.CmdApStopped)
		assert.Equal(t, wifi.StateApStaDisabled, f.state())
	})

	t.Run("wifi toggle stops the hotspot", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()

		f.settings.toggle = true
		f.svc.WifiToggled()
		f.handler.DispatchAll()
		require.Len(t, f.softAp.calls, 2)
		assert.False(t, f.softAp.calls[1].enable)

		f.send(wifi.CmdApStopped)
		assert.Equal(t, wifi.StateDeviceActive, f.state())
	})

	t.Run("start failure falls back", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		f.send(wifi.CmdApStartFailure)
		assert.Equal(t, wifi.StateApStaDisabled, f.state())
	})
}

func TestSoftApWithConcurrency(t *testing.T) {
	cfg := &wifi.SoftApConfig{SSID: "hotspot"}

	t.Run("station and hotspot together", func(t *testing.T) {
		f := newFixture(t, Config{StaApConcurrency: true}, nil)
		f.enableStation(t)
		assert.Equal(t, []bool{true}, f.station.supplicant)

		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateApStaEnabling, f.state())
		assert.Equal(t, []softApCall{{cfg: cfg, enable: true}}, f.softAp.calls)

		f.send(wifi.CmdApStarted)
		assert.Equal(t, wifi.StateApStaEnabled, f.state())

		f.svc.SetSoftAp(false, nil)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateApStaDisabling, f.state())
		f.send(wifi.CmdApStopped)
		assert.Equal(t, wifi.StateStaEnabled, f.state())
		assert.Equal(t, []bool{true}, f.station.supplicant)
	})

	t.Run("messages are deferred while enabling", func(t *testing.T) {
		f := newFixture(t, Config{StaApConcurrency: true}, nil)
		f.handler.Advance(time.Second)
		f.settings.toggle = true
		f.svc.WifiToggled()
		f.handler.DispatchAll()
		require.Equal(t, wifi.StateStaEnabling, f.state())

		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		assert.Equal(t, 1, f.svc.Status().DeferredMessages)
		assert.Empty(t, f.softAp.calls)

		f.send(wifi.CmdWifiEnabled)
		assert.Equal(t, wifi.StateApStaEnabling, f.state())
		assert.Equal(t, 0, f.svc.Status().DeferredMessages)
	})

	t.Run("hotspot alone then station", func(t *testing.T) {
		f := newFixture(t, Config{StaApConcurrency: true}, nil)
		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		require.Equal(t, wifi.StateApEnabling, f.state())
		f.send(wifi.CmdApStarted)
		require.Equal(t, wifi.StateApEnabled, f.state())

		f.settings.toggle = true
		f.svc.WifiToggled()
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateApStaEnabling, f.state())
		f.send(wifi.CmdWifiEnabled)
		assert.Equal(t, wifi.StateApStaEnabled, f.state())

		f.send(wifi.CmdStaStartFailure)
		assert.Equal(t, wifi.StateApEnabled, f.state())
	})

	t.Run("airplane mode stops the hotspot", func(t *testing.T) {
		f := newFixture(t, Config{StaApConcurrency: true}, nil)
		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		f.send(wifi.CmdApStarted)

		f.settings.airplane = true
		f.svc.AirplaneToggled()
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateApDisabling, f.state())
		f.send(wifi.CmdApStopped)
		assert.Equal(t, wifi.StateStaDisabling, f.state())
	})
}

func TestApStaEnabledShutdown(t *testing.T) {
	cfg := &wifi.SoftApConfig{SSID: "hotspot"}
	apStaEnabled := func(t *testing.T) *fixture {
		f := newFixture(t, Config{StaApConcurrency: true}, nil)
		f.enableStation(t)
		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		f.send(wifi.CmdApStarted)
		require.Equal(t, wifi.StateApStaEnabled, f.state())
		f.handler.Advance(time.Second)
		return f
	}

	t.Run("toggle off with scan always keeps the supplicant", func(t *testing.T) {
		f := apStaEnabled(t)
		f.settings.toggle = false
		f.settings.scanAlways = true
		f.svc.WifiToggled()
		f.handler.DispatchAll()

		assert.Equal(t, wifi.StateApStaDisabling, f.state())
		assert.Equal(t, wifi.ModeScanOnlyWithWifiOff, f.station.mode)
		assert.Equal(t, []bool{true}, f.station.supplicant)

		f.send(wifi.CmdWifiDisabled)
		assert.Equal(t, wifi.StateApEnabled, f.state())
	})

	t.Run("toggle off stops the supplicant", func(t *testing.T) {
		f := apStaEnabled(t)
		f.settings.toggle = false
		f.svc.WifiToggled()
		f.handler.DispatchAll()

		assert.Equal(t, wifi.StateApStaDisabling, f.state())
		assert.Equal(t, wifi.ModeConnect, f.station.mode)
		assert.Equal(t, []bool{true, false}, f.station.supplicant)
	})

	t.Run("any airplane change stops the hotspot first", func(t *testing.T) {
		f := apStaEnabled(t)
		f.settings.airplane = false
		f.svc.AirplaneToggled()
		f.handler.DispatchAll()

		assert.Equal(t, wifi.StateApStaDisabling, f.state())
		require.Len(t, f.softAp.calls, 2)
		assert.False(t, f.softAp.calls[1].enable)
		assert.Equal(t, 1, f.svc.Status().DeferredMessages)

		f.send(wifi.CmdApStopped)
		assert.Equal(t, wifi.StateStaEnabled, f.state())
		assert.Equal(t, 0, f.svc.Status().DeferredMessages)
	})
}

func TestEmergencyCallbackMode(t *testing.T) {
	f := newFixture(t, Config{DisableInECBM: true}, nil)
	f.enableStation(t)

	f.svc.EmergencyCallbackMode(true)
	f.handler.DispatchAll()
	assert.Equal(t, wifi.StateEcm, f.state())
	assert.False(t, f.station.supplicantRunning())
	assert.Equal(t, 1, f.svc.Status().EcmEntryCount)

	f.svc.EmergencyCall(true)
	f.handler.DispatchAll()
	assert.Equal(t, 2, f.svc.Status().EcmEntryCount)

	f.svc.EmergencyCall(false)
	f.handler.DispatchAll()
	assert.Equal(t, wifi.StateEcm, f.state())

	f.svc.EmergencyCallbackMode(false)
	f.handler.DispatchAll()
	assert.Equal(t, wifi.StateDeviceActive, f.state())
	assert.True(t, f.station.supplicantRunning())
	assert.Equal(t, 0, f.svc.Status().EcmEntryCount)
}

func TestEmergencyIgnoredWhenNotConfigured(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.enableStation(t)
	f.svc.EmergencyCallbackMode(true)
	f.handler.DispatchAll()
	assert.Equal(t, wifi.StateDeviceActive, f.state())
}

func TestDeviceIdle(t *testing.T) {
	t.Run("screen off while disconnected idles immediately", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.locks.ws = lock.NewWorkSource(1000)
		f.enableStation(t)

		f.svc.SetScreenOn(false)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateNoLockHeld, f.state())
		assert.Equal(t, wifi.ModeDisabled, f.station.mode)
		assert.True(t, f.svc.Status().DeviceIdle)
		require.NotEmpty(t, f.station.workSources)
		assert.True(t, f.station.workSources[len(f.station.workSources)-1].Equal(lock.NewWorkSource(1000)))

		f.locks.mode = lock.ModeFull
		f.svc.LocksChanged()
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateFullLockHeld, f.state())
		assert.Equal(t, wifi.ModeConnect, f.station.mode)

		f.locks.mode = lock.ModeFullLowLatency
		f.svc.LocksChanged()
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateFullHighPerfLockHeld, f.state())
		assert.Equal(t, true, f.station.highPerf[len(f.station.highPerf)-1])

		f.svc.SetScreenOn(true)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateDeviceActive, f.state())
		assert.False(t, f.svc.Status().DeviceIdle)
		assert.True(t, f.station.workSources[len(f.station.workSources)-1].IsEmpty())
	})

	t.Run("scan only when scan always is available", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.enableStation(t)
		f.settings.scanAlways = true
		f.svc.SetScreenOn(false)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateScanOnlyLockHeld, f.state())
		assert.Equal(t, wifi.ModeScanOnly, f.station.mode)
	})

	t.Run("connected screen off arms the idle timer", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.enableStation(t)
		f.svc.SetNetworkConnected(true)

		f.svc.SetScreenOn(false)
		f.handler.DispatchAll()
		assert.True(t, f.svc.Status().IdleTimerArmed)
		f.handler.Advance(settings.DefaultIdle - time.Second)
		assert.Equal(t, wifi.StateDeviceActive, f.state())

		f.svc.SetScreenOn(true)
		f.handler.DispatchAll()
		assert.False(t, f.svc.Status().IdleTimerArmed)
		f.handler.Advance(time.Hour)
		assert.Equal(t, wifi.StateDeviceActive, f.state())

		f.svc.SetScreenOn(false)
		f.handler.DispatchAll()
		f.handler.Advance(settings.DefaultIdle)
		assert.Equal(t, wifi.StateNoLockHeld, f.state())
	})

	t.Run("plugged in with stay awake conditions stays active", func(t *testing.T) {
		f := newFixture(t, Config{}, func(f *fixture) { f.settings.conditions = 3 })
		f.enableStation(t)
		f.svc.SetPluggedType(1)
		f.handler.DispatchAll()

		f.svc.SetScreenOn(false)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateDeviceActive, f.state())

		f.svc.SetPluggedType(0)
		f.handler.DispatchAll()
		assert.True(t, f.svc.Status().IdleTimerArmed)
		f.handler.Advance(settings.DefaultIdle)
		assert.Equal(t, wifi.StateNoLockHeld, f.state())
	})
}

func TestUserPresentReloadsTLSOnce(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.enableStation(t)
	f.svc.UserPresent()
	f.svc.UserPresent()
	f.handler.DispatchAll()
	assert.Equal(t, 1, f.station.tlsReloads)
}

func TestRestartWifi(t *testing.T) {
	t.Run("station only", func(t *testing.T) {
		f := newFixture(t, Config{}, nil)
		f.enableStation(t)

		f.svc.RestartWifi(nil)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateStaDisabling, f.state())

		f.send(wifi.CmdWifiDisabled)
		assert.Equal(t, wifi.StateDeviceActive, f.state())
		assert.Equal(t, []bool{true, false, true}, f.station.supplicant)
	})

	t.Run("station and hotspot", func(t *testing.T) {
		cfg := &wifi.SoftApConfig{SSID: "hotspot"}
		f := newFixture(t, Config{StaApConcurrency: true}, nil)
		f.enableStation(t)
		f.svc.SetSoftAp(true, cfg)
		f.handler.DispatchAll()
		f.send(wifi.CmdApStarted)
		require.Equal(t, wifi.StateApStaEnabled, f.state())

		f.svc.RestartWifi(cfg)
		f.handler.DispatchAll()
		assert.Equal(t, wifi.StateApStaDisabling, f.state())

		f.send(wifi.CmdApStopped)
		assert.Equal(t, wifi.StateStaDisabling, f.state())

		f.send(wifi.CmdWifiDisabled)
		assert.Equal(t, wifi.StateStaEnabling, f.state())

		f.send(wifi.CmdWifiEnabled)
		assert.Equal(t, wifi.StateApStaEnabling, f.state())
		require.Len(t, f.softAp.calls, 3)
		assert.Equal(t, softApCall{cfg: cfg, enable: true}, f.softAp.calls[2])
	})
}

func TestWifiOffDeferredForIms(t *testing.T) {
	setup := func(t *testing.T) *fixture {
		f := newFixture(t, Config{WifiOffDeferMax: 2 * time.Second}, func(f *fixture) {
			f.ims.deferTime = 3 * time.Second
		})
		f.enableStation(t)
		f.settings.toggle = false
		f.svc.WifiToggled()
		f.handler.DispatchAll()
		require.Equal(t, wifi.StateStaDisabling, f.state())
		require.True(t, f.station.supplicantRunning())
		require.True(t, f.svc.Status().WifiOffDeferring)
		return f
	}

	t.Run("stops once ims leaves wlan", func(t *testing.T) {
		f := setup(t)
		f.ims.cb.OnRegistered(wifi.TransportWLAN)
		f.handler.DispatchAll()
		assert.True(t, f.station.supplicantRunning())

		f.ims.cb.OnRegistered(wifi.TransportWWAN)
		f.handler.DispatchAll()
		assert.False(t, f.station.supplicantRunning())
		assert.Equal(t, 1, f.ims.unregistered)
	})

	t.Run("stops after the capped delay", func(t *testing.T) {
		f := setup(t)
		f.handler.Advance(2*time.Second - time.Millisecond)
		assert.True(t, f.station.supplicantRunning())
		f.handler.Advance(time.Millisecond)
		assert.False(t, f.station.supplicantRunning())
		assert.False(t, f.svc.Status().WifiOffDeferring)
	})

	t.Run("stops a grace period after the last ims network is lost", func(t *testing.T) {
		f := setup(t)
		f.ims.cb.OnNetworkAvailable()
		f.ims.cb.OnNetworkLost()
		f.handler.DispatchAll()
		f.handler.Advance(imsLostGrace)
		assert.False(t, f.station.supplicantRunning())
	})
}

func TestStayAwakePolicy(t *testing.T) {
	tests := []struct {
		name       string
		policy     string
		plugged    int
		conditions int
		want       bool
	}{
		{"never sleeps", "never", 0, 0, true},
		{"never while plugged unplugged", "never_while_plugged", 0, 0, false},
		{"never while plugged on usb", "never_while_plugged", 2, 0, true},
		{"default matching condition", "default", 1, 3, true},
		{"default non matching condition", "default", 4, 3, false},
		{"constant false", "false", 1, 7, false},
		{"custom expression", "plugged == 4", 4, 0, true},
		{"non boolean keeps awake", "plugged + 1", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newStayAwakePolicy(tt.policy, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.shouldStayAwake(tt.plugged, tt.conditions))
		})
	}
}
