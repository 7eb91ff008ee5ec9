package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/wifictl/internal/application/controller"
	"github.com/execution-hub/wifictl/internal/domain/event"
	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/provisioning"
	"github.com/execution-hub/wifictl/internal/domain/settings"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
	"github.com/execution-hub/wifictl/internal/infrastructure/activity"
	"github.com/execution-hub/wifictl/internal/infrastructure/lease"
	"github.com/execution-hub/wifictl/internal/infrastructure/postgres"
	"github.com/execution-hub/wifictl/internal/infrastructure/sse"
)

const privilegedToken = "root-token"

type mockLocks struct{ mock.Mock }

func (m *mockLocks) Acquire(ctx context.Context, caller lock.Caller, mode lock.Mode, tag string, handle lock.Handle, ws lock.WorkSource) (bool, error) {
	args := m.Called(ctx, caller, mode, tag, handle, ws)
	return args.Bool(0), args.Error(1)
}
func (m *mockLocks) Release(ctx context.Context, handle lock.Handle) bool {
	return m.Called(ctx, handle).Bool(0)
}
func (m *mockLocks) UpdateWorkSource(ctx context.Context, caller lock.Caller, handle lock.Handle, ws lock.WorkSource) error {
	return m.Called(ctx, caller, handle, ws).Error(0)
}
func (m *mockLocks) ForceHiPerfMode(enable bool) bool { return m.Called(enable).Bool(0) }
func (m *mockLocks) ForceLowLatencyMode(enable bool) bool { return m.Called(enable).Bool(0) }
func (m *mockLocks) StrongestMode() lock.Mode { return m.Called().Get(0).(lock.Mode) }
func (m *mockLocks) MergedWorkSource() lock.WorkSource {
	return m.Called().Get(0).(lock.WorkSource)
}
func (m *mockLocks) Locks() []lock.Record { return m.Called().Get(0).([]lock.Record) }
func (m *mockLocks) Stats() lock.Stats { return m.Called().Get(0).(lock.Stats) }

type mockController struct{ mock.Mock }

func (m *mockController) Status() controller.Status { return m.Called().Get(0).(controller.Status) }
func (m *mockController) SetScreenOn(on bool) { m.Called(on) }
func (m *mockController) SetPluggedType(plugged int) { m.Called(plugged) }
func (m *mockController) DeviceIdle() { m.Called() }
func (m *mockController) UserPresent() { m.Called() }
func (m *mockController) WifiToggled() { m.Called() }
func (m *mockController) AirplaneToggled() { m.Called() }
func (m *mockController) ScanAlwaysModeChanged() { m.Called() }
func (m *mockController) EmergencyCallbackMode(a bool) { m.Called(a) }
func (m *mockController) EmergencyCall(a bool) { m.Called(a) }
func (m *mockController) RestartWifi(c *wifi.SoftApConfig) { m.Called(c) }
func (m *mockController) SetSoftAp(enable bool, cfg *wifi.SoftApConfig) {
	m.Called(enable, cfg)
}

type mockSettings struct{ mock.Mock }

func (m *mockSettings) HandleWifiToggled(enable bool) bool { return m.Called(enable).Bool(0) }
func (m *mockSettings) HandleAirplaneToggled(on bool) { m.Called(on) }
func (m *mockSettings) HandleScanAlwaysToggled(enabled bool) { m.Called(enabled) }
func (m *mockSettings) PersistedState() settings.PersistedState {
	return m.Called().Get(0).(settings.PersistedState)
}

type fakeProvisioner struct {
	uid      int
	provider provisioning.Provider
	cb       provisioning.Callback
	reject   bool
}

func (f *fakeProvisioner) Start(uid int, p provisioning.Provider, cb provisioning.Callback) bool {
	if f.reject {
		return false
	}
	f.uid, f.provider, f.cb = uid, p, cb
	return true
}

func (f *fakeProvisioner) Snapshot() provisioning.Snapshot {
	return provisioning.Snapshot{SessionID: 1, Stage: provisioning.StageAPConnecting, UID: f.uid}
}

type tokenPrivilege struct{}

func (tokenPrivilege) IsPrivileged(token string) bool { return token == privilegedToken }

type fixture struct {
	locks       *mockLocks
	controller  *mockController
	settings    *mockSettings
	provisioner *fakeProvisioner
	leases      *lease.Manager
	tracker     *activity.Tracker
	hub         *sse.Hub
	events      *event.Client
	server      *Server
	handler     http.Handler
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		locks:       &mockLocks{},
		controller:  &mockController{},
		settings:    &mockSettings{},
		provisioner: &fakeProvisioner{},
		leases:      lease.NewManager(time.Minute, zerolog.Nop()),
		tracker:     activity.NewTracker(lock.ImportanceCached, zerolog.Nop()),
		hub:         sse.NewHub(zerolog.Nop()),
	}
	f.events = event.NewClient("test", nil, nil)
	f.hub.Register(f.events)
	f.server = NewServer(Deps{
		Locks:       f.locks,
		Leases:      f.leases,
		Controller:  f.controller,
		Settings:    f.settings,
		Importance:  f.tracker,
		Provisioner: f.provisioner,
		Hub:         f.hub,
		Privilege:   tokenPrivilege{},
	}, zerolog.Nop())
	f.handler = f.server.Router()
	t.Cleanup(func() {
		f.locks.AssertExpectations(t)
		f.controller.AssertExpectations(t)
		f.settings.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(method, path string, uid string, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if uid != "" {
		req.Header.Set("X-Caller-Uid", uid)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (f *fixture) nextEvent(t *testing.T) *event.Event {
	t.Helper()
	select {
	case e := <-f.events.Messages:
		return e
	default:
		t.Fatal("no event published")
		return nil
	}
}

func TestCallerIdentification(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/v1/locks/stats", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["error"])

	rec = f.do(http.MethodGet, "/v1/locks/stats", "abc", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/v1/modes/hi-perf", "10010", "wrong", map[string]bool{"enable": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLockLifecycle(t *testing.T) {
	f := newFixture(t)
	caller := lock.Caller{UID: 10010}

	var handle lock.Handle
	f.locks.On("Acquire", mock.Anything, caller, lock.ModeFullHighPerf, "sync", mock.Anything, lock.WorkSource{}).
		Run(func(args mock.Arguments) { handle = args.Get(4).(lock.Handle) }).
		Return(true, nil).Once()

	rec := f.do(http.MethodPost, "/v1/locks", "10010", "", map[string]string{"mode": "FULL_HIGH_PERF", "tag": "sync"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, string(handle), body["handle"])
	assert.Equal(t, "FULL_HIGH_PERF", body["mode"])

	owner, ok := f.leases.Owner(handle)
	require.True(t, ok)
	assert.Equal(t, 10010, owner)

	t.Run("heartbeat by owner", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/locks/"+string(handle)+"/heartbeat", "10010", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("heartbeat by another uid", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/locks/"+string(handle)+"/heartbeat", "10011", "", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("release by another uid", func(t *testing.T) {
		rec := f.do(http.MethodDelete, "/v1/locks/"+string(handle), "10011", "", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("work source update denied", func(t *testing.T) {
		ws := lock.NewWorkSource(1000)
		f.locks.On("UpdateWorkSource", mock.Anything, caller, handle, ws).Return(lock.ErrPermissionDenied).Once()
		rec := f.do(http.MethodPut, "/v1/locks/"+string(handle)+"/work-source", "10010", "", ws)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("release by owner", func(t *testing.T) {
		f.locks.On("Release", mock.Anything, handle).Return(true).Once()
		rec := f.do(http.MethodDelete, "/v1/locks/"+string(handle), "10010", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAcquireLock_Rejected(t *testing.T) {
	t.Run("invalid mode", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/v1/locks", "1", "", map[string]string{"mode": "TURBO"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service refuses", func(t *testing.T) {
		f := newFixture(t)
		var handle lock.Handle
		f.locks.On("Acquire", mock.Anything, mock.Anything, lock.ModeFull, "", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { handle = args.Get(4).(lock.Handle) }).
			Return(false, nil).Once()
		rec := f.do(http.MethodPost, "/v1/locks", "1", "", map[string]string{"mode": "FULL"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		_, ok := f.leases.Owner(handle)
		assert.False(t, ok, "lease is dropped")
	})

	t.Run("permission denied", func(t *testing.T) {
		f := newFixture(t)
		f.locks.On("Acquire", mock.Anything, mock.Anything, lock.ModeFull, "", mock.Anything, lock.NewWorkSource(5)).
			Return(false, lock.ErrPermissionDenied).Once()
		rec := f.do(http.MethodPost, "/v1/locks", "1", "", map[string]interface{}{"mode": "FULL", "workSource": map[string]interface{}{"uids": []int{5}}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown handle", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodDelete, "/v1/locks/nope", "1", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestLockQueries(t *testing.T) {
	f := newFixture(t)
	f.locks.On("StrongestMode").Return(lock.ModeFullLowLatency)
	f.locks.On("Stats").Return(lock.Stats{Held: 2, CurrentOpMode: lock.ModeFullLowLatency})
	f.locks.On("MergedWorkSource").Return(lock.NewWorkSource(1, 2))

	rec := f.do(http.MethodGet, "/v1/locks/strongest-mode", "1", "", nil)
	assert.Equal(t, "FULL_LOW_LATENCY", decode(t, rec)["mode"])

	rec = f.do(http.MethodGet, "/v1/locks/stats", "1", "", nil)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["held"])
	assert.Equal(t, "FULL_LOW_LATENCY", body["currentOpMode"])

	rec = f.do(http.MethodGet, "/v1/locks/merged-work-source", "1", "", nil)
	assert.Equal(t, []interface{}{float64(1), float64(2)}, decode(t, rec)["uids"])

	rec = f.do(http.MethodGet, "/v1/locks/usage", "1", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestForceModes(t *testing.T) {
	f := newFixture(t)
	f.locks.On("ForceHiPerfMode", true).Return(true).Once()
	f.locks.On("ForceLowLatencyMode", true).Return(false).Once()

	rec := f.do(http.MethodPost, "/v1/modes/hi-perf", "0", privilegedToken, map[string]bool{"enable": true})
	assert.Equal(t, true, decode(t, rec)["success"])
	rec = f.do(http.MethodPost, "/v1/modes/low-latency", "0", privilegedToken, map[string]bool{"enable": true})
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestDeviceEndpoints(t *testing.T) {
	f := newFixture(t)
	f.controller.On("SetScreenOn", false).Once()
	f.controller.On("SetPluggedType", 2).Once()
	f.controller.On("DeviceIdle").Once()
	f.controller.On("UserPresent").Once()

	assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/device/screen", "0", privilegedToken, map[string]bool{"on": false}).Code)
	assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/device/battery", "0", privilegedToken, map[string]int{"plugged": 2}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/device/battery", "0", privilegedToken, map[string]int{"plugged": 9}).Code)
	assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/device/idle", "0", privilegedToken, nil).Code)
	assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/device/user-present", "0", privilegedToken, nil).Code)

	t.Run("importance", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/uids/10010/importance", "0", privilegedToken, map[string]int{"importance": int(lock.ImportanceForeground)})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, f.tracker.IsForeground(10010))

		rec = f.do(http.MethodPost, "/v1/uids/x/importance", "0", privilegedToken, map[string]int{"importance": 100})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWifiEndpoints(t *testing.T) {
	t.Run("toggle forwards only changes", func(t *testing.T) {
		f := newFixture(t)
		f.settings.On("HandleWifiToggled", true).Return(true).Once()
		f.settings.On("HandleWifiToggled", true).Return(false).Once()
		f.settings.On("PersistedState").Return(settings.StateEnabled)
		f.controller.On("WifiToggled").Once()

		rec := f.do(http.MethodPost, "/v1/wifi/toggle", "1000", "", map[string]bool{"enable": true})
		assert.Equal(t, true, decode(t, rec)["changed"])
		rec = f.do(http.MethodPost, "/v1/wifi/toggle", "1000", "", map[string]bool{"enable": true})
		assert.Equal(t, false, decode(t, rec)["changed"])
	})

	t.Run("airplane and scan always", func(t *testing.T) {
		f := newFixture(t)
		f.settings.On("HandleAirplaneToggled", true).Once()
		f.settings.On("PersistedState").Return(settings.StateDisabledAirplaneOn)
		f.settings.On("HandleScanAlwaysToggled", false).Once()
		f.controller.On("AirplaneToggled").Once()
		f.controller.On("ScanAlwaysModeChanged").Once()

		assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/v1/wifi/airplane", "1000", "", map[string]bool{"on": true}).Code)
		assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/v1/wifi/scan-always", "1000", "", map[string]bool{"enabled": false}).Code)
	})

	t.Run("softap requires config to enable", func(t *testing.T) {
		f := newFixture(t)
		cfg := &wifi.SoftApConfig{SSID: "hotspot", Passphrase: "secret123"}
		f.controller.On("SetSoftAp", true, cfg).Once()
		f.controller.On("SetSoftAp", false, (*wifi.SoftApConfig)(nil)).Once()

		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/wifi/softap", "0", privilegedToken, map[string]bool{"enable": true}).Code)
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/wifi/softap", "0", privilegedToken, softApRequest{Enable: true, Config: cfg}).Code)
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/wifi/softap", "0", privilegedToken, softApRequest{}).Code)
	})

	t.Run("emergency and restart", func(t *testing.T) {
		f := newFixture(t)
		f.controller.On("EmergencyCallbackMode", true).Once()
		f.controller.On("EmergencyCall", false).Once()
		f.controller.On("RestartWifi", (*wifi.SoftApConfig)(nil)).Once()

		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/wifi/emergency-callback", "0", privilegedToken, map[string]bool{"active": true}).Code)
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/wifi/emergency-call", "0", privilegedToken, map[string]bool{"active": false}).Code)
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/v1/wifi/restart", "0", privilegedToken, nil).Code)
	})

	t.Run("status", func(t *testing.T) {
		f := newFixture(t)
		f.controller.On("Status").Return(controller.Status{State: wifi.StateDeviceActive})
		f.settings.On("PersistedState").Return(settings.StateEnabled)
		f.locks.On("StrongestMode").Return(lock.ModeFull)

		rec := f.do(http.MethodGet, "/v1/wifi/status", "1000", "", nil)
		body := decode(t, rec)
		assert.Equal(t, "DeviceActive", body["controller"].(map[string]interface{})["state"])
		assert.Equal(t, "FULL", body["strongestMode"])
		assert.Equal(t, map[string]interface{}{"clients": float64(1), "dropped": float64(0)}, body["eventStream"])
	})
}

func TestProvisioning(t *testing.T) {
	f := newFixture(t)
	provider := provisioning.Provider{FriendlyName: "Example", ServerURI: "https://osu.example.com", OsuSSID: "Example-OSU"}
	requesterUID, otherUID := 10020, 10021
	requester := event.NewClient("requester", &requesterUID, nil)
	other := event.NewClient("other", &otherUID, nil)
	f.hub.Register(requester)
	f.hub.Register(other)

	rec := f.do(http.MethodPost, "/v1/provisioning", "10020", "", provider)
	require.Equal(t, http.StatusAccepted, rec.Code)
	requestID := decode(t, rec)["requestId"]
	assert.Equal(t, 10020, f.provisioner.uid)

	f.provisioner.cb.OnStatus(provisioning.StatusAPConnecting)
	require.Len(t, requester.Messages, 1)
	e := <-requester.Messages
	assert.Equal(t, event.TypeProvisioningStatus, e.Type)
	var data provisioningEvent
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, provisioningEvent{RequestID: requestID.(string), UID: 10020, Status: "AP_CONNECTING"}, data)

	f.provisioner.cb.OnFailure(provisioning.FailureAPConnection)
	require.Len(t, requester.Messages, 1)
	assert.Equal(t, event.TypeProvisioningFailure, (<-requester.Messages).Type)

	f.provisioner.cb.OnComplete()
	require.Len(t, requester.Messages, 1)
	assert.Equal(t, event.TypeProvisioningComplete, (<-requester.Messages).Type)

	assert.Empty(t, other.Messages)
	assert.Empty(t, f.events.Messages)

	rec = f.do(http.MethodGet, "/v1/provisioning/status", "10020", "", nil)
	assert.Equal(t, "AP_CONNECTING", decode(t, rec)["stage"])

	t.Run("invalid provider", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/provisioning", "10020", "", provisioning.Provider{ServerURI: "https://x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEventPublishers(t *testing.T) {
	f := newFixture(t)
	f.locks.On("Locks").Return([]lock.Record{{Handle: "h"}})

	next := &countingListener{}
	f.server.LocksListener(next).LocksChanged()
	assert.Equal(t, 1, next.n)
	assert.Equal(t, event.TypeLocksChanged, f.nextEvent(t).Type)

	f.server.PublishOpMode(lock.ModeFull, lock.ModeFullHighPerf)
	e := f.nextEvent(t)
	assert.Equal(t, event.TypeOpModeChanged, e.Type)
	assert.JSONEq(t, `{"from":"FULL","to":"FULL_HIGH_PERF"}`, string(e.Data))

	f.server.PublishTransition(wifi.Transition{From: wifi.StateApStaDisabled, To: wifi.StateStaEnabled})
	assert.Equal(t, event.TypeTransition, f.nextEvent(t).Type)

	f.server.PublishSettingChanged(settings.KeyAirplaneModeOn)
	assert.Equal(t, event.TypeSettingChanged, f.nextEvent(t).Type)
}

type countingListener struct{ n int }

func (c *countingListener) LocksChanged() { c.n++ }

type fakeTransitions struct {
	limit int
	list  []wifi.Transition
}

func (f *fakeTransitions) Recent(_ context.Context, limit int) ([]wifi.Transition, error) {
	f.limit = limit
	return f.list, nil
}

type fakeUsage struct{ summary []postgres.UsageSummary }

func (f fakeUsage) Summarize(context.Context) ([]postgres.UsageSummary, error) {
	return f.summary, nil
}

func TestOptionalHistoryEndpoints(t *testing.T) {
	t.Run("unavailable without backing store", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/v1/wifi/transitions", "10010", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		rec = f.do(http.MethodGet, "/v1/locks/usage", "10010", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("transitions and usage", func(t *testing.T) {
		f := newFixture(t)
		transitions := &fakeTransitions{list: []wifi.Transition{{From: wifi.StateApStaDisabled, To: wifi.StateStaEnabled, Event: "CMD_WIFI_TOGGLED"}}}
		f.server.transitions = transitions
		f.server.usage = fakeUsage{summary: []postgres.UsageSummary{{UID: 52, Mode: "FULL_HIGH_PERF", Acquired: 2, Released: 1}}}

		rec := f.do(http.MethodGet, "/v1/wifi/transitions?limit=7", "10010", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 7, transitions.limit)
		list := decode(t, rec)["transitions"].([]interface{})
		require.Len(t, list, 1)
		assert.Equal(t, "StaEnabled", list[0].(map[string]interface{})["to"])

		rec = f.do(http.MethodGet, "/v1/locks/usage", "10010", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		usage := decode(t, rec)["usage"].([]interface{})
		require.Len(t, usage, 1)
		assert.Equal(t, float64(52), usage[0].(map[string]interface{})["uid"])
	})
}
