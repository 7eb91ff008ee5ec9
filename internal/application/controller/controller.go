package controller

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
	"github.com/execution-hub/wifictl/internal/infrastructure/looper"
)

// deferMargin pads deferred toggles since delayed tasks can fire a little early.
const deferMargin = 5 * time.Millisecond

// Config gates optional controller behavior.
type Config struct {
	StaApConcurrency bool
	DisableInECBM    bool
	SleepPolicy      string
	WifiOffDeferMax  time.Duration
}

// Deps are the collaborators of the controller.
type Deps struct {
	Handler  looper.Handler
	Station  wifi.StationControl
	SoftAp   wifi.SoftApControl
	Settings wifi.SettingsStore
	Locks    wifi.LockModeSource
	Ims      wifi.ImsMonitor
}

// Status is a snapshot of the controller.
type Status struct {
	State            wifi.StateID   `json:"state"`
	Path             []wifi.StateID `json:"path"`
	ScreenOff        bool           `json:"screenOff"`
	DeviceIdle       bool           `json:"deviceIdle"`
	PluggedType      int            `json:"pluggedType"`
	NetworkConnected bool           `json:"networkConnected"`
	StaApConcurrency bool           `json:"staApConcurrency"`
	DeferredMessages int            `json:"deferredMessages"`
	EcmEntryCount    int            `json:"ecmEntryCount"`
	IdleTimerArmed   bool           `json:"idleTimerArmed"`
	WifiOffDeferring bool           `json:"wifiOffDeferring"`
}

// deferredEnable tracks re-enable requests that arrive too soon after a disable.
type deferredEnable struct {
	serial     int
	have       bool
	disabledAt time.Time
}

// Service serializes Wi-Fi station and SoftAP mode changes. All state is
// owned by the looper goroutine; exported methods only post messages.
type Service struct {
	cfg      Config
	handler  looper.Handler
	station  wifi.StationControl
	softAp   wifi.SoftApControl
	settings wifi.SettingsStore
	locks    wifi.LockModeSource

	m         *machine
	stayAwake *stayAwakePolicy
	wifiOff   *wifiOffDeferral

	screenOff           bool
	deviceIdle          bool
	pluggedType         int
	firstUserSignOnSeen bool
	restartStaSapStack  bool
	networkConnected    atomic.Bool

	idleToken looper.Token
	idleArmed bool

	apStaDisabled       deferredEnable
	staDisabledWithScan deferredEnable
	apStaEnabled        deferredEnable
	apPendingState      wifi.StateID
	ecmEntryCount       int

	mu          sync.RWMutex
	status      Status
	observers   []func(wifi.Transition)
	initialized bool

	logger zerolog.Logger
}

func NewService(cfg Config, deps Deps, logger zerolog.Logger) (*Service, error) {
	logger = logger.With().Str("service", "controller").Logger()
	policy, err := newStayAwakePolicy(cfg.SleepPolicy, logger)
	if err != nil {
		return nil, err
	}
	s := &Service{
		cfg:       cfg,
		handler:   deps.Handler,
		station:   deps.Station,
		softAp:    deps.SoftAp,
		settings:  deps.Settings,
		locks:     deps.Locks,
		stayAwake: policy,
		wifiOff:   newWifiOffDeferral(deps.Handler, deps.Ims, cfg.WifiOffDeferMax, logger),
		logger:    logger,
	}
	s.m = newMachine(deps.Handler, logger)
	s.m.onTransition = s.transitioned
	s.m.onDispatched = s.refreshStatus
	s.wifiOff.changed = s.refreshStatus
	s.buildStates()
	s.m.build()
	return s, nil
}

// OnTransition registers fn to observe every state change. Register before Start.
func (s *Service) OnTransition(fn func(wifi.Transition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Start enters the initial state on the looper.
func (s *Service) Start() {
	s.handler.Post(func() {
		initial := wifi.StateApStaDisabled
		if s.settings.IsScanAlwaysAvailable() {
			initial = wifi.StateStaDisabledWithScan
		}
		s.logger.Info().
			Bool("airplaneModeOn", s.settings.IsAirplaneModeOn()).
			Bool("wifiEnabled", s.settings.IsWifiToggleEnabled()).
			Bool("scanAlwaysAvailable", s.settings.IsScanAlwaysAvailable()).
			Str("state", string(initial)).
			Msg("starting controller")
		s.m.start(initial)
	})
}

// Send queues msg for the state machine.
func (s *Service) Send(msg wifi.Message) {
	s.m.send(msg)
}

func (s *Service) SetScreenOn(on bool) {
	if on {
		s.Send(wifi.Message{What: wifi.CmdScreenOn})
		return
	}
	s.Send(wifi.Message{What: wifi.CmdScreenOff})
}

// SetPluggedType reports the charger bitmask (1 AC, 2 USB, 4 wireless).
func (s *Service) SetPluggedType(plugged int) {
	s.Send(wifi.Message{What: wifi.CmdBatteryChanged, Arg1: plugged})
}

func (s *Service) DeviceIdle() {
	s.Send(wifi.Message{What: wifi.CmdDeviceIdle})
}

func (s *Service) UserPresent() {
	s.Send(wifi.Message{What: wifi.CmdUserPresent})
}

// LocksChanged is called by the lock registry.
func (s *Service) LocksChanged() {
	s.Send(wifi.Message{What: wifi.CmdLocksChanged})
}

func (s *Service) WifiToggled() {
	s.Send(wifi.Message{What: wifi.CmdWifiToggled})
}

func (s *Service) AirplaneToggled() {
	s.Send(wifi.Message{What: wifi.CmdAirplaneToggled})
}

func (s *Service) ScanAlwaysModeChanged() {
	s.Send(wifi.Message{What: wifi.CmdScanAlwaysModeChanged})
}

// SetSoftAp requests the hotspot on or off. cfg is required to enable.
func (s *Service) SetSoftAp(enable bool, cfg *wifi.SoftApConfig) {
	s.Send(wifi.Message{What: wifi.CmdSetAp, Arg1: wifi.BoolArg(enable), Obj: cfg})
}

func (s *Service) EmergencyCallbackMode(active bool) {
	s.Send(wifi.Message{What: wifi.CmdEmergencyModeChanged, Arg1: wifi.BoolArg(active)})
}

func (s *Service) EmergencyCall(active bool) {
	s.Send(wifi.Message{What: wifi.CmdEmergencyCallStateChanged, Arg1: wifi.BoolArg(active)})
}

// RestartWifi restarts the station stack, and the SoftAP with concurrency.
// cfg is used to bring the SoftAP back up.
func (s *Service) RestartWifi(cfg *wifi.SoftApConfig) {
	s.Send(wifi.Message{What: wifi.CmdRestartWifi, Obj: cfg})
}

// SetNetworkConnected records whether the station is associated.
func (s *Service) SetNetworkConnected(connected bool) {
	s.networkConnected.Store(connected)
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Path = append([]wifi.StateID(nil), s.status.Path...)
	st.NetworkConnected = s.networkConnected.Load()
	return st
}

func (s *Service) refreshStatus() {
	st := Status{
		State:            s.m.current,
		Path:             append([]wifi.StateID(nil), s.m.chains[s.m.current]...),
		ScreenOff:        s.screenOff,
		DeviceIdle:       s.deviceIdle,
		PluggedType:      s.pluggedType,
		StaApConcurrency: s.cfg.StaApConcurrency,
		DeferredMessages: len(s.m.deferred),
		EcmEntryCount:    s.ecmEntryCount,
		IdleTimerArmed:   s.idleArmed,
		WifiOffDeferring: s.wifiOff.deferring,
	}
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Service) transitioned(from, to wifi.StateID, msg wifi.Message) {
	t := wifi.Transition{
		ID:    uuid.New(),
		From:  from,
		To:    to,
		Event: msg.What.String(),
		At:    s.handler.Now().UTC(),
	}
	if msg.What == 0 {
		t.Event = "INIT"
	}
	s.logger.Info().Str("from", string(from)).Str("to", string(to)).Str("event", t.Event).Msg("transition")
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()
	for _, fn := range observers {
		fn(t)
	}
}

// checkLocksAndTransitionWhenDeviceIdle picks the idle sub-state matching
// the strongest held lock.
func (s *Service) checkLocksAndTransitionWhenDeviceIdle() {
	switch s.locks.StrongestMode() {
	case lock.ModeNoLocksHeld:
		if s.settings.IsScanAlwaysAvailable() {
			s.m.transitionTo(wifi.StateScanOnlyLockHeld)
		} else {
			s.m.transitionTo(wifi.StateNoLockHeld)
		}
	case lock.ModeFull:
		s.m.transitionTo(wifi.StateFullLockHeld)
	case lock.ModeFullHighPerf, lock.ModeFullLowLatency:
		s.m.transitionTo(wifi.StateFullHighPerfLockHeld)
	case lock.ModeScanOnly:
		s.m.transitionTo(wifi.StateScanOnlyLockHeld)
	}
}

func (s *Service) updateBatteryWorkSource() {
	var ws lock.WorkSource
	if s.deviceIdle {
		ws = s.locks.MergedWorkSource()
	}
	s.station.UpdateBatteryWorkSource(ws)
}

func (s *Service) shouldWifiStayAwake(pluggedType int) bool {
	return s.stayAwake.shouldStayAwake(pluggedType, s.settings.StayAwakeConditions())
}

func (s *Service) armIdleTimer() {
	s.cancelIdleTimer()
	delay := s.settings.IdleTimeout()
	s.logger.Debug().Dur("delay", delay).Msg("set idle timer")
	s.idleToken = s.m.sendDelayed(wifi.Message{What: wifi.CmdDeviceIdle}, delay)
	s.idleArmed = true
}

func (s *Service) cancelIdleTimer() {
	if s.idleArmed {
		s.handler.Remove(s.idleToken)
		s.idleArmed = false
	}
}

// setSupplicantRunning routes stops through the IMS deferral.
func (s *Service) setSupplicantRunning(enable bool) {
	if enable {
		s.wifiOff.cancel()
		s.station.SetSupplicantRunning(true)
		return
	}
	s.wifiOff.start(func() { s.station.SetSupplicantRunning(false) })
}

func (s *Service) resetDeferredEnable(d *deferredEnable) {
	d.disabledAt = s.handler.Now()
	d.serial++
	d.have = false
}

// deferEnable postpones msg when it arrives within the re-enable delay of
// the last disable. Two stacked deferrals cancel each other.
func (s *Service) deferEnable(d *deferredEnable, msg wifi.Message) bool {
	delaySoFar := s.handler.Now().Sub(d.disabledAt)
	delay := s.settings.ReEnableDelay()
	if delaySoFar >= delay {
		return false
	}
	wait := delay - delaySoFar + deferMargin
	s.logger.Info().Stringer("event", msg.What).Dur("delay", wait).Msg("deferring enable")
	d.serial++
	s.m.sendDelayed(wifi.Message{What: wifi.CmdDeferredToggle, Arg1: d.serial, Obj: msg}, wait)
	if d.have {
		d.serial++
	}
	d.have = !d.have
	return true
}

// replayDeferredToggle resends the wrapped toggle when its serial is current.
func (s *Service) replayDeferredToggle(d *deferredEnable, msg wifi.Message) bool {
	if msg.Arg1 != d.serial {
		s.logger.Debug().Msg("DEFERRED_TOGGLE ignored due to serial mismatch")
		return true
	}
	orig, ok := msg.Obj.(wifi.Message)
	if !ok {
		return true
	}
	s.logger.Debug().Msg("DEFERRED_TOGGLE handled")
	s.m.send(orig)
	return true
}

func softApConfig(msg wifi.Message) *wifi.SoftApConfig {
	cfg, _ := msg.Obj.(*wifi.SoftApConfig)
	return cfg
}
