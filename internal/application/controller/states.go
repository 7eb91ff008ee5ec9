package controller

import (
	"github.com/execution-hub/wifictl/internal/domain/settings"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

type handlers map[wifi.Command]action

func handledBy(fn func(msg wifi.Message)) action {
	return func(msg wifi.Message) bool {
		fn(msg)
		return true
	}
}

func absorb(wifi.Message) bool { return true }

// deferAll defers every listed command in the state.
func (s *Service) deferAll(h handlers, cmds ...wifi.Command) {
	for _, c := range cmds {
		h[c] = handledBy(s.m.deferMessage)
	}
}

// deferAsResend defers a SET_AP marked as a resend so the receiving state
// does not overwrite the saved station state.
func (s *Service) deferAsResend(msg wifi.Message) bool {
	msg.Arg2 = 1
	s.m.deferMessage(msg)
	return true
}

func (s *Service) buildStates() {
	defaultState := handlers{}
	for _, c := range wifi.Commands() {
		defaultState[c] = absorb
	}
	defaultState[wifi.CmdScreenOn] = handledBy(s.onScreenOn)
	defaultState[wifi.CmdScreenOff] = handledBy(s.onScreenOff)
	defaultState[wifi.CmdBatteryChanged] = handledBy(s.onBatteryChanged)
	defaultState[wifi.CmdDeviceIdle] = handledBy(func(wifi.Message) {
		s.idleArmed = false
		s.deviceIdle = true
		s.updateBatteryWorkSource()
	})
	defaultState[wifi.CmdUserPresent] = handledBy(func(wifi.Message) {
		s.firstUserSignOnSeen = true
	})
	defaultState[wifi.CmdDeferredToggle] = handledBy(func(wifi.Message) {
		s.logger.Debug().Msg("DEFERRED_TOGGLE ignored due to state change")
	})
	s.m.add(&state{id: wifi.StateDefault, on: defaultState})

	s.m.add(&state{
		id:     wifi.StateApStaDisabled,
		parent: wifi.StateDefault,
		enter:  func(wifi.Message) { s.resetDeferredEnable(&s.apStaDisabled) },
		on:     s.apStaDisabledHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateStaEnabling,
		parent: wifi.StateDefault,
		enter: func(wifi.Message) {
			s.station.SetOperationalMode(wifi.ModeConnect)
			s.setSupplicantRunning(true)
		},
		on: s.staEnablingHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateStaDisabling,
		parent: wifi.StateDefault,
		enter: func(wifi.Message) {
			s.setSupplicantRunning(false)
			s.station.ClearANQPCache()
		},
		on: s.staDisablingHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateApEnabling,
		parent: wifi.StateDefault,
		enter: func(wifi.Message) {
			s.softAp.SetHostApRunning(softApConfig(s.m.currentMessage()), true)
		},
		on: s.apEnablingHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateApDisabling,
		parent: wifi.StateDefault,
		enter: func(wifi.Message) {
			s.softAp.SetHostApRunning(softApConfig(s.m.currentMessage()), false)
		},
		on: s.apDisablingHandlers(),
	})
	s.m.add(&state{id: wifi.StateApStaEnabling, parent: wifi.StateDefault, on: s.apStaEnablingHandlers()})
	s.m.add(&state{id: wifi.StateApStaDisabling, parent: wifi.StateDefault, on: s.apStaDisablingHandlers()})
	s.m.add(&state{
		id:     wifi.StateApStaEnabled,
		parent: wifi.StateDefault,
		enter:  func(wifi.Message) { s.resetDeferredEnable(&s.apStaEnabled) },
		on:     s.apStaEnabledHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateStaEnabled,
		parent: wifi.StateDefault,
		enter: func(wifi.Message) {
			if !s.cfg.StaApConcurrency {
				s.setSupplicantRunning(true)
			}
		},
		on: s.staEnabledHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateStaDisabledWithScan,
		parent: wifi.StateDefault,
		enter: func(wifi.Message) {
			s.station.SetOperationalMode(wifi.ModeScanOnlyWithWifiOff)
			s.setSupplicantRunning(true)
			s.resetDeferredEnable(&s.staDisabledWithScan)
			s.station.ClearANQPCache()
		},
		on: s.staDisabledWithScanHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateApEnabled,
		parent: wifi.StateDefault,
		enter:  func(wifi.Message) { s.apPendingState = "" },
		on:     s.apEnabledHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateEcm,
		parent: wifi.StateDefault,
		enter: func(wifi.Message) {
			s.setSupplicantRunning(false)
			s.station.ClearANQPCache()
			s.ecmEntryCount = 1
		},
		exit: func() { s.ecmEntryCount = 0 },
		on:   s.ecmHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateDeviceActive,
		parent: wifi.StateStaEnabled,
		enter: func(wifi.Message) {
			s.station.SetOperationalMode(wifi.ModeConnect)
			s.station.SetHighPerfModeEnabled(false)
		},
		on: s.deviceActiveHandlers(),
	})
	s.m.add(&state{
		id:     wifi.StateDeviceInactive,
		parent: wifi.StateStaEnabled,
		on: handlers{
			wifi.CmdLocksChanged: handledBy(func(wifi.Message) {
				s.checkLocksAndTransitionWhenDeviceIdle()
				s.updateBatteryWorkSource()
			}),
			wifi.CmdScreenOn: func(wifi.Message) bool {
				s.m.transitionTo(wifi.StateDeviceActive)
				return false
			},
		},
	})
	s.m.add(&state{
		id:     wifi.StateScanOnlyLockHeld,
		parent: wifi.StateDeviceInactive,
		enter:  func(wifi.Message) { s.station.SetOperationalMode(wifi.ModeScanOnly) },
	})
	s.m.add(&state{
		id:     wifi.StateFullLockHeld,
		parent: wifi.StateDeviceInactive,
		enter: func(wifi.Message) {
			s.station.SetOperationalMode(wifi.ModeConnect)
			s.station.SetHighPerfModeEnabled(false)
		},
	})
	s.m.add(&state{
		id:     wifi.StateFullHighPerfLockHeld,
		parent: wifi.StateDeviceInactive,
		enter: func(wifi.Message) {
			s.station.SetOperationalMode(wifi.ModeConnect)
			s.station.SetHighPerfModeEnabled(true)
		},
	})
	s.m.add(&state{
		id:     wifi.StateNoLockHeld,
		parent: wifi.StateDeviceInactive,
		enter:  func(wifi.Message) { s.station.SetOperationalMode(wifi.ModeDisabled) },
	})
}

func (s *Service) onScreenOn(wifi.Message) {
	s.cancelIdleTimer()
	s.screenOff = false
	s.deviceIdle = false
	s.updateBatteryWorkSource()
}

func (s *Service) onScreenOff(wifi.Message) {
	s.screenOff = true
	if s.shouldWifiStayAwake(s.pluggedType) {
		return
	}
	if s.networkConnected.Load() {
		s.armIdleTimer()
		return
	}
	s.cancelIdleTimer()
	s.idleToken = s.m.send(wifi.Message{What: wifi.CmdDeviceIdle})
	s.idleArmed = true
}

func (s *Service) onBatteryChanged(msg wifi.Message) {
	plugged := msg.Arg1
	if s.screenOff && s.shouldWifiStayAwake(s.pluggedType) && !s.shouldWifiStayAwake(plugged) {
		s.armIdleTimer()
	}
	s.pluggedType = plugged
}

// enableStation brings the station up from a fully disabled state.
func (s *Service) enableStation() {
	if s.deviceIdle {
		s.checkLocksAndTransitionWhenDeviceIdle()
		return
	}
	if s.cfg.StaApConcurrency {
		s.m.transitionTo(wifi.StateStaEnabling)
		return
	}
	s.m.transitionTo(wifi.StateDeviceActive)
}

func (s *Service) apStaDisabledHandlers() handlers {
	toggled := func(msg wifi.Message) bool {
		if s.settings.IsWifiToggleEnabled() {
			if s.deferEnable(&s.apStaDisabled, msg) {
				return true
			}
			s.enableStation()
			return true
		}
		if s.settings.IsScanAlwaysAvailable() {
			s.m.transitionTo(wifi.StateStaDisabledWithScan)
		}
		return true
	}
	return handlers{
		wifi.CmdWifiToggled:     toggled,
		wifi.CmdAirplaneToggled: toggled,
		wifi.CmdScanAlwaysModeChanged: handledBy(func(wifi.Message) {
			if s.settings.IsScanAlwaysAvailable() {
				s.m.transitionTo(wifi.StateStaDisabledWithScan)
			}
		}),
		wifi.CmdSetAp: handledBy(func(msg wifi.Message) {
			if msg.Arg1 != 1 {
				return
			}
			if msg.Arg2 == 0 {
				s.settings.SetWifiSavedState(settings.SavedDisabled)
			}
			if s.cfg.StaApConcurrency {
				s.m.transitionTo(wifi.StateApEnabling)
				return
			}
			s.softAp.SetHostApRunning(softApConfig(msg), true)
			s.m.transitionTo(wifi.StateApEnabled)
		}),
		wifi.CmdDeferredToggle: func(msg wifi.Message) bool {
			return s.replayDeferredToggle(&s.apStaDisabled, msg)
		},
		wifi.CmdRestartWifiContinue: handledBy(func(msg wifi.Message) {
			if !s.cfg.StaApConcurrency {
				s.m.transitionTo(wifi.StateDeviceActive)
				return
			}
			if s.restartStaSapStack {
				s.m.deferMessage(msg)
			}
			s.m.transitionTo(wifi.StateStaEnabling)
		}),
	}
}

func (s *Service) staEnablingHandlers() handlers {
	h := handlers{
		wifi.CmdStaStartFailure: handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateApStaDisabled) }),
		wifi.CmdWifiEnabled:     handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateDeviceActive) }),
		wifi.CmdSetAp:           s.deferAsResend,
	}
	s.deferAll(h, wifi.CmdWifiToggled, wifi.CmdAirplaneToggled, wifi.CmdRestartWifiContinue, wifi.CmdScanAlwaysModeChanged)
	return h
}

func (s *Service) staDisablingHandlers() handlers {
	done := handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateApStaDisabled) })
	h := handlers{
		wifi.CmdWifiStopFailure: done,
		wifi.CmdWifiDisabled:    done,
	}
	s.deferAll(h, wifi.CmdWifiToggled, wifi.CmdSetAp, wifi.CmdAirplaneToggled, wifi.CmdRestartWifiContinue, wifi.CmdScanAlwaysModeChanged)
	return h
}

func (s *Service) apEnablingHandlers() handlers {
	h := handlers{
		wifi.CmdApStartFailure: handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateApStaDisabled) }),
		wifi.CmdApStarted:      handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateApEnabled) }),
		wifi.CmdSetAp:          s.deferAsResend,
		wifi.CmdAirplaneToggled: s.deferAsResend,
	}
	s.deferAll(h, wifi.CmdWifiToggled, wifi.CmdScanAlwaysModeChanged)
	return h
}

func (s *Service) apDisablingHandlers() handlers {
	h := handlers{
		wifi.CmdApStopped: handledBy(func(wifi.Message) {
			switch {
			case s.settings.IsScanAlwaysAvailable():
				s.m.transitionTo(wifi.StateStaDisabledWithScan)
			case s.settings.IsAirplaneModeOn() && s.station.OperationalMode() != wifi.ModeConnect:
				s.station.SetOperationalMode(wifi.ModeConnect)
				s.m.transitionTo(wifi.StateStaDisabling)
			default:
				s.m.transitionTo(wifi.StateApStaDisabled)
			}
		}),
		wifi.CmdApStopFailure: handledBy(func(wifi.Message) {
			if s.settings.IsScanAlwaysAvailable() {
				s.m.transitionTo(wifi.StateStaDisabledWithScan)
				return
			}
			s.m.transitionTo(wifi.StateApStaDisabled)
		}),
	}
	s.deferAll(h, wifi.CmdSetAp, wifi.CmdWifiToggled, wifi.CmdAirplaneToggled, wifi.CmdScanAlwaysModeChanged)
	return h
}

func (s *Service) apStaEnablingHandlers() handlers {
	both := handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateApStaEnabled) })
	h := handlers{
		wifi.CmdSetAp:           s.deferAsResend,
		wifi.CmdWifiEnabled:     both,
		wifi.CmdApStarted:       both,
		wifi.CmdStaStartFailure: handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateApEnabled) }),
		wifi.CmdApStartFailure:  handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateStaEnabled) }),
	}
	s.deferAll(h, wifi.CmdWifiToggled, wifi.CmdAirplaneToggled, wifi.CmdScanAlwaysModeChanged)
	return h
}

func (s *Service) apStaDisablingHandlers() handlers {
	h := handlers{
		wifi.CmdSetAp:           s.deferAsResend,
		wifi.CmdWifiEnabled:     absorb,
		wifi.CmdApStarted:       absorb,
		wifi.CmdStaStartFailure: absorb,
		wifi.CmdWifiDisabled:    handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateApEnabled) }),
		wifi.CmdApStopped:       handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateStaEnabled) }),
	}
	s.deferAll(h, wifi.CmdWifiToggled, wifi.CmdAirplaneToggled, wifi.CmdRestartWifi, wifi.CmdScanAlwaysModeChanged)
	return h
}

func (s *Service) apStaEnabledHandlers() handlers {
	return handlers{
		wifi.CmdSetAp: handledBy(func(msg wifi.Message) {
			if msg.Arg1 != 0 {
				return
			}
			s.softAp.SetHostApRunning(nil, false)
			s.m.transitionTo(wifi.StateApStaDisabling)
		}),
		wifi.CmdWifiToggled: handledBy(func(msg wifi.Message) {
			if s.settings.IsWifiToggleEnabled() {
				return
			}
			if s.deferEnable(&s.apStaEnabled, msg) {
				return
			}
			// Either way the station reports WIFI_DISABLED, which
			// completes the disable in ApStaDisabling.
			if s.settings.IsScanAlwaysAvailable() {
				s.station.SetOperationalMode(wifi.ModeScanOnlyWithWifiOff)
			} else {
				s.station.SetOperationalMode(wifi.ModeConnect)
				s.setSupplicantRunning(false)
			}
			s.m.transitionTo(wifi.StateApStaDisabling)
		}),
		wifi.CmdAirplaneToggled: handledBy(func(msg wifi.Message) {
			s.softAp.SetHostApRunning(nil, false)
			s.m.deferMessage(msg)
			s.m.transitionTo(wifi.StateApStaDisabling)
		}),
		wifi.CmdStaStartFailure: handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateApEnabled) }),
		wifi.CmdApStartFailure:  handledBy(func(wifi.Message) { s.m.transitionTo(wifi.StateStaEnabled) }),
		wifi.CmdRestartWifi: handledBy(func(msg wifi.Message) {
			s.softAp.SetHostApRunning(nil, false)
			s.restartStaSapStack = true
			s.m.deferMessage(msg)
			s.m.transitionTo(wifi.StateApStaDisabling)
		}),
		wifi.CmdDeferredToggle: func(msg wifi.Message) bool {
			return s.replayDeferredToggle(&s.apStaEnabled, msg)
		},
	}
}

func (s *Service) staEnabledHandlers() handlers {
	emergency := handledBy(func(msg wifi.Message) {
		s.logger.Info().Stringer("event", msg.What).Bool("disableInEcbm", s.cfg.DisableInECBM).Msg("emergency state changed")
		if msg.Arg1 == 1 && s.cfg.DisableInECBM {
			s.m.transitionTo(wifi.StateEcm)
		}
	})
	return handlers{
		wifi.CmdWifiToggled: handledBy(func(wifi.Message) {
			if s.settings.IsWifiToggleEnabled() {
				return
			}
			if s.settings.IsScanAlwaysAvailable() {
				s.m.transitionTo(wifi.StateStaDisabledWithScan)
				return
			}
			s.m.transitionTo(wifi.StateStaDisabling)
		}),
		wifi.CmdAirplaneToggled: handledBy(func(wifi.Message) {
			if !s.settings.IsWifiToggleEnabled() {
				s.m.transitionTo(wifi.StateStaDisabling)
			}
		}),
		wifi.CmdStaStartFailure: handledBy(func(wifi.Message) {
			if s.settings.IsScanAlwaysAvailable() {
				s.m.transitionTo(wifi.StateStaDisabledWithScan)
				return
			}
			s.m.transitionTo(wifi.StateApStaDisabled)
		}),
		wifi.CmdEmergencyCallStateChanged: emergency,
		wifi.CmdEmergencyModeChanged:      emergency,
		wifi.CmdSetAp: handledBy(func(msg wifi.Message) {
			if msg.Arg1 != 1 {
				return
			}
			if s.cfg.StaApConcurrency {
				s.softAp.SetHostApRunning(softApConfig(msg), true)
				s.m.transitionTo(wifi.StateApStaEnabling)
				return
			}
			s.settings.SetWifiSavedState(settings.SavedEnabled)
			s.deferAsResend(msg)
			s.m.transitionTo(wifi.StateStaDisabling)
		}),
		wifi.CmdRestartWifi: handledBy(func(msg wifi.Message) {
			s.m.deferMessage(wifi.Message{What: wifi.CmdRestartWifiContinue, Obj: msg.Obj})
			s.m.transitionTo(wifi.StateStaDisabling)
		}),
		wifi.CmdRestartWifiContinue: handledBy(func(msg wifi.Message) {
			if s.cfg.StaApConcurrency && s.restartStaSapStack {
				if cfg := softApConfig(msg); cfg != nil {
					s.softAp.SetHostApRunning(cfg, true)
					s.m.transitionTo(wifi.StateApStaEnabling)
				}
			}
			s.restartStaSapStack = false
		}),
	}
}

func (s *Service) staDisabledWithScanHandlers() handlers {
	return handlers{
		wifi.CmdWifiToggled: handledBy(func(msg wifi.Message) {
			if !s.settings.IsWifiToggleEnabled() {
				return
			}
			if s.deferEnable(&s.staDisabledWithScan, msg) {
				return
			}
			if s.deviceIdle {
				s.checkLocksAndTransitionWhenDeviceIdle()
				return
			}
			s.m.transitionTo(wifi.StateDeviceActive)
		}),
		wifi.CmdAirplaneToggled: handledBy(func(wifi.Message) {
			if s.settings.IsAirplaneModeOn() && !s.settings.IsWifiToggleEnabled() {
				s.m.transitionTo(wifi.StateStaDisabling)
			}
		}),
		wifi.CmdScanAlwaysModeChanged: handledBy(func(wifi.Message) {
			if !s.settings.IsScanAlwaysAvailable() {
				s.station.SetOperationalMode(wifi.ModeConnect)
				s.m.transitionTo(wifi.StateStaDisabling)
			}
		}),
		wifi.CmdSetAp: handledBy(func(msg wifi.Message) {
			if msg.Arg1 != 1 {
				return
			}
			if s.cfg.StaApConcurrency {
				s.m.transitionTo(wifi.StateApEnabling)
				return
			}
			s.settings.SetWifiSavedState(settings.SavedDisabled)
			s.deferAsResend(msg)
			s.m.transitionTo(wifi.StateStaDisabling)
		}),
		wifi.CmdDeferredToggle: func(msg wifi.Message) bool {
			return s.replayDeferredToggle(&s.staDisabledWithScan, msg)
		},
	}
}

// nextWifiState is where the station goes once the SoftAP is down.
func (s *Service) nextWifiState() wifi.StateID {
	if s.settings.WifiSavedState() == settings.SavedEnabled && !s.cfg.StaApConcurrency {
		return wifi.StateDeviceActive
	}
	if s.settings.IsScanAlwaysAvailable() {
		return wifi.StateStaDisabledWithScan
	}
	return wifi.StateApStaDisabled
}

func (s *Service) stopSoftApThen(next wifi.StateID) {
	s.softAp.SetHostApRunning(nil, false)
	s.apPendingState = next
}

func (s *Service) apEnabledHandlers() handlers {
	emergency := handledBy(func(msg wifi.Message) {
		if msg.Arg1 == 1 {
			s.stopSoftApThen(wifi.StateEcm)
		}
	})
	return handlers{
		wifi.CmdAirplaneToggled: handledBy(func(wifi.Message) {
			if !s.settings.IsAirplaneModeOn() {
				return
			}
			if s.cfg.StaApConcurrency {
				s.m.transitionTo(wifi.StateApDisabling)
				return
			}
			s.stopSoftApThen(wifi.StateApStaDisabled)
		}),
		wifi.CmdWifiToggled: handledBy(func(wifi.Message) {
			if !s.settings.IsWifiToggleEnabled() {
				return
			}
			if !s.cfg.StaApConcurrency {
				s.stopSoftApThen(wifi.StateDeviceActive)
				return
			}
			if s.settings.IsScanAlwaysAvailable() {
				s.station.SetOperationalMode(wifi.ModeConnect)
				s.m.transitionTo(wifi.StateApStaEnabled)
				return
			}
			s.station.SetOperationalMode(wifi.ModeConnect)
			s.setSupplicantRunning(true)
			s.m.transitionTo(wifi.StateApStaEnabling)
		}),
		wifi.CmdScanAlwaysModeChanged: func(wifi.Message) bool {
			if !s.cfg.StaApConcurrency {
				return false
			}
			if s.settings.IsScanAlwaysAvailable() {
				s.setSupplicantRunning(true)
				s.station.SetOperationalMode(wifi.ModeScanOnlyWithWifiOff)
				return true
			}
			s.station.SetOperationalMode(wifi.ModeConnect)
			s.setSupplicantRunning(false)
			return true
		},
		wifi.CmdSetAp: handledBy(func(msg wifi.Message) {
			if msg.Arg1 != 0 {
				return
			}
			if s.cfg.StaApConcurrency {
				s.m.transitionTo(wifi.StateApDisabling)
				return
			}
			s.stopSoftApThen(s.nextWifiState())
		}),
		wifi.CmdApStopped: handledBy(func(wifi.Message) {
			if s.apPendingState == "" {
				s.apPendingState = s.nextWifiState()
			}
			if s.apPendingState == wifi.StateDeviceActive && s.deviceIdle {
				s.checkLocksAndTransitionWhenDeviceIdle()
				return
			}
			s.m.transitionTo(s.apPendingState)
		}),
		wifi.CmdEmergencyCallStateChanged: emergency,
		wifi.CmdEmergencyModeChanged:      emergency,
		wifi.CmdApStartFailure: handledBy(func(wifi.Message) {
			s.m.transitionTo(s.nextWifiState())
		}),
		wifi.CmdApStarted: absorb,
	}
}

func (s *Service) ecmHandlers() handlers {
	emergency := handledBy(func(msg wifi.Message) {
		switch msg.Arg1 {
		case 1:
			s.ecmEntryCount++
		case 0:
			if s.ecmEntryCount > 0 {
				s.ecmEntryCount--
			}
			if s.ecmEntryCount == 0 {
				s.exitEcm()
			}
		}
	})
	return handlers{
		wifi.CmdEmergencyCallStateChanged: emergency,
		wifi.CmdEmergencyModeChanged:      emergency,
	}
}

func (s *Service) exitEcm() {
	switch {
	case s.settings.IsWifiToggleEnabled():
		if s.deviceIdle {
			s.checkLocksAndTransitionWhenDeviceIdle()
		} else {
			s.m.transitionTo(wifi.StateDeviceActive)
		}
	case s.settings.IsScanAlwaysAvailable():
		s.m.transitionTo(wifi.StateStaDisabledWithScan)
	default:
		s.m.transitionTo(wifi.StateApStaDisabled)
	}
}

func (s *Service) deviceActiveHandlers() handlers {
	return handlers{
		wifi.CmdDeviceIdle: func(wifi.Message) bool {
			s.checkLocksAndTransitionWhenDeviceIdle()
			return false
		},
		wifi.CmdUserPresent: handledBy(func(wifi.Message) {
			if !s.firstUserSignOnSeen {
				s.station.ReloadTLSNetworksAndReconnect()
			}
			s.firstUserSignOnSeen = true
		}),
		wifi.CmdRestartWifi: func(msg wifi.Message) bool {
			if s.cfg.StaApConcurrency {
				return false
			}
			s.m.deferMessage(wifi.Message{What: wifi.CmdRestartWifiContinue, Obj: msg.Obj})
			s.m.transitionTo(wifi.StateStaDisabling)
			return true
		},
	}
}
