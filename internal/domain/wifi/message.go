package wifi

import "fmt"

// Command is a controller message type.
type Command int

const (
	CmdEmergencyModeChanged Command = iota + 1
	CmdScreenOn
	CmdScreenOff
	CmdBatteryChanged
	CmdDeviceIdle
	CmdLocksChanged
	CmdScanAlwaysModeChanged
	CmdWifiToggled
	CmdAirplaneToggled
	CmdSetAp
	CmdDeferredToggle
	CmdUserPresent
	CmdApStartFailure
	CmdEmergencyCallStateChanged
	CmdApStopped
	CmdStaStartFailure
	CmdRestartWifi
	CmdRestartWifiContinue
	CmdWifiEnabled
	CmdWifiDisabled
	CmdApStarted
	CmdApStopFailure
	CmdWifiStopFailure
)

var commandNames = map[Command]string{
	CmdEmergencyModeChanged:      "EMERGENCY_MODE_CHANGED",
	CmdScreenOn:                  "SCREEN_ON",
	CmdScreenOff:                 "SCREEN_OFF",
	CmdBatteryChanged:            "BATTERY_CHANGED",
	CmdDeviceIdle:                "DEVICE_IDLE",
	CmdLocksChanged:              "LOCKS_CHANGED",
	CmdScanAlwaysModeChanged:     "SCAN_ALWAYS_MODE_CHANGED",
	CmdWifiToggled:               "WIFI_TOGGLED",
	CmdAirplaneToggled:           "AIRPLANE_TOGGLED",
	CmdSetAp:                     "SET_AP",
	CmdDeferredToggle:            "DEFERRED_TOGGLE",
	CmdUserPresent:               "USER_PRESENT",
	CmdApStartFailure:            "AP_START_FAILURE",
	CmdEmergencyCallStateChanged: "EMERGENCY_CALL_STATE_CHANGED",
	CmdApStopped:                 "AP_STOPPED",
	CmdStaStartFailure:           "STA_START_FAILURE",
	CmdRestartWifi:               "RESTART_WIFI",
	CmdRestartWifiContinue:       "RESTART_WIFI_CONTINUE",
	CmdWifiEnabled:               "WIFI_ENABLED",
	CmdWifiDisabled:              "WIFI_DISABLED",
	CmdApStarted:                 "AP_STARTED",
	CmdApStopFailure:             "AP_STOP_FAILURE",
	CmdWifiStopFailure:           "WIFI_STOP_FAILURE",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CMD(%d)", int(c))
}

// Commands lists every known command in declaration order.
func Commands() []Command {
	out := make([]Command, 0, len(commandNames))
	for c := CmdEmergencyModeChanged; c <= CmdWifiStopFailure; c++ {
		out = append(out, c)
	}
	return out
}

// Message is one controller event. Arg1, Arg2 and Obj carry command
// specific payloads, e.g. SET_AP uses Arg1 for enable, Arg2 for "saved
// state already recorded" and Obj for a *SoftApConfig.
type Message struct {
	What Command
	Arg1 int
	Arg2 int
	Obj  any
}

func (m Message) String() string {
	return fmt.Sprintf("{%s arg1=%d arg2=%d}", m.What, m.Arg1, m.Arg2)
}

// BoolArg encodes b as a message argument.
func BoolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}
