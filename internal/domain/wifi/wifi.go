package wifi

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/settings"
)

// StateID names a controller state.
type StateID string

const (
	StateDefault              StateID = "Default"
	StateApStaDisabled        StateID = "ApStaDisabled"
	StateStaEnabled           StateID = "StaEnabled"
	StateDeviceActive         StateID = "DeviceActive"
	StateDeviceInactive       StateID = "DeviceInactive"
	StateScanOnlyLockHeld     StateID = "ScanOnlyLockHeld"
	StateFullLockHeld         StateID = "FullLockHeld"
	StateFullHighPerfLockHeld StateID = "FullHighPerfLockHeld"
	StateNoLockHeld           StateID = "NoLockHeld"
	StateStaDisabledWithScan  StateID = "StaDisabledWithScan"
	StateApEnabled            StateID = "ApEnabled"
	StateEcm                  StateID = "Ecm"
	StateStaEnabling          StateID = "StaEnabling"
	StateStaDisabling         StateID = "StaDisabling"
	StateApEnabling           StateID = "ApEnabling"
	StateApDisabling          StateID = "ApDisabling"
	StateApStaEnabling        StateID = "ApStaEnabling"
	StateApStaDisabling       StateID = "ApStaDisabling"
	StateApStaEnabled         StateID = "ApStaEnabled"
)

// OperationalMode is the station mode requested from the supplicant.
type OperationalMode int

const (
	ModeConnect OperationalMode = iota + 1
	ModeScanOnly
	ModeScanOnlyWithWifiOff
	ModeDisabled
)

func (m OperationalMode) String() string {
	switch m {
	case ModeConnect:
		return "CONNECT"
	case ModeScanOnly:
		return "SCAN_ONLY"
	case ModeScanOnlyWithWifiOff:
		return "SCAN_ONLY_WITH_WIFI_OFF"
	case ModeDisabled:
		return "DISABLED"
	}
	return "UNKNOWN"
}

// SoftApConfig configures a hotspot.
type SoftApConfig struct {
	SSID       string `json:"ssid"`
	Passphrase string `json:"passphrase,omitempty"`
	Band       string `json:"band,omitempty"`
	Channel    int    `json:"channel,omitempty"`
}

// Transition is one recorded state change.
type Transition struct {
	ID    uuid.UUID `json:"id"`
	From  StateID   `json:"from"`
	To    StateID   `json:"to"`
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

// StationControl drives the station (client) side of the radio.
type StationControl interface {
	SetOperationalMode(mode OperationalMode)
	OperationalMode() OperationalMode
	SetSupplicantRunning(enable bool)
	SetHighPerfModeEnabled(enable bool)
	ReloadTLSNetworksAndReconnect()
	UpdateBatteryWorkSource(ws lock.WorkSource)
	ClearANQPCache()
}

// SoftApControl drives the hotspot side. cfg may be nil when stopping.
type SoftApControl interface {
	SetHostApRunning(cfg *SoftApConfig, enable bool)
}

// SettingsStore is the settings view the controller reads.
type SettingsStore interface {
	IsAirplaneModeOn() bool
	IsWifiToggleEnabled() bool
	IsScanAlwaysAvailable() bool
	WifiSavedState() settings.SavedState
	SetWifiSavedState(state settings.SavedState)
	IdleTimeout() time.Duration
	ReEnableDelay() time.Duration
	StayAwakeConditions() int
}

// LockModeSource exposes the lock registry to the controller.
type LockModeSource interface {
	StrongestMode() lock.Mode
	MergedWorkSource() lock.WorkSource
}

// Transport is the access network IMS is registered over.
type Transport int

const (
	TransportWWAN Transport = 1
	TransportWLAN Transport = 2
)

// ImsCallbacks receive IMS registration and network events. They may be
// invoked from any goroutine.
type ImsCallbacks struct {
	OnRegistered       func(transport Transport)
	OnNetworkAvailable func()
	OnNetworkLost      func()
}

// ImsMonitor reports IMS state relevant to turning Wi-Fi off.
type ImsMonitor interface {
	// WifiOffDeferringTime is how long Wi-Fi off may wait for IMS to move
	// off WLAN. Zero means stop immediately.
	WifiOffDeferringTime() time.Duration
	Register(cb ImsCallbacks) (unregister func(), err error)
}

// TransitionRepository stores the transition log.
type TransitionRepository interface {
	Append(ctx context.Context, t Transition) error
	ListRecent(ctx context.Context, limit int) ([]Transition, error)
}

// EventSink accepts controller messages from adapters. Send never blocks.
type EventSink interface {
	Send(msg Message)
}
