package settings

import (
	"context"
	"errors"
	"time"
)

// Key names a persisted setting.
type Key string

const (
	KeyWifiOn               Key = "wifi_on"
	KeyWifiSavedState       Key = "wifi_saved_state"
	KeyAirplaneModeOn       Key = "airplane_mode_on"
	KeyScanAlwaysEnabled    Key = "wifi_scan_always_enabled"
	KeyWifiIdleMs           Key = "wifi_idle_ms"
	KeyWifiReEnableDelayMs  Key = "wifi_reenable_delay_ms"
	KeyStayOnWhilePluggedIn Key = "stay_on_while_plugged_in"
)

const (
	DefaultIdle          = 15 * time.Minute
	DefaultReEnableDelay = 500 * time.Millisecond
)

var ErrUnknownKey = errors.New("unknown setting key")

// Defaults holds the value used for every key missing from the store.
var Defaults = map[Key]string{
	KeyWifiOn:               "0",
	KeyWifiSavedState:       "0",
	KeyAirplaneModeOn:       "0",
	KeyScanAlwaysEnabled:    "0",
	KeyWifiIdleMs:           "900000",
	KeyWifiReEnableDelayMs:  "500",
	KeyStayOnWhilePluggedIn: "0",
}

// IsKnown reports whether k is a recognised key.
func IsKnown(k Key) bool {
	_, ok := Defaults[k]
	return ok
}

// PersistedState is the persisted Wi-Fi toggle state.
type PersistedState int

const (
	StateDisabled                PersistedState = 0
	StateEnabled                 PersistedState = 1
	StateEnabledAirplaneOverride PersistedState = 2
	StateDisabledAirplaneOn      PersistedState = 3
)

func (s PersistedState) String() string {
	switch s {
	case StateDisabled:
		return "DISABLED"
	case StateEnabled:
		return "ENABLED"
	case StateEnabledAirplaneOverride:
		return "ENABLED_AIRPLANE_OVERRIDE"
	case StateDisabledAirplaneOn:
		return "DISABLED_AIRPLANE_ON"
	}
	return "UNKNOWN"
}

// SavedState remembers whether station mode was on before SoftAP took over.
type SavedState int

const (
	SavedDisabled SavedState = 0
	SavedEnabled  SavedState = 1
)

// Repository persists settings and reports external changes.
type Repository interface {
	GetAll(ctx context.Context) (map[Key]string, error)
	Set(ctx context.Context, key Key, value string) error
	// Listen blocks, calling fn for every externally changed key, until ctx is done.
	Listen(ctx context.Context, fn func(key Key)) error
}
