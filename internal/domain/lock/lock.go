package lock

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode is a Wi-Fi lock mode. ModeNoLocksHeld is only ever a resolver outcome.
type Mode int

const (
	ModeNoLocksHeld    Mode = 0
	ModeFull           Mode = 1
	ModeScanOnly       Mode = 2
	ModeFullHighPerf   Mode = 3
	ModeFullLowLatency Mode = 4
)

var (
	ErrInvalidMode      = errors.New("invalid lock mode")
	ErrLockNotHeld      = errors.New("no lock held for handle")
	ErrPermissionDenied = errors.New("caller lacks permission to update device stats")
	ErrInvalidHandle    = errors.New("owner handle required")
)

var modeNames = map[Mode]string{
	ModeNoLocksHeld:    "NO_LOCKS_HELD",
	ModeFull:           "FULL",
	ModeScanOnly:       "SCAN_ONLY",
	ModeFullHighPerf:   "FULL_HIGH_PERF",
	ModeFullLowLatency: "FULL_LOW_LATENCY",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MODE(%d)", int(m))
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// IsValid reports whether m can be requested by a lock holder.
func (m Mode) IsValid() bool {
	switch m {
	case ModeFull, ModeScanOnly, ModeFullHighPerf, ModeFullLowLatency:
		return true
	}
	return false
}

// ParseMode parses a mode name as produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeNoLocksHeld, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Handle identifies the owner of a lock. A handle holds at most one lock.
type Handle string

// Caller identifies who invokes a lock operation.
type Caller struct {
	UID        int
	Credential string
}

// Record is a held lock.
type Record struct {
	Mode       Mode       `json:"mode"`
	Tag        string     `json:"tag"`
	Handle     Handle     `json:"handle"`
	UID        int        `json:"uid"`
	WorkSource WorkSource `json:"workSource"`
	AcquiredAt time.Time  `json:"acquiredAt"`
}

// Stats is a snapshot of the registry counters and op-mode state.
type Stats struct {
	Acquired          map[string]int `json:"acquired"`
	Released          map[string]int `json:"released"`
	Held              int            `json:"held"`
	CurrentOpMode     Mode           `json:"currentOpMode"`
	StrongestMode     Mode           `json:"strongestMode"`
	ForcedHiPerf      bool           `json:"forcedHiPerf"`
	ForcedLowLatency  bool           `json:"forcedLowLatency"`
	ScreenOn          bool           `json:"screenOn"`
	ForegroundUIDs    int            `json:"foregroundUids"`
	LowLatencySupport string         `json:"lowLatencySupport"`
}
