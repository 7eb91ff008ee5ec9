package lock

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_ports.go -package=mocks . RadioControl,BatteryStats,LivenessWatcher,ActivityTracker,PermissionChecker

import "context"

// FeatureLowLatency is the feature bitmap bit advertising a dedicated
// low-latency driver mode.
const FeatureLowLatency uint64 = 1 << 54

// Importance is a process importance level; lower is more important.
type Importance int

const (
	ImportanceForeground        Importance = 100
	ImportanceForegroundService Importance = 125
	ImportanceVisible           Importance = 200
	ImportanceCached            Importance = 400
	ImportanceGone              Importance = 1000
)

// RadioControl is the driver surface the op-mode driver toggles.
type RadioControl interface {
	SetPowerSave(enable bool) bool
	SetLowLatencyMode(enable bool) bool
	// SupportedFeatureBitmap returns 0 while the driver is not yet known.
	SupportedFeatureBitmap() uint64
}

// BatteryStats records power attribution for held locks. Calls are best effort.
type BatteryStats interface {
	NoteLockAcquiredFromSource(ctx context.Context, ws WorkSource, tag string, mode Mode) error
	NoteLockReleasedFromSource(ctx context.Context, ws WorkSource, tag string, mode Mode) error
}

// LivenessWatcher notifies when an owner handle dies.
type LivenessWatcher interface {
	Watch(handle Handle, onDeath func()) error
	Unwatch(handle Handle)
}

// ActivityTracker reports app foreground state and importance transitions.
type ActivityTracker interface {
	IsForeground(uid int) bool
	Subscribe(fn func(uid int, importance Importance)) (cancel func())
}

// PermissionChecker guards custom work sources.
type PermissionChecker interface {
	CanUpdateDeviceStats(ctx context.Context, caller Caller) bool
}
