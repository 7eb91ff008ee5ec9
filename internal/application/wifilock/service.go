package wifilock

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

// batteryTimeout bounds one battery stats call.
const batteryTimeout = 2 * time.Second

type batteryNote struct {
	acquired bool
	ws       lock.WorkSource
	tag      string
	mode     lock.Mode
}

// Listener is told when the set of held locks changes.
type Listener interface {
	LocksChanged()
}

// Deps are the collaborators of the lock service.
type Deps struct {
	Radio      lock.RadioControl
	Battery    lock.BatteryStats
	Liveness   lock.LivenessWatcher
	Activity   lock.ActivityTracker
	Permission lock.PermissionChecker
}

// Service is the Wi-Fi lock registry. It is safe for concurrent use.
type Service struct {
	mu sync.Mutex

	locks    []*lock.Record
	acquired map[lock.Mode]int
	released map[lock.Mode]int

	forceHiPerf     bool
	forceLowLatency bool
	screenOn        bool

	tracker *uidTracker
	driver  *opModeDriver

	battery    lock.BatteryStats
	liveness   lock.LivenessWatcher
	permission lock.PermissionChecker

	// notes are queued under mu and delivered in order outside it.
	notes      []batteryNote
	accounting sync.Mutex

	listener    Listener
	onOpMode    func(from, to lock.Mode)
	unsubscribe func()

	logger zerolog.Logger
}

func NewService(deps Deps, logger zerolog.Logger) *Service {
	logger = logger.With().Str("service", "wifilock").Logger()
	s := &Service{
		acquired:   make(map[lock.Mode]int),
		released:   make(map[lock.Mode]int),
		tracker:    newUIDTracker(deps.Activity, logger),
		driver:     newOpModeDriver(deps.Radio, logger),
		battery:    deps.Battery,
		liveness:   deps.Liveness,
		permission: deps.Permission,
		logger:     logger,
	}
	if deps.Activity != nil {
		s.unsubscribe = deps.Activity.Subscribe(s.handleUIDImportance)
	}
	return s
}

// SetListener registers the receiver of lock change notifications.
func (s *Service) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// OnOpModeChanged registers fn to observe applied op mode changes.
func (s *Service) OnOpModeChanged(fn func(from, to lock.Mode)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpMode = fn
}

// Close stops listening for importance transitions.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Acquire registers a lock for handle. It returns false without changing
// state when handle already holds a lock.
func (s *Service) Acquire(ctx context.Context, caller lock.Caller, mode lock.Mode, tag string, handle lock.Handle, ws lock.WorkSource) (bool, error) {
	if handle == "" {
		return false, lock.ErrInvalidHandle
	}
	if !mode.IsValid() {
		return false, lock.ErrInvalidMode
	}
	ws, err := s.resolveWorkSource(ctx, caller, ws)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.findLocked(handle) != nil {
		s.mu.Unlock()
		s.logger.Debug().Str("handle", string(handle)).Msg("handle already holds a lock")
		return false, nil
	}
	if s.liveness != nil {
		if err := s.liveness.Watch(handle, func() { s.handleDeath(handle) }); err != nil {
			s.mu.Unlock()
			s.logger.Warn().Err(err).Str("handle", string(handle)).Msg("owner handle not alive")
			return false, nil
		}
	}

	rec := &lock.Record{
		Mode:       mode,
		Tag:        tag,
		Handle:     handle,
		UID:        caller.UID,
		WorkSource: ws,
		AcquiredAt: time.Now().UTC(),
	}
	s.locks = append(s.locks, rec)
	s.queueNoteLocked(true, ws, tag, mode)
	s.acquired[mode]++
	if mode == lock.ModeFullLowLatency {
		s.tracker.addWorkSource(ws)
	}
	s.updateOpModeLocked()
	listener := s.listener
	s.mu.Unlock()
	s.flushNotes(ctx)

	s.logger.Info().Str("handle", string(handle)).Stringer("mode", mode).Str("tag", tag).Int("uid", caller.UID).Msg("lock acquired")
	if listener != nil {
		listener.LocksChanged()
	}
	return true, nil
}

// Release drops the lock held by handle. It returns false if none is held.
func (s *Service) Release(ctx context.Context, handle lock.Handle) bool {
	s.mu.Lock()
	rec := s.removeLocked(handle)
	if rec == nil {
		s.mu.Unlock()
		return false
	}
	if s.liveness != nil {
		s.liveness.Unwatch(handle)
	}
	s.queueNoteLocked(false, rec.WorkSource, rec.Tag, rec.Mode)
	s.released[rec.Mode]++
	if rec.Mode == lock.ModeFullLowLatency {
		s.tracker.removeWorkSource(rec.WorkSource)
	}
	s.updateOpModeLocked()
	listener := s.listener
	s.mu.Unlock()
	s.flushNotes(ctx)

	s.logger.Info().Str("handle", string(handle)).Stringer("mode", rec.Mode).Msg("lock released")
	if listener != nil {
		listener.LocksChanged()
	}
	return true
}

// UpdateWorkSource replaces the attribution of the lock held by handle.
func (s *Service) UpdateWorkSource(ctx context.Context, caller lock.Caller, handle lock.Handle, ws lock.WorkSource) error {
	ws, err := s.resolveWorkSource(ctx, caller, ws)
	if err != nil {
		return err
	}

	s.mu.Lock()
	rec := s.findLocked(handle)
	if rec == nil {
		s.mu.Unlock()
		return lock.ErrLockNotHeld
	}
	// Acquire is noted before release so overlapping UIDs never show a gap.
	s.queueNoteLocked(true, ws, rec.Tag, rec.Mode)
	s.queueNoteLocked(false, rec.WorkSource, rec.Tag, rec.Mode)
	if rec.Mode == lock.ModeFullLowLatency {
		s.tracker.addWorkSource(ws)
		s.tracker.removeWorkSource(rec.WorkSource)
		s.updateOpModeLocked()
	}
	rec.WorkSource = ws
	listener := s.listener
	s.mu.Unlock()
	s.flushNotes(ctx)

	if listener != nil {
		listener.LocksChanged()
	}
	return nil
}

// ForceHiPerfMode pins the strongest mode to FULL_HIGH_PERF. A driver
// failure turns the override back off.
func (s *Service) ForceHiPerfMode(enable bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceHiPerf = enable
	s.forceLowLatency = false
	if !s.updateOpModeLocked() {
		s.logger.Error().Msg("failed to force hi-perf mode, returning to normal mode")
		s.forceHiPerf = false
		return false
	}
	return true
}

// ForceLowLatencyMode pins the strongest mode to FULL_LOW_LATENCY. A driver
// failure turns the override back off.
func (s *Service) ForceLowLatencyMode(enable bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceLowLatency = enable
	s.forceHiPerf = false
	if !s.updateOpModeLocked() {
		s.logger.Error().Msg("failed to force low-latency mode, returning to normal mode")
		s.forceLowLatency = false
		return false
	}
	return true
}

func (s *Service) HandleScreenStateChanged(screenOn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Debug().Bool("screenOn", screenOn).Msg("screen state changed")
	s.screenOn = screenOn
	s.updateOpModeLocked()
}

// StrongestMode resolves the current inputs without touching the radio.
func (s *Service) StrongestMode() lock.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strongestLocked()
}

// MergedWorkSource is the union of every held lock's work source.
func (s *Service) MergedWorkSource() lock.WorkSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	var merged lock.WorkSource
	for _, rec := range s.locks {
		merged.Add(rec.WorkSource)
	}
	return merged
}

func (s *Service) Locks() []lock.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]lock.Record, 0, len(s.locks))
	for _, rec := range s.locks {
		cp := *rec
		cp.WorkSource = rec.WorkSource.Clone()
		out = append(out, cp)
	}
	return out
}

// WatchedUIDs lists the low-latency watch list.
func (s *Service) WatchedUIDs() []WatchedUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.snapshot()
}

func (s *Service) Stats() lock.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := lock.Stats{
		Acquired:          make(map[string]int, len(s.acquired)),
		Released:          make(map[string]int, len(s.released)),
		Held:              len(s.locks),
		CurrentOpMode:     s.driver.current,
		StrongestMode:     s.strongestLocked(),
		ForcedHiPerf:      s.forceHiPerf,
		ForcedLowLatency:  s.forceLowLatency,
		ScreenOn:          s.screenOn,
		ForegroundUIDs:    s.tracker.foregroundCount(),
		LowLatencySupport: s.driver.support.String(),
	}
	for m, n := range s.acquired {
		st.Acquired[m.String()] = n
	}
	for m, n := range s.released {
		st.Released[m.String()] = n
	}
	return st
}

func (s *Service) handleDeath(handle lock.Handle) {
	s.logger.Warn().Str("handle", string(handle)).Msg("lock owner died")
	s.Release(context.Background(), handle)
}

func (s *Service) handleUIDImportance(uid int, importance lock.Importance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tracker.setImportance(uid, importance) {
		return
	}
	s.updateOpModeLocked()
}

func (s *Service) resolveWorkSource(ctx context.Context, caller lock.Caller, ws lock.WorkSource) (lock.WorkSource, error) {
	if ws.IsEmpty() {
		return lock.NewWorkSource(caller.UID), nil
	}
	if s.permission == nil || !s.permission.CanUpdateDeviceStats(ctx, caller) {
		return lock.WorkSource{}, lock.ErrPermissionDenied
	}
	return ws.Clone(), nil
}

func (s *Service) strongestLocked() lock.Mode {
	return Resolve(Inputs{
		ForcedHiPerf:             s.forceHiPerf,
		ForcedLowLatency:         s.forceLowLatency,
		ScreenOn:                 s.screenOn,
		ForegroundLowLatencyUIDs: s.tracker.foregroundCount(),
		HiPerfAcquired:           s.acquired[lock.ModeFullHighPerf],
		HiPerfReleased:           s.released[lock.ModeFullHighPerf],
	})
}

func (s *Service) updateOpModeLocked() bool {
	from := s.driver.current
	ok := s.driver.apply(s.strongestLocked())
	if to := s.driver.current; to != from && s.onOpMode != nil {
		s.onOpMode(from, to)
	}
	return ok
}

func (s *Service) findLocked(handle lock.Handle) *lock.Record {
	for _, rec := range s.locks {
		if rec.Handle == handle {
			return rec
		}
	}
	return nil
}

func (s *Service) removeLocked(handle lock.Handle) *lock.Record {
	for i, rec := range s.locks {
		if rec.Handle == handle {
			s.locks = append(s.locks[:i], s.locks[i+1:]...)
			return rec
		}
	}
	return nil
}

func (s *Service) queueNoteLocked(acquired bool, ws lock.WorkSource, tag string, mode lock.Mode) {
	if s.battery == nil {
		return
	}
	s.notes = append(s.notes, batteryNote{acquired: acquired, ws: ws.Clone(), tag: tag, mode: mode})
}

// flushNotes delivers queued battery notes without holding mu, so a slow
// stats backend never stalls mode resolution. Notes queued by concurrent
// callers are delivered by whichever flush runs first, in queue order.
func (s *Service) flushNotes(ctx context.Context) {
	if s.battery == nil {
		return
	}
	s.accounting.Lock()
	defer s.accounting.Unlock()

	s.mu.Lock()
	notes := s.notes
	s.notes = nil
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	for _, n := range notes {
		noteCtx, cancel := context.WithTimeout(ctx, batteryTimeout)
		var err error
		if n.acquired {
			err = s.battery.NoteLockAcquiredFromSource(noteCtx, n.ws, n.tag, n.mode)
		} else {
			err = s.battery.NoteLockReleasedFromSource(noteCtx, n.ws, n.tag, n.mode)
		}
		cancel()
		if err != nil {
			s.logger.Warn().Err(err).Bool("acquired", n.acquired).Str("tag", n.tag).Msg("battery stats note failed")
		}
	}
}
