package settings

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/settings"
)

const writeBuffer = 64

type write struct {
	key   settings.Key
	value string
}

// Service caches persisted settings and applies the Wi-Fi toggle rules.
// Writes update the cache immediately and reach the repository from Run.
type Service struct {
	repo     settings.Repository
	defaults map[settings.Key]string

	mu               sync.RWMutex
	values           map[settings.Key]string
	checkedSavedBoot bool
	listeners        []func(settings.Key)
	// pending holds values queued by this process, oldest first, until
	// their change notification comes back.
	pending map[settings.Key][]string

	writes chan write
	logger zerolog.Logger
}

// NewService creates a settings service. overrides replace the built-in
// defaults for keys the repository has no value for.
func NewService(repo settings.Repository, overrides map[settings.Key]string, logger zerolog.Logger) *Service {
	values := make(map[settings.Key]string, len(settings.Defaults))
	for k, v := range settings.Defaults {
		values[k] = v
	}
	for k, v := range overrides {
		if settings.IsKnown(k) {
			values[k] = v
		}
	}
	defaults := make(map[settings.Key]string, len(values))
	for k, v := range values {
		defaults[k] = v
	}
	return &Service{
		repo:     repo,
		defaults: defaults,
		values:   values,
		pending:  make(map[settings.Key][]string),
		writes:   make(chan write, writeBuffer),
		logger:   logger.With().Str("service", "settings").Logger(),
	}
}

// Load fills the cache from the repository.
func (s *Service) Load(ctx context.Context) error {
	stored, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range stored {
		if settings.IsKnown(k) {
			s.values[k] = v
		}
	}
	s.logger.Info().
		Str("persistedState", s.persistedStateLocked().String()).
		Bool("airplaneModeOn", s.boolLocked(settings.KeyAirplaneModeOn)).
		Msg("settings loaded")
	return nil
}

// OnChange registers fn for keys changed outside this process.
func (s *Service) OnChange(fn func(settings.Key)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Run persists queued writes and follows external changes until ctx is done.
func (s *Service) Run(ctx context.Context) {
	go func() {
		if err := s.repo.Listen(ctx, s.handleExternalChange); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("settings listener stopped")
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case w := <-s.writes:
			if err := s.repo.Set(ctx, w.key, w.value); err != nil {
				s.logger.Error().Err(err).Str("key", string(w.key)).Msg("failed to persist setting")
				s.mu.Lock()
				s.forgetPendingLocked(w.key, w.value)
				s.mu.Unlock()
			}
		}
	}
}

func (s *Service) handleExternalChange(key settings.Key) {
	if !settings.IsKnown(key) {
		return
	}
	stored, err := s.repo.GetAll(context.Background())
	if err != nil {
		s.logger.Warn().Err(err).Str("key", string(key)).Msg("failed to reload setting")
		return
	}
	v, ok := stored[key]
	if !ok {
		v = s.defaults[key]
	}
	s.mu.Lock()
	if s.consumePendingLocked(key, v) || s.values[key] == v {
		s.mu.Unlock()
		return
	}
	s.values[key] = v
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Info().Str("key", string(key)).Str("value", v).Msg("setting changed")
	for _, fn := range listeners {
		fn(key)
	}
}

// Get returns the cached value of key.
func (s *Service) Get(key settings.Key) (string, error) {
	if !settings.IsKnown(key) {
		return "", fmt.Errorf("%w: %s", settings.ErrUnknownKey, key)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// Set stores value for key.
func (s *Service) Set(key settings.Key, value string) error {
	if !settings.IsKnown(key) {
		return fmt.Errorf("%w: %s", settings.ErrUnknownKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value)
	return nil
}

func (s *Service) setLocked(key settings.Key, value string) {
	s.values[key] = value
	select {
	case s.writes <- write{key: key, value: value}:
		s.pending[key] = append(s.pending[key], value)
	default:
		s.logger.Warn().Str("key", string(key)).Msg("settings write queue full, value kept in memory only")
	}
}

// consumePendingLocked reports whether v is the echo of one of our own
// writes to key. The matched write and every older one are dropped, so a
// stale echo cannot roll the cache back past a newer local value.
func (s *Service) consumePendingLocked(key settings.Key, v string) bool {
	queued := s.pending[key]
	for i, p := range queued {
		if p == v {
			if i == len(queued)-1 {
				delete(s.pending, key)
			} else {
				s.pending[key] = queued[i+1:]
			}
			return true
		}
	}
	return false
}

func (s *Service) forgetPendingLocked(key settings.Key, v string) {
	queued := s.pending[key]
	for i, p := range queued {
		if p == v {
			s.pending[key] = append(queued[:i:i], queued[i+1:]...)
			if len(s.pending[key]) == 0 {
				delete(s.pending, key)
			}
			return
		}
	}
}

func (s *Service) intLocked(key settings.Key) int {
	v, err := strconv.Atoi(s.values[key])
	if err != nil {
		v, _ = strconv.Atoi(settings.Defaults[key])
	}
	return v
}

func (s *Service) boolLocked(key settings.Key) bool {
	return s.intLocked(key) != 0
}

func (s *Service) persistedStateLocked() settings.PersistedState {
	return settings.PersistedState(s.intLocked(settings.KeyWifiOn))
}

func (s *Service) persistLocked(state settings.PersistedState) {
	s.setLocked(settings.KeyWifiOn, strconv.Itoa(int(state)))
}

// testAndClearSavedStateLocked consumes a saved ENABLED station state.
func (s *Service) testAndClearSavedStateLocked() bool {
	if settings.SavedState(s.intLocked(settings.KeyWifiSavedState)) != settings.SavedEnabled {
		return false
	}
	s.setLocked(settings.KeyWifiSavedState, strconv.Itoa(int(settings.SavedDisabled)))
	return true
}

// HandleWifiToggled records a user toggle. It reports whether the
// persisted state changed.
func (s *Service) HandleWifiToggled(enable bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.persistedStateLocked()
	next := settings.StateDisabled
	if enable {
		next = settings.StateEnabled
		if s.boolLocked(settings.KeyAirplaneModeOn) {
			next = settings.StateEnabledAirplaneOverride
		}
	}
	s.persistLocked(next)
	return prev != next
}

// HandleAirplaneToggled records a new airplane mode value and adjusts the
// persisted Wi-Fi state.
func (s *Service) HandleAirplaneToggled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(settings.KeyAirplaneModeOn, boolValue(on))
	s.applyAirplaneLocked(on)
}

// ApplyAirplaneMode re-evaluates the persisted state after an external
// airplane mode change already stored in the cache.
func (s *Service) ApplyAirplaneMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyAirplaneLocked(s.boolLocked(settings.KeyAirplaneModeOn))
}

func (s *Service) applyAirplaneLocked(on bool) {
	state := s.persistedStateLocked()
	if on {
		if state == settings.StateEnabled {
			s.persistLocked(settings.StateDisabledAirplaneOn)
		}
		return
	}
	if s.testAndClearSavedStateLocked() ||
		state == settings.StateEnabledAirplaneOverride ||
		state == settings.StateDisabledAirplaneOn {
		s.persistLocked(settings.StateEnabled)
	}
}

// HandleScanAlwaysToggled stores the scan-always setting.
func (s *Service) HandleScanAlwaysToggled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(settings.KeyScanAlwaysEnabled, boolValue(enabled))
}

func (s *Service) PersistedState() settings.PersistedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistedStateLocked()
}

func (s *Service) IsAirplaneModeOn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boolLocked(settings.KeyAirplaneModeOn)
}

// IsWifiToggleEnabled reports whether the user wants station mode on. The
// first call after boot also honors a station state saved before SoftAP.
func (s *Service) IsWifiToggleEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checkedSavedBoot {
		s.checkedSavedBoot = true
		if s.testAndClearSavedStateLocked() {
			return true
		}
	}
	state := s.persistedStateLocked()
	if s.boolLocked(settings.KeyAirplaneModeOn) {
		return state == settings.StateEnabledAirplaneOverride
	}
	return state != settings.StateDisabled
}

func (s *Service) IsScanAlwaysAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.boolLocked(settings.KeyAirplaneModeOn) && s.boolLocked(settings.KeyScanAlwaysEnabled)
}

func (s *Service) WifiSavedState() settings.SavedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return settings.SavedState(s.intLocked(settings.KeyWifiSavedState))
}

func (s *Service) SetWifiSavedState(state settings.SavedState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(settings.KeyWifiSavedState, strconv.Itoa(int(state)))
}

func (s *Service) IdleTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.intLocked(settings.KeyWifiIdleMs)) * time.Millisecond
}

func (s *Service) ReEnableDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.intLocked(settings.KeyWifiReEnableDelayMs)) * time.Millisecond
}

// StayAwakeConditions is the plugged-type bitmask that keeps Wi-Fi awake.
func (s *Service) StayAwakeConditions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intLocked(settings.KeyStayOnWhilePluggedIn)
}

// Snapshot copies every cached value.
func (s *Service) Snapshot() map[settings.Key]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[settings.Key]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
