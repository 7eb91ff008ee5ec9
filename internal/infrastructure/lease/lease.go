package lease

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

var (
	ErrUnknownLease = errors.New("unknown lease")
	ErrNotOwner     = errors.New("lease belongs to another uid")
)

const DefaultTTL = 30 * time.Second

type entry struct {
	uid     int
	expires time.Time
	onDeath func()
}

// Lease is the client view of an issued handle.
type Lease struct {
	Handle  lock.Handle `json:"handle"`
	UID     int         `json:"uid"`
	Expires time.Time   `json:"expires"`
}

// Manager issues owner handles that die unless renewed within their TTL.
// It implements lock.LivenessWatcher.
type Manager struct {
	mu     sync.Mutex
	ttl    time.Duration
	leases map[lock.Handle]*entry
	now    func() time.Time
	logger zerolog.Logger
}

func NewManager(ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:    ttl,
		leases: make(map[lock.Handle]*entry),
		now:    time.Now,
		logger: logger.With().Str("component", "lease").Logger(),
	}
}

// Issue creates a fresh handle owned by uid.
func (m *Manager) Issue(uid int) Lease {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := lock.Handle(uuid.NewString())
	e := &entry{uid: uid, expires: m.now().Add(m.ttl)}
	m.leases[h] = e
	return Lease{Handle: h, UID: uid, Expires: e.expires}
}

// Watch arms onDeath for an issued handle.
func (m *Manager) Watch(handle lock.Handle, onDeath func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.leases[handle]
	if !ok {
		return ErrUnknownLease
	}
	e.onDeath = onDeath
	return nil
}

// Unwatch forgets the handle without running its death callback.
func (m *Manager) Unwatch(handle lock.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.leases, handle)
}

// Renew extends the lease of handle. Only the owning uid may renew it.
func (m *Manager) Renew(handle lock.Handle, uid int) (Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.leases[handle]
	if !ok {
		return Lease{}, ErrUnknownLease
	}
	if e.uid != uid {
		return Lease{}, ErrNotOwner
	}
	e.expires = m.now().Add(m.ttl)
	return Lease{Handle: handle, UID: uid, Expires: e.expires}, nil
}

// Owner returns the uid a live handle was issued to.
func (m *Manager) Owner(handle lock.Handle) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.leases[handle]
	if !ok {
		return 0, false
	}
	return e.uid, true
}

// Sweep expires every lease past its deadline and runs the death callbacks
// outside the lock. It returns the number of expired leases.
func (m *Manager) Sweep() int {
	now := m.now()
	var dead []func()
	m.mu.Lock()
	for h, e := range m.leases {
		if now.Before(e.expires) {
			continue
		}
		delete(m.leases, h)
		m.logger.Info().Str("handle", string(h)).Int("uid", e.uid).Msg("lease expired")
		if e.onDeath != nil {
			dead = append(dead, e.onDeath)
		}
	}
	m.mu.Unlock()
	for _, fn := range dead {
		fn()
	}
	return len(dead)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
