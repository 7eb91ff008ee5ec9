package activity

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

// Tracker records process importance reported over the API. It implements
// lock.ActivityTracker.
type Tracker struct {
	mu         sync.Mutex
	importance map[int]lock.Importance
	fallback   lock.Importance
	subs       map[int]func(uid int, importance lock.Importance)
	nextSub    int
	logger     zerolog.Logger
}

// NewTracker treats uids that never reported as fallback importance.
func NewTracker(fallback lock.Importance, logger zerolog.Logger) *Tracker {
	return &Tracker{
		importance: make(map[int]lock.Importance),
		fallback:   fallback,
		subs:       make(map[int]func(int, lock.Importance)),
		logger:     logger.With().Str("component", "activity").Logger(),
	}
}

func (t *Tracker) IsForeground(uid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.importanceLocked(uid) == lock.ImportanceForeground
}

func (t *Tracker) importanceLocked(uid int) lock.Importance {
	if imp, ok := t.importance[uid]; ok {
		return imp
	}
	return t.fallback
}

func (t *Tracker) Subscribe(fn func(uid int, importance lock.Importance)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

// SetImportance records uid's importance and notifies subscribers when it
// changed. ImportanceGone forgets the uid.
func (t *Tracker) SetImportance(uid int, importance lock.Importance) {
	t.mu.Lock()
	prev := t.importanceLocked(uid)
	if importance == lock.ImportanceGone {
		delete(t.importance, uid)
	} else {
		t.importance[uid] = importance
	}
	if prev == importance {
		t.mu.Unlock()
		return
	}
	subs := make([]func(int, lock.Importance), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	t.logger.Debug().Int("uid", uid).Int("from", int(prev)).Int("to", int(importance)).Msg("importance changed")
	for _, fn := range subs {
		fn(uid, importance)
	}
}

// UIDImportance is one reported uid.
type UIDImportance struct {
	UID        int             `json:"uid"`
	Importance lock.Importance `json:"importance"`
}

func (t *Tracker) Snapshot() []UIDImportance {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]UIDImportance, 0, len(t.importance))
	for uid, imp := range t.importance {
		out = append(out, UIDImportance{UID: uid, Importance: imp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}
