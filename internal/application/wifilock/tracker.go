package wifilock

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

type uidRec struct {
	uid       int
	lockCount int
	isFg      bool
}

// uidTracker is the low-latency watch list: one record per UID attributed to
// a held FULL_LOW_LATENCY lock.
type uidTracker struct {
	recs     map[int]*uidRec
	activity lock.ActivityTracker
	logger   zerolog.Logger
}

func newUIDTracker(activity lock.ActivityTracker, logger zerolog.Logger) *uidTracker {
	return &uidTracker{
		recs:     make(map[int]*uidRec),
		activity: activity,
		logger:   logger,
	}
}

func (t *uidTracker) addUID(uid int) {
	if rec, ok := t.recs[uid]; ok {
		rec.lockCount++
		return
	}
	rec := &uidRec{uid: uid, lockCount: 1}
	if t.activity != nil && t.activity.IsForeground(uid) {
		rec.isFg = true
	}
	t.recs[uid] = rec
}

func (t *uidTracker) removeUID(uid int) {
	rec, ok := t.recs[uid]
	if !ok {
		t.logger.Error().Int("uid", uid).Msg("uid missing from low-latency watch list")
		return
	}
	if rec.lockCount > 0 {
		rec.lockCount--
	} else {
		t.logger.Error().Int("uid", uid).Msg("uid record holds no locks")
	}
	if rec.lockCount == 0 {
		delete(t.recs, uid)
	}
}

func (t *uidTracker) addWorkSource(ws lock.WorkSource) {
	for _, uid := range ws.AttributedUIDs() {
		t.addUID(uid)
	}
}

func (t *uidTracker) removeWorkSource(ws lock.WorkSource) {
	for _, uid := range ws.AttributedUIDs() {
		t.removeUID(uid)
	}
}

// setImportance applies an importance transition and reports whether a
// watched UID changed foreground state.
func (t *uidTracker) setImportance(uid int, importance lock.Importance) bool {
	rec, ok := t.recs[uid]
	if !ok {
		return false
	}
	fg := importance == lock.ImportanceForeground
	if rec.isFg == fg {
		return false
	}
	rec.isFg = fg
	return true
}

func (t *uidTracker) foregroundCount() int {
	n := 0
	for _, rec := range t.recs {
		if rec.isFg {
			n++
		}
	}
	return n
}

// WatchedUID is a snapshot of one watch list record.
type WatchedUID struct {
	UID        int  `json:"uid"`
	LockCount  int  `json:"lockCount"`
	Foreground bool `json:"foreground"`
}

func (t *uidTracker) snapshot() []WatchedUID {
	out := make([]WatchedUID, 0, len(t.recs))
	for _, rec := range t.recs {
		out = append(out, WatchedUID{UID: rec.uid, LockCount: rec.lockCount, Foreground: rec.isFg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}
