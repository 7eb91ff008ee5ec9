package activity

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

func TestTracker(t *testing.T) {
	tr := NewTracker(lock.ImportanceForeground, zerolog.Nop())

	type change struct {
		uid int
		imp lock.Importance
	}
	var seen []change
	cancel := tr.Subscribe(func(uid int, imp lock.Importance) {
		seen = append(seen, change{uid, imp})
	})

	t.Run("unknown uid uses fallback", func(t *testing.T) {
		assert.True(t, tr.IsForeground(1000))
	})

	t.Run("transition notifies once", func(t *testing.T) {
		tr.SetImportance(1000, lock.ImportanceCached)
		tr.SetImportance(1000, lock.ImportanceCached)
		assert.False(t, tr.IsForeground(1000))
		assert.Equal(t, []change{{1000, lock.ImportanceCached}}, seen)
	})

	t.Run("gone resets to fallback", func(t *testing.T) {
		tr.SetImportance(1000, lock.ImportanceGone)
		assert.True(t, tr.IsForeground(1000))
		assert.Empty(t, tr.Snapshot())
	})

	t.Run("cancelled subscriber is not called", func(t *testing.T) {
		cancel()
		before := len(seen)
		tr.SetImportance(2000, lock.ImportanceVisible)
		assert.Len(t, seen, before)
		assert.Equal(t, []UIDImportance{{UID: 2000, Importance: lock.ImportanceVisible}}, tr.Snapshot())
	})
}
