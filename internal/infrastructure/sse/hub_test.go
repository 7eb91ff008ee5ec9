package sse

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/wifictl/internal/domain/event"
)

func newEvent(t *testing.T, typ event.Type) *event.Event {
	t.Helper()
	e, err := event.New(typ, map[string]string{"k": "v"})
	require.NoError(t, err)
	return e
}

func TestHub_Publish(t *testing.T) {
	t.Run("filters by type", func(t *testing.T) {
		h := NewHub(zerolog.Nop())
		all := event.NewClient("all", nil, nil)
		locks := event.NewClient("locks", nil, []event.Type{event.TypeLocksChanged})
		h.Register(all)
		h.Register(locks)

		h.Publish(newEvent(t, event.TypeTransition))

		assert.Len(t, all.Messages, 1)
		assert.Len(t, locks.Messages, 0)
	})

	t.Run("full client drops without blocking", func(t *testing.T) {
		h := NewHub(zerolog.Nop())
		c := event.NewClient("slow", nil, nil)
		h.Register(c)
		for i := 0; i < cap(c.Messages)+3; i++ {
			h.Publish(newEvent(t, event.TypeTransition))
		}
		assert.Equal(t, 3, h.Dropped())
	})

	t.Run("uid targeting", func(t *testing.T) {
		h := NewHub(zerolog.Nop())
		uid := 1000
		otherUID := 1001
		mine := event.NewClient("mine", &uid, nil)
		other := event.NewClient("other", &otherUID, nil)
		anonymous := event.NewClient("anonymous", nil, nil)
		h.Register(mine)
		h.Register(other)
		h.Register(anonymous)

		h.PublishToUID(uid, newEvent(t, event.TypeProvisioningStatus))

		assert.Len(t, mine.Messages, 1)
		assert.Len(t, other.Messages, 0)
		assert.Len(t, anonymous.Messages, 0)
		assert.NotPanics(t, func() { h.PublishToUID(uid, nil) })
	})
}

func TestHub_Register(t *testing.T) {
	h := NewHub(zerolog.Nop())
	first := event.NewClient("c1", nil, nil)
	second := event.NewClient("c1", nil, nil)
	h.Register(first)
	h.Register(second)

	_, open := <-first.Messages
	assert.False(t, open, "replaced client should be closed")
	assert.Equal(t, 1, h.GetClientCount())

	h.Unregister(first)
	assert.Equal(t, 1, h.GetClientCount(), "stale unregister keeps the replacement")

	h.Unregister(second)
	assert.Equal(t, 0, h.GetClientCount())
}
