package httpapi

import (
	"github.com/execution-hub/wifictl/internal/application/wifilock"
	"github.com/execution-hub/wifictl/internal/domain/event"
	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/settings"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

type opModeEvent struct {
	From lock.Mode `json:"from"`
	To   lock.Mode `json:"to"`
}

type settingEvent struct {
	Key settings.Key `json:"key"`
}

// PublishTransition is a controller transition observer.
func (s *Server) PublishTransition(t wifi.Transition) {
	s.publish(event.TypeTransition, t)
}

// PublishOpMode is a lock service op-mode observer.
func (s *Server) PublishOpMode(from, to lock.Mode) {
	s.publish(event.TypeOpModeChanged, opModeEvent{From: from, To: to})
}

func (s *Server) PublishSettingChanged(key settings.Key) {
	s.publish(event.TypeSettingChanged, settingEvent{Key: key})
}

type locksListener struct {
	server *Server
	next   wifilock.Listener
}

func (l locksListener) LocksChanged() {
	if l.next != nil {
		l.next.LocksChanged()
	}
	l.server.publish(event.TypeLocksChanged, map[string]interface{}{"held": len(l.server.locks.Locks())})
}

// LocksListener publishes lock changes after forwarding them to next.
func (s *Server) LocksListener(next wifilock.Listener) wifilock.Listener {
	return locksListener{server: s, next: next}
}
