package controller

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
	"github.com/execution-hub/wifictl/internal/infrastructure/looper"
)

// action handles one command in one state and reports whether it was handled.
// Unhandled commands fall through to the parent state.
type action func(msg wifi.Message) bool

type state struct {
	id     wifi.StateID
	parent wifi.StateID
	enter  func(msg wifi.Message)
	exit   func()
	on     map[wifi.Command]action
}

// machine is a hierarchical state machine driven from a single looper. Each
// state's handlers form a table keyed by command; lookup walks the state's
// ancestor chain from the leaf to the root.
type machine struct {
	handler looper.Handler
	states  map[wifi.StateID]*state
	chains  map[wifi.StateID][]wifi.StateID

	current  wifi.StateID
	dest     wifi.StateID
	curMsg   wifi.Message
	deferred []wifi.Message
	started  bool

	onTransition func(from, to wifi.StateID, msg wifi.Message)
	onDispatched func()
	logger       zerolog.Logger
}

func newMachine(handler looper.Handler, logger zerolog.Logger) *machine {
	return &machine{
		handler: handler,
		states:  make(map[wifi.StateID]*state),
		chains:  make(map[wifi.StateID][]wifi.StateID),
		logger:  logger,
	}
}

func (m *machine) add(s *state) {
	if s.on == nil {
		s.on = make(map[wifi.Command]action)
	}
	m.states[s.id] = s
}

// build resolves the ancestor chain of every state. It panics on an unknown
// parent since the hierarchy is fixed at construction.
func (m *machine) build() {
	for id := range m.states {
		var chain []wifi.StateID
		for cur := id; cur != ""; {
			s, ok := m.states[cur]
			if !ok {
				panic("controller: unknown state " + string(cur))
			}
			chain = append(chain, cur)
			cur = s.parent
		}
		m.chains[id] = chain
	}
}

// start enters the initial state. It must run on the looper.
func (m *machine) start(initial wifi.StateID) {
	chain := m.chains[initial]
	for i := len(chain) - 1; i >= 0; i-- {
		if enter := m.states[chain[i]].enter; enter != nil {
			enter(wifi.Message{})
		}
	}
	m.current = initial
	m.started = true
	m.performTransitions(wifi.Message{})
	if m.onDispatched != nil {
		m.onDispatched()
	}
}

func (m *machine) send(msg wifi.Message) looper.Token {
	return m.handler.Post(func() { m.dispatch(msg) })
}

func (m *machine) sendDelayed(msg wifi.Message, delay time.Duration) looper.Token {
	return m.handler.PostDelayed(func() { m.dispatch(msg) }, delay)
}

func (m *machine) transitionTo(id wifi.StateID) {
	m.dest = id
}

// deferMessage holds msg until the next state change.
func (m *machine) deferMessage(msg wifi.Message) {
	m.deferred = append(m.deferred, msg)
}

func (m *machine) currentMessage() wifi.Message {
	return m.curMsg
}

func (m *machine) isIn(id wifi.StateID) bool {
	for _, s := range m.chains[m.current] {
		if s == id {
			return true
		}
	}
	return false
}

func (m *machine) dispatch(msg wifi.Message) {
	if !m.started {
		m.logger.Warn().Stringer("event", msg.What).Msg("message before start dropped")
		return
	}
	m.curMsg = msg
	handled := false
	for _, id := range m.chains[m.current] {
		if act, ok := m.states[id].on[msg.What]; ok && act(msg) {
			handled = true
			break
		}
	}
	if !handled {
		m.logger.Error().Stringer("event", msg.What).Str("state", string(m.current)).Msg("unhandled message")
	}
	m.performTransitions(msg)
	if m.onDispatched != nil {
		m.onDispatched()
	}
}

// performTransitions applies pending transitions, including ones requested
// by enter actions, then replays deferred messages ahead of new ones. A
// transition to the current state runs no exit or enter actions but still
// replays deferred messages.
func (m *machine) performTransitions(msg wifi.Message) {
	requested := false
	for m.dest != "" {
		dest := m.dest
		m.dest = ""
		requested = true
		if dest == m.current {
			continue
		}
		from := m.current
		common := m.commonAncestor(dest)
		for _, id := range m.chains[from] {
			if id == common {
				break
			}
			if exit := m.states[id].exit; exit != nil {
				exit()
			}
		}
		destChain := m.chains[dest]
		idx := len(destChain)
		for i, id := range destChain {
			if id == common {
				idx = i
				break
			}
		}
		m.current = dest
		for i := idx - 1; i >= 0; i-- {
			if enter := m.states[destChain[i]].enter; enter != nil {
				enter(msg)
			}
		}
		if m.onTransition != nil {
			m.onTransition(from, dest, msg)
		}
	}
	if !requested || len(m.deferred) == 0 {
		return
	}
	deferred := m.deferred
	m.deferred = nil
	for i := len(deferred) - 1; i >= 0; i-- {
		d := deferred[i]
		m.handler.PostAtFront(func() { m.dispatch(d) })
	}
}

func (m *machine) commonAncestor(dest wifi.StateID) wifi.StateID {
	for _, id := range m.chains[dest] {
		if m.isIn(id) {
			return id
		}
	}
	return ""
}
