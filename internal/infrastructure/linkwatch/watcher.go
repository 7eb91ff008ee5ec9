package linkwatch

import (
	"context"
	"fmt"
	"sync"
	"syscall"

	"github.com/jsimonetti/rtnetlink"
	"github.com/mdlayher/netlink"
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

const rtmgrpLink = 0x1

type receiver interface {
	Receive() ([]netlink.Message, error)
	Close() error
}

type linkLister interface {
	List() ([]rtnetlink.LinkMessage, error)
}

// LinkState is the last observed state of the watched interface.
type LinkState struct {
	Present bool   `json:"present"`
	Index   uint32 `json:"index,omitempty"`
	Up      bool   `json:"up"`
	Carrier bool   `json:"carrier"`
}

// Watcher reports the disappearance of the Wi-Fi interface to the
// controller as a station start failure.
type Watcher struct {
	events  receiver
	links   linkLister
	closer  func() error
	iface   string
	enabled func() bool
	sink    wifi.EventSink

	mu    sync.Mutex
	state LinkState

	logger zerolog.Logger
}

// Dial subscribes to link notifications. enabled reports whether the radio
// is expected to be up; removals while it is off are only logged.
func Dial(iface string, enabled func() bool, sink wifi.EventSink, logger zerolog.Logger) (*Watcher, error) {
	conn, err := netlink.Dial(syscall.NETLINK_ROUTE, &netlink.Config{Groups: rtmgrpLink})
	if err != nil {
		return nil, fmt.Errorf("failed to dial netlink: %w", err)
	}
	rtConn, err := rtnetlink.Dial(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to dial rtnetlink: %w", err)
	}
	w := newWatcher(conn, rtConn.Link, iface, enabled, sink, logger)
	w.closer = rtConn.Close
	return w, nil
}

func newWatcher(events receiver, links linkLister, iface string, enabled func() bool, sink wifi.EventSink, logger zerolog.Logger) *Watcher {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &Watcher{
		events:  events,
		links:   links,
		iface:   iface,
		enabled: enabled,
		sink:    sink,
		logger:  logger.With().Str("component", "linkwatch").Str("iface", iface).Logger(),
	}
}

func (w *Watcher) State() LinkState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Run fetches the current links and then handles notifications until ctx
// is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fetch(); err != nil {
		w.logger.Warn().Err(err).Msg("initial link list failed")
	}
	go func() {
		<-ctx.Done()
		w.events.Close()
		if w.closer != nil {
			w.closer()
		}
	}()
	for {
		msgs, err := w.events.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn().Err(err).Msg("netlink receive error")
			continue
		}
		for _, m := range msgs {
			w.handle(m)
		}
	}
}

func (w *Watcher) fetch() error {
	links, err := w.links.List()
	if err != nil {
		return err
	}
	for _, l := range links {
		if l.Attributes != nil && l.Attributes.Name == w.iface {
			w.update(l)
			return nil
		}
	}
	w.logger.Warn().Msg("interface not present")
	return nil
}

func (w *Watcher) handle(m netlink.Message) {
	switch m.Header.Type {
	case syscall.RTM_NEWLINK, syscall.RTM_DELLINK:
	default:
		return
	}
	var lm rtnetlink.LinkMessage
	if err := lm.UnmarshalBinary(m.Data); err != nil {
		w.logger.Debug().Err(err).Msg("failed to parse link message")
		return
	}
	if !w.matches(lm) {
		return
	}
	if m.Header.Type == syscall.RTM_NEWLINK {
		w.update(lm)
		return
	}

	w.mu.Lock()
	w.state = LinkState{}
	w.mu.Unlock()
	if !w.enabled() {
		w.logger.Info().Uint32("index", lm.Index).Msg("interface removed while radio off")
		return
	}
	w.logger.Error().Uint32("index", lm.Index).Msg("interface removed")
	w.sink.Send(wifi.Message{What: wifi.CmdStaStartFailure})
}

func (w *Watcher) matches(lm rtnetlink.LinkMessage) bool {
	if lm.Attributes != nil && lm.Attributes.Name != "" {
		return lm.Attributes.Name == w.iface
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Present && w.state.Index == lm.Index
}

func (w *Watcher) update(lm rtnetlink.LinkMessage) {
	st := LinkState{Present: true, Index: lm.Index}
	if lm.Attributes != nil {
		st.Up = lm.Attributes.OperationalState == rtnetlink.OperStateUp
		st.Carrier = lm.Attributes.Carrier != nil && *lm.Attributes.Carrier == 1
	}
	w.mu.Lock()
	changed := st != w.state
	w.state = st
	w.mu.Unlock()
	if changed {
		w.logger.Debug().Uint32("index", st.Index).Bool("up", st.Up).Bool("carrier", st.Carrier).Msg("link state")
	}
}
