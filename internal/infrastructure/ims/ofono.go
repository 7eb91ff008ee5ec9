package ims

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

const (
	Service         = "org.ofono"
	ImsIface        = "org.ofono.IpMultimediaSystem"
	propertyChanged = "PropertyChanged"
)

type bus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	BusObject() dbus.BusObject
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Close() error
}

// Monitor follows the IMS registration of one oFono modem. oFono does not
// expose the registration transport, so a re-registration is reported as
// WWAN.
type Monitor struct {
	conn      bus
	modem     dbus.ObjectPath
	deferTime time.Duration

	mu         sync.Mutex
	registered bool
	subs       map[int]wifi.ImsCallbacks
	nextID     int

	logger zerolog.Logger
}

func Dial(modem string, deferTime time.Duration, logger zerolog.Logger) (*Monitor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return newMonitor(conn, modem, deferTime, logger), nil
}

func newMonitor(conn bus, modem string, deferTime time.Duration, logger zerolog.Logger) *Monitor {
	return &Monitor{
		conn:      conn,
		modem:     dbus.ObjectPath(modem),
		deferTime: deferTime,
		subs:      make(map[int]wifi.ImsCallbacks),
		logger:    logger.With().Str("component", "ims").Str("modem", modem).Logger(),
	}
}

// WifiOffDeferringTime is the configured deferral while IMS is registered.
func (m *Monitor) WifiOffDeferringTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.registered {
		return 0
	}
	return m.deferTime
}

// Register subscribes cb. A subscriber joining while IMS is registered is
// told about the network it is registered on.
func (m *Monitor) Register(cb wifi.ImsCallbacks) (func(), error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = cb
	registered := m.registered
	m.mu.Unlock()

	if registered && cb.OnNetworkAvailable != nil {
		cb.OnNetworkAvailable()
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}, nil
}

func (m *Monitor) Registered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registered
}

// Run reads the current registration and follows changes until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	rule := fmt.Sprintf("type='signal',sender='%s',interface='%s',member='%s',path='%s'", Service, ImsIface, propertyChanged, m.modem)
	if err := m.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return fmt.Errorf("add match: %w", err)
	}

	var props map[string]dbus.Variant
	if err := m.conn.Object(Service, m.modem).Call(ImsIface+".GetProperties", 0).Store(&props); err != nil {
		m.logger.Warn().Err(err).Msg("failed to read ims properties")
	} else if v, ok := props["Registered"].Value().(bool); ok {
		m.setRegistered(v)
	}

	ch := make(chan *dbus.Signal, 8)
	m.conn.Signal(ch)
	defer m.conn.RemoveSignal(ch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			m.handleSignal(sig)
		}
	}
}

func (m *Monitor) Close() error {
	return m.conn.Close()
}

func (m *Monitor) handleSignal(sig *dbus.Signal) {
	if sig.Path != m.modem || sig.Name != ImsIface+"."+propertyChanged || len(sig.Body) < 2 {
		return
	}
	name, _ := sig.Body[0].(string)
	if name != "Registered" {
		return
	}
	v, ok := sig.Body[1].(dbus.Variant)
	if !ok {
		return
	}
	if registered, ok := v.Value().(bool); ok {
		m.setRegistered(registered)
	}
}

func (m *Monitor) setRegistered(registered bool) {
	m.mu.Lock()
	if m.registered == registered {
		m.mu.Unlock()
		return
	}
	m.registered = registered
	subs := make([]wifi.ImsCallbacks, 0, len(m.subs))
	for _, cb := range m.subs {
		subs = append(subs, cb)
	}
	m.mu.Unlock()

	m.logger.Info().Bool("registered", registered).Msg("ims registration changed")
	for _, cb := range subs {
		if registered {
			if cb.OnNetworkAvailable != nil {
				cb.OnNetworkAvailable()
			}
			if cb.OnRegistered != nil {
				cb.OnRegistered(wifi.TransportWWAN)
			}
		} else if cb.OnNetworkLost != nil {
			cb.OnNetworkLost()
		}
	}
}

// Disabled is used when no modem is configured. Wi-Fi off is never deferred.
type Disabled struct{}

func (Disabled) WifiOffDeferringTime() time.Duration { return 0 }

func (Disabled) Register(wifi.ImsCallbacks) (func(), error) { return func() {}, nil }

var (
	_ wifi.ImsMonitor = (*Monitor)(nil)
	_ wifi.ImsMonitor = Disabled{}
)
