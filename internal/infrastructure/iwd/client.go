package iwd

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/provisioning"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

const (
	Service          = "net.connman.iwd"
	DeviceIface      = "net.connman.iwd.Device"
	StationIface     = "net.connman.iwd.Station"
	NetworkIface     = "net.connman.iwd.Network"
	AccessPointIface = "net.connman.iwd.AccessPoint"

	propertiesIface   = "org.freedesktop.DBus.Properties"
	propertiesChanged = propertiesIface + ".PropertiesChanged"
	objectManager     = "org.freedesktop.DBus.ObjectManager"
)

// bus is the part of *dbus.Conn the client uses.
type bus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	BusObject() dbus.BusObject
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Close() error
}

// Client drives iwd for one wireless interface. It implements
// wifi.StationControl, wifi.SoftApControl and provisioning.OsuNetwork.
// D-Bus calls run off the caller's goroutine; outcomes are reported to the
// controller through the event sink.
type Client struct {
	conn  bus
	iface string
	sink  wifi.EventSink
	async func(func())

	mu          sync.Mutex
	devicePath  dbus.ObjectPath
	stationPath dbus.ObjectPath
	powered     bool
	apStarted   bool
	connected   bool
	mode        wifi.OperationalMode
	highPerf    bool
	batteryWS   lock.WorkSource
	onConnected func(bool)

	osu osuSession

	logger zerolog.Logger
}

// Dial connects to the system bus.
func Dial(iface string, sink wifi.EventSink, logger zerolog.Logger) (*Client, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return newClient(conn, iface, sink, logger), nil
}

func newClient(conn bus, iface string, sink wifi.EventSink, logger zerolog.Logger) *Client {
	return &Client{
		conn:   conn,
		iface:  iface,
		sink:   sink,
		async:  func(fn func()) { go fn() },
		mode:   wifi.ModeDisabled,
		logger: logger.With().Str("component", "iwd").Str("iface", iface).Logger(),
	}
}

// OnNetworkConnected registers fn to observe station connectivity.
func (c *Client) OnNetworkConnected(fn func(connected bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnected = fn
}

// Run locates the device and follows iwd property changes until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	rule := fmt.Sprintf("type='signal',sender='%s',interface='%s',member='PropertiesChanged'", Service, propertiesIface)
	if err := c.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule).Err; err != nil {
		return fmt.Errorf("add match: %w", err)
	}
	if err := c.findDevice(); err != nil {
		c.logger.Warn().Err(err).Msg("iwd device not found yet")
	}

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			c.handleSignal(sig)
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Powered reports the last known device power state.
func (c *Client) Powered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.powered
}

func (c *Client) findDevice() error {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	err := c.conn.Object(Service, "/").Call(objectManager+".GetManagedObjects", 0).Store(&objects)
	if err != nil {
		return fmt.Errorf("failed to get managed objects: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, ifaces := range objects {
		dev, ok := ifaces[DeviceIface]
		if !ok {
			continue
		}
		if name, _ := dev["Name"].Value().(string); name != c.iface {
			continue
		}
		c.devicePath = path
		if p, ok := dev["Powered"].Value().(bool); ok {
			c.powered = p
		}
		if _, ok := ifaces[StationIface]; ok {
			c.stationPath = path
		}
		if ap, ok := ifaces[AccessPointIface]; ok {
			c.apStarted, _ = ap["Started"].Value().(bool)
		}
		c.logger.Info().Str("path", string(path)).Bool("powered", c.powered).Msg("found iwd device")
		return nil
	}
	return fmt.Errorf("no iwd device named %s", c.iface)
}

func (c *Client) handleSignal(sig *dbus.Signal) {
	if sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return
	}
	c.mu.Lock()
	ours := sig.Path == c.devicePath || sig.Path == c.stationPath
	c.mu.Unlock()
	if !ours {
		return
	}
	iface, _ := sig.Body[0].(string)
	props, _ := sig.Body[1].(map[string]dbus.Variant)
	if props == nil {
		return
	}
	switch iface {
	case DeviceIface:
		if v, ok := props["Powered"].Value().(bool); ok {
			c.reportPowered(v, false)
		}
	case AccessPointIface:
		if v, ok := props["Started"].Value().(bool); ok {
			c.reportAp(v, false)
		}
	case StationIface:
		if v, ok := props["State"].Value().(string); ok {
			c.stationStateChanged(v)
		}
	}
}

// reportPowered forwards a power change to the controller. Changes we
// requested are always reported; property signals only when they differ.
func (c *Client) reportPowered(on, requested bool) {
	c.mu.Lock()
	changed := c.powered != on
	c.powered = on
	c.mu.Unlock()
	if !changed && !requested {
		return
	}
	if on {
		c.sink.Send(wifi.Message{What: wifi.CmdWifiEnabled})
		return
	}
	c.sink.Send(wifi.Message{What: wifi.CmdWifiDisabled})
	c.osuWifiDisabled()
}

func (c *Client) reportAp(started, requested bool) {
	c.mu.Lock()
	changed := c.apStarted != started
	c.apStarted = started
	c.mu.Unlock()
	if !changed && !requested {
		return
	}
	if started {
		c.sink.Send(wifi.Message{What: wifi.CmdApStarted})
	} else {
		c.sink.Send(wifi.Message{What: wifi.CmdApStopped})
	}
}

func (c *Client) stationStateChanged(state string) {
	connected := state == "connected" || state == "roaming"
	c.mu.Lock()
	changed := c.connected != connected
	c.connected = connected
	fn := c.onConnected
	c.mu.Unlock()
	c.logger.Debug().Str("state", state).Msg("station state")
	if changed && fn != nil {
		fn(connected)
	}
	c.osuStationState(state)
}

func (c *Client) setProperty(path dbus.ObjectPath, iface, name string, value interface{}) error {
	return c.conn.Object(Service, path).Call(propertiesIface+".Set", 0, iface, name, dbus.MakeVariant(value)).Err
}

func (c *Client) paths() (device, station dbus.ObjectPath) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.devicePath, c.stationPath
}

var (
	_ wifi.StationControl     = (*Client)(nil)
	_ wifi.SoftApControl      = (*Client)(nil)
	_ provisioning.OsuNetwork = (*Client)(nil)
)
