package iwd

import (
	"github.com/godbus/dbus/v5"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

// osuSession tracks the station's association with an OSU network.
type osuSession struct {
	active    bool
	ssid      string
	connected bool
	cb        provisioning.NetworkCallbacks
}

func (c *Client) SetCallbacks(cb provisioning.NetworkCallbacks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.osu.cb = cb
}

// Connect starts associating with the open OSU network ssid. It returns
// false when the station cannot attempt it at all.
func (c *Client) Connect(ssid, nai string) bool {
	c.mu.Lock()
	if c.stationPath == "" || !c.powered {
		c.mu.Unlock()
		return false
	}
	c.osu.active = true
	c.osu.ssid = ssid
	c.osu.connected = false
	station := c.stationPath
	c.mu.Unlock()

	c.logger.Info().Str("ssid", ssid).Str("nai", nai).Msg("connecting to osu network")
	c.async(func() {
		if err := c.connectNetwork(station, ssid); err != nil {
			c.logger.Warn().Err(err).Str("ssid", ssid).Msg("osu network connect failed")
			c.osuLost(ssid)
		}
	})
	return true
}

func (c *Client) connectNetwork(station dbus.ObjectPath, ssid string) error {
	var ordered []struct {
		Path   dbus.ObjectPath
		Signal int16
	}
	err := c.conn.Object(Service, station).Call(StationIface+".GetOrderedNetworks", 0).Store(&ordered)
	if err != nil {
		return err
	}
	for _, n := range ordered {
		var props map[string]dbus.Variant
		if err := c.conn.Object(Service, n.Path).Call(propertiesIface+".GetAll", 0, NetworkIface).Store(&props); err != nil {
			continue
		}
		if name, _ := props["Name"].Value().(string); name == ssid {
			return c.conn.Object(Service, n.Path).Call(NetworkIface+".Connect", 0).Err
		}
	}
	return errNetworkNotFound
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	if !c.osu.active {
		c.mu.Unlock()
		return
	}
	c.osu = osuSession{cb: c.osu.cb}
	station := c.stationPath
	c.mu.Unlock()

	c.async(func() {
		if err := c.conn.Object(Service, station).Call(StationIface+".Disconnect", 0).Err; err != nil {
			c.logger.Debug().Err(err).Msg("osu disconnect")
		}
	})
}

func (c *Client) osuStationState(state string) {
	c.mu.Lock()
	if !c.osu.active {
		c.mu.Unlock()
		return
	}
	cb := c.osu.cb
	switch {
	case (state == "connected" || state == "roaming") && !c.osu.connected:
		c.osu.connected = true
		c.mu.Unlock()
		if cb.OnConnected != nil {
			cb.OnConnected(c.iface)
		}
	case state == "disconnected" && c.osu.connected:
		c.osu.connected = false
		c.mu.Unlock()
		if cb.OnDisconnected != nil {
			cb.OnDisconnected()
		}
	default:
		c.mu.Unlock()
	}
}

func (c *Client) osuLost(ssid string) {
	c.mu.Lock()
	if !c.osu.active || c.osu.ssid != ssid {
		c.mu.Unlock()
		return
	}
	cb := c.osu.cb
	c.mu.Unlock()
	if cb.OnDisconnected != nil {
		cb.OnDisconnected()
	}
}

func (c *Client) osuWifiDisabled() {
	c.mu.Lock()
	active := c.osu.active
	cb := c.osu.cb
	c.mu.Unlock()
	if active && cb.OnWifiDisabled != nil {
		cb.OnWifiDisabled()
	}
}
