package iwd

import (
	"errors"

	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

var (
	errNoDevice        = errors.New("iwd device not available")
	errNetworkNotFound = errors.New("network not found")
)

func (c *Client) SetSupplicantRunning(enable bool) {
	c.async(func() {
		device, _ := c.paths()
		err := errNoDevice
		if device != "" {
			err = c.setProperty(device, DeviceIface, "Powered", enable)
		}
		if err != nil {
			c.logger.Warn().Err(err).Bool("enable", enable).Msg("failed to set device power")
			if enable {
				c.sink.Send(wifi.Message{What: wifi.CmdStaStartFailure})
			} else {
				c.sink.Send(wifi.Message{What: wifi.CmdWifiStopFailure})
			}
			return
		}
		c.reportPowered(enable, true)
	})
}

// SetOperationalMode maps the station modes onto iwd. iwd has no scan-only
// mode, so scan-only drops any association and keeps the radio powered.
// Leaving connect mode for scan-only-with-wifi-off reports Wi-Fi disabled.
func (c *Client) SetOperationalMode(mode wifi.OperationalMode) {
	c.mu.Lock()
	prev := c.mode
	c.mode = mode
	c.mu.Unlock()
	if prev == mode {
		return
	}
	c.logger.Info().Stringer("mode", mode).Msg("operational mode")
	if mode != wifi.ModeScanOnly && mode != wifi.ModeScanOnlyWithWifiOff {
		return
	}
	wifiOff := mode == wifi.ModeScanOnlyWithWifiOff && prev == wifi.ModeConnect
	c.async(func() {
		if _, station := c.paths(); station != "" {
			if err := c.conn.Object(Service, station).Call(StationIface+".Disconnect", 0).Err; err != nil {
				c.logger.Debug().Err(err).Msg("disconnect for scan-only mode")
			}
		}
		if wifiOff {
			c.sink.Send(wifi.Message{What: wifi.CmdWifiDisabled})
		}
	})
}

func (c *Client) OperationalMode() wifi.OperationalMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetHighPerfModeEnabled is recorded only; power save is driven by the
// op-mode driver over nl80211.
func (c *Client) SetHighPerfModeEnabled(enable bool) {
	c.mu.Lock()
	c.highPerf = enable
	c.mu.Unlock()
	c.logger.Debug().Bool("enable", enable).Msg("high perf mode")
}

// ReloadTLSNetworksAndReconnect triggers a scan, which makes iwd retry
// autoconnect with the reloaded credentials.
func (c *Client) ReloadTLSNetworksAndReconnect() {
	c.async(func() {
		_, station := c.paths()
		if station == "" {
			return
		}
		if err := c.conn.Object(Service, station).Call(StationIface+".Scan", 0).Err; err != nil {
			c.logger.Debug().Err(err).Msg("rescan after tls reload")
		}
	})
}

func (c *Client) UpdateBatteryWorkSource(ws lock.WorkSource) {
	c.mu.Lock()
	c.batteryWS = ws.Clone()
	c.mu.Unlock()
}

// ClearANQPCache is a no-op: iwd refreshes ANQP on every scan.
func (c *Client) ClearANQPCache() {}

func (c *Client) SetHostApRunning(cfg *wifi.SoftApConfig, enable bool) {
	c.async(func() {
		if enable {
			if err := c.startAp(cfg); err != nil {
				c.logger.Warn().Err(err).Msg("failed to start access point")
				c.sink.Send(wifi.Message{What: wifi.CmdApStartFailure})
				return
			}
			c.reportAp(true, true)
			return
		}
		if err := c.stopAp(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to stop access point")
			c.sink.Send(wifi.Message{What: wifi.CmdApStopFailure})
			return
		}
		c.reportAp(false, true)
	})
}

func (c *Client) startAp(cfg *wifi.SoftApConfig) error {
	path, _ := c.paths()
	if path == "" {
		return errNoDevice
	}
	if cfg == nil || cfg.SSID == "" {
		return errors.New("softap ssid required")
	}
	if err := c.setProperty(path, DeviceIface, "Mode", "ap"); err != nil {
		return err
	}
	return c.conn.Object(Service, path).Call(AccessPointIface+".Start", 0, cfg.SSID, cfg.Passphrase).Err
}

func (c *Client) stopAp() error {
	path, _ := c.paths()
	if path == "" {
		return errNoDevice
	}
	if err := c.conn.Object(Service, path).Call(AccessPointIface+".Stop", 0).Err; err != nil {
		return err
	}
	return c.setProperty(path, DeviceIface, "Mode", "station")
}
