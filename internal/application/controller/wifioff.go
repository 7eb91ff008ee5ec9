package controller

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
	"github.com/execution-hub/wifictl/internal/infrastructure/looper"
)

// imsLostGrace is the extra wait after the last IMS network is lost, since
// the IMS PDN takes a while to come down at the modem.
const imsLostGrace = time.Second

// wifiOffDeferral delays stopping the supplicant while IMS is registered
// over WLAN, so calls can hand over to cellular first.
type wifiOffDeferral struct {
	handler  looper.Handler
	ims      wifi.ImsMonitor
	maxDefer time.Duration

	deferring  bool
	tokens     []looper.Token
	unregister func()
	networks   int
	proceed    func()

	// changed is called when deferring starts or ends.
	changed func()
	logger  zerolog.Logger
}

func newWifiOffDeferral(handler looper.Handler, ims wifi.ImsMonitor, maxDefer time.Duration, logger zerolog.Logger) *wifiOffDeferral {
	return &wifiOffDeferral{handler: handler, ims: ims, maxDefer: maxDefer, logger: logger}
}

// start runs stop now or once IMS has left WLAN, whichever the IMS state
// allows. A second start while deferring is ignored.
func (d *wifiOffDeferral) start(stop func()) {
	if d.deferring {
		return
	}
	delay := time.Duration(0)
	if d.ims != nil && d.maxDefer > 0 {
		delay = d.ims.WifiOffDeferringTime()
		if delay > d.maxDefer {
			delay = d.maxDefer
		}
	}
	d.proceed = stop
	if delay <= 0 {
		d.continueStop()
		return
	}

	d.deferring = true
	d.networks = 0
	d.tokens = append(d.tokens, d.handler.PostDelayed(d.continueStop, delay))
	d.logger.Info().Dur("delay", delay).Msg("deferring wifi off for ims")
	d.notify()

	unregister, err := d.ims.Register(wifi.ImsCallbacks{
		OnRegistered: func(transport wifi.Transport) {
			d.handler.Post(func() { d.onRegistered(transport) })
		},
		OnNetworkAvailable: func() {
			d.handler.Post(func() { d.networks++ })
		},
		OnNetworkLost: func() {
			d.handler.Post(d.onNetworkLost)
		},
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("ims registration callback failed")
		d.continueStop()
		return
	}
	d.unregister = unregister
}

// cancel abandons a pending stop without running it.
func (d *wifiOffDeferral) cancel() {
	if !d.deferring {
		return
	}
	d.logger.Info().Msg("wifi off deferral cancelled")
	d.proceed = nil
	d.teardown()
}

func (d *wifiOffDeferral) onRegistered(transport wifi.Transport) {
	if !d.deferring {
		return
	}
	if transport != wifi.TransportWLAN {
		d.continueStop()
	}
}

func (d *wifiOffDeferral) onNetworkLost() {
	d.networks--
	if d.deferring && d.networks == 0 {
		d.tokens = append(d.tokens, d.handler.PostDelayed(d.continueStop, imsLostGrace))
	}
}

func (d *wifiOffDeferral) continueStop() {
	if stop := d.proceed; stop != nil {
		d.proceed = nil
		stop()
	}
	if d.deferring {
		d.teardown()
	}
}

func (d *wifiOffDeferral) teardown() {
	for _, tok := range d.tokens {
		d.handler.Remove(tok)
	}
	d.tokens = nil
	if d.unregister != nil {
		d.unregister()
		d.unregister = nil
	}
	d.deferring = false
	d.notify()
}

func (d *wifiOffDeferral) notify() {
	if d.changed != nil {
		d.changed()
	}
}
