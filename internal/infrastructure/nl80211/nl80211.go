package nl80211

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/mdlayher/netlink"
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

// Generic netlink and nl80211 constants from linux/genetlink.h and
// linux/nl80211.h.
const (
	netlinkGeneric = 16

	genlIDCtrl           = 0x10
	ctrlCmdGetFamily     = 3
	ctrlAttrFamilyID     = 1
	ctrlAttrFamilyName   = 2
	familyName           = "nl80211"
	genlHeaderLen        = 4
	cmdGetWiphy          = 1
	cmdSetPowerSave      = 61
	attrWiphy            = 1
	attrIfindex          = 3
	attrPSState          = 93
	attrFeatureFlags     = 143
	psDisabled           = 0
	psEnabled            = 1
	baseFeatureSupported = 1 << 0
)

var ErrFamilyNotFound = errors.New("nl80211 family not found")

// conn is the part of *netlink.Conn the radio uses.
type conn interface {
	Execute(m netlink.Message) ([]netlink.Message, error)
	Close() error
}

// Radio implements lock.RadioControl over nl80211.
type Radio struct {
	conn  conn
	iface string
	index func(name string) (int, error)

	mu       sync.Mutex
	family   uint16
	features uint64

	logger zerolog.Logger
}

// Dial opens a generic netlink socket for iface.
func Dial(iface string, logger zerolog.Logger) (*Radio, error) {
	c, err := netlink.Dial(netlinkGeneric, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial generic netlink: %w", err)
	}
	return newRadio(c, iface, logger), nil
}

func newRadio(c conn, iface string, logger zerolog.Logger) *Radio {
	return &Radio{
		conn:  c,
		iface: iface,
		index: func(name string) (int, error) {
			ifi, err := net.InterfaceByName(name)
			if err != nil {
				return 0, err
			}
			return ifi.Index, nil
		},
		logger: logger.With().Str("component", "nl80211").Str("iface", iface).Logger(),
	}
}

func (r *Radio) Close() error {
	return r.conn.Close()
}

func (r *Radio) SetPowerSave(enable bool) bool {
	ifindex, err := r.index(r.iface)
	if err != nil {
		r.logger.Warn().Err(err).Msg("interface lookup failed")
		return false
	}
	state := uint32(psDisabled)
	if enable {
		state = psEnabled
	}
	ae := netlink.NewAttributeEncoder()
	ae.Uint32(attrIfindex, uint32(ifindex))
	ae.Uint32(attrPSState, state)
	if _, err := r.execute(cmdSetPowerSave, ae, netlink.Request|netlink.Acknowledge); err != nil {
		r.logger.Warn().Err(err).Bool("enable", enable).Msg("set power save failed")
		return false
	}
	return true
}

// SetLowLatencyMode is unsupported; the feature bitmap never advertises it.
func (r *Radio) SetLowLatencyMode(enable bool) bool {
	return false
}

// SupportedFeatureBitmap returns the wiphy feature flags with the base bit
// set, or 0 until the wiphy answers.
func (r *Radio) SupportedFeatureBitmap() uint64 {
	r.mu.Lock()
	cached := r.features
	r.mu.Unlock()
	if cached != 0 {
		return cached
	}

	ifindex, err := r.index(r.iface)
	if err != nil {
		return 0
	}
	ae := netlink.NewAttributeEncoder()
	ae.Uint32(attrIfindex, uint32(ifindex))
	msgs, err := r.execute(cmdGetWiphy, ae, netlink.Request)
	if err != nil {
		r.logger.Debug().Err(err).Msg("get wiphy failed")
		return 0
	}
	var flags uint32
	for _, m := range msgs {
		if len(m.Data) < genlHeaderLen {
			continue
		}
		ad, err := netlink.NewAttributeDecoder(m.Data[genlHeaderLen:])
		if err != nil {
			continue
		}
		for ad.Next() {
			if ad.Type() == attrFeatureFlags {
				flags = ad.Uint32()
			}
		}
	}
	features := (uint64(flags) | baseFeatureSupported) &^ lock.FeatureLowLatency
	r.mu.Lock()
	r.features = features
	r.mu.Unlock()
	r.logger.Info().Uint64("features", features).Msg("wiphy features")
	return features
}

func (r *Radio) execute(cmd uint8, ae *netlink.AttributeEncoder, flags netlink.HeaderFlags) ([]netlink.Message, error) {
	family, err := r.resolveFamily()
	if err != nil {
		return nil, err
	}
	attrs, err := ae.Encode()
	if err != nil {
		return nil, err
	}
	return r.conn.Execute(netlink.Message{
		Header: netlink.Header{Type: netlink.HeaderType(family), Flags: flags},
		Data:   append(genlHeader(cmd, 0), attrs...),
	})
}

func (r *Radio) resolveFamily() (uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.family != 0 {
		return r.family, nil
	}
	ae := netlink.NewAttributeEncoder()
	ae.String(ctrlAttrFamilyName, familyName)
	attrs, err := ae.Encode()
	if err != nil {
		return 0, err
	}
	msgs, err := r.conn.Execute(netlink.Message{
		Header: netlink.Header{Type: genlIDCtrl, Flags: netlink.Request},
		Data:   append(genlHeader(ctrlCmdGetFamily, 1), attrs...),
	})
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", familyName, err)
	}
	for _, m := range msgs {
		if len(m.Data) < genlHeaderLen {
			continue
		}
		ad, err := netlink.NewAttributeDecoder(m.Data[genlHeaderLen:])
		if err != nil {
			continue
		}
		for ad.Next() {
			if ad.Type() == ctrlAttrFamilyID {
				r.family = ad.Uint16()
			}
		}
	}
	if r.family == 0 {
		return 0, ErrFamilyNotFound
	}
	return r.family, nil
}

func genlHeader(cmd, version uint8) []byte {
	b := make([]byte, genlHeaderLen)
	b[0] = cmd
	b[1] = version
	binary.LittleEndian.PutUint16(b[2:], 0)
	return b
}

var _ lock.RadioControl = (*Radio)(nil)
