package osu

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

const ppsNodeName = "PerProviderSubscription"

// node is one element of an OMA-DM DDF management tree.
type node struct {
	Name     string  `xml:"NodeName"`
	Value    *string `xml:"Value"`
	Children []node  `xml:"Node"`
}

type mgmtTree struct {
	XMLName xml.Name `xml:"MgmtTree"`
	Nodes   []node   `xml:"Node"`
}

func (n *node) child(name string) *node {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		if strings.EqualFold(n.Children[i].Name, name) {
			return &n.Children[i]
		}
	}
	return nil
}

func (n *node) path(names ...string) *node {
	for _, name := range names {
		n = n.child(name)
	}
	return n
}

func (n *node) value() string {
	if n == nil || n.Value == nil {
		return ""
	}
	return strings.TrimSpace(*n.Value)
}

// PPSMOParser reads the Hotspot 2.0 PerProviderSubscription management
// object delivered in an ADD_MO command.
type PPSMOParser struct{}

func (PPSMOParser) ParsePPSMO(text string) (*provisioning.PasspointConfig, error) {
	var tree mgmtTree
	if err := xml.Unmarshal([]byte(text), &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", provisioning.ErrInvalidPPSMO, err)
	}
	var pps *node
	for i := range tree.Nodes {
		if strings.EqualFold(tree.Nodes[i].Name, ppsNodeName) {
			pps = &tree.Nodes[i]
		}
	}
	if pps == nil {
		return nil, fmt.Errorf("%w: %s node missing", provisioning.ErrInvalidPPSMO, ppsNodeName)
	}
	// The subscription sits under a single instance node such as i001.
	if len(pps.Children) != 1 {
		return nil, fmt.Errorf("%w: expected one subscription instance, got %d", provisioning.ErrInvalidPPSMO, len(pps.Children))
	}
	inst := &pps.Children[0]

	cfg := &provisioning.PasspointConfig{
		FQDN:         inst.path("HomeSP", "FQDN").value(),
		FriendlyName: inst.path("HomeSP", "FriendlyName").value(),
		PPSMO:        text,
	}

	if cred := inst.child("Credential"); cred != nil {
		c := &provisioning.Credential{Realm: cred.child("Realm").value()}
		if up := cred.child("UsernamePassword"); up != nil {
			c.Username = up.child("Username").value()
			if eap := up.path("EAPMethod", "EAPType").value(); eap != "" {
				n, err := strconv.Atoi(eap)
				if err != nil {
					return nil, fmt.Errorf("%w: eap type %q", provisioning.ErrInvalidPPSMO, eap)
				}
				c.EAPMethod = n
			}
		}
		if dc := cred.child("DigitalCertificate"); dc != nil {
			c.CertType = dc.child("CertificateType").value()
		}
		cfg.Credential = c
	}

	if aaa := inst.child("AAAServerTrustRoot"); aaa != nil {
		for i := range aaa.Children {
			root, err := trustRoot(&aaa.Children[i])
			if err != nil {
				return nil, err
			}
			cfg.AAATrustRoots = append(cfg.AAATrustRoots, *root)
		}
	}
	if tr := inst.path("SubscriptionUpdate", "TrustRoot"); tr != nil {
		root, err := trustRoot(tr)
		if err != nil {
			return nil, err
		}
		cfg.RemediationTrustRoot = root
	}
	if tr := inst.path("Policy", "PolicyUpdate", "TrustRoot"); tr != nil {
		root, err := trustRoot(tr)
		if err != nil {
			return nil, err
		}
		cfg.PolicyTrustRoot = root
	}
	return cfg, nil
}

func trustRoot(n *node) (*provisioning.TrustRoot, error) {
	u := n.child("CertURL").value()
	if u == "" {
		return nil, fmt.Errorf("%w: %s has no CertURL", provisioning.ErrInvalidPPSMO, n.Name)
	}
	fp, err := hex.DecodeString(n.child("CertSHA256Fingerprint").value())
	if err != nil || len(fp) != 32 {
		return nil, fmt.Errorf("%w: %s has a bad fingerprint", provisioning.ErrInvalidPPSMO, n.Name)
	}
	return &provisioning.TrustRoot{URL: u, Fingerprint: fp}, nil
}

var _ provisioning.MoParser = PPSMOParser{}
