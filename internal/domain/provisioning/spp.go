package provisioning

import (
	"crypto/x509"
	"fmt"
	"strings"
)

// MessageType classifies an SPP response.
type MessageType int

const (
	MessageUnknown MessageType = iota
	MessagePostDevDataResponse
	MessageExchangeComplete
)

// SppStatus is the sppStatus attribute of a response.
type SppStatus string

const (
	SppStatusOK               SppStatus = "OK"
	SppStatusProvComplete     SppStatus = "Provisioning complete, request sppUpdateResponse"
	SppStatusExchangeComplete SppStatus = "Exchange complete, release TLS connection"
	SppStatusError            SppStatus = "Error occurred"
)

// CommandID is the command carried by a postDevDataResponse.
type CommandID int

const (
	CommandUnknown CommandID = iota
	CommandExec
	CommandAddMO
	CommandUpdateNode
	CommandNoMOUpdate
)

// ExecCommandID refines CommandExec.
type ExecCommandID int

const (
	ExecNone ExecCommandID = iota
	ExecBrowser
	ExecGetCert
	ExecUseClientCertTLS
	ExecUploadMO
)

// Command is the payload of a postDevDataResponse.
type Command struct {
	ID         CommandID
	Exec       ExecCommandID
	BrowserURI string
	// PPSMO holds the management object text of an ADD_MO command.
	PPSMO string
}

// Response is a parsed SPP response from the OSU server.
type Response struct {
	Type      MessageType
	SessionID string
	Status    SppStatus
	// Error is the sppError code; empty when the server reported none.
	Error   string
	Command *Command
}

// RequestKind selects the SPP request sent to the server.
type RequestKind int

const (
	RequestPostDevData RequestKind = iota + 1
	RequestUpdateResponse
)

const (
	ReasonSubscriptionRegistration = "Subscription registration"
	ReasonUserInputCompleted       = "User input completed"
)

// DeviceInfo is reported to the OSU server in devInfo/devDetail.
type DeviceInfo struct {
	DeviceID     string `json:"deviceId"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Language     string `json:"language"`
	HwVersion    string `json:"hwVersion"`
	SwVersion    string `json:"swVersion"`
	FwVersion    string `json:"fwVersion"`
	MACAddress   string `json:"macAddress"`
	IMSI         string `json:"imsi,omitempty"`
}

// Request is an outgoing SPP message.
type Request struct {
	Kind        RequestKind
	Reason      string
	SessionID   string
	RedirectURI string
	Device      DeviceInfo
	// UpdateError marks an sppUpdateResponse reporting an invalid MO.
	UpdateError bool
}

// TrustCertType names which server a trust root belongs to.
type TrustCertType int

const (
	TrustCertAAA TrustCertType = iota
	TrustCertRemediation
	TrustCertPolicy
)

// TrustRoot is a certificate URL plus its SHA-256 fingerprint.
type TrustRoot struct {
	URL         string `json:"url"`
	Fingerprint []byte `json:"fingerprint"`
}

type Credential struct {
	Realm     string `json:"realm"`
	Username  string `json:"username,omitempty"`
	EAPMethod int    `json:"eapMethod,omitempty"`
	CertType  string `json:"certType,omitempty"`
}

// PasspointConfig is the subscription produced by provisioning.
type PasspointConfig struct {
	FQDN                 string      `json:"fqdn"`
	FriendlyName         string      `json:"friendlyName"`
	Credential           *Credential `json:"credential,omitempty"`
	AAATrustRoots        []TrustRoot `json:"aaaTrustRoots,omitempty"`
	RemediationTrustRoot *TrustRoot  `json:"remediationTrustRoot,omitempty"`
	PolicyTrustRoot      *TrustRoot  `json:"policyTrustRoot,omitempty"`
	CACertificates       [][]byte    `json:"caCertificates,omitempty"`
	PPSMO                string      `json:"-"`
}

// ValidateR2 checks the fields a release 2 subscription must carry.
func (c *PasspointConfig) ValidateR2() error {
	var missing []string
	if c.FQDN == "" {
		missing = append(missing, "fqdn")
	}
	if c.FriendlyName == "" {
		missing = append(missing, "friendly name")
	}
	if c.Credential == nil || c.Credential.Realm == "" {
		missing = append(missing, "credential realm")
	}
	if len(c.AAATrustRoots) == 0 {
		missing = append(missing, "aaa trust root")
	}
	if c.RemediationTrustRoot == nil {
		missing = append(missing, "subscription update")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidPPSMO, strings.Join(missing, ", "))
	}
	return nil
}

// TrustRootURLs groups the trust root URLs to retrieve by server type.
func (c *PasspointConfig) TrustRootURLs() map[TrustCertType][]TrustRoot {
	out := make(map[TrustCertType][]TrustRoot)
	if len(c.AAATrustRoots) > 0 {
		out[TrustCertAAA] = append([]TrustRoot(nil), c.AAATrustRoots...)
	}
	if c.RemediationTrustRoot != nil {
		out[TrustCertRemediation] = []TrustRoot{*c.RemediationTrustRoot}
	}
	if c.PolicyTrustRoot != nil {
		out[TrustCertPolicy] = []TrustRoot{*c.PolicyTrustRoot}
	}
	return out
}

// SetCACertificates stores the DER encoding of every retrieved certificate.
func (c *PasspointConfig) SetCACertificates(certs map[TrustCertType][]*x509.Certificate) {
	c.CACertificates = c.CACertificates[:0]
	for _, typ := range []TrustCertType{TrustCertAAA, TrustCertRemediation, TrustCertPolicy} {
		for _, cert := range certs[typ] {
			if cert != nil {
				c.CACertificates = append(c.CACertificates, cert.Raw)
			}
		}
	}
}
