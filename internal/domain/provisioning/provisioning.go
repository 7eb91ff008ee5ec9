package provisioning

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidProvider = errors.New("invalid osu provider")
	ErrNoLoginActivity = errors.New("no osu login activity available")
	ErrInvalidPPSMO    = errors.New("invalid pps mo")
)

// Provider describes an online sign-up (OSU) provider.
type Provider struct {
	FriendlyName string `json:"friendlyName"`
	ServerURI    string `json:"serverUri"`
	OsuSSID      string `json:"osuSsid"`
	NAI          string `json:"nai,omitempty"`
	Methods      []int  `json:"methods,omitempty"`
	ServiceDesc  string `json:"serviceDescription,omitempty"`
}

// Validate checks the fields required to start provisioning. The server URI
// itself is checked later so it can be reported as a provisioning failure.
func (p Provider) Validate() error {
	if strings.TrimSpace(p.FriendlyName) == "" {
		return fmt.Errorf("%w: friendly name required", ErrInvalidProvider)
	}
	if strings.TrimSpace(p.OsuSSID) == "" {
		return fmt.Errorf("%w: osu ssid required", ErrInvalidProvider)
	}
	return nil
}

// ServerURL parses the provider's server URI. Only https URLs with a host
// are accepted.
func (p Provider) ServerURL() (*url.URL, error) {
	u, err := url.Parse(p.ServerURI)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("server uri %q is not an https url", p.ServerURI)
	}
	return u, nil
}

// Stage is a provisioning pipeline stage.
type Stage int

const (
	StageInit Stage = iota
	StageAPConnecting
	StageAPConnected
	StageServerConnecting
	StageServerValidated
	StageServerConnected
	StageSoapExchange1
	StageWaitRedirect
	StageSoapExchange2
	StageSoapExchange3
	StageRetrieveTrustRootCerts
	StageComplete
)

var stageNames = [...]string{
	"INIT",
	"AP_CONNECTING",
	"AP_CONNECTED",
	"SERVER_CONNECTING",
	"SERVER_VALIDATED",
	"SERVER_CONNECTED",
	"SOAP_EXCHANGE_1",
	"WAIT_REDIRECT",
	"SOAP_EXCHANGE_2",
	"SOAP_EXCHANGE_3",
	"RETRIEVE_TRUST_ROOT_CERTS",
	"COMPLETE",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("STAGE(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a progress code reported to the caller.
type Status int

const (
	StatusAPConnecting Status = iota + 1
	StatusAPConnected
	StatusServerConnecting
	StatusServerValidated
	StatusServerConnected
	StatusInitSoapExchange
	StatusWaitingForRedirectResponse
	StatusRedirectResponseReceived
	StatusSecondSoapExchange
	StatusThirdSoapExchange
	StatusRetrievingTrustRootCerts
)

var statusNames = map[Status]string{
	StatusAPConnecting:               "AP_CONNECTING",
	StatusAPConnected:                "AP_CONNECTED",
	StatusServerConnecting:           "SERVER_CONNECTING",
	StatusServerValidated:            "SERVER_VALIDATED",
	StatusServerConnected:            "SERVER_CONNECTED",
	StatusInitSoapExchange:           "INIT_SOAP_EXCHANGE",
	StatusWaitingForRedirectResponse: "WAITING_FOR_REDIRECT_RESPONSE",
	StatusRedirectResponseReceived:   "REDIRECT_RESPONSE_RECEIVED",
	StatusSecondSoapExchange:         "SECOND_SOAP_EXCHANGE",
	StatusThirdSoapExchange:          "THIRD_SOAP_EXCHANGE",
	StatusRetrievingTrustRootCerts:   "RETRIEVING_TRUST_ROOT_CERTS",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("STATUS(%d)", int(s))
}

// Failure is a terminal provisioning failure code.
type Failure int

const (
	FailureAPConnection Failure = iota + 1
	FailureServerURLInvalid
	FailureServerConnection
	FailureServerValidation
	FailureServiceProviderVerification
	FailureProvisioningAborted
	FailureProvisioningNotAvailable
	FailureInvalidURLFormatForOsu
	FailureUnexpectedCommandType
	FailureUnexpectedSoapMessageType
	FailureSoapMessageExchange
	FailureStartRedirectListener
	FailureTimedOutRedirectListener
	FailureNoOsuActivityFound
	FailureUnexpectedSoapMessageStatus
	FailureNoPPSMO
	FailureNoAAAServerTrustRootNode
	FailureNoRemediationServerTrustRootNode
	FailureNoPolicyServerTrustRootNode
	FailureRetrieveTrustRootCertificates
	FailureNoAAATrustRootCertificate
	FailureAddPasspointConfiguration
	FailureOsuProviderNotFound
)

var failureNames = map[Failure]string{
	FailureAPConnection:                     "AP_CONNECTION",
	FailureServerURLInvalid:                 "SERVER_URL_INVALID",
	FailureServerConnection:                 "SERVER_CONNECTION",
	FailureServerValidation:                 "SERVER_VALIDATION",
	FailureServiceProviderVerification:      "SERVICE_PROVIDER_VERIFICATION",
	FailureProvisioningAborted:              "PROVISIONING_ABORTED",
	FailureProvisioningNotAvailable:         "PROVISIONING_NOT_AVAILABLE",
	FailureInvalidURLFormatForOsu:           "INVALID_URL_FORMAT_FOR_OSU",
	FailureUnexpectedCommandType:            "UNEXPECTED_COMMAND_TYPE",
	FailureUnexpectedSoapMessageType:        "UNEXPECTED_SOAP_MESSAGE_TYPE",
	FailureSoapMessageExchange:              "SOAP_MESSAGE_EXCHANGE",
	FailureStartRedirectListener:            "START_REDIRECT_LISTENER",
	FailureTimedOutRedirectListener:         "TIMED_OUT_REDIRECT_LISTENER",
	FailureNoOsuActivityFound:               "NO_OSU_ACTIVITY_FOUND",
	FailureUnexpectedSoapMessageStatus:      "UNEXPECTED_SOAP_MESSAGE_STATUS",
	FailureNoPPSMO:                          "NO_PPS_MO",
	FailureNoAAAServerTrustRootNode:         "NO_AAA_SERVER_TRUST_ROOT_NODE",
	FailureNoRemediationServerTrustRootNode: "NO_REMEDIATION_SERVER_TRUST_ROOT_NODE",
	FailureNoPolicyServerTrustRootNode:      "NO_POLICY_SERVER_TRUST_ROOT_NODE",
	FailureRetrieveTrustRootCertificates:    "RETRIEVE_TRUST_ROOT_CERTIFICATES",
	FailureNoAAATrustRootCertificate:        "NO_AAA_TRUST_ROOT_CERTIFICATE",
	FailureAddPasspointConfiguration:        "ADD_PASSPOINT_CONFIGURATION",
	FailureOsuProviderNotFound:              "OSU_PROVIDER_NOT_FOUND",
}

func (f Failure) String() string {
	if n, ok := failureNames[f]; ok {
		return n
	}
	return fmt.Sprintf("FAILURE(%d)", int(f))
}

// Callback receives progress for one provisioning request. Exactly one of
// OnFailure or OnComplete is called per request.
type Callback interface {
	OnStatus(status Status)
	OnFailure(failure Failure)
	OnComplete()
}

// Snapshot describes the current provisioning session.
type Snapshot struct {
	SessionID   int    `json:"sessionId"`
	Stage       Stage  `json:"stage"`
	UID         int    `json:"uid,omitempty"`
	Provider    string `json:"provider,omitempty"`
	LastFailure string `json:"lastFailure,omitempty"`
	Completed   int    `json:"completed"`
	Failed      int    `json:"failed"`
}
